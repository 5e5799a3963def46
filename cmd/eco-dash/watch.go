package main

import (
	"log"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fsnotify/fsnotify"
)

// fsChangeMsg is sent when the operation log changes on disk.
type fsChangeMsg struct{}

// watchOplogDir creates a file system watcher for the directory that
// holds the operation log. Returns nil if the directory doesn't exist
// or watcher creation fails (dashboard will fall back to polling-only
// mode).
func watchOplogDir(dir string) tea.Cmd {
	watcher := initWatcher(dir)
	if watcher == nil {
		return nil
	}
	return runWatcher(watcher)
}

// initWatcher creates and initializes a file system watcher for the given directory.
// Returns nil if initialization fails.
func initWatcher(dir string) *fsnotify.Watcher {
	if _, err := os.Stat(dir); err != nil {
		// Directory doesn't exist, fall back to polling
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		log.Printf("fsnotify: failed to create watcher: %v (falling back to polling)", err)
		return nil
	}

	if err := watcher.Add(dir); err != nil {
		_ = watcher.Close() // Best effort close
		log.Printf("fsnotify: failed to watch %s: %v (falling back to polling)", dir, err)
		return nil
	}

	return watcher
}

// debounceDuration coalesces rapid WAL writes into one refresh.
const debounceDuration = 100 * time.Millisecond

// runWatcher returns a tea.Cmd that blocks on file system events and
// returns fsChangeMsg once the debounce window closes. SQLite under
// WAL touches several files per commit, so events are coalesced.
func runWatcher(watcher *fsnotify.Watcher) tea.Cmd {
	return func() tea.Msg {
		debounce := newStoppedTimer()
		defer debounce.Stop()

		for {
			select {
			case _, ok := <-watcher.Events:
				if !ok {
					return nil
				}
				resetTimer(debounce, debounceDuration)

			case <-debounce.C:
				return fsChangeMsg{}

			case err, ok := <-watcher.Errors:
				if !ok {
					return nil
				}
				log.Printf("fsnotify: watcher error: %v", err)
				return nil
			}
		}
	}
}

// newStoppedTimer creates a timer that is stopped and drained, ready
// for the first Reset.
func newStoppedTimer() *time.Timer {
	timer := time.NewTimer(0)
	if !timer.Stop() {
		<-timer.C
	}
	return timer
}

func resetTimer(timer *time.Timer, d time.Duration) {
	if !timer.Stop() {
		select {
		case <-timer.C:
		default:
		}
	}
	timer.Reset(d)
}
