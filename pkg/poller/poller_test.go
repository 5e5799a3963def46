package poller

import (
	"context"
	"errors"
	"io"
	"log"
	"sync"
	"testing"
	"time"

	"eco/pkg/dispatch"
	"eco/pkg/request"
)

type statusChange struct {
	id     string
	status request.Status
	result string
}

type fakeStore struct {
	mu       sync.Mutex
	pending  []request.Request
	fetchErr error
	claimErr error
	changes  []statusChange
}

func (f *fakeStore) PendingRequests(context.Context) ([]request.Request, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	out := f.pending
	f.pending = nil
	return out, nil
}

func (f *fakeStore) UpdateStatus(_ context.Context, id string, status request.Status, result string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if status == request.StatusRunning && f.claimErr != nil {
		return f.claimErr
	}
	f.changes = append(f.changes, statusChange{id: id, status: status, result: result})
	return nil
}

func (f *fakeStore) history() []statusChange {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]statusChange(nil), f.changes...)
}

type fakeExecutor struct {
	mu      sync.Mutex
	results map[string]dispatch.Result
	ran     []string
}

func (f *fakeExecutor) Execute(_ context.Context, req request.Request) dispatch.Result {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ran = append(f.ran, req.ID)
	if res, ok := f.results[req.ID]; ok {
		return res
	}
	return dispatch.Result{Success: true, Message: "ok"}
}

func quietLogger() *log.Logger { return log.New(io.Discard, "", 0) }

func queued(id string) request.Request {
	return request.Request{ID: id, Status: request.StatusQueued}
}

func TestOnceProcessesAllAndFinalizes(t *testing.T) {
	t.Parallel()

	store := &fakeStore{pending: []request.Request{queued("r1"), queued("r2")}}
	exec := &fakeExecutor{results: map[string]dispatch.Result{
		"r2": {Success: false, Message: "Error: boom"},
	}}

	p := New(store, exec, Config{Once: true}, WithLogger(quietLogger()))
	if err := p.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	want := []statusChange{
		{id: "r1", status: request.StatusRunning},
		{id: "r1", status: request.StatusDone, result: "ok"},
		{id: "r2", status: request.StatusRunning},
		{id: "r2", status: request.StatusFailed, result: "Error: boom"},
	}
	got := store.history()
	if len(got) != len(want) {
		t.Fatalf("status changes = %+v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("change[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
	// No request may be left running once the pass completes.
	running := map[string]bool{}
	for _, c := range got {
		running[c.id] = c.status == request.StatusRunning
	}
	for id, r := range running {
		if r {
			t.Errorf("request %s left running", id)
		}
	}
}

func TestFetchFailureIsTreatedAsZeroRequests(t *testing.T) {
	t.Parallel()

	store := &fakeStore{fetchErr: errors.New("workspace API error 503: down")}
	exec := &fakeExecutor{}

	p := New(store, exec, Config{Once: true}, WithLogger(quietLogger()))
	if err := p.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(exec.ran) != 0 {
		t.Errorf("executed %v despite fetch failure", exec.ran)
	}
	if len(store.history()) != 0 {
		t.Errorf("status changes = %+v", store.history())
	}
}

func TestClaimFailureSkipsExecution(t *testing.T) {
	t.Parallel()

	store := &fakeStore{
		pending:  []request.Request{queued("r1")},
		claimErr: errors.New("conflict"),
	}
	exec := &fakeExecutor{}

	p := New(store, exec, Config{Once: true}, WithLogger(quietLogger()))
	if err := p.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(exec.ran) != 0 {
		t.Error("request executed without a successful claim")
	}
}

func TestNonQueuedRequestIsSkipped(t *testing.T) {
	t.Parallel()

	store := &fakeStore{pending: []request.Request{
		{ID: "r1", Status: request.StatusDone},
		queued("r2"),
	}}
	exec := &fakeExecutor{}

	p := New(store, exec, Config{Once: true}, WithLogger(quietLogger()))
	if err := p.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(exec.ran) != 1 || exec.ran[0] != "r2" {
		t.Errorf("ran %v, want only r2", exec.ran)
	}
}

func TestRunStopsOnContextCancel(t *testing.T) {
	t.Parallel()

	store := &fakeStore{}
	p := New(store, &fakeExecutor{}, Config{Interval: 10 * time.Millisecond}, WithLogger(quietLogger()))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Run returned %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}

func TestConfigDefaults(t *testing.T) {
	t.Parallel()

	if got := (Config{}).withDefaults().Interval; got != 60*time.Second {
		t.Errorf("default interval = %s", got)
	}
	if got := (Config{Interval: 5 * time.Second}).withDefaults().Interval; got != 5*time.Second {
		t.Errorf("explicit interval lost: %s", got)
	}
}
