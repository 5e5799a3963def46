package dispatch

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// Runner abstracts subprocess execution so the dispatcher can be
// tested without spawning real processes.
type Runner interface {
	Run(ctx context.Context, name string, args []string, dir string, timeout time.Duration) (stdout, stderr string, err error)
}

// ExecRunner implements Runner using os/exec. The subprocess is killed
// when the timeout elapses.
type ExecRunner struct{}

// Run executes a command under a deadline and returns its separated
// stdout and stderr.
func (ExecRunner) Run(ctx context.Context, name string, args []string, dir string, timeout time.Duration) (string, string, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec // args come from the internal dispatch table, not user input
	cmd.Dir = dir

	var stdoutBuf, stderrBuf strings.Builder
	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf

	err := cmd.Run()
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return stdoutBuf.String(), stderrBuf.String(), fmt.Errorf("%s timed out after %s", name, timeout)
	}
	if err != nil {
		return stdoutBuf.String(), stderrBuf.String(), fmt.Errorf("%s %s: %w", name, strings.Join(args, " "), err)
	}
	return stdoutBuf.String(), stderrBuf.String(), nil
}
