// Package runner executes external tools. Output is drained from both pipes
// concurrently and a cancelled context terminates the child gracefully.
package runner

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"
)

// DefaultWaitDelay is how long a child may take to exit after SIGTERM
// before it is killed.
const DefaultWaitDelay = 10 * time.Second

// StreamKind tells which pipe a line came from.
type StreamKind int

const (
	Stdout StreamKind = iota
	Stderr
)

// Line is one line of child output.
type Line struct {
	Stream StreamKind
	Text   string
}

// Command returns a command bound to ctx. Cancellation sends SIGTERM and
// escalates to SIGKILL after DefaultWaitDelay.
func Command(ctx context.Context, name string, args ...string) *exec.Cmd {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Cancel = func() error {
		return cmd.Process.Signal(syscall.SIGTERM)
	}
	cmd.WaitDelay = DefaultWaitDelay
	cmd.Env = os.Environ()
	return cmd
}

// Stream starts cmd and calls onLine for each line written to stdout or
// stderr until the process exits. onLine is never called concurrently.
// If ctx was cancelled the returned error wraps ctx.Err().
func Stream(ctx context.Context, cmd *exec.Cmd, onLine func(Line)) error {
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("opening stdout: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("opening stderr: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("starting %s: %w", cmd.Path, err)
	}

	var mu sync.Mutex
	emit := func(l Line) {
		mu.Lock()
		defer mu.Unlock()
		onLine(l)
	}

	var g errgroup.Group
	g.Go(func() error { return drain(stdout, Stdout, emit) })
	g.Go(func() error { return drain(stderr, Stderr, emit) })
	readErr := g.Wait()

	waitErr := cmd.Wait()
	if ctx.Err() != nil {
		return fmt.Errorf("%s interrupted: %w", cmd.Path, ctx.Err())
	}
	if waitErr != nil {
		return waitErr
	}
	if readErr != nil {
		return fmt.Errorf("reading output: %w", readErr)
	}
	return nil
}

func drain(r io.Reader, kind StreamKind, emit func(Line)) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	for sc.Scan() {
		emit(Line{Stream: kind, Text: sc.Text()})
	}
	return sc.Err()
}

// Output runs cmd like Stream and returns the collected stdout and stderr.
func Output(ctx context.Context, cmd *exec.Cmd) (stdout, stderr []string, err error) {
	err = Stream(ctx, cmd, func(l Line) {
		if l.Stream == Stdout {
			stdout = append(stdout, l.Text)
		} else {
			stderr = append(stderr, l.Text)
		}
	})
	return stdout, stderr, err
}
