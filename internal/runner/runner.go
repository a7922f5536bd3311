// Package runner executes the user command with the invoking
// terminal's stdio.
package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
)

// Runner spawns user commands. Stdio defaults to the current process's
// streams; tests may substitute buffers.
type Runner struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// New creates a Runner attached to the process stdio.
func New() *Runner {
	return &Runner{
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
}

// Run executes argv[0] with the remaining arguments and returns its
// exit code. A nonzero exit is not an error; only spawn failures are.
// An empty argv is a no-op with exit code 0. A command terminated by a
// signal reports exit code 1.
//
// The context is checked before spawning but the running command is
// not killed on cancellation: interrupt delivery is left to the
// terminal's process group, and the runner waits for the command to
// finish on its own.
func (r *Runner) Run(ctx context.Context, argv []string) (int, error) {
	if len(argv) == 0 {
		return 0, nil
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Stdin = r.Stdin
	cmd.Stdout = r.Stdout
	cmd.Stderr = r.Stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			if code := exitErr.ExitCode(); code >= 0 {
				return code, nil
			}
			// Killed by a signal.
			return 1, nil
		}
		return 0, fmt.Errorf("running command %q: %w", argv[0], err)
	}

	return 0, nil
}
