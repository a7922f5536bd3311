package git

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	arberrors "github.com/Didstopia/arborist/internal/errors"
)

// execCommander runs git commands through os/exec, capturing both
// streams. A nonzero exit becomes a GitError carrying git's stderr;
// spawn failures propagate as plain I/O errors.
type execCommander struct {
	gitPath string
}

func (c *execCommander) Run(ctx context.Context, dir string, args ...string) error {
	_, err := c.Output(ctx, dir, args...)
	return err
}

func (c *execCommander) Output(ctx context.Context, dir string, args ...string) (string, error) {
	argv := args
	if dir != "" {
		argv = append([]string{"-C", dir}, args...)
	}

	cmd := exec.CommandContext(ctx, c.gitPath, argv...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return "", arberrors.NewGitError(args, stderr.String(), err)
		}
		return "", fmt.Errorf("running git %s: %w", strings.Join(args, " "), err)
	}

	return stdout.String(), nil
}
