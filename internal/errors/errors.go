// Package errors provides custom error types for arborist
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Common errors
var (
	ErrGitNotInstalled = errors.New("git is not installed or not in PATH")
	ErrNotARepository  = errors.New("not a git repository")
	ErrNoCommand       = errors.New("no command specified")
)

// GitError represents a git invocation that exited nonzero.
// It carries git's own stderr text verbatim so the user sees the
// underlying tool's diagnosis, not a paraphrase.
type GitError struct {
	Args   []string
	Stderr string
	Err    error
}

func (e *GitError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("git operation failed: %s", e.Stderr)
	}
	if e.Err != nil {
		return fmt.Sprintf("git operation failed: git %s: %v", strings.Join(e.Args, " "), e.Err)
	}
	return fmt.Sprintf("git operation failed: git %s", strings.Join(e.Args, " "))
}

func (e *GitError) Unwrap() error {
	return e.Err
}

// NewGitError creates a git operation error from the failed argument
// list and the captured stderr output.
func NewGitError(args []string, stderr string, err error) *GitError {
	return &GitError{Args: args, Stderr: strings.TrimSpace(stderr), Err: err}
}

// PathError represents a filesystem path that cannot be used as an
// isolation workspace location.
type PathError struct {
	Path   string
	Reason string
}

func (e *PathError) Error() string {
	return fmt.Sprintf("invalid path %q: %s", e.Path, e.Reason)
}

// NewPathError creates a new path error
func NewPathError(path, reason string) *PathError {
	return &PathError{Path: path, Reason: reason}
}

// IsGitError checks if the error came from a failed git invocation
func IsGitError(err error) bool {
	var gitErr *GitError
	return errors.As(err, &gitErr)
}

// IsPathError checks if the error is an invalid path error
func IsPathError(err error) bool {
	var pathErr *PathError
	return errors.As(err, &pathErr)
}
