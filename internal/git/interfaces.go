package git

import "context"

// Commander provides an interface for executing git commands.
// The default implementation shells out to the git binary; tests
// substitute MockCommander to verify argument construction without
// touching a real repository.
type Commander interface {
	// Run executes a git command in dir and returns an error if it fails
	Run(ctx context.Context, dir string, args ...string) error

	// Output executes a git command in dir and returns its stdout
	Output(ctx context.Context, dir string, args ...string) (string, error)
}
