package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestGitError(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		stderr   string
		err      error
		expected string
	}{
		{
			name:     "stderr wins over wrapped error",
			args:     []string{"worktree", "add"},
			stderr:   "fatal: invalid reference: nope",
			err:      errors.New("exit status 128"),
			expected: "git operation failed: fatal: invalid reference: nope",
		},
		{
			name:     "stderr is trimmed",
			args:     []string{"status"},
			stderr:   "  fatal: bad revision\n",
			expected: "git operation failed: fatal: bad revision",
		},
		{
			name:     "falls back to wrapped error",
			args:     []string{"rev-parse", "HEAD"},
			err:      errors.New("exit status 1"),
			expected: "git operation failed: git rev-parse HEAD: exit status 1",
		},
		{
			name:     "args only",
			args:     []string{"branch", "-D", "arborist/teal"},
			expected: "git operation failed: git branch -D arborist/teal",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewGitError(tt.args, tt.stderr, tt.err)
			if err.Error() != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, err.Error())
			}
		})
	}
}

func TestGitErrorUnwrap(t *testing.T) {
	original := errors.New("exit status 128")
	gitErr := NewGitError([]string{"status"}, "", original)

	if !errors.Is(gitErr, original) {
		t.Errorf("expected errors.Is to find the wrapped exec error")
	}
}

func TestPathError(t *testing.T) {
	err := NewPathError("/tmp/arborist/x", "not absolute after resolution")
	expected := `invalid path "/tmp/arborist/x": not absolute after resolution`
	if err.Error() != expected {
		t.Errorf("expected %q, got %q", expected, err.Error())
	}
}

func TestIsGitError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{
			name:     "direct git error",
			err:      NewGitError([]string{"status"}, "boom", nil),
			expected: true,
		},
		{
			name:     "wrapped git error",
			err:      fmt.Errorf("checking status: %w", NewGitError([]string{"status"}, "boom", nil)),
			expected: true,
		},
		{
			name:     "path error",
			err:      NewPathError("/x", "bad"),
			expected: false,
		},
		{
			name:     "other error",
			err:      errors.New("some error"),
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := IsGitError(tt.err)
			if result != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, result)
			}
		})
	}
}

func TestIsPathError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{
			name:     "direct path error",
			err:      NewPathError("/x", "bad"),
			expected: true,
		},
		{
			name:     "wrapped path error",
			err:      fmt.Errorf("deriving workspace: %w", NewPathError("/x", "bad")),
			expected: true,
		},
		{
			name:     "git error",
			err:      NewGitError([]string{"status"}, "boom", nil),
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := IsPathError(tt.err)
			if result != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, result)
			}
		})
	}
}
