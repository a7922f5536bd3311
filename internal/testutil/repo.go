// Package testutil provides helpers for building throwaway git
// repositories in tests.
package testutil

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

// RequireGit skips the test when no git binary is available.
func RequireGit(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git is not installed, skipping test")
	}
}

// CreateRepo creates a normal (non-bare) git repository with an
// initial commit in a temp directory and returns its path.
func CreateRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	work := filepath.Join(dir, "work")
	RunGit(t, dir, "init", "-b", "main", work)
	configureUser(t, work)

	WriteFile(t, work, "README.md", "# test\n")
	Commit(t, work, "initial commit")
	return work
}

// CreateBareRepo creates a bare git repository with an initial commit
// in a temp directory and returns its path.
func CreateBareRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	bare := filepath.Join(dir, "repo.git")

	// Create a working repo first, then clone it bare.
	work := filepath.Join(dir, "work")
	RunGit(t, dir, "init", "-b", "main", work)
	configureUser(t, work)

	WriteFile(t, work, "README.md", "# test\n")
	Commit(t, work, "initial commit")

	RunGit(t, dir, "clone", "--bare", work, bare)
	return bare
}

// CreateClonedRepo creates a bare origin plus a clone whose main
// branch tracks origin/main. Returns the clone path and the origin
// path.
func CreateClonedRepo(t *testing.T) (string, string) {
	t.Helper()
	origin := CreateBareRepo(t)

	dir := t.TempDir()
	clone := filepath.Join(dir, "clone")
	RunGit(t, dir, "clone", origin, clone)
	configureUser(t, clone)
	return clone, origin
}

// WriteFile writes content to name inside dir, creating parent
// directories as needed.
func WriteFile(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil { //nolint:gosec // test file
		t.Fatal(err)
	}
}

// Commit stages everything in dir and commits it.
func Commit(t *testing.T, dir, message string) {
	t.Helper()
	RunGit(t, dir, "add", "-A")
	RunGit(t, dir, "commit", "-m", message)
}

// RunGit runs a git command in dir and fails the test on error.
func RunGit(t *testing.T, dir string, args ...string) {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		t.Fatalf("command git %v failed: %v", args, err)
	}
}

// GitOutput runs a git command in dir and returns its trimmed stdout.
func GitOutput(t *testing.T, dir string, args ...string) string {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	out, err := cmd.Output()
	if err != nil {
		t.Fatalf("command git %v failed: %v", args, err)
	}
	return strings.TrimSpace(string(out))
}

func configureUser(t *testing.T, dir string) {
	t.Helper()
	RunGit(t, dir, "config", "user.email", "test@example.com")
	RunGit(t, dir, "config", "user.name", "Test")
}
