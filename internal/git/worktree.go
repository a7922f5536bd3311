package git

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ListWorktrees returns all worktrees attached to the repository at
// dir, parsed from the porcelain listing.
func (g *Git) ListWorktrees(ctx context.Context, dir string) ([]Worktree, error) {
	out, err := g.cmd.Output(ctx, dir, "worktree", "list", "--porcelain")
	if err != nil {
		return nil, err
	}
	return parseWorktreeList(out), nil
}

// WorktreeExists reports whether a worktree is registered at exactly
// the given path. Matching compares whole parsed path entries, never
// substrings, so a worktree at /a/b does not shadow one at /a/bb.
func (g *Git) WorktreeExists(ctx context.Context, dir, path string) (bool, error) {
	worktrees, err := g.ListWorktrees(ctx, dir)
	if err != nil {
		return false, err
	}
	want := filepath.Clean(path)
	for _, wt := range worktrees {
		if filepath.Clean(wt.Path) == want {
			return true, nil
		}
	}
	return false, nil
}

// AddWorktree creates a worktree at path on a new branch rooted at
// commit. The parent directory is created if missing. Creation is
// idempotent: an existing worktree at path is reused untouched.
// When upstream is non-empty the new branch is configured to track it.
func (g *Git) AddWorktree(ctx context.Context, dir, path, branch, commit, upstream string) error {
	if parent := filepath.Dir(path); parent != "" && parent != "." {
		if err := os.MkdirAll(parent, 0o755); err != nil {
			return fmt.Errorf("creating worktree base directory %s: %w", parent, err)
		}
	}

	exists, err := g.WorktreeExists(ctx, dir, path)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	if err := g.cmd.Run(ctx, dir, "worktree", "add", "-b", branch, "--", path, commit); err != nil {
		return fmt.Errorf("creating worktree: %w", err)
	}

	if upstream != "" {
		if err := g.cmd.Run(ctx, path, "branch", "--set-upstream-to", upstream); err != nil {
			return fmt.Errorf("setting upstream tracking branch: %w", err)
		}
	}

	return nil
}

// RemoveWorktree force-removes the worktree at path
func (g *Git) RemoveWorktree(ctx context.Context, dir, path string) error {
	if err := g.cmd.Run(ctx, dir, "worktree", "remove", "--force", "--", path); err != nil {
		return fmt.Errorf("removing worktree: %w", err)
	}
	return nil
}

// RemoveWorktreeAndBranch removes the worktree at path, then deletes
// its branch. Branch deletion is not attempted when worktree removal
// fails, so a failure never leaves the branch gone but the worktree
// still checked out.
func (g *Git) RemoveWorktreeAndBranch(ctx context.Context, dir, path, branch string) error {
	if err := g.RemoveWorktree(ctx, dir, path); err != nil {
		return err
	}
	return g.DeleteBranch(ctx, dir, branch)
}

// DeleteBranch force-deletes a local branch
func (g *Git) DeleteBranch(ctx context.Context, dir, branch string) error {
	if err := g.cmd.Run(ctx, dir, "branch", "-D", branch); err != nil {
		return fmt.Errorf("deleting branch %s: %w", branch, err)
	}
	return nil
}

// ListBranches returns local branch names under the given prefix
// (e.g. "arborist/"). An empty prefix lists every local branch.
func (g *Git) ListBranches(ctx context.Context, dir, prefix string) ([]string, error) {
	ref := "refs/heads/" + prefix
	out, err := g.cmd.Output(ctx, dir, "for-each-ref", "--format=%(refname:short)", ref)
	if err != nil {
		return nil, err
	}

	var branches []string
	for _, line := range strings.Split(out, "\n") {
		name := strings.TrimSpace(line)
		if name != "" {
			branches = append(branches, name)
		}
	}
	return branches, nil
}

// PruneWorktrees drops stale worktree registrations whose directories
// no longer exist.
func (g *Git) PruneWorktrees(ctx context.Context, dir string) error {
	if err := g.cmd.Run(ctx, dir, "worktree", "prune"); err != nil {
		return fmt.Errorf("pruning worktrees: %w", err)
	}
	return nil
}

// parseWorktreeList parses `git worktree list --porcelain` output.
// Entries are blank-line separated; each starts with a "worktree <path>"
// line followed by attribute lines.
func parseWorktreeList(output string) []Worktree {
	var out []Worktree
	var current *Worktree

	flush := func() {
		if current != nil && current.Path != "" {
			out = append(out, *current)
		}
		current = nil
	}

	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			flush()
			continue
		}
		if strings.HasPrefix(line, "worktree ") {
			flush()
			current = &Worktree{Path: strings.TrimSpace(strings.TrimPrefix(line, "worktree "))}
			continue
		}
		if current == nil {
			continue
		}
		switch {
		case strings.HasPrefix(line, "branch "):
			branch := strings.TrimSpace(strings.TrimPrefix(line, "branch "))
			current.Branch = strings.TrimPrefix(branch, "refs/heads/")
		case strings.HasPrefix(line, "HEAD "):
			current.Head = strings.TrimSpace(strings.TrimPrefix(line, "HEAD "))
		case line == "detached":
			current.Detached = true
		case line == "bare":
			current.Bare = true
		}
	}
	flush()

	return out
}
