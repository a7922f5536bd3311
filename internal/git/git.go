// Package git provides Git repository inspection and worktree
// management by shelling out to the git binary.
package git

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	arberrors "github.com/Didstopia/arborist/internal/errors"
)

// Git provides Git operations
type Git struct {
	// GitPath is the path to the git executable
	GitPath string

	cmd Commander
}

// New creates a new Git instance
func New() (*Git, error) {
	gitPath, err := exec.LookPath("git")
	if err != nil {
		return nil, arberrors.ErrGitNotInstalled
	}
	return &Git{GitPath: gitPath, cmd: &execCommander{gitPath: gitPath}}, nil
}

// NewWithCommander creates a Git instance backed by the given
// commander. Used by tests to substitute a MockCommander.
func NewWithCommander(cmd Commander) *Git {
	return &Git{GitPath: "git", cmd: cmd}
}

// IsRepository reports whether dir is inside a git repository.
// The probe exits zero inside bare repositories as well, so a false
// result really means "no repository here".
func (g *Git) IsRepository(ctx context.Context, dir string) bool {
	_, err := g.cmd.Output(ctx, dir, "rev-parse", "--is-inside-work-tree")
	return err == nil
}

// CommonDir returns the primary repository's control directory as an
// absolute path. Resolving through --git-common-dir keeps this correct
// when invoked from inside a secondary worktree.
func (g *Git) CommonDir(ctx context.Context, dir string) (string, error) {
	out, err := g.cmd.Output(ctx, dir, "rev-parse", "--git-common-dir")
	if err != nil {
		return "", err
	}
	return absAgainst(dir, strings.TrimSpace(out))
}

// IsBare reports whether the primary repository is bare. The query is
// evaluated against the common control directory, not the caller's
// directory, so it holds even from within a worktree.
func (g *Git) IsBare(ctx context.Context, dir string) (bool, error) {
	common, err := g.CommonDir(ctx, dir)
	if err != nil {
		return false, err
	}
	out, err := g.cmd.Output(ctx, common, "rev-parse", "--is-bare-repository")
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(out) == "true", nil
}

// Root returns the repository root: the working-tree top level for
// normal repositories, or the common control directory itself for bare
// repositories (which have no working tree to speak of).
func (g *Git) Root(ctx context.Context, dir string) (string, error) {
	bare, err := g.IsBare(ctx, dir)
	if err != nil {
		return "", err
	}
	if bare {
		return g.CommonDir(ctx, dir)
	}
	out, err := g.cmd.Output(ctx, dir, "rev-parse", "--show-toplevel")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// CurrentBranch returns the abbreviated ref name of HEAD.
// A detached HEAD yields the literal string "HEAD".
func (g *Git) CurrentBranch(ctx context.Context, dir string) (string, error) {
	out, err := g.cmd.Output(ctx, dir, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// CurrentCommit returns the full commit hash of HEAD
func (g *Git) CurrentCommit(ctx context.Context, dir string) (string, error) {
	out, err := g.cmd.Output(ctx, dir, "rev-parse", "HEAD")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// Inspect reads the repository identity once. Returns
// ErrNotARepository when dir is not inside a repository.
func (g *Git) Inspect(ctx context.Context, dir string) (*RepoInfo, error) {
	if !g.IsRepository(ctx, dir) {
		return nil, arberrors.ErrNotARepository
	}

	root, err := g.Root(ctx, dir)
	if err != nil {
		return nil, err
	}
	branch, err := g.CurrentBranch(ctx, dir)
	if err != nil {
		return nil, err
	}
	commit, err := g.CurrentCommit(ctx, dir)
	if err != nil {
		return nil, err
	}
	bare, err := g.IsBare(ctx, dir)
	if err != nil {
		return nil, err
	}

	return &RepoInfo{Root: root, Branch: branch, Commit: commit, Bare: bare}, nil
}

// HasUncommittedChanges reports whether the working tree at dir has
// any uncommitted changes (staged, unstaged or untracked).
func (g *Git) HasUncommittedChanges(ctx context.Context, dir string) (bool, error) {
	out, err := g.cmd.Output(ctx, dir, "status", "--porcelain")
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(out) != "", nil
}

// CommitsAhead counts commits in HEAD's history not reachable from the
// upstream tracking ref. A missing upstream is a normal condition and
// yields zero, not an error.
func (g *Git) CommitsAhead(ctx context.Context, dir string) (int, error) {
	if _, err := g.cmd.Output(ctx, dir, "rev-parse", "--abbrev-ref", "@{upstream}"); err != nil {
		if arberrors.IsGitError(err) {
			return 0, nil
		}
		return 0, err
	}

	out, err := g.cmd.Output(ctx, dir, "rev-list", "--count", "@{upstream}..HEAD")
	if err != nil {
		return 0, err
	}
	count, err := strconv.Atoi(strings.TrimSpace(out))
	if err != nil {
		return 0, fmt.Errorf("parsing ahead count %q: %w", strings.TrimSpace(out), err)
	}
	return count, nil
}

// Status recomputes the retain-vs-discard inputs for the working tree
// at dir.
func (g *Git) Status(ctx context.Context, dir string) (WorkspaceStatus, error) {
	hasChanges, err := g.HasUncommittedChanges(ctx, dir)
	if err != nil {
		return WorkspaceStatus{}, err
	}
	ahead, err := g.CommitsAhead(ctx, dir)
	if err != nil {
		return WorkspaceStatus{}, err
	}
	return WorkspaceStatus{HasChanges: hasChanges, CommitsAhead: ahead}, nil
}

// absAgainst resolves p relative to base when p is not already
// absolute. git prints --git-common-dir relative to the queried
// directory, so the raw value is only meaningful alongside it.
func absAgainst(base, p string) (string, error) {
	if filepath.IsAbs(p) {
		return filepath.Clean(p), nil
	}
	joined := p
	if base != "" {
		joined = filepath.Join(base, p)
	}
	abs, err := filepath.Abs(joined)
	if err != nil {
		return "", arberrors.NewPathError(joined, err.Error())
	}
	return abs, nil
}
