// Package workspace orchestrates isolated command runs: inspect the
// repository, materialize a branch and worktree for it, run the user
// command inside the worktree, then retain or discard the isolation
// depending on what the command left behind.
package workspace

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Didstopia/arborist/internal/config"
	arberrors "github.com/Didstopia/arborist/internal/errors"
	"github.com/Didstopia/arborist/internal/git"
	"github.com/Didstopia/arborist/internal/label"
	"github.com/Didstopia/arborist/internal/schedule"
	"github.com/Didstopia/arborist/internal/state"
)

// CommandRunner executes the user command. Satisfied by runner.Runner.
type CommandRunner interface {
	Run(ctx context.Context, argv []string) (int, error)
}

// Session ties the repository inspector, the isolation namer, the
// worktree manager and the process runner together for one invocation.
type Session struct {
	Git      *git.Git
	Runner   CommandRunner
	Registry *state.Storage
	Config   *config.Config
	Log      *logrus.Logger

	namer *label.Namer
}

// NewSession creates a Session. The registry may be nil, in which case
// session bookkeeping is skipped.
func NewSession(g *git.Git, runner CommandRunner, registry *state.Storage, cfg *config.Config, log *logrus.Logger) (*Session, error) {
	namer, err := label.NewNamer(cfg.Palette)
	if err != nil {
		return nil, err
	}
	return &Session{
		Git:      g,
		Runner:   runner,
		Registry: registry,
		Config:   cfg,
		Log:      log,
		namer:    namer,
	}, nil
}

// Run executes argv under isolation and returns the command's exit
// code. Outside a repository the command runs directly in the current
// directory. Inside one, a worktree on a fresh arborist branch is
// created (or reused), the command runs there, and the worktree is
// afterwards either discarded (no changes, nothing ahead of upstream)
// or retained for the user.
func (s *Session) Run(ctx context.Context, argv []string) (int, error) {
	if len(argv) == 0 {
		return 0, nil
	}

	s.Log.Debug("Checking repository...")
	info, err := s.Git.Inspect(ctx, "")
	if errors.Is(err, arberrors.ErrNotARepository) {
		s.Log.Debug("Not a git repository, running command directly...")
		return s.Runner.Run(ctx, argv)
	}
	if err != nil {
		return 0, err
	}

	if info.Bare {
		s.Log.Debug("Bare repository detected")
	} else {
		s.Log.Debug("Normal repository detected")
	}
	s.Log.Debugf("Repository: %s", info.Root)
	s.Log.Debugf("Branch: %s", info.Branch)

	lbl := s.pickLabel()
	branch := label.BranchName(lbl)
	path := label.WorktreePath(info.Root, info.Bare, lbl)

	// A detached HEAD has no branch to track.
	upstream := ""
	if !info.Detached() {
		upstream = info.Branch
	}

	s.Log.Debugf("Preparing worktree at: %s", path)
	s.Log.Debugf("Creating new worktree with branch '%s'...", branch)
	if err := s.Git.AddWorktree(ctx, "", path, branch, info.Commit, upstream); err != nil {
		return 0, err
	}

	guard, err := EnterDir(path, s.Log)
	if err != nil {
		return 0, err
	}
	defer guard.Restore()
	s.Log.Debug("Changed to worktree directory")

	code, err := s.Runner.Run(ctx, argv)
	if err != nil {
		return 0, err
	}

	// An interrupted run keeps its workspace: the post-run status
	// cannot be trusted while the command was cut short.
	if ctx.Err() != nil {
		s.Log.Debugf("Interrupted, keeping worktree at: %s", path)
		s.recordRetained(info, lbl, branch, path)
		return code, nil
	}

	s.Log.Debug("Checking worktree status...")
	status, err := s.Git.Status(ctx, path)
	if err != nil {
		return code, err
	}

	switch {
	case status.HasChanges:
		s.Log.Debug("Note: Uncommitted changes exist in worktree")
		s.Log.Debugf("Keeping worktree at: %s", path)
		s.recordRetained(info, lbl, branch, path)
	case status.CommitsAhead > 0:
		s.Log.Debugf("Note: %d unpushed commit(s) exist", status.CommitsAhead)
		s.Log.Debugf("Keeping worktree at: %s", path)
		s.recordRetained(info, lbl, branch, path)
	case s.Config.Keep:
		s.Log.Debugf("Keep requested, keeping worktree at: %s", path)
		s.recordRetained(info, lbl, branch, path)
	default:
		s.Log.Debug("No changes detected, removing worktree...")
		// Leave the worktree before removing it.
		guard.Restore()
		if err := s.Git.RemoveWorktreeAndBranch(ctx, info.Root, path, branch); err != nil {
			return code, err
		}
		s.Log.Debug("Worktree and branch removed")
		s.recordCleaned(info.Root, lbl)
	}

	s.maybeAutoClean(ctx, info.Root)

	return code, nil
}

// pickLabel chooses the isolation label for this run.
func (s *Session) pickLabel() string {
	if s.Config.Random {
		return s.namer.Random()
	}
	return s.namer.Deterministic()
}

// recordRetained upserts the registry entry for a retained workspace.
// Registry trouble is never fatal to the run.
func (s *Session) recordRetained(info *git.RepoInfo, lbl, branch, path string) {
	if s.Registry == nil {
		return
	}
	if _, err := s.Registry.RecordRetained(info.Root, lbl, branch, path, info.Bare); err != nil {
		s.Log.Warnf("Failed to record retained session: %v", err)
	}
}

// recordCleaned drops the registry entry for a cleaned workspace.
func (s *Session) recordCleaned(root, lbl string) {
	if s.Registry == nil {
		return
	}
	if err := s.Registry.RemoveSession(root, lbl); err != nil {
		s.Log.Warnf("Failed to remove session record: %v", err)
	}
}

// maybeAutoClean runs passive maintenance when the configured cron
// schedule says a slot has passed since the last clean. Everything
// here is best-effort.
func (s *Session) maybeAutoClean(ctx context.Context, repoDir string) {
	spec := s.Config.AutoClean
	if spec == "" || s.Registry == nil {
		return
	}

	now := time.Now()
	due, err := schedule.Due(spec, s.Registry.LastCleanAt(), now)
	if err != nil {
		s.Log.Warnf("Invalid auto_clean schedule: %v", err)
		return
	}
	if !due {
		return
	}

	s.Log.Debug("Running scheduled maintenance...")
	if err := s.Git.PruneWorktrees(ctx, repoDir); err != nil {
		s.Log.Warnf("Failed to prune worktrees: %v", err)
	}
	if removed, err := s.Registry.PruneMissing(); err != nil {
		s.Log.Warnf("Failed to prune session records: %v", err)
	} else if removed > 0 {
		s.Log.Debugf("Pruned %d stale session record(s)", removed)
	}
	if err := s.Registry.SetLastCleanAt(now); err != nil {
		s.Log.Warnf("Failed to record maintenance time: %v", err)
	}
}
