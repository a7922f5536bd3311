package git

// RepoInfo describes the repository an invocation is operating on.
// It is read once at the start of a run and not refreshed afterwards.
type RepoInfo struct {
	// Root is the working-tree top level, or the common git directory
	// for bare repositories (the base for co-located worktrees).
	Root string
	// Branch is the abbreviated ref name of HEAD ("HEAD" when detached).
	Branch string
	// Commit is the full commit hash of HEAD.
	Commit string
	// Bare reports whether the primary repository has no working tree.
	Bare bool
}

// Detached reports whether HEAD does not point at a branch.
func (r *RepoInfo) Detached() bool {
	return r.Branch == "HEAD"
}

// WorkspaceStatus captures the post-run state that drives the
// retain-vs-discard decision.
type WorkspaceStatus struct {
	// HasChanges is true when the working tree has uncommitted changes.
	HasChanges bool
	// CommitsAhead counts commits in HEAD not reachable from the
	// upstream tracking ref. Zero when no upstream is configured.
	CommitsAhead int
}

// Clean reports whether the workspace holds nothing worth keeping.
func (s WorkspaceStatus) Clean() bool {
	return !s.HasChanges && s.CommitsAhead == 0
}

// Worktree is one entry of the repository's worktree listing.
type Worktree struct {
	Path     string
	Branch   string
	Head     string
	Detached bool
	Bare     bool
}
