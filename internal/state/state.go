// Package state persists the registry of retained arborist sessions
package state

import (
	"time"

	"github.com/google/uuid"
)

// State represents the persisted session registry
type State struct {
	Version int `yaml:"version"`

	// LastCleanAt records when passive maintenance last ran.
	LastCleanAt time.Time `yaml:"last_clean_at,omitempty"`

	Sessions []*Session `yaml:"sessions"`
}

// Session records one retained workspace. The registry is advisory
// metadata on top of git's own worktree bookkeeping: a missing entry
// never prevents a worktree from being used or cleaned.
type Session struct {
	ID           string    `yaml:"id"`
	RepoRoot     string    `yaml:"repo_root"`
	Label        string    `yaml:"label"`
	Branch       string    `yaml:"branch"`
	WorktreePath string    `yaml:"worktree_path"`
	Bare         bool      `yaml:"bare,omitempty"`
	CreatedAt    time.Time `yaml:"created_at"`
	LastRunAt    time.Time `yaml:"last_run_at,omitempty"`
	Runs         int       `yaml:"runs"`
}

// NewState creates a new empty state
func NewState() *State {
	return &State{
		Version:  1,
		Sessions: make([]*Session, 0),
	}
}

// NewSession creates a new session entry with a generated ID
func NewSession(repoRoot, label, branch, worktreePath string, bare bool) *Session {
	now := time.Now()
	return &Session{
		ID:           uuid.New().String(),
		RepoRoot:     repoRoot,
		Label:        label,
		Branch:       branch,
		WorktreePath: worktreePath,
		Bare:         bare,
		CreatedAt:    now,
		LastRunAt:    now,
		Runs:         1,
	}
}

// AddSession adds a session to the state
func (s *State) AddSession(session *Session) {
	s.Sessions = append(s.Sessions, session)
}

// FindSession returns the session for a repository root and label
func (s *State) FindSession(repoRoot, label string) *Session {
	for _, session := range s.Sessions {
		if session.RepoRoot == repoRoot && session.Label == label {
			return session
		}
	}
	return nil
}

// RemoveSession removes the session for a repository root and label
func (s *State) RemoveSession(repoRoot, label string) bool {
	for i, session := range s.Sessions {
		if session.RepoRoot == repoRoot && session.Label == label {
			s.Sessions = append(s.Sessions[:i], s.Sessions[i+1:]...)
			return true
		}
	}
	return false
}

// SessionsForRoot returns all sessions recorded for a repository root
func (s *State) SessionsForRoot(repoRoot string) []*Session {
	var out []*Session
	for _, session := range s.Sessions {
		if session.RepoRoot == repoRoot {
			out = append(out, session)
		}
	}
	return out
}

// PruneMissing drops sessions whose worktree path no longer passes the
// given existence check and returns how many were removed.
func (s *State) PruneMissing(exists func(path string) bool) int {
	kept := make([]*Session, 0, len(s.Sessions))
	removed := 0
	for _, session := range s.Sessions {
		if exists(session.WorktreePath) {
			kept = append(kept, session)
		} else {
			removed++
		}
	}
	s.Sessions = kept
	return removed
}

// Touch updates the session's last run time and run counter
func (se *Session) Touch() {
	se.LastRunAt = time.Now()
	se.Runs++
}
