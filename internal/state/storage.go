package state

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// StateFileName is the name of the state file
	StateFileName = "state.yaml"
	// StateDirName is the name of the directory holding arborist state
	StateDirName = ".arborist"
)

// Storage handles registry persistence
type Storage struct {
	mu       sync.RWMutex
	filePath string
	state    *State
}

// NewStorage creates a new storage instance with the default path
func NewStorage() (*Storage, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get home directory: %w", err)
	}

	stateDir := filepath.Join(homeDir, StateDirName)
	filePath := filepath.Join(stateDir, StateFileName)

	return &Storage{
		filePath: filePath,
		state:    NewState(),
	}, nil
}

// NewStorageWithPath creates a new storage instance with a custom path
func NewStorageWithPath(filePath string) *Storage {
	return &Storage{
		filePath: filePath,
		state:    NewState(),
	}
}

// Load reads the registry from disk
func (s *Storage) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			// No state file yet, use default empty state
			s.state = NewState()
			return nil
		}
		return fmt.Errorf("failed to read state file: %w", err)
	}

	var state State
	if err := yaml.Unmarshal(data, &state); err != nil {
		return fmt.Errorf("failed to parse state file: %w", err)
	}

	// Migrate if needed
	if state.Version < 1 {
		state.Version = 1
	}

	s.state = &state
	return nil
}

// Save writes the registry to disk atomically
func (s *Storage) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.saveInternal()
}

// saveInternal performs the actual save (must be called with lock held)
func (s *Storage) saveInternal() error {
	// Ensure directory exists
	dir := filepath.Dir(s.filePath)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	data, err := yaml.Marshal(s.state)
	if err != nil {
		return fmt.Errorf("failed to serialize state: %w", err)
	}

	// Write atomically using temp file
	tempFile := s.filePath + ".tmp"
	if err := os.WriteFile(tempFile, data, 0600); err != nil {
		return fmt.Errorf("failed to write temp state file: %w", err)
	}

	if err := os.Rename(tempFile, s.filePath); err != nil {
		// Clean up temp file on failure
		_ = os.Remove(tempFile)
		return fmt.Errorf("failed to rename temp state file: %w", err)
	}

	return nil
}

// RecordRetained upserts the session entry for a retained workspace
// and saves. An existing entry for the same root and label is touched
// and refreshed rather than duplicated.
func (s *Storage) RecordRetained(repoRoot, label, branch, worktreePath string, bare bool) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session := s.state.FindSession(repoRoot, label)
	if session == nil {
		session = NewSession(repoRoot, label, branch, worktreePath, bare)
		s.state.AddSession(session)
	} else {
		session.Branch = branch
		session.WorktreePath = worktreePath
		session.Bare = bare
		session.Touch()
	}

	return session, s.saveInternal()
}

// RemoveSession drops the entry for a repository root and label, if
// any, and saves. Removing a session that was never recorded is not
// an error.
func (s *Storage) RemoveSession(repoRoot, label string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.state.RemoveSession(repoRoot, label) {
		return nil
	}
	return s.saveInternal()
}

// FindSession returns the session for a repository root and label
func (s *Storage) FindSession(repoRoot, label string) *Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.FindSession(repoRoot, label)
}

// SessionsForRoot returns all sessions recorded for a repository root
func (s *Storage) SessionsForRoot(repoRoot string) []*Session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := s.state.SessionsForRoot(repoRoot)
	out := make([]*Session, len(sessions))
	copy(out, sessions)
	return out
}

// Sessions returns all recorded sessions
func (s *Storage) Sessions() []*Session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Session, len(s.state.Sessions))
	copy(out, s.state.Sessions)
	return out
}

// PruneMissing drops sessions whose worktree directory no longer
// exists, saving only when something was removed.
func (s *Storage) PruneMissing() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := s.state.PruneMissing(func(path string) bool {
		_, err := os.Stat(path)
		return err == nil
	})
	if removed == 0 {
		return 0, nil
	}
	return removed, s.saveInternal()
}

// LastCleanAt returns when passive maintenance last ran
func (s *Storage) LastCleanAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.LastCleanAt
}

// SetLastCleanAt records a maintenance run and saves
func (s *Storage) SetLastCleanAt(at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.LastCleanAt = at
	return s.saveInternal()
}
