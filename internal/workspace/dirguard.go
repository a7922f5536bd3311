package workspace

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
)

// DirGuard captures the working directory and restores it later.
// Restoration failure is downgraded to a warning so it can never
// become the run's outcome.
type DirGuard struct {
	prev     string
	log      *logrus.Logger
	restored bool
}

// EnterDir switches the working directory to path, remembering the
// previous directory for restoration.
func EnterDir(path string, log *logrus.Logger) (*DirGuard, error) {
	prev, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("getting working directory: %w", err)
	}
	if err := os.Chdir(path); err != nil {
		return nil, fmt.Errorf("entering workspace directory: %w", err)
	}
	return &DirGuard{prev: prev, log: log}, nil
}

// Restore returns to the captured directory. It is idempotent and
// safe to defer alongside an explicit earlier call.
func (g *DirGuard) Restore() {
	if g == nil || g.restored {
		return
	}
	g.restored = true
	if err := os.Chdir(g.prev); err != nil {
		g.log.Warnf("Failed to restore working directory to %s: %v", g.prev, err)
	}
}
