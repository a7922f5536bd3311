// Package label derives isolation labels and the branch and worktree
// naming scheme built on them.
package label

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

const (
	// BranchPrefix namespaces every branch created by arborist, so
	// they can be identified and cleaned up in bulk later.
	BranchPrefix = "arborist/"

	// dirPrefix names worktree directories placed inside a bare
	// repository root.
	dirPrefix = "arborist-"

	// tempDirName is the directory under the system temp dir that
	// holds worktrees for non-bare repositories.
	tempDirName = "arborist"
)

// defaultPalette holds the built-in isolation labels. Deterministic
// selection indexes into it, so the order is fixed.
var defaultPalette = []string{
	"red",
	"blue",
	"green",
	"yellow",
	"purple",
	"orange",
	"pink",
	"cyan",
	"teal",
	"magenta",
	"violet",
	"amber",
	"crimson",
	"navy",
	"indigo",
	"lime",
	"coral",
	"maroon",
	"turquoise",
	"slate",
	"lavender",
	"mint",
	"peach",
	"ruby",
	"sapphire",
	"emerald",
	"topaz",
}

// labelRegex restricts labels to a single safe branch name component.
var labelRegex = regexp.MustCompile(`^[a-zA-Z0-9._-]+$`)

// Namer picks isolation labels from a palette.
type Namer struct {
	palette []string
}

// NewNamer creates a Namer from the given palette. An empty palette
// falls back to the built-in one; invalid entries are rejected.
func NewNamer(palette []string) (*Namer, error) {
	if len(palette) == 0 {
		palette = defaultPalette
	}
	for _, entry := range palette {
		if err := Validate(entry); err != nil {
			return nil, fmt.Errorf("invalid palette entry: %w", err)
		}
	}
	return &Namer{palette: palette}, nil
}

// FromPID deterministically maps a process id onto the palette.
// The same pid and palette always yield the same label.
func (n *Namer) FromPID(pid int) string {
	idx := pid % len(n.palette)
	if idx < 0 {
		idx += len(n.palette)
	}
	return n.palette[idx]
}

// Deterministic returns the label for the parent process id, so
// repeated invocations from the same shell session converge on the
// same workspace.
func (n *Namer) Deterministic() string {
	return n.FromPID(os.Getppid())
}

// Random returns a uniformly random label from the palette.
func (n *Namer) Random() string {
	return n.palette[rand.IntN(len(n.palette))]
}

// Palette returns a copy of the namer's palette.
func (n *Namer) Palette() []string {
	out := make([]string, len(n.palette))
	copy(out, n.palette)
	return out
}

// DefaultPalette returns a copy of the built-in palette.
func DefaultPalette() []string {
	out := make([]string, len(defaultPalette))
	copy(out, defaultPalette)
	return out
}

// Validate checks that a label is usable as a branch name component
// and a directory name.
func Validate(label string) error {
	if label == "" {
		return fmt.Errorf("label cannot be empty")
	}
	if strings.HasPrefix(label, ".") || strings.HasPrefix(label, "-") {
		return fmt.Errorf("invalid label %q: cannot start with '.' or '-'", label)
	}
	if strings.HasSuffix(label, ".") || strings.HasSuffix(label, ".lock") {
		return fmt.Errorf("invalid label %q: invalid suffix", label)
	}
	if strings.Contains(label, "..") {
		return fmt.Errorf("invalid label %q: cannot contain '..'", label)
	}
	if !labelRegex.MatchString(label) {
		return fmt.Errorf("invalid label %q: only alphanumerics, dots, underscores and hyphens are allowed", label)
	}
	return nil
}

// BranchName returns the namespaced branch name for a label.
func BranchName(label string) string {
	return BranchPrefix + label
}

// FromBranch extracts the label from an arborist branch name.
// The second return is false for branches outside the namespace.
func FromBranch(branch string) (string, bool) {
	return strings.CutPrefix(branch, BranchPrefix)
}

// WorktreeBase returns the directory that holds all arborist worktrees
// for the repository rooted at root. Bare repositories keep their
// worktrees inside the root itself; non-bare repositories get a stable
// directory under the system temp dir, keyed by a hash of the root
// path so the same repository always maps to the same place.
func WorktreeBase(root string, bare bool) string {
	if bare {
		return root
	}
	return filepath.Join(os.TempDir(), tempDirName, hashRoot(root))
}

// WorktreePath returns the worktree directory for a label in the
// repository rooted at root.
func WorktreePath(root string, bare bool, label string) string {
	if bare {
		return filepath.Join(root, dirPrefix+label)
	}
	return filepath.Join(WorktreeBase(root, bare), label)
}

// hashRoot hashes a repository root path to a filesystem-safe name.
func hashRoot(root string) string {
	sum := sha256.Sum256([]byte(root))
	return hex.EncodeToString(sum[:])
}
