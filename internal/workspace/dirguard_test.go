package workspace

import (
	"io"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func TestDirGuard(t *testing.T) {
	t.Run("enters and restores", func(t *testing.T) {
		start := t.TempDir()
		target := t.TempDir()
		chdir(t, start)
		before := getwd(t)

		guard, err := EnterDir(target, quietLogger())
		require.NoError(t, err)

		resolved, err := filepath.EvalSymlinks(target)
		require.NoError(t, err)
		assert.Equal(t, resolved, getwd(t))

		guard.Restore()
		assert.Equal(t, before, getwd(t))
	})

	t.Run("restore is idempotent", func(t *testing.T) {
		start := t.TempDir()
		chdir(t, start)
		before := getwd(t)

		guard, err := EnterDir(t.TempDir(), quietLogger())
		require.NoError(t, err)

		guard.Restore()
		guard.Restore()
		assert.Equal(t, before, getwd(t))
	})

	t.Run("missing directory leaves the caller in place", func(t *testing.T) {
		start := t.TempDir()
		chdir(t, start)
		before := getwd(t)

		_, err := EnterDir(filepath.Join(start, "does-not-exist"), quietLogger())
		assert.Error(t, err)
		assert.Equal(t, before, getwd(t))
	})

	t.Run("nil guard restore is a no-op", func(t *testing.T) {
		var guard *DirGuard
		assert.NotPanics(t, func() { guard.Restore() })
	})
}
