package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommandFlags(t *testing.T) {
	t.Run("verbose is persistent", func(t *testing.T) {
		flag := rootCmd.PersistentFlags().Lookup("verbose")
		require.NotNil(t, flag)
		assert.Equal(t, "v", flag.Shorthand)
	})

	t.Run("random and keep are local to the wrapper", func(t *testing.T) {
		random := rootCmd.Flags().Lookup("random")
		require.NotNil(t, random)
		assert.Equal(t, "r", random.Shorthand)

		keep := rootCmd.Flags().Lookup("keep")
		require.NotNil(t, keep)
		assert.Equal(t, "k", keep.Shorthand)
	})

	t.Run("subcommands are registered", func(t *testing.T) {
		names := make(map[string]bool)
		for _, cmd := range rootCmd.Commands() {
			names[cmd.Name()] = true
		}
		assert.True(t, names["version"])
		assert.True(t, names["list"])
		assert.True(t, names["clean"])
		assert.True(t, names["update"])
	})
}

func TestRootRequiresACommand(t *testing.T) {
	assert.Error(t, rootCmd.Args(rootCmd, nil))
	assert.NoError(t, rootCmd.Args(rootCmd, []string{"make"}))
}

func TestRootFlagParsingStopsAtCommand(t *testing.T) {
	// Flags after the first positional token belong to the wrapped
	// command, not to arborist.
	fs := rootCmd.Flags()
	require.NoError(t, fs.Parse([]string{"echo", "-n", "hi"}))
	assert.Equal(t, []string{"echo", "-n", "hi"}, fs.Args())
}

func TestCurrentConfig(t *testing.T) {
	// Save original values
	oldVerbose := verbose
	oldRandom := random
	oldKeep := keep
	defer func() {
		verbose = oldVerbose
		random = oldRandom
		keep = oldKeep
	}()

	verbose = true
	random = true
	keep = true

	cfg := currentConfig()
	assert.True(t, cfg.Verbose)
	assert.True(t, cfg.Random)
	assert.True(t, cfg.Keep)
	assert.Empty(t, cfg.Palette)
}
