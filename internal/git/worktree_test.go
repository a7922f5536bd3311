package git

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Didstopia/arborist/internal/testutil"
)

func TestParseWorktreeList(t *testing.T) {
	t.Run("main worktree with branch", func(t *testing.T) {
		output := "worktree /repo\nHEAD 1234567890abcdef1234567890abcdef12345678\nbranch refs/heads/main\n\n"

		worktrees := parseWorktreeList(output)
		require.Len(t, worktrees, 1)
		assert.Equal(t, "/repo", worktrees[0].Path)
		assert.Equal(t, "main", worktrees[0].Branch)
		assert.Equal(t, "1234567890abcdef1234567890abcdef12345678", worktrees[0].Head)
		assert.False(t, worktrees[0].Detached)
		assert.False(t, worktrees[0].Bare)
	})

	t.Run("multiple entries", func(t *testing.T) {
		output := "worktree /repo\nHEAD aaaa\nbranch refs/heads/main\n\n" +
			"worktree /tmp/arborist/wt\nHEAD bbbb\nbranch refs/heads/arborist/red\n\n" +
			"worktree /tmp/detached\nHEAD cccc\ndetached\n\n"

		worktrees := parseWorktreeList(output)
		require.Len(t, worktrees, 3)
		assert.Equal(t, "arborist/red", worktrees[1].Branch)
		assert.True(t, worktrees[2].Detached)
		assert.Empty(t, worktrees[2].Branch)
	})

	t.Run("bare entry", func(t *testing.T) {
		output := "worktree /srv/repo.git\nbare\n\n"

		worktrees := parseWorktreeList(output)
		require.Len(t, worktrees, 1)
		assert.True(t, worktrees[0].Bare)
	})

	t.Run("empty output", func(t *testing.T) {
		assert.Empty(t, parseWorktreeList(""))
	})

	t.Run("missing trailing blank line", func(t *testing.T) {
		output := "worktree /repo\nbranch refs/heads/main"

		worktrees := parseWorktreeList(output)
		require.Len(t, worktrees, 1)
		assert.Equal(t, "main", worktrees[0].Branch)
	})
}

func TestListWorktrees(t *testing.T) {
	g, err := New()
	if err != nil {
		t.Skip("git is not installed")
	}
	ctx := context.Background()

	t.Run("repository without extra worktrees", func(t *testing.T) {
		repo := testutil.CreateRepo(t)

		worktrees, err := g.ListWorktrees(ctx, repo)
		require.NoError(t, err)
		require.Len(t, worktrees, 1)
		assert.Equal(t, "main", worktrees[0].Branch)
	})

	t.Run("repository with an added worktree", func(t *testing.T) {
		repo := testutil.CreateRepo(t)
		path := filepath.Join(t.TempDir(), "wt")
		testutil.RunGit(t, repo, "worktree", "add", "-b", "arborist/red", path)

		worktrees, err := g.ListWorktrees(ctx, repo)
		require.NoError(t, err)
		require.Len(t, worktrees, 2)
		assert.Equal(t, "arborist/red", worktrees[1].Branch)
	})

	t.Run("bare repository lists the bare entry", func(t *testing.T) {
		bare := testutil.CreateBareRepo(t)

		worktrees, err := g.ListWorktrees(ctx, bare)
		require.NoError(t, err)
		require.Len(t, worktrees, 1)
		assert.True(t, worktrees[0].Bare)
	})
}

func TestWorktreeExists(t *testing.T) {
	t.Run("matches whole paths only", func(t *testing.T) {
		mock := NewMockCommander()
		mock.OutputFunc = func(ctx context.Context, dir string, args ...string) (string, error) {
			return "worktree /repo\nbranch refs/heads/main\n\n" +
				"worktree /tmp/arborist/abc/redder\nbranch refs/heads/arborist/redder\n\n", nil
		}
		g := NewWithCommander(mock)

		exists, err := g.WorktreeExists(context.Background(), "/repo", "/tmp/arborist/abc/red")
		require.NoError(t, err)
		assert.False(t, exists, "substring of a registered path must not match")

		exists, err = g.WorktreeExists(context.Background(), "/repo", "/tmp/arborist/abc/redder")
		require.NoError(t, err)
		assert.True(t, exists)
	})

	t.Run("ignores trailing separators", func(t *testing.T) {
		mock := NewMockCommander()
		mock.OutputFunc = func(ctx context.Context, dir string, args ...string) (string, error) {
			return "worktree /tmp/arborist/abc/red\nbranch refs/heads/arborist/red\n\n", nil
		}
		g := NewWithCommander(mock)

		exists, err := g.WorktreeExists(context.Background(), "/repo", "/tmp/arborist/abc/red/")
		require.NoError(t, err)
		assert.True(t, exists)
	})

	t.Run("real repository", func(t *testing.T) {
		g, err := New()
		if err != nil {
			t.Skip("git is not installed")
		}
		ctx := context.Background()

		repo := testutil.CreateRepo(t)
		path := filepath.Join(t.TempDir(), "wt")
		testutil.RunGit(t, repo, "worktree", "add", "-b", "arborist/blue", path)

		exists, err := g.WorktreeExists(ctx, repo, path)
		require.NoError(t, err)
		assert.True(t, exists)

		exists, err = g.WorktreeExists(ctx, repo, filepath.Join(t.TempDir(), "other"))
		require.NoError(t, err)
		assert.False(t, exists)
	})
}

func TestAddWorktree(t *testing.T) {
	t.Run("issues the expected git commands", func(t *testing.T) {
		mock := NewMockCommander()
		mock.OutputFunc = func(ctx context.Context, dir string, args ...string) (string, error) {
			return "worktree /repo\nbranch refs/heads/main\n\n", nil
		}
		g := NewWithCommander(mock)

		path := filepath.Join(t.TempDir(), "wt")
		err := g.AddWorktree(context.Background(), "/repo", path, "arborist/red", "abc123", "main")
		require.NoError(t, err)

		require.Equal(t, 2, mock.CallCount("Run"))
		add := mock.Calls[1]
		assert.Equal(t, "/repo", add.Dir)
		assert.Equal(t, []string{"worktree", "add", "-b", "arborist/red", "--", path, "abc123"}, add.Args)

		upstream := mock.Calls[2]
		assert.Equal(t, path, upstream.Dir)
		assert.Equal(t, []string{"branch", "--set-upstream-to", "main"}, upstream.Args)
	})

	t.Run("skips upstream when empty", func(t *testing.T) {
		mock := NewMockCommander()
		mock.OutputFunc = func(ctx context.Context, dir string, args ...string) (string, error) {
			return "", nil
		}
		g := NewWithCommander(mock)

		path := filepath.Join(t.TempDir(), "wt")
		err := g.AddWorktree(context.Background(), "/repo", path, "arborist/red", "abc123", "")
		require.NoError(t, err)
		assert.Equal(t, 1, mock.CallCount("Run"))
	})

	t.Run("reuses an existing worktree", func(t *testing.T) {
		mock := NewMockCommander()
		path := filepath.Join(t.TempDir(), "wt")
		mock.OutputFunc = func(ctx context.Context, dir string, args ...string) (string, error) {
			return "worktree " + path + "\nbranch refs/heads/arborist/red\n\n", nil
		}
		g := NewWithCommander(mock)

		err := g.AddWorktree(context.Background(), "/repo", path, "arborist/red", "abc123", "main")
		require.NoError(t, err)
		assert.Equal(t, 0, mock.CallCount("Run"), "existing worktree must not be recreated")
	})

	t.Run("real repository", func(t *testing.T) {
		g, err := New()
		if err != nil {
			t.Skip("git is not installed")
		}
		ctx := context.Background()

		repo := testutil.CreateRepo(t)
		head := testutil.GitOutput(t, repo, "rev-parse", "HEAD")
		path := filepath.Join(t.TempDir(), "nested", "wt")

		require.NoError(t, g.AddWorktree(ctx, repo, path, "arborist/green", head, "main"))

		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.True(t, info.IsDir())

		branches, err := g.ListBranches(ctx, repo, "arborist/")
		require.NoError(t, err)
		assert.Contains(t, branches, "arborist/green")

		tracking := testutil.GitOutput(t, path, "rev-parse", "--abbrev-ref", "@{upstream}")
		assert.Equal(t, "main", tracking)

		// Creating the same worktree again is a no-op.
		require.NoError(t, g.AddWorktree(ctx, repo, path, "arborist/green", head, "main"))
	})

	t.Run("bare repository", func(t *testing.T) {
		g, err := New()
		if err != nil {
			t.Skip("git is not installed")
		}
		ctx := context.Background()

		bare := testutil.CreateBareRepo(t)
		head := testutil.GitOutput(t, bare, "rev-parse", "HEAD")
		path := filepath.Join(t.TempDir(), "wt")

		require.NoError(t, g.AddWorktree(ctx, bare, path, "arborist/cyan", head, ""))

		exists, err := g.WorktreeExists(ctx, bare, path)
		require.NoError(t, err)
		assert.True(t, exists)
	})
}

func TestRemoveWorktree(t *testing.T) {
	g, err := New()
	if err != nil {
		t.Skip("git is not installed")
	}
	ctx := context.Background()

	t.Run("removes worktree and directory", func(t *testing.T) {
		repo := testutil.CreateRepo(t)
		head := testutil.GitOutput(t, repo, "rev-parse", "HEAD")
		path := filepath.Join(t.TempDir(), "wt")
		require.NoError(t, g.AddWorktree(ctx, repo, path, "arborist/pink", head, ""))

		require.NoError(t, g.RemoveWorktree(ctx, repo, path))

		exists, err := g.WorktreeExists(ctx, repo, path)
		require.NoError(t, err)
		assert.False(t, exists)
		_, statErr := os.Stat(path)
		assert.True(t, os.IsNotExist(statErr))
	})

	t.Run("removes despite uncommitted changes", func(t *testing.T) {
		repo := testutil.CreateRepo(t)
		head := testutil.GitOutput(t, repo, "rev-parse", "HEAD")
		path := filepath.Join(t.TempDir(), "wt")
		require.NoError(t, g.AddWorktree(ctx, repo, path, "arborist/teal", head, ""))
		testutil.WriteFile(t, path, "dirty.txt", "dirty\n")

		require.NoError(t, g.RemoveWorktree(ctx, repo, path))
	})

	t.Run("fails for an unknown path", func(t *testing.T) {
		repo := testutil.CreateRepo(t)
		err := g.RemoveWorktree(ctx, repo, filepath.Join(t.TempDir(), "missing"))
		assert.Error(t, err)
	})
}

func TestRemoveWorktreeAndBranch(t *testing.T) {
	t.Run("removes both", func(t *testing.T) {
		g, err := New()
		if err != nil {
			t.Skip("git is not installed")
		}
		ctx := context.Background()

		repo := testutil.CreateRepo(t)
		head := testutil.GitOutput(t, repo, "rev-parse", "HEAD")
		path := filepath.Join(t.TempDir(), "wt")
		require.NoError(t, g.AddWorktree(ctx, repo, path, "arborist/navy", head, ""))

		require.NoError(t, g.RemoveWorktreeAndBranch(ctx, repo, path, "arborist/navy"))

		branches, err := g.ListBranches(ctx, repo, "arborist/")
		require.NoError(t, err)
		assert.NotContains(t, branches, "arborist/navy")
	})

	t.Run("keeps the branch when worktree removal fails", func(t *testing.T) {
		mock := NewMockCommander()
		mock.RunFunc = func(ctx context.Context, dir string, args ...string) error {
			return assert.AnError
		}
		g := NewWithCommander(mock)

		err := g.RemoveWorktreeAndBranch(context.Background(), "/repo", "/tmp/wt", "arborist/red")
		assert.Error(t, err)
		require.Equal(t, 1, mock.CallCount("Run"))
		assert.Equal(t, "worktree", mock.Calls[0].Args[0])
	})
}

func TestListBranches(t *testing.T) {
	g, err := New()
	if err != nil {
		t.Skip("git is not installed")
	}
	ctx := context.Background()

	t.Run("filters by prefix", func(t *testing.T) {
		repo := testutil.CreateRepo(t)
		testutil.RunGit(t, repo, "branch", "arborist/red")
		testutil.RunGit(t, repo, "branch", "arborist/blue")
		testutil.RunGit(t, repo, "branch", "feature/unrelated")

		branches, err := g.ListBranches(ctx, repo, "arborist/")
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"arborist/red", "arborist/blue"}, branches)
	})

	t.Run("empty prefix lists all branches", func(t *testing.T) {
		repo := testutil.CreateRepo(t)
		testutil.RunGit(t, repo, "branch", "extra")

		branches, err := g.ListBranches(ctx, repo, "")
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"main", "extra"}, branches)
	})

	t.Run("no matches", func(t *testing.T) {
		repo := testutil.CreateRepo(t)

		branches, err := g.ListBranches(ctx, repo, "arborist/")
		require.NoError(t, err)
		assert.Empty(t, branches)
	})
}

func TestPruneWorktrees(t *testing.T) {
	g, err := New()
	if err != nil {
		t.Skip("git is not installed")
	}
	ctx := context.Background()

	repo := testutil.CreateRepo(t)
	head := testutil.GitOutput(t, repo, "rev-parse", "HEAD")
	path := filepath.Join(t.TempDir(), "wt")
	require.NoError(t, g.AddWorktree(ctx, repo, path, "arborist/lime", head, ""))

	// Simulate an orphaned registration by deleting the directory
	// behind git's back.
	require.NoError(t, os.RemoveAll(path))
	require.NoError(t, g.PruneWorktrees(ctx, repo))

	worktrees, err := g.ListWorktrees(ctx, repo)
	require.NoError(t, err)
	assert.Len(t, worktrees, 1)
}
