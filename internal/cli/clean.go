package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"github.com/cheggaaa/pb/v3"

	"github.com/Didstopia/arborist/internal/git"
	"github.com/Didstopia/arborist/internal/state"
	"github.com/Didstopia/arborist/internal/tui"
)

var (
	cleanDryRun      bool
	cleanForce       bool
	cleanInteractive bool
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove arborist workspaces and branches",
	Long: `Remove arborist-managed worktrees and their branches from the current repository.

By default only workspaces without uncommitted changes or unpushed commits
are removed, after a confirmation prompt. Branches whose worktree already
disappeared are swept up as well.

Examples:
  arborist clean
  arborist clean --dry-run
  arborist clean --force
  arborist clean --interactive`,
	RunE: runClean,
}

func init() {
	cleanCmd.Flags().BoolVarP(&cleanDryRun, "dry-run", "n", false, "Show what would be removed without removing anything")
	cleanCmd.Flags().BoolVarP(&cleanForce, "force", "f", false, "Remove dirty workspaces too and skip the confirmation prompt")
	cleanCmd.Flags().BoolVarP(&cleanInteractive, "interactive", "i", false, "Pick the workspaces to remove in a terminal UI")

	// Add to root
	rootCmd.AddCommand(cleanCmd)
}

func runClean(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	g, err := git.New()
	if err != nil {
		return err
	}
	registry := openRegistry()

	info, err := g.Inspect(ctx, "")
	if err != nil {
		return err
	}

	rows, err := collectWorkspaces(ctx, g, registry, info.Root)
	if err != nil {
		return fmt.Errorf("failed to collect workspaces: %w", err)
	}

	if len(rows) == 0 {
		fmt.Println("No arborist workspaces found.")
		return nil
	}

	targets, err := selectCleanTargets(rows, info.Root)
	if err != nil {
		return err
	}
	if targets == nil {
		fmt.Println("Cancelled.")
		return nil
	}
	if len(targets) == 0 {
		fmt.Println("No removable workspaces (use --force to remove dirty ones).")
		return nil
	}

	if cleanDryRun && verbose {
		fmt.Println("Dry run detected, simulating cleanup")
	}

	// Create progress bar
	var progressBar *pb.ProgressBar
	progressEnabled := !verbose && len(targets) > 0
	if progressEnabled {
		progressBar = pb.New(len(targets))
		progressBar.Start()
	}

	// Run cleanup
	removedCount := 0
	for _, target := range targets {
		select {
		case <-ctx.Done():
			if progressBar != nil {
				progressBar.Finish()
			}
			return ctx.Err()
		default:
		}

		if verbose {
			fmt.Printf("Removing workspace '%s'\n", target.Label)
		}

		if !cleanDryRun {
			if err := removeWorkspace(ctx, g, registry, info.Root, target); err != nil {
				fmt.Printf("Error removing workspace '%s': %v\n", target.Label, err)
			} else {
				removedCount++
				if verbose {
					fmt.Printf("Successfully removed workspace '%s'\n", target.Label)
				}
			}
		} else {
			if verbose {
				fmt.Println("Dry run enabled, simulating removal")
			}
			time.Sleep(100 * time.Millisecond)
			removedCount++
		}

		if progressBar != nil {
			progressBar.Increment()
		}
	}

	// Drop worktree registrations whose directories are gone
	if !cleanDryRun {
		if err := g.PruneWorktrees(ctx, info.Root); err != nil {
			log.WithError(err).Warn("Failed to prune worktree registrations")
		}
	}

	// Finish progress bar
	if progressBar != nil {
		progressBar.Finish()
		fmt.Printf("\nSuccessfully removed %d workspace(s)!\n", removedCount)
	}

	return nil
}

// selectCleanTargets narrows the collected workspaces down to the ones
// this invocation should remove. A nil result means the user backed
// out.
func selectCleanTargets(rows []workspaceRow, root string) ([]workspaceRow, error) {
	if cleanInteractive {
		return pickTargets(rows)
	}

	targets := make([]workspaceRow, 0, len(rows))
	if cleanForce {
		targets = append(targets, rows...)
	} else {
		for _, row := range rows {
			if row.Dirty || row.CommitsAhead > 0 {
				fmt.Printf("Skipping '%s' (%s), use --force to remove it\n", row.Label, statusWord(row))
				continue
			}
			targets = append(targets, row)
		}
	}

	if len(targets) == 0 || cleanForce || cleanDryRun {
		return targets, nil
	}

	// Confirm before removing, when there is a terminal to ask on
	if !tui.IsInteractive() {
		return targets, nil
	}

	confirmed := false
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Remove %d workspace(s) from %s?", len(targets), root)).
				Affirmative("Remove").
				Negative("Cancel").
				Value(&confirmed),
		),
	).WithTheme(huh.ThemeCharm())
	if err := form.Run(); err != nil {
		return nil, fmt.Errorf("confirmation prompt failed: %w", err)
	}
	if !confirmed {
		return nil, nil
	}
	return targets, nil
}

// pickTargets runs the interactive picker and maps the chosen items
// back to workspace rows.
func pickTargets(rows []workspaceRow) ([]workspaceRow, error) {
	if !tui.IsInteractive() {
		return nil, fmt.Errorf("interactive mode requires a terminal")
	}

	items := make([]tui.WorkspaceItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, tui.WorkspaceItem{
			Label:        row.Label,
			Branch:       row.Branch,
			Path:         row.Path,
			RepoRoot:     row.RepoRoot,
			Dirty:        row.Dirty,
			CommitsAhead: row.CommitsAhead,
			Missing:      row.Missing,
			LastRunAt:    row.LastRunAt,
		})
	}

	chosen, err := tui.RunPicker(items)
	if err != nil {
		return nil, err
	}
	if chosen == nil {
		return nil, nil
	}

	picked := make(map[string]bool, len(chosen))
	for _, item := range chosen {
		picked[item.Label] = true
	}

	targets := make([]workspaceRow, 0, len(chosen))
	for _, row := range rows {
		if picked[row.Label] {
			targets = append(targets, row)
		}
	}
	return targets, nil
}

// removeWorkspace removes one workspace: worktree plus branch for live
// ones, branch and registry leftovers for missing ones.
func removeWorkspace(ctx context.Context, g *git.Git, registry *state.Storage, root string, target workspaceRow) error {
	if target.Missing {
		if target.Branch != "" {
			if err := g.DeleteBranch(ctx, root, target.Branch); err != nil {
				log.WithError(err).Debugf("Branch %s already gone", target.Branch)
			}
		}
		removeRegistryEntry(registry, root, target.Label)
		return nil
	}

	if err := g.RemoveWorktreeAndBranch(ctx, root, target.Path, target.Branch); err != nil {
		return err
	}
	removeRegistryEntry(registry, root, target.Label)
	return nil
}

func removeRegistryEntry(registry *state.Storage, root, lbl string) {
	if registry == nil {
		return
	}
	if err := registry.RemoveSession(root, lbl); err != nil {
		log.WithError(err).Warnf("Failed to drop registry entry for '%s'", lbl)
	}
}
