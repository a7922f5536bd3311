package cli

import (
	"context"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/Didstopia/arborist/internal/git"
	"github.com/Didstopia/arborist/internal/label"
	"github.com/Didstopia/arborist/internal/state"
	"github.com/Didstopia/arborist/internal/tui"
)

var listAll bool

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List arborist workspaces",
	Long: `List arborist-managed workspaces of the current repository.

Shows each workspace's label, live status, last run time and worktree path.
Branches left behind after a worktree disappeared show up as missing.

With --all, retained workspaces recorded for every repository are listed
instead of inspecting the current one.`,
	RunE: runList,
}

func init() {
	listCmd.Flags().BoolVarP(&listAll, "all", "a", false, "List retained workspaces from all repositories")

	rootCmd.AddCommand(listCmd)
}

// workspaceRow is one arborist workspace as collected for list and
// clean: live worktree data merged with registry metadata.
type workspaceRow struct {
	Label        string
	Branch       string
	Path         string
	RepoRoot     string
	Dirty        bool
	CommitsAhead int
	Missing      bool
	LastRunAt    time.Time
}

func runList(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	g, err := git.New()
	if err != nil {
		return err
	}
	registry := openRegistry()

	var rows []workspaceRow
	if listAll {
		rows = collectRegisteredWorkspaces(ctx, g, registry)
	} else {
		info, err := g.Inspect(ctx, "")
		if err != nil {
			return err
		}
		rows, err = collectWorkspaces(ctx, g, registry, info.Root)
		if err != nil {
			return err
		}
	}

	if len(rows) == 0 {
		fmt.Println("No arborist workspaces found.")
		return nil
	}

	printWorkspaceTable(rows, listAll, stdoutIsTerminal())
	return nil
}

// collectWorkspaces gathers the arborist workspaces of one repository:
// live worktrees first, then orphaned branches and stale registry
// entries.
func collectWorkspaces(ctx context.Context, g *git.Git, registry *state.Storage, root string) ([]workspaceRow, error) {
	worktrees, err := g.ListWorktrees(ctx, root)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var rows []workspaceRow

	for _, wt := range worktrees {
		lbl, ok := label.FromBranch(wt.Branch)
		if !ok {
			continue
		}
		seen[lbl] = true

		row := workspaceRow{
			Label:    lbl,
			Branch:   wt.Branch,
			Path:     wt.Path,
			RepoRoot: root,
		}
		status, err := g.Status(ctx, wt.Path)
		if err != nil {
			// Unreadable status counts as dirty so clean won't touch it.
			log.WithError(err).Warnf("Failed to read status for workspace '%s'", lbl)
			row.Dirty = true
		} else {
			row.Dirty = status.HasChanges
			row.CommitsAhead = status.CommitsAhead
		}
		attachRegistryMetadata(registry, root, &row)
		rows = append(rows, row)
	}

	// Branches whose worktree is gone
	branches, err := g.ListBranches(ctx, root, label.BranchPrefix)
	if err != nil {
		return nil, err
	}
	for _, branch := range branches {
		lbl, ok := label.FromBranch(branch)
		if !ok || seen[lbl] {
			continue
		}
		seen[lbl] = true
		row := workspaceRow{
			Label:    lbl,
			Branch:   branch,
			RepoRoot: root,
			Missing:  true,
		}
		attachRegistryMetadata(registry, root, &row)
		rows = append(rows, row)
	}

	// Registry entries nothing above accounted for
	if registry != nil {
		for _, session := range registry.SessionsForRoot(root) {
			if seen[session.Label] {
				continue
			}
			rows = append(rows, workspaceRow{
				Label:     session.Label,
				Branch:    session.Branch,
				Path:      session.WorktreePath,
				RepoRoot:  root,
				Missing:   true,
				LastRunAt: session.LastRunAt,
			})
		}
	}

	sort.Slice(rows, func(i, j int) bool { return rows[i].Label < rows[j].Label })
	return rows, nil
}

// collectRegisteredWorkspaces lists every retained workspace the
// registry knows about, across repositories.
func collectRegisteredWorkspaces(ctx context.Context, g *git.Git, registry *state.Storage) []workspaceRow {
	if registry == nil {
		log.Warn("Session registry unavailable")
		return nil
	}

	var rows []workspaceRow
	for _, session := range registry.Sessions() {
		row := workspaceRow{
			Label:     session.Label,
			Branch:    session.Branch,
			Path:      session.WorktreePath,
			RepoRoot:  session.RepoRoot,
			LastRunAt: session.LastRunAt,
		}
		if _, err := os.Stat(session.WorktreePath); err != nil {
			row.Missing = true
		} else if status, err := g.Status(ctx, session.WorktreePath); err == nil {
			row.Dirty = status.HasChanges
			row.CommitsAhead = status.CommitsAhead
		}
		rows = append(rows, row)
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].RepoRoot != rows[j].RepoRoot {
			return rows[i].RepoRoot < rows[j].RepoRoot
		}
		return rows[i].Label < rows[j].Label
	})
	return rows
}

func attachRegistryMetadata(registry *state.Storage, root string, row *workspaceRow) {
	if registry == nil {
		return
	}
	if session := registry.FindSession(root, row.Label); session != nil {
		row.LastRunAt = session.LastRunAt
	}
}

// statusWord summarizes a row for display and for clean's skip
// messages.
func statusWord(row workspaceRow) string {
	switch {
	case row.Missing:
		return "missing"
	case row.Dirty:
		return "dirty"
	case row.CommitsAhead > 0:
		return "ahead"
	default:
		return "clean"
	}
}

func printWorkspaceTable(rows []workspaceRow, showRoot, styled bool) {
	styles := tui.GetStyles()
	caser := cases.Title(language.English)

	labelWidth := len("LABEL")
	for _, row := range rows {
		if len(row.Label) > labelWidth {
			labelWidth = len(row.Label)
		}
	}

	header := fmt.Sprintf("%-*s  %-8s  %-10s  %s", labelWidth, "LABEL", "STATUS", "LAST RUN", "PATH")
	if showRoot {
		header = fmt.Sprintf("%-*s  %-8s  %-10s  %s", labelWidth, "LABEL", "STATUS", "LAST RUN", "REPOSITORY : PATH")
	}
	if styled {
		header = styles.Muted.Bold(true).Render(header)
	}
	fmt.Println(header)

	for _, row := range rows {
		// Pad before styling so ANSI codes don't break alignment.
		status := fmt.Sprintf("%-8s", caser.String(statusWord(row)))
		if styled {
			switch {
			case row.Missing:
				status = styles.Error.Render(status)
			case row.Dirty:
				status = styles.Warning.Render(status)
			case row.CommitsAhead > 0:
				status = styles.Info.Render(status)
			default:
				status = styles.Success.Render(status)
			}
		}

		location := row.Path
		if showRoot {
			location = row.RepoRoot + " : " + row.Path
		}
		fmt.Printf("%-*s  %s  %-10s  %s\n", labelWidth, row.Label, status, formatAge(row.LastRunAt), location)
	}
}

func formatAge(at time.Time) string {
	if at.IsZero() {
		return "-"
	}
	age := time.Since(at)
	if age.Hours() < 24 {
		return fmt.Sprintf("%.0fh ago", age.Hours())
	}
	return fmt.Sprintf("%.0fd ago", age.Hours()/24)
}

func stdoutIsTerminal() bool {
	return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
}
