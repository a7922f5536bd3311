package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
)

// WorkspaceItem represents a retained workspace in the picker list
type WorkspaceItem struct {
	Label        string
	Branch       string
	Path         string
	RepoRoot     string
	Dirty        bool
	CommitsAhead int
	Missing      bool
	LastRunAt    time.Time

	selected bool
}

func (i WorkspaceItem) Title() string {
	name := i.Label
	if i.selected {
		name = "[x] " + name
	} else {
		name = "[ ] " + name
	}
	return name
}

func (i WorkspaceItem) Description() string {
	parts := []string{i.RepoRoot}

	if !i.LastRunAt.IsZero() {
		age := time.Since(i.LastRunAt)
		if age.Hours() < 24 {
			parts = append(parts, fmt.Sprintf("%.0fh ago", age.Hours()))
		} else {
			parts = append(parts, fmt.Sprintf("%.0fd ago", age.Hours()/24))
		}
	}

	if i.Missing {
		parts = append(parts, "missing")
	}
	if i.Dirty {
		parts = append(parts, "uncommitted changes")
	}
	if i.CommitsAhead > 0 {
		parts = append(parts, fmt.Sprintf("%d unpushed", i.CommitsAhead))
	}

	return strings.Join(parts, " | ")
}

func (i WorkspaceItem) FilterValue() string {
	return i.Label + " " + i.RepoRoot
}

// Picker is the interactive workspace selection model
type Picker struct {
	styles *Styles
	keys   KeyMap

	list  list.Model
	items []WorkspaceItem

	confirmed bool
	width     int
	height    int
}

// NewPicker creates a picker over the given workspaces
func NewPicker(items []WorkspaceItem) *Picker {
	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = GetStyles().ListSelected
	delegate.Styles.SelectedDesc = GetStyles().Muted
	delegate.Styles.NormalTitle = GetStyles().ListItem
	delegate.Styles.NormalDesc = GetStyles().Muted

	l := list.New([]list.Item{}, delegate, 60, 15)
	l.Title = "Select workspaces to remove"
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.SetShowHelp(false)
	l.Styles.Title = GetStyles().ListTitle

	p := &Picker{
		styles: GetStyles(),
		keys:   GetKeyMap(),
		list:   l,
		items:  items,
		width:  80,
		height: 24,
	}
	p.updateListItems()
	return p
}

// Selected returns the workspaces chosen before confirming.
// Returns nil when the picker was cancelled; confirming with nothing
// marked returns an empty non-nil slice.
func (p *Picker) Selected() []WorkspaceItem {
	if !p.confirmed {
		return nil
	}
	chosen := make([]WorkspaceItem, 0, len(p.items))
	for _, item := range p.items {
		if item.selected {
			chosen = append(chosen, item)
		}
	}
	return chosen
}

// Init initializes the picker
func (p *Picker) Init() tea.Cmd {
	return nil
}

// Update handles messages
func (p *Picker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		p.width = msg.Width
		p.height = msg.Height
		p.list.SetWidth(msg.Width - 4)
		p.list.SetHeight(msg.Height - 6)

	case tea.KeyMsg:
		// While the filter input is open, keys belong to the list.
		if p.list.FilterState() == list.Filtering {
			break
		}

		switch {
		case key.Matches(msg, p.keys.Toggle):
			if idx, ok := p.selectedIndex(); ok {
				p.items[idx].selected = !p.items[idx].selected
				p.updateListItems()
			}
			return p, nil

		case key.Matches(msg, p.keys.SelectAll):
			for i := range p.items {
				p.items[i].selected = true
			}
			p.updateListItems()
			return p, nil

		case key.Matches(msg, p.keys.SelectNone):
			for i := range p.items {
				p.items[i].selected = false
			}
			p.updateListItems()
			return p, nil

		case key.Matches(msg, p.keys.Copy):
			if idx, ok := p.selectedIndex(); ok {
				if err := clipboard.WriteAll(p.items[idx].Path); err != nil {
					return p, p.list.NewStatusMessage(p.styles.Error.Render("Copy failed: " + err.Error()))
				}
				return p, p.list.NewStatusMessage(p.styles.Success.Render("Copied path to clipboard"))
			}
			return p, nil

		case key.Matches(msg, p.keys.Select):
			p.confirmed = true
			return p, tea.Quit

		case key.Matches(msg, p.keys.Back), key.Matches(msg, p.keys.Quit):
			p.confirmed = false
			return p, tea.Quit
		}
	}

	var cmd tea.Cmd
	p.list, cmd = p.list.Update(msg)
	cmds = append(cmds, cmd)

	return p, tea.Batch(cmds...)
}

// View renders the picker
func (p *Picker) View() string {
	var content strings.Builder

	content.WriteString(p.list.View())
	content.WriteString("\n")
	content.WriteString(p.footerView())

	return p.styles.App.Render(content.String())
}

// selectedIndex maps the list cursor back to the items slice, which
// may diverge from the visible list while a filter is applied.
func (p *Picker) selectedIndex() (int, bool) {
	item, ok := p.list.SelectedItem().(WorkspaceItem)
	if !ok {
		return 0, false
	}
	for i := range p.items {
		if p.items[i].Path == item.Path {
			return i, true
		}
	}
	return 0, false
}

func (p *Picker) updateListItems() {
	items := make([]list.Item, 0, len(p.items))
	for _, item := range p.items {
		items = append(items, item)
	}
	p.list.SetItems(items)
}

func (p *Picker) footerView() string {
	var helpItems []string
	for _, binding := range p.keys.ShortHelp() {
		if binding.Enabled() {
			help := p.styles.HelpKey.Render(binding.Help().Key) + " " +
				p.styles.HelpValue.Render(binding.Help().Desc)
			helpItems = append(helpItems, help)
		}
	}

	quitHelp := p.styles.HelpKey.Render("q") + " " + p.styles.HelpValue.Render("quit")
	helpItems = append(helpItems, quitHelp)

	return p.styles.Footer.Width(p.width - 4).Render(strings.Join(helpItems, "  "))
}

// RunPicker runs the picker and returns the chosen workspaces.
// A nil slice with a nil error means the user cancelled.
func RunPicker(items []WorkspaceItem) ([]WorkspaceItem, error) {
	picker := NewPicker(items)
	model, err := tea.NewProgram(picker).Run()
	if err != nil {
		return nil, fmt.Errorf("running workspace picker: %w", err)
	}
	final, ok := model.(*Picker)
	if !ok {
		return nil, nil
	}
	return final.Selected(), nil
}
