package accounts

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/mailsettings/internal/model"
	"github.com/nhle/mailsettings/internal/theme"
)

// AccountItem wraps a model.Account so it can be used in a bubbles/list.
type AccountItem struct {
	Account model.Account
	Default bool
}

// FilterValue returns the string used for fuzzy filtering.
func (i AccountItem) FilterValue() string { return i.Account.Name + " " + i.Account.Address }

// Title returns the account label.
func (i AccountItem) Title() string { return i.Account.Name }

// Description returns the address and incoming protocol.
func (i AccountItem) Description() string {
	return fmt.Sprintf("%s | %s", i.Account.Address, i.Account.Incoming.Type)
}

// ItemDelegate renders one account per line.
type ItemDelegate struct{}

// Height returns the number of lines each item takes.
func (d ItemDelegate) Height() int { return 1 }

// Spacing returns the number of blank lines between items.
func (d ItemDelegate) Spacing() int { return 0 }

// Update handles per-item messages.
func (d ItemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd {
	return nil
}

// Render draws a single account line.
func (d ItemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(AccountItem)
	if !ok {
		return
	}

	style := theme.ListItemStyle
	if index == m.Index() {
		style = theme.SelectedItemStyle
	}

	badge := "  "
	if it.Default {
		badge = theme.DefaultBadgeStyle.Render("★") + " "
	}

	line := fmt.Sprintf("%s  %s", it.Title(), theme.HelpStyle.Render(it.Description()))
	fmt.Fprint(w, badge+style.Render(line))
}
