// Package accounts is the account list view.
package accounts

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/mailsettings/internal/keys"
	"github.com/nhle/mailsettings/internal/model"
	"github.com/nhle/mailsettings/internal/theme"
	"github.com/nhle/mailsettings/internal/ui/nav"
)

// Service is the account storage used by the list.
type Service interface {
	List(ctx context.Context) ([]model.Account, error)
	DefaultID(ctx context.Context) (string, error)
	SetDefault(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}

// Factories builds the views the list navigates to.
type Factories struct {
	NewSetup   func() nav.View
	OpenDetail func(id string) nav.View
}

// accountsLoadedMsg is sent when accounts have been loaded from the service.
type accountsLoadedMsg struct {
	accounts  []model.Account
	defaultID string
	err       error
}

// actionDoneMsg is sent after a mutation finished.
type actionDoneMsg struct {
	status string
	err    error
}

// Model is the account list view.
type Model struct {
	ctx     context.Context
	service Service
	views   Factories
	keys    *keys.KeyMap

	list      list.Model
	defaultID string
	loaded    bool
	status    string
	statusErr bool

	confirm       *huh.Form
	confirmDelete *bool
	pendingDelete model.Account

	width, height int
}

// New creates the account list view.
func New(ctx context.Context, s Service, views Factories, k *keys.KeyMap, width, height int) Model {
	l := list.New([]list.Item{}, ItemDelegate{}, width, height-2)
	l.Title = "Accounts"
	l.SetShowTitle(false)
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.DisableQuitKeybindings()

	return Model{
		ctx:           ctx,
		service:       s,
		views:         views,
		keys:          k,
		list:          l,
		confirmDelete: new(bool),
		width:         width,
		height:        height,
	}
}

// Init loads the accounts.
func (m Model) Init() tea.Cmd {
	return m.Load()
}

// Title implements nav.View.
func (m Model) Title() string { return "Accounts" }

// Hints implements nav.View.
func (m Model) Hints() string {
	if m.confirm != nil {
		return "←/→ choose  enter confirm"
	}
	return "a add  enter open  s set default  d delete  ? help  q quit"
}

// CapturesInput implements nav.InputCapturer.
func (m Model) CapturesInput() bool { return m.confirm != nil }

// Update handles messages for the account list.
func (m Model) Update(msg tea.Msg) (nav.View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.list.SetSize(msg.Width, msg.Height-2)
		return m, nil

	case nav.ResumedMsg:
		return m, m.Load()

	case accountsLoadedMsg:
		if msg.err != nil {
			m.setStatus(fmt.Sprintf("Error loading accounts: %v", msg.err), true)
			return m, nil
		}
		m.loaded = true
		m.defaultID = msg.defaultID
		items := make([]list.Item, len(msg.accounts))
		for i, a := range msg.accounts {
			items[i] = AccountItem{Account: a, Default: a.ID == msg.defaultID}
		}
		return m, m.list.SetItems(items)

	case actionDoneMsg:
		if msg.err != nil {
			m.setStatus(msg.err.Error(), true)
			return m, m.Load()
		}
		m.setStatus(msg.status, false)
		return m, m.Load()

	case tea.KeyMsg:
		if m.confirm != nil {
			return m.updateConfirm(msg)
		}
		return m.handleKeys(msg)
	}

	if m.confirm != nil {
		return m.updateConfirm(msg)
	}
	return m, nil
}

func (m Model) handleKeys(msg tea.KeyMsg) (nav.View, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Down):
		m.list.CursorDown()
		return m, nil

	case key.Matches(msg, m.keys.Up):
		m.list.CursorUp()
		return m, nil

	case key.Matches(msg, m.keys.Add):
		if m.views.NewSetup == nil {
			return m, nil
		}
		m.status = ""
		return m, nav.Push(m.views.NewSetup())

	case key.Matches(msg, m.keys.Select):
		acc, ok := m.selected()
		if !ok || m.views.OpenDetail == nil {
			return m, nil
		}
		m.status = ""
		return m, nav.Push(m.views.OpenDetail(acc.ID))

	case key.Matches(msg, m.keys.SetDefault):
		acc, ok := m.selected()
		if !ok || acc.ID == m.defaultID {
			return m, nil
		}
		return m, m.setDefault(acc)

	case key.Matches(msg, m.keys.Delete):
		acc, ok := m.selected()
		if !ok {
			return m, nil
		}
		m.pendingDelete = acc
		*m.confirmDelete = false
		m.confirm = m.buildDeleteConfirmForm(acc)
		return m, m.confirm.Init()
	}
	return m, nil
}

func (m Model) buildDeleteConfirmForm(acc model.Account) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Delete account %q?", acc.Name)).
				Description("Server settings and saved passwords for " +
					acc.Address + " will be removed.").
				Affirmative("Yes, delete").
				Negative("Cancel").
				Value(m.confirmDelete),
		),
	).WithShowHelp(false).WithWidth(min(m.width-4, 60))
}

func (m Model) updateConfirm(msg tea.Msg) (nav.View, tea.Cmd) {
	if km, ok := msg.(tea.KeyMsg); ok && key.Matches(km, m.keys.Back) {
		m.confirm = nil
		return m, nil
	}

	mdl, cmd := m.confirm.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.confirm = f
	}

	switch m.confirm.State {
	case huh.StateCompleted:
		m.confirm = nil
		if *m.confirmDelete {
			return m, m.deleteAccount(m.pendingDelete)
		}
		return m, nil
	case huh.StateAborted:
		m.confirm = nil
		return m, nil
	}
	return m, cmd
}

// Load returns a command that reads the accounts and the default account.
func (m Model) Load() tea.Cmd {
	ctx, s := m.ctx, m.service
	return func() tea.Msg {
		accounts, err := s.List(ctx)
		if err != nil {
			return accountsLoadedMsg{err: err}
		}
		defaultID, err := s.DefaultID(ctx)
		if err != nil {
			return accountsLoadedMsg{err: err}
		}
		return accountsLoadedMsg{accounts: accounts, defaultID: defaultID}
	}
}

func (m Model) setDefault(acc model.Account) tea.Cmd {
	ctx, s := m.ctx, m.service
	return func() tea.Msg {
		if err := s.SetDefault(ctx, acc.ID); err != nil {
			return actionDoneMsg{err: fmt.Errorf("setting default account: %w", err)}
		}
		return actionDoneMsg{status: fmt.Sprintf("%s is now the default account", acc.Name)}
	}
}

func (m Model) deleteAccount(acc model.Account) tea.Cmd {
	ctx, s := m.ctx, m.service
	return func() tea.Msg {
		if err := s.Delete(ctx, acc.ID); err != nil {
			return actionDoneMsg{err: fmt.Errorf("deleting account: %w", err)}
		}
		return actionDoneMsg{status: fmt.Sprintf("Account %q deleted", acc.Name)}
	}
}

func (m Model) selected() (model.Account, bool) {
	it, ok := m.list.SelectedItem().(AccountItem)
	if !ok {
		return model.Account{}, false
	}
	return it.Account, true
}

func (m *Model) setStatus(text string, isErr bool) {
	m.status = text
	m.statusErr = isErr
}

// View renders the list, or the delete confirmation.
func (m Model) View() string {
	if m.confirm != nil {
		return lipgloss.NewStyle().Padding(1, 2).Render(m.confirm.View())
	}

	var body string
	switch {
	case !m.loaded:
		body = theme.HelpStyle.Render("Loading accounts...")
	case len(m.list.Items()) == 0:
		body = lipgloss.NewStyle().
			Foreground(theme.ColorGray).
			Italic(true).
			Render("No accounts configured.\nPress 'a' to add an account.")
	default:
		body = m.list.View()
	}

	if m.status == "" {
		return body
	}
	style := theme.SuccessStyle
	if m.statusErr {
		style = theme.ErrorStyle
	}
	return lipgloss.JoinVertical(lipgloss.Left, body, "", style.Render(m.status))
}

// Count returns the number of listed accounts.
func (m Model) Count() int { return len(m.list.Items()) }
