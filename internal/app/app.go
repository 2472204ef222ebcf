// Package app hosts the root Bubble Tea model. It owns the navigation stack
// and routes every message to the view on top of it.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	gologme "github.com/gologme/log"

	"github.com/nhle/mailsettings/internal/keys"
	"github.com/nhle/mailsettings/internal/logging"
	"github.com/nhle/mailsettings/internal/model"
	"github.com/nhle/mailsettings/internal/setup"
	appsync "github.com/nhle/mailsettings/internal/sync"
	"github.com/nhle/mailsettings/internal/ui"
	"github.com/nhle/mailsettings/internal/ui/accounts"
	"github.com/nhle/mailsettings/internal/ui/detail"
	helpview "github.com/nhle/mailsettings/internal/ui/help"
	"github.com/nhle/mailsettings/internal/ui/nav"
	"github.com/nhle/mailsettings/internal/ui/wizard"
)

// Validator starts account validations and reports their results on
// Responses.
type Validator interface {
	setup.Validator
	Responses() <-chan model.ValidationResponse
}

// AccountService is the account storage shared by all views.
type AccountService interface {
	setup.AccountStore
	accounts.Service
	detail.Service
}

// Deps are the services the views run on.
type Deps struct {
	Validator Validator
	Providers setup.ProviderResolver
	Accounts  AccountService
	Logger    *gologme.Logger
}

// Model is the root Bubble Tea model that manages the view stack, layout
// and the validation response relay.
type Model struct {
	ctx      context.Context
	deps     Deps
	keys     *keys.KeyMap
	stack    nav.Stack
	layout   ui.Layout
	help     helpview.Model
	showHelp bool
	relay    *appsync.Relay
	flash    string
	ready    bool
}

// New creates the root model with the account list as the bottom view.
func New(ctx context.Context, deps Deps) Model {
	if deps.Logger == nil {
		deps.Logger = logging.Discard()
	}
	k := keys.DefaultKeyMap()

	m := Model{
		ctx:   ctx,
		deps:  deps,
		keys:  k,
		help:  helpview.New(k, 80, 24),
		relay: appsync.New(deps.Validator.Responses()),
	}
	m.stack.Push(accounts.New(ctx, deps.Accounts, m.factories(), k, 80, 22))
	return m
}

// factories builds the views reachable from the account list. Views are
// created unsized; the push handler sends them the current size.
func (m Model) factories() accounts.Factories {
	ctx, deps, k := m.ctx, m.deps, m.keys
	return accounts.Factories{
		NewSetup: func() nav.View {
			flow := setup.New(deps.Validator, deps.Providers, deps.Accounts, setup.WithLogger(deps.Logger))
			return wizard.New(ctx, flow, k, 0, 0)
		},
		OpenDetail: func(id string) nav.View {
			return detail.New(ctx, deps.Accounts, id, k, 0, 0)
		},
	}
}

// Init starts the response relay and loads the account list.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.relay.Start(), m.stack.Top().Init())
}

// Update handles global messages and dispatches everything else to the
// top view.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = ui.NewLayout(msg.Width, msg.Height)
		m.ready = true
		m.help.SetSize(m.layout.ContentWidth(), m.layout.ContentHeight())
		return m, m.resizeTop()

	case appsync.ResponseMsg:
		// Only the setup view waits for responses. A response arriving after
		// it was closed is dropped by whichever view is on top.
		stats := m.relay.Stats()
		m.deps.Logger.Debugf("response for handle %d, code %d (%d relayed, last at %s)",
			msg.Response.Handle, msg.Response.Code, stats.Delivered, stats.LastAt.Format(time.TimeOnly))
		cmd := m.updateTop(msg)
		return m, tea.Batch(cmd, m.relay.WaitForNextResult())

	case nav.PushMsg:
		m.flash = ""
		m.stack.Push(msg.View)
		return m, tea.Batch(msg.View.Init(), m.resizeTop())

	case nav.ReplaceMsg:
		m.stack.SetTop(msg.View)
		return m, tea.Batch(msg.View.Init(), m.resizeTop())

	case nav.PopMsg:
		m.stack.Pop()
		if m.stack.Len() == 0 {
			return m, tea.Quit
		}
		cmd := m.updateTop(nav.ResumedMsg{})
		return m, tea.Batch(cmd, m.resizeTop())

	case wizard.AccountAddedMsg:
		m.deps.Logger.Infof("account %s added for %s", msg.ID, msg.Address)
		m.flash = fmt.Sprintf("Added %s", msg.Address)
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.showHelp {
			if key.Matches(msg, m.keys.Help, m.keys.Back, m.keys.Quit) {
				m.showHelp = false
			}
			return m, nil
		}
		if !m.capturesInput() {
			switch {
			case key.Matches(msg, m.keys.Quit):
				return m, tea.Quit
			case key.Matches(msg, m.keys.Help):
				m.showHelp = true
				return m, nil
			}
		}
	}

	return m, m.updateTop(msg)
}

// updateTop delivers msg to the top view and stores the updated view.
func (m *Model) updateTop(msg tea.Msg) tea.Cmd {
	top := m.stack.Top()
	if top == nil {
		return nil
	}
	next, cmd := top.Update(msg)
	m.stack.SetTop(next)
	return cmd
}

// resizeTop tells the top view how much room it has.
func (m *Model) resizeTop() tea.Cmd {
	if !m.ready {
		return nil
	}
	return m.updateTop(tea.WindowSizeMsg{
		Width:  m.layout.ContentWidth(),
		Height: m.layout.ContentHeight(),
	})
}

func (m Model) capturesInput() bool {
	c, ok := m.stack.Top().(nav.InputCapturer)
	return ok && c.CapturesInput()
}

// View renders the frame around the top view.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	top := m.stack.Top()
	if top == nil {
		return ""
	}

	frame := ui.Frame{Crumbs: m.stack.Titles(), Flash: m.flash, Hints: top.Hints()}
	if m.showHelp {
		frame.Crumbs = append(frame.Crumbs, "Help")
		frame.Hints = "? close help"
		return m.layout.Render(frame, m.help.View())
	}
	return m.layout.Render(frame, top.View())
}
