// Package wizard is the account setup view. It turns form submissions and
// validation responses into setup workflow intents and renders the step
// the workflow is in.
package wizard

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/mailsettings/internal/keys"
	"github.com/nhle/mailsettings/internal/model"
	"github.com/nhle/mailsettings/internal/setup"
	appsync "github.com/nhle/mailsettings/internal/sync"
	"github.com/nhle/mailsettings/internal/theme"
	"github.com/nhle/mailsettings/internal/ui/nav"
)

// AccountAddedMsg is emitted after the new account has been saved.
type AccountAddedMsg struct {
	ID      string
	Address string
}

// fields holds the values huh binds to. It lives behind a pointer so the
// bindings survive Bubble Tea copying the model.
type fields struct {
	address  string
	password string
	manual   bool

	serverType string

	inHost     string
	inPort     string
	inSecurity string
	inUser     string

	outHost     string
	outPort     string
	outSecurity string

	accountName string
	displayName string
}

// Model is the Bubble Tea model for the account setup view.
type Model struct {
	ctx  context.Context
	flow *setup.Workflow
	keys *keys.KeyMap

	f        *fields
	form     *huh.Form
	screen   setup.State
	spinner  spinner.Model
	spinning bool
	status   string

	width, height int
}

// New creates a setup view driving flow.
func New(ctx context.Context, flow *setup.Workflow, k *keys.KeyMap, width, height int) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot

	d := flow.Draft()
	m := Model{
		ctx:     ctx,
		flow:    flow,
		keys:    k,
		f:       &fields{address: d.Address, password: d.Password},
		screen:  flow.State(),
		spinner: sp,
		width:   width,
		height:  height,
	}
	m.form = m.buildForm(m.screen)
	return m
}

// Init starts the first form.
func (m Model) Init() tea.Cmd {
	if m.form == nil {
		return nil
	}
	return m.form.Init()
}

// Title implements nav.View.
func (m Model) Title() string { return "Add account" }

// Hints implements nav.View.
func (m Model) Hints() string {
	switch m.flow.State() {
	case setup.StateValidating, setup.StateRetrying:
		return "esc cancel"
	case setup.StateFailed:
		return "r try again  esc cancel"
	default:
		return "enter next  tab move  esc cancel"
	}
}

// CapturesInput implements nav.InputCapturer. Forms consume every key.
func (m Model) CapturesInput() bool { return m.form != nil }

// Update maps messages to workflow intents.
func (m Model) Update(msg tea.Msg) (nav.View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.form != nil {
			m.form = m.form.WithWidth(m.formWidth())
		}
		return m, nil

	case appsync.ResponseMsg:
		err := m.flow.Dispatch(m.ctx, setup.ResponseIntent(msg.Response))
		return m.afterDispatch(err, false)

	case spinner.TickMsg:
		if !m.flow.State().Busy() {
			m.spinning = false
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Back) {
			err := m.flow.Dispatch(m.ctx, setup.CancelPressed{})
			return m.afterDispatch(err, false)
		}
		if m.flow.State() == setup.StateFailed && msg.String() == "r" {
			err := m.flow.Dispatch(m.ctx, setup.ResetPressed{})
			return m.afterDispatch(err, true)
		}
	}

	if m.form == nil {
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		err := m.submit()
		return m.afterDispatch(err, true)
	case huh.StateAborted:
		err := m.flow.Dispatch(m.ctx, setup.CancelPressed{})
		return m.afterDispatch(err, false)
	}
	return m, cmd
}

// submit dispatches the intents for the completed form of the current
// screen.
func (m *Model) submit() error {
	f := m.f
	switch m.screen {
	case setup.StateCollectingInput:
		if err := m.flow.Dispatch(m.ctx, setup.FieldChanged{Field: setup.FieldAddress, Value: f.address}); err != nil {
			return err
		}
		if err := m.flow.Dispatch(m.ctx, setup.FieldChanged{Field: setup.FieldPassword, Value: f.password}); err != nil {
			return err
		}
		if f.manual {
			return m.flow.Dispatch(m.ctx, setup.ManualSetupPressed{})
		}
		return m.flow.Dispatch(m.ctx, setup.SubmitPressed{})

	case setup.StateChoosingServerType:
		return m.flow.Dispatch(m.ctx, setup.ServerTypeChosen{Type: model.ServerType(f.serverType)})

	case setup.StateManualEntry:
		d := m.flow.Draft()
		in := model.ServerProfile{
			Type:     d.Incoming.Type,
			Host:     strings.TrimSpace(f.inHost),
			Port:     parsePort(f.inPort),
			Security: model.Security(f.inSecurity),
			UserName: strings.TrimSpace(f.inUser),
		}
		out := model.ServerProfile{
			Type:     model.ServerTypeSMTP,
			Host:     strings.TrimSpace(f.outHost),
			Port:     parsePort(f.outPort),
			Security: model.Security(f.outSecurity),
		}
		return m.flow.Dispatch(m.ctx, setup.ManualServersSubmitted{Incoming: in, Outgoing: out})

	case setup.StateSucceeded:
		return m.flow.Dispatch(m.ctx, setup.DetailsSubmitted{
			AccountName: f.accountName,
			DisplayName: f.displayName,
		})
	}
	return setup.ErrUnexpectedIntent
}

// afterDispatch brings the view in line with the workflow state. A form is
// rebuilt when the step changed or when rebuild is set, since a completed
// huh form does not accept further input.
func (m Model) afterDispatch(err error, rebuild bool) (nav.View, tea.Cmd) {
	m.status = setup.UserMessage(err)

	state := m.flow.State()
	switch state {
	case setup.StateCancelled:
		return m, nav.Pop()
	case setup.StateSaved:
		added := AccountAddedMsg{ID: m.flow.AccountID(), Address: m.flow.Draft().Address}
		return m, tea.Batch(nav.Pop(), func() tea.Msg { return added })
	}

	if state == m.screen && !rebuild {
		return m, nil
	}
	m.screen = state

	if state.Busy() {
		m.form = nil
		if m.spinning {
			return m, nil
		}
		m.spinning = true
		return m, m.spinner.Tick
	}

	m.prefill(state)
	m.form = m.buildForm(state)
	if m.form == nil {
		return m, nil
	}
	return m, m.form.Init()
}

// prefill copies draft values into the form fields for state.
func (m *Model) prefill(state setup.State) {
	d := m.flow.Draft()
	f := m.f
	switch state {
	case setup.StateChoosingServerType:
		if f.serverType == "" {
			f.serverType = string(model.ServerTypeIMAP)
		}
	case setup.StateManualEntry:
		f.inHost = d.Incoming.Host
		f.inPort = portString(d.Incoming.Port)
		f.inSecurity = string(d.Incoming.Security)
		f.inUser = d.UserName
		f.outHost = d.Outgoing.Host
		f.outPort = portString(d.Outgoing.Port)
		f.outSecurity = string(d.Outgoing.Security)
	case setup.StateSucceeded:
		f.accountName = d.AccountName
		f.displayName = d.DisplayName
	}
}

func (m Model) buildForm(state setup.State) *huh.Form {
	f := m.f
	var group *huh.Group

	switch state {
	case setup.StateCollectingInput:
		group = huh.NewGroup(
			huh.NewInput().
				Title("Email address").
				Placeholder("you@example.com").
				Value(&f.address),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&f.password),
			huh.NewConfirm().
				Title("Server setup").
				Affirmative("Manual").
				Negative("Automatic").
				Value(&f.manual),
		)

	case setup.StateChoosingServerType:
		group = huh.NewGroup(
			huh.NewSelect[string]().
				Title("Account type").
				Description("No settings are known for this domain").
				Options(
					huh.NewOption("IMAP", string(model.ServerTypeIMAP)),
					huh.NewOption("POP3", string(model.ServerTypePOP3)),
				).
				Value(&f.serverType),
		)

	case setup.StateManualEntry:
		group = huh.NewGroup(
			huh.NewInput().Title("Incoming server").Value(&f.inHost),
			huh.NewInput().Title("Incoming port").Value(&f.inPort).Validate(validatePort),
			securitySelect("Incoming security", &f.inSecurity),
			huh.NewInput().Title("User name").Value(&f.inUser),
			huh.NewInput().Title("Outgoing server").Value(&f.outHost),
			huh.NewInput().Title("Outgoing port").Value(&f.outPort).Validate(validatePort),
			securitySelect("Outgoing security", &f.outSecurity),
		)

	case setup.StateSucceeded:
		group = huh.NewGroup(
			huh.NewInput().
				Title("Account name").
				Description("Shown in the account list").
				Value(&f.accountName),
			huh.NewInput().
				Title("Your name").
				Description("Shown on outgoing mail").
				Value(&f.displayName),
		)

	default:
		return nil
	}

	return huh.NewForm(group).WithShowHelp(false).WithWidth(m.formWidth())
}

func securitySelect(title string, value *string) *huh.Select[string] {
	return huh.NewSelect[string]().
		Title(title).
		Options(
			huh.NewOption("SSL/TLS", string(model.SecuritySSL)),
			huh.NewOption("STARTTLS", string(model.SecurityStartTLS)),
			huh.NewOption("None", string(model.SecurityNone)),
		).
		Value(value)
}

// View renders the current step.
func (m Model) View() string {
	var sections []string

	switch state := m.flow.State(); {
	case state.Busy():
		text := "Checking server settings..."
		if state == setup.StateRetrying {
			text = "Trying again with user name " + m.flow.Draft().UserName + "..."
		}
		sections = append(sections, m.spinner.View()+" "+text)

	case state == setup.StateFailed:
		sections = append(sections,
			theme.ErrorStyle.Render(m.status),
			"",
			theme.HelpStyle.Render("Press r to change your details or esc to cancel."),
		)

	default:
		if state == setup.StateSucceeded && m.flow.Warning() {
			sections = append(sections,
				theme.WarningStyle.Render("Incoming mail works, but the outgoing server could not be verified."),
				"",
			)
		}
		if m.form != nil {
			sections = append(sections, m.form.View())
		}
		if m.status != "" {
			sections = append(sections, "", theme.ErrorStyle.Render(m.status))
		}
	}

	return lipgloss.NewStyle().
		Padding(1, 2).
		Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
}

func (m Model) formWidth() int {
	w := m.width - 8
	if w > 72 {
		w = 72
	}
	if w < 20 {
		w = 20
	}
	return w
}

func validatePort(s string) error {
	if parsePort(s) == 0 {
		return fmt.Errorf("port must be a number between 1 and 65535")
	}
	return nil
}

func parsePort(s string) int {
	p, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || p <= 0 || p > 65535 {
		return 0
	}
	return p
}

func portString(p int) string {
	if p == 0 {
		return ""
	}
	return strconv.Itoa(p)
}
