package detail

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	humanize "github.com/dustin/go-humanize"

	"github.com/nhle/mailsettings/internal/keys"
	"github.com/nhle/mailsettings/internal/model"
	"github.com/nhle/mailsettings/internal/theme"
	"github.com/nhle/mailsettings/internal/ui/nav"
)

// Service reads and edits one account.
type Service interface {
	Get(ctx context.Context, id string) (*model.Account, error)
	UpdateDetails(ctx context.Context, id, name, displayName string) error
	UpdateNotification(ctx context.Context, id string, n model.NotificationSettings) error
	UpdateSignature(ctx context.Context, id string, sig model.SignatureSettings) error
}

// Mode is the editor shown by the detail view.
type Mode int

const (
	ModeView Mode = iota
	ModeEditDetails
	ModeEditNotification
	ModeEditSignature
)

// AccountLoadedMsg carries the loaded account.
type AccountLoadedMsg struct {
	Account *model.Account
	Err     error
}

// savedMsg is sent after an edit was written.
type savedMsg struct {
	what string
	err  error
}

// values holds the form bindings.
type values struct {
	name        string
	displayName string

	notifyEnabled bool
	notifyVibrate bool
	notifyBadge   bool
	ringtone      string

	signatureEnabled bool
	signatureText    string
}

// Model is the account detail view.
type Model struct {
	ctx     context.Context
	service Service
	keys    *keys.KeyMap
	id      string

	account  *model.Account
	viewport viewport.Model
	mode     Mode
	form     *huh.Form
	v        *values

	status    string
	statusErr bool

	width  int
	height int
}

// New creates a detail view for the account with id.
func New(ctx context.Context, s Service, id string, k *keys.KeyMap, width, height int) Model {
	vp := viewport.New(width, height-2)
	vp.Style = lipgloss.NewStyle()

	return Model{
		ctx:      ctx,
		service:  s,
		keys:     k,
		id:       id,
		viewport: vp,
		v:        &values{},
		width:    width,
		height:   height,
	}
}

// Init loads the account.
func (m Model) Init() tea.Cmd {
	return m.load()
}

// Title implements nav.View.
func (m Model) Title() string {
	if m.account == nil {
		return "Account"
	}
	return m.account.Name
}

// Hints implements nav.View.
func (m Model) Hints() string {
	if m.form != nil {
		return "enter next  esc discard"
	}
	return "e names  n notifications  g signature  esc back"
}

// CapturesInput implements nav.InputCapturer.
func (m Model) CapturesInput() bool { return m.form != nil }

// Mode returns the editor being shown.
func (m Model) Mode() Mode { return m.mode }

// Update handles messages for the detail view.
func (m Model) Update(msg tea.Msg) (nav.View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case AccountLoadedMsg:
		if msg.Err != nil {
			m.setStatus(fmt.Sprintf("Error loading account: %v", msg.Err), true)
			return m, nil
		}
		m.account = msg.Account
		m.viewport.SetContent(m.renderContent())
		m.viewport.GotoTop()
		return m, nil

	case savedMsg:
		if msg.err != nil {
			m.setStatus(fmt.Sprintf("Error saving %s: %v", msg.what, msg.err), true)
			return m, nil
		}
		m.setStatus(strings.ToUpper(msg.what[:1])+msg.what[1:]+" saved", false)
		return m, m.load()

	case tea.KeyMsg:
		if m.form != nil {
			if key.Matches(msg, m.keys.Back) {
				m.closeForm()
				return m, nil
			}
			return m.updateForm(msg)
		}
		return m.handleKeys(msg)
	}

	if m.form != nil {
		return m.updateForm(msg)
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) handleKeys(msg tea.KeyMsg) (nav.View, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		return m, nav.Pop()
	}

	if m.account == nil {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.EditDetails):
		return m.openForm(ModeEditDetails)
	case key.Matches(msg, m.keys.EditNotification):
		return m.openForm(ModeEditNotification)
	case key.Matches(msg, m.keys.EditSignature):
		return m.openForm(ModeEditSignature)
	}

	// Delegate to viewport for scrolling (j/k, up/down, pgup/pgdn)
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) openForm(mode Mode) (nav.View, tea.Cmd) {
	a := m.account
	*m.v = values{
		name:             a.Name,
		displayName:      a.DisplayName,
		notifyEnabled:    a.Notification.Enabled,
		notifyVibrate:    a.Notification.Vibrate,
		notifyBadge:      a.Notification.Badge,
		ringtone:         a.Notification.Ringtone,
		signatureEnabled: a.Signature.Enabled,
		signatureText:    a.Signature.Text,
	}

	m.mode = mode
	m.status = ""
	m.form = m.buildForm(mode)
	return m, m.form.Init()
}

func (m Model) buildForm(mode Mode) *huh.Form {
	v := m.v
	var group *huh.Group

	switch mode {
	case ModeEditDetails:
		group = huh.NewGroup(
			huh.NewInput().
				Title("Account name").
				Value(&v.name).
				Validate(validateRequired("Account name")),
			huh.NewInput().
				Title("Your name").
				Description("Shown on outgoing mail").
				Value(&v.displayName),
		)
	case ModeEditNotification:
		group = huh.NewGroup(
			huh.NewConfirm().Title("Notify on new mail").Value(&v.notifyEnabled),
			huh.NewConfirm().Title("Vibrate").Value(&v.notifyVibrate),
			huh.NewConfirm().Title("Show badge").Value(&v.notifyBadge),
			huh.NewInput().
				Title("Ringtone").
				Placeholder("default").
				Value(&v.ringtone),
		)
	default:
		group = huh.NewGroup(
			huh.NewConfirm().Title("Append signature").Value(&v.signatureEnabled),
			huh.NewText().
				Title("Signature").
				CharLimit(1000).
				Value(&v.signatureText),
		)
	}

	return huh.NewForm(group).WithShowHelp(false).WithWidth(min(m.width-4, 72))
}

func (m Model) updateForm(msg tea.Msg) (nav.View, tea.Cmd) {
	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		save := m.save(m.mode)
		m.closeForm()
		return m, save
	case huh.StateAborted:
		m.closeForm()
		return m, nil
	}
	return m, cmd
}

func (m *Model) closeForm() {
	m.form = nil
	m.mode = ModeView
}

// save returns a command writing the edited values for mode.
func (m Model) save(mode Mode) tea.Cmd {
	ctx, s, id := m.ctx, m.service, m.id
	v := *m.v

	switch mode {
	case ModeEditDetails:
		return func() tea.Msg {
			return savedMsg{what: "details", err: s.UpdateDetails(ctx, id, v.name, v.displayName)}
		}
	case ModeEditNotification:
		n := model.NotificationSettings{
			Enabled:  v.notifyEnabled,
			Vibrate:  v.notifyVibrate,
			Ringtone: strings.TrimSpace(v.ringtone),
			Badge:    v.notifyBadge,
		}
		return func() tea.Msg {
			return savedMsg{what: "notification settings", err: s.UpdateNotification(ctx, id, n)}
		}
	case ModeEditSignature:
		sig := model.SignatureSettings{
			Enabled: v.signatureEnabled,
			Text:    strings.TrimRight(v.signatureText, " \n"),
		}
		return func() tea.Msg {
			return savedMsg{what: "signature", err: s.UpdateSignature(ctx, id, sig)}
		}
	}
	return nil
}

func (m Model) load() tea.Cmd {
	ctx, s, id := m.ctx, m.service, m.id
	return func() tea.Msg {
		a, err := s.Get(ctx, id)
		return AccountLoadedMsg{Account: a, Err: err}
	}
}

func (m *Model) setStatus(text string, isErr bool) {
	m.status = text
	m.statusErr = isErr
}

// View renders the detail view.
func (m Model) View() string {
	if m.form != nil {
		return lipgloss.NewStyle().Padding(1, 2).Render(m.form.View())
	}

	var body string
	if m.account == nil {
		body = lipgloss.NewStyle().
			Width(m.width).
			Align(lipgloss.Center).
			Foreground(theme.ColorGray).
			Render("Loading account...")
	} else {
		body = m.viewport.View()
	}

	if m.status == "" {
		return body
	}
	style := theme.SuccessStyle
	if m.statusErr {
		style = theme.ErrorStyle
	}
	return lipgloss.JoinVertical(lipgloss.Left, body, style.Render(m.status))
}

// renderContent builds the full detail content string for the viewport.
func (m Model) renderContent() string {
	a := m.account
	if a == nil {
		return ""
	}

	var sections []string
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite)
	sections = append(sections, titleStyle.Render(a.Name), a.Address, "")

	row := func(label, value string) {
		sections = append(sections, fmt.Sprintf("%s %s",
			theme.LabelStyle.Render(fmt.Sprintf("%-14s", label+":")),
			value,
		))
	}

	row("Your name", a.DisplayName)
	row("Incoming", serverLine(a.Incoming))
	row("Outgoing", serverLine(a.Outgoing))
	row("User name", a.Incoming.UserName)
	if a.Incoming.Type == model.ServerTypeIMAP {
		row("Push (IDLE)", yesNo(a.RetrievalMode.Has(model.IdleSupported)))
	}
	if a.OutgoingSizeLimit > 0 {
		row("Max message", humanize.IBytes(uint64(a.OutgoingSizeLimit)))
	}
	if a.ProviderID != "" {
		row("Provider", a.ProviderID)
	}

	sepStyle := lipgloss.NewStyle().Foreground(theme.ColorSubtle)
	separator := sepStyle.Render(strings.Repeat("─", max(min(m.width-4, 60), 1)))
	sections = append(sections, "", separator, "")

	n := a.Notification
	row("Notify", yesNo(n.Enabled))
	row("Vibrate", yesNo(n.Vibrate))
	row("Badge", yesNo(n.Badge))
	row("Ringtone", n.Ringtone)

	sections = append(sections, "", separator, "")

	row("Signature", yesNo(a.Signature.Enabled))
	if a.Signature.Text != "" {
		sections = append(sections, "", a.Signature.Text)
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// SetSize updates the detail view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height - 2
	if m.account != nil {
		m.viewport.SetContent(m.renderContent())
	}
}

func serverLine(p model.ServerProfile) string {
	return fmt.Sprintf("%s %s:%d (%s)", strings.ToUpper(string(p.Type)), p.Host, p.Port, p.Security)
}

func yesNo(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func validateRequired(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", field)
		}
		return nil
	}
}
