package wizard

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/nhle/mailsettings/internal/keys"
	"github.com/nhle/mailsettings/internal/model"
	"github.com/nhle/mailsettings/internal/provider"
	"github.com/nhle/mailsettings/internal/setup"
	appsync "github.com/nhle/mailsettings/internal/sync"
	"github.com/nhle/mailsettings/internal/ui/nav"
)

type fakeValidator struct {
	next      model.ValidationHandle
	cancelled []model.ValidationHandle
}

func (v *fakeValidator) Validate(context.Context, model.AccountDraft) (model.ValidationHandle, error) {
	v.next++
	return v.next, nil
}

func (v *fakeValidator) Cancel(h model.ValidationHandle) {
	v.cancelled = append(v.cancelled, h)
}

type fakeAccounts struct {
	saved []model.AccountDraft
}

func (a *fakeAccounts) IsDuplicateAddress(context.Context, string) (bool, error) {
	return false, nil
}

func (a *fakeAccounts) PersistAccount(_ context.Context, d model.AccountDraft) (string, error) {
	a.saved = append(a.saved, d)
	return "acc-1", nil
}

func newTestModel(t *testing.T) (Model, *fakeValidator, *fakeAccounts) {
	t.Helper()
	reg := provider.NewRegistry([]model.ProviderEntry{{
		ID:       "example",
		Domains:  []string{"example.com"},
		Incoming: model.ServerProfile{Type: model.ServerTypeIMAP, Host: "imap.example.com", Port: 993, Security: model.SecuritySSL},
		Outgoing: model.ServerProfile{Host: "smtp.example.com", Port: 465, Security: model.SecuritySSL},
	}})
	v := &fakeValidator{}
	a := &fakeAccounts{}
	flow := setup.New(v, reg, a)
	return New(context.Background(), flow, keys.DefaultKeyMap(), 80, 24), v, a
}

// submitForm fills the bound fields and completes the current form.
func submitForm(t *testing.T, m Model, fill func(*fields)) Model {
	t.Helper()
	if fill != nil {
		fill(m.f)
	}
	err := m.submit()
	v, _ := m.afterDispatch(err, true)
	return v.(Model)
}

func respond(t *testing.T, m Model, h model.ValidationHandle, code int, payload string) (Model, tea.Cmd) {
	t.Helper()
	v, cmd := m.Update(appsync.ResponseMsg{Response: model.ValidationResponse{Handle: h, Code: code, Payload: payload}})
	return v.(Model), cmd
}

func TestWizardStartsWithCredentialsForm(t *testing.T) {
	m, _, _ := newTestModel(t)
	require.Equal(t, setup.StateCollectingInput, m.screen)
	require.NotNil(t, m.form)
	require.True(t, m.CapturesInput())
	require.Equal(t, "Add account", m.Title())
}

func TestWizardValidatesAndSaves(t *testing.T) {
	m, v, a := newTestModel(t)

	m = submitForm(t, m, func(f *fields) {
		f.address = "jane@example.com"
		f.password = "secret"
	})
	require.Equal(t, setup.StateValidating, m.flow.State())
	require.Nil(t, m.form)
	require.False(t, m.CapturesInput())
	require.True(t, m.spinning)
	require.Contains(t, m.View(), "Checking server settings")

	m, _ = respond(t, m, v.next, model.CodeNone, "IMAP4_IDLE_SUPPORTED ")
	require.Equal(t, setup.StateSucceeded, m.flow.State())
	require.NotNil(t, m.form)
	require.Equal(t, "jane@example.com", m.f.accountName)
	require.Equal(t, "jane", m.f.displayName)

	err := func() error {
		m.f.accountName = "Work"
		return m.submit()
	}()
	require.NoError(t, err)
	view, cmd := m.afterDispatch(err, true)
	require.NotNil(t, view)
	require.NotNil(t, cmd)

	batch, ok := cmd().(tea.BatchMsg)
	require.True(t, ok)
	var msgs []tea.Msg
	for _, c := range batch {
		msgs = append(msgs, c())
	}
	require.Contains(t, msgs, nav.PopMsg{})
	require.Contains(t, msgs, AccountAddedMsg{ID: "acc-1", Address: "jane@example.com"})

	require.Len(t, a.saved, 1)
	require.Equal(t, "Work", a.saved[0].AccountName)
}

func TestWizardShowsInputErrors(t *testing.T) {
	m, _, _ := newTestModel(t)
	m = submitForm(t, m, func(f *fields) {
		f.address = "not-an-address"
		f.password = "secret"
	})
	require.Equal(t, setup.StateCollectingInput, m.flow.State())
	require.NotNil(t, m.form)
	require.Equal(t, "The email address is not valid.", m.status)
	require.Equal(t, "not-an-address", m.f.address)
}

func TestWizardCancelWhileValidating(t *testing.T) {
	m, v, _ := newTestModel(t)
	m = submitForm(t, m, func(f *fields) {
		f.address = "jane@example.com"
		f.password = "secret"
	})

	view, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m = view.(Model)
	require.Equal(t, setup.StateCancelled, m.flow.State())
	require.Equal(t, []model.ValidationHandle{1}, v.cancelled)
	require.Equal(t, nav.PopMsg{}, cmd())
	require.Empty(t, m.status)

	m, cmd = respond(t, m, 1, model.CodeCancelled, "")
	require.Equal(t, setup.StateCancelled, m.flow.State())
	require.Equal(t, nav.PopMsg{}, cmd())
}

func TestWizardRetryThenFailure(t *testing.T) {
	m, v, _ := newTestModel(t)
	m = submitForm(t, m, func(f *fields) {
		f.address = "jane@example.com"
		f.password = "wrong"
	})

	m, cmd := respond(t, m, v.next, model.CodeAuthFailed, "")
	require.Equal(t, setup.StateRetrying, m.flow.State())
	require.Nil(t, cmd)
	require.Contains(t, m.View(), "Trying again with user name jane")

	m, _ = respond(t, m, v.next, model.CodeAuthFailed, "")
	require.Equal(t, setup.StateFailed, m.flow.State())
	require.Nil(t, m.form)
	require.Contains(t, m.View(), "Unable to sign in")

	view, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")})
	m = view.(Model)
	require.Equal(t, setup.StateCollectingInput, m.flow.State())
	require.NotNil(t, m.form)
	require.Empty(t, m.status)
}

func TestWizardIgnoresStaleResponse(t *testing.T) {
	m, v, _ := newTestModel(t)
	m = submitForm(t, m, func(f *fields) {
		f.address = "jane@example.com"
		f.password = "secret"
	})

	m, cmd := respond(t, m, v.next+5, model.CodeNone, "")
	require.Equal(t, setup.StateValidating, m.flow.State())
	require.Nil(t, cmd)
}

func TestWizardManualSetup(t *testing.T) {
	m, v, _ := newTestModel(t)
	m = submitForm(t, m, func(f *fields) {
		f.address = "bob@unknown.org"
		f.password = "secret"
	})
	require.Equal(t, setup.StateChoosingServerType, m.flow.State())
	require.Equal(t, string(model.ServerTypeIMAP), m.f.serverType)

	m = submitForm(t, m, func(f *fields) { f.serverType = string(model.ServerTypePOP3) })
	require.Equal(t, setup.StateManualEntry, m.flow.State())
	require.Equal(t, "pop.unknown.org", m.f.inHost)
	require.Equal(t, "995", m.f.inPort)
	require.Equal(t, "smtp.unknown.org", m.f.outHost)

	m = submitForm(t, m, func(f *fields) {
		f.inHost = "mail.unknown.org"
		f.inPort = "110"
		f.inSecurity = string(model.SecurityNone)
	})
	require.Equal(t, setup.StateValidating, m.flow.State())
	require.Equal(t, model.ValidationHandle(1), v.next)

	d := m.flow.Draft()
	require.Equal(t, model.ServerTypePOP3, d.Incoming.Type)
	require.Equal(t, "mail.unknown.org", d.Incoming.Host)
	require.Equal(t, 110, d.Incoming.Port)
}

func TestWizardWarningAfterOutgoingFailure(t *testing.T) {
	m, v, _ := newTestModel(t)
	m = submitForm(t, m, func(f *fields) {
		f.address = "jane@example.com"
		f.password = "secret"
	})
	m, _ = respond(t, m, v.next, model.CodeOutgoingFailed, "")
	require.Equal(t, setup.StateSucceeded, m.flow.State())
	require.True(t, strings.Contains(m.View(), "outgoing server could not be verified"))
}

func TestParsePort(t *testing.T) {
	require.Equal(t, 993, parsePort(" 993 "))
	require.Zero(t, parsePort("0"))
	require.Zero(t, parsePort("70000"))
	require.Zero(t, parsePort("imap"))
	require.Error(t, validatePort(""))
	require.NoError(t, validatePort("587"))
	require.Equal(t, "", portString(0))
}
