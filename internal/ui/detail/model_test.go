package detail

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/nhle/mailsettings/internal/keys"
	"github.com/nhle/mailsettings/internal/model"
	"github.com/nhle/mailsettings/internal/ui/nav"
)

type fakeService struct {
	account   model.Account
	updateErr error
}

func (s *fakeService) Get(_ context.Context, id string) (*model.Account, error) {
	if id != s.account.ID {
		return nil, errors.New("not found")
	}
	a := s.account
	return &a, nil
}

func (s *fakeService) UpdateDetails(_ context.Context, _ string, name, displayName string) error {
	if s.updateErr != nil {
		return s.updateErr
	}
	s.account.Name = name
	s.account.DisplayName = displayName
	return nil
}

func (s *fakeService) UpdateNotification(_ context.Context, _ string, n model.NotificationSettings) error {
	s.account.Notification = n
	return nil
}

func (s *fakeService) UpdateSignature(_ context.Context, _ string, sig model.SignatureSettings) error {
	s.account.Signature = sig
	return nil
}

func newService() *fakeService {
	return &fakeService{account: model.Account{
		ID:                "a1",
		Name:              "Work",
		Address:           "jane@example.com",
		DisplayName:       "Jane",
		Incoming:          model.ServerProfile{Type: model.ServerTypeIMAP, Host: "imap.example.com", Port: 993, Security: model.SecuritySSL, UserName: "jane"},
		Outgoing:          model.ServerProfile{Type: model.ServerTypeSMTP, Host: "smtp.example.com", Port: 465, Security: model.SecuritySSL},
		RetrievalMode:     model.RetrieveAll | model.IdleSupported,
		OutgoingSizeLimit: 10 << 20,
		Notification:      model.DefaultNotificationSettings(),
		Signature:         model.DefaultSignature(),
	}}
}

func loaded(t *testing.T, s *fakeService) Model {
	t.Helper()
	m := New(context.Background(), s, "a1", keys.DefaultKeyMap(), 80, 40)
	v, _ := m.Update(m.Init()())
	return v.(Model)
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	v, cmd := m.Update(msg)
	return v.(Model), cmd
}

func runeKey(r string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(r)}
}

func TestDetailRendersAccount(t *testing.T) {
	m := loaded(t, newService())
	require.Equal(t, "Work", m.Title())

	out := m.View()
	require.Contains(t, out, "jane@example.com")
	require.Contains(t, out, "IMAP imap.example.com:993 (ssl)")
	require.Contains(t, out, "SMTP smtp.example.com:465 (ssl)")
	require.Contains(t, out, "10 MiB")
	require.Contains(t, out, "Sent from mailsettings")
}

func TestDetailLoadError(t *testing.T) {
	m := New(context.Background(), newService(), "missing", keys.DefaultKeyMap(), 80, 40)
	m, _ = update(t, m, m.Init()())
	require.True(t, m.statusErr)
	require.Contains(t, m.View(), "Error loading account")
}

func TestDetailEditDetails(t *testing.T) {
	s := newService()
	m := loaded(t, s)

	m, _ = update(t, m, runeKey("e"))
	require.Equal(t, ModeEditDetails, m.Mode())
	require.True(t, m.CapturesInput())
	require.Equal(t, "Work", m.v.name)

	m.v.name = "Office"
	m, cmd := update(t, m, m.save(ModeEditDetails)())
	require.Equal(t, "Office", s.account.Name)
	require.Equal(t, "Details saved", m.status)

	m, _ = update(t, m, cmd())
	require.Equal(t, "Office", m.Title())
}

func TestDetailEditNotificationAndSignature(t *testing.T) {
	s := newService()
	m := loaded(t, s)

	m, _ = update(t, m, runeKey("n"))
	require.Equal(t, ModeEditNotification, m.Mode())
	m.v.notifyVibrate = false
	m.v.ringtone = "  chime "
	m, _ = update(t, m, m.save(ModeEditNotification)())
	require.Equal(t, model.NotificationSettings{Enabled: true, Vibrate: false, Ringtone: "chime", Badge: true}, s.account.Notification)

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	m, _ = update(t, m, runeKey("g"))
	require.Equal(t, ModeEditSignature, m.Mode())
	m.v.signatureEnabled = false
	m.v.signatureText = "Cheers\n\n"
	_, _ = update(t, m, m.save(ModeEditSignature)())
	require.Equal(t, model.SignatureSettings{Enabled: false, Text: "Cheers"}, s.account.Signature)
}

func TestDetailSaveError(t *testing.T) {
	s := newService()
	s.updateErr = errors.New("account name is required")
	m := loaded(t, s)

	m, cmd := update(t, m, m.save(ModeEditDetails)())
	require.Nil(t, cmd)
	require.True(t, m.statusErr)
	require.Contains(t, m.status, "account name is required")
}

func TestDetailEscape(t *testing.T) {
	m := loaded(t, newService())

	m, _ = update(t, m, runeKey("e"))
	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	require.Nil(t, cmd)
	require.Equal(t, ModeView, m.Mode())
	require.False(t, m.CapturesInput())

	_, cmd = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	require.Equal(t, nav.PopMsg{}, cmd())
}
