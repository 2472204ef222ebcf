package engine

import (
	"context"
	"crypto/tls"
	"errors"
	"testing"
	"time"

	"github.com/emersion/go-imap/v2"
	"github.com/emersion/go-sasl"
	"github.com/stretchr/testify/require"

	"github.com/nhle/mailsettings/internal/model"
)

type fakeWaiter struct{ err error }

func (w fakeWaiter) Wait() error { return w.err }

type fakeIMAP struct {
	loginErr   error
	caps       imap.CapSet
	user, pass string
	loggedOut  bool
	closed     bool
}

func (c *fakeIMAP) Login(username, password string) commandWaiter {
	c.user, c.pass = username, password
	return fakeWaiter{err: c.loginErr}
}

func (c *fakeIMAP) Caps() imap.CapSet { return c.caps }

func (c *fakeIMAP) Logout() commandWaiter {
	c.loggedOut = true
	return fakeWaiter{}
}

func (c *fakeIMAP) Close() error {
	c.closed = true
	return nil
}

func imapProberWith(c *fakeIMAP, dialErr error) *IMAPProber {
	p := NewIMAPProber(time.Second)
	p.dial = func(model.ServerProfile) (imapSession, error) {
		if dialErr != nil {
			return nil, dialErr
		}
		return c, nil
	}
	return p
}

func imapProfile() model.ServerProfile {
	return model.ServerProfile{Type: model.ServerTypeIMAP, Host: "imap.example.com", Port: 993, Security: model.SecuritySSL, UserName: "jane", Password: "secret"}
}

func TestIMAPProbeReportsIdle(t *testing.T) {
	c := &fakeIMAP{caps: imap.CapSet{imap.CapIMAP4rev1: {}, imap.CapIdle: {}}}
	got, err := imapProberWith(c, nil).Probe(context.Background(), imapProfile())
	require.NoError(t, err)
	require.Equal(t, []string{model.PayloadIdleMarker}, got)
	require.Equal(t, "jane", c.user)
	require.Equal(t, "secret", c.pass)
	require.True(t, c.loggedOut)
	require.True(t, c.closed)
}

func TestIMAPProbeWithoutIdle(t *testing.T) {
	c := &fakeIMAP{caps: imap.CapSet{imap.CapIMAP4rev1: {}}}
	got, err := imapProberWith(c, nil).Probe(context.Background(), imapProfile())
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestIMAPProbeLoginFailureIsAuthError(t *testing.T) {
	c := &fakeIMAP{loginErr: errors.New("NO [AUTHENTICATIONFAILED] invalid credentials")}
	_, err := imapProberWith(c, nil).Probe(context.Background(), imapProfile())
	require.True(t, IsAuthError(err))
	require.Equal(t, model.CodeAuthFailed, incomingCode(err))
	require.True(t, c.closed)
}

func TestIMAPProbeDialFailure(t *testing.T) {
	_, err := imapProberWith(nil, errors.New("dial tcp: connection refused")).Probe(context.Background(), imapProfile())
	require.Error(t, err)
	require.False(t, IsAuthError(err))
}

type fakePOP3 struct {
	authErr    error
	user, pass string
	quit       bool
}

func (c *fakePOP3) Auth(user, password string) error {
	c.user, c.pass = user, password
	return c.authErr
}

func (c *fakePOP3) Quit() error {
	c.quit = true
	return nil
}

func pop3ProberWith(c *fakePOP3) *POP3Prober {
	p := NewPOP3Prober(time.Second)
	p.dial = func(model.ServerProfile) (pop3Connection, error) { return c, nil }
	return p
}

func TestPOP3Probe(t *testing.T) {
	c := &fakePOP3{}
	profile := model.ServerProfile{Type: model.ServerTypePOP3, Host: "pop.example.com", UserName: "jane", Password: "secret"}

	got, err := pop3ProberWith(c).Probe(context.Background(), profile)
	require.NoError(t, err)
	require.Empty(t, got)
	require.Equal(t, "jane", c.user)
	require.True(t, c.quit)
}

func TestPOP3ProbeAuthFailure(t *testing.T) {
	c := &fakePOP3{authErr: errors.New("-ERR invalid password")}
	_, err := pop3ProberWith(c).Probe(context.Background(), model.ServerProfile{Host: "pop.example.com"})
	require.True(t, IsAuthError(err))
	require.True(t, c.quit)
}

func TestPOP3ProbeCancelledBeforeAuth(t *testing.T) {
	c := &fakePOP3{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := pop3ProberWith(c).Probe(ctx, model.ServerProfile{Host: "pop.example.com"})
	require.ErrorIs(t, err, context.Canceled)
	require.Empty(t, c.user)
}

type fakeSMTP struct {
	extensions map[string]string
	authErr    error
	hello      string
	startTLS   bool
	authed     bool
	quit       bool
}

func (c *fakeSMTP) Hello(localName string) error {
	c.hello = localName
	return nil
}

func (c *fakeSMTP) StartTLS(*tls.Config) error {
	c.startTLS = true
	return nil
}

func (c *fakeSMTP) Extension(ext string) (bool, string) {
	param, ok := c.extensions[ext]
	return ok, param
}

func (c *fakeSMTP) Auth(sasl.Client) error {
	c.authed = true
	return c.authErr
}

func (c *fakeSMTP) Quit() error {
	c.quit = true
	return nil
}

func (c *fakeSMTP) Close() error { return nil }

func smtpProberWith(c *fakeSMTP) *SMTPProber {
	p := NewSMTPProber(time.Second, "client.example")
	p.dial = func(context.Context, model.ServerProfile) (smtpSession, error) { return c, nil }
	return p
}

func TestSMTPProbeReportsSizeLimit(t *testing.T) {
	c := &fakeSMTP{extensions: map[string]string{"SIZE": "10485760", "AUTH": "PLAIN LOGIN"}}
	profile := model.ServerProfile{Type: model.ServerTypeSMTP, Host: "smtp.example.com", Port: 587, Security: model.SecurityStartTLS}

	got, err := smtpProberWith(c).Probe(context.Background(), profile)
	require.NoError(t, err)
	require.Equal(t, []string{model.PayloadSizeLimitMarker, "10485760"}, got)
	require.Equal(t, "client.example", c.hello)
	require.True(t, c.startTLS)
	require.True(t, c.authed)
	require.True(t, c.quit)
}

func TestSMTPProbeSkipsAuthWhenNotOffered(t *testing.T) {
	c := &fakeSMTP{extensions: map[string]string{"SIZE": "0"}}
	got, err := smtpProberWith(c).Probe(context.Background(), model.ServerProfile{Host: "smtp.example.com", Security: model.SecuritySSL})
	require.NoError(t, err)
	require.Empty(t, got)
	require.False(t, c.authed)
	require.False(t, c.startTLS)
}

func TestSMTPProbeAuthFailure(t *testing.T) {
	c := &fakeSMTP{extensions: map[string]string{"AUTH": "PLAIN"}, authErr: errors.New("535 5.7.8 bad credentials")}
	_, err := smtpProberWith(c).Probe(context.Background(), model.ServerProfile{Host: "smtp.example.com"})
	require.True(t, IsAuthError(err))
	require.Equal(t, model.CodeOutgoingFailed, outgoingCode(err))
}
