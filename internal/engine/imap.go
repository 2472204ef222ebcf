package engine

import (
	"context"
	"crypto/tls"
	"net"
	"time"

	"github.com/emersion/go-imap/v2"
	"github.com/emersion/go-imap/v2/imapclient"

	"github.com/nhle/mailsettings/internal/model"
)

type imapSession interface {
	Login(username, password string) commandWaiter
	Caps() imap.CapSet
	Logout() commandWaiter
	Close() error
}

type commandWaiter interface{ Wait() error }

type imapDialer func(profile model.ServerProfile) (imapSession, error)

// IMAPProber logs in to an IMAP server and reports IDLE support.
type IMAPProber struct {
	dialTimeout time.Duration
	dial        imapDialer
}

// NewIMAPProber returns an IMAP prober using dialTimeout for connecting.
func NewIMAPProber(dialTimeout time.Duration) *IMAPProber {
	p := &IMAPProber{dialTimeout: dialTimeout}
	p.dial = p.defaultDial
	return p
}

// Probe connects, authenticates and logs out.
func (p *IMAPProber) Probe(ctx context.Context, profile model.ServerProfile) ([]string, error) {
	client, err := p.dial(profile)
	if err != nil {
		return nil, err
	}
	stop := context.AfterFunc(ctx, func() { _ = client.Close() })
	defer stop()
	defer func() { _ = client.Close() }()

	if err := client.Login(profile.UserName, profile.Password).Wait(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &AuthError{Protocol: model.ServerTypeIMAP, Host: profile.Host, Err: err}
	}

	var tokens []string
	if client.Caps().Has(imap.CapIdle) {
		tokens = append(tokens, model.PayloadIdleMarker)
	}

	_ = client.Logout().Wait()
	return tokens, nil
}

func (p *IMAPProber) defaultDial(profile model.ServerProfile) (imapSession, error) {
	opts := &imapclient.Options{
		Dialer:    &net.Dialer{Timeout: p.dialTimeout},
		TLSConfig: &tls.Config{ServerName: profile.Host},
	}
	addr := address(profile)

	var client *imapclient.Client
	var err error
	switch profile.Security {
	case model.SecuritySSL:
		client, err = imapclient.DialTLS(addr, opts)
	case model.SecurityStartTLS:
		client, err = imapclient.DialStartTLS(addr, opts)
	default:
		client, err = imapclient.DialInsecure(addr, opts)
	}
	if err != nil {
		return nil, err
	}
	return &imapClientWrapper{Client: client}, nil
}

type imapClientWrapper struct{ *imapclient.Client }

func (w *imapClientWrapper) Login(username, password string) commandWaiter {
	return w.Client.Login(username, password)
}

func (w *imapClientWrapper) Logout() commandWaiter { return w.Client.Logout() }
