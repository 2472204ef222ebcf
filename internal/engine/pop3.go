package engine

import (
	"context"
	"time"

	"github.com/knadh/go-pop3"

	"github.com/nhle/mailsettings/internal/model"
)

type pop3Connection interface {
	Auth(user, password string) error
	Quit() error
}

type pop3Dialer func(profile model.ServerProfile) (pop3Connection, error)

// POP3Prober authenticates against a POP3 server.
type POP3Prober struct {
	dialTimeout time.Duration
	dial        pop3Dialer
}

// NewPOP3Prober returns a POP3 prober using dialTimeout for connecting.
func NewPOP3Prober(dialTimeout time.Duration) *POP3Prober {
	p := &POP3Prober{dialTimeout: dialTimeout}
	p.dial = p.defaultDial
	return p
}

// Probe connects, authenticates and quits. POP3 has no capabilities worth
// reporting, so it never returns tokens.
func (p *POP3Prober) Probe(ctx context.Context, profile model.ServerProfile) ([]string, error) {
	conn, err := p.dial(profile)
	if err != nil {
		return nil, err
	}
	defer func() { _ = conn.Quit() }()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := conn.Auth(profile.UserName, profile.Password); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &AuthError{Protocol: model.ServerTypePOP3, Host: profile.Host, Err: err}
	}
	return nil, nil
}

func (p *POP3Prober) defaultDial(profile model.ServerProfile) (pop3Connection, error) {
	port := profile.Port
	if port == 0 {
		port = defaultPort(profile)
	}
	client := pop3.New(pop3.Opt{
		Host:        profile.Host,
		Port:        port,
		DialTimeout: p.dialTimeout,
		TLSEnabled:  profile.Security == model.SecuritySSL,
	})
	conn, err := client.NewConn()
	if err != nil {
		return nil, err
	}
	return conn, nil
}
