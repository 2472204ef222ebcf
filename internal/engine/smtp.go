package engine

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/emersion/go-sasl"
	"github.com/emersion/go-smtp"

	"github.com/nhle/mailsettings/internal/model"
)

type smtpSession interface {
	Hello(localName string) error
	StartTLS(config *tls.Config) error
	Extension(ext string) (bool, string)
	Auth(a sasl.Client) error
	Quit() error
	Close() error
}

type smtpDialer func(ctx context.Context, profile model.ServerProfile) (smtpSession, error)

// SMTPProber authenticates against an SMTP submission server and reports
// its message size limit.
type SMTPProber struct {
	dialTimeout time.Duration
	localName   string
	dial        smtpDialer
}

// NewSMTPProber returns an SMTP prober greeting servers as localName.
func NewSMTPProber(dialTimeout time.Duration, localName string) *SMTPProber {
	p := &SMTPProber{dialTimeout: dialTimeout, localName: localName}
	p.dial = p.defaultDial
	return p
}

// Probe connects, upgrades to TLS when configured, authenticates with PLAIN
// when the server offers AUTH and quits.
func (p *SMTPProber) Probe(ctx context.Context, profile model.ServerProfile) ([]string, error) {
	client, err := p.dial(ctx, profile)
	if err != nil {
		return nil, err
	}
	stop := context.AfterFunc(ctx, func() { _ = client.Close() })
	defer stop()
	defer func() { _ = client.Close() }()

	if err := client.Hello(p.localName); err != nil {
		return nil, fmt.Errorf("smtp hello: %w", err)
	}

	if profile.Security == model.SecurityStartTLS {
		if err := client.StartTLS(&tls.Config{ServerName: profile.Host}); err != nil {
			return nil, fmt.Errorf("smtp starttls: %w", err)
		}
	}

	var tokens []string
	if ok, param := client.Extension("SIZE"); ok {
		if limit, err := strconv.ParseInt(strings.TrimSpace(param), 10, 64); err == nil && limit > 0 {
			tokens = append(tokens, model.PayloadSizeLimitMarker, strconv.FormatInt(limit, 10))
		}
	}

	if ok, _ := client.Extension("AUTH"); ok {
		auth := sasl.NewPlainClient("", profile.UserName, profile.Password)
		if err := client.Auth(auth); err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, &AuthError{Protocol: model.ServerTypeSMTP, Host: profile.Host, Err: err}
		}
	}

	_ = client.Quit()
	return tokens, nil
}

func (p *SMTPProber) defaultDial(ctx context.Context, profile model.ServerProfile) (smtpSession, error) {
	dialer := &net.Dialer{Timeout: p.dialTimeout}
	addr := address(profile)

	var conn net.Conn
	var err error
	if profile.Security == model.SecuritySSL {
		tlsDialer := &tls.Dialer{NetDialer: dialer, Config: &tls.Config{ServerName: profile.Host}}
		conn, err = tlsDialer.DialContext(ctx, "tcp", addr)
	} else {
		conn, err = dialer.DialContext(ctx, "tcp", addr)
	}
	if err != nil {
		return nil, fmt.Errorf("connecting to SMTP %s: %w", addr, err)
	}

	client, err := smtp.NewClient(conn, profile.Host)
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("smtp greeting from %s: %w", addr, err)
	}
	return client, nil
}
