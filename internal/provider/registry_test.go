package provider

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nhle/mailsettings/internal/model"
)

const providersYAML = `
providers:
  - id: example
    name: Example Mail
    domains: [example.com, Example.ORG]
    incoming:
      type: pop3
      host: pop.example.com
      port: 995
      security: ssl
    outgoing:
      host: smtp.example.com
      port: 587
      security: starttls
  - id: buecher
    name: Buecher
    domains: [bücher.example]
    incoming: {type: imap, host: imap.buecher.example, port: 993, security: ssl}
    outgoing: {type: smtp, host: smtp.buecher.example, port: 465, security: ssl}
  - name: missing id
    domains: [ignored.example]
`

func writeProviders(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "providers.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadReadsYAML(t *testing.T) {
	r, err := Load(writeProviders(t, providersYAML))
	require.NoError(t, err)

	entries := r.Entries()
	require.Len(t, entries, 2)
	require.Equal(t, "buecher", entries[0].ID)
	require.Equal(t, "example", entries[1].ID)

	e, ok := r.Resolve("jane@example.com")
	require.True(t, ok)
	require.Equal(t, model.ServerTypePOP3, e.Incoming.Type)
	require.Equal(t, "pop.example.com", e.Incoming.Host)
	require.Equal(t, 995, e.Incoming.Port)
	require.Equal(t, model.ServerTypeSMTP, e.Outgoing.Type)
	require.Equal(t, model.SecurityStartTLS, e.Outgoing.Security)

	_, ok = r.Resolve("jane@ignored.example")
	require.False(t, ok)
}

func TestLoadMissingFileUsesBuiltin(t *testing.T) {
	r, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	e, ok := r.Resolve("someone@gmail.com")
	require.True(t, ok)
	require.Equal(t, "gmail", e.ID)
	require.Equal(t, "imap.gmail.com", e.Incoming.Host)
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	_, err := Load(writeProviders(t, "providers: [\n"))
	require.Error(t, err)
}

func TestResolveNormalizesDomain(t *testing.T) {
	r, err := Load(writeProviders(t, providersYAML))
	require.NoError(t, err)

	for _, addr := range []string{
		"Jane@EXAMPLE.com",
		"jane@example.org",
		"a@b@example.com",
	} {
		e, ok := r.Resolve(addr)
		require.True(t, ok, addr)
		require.Equal(t, "example", e.ID)
	}

	e, ok := r.Resolve("hans@BÜCHER.example")
	require.True(t, ok)
	require.Equal(t, "buecher", e.ID)

	e, ok = r.Lookup("xn--bcher-kva.example")
	require.True(t, ok)
	require.Equal(t, "buecher", e.ID)
}

func TestResolveNotFound(t *testing.T) {
	r := Builtin()
	for _, addr := range []string{"jane@unknown.org", "jane@", "jane"} {
		_, ok := r.Resolve(addr)
		require.False(t, ok, addr)
	}
}

func TestGuess(t *testing.T) {
	r := Builtin()

	in, out := r.Guess("jane@Corp.Example", model.ServerTypeIMAP)
	require.Equal(t, model.ServerProfile{Type: model.ServerTypeIMAP, Host: "imap.corp.example", Port: 993, Security: model.SecuritySSL}, in)
	require.Equal(t, model.ServerProfile{Type: model.ServerTypeSMTP, Host: "smtp.corp.example", Port: 465, Security: model.SecuritySSL}, out)

	in, _ = r.Guess("jane@corp.example", model.ServerTypePOP3)
	require.Equal(t, "pop.corp.example", in.Host)
	require.Equal(t, 995, in.Port)
}

func TestNewRegistryFirstDomainWins(t *testing.T) {
	r := NewRegistry([]model.ProviderEntry{
		{ID: "b", Domains: []string{"shared.example"}},
		{ID: "a", Domains: []string{"shared.example"}},
	})
	e, ok := r.Lookup("shared.example")
	require.True(t, ok)
	require.Equal(t, "b", e.ID)
}
