package model

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	require.Equal(t, defaultAppConfig(), cfg)
	require.Equal(t, 60, cfg.Validation.TimeoutSec)
	require.Equal(t, "default", cfg.Display.Theme)
}

func TestLoadConfigOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte(`
database:
  path: /tmp/accounts.db
validation:
  timeout_sec: 15
  dial_timeout_sec: -1
log:
  level: debug
display:
  theme: mono
`)
	require.NoError(t, os.WriteFile(path, data, 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, "/tmp/accounts.db", cfg.Database.Path)
	require.Equal(t, 15, cfg.Validation.TimeoutSec)
	require.Equal(t, 10, cfg.Validation.DialTimeoutSec)
	require.Equal(t, "localhost", cfg.Validation.LocalName)
	require.Equal(t, "debug", cfg.Log.Level)
	require.Equal(t, "mono", cfg.Display.Theme)
	require.Equal(t, defaultAppConfig().Providers.File, cfg.Providers.File)
}

func TestLoadConfigMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("database: [unclosed"), 0o600))

	_, err := LoadConfig(path)
	require.ErrorContains(t, err, "reading config")
}

func TestSaveConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := defaultAppConfig()
	cfg.Database.Path = "/data/accounts.db"
	cfg.Validation.TimeoutSec = 30
	cfg.Display.Theme = "mono"

	require.NoError(t, SaveConfig(path, cfg))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, cfg, loaded)
}

func TestDraftApplyServersKeepsCredentials(t *testing.T) {
	d := AccountDraft{}
	d.SetUserName("jane")
	d.Incoming.Password = "secret"
	d.Outgoing.Password = "secret"

	d.ApplyProvider(ProviderEntry{
		ID:       "example",
		Incoming: ServerProfile{Type: ServerTypeIMAP, Host: "imap.example.com", Port: 993, Security: SecuritySSL},
		Outgoing: ServerProfile{Host: "smtp.example.com", Port: 465, Security: SecuritySSL},
	})

	require.Equal(t, "example", d.ProviderID)
	require.Equal(t, ServerTypeSMTP, d.Outgoing.Type)
	require.Equal(t, "jane", d.Incoming.UserName)
	require.Equal(t, "secret", d.Outgoing.Password)
	require.Equal(t, "imap.example.com", d.Incoming.Host)
}

func TestOutcomeForCode(t *testing.T) {
	require.Equal(t, OutcomeSuccess, OutcomeForCode(CodeNone))
	require.Equal(t, OutcomeSuccessWithWarning, OutcomeForCode(CodeOutgoingFailed))
	require.Equal(t, OutcomeAuthFailure, OutcomeForCode(CodeAuthFailed))
	require.True(t, OutcomeSuccessWithWarning.Succeeded())
	require.False(t, OutcomeAuthFailure.Succeeded())
}
