// Package credential keeps account passwords in the system keyring.
package credential

import (
	"errors"
	"fmt"

	"github.com/99designs/keyring"
)

const serviceName = "mailsettings"

// ErrNotFound is returned when no password is stored for a key.
var ErrNotFound = errors.New("credential not found")

// Kind selects which server a password belongs to.
type Kind string

const (
	Incoming Kind = "incoming"
	Outgoing Kind = "outgoing"
)

// Key returns the keyring key for the password of an account server.
func Key(accountID string, kind Kind) string {
	return fmt.Sprintf("account-%s-%s", accountID, kind)
}

// Vault stores account passwords in a keyring.
type Vault struct {
	ring keyring.Keyring
}

// NewVault returns a vault backed by ring.
func NewVault(ring keyring.Keyring) *Vault {
	return &Vault{ring: ring}
}

// Open returns a vault backed by the system keyring, falling back to an
// encrypted file when no system keyring is available.
func Open() (*Vault, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName: serviceName,
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.SecretServiceBackend,
			keyring.WinCredBackend,
			keyring.PassBackend,
			keyring.FileBackend,
		},
		FileDir:                  "~/.config/mailsettings/credentials",
		FilePasswordFunc:         keyring.FixedStringPrompt("mailsettings-file-key"),
		KeychainTrustApplication: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening keyring: %w", err)
	}
	return NewVault(ring), nil
}

// Get retrieves the password for an account server.
func (v *Vault) Get(accountID string, kind Kind) (string, error) {
	key := Key(accountID, kind)
	item, err := v.ring.Get(key)
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return "", fmt.Errorf("getting credential %q: %w", key, ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("getting credential %q: %w", key, err)
	}
	return string(item.Data), nil
}

// Set stores the password for an account server.
func (v *Vault) Set(accountID string, kind Kind, password string) error {
	key := Key(accountID, kind)
	err := v.ring.Set(keyring.Item{
		Key:         key,
		Data:        []byte(password),
		Label:       fmt.Sprintf("mailsettings %s password", kind),
		Description: "Mail account password",
	})
	if err != nil {
		return fmt.Errorf("setting credential %q: %w", key, err)
	}
	return nil
}

// Delete removes both passwords of an account. Missing entries are not an
// error.
func (v *Vault) Delete(accountID string) error {
	var errs []error
	for _, kind := range []Kind{Incoming, Outgoing} {
		key := Key(accountID, kind)
		if err := v.ring.Remove(key); err != nil && !errors.Is(err, keyring.ErrKeyNotFound) {
			errs = append(errs, fmt.Errorf("deleting credential %q: %w", key, err))
		}
	}
	return errors.Join(errs...)
}
