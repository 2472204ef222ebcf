package store

import (
	"context"
	"errors"

	"github.com/nhle/mailsettings/internal/model"
)

var (
	// ErrNotFound is returned when no account matches the lookup.
	ErrNotFound = errors.New("account not found")

	// ErrDuplicateAddress is returned when an account with the same
	// address already exists.
	ErrDuplicateAddress = errors.New("account address already exists")
)

// Setting keys stored in the settings table.
const (
	SettingDefaultAccount = "default_account_id"
)

// Store defines the persistence interface for accounts and global settings.
type Store interface {
	// === Accounts ===

	CreateAccount(ctx context.Context, account model.Account) error
	UpdateAccount(ctx context.Context, account model.Account) error
	DeleteAccount(ctx context.Context, id string) error
	GetAccount(ctx context.Context, id string) (*model.Account, error)
	GetAccountByAddress(ctx context.Context, address string) (*model.Account, error)
	GetAccounts(ctx context.Context) ([]model.Account, error)

	// === Settings ===

	// GetSetting returns "" when key is not set.
	GetSetting(ctx context.Context, key string) (string, error)
	SetSetting(ctx context.Context, key, value string) error
	DeleteSetting(ctx context.Context, key string) error

	Close() error
}
