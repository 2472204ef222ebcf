// Package account manages persisted mail accounts and their preferences.
package account

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	gologme "github.com/gologme/log"

	"github.com/nhle/mailsettings/internal/credential"
	"github.com/nhle/mailsettings/internal/logging"
	"github.com/nhle/mailsettings/internal/model"
	"github.com/nhle/mailsettings/internal/store"
)

// ErrEmptyName is returned when an account would be left without a name.
var ErrEmptyName = errors.New("account name must not be empty")

// Credentials stores account passwords.
type Credentials interface {
	Get(accountID string, kind credential.Kind) (string, error)
	Set(accountID string, kind credential.Kind, password string) error
	Delete(accountID string) error
}

// Service implements account creation, editing and removal on top of a
// store and a credential vault.
type Service struct {
	store  store.Store
	creds  Credentials
	logger *gologme.Logger
	now    func() time.Time
}

// Option customizes a Service.
type Option func(*Service)

// WithLogger overrides the logger used for service diagnostics.
func WithLogger(logger *gologme.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock overrides the wall clock, primarily for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService returns a service persisting to st and creds.
func NewService(st store.Store, creds Credentials, opts ...Option) *Service {
	s := &Service{
		store:  st,
		creds:  creds,
		logger: logging.Discard(),
		now:    func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// IsDuplicateAddress reports whether an account for address exists,
// ignoring case.
func (s *Service) IsDuplicateAddress(ctx context.Context, address string) (bool, error) {
	_, err := s.store.GetAccountByAddress(ctx, address)
	if errors.Is(err, store.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// PersistAccount creates an account from a validated draft and returns its
// ID. Passwords go to the credential vault. The first account becomes the
// default account.
func (s *Service) PersistAccount(ctx context.Context, draft model.AccountDraft) (string, error) {
	a := model.Account{
		ID:                uuid.New().String(),
		Name:              strings.TrimSpace(draft.AccountName),
		Address:           strings.TrimSpace(draft.Address),
		DisplayName:       strings.TrimSpace(draft.DisplayName),
		Incoming:          draft.Incoming,
		Outgoing:          draft.Outgoing,
		RetrievalMode:     draft.RetrievalMode,
		OutgoingSizeLimit: draft.OutgoingSizeLimit,
		ProviderID:        draft.ProviderID,
		Notification:      model.DefaultNotificationSettings(),
		Signature:         model.DefaultSignature(),
		CreatedAt:         s.now(),
	}
	if a.Name == "" {
		a.Name = a.Address
	}
	if a.RetrievalMode == 0 {
		a.RetrievalMode = model.RetrieveAll
	}

	inPass := firstNonEmpty(draft.Incoming.Password, draft.Password)
	outPass := firstNonEmpty(draft.Outgoing.Password, draft.Password)
	a.Incoming.Password = ""
	a.Outgoing.Password = ""

	if err := s.store.CreateAccount(ctx, a); err != nil {
		return "", err
	}

	if err := s.storePasswords(a.ID, inPass, outPass); err != nil {
		if delErr := s.store.DeleteAccount(ctx, a.ID); delErr != nil {
			s.logger.Errorf("rolling back account %s: %v", a.ID, delErr)
		}
		return "", err
	}

	s.logger.Infof("account %s created for %s", a.ID, a.Address)
	if err := s.claimDefault(ctx, a.ID); err != nil {
		s.logger.Warnf("making account %s the default: %v", a.ID, err)
	}
	return a.ID, nil
}

// claimDefault makes id the default account when none is set.
func (s *Service) claimDefault(ctx context.Context, id string) error {
	defaultID, err := s.DefaultID(ctx)
	if err != nil {
		return err
	}
	if defaultID != "" {
		return nil
	}
	return s.store.SetSetting(ctx, store.SettingDefaultAccount, id)
}

func (s *Service) storePasswords(id, incoming, outgoing string) error {
	if err := s.creds.Set(id, credential.Incoming, incoming); err != nil {
		return err
	}
	if err := s.creds.Set(id, credential.Outgoing, outgoing); err != nil {
		if delErr := s.creds.Delete(id); delErr != nil {
			s.logger.Warnf("removing credentials of account %s: %v", id, delErr)
		}
		return err
	}
	return nil
}

// List returns all accounts in creation order.
func (s *Service) List(ctx context.Context) ([]model.Account, error) {
	return s.store.GetAccounts(ctx)
}

// Get returns the account with id.
func (s *Service) Get(ctx context.Context, id string) (*model.Account, error) {
	return s.store.GetAccount(ctx, id)
}

// UpdateDetails changes the account label and the sender display name.
func (s *Service) UpdateDetails(ctx context.Context, id, name, displayName string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyName
	}
	return s.update(ctx, id, func(a *model.Account) {
		a.Name = name
		a.DisplayName = strings.TrimSpace(displayName)
	})
}

// UpdateNotification replaces the notification settings of an account.
func (s *Service) UpdateNotification(ctx context.Context, id string, n model.NotificationSettings) error {
	if strings.TrimSpace(n.Ringtone) == "" {
		n.Ringtone = model.DefaultNotificationSettings().Ringtone
	}
	return s.update(ctx, id, func(a *model.Account) {
		a.Notification = n
	})
}

// UpdateSignature replaces the signature settings of an account.
func (s *Service) UpdateSignature(ctx context.Context, id string, sig model.SignatureSettings) error {
	return s.update(ctx, id, func(a *model.Account) {
		a.Signature = sig
	})
}

func (s *Service) update(ctx context.Context, id string, apply func(*model.Account)) error {
	a, err := s.store.GetAccount(ctx, id)
	if err != nil {
		return err
	}
	apply(a)
	return s.store.UpdateAccount(ctx, *a)
}

// Delete removes an account and its passwords. When the default account is
// deleted, the oldest remaining account becomes the default.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.store.DeleteAccount(ctx, id); err != nil {
		return err
	}
	if err := s.creds.Delete(id); err != nil {
		s.logger.Warnf("removing credentials of account %s: %v", id, err)
	}

	defaultID, err := s.DefaultID(ctx)
	if err != nil {
		return err
	}
	if defaultID != id {
		return nil
	}

	remaining, err := s.store.GetAccounts(ctx)
	if err != nil {
		return err
	}
	if len(remaining) == 0 {
		return s.store.DeleteSetting(ctx, store.SettingDefaultAccount)
	}
	s.logger.Infof("default account is now %s", remaining[0].ID)
	return s.store.SetSetting(ctx, store.SettingDefaultAccount, remaining[0].ID)
}

// SetDefault makes id the default account.
func (s *Service) SetDefault(ctx context.Context, id string) error {
	if _, err := s.store.GetAccount(ctx, id); err != nil {
		return err
	}
	return s.store.SetSetting(ctx, store.SettingDefaultAccount, id)
}

// DefaultID returns the ID of the default account, or "" when there is none.
func (s *Service) DefaultID(ctx context.Context) (string, error) {
	return s.store.GetSetting(ctx, store.SettingDefaultAccount)
}

// Default returns the default account. It returns store.ErrNotFound when
// no default is set.
func (s *Service) Default(ctx context.Context) (*model.Account, error) {
	id, err := s.DefaultID(ctx)
	if err != nil {
		return nil, err
	}
	if id == "" {
		return nil, store.ErrNotFound
	}
	return s.store.GetAccount(ctx, id)
}

// Password returns the stored password for one server of an account.
func (s *Service) Password(ctx context.Context, id string, kind credential.Kind) (string, error) {
	if _, err := s.store.GetAccount(ctx, id); err != nil {
		return "", err
	}
	p, err := s.creds.Get(id, kind)
	if err != nil {
		return "", fmt.Errorf("reading password of account %s: %w", id, err)
	}
	return p, nil
}

// Draft rebuilds a validation draft for a stored account, including the
// passwords from the keyring.
func (s *Service) Draft(ctx context.Context, id string) (model.AccountDraft, error) {
	a, err := s.store.GetAccount(ctx, id)
	if err != nil {
		return model.AccountDraft{}, err
	}
	in, err := s.creds.Get(id, credential.Incoming)
	if err != nil {
		return model.AccountDraft{}, fmt.Errorf("reading incoming password of account %s: %w", id, err)
	}
	out, err := s.creds.Get(id, credential.Outgoing)
	if err != nil {
		return model.AccountDraft{}, fmt.Errorf("reading outgoing password of account %s: %w", id, err)
	}

	d := model.AccountDraft{
		Address:           a.Address,
		Password:          in,
		UserName:          a.Incoming.UserName,
		AccountName:       a.Name,
		DisplayName:       a.DisplayName,
		Incoming:          a.Incoming,
		Outgoing:          a.Outgoing,
		RetrievalMode:     a.RetrievalMode,
		OutgoingSizeLimit: a.OutgoingSizeLimit,
		ProviderID:        a.ProviderID,
	}
	d.Incoming.Password = in
	d.Outgoing.Password = out
	return d, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
