package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/nhle/mailsettings/internal/model"
)

// SQLiteStore implements the Store interface using a local SQLite database.
type SQLiteStore struct {
	db *sqlx.DB
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath,
// enables WAL mode, and runs any pending schema migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	// Every connection to ":memory:" is a separate database.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// runMigrations checks the current schema version and applies any
// outstanding migrations in order.
func (s *SQLiteStore) runMigrations() error {
	currentVersion := 0

	var tableCount int
	err := s.db.Get(
		&tableCount,
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	)
	if err != nil {
		return fmt.Errorf("checking schema_version table: %w", err)
	}

	if tableCount > 0 {
		err = s.db.Get(&currentVersion, "SELECT COALESCE(MAX(version), 0) FROM schema_version")
		if err != nil {
			return fmt.Errorf("reading schema version: %w", err)
		}
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}
		if _, err := s.db.Exec(m.sql); err != nil {
			return fmt.Errorf("applying migration v%d: %w", m.version, err)
		}
	}

	return nil
}

// accountRow mirrors the accounts table.
type accountRow struct {
	ID                string    `db:"id"`
	Name              string    `db:"name"`
	Address           string    `db:"address"`
	DisplayName       string    `db:"display_name"`
	Incoming          string    `db:"incoming"`
	Outgoing          string    `db:"outgoing"`
	RetrievalMode     int       `db:"retrieval_mode"`
	OutgoingSizeLimit int64     `db:"outgoing_size_limit"`
	ProviderID        string    `db:"provider_id"`
	CreatedAt         time.Time `db:"created_at"`
	UpdatedAt         time.Time `db:"updated_at"`
	NotifyEnabled     int       `db:"notify_enabled"`
	NotifyVibrate     int       `db:"notify_vibrate"`
	NotifyRingtone    string    `db:"notify_ringtone"`
	NotifyBadge       int       `db:"notify_badge"`
	SignatureEnabled  int       `db:"signature_enabled"`
	SignatureText     string    `db:"signature_text"`
}

// storedProfile is the JSON form of a server profile. Passwords are never
// written to the database.
type storedProfile struct {
	Type     model.ServerType `json:"type"`
	Host     string           `json:"host"`
	Port     int              `json:"port"`
	Security model.Security   `json:"security"`
	UserName string           `json:"user_name"`
}

func encodeProfile(p model.ServerProfile) (string, error) {
	b, err := json.Marshal(storedProfile{
		Type:     p.Type,
		Host:     p.Host,
		Port:     p.Port,
		Security: p.Security,
		UserName: p.UserName,
	})
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func decodeProfile(s string) (model.ServerProfile, error) {
	var sp storedProfile
	if err := json.Unmarshal([]byte(s), &sp); err != nil {
		return model.ServerProfile{}, err
	}
	return model.ServerProfile{
		Type:     sp.Type,
		Host:     sp.Host,
		Port:     sp.Port,
		Security: sp.Security,
		UserName: sp.UserName,
	}, nil
}

func toRow(a model.Account) (accountRow, error) {
	incoming, err := encodeProfile(a.Incoming)
	if err != nil {
		return accountRow{}, fmt.Errorf("marshaling incoming server for account %s: %w", a.ID, err)
	}
	outgoing, err := encodeProfile(a.Outgoing)
	if err != nil {
		return accountRow{}, fmt.Errorf("marshaling outgoing server for account %s: %w", a.ID, err)
	}
	return accountRow{
		ID:                a.ID,
		Name:              a.Name,
		Address:           a.Address,
		DisplayName:       a.DisplayName,
		Incoming:          incoming,
		Outgoing:          outgoing,
		RetrievalMode:     int(a.RetrievalMode),
		OutgoingSizeLimit: a.OutgoingSizeLimit,
		ProviderID:        a.ProviderID,
		CreatedAt:         a.CreatedAt.UTC(),
		UpdatedAt:         a.UpdatedAt.UTC(),
		NotifyEnabled:     boolToInt(a.Notification.Enabled),
		NotifyVibrate:     boolToInt(a.Notification.Vibrate),
		NotifyRingtone:    a.Notification.Ringtone,
		NotifyBadge:       boolToInt(a.Notification.Badge),
		SignatureEnabled:  boolToInt(a.Signature.Enabled),
		SignatureText:     a.Signature.Text,
	}, nil
}

func (r accountRow) toAccount() (model.Account, error) {
	incoming, err := decodeProfile(r.Incoming)
	if err != nil {
		return model.Account{}, fmt.Errorf("parsing incoming server for account %s: %w", r.ID, err)
	}
	outgoing, err := decodeProfile(r.Outgoing)
	if err != nil {
		return model.Account{}, fmt.Errorf("parsing outgoing server for account %s: %w", r.ID, err)
	}
	return model.Account{
		ID:                r.ID,
		Name:              r.Name,
		Address:           r.Address,
		DisplayName:       r.DisplayName,
		Incoming:          incoming,
		Outgoing:          outgoing,
		RetrievalMode:     model.RetrievalMode(r.RetrievalMode),
		OutgoingSizeLimit: r.OutgoingSizeLimit,
		ProviderID:        r.ProviderID,
		Notification: model.NotificationSettings{
			Enabled:  r.NotifyEnabled != 0,
			Vibrate:  r.NotifyVibrate != 0,
			Ringtone: r.NotifyRingtone,
			Badge:    r.NotifyBadge != 0,
		},
		Signature: model.SignatureSettings{
			Enabled: r.SignatureEnabled != 0,
			Text:    r.SignatureText,
		},
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}, nil
}

const accountColumns = `
	id, name, address, display_name, incoming, outgoing,
	retrieval_mode, outgoing_size_limit, provider_id,
	created_at, updated_at,
	notify_enabled, notify_vibrate, notify_ringtone, notify_badge,
	signature_enabled, signature_text`

// CreateAccount inserts a new account. The account must carry an ID.
func (s *SQLiteStore) CreateAccount(ctx context.Context, account model.Account) error {
	if account.ID == "" {
		return fmt.Errorf("account id must not be empty")
	}
	if strings.TrimSpace(account.Address) == "" {
		return fmt.Errorf("account address must not be empty")
	}
	now := time.Now().UTC()
	if account.CreatedAt.IsZero() {
		account.CreatedAt = now
	}
	account.UpdatedAt = now

	row, err := toRow(account)
	if err != nil {
		return err
	}

	_, err = s.db.NamedExecContext(ctx, `
		INSERT INTO accounts (`+accountColumns+`)
		VALUES (
			:id, :name, :address, :display_name, :incoming, :outgoing,
			:retrieval_mode, :outgoing_size_limit, :provider_id,
			:created_at, :updated_at,
			:notify_enabled, :notify_vibrate, :notify_ringtone, :notify_badge,
			:signature_enabled, :signature_text
		)`, row)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("creating account %s: %w", account.Address, ErrDuplicateAddress)
		}
		return fmt.Errorf("creating account %s: %w", account.ID, err)
	}
	return nil
}

// UpdateAccount replaces every field of an existing account except its
// creation time.
func (s *SQLiteStore) UpdateAccount(ctx context.Context, account model.Account) error {
	account.UpdatedAt = time.Now().UTC()

	row, err := toRow(account)
	if err != nil {
		return err
	}

	result, err := s.db.NamedExecContext(ctx, `
		UPDATE accounts SET
			name = :name, address = :address, display_name = :display_name,
			incoming = :incoming, outgoing = :outgoing,
			retrieval_mode = :retrieval_mode, outgoing_size_limit = :outgoing_size_limit,
			provider_id = :provider_id, updated_at = :updated_at,
			notify_enabled = :notify_enabled, notify_vibrate = :notify_vibrate,
			notify_ringtone = :notify_ringtone, notify_badge = :notify_badge,
			signature_enabled = :signature_enabled, signature_text = :signature_text
		WHERE id = :id`, row)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("updating account %s: %w", account.ID, ErrDuplicateAddress)
		}
		return fmt.Errorf("updating account %s: %w", account.ID, err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("updating account %s: %w", account.ID, ErrNotFound)
	}
	return nil
}

// DeleteAccount removes an account by ID.
func (s *SQLiteStore) DeleteAccount(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM accounts WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting account %s: %w", id, err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("deleting account %s: %w", id, ErrNotFound)
	}
	return nil
}

// GetAccount retrieves a single account by ID.
func (s *SQLiteStore) GetAccount(ctx context.Context, id string) (*model.Account, error) {
	return s.getAccount(ctx, "id = ?", id)
}

// GetAccountByAddress retrieves the account for address, ignoring case.
func (s *SQLiteStore) GetAccountByAddress(ctx context.Context, address string) (*model.Account, error) {
	return s.getAccount(ctx, "address = ? COLLATE NOCASE", strings.TrimSpace(address))
}

func (s *SQLiteStore) getAccount(ctx context.Context, where string, arg any) (*model.Account, error) {
	var row accountRow
	err := s.db.GetContext(ctx, &row, "SELECT "+accountColumns+" FROM accounts WHERE "+where, arg)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting account: %w", err)
	}

	account, err := row.toAccount()
	if err != nil {
		return nil, err
	}
	return &account, nil
}

// GetAccounts retrieves all accounts in creation order.
func (s *SQLiteStore) GetAccounts(ctx context.Context) ([]model.Account, error) {
	var rows []accountRow
	err := s.db.SelectContext(ctx, &rows,
		"SELECT "+accountColumns+" FROM accounts ORDER BY created_at, rowid")
	if err != nil {
		return nil, fmt.Errorf("querying accounts: %w", err)
	}

	accounts := make([]model.Account, 0, len(rows))
	for _, r := range rows {
		a, err := r.toAccount()
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}
	return accounts, nil
}

// GetSetting returns the value stored for key, or "" when unset.
func (s *SQLiteStore) GetSetting(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.GetContext(ctx, &value, "SELECT value FROM settings WHERE key = ?", key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("getting setting %s: %w", key, err)
	}
	return value, nil
}

// SetSetting inserts or replaces the value for key.
func (s *SQLiteStore) SetSetting(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO settings (key, value, updated_at)
		VALUES (?, ?, ?)`,
		key, value, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("setting %s: %w", key, err)
	}
	return nil
}

// DeleteSetting removes key. Removing an unset key is not an error.
func (s *SQLiteStore) DeleteSetting(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM settings WHERE key = ?", key); err != nil {
		return fmt.Errorf("deleting setting %s: %w", key, err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// boolToInt converts a boolean to 0 or 1 for SQLite storage.
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
