package testutil

import (
	"testing"
	"time"

	"github.com/nhle/mailsettings/internal/model"
	"github.com/nhle/mailsettings/internal/store"
)

// NewTestStore creates an in-memory SQLiteStore with all migrations applied.
// It automatically closes the store when the test completes.
func NewTestStore(t *testing.T) *store.SQLiteStore {
	t.Helper()

	s, err := store.NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("creating test store: %v", err)
	}

	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("closing test store: %v", err)
		}
	})

	return s
}

// NewAccount returns a fully populated account for address.
func NewAccount(id, address string) model.Account {
	return model.Account{
		ID:          id,
		Name:        address,
		Address:     address,
		DisplayName: "Test User",
		Incoming: model.ServerProfile{
			Type: model.ServerTypeIMAP, Host: "imap.example.com", Port: 993,
			Security: model.SecuritySSL, UserName: address,
		},
		Outgoing: model.ServerProfile{
			Type: model.ServerTypeSMTP, Host: "smtp.example.com", Port: 465,
			Security: model.SecuritySSL, UserName: address,
		},
		RetrievalMode:     model.RetrieveAll,
		OutgoingSizeLimit: 10485760,
		ProviderID:        "example",
		Notification:      model.DefaultNotificationSettings(),
		Signature:         model.DefaultSignature(),
		CreatedAt:         time.Now().UTC(),
	}
}
