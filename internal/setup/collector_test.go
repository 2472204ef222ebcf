package setup

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nhle/mailsettings/internal/model"
)

func TestCollectRejectsMissingFields(t *testing.T) {
	cases := []model.AccountDraft{
		{},
		{Address: "jane@example.com"},
		{Password: "secret"},
		{Address: "   ", Password: "secret"},
	}
	for _, d := range cases {
		draft := d
		require.ErrorIs(t, Collect(&draft), ErrIncompleteInput, "draft %+v", d)
	}
}

func TestCollectRejectsInvalidSyntax(t *testing.T) {
	for _, addr := range []string{
		"foo",
		"foo@",
		"@example.com",
		"foo@bar",
		"foo..bar@example.com",
		".foo@example.com",
		"foo@exa mple.com",
	} {
		draft := model.AccountDraft{Address: addr, Password: "secret"}
		require.ErrorIs(t, Collect(&draft), ErrInvalidAddressSyntax, "address %q", addr)
	}
}

func TestCollectTrimsAndSeedsDraft(t *testing.T) {
	draft := model.AccountDraft{Address: "  jane.doe@example.com\t", Password: "secret"}
	require.NoError(t, Collect(&draft))

	require.Equal(t, "jane.doe@example.com", draft.Address)
	require.Equal(t, "jane.doe@example.com", draft.UserName)
	require.Equal(t, "jane.doe@example.com", draft.Incoming.UserName)
	require.Equal(t, "jane.doe@example.com", draft.Outgoing.UserName)
	require.Equal(t, "secret", draft.Incoming.Password)
	require.Equal(t, "secret", draft.Outgoing.Password)
	require.Equal(t, "jane.doe@example.com", draft.AccountName)
	require.Equal(t, "jane.doe", draft.DisplayName)
}

func TestCollectReplacesEarlierSeed(t *testing.T) {
	draft := model.AccountDraft{Address: "old@example.com", Password: "oldpw"}
	require.NoError(t, Collect(&draft))

	draft.Address = "jane@example.com"
	draft.Password = "newpw"
	require.NoError(t, Collect(&draft))

	require.Equal(t, "jane@example.com", draft.UserName)
	require.Equal(t, "jane@example.com", draft.Incoming.UserName)
	require.Equal(t, "jane@example.com", draft.Outgoing.UserName)
	require.Equal(t, "newpw", draft.Incoming.Password)
	require.Equal(t, "newpw", draft.Outgoing.Password)
	require.Equal(t, "jane@example.com", draft.AccountName)
	require.Equal(t, "jane", draft.DisplayName)
}

func TestCheckInputDoesNotSeed(t *testing.T) {
	draft := model.AccountDraft{Address: " jane@example.com ", Password: "secret"}
	require.NoError(t, CheckInput(&draft))
	require.Equal(t, "jane@example.com", draft.Address)
	require.Empty(t, draft.UserName)
	require.Empty(t, draft.Incoming.Password)
	require.Empty(t, draft.AccountName)
}

func TestDerivedUserName(t *testing.T) {
	require.Equal(t, "jane.doe", DerivedUserName("jane.doe@example.com"))
	require.Equal(t, "noat", DerivedUserName("noat"))
}
