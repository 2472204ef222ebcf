package setup

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nhle/mailsettings/internal/model"
)

func TestControllerSingleFlight(t *testing.T) {
	v := &fakeValidator{}
	c := NewController(v)
	draft := model.AccountDraft{Address: "jane@example.com"}

	require.NoError(t, c.Start(context.Background(), &draft))
	require.Equal(t, AttemptPending, c.State())

	err := c.Start(context.Background(), &draft)
	require.ErrorIs(t, err, ErrValidationPending)
	require.Len(t, v.calls, 1)
	require.Equal(t, model.ValidationHandle(1), c.Pending())
}

func TestControllerIgnoresStaleHandle(t *testing.T) {
	v := &fakeValidator{}
	c := NewController(v)
	draft := model.AccountDraft{Address: "jane@example.com"}
	require.NoError(t, c.Start(context.Background(), &draft))

	before := draft
	accepted := c.OnResponse(c.Pending()+7, model.CodeNone, "IMAP4_IDLE_SUPPORTED SMTP_MAIL_SIZE_LIMIT 99 ", &draft)
	require.False(t, accepted)
	require.Equal(t, before, draft)
	require.Equal(t, AttemptPending, c.State())
}

func TestControllerIgnoresResponseWhenIdle(t *testing.T) {
	c := NewController(&fakeValidator{})
	draft := model.AccountDraft{}
	require.False(t, c.OnResponse(1, model.CodeNone, "SMTP_MAIL_SIZE_LIMIT 5", &draft))
	require.Zero(t, draft.OutgoingSizeLimit)
	require.Equal(t, AttemptIdle, c.State())
}

func TestControllerSuccessAppliesPayload(t *testing.T) {
	c := NewController(&fakeValidator{})
	draft := model.AccountDraft{}
	require.NoError(t, c.Start(context.Background(), &draft))

	require.True(t, c.OnResponse(c.Pending(), model.CodeNone, "IMAP4_IDLE_SUPPORTED SMTP_MAIL_SIZE_LIMIT 10485760 ", &draft))
	require.Equal(t, AttemptSucceeded, c.State())
	require.Equal(t, model.OutcomeSuccess, c.Outcome())
	require.Equal(t, model.NoHandle, c.Pending())
	require.True(t, draft.RetrievalMode.Has(model.IdleSupported))
	require.Equal(t, int64(10485760), draft.OutgoingSizeLimit)
	require.NoError(t, c.Err())
}

func TestControllerOutgoingFailureIsWarning(t *testing.T) {
	c := NewController(&fakeValidator{})
	draft := model.AccountDraft{}
	require.NoError(t, c.Start(context.Background(), &draft))

	require.True(t, c.OnResponse(c.Pending(), model.CodeOutgoingFailed, "", &draft))
	require.Equal(t, AttemptSucceeded, c.State())
	require.Equal(t, model.OutcomeSuccessWithWarning, c.Outcome())
}

func TestControllerFailureRecordsOutcome(t *testing.T) {
	c := NewController(&fakeValidator{})
	draft := model.AccountDraft{}
	require.NoError(t, c.Start(context.Background(), &draft))

	require.True(t, c.OnResponse(c.Pending(), model.CodeAuthFailed, "", &draft))
	require.Equal(t, AttemptFailed, c.State())
	require.Equal(t, model.OutcomeAuthFailure, c.Outcome())

	var vErr *ValidationError
	require.True(t, errors.As(c.Err(), &vErr))
	require.Equal(t, model.CodeAuthFailed, vErr.Code)
}

func TestControllerCancel(t *testing.T) {
	v := &fakeValidator{}
	c := NewController(v)
	draft := model.AccountDraft{}
	require.NoError(t, c.Start(context.Background(), &draft))
	h := c.Pending()

	c.Cancel()
	require.Equal(t, AttemptCancelled, c.State())
	require.Equal(t, []model.ValidationHandle{h}, v.cancelled)
	require.False(t, c.OnResponse(h, model.CodeNone, "", &draft))
}

func TestControllerValidatorError(t *testing.T) {
	c := NewController(&fakeValidator{err: errors.New("engine closed")})
	draft := model.AccountDraft{}

	err := c.Start(context.Background(), &draft)
	require.ErrorContains(t, err, "engine closed")
	require.Equal(t, AttemptFailed, c.State())
	require.Equal(t, model.OutcomeServerFailure, c.Outcome())
}
