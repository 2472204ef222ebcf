package setup

import (
	"errors"
	"fmt"

	"github.com/nhle/mailsettings/internal/model"
)

var (
	// ErrIncompleteInput is returned when the address or password is empty.
	ErrIncompleteInput = errors.New("email address and password are required")

	// ErrInvalidAddressSyntax is returned when the address is not a
	// syntactically valid email address.
	ErrInvalidAddressSyntax = errors.New("invalid email address")

	// ErrDuplicateAccount is returned when an account with the same address
	// already exists.
	ErrDuplicateAccount = errors.New("an account with this address already exists")

	// ErrProviderUnresolved is returned when no server settings are known
	// for the address and none were entered.
	ErrProviderUnresolved = errors.New("mail server settings are unknown")

	// ErrCancelled is returned when a validation was cancelled. It is never
	// shown to the user.
	ErrCancelled = errors.New("account setup cancelled")

	// ErrValidationPending is returned when a validation is started while
	// another one is still in flight.
	ErrValidationPending = errors.New("a validation request is already pending")

	// ErrUnexpectedIntent is returned when an intent is not valid for the
	// current workflow state.
	ErrUnexpectedIntent = errors.New("action not available in current step")
)

// ValidationError indicates that the mail servers rejected the account.
type ValidationError struct {
	Code    int
	Outcome model.ValidationOutcome
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed (%s, code %d)", e.Outcome, e.Code)
}

// IsValidationFailed reports whether err (or any error in its chain) is a
// ValidationError.
func IsValidationFailed(err error) bool {
	var vErr *ValidationError
	return errors.As(err, &vErr)
}

// UserMessage returns the text shown to the user for err, or an empty
// string when nothing should be shown.
func UserMessage(err error) string {
	var vErr *ValidationError
	switch {
	case err == nil, errors.Is(err, ErrCancelled):
		return ""
	case errors.Is(err, ErrIncompleteInput):
		return "Enter your email address and password."
	case errors.Is(err, ErrInvalidAddressSyntax):
		return "The email address is not valid."
	case errors.Is(err, ErrDuplicateAccount):
		return "This account is already registered."
	case errors.Is(err, ErrProviderUnresolved):
		return "Enter the incoming and outgoing server settings."
	case errors.As(err, &vErr):
		if vErr.Outcome == model.OutcomeAuthFailure {
			return "Unable to sign in. Check your user name and password."
		}
		return fmt.Sprintf("Unable to connect to the mail server (error %d).", vErr.Code)
	default:
		return err.Error()
	}
}
