package setup

import "github.com/nhle/mailsettings/internal/model"

// RetryPolicy allows a single retry per draft, using the local part of the
// address as the login name.
type RetryPolicy struct {
	attempted bool
}

// ShouldRetry reports whether a failed attempt with outcome may be retried.
func (p *RetryPolicy) ShouldRetry(outcome model.ValidationOutcome) bool {
	if p.attempted {
		return false
	}
	return !outcome.Succeeded() &&
		outcome != model.OutcomeCancelled &&
		outcome != model.OutcomeUnknown
}

// Prepare marks the retry as used and rewrites the draft's login names.
func (p *RetryPolicy) Prepare(draft *model.AccountDraft) {
	p.attempted = true
	draft.SetUserName(DerivedUserName(draft.Address))
}

// Attempted reports whether the retry has been used.
func (p *RetryPolicy) Attempted() bool { return p.attempted }

// Reset makes the retry available again, for a new draft.
func (p *RetryPolicy) Reset() { p.attempted = false }

// DerivedUserName returns the alternate login name tried after a failed
// validation: the address up to its first '@'.
func DerivedUserName(address string) string {
	return LocalPart(address)
}
