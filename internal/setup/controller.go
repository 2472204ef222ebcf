package setup

import (
	"context"
	"fmt"

	"github.com/nhle/mailsettings/internal/model"
)

// Validator starts asynchronous account validation. The result for the
// returned handle is reported back once, through Controller.OnResponse.
type Validator interface {
	Validate(ctx context.Context, draft model.AccountDraft) (model.ValidationHandle, error)
	Cancel(handle model.ValidationHandle)
}

// AttemptState represents the state of one validation attempt.
type AttemptState int

const (
	AttemptIdle AttemptState = iota
	AttemptPending
	AttemptSucceeded
	AttemptFailed
	AttemptCancelled
)

func (s AttemptState) String() string {
	switch s {
	case AttemptIdle:
		return "idle"
	case AttemptPending:
		return "pending"
	case AttemptSucceeded:
		return "succeeded"
	case AttemptFailed:
		return "failed"
	case AttemptCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Controller issues validation requests and interprets their responses.
// At most one request is in flight at a time.
type Controller struct {
	validator Validator
	state     AttemptState
	pending   model.ValidationHandle
	outcome   model.ValidationOutcome
	code      int
}

// NewController creates a controller that validates through v.
func NewController(v Validator) *Controller {
	return &Controller{validator: v}
}

// State returns the state of the current attempt.
func (c *Controller) State() AttemptState { return c.state }

// Pending returns the handle of the in-flight request, or model.NoHandle.
func (c *Controller) Pending() model.ValidationHandle { return c.pending }

// Outcome returns the outcome of the last finished attempt.
func (c *Controller) Outcome() model.ValidationOutcome { return c.outcome }

// Code returns the server error code of the last finished attempt.
func (c *Controller) Code() int { return c.code }

// Err returns the error describing the last failed attempt, or nil.
func (c *Controller) Err() error {
	if c.state != AttemptFailed {
		return nil
	}
	return &ValidationError{Code: c.code, Outcome: c.outcome}
}

// Start issues a validation request for draft. It fails without contacting
// the validator while another request is pending.
func (c *Controller) Start(ctx context.Context, draft *model.AccountDraft) error {
	if c.state == AttemptPending {
		return ErrValidationPending
	}

	handle, err := c.validator.Validate(ctx, *draft)
	if err != nil {
		c.finish(AttemptFailed, model.OutcomeServerFailure, model.CodeUnknown)
		return fmt.Errorf("starting validation: %w", err)
	}
	if handle == model.NoHandle {
		c.finish(AttemptFailed, model.OutcomeServerFailure, model.CodeUnknown)
		return fmt.Errorf("starting validation: validator returned no handle")
	}

	c.state = AttemptPending
	c.pending = handle
	c.outcome = model.OutcomeUnknown
	c.code = model.CodeNone
	return nil
}

// OnResponse interprets the response for handle. Responses for any other
// handle, or arriving while nothing is pending, are ignored and leave the
// draft untouched. It reports whether the response was accepted.
func (c *Controller) OnResponse(
	handle model.ValidationHandle,
	code int,
	payload string,
	draft *model.AccountDraft,
) bool {
	if c.state != AttemptPending || c.pending == model.NoHandle || handle != c.pending {
		return false
	}

	outcome := model.OutcomeForCode(code)
	switch {
	case outcome.Succeeded():
		applyHints(draft, ParsePayload(payload))
		c.finish(AttemptSucceeded, outcome, code)
	case outcome == model.OutcomeCancelled:
		c.finish(AttemptCancelled, outcome, code)
	default:
		c.finish(AttemptFailed, outcome, code)
	}
	return true
}

// Cancel aborts the pending request, if any.
func (c *Controller) Cancel() {
	if c.state != AttemptPending {
		return
	}
	c.validator.Cancel(c.pending)
	c.finish(AttemptCancelled, model.OutcomeCancelled, model.CodeCancelled)
}

// Reset returns the controller to idle. A pending request is cancelled.
func (c *Controller) Reset() {
	c.Cancel()
	c.state = AttemptIdle
	c.outcome = model.OutcomeUnknown
	c.code = model.CodeNone
}

func (c *Controller) finish(state AttemptState, outcome model.ValidationOutcome, code int) {
	c.state = state
	c.pending = model.NoHandle
	c.outcome = outcome
	c.code = code
}
