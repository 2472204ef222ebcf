package setup

import (
	"context"
	"errors"
	"fmt"
	"strings"

	gologme "github.com/gologme/log"

	"github.com/nhle/mailsettings/internal/logging"
	"github.com/nhle/mailsettings/internal/model"
)

// ProviderResolver finds server settings for an address.
type ProviderResolver interface {
	// Resolve returns the known provider serving the address domain.
	Resolve(address string) (model.ProviderEntry, bool)

	// Guess returns starting server settings for manual setup.
	Guess(address string, serverType model.ServerType) (incoming, outgoing model.ServerProfile)
}

// AccountStore is the persistent account storage used by the workflow.
type AccountStore interface {
	IsDuplicateAddress(ctx context.Context, address string) (bool, error)
	PersistAccount(ctx context.Context, draft model.AccountDraft) (string, error)
}

// State represents the step the setup workflow is in.
type State int

const (
	StateCollectingInput State = iota
	StateResolving
	StateChoosingServerType
	StateManualEntry
	StateValidating
	StateRetrying
	StateSucceeded
	StateFailed
	StateCancelled
	StateSaved
)

func (s State) String() string {
	switch s {
	case StateCollectingInput:
		return "collecting-input"
	case StateResolving:
		return "resolving"
	case StateChoosingServerType:
		return "choosing-server-type"
	case StateManualEntry:
		return "manual-entry"
	case StateValidating:
		return "validating"
	case StateRetrying:
		return "retrying"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	case StateCancelled:
		return "cancelled"
	case StateSaved:
		return "saved"
	default:
		return "unknown"
	}
}

// Busy reports whether a validation request is in flight.
func (s State) Busy() bool {
	return s == StateValidating || s == StateRetrying
}

// Workflow drives one account setup session from credential entry to a
// persisted account. It is not safe for concurrent use; all intents must be
// dispatched from the host event loop.
type Workflow struct {
	draft     model.AccountDraft
	state     State
	ctrl      *Controller
	retry     RetryPolicy
	providers ProviderResolver
	accounts  AccountStore
	logger    *gologme.Logger

	err       error
	accountID string
}

// Option customizes a Workflow.
type Option func(*Workflow)

// WithLogger overrides the logger used for workflow diagnostics.
func WithLogger(logger *gologme.Logger) Option {
	return func(w *Workflow) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// WithDraft starts the workflow with pre-filled draft fields.
func WithDraft(draft model.AccountDraft) Option {
	return func(w *Workflow) {
		w.draft = draft
	}
}

// New creates a workflow in the credential entry step.
func New(v Validator, p ProviderResolver, a AccountStore, opts ...Option) *Workflow {
	w := &Workflow{
		state:     StateCollectingInput,
		ctrl:      NewController(v),
		providers: p,
		accounts:  a,
		logger:    logging.Discard(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// State returns the current step.
func (w *Workflow) State() State { return w.state }

// Draft returns a copy of the draft.
func (w *Workflow) Draft() model.AccountDraft { return w.draft }

// Err returns the error surfaced by the last intent, or nil.
func (w *Workflow) Err() error { return w.err }

// AccountID returns the ID of the persisted account once saved.
func (w *Workflow) AccountID() string { return w.accountID }

// Retried reports whether the derived-username retry was used.
func (w *Workflow) Retried() bool { return w.retry.Attempted() }

// Outcome returns the outcome of the last finished validation attempt.
func (w *Workflow) Outcome() model.ValidationOutcome { return w.ctrl.Outcome() }

// Pending returns the handle of the in-flight validation, if any.
func (w *Workflow) Pending() model.ValidationHandle { return w.ctrl.Pending() }

// Warning reports whether validation succeeded with an outgoing server
// warning.
func (w *Workflow) Warning() bool {
	return w.ctrl.Outcome() == model.OutcomeSuccessWithWarning
}

// Done reports whether the workflow reached a terminal step.
func (w *Workflow) Done() bool {
	return w.state == StateCancelled || w.state == StateSaved
}

// Dispatch applies intent to the workflow. Errors are user-facing and
// recoverable; the workflow stays usable after any of them.
func (w *Workflow) Dispatch(ctx context.Context, intent Intent) error {
	w.logger.Debugf("dispatch %T in state %s", intent, w.state)

	var err error
	switch in := intent.(type) {
	case FieldChanged:
		err = w.onFieldChanged(in)
	case SubmitPressed:
		err = w.onSubmit(ctx)
	case ManualSetupPressed:
		err = w.onManualSetup(ctx)
	case ServerTypeChosen:
		err = w.onServerTypeChosen(in)
	case ManualServersSubmitted:
		err = w.onManualServers(ctx, in)
	case ValidationResponded:
		err = w.onResponse(ctx, in)
	case CancelPressed:
		w.onCancel()
	case DetailsSubmitted:
		err = w.onDetails(ctx, in)
	case ResetPressed:
		w.onReset()
	default:
		err = fmt.Errorf("%w: %T", ErrUnexpectedIntent, intent)
	}

	w.err = err
	return err
}

func (w *Workflow) onFieldChanged(in FieldChanged) error {
	switch in.Field {
	case FieldAddress, FieldPassword:
		if w.state != StateCollectingInput {
			return ErrUnexpectedIntent
		}
		address, password := w.draft.Address, w.draft.Password
		if in.Field == FieldAddress {
			address = in.Value
		} else {
			password = in.Value
		}
		w.draft = model.AccountDraft{Address: address, Password: password}
	case FieldAccountName, FieldDisplayName:
		if w.state != StateSucceeded {
			return ErrUnexpectedIntent
		}
		if in.Field == FieldAccountName {
			w.draft.AccountName = in.Value
		} else {
			w.draft.DisplayName = in.Value
		}
	default:
		return ErrUnexpectedIntent
	}
	return nil
}

func (w *Workflow) onSubmit(ctx context.Context) error {
	if w.state != StateCollectingInput {
		return ErrUnexpectedIntent
	}
	if err := w.collect(ctx); err != nil {
		return err
	}

	w.state = StateResolving
	entry, ok := w.providers.Resolve(w.draft.Address)
	if !ok {
		w.logger.Infof("no provider for %s, asking for server type", w.draft.Address)
		w.state = StateChoosingServerType
		return nil
	}

	w.logger.Infof("using provider %s for %s", entry.ID, w.draft.Address)
	w.draft.ApplyProvider(entry)
	return w.startValidation(ctx)
}

func (w *Workflow) onManualSetup(ctx context.Context) error {
	if w.state != StateCollectingInput {
		return ErrUnexpectedIntent
	}
	if err := w.collect(ctx); err != nil {
		return err
	}
	w.state = StateChoosingServerType
	return nil
}

func (w *Workflow) onServerTypeChosen(in ServerTypeChosen) error {
	if w.state != StateChoosingServerType {
		return ErrUnexpectedIntent
	}
	if in.Type != model.ServerTypeIMAP && in.Type != model.ServerTypePOP3 {
		return fmt.Errorf("%w: server type %q", ErrUnexpectedIntent, in.Type)
	}

	incoming, outgoing := w.providers.Guess(w.draft.Address, in.Type)
	w.draft.ProviderID = ""
	w.draft.ApplyServers(incoming, outgoing)
	w.state = StateManualEntry
	return nil
}

func (w *Workflow) onManualServers(ctx context.Context, in ManualServersSubmitted) error {
	if w.state != StateManualEntry {
		return ErrUnexpectedIntent
	}
	if !completeProfile(in.Incoming) || !completeProfile(in.Outgoing) {
		return ErrProviderUnresolved
	}
	if in.Incoming.Type == "" {
		in.Incoming.Type = w.draft.Incoming.Type
	}

	w.draft.ApplyServers(in.Incoming, in.Outgoing)
	if in.Incoming.UserName != "" {
		w.draft.UserName = in.Incoming.UserName
	}
	return w.startValidation(ctx)
}

func (w *Workflow) onResponse(ctx context.Context, in ValidationResponded) error {
	if !w.ctrl.OnResponse(in.Handle, in.Code, in.Payload, &w.draft) {
		w.logger.Debugf("ignoring response for handle %d", in.Handle)
		return nil
	}

	switch w.ctrl.State() {
	case AttemptSucceeded:
		w.logger.Infof("validated %s as %s (%s)", w.draft.Address, w.draft.UserName, w.ctrl.Outcome())
		w.state = StateSucceeded
		return nil
	case AttemptCancelled:
		w.state = StateCancelled
		return nil
	default:
		return w.afterFailure(ctx)
	}
}

func (w *Workflow) onCancel() {
	if w.Done() {
		return
	}
	if w.state.Busy() {
		w.ctrl.Cancel()
	}
	w.logger.Infof("setup cancelled in state %s", w.state)
	w.state = StateCancelled
}

func (w *Workflow) onDetails(ctx context.Context, in DetailsSubmitted) error {
	if w.state != StateSucceeded {
		return ErrUnexpectedIntent
	}
	if name := strings.TrimSpace(in.AccountName); name != "" {
		w.draft.AccountName = name
	}
	if name := strings.TrimSpace(in.DisplayName); name != "" {
		w.draft.DisplayName = name
	}

	id, err := w.accounts.PersistAccount(ctx, w.draft)
	if err != nil {
		return fmt.Errorf("saving account: %w", err)
	}

	w.logger.Infof("created account %s for %s", id, w.draft.Address)
	w.accountID = id
	w.state = StateSaved
	return nil
}

func (w *Workflow) onReset() {
	w.ctrl.Reset()
	w.retry.Reset()
	w.draft = model.AccountDraft{
		Address:  w.draft.Address,
		Password: w.draft.Password,
	}
	w.accountID = ""
	w.state = StateCollectingInput
}

// collect validates the credentials, rejects known addresses and seeds the
// derived fields.
func (w *Workflow) collect(ctx context.Context) error {
	if err := CheckInput(&w.draft); err != nil {
		return err
	}

	dup, err := w.accounts.IsDuplicateAddress(ctx, w.draft.Address)
	if err != nil {
		return fmt.Errorf("checking existing accounts: %w", err)
	}
	if dup {
		return ErrDuplicateAccount
	}
	Seed(&w.draft)
	return nil
}

func (w *Workflow) startValidation(ctx context.Context) error {
	err := w.ctrl.Start(ctx, &w.draft)
	if errors.Is(err, ErrValidationPending) {
		return err
	}
	if err != nil {
		w.logger.Warnf("validation for %s did not start: %v", w.draft.Address, err)
		return w.afterFailure(ctx)
	}

	if w.retry.Attempted() {
		w.state = StateRetrying
	} else {
		w.state = StateValidating
	}
	return nil
}

// afterFailure applies the retry policy to a failed attempt.
func (w *Workflow) afterFailure(ctx context.Context) error {
	outcome := w.ctrl.Outcome()
	if w.retry.ShouldRetry(outcome) {
		w.retry.Prepare(&w.draft)
		w.logger.Infof("validation failed (%s), retrying as %s", outcome, w.draft.UserName)
		return w.startValidation(ctx)
	}

	w.state = StateFailed
	err := w.ctrl.Err()
	if err == nil {
		err = &ValidationError{Code: w.ctrl.Code(), Outcome: outcome}
	}
	w.logger.Warnf("validation for %s failed: %v", w.draft.Address, err)
	return err
}

func completeProfile(p model.ServerProfile) bool {
	return strings.TrimSpace(p.Host) != "" && p.Port > 0 && p.Port <= 65535
}
