package setup

import "github.com/nhle/mailsettings/internal/model"

// Intent is a user or host action delivered to Workflow.Dispatch.
type Intent interface {
	isIntent()
}

// Field names a draft field editable through FieldChanged.
type Field int

const (
	FieldAddress Field = iota
	FieldPassword
	FieldAccountName
	FieldDisplayName
)

// FieldChanged sets a draft field. Changing the address or password drops
// every value derived from them.
type FieldChanged struct {
	Field Field
	Value string
}

// SubmitPressed starts automatic setup with the collected credentials.
type SubmitPressed struct{}

// ManualSetupPressed skips the provider registry and asks for server
// settings.
type ManualSetupPressed struct{}

// ServerTypeChosen selects the incoming protocol for manual setup.
type ServerTypeChosen struct {
	Type model.ServerType
}

// ManualServersSubmitted carries manually entered server settings.
type ManualServersSubmitted struct {
	Incoming model.ServerProfile
	Outgoing model.ServerProfile
}

// ValidationResponded delivers a response from the validator.
type ValidationResponded struct {
	Handle  model.ValidationHandle
	Code    int
	Payload string
}

// CancelPressed abandons the current step. A pending validation is
// cancelled.
type CancelPressed struct{}

// DetailsSubmitted completes setup after a successful validation.
type DetailsSubmitted struct {
	AccountName string
	DisplayName string
}

// ResetPressed returns to credential entry, keeping address and password.
type ResetPressed struct{}

func (FieldChanged) isIntent()           {}
func (SubmitPressed) isIntent()          {}
func (ManualSetupPressed) isIntent()     {}
func (ServerTypeChosen) isIntent()       {}
func (ManualServersSubmitted) isIntent() {}
func (ValidationResponded) isIntent()    {}
func (CancelPressed) isIntent()          {}
func (DetailsSubmitted) isIntent()       {}
func (ResetPressed) isIntent()           {}

// ResponseIntent converts an engine response into an intent.
func ResponseIntent(r model.ValidationResponse) ValidationResponded {
	return ValidationResponded{Handle: r.Handle, Code: r.Code, Payload: r.Payload}
}
