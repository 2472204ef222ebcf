package model

// ValidationHandle correlates an asynchronous validation request with its
// response.
type ValidationHandle int64

// NoHandle denotes that no validation request is in flight.
const NoHandle ValidationHandle = 0

// Error codes reported by the account engine in a ValidationResponse.
const (
	CodeNone             = 0
	CodeAuthFailed       = 1001
	CodeConnectionFailed = 1002
	CodeTLSFailed        = 1003
	CodeOutgoingFailed   = 1004
	CodeTimeout          = 1005
	CodeCancelled        = 1006
	CodeUnknown          = 1099
)

// Markers found in a validation response payload.
const (
	PayloadIdleMarker      = "IMAP4_IDLE_SUPPORTED"
	PayloadSizeLimitMarker = "SMTP_MAIL_SIZE_LIMIT"
)

// ValidationResponse is delivered by the account engine once per handle.
type ValidationResponse struct {
	Handle ValidationHandle
	Code   int

	// Payload carries free-text server metadata tokens separated by spaces.
	Payload string
}

// ValidationOutcome is the interpreted result of a validation attempt.
type ValidationOutcome int

const (
	OutcomeUnknown ValidationOutcome = iota
	OutcomeSuccess
	OutcomeSuccessWithWarning
	OutcomeAuthFailure
	OutcomeServerFailure
	OutcomeCancelled
)

// String returns a short label for the outcome.
func (o ValidationOutcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeSuccessWithWarning:
		return "success-with-warning"
	case OutcomeAuthFailure:
		return "authentication failure"
	case OutcomeServerFailure:
		return "server failure"
	case OutcomeCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Succeeded reports whether the outcome allows the account to be created.
func (o ValidationOutcome) Succeeded() bool {
	return o == OutcomeSuccess || o == OutcomeSuccessWithWarning
}

// OutcomeForCode maps an engine error code to a ValidationOutcome.
func OutcomeForCode(code int) ValidationOutcome {
	switch code {
	case CodeNone:
		return OutcomeSuccess
	case CodeOutgoingFailed:
		return OutcomeSuccessWithWarning
	case CodeAuthFailed:
		return OutcomeAuthFailure
	case CodeCancelled:
		return OutcomeCancelled
	default:
		return OutcomeServerFailure
	}
}
