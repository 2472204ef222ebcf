package engine

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"net"

	"github.com/nhle/mailsettings/internal/model"
)

// ErrClosed is returned by Validate after the engine has been closed.
var ErrClosed = errors.New("validation engine closed")

// AuthError indicates that a server rejected the supplied credentials.
type AuthError struct {
	Protocol model.ServerType
	Host     string
	Err      error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("auth error (%s %s): %v", e.Protocol, e.Host, e.Err)
}

func (e *AuthError) Unwrap() error { return e.Err }

// IsAuthError reports whether err (or any error in its chain) is an AuthError.
func IsAuthError(err error) bool {
	var authErr *AuthError
	return errors.As(err, &authErr)
}

// IsTLSError reports whether err was caused by a failed TLS handshake or
// certificate verification.
func IsTLSError(err error) bool {
	var (
		verifyErr   *tls.CertificateVerificationError
		recordErr   tls.RecordHeaderError
		unknownAuth x509.UnknownAuthorityError
		hostErr     x509.HostnameError
		invalidErr  x509.CertificateInvalidError
		alertErr    tls.AlertError
	)
	return errors.As(err, &verifyErr) ||
		errors.As(err, &recordErr) ||
		errors.As(err, &unknownAuth) ||
		errors.As(err, &hostErr) ||
		errors.As(err, &invalidErr) ||
		errors.As(err, &alertErr)
}

// incomingCode maps an incoming server probe error to a response code.
func incomingCode(err error) int {
	switch {
	case err == nil:
		return model.CodeNone
	case errors.Is(err, context.Canceled):
		return model.CodeCancelled
	case errors.Is(err, context.DeadlineExceeded):
		return model.CodeTimeout
	case IsAuthError(err):
		return model.CodeAuthFailed
	case IsTLSError(err):
		return model.CodeTLSFailed
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return model.CodeTimeout
	}
	return model.CodeConnectionFailed
}

// outgoingCode maps an outgoing server probe error to a response code. Any
// failure other than cancellation only degrades the result to a warning.
func outgoingCode(err error) int {
	switch {
	case err == nil:
		return model.CodeNone
	case errors.Is(err, context.Canceled):
		return model.CodeCancelled
	default:
		return model.CodeOutgoingFailed
	}
}
