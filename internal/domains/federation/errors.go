package federation

import (
	"errors"
	"fmt"

	"novelpedia-backend/internal/shared/apperror"
)

// Failure reasons. They double as the response code and the ?error= value
// of the callback redirect.
const (
	ReasonInvalidState          = "invalid_state"
	ReasonExchangeFailed        = "token_exchange_failed"
	ReasonNoAccessToken         = "no_access_token"
	ReasonProfileUnavailable    = "profile_unavailable"
	ReasonAuthenticationFailed  = "authentication_failed"
	ReasonProviderNotConfigured = "provider_not_configured"
)

// FederationError is a client-fault failure of the OAuth flow.
type FederationError struct {
	Reason string
	Err    error
}

func (e *FederationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("federation %s: %v", e.Reason, e.Err)
	}
	return "federation " + e.Reason
}

func (e *FederationError) Unwrap() error { return e.Err }

func (e *FederationError) Is(target error) bool {
	return target == apperror.ErrFederation
}

func (e *FederationError) ReasonCode() string { return e.Reason }

func Fail(reason string, err error) *FederationError {
	return &FederationError{Reason: reason, Err: err}
}

var (
	ErrInvalidState          = Fail(ReasonInvalidState, nil)
	ErrProviderNotConfigured = Fail(ReasonProviderNotConfigured, nil)
)

// Reason extracts the failure reason, or "" for errors from outside the
// flow.
func Reason(err error) string {
	var fe *FederationError
	if errors.As(err, &fe) {
		return fe.Reason
	}
	return ""
}
