package oracle

import (
	"context"
	"errors"
	"fmt"
)

// ErrorKind is the tailoring-side failure taxonomy shared by the oracle
// providers and the packages built on them.
type ErrorKind string

const (
	KindNotConfigured       ErrorKind = "provider_not_configured"
	KindUnsupportedProvider ErrorKind = "unsupported_provider"
	KindAuth                ErrorKind = "auth_failure"
	KindRateLimited         ErrorKind = "rate_limited"
	KindNoResponse          ErrorKind = "no_response"
	KindTimeout             ErrorKind = "timeout"
	KindSchemaParse         ErrorKind = "schema_parse_failure"
)

type Error struct {
	Kind     ErrorKind
	Provider string
	Err      error
}

func (e *Error) Error() string {
	if e.Provider == "" {
		return fmt.Sprintf("ai oracle error (%s): %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("ai oracle error (%s, provider %s): %v", e.Kind, e.Provider, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func NewError(kind ErrorKind, provider string, err error) *Error {
	return &Error{Kind: kind, Provider: provider, Err: err}
}

// KindOf extracts the taxonomy kind from any wrapped oracle error. Deadline
// expiry outside a typed error still counts as a timeout.
func KindOf(err error) (ErrorKind, bool) {
	var oe *Error
	if errors.As(err, &oe) {
		return oe.Kind, true
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout, true
	}
	return "", false
}
