// Package errs defines the error kinds shared by every beam package.
//
// Package-level sentinels wrap exactly one kind so callers can branch on the
// broad category with errors.Is without knowing which package failed:
//
//	if errors.Is(err, errs.ErrInvalidInput) {
//		// caller-correctable, do not retry
//	}
package errs

import "errors"

var (
	// ErrInvalidInput marks nil or empty arguments, malformed locators and
	// missing parameters. Always caller-correctable.
	ErrInvalidInput = errors.New("invalid input")

	// ErrCrypto marks key bytes that are not a valid public key and any
	// seal or unseal failure.
	ErrCrypto = errors.New("cryptographic failure")

	// ErrTransport marks network failures while delivering an envelope.
	ErrTransport = errors.New("transport failure")

	// ErrProvider marks a cryptographic provider or key factory that could
	// not be initialized. This is an environment problem, not bad input.
	ErrProvider = errors.New("crypto provider failure")
)

// Kind is the broad category of an error.
type Kind int

const (
	KindUnknown Kind = iota
	KindInvalidInput
	KindCrypto
	KindTransport
	KindProvider
)

func (k Kind) String() string {
	switch k {
	case KindInvalidInput:
		return "invalid_input"
	case KindCrypto:
		return "crypto"
	case KindTransport:
		return "transport"
	case KindProvider:
		return "provider"
	default:
		return "unknown"
	}
}

// KindOf classifies err. Provider is checked first so an environment failure
// is never reported as bad input.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return KindUnknown
	case errors.Is(err, ErrProvider):
		return KindProvider
	case errors.Is(err, ErrInvalidInput):
		return KindInvalidInput
	case errors.Is(err, ErrCrypto):
		return KindCrypto
	case errors.Is(err, ErrTransport):
		return KindTransport
	default:
		return KindUnknown
	}
}
