package envelope

import (
	"github.com/samber/oops"

	"github.com/go-i2p/go-beam/lib/address"
	"github.com/go-i2p/go-beam/lib/identity"
)

// Target names where envelopes go and who can open them.
type Target struct {
	// Endpoint is the transport address, e.g. an https URL.
	Endpoint string

	// Recipient is the identity messages are sealed for.
	Recipient *identity.Identity
}

// TargetFromLocator builds a Target sealing for the server identity of
// locator. Both the full and the server-only locator forms are accepted.
func TargetFromLocator(endpoint, locator string) (Target, error) {
	if endpoint == "" {
		return Target{}, oops.Wrapf(ErrInvalidArgument, "endpoint is empty")
	}
	server, err := address.DecodeServer(locator)
	if err != nil {
		return Target{}, err
	}
	return Target{Endpoint: endpoint, Recipient: server}, nil
}

func (t Target) validate() error {
	if t.Endpoint == "" {
		return oops.Wrapf(ErrInvalidArgument, "endpoint is empty")
	}
	if t.Recipient == nil {
		return oops.Wrapf(ErrInvalidArgument, "recipient is nil")
	}
	return nil
}
