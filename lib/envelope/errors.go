package envelope

import (
	"fmt"

	"github.com/go-i2p/go-beam/lib/common/errs"
	"github.com/go-i2p/go-beam/lib/seal"
)

var (
	ErrInvalidArgument = fmt.Errorf("%w: envelope sender is missing a target, identity or collaborator", errs.ErrInvalidInput)

	// ErrUnseal is returned for a reply that is not base64 text or fails to
	// open. It matches seal.ErrUnseal.
	ErrUnseal = seal.ErrUnseal
)
