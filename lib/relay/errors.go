package relay

import (
	"fmt"

	"github.com/go-i2p/go-beam/lib/common/errs"
)

var (
	ErrInvalidArgument = fmt.Errorf("%w: relay argument is nil or unusable", errs.ErrInvalidInput)
	ErrNoPlaintext     = fmt.Errorf("%w: transfer node has no plaintext", errs.ErrInvalidInput)
)
