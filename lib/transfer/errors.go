package transfer

import (
	"fmt"

	"github.com/go-i2p/go-beam/lib/common/errs"
)

var (
	ErrInvalidArgument = fmt.Errorf("%w: transfer node argument is nil or empty", errs.ErrInvalidInput)
	ErrAlreadyParented = fmt.Errorf("%w: transfer node already has a parent", errs.ErrInvalidInput)
	ErrCycle           = fmt.Errorf("%w: transfer node would become its own ancestor", errs.ErrInvalidInput)
)
