package message

import (
	"fmt"

	"github.com/go-i2p/go-beam/lib/common/errs"
)

var ErrInvalidMessage = fmt.Errorf("%w: message needs a version and an origin", errs.ErrInvalidInput)
