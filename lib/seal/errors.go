package seal

import (
	"fmt"

	"github.com/go-i2p/go-beam/lib/common/errs"
)

var (
	ErrInvalidArgument = fmt.Errorf("%w: seal argument is nil, unsigned or missing a private key", errs.ErrInvalidInput)
	ErrSeal            = fmt.Errorf("%w: could not seal message", errs.ErrCrypto)
	ErrUnseal          = fmt.Errorf("%w: could not unseal message", errs.ErrCrypto)
)
