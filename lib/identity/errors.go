package identity

import (
	"fmt"

	"github.com/go-i2p/go-beam/lib/common/errs"
)

var (
	ErrInvalidArgument = fmt.Errorf("%w: identity argument is nil or empty", errs.ErrInvalidInput)
	ErrNoPrivateKey    = fmt.Errorf("%w: identity has no private key", errs.ErrInvalidInput)
	ErrInvalidKey      = fmt.Errorf("%w: not a valid P-384 public key", errs.ErrCrypto)
	ErrInvalidPrivate  = fmt.Errorf("%w: not a valid P-384 private key", errs.ErrCrypto)
	ErrProvider        = fmt.Errorf("%w: P-384 key provider unavailable", errs.ErrProvider)
)
