package keys

import (
	"fmt"

	"github.com/go-i2p/logger"

	"github.com/go-i2p/go-beam/lib/common/errs"
	"github.com/go-i2p/go-beam/lib/identity"
)

var log = logger.GetGoI2PLogger()

var (
	ErrInvalidArgument = fmt.Errorf("%w: key store argument is nil or empty", errs.ErrInvalidInput)
	ErrKeyFileNotFound = fmt.Errorf("%w: identity file not found", errs.ErrInvalidInput)
	ErrCorruptKeyFile  = fmt.Errorf("%w: identity file is corrupt", errs.ErrInvalidInput)
)

// KeyStore is an interface for storing and retrieving identities
type KeyStore interface {
	KeyID() string
	// Identity returns the stored identity
	Identity() *identity.Identity
	// StoreKeys stores the identity
	StoreKeys() error
}
