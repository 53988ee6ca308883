package seal

import (
	"github.com/go-i2p/go-beam/lib/identity"
	"github.com/go-i2p/go-beam/lib/message"
)

// Sealer converts between messages and their encrypted wire form.
// Implementations must be safe for concurrent use.
type Sealer interface {
	// Seal encrypts msg so that only recipient can open it. msg.Origin must
	// hold a private key.
	Seal(msg *message.Message, recipient *identity.Identity) ([]byte, error)

	// Unseal opens data with the private key of local.
	Unseal(data []byte, local *identity.Identity) (*message.Message, error)
}
