// Package message defines the beam Message value: a version tag, the
// identity it originates from, and opaque content bytes.
package message

import (
	"bytes"

	"github.com/go-i2p/go-beam/lib/identity"
)

// DefaultVersion is the version tag new messages carry.
const DefaultVersion = "1"

// Message is the plaintext unit sealed into an envelope. Content is never
// inspected by the transport layer.
type Message struct {
	Version string
	Origin  *identity.Identity
	Content []byte
}

// New builds a Message with DefaultVersion.
func New(origin *identity.Identity, content []byte) *Message {
	return &Message{
		Version: DefaultVersion,
		Origin:  origin,
		Content: content,
	}
}

// Validate checks the fields the sealer relies on.
func (m *Message) Validate() error {
	if m == nil || m.Version == "" || m.Origin == nil {
		return ErrInvalidMessage
	}
	return nil
}

// Equal compares version, origin public key and content.
func (m *Message) Equal(other *Message) bool {
	if m == nil || other == nil {
		return m == other
	}
	return m.Version == other.Version &&
		m.Origin.Equal(other.Origin) &&
		bytes.Equal(m.Content, other.Content)
}
