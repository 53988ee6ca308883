package address

import (
	"unicode/utf8"

	"github.com/go-i2p/go-beam/lib/identity"
)

// Contact is a parsed (server, client, display name) triple. Contacts are
// immutable; all three fields are set at construction.
type Contact struct {
	server *identity.Identity
	client *identity.Identity
	name   string
}

// NewContact builds a Contact. Private key material is dropped. The name
// must be non-empty UTF-8 text.
func NewContact(server, client *identity.Identity, name string) (*Contact, error) {
	if server == nil || client == nil || name == "" || !utf8.ValidString(name) {
		return nil, ErrInvalidArgument
	}
	return &Contact{
		server: server.PublicOnly(),
		client: client.PublicOnly(),
		name:   name,
	}, nil
}

// Server returns the relay identity.
func (c *Contact) Server() *identity.Identity { return c.server }

// Client returns the client identity.
func (c *Contact) Client() *identity.Identity { return c.client }

// Name returns the display name.
func (c *Contact) Name() string { return c.name }

// Locator re-encodes the contact.
func (c *Contact) Locator() (string, error) {
	return Encode(c.server, c.client, c.name)
}
