package address

import (
	"strings"
	"unicode/utf8"

	"github.com/go-i2p/logger"
	"github.com/samber/oops"

	"github.com/go-i2p/go-beam/lib/common/base58"
	"github.com/go-i2p/go-beam/lib/identity"
	"github.com/go-i2p/go-beam/lib/util"
)

// Param is one key=value pair of a locator.
type Param struct {
	Key   string
	Value string
}

// Address is the structured form of a locator. Client is nil for a
// server-only locator. Params keep their order and have unique keys.
type Address struct {
	server *identity.Identity
	client *identity.Identity
	params []Param
}

// NewAddress builds an address without parameters. client may be nil.
func NewAddress(server, client *identity.Identity) (*Address, error) {
	if server == nil {
		return nil, ErrInvalidArgument
	}
	addr := &Address{server: server.PublicOnly()}
	if client != nil {
		addr.client = client.PublicOnly()
	}
	return addr, nil
}

// Server returns the relay identity.
func (a *Address) Server() *identity.Identity { return a.server }

// Client returns the client identity, or nil for a server-only address.
func (a *Address) Client() *identity.Identity { return a.client }

// Params returns a copy of the parameters in locator order.
func (a *Address) Params() []Param {
	out := make([]Param, len(a.params))
	copy(out, a.params)
	return out
}

// Param looks up a parameter by key.
func (a *Address) Param(key string) (string, bool) {
	for _, p := range a.params {
		if p.Key == key {
			return p.Value, true
		}
	}
	return "", false
}

// WithParam returns a copy of the address with key set to value, replacing
// an existing value in place. Parameters need a client segment.
func (a *Address) WithParam(key, value string) (*Address, error) {
	if a.client == nil {
		return nil, oops.Wrapf(ErrInvalidParameter, "server-only locators carry no parameters")
	}
	if !keyPattern.MatchString(key) {
		return nil, oops.Wrapf(ErrInvalidParameter, "key %q is not alphanumeric", key)
	}
	if !valuePattern.MatchString(value) {
		return nil, oops.Wrapf(ErrInvalidParameter, "value for %q has characters outside [A-Za-z0-9_-]", key)
	}
	if key == NameKey {
		if _, err := decodeName(value); err != nil {
			return nil, oops.Wrapf(ErrInvalidParameter, "%s value: %v", NameKey, err)
		}
	}
	out := &Address{
		server: a.server,
		client: a.client,
		params: a.Params(),
	}
	for i := range out.params {
		if out.params[i].Key == key {
			out.params[i].Value = value
			return out, nil
		}
	}
	out.params = append(out.params, Param{Key: key, Value: value})
	return out, nil
}

// WithName sets the display name parameter.
func (a *Address) WithName(name string) (*Address, error) {
	if name == "" || !utf8.ValidString(name) {
		return nil, ErrInvalidArgument
	}
	return a.WithParam(NameKey, base58.EncodeToString([]byte(name)))
}

// Name decodes the display name parameter.
func (a *Address) Name() (string, error) {
	value, ok := a.Param(NameKey)
	if !ok {
		return "", oops.Wrapf(ErrMissingParameter, "%q", NameKey)
	}
	name, err := decodeName(value)
	if err != nil {
		return "", oops.Wrapf(ErrInvalidFormat, "%s parameter: %v", NameKey, err)
	}
	return name, nil
}

// decodeName turns a name parameter value back into UTF-8 text.
func decodeName(value string) (string, error) {
	raw, err := base58.DecodeString(value)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(raw) {
		return "", oops.Errorf("not UTF-8 text")
	}
	return string(raw), nil
}

// Contact converts a full address into a Contact.
func (a *Address) Contact() (*Contact, error) {
	if a.client == nil {
		return nil, oops.Wrapf(ErrInvalidFormat, "server-only locator has no client")
	}
	name, err := a.Name()
	if err != nil {
		return nil, err
	}
	return NewContact(a.server, a.client, name)
}

// String renders the locator.
func (a *Address) String() string {
	var sb strings.Builder
	sb.WriteString(Scheme)
	sb.WriteString(encodeKey(a.server))
	if a.client == nil {
		return sb.String()
	}
	sb.WriteString(Separator)
	sb.WriteString(encodeKey(a.client))
	for i, p := range a.params {
		if i == 0 {
			sb.WriteString(ParamMarker)
		} else {
			sb.WriteString(ParamSeparator)
		}
		sb.WriteString(p.Key)
		sb.WriteString(Assign)
		sb.WriteString(p.Value)
	}
	return sb.String()
}

// Encode produces the full locator for a server, client and display name.
// The result is deterministic for identical inputs.
func Encode(server, client *identity.Identity, name string) (string, error) {
	if server == nil || client == nil || name == "" || !utf8.ValidString(name) {
		return "", ErrInvalidArgument
	}
	addr, err := NewAddress(server, client)
	if err != nil {
		return "", err
	}
	addr, err = addr.WithName(name)
	if err != nil {
		return "", err
	}
	locator := addr.String()
	log.WithFields(logger.Fields{
		"at":     "Encode",
		"server": server.String(),
		"client": client.String(),
		"length": len(locator),
	}).Debug("Encoded locator")
	return locator, nil
}

// EncodeServerOnly advertises a relay without a specific client.
func EncodeServerOnly(server *identity.Identity) (string, error) {
	addr, err := NewAddress(server, nil)
	if err != nil {
		return "", err
	}
	return addr.String(), nil
}

// Decode parses a full locator into a Contact.
func Decode(locator string) (*Contact, error) {
	if !contactPattern.MatchString(locator) {
		log.WithFields(logger.Fields{
			"at":     "Decode",
			"length": len(locator),
		}).Debug("Locator does not match grammar")
		return nil, oops.Wrapf(ErrInvalidFormat, "locator of length %d", len(locator))
	}
	addr, err := parseChecked(locator)
	if err != nil {
		return nil, err
	}
	return addr.Contact()
}

// DecodeServer returns the relay identity from either locator form.
func DecodeServer(locator string) (*identity.Identity, error) {
	addr, err := Parse(locator)
	if err != nil {
		return nil, err
	}
	return addr.Server(), nil
}

// Parse parses either locator form into an Address.
func Parse(locator string) (*Address, error) {
	if !locatorPattern.MatchString(locator) {
		return nil, oops.Wrapf(ErrInvalidFormat, "locator of length %d", len(locator))
	}
	return parseChecked(locator)
}

// parseChecked slices a grammar-checked locator at fixed offsets.
func parseChecked(locator string) (*Address, error) {
	server, err := decodeKey(locator[serverStart:serverEnd])
	if err != nil {
		return nil, err
	}
	addr := &Address{server: server}
	if len(locator) == serverEnd {
		return addr, nil
	}

	addr.client, err = decodeKey(locator[clientStart:clientEnd])
	if err != nil {
		return nil, err
	}
	if len(locator) == clientEnd {
		return addr, nil
	}

	addr.params, err = parseParams(locator[clientEnd+len(ParamMarker):])
	if err != nil {
		return nil, err
	}
	return addr, nil
}

func parseParams(block string) ([]Param, error) {
	pairs := strings.Split(block, ParamSeparator)
	params := make([]Param, 0, len(pairs))
	seen := make(map[string]struct{}, len(pairs))
	for _, pair := range pairs {
		kv := strings.SplitN(pair, Assign, 2)
		if len(kv) != 2 {
			return nil, oops.Wrapf(ErrInvalidFormat, "parameter %q has no value", pair)
		}
		if _, dup := seen[kv[0]]; dup {
			return nil, oops.Wrapf(ErrInvalidFormat, "duplicate parameter %q", kv[0])
		}
		seen[kv[0]] = struct{}{}
		params = append(params, Param{Key: kv[0], Value: kv[1]})
	}
	return params, nil
}

func encodeKey(id *identity.Identity) string {
	str, err := base58.EncodeFixed(id.PublicBytes(), KeyLength)
	if err != nil {
		// unreachable while checkKeyWidth holds
		util.Panicf("address: encoding public key: %v", err)
	}
	return str
}

func decodeKey(segment string) (*identity.Identity, error) {
	raw, err := base58.DecodeFixed(segment, identity.PublicKeySize)
	if err != nil {
		return nil, oops.Wrapf(identity.ErrInvalidKey, "key segment: %v", err)
	}
	return identity.FromPublicBytes(raw)
}
