package seal

import (
	"crypto/cipher"
	"crypto/ecdh"
	cryptorand "crypto/rand"
	"crypto/sha512"
	"io"
	"unicode/utf8"

	"github.com/go-i2p/crypto/rand"
	"github.com/go-i2p/logger"
	"github.com/samber/oops"
	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"

	"github.com/go-i2p/go-beam/lib/identity"
	"github.com/go-i2p/go-beam/lib/message"
)

const (
	hkdfInfo = "beam-seal-v1"

	// EphemeralKeySize is the uncompressed P-384 point length.
	EphemeralKeySize = 97

	// NonceSize is the ChaCha20-Poly1305 nonce length.
	NonceSize = chacha20poly1305.NonceSize

	// Overhead is the fixed number of bytes Seal adds around the frame.
	Overhead = EphemeralKeySize + NonceSize + chacha20poly1305.Overhead
)

// ECIES seals with ephemeral P-384 ECDH, HKDF-SHA384 and ChaCha20-Poly1305.
// The zero value is ready to use.
type ECIES struct{}

var _ Sealer = ECIES{}

// NewECIES returns the default sealer.
func NewECIES() ECIES {
	return ECIES{}
}

func (ECIES) Seal(msg *message.Message, recipient *identity.Identity) ([]byte, error) {
	if err := msg.Validate(); err != nil {
		return nil, oops.Wrapf(ErrInvalidArgument, "%v", err)
	}
	if recipient == nil {
		return nil, oops.Wrapf(ErrInvalidArgument, "recipient is nil")
	}
	if !msg.Origin.HasPrivate() {
		return nil, oops.Wrapf(ErrInvalidArgument, "origin %s cannot sign", msg.Origin)
	}

	f := &frame{
		version: []byte(msg.Version),
		origin:  msg.Origin.PublicBytes(),
		content: msg.Content,
	}
	sig, err := msg.Origin.Sign(f.digest(recipient.PublicBytes()))
	if err != nil {
		return nil, err
	}
	f.sig = sig

	recipientKey, err := recipient.ECDHPublic()
	if err != nil {
		return nil, err
	}
	ephemeral, err := ecdh.P384().GenerateKey(cryptorand.Reader)
	if err != nil {
		return nil, oops.Wrapf(identity.ErrProvider, "ephemeral key: %v", err)
	}
	shared, err := ephemeral.ECDH(recipientKey)
	if err != nil {
		return nil, oops.Wrapf(ErrSeal, "key agreement: %v", err)
	}
	ephPub := ephemeral.PublicKey().Bytes()

	aead, err := newAEAD(shared, ephPub, recipient.PublicBytes())
	if err != nil {
		return nil, oops.Wrapf(ErrSeal, "%v", err)
	}
	nonce := make([]byte, NonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return nil, oops.Wrapf(identity.ErrProvider, "nonce: %v", err)
	}

	plain := f.marshal()
	out := make([]byte, 0, Overhead+len(plain))
	out = append(out, ephPub...)
	out = append(out, nonce...)
	out = aead.Seal(out, nonce, plain, ephPub)

	log.WithFields(logger.Fields{
		"at":        "ECIES.Seal",
		"origin":    msg.Origin.String(),
		"recipient": recipient.String(),
		"size":      len(out),
	}).Debug("Sealed message")
	return out, nil
}

func (ECIES) Unseal(data []byte, local *identity.Identity) (*message.Message, error) {
	if local == nil || !local.HasPrivate() {
		return nil, oops.Wrapf(ErrInvalidArgument, "unsealing needs a local private key")
	}
	if len(data) < Overhead {
		return nil, oops.Wrapf(ErrUnseal, "sealed data is %d bytes, need at least %d", len(data), Overhead)
	}
	ephPub := data[:EphemeralKeySize]
	nonce := data[EphemeralKeySize : EphemeralKeySize+NonceSize]
	sealed := data[EphemeralKeySize+NonceSize:]

	peer, err := ecdh.P384().NewPublicKey(ephPub)
	if err != nil {
		return nil, oops.Wrapf(ErrUnseal, "ephemeral key: %v", err)
	}
	priv, err := local.ECDHPrivate()
	if err != nil {
		return nil, err
	}
	shared, err := priv.ECDH(peer)
	if err != nil {
		return nil, oops.Wrapf(ErrUnseal, "key agreement: %v", err)
	}
	aead, err := newAEAD(shared, ephPub, local.PublicBytes())
	if err != nil {
		return nil, oops.Wrapf(ErrUnseal, "%v", err)
	}
	plain, err := aead.Open(nil, nonce, sealed, ephPub)
	if err != nil {
		log.WithFields(logger.Fields{
			"at":    "ECIES.Unseal",
			"local": local.String(),
		}).Debug("Authentication failed, not sealed for this identity")
		return nil, oops.Wrapf(ErrUnseal, "authentication failed")
	}

	f, err := unmarshalFrame(plain)
	if err != nil {
		return nil, oops.Wrapf(ErrUnseal, "frame: %v", err)
	}
	if len(f.version) == 0 || !utf8.Valid(f.version) {
		return nil, oops.Wrapf(ErrUnseal, "frame version is empty or not UTF-8")
	}
	origin, err := identity.FromPublicBytes(f.origin)
	if err != nil {
		return nil, oops.Wrapf(ErrUnseal, "origin key: %v", err)
	}
	if !origin.Verify(f.digest(local.PublicBytes()), f.sig) {
		log.WithFields(logger.Fields{
			"at":     "ECIES.Unseal",
			"origin": origin.String(),
		}).Warn("Signature check failed on authenticated frame")
		return nil, oops.Wrapf(ErrUnseal, "signature does not verify for origin %s", origin)
	}

	return &message.Message{
		Version: string(f.version),
		Origin:  origin,
		Content: f.content,
	}, nil
}

// newAEAD derives the frame key from the shared secret, salted with the
// ephemeral and recipient public keys.
func newAEAD(shared, ephPub, recipient []byte) (cipher.AEAD, error) {
	salt := make([]byte, 0, len(ephPub)+len(recipient))
	salt = append(salt, ephPub...)
	salt = append(salt, recipient...)
	kdf := hkdf.New(sha512.New384, shared, salt, []byte(hkdfInfo))
	key := make([]byte, chacha20poly1305.KeySize)
	if _, err := io.ReadFull(kdf, key); err != nil {
		return nil, err
	}
	return chacha20poly1305.New(key)
}
