package identity

import (
	"bytes"
	"crypto/ecdh"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha256"
	"crypto/x509"
	"strings"

	"github.com/go-i2p/common/base32"
	"github.com/go-i2p/logger"
	"github.com/samber/oops"
)

const (
	// CurveName names the only curve beam identities use.
	CurveName = "P-384"

	// PublicKeySize is the length of a P-384 SubjectPublicKeyInfo in DER.
	PublicKeySize = 120
)

// Identity is one cryptographic participant. The private key is nil for
// peer-only identities. Identities are immutable.
type Identity struct {
	public  *ecdsa.PublicKey
	private *ecdsa.PrivateKey
	der     []byte
}

// Generate creates a fresh identity holding both key halves.
func Generate() (*Identity, error) {
	log.WithField("at", "Generate").Debug("Generating P-384 identity")
	priv, err := ecdsa.GenerateKey(elliptic.P384(), rand.Reader)
	if err != nil {
		log.WithError(err).Error("Failed to generate P-384 key pair")
		return nil, oops.Wrapf(ErrProvider, "generating key pair: %v", err)
	}
	return fromPrivateKey(priv)
}

// FromPublicBytes reconstructs a public-key-only identity from its
// SubjectPublicKeyInfo encoding. Only the canonical 120 byte P-384 encoding
// is accepted so that decode(encode(id)) is byte-identical.
func FromPublicBytes(der []byte) (*Identity, error) {
	if len(der) == 0 {
		return nil, ErrInvalidArgument
	}
	if len(der) != PublicKeySize {
		return nil, oops.Wrapf(ErrInvalidKey, "public key is %d bytes, want %d", len(der), PublicKeySize)
	}
	parsed, err := x509.ParsePKIXPublicKey(der)
	if err != nil {
		log.WithFields(logger.Fields{
			"at":     "FromPublicBytes",
			"reason": "unparseable",
		}).Debug("Rejected public key bytes")
		return nil, oops.Wrapf(ErrInvalidKey, "%v", err)
	}
	pub, ok := parsed.(*ecdsa.PublicKey)
	if !ok || pub.Curve != elliptic.P384() {
		return nil, oops.Wrapf(ErrInvalidKey, "public key is %T, want ECDSA %s", parsed, CurveName)
	}
	canonical, err := x509.MarshalPKIXPublicKey(pub)
	if err != nil {
		return nil, oops.Wrapf(ErrProvider, "re-encoding public key: %v", err)
	}
	if !bytes.Equal(canonical, der) {
		return nil, oops.Wrapf(ErrInvalidKey, "public key encoding is not canonical")
	}
	if _, err := pub.ECDH(); err != nil {
		return nil, oops.Wrapf(ErrProvider, "ECDH view of public key: %v", err)
	}
	return &Identity{
		public: pub,
		der:    canonical,
	}, nil
}

// FromPrivateBytes reconstructs a full identity from a SEC1 EC private key.
func FromPrivateBytes(der []byte) (*Identity, error) {
	if len(der) == 0 {
		return nil, ErrInvalidArgument
	}
	priv, err := x509.ParseECPrivateKey(der)
	if err != nil {
		return nil, oops.Wrapf(ErrInvalidPrivate, "%v", err)
	}
	if priv.Curve != elliptic.P384() {
		return nil, oops.Wrapf(ErrInvalidPrivate, "private key curve is %s, want %s", priv.Curve.Params().Name, CurveName)
	}
	return fromPrivateKey(priv)
}

func fromPrivateKey(priv *ecdsa.PrivateKey) (*Identity, error) {
	der, err := x509.MarshalPKIXPublicKey(&priv.PublicKey)
	if err != nil {
		return nil, oops.Wrapf(ErrProvider, "encoding public key: %v", err)
	}
	if len(der) != PublicKeySize {
		return nil, oops.Wrapf(ErrProvider, "public key encoded to %d bytes, want %d", len(der), PublicKeySize)
	}
	if _, err := priv.ECDH(); err != nil {
		return nil, oops.Wrapf(ErrProvider, "ECDH view of private key: %v", err)
	}
	return &Identity{
		public:  &priv.PublicKey,
		private: priv,
		der:     der,
	}, nil
}

// PublicBytes returns a copy of the SubjectPublicKeyInfo encoding.
func (id *Identity) PublicBytes() []byte {
	return bytes.Clone(id.der)
}

// PrivateBytes returns the SEC1 encoding of the private key.
func (id *Identity) PrivateBytes() ([]byte, error) {
	if id.private == nil {
		return nil, ErrNoPrivateKey
	}
	der, err := x509.MarshalECPrivateKey(id.private)
	if err != nil {
		return nil, oops.Wrapf(ErrProvider, "encoding private key: %v", err)
	}
	return der, nil
}

// HasPrivate reports whether the identity is locally controlled.
func (id *Identity) HasPrivate() bool {
	return id.private != nil
}

// PublicOnly returns the peer view of the identity.
func (id *Identity) PublicOnly() *Identity {
	return &Identity{
		public: id.public,
		der:    id.der,
	}
}

// Equal reports whether both identities carry the same public key.
func (id *Identity) Equal(other *Identity) bool {
	if id == nil || other == nil {
		return id == other
	}
	return bytes.Equal(id.der, other.der)
}

// Fingerprint returns the lowercase I2P base32 SHA-256 digest of the public
// key, the same shape as a .b32.i2p destination hash.
func (id *Identity) Fingerprint() string {
	hash := sha256.Sum256(id.der)
	return strings.Trim(base32.EncodeToString(hash[:]), "=")
}

func (id *Identity) String() string {
	fp := id.Fingerprint()
	if len(fp) > 16 {
		fp = fp[:16]
	}
	return fp
}

// Sign signs a digest with the private key, ASN.1 encoded.
func (id *Identity) Sign(digest []byte) ([]byte, error) {
	if id.private == nil {
		return nil, ErrNoPrivateKey
	}
	sig, err := ecdsa.SignASN1(rand.Reader, id.private, digest)
	if err != nil {
		return nil, oops.Wrapf(ErrProvider, "signing: %v", err)
	}
	return sig, nil
}

// Verify checks an ASN.1 signature over digest.
func (id *Identity) Verify(digest, sig []byte) bool {
	return ecdsa.VerifyASN1(id.public, digest, sig)
}

// ECDHPublic returns the key agreement view of the public key.
func (id *Identity) ECDHPublic() (*ecdh.PublicKey, error) {
	pub, err := id.public.ECDH()
	if err != nil {
		return nil, oops.Wrapf(ErrProvider, "%v", err)
	}
	return pub, nil
}

// ECDHPrivate returns the key agreement view of the private key.
func (id *Identity) ECDHPrivate() (*ecdh.PrivateKey, error) {
	if id.private == nil {
		return nil, ErrNoPrivateKey
	}
	priv, err := id.private.ECDH()
	if err != nil {
		return nil, oops.Wrapf(ErrProvider, "%v", err)
	}
	return priv, nil
}
