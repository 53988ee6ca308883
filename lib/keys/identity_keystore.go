package keys

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-i2p/common/base64"
	"github.com/go-i2p/logger"
	"github.com/samber/oops"
	"gopkg.in/yaml.v3"

	"github.com/go-i2p/go-beam/lib/identity"
)

// Persisted key file format (YAML, one identity per file):
//
//	version: 1
//	curve:   P-384
//	name:    alice
//	created: 2026-10-18T12:00:00Z
//	public:  <I2P base64 SubjectPublicKeyInfo>
//	private: <I2P base64 SEC1 private key, omitted for peers>
//
// On load the public key is re-derived from the private key and must match
// the stored one. Files are written with 0600 permissions, directories 0700.

const (
	keyFileVersion = 1
	keyFileSuffix  = ".beam.yaml"
)

type identityFile struct {
	Version int       `yaml:"version"`
	Curve   string    `yaml:"curve"`
	Name    string    `yaml:"name"`
	Created time.Time `yaml:"created"`
	Public  string    `yaml:"public"`
	Private string    `yaml:"private,omitempty"`
}

// IdentityKeyStore persists one beam identity under a directory.
type IdentityKeyStore struct {
	dir      string
	name     string
	created  time.Time
	identity *identity.Identity
}

var _ KeyStore = (*IdentityKeyStore)(nil)

// NewIdentityKeyStore wraps an existing identity for storage.
func NewIdentityKeyStore(dir, name string, id *identity.Identity) *IdentityKeyStore {
	log.WithFields(logger.Fields{
		"at":   "NewIdentityKeyStore",
		"dir":  dir,
		"name": name,
	}).Debug("Creating new identity key store")
	return &IdentityKeyStore{
		dir:      dir,
		name:     name,
		created:  time.Now().UTC().Truncate(time.Second),
		identity: id,
	}
}

// KeyID returns the store name, falling back to the identity fingerprint.
func (ks *IdentityKeyStore) KeyID() string {
	if ks.name == "" {
		return ks.identity.String()
	}
	return ks.name
}

// Identity returns the stored identity.
func (ks *IdentityKeyStore) Identity() *identity.Identity {
	return ks.identity
}

// Path returns the file the store reads and writes.
func (ks *IdentityKeyStore) Path() string {
	return FilePath(ks.dir, ks.KeyID())
}

// StoreKeys writes the identity to disk. Peer identities are written
// without a private key.
func (ks *IdentityKeyStore) StoreKeys() error {
	log.WithFields(logger.Fields{
		"at":  "IdentityKeyStore.StoreKeys",
		"dir": ks.dir,
	}).Debug("Storing identity to filesystem")

	if err := validateName(ks.KeyID()); err != nil {
		return err
	}
	if err := ensureDirectoryExists(ks.dir); err != nil {
		return oops.Wrapf(err, "failed to create key directory")
	}

	data, err := ks.marshal()
	if err != nil {
		return oops.Wrapf(err, "failed to marshal identity")
	}

	path := ks.Path()
	if err := os.WriteFile(path, data, 0o600); err != nil {
		log.WithError(err).WithField("path", path).Error("Failed to write identity file")
		return oops.Wrapf(err, "failed to write identity file")
	}
	log.WithField("path", path).Info("Successfully stored identity")
	return nil
}

func (ks *IdentityKeyStore) marshal() ([]byte, error) {
	file := identityFile{
		Version: keyFileVersion,
		Curve:   identity.CurveName,
		Name:    ks.KeyID(),
		Created: ks.created,
		Public:  base64.EncodeToString(ks.identity.PublicBytes()),
	}
	if ks.identity.HasPrivate() {
		der, err := ks.identity.PrivateBytes()
		if err != nil {
			return nil, err
		}
		file.Private = base64.EncodeToString(der)
	}
	return yaml.Marshal(&file)
}

// LoadIdentityKeyStore reads a previously stored identity.
func LoadIdentityKeyStore(dir, name string) (*IdentityKeyStore, error) {
	log.WithFields(logger.Fields{
		"at":   "LoadIdentityKeyStore",
		"dir":  dir,
		"name": name,
	}).Debug("Loading identity from disk")

	if err := validateName(name); err != nil {
		return nil, err
	}
	path := FilePath(dir, name)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, oops.Wrapf(ErrKeyFileNotFound, "%s", path)
		}
		return nil, oops.Wrapf(err, "failed to read identity file")
	}

	ks, err := unmarshalIdentityKeyStore(data)
	if err != nil {
		return nil, oops.Wrapf(err, "failed to unmarshal identity file %s", path)
	}
	ks.dir = dir
	ks.name = name
	log.WithFields(logger.Fields{
		"at":      "LoadIdentityKeyStore",
		"name":    name,
		"private": ks.identity.HasPrivate(),
	}).Debug("Successfully loaded identity")
	return ks, nil
}

// LoadOrCreateIdentityKeyStore loads an identity, generating and persisting a
// new one only if no file exists. A file that exists but cannot be loaded is
// an error; it is never silently replaced.
func LoadOrCreateIdentityKeyStore(dir, name string) (*IdentityKeyStore, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}
	ks, err := LoadIdentityKeyStore(dir, name)
	if err == nil {
		return ks, nil
	}

	path := FilePath(dir, name)
	if _, statErr := os.Stat(path); statErr == nil || !os.IsNotExist(statErr) {
		if statErr == nil {
			return nil, oops.Wrapf(err, "identity file exists but could not be loaded (refusing to overwrite)")
		}
		return nil, oops.Wrapf(statErr, "cannot verify identity file status")
	}

	log.WithField("name", name).Debug("Creating new identity")
	id, err := identity.Generate()
	if err != nil {
		return nil, err
	}
	ks = NewIdentityKeyStore(dir, name, id)
	if err := ks.StoreKeys(); err != nil {
		return nil, oops.Wrapf(err, "failed to persist new identity")
	}
	return ks, nil
}

// StorePeer writes a public-key-only identity, e.g. a relay decoded from a
// locator, so it can be referred to by name later.
func StorePeer(dir, name string, peer *identity.Identity) error {
	if peer == nil {
		return ErrInvalidArgument
	}
	if err := validateName(name); err != nil {
		return err
	}
	return NewIdentityKeyStore(dir, name, peer.PublicOnly()).StoreKeys()
}

func unmarshalIdentityKeyStore(data []byte) (*IdentityKeyStore, error) {
	var file identityFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, oops.Wrapf(ErrCorruptKeyFile, "%v", err)
	}
	if file.Version != keyFileVersion {
		return nil, oops.Wrapf(ErrCorruptKeyFile, "unsupported version %d", file.Version)
	}
	if file.Curve != identity.CurveName {
		return nil, oops.Wrapf(ErrCorruptKeyFile, "unsupported curve %q", file.Curve)
	}

	pubDER, err := base64.DecodeString(file.Public)
	if err != nil {
		return nil, oops.Wrapf(ErrCorruptKeyFile, "public key: %v", err)
	}

	var id *identity.Identity
	if file.Private == "" {
		id, err = identity.FromPublicBytes(pubDER)
		if err != nil {
			return nil, err
		}
	} else {
		privDER, err := base64.DecodeString(file.Private)
		if err != nil {
			return nil, oops.Wrapf(ErrCorruptKeyFile, "private key: %v", err)
		}
		id, err = identity.FromPrivateBytes(privDER)
		if err != nil {
			return nil, err
		}
		if !bytes.Equal(id.PublicBytes(), pubDER) {
			return nil, oops.Wrapf(ErrCorruptKeyFile, "public key does not match private key")
		}
	}

	return &IdentityKeyStore{
		created:  file.Created,
		identity: id,
	}, nil
}

// validateName keeps key files inside their directory.
func validateName(name string) error {
	if name == "" || strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") {
		return oops.Wrapf(ErrInvalidArgument, "key name %q", name)
	}
	return nil
}

// FilePath returns where the identity called name is stored under dir.
// Callers validate name before touching the file.
func FilePath(dir, name string) string {
	return filepath.Join(dir, name+keyFileSuffix)
}

func ensureDirectoryExists(dir string) error {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		log.WithField("dir", dir).Debug("Creating keystore directory")
		// 0700 keeps private key material away from other users
		if err := os.MkdirAll(dir, 0o700); err != nil {
			log.WithError(err).WithField("dir", dir).Error("Failed to create keystore directory")
			return err
		}
	} else if err != nil {
		return fmt.Errorf("stat %s: %w", dir, err)
	}
	return nil
}
