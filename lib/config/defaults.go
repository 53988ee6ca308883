package config

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/go-i2p/logger"
)

// Defaults returns every default value in one place.
func Defaults() *Config {
	baseDir := BuildBeamDirPath()

	return &Config{
		BaseDir: baseDir,
		Keys:    buildKeysDefaults(baseDir),
		Client:  buildClientDefaults(),
		Relay:   buildRelayDefaults(),
	}
}

// buildKeysDefaults creates default key storage values.
func buildKeysDefaults(baseDir string) *KeysConfig {
	return &KeysConfig{
		Dir: filepath.Join(baseDir, "keys"),
	}
}

// buildClientDefaults creates default client values.
func buildClientDefaults() *ClientConfig {
	return &ClientConfig{
		Endpoint: "http://127.0.0.1:7656/beam",
		Timeout:  30 * time.Second,
		Version:  "1",
	}
}

// buildRelayDefaults creates default relay server values.
func buildRelayDefaults() *RelayConfig {
	return &RelayConfig{
		Address:           "127.0.0.1:7656",
		Path:              "/beam",
		RequestsPerSecond: 20,
		Burst:             40,
		MaxBodyBytes:      1 << 20,
		TraceDepth:        64,
	}
}

// Validate checks cfg and returns a validationError describing the first
// problem found.
func Validate(cfg *Config) error {
	log.WithFields(logger.Fields{
		"at":     "Validate",
		"reason": "verification_requested",
	}).Debug("validating configuration")
	if cfg == nil || cfg.Keys == nil || cfg.Client == nil || cfg.Relay == nil {
		return newValidationError("configuration sections must not be nil")
	}
	return runConfigValidators(cfg)
}

func runConfigValidators(cfg *Config) error {
	validators := []func() error{
		func() error { return validateKeys(cfg.Keys) },
		func() error { return validateClient(cfg.Client) },
		func() error { return validateRelay(cfg.Relay) },
	}

	for _, validator := range validators {
		if err := validator(); err != nil {
			log.WithError(err).Error("Configuration validation failed")
			return err
		}
	}
	log.WithFields(logger.Fields{
		"at":     "Validate",
		"reason": "all_validators_passed",
	}).Debug("all configuration validations passed successfully")
	return nil
}

func validateKeys(keys *KeysConfig) error {
	if keys.Dir == "" {
		return newValidationError("Keys.Dir must not be empty")
	}
	return nil
}

func validateClient(client *ClientConfig) error {
	if client.Endpoint == "" {
		return newValidationError("Client.Endpoint must not be empty")
	}
	if client.Timeout < 0 {
		log.WithField("timeout", client.Timeout).Error("Invalid client configuration")
		return newValidationError("Client.Timeout must not be negative")
	}
	if strings.TrimSpace(client.Version) == "" {
		return newValidationError("Client.Version must not be empty")
	}
	return nil
}

func validateRelay(relay *RelayConfig) error {
	if relay.Address == "" {
		return newValidationError("Relay.Address must not be empty")
	}
	if !strings.HasPrefix(relay.Path, "/") {
		return newValidationError("Relay.Path must start with /")
	}
	if relay.RequestsPerSecond <= 0 {
		log.WithField("requests_per_second", relay.RequestsPerSecond).Error("Invalid relay configuration")
		return newValidationError("Relay.RequestsPerSecond must be positive")
	}
	if relay.Burst < 1 {
		log.WithField("burst", relay.Burst).Error("Invalid relay configuration")
		return newValidationError("Relay.Burst must be at least 1")
	}
	if relay.MaxBodyBytes < 1024 {
		log.WithField("max_body_bytes", relay.MaxBodyBytes).Error("Invalid relay configuration")
		return newValidationError("Relay.MaxBodyBytes must be at least 1024")
	}
	if relay.TraceDepth < 0 {
		return newValidationError("Relay.TraceDepth must not be negative")
	}
	return nil
}

// validationError is returned when configuration validation fails
type validationError struct {
	message string
}

func newValidationError(message string) error {
	return &validationError{message: message}
}

func (e *validationError) Error() string {
	return "configuration validation failed: " + e.message
}
