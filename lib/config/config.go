package config

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/go-i2p/logger"
	"github.com/samber/oops"
	"github.com/spf13/viper"

	"github.com/go-i2p/go-beam/lib/util"
)

var log = logger.GetGoI2PLogger()

// Config is the complete beam configuration.
type Config struct {
	// BaseDir is where beam keeps its files
	// Default: $HOME/.go-beam
	BaseDir string

	Keys   *KeysConfig
	Client *ClientConfig
	Relay  *RelayConfig
}

// KeysConfig locates identity key files.
type KeysConfig struct {
	// Dir holds one key file per named identity
	// Default: $HOME/.go-beam/keys
	Dir string
}

// ClientConfig controls outgoing envelopes.
type ClientConfig struct {
	// Endpoint is the relay URL used when a command does not name one
	// Default: http://127.0.0.1:7656/beam
	Endpoint string

	// Timeout bounds each HTTP round trip
	// Default: 30 seconds
	Timeout time.Duration

	// Version is the tag new messages carry
	// Default: "1"
	Version string
}

// RelayConfig controls the relay HTTP server.
type RelayConfig struct {
	// Address is the listen address
	// Default: 127.0.0.1:7656
	Address string

	// Path is the URL path envelopes are posted to
	// Default: /beam
	Path string

	// RequestsPerSecond is the sustained token bucket rate
	// Default: 20
	RequestsPerSecond float64

	// Burst is the token bucket size
	// Default: 40
	Burst int

	// MaxBodyBytes caps a sealed request body
	// Default: 1 MiB
	MaxBodyBytes int64

	// TraceDepth is how many recent transfer trees the relay remembers
	// Default: 64
	TraceDepth int
}

// InitConfig points v at cfgFile, or at $HOME/.go-beam/config.yaml when
// cfgFile is empty, loads defaults and reads the file. A missing default file
// is created from the defaults.
func InitConfig(v *viper.Viper, cfgFile string) error {
	if cfgFile != "" {
		// Use config file from the flag
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(BuildBeamDirPath())
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	setDefaults(v)

	return handleConfigFile(v, cfgFile)
}

func setDefaults(v *viper.Viper) {
	d := Defaults()
	v.SetDefault("base_dir", d.BaseDir)
	v.SetDefault("keys.dir", d.Keys.Dir)

	v.SetDefault("client.endpoint", d.Client.Endpoint)
	v.SetDefault("client.timeout", d.Client.Timeout)
	v.SetDefault("client.version", d.Client.Version)

	v.SetDefault("relay.address", d.Relay.Address)
	v.SetDefault("relay.path", d.Relay.Path)
	v.SetDefault("relay.requests_per_second", d.Relay.RequestsPerSecond)
	v.SetDefault("relay.burst", d.Relay.Burst)
	v.SetDefault("relay.max_body_bytes", d.Relay.MaxBodyBytes)
	v.SetDefault("relay.trace_depth", d.Relay.TraceDepth)
}

// Load builds a Config from v and validates it. Keys missing from v fall
// back to Defaults.
func Load(v *viper.Viper) (*Config, error) {
	if v == nil {
		return nil, oops.Errorf("viper instance is nil")
	}
	setDefaults(v)

	cfg := &Config{
		BaseDir: v.GetString("base_dir"),
		Keys: &KeysConfig{
			Dir: v.GetString("keys.dir"),
		},
		Client: &ClientConfig{
			Endpoint: v.GetString("client.endpoint"),
			Timeout:  v.GetDuration("client.timeout"),
			Version:  v.GetString("client.version"),
		},
		Relay: &RelayConfig{
			Address:           v.GetString("relay.address"),
			Path:              v.GetString("relay.path"),
			RequestsPerSecond: v.GetFloat64("relay.requests_per_second"),
			Burst:             v.GetInt("relay.burst"),
			MaxBodyBytes:      v.GetInt64("relay.max_body_bytes"),
			TraceDepth:        v.GetInt("relay.trace_depth"),
		},
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func createDefaultConfig(v *viper.Viper, defaultConfigDir string) error {
	defaultConfigFile := filepath.Join(defaultConfigDir, "config.yaml")
	if err := os.MkdirAll(defaultConfigDir, 0o700); err != nil {
		return oops.Errorf("could not create config directory: %w", err)
	}
	if err := v.SafeWriteConfigAs(defaultConfigFile); err != nil {
		return oops.Errorf("could not write default config file: %w", err)
	}
	log.Debugf("Created default configuration at: %s", defaultConfigFile)
	return nil
}

func handleConfigFile(v *viper.Viper, cfgFile string) error {
	err := v.ReadInConfig()
	if err == nil {
		log.Debugf("Using config file: %s", v.ConfigFileUsed())
		return nil
	}
	var notFound viper.ConfigFileNotFoundError
	switch {
	case cfgFile != "":
		return oops.Errorf("config file %s could not be read: %w", cfgFile, err)
	case errors.As(err, &notFound):
		return createDefaultConfig(v, BuildBeamDirPath())
	default:
		return oops.Errorf("error reading config file: %w", err)
	}
}

// BuildBeamDirPath returns $HOME/.go-beam.
func BuildBeamDirPath() string {
	return util.BaseDir()
}
