// Package config provides configuration management for beam.
//
// # Configuration File
//
// Settings live in $HOME/.go-beam/config.yaml. InitConfig creates the file
// from Defaults when it is missing, unless an explicit file was requested, in
// which case a missing file is an error.
//
// # Directories
//
// BaseDir holds everything beam writes. Identity key files live under
// Keys.Dir, by default BaseDir/keys, one YAML file per named identity.
//
// # Usage
//
//	v := viper.New()
//	if err := config.InitConfig(v, cfgFile); err != nil {
//		return err
//	}
//	cfg, err := config.Load(v)
//
// Load returns an explicit value. There is no package-level configuration.
package config
