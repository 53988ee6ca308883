// Package cmd implements the beam command line.
package cmd

import (
	"context"

	"github.com/go-i2p/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/go-i2p/go-beam/lib/config"
	"github.com/go-i2p/go-beam/lib/util"
	"github.com/go-i2p/go-beam/lib/util/signals"
)

var log = logger.GetGoI2PLogger()

// options is the state shared by every subcommand of one invocation.
type options struct {
	cfgFile string
	viper   *viper.Viper
	cfg     *config.Config
}

// NewRootCommand builds the beam command tree.
func NewRootCommand() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:           "beam",
		Short:         "Address identities and exchange sealed envelopes through relays",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.load()
		},
	}

	root.PersistentFlags().StringVar(&opts.cfgFile, "config", "", "config file (default $HOME/.go-beam/config.yaml)")

	root.AddCommand(keygenCmd(opts), addressCmd(opts), sendCmd(opts), relayCmd(opts))
	return root
}

func (o *options) load() error {
	o.viper = viper.New()
	if err := config.InitConfig(o.viper, o.cfgFile); err != nil {
		return err
	}
	cfg, err := config.Load(o.viper)
	if err != nil {
		return err
	}
	o.cfg = cfg
	log.WithFields(logger.Fields{
		"at":       "options.load",
		"keys_dir": cfg.Keys.Dir,
		"config":   o.viper.ConfigFileUsed(),
	}).Debug("Loaded configuration")
	return nil
}

// Execute runs the command line. SIGINT and SIGTERM cancel the command's
// context, and every registered closer is closed on the way out.
func Execute() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	id := signals.RegisterInterruptHandler(func() {
		log.Debug("Interrupt received, shutting down")
		cancel()
	})
	defer signals.DeregisterInterruptHandler(id)
	go signals.Handle(ctx)

	defer util.CloseAll()
	return NewRootCommand().ExecuteContext(ctx)
}
