package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/go-i2p/go-beam/lib/address"
	"github.com/go-i2p/go-beam/lib/config"
	"github.com/go-i2p/go-beam/lib/envelope"
	"github.com/go-i2p/go-beam/lib/identity"
	"github.com/go-i2p/go-beam/lib/keys"
	"github.com/go-i2p/go-beam/lib/relay"
	"github.com/go-i2p/go-beam/lib/seal"
	"github.com/go-i2p/go-beam/lib/transport"
	"github.com/go-i2p/go-beam/lib/util"
	"github.com/go-i2p/go-beam/lib/util/signals"
)

// relay: serve envelopes sealed for --key until interrupted.
func relayCmd(opts *options) *cobra.Command {
	var keyName, listen, forwardEndpoint, forwardTo string
	cmd := &cobra.Command{
		Use:   "relay",
		Short: "Run a relay that answers sealed envelopes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if (forwardEndpoint == "") != (forwardTo == "") {
				return errors.New("--forward-endpoint and --forward-to must be used together")
			}
			ks, err := keys.LoadOrCreateIdentityKeyStore(opts.cfg.Keys.Dir, keyName)
			if err != nil {
				return err
			}
			id := ks.Identity()

			relayCfg := *opts.cfg.Relay
			if listen != "" {
				relayCfg.Address = listen
			}

			handler, err := relayHandler(opts.cfg, id, forwardEndpoint, forwardTo)
			if err != nil {
				return err
			}
			srv, err := relay.NewServer(&relayCfg, id, seal.NewECIES(), handler)
			if err != nil {
				return err
			}
			util.RegisterCloser(srv)

			reloadID := signals.RegisterReloadHandler(func() { reloadLimits(opts, srv) })
			defer signals.DeregisterReloadHandler(reloadID)

			locator, err := address.EncodeServerOnly(id)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Relay %s listening on http://%s%s\n", keyName, relayCfg.Address, relayCfg.Path)
			fmt.Fprintf(cmd.OutOrStdout(), "Locator: %s\n", locator)

			ctx := cmd.Context()
			g, ctx := errgroup.WithContext(ctx)
			g.Go(srv.ListenAndServe)
			g.Go(func() error {
				<-ctx.Done()
				return srv.Close()
			})
			return g.Wait()
		},
	}
	cmd.Flags().StringVar(&keyName, "key", "", "stored identity of the relay, created if missing")
	cmd.Flags().StringVar(&listen, "listen", "", "listen address (default relay.address from config)")
	cmd.Flags().StringVar(&forwardEndpoint, "forward-endpoint", "", "URL of the next relay")
	cmd.Flags().StringVar(&forwardTo, "forward-to", "", "locator of the next relay")
	_ = cmd.MarkFlagRequired("key")
	return cmd
}

// relayHandler echoes unless a next hop is given, in which case it forwards.
func relayHandler(cfg *config.Config, id *identity.Identity, endpoint, locator string) (relay.Handler, error) {
	if endpoint == "" {
		return relay.Echo(id), nil
	}
	target, err := envelope.TargetFromLocator(endpoint, locator)
	if err != nil {
		return nil, err
	}
	tmux := transport.Mux(transport.NewHTTP(cfg.Client.Timeout), transport.NewLoopback())
	util.RegisterCloser(tmux)
	sender, err := envelope.NewSender(target, id, seal.NewECIES(), tmux)
	if err != nil {
		return nil, err
	}
	return relay.NewForwarder(sender)
}

func reloadLimits(opts *options, srv *relay.Server) {
	if err := opts.viper.ReadInConfig(); err != nil {
		log.WithError(err).Warn("Config reload failed, keeping current limits")
		return
	}
	cfg, err := config.Load(opts.viper)
	if err != nil {
		log.WithError(err).Warn("Reloaded config is invalid, keeping current limits")
		return
	}
	if err := srv.SetLimits(cfg.Relay.RequestsPerSecond, cfg.Relay.Burst); err != nil {
		log.WithError(err).Warn("Could not apply reloaded limits")
	}
}
