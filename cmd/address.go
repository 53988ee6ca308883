package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/go-i2p/go-beam/lib/address"
	"github.com/go-i2p/go-beam/lib/identity"
	"github.com/go-i2p/go-beam/lib/keys"
)

func addressCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "address",
		Short: "Encode and decode beam locators",
	}
	cmd.AddCommand(addressEncodeCmd(opts), addressDecodeCmd(opts))
	return cmd
}

func addressEncodeCmd(opts *options) *cobra.Command {
	var server, client, name string
	var serverOnly bool
	cmd := &cobra.Command{
		Use:   "encode",
		Short: "Build a locator from stored identities",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			serverID, err := loadIdentity(opts, server)
			if err != nil {
				return err
			}
			var locator string
			if serverOnly {
				locator, err = address.EncodeServerOnly(serverID)
			} else {
				if client == "" || name == "" {
					return errors.New("--client and --name are required unless --server-only is set")
				}
				var clientID *identity.Identity
				clientID, err = loadIdentity(opts, client)
				if err != nil {
					return err
				}
				locator, err = address.Encode(serverID, clientID, name)
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), locator)
			return nil
		},
	}
	cmd.Flags().StringVar(&server, "server", "", "stored identity of the relay")
	cmd.Flags().StringVar(&client, "client", "", "stored identity of the client")
	cmd.Flags().StringVar(&name, "name", "", "display name carried in the locator")
	cmd.Flags().BoolVar(&serverOnly, "server-only", false, "advertise the relay without a client")
	_ = cmd.MarkFlagRequired("server")
	return cmd
}

func addressDecodeCmd(opts *options) *cobra.Command {
	var save string
	cmd := &cobra.Command{
		Use:   "decode LOCATOR",
		Short: "Show the identities and parameters in a locator",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, err := address.Parse(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Server: %s\n", addr.Server().Fingerprint())
			if addr.Client() != nil {
				fmt.Fprintf(out, "Client: %s\n", addr.Client().Fingerprint())
			}
			if name, err := addr.Name(); err == nil {
				fmt.Fprintf(out, "Name: %s\n", name)
			}
			for _, p := range addr.Params() {
				if p.Key == address.NameKey {
					continue
				}
				fmt.Fprintf(out, "Param: %s=%s\n", p.Key, p.Value)
			}
			if save != "" {
				if err := keys.StorePeer(opts.cfg.Keys.Dir, save, addr.Server()); err != nil {
					return err
				}
				fmt.Fprintf(out, "Saved server as %s\n", save)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&save, "save", "", "store the server identity under this name")
	return cmd
}

func loadIdentity(opts *options, name string) (*identity.Identity, error) {
	ks, err := keys.LoadIdentityKeyStore(opts.cfg.Keys.Dir, name)
	if err != nil {
		return nil, err
	}
	return ks.Identity(), nil
}
