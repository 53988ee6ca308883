package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/go-i2p/go-beam/lib/address"
	"github.com/go-i2p/go-beam/lib/keys"
	"github.com/go-i2p/go-beam/lib/util"
)

// keygen NAME: load or create the named identity and print how to reach it.
func keygenCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "keygen NAME",
		Short: "Create a named identity, or show an existing one",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			existed := util.CheckFileExists(keys.FilePath(opts.cfg.Keys.Dir, args[0]))
			ks, err := keys.LoadOrCreateIdentityKeyStore(opts.cfg.Keys.Dir, args[0])
			if err != nil {
				return err
			}
			locator, err := address.EncodeServerOnly(ks.Identity())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Name: %s\n", args[0])
			fmt.Fprintf(out, "File: %s\n", ks.Path())
			if existed {
				fmt.Fprintln(out, "Status: loaded")
			} else {
				fmt.Fprintln(out, "Status: created")
			}
			fmt.Fprintf(out, "Fingerprint: %s\n", ks.Identity().Fingerprint())
			fmt.Fprintf(out, "Locator: %s\n", locator)
			return nil
		},
	}
}
