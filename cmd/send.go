package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/go-i2p/go-beam/lib/envelope"
	"github.com/go-i2p/go-beam/lib/keys"
	"github.com/go-i2p/go-beam/lib/message"
	"github.com/go-i2p/go-beam/lib/seal"
	"github.com/go-i2p/go-beam/lib/transfer"
	"github.com/go-i2p/go-beam/lib/transport"
	"github.com/go-i2p/go-beam/lib/util"
)

// send TEXT: seal TEXT for the relay named by --to and post it.
func sendCmd(opts *options) *cobra.Command {
	var keyName, to, endpoint string
	var wait, trace bool
	cmd := &cobra.Command{
		Use:   "send TEXT",
		Short: "Seal a message for a relay and deliver it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ks, err := keys.LoadIdentityKeyStore(opts.cfg.Keys.Dir, keyName)
			if err != nil {
				return err
			}
			if endpoint == "" {
				endpoint = opts.cfg.Client.Endpoint
			}
			target, err := envelope.TargetFromLocator(endpoint, to)
			if err != nil {
				return err
			}

			tmux := transport.Mux(transport.NewHTTP(opts.cfg.Client.Timeout), transport.NewLoopback())
			util.RegisterCloser(tmux)

			sender, err := envelope.NewSender(target, ks.Identity(), seal.NewECIES(), tmux)
			if err != nil {
				return err
			}
			msg := &message.Message{
				Version: opts.cfg.Client.Version,
				Origin:  ks.Identity(),
				Content: []byte(args[0]),
			}

			out := cmd.OutOrStdout()
			if !wait {
				if err := sender.Send(cmd.Context(), msg); err != nil {
					return err
				}
				fmt.Fprintln(out, "sent")
				return nil
			}

			reply, root, err := sender.SendAndReceiveTraced(cmd.Context(), msg)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "From: %s\n", reply.Origin.Fingerprint())
			fmt.Fprintf(out, "Reply: %s\n", reply.Content)
			if trace {
				return printTrace(out, root)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&keyName, "key", "", "stored identity to send as")
	cmd.Flags().StringVar(&to, "to", "", "locator of the relay")
	cmd.Flags().StringVar(&endpoint, "endpoint", "", "relay URL (default client.endpoint from config)")
	cmd.Flags().BoolVar(&wait, "wait", false, "wait for and print the reply")
	cmd.Flags().BoolVar(&trace, "trace", false, "print the exchange as a tree (with --wait)")
	_ = cmd.MarkFlagRequired("key")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

func printTrace(out io.Writer, root *transfer.Node) error {
	return root.Walk(func(n *transfer.Node, depth int) error {
		origin := "?"
		if p := n.Plaintext(); p != nil {
			origin = p.Origin.String()
		}
		_, err := fmt.Fprintf(out, "%s%s origin=%s sealed=%d\n",
			strings.Repeat("  ", depth), n.ID(), origin, len(n.Ciphertext()))
		return err
	})
}
