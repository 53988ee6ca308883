package relay

import (
	"bytes"
	"context"

	"github.com/go-i2p/logger"
	"github.com/samber/oops"

	"github.com/go-i2p/go-beam/lib/envelope"
	"github.com/go-i2p/go-beam/lib/identity"
	"github.com/go-i2p/go-beam/lib/message"
	"github.com/go-i2p/go-beam/lib/transfer"
)

// Handler processes one unsealed request. node carries the request
// ciphertext and plaintext; handlers may attach children to it. A nil reply
// means the request is answered with 204.
type Handler interface {
	Handle(ctx context.Context, node *transfer.Node) (*message.Message, error)
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, node *transfer.Node) (*message.Message, error)

func (f HandlerFunc) Handle(ctx context.Context, node *transfer.Node) (*message.Message, error) {
	return f(ctx, node)
}

// Echo replies with the request content, originated by id.
func Echo(id *identity.Identity) Handler {
	return HandlerFunc(func(_ context.Context, node *transfer.Node) (*message.Message, error) {
		in := node.Plaintext()
		if in == nil {
			return nil, ErrNoPlaintext
		}
		return &message.Message{
			Version: in.Version,
			Origin:  id,
			Content: bytes.Clone(in.Content),
		}, nil
	})
}

// Sink accepts every request without replying.
func Sink() Handler {
	return HandlerFunc(func(context.Context, *transfer.Node) (*message.Message, error) {
		return nil, nil
	})
}

// Forwarder relays request content to the next hop through an envelope
// Sender and returns the next hop's reply, re-originated by the sender's
// local identity.
type Forwarder struct {
	sender *envelope.Sender
}

var _ Handler = (*Forwarder)(nil)

func NewForwarder(sender *envelope.Sender) (*Forwarder, error) {
	if sender == nil {
		return nil, oops.Wrapf(ErrInvalidArgument, "forwarder needs a sender")
	}
	return &Forwarder{sender: sender}, nil
}

func (f *Forwarder) Handle(ctx context.Context, node *transfer.Node) (*message.Message, error) {
	in := node.Plaintext()
	if in == nil {
		return nil, ErrNoPlaintext
	}
	local := f.sender.Local()
	out := &message.Message{
		Version: in.Version,
		Origin:  local,
		Content: in.Content,
	}

	log.WithFields(logger.Fields{
		"at":       "(Forwarder) Handle",
		"from":     in.Origin.String(),
		"endpoint": f.sender.Target().Endpoint,
		"node":     node.ID().String(),
	}).Debug("Forwarding message to next hop")

	reply, hop, err := f.sender.SendAndReceiveTraced(ctx, out)
	if err != nil {
		return nil, err
	}
	if err := node.AddChild(hop); err != nil {
		return nil, err
	}
	return &message.Message{
		Version: reply.Version,
		Origin:  local,
		Content: reply.Content,
	}, nil
}
