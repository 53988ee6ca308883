package envelope

import (
	"context"
	"strings"

	"github.com/go-i2p/common/base64"
	"github.com/go-i2p/logger"
	"github.com/samber/oops"

	"github.com/go-i2p/go-beam/lib/identity"
	"github.com/go-i2p/go-beam/lib/message"
	"github.com/go-i2p/go-beam/lib/seal"
	"github.com/go-i2p/go-beam/lib/transfer"
	"github.com/go-i2p/go-beam/lib/transport"
)

// Sender seals messages for one Target. A Sender holds no mutable state, but
// its transport should serve one call at a time unless it is known to be
// reentrant.
type Sender struct {
	target    Target
	local     *identity.Identity
	sealer    seal.Sealer
	transport transport.Transport
}

// NewSender checks its arguments up front. local must hold a private key so
// replies sealed back to it can be opened.
func NewSender(target Target, local *identity.Identity, sealer seal.Sealer, tr transport.Transport) (*Sender, error) {
	if err := target.validate(); err != nil {
		return nil, err
	}
	if local == nil {
		return nil, oops.Wrapf(ErrInvalidArgument, "local identity is nil")
	}
	if !local.HasPrivate() {
		return nil, oops.Wrapf(ErrInvalidArgument, "local identity %s has no private key", local)
	}
	if sealer == nil {
		return nil, oops.Wrapf(ErrInvalidArgument, "sealer is nil")
	}
	if tr == nil {
		return nil, oops.Wrapf(ErrInvalidArgument, "transport is nil")
	}
	return &Sender{
		target:    target,
		local:     local,
		sealer:    sealer,
		transport: tr,
	}, nil
}

// Target returns the configured target.
func (s *Sender) Target() Target { return s.target }

// Local returns the identity replies are unsealed with.
func (s *Sender) Local() *identity.Identity { return s.local }

// Send seals msg and posts it. The response body is ignored.
func (s *Sender) Send(ctx context.Context, msg *message.Message) error {
	sealed, err := s.seal(msg)
	if err != nil {
		return err
	}
	if _, err := s.post(ctx, sealed); err != nil {
		return err
	}
	log.WithFields(logger.Fields{
		"at":       "(Sender) Send",
		"endpoint": s.target.Endpoint,
		"size":     len(sealed),
	}).Debug("Envelope delivered")
	return nil
}

// SendAndReceive seals msg, posts it and unseals the reply.
func (s *Sender) SendAndReceive(ctx context.Context, msg *message.Message) (*message.Message, error) {
	reply, _, err := s.roundTrip(ctx, msg)
	return reply, err
}

// SendAndReceiveTraced is SendAndReceive returning the exchange as a tree:
// a root holding the request with one child holding the reply.
func (s *Sender) SendAndReceiveTraced(ctx context.Context, msg *message.Message) (*message.Message, *transfer.Node, error) {
	return s.roundTrip(ctx, msg)
}

func (s *Sender) roundTrip(ctx context.Context, msg *message.Message) (*message.Message, *transfer.Node, error) {
	sealed, err := s.seal(msg)
	if err != nil {
		return nil, nil, err
	}
	body, err := s.post(ctx, sealed)
	if err != nil {
		return nil, nil, err
	}

	replySealed, err := base64.DecodeString(strings.TrimSpace(string(body)))
	if err != nil {
		log.WithFields(logger.Fields{
			"at":       "(Sender) SendAndReceive",
			"endpoint": s.target.Endpoint,
			"size":     len(body),
		}).WithError(err).Warn("Response is not base64 text")
		return nil, nil, oops.Wrapf(ErrUnseal, "response is not base64: %v", err)
	}
	reply, err := s.sealer.Unseal(replySealed, s.local)
	if err != nil {
		log.WithFields(logger.Fields{
			"at":       "(Sender) SendAndReceive",
			"endpoint": s.target.Endpoint,
		}).WithError(err).Warn("Failed to unseal response")
		return nil, nil, err
	}

	trace, err := buildTrace(msg, sealed, reply, replySealed)
	if err != nil {
		return nil, nil, err
	}
	return reply, trace, nil
}

func (s *Sender) seal(msg *message.Message) ([]byte, error) {
	if msg == nil {
		return nil, oops.Wrapf(ErrInvalidArgument, "message is nil")
	}
	sealed, err := s.sealer.Seal(msg, s.target.Recipient)
	if err != nil {
		log.WithFields(logger.Fields{
			"at":        "(Sender) seal",
			"recipient": s.target.Recipient.String(),
		}).WithError(err).Error("Failed to seal message")
		return nil, err
	}
	return sealed, nil
}

func (s *Sender) post(ctx context.Context, sealed []byte) ([]byte, error) {
	body, err := s.transport.Post(ctx, s.target.Endpoint, sealed)
	if err != nil {
		log.WithFields(logger.Fields{
			"at":        "(Sender) post",
			"endpoint":  s.target.Endpoint,
			"transport": s.transport.Name(),
		}).WithError(err).Warn("Envelope delivery failed")
		return nil, err
	}
	return body, nil
}

func buildTrace(req *message.Message, reqSealed []byte, reply *message.Message, replySealed []byte) (*transfer.Node, error) {
	root, err := transfer.NewWithPlaintext(req)
	if err != nil {
		return nil, err
	}
	if err := root.SetCiphertext(reqSealed); err != nil {
		return nil, err
	}
	child, err := transfer.NewWithPlaintext(reply)
	if err != nil {
		return nil, err
	}
	if err := child.SetCiphertext(replySealed); err != nil {
		return nil, err
	}
	if err := root.AddChild(child); err != nil {
		return nil, err
	}
	return root, nil
}
