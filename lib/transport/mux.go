package transport

import (
	"context"
	"errors"
	"io"
	"sync/atomic"

	"github.com/go-i2p/logger"
	"github.com/samber/oops"
)

// DefaultMaxInFlight is the default cap on concurrent requests across all
// muxed transports.
const DefaultMaxInFlight = 256

// Compile-time check that TransportMuxer implements Transport interface
var _ Transport = (*TransportMuxer)(nil)

// TransportMuxer routes each request to the first compatible transport.
type TransportMuxer struct {
	// the underlying transports in order of preference
	trans []Transport

	// MaxInFlight caps concurrent requests. 0 means DefaultMaxInFlight.
	MaxInFlight int

	inFlight int32 // atomic
}

// Mux combines transports, most preferred first.
func Mux(t ...Transport) *TransportMuxer {
	log.WithFields(logger.Fields{
		"at":              "Mux",
		"transport_count": len(t),
	}).Debug("creating new TransportMuxer")
	tmux := new(TransportMuxer)
	tmux.trans = append(tmux.trans, t...)
	return tmux
}

// MuxWithLimit creates a TransportMuxer with a request cap.
func MuxWithLimit(maxInFlight int, t ...Transport) *TransportMuxer {
	tmux := Mux(t...)
	tmux.MaxInFlight = maxInFlight
	return tmux
}

func (tmux *TransportMuxer) Name() string {
	name := "Muxed Transport: "
	for i, t := range tmux.trans {
		if i > 0 {
			name += ", "
		}
		name += t.Name()
	}
	return name
}

// Compatible reports whether any muxed transport can reach target.
func (tmux *TransportMuxer) Compatible(target string) bool {
	return tmux.pick(target) != nil
}

func (tmux *TransportMuxer) Post(ctx context.Context, target string, body []byte) ([]byte, error) {
	if target == "" {
		return nil, ErrInvalidArgument
	}
	t := tmux.pick(target)
	if t == nil {
		log.WithFields(logger.Fields{
			"at":              "(TransportMuxer) Post",
			"target":          target,
			"transport_count": len(tmux.trans),
		}).Error("no compatible transport")
		return nil, oops.Wrapf(ErrNoTransportAvailable, "target %s", target)
	}
	if err := tmux.acquire(); err != nil {
		return nil, err
	}
	defer tmux.release()

	resp, err := t.Post(ctx, target, body)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && !errors.Is(err, ErrTransport) {
			return nil, wrapContext(ctxErr, target)
		}
		return nil, err
	}
	return resp, nil
}

// InFlight returns the number of requests currently being delivered.
func (tmux *TransportMuxer) InFlight() int {
	return int(atomic.LoadInt32(&tmux.inFlight))
}

// GetTransports returns the muxed transports in preference order.
func (tmux *TransportMuxer) GetTransports() []Transport {
	out := make([]Transport, len(tmux.trans))
	copy(out, tmux.trans)
	return out
}

// Close closes every muxed transport that holds resources and returns the
// first error.
func (tmux *TransportMuxer) Close() error {
	var first error
	for i, t := range tmux.trans {
		c, ok := t.(io.Closer)
		if !ok {
			continue
		}
		if err := c.Close(); err != nil {
			log.WithFields(logger.Fields{
				"at":              "(TransportMuxer) Close",
				"transport_index": i,
				"transport":       t.Name(),
			}).WithError(err).Warn("failed to close transport")
			if first == nil {
				first = err
			}
		}
	}
	return first
}

func (tmux *TransportMuxer) pick(target string) Transport {
	for _, t := range tmux.trans {
		if t.Compatible(target) {
			return t
		}
	}
	return nil
}

func (tmux *TransportMuxer) acquire() error {
	limit := tmux.MaxInFlight
	if limit <= 0 {
		limit = DefaultMaxInFlight
	}
	if n := atomic.AddInt32(&tmux.inFlight, 1); int(n) > limit {
		atomic.AddInt32(&tmux.inFlight, -1)
		log.WithFields(logger.Fields{
			"at":    "(TransportMuxer) acquire",
			"limit": limit,
		}).Warn("request limit reached")
		return oops.Wrapf(ErrConnectionLimit, "%d requests in flight", limit)
	}
	return nil
}

func (tmux *TransportMuxer) release() {
	atomic.AddInt32(&tmux.inFlight, -1)
}

func wrapContext(err error, target string) error {
	return oops.Wrapf(ErrTransport, "post %s: %v", target, err)
}
