package transport

import "context"

// Transport delivers one sealed request and returns the raw response body.
// Implementations must be safe for concurrent use.
type Transport interface {
	// Name identifies the transport in logs.
	Name() string

	// Compatible reports whether this transport can reach target.
	Compatible(target string) bool

	// Post sends body to target and blocks until the response arrives or ctx
	// is done.
	Post(ctx context.Context, target string, body []byte) ([]byte, error)
}

// Func adapts a function to Transport. It is compatible with every target.
type Func func(ctx context.Context, target string, body []byte) ([]byte, error)

var _ Transport = Func(nil)

func (f Func) Name() string { return "func" }

func (f Func) Compatible(string) bool { return true }

func (f Func) Post(ctx context.Context, target string, body []byte) ([]byte, error) {
	if target == "" {
		return nil, ErrInvalidArgument
	}
	return f(ctx, target, body)
}
