package transport

import (
	"bytes"
	"context"
	"strings"
	"sync"

	"github.com/go-i2p/common/base64"
)

// LoopbackScheme prefixes targets the Loopback transport answers.
const LoopbackScheme = "loop:"

// Loopback answers every request in-process with the request body as I2P
// base64 text. It records what it delivered.
type Loopback struct {
	mu        sync.Mutex
	delivered [][]byte
}

var _ Transport = (*Loopback)(nil)

func NewLoopback() *Loopback {
	return &Loopback{}
}

func (l *Loopback) Name() string { return "loopback" }

func (l *Loopback) Compatible(target string) bool {
	return strings.HasPrefix(target, LoopbackScheme)
}

func (l *Loopback) Post(ctx context.Context, target string, body []byte) ([]byte, error) {
	if target == "" {
		return nil, ErrInvalidArgument
	}
	if err := ctx.Err(); err != nil {
		return nil, wrapContext(err, target)
	}
	l.mu.Lock()
	l.delivered = append(l.delivered, bytes.Clone(body))
	l.mu.Unlock()
	return []byte(base64.EncodeToString(body)), nil
}

// Delivered returns copies of every request body seen so far.
func (l *Loopback) Delivered() [][]byte {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([][]byte, len(l.delivered))
	for i, b := range l.delivered {
		out[i] = bytes.Clone(b)
	}
	return out
}
