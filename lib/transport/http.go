package transport

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-i2p/logger"
	"github.com/samber/oops"
)

const (
	// DefaultMaxResponseBytes bounds how much of a relay response is read.
	DefaultMaxResponseBytes = 1 << 20

	ContentType = "application/octet-stream"
)

// HTTP posts sealed envelopes to http and https endpoints.
type HTTP struct {
	Client *http.Client

	// MaxResponseBytes caps the response body. 0 means DefaultMaxResponseBytes.
	MaxResponseBytes int64
}

var _ Transport = (*HTTP)(nil)

// NewHTTP returns an HTTP transport whose client gives up after timeout.
// A zero timeout leaves the request bounded only by its context.
func NewHTTP(timeout time.Duration) *HTTP {
	return &HTTP{
		Client: &http.Client{Timeout: timeout},
	}
}

func (h *HTTP) Name() string { return "http" }

func (h *HTTP) Compatible(target string) bool {
	return strings.HasPrefix(target, "http://") || strings.HasPrefix(target, "https://")
}

func (h *HTTP) Post(ctx context.Context, target string, body []byte) ([]byte, error) {
	if target == "" {
		return nil, ErrInvalidArgument
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(body))
	if err != nil {
		return nil, oops.Wrapf(ErrTransport, "building request for %s: %v", target, err)
	}
	req.Header.Set("Content-Type", ContentType)

	log.WithFields(logger.Fields{
		"at":     "(HTTP) Post",
		"target": target,
		"size":   len(body),
	}).Debug("Posting envelope")

	resp, err := h.client().Do(req)
	if err != nil {
		log.WithError(err).WithField("target", target).Debug("Envelope POST failed")
		return nil, oops.Wrapf(ErrTransport, "post %s: %v", target, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		log.WithFields(logger.Fields{
			"at":     "(HTTP) Post",
			"target": target,
			"status": resp.StatusCode,
		}).Warn("Relay rejected envelope")
		return nil, oops.Wrapf(ErrStatus, "post %s: %s", target, resp.Status)
	}

	limit := h.maxResponseBytes()
	data, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, oops.Wrapf(ErrTransport, "reading response from %s: %v", target, err)
	}
	if int64(len(data)) > limit {
		return nil, oops.Wrapf(ErrResponseTooLarge, "more than %d bytes from %s", limit, target)
	}
	return data, nil
}

// Close drops idle keep-alive connections.
func (h *HTTP) Close() error {
	h.client().CloseIdleConnections()
	return nil
}

func (h *HTTP) client() *http.Client {
	if h.Client == nil {
		return http.DefaultClient
	}
	return h.Client
}

func (h *HTTP) maxResponseBytes() int64 {
	if h.MaxResponseBytes <= 0 {
		return DefaultMaxResponseBytes
	}
	return h.MaxResponseBytes
}
