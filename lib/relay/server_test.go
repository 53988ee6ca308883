package relay

import (
	"bytes"
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-i2p/common/base64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-i2p/go-beam/lib/config"
	"github.com/go-i2p/go-beam/lib/envelope"
	"github.com/go-i2p/go-beam/lib/identity"
	"github.com/go-i2p/go-beam/lib/message"
	"github.com/go-i2p/go-beam/lib/seal"
	"github.com/go-i2p/go-beam/lib/transfer"
	"github.com/go-i2p/go-beam/lib/transport"
)

func generate(t *testing.T) *identity.Identity {
	t.Helper()
	id, err := identity.Generate()
	require.NoError(t, err)
	return id
}

func relayConfig() *config.RelayConfig {
	cfg := config.Defaults().Relay
	cfg.RequestsPerSecond = 1000
	cfg.Burst = 1000
	cfg.MaxBodyBytes = 4096
	cfg.TraceDepth = 8
	return cfg
}

// startRelay serves h behind an httptest server and returns the relay and its URL.
func startRelay(t *testing.T, cfg *config.RelayConfig, h func(id *identity.Identity) Handler) (*Server, string) {
	t.Helper()
	id := generate(t)
	srv, err := NewServer(cfg, id, seal.NewECIES(), h(id))
	require.NoError(t, err)
	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)
	return srv, ts.URL
}

func newSender(t *testing.T, endpoint string, relay, local *identity.Identity) *envelope.Sender {
	t.Helper()
	sender, err := envelope.NewSender(
		envelope.Target{Endpoint: endpoint, Recipient: relay.PublicOnly()},
		local, seal.NewECIES(), transport.NewHTTP(5*time.Second))
	require.NoError(t, err)
	return sender
}

func post(t *testing.T, url string, body []byte) *http.Response {
	t.Helper()
	resp, err := http.Post(url, transport.ContentType, bytes.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestEchoRoundTrip(t *testing.T) {
	srv, url := startRelay(t, relayConfig(), Echo)
	client := generate(t)

	msg := message.New(client, []byte("hello relay"))
	reply, err := newSender(t, url, srv.Identity(), client).SendAndReceive(context.Background(), msg)
	require.NoError(t, err)

	assert.Equal(t, msg.Content, reply.Content)
	assert.True(t, srv.Identity().Equal(reply.Origin), "echo replies come from the relay")

	traces := srv.Traces()
	require.Len(t, traces, 1)
	root := traces[0]
	assert.True(t, root.HasCiphertext())
	assert.True(t, msg.Equal(root.Plaintext()))
	require.Len(t, root.Children(), 1)
	assert.Equal(t, reply.Content, root.Children()[0].Plaintext().Content)
}

func TestReplyIsBase64Text(t *testing.T) {
	srv, url := startRelay(t, relayConfig(), Echo)
	client := generate(t)

	sealed, err := seal.NewECIES().Seal(message.New(client, []byte("x")), srv.Identity())
	require.NoError(t, err)

	resp := post(t, url, sealed)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, ReplyContentType, resp.Header.Get("Content-Type"))

	var buf bytes.Buffer
	_, err = buf.ReadFrom(resp.Body)
	require.NoError(t, err)
	raw, err := base64.DecodeString(buf.String())
	require.NoError(t, err)

	opened, err := seal.NewECIES().Unseal(raw, client)
	require.NoError(t, err)
	assert.Equal(t, []byte("x"), opened.Content)
}

func TestRejectsNonPost(t *testing.T) {
	_, url := startRelay(t, relayConfig(), Echo)

	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	assert.Equal(t, http.MethodPost, resp.Header.Get("Allow"))
}

func TestUnopenableEnvelopeKeepsCiphertextOnlyTrace(t *testing.T) {
	srv, url := startRelay(t, relayConfig(), Echo)

	resp := post(t, url, bytes.Repeat([]byte{7}, 300))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	traces := srv.Traces()
	require.Len(t, traces, 1)
	assert.True(t, traces[0].HasCiphertext())
	assert.False(t, traces[0].HasPlaintext())
	assert.False(t, traces[0].HasChildren())
}

func TestEnvelopeSealedForAnotherRelay(t *testing.T) {
	_, url := startRelay(t, relayConfig(), Echo)
	client, other := generate(t), generate(t)

	_, err := newSender(t, url, other, client).SendAndReceive(context.Background(), message.New(client, []byte("x")))
	assert.ErrorIs(t, err, transport.ErrStatus)
}

func TestEmptyBody(t *testing.T) {
	srv, url := startRelay(t, relayConfig(), Echo)

	resp := post(t, url, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Empty(t, srv.Traces())
}

func TestBodyTooLarge(t *testing.T) {
	cfg := relayConfig()
	cfg.MaxBodyBytes = 1024
	_, url := startRelay(t, cfg, Echo)

	resp := post(t, url, make([]byte, 2048))
	assert.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)
}

func TestRateLimit(t *testing.T) {
	cfg := relayConfig()
	cfg.RequestsPerSecond = 0.001
	cfg.Burst = 1
	_, url := startRelay(t, cfg, Echo)

	first := post(t, url, []byte("garbage"))
	assert.Equal(t, http.StatusBadRequest, first.StatusCode)

	second := post(t, url, []byte("garbage"))
	assert.Equal(t, http.StatusTooManyRequests, second.StatusCode)
}

func TestSinkAnswersNoContent(t *testing.T) {
	srv, url := startRelay(t, relayConfig(), func(*identity.Identity) Handler { return Sink() })
	client := generate(t)

	sealed, err := seal.NewECIES().Seal(message.New(client, []byte("fire and forget")), srv.Identity())
	require.NoError(t, err)
	resp := post(t, url, sealed)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	require.NoError(t, newSender(t, url, srv.Identity(), client).Send(context.Background(), message.New(client, []byte("again"))))
	assert.Len(t, srv.Traces(), 2)
}

func TestHandlerErrors(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"internal", errors.New("boom"), http.StatusInternalServerError},
		{"next hop down", transport.ErrTransport, http.StatusBadGateway},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv, url := startRelay(t, relayConfig(), func(*identity.Identity) Handler {
				return HandlerFunc(func(context.Context, *transfer.Node) (*message.Message, error) {
					return nil, tc.err
				})
			})
			sealed, err := seal.NewECIES().Seal(message.New(generate(t), []byte("x")), srv.Identity())
			require.NoError(t, err)

			resp := post(t, url, sealed)
			assert.Equal(t, tc.status, resp.StatusCode)
		})
	}
}

func TestForwarderChainsHops(t *testing.T) {
	last, lastURL := startRelay(t, relayConfig(), Echo)

	first, firstURL := startRelay(t, relayConfig(), func(id *identity.Identity) Handler {
		fwd, err := NewForwarder(newSender(t, lastURL, last.Identity(), id))
		require.NoError(t, err)
		return fwd
	})

	client := generate(t)
	msg := message.New(client, []byte("two hops"))
	reply, err := newSender(t, firstURL, first.Identity(), client).SendAndReceive(context.Background(), msg)
	require.NoError(t, err)
	assert.Equal(t, msg.Content, reply.Content)
	assert.True(t, first.Identity().Equal(reply.Origin))

	traces := first.Traces()
	require.Len(t, traces, 1)
	root := traces[0]
	assert.Equal(t, 4, root.Len(), "request, forwarded hop, hop reply, reply to client")

	children := root.Children()
	require.Len(t, children, 2)
	hop := children[0]
	assert.True(t, first.Identity().Equal(hop.Plaintext().Origin))
	require.Len(t, hop.Children(), 1)
	assert.True(t, last.Identity().Equal(hop.Children()[0].Plaintext().Origin))
	assert.Same(t, root, hop.Children()[0].Root())

	require.Len(t, last.Traces(), 1)
}

func TestForwarderNextHopDown(t *testing.T) {
	dead := httptest.NewServer(http.NotFoundHandler())
	deadURL := dead.URL
	dead.Close()
	nextHop := generate(t)

	first, firstURL := startRelay(t, relayConfig(), func(id *identity.Identity) Handler {
		fwd, err := NewForwarder(newSender(t, deadURL, nextHop, id))
		require.NoError(t, err)
		return fwd
	})

	client := generate(t)
	_, err := newSender(t, firstURL, first.Identity(), client).SendAndReceive(context.Background(), message.New(client, []byte("x")))
	assert.ErrorIs(t, err, transport.ErrStatus)
}

func TestTraceRingKeepsMostRecent(t *testing.T) {
	cfg := relayConfig()
	cfg.TraceDepth = 2
	srv, url := startRelay(t, cfg, Echo)
	client := generate(t)
	sender := newSender(t, url, srv.Identity(), client)

	for _, content := range []string{"one", "two", "three"} {
		_, err := sender.SendAndReceive(context.Background(), message.New(client, []byte(content)))
		require.NoError(t, err)
	}

	traces := srv.Traces()
	require.Len(t, traces, 2)
	assert.Equal(t, "two", string(traces[0].Plaintext().Content))
	assert.Equal(t, "three", string(traces[1].Plaintext().Content))
}

func TestTraceDepthZeroKeepsNothing(t *testing.T) {
	cfg := relayConfig()
	cfg.TraceDepth = 0
	srv, url := startRelay(t, cfg, Echo)

	post(t, url, []byte("garbage"))
	assert.Empty(t, srv.Traces())
}

func TestNewServerValidation(t *testing.T) {
	id := generate(t)
	cfg := relayConfig()
	s := seal.NewECIES()
	h := Echo(id)

	badLimits := relayConfig()
	badLimits.Burst = 0

	cases := []struct {
		name   string
		cfg    *config.RelayConfig
		id     *identity.Identity
		sealer seal.Sealer
		h      Handler
	}{
		{"nil config", nil, id, s, h},
		{"nil identity", cfg, nil, s, h},
		{"public-only identity", cfg, id.PublicOnly(), s, h},
		{"nil sealer", cfg, id, nil, h},
		{"nil handler", cfg, id, s, nil},
		{"zero burst", badLimits, id, s, h},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewServer(tc.cfg, tc.id, tc.sealer, tc.h)
			assert.ErrorIs(t, err, ErrInvalidArgument)
		})
	}

	_, err := NewForwarder(nil)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestEchoWithoutPlaintext(t *testing.T) {
	_, err := Echo(generate(t)).Handle(context.Background(), transfer.New())
	assert.ErrorIs(t, err, ErrNoPlaintext)
}

func TestServeAndShutdown(t *testing.T) {
	cfg := relayConfig()
	id := generate(t)
	srv, err := NewServer(cfg, id, seal.NewECIES(), Echo(id))
	require.NoError(t, err)

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- srv.Serve(l) }()

	client := generate(t)
	url := "http://" + l.Addr().String() + cfg.Path
	reply, err := newSender(t, url, id, client).SendAndReceive(context.Background(), message.New(client, []byte("served")))
	require.NoError(t, err)
	assert.Equal(t, "served", string(reply.Content))

	require.NoError(t, srv.Close())
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after Close")
	}
}

func TestSetLimits(t *testing.T) {
	cfg := relayConfig()
	cfg.RequestsPerSecond = 0.001
	cfg.Burst = 1
	srv, url := startRelay(t, cfg, Echo)

	post(t, url, []byte("garbage"))
	assert.Equal(t, http.StatusTooManyRequests, post(t, url, []byte("garbage")).StatusCode)

	require.NoError(t, srv.SetLimits(1000, 10))
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, http.StatusBadRequest, post(t, url, []byte("garbage")).StatusCode)

	assert.ErrorIs(t, srv.SetLimits(0, 1), ErrInvalidArgument)
}
