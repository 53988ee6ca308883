package transport

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-i2p/common/base64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-i2p/go-beam/lib/common/errs"
)

func TestHTTPPostsOctetStream(t *testing.T) {
	var gotMethod, gotType string
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotType = r.Header.Get("Content-Type")
		gotBody, _ = io.ReadAll(r.Body)
		_, _ = w.Write([]byte("reply-text"))
	}))
	defer srv.Close()

	h := NewHTTP(5 * time.Second)
	resp, err := h.Post(context.Background(), srv.URL, []byte{0, 1, 2})
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, ContentType, gotType)
	assert.Equal(t, []byte{0, 1, 2}, gotBody)
	assert.Equal(t, "reply-text", string(resp))
}

func TestHTTPNon2xxIsTransportError(t *testing.T) {
	for _, status := range []int{http.StatusBadRequest, http.StatusNotFound, http.StatusInternalServerError} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "no", status)
		}))

		_, err := NewHTTP(time.Second).Post(context.Background(), srv.URL, []byte("x"))
		srv.Close()

		assert.ErrorIs(t, err, ErrStatus, "status %d", status)
		assert.ErrorIs(t, err, ErrTransport)
		assert.Equal(t, errs.KindTransport, errs.KindOf(err))
	}
}

func TestHTTPAccepts204(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	resp, err := NewHTTP(time.Second).Post(context.Background(), srv.URL, []byte("x"))
	require.NoError(t, err)
	assert.Empty(t, resp)
}

func TestHTTPResponseLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(make([]byte, 64))
	}))
	defer srv.Close()

	h := NewHTTP(time.Second)
	h.MaxResponseBytes = 63
	_, err := h.Post(context.Background(), srv.URL, []byte("x"))
	assert.ErrorIs(t, err, ErrResponseTooLarge)

	h.MaxResponseBytes = 64
	resp, err := h.Post(context.Background(), srv.URL, []byte("x"))
	require.NoError(t, err)
	assert.Len(t, resp, 64)
}

func TestHTTPUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewHTTP(time.Second).Post(context.Background(), url, []byte("x"))
	assert.ErrorIs(t, err, ErrTransport)
}

func TestHTTPHonorsContext(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := NewHTTP(0).Post(ctx, srv.URL, []byte("x"))
	assert.ErrorIs(t, err, ErrTransport)
}

func TestHTTPEmptyTarget(t *testing.T) {
	_, err := NewHTTP(0).Post(context.Background(), "", []byte("x"))
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestHTTPCompatible(t *testing.T) {
	h := NewHTTP(0)
	assert.True(t, h.Compatible("http://relay"))
	assert.True(t, h.Compatible("https://relay/beam"))
	assert.False(t, h.Compatible("loop:relay"))
	assert.False(t, h.Compatible("relay"))
}

func TestLoopbackEchoesBase64(t *testing.T) {
	l := NewLoopback()
	body := []byte{0xff, 0x00, 0x10}

	resp, err := l.Post(context.Background(), "loop:self", body)
	require.NoError(t, err)

	decoded, err := base64.DecodeString(string(resp))
	require.NoError(t, err)
	assert.Equal(t, body, decoded)
	assert.Equal(t, [][]byte{body}, l.Delivered())

	body[0] = 0
	assert.Equal(t, byte(0xff), l.Delivered()[0][0])
}

func TestLoopbackCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewLoopback().Post(ctx, "loop:self", []byte("x"))
	assert.ErrorIs(t, err, ErrTransport)
}

func TestFuncAdapter(t *testing.T) {
	f := Func(func(_ context.Context, target string, body []byte) ([]byte, error) {
		return append([]byte(target+":"), body...), nil
	})
	resp, err := f.Post(context.Background(), "t", []byte("b"))
	require.NoError(t, err)
	assert.Equal(t, "t:b", string(resp))
	assert.True(t, f.Compatible("anything"))

	_, err = f.Post(context.Background(), "", nil)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestMuxPicksFirstCompatible(t *testing.T) {
	loop := NewLoopback()
	var httpCalls int
	fallback := Func(func(context.Context, string, []byte) ([]byte, error) {
		httpCalls++
		return []byte("fallback"), nil
	})
	tmux := Mux(loop, fallback)

	resp, err := tmux.Post(context.Background(), "loop:x", []byte("a"))
	require.NoError(t, err)
	assert.Equal(t, base64.EncodeToString([]byte("a")), string(resp))
	assert.Equal(t, 0, httpCalls)

	resp, err = tmux.Post(context.Background(), "http://elsewhere", []byte("a"))
	require.NoError(t, err)
	assert.Equal(t, "fallback", string(resp))
	assert.Equal(t, 1, httpCalls)
	assert.Equal(t, "Muxed Transport: loopback, func", tmux.Name())
}

func TestMuxNoCompatibleTransport(t *testing.T) {
	tmux := Mux(NewLoopback())
	assert.False(t, tmux.Compatible("https://relay"))

	_, err := tmux.Post(context.Background(), "https://relay", []byte("a"))
	assert.ErrorIs(t, err, ErrNoTransportAvailable)
	assert.ErrorIs(t, err, ErrTransport)
}

func TestMuxInFlightLimit(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	blocking := Func(func(context.Context, string, []byte) ([]byte, error) {
		entered <- struct{}{}
		<-release
		return nil, nil
	})
	tmux := MuxWithLimit(1, blocking)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, _ = tmux.Post(context.Background(), "t", nil)
	}()
	<-entered
	assert.Equal(t, 1, tmux.InFlight())

	_, err := tmux.Post(context.Background(), "t", nil)
	assert.ErrorIs(t, err, ErrConnectionLimit)

	close(release)
	wg.Wait()
	assert.Equal(t, 0, tmux.InFlight())
}

type closingTransport struct {
	Func
	err    error
	closed bool
}

func (c *closingTransport) Close() error {
	c.closed = true
	return c.err
}

func TestMuxCloseClosesAll(t *testing.T) {
	boom := errors.New("boom")
	a := &closingTransport{err: boom}
	b := &closingTransport{}
	tmux := Mux(a, NewLoopback(), b)

	assert.ErrorIs(t, tmux.Close(), boom)
	assert.True(t, a.closed)
	assert.True(t, b.closed)
	assert.Len(t, tmux.GetTransports(), 3)
}
