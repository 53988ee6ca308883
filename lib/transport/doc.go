// Package transport delivers sealed envelopes to a relay endpoint and returns
// the relay's raw response.
//
// # Transports
//
//   - HTTP: POSTs the sealed bytes as application/octet-stream to an http or
//     https endpoint. Any non-2xx status is a transport error.
//   - Loopback: answers every request locally with the request encoded as
//     I2P base64 text, the same shape a relay replies with.
//   - Func: adapts a function, mostly for tests.
//
// # Muxer
//
// Mux combines transports in order of preference and hands each request to
// the first one Compatible with the target. It also caps the number of
// requests in flight.
//
//	tmux := transport.Mux(transport.NewHTTP(30*time.Second), transport.NewLoopback())
//	defer tmux.Close()
//	reply, err := tmux.Post(ctx, "https://relay.example/beam", sealed)
//
// Transports never retry. Every failure wraps ErrTransport so callers can
// tell delivery problems from crypto problems with errors.Is.
package transport
