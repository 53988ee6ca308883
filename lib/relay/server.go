package relay

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-i2p/common/base64"
	"github.com/go-i2p/logger"
	"github.com/samber/oops"
	"golang.org/x/time/rate"

	"github.com/go-i2p/go-beam/lib/common/errs"
	"github.com/go-i2p/go-beam/lib/config"
	"github.com/go-i2p/go-beam/lib/identity"
	"github.com/go-i2p/go-beam/lib/message"
	"github.com/go-i2p/go-beam/lib/seal"
	"github.com/go-i2p/go-beam/lib/transfer"
)

// ReplyContentType is the content type of a reply body.
const ReplyContentType = "text/plain; charset=us-ascii"

// Server answers sealed envelopes on one HTTP path.
type Server struct {
	config     *config.RelayConfig
	id         *identity.Identity
	sealer     seal.Sealer
	handler    Handler
	limiter    *rate.Limiter
	httpServer *http.Server

	mu     sync.Mutex
	traces []*transfer.Node
}

var _ io.Closer = (*Server)(nil)

// NewServer checks its arguments and prepares, but does not start, the HTTP
// server. id must hold a private key to open requests.
func NewServer(cfg *config.RelayConfig, id *identity.Identity, sealer seal.Sealer, h Handler) (*Server, error) {
	if err := validateServerArgs(cfg, id, sealer, h); err != nil {
		return nil, err
	}
	s := &Server{
		config:  cfg,
		id:      id,
		sealer:  sealer,
		handler: h,
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst),
	}
	s.httpServer = createHTTPServer(cfg, s)
	return s, nil
}

func validateServerArgs(cfg *config.RelayConfig, id *identity.Identity, sealer seal.Sealer, h Handler) error {
	switch {
	case cfg == nil:
		return oops.Wrapf(ErrInvalidArgument, "config is nil")
	case id == nil || !id.HasPrivate():
		return oops.Wrapf(ErrInvalidArgument, "relay identity needs a private key")
	case sealer == nil:
		return oops.Wrapf(ErrInvalidArgument, "sealer is nil")
	case h == nil:
		return oops.Wrapf(ErrInvalidArgument, "handler is nil")
	case cfg.MaxBodyBytes <= 0 || cfg.Burst < 1 || cfg.RequestsPerSecond <= 0:
		return oops.Wrapf(ErrInvalidArgument, "relay limits must be positive")
	}
	return nil
}

func createHTTPServer(cfg *config.RelayConfig, server *Server) *http.Server {
	mux := http.NewServeMux()
	path := cfg.Path
	if path == "" {
		path = "/"
	}
	mux.Handle(path, server)

	return &http.Server{
		Addr:         cfg.Address,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

// Identity returns the relay identity.
func (s *Server) Identity() *identity.Identity { return s.id }

// ListenAndServe blocks serving on the configured address until Shutdown.
func (s *Server) ListenAndServe() error {
	log.WithFields(logger.Fields{
		"at":       "(Server) ListenAndServe",
		"address":  s.config.Address,
		"path":     s.config.Path,
		"identity": s.id.String(),
	}).Info("Starting beam relay")
	return serveResult(s.httpServer.ListenAndServe())
}

// Serve blocks serving on l until Shutdown.
func (s *Server) Serve(l net.Listener) error {
	log.WithFields(logger.Fields{
		"at":      "(Server) Serve",
		"address": l.Addr().String(),
	}).Info("Starting beam relay")
	return serveResult(s.httpServer.Serve(l))
}

func serveResult(err error) error {
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown stops accepting requests and waits for in-flight ones.
func (s *Server) Shutdown(ctx context.Context) error {
	log.WithField("at", "(Server) Shutdown").Info("Stopping beam relay")
	return s.httpServer.Shutdown(ctx)
}

// Close shuts down with a five second grace period.
func (s *Server) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.Shutdown(ctx); err != nil {
		log.WithError(err).Error("Error during relay shutdown")
		return err
	}
	return nil
}

// SetLimits replaces the rate limit, e.g. after a configuration reload.
func (s *Server) SetLimits(requestsPerSecond float64, burst int) error {
	if requestsPerSecond <= 0 || burst < 1 {
		return oops.Wrapf(ErrInvalidArgument, "rate %v burst %d", requestsPerSecond, burst)
	}
	s.limiter.SetLimit(rate.Limit(requestsPerSecond))
	s.limiter.SetBurst(burst)
	log.WithFields(logger.Fields{
		"at":                  "(Server) SetLimits",
		"requests_per_second": requestsPerSecond,
		"burst":               burst,
	}).Info("Updated relay rate limit")
	return nil
}

// Traces returns the most recent request trees, oldest first.
func (s *Server) Traces() []*transfer.Node {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*transfer.Node, len(s.traces))
	copy(out, s.traces)
	return out
}

// remember stores a finished tree. Trees are only recorded once the request
// is done with them.
func (s *Server) remember(node *transfer.Node) {
	depth := s.config.TraceDepth
	if depth <= 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.traces = append(s.traces, node)
	if over := len(s.traces) - depth; over > 0 {
		copy(s.traces, s.traces[over:])
		clear(s.traces[depth:])
		s.traces = s.traces[:depth]
	}
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "method must be POST", http.StatusMethodNotAllowed)
		return
	}
	if !s.limiter.Allow() {
		log.WithFields(logger.Fields{
			"at":     "(Server) ServeHTTP",
			"remote": r.RemoteAddr,
		}).Warn("Rate limit exceeded")
		http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
		return
	}

	body, status := s.readRequestBody(w, r)
	if status != 0 {
		http.Error(w, http.StatusText(status), status)
		return
	}

	node := transfer.New()
	defer s.remember(node)
	_ = node.SetCiphertext(body)

	switch status, reply := s.handle(r.Context(), node); status {
	case http.StatusOK:
		w.Header().Set("Content-Type", ReplyContentType)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(base64.EncodeToString(reply)))
	case http.StatusNoContent:
		w.WriteHeader(status)
	default:
		http.Error(w, http.StatusText(status), status)
	}
}

func (s *Server) readRequestBody(w http.ResponseWriter, r *http.Request) ([]byte, int) {
	defer r.Body.Close()
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.config.MaxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			log.WithField("limit", tooLarge.Limit).Warn("Request body too large")
			return nil, http.StatusRequestEntityTooLarge
		}
		return nil, http.StatusBadRequest
	}
	if len(body) == 0 {
		return nil, http.StatusBadRequest
	}
	return body, 0
}

// handle opens the envelope, runs the handler and seals the reply. It
// returns the status to answer with and the sealed reply, if any.
func (s *Server) handle(ctx context.Context, node *transfer.Node) (int, []byte) {
	msg, err := s.sealer.Unseal(node.Ciphertext(), s.id)
	if err != nil {
		log.WithFields(logger.Fields{
			"at":   "(Server) handle",
			"node": node.ID().String(),
			"size": len(node.Ciphertext()),
		}).WithError(err).Debug("Envelope did not open")
		return http.StatusBadRequest, nil
	}
	_ = node.SetPlaintext(msg)

	reply, err := s.handler.Handle(ctx, node)
	if err != nil {
		log.WithFields(logger.Fields{
			"at":     "(Server) handle",
			"node":   node.ID().String(),
			"origin": msg.Origin.String(),
		}).WithError(err).Error("Handler failed")
		if errs.KindOf(err) == errs.KindTransport {
			return http.StatusBadGateway, nil
		}
		return http.StatusInternalServerError, nil
	}
	if reply == nil {
		return http.StatusNoContent, nil
	}

	sealed, err := s.sealReply(reply, msg.Origin, node)
	if err != nil {
		return http.StatusInternalServerError, nil
	}
	return http.StatusOK, sealed
}

func (s *Server) sealReply(reply *message.Message, to *identity.Identity, node *transfer.Node) ([]byte, error) {
	sealed, err := s.sealer.Seal(reply, to)
	if err != nil {
		log.WithError(err).WithField("to", to.String()).Error("Failed to seal reply")
		return nil, err
	}
	child, err := transfer.NewWithPlaintext(reply)
	if err != nil {
		return nil, err
	}
	if err := child.SetCiphertext(sealed); err != nil {
		return nil, err
	}
	if err := node.AddChild(child); err != nil {
		return nil, err
	}
	log.WithFields(logger.Fields{
		"at":       "(Server) sealReply",
		"node":     node.ID().String(),
		"to":       to.String(),
		"children": len(node.Children()),
	}).Debug("Sealed reply")
	return sealed, nil
}
