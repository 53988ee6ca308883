// Package signals dispatches process signals to registered handlers:
// SIGHUP to reload handlers and SIGINT/SIGTERM to interrupt handlers.
package signals

import (
	"context"
	"os"
	"os/signal"
	"sync"

	"github.com/go-i2p/logger"
)

var log = logger.GetGoI2PLogger()

// sigChan is buffered to avoid missing signals delivered while no receiver is ready.
var sigChan = make(chan os.Signal, 1)

// Handler is a function called when a signal is received.
type Handler func()

// HandlerID is a unique identifier returned by registration functions,
// used to deregister individual handlers.
type HandlerID int

// registeredHandler pairs a handler with its unique ID.
type registeredHandler struct {
	id HandlerID
	fn Handler
}

var (
	mu           sync.RWMutex
	reloaders    []registeredHandler
	interrupters []registeredHandler
	nextID       HandlerID
	stopOnce     sync.Once
	stop         = make(chan struct{})
)

// RegisterReloadHandler registers a handler called on SIGHUP.
// Nil handlers are ignored and return -1.
func RegisterReloadHandler(f Handler) HandlerID {
	return register(&reloaders, f)
}

// DeregisterReloadHandler removes a reload handler by ID.
func DeregisterReloadHandler(id HandlerID) {
	deregister(&reloaders, id)
}

// RegisterInterruptHandler registers a handler called on SIGINT/SIGTERM.
// Nil handlers are ignored and return -1.
func RegisterInterruptHandler(f Handler) HandlerID {
	return register(&interrupters, f)
}

// DeregisterInterruptHandler removes an interrupt handler by ID.
func DeregisterInterruptHandler(id HandlerID) {
	deregister(&interrupters, id)
}

func register(list *[]registeredHandler, f Handler) HandlerID {
	if f == nil {
		return -1
	}
	mu.Lock()
	defer mu.Unlock()
	id := nextID
	nextID++
	*list = append(*list, registeredHandler{id: id, fn: f})
	return id
}

func deregister(list *[]registeredHandler, id HandlerID) {
	mu.Lock()
	defer mu.Unlock()
	for i, h := range *list {
		if h.id == id {
			*list = append((*list)[:i], (*list)[i+1:]...)
			return
		}
	}
}

// run calls a snapshot of list in registration order. A panicking handler
// is logged and does not stop the others.
func run(list *[]registeredHandler, kind string) {
	mu.RLock()
	snapshot := make([]registeredHandler, len(*list))
	copy(snapshot, *list)
	mu.RUnlock()
	for _, h := range snapshot {
		func() {
			defer func() {
				if r := recover(); r != nil {
					log.WithFields(logger.Fields{
						"at":      "signals.run",
						"kind":    kind,
						"handler": int(h.id),
					}).Errorf("panic in signal handler: %v", r)
				}
			}()
			h.fn()
		}()
	}
}

// Handle subscribes to the platform's signals and dispatches them until ctx
// is done or StopHandle is called.
func Handle(ctx context.Context) {
	signal.Notify(sigChan, notifySignals...)
	defer signal.Stop(sigChan)
	for {
		select {
		case <-ctx.Done():
			return
		case <-stop:
			return
		case sig := <-sigChan:
			dispatch(sig)
		}
	}
}

func dispatch(sig os.Signal) {
	log.WithField("signal", sig.String()).Debug("Received signal")
	if isReload(sig) {
		run(&reloaders, "reload")
		return
	}
	run(&interrupters, "interrupt")
}

// StopHandle makes Handle return. Safe to call multiple times.
func StopHandle() {
	stopOnce.Do(func() {
		close(stop)
	})
}
