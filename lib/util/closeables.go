package util

import (
	"io"
	"sync"
)

var (
	closeOnExit []io.Closer
	closeMutex  sync.Mutex
)

// RegisterCloser registers an io.Closer to be closed during shutdown.
// This function is thread-safe.
func RegisterCloser(c io.Closer) {
	if c == nil {
		return
	}
	closeMutex.Lock()
	defer closeMutex.Unlock()
	closeOnExit = append(closeOnExit, c)
	log.WithField("count", len(closeOnExit)).Debug("Registered closer")
}

// CloseAll closes registered closers in reverse registration order and
// clears the list. Returns the number of closers that failed.
func CloseAll() int {
	closeMutex.Lock()
	defer closeMutex.Unlock()

	log.WithField("count", len(closeOnExit)).Debug("Closing all registered closers")

	failed := 0
	for idx := len(closeOnExit) - 1; idx >= 0; idx-- {
		if err := closeOnExit[idx].Close(); err != nil {
			log.WithError(err).Warn("Error closing resource")
			failed++
		}
	}
	closeOnExit = nil
	return failed
}
