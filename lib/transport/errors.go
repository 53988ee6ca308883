package transport

import (
	"fmt"

	"github.com/go-i2p/go-beam/lib/common/errs"
)

var (
	// ErrTransport is the parent of every delivery failure in this package.
	ErrTransport = fmt.Errorf("%w: envelope delivery failed", errs.ErrTransport)

	ErrInvalidArgument = fmt.Errorf("%w: transport target is empty", errs.ErrInvalidInput)

	// error for when we have no transports available to use
	ErrNoTransportAvailable = fmt.Errorf("%w: no transports available", ErrTransport)

	ErrStatus           = fmt.Errorf("%w: relay answered with a non-2xx status", ErrTransport)
	ErrResponseTooLarge = fmt.Errorf("%w: relay response exceeds the size limit", ErrTransport)
	ErrConnectionLimit  = fmt.Errorf("%w: too many requests in flight", ErrTransport)
)
