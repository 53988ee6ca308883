package address

import (
	"fmt"

	"github.com/go-i2p/go-beam/lib/common/errs"
)

var (
	// ErrInvalidArgument is returned for nil identities or a name that is
	// empty or not UTF-8.
	ErrInvalidArgument = fmt.Errorf("%w: address argument is nil or empty", errs.ErrInvalidInput)

	// ErrInvalidFormat is returned when a locator does not match the grammar.
	ErrInvalidFormat = fmt.Errorf("%w: malformed locator", errs.ErrInvalidInput)

	// ErrMissingParameter is returned when a required parameter is absent.
	ErrMissingParameter = fmt.Errorf("%w: missing locator parameter", errs.ErrInvalidInput)

	// ErrInvalidParameter is returned for parameter keys or values outside
	// the allowed character classes.
	ErrInvalidParameter = fmt.Errorf("%w: invalid locator parameter", errs.ErrInvalidInput)
)
