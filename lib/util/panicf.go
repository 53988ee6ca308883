package util

import (
	"fmt"
)

// Panicf logs and panics with a formatted message. Reserved for broken
// startup invariants, never for bad input.
func Panicf(format string, args ...interface{}) {
	s := fmt.Sprintf(format, args...)
	log.WithField("at", "Panicf").Error(s)
	panic(s)
}
