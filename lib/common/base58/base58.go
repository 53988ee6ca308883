// Package base58 implements utilities for encoding and decoding text using the
// Bitcoin base58 alphabet, plus the fixed-width form used by beam locators.
package base58

import (
	"bytes"
	"fmt"

	b58 "github.com/mr-tron/base58"
	"github.com/samber/oops"

	"github.com/go-i2p/go-beam/lib/common/errs"
)

// Alphabet is the base58 alphabet used throughout beam.
// Bitcoin ordering, no 0, O, I or l.
const Alphabet = "123456789ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz"

// zeroDigit encodes a leading zero byte.
const zeroDigit = '1'

var (
	ErrInvalidEncoding = fmt.Errorf("%w: invalid base58 text", errs.ErrInvalidInput)
	ErrTooLong         = fmt.Errorf("%w: value exceeds fixed base58 width", errs.ErrInvalidInput)
)

// EncodeToString encodes []byte to a base58 string
func EncodeToString(data []byte) string {
	return b58.Encode(data)
}

// DecodeString decodes a base58 string to []byte
func DecodeString(str string) ([]byte, error) {
	data, err := b58.Decode(str)
	if err != nil {
		return nil, oops.Wrapf(ErrInvalidEncoding, "%v", err)
	}
	return data, nil
}

// MaxEncodedLen returns the longest base58 text an n byte value can produce.
func MaxEncodedLen(n int) int {
	return len(b58.Encode(bytes.Repeat([]byte{0xff}, n)))
}

// EncodeFixed encodes data and left-pads the result with the zero digit so it
// is exactly width characters long. Each pad character decodes back to one
// leading zero byte, which DecodeFixed strips again.
func EncodeFixed(data []byte, width int) (string, error) {
	str := b58.Encode(data)
	if len(str) > width {
		return "", oops.Wrapf(ErrTooLong, "encoded %d bytes to %d chars, width is %d", len(data), len(str), width)
	}
	if len(str) == width {
		return str, nil
	}
	var sb bytes.Buffer
	sb.Grow(width)
	for i := len(str); i < width; i++ {
		sb.WriteByte(zeroDigit)
	}
	sb.WriteString(str)
	return sb.String(), nil
}

// DecodeFixed decodes fixed-width text produced by EncodeFixed back to exactly
// size bytes. Padding must decode to zero bytes.
func DecodeFixed(str string, size int) ([]byte, error) {
	data, err := DecodeString(str)
	if err != nil {
		return nil, err
	}
	if len(data) < size {
		return nil, oops.Wrapf(ErrInvalidEncoding, "decoded %d bytes, want %d", len(data), size)
	}
	pad := len(data) - size
	for _, b := range data[:pad] {
		if b != 0 {
			return nil, oops.Wrapf(ErrInvalidEncoding, "decoded %d bytes, want %d", len(data), size)
		}
	}
	return data[pad:], nil
}
