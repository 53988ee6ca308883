package base58

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-i2p/go-beam/lib/common/errs"
)

func TestEncodeDecodeNotMangled(t *testing.T) {
	assert := assert.New(t)

	// Random pangram
	testInput := []byte("Glib jocks quiz nymph to vex dwarf.")

	encodedString := EncodeToString(testInput)
	decodedString, err := DecodeString(encodedString)
	assert.Nil(err)

	assert.Equal(testInput, decodedString)
}

func TestEncodedTextUsesAlphabet(t *testing.T) {
	encoded := EncodeToString([]byte("spock"))
	for _, c := range encoded {
		assert.True(t, strings.ContainsRune(Alphabet, c), "unexpected rune %q", c)
	}
}

func TestDecodeStringRejectsForeignCharacters(t *testing.T) {
	_, err := DecodeString("0OIl")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidEncoding)
	assert.ErrorIs(t, err, errs.ErrInvalidInput)
}

func TestMaxEncodedLen(t *testing.T) {
	assert.Equal(t, 0, MaxEncodedLen(0))
	assert.Equal(t, 44, MaxEncodedLen(32))
	assert.Equal(t, 164, MaxEncodedLen(120))
}

func TestFixedWidthRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"all zero", make([]byte, 32)},
		{"leading zeros", append([]byte{0, 0, 0}, bytes.Repeat([]byte{0x42}, 29)...)},
		{"small value", append(make([]byte, 31), 0x01)},
		{"max value", bytes.Repeat([]byte{0xff}, 32)},
	}

	width := MaxEncodedLen(32)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			encoded, err := EncodeFixed(tt.data, width)
			require.NoError(t, err)
			assert.Len(t, encoded, width)

			decoded, err := DecodeFixed(encoded, len(tt.data))
			require.NoError(t, err)
			assert.Equal(t, tt.data, decoded)
		})
	}
}

func TestEncodeFixedTooLong(t *testing.T) {
	_, err := EncodeFixed(bytes.Repeat([]byte{0xff}, 32), 10)
	assert.ErrorIs(t, err, ErrTooLong)
}

func TestDecodeFixedWrongSize(t *testing.T) {
	encoded, err := EncodeFixed(bytes.Repeat([]byte{0x42}, 16), MaxEncodedLen(32))
	require.NoError(t, err)

	// Padding stripped to 32 bytes still yields only zero padding, but
	// asking for more bytes than were padded in must fail.
	_, err = DecodeFixed(encoded, 64)
	assert.ErrorIs(t, err, ErrInvalidEncoding)

	// Asking for fewer bytes than the value holds must fail too.
	_, err = DecodeFixed(encoded, 8)
	assert.ErrorIs(t, err, ErrInvalidEncoding)
}
