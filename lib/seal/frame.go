package seal

import (
	"crypto/sha512"
	"encoding/binary"
	"fmt"
)

// frame is the signed plaintext inside the AEAD.
type frame struct {
	version []byte
	origin  []byte
	content []byte
	sig     []byte
}

func (f *frame) body() []byte {
	out := make([]byte, 0, 12+len(f.version)+len(f.origin)+len(f.content))
	out = appendLengthPrefixed(out, f.version)
	out = appendLengthPrefixed(out, f.origin)
	out = appendLengthPrefixed(out, f.content)
	return out
}

func (f *frame) marshal() []byte {
	return appendLengthPrefixed(f.body(), f.sig)
}

// digest binds the frame body to the recipient's public key.
func (f *frame) digest(recipient []byte) []byte {
	h := sha512.New384()
	h.Write(recipient)
	h.Write(f.body())
	return h.Sum(nil)
}

func unmarshalFrame(data []byte) (*frame, error) {
	f := &frame{}
	offset := 0
	var err error
	for _, field := range []struct {
		name string
		dst  *[]byte
	}{
		{"version", &f.version},
		{"origin", &f.origin},
		{"content", &f.content},
		{"signature", &f.sig},
	} {
		*field.dst, offset, err = readLengthPrefixedField(data, offset, field.name)
		if err != nil {
			return nil, err
		}
	}
	if offset != len(data) {
		return nil, fmt.Errorf("%d trailing bytes after signature", len(data)-offset)
	}
	return f, nil
}

func appendLengthPrefixed(out, field []byte) []byte {
	out = binary.BigEndian.AppendUint32(out, uint32(len(field)))
	return append(out, field...)
}

// readLengthPrefixedField reads a 4-byte big-endian length followed by that many bytes.
func readLengthPrefixedField(data []byte, offset int, fieldName string) ([]byte, int, error) {
	if offset+4 > len(data) {
		return nil, 0, fmt.Errorf("data too short for %s length", fieldName)
	}
	length := int(binary.BigEndian.Uint32(data[offset : offset+4]))
	offset += 4

	if length > len(data)-offset {
		return nil, 0, fmt.Errorf("data too short for %s data (need %d, have %d)", fieldName, length, len(data)-offset)
	}
	field := make([]byte, length)
	copy(field, data[offset:offset+length])
	offset += length

	return field, offset, nil
}
