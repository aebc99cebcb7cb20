package gatt

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// A UUID is a BLE UUID.
type UUID struct {
	// Hide the bytes, so that we can change them later if need be.
	// Stored in little-endian order, the way they go over the air.
	b []byte
}

// UUID16 converts a uint16 (such as 0x1800) to a UUID.
func UUID16(i uint16) UUID {
	b := make([]byte, 2)
	binary.LittleEndian.PutUint16(b, i)
	return UUID{b}
}

// ParseUUID parses a standard-format UUID string, such
// as "1800", "0x2901" or "34DA3AD1-7110-41A1-B1EF-4430F509CDE7".
func ParseUUID(s string) (UUID, error) {
	s = strings.TrimPrefix(strings.ToLower(s), "0x")
	if len(s) == 4 {
		b, err := hex.DecodeString(s)
		if err != nil {
			return UUID{}, fmt.Errorf("invalid uuid %q: %w", s, err)
		}
		return UUID{reverse(b)}, nil
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return UUID{}, fmt.Errorf("invalid uuid %q: %w", s, err)
	}
	return UUID{reverse(u[:])}, nil
}

// MustParseUUID parses a standard-format UUID string,
// like ParseUUID, but panics in case of error.
func MustParseUUID(s string) UUID {
	u, err := ParseUUID(s)
	if err != nil {
		panic(err)
	}
	return u
}

// Len returns the length of the UUID, in bytes.
// BLE UUIDs are either 2 or 16 bytes.
func (u UUID) Len() int {
	return len(u.b)
}

// String hex-encodes a UUID in the form BlueZ expects:
// four digits for 16-bit UUIDs, dashed lowercase otherwise.
func (u UUID) String() string {
	if len(u.b) != 16 {
		return fmt.Sprintf("%x", reverse(u.b))
	}
	var v uuid.UUID
	copy(v[:], reverse(u.b))
	return v.String()
}

// Equal returns a boolean reporting whether v represent the same UUID as u.
func (u UUID) Equal(v UUID) bool {
	return bytes.Equal(u.b, v.b)
}

// reverse returns a reversed copy of u.
func reverse(u []byte) []byte {
	// Special-case 16 bit UUIDS for speed.
	l := len(u)
	if l == 2 {
		return []byte{u[1], u[0]}
	}
	b := make([]byte, l)
	for i, c := range u {
		b[l-i-1] = c
	}
	return b
}

func uuidEqual(u, v UUID) bool {
	return u.Equal(v)
}
