package domain

import (
	"encoding/hex"
	"errors"
	"strings"
)

// HashSize is the length in bytes of a staff or batch hash.
const HashSize = 32

// ErrMalformedHash is returned when a hash string is not 32 hex-encoded bytes.
var ErrMalformedHash = errors.New("hash must be 64 hexadecimal characters")

// Hash is an opaque 32-byte identifier supplied by the caller. The registry
// never checks what it is a hash of.
type Hash [HashSize]byte

// ZeroHash is reserved as "no hash" and is never accepted as a key.
var ZeroHash Hash

// ParseHash decodes a hex string, with or without a 0x prefix.
func ParseHash(s string) (Hash, error) {
	var h Hash
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if len(s) != HashSize*2 {
		return h, ErrMalformedHash
	}
	if _, err := hex.Decode(h[:], []byte(s)); err != nil {
		return h, ErrMalformedHash
	}
	return h, nil
}

// IsZero reports whether h is the all-zero sentinel.
func (h Hash) IsZero() bool {
	return h == ZeroHash
}

// String returns the lowercase hex encoding without prefix.
func (h Hash) String() string {
	return hex.EncodeToString(h[:])
}

// MarshalText implements encoding.TextMarshaler.
func (h Hash) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (h *Hash) UnmarshalText(text []byte) error {
	parsed, err := ParseHash(string(text))
	if err != nil {
		return err
	}
	*h = parsed
	return nil
}
