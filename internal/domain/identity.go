package domain

import (
	"encoding/hex"
	"errors"
	"strings"
)

// AddressSize is the number of bytes in an identity address.
const AddressSize = 20

// ErrMalformedIdentity is returned for strings that are not 0x-prefixed 20-byte addresses.
var ErrMalformedIdentity = errors.New("identity must be 0x followed by 40 hexadecimal characters")

// Identity is a public-key-derived address, e.g. 0x52908400098527886e0f7030069857d2e4169ee7.
type Identity string

// ParseIdentity normalizes s to lowercase and checks its shape.
func ParseIdentity(s string) (Identity, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if !strings.HasPrefix(s, "0x") || len(s) != 2+AddressSize*2 {
		return "", ErrMalformedIdentity
	}
	raw, err := hex.DecodeString(s[2:])
	if err != nil {
		return "", ErrMalformedIdentity
	}
	var zero [AddressSize]byte
	if string(raw) == string(zero[:]) {
		return "", ErrMalformedIdentity
	}
	return Identity(s), nil
}

// IdentityFromBytes encodes a 20-byte address.
func IdentityFromBytes(b [AddressSize]byte) Identity {
	return Identity("0x" + hex.EncodeToString(b[:]))
}

// Valid reports whether the identity is a well-formed, non-zero address.
func (i Identity) Valid() bool {
	parsed, err := ParseIdentity(string(i))
	return err == nil && parsed == i
}

func (i Identity) String() string {
	return string(i)
}
