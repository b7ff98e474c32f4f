package auth

import (
	"crypto/ed25519"
	"encoding/hex"
	"errors"
	"strings"

	"golang.org/x/crypto/sha3"

	"github.com/spec-kit/payroll-registry/internal/domain"
)

var (
	ErrInvalidPublicKey = errors.New("public key must be 32 hex-encoded bytes")
	ErrInvalidSignature = errors.New("signature verification failed")
)

// AddressFromPublicKey derives the identity for an Ed25519 public key: the last
// 20 bytes of its Keccak-256 digest.
func AddressFromPublicKey(pub ed25519.PublicKey) (domain.Identity, error) {
	if len(pub) != ed25519.PublicKeySize {
		return "", ErrInvalidPublicKey
	}
	h := sha3.NewLegacyKeccak256()
	h.Write(pub)
	digest := h.Sum(nil)

	var addr [domain.AddressSize]byte
	copy(addr[:], digest[len(digest)-domain.AddressSize:])
	return domain.IdentityFromBytes(addr), nil
}

// ParsePublicKey decodes a hex public key, with or without 0x.
func ParsePublicKey(s string) (ed25519.PublicKey, error) {
	raw, err := decodeHex(s)
	if err != nil || len(raw) != ed25519.PublicKeySize {
		return nil, ErrInvalidPublicKey
	}
	return ed25519.PublicKey(raw), nil
}

// VerifyChallenge checks a hex signature over the challenge nonce.
func VerifyChallenge(pub ed25519.PublicKey, nonce, signatureHex string) error {
	sig, err := decodeHex(signatureHex)
	if err != nil || len(sig) != ed25519.SignatureSize {
		return ErrInvalidSignature
	}
	if !ed25519.Verify(pub, []byte(nonce), sig) {
		return ErrInvalidSignature
	}
	return nil
}

// SignChallenge signs a nonce; used by registryctl and tests.
func SignChallenge(priv ed25519.PrivateKey, nonce string) string {
	return hex.EncodeToString(ed25519.Sign(priv, []byte(nonce)))
}

func decodeHex(s string) ([]byte, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(strings.TrimSpace(s), "0x"), "0X")
	return hex.DecodeString(s)
}
