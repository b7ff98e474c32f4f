package domain

import "time"

// Challenge is a single-use nonce an identity signs to prove key ownership.
type Challenge struct {
	Address   Identity
	PublicKey []byte
	Nonce     string
	ExpiresAt time.Time
}

// Token represents issued access token metadata.
type Token struct {
	Subject   Identity
	Value     string
	ExpiresAt time.Time
	IssuedAt  time.Time
}
