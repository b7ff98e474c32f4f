package main

import (
	"bytes"
	"crypto/ed25519"
	"encoding/hex"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/payroll-registry/internal/auth"
)

func runCommand(t *testing.T, args ...string) string {
	t.Helper()
	cmd := rootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	require.NoError(t, cmd.Execute())
	return out.String()
}

func TestKeygenSignRoundTrip(t *testing.T) {
	out := runCommand(t, "keygen")

	fields := map[string]string{}
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		k, v, ok := strings.Cut(line, ":")
		require.True(t, ok)
		fields[k] = strings.TrimSpace(v)
	}
	require.Len(t, fields, 3)

	address := strings.TrimSpace(runCommand(t, "address", fields["public_key"]))
	assert.Equal(t, fields["address"], address)

	sig := strings.TrimSpace(runCommand(t, "sign", "--key", fields["private_key"], "nonce-1"))
	pub, err := auth.ParsePublicKey(fields["public_key"])
	require.NoError(t, err)
	assert.NoError(t, auth.VerifyChallenge(pub, "nonce-1", sig))
}

func TestParsePrivateKey(t *testing.T) {
	seed := bytes.Repeat([]byte{7}, ed25519.SeedSize)
	want := ed25519.NewKeyFromSeed(seed)

	fromSeed, err := parsePrivateKey(hex.EncodeToString(seed))
	require.NoError(t, err)
	assert.Equal(t, want, fromSeed)

	fromFull, err := parsePrivateKey("0x" + hex.EncodeToString(want))
	require.NoError(t, err)
	assert.Equal(t, want, fromFull)

	_, err = parsePrivateKey("")
	assert.Error(t, err)
	_, err = parsePrivateKey("abcd")
	assert.Error(t, err)
}
