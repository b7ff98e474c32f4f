package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseIdentity(t *testing.T) {
	const addr = "0x52908400098527886e0f7030069857d2e4169ee7"

	id, err := ParseIdentity("  0x52908400098527886E0F7030069857D2E4169EE7 ")
	require.NoError(t, err)
	assert.Equal(t, Identity(addr), id)
	assert.True(t, id.Valid())

	for _, bad := range []string{
		"",
		"52908400098527886e0f7030069857d2e4169ee7",
		"0x5290840009852788",
		"0x" + strings.Repeat("g", 40),
		"0x" + strings.Repeat("0", 40),
	} {
		_, err := ParseIdentity(bad)
		assert.ErrorIs(t, err, ErrMalformedIdentity, bad)
	}
}

func TestIdentityValid(t *testing.T) {
	var raw [AddressSize]byte
	raw[19] = 0x01
	id := IdentityFromBytes(raw)
	assert.Equal(t, "0x"+strings.Repeat("00", 19)+"01", id.String())
	assert.True(t, id.Valid())

	// Upper-case input is not canonical.
	assert.False(t, Identity(strings.ToUpper(string(id))).Valid())
	assert.False(t, Identity("").Valid())
}
