package domain

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	payloads := []Payload{
		{Scope: ScopeSingle, Days: 30, HardwareID: "HW1", IssuedAt: 1700000000000},
		{Scope: ScopeSingle, Days: 180, HardwareID: HardwareWildcard, IssuedAt: 1},
		{Scope: ScopeGlobal, Days: 365, HardwareID: HardwareWildcard, IssuedAt: 1700000000000},
	}

	for _, p := range payloads {
		encoded, err := EncodePayload(p)
		require.NoError(t, err)
		assert.NotContains(t, encoded, "=")
		assert.NotContains(t, encoded, "+")
		assert.NotContains(t, encoded, "/")

		decoded, err := DecodePayload(encoded)
		require.NoError(t, err)
		assert.Equal(t, p, *decoded)
	}
}

func TestEncodeIsDeterministic(t *testing.T) {
	p := Payload{Scope: ScopeSingle, Days: 30, HardwareID: "HW1", IssuedAt: 1700000000000}

	first, err := EncodePayload(p)
	require.NoError(t, err)
	second, err := EncodePayload(p)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestDecodeAcceptsPaddedInput(t *testing.T) {
	p := Payload{Scope: ScopeSingle, Days: 30, HardwareID: "HW1", IssuedAt: 1700000000000}
	encoded, err := EncodePayload(p)
	require.NoError(t, err)

	padded := encoded
	for len(padded)%4 != 0 {
		padded += "="
	}

	decoded, err := DecodePayload(padded)
	require.NoError(t, err)
	assert.Equal(t, p, *decoded)
}

func TestDecodeRejectsMalformedPayloads(t *testing.T) {
	encode := func(raw string) string {
		return base64.RawURLEncoding.EncodeToString([]byte(raw))
	}

	cases := map[string]string{
		"not base64":      "!!!not-base64!!!",
		"not json":        encode("not json"),
		"empty object":    encode(`{}`),
		"zero days":       encode(`{"type":"single","days":0,"hwid":"HW1","issued":1}`),
		"negative days":   encode(`{"type":"single","days":-5,"hwid":"HW1","issued":1}`),
		"fractional days": encode(`{"type":"single","days":1.5,"hwid":"HW1","issued":1}`),
		"unknown scope":   encode(`{"type":"lifetime","days":30,"hwid":"HW1","issued":1}`),
		"empty hwid":      encode(`{"type":"single","days":30,"hwid":"","issued":1}`),
		"bound global":    encode(`{"type":"global","days":30,"hwid":"HW1","issued":1}`),
	}

	for name, text := range cases {
		t.Run(name, func(t *testing.T) {
			decoded, err := DecodePayload(text)
			assert.Nil(t, decoded)
			assert.ErrorIs(t, err, ErrMalformedPayload)
		})
	}
}

func TestValidateRejectsInvalidMintInput(t *testing.T) {
	assert.ErrorIs(t, Payload{Scope: "other", Days: 30, HardwareID: "*"}.Validate(), ErrInvalidScope)
	assert.ErrorIs(t, Payload{Scope: ScopeSingle, Days: 0, HardwareID: "*"}.Validate(), ErrInvalidDays)
	assert.ErrorIs(t, Payload{Scope: ScopeSingle, Days: 30, HardwareID: " "}.Validate(), ErrInvalidHardwareID)
	assert.ErrorIs(t, Payload{Scope: ScopeGlobal, Days: 30, HardwareID: "HW1"}.Validate(), ErrInvalidHardwareID)
}

func TestBound(t *testing.T) {
	assert.True(t, Payload{Scope: ScopeSingle, HardwareID: "HW1"}.Bound())
	assert.False(t, Payload{Scope: ScopeSingle, HardwareID: HardwareWildcard}.Bound())
	assert.False(t, Payload{Scope: ScopeGlobal, HardwareID: HardwareWildcard}.Bound())
}
