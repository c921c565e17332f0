package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignIsDeterministicPerSecret(t *testing.T) {
	signer := NewSigner("secret-a")
	other := NewSigner("secret-b")

	sig := signer.Sign("payload")
	assert.Len(t, sig, 64)
	assert.Equal(t, strings.ToLower(sig), sig)
	assert.Equal(t, sig, signer.Sign("payload"))
	assert.NotEqual(t, sig, other.Sign("payload"))
}

func TestMatches(t *testing.T) {
	signer := NewSigner("secret")
	sig := signer.Sign("payload")

	assert.True(t, signer.Matches("payload", sig))
	assert.False(t, signer.Matches("payload", sig[:len(sig)-1]+"0"))
	assert.False(t, signer.Matches("tampered", sig))
	assert.False(t, signer.Matches("payload", ""))
}

func TestMintKeyAndSplitKey(t *testing.T) {
	signer := NewSigner("secret")
	p := Payload{Scope: ScopeSingle, Days: 30, HardwareID: "HW1", IssuedAt: 1700000000000}

	key, err := signer.MintKey(p)
	require.NoError(t, err)

	encoded, signature, err := SplitKey(key)
	require.NoError(t, err)
	assert.True(t, signer.Matches(encoded, signature))

	decoded, err := DecodePayload(encoded)
	require.NoError(t, err)
	assert.Equal(t, p, *decoded)
}

func TestMintKeyRejectsInvalidPayload(t *testing.T) {
	signer := NewSigner("secret")

	_, err := signer.MintKey(Payload{Scope: ScopeSingle, Days: 0, HardwareID: "HW1"})
	assert.ErrorIs(t, err, ErrInvalidDays)
}

func TestSplitKeyRejectsBadShapes(t *testing.T) {
	cases := []string{
		"",
		"nodot",
		".sig",
		"payload.",
		"payload.sig.extra",
		"..",
	}

	for _, key := range cases {
		_, _, err := SplitKey(key)
		assert.ErrorIs(t, err, ErrBadFormat, "key %q", key)
	}
}
