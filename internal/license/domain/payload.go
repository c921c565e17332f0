package domain

import (
	"encoding/base64"
	"encoding/json"
	"strings"
)

// Scope controls whether a key is bound to one hardware identity or unrestricted.
type Scope string

const (
	ScopeSingle Scope = "single"
	ScopeGlobal Scope = "global"
)

// HardwareWildcard marks a payload as unbound to any hardware identity.
const HardwareWildcard = "*"

// Payload holds the license attributes embedded in a key. It is immutable
// once minted; the JSON field order below is the canonical wire order.
type Payload struct {
	Scope      Scope  `json:"type"`
	Days       int    `json:"days"`
	HardwareID string `json:"hwid"`
	IssuedAt   int64  `json:"issued"`
}

// Validate checks the structural invariants shared by mint and decode.
func (p Payload) Validate() error {
	switch p.Scope {
	case ScopeSingle, ScopeGlobal:
	default:
		return ErrInvalidScope
	}
	if p.Days <= 0 {
		return ErrInvalidDays
	}
	if strings.TrimSpace(p.HardwareID) == "" {
		return ErrInvalidHardwareID
	}
	if p.Scope == ScopeGlobal && p.HardwareID != HardwareWildcard {
		return ErrInvalidHardwareID
	}
	return nil
}

// Bound reports whether the payload names a concrete hardware identity.
func (p Payload) Bound() bool {
	return p.Scope == ScopeSingle && p.HardwareID != HardwareWildcard
}

// EncodePayload serializes the payload and encodes it with the URL-safe
// base64 alphabet, padding stripped. Identical payloads always encode to
// identical text.
func EncodePayload(p Payload) (string, error) {
	if err := p.Validate(); err != nil {
		return "", err
	}
	raw, err := json.Marshal(p)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}

// DecodePayload reverses EncodePayload. Padded input is accepted; anything
// that does not decode to a structurally valid payload fails with
// ErrMalformedPayload.
func DecodePayload(text string) (*Payload, error) {
	raw, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(text, "="))
	if err != nil {
		return nil, ErrMalformedPayload
	}

	var p Payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, ErrMalformedPayload
	}
	if err := p.Validate(); err != nil {
		return nil, ErrMalformedPayload
	}
	return &p, nil
}
