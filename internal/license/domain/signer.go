package domain

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
)

// Signer authenticates encoded payloads with a process-wide secret. The
// secret is injected at startup and never appears in a distributed key.
type Signer struct {
	secret []byte
}

func NewSigner(secret string) *Signer {
	return &Signer{secret: []byte(secret)}
}

// Sign computes an HMAC-SHA256 over the UTF-8 bytes of text, rendered as
// lowercase hex.
func (s *Signer) Sign(text string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(text))
	return hex.EncodeToString(mac.Sum(nil))
}

// Matches recomputes the signature for text and compares it against the
// supplied hex digest in constant time.
func (s *Signer) Matches(text, signature string) bool {
	expected := s.Sign(text)
	return subtle.ConstantTimeCompare([]byte(expected), []byte(signature)) == 1
}
