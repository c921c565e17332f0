package domain

import "strings"

// The distributed key is "<encoded payload>.<signature hex>": exactly one
// separator, both parts non-empty.
const keySeparator = "."

// MintKey assembles the distributable key string for a payload.
func (s *Signer) MintKey(p Payload) (string, error) {
	encoded, err := EncodePayload(p)
	if err != nil {
		return "", err
	}
	return encoded + keySeparator + s.Sign(encoded), nil
}

// SplitKey breaks a presented key string into its encoded payload and
// signature, failing with ErrBadFormat on any structural deviation.
func SplitKey(key string) (encoded, signature string, err error) {
	parts := strings.Split(key, keySeparator)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", ErrBadFormat
	}
	return parts[0], parts[1], nil
}
