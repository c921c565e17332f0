package masking

import "strings"

const maskToken = "****"

// MaskSecret redacts key material while keeping a minimal suffix for
// correlation. The encoded payload half of a signed key stays visible;
// the signature is reduced to its last four characters.
func MaskSecret(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return ""
	}

	prefix, remainder := splitPrefix(trimmed)
	if len(remainder) <= 4 {
		return prefix + maskToken
	}

	return prefix + maskToken + remainder[len(remainder)-4:]
}

func splitPrefix(value string) (string, string) {
	lastDot := strings.LastIndex(value, ".")
	if lastDot == -1 || lastDot == len(value)-1 {
		return "", value
	}
	return value[:lastDot+1], value[lastDot+1:]
}
