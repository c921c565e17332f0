package masking

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaskSecret(t *testing.T) {
	assert.Equal(t, "", MaskSecret("  "))
	assert.Equal(t, "****d123", MaskSecret("abcd123"))
	assert.Equal(t, "****", MaskSecret("abc"))

	// Signed keys keep the payload half; only the signature is hidden.
	masked := MaskSecret("eyJkYXlzIjozMH0.deadbeefcafe")
	assert.Equal(t, "eyJkYXlzIjozMH0.****cafe", masked)
}
