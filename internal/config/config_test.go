package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseDays(t *testing.T) {
	assert.Equal(t, []int{30, 180, 365}, parseDays("30,180,365"))
	assert.Equal(t, []int{30, 365}, parseDays(" 30 , , 365 "))

	// Junk and non-positive entries are dropped, not fatal.
	assert.Equal(t, []int{7}, parseDays("abc,-1,0,7"))
	assert.Empty(t, parseDays(""))
}

func TestLoadDefaults(t *testing.T) {
	// The host environment must not leak into the assertions.
	for _, key := range []string{
		"APP_SERVICE",
		"ENVIRONMENT",
		"HTTP_ADDR",
		"DATABASE_TYPE",
		"LICENSE_ALLOWED_DAYS",
	} {
		t.Setenv(key, "")
	}

	cfg := Load()

	assert.Equal(t, "keygate", cfg.AppName)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "sqlite", cfg.DBType)
	assert.Equal(t, []int{30, 180, 365}, cfg.AllowedDays)
}
