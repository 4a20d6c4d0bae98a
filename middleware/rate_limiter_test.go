package middleware

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/time/rate"
)

func TestLimitsFromEnvDefaults(t *testing.T) {
	t.Setenv("RATE_LIMIT_RPS", "")
	t.Setenv("RATE_LIMIT_BURST", "")

	rps, burst := limitsFromEnv()
	assert.Equal(t, rate.Limit(5), rps)
	assert.Equal(t, 30, burst)
}

func TestLimitsFromEnvOverrides(t *testing.T) {
	t.Setenv("RATE_LIMIT_RPS", "10")
	t.Setenv("RATE_LIMIT_BURST", "50")

	rps, burst := limitsFromEnv()
	assert.Equal(t, rate.Limit(10), rps)
	assert.Equal(t, 50, burst)
}

func TestLimitsFromEnvIgnoresGarbage(t *testing.T) {
	t.Setenv("RATE_LIMIT_RPS", "-3")
	t.Setenv("RATE_LIMIT_BURST", "lots")

	rps, burst := limitsFromEnv()
	assert.Equal(t, rate.Limit(5), rps)
	assert.Equal(t, 30, burst)
}
