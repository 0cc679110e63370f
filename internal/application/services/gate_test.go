package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kalusugan-health/condition-screening/pkg/config"
)

func gateConfig(maxFailures int) *config.ICD11Config {
	return &config.ICD11Config{
		ClientID:        "client",
		ClientSecret:    "secret",
		CooldownMinutes: 30,
		MaxFailures:     maxFailures,
	}
}

func TestGateDeniesWithoutCredentials(t *testing.T) {
	gate := NewRemoteGate(&config.ICD11Config{CooldownMinutes: 30, MaxFailures: 10})

	assert.False(t, gate.HasCredentials())
	assert.False(t, gate.Available())

	done, ok := gate.Allow()
	assert.False(t, ok)
	assert.Nil(t, done)
}

func TestGateAllowsWithCredentials(t *testing.T) {
	gate := NewRemoteGate(gateConfig(10))

	assert.True(t, gate.Available())
	done, ok := gate.Allow()
	require.True(t, ok)
	done(true)

	assert.Zero(t, gate.ConsecutiveFailures())
	assert.False(t, gate.CooldownActive())
}

func TestGateEntersCooldownAfterFailureBudget(t *testing.T) {
	gate := NewRemoteGate(gateConfig(3))

	for i := 0; i < 3; i++ {
		done, ok := gate.Allow()
		require.True(t, ok, "call %d should be admitted", i)
		done(false)
	}

	assert.True(t, gate.CooldownActive())
	assert.False(t, gate.Available())

	done, ok := gate.Allow()
	assert.False(t, ok)
	assert.Nil(t, done)
}

func TestGateSuccessResetsFailureStreak(t *testing.T) {
	gate := NewRemoteGate(gateConfig(3))

	done, ok := gate.Allow()
	require.True(t, ok)
	done(false)

	done, ok = gate.Allow()
	require.True(t, ok)
	done(false)
	assert.Equal(t, 2, gate.ConsecutiveFailures())

	done, ok = gate.Allow()
	require.True(t, ok)
	done(true)
	assert.Zero(t, gate.ConsecutiveFailures())
	assert.False(t, gate.CooldownActive())
}
