package services

import (
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"

	"github.com/kalusugan-health/condition-screening/internal/infrastructure/observability"
	"github.com/kalusugan-health/condition-screening/pkg/config"
)

// RemoteGate guards every call to the WHO ICD-11 API. A call is allowed only
// when credentials are configured and the failure budget has not tripped the
// breaker. Once consecutive failures reach the configured maximum the gate
// enters a cooldown during which every request is denied without any network
// activity; the first success after cooldown resets the budget.
type RemoteGate struct {
	breaker        *gobreaker.TwoStepCircuitBreaker
	hasCredentials bool
	logger         zerolog.Logger
}

// NewRemoteGate builds a gate from the ICD-11 configuration.
func NewRemoteGate(cfg *config.ICD11Config) *RemoteGate {
	logger := observability.GetLogger().With().Str("component", "remote_gate").Logger()
	maxFailures := cfg.MaxFailures
	if maxFailures <= 0 {
		maxFailures = 10
	}

	settings := gobreaker.Settings{
		Name:        "icd11",
		MaxRequests: 1,
		Timeout:     cfg.Cooldown(),
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= uint32(maxFailures)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn().
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("Remote gate state changed")
		},
	}

	return &RemoteGate{
		breaker:        gobreaker.NewTwoStepCircuitBreaker(settings),
		hasCredentials: cfg.HasCredentials(),
		logger:         logger,
	}
}

// Allow reports whether a remote call may proceed. When it returns true the
// caller must invoke done with the call's outcome exactly once; when it
// returns false no call may be made and there is nothing to report.
func (g *RemoteGate) Allow() (done func(success bool), ok bool) {
	if !g.hasCredentials {
		return nil, false
	}

	done, err := g.breaker.Allow()
	if err != nil {
		return nil, false
	}
	return done, true
}

// Available reports whether the gate would currently admit a call.
func (g *RemoteGate) Available() bool {
	return g.hasCredentials && g.breaker.State() != gobreaker.StateOpen
}

// CooldownActive reports whether the failure budget is exhausted and the
// gate is waiting out its cooldown.
func (g *RemoteGate) CooldownActive() bool {
	return g.breaker.State() == gobreaker.StateOpen
}

// ConsecutiveFailures returns the current failure streak.
func (g *RemoteGate) ConsecutiveFailures() int {
	return int(g.breaker.Counts().ConsecutiveFailures)
}

// HasCredentials reports whether remote credentials are configured at all.
func (g *RemoteGate) HasCredentials() bool {
	return g.hasCredentials
}
