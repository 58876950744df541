package ai

import (
	"errors"
	"time"

	"github.com/isdelr/circuitgen-be/internal/metrics"
	"github.com/rs/zerolog/log"
	"github.com/sashabaranov/go-openai"
	"github.com/sony/gobreaker/v2"
)

// BreakerSettings tunes the upstream circuit breaker.
type BreakerSettings struct {
	// ConsecutiveFailures opens the breaker once reached.
	ConsecutiveFailures uint32
	// Cooldown is how long the breaker stays open before probing again.
	Cooldown time.Duration
}

// DefaultBreakerSettings is used by New.
var DefaultBreakerSettings = BreakerSettings{
	ConsecutiveFailures: 5,
	Cooldown:            30 * time.Second,
}

func newBreaker(s BreakerSettings) *gobreaker.CircuitBreaker[openai.ChatCompletionResponse] {
	metrics.BreakerState.Set(0)
	return gobreaker.NewCircuitBreaker[openai.ChatCompletionResponse](gobreaker.Settings{
		Name:        "llm-upstream",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     s.Cooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= s.ConsecutiveFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("Upstream breaker state change")
			metrics.BreakerState.Set(stateValue(to))
		},
	})
}

func stateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}

func isBreakerRejection(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}
