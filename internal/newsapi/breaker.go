package newsapi

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"flash-news/internal/news"

	"github.com/sony/gobreaker"
)

// BreakerConfig holds the circuit breaker settings.
type BreakerConfig struct {
	Name string

	// MaxRequests is the number of requests allowed in half-open state
	MaxRequests uint32

	// Interval is the cyclic period of the closed state to clear counts
	Interval time.Duration

	// Timeout is how long the breaker stays open before probing again
	Timeout time.Duration

	// FailureThreshold is the failure ratio that trips the breaker
	FailureThreshold float64

	// MinRequests is the number of requests needed before the ratio is evaluated
	MinRequests uint32
}

// DefaultBreakerConfig returns settings tuned for the news API.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		Name:             "newsapi",
		MaxRequests:      3,
		Interval:         60 * time.Second,
		Timeout:          30 * time.Second,
		FailureThreshold: 0.6,
		MinRequests:      5,
	}
}

// CircuitBreaker wraps gobreaker.CircuitBreaker.
type CircuitBreaker struct {
	breaker *gobreaker.CircuitBreaker
	name    string
}

// NewCircuitBreaker creates a breaker from cfg.
func NewCircuitBreaker(cfg BreakerConfig) *CircuitBreaker {
	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= cfg.FailureThreshold
		},
		IsSuccessful: countsAsSuccess,
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			slog.Warn("circuit breaker state changed",
				slog.String("circuit", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()))
		},
	}
	return &CircuitBreaker{
		breaker: gobreaker.NewCircuitBreaker(settings),
		name:    cfg.Name,
	}
}

// Execute runs fn through the breaker. An open breaker returns gobreaker.ErrOpenState.
func (cb *CircuitBreaker) Execute(fn func() (interface{}, error)) (interface{}, error) {
	return cb.breaker.Execute(fn)
}

// State returns the current breaker state.
func (cb *CircuitBreaker) State() gobreaker.State {
	return cb.breaker.State()
}

// Name returns the breaker name.
func (cb *CircuitBreaker) Name() string {
	return cb.name
}

// countsAsSuccess keeps client errors such as a bad API key or a rejected
// parameter from tripping the breaker. Only transport failures, 429 and 5xx count.
func countsAsSuccess(err error) bool {
	if err == nil {
		return true
	}
	var ue *news.UpstreamError
	if !errors.As(err, &ue) || ue.StatusCode == 0 {
		return false
	}
	if ue.StatusCode == http.StatusTooManyRequests {
		return false
	}
	return ue.StatusCode < 500
}
