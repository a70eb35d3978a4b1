package tmdb

import (
	"context"
	"errors"
	"fmt"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/MRuhan17/Movie-Recommender/internal/metrics"
)

const breakerName = "tmdb-api"

// newBreaker opens after a 60% failure rate over at least 10 requests in a
// one minute window, and probes again after two minutes. Not-found answers
// and caller cancellations do not count as failures.
func (c *Client) newBreaker() *gobreaker.CircuitBreaker[any] {
	metrics.CircuitBreakerState.WithLabelValues(breakerName).Set(0)

	return gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     2 * time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 10 {
				return false
			}
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			if ratio >= 0.6 {
				c.log.Warn().Uint32("failures", counts.TotalFailures).Float64("failure_rate", ratio).Msg("opening TMDB circuit")
				return true
			}
			return false
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrNotFound) || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			c.log.Info().Str("from", stateToString(from)).Str("to", stateToString(to)).Msg("TMDB circuit state change")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, stateToString(from), stateToString(to)).Inc()
		},
	})
}

// execute runs fn through the breaker and records the outcome under endpoint.
func (c *Client) execute(endpoint string, fn func() (any, error)) (any, error) {
	result, err := c.cb.Execute(fn)
	switch {
	case err == nil:
		metrics.TMDBRequests.WithLabelValues(endpoint, "success").Inc()
	case errors.Is(err, ErrNotFound):
		metrics.TMDBRequests.WithLabelValues(endpoint, "not_found").Inc()
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.TMDBRequests.WithLabelValues(endpoint, "rejected").Inc()
		c.log.Debug().Err(err).Str("endpoint", endpoint).Msg("TMDB request rejected")
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	default:
		metrics.TMDBRequests.WithLabelValues(endpoint, "failure").Inc()
	}
	return result, err
}

func castResult[T any](result any, err error) (*T, error) {
	if err != nil {
		return nil, err
	}
	typed, ok := result.(*T)
	if !ok {
		return nil, fmt.Errorf("tmdb: unexpected result type %T", result)
	}
	return typed, nil
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}
