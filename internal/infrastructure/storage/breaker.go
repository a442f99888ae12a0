package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker/v2"
)

var breakerState = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "storage_circuit_breaker_state",
		Help: "Current state of the object storage circuit breaker (0=closed, 1=half-open, 2=open)",
	},
	[]string{"name"},
)

// BreakerSettings mirrors config.BreakerConfig.
type BreakerSettings struct {
	Name         string
	FailureRatio float64
	MinRequests  uint32
	Timeout      time.Duration
	Interval     time.Duration
}

// BreakerStore trips after repeated storage failures so uploads fail fast
// instead of each one waiting on a dead endpoint.
type BreakerStore struct {
	next    ObjectStore
	breaker *gobreaker.CircuitBreaker[string]
}

func NewBreakerStore(next ObjectStore, s BreakerSettings) *BreakerStore {
	settings := gobreaker.Settings{
		Name:        s.Name,
		MaxRequests: 1,
		Interval:    s.Interval,
		Timeout:     s.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < s.MinRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= s.FailureRatio
		},
		// Caller mistakes (cancelled requests) should not open the breaker.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).
				Msg("storage circuit breaker state change")
			breakerState.WithLabelValues(name).Set(stateValue(to))
		},
	}

	breakerState.WithLabelValues(s.Name).Set(0)

	return &BreakerStore{next: next, breaker: gobreaker.NewCircuitBreaker[string](settings)}
}

func (b *BreakerStore) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	url, err := b.breaker.Execute(func() (string, error) {
		return b.next.Put(ctx, key, data, contentType)
	})
	return url, wrapBreakerErr(err)
}

func (b *BreakerStore) Delete(ctx context.Context, url string) error {
	_, err := b.breaker.Execute(func() (string, error) {
		return "", b.next.Delete(ctx, url)
	})
	return wrapBreakerErr(err)
}

// State exposes the breaker state for health reporting.
func (b *BreakerStore) State() gobreaker.State {
	return b.breaker.State()
}

func wrapBreakerErr(err error) error {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return err
}

func stateValue(state gobreaker.State) float64 {
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
