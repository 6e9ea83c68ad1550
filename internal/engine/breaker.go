package engine

import (
	"context"
	"fmt"

	"github.com/sony/gobreaker"

	"babelfeed/internal/config"
	"babelfeed/pkg/circuitbreaker"
)

// Breaker protects the wrapped engine with a circuit breaker: while the
// circuit is open, calls fail fast without reaching the backend.
type Breaker struct {
	next Engine
	cb   *circuitbreaker.Wrapper
}

func NewBreaker(next Engine, cfg config.CircuitBreakerConfig) *Breaker {
	cbCfg := circuitbreaker.DefaultConfig("engine-" + next.Name())
	if cfg.MaxRequests > 0 {
		cbCfg.MaxRequests = cfg.MaxRequests
	}
	if cfg.Interval > 0 {
		cbCfg.Interval = cfg.Interval
	}
	if cfg.Timeout > 0 {
		cbCfg.Timeout = cfg.Timeout
	}
	if cfg.FailureRatio > 0 {
		minRequests := cfg.MinRequests
		if minRequests == 0 {
			minRequests = 3
		}
		cbCfg.ReadyToTrip = func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= minRequests && failureRatio >= cfg.FailureRatio
		}
	}

	return &Breaker{
		next: next,
		cb:   circuitbreaker.NewWrapper(cbCfg),
	}
}

func (b *Breaker) Name() string {
	return b.next.Name()
}

func (b *Breaker) Translate(ctx context.Context, text, sourceHint, targetLang string) (string, error) {
	result, err := b.cb.ExecuteWithContext(ctx, func() (interface{}, error) {
		return b.next.Translate(ctx, text, sourceHint, targetLang)
	})

	b.cb.RecordRequest(err == nil)

	if err != nil {
		if b.cb.IsOpen() {
			return "", NewError(b.next.Name(), KindUnknown,
				fmt.Errorf("circuit breaker is open: %w", err))
		}
		return "", err
	}

	translated, ok := result.(string)
	if !ok {
		return "", NewError(b.next.Name(), KindUnknown, fmt.Errorf("unexpected result type %T", result))
	}
	return translated, nil
}
