package engine

import (
	"context"

	"golang.org/x/time/rate"

	"babelfeed/internal/config"
)

// RateLimited throttles calls to the wrapped engine. A request that cannot
// acquire a token before its deadline fails with KindRateLimited instead of
// hitting the backend.
type RateLimited struct {
	next    Engine
	limiter *rate.Limiter
}

func NewRateLimited(next Engine, cfg config.RateLimitConfig) *RateLimited {
	return &RateLimited{
		next:    next,
		limiter: rate.NewLimiter(rate.Limit(cfg.RPS), cfg.Burst),
	}
}

func (r *RateLimited) Name() string {
	return r.next.Name()
}

func (r *RateLimited) Translate(ctx context.Context, text, sourceHint, targetLang string) (string, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return "", NewError(r.next.Name(), KindRateLimited, err)
	}
	return r.next.Translate(ctx, text, sourceHint, targetLang)
}
