package engine

import (
	"fmt"

	"babelfeed/internal/config"
	"babelfeed/internal/constants"
)

// New selects the configured engine variant and stacks the enabled
// decorators. Selection happens once at construction time.
func New(cfg *config.Config) (Engine, error) {
	var eng Engine

	switch cfg.Translation.Engine {
	case constants.EngineGoogle:
		eng = NewGoogle(cfg.Engines.Google)
	case constants.EngineOpenAI:
		eng = NewOpenAI(cfg.Engines.OpenAI)
	default:
		return nil, fmt.Errorf("unknown engine: %s", cfg.Translation.Engine)
	}

	if cfg.RateLimit.Enabled {
		eng = NewRateLimited(eng, cfg.RateLimit)
	}
	if cfg.CircuitBreaker.Enabled {
		eng = NewBreaker(eng, cfg.CircuitBreaker)
	}

	return eng, nil
}
