package pipeline

import (
	"context"
	"time"

	"babelfeed/internal/cache"
	"babelfeed/internal/engine"
	"babelfeed/internal/logger"
	"babelfeed/pkg/metrics"
	"babelfeed/pkg/retry"
)

// Dispatcher runs the worker pool that carries translation requests to the
// engine. Every request it takes off the queue produces exactly one result
// on the sequencer.
type Dispatcher struct {
	engine    engine.Engine
	cache     cache.Cache
	sequencer *Sequencer
	timeout   time.Duration
	policy    retry.Policy
	logger    logger.Logger
}

func NewDispatcher(eng engine.Engine, store cache.Cache, seq *Sequencer, timeout time.Duration, policy retry.Policy, log logger.Logger) *Dispatcher {
	return &Dispatcher{
		engine:    eng,
		cache:     store,
		sequencer: seq,
		timeout:   timeout,
		policy:    policy,
		logger:    log,
	}
}

// worker pulls requests until the queue closes, the drain signal fires, or
// the work context is cancelled. In-flight requests observe ctx through the
// engine call and report failure instead of disappearing.
func (d *Dispatcher) worker(ctx context.Context, queue <-chan TranslationRequest, drain <-chan struct{}) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-drain:
			return nil
		case req, ok := <-queue:
			if !ok {
				return nil
			}
			metrics.PendingQueueDepth.Dec()
			d.process(ctx, req)
		}
	}
}

func (d *Dispatcher) process(ctx context.Context, req TranslationRequest) {
	metrics.InFlightRequests.Inc()
	defer metrics.InFlightRequests.Dec()

	start := time.Now()
	var translated string

	err := retry.RetryWithCallback(ctx, d.policy, func() error {
		attemptCtx, cancel := context.WithTimeout(ctx, d.timeout)
		defer cancel()

		out, terr := d.engine.Translate(attemptCtx, req.Message.Text, "", req.TargetLang)
		if terr != nil {
			if attemptCtx.Err() == context.DeadlineExceeded && engine.KindOf(terr) == engine.KindUnknown {
				terr = engine.NewError(d.engine.Name(), engine.KindTimeout, terr)
			}
			return terr
		}
		translated = out
		return nil
	}, func(attempt int, retryErr error, nextDelay time.Duration) {
		metrics.RetryAttemptsTotal.WithLabelValues(d.engine.Name()).Inc()
		d.logger.Warnw("Retrying translation",
			"seq", req.Message.Seq,
			"attempt", attempt,
			"delay", nextDelay,
			"error", retryErr,
		)
	})

	elapsed := time.Since(start)

	if err != nil {
		kind := engine.KindOf(err)
		if ctx.Err() != nil && kind == engine.KindUnknown {
			// Abandoned at shutdown before the engine could answer.
			kind = engine.KindTimeout
		}
		metrics.EngineErrorsTotal.WithLabelValues(d.engine.Name(), string(kind)).Inc()
		metrics.TranslationDuration.WithLabelValues(d.engine.Name(), "failure").Observe(float64(elapsed.Milliseconds()))
		d.logger.Errorw("Translation failed",
			"seq", req.Message.Seq,
			"sender", req.Message.Sender,
			"kind", kind,
			"error", err,
		)
		d.sequencer.Submit(failedResult(req.Message, d.engine.Name(), kind))
		return
	}

	metrics.TranslationDuration.WithLabelValues(d.engine.Name(), "success").Observe(float64(elapsed.Milliseconds()))
	d.cache.Insert(ctx, req.Message.Text, req.TargetLang, translated)
	d.sequencer.Submit(translatedResult(req.Message, d.engine.Name(), translated))
}
