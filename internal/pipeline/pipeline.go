package pipeline

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"babelfeed/internal/cache"
	"babelfeed/internal/constants"
	"babelfeed/internal/engine"
	"babelfeed/internal/feed"
	"babelfeed/internal/filter"
	"babelfeed/internal/logger"
	"babelfeed/pkg/metrics"
	"babelfeed/pkg/retry"
)

// State tracks the pipeline lifecycle. Transitions are one-way:
// Idle -> Running -> Draining -> Stopped.
type State int32

const (
	StateIdle State = iota
	StateRunning
	StateDraining
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateDraining:
		return "draining"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Emitter receives reassembled results in intake order.
type Emitter interface {
	Emit(ctx context.Context, res TranslationResult) error
}

// Config carries the tunables the controller needs. Zero values fall back
// to safe defaults in New.
type Config struct {
	Workers    int
	TargetLang string
	Timeout    time.Duration
	Retry      retry.Policy
	Grace      time.Duration
	QueueDepth int
}

const eventBuffer = 64

// Pipeline owns the full message path: feed intake, classification, cache
// lookup, dispatch, reassembly, and emission. Emission order always matches
// intake order.
type Pipeline struct {
	cfg        Config
	source     feed.Source
	filter     *filter.Filter
	cache      cache.Cache
	dispatcher *Dispatcher
	sequencer  *Sequencer
	emitter    Emitter
	state      atomic.Int32
	logger     logger.Logger
}

func New(cfg Config, source feed.Source, flt *filter.Filter, store cache.Cache, eng engine.Engine, emitter Emitter, log logger.Logger) *Pipeline {
	if cfg.Workers < 1 {
		cfg.Workers = constants.DefaultMaxWorkers
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = time.Duration(constants.DefaultRequestTimeoutSeconds) * time.Second
	}
	if cfg.Retry.MaxAttempts < 1 {
		cfg.Retry = retry.DefaultPolicy()
	}
	if cfg.QueueDepth <= 0 {
		cfg.QueueDepth = cfg.Workers * 4
	}
	if cfg.Grace <= 0 {
		cfg.Grace = constants.ShutdownTimeout
	}

	// A request that exhausts every retry under the per-attempt timeout,
	// backoff delays included, is still legitimate; only after that window
	// may the head be declared stalled.
	stall := cfg.Timeout*time.Duration(cfg.Retry.MaxAttempts) + cfg.Retry.TotalBackoff() + constants.GraceSlack

	p := &Pipeline{
		cfg:       cfg,
		source:    source,
		filter:    flt,
		cache:     store,
		emitter:   emitter,
		sequencer: NewSequencer(1, cfg.Workers+cfg.QueueDepth, stall, log),
		logger:    log,
	}
	p.dispatcher = NewDispatcher(eng, store, p.sequencer, cfg.Timeout, cfg.Retry, log)
	return p
}

func (p *Pipeline) State() State {
	return State(p.state.Load())
}

func (p *Pipeline) setState(s State) {
	p.state.Store(int32(s))
	p.logger.Infow("Pipeline state changed",
		"state", s.String(),
	)
}

// Run drives the pipeline until the feed ends or ctx is cancelled. On
// cancellation it drains: queued requests are failed immediately, in-flight
// requests get the grace period to finish, and whatever is buffered is still
// emitted in order before Run returns.
func (p *Pipeline) Run(ctx context.Context) error {
	if !p.state.CompareAndSwap(int32(StateIdle), int32(StateRunning)) {
		return errors.New("pipeline already started")
	}
	p.logger.Infow("Pipeline running",
		"feed", p.source.Name(),
		"workers", p.cfg.Workers,
		"target_lang", p.cfg.TargetLang,
	)
	defer p.setState(StateStopped)

	// Workers outlive the shutdown signal by the grace period.
	workCtx, stopWork := context.WithCancel(context.Background())
	defer stopWork()

	go func() {
		select {
		case <-ctx.Done():
			p.setState(StateDraining)
			timer := time.NewTimer(p.cfg.Grace)
			defer timer.Stop()
			select {
			case <-timer.C:
				stopWork()
			case <-workCtx.Done():
			}
		case <-workCtx.Done():
		}
	}()

	seqCtx, stopSequencer := context.WithCancel(context.Background())
	defer stopSequencer()

	seqGroup := new(errgroup.Group)
	seqGroup.Go(func() error {
		return p.sequencer.Run(seqCtx)
	})
	seqGroup.Go(func() error {
		return p.runEmit(seqCtx)
	})

	events := make(chan feed.Event, eventBuffer)
	queue := make(chan TranslationRequest, p.cfg.QueueDepth)
	drain := make(chan struct{})

	workGroup := new(errgroup.Group)
	workGroup.Go(func() error {
		defer close(events)
		err := p.source.Run(ctx, events)
		if err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})
	workGroup.Go(func() error {
		return p.runIntake(ctx, events, queue, drain)
	})
	for i := 0; i < p.cfg.Workers; i++ {
		workGroup.Go(func() error {
			return p.dispatcher.worker(workCtx, queue, drain)
		})
	}

	err := workGroup.Wait()
	stopWork()

	// Every registered sequence number is now submitted or force-resolvable;
	// give the sequencer bounded time to flush in order.
	flush := time.AfterFunc(p.cfg.Grace+constants.ShutdownTimeout, stopSequencer)
	seqErr := seqGroup.Wait()
	flush.Stop()

	if err != nil {
		return err
	}
	if seqErr != nil && !errors.Is(seqErr, context.Canceled) {
		return seqErr
	}
	return nil
}

// runIntake assigns sequence numbers in arrival order and routes each
// message: pass-through and cache hits resolve immediately, the rest are
// queued for the worker pool.
func (p *Pipeline) runIntake(ctx context.Context, events <-chan feed.Event, queue chan TranslationRequest, drain chan struct{}) error {
	defer p.sequencer.CloseIntake()

	var seq uint64
	for {
		select {
		case <-ctx.Done():
			close(drain)
			close(queue)
			p.abandonQueued(queue)
			return nil
		case ev, ok := <-events:
			if !ok {
				close(queue)
				return nil
			}
			seq++
			msg := InboundMessage{
				Seq:       seq,
				ID:        uuid.NewString(),
				Text:      ev.Text,
				Sender:    ev.Sender,
				SenderID:  ev.SenderID,
				ArrivedAt: ev.ReceivedAt,
			}
			p.sequencer.Expect(msg)
			p.admit(ctx, msg, ev.Self, queue)
		}
	}
}

func (p *Pipeline) admit(ctx context.Context, msg InboundMessage, self bool, queue chan<- TranslationRequest) {
	if self || p.filter.Classify(msg.Text, msg.Sender, p.source.Name()) == filter.PassThrough {
		p.logger.Debugw("Passing message through",
			"seq", msg.Seq,
			"sender", msg.Sender,
		)
		p.sequencer.Submit(passThroughResult(msg))
		return
	}

	if cached, ok := p.cache.Lookup(ctx, msg.Text, p.cfg.TargetLang); ok {
		p.sequencer.Submit(cachedResult(msg, cached))
		return
	}

	req := TranslationRequest{Message: msg, TargetLang: p.cfg.TargetLang}
	select {
	case queue <- req:
		metrics.PendingQueueDepth.Inc()
	case <-ctx.Done():
		p.sequencer.Submit(failedResult(msg, "", engine.KindTimeout))
	}
}

// abandonQueued fails every request still queued when draining starts. The
// queue must already be closed.
func (p *Pipeline) abandonQueued(queue <-chan TranslationRequest) {
	for req := range queue {
		metrics.PendingQueueDepth.Dec()
		p.logger.Warnw("Abandoning queued message on shutdown",
			"seq", req.Message.Seq,
		)
		p.sequencer.Submit(failedResult(req.Message, "", engine.KindTimeout))
	}
}

func (p *Pipeline) runEmit(ctx context.Context) error {
	for res := range p.sequencer.Results() {
		metrics.PipelineMessagesTotal.WithLabelValues(res.Status()).Inc()
		if err := p.emitter.Emit(ctx, res); err != nil {
			p.logger.Errorw("Failed to emit result",
				"seq", res.Seq,
				"error", err,
			)
		}
	}
	return nil
}
