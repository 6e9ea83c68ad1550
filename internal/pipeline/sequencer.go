package pipeline

import (
	"context"
	"sync"
	"time"

	"babelfeed/internal/logger"
	"babelfeed/pkg/metrics"
)

// Sequencer reassembles out-of-order translation results into intake order.
// Every message admitted at intake is registered with Expect; exactly one
// result per registered sequence number is expected via Submit. When the
// head-of-line result does not arrive within the stall deadline the sequencer
// force-resolves it as failed so later results are never held back forever.
type Sequencer struct {
	mu       sync.Mutex
	cond     *sync.Cond
	pending  map[uint64]TranslationResult
	expected map[uint64]InboundMessage

	next         uint64
	lastAssigned uint64
	haveAssigned bool
	intakeClosed bool
	stopped      bool

	capacity      int
	stallDeadline time.Duration

	kick   chan struct{}
	out    chan TranslationResult
	logger logger.Logger
}

// NewSequencer starts expecting sequence numbers at start. capacity bounds
// the reassembly buffer; Submit blocks when the buffer is full unless the
// submitted result is the head-of-line one.
func NewSequencer(start uint64, capacity int, stallDeadline time.Duration, log logger.Logger) *Sequencer {
	if capacity < 1 {
		capacity = 1
	}
	s := &Sequencer{
		pending:       make(map[uint64]TranslationResult),
		expected:      make(map[uint64]InboundMessage),
		next:          start,
		capacity:      capacity,
		stallDeadline: stallDeadline,
		kick:          make(chan struct{}, 1),
		out:           make(chan TranslationResult),
		logger:        log,
	}
	s.cond = sync.NewCond(&s.mu)
	return s
}

// Expect registers a message admitted at intake. Sequence numbers must be
// registered in increasing order by a single intake goroutine.
func (s *Sequencer) Expect(msg InboundMessage) {
	s.mu.Lock()
	s.lastAssigned = msg.Seq
	s.haveAssigned = true
	s.expected[msg.Seq] = msg
	s.mu.Unlock()
	s.notify()
}

// CloseIntake marks that no further sequence numbers will be registered.
// Results for already-registered numbers may still be submitted.
func (s *Sequencer) CloseIntake() {
	s.mu.Lock()
	s.intakeClosed = true
	s.mu.Unlock()
	s.notify()
}

// Submit hands a completed result to the sequencer. It blocks while the
// reassembly buffer is at capacity, except for the head-of-line result which
// is always admitted. Results for already force-resolved sequence numbers
// are dropped.
func (s *Sequencer) Submit(res TranslationResult) {
	s.mu.Lock()
	for !s.stopped && len(s.pending) >= s.capacity && res.Seq != s.next {
		s.cond.Wait()
	}
	if s.stopped {
		s.mu.Unlock()
		return
	}
	if res.Seq < s.next {
		s.mu.Unlock()
		s.logger.Debugw("Dropping late result for force-resolved message",
			"seq", res.Seq,
		)
		return
	}
	s.pending[res.Seq] = res
	metrics.ReassemblyBufferSize.Set(float64(len(s.pending)))
	s.mu.Unlock()
	s.notify()
}

// Results delivers reassembled results in intake order. The channel is
// closed when Run returns.
func (s *Sequencer) Results() <-chan TranslationResult {
	return s.out
}

// Run drains the reassembly buffer in order until intake is closed and all
// registered sequence numbers are resolved. It always closes the results
// channel and unblocks pending Submit calls on exit.
func (s *Sequencer) Run(ctx context.Context) error {
	defer func() {
		s.mu.Lock()
		s.stopped = true
		s.mu.Unlock()
		s.cond.Broadcast()
		close(s.out)
	}()

	var headSince time.Time
	for {
		s.mu.Lock()
		if res, ok := s.pending[s.next]; ok {
			delete(s.pending, s.next)
			delete(s.expected, s.next)
			s.next++
			metrics.ReassemblyBufferSize.Set(float64(len(s.pending)))
			s.mu.Unlock()
			s.cond.Broadcast()
			headSince = time.Time{}

			select {
			case s.out <- res:
			case <-ctx.Done():
				return ctx.Err()
			}
			continue
		}

		outstanding := s.haveAssigned && s.next <= s.lastAssigned
		done := s.intakeClosed && !outstanding
		s.mu.Unlock()

		if done {
			return nil
		}

		if !outstanding {
			select {
			case <-s.kick:
			case <-ctx.Done():
				return ctx.Err()
			}
			continue
		}

		if headSince.IsZero() {
			headSince = time.Now()
		}
		wait := s.stallDeadline - time.Since(headSince)
		if wait <= 0 {
			forced, ok := s.forceResolveHead()
			if !ok {
				continue
			}
			headSince = time.Time{}
			select {
			case s.out <- forced:
			case <-ctx.Done():
				return ctx.Err()
			}
			continue
		}

		timer := time.NewTimer(wait)
		select {
		case <-s.kick:
			timer.Stop()
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		}
	}
}

// forceResolveHead fabricates a failed result for the overdue head-of-line
// sequence number and advances past it.
func (s *Sequencer) forceResolveHead() (TranslationResult, bool) {
	s.mu.Lock()
	if _, ok := s.pending[s.next]; ok || s.next > s.lastAssigned {
		s.mu.Unlock()
		return TranslationResult{}, false
	}
	msg := s.expected[s.next]
	delete(s.expected, s.next)
	seq := s.next
	s.next++
	s.mu.Unlock()
	s.cond.Broadcast()

	metrics.SequencerStallsTotal.Inc()
	s.logger.Warnw("Force-resolving overdue head-of-line message",
		"seq", seq,
		"sender", msg.Sender,
	)

	forced := TranslationResult{
		Seq:        seq,
		ID:         msg.ID,
		Sender:     msg.Sender,
		SourceText: msg.Text,
		Succeeded:  false,
		ErrorKind:  ErrorKindStalled,
	}
	return forced, true
}

func (s *Sequencer) notify() {
	select {
	case s.kick <- struct{}{}:
	default:
	}
}
