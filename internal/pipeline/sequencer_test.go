package pipeline

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"babelfeed/internal/logger"
)

func testMessage(seq uint64) InboundMessage {
	return InboundMessage{
		Seq:    seq,
		ID:     fmt.Sprintf("id-%d", seq),
		Text:   fmt.Sprintf("text-%d", seq),
		Sender: "viewer",
	}
}

func okResult(seq uint64) TranslationResult {
	msg := testMessage(seq)
	return translatedResult(msg, "fake", fmt.Sprintf("translated-%d", seq))
}

func collectResults(t *testing.T, s *Sequencer, n int) []TranslationResult {
	t.Helper()

	var results []TranslationResult
	for i := 0; i < n; i++ {
		select {
		case res, ok := <-s.Results():
			require.True(t, ok, "results channel closed early")
			results = append(results, res)
		case <-time.After(5 * time.Second):
			t.Fatalf("timed out waiting for result %d of %d", i+1, n)
		}
	}
	return results
}

func TestSequencerReordersResults(t *testing.T) {
	s := NewSequencer(1, 8, time.Minute, logger.NopLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.Run(ctx)

	for seq := uint64(1); seq <= 3; seq++ {
		s.Expect(testMessage(seq))
	}

	// Completion order 3, 1, 2 must still come out as 1, 2, 3.
	s.Submit(okResult(3))
	s.Submit(okResult(1))
	s.Submit(okResult(2))
	s.CloseIntake()

	results := collectResults(t, s, 3)
	for i, res := range results {
		assert.Equal(t, uint64(i+1), res.Seq)
		assert.Equal(t, fmt.Sprintf("translated-%d", i+1), res.TranslatedText)
	}

	_, open := <-s.Results()
	assert.False(t, open)
}

func TestSequencerInOrderPassthrough(t *testing.T) {
	s := NewSequencer(1, 8, time.Minute, logger.NopLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.Run(ctx)

	for seq := uint64(1); seq <= 5; seq++ {
		s.Expect(testMessage(seq))
		s.Submit(okResult(seq))
	}
	s.CloseIntake()

	results := collectResults(t, s, 5)
	for i, res := range results {
		assert.Equal(t, uint64(i+1), res.Seq)
	}
}

func TestSequencerForceResolvesStalledHead(t *testing.T) {
	s := NewSequencer(1, 8, 100*time.Millisecond, logger.NopLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.Run(ctx)

	s.Expect(testMessage(1))
	s.Expect(testMessage(2))

	// Seq 1 never arrives.
	s.Submit(okResult(2))
	s.CloseIntake()

	results := collectResults(t, s, 2)

	assert.Equal(t, uint64(1), results[0].Seq)
	assert.False(t, results[0].Succeeded)
	assert.Equal(t, ErrorKindStalled, results[0].ErrorKind)
	assert.Equal(t, "text-1", results[0].SourceText)

	assert.Equal(t, uint64(2), results[1].Seq)
	assert.True(t, results[1].Succeeded)
}

func TestSequencerDropsLateResultAfterForceResolve(t *testing.T) {
	s := NewSequencer(1, 8, 50*time.Millisecond, logger.NopLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.Run(ctx)

	s.Expect(testMessage(1))

	res := collectResults(t, s, 1)[0]
	assert.Equal(t, ErrorKindStalled, res.ErrorKind)

	// The real result shows up after the head was already force-resolved.
	s.Submit(okResult(1))
	s.CloseIntake()

	_, open := <-s.Results()
	assert.False(t, open)
}

func TestSequencerClosesWithNothingExpected(t *testing.T) {
	s := NewSequencer(1, 8, time.Minute, logger.NopLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.Run(ctx)

	s.CloseIntake()

	select {
	case _, open := <-s.Results():
		assert.False(t, open)
	case <-time.After(time.Second):
		t.Fatal("results channel did not close")
	}
}

func TestSequencerBackpressureAdmitsHeadOfLine(t *testing.T) {
	s := NewSequencer(1, 1, time.Minute, logger.NopLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.Run(ctx)

	for seq := uint64(1); seq <= 2; seq++ {
		s.Expect(testMessage(seq))
	}

	// Buffer holds seq 2; the head must still get through so the drain can
	// make progress.
	s.Submit(okResult(2))
	s.Submit(okResult(1))
	s.CloseIntake()

	results := collectResults(t, s, 2)
	assert.Equal(t, uint64(1), results[0].Seq)
	assert.Equal(t, uint64(2), results[1].Seq)
}
