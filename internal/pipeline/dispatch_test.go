package pipeline

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"babelfeed/internal/cache"
	"babelfeed/internal/engine"
	"babelfeed/internal/logger"
	"babelfeed/pkg/retry"
)

type fakeEngine struct {
	mu        sync.Mutex
	calls     int
	translate func(ctx context.Context, text string) (string, error)
}

func (f *fakeEngine) Name() string {
	return "fake"
}

func (f *fakeEngine) Translate(ctx context.Context, text, sourceHint, targetLang string) (string, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	return f.translate(ctx, text)
}

func (f *fakeEngine) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func fastPolicy(attempts int) retry.Policy {
	return retry.Policy{
		MaxAttempts:     attempts,
		InitialInterval: time.Millisecond,
		MaxInterval:     5 * time.Millisecond,
		Multiplier:      2.0,
	}
}

func newDispatchHarness(t *testing.T, eng engine.Engine, timeout time.Duration, policy retry.Policy) (*Dispatcher, *Sequencer, *cache.Memory) {
	t.Helper()

	store := cache.NewMemory(16)
	seq := NewSequencer(1, 8, time.Minute, logger.NopLogger())
	d := NewDispatcher(eng, store, seq, timeout, policy, logger.NopLogger())

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go seq.Run(ctx)

	return d, seq, store
}

func awaitResult(t *testing.T, seq *Sequencer) TranslationResult {
	t.Helper()
	select {
	case res := <-seq.Results():
		return res
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for result")
		return TranslationResult{}
	}
}

func TestProcessSuccessInsertsCache(t *testing.T) {
	eng := &fakeEngine{
		translate: func(ctx context.Context, text string) (string, error) {
			return "hello", nil
		},
	}
	d, seq, store := newDispatchHarness(t, eng, time.Second, fastPolicy(3))

	msg := testMessage(1)
	seq.Expect(msg)
	d.process(context.Background(), TranslationRequest{Message: msg, TargetLang: "en-US"})

	res := awaitResult(t, seq)
	assert.True(t, res.Succeeded)
	assert.Equal(t, "hello", res.TranslatedText)
	assert.Equal(t, "fake", res.Engine)
	assert.Equal(t, 1, eng.callCount())

	cached, ok := store.Lookup(context.Background(), msg.Text, "en-US")
	require.True(t, ok)
	assert.Equal(t, "hello", cached)
}

func TestProcessRetriesTransientErrors(t *testing.T) {
	attempts := 0
	eng := &fakeEngine{}
	eng.translate = func(ctx context.Context, text string) (string, error) {
		attempts++
		if attempts < 3 {
			return "", engine.NewError("fake", engine.KindUnknown, errors.New("upstream hiccup"))
		}
		return "hello", nil
	}
	d, seq, _ := newDispatchHarness(t, eng, time.Second, fastPolicy(3))

	msg := testMessage(1)
	seq.Expect(msg)
	d.process(context.Background(), TranslationRequest{Message: msg, TargetLang: "en-US"})

	res := awaitResult(t, seq)
	assert.True(t, res.Succeeded)
	assert.Equal(t, 3, eng.callCount())
}

func TestProcessExhaustsRetries(t *testing.T) {
	eng := &fakeEngine{
		translate: func(ctx context.Context, text string) (string, error) {
			return "", engine.NewError("fake", engine.KindRateLimited, errors.New("too many requests"))
		},
	}
	d, seq, store := newDispatchHarness(t, eng, time.Second, fastPolicy(3))

	msg := testMessage(1)
	seq.Expect(msg)
	d.process(context.Background(), TranslationRequest{Message: msg, TargetLang: "en-US"})

	res := awaitResult(t, seq)
	assert.False(t, res.Succeeded)
	assert.Equal(t, string(engine.KindRateLimited), res.ErrorKind)
	assert.Equal(t, msg.Text, res.SourceText)
	assert.Equal(t, 3, eng.callCount())

	_, ok := store.Lookup(context.Background(), msg.Text, "en-US")
	assert.False(t, ok, "failed translations must not be cached")
}

func TestProcessAuthFailureDoesNotRetry(t *testing.T) {
	eng := &fakeEngine{
		translate: func(ctx context.Context, text string) (string, error) {
			return "", engine.NewError("fake", engine.KindAuthFailure, errors.New("bad key"))
		},
	}
	d, seq, _ := newDispatchHarness(t, eng, time.Second, fastPolicy(3))

	msg := testMessage(1)
	seq.Expect(msg)
	d.process(context.Background(), TranslationRequest{Message: msg, TargetLang: "en-US"})

	res := awaitResult(t, seq)
	assert.False(t, res.Succeeded)
	assert.Equal(t, string(engine.KindAuthFailure), res.ErrorKind)
	assert.Equal(t, 1, eng.callCount())
}

func TestProcessTimesOutSlowEngine(t *testing.T) {
	eng := &fakeEngine{
		translate: func(ctx context.Context, text string) (string, error) {
			<-ctx.Done()
			return "", ctx.Err()
		},
	}
	d, seq, _ := newDispatchHarness(t, eng, 50*time.Millisecond, fastPolicy(1))

	msg := testMessage(1)
	seq.Expect(msg)
	d.process(context.Background(), TranslationRequest{Message: msg, TargetLang: "en-US"})

	res := awaitResult(t, seq)
	assert.False(t, res.Succeeded)
	assert.Equal(t, string(engine.KindTimeout), res.ErrorKind)
}
