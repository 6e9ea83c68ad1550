// Package pipeline implements the translation pipeline core: intake,
// bounded-concurrency dispatch, and in-order reassembly of completed
// translations.
package pipeline

import (
	"time"

	"babelfeed/internal/engine"
)

// InboundMessage is a feed event stamped with its intake sequence number.
// It is immutable once created and owned by the pipeline until emitted.
type InboundMessage struct {
	Seq       uint64
	ID        string
	Text      string
	Sender    string
	SenderID  string
	ArrivedAt time.Time
}

// TranslationRequest is the unit of work handed to the dispatch pool.
type TranslationRequest struct {
	Message    InboundMessage
	TargetLang string
}

// TranslationResult is produced exactly once per inbound message, whether by
// cache hit, engine call, pass-through, or failure.
type TranslationResult struct {
	Seq            uint64
	ID             string
	Sender         string
	SourceText     string
	TranslatedText string
	Engine         string
	Succeeded      bool
	PassThrough    bool
	ErrorKind      string
}

// ErrorKindStalled marks a result force-resolved by the sequencer after the
// head-of-line deadline; engine error kinds are reported verbatim.
const ErrorKindStalled = "stalled"

// EngineCache is the Engine value reported on cache hits.
const EngineCache = "cache"

func passThroughResult(msg InboundMessage) TranslationResult {
	return TranslationResult{
		Seq:            msg.Seq,
		ID:             msg.ID,
		Sender:         msg.Sender,
		SourceText:     msg.Text,
		TranslatedText: msg.Text,
		Succeeded:      true,
		PassThrough:    true,
	}
}

func cachedResult(msg InboundMessage, translated string) TranslationResult {
	return TranslationResult{
		Seq:            msg.Seq,
		ID:             msg.ID,
		Sender:         msg.Sender,
		SourceText:     msg.Text,
		TranslatedText: translated,
		Engine:         EngineCache,
		Succeeded:      true,
	}
}

func translatedResult(msg InboundMessage, engineName, translated string) TranslationResult {
	return TranslationResult{
		Seq:            msg.Seq,
		ID:             msg.ID,
		Sender:         msg.Sender,
		SourceText:     msg.Text,
		TranslatedText: translated,
		Engine:         engineName,
		Succeeded:      true,
	}
}

func failedResult(msg InboundMessage, engineName string, kind engine.Kind) TranslationResult {
	return TranslationResult{
		Seq:        msg.Seq,
		ID:         msg.ID,
		Sender:     msg.Sender,
		SourceText: msg.Text,
		Engine:     engineName,
		Succeeded:  false,
		ErrorKind:  string(kind),
	}
}

// Status buckets results for metrics and logs.
func (r TranslationResult) Status() string {
	switch {
	case r.PassThrough:
		return "pass_through"
	case r.Engine == EngineCache:
		return "cache_hit"
	case r.Succeeded:
		return "translated"
	default:
		return "failed"
	}
}
