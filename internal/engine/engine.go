// Package engine provides a uniform capability over heterogeneous
// translation backends. New backends plug in behind the Engine interface
// without touching the dispatch pool.
package engine

import (
	"context"
)

// Engine translates text into a target language. sourceHint may be empty,
// in which case the backend detects the source language itself.
type Engine interface {
	Name() string
	Translate(ctx context.Context, text, sourceHint, targetLang string) (string, error)
}
