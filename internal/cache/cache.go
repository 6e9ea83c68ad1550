// Package cache stores completed translations keyed by (normalized source
// text, target language). A hit never triggers an engine call; failures are
// never observable and degrade to a miss.
package cache

import (
	"context"
	"strings"
)

type Cache interface {
	// Lookup returns the cached translation and whether it was present.
	Lookup(ctx context.Context, text, targetLang string) (string, bool)
	// Insert is idempotent; repeated inserts overwrite and refresh recency.
	Insert(ctx context.Context, text, targetLang, translated string)
}

// NormalizeKey collapses insignificant differences in source text so that
// "hello " and "hello" share one entry.
func NormalizeKey(text, targetLang string) string {
	return strings.TrimSpace(text) + "|" + targetLang
}
