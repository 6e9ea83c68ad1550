// Package sink delivers reassembled translation results to their display
// surface. Sinks receive results strictly in intake order.
package sink

import (
	"context"

	"babelfeed/internal/pipeline"
)

type Sink interface {
	Name() string
	// Emit delivers one result. Blocking here back-pressures the pipeline.
	Emit(ctx context.Context, res pipeline.TranslationResult) error
	Close() error
}
