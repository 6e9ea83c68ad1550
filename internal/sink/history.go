package sink

import (
	"context"

	"babelfeed/internal/history"
	"babelfeed/internal/logger"
	"babelfeed/internal/pipeline"
)

// History archives every emitted result. Archive failures are logged and
// swallowed so the display surface is never held up by the database.
type History struct {
	store  *history.Store
	logger logger.Logger
}

func NewHistory(store *history.Store, log logger.Logger) *History {
	return &History{
		store:  store,
		logger: log,
	}
}

func (h *History) Name() string {
	return "history"
}

func (h *History) Emit(ctx context.Context, res pipeline.TranslationResult) error {
	if err := h.store.Record(ctx, res); err != nil {
		h.logger.Warnw("Failed to archive result",
			"seq", res.Seq,
			"error", err,
		)
	}
	return nil
}

func (h *History) Close() error {
	return h.store.Close()
}
