package sink

import (
	"context"
	"errors"

	"babelfeed/internal/pipeline"
)

// Multi fans out to several sinks. Every sink sees every result; errors are
// collected rather than short-circuiting.
type Multi struct {
	sinks []Sink
}

func NewMulti(sinks ...Sink) *Multi {
	return &Multi{sinks: sinks}
}

func (m *Multi) Name() string {
	return "multi"
}

func (m *Multi) Emit(ctx context.Context, res pipeline.TranslationResult) error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.Emit(ctx, res); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m *Multi) Close() error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
