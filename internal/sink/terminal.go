package sink

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"babelfeed/internal/constants"
	"babelfeed/internal/i18n"
	"babelfeed/internal/pipeline"
	"babelfeed/pkg/metrics"
)

// Terminal renders results as chat lines on a writer, stdout by default.
// Failed results fall back to the original text with a localized annotation.
type Terminal struct {
	mu     sync.Mutex
	out    io.Writer
	i18n   *i18n.Translator
	locale string
}

func NewTerminal(translator *i18n.Translator, locale string) *Terminal {
	return &Terminal{
		out:    os.Stdout,
		i18n:   translator,
		locale: locale,
	}
}

// NewTerminalWriter is NewTerminal with an explicit writer, for tests.
func NewTerminalWriter(w io.Writer, translator *i18n.Translator, locale string) *Terminal {
	t := NewTerminal(translator, locale)
	t.out = w
	return t
}

func (t *Terminal) Name() string {
	return constants.SinkTypeTerminal
}

func (t *Terminal) Emit(_ context.Context, res pipeline.TranslationResult) error {
	sender := res.Sender
	if sender == "" {
		sender = t.i18n.T(t.locale, "message.unknown_user", nil)
	}

	var line string
	switch {
	case res.Succeeded && res.TranslatedText != res.SourceText:
		line = fmt.Sprintf("%s: %s ⇢ %s", sender, res.SourceText, res.TranslatedText)
	case res.Succeeded:
		// Pass-through and identity translations render once.
		line = fmt.Sprintf("%s: %s", sender, res.TranslatedText)
	default:
		annotation := t.i18n.T(t.locale, "message.translation_failed", nil)
		line = fmt.Sprintf("%s: %s (%s)", sender, res.SourceText, annotation)
	}

	t.mu.Lock()
	_, err := fmt.Fprintln(t.out, line)
	t.mu.Unlock()

	status := "success"
	if err != nil {
		status = "failure"
	}
	metrics.SinkEmitsTotal.WithLabelValues(t.Name(), status).Inc()
	return err
}

func (t *Terminal) Close() error {
	return nil
}
