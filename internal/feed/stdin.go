package feed

import (
	"bufio"
	"context"
	"io"
	"os"
	"time"

	"babelfeed/internal/constants"
	"babelfeed/pkg/metrics"
)

// Stdin reads one message per line. Useful for local runs and piping
// transcripts through the pipeline.
type Stdin struct {
	reader io.Reader
}

func NewStdin() *Stdin {
	return &Stdin{reader: os.Stdin}
}

func NewReaderSource(r io.Reader) *Stdin {
	return &Stdin{reader: r}
}

func (s *Stdin) Name() string {
	return constants.FeedTypeStdin
}

func (s *Stdin) Run(ctx context.Context, out chan<- Event) error {
	scanner := bufio.NewScanner(s.reader)
	for scanner.Scan() {
		event := Event{
			Text:       scanner.Text(),
			Sender:     "stdin",
			ReceivedAt: time.Now(),
		}

		select {
		case out <- event:
			metrics.FeedMessagesTotal.WithLabelValues(s.Name()).Inc()
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return scanner.Err()
}
