// Package feed adapts external live-chat transports into a single stream of
// raw chat events. Sources are lazy, in-order and non-restartable; sequence
// numbers are assigned later, at pipeline intake.
package feed

import (
	"context"
	"time"
)

// Event is one raw chat event as received from the transport.
type Event struct {
	Text       string
	Sender     string
	SenderID   string
	Self       bool
	ReceivedAt time.Time
}

// Source delivers events to out until ctx is canceled or the feed ends.
// Implementations never close out; the pipeline owns the channel.
type Source interface {
	Name() string
	Run(ctx context.Context, out chan<- Event) error
}
