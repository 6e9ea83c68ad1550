package feed

import (
	"context"
	"testing"
	"time"

	twitch "github.com/gempir/go-twitch-irc/v4"
	"github.com/stretchr/testify/require"

	"babelfeed/internal/config"
	"babelfeed/internal/logger"
)

func TestTwitchConnectErrorPropagates(t *testing.T) {
	tw := NewTwitch(config.TwitchFeedConfig{Channel: "somechannel"}, logger.NopLogger())

	client := twitch.NewAnonymousClient()
	client.TLS = false
	// Nothing listens here; Connect must fail fast.
	client.IrcAddress = "127.0.0.1:1"

	out := make(chan Event, 1)
	errCh := make(chan error, 1)
	go func() {
		errCh <- tw.consume(context.Background(), client, out)
	}()

	select {
	case err := <-errCh:
		require.Error(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("connect error never surfaced")
	}
}

func TestTwitchStopsOnContextCancel(t *testing.T) {
	tw := NewTwitch(config.TwitchFeedConfig{Channel: "somechannel"}, logger.NopLogger())

	client := twitch.NewAnonymousClient()
	client.TLS = false
	client.IrcAddress = "127.0.0.1:1"

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out := make(chan Event, 1)
	err := tw.consume(ctx, client, out)
	require.ErrorIs(t, err, context.Canceled)
}
