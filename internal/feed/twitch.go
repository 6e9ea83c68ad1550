package feed

import (
	"context"
	"time"

	twitch "github.com/gempir/go-twitch-irc/v4"

	"babelfeed/internal/config"
	"babelfeed/internal/constants"
	"babelfeed/internal/logger"
	"babelfeed/pkg/metrics"
)

// Twitch streams channel chat over Twitch IRC. Anonymous connections are
// allowed when no credentials are configured.
type Twitch struct {
	cfg    config.TwitchFeedConfig
	logger logger.Logger
}

func NewTwitch(cfg config.TwitchFeedConfig, log logger.Logger) *Twitch {
	return &Twitch{
		cfg:    cfg,
		logger: log,
	}
}

func (t *Twitch) Name() string {
	return constants.FeedTypeTwitch
}

func (t *Twitch) Run(ctx context.Context, out chan<- Event) error {
	var client *twitch.Client
	if t.cfg.Username != "" && t.cfg.OAuthToken != "" {
		client = twitch.NewClient(t.cfg.Username, t.cfg.OAuthToken)
	} else {
		client = twitch.NewAnonymousClient()
	}
	return t.consume(ctx, client, out)
}

func (t *Twitch) consume(ctx context.Context, client *twitch.Client, out chan<- Event) error {
	client.OnPrivateMessage(func(msg twitch.PrivateMessage) {
		event := Event{
			Text:       msg.Message,
			Sender:     msg.User.DisplayName,
			SenderID:   msg.User.ID,
			Self:       t.cfg.Username != "" && msg.User.Name == t.cfg.Username,
			ReceivedAt: time.Now(),
		}

		select {
		case out <- event:
			metrics.FeedMessagesTotal.WithLabelValues(t.Name()).Inc()
		case <-ctx.Done():
		}
	})

	client.Join(t.cfg.Channel)
	t.logger.Infow("Joining twitch channel",
		"channel", t.cfg.Channel,
	)

	// Connect blocks for the lifetime of the connection. Its error must
	// surface immediately so a failed connect does not leave the pipeline
	// running against a dead feed.
	connErr := make(chan error, 1)
	go func() {
		connErr <- client.Connect()
	}()

	select {
	case err := <-connErr:
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return err
	case <-ctx.Done():
		client.Disconnect()
		<-connErr
		return ctx.Err()
	}
}
