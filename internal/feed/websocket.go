package feed

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"babelfeed/internal/config"
	"babelfeed/internal/constants"
	"babelfeed/internal/logger"
	"babelfeed/pkg/metrics"
)

// reconnectBaseDelay doubles per attempt, up to cfg.MaxReconnects attempts.
const reconnectBaseDelay = 2 * time.Second

// WebSocket consumes a live-chat comment stream over a websocket endpoint.
// Frames are JSON objects carrying the message content and sender identity.
type WebSocket struct {
	cfg    config.WebSocketFeedConfig
	logger logger.Logger
}

type wsFrame struct {
	Content  string `json:"content"`
	Nickname string `json:"nickname"`
	SenderID string `json:"vlive_id"`
	IsSelf   bool   `json:"is_self"`
}

func NewWebSocket(cfg config.WebSocketFeedConfig, log logger.Logger) *WebSocket {
	return &WebSocket{
		cfg:    cfg,
		logger: log,
	}
}

func (w *WebSocket) Name() string {
	return constants.FeedTypeWebSocket
}

func (w *WebSocket) Run(ctx context.Context, out chan<- Event) error {
	attempts := 0
	for {
		err := w.readLoop(ctx, out)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err == nil {
			// Server closed the stream normally.
			return nil
		}

		attempts++
		if attempts > w.cfg.MaxReconnects {
			w.logger.Errorw("Giving up on websocket feed",
				"attempts", attempts-1,
				"error", err,
			)
			return err
		}

		delay := reconnectBaseDelay * (1 << (attempts - 1))
		w.logger.Warnw("Websocket feed disconnected, reconnecting",
			"attempt", attempts,
			"delay", delay,
			"error", err,
		)

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (w *WebSocket) readLoop(ctx context.Context, out chan<- Event) error {
	header := http.Header{}
	for k, v := range w.cfg.Headers {
		header.Set(k, v)
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, w.cfg.URL, header)
	if err != nil {
		return err
	}
	defer conn.Close()

	w.logger.Infow("Websocket feed connected",
		"url", w.cfg.URL,
	)

	// The watcher lives no longer than this connection; without the
	// per-connection context each reconnect would leave one behind.
	connCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		<-connCtx.Done()
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		conn.Close()
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				return nil
			}
			return err
		}

		var frame wsFrame
		if err := json.Unmarshal(data, &frame); err != nil {
			w.logger.Debugw("Dropping malformed feed frame",
				"error", err,
			)
			continue
		}
		if frame.Content == "" {
			continue
		}

		event := Event{
			Text:       frame.Content,
			Sender:     frame.Nickname,
			SenderID:   frame.SenderID,
			Self:       frame.IsSelf,
			ReceivedAt: time.Now(),
		}

		select {
		case out <- event:
			metrics.FeedMessagesTotal.WithLabelValues(w.Name()).Inc()
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
