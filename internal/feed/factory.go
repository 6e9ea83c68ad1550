package feed

import (
	"fmt"

	"babelfeed/internal/config"
	"babelfeed/internal/constants"
	"babelfeed/internal/logger"
)

func New(cfg config.FeedConfig, log logger.Logger) (Source, error) {
	switch cfg.Type {
	case constants.FeedTypeTwitch:
		return NewTwitch(cfg.Twitch, log), nil
	case constants.FeedTypeWebSocket:
		return NewWebSocket(cfg.WebSocket, log), nil
	case constants.FeedTypeStdin:
		return NewStdin(), nil
	default:
		return nil, fmt.Errorf("unknown feed type: %s", cfg.Type)
	}
}
