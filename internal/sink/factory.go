package sink

import (
	"fmt"

	"babelfeed/internal/config"
	"babelfeed/internal/constants"
	"babelfeed/internal/i18n"
	"babelfeed/internal/logger"
)

func New(cfg config.SinkConfig, translator *i18n.Translator, log logger.Logger) (Sink, error) {
	switch cfg.Type {
	case constants.SinkTypeTerminal:
		return NewTerminal(translator, cfg.Locale), nil
	case constants.SinkTypeKafka:
		return NewKafka(cfg.Kafka, log), nil
	default:
		return nil, fmt.Errorf("unknown sink type: %s", cfg.Type)
	}
}
