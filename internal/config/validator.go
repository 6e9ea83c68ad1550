package config

import (
	"fmt"

	"babelfeed/internal/constants"
)

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
}

func Validate(cfg *Config) error {
	var errors []error

	if err := validateServer(cfg.Server); err != nil {
		errors = append(errors, err)
	}

	if err := validateTranslation(cfg.Translation); err != nil {
		errors = append(errors, err)
	}

	if err := validateEngines(cfg); err != nil {
		errors = append(errors, err)
	}

	if err := validateCache(cfg.Cache); err != nil {
		errors = append(errors, err)
	}

	if err := validateFeed(cfg.Feed); err != nil {
		errors = append(errors, err)
	}

	if err := validateSink(cfg.Sink); err != nil {
		errors = append(errors, err)
	}

	if err := validateHistory(cfg.History); err != nil {
		errors = append(errors, err)
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed: %v", errors)
	}

	return nil
}

func validateServer(cfg ServerConfig) error {
	if cfg.Port < 1 || cfg.Port > 65535 {
		return &ValidationError{
			Field:   "server.port",
			Message: fmt.Sprintf("port must be between 1 and 65535, got %d", cfg.Port),
		}
	}
	return nil
}

func validateTranslation(cfg TranslationConfig) error {
	if cfg.TargetLanguage == "" {
		return &ValidationError{
			Field:   "translation.target_language",
			Message: "target language is required",
		}
	}

	if cfg.MaxWorkers < 1 {
		return &ValidationError{
			Field:   "translation.max_workers",
			Message: fmt.Sprintf("worker pool size must be at least 1, got %d", cfg.MaxWorkers),
		}
	}

	if cfg.RequestTimeoutSeconds <= 0 {
		return &ValidationError{
			Field:   "translation.request_timeout_seconds",
			Message: "per-request timeout must be positive",
		}
	}

	if cfg.Retry.MaxAttempts < 1 {
		return &ValidationError{
			Field:   "translation.retry.max_attempts",
			Message: "retry attempts must be at least 1",
		}
	}

	return nil
}

func validateEngines(cfg *Config) error {
	switch cfg.Translation.Engine {
	case constants.EngineGoogle:
		if cfg.Engines.Google.Endpoint == "" {
			return &ValidationError{
				Field:   "engines.google.endpoint",
				Message: "endpoint is required for the google engine",
			}
		}
	case constants.EngineOpenAI:
		if cfg.Engines.OpenAI.APIKey == "" {
			return &ValidationError{
				Field:   "engines.openai.api_key",
				Message: "api key is required for the openai engine",
			}
		}
	default:
		return &ValidationError{
			Field:   "translation.engine",
			Message: fmt.Sprintf("unknown engine: %s (supported: google, openai)", cfg.Translation.Engine),
		}
	}
	return nil
}

func validateCache(cfg CacheConfig) error {
	switch cfg.Backend {
	case constants.CacheBackendMemory:
		if cfg.Capacity < 1 {
			return &ValidationError{
				Field:   "cache.capacity",
				Message: fmt.Sprintf("capacity must be at least 1, got %d", cfg.Capacity),
			}
		}
	case constants.CacheBackendRedis:
		if cfg.Redis.Host == "" {
			return &ValidationError{
				Field:   "cache.redis.host",
				Message: "redis host is required for the redis cache backend",
			}
		}
	default:
		return &ValidationError{
			Field:   "cache.backend",
			Message: fmt.Sprintf("unknown cache backend: %s (supported: memory, redis)", cfg.Backend),
		}
	}
	return nil
}

func validateFeed(cfg FeedConfig) error {
	switch cfg.Type {
	case constants.FeedTypeStdin:
		return nil
	case constants.FeedTypeTwitch:
		if cfg.Twitch.Channel == "" {
			return &ValidationError{
				Field:   "feed.twitch.channel",
				Message: "channel is required for the twitch feed",
			}
		}
	case constants.FeedTypeWebSocket:
		if cfg.WebSocket.URL == "" {
			return &ValidationError{
				Field:   "feed.websocket.url",
				Message: "url is required for the websocket feed",
			}
		}
	default:
		return &ValidationError{
			Field:   "feed.type",
			Message: fmt.Sprintf("unknown feed type: %s (supported: twitch, websocket, stdin)", cfg.Type),
		}
	}
	return nil
}

func validateSink(cfg SinkConfig) error {
	switch cfg.Type {
	case constants.SinkTypeTerminal:
		return nil
	case constants.SinkTypeKafka:
		if len(cfg.Kafka.Brokers) == 0 {
			return &ValidationError{
				Field:   "sink.kafka.brokers",
				Message: "at least one broker is required for the kafka sink",
			}
		}
		if cfg.Kafka.Topic == "" {
			return &ValidationError{
				Field:   "sink.kafka.topic",
				Message: "topic is required for the kafka sink",
			}
		}
	default:
		return &ValidationError{
			Field:   "sink.type",
			Message: fmt.Sprintf("unknown sink type: %s (supported: terminal, kafka)", cfg.Type),
		}
	}
	return nil
}

func validateHistory(cfg HistoryConfig) error {
	if !cfg.Enabled {
		return nil
	}
	if cfg.Postgres.Host == "" || cfg.Postgres.DBName == "" {
		return &ValidationError{
			Field:   "history.postgres",
			Message: "host and dbname are required when history is enabled",
		}
	}
	return nil
}
