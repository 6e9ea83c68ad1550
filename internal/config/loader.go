package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"babelfeed/internal/constants"
)

func Load(configFile string) (*Config, error) {
	viper.Reset()

	viper.SetConfigType("yaml")

	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()
	bindEnvVariables()

	// Defaults plus environment are enough for a stdin-to-terminal run; a
	// config file is only required for anything beyond that.
	if configFile != "" {
		viper.SetConfigFile(configFile)
		if err := viper.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := applyEnvOverrides(&cfg); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

func setDefaults() {
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")

	viper.SetDefault("translation.target_language", constants.DefaultTargetLanguage)
	viper.SetDefault("translation.engine", constants.DefaultEngine)
	viper.SetDefault("translation.max_workers", constants.DefaultMaxWorkers)
	viper.SetDefault("translation.request_timeout_seconds", constants.DefaultRequestTimeoutSeconds)
	viper.SetDefault("translation.retry.max_attempts", 3)
	viper.SetDefault("translation.retry.initial_interval", "1s")
	viper.SetDefault("translation.retry.max_interval", "10s")
	viper.SetDefault("translation.retry.multiplier", 2.0)

	viper.SetDefault("engines.google.endpoint", constants.DefaultGoogleEndpoint)
	viper.SetDefault("engines.openai.api_base", constants.DefaultOpenAIBase)
	viper.SetDefault("engines.openai.model", constants.DefaultOpenAIModel)

	viper.SetDefault("cache.backend", constants.CacheBackendMemory)
	viper.SetDefault("cache.capacity", constants.DefaultCacheCapacity)
	viper.SetDefault("cache.redis.ttl_seconds", 86400)

	viper.SetDefault("feed.type", constants.FeedTypeStdin)
	viper.SetDefault("feed.websocket.max_reconnects", 5)

	viper.SetDefault("sink.type", constants.SinkTypeTerminal)
	viper.SetDefault("sink.locale", "en")

	viper.SetDefault("rate_limit.enabled", false)
	viper.SetDefault("rate_limit.rps", 10.0)
	viper.SetDefault("rate_limit.burst", 20)

	viper.SetDefault("circuit_breaker.enabled", false)
	viper.SetDefault("circuit_breaker.max_requests", 3)
	viper.SetDefault("circuit_breaker.interval", "60s")
	viper.SetDefault("circuit_breaker.timeout", "60s")
	viper.SetDefault("circuit_breaker.failure_ratio", 0.5)
	viper.SetDefault("circuit_breaker.min_requests", 3)
}

func bindEnvVariables() {
	viper.BindEnv("translation.target_language", "TRANSLATION_TARGET_LANGUAGE")
	viper.BindEnv("translation.engine", "TRANSLATION_ENGINE")
	viper.BindEnv("translation.max_workers", "TRANSLATION_MAX_WORKERS")
	viper.BindEnv("translation.request_timeout_seconds", "TRANSLATION_REQUEST_TIMEOUT_SECONDS")

	viper.BindEnv("engines.openai.api_key", "ENGINES_OPENAI_API_KEY")
	viper.BindEnv("engines.openai.api_base", "ENGINES_OPENAI_API_BASE")
	viper.BindEnv("engines.openai.model", "ENGINES_OPENAI_MODEL")

	viper.BindEnv("cache.backend", "CACHE_BACKEND")
	viper.BindEnv("cache.redis.host", "CACHE_REDIS_HOST")
	viper.BindEnv("cache.redis.port", "CACHE_REDIS_PORT")
	viper.BindEnv("cache.redis.password", "CACHE_REDIS_PASSWORD")

	viper.BindEnv("feed.type", "FEED_TYPE")
	viper.BindEnv("feed.twitch.channel", "FEED_TWITCH_CHANNEL")
	viper.BindEnv("feed.twitch.username", "FEED_TWITCH_USERNAME")
	viper.BindEnv("feed.twitch.oauth_token", "FEED_TWITCH_OAUTH_TOKEN")
	viper.BindEnv("feed.websocket.url", "FEED_WEBSOCKET_URL")

	viper.BindEnv("sink.type", "SINK_TYPE")
	viper.BindEnv("sink.kafka.brokers", "SINK_KAFKA_BROKERS")
	viper.BindEnv("sink.kafka.topic", "SINK_KAFKA_TOPIC")

	viper.BindEnv("history.postgres.host", "HISTORY_POSTGRES_HOST")
	viper.BindEnv("history.postgres.port", "HISTORY_POSTGRES_PORT")
	viper.BindEnv("history.postgres.user", "HISTORY_POSTGRES_USER")
	viper.BindEnv("history.postgres.password", "HISTORY_POSTGRES_PASSWORD")
	viper.BindEnv("history.postgres.dbname", "HISTORY_POSTGRES_DBNAME")

	viper.BindEnv("server.port", "SERVER_PORT")
	viper.BindEnv("logging.level", "LOGGING_LEVEL")

	viper.BindEnv("tracing.enabled", "TRACING_ENABLED")
	viper.BindEnv("tracing.otlp.endpoint", "TRACING_OTLP_ENDPOINT")
	viper.BindEnv("tracing.otlp.insecure", "TRACING_OTLP_INSECURE")
}

func applyEnvOverrides(cfg *Config) error {
	if brokersEnv := viper.GetString("SINK_KAFKA_BROKERS"); brokersEnv != "" {
		brokers := strings.Split(brokersEnv, ",")
		for i := range brokers {
			brokers[i] = strings.TrimSpace(brokers[i])
		}
		if len(brokers) > 0 && brokers[0] != "" {
			cfg.Sink.Kafka.Brokers = brokers
		}
	}

	return nil
}
