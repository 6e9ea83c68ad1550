package config

import (
	"fmt"
	"time"
)

type Config struct {
	Server         ServerConfig         `mapstructure:"server"`
	Logging        LoggingConfig        `mapstructure:"logging"`
	Translation    TranslationConfig    `mapstructure:"translation"`
	Engines        EnginesConfig        `mapstructure:"engines"`
	Cache          CacheConfig          `mapstructure:"cache"`
	Feed           FeedConfig           `mapstructure:"feed"`
	Sink           SinkConfig           `mapstructure:"sink"`
	History        HistoryConfig        `mapstructure:"history"`
	RateLimit      RateLimitConfig      `mapstructure:"rate_limit"`
	CircuitBreaker CircuitBreakerConfig `mapstructure:"circuit_breaker"`
	Tracing        TracingConfig        `mapstructure:"tracing"`
}

type ServerConfig struct {
	Port int `mapstructure:"port"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type TranslationConfig struct {
	TargetLanguage        string      `mapstructure:"target_language"`
	Engine                string      `mapstructure:"engine"`
	MaxWorkers            int         `mapstructure:"max_workers"`
	RequestTimeoutSeconds int         `mapstructure:"request_timeout_seconds"`
	Retry                 RetryConfig `mapstructure:"retry"`
	SkipRules             []string    `mapstructure:"skip_rules"`
}

func (c TranslationConfig) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

type RetryConfig struct {
	MaxAttempts     int           `mapstructure:"max_attempts"`
	InitialInterval time.Duration `mapstructure:"initial_interval"`
	MaxInterval     time.Duration `mapstructure:"max_interval"`
	Multiplier      float64       `mapstructure:"multiplier"`
}

type EnginesConfig struct {
	Google GoogleEngineConfig `mapstructure:"google"`
	OpenAI OpenAIEngineConfig `mapstructure:"openai"`
}

type GoogleEngineConfig struct {
	Endpoint string `mapstructure:"endpoint"`
}

type OpenAIEngineConfig struct {
	APIKey  string `mapstructure:"api_key"`
	APIBase string `mapstructure:"api_base"`
	Model   string `mapstructure:"model"`
}

type CacheConfig struct {
	Backend  string      `mapstructure:"backend"`
	Capacity int         `mapstructure:"capacity"`
	Redis    RedisConfig `mapstructure:"redis"`
}

type RedisConfig struct {
	Host       string `mapstructure:"host"`
	Port       int    `mapstructure:"port"`
	Password   string `mapstructure:"password"`
	DB         int    `mapstructure:"db"`
	TTLSeconds int    `mapstructure:"ttl_seconds"`
}

func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type FeedConfig struct {
	Type      string              `mapstructure:"type"`
	Twitch    TwitchFeedConfig    `mapstructure:"twitch"`
	WebSocket WebSocketFeedConfig `mapstructure:"websocket"`
}

type TwitchFeedConfig struct {
	Channel    string `mapstructure:"channel"`
	Username   string `mapstructure:"username"`
	OAuthToken string `mapstructure:"oauth_token"`
}

type WebSocketFeedConfig struct {
	URL           string            `mapstructure:"url"`
	Headers       map[string]string `mapstructure:"headers"`
	MaxReconnects int               `mapstructure:"max_reconnects"`
}

type SinkConfig struct {
	Type   string          `mapstructure:"type"`
	Locale string          `mapstructure:"locale"`
	Kafka  KafkaSinkConfig `mapstructure:"kafka"`
}

type KafkaSinkConfig struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

type HistoryConfig struct {
	Enabled  bool           `mapstructure:"enabled"`
	Postgres PostgresConfig `mapstructure:"postgres"`
}

type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

func (c PostgresConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

type RateLimitConfig struct {
	Enabled bool    `mapstructure:"enabled"`
	RPS     float64 `mapstructure:"rps"`
	Burst   int     `mapstructure:"burst"`
}

type CircuitBreakerConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	MaxRequests  uint32        `mapstructure:"max_requests"`
	Interval     time.Duration `mapstructure:"interval"`
	Timeout      time.Duration `mapstructure:"timeout"`
	FailureRatio float64       `mapstructure:"failure_ratio"`
	MinRequests  uint32        `mapstructure:"min_requests"`
}

type TracingConfig struct {
	Enabled     bool       `mapstructure:"enabled"`
	ServiceName string     `mapstructure:"service_name"`
	OTLP        OTLPConfig `mapstructure:"otlp"`
}

type OTLPConfig struct {
	Endpoint string `mapstructure:"endpoint"`
	Insecure bool   `mapstructure:"insecure"`
}
