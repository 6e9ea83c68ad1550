package constants

import "time"

const (
	CacheKeyPrefixTranslation = "translation:"
)

const (
	DefaultMaxWorkers            = 1
	DefaultRequestTimeoutSeconds = 30
	DefaultCacheCapacity         = 1024
	DefaultTargetLanguage        = "en-US"
	DefaultEngine                = "google"
)

const (
	KafkaBatchTimeout = 10 * time.Millisecond
	KafkaWriteTimeout = 10 * time.Second
)

const (
	ShutdownTimeout = 5 * time.Second
)

// GraceSlack is added to the per-request timeout when deriving the
// sequencer's head-of-line stall deadline.
const GraceSlack = 2 * time.Second

const (
	FeedTypeTwitch    = "twitch"
	FeedTypeWebSocket = "websocket"
	FeedTypeStdin     = "stdin"
)

const (
	SinkTypeTerminal = "terminal"
	SinkTypeKafka    = "kafka"
)

const (
	EngineGoogle = "google"
	EngineOpenAI = "openai"
)

const (
	CacheBackendMemory = "memory"
	CacheBackendRedis  = "redis"
)

const (
	DefaultGoogleEndpoint = "https://translate.googleapis.com/translate_a/single"
	DefaultOpenAIBase     = "https://api.openai.com/v1"
	DefaultOpenAIModel    = "gpt-4o-mini"
)
