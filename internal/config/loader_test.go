package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"babelfeed/internal/constants"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDefaultsWithoutFile(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, constants.DefaultTargetLanguage, cfg.Translation.TargetLanguage)
	assert.Equal(t, constants.DefaultEngine, cfg.Translation.Engine)
	assert.Equal(t, constants.DefaultMaxWorkers, cfg.Translation.MaxWorkers)
	assert.Equal(t, constants.CacheBackendMemory, cfg.Cache.Backend)
	assert.Equal(t, constants.FeedTypeStdin, cfg.Feed.Type)
	assert.Equal(t, constants.SinkTypeTerminal, cfg.Sink.Type)
	assert.Equal(t, 3, cfg.Translation.Retry.MaxAttempts)
}

func TestLoadFromFile(t *testing.T) {
	path := writeConfig(t, `
translation:
  target_language: ja
  engine: openai
  max_workers: 4
engines:
  openai:
    api_key: secret
feed:
  type: twitch
  twitch:
    channel: somechannel
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "ja", cfg.Translation.TargetLanguage)
	assert.Equal(t, constants.EngineOpenAI, cfg.Translation.Engine)
	assert.Equal(t, 4, cfg.Translation.MaxWorkers)
	assert.Equal(t, "somechannel", cfg.Feed.Twitch.Channel)
	assert.Equal(t, constants.DefaultOpenAIModel, cfg.Engines.OpenAI.Model)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("TRANSLATION_MAX_WORKERS", "8")
	t.Setenv("TRANSLATION_TARGET_LANGUAGE", "fr")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8, cfg.Translation.MaxWorkers)
	assert.Equal(t, "fr", cfg.Translation.TargetLanguage)
}

func TestLoadKafkaBrokersEnvSplit(t *testing.T) {
	t.Setenv("SINK_TYPE", "kafka")
	t.Setenv("SINK_KAFKA_BROKERS", "broker1:9092, broker2:9092")
	t.Setenv("SINK_KAFKA_TOPIC", "translated")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.Sink.Kafka.Brokers)
	assert.Equal(t, "translated", cfg.Sink.Kafka.Topic)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("/nonexistent/config.yaml")
	assert.Error(t, err)
}

func TestValidateRejectsBadConfigs(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name: "openai without api key",
			content: `
translation:
  engine: openai
`,
		},
		{
			name: "zero workers",
			content: `
translation:
  max_workers: 0
`,
		},
		{
			name: "unknown engine",
			content: `
translation:
  engine: bing
`,
		},
		{
			name: "twitch feed without channel",
			content: `
feed:
  type: twitch
`,
		},
		{
			name: "kafka sink without brokers",
			content: `
sink:
  type: kafka
  kafka:
    topic: translated
`,
		},
		{
			name: "history without postgres host",
			content: `
history:
  enabled: true
`,
		},
		{
			name: "unknown cache backend",
			content: `
cache:
  backend: memcached
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			assert.Error(t, err)
		})
	}
}
