package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"babelfeed/internal/config"
	"babelfeed/internal/constants"
	"babelfeed/internal/logger"
	"babelfeed/internal/pipeline"
	"babelfeed/pkg/metrics"
)

// Kafka publishes results to a topic for downstream display surfaces.
// Messages are keyed by message ID so per-message ordering survives
// partitioning only within a key; consumers that need global intake order
// should use a single partition.
type Kafka struct {
	writer *kafka.Writer
	topic  string
	logger logger.Logger
}

// kafkaRecord is the published wire form of a result.
type kafkaRecord struct {
	ID             string    `json:"id"`
	Seq            uint64    `json:"seq"`
	Sender         string    `json:"sender"`
	SourceText     string    `json:"source_text"`
	TranslatedText string    `json:"translated_text"`
	Engine         string    `json:"engine,omitempty"`
	Succeeded      bool      `json:"succeeded"`
	ErrorKind      string    `json:"error_kind,omitempty"`
	EmittedAt      time.Time `json:"emitted_at"`
}

func NewKafka(cfg config.KafkaSinkConfig, log logger.Logger) *Kafka {
	w := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: constants.KafkaBatchTimeout,
		WriteTimeout: constants.KafkaWriteTimeout,
		Async:        false,
	}
	return &Kafka{
		writer: w,
		topic:  cfg.Topic,
		logger: log,
	}
}

func (k *Kafka) Name() string {
	return constants.SinkTypeKafka
}

func (k *Kafka) Emit(ctx context.Context, res pipeline.TranslationResult) error {
	record := kafkaRecord{
		ID:             res.ID,
		Seq:            res.Seq,
		Sender:         res.Sender,
		SourceText:     res.SourceText,
		TranslatedText: res.TranslatedText,
		Engine:         res.Engine,
		Succeeded:      res.Succeeded,
		ErrorKind:      res.ErrorKind,
		EmittedAt:      time.Now(),
	}

	body, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}

	err = k.writer.WriteMessages(ctx,
		kafka.Message{
			Topic: k.topic,
			Key:   []byte(res.ID),
			Value: body,
			Time:  time.Now(),
		},
	)

	if err != nil {
		metrics.SinkEmitsTotal.WithLabelValues(k.Name(), "failure").Inc()
		return fmt.Errorf("failed to write kafka message: %w", err)
	}

	metrics.SinkEmitsTotal.WithLabelValues(k.Name(), "success").Inc()
	return nil
}

func (k *Kafka) Close() error {
	return k.writer.Close()
}
