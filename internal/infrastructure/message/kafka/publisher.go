// Package kafka implements the event publisher on Kafka via sarama
package kafka

import (
	"context"
	"encoding/json"

	"github.com/IBM/sarama"

	"github.com/regtrace/regtrace/internal/infrastructure/message"
	"github.com/regtrace/regtrace/internal/observability/logging"
	"github.com/regtrace/regtrace/pkg/config"
	"github.com/regtrace/regtrace/pkg/errors"
)

type publisher struct {
	producer   sarama.SyncProducer
	driftTopic string
	gapTopic   string
	logger     logging.Logger
}

// NewPublisher creates a synchronous Kafka publisher. When the bus is
// disabled in configuration a NopPublisher is returned instead.
func NewPublisher(cfg config.KafkaConfig, logger logging.Logger) (message.Publisher, error) {
	if cfg.Disabled {
		return message.NopPublisher{}, nil
	}

	sc := sarama.NewConfig()
	sc.ClientID = cfg.ClientID
	sc.Producer.Return.Successes = true
	sc.Producer.RequiredAcks = sarama.WaitForAll
	sc.Producer.Retry.Max = cfg.MaxRetries
	sc.Producer.Idempotent = true
	sc.Net.MaxOpenRequests = 1

	producer, err := sarama.NewSyncProducer(cfg.Brokers, sc)
	if err != nil {
		return nil, errors.InfrastructureError("kafka", err)
	}

	return &publisher{
		producer:   producer,
		driftTopic: cfg.DriftTopic,
		gapTopic:   cfg.GapTopic,
		logger:     logger,
	}, nil
}

func (p *publisher) PublishDrift(ctx context.Context, event message.Event) error {
	return p.publish(ctx, p.driftTopic, event)
}

func (p *publisher) PublishGap(ctx context.Context, event message.Event) error {
	return p.publish(ctx, p.gapTopic, event)
}

func (p *publisher) publish(ctx context.Context, topic string, event message.Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return errors.InfrastructureError("kafka", err)
	}

	msg := &sarama.ProducerMessage{
		Topic: topic,
		Key:   sarama.StringEncoder(event.Key),
		Value: sarama.ByteEncoder(payload),
	}
	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		return errors.InfrastructureError("kafka", err)
	}

	p.logger.Debug("event published",
		logging.String("topic", topic),
		logging.String("type", event.Type),
		logging.Int("partition", int(partition)),
		logging.Any("offset", offset),
	)
	return nil
}

func (p *publisher) Close() error {
	return p.producer.Close()
}
