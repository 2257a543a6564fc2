package broadcaster

import (
	"context"

	"github.com/IBM/sarama"
	"github.com/pkg/errors"
)

// Publisher delivers one keyed message and reports whether the broker
// accepted it.
//
//go:generate mockgen -source publisher.go -destination=mock/publisher_mock.go -package=broadcaster_mock
type Publisher interface {
	Publish(ctx context.Context, key, value []byte) error
	Close() error
}

// SaramaPublisher publishes through a sarama SyncProducer.
type SaramaPublisher struct {
	producer sarama.SyncProducer
	topic    string
}

// NewSaramaPublisher dials brokers with acks from all in-sync replicas.
func NewSaramaPublisher(brokers []string, topic string) (*SaramaPublisher, error) {
	cfg := sarama.NewConfig()
	cfg.Producer.Return.Successes = true
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Retry.Max = 5

	producer, err := sarama.NewSyncProducer(brokers, cfg)
	if err != nil {
		return nil, errors.Wrap(err, "broadcaster: sarama producer")
	}
	return NewSaramaPublisherWithProducer(producer, topic), nil
}

func NewSaramaPublisherWithProducer(p sarama.SyncProducer, topic string) *SaramaPublisher {
	return &SaramaPublisher{producer: p, topic: topic}
}

// Publish ignores ctx; SyncProducer has no per-call cancellation.
func (p *SaramaPublisher) Publish(_ context.Context, key, value []byte) error {
	_, _, err := p.producer.SendMessage(&sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.ByteEncoder(key),
		Value: sarama.ByteEncoder(value),
	})
	return errors.Wrap(err, "broadcaster: sarama send")
}

func (p *SaramaPublisher) Close() error {
	return p.producer.Close()
}
