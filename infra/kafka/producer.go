package kafka

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/segmentio/kafka-go"
)

// Producer writes executions to the execution topic with kafka-go. Each
// write blocks until every in-sync replica has the message.
type Producer struct {
	writer *kafka.Writer
}

func NewProducer(brokers []string, topic string) *Producer {
	return NewProducerWithWriter(&kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		RequiredAcks: kafka.RequireAll,
		Async:        false,
		BatchTimeout: 10 * time.Millisecond,
	})
}

func NewProducerWithWriter(w *kafka.Writer) *Producer {
	return &Producer{writer: w}
}

// Publish writes one execution. key is the decimal outbox sequence of the
// record, so a consumer seeing the same key twice is seeing a redelivery of
// one execution. Partitioning is left to the writer's balancer.
func (p *Producer) Publish(ctx context.Context, key, value []byte) error {
	err := p.writer.WriteMessages(ctx, kafka.Message{
		Key:   key,
		Value: value,
	})
	return errors.Wrapf(err, "kafka: write %s", p.writer.Topic)
}

func (p *Producer) Close() error {
	return p.writer.Close()
}
