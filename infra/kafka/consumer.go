package kafka

import (
	"context"

	"github.com/pkg/errors"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"matchbook/infra/feed"
)

// Consumer reads order commands from the order topic. Messages that do
// not decode are logged, committed and skipped.
type Consumer struct {
	reader *kafka.Reader
	log    *zap.Logger
}

func NewConsumer(brokers []string, topic, groupID string, log *zap.Logger) *Consumer {
	return &Consumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:  brokers,
			Topic:    topic,
			GroupID:  groupID,
			MinBytes: 1,
			MaxBytes: 10e6,
		}),
		log: log.Named("kafka-consumer"),
	}
}

// ReadCommand blocks until the next decodable command or ctx is done.
func (c *Consumer) ReadCommand(ctx context.Context) (feed.Command, error) {
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			return feed.Command{}, errors.Wrap(err, "kafka: fetch")
		}

		cmd, decodeErr := DecodeCommand(msg.Value)
		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			return feed.Command{}, errors.Wrap(err, "kafka: commit")
		}
		if decodeErr != nil {
			c.log.Warn("skipping malformed command",
				zap.Error(decodeErr),
				zap.Int64("offset", msg.Offset),
				zap.Int("partition", msg.Partition),
			)
			continue
		}
		return cmd, nil
	}
}

func (c *Consumer) Close() error {
	return c.reader.Close()
}
