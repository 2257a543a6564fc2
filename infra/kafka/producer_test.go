package kafka

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"matchbook/jobs/broadcaster"
)

var _ broadcaster.Publisher = (*Producer)(nil)

type downTransport struct{}

func (downTransport) RoundTrip(context.Context, net.Addr, protocol.Message) (protocol.Message, error) {
	return nil, errors.New("broker unreachable")
}

func TestProducer_PublishErrorNamesTopic(t *testing.T) {
	p := NewProducerWithWriter(&kafka.Writer{
		Addr:        kafka.TCP("broker:9092"),
		Topic:       "executions",
		Transport:   downTransport{},
		MaxAttempts: 1,
	})
	defer p.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := p.Publish(ctx, []byte("1"), []byte("payload"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "kafka: write executions")
}
