package broadcaster

import (
	"context"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/golang/mock/gomock"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"matchbook/domain/orderbook"
	"matchbook/infra/outbox"
	"matchbook/infra/wire"
	broadcaster_mock "matchbook/jobs/broadcaster/mock"
)

func newOutbox(t *testing.T, n int) *outbox.Outbox {
	t.Helper()
	o, err := outbox.Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = o.Close() })

	for i := 0; i < n; i++ {
		_, err := o.AppendExecution(wire.Execution{
			Execution:  orderbook.Execution{Symbol: 1, Buyer: 1, Seller: 2, Price: 101, Size: orderbook.Size(i + 1)},
			SymbolName: "JPM",
			BuyerName:  "ID1",
			SellerName: "ID2",
		})
		require.NoError(t, err)
	}
	return o
}

func states(t *testing.T, o *outbox.Outbox) []outbox.State {
	t.Helper()
	var out []outbox.State
	require.NoError(t, o.Scan(func(r outbox.Record) error {
		out = append(out, r.State)
		return nil
	}))
	return out
}

func TestDrainOnce(t *testing.T) {
	testCases := []struct {
		name      string
		records   int
		mockFn    func(m *broadcaster_mock.MockPublisher)
		wantAcked int
		want      []outbox.State
	}{
		{
			name:    "all published in order",
			records: 3,
			mockFn: func(m *broadcaster_mock.MockPublisher) {
				gomock.InOrder(
					m.EXPECT().Publish(gomock.Any(), []byte("1"), gomock.Any()).Return(nil),
					m.EXPECT().Publish(gomock.Any(), []byte("2"), gomock.Any()).Return(nil),
					m.EXPECT().Publish(gomock.Any(), []byte("3"), gomock.Any()).Return(nil),
				)
			},
			wantAcked: 3,
			want:      []outbox.State{outbox.StateAcked, outbox.StateAcked, outbox.StateAcked},
		},
		{
			name:    "failure stops the pass",
			records: 3,
			mockFn: func(m *broadcaster_mock.MockPublisher) {
				gomock.InOrder(
					m.EXPECT().Publish(gomock.Any(), []byte("1"), gomock.Any()).Return(nil),
					m.EXPECT().Publish(gomock.Any(), []byte("2"), gomock.Any()).Return(errors.New("broker down")),
				)
			},
			wantAcked: 1,
			want:      []outbox.State{outbox.StateAcked, outbox.StateSent, outbox.StateNew},
		},
		{
			name:      "empty outbox",
			records:   0,
			mockFn:    func(m *broadcaster_mock.MockPublisher) {},
			wantAcked: 0,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			pub := broadcaster_mock.NewMockPublisher(ctrl)
			tc.mockFn(pub)
			o := newOutbox(t, tc.records)

			b := New(o, pub, WithLogger(zaptest.NewLogger(t)))
			acked, err := b.DrainOnce(context.Background())

			require.NoError(t, err)
			assert.Equal(t, tc.wantAcked, acked)
			assert.Equal(t, tc.want, states(t, o))
		})
	}
}

func TestDrainOnce_GivesUpAfterMaxRetries(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	pub := broadcaster_mock.NewMockPublisher(ctrl)
	pub.EXPECT().Publish(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("nope")).Times(2)
	pub.EXPECT().Publish(gomock.Any(), []byte("2"), gomock.Any()).Return(nil)

	o := newOutbox(t, 2)
	b := New(o, pub, WithMaxRetries(2))

	for i := 0; i < 2; i++ {
		acked, err := b.DrainOnce(context.Background())
		require.NoError(t, err)
		assert.Zero(t, acked)
	}
	acked, err := b.DrainOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, acked)

	assert.Equal(t, []outbox.State{outbox.StateFailed, outbox.StateAcked}, states(t, o))
}

func TestDrainOnce_Prunes(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	pub := broadcaster_mock.NewMockPublisher(ctrl)
	pub.EXPECT().Publish(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).Times(2)

	o := newOutbox(t, 2)
	acked, err := New(o, pub, WithPruning(true)).DrainOnce(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 2, acked)
	assert.Empty(t, states(t, o))
}

func TestRun_StopsOnCancel(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	pub := broadcaster_mock.NewMockPublisher(ctrl)
	published := make(chan struct{})
	pub.EXPECT().Publish(gomock.Any(), []byte("1"), gomock.Any()).DoAndReturn(
		func(context.Context, []byte, []byte) error {
			close(published)
			return nil
		})

	o := newOutbox(t, 1)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		New(o, pub, WithInterval(time.Millisecond)).Run(ctx)
		close(done)
	}()

	select {
	case <-published:
	case <-time.After(5 * time.Second):
		t.Fatal("record was never published")
	}
	cancel()
	<-done
}

func TestSaramaPublisher(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		if string(val) != "payload" {
			return errors.Errorf("unexpected value %q", val)
		}
		return nil
	})
	producer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	pub := NewSaramaPublisherWithProducer(producer, "executions")

	require.NoError(t, pub.Publish(context.Background(), []byte("1"), []byte("payload")))
	err := pub.Publish(context.Background(), []byte("2"), []byte("payload"))
	assert.ErrorIs(t, err, sarama.ErrOutOfBrokers)

	require.NoError(t, pub.Close())
}

func TestBroadcaster_WithSaramaPublisher(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	named := func(val []byte) error {
		e, err := wire.DecodeExecution(val)
		if err != nil {
			return err
		}
		if e.SymbolName != "JPM" || e.BuyerName != "ID1" || e.SellerName != "ID2" {
			return errors.Errorf("published without names: %+v", e)
		}
		return nil
	}
	producer.ExpectSendMessageWithCheckerFunctionAndSucceed(named)
	producer.ExpectSendMessageWithCheckerFunctionAndSucceed(named)

	o := newOutbox(t, 2)
	b := New(o, NewSaramaPublisherWithProducer(producer, "executions"))

	acked, err := b.DrainOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, acked)
	require.NoError(t, b.Close())
}
