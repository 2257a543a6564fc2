package harness

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"matchbook/domain/orderbook"
	"matchbook/service"
)

func engineFactory() service.Matcher { return service.NewEngine() }

func TestQuantCup_EnginePassesAll(t *testing.T) {
	var out bytes.Buffer
	r := NewRunner(engineFactory, WithOutput(&out), WithLogger(zaptest.NewLogger(t)))

	res := r.Run(QuantCup())

	assert.True(t, res.OK(), "failures: %v", res.Failures)
	assert.Equal(t, 14, res.Total)
	assert.Contains(t, out.String(), "You got 14/14 tests correct.")
}

// skewedIDs returns ids off by one.
type skewedIDs struct{ service.Matcher }

func (s skewedIDs) Submit(o orderbook.Order) (orderbook.OrderID, error) {
	id, err := s.Matcher.Submit(o)
	return id + 1, err
}

// wrongPrice reports every execution one tick high.
type wrongPrice struct{ service.Matcher }

func (w wrongPrice) OnExecution(fn func(orderbook.Execution)) {
	w.Matcher.OnExecution(func(e orderbook.Execution) {
		e.Price++
		fn(e)
	})
}

// chatty reports every execution many times over.
type chatty struct{ service.Matcher }

func (c chatty) OnExecution(fn func(orderbook.Execution)) {
	c.Matcher.OnExecution(func(e orderbook.Execution) {
		for i := 0; i < MaxReports; i++ {
			fn(e)
		}
	})
}

// ignoresCancel never cancels anything.
type ignoresCancel struct{ service.Matcher }

func (ignoresCancel) Cancel(orderbook.OrderID) {}

func TestRunner_DetectsBrokenMatchers(t *testing.T) {
	cases := []struct {
		name    string
		factory Factory
		passed  int
		message string
	}{
		{
			name:    "skewed ids",
			factory: func() service.Matcher { return skewedIDs{service.NewEngine()} },
			passed:  0,
			message: "orderid returned was 2, should have been 1.",
		},
		{
			name:    "wrong price",
			factory: func() service.Matcher { return wrongPrice{service.NewEngine()} },
			passed:  3, // only scenarios without executions
			message: "should have been",
		},
		{
			name:    "overflow",
			factory: func() service.Matcher { return chatty{service.NewEngine()} },
			passed:  3,
			message: "too many executions, test array overflow",
		},
		{
			name:    "cancel ignored",
			factory: func() service.Matcher { return ignoresCancel{service.NewEngine()} },
			passed:  11,
			message: "execution called",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var out bytes.Buffer
			res := NewRunner(tc.factory, WithOutput(&out)).Run(QuantCup())

			assert.False(t, res.OK())
			assert.Equal(t, tc.passed, res.Passed)
			require.NotEmpty(t, res.Failures)
			assert.Contains(t, res.Failures[0].Err.Error(), tc.message)
			assert.Contains(t, out.String(), "failed.")
		})
	}
}

func TestRunner_ReportsRejectedOrder(t *testing.T) {
	sc := Scenario{
		Name:   "zero size",
		Orders: []Order{{Symbol: "JPM", Trader: "MAX", Side: orderbook.Buy, Price: 101, Size: 0}},
	}

	res := NewRunner(engineFactory).Run([]Scenario{sc})

	require.Len(t, res.Failures, 1)
	assert.ErrorIs(t, res.Failures[0].Err, orderbook.ErrInvalidSize)
}

func TestRunner_SeparateSymbolsDoNotTrade(t *testing.T) {
	sc := Scenario{
		Name: "two symbols",
		Orders: []Order{
			{Symbol: "JPM", Trader: "MAX", Side: orderbook.Sell, Price: 101, Size: 10},
			{Symbol: "IBM", Trader: "XAM", Side: orderbook.Buy, Price: 101, Size: 10},
			{Symbol: "IBM", Trader: "MAX", Side: orderbook.Sell, Price: 100, Size: 10},
		},
		Expect: []Report{
			{Symbol: "IBM", Trader: "XAM", Side: orderbook.Buy, Price: 101, Size: 10},
			{Symbol: "IBM", Trader: "MAX", Side: orderbook.Sell, Price: 101, Size: 10},
		},
	}

	res := NewRunner(engineFactory).Run([]Scenario{sc})
	assert.True(t, res.OK(), "failures: %v", res.Failures)
}
