package service

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"matchbook/domain/orderbook"
)

func TestLocked_ConcurrentSubmitsKeepIDsUnique(t *testing.T) {
	e := NewEngine()
	l := NewLocked(e)

	var (
		mu    sync.Mutex
		execs int
	)
	l.OnExecution(func(orderbook.Execution) {
		mu.Lock()
		execs++
		mu.Unlock()
	})

	const workers, perWorker = 8, 250
	ids := make(chan orderbook.OrderID, workers*perWorker)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			side := orderbook.Side(w % 2)
			for i := 0; i < perWorker; i++ {
				id, err := l.Submit(orderbook.Order{Symbol: 1, Trader: orderbook.Trader(w), Side: side, Price: 100, Size: 1})
				if err != nil {
					t.Error(err)
					return
				}
				ids <- id
			}
		}(w)
	}
	wg.Wait()
	close(ids)

	seen := make(map[orderbook.OrderID]bool)
	for id := range ids {
		assert.False(t, seen[id], "duplicate id %d", id)
		seen[id] = true
	}
	assert.Len(t, seen, workers*perWorker)

	l.Do(func(m Matcher) {
		eng := m.(*Engine)
		assert.False(t, eng.Crossed())
		// equal buy and sell volume at one price nets out completely
		assert.Zero(t, eng.Live())
	})
	assert.Equal(t, workers*perWorker/2, execs)
}

func TestLocked_Cancel(t *testing.T) {
	e := NewEngine()
	l := NewLocked(e)

	id, err := l.Submit(orderbook.Order{Symbol: 1, Side: orderbook.Buy, Price: 100, Size: 5})
	require.NoError(t, err)
	l.Cancel(id)

	assert.Zero(t, e.Live())
}

func TestTee_FansOutInOrder(t *testing.T) {
	var calls []string
	h := Tee(
		func(orderbook.Execution) { calls = append(calls, "a") },
		nil,
		func(orderbook.Execution) { calls = append(calls, "b") },
	)

	h(orderbook.Execution{})
	h(orderbook.Execution{})

	assert.Equal(t, []string{"a", "b", "a", "b"}, calls)
}
