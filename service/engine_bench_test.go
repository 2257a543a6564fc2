package service

import (
	"testing"

	"matchbook/domain/orderbook"
)

// BenchmarkSubmit_Resting measures pure insertion across many price levels.
func BenchmarkSubmit_Resting(b *testing.B) {
	e := NewEngine(WithCapacity(0))

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = e.Submit(orderbook.Order{
			Symbol: 1,
			Side:   orderbook.Buy,
			Price:  orderbook.Price(1 + i%1000),
			Size:   10,
		})
	}
}

// BenchmarkSubmit_Crossing alternates a resting ask with a bid that takes it.
func BenchmarkSubmit_Crossing(b *testing.B) {
	e := NewEngine()

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = e.Submit(orderbook.Order{Symbol: 1, Trader: 1, Side: orderbook.Sell, Price: 100, Size: 10})
		_, _ = e.Submit(orderbook.Order{Symbol: 1, Trader: 2, Side: orderbook.Buy, Price: 100, Size: 10})
	}
}

// BenchmarkCancel_Deep cancels from the middle of a 65536-order book.
func BenchmarkCancel_Deep(b *testing.B) {
	const depth = 1 << 16

	e := NewEngine()
	for i := 0; i < depth; i++ {
		_, _ = e.Submit(orderbook.Order{Symbol: 1, Side: orderbook.Buy, Price: orderbook.Price(1 + i%500), Size: 1})
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		id, _ := e.Submit(orderbook.Order{Symbol: 1, Side: orderbook.Buy, Price: 250, Size: 1})
		e.Cancel(id)
	}
}
