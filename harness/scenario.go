// Package harness is a black-box conformance runner for matching engines.
// It drives a Matcher only through Submit, Cancel and OnExecution, and
// judges it only by the ids it returns and the executions it reports.
package harness

import "matchbook/domain/orderbook"

// Order is a limit order with human-readable names.
type Order struct {
	Symbol string
	Trader string
	Side   orderbook.Side
	Price  orderbook.Price
	Size   orderbook.Size
}

// Report is one side of an execution. Every execution produces a buy-side
// report followed by a sell-side report.
type Report struct {
	Symbol string
	Trader string
	Side   orderbook.Side
	Price  orderbook.Price
	Size   orderbook.Size
}

// Scenario feeds Orders, then Cancels, then After, into a fresh matcher
// and expects Expect as the complete report stream. Reports are compared in
// pairs; the two reports of a pair may arrive in either order.
type Scenario struct {
	Name    string
	Orders  []Order
	Cancels []orderbook.OrderID
	After   []Order
	Expect  []Report
}

var (
	ask101x100 = Order{"JPM", "MAX", orderbook.Sell, 101, 100}
	bid101x100 = Order{"JPM", "MAX", orderbook.Buy, 101, 100}
	ask101x50  = Order{"JPM", "MAX", orderbook.Sell, 101, 50}
	bid101x50  = Order{"JPM", "MAX", orderbook.Buy, 101, 50}
	ask101x25  = Order{"JPM", "MAX", orderbook.Sell, 101, 25}
	bid101x25  = Order{"JPM", "MAX", orderbook.Buy, 101, 25}
	bid101x25x = Order{"JPM", "XAM", orderbook.Buy, 101, 25}

	sold101x100   = Report{"JPM", "MAX", orderbook.Sell, 101, 100}
	bought101x100 = Report{"JPM", "MAX", orderbook.Buy, 101, 100}
	sold101x50    = Report{"JPM", "MAX", orderbook.Sell, 101, 50}
	bought101x50  = Report{"JPM", "MAX", orderbook.Buy, 101, 50}
	sold101x25    = Report{"JPM", "MAX", orderbook.Sell, 101, 25}
	bought101x25  = Report{"JPM", "MAX", orderbook.Buy, 101, 25}
	bought101x25x = Report{"JPM", "XAM", orderbook.Buy, 101, 25}
)

// QuantCup returns the fourteen standard conformance scenarios.
func QuantCup() []Scenario {
	return []Scenario{
		{Name: "ask", Orders: []Order{ask101x100}},
		{Name: "bid", Orders: []Order{bid101x100}},
		{
			Name:   "execution",
			Orders: []Order{ask101x100, bid101x100},
			Expect: []Report{sold101x100, bought101x100},
		},
		{
			Name:   "reordering ask first",
			Orders: []Order{ask101x100, bid101x100},
			Expect: []Report{bought101x100, sold101x100},
		},
		{
			Name:   "reordering bid first",
			Orders: []Order{bid101x100, ask101x100},
			Expect: []Report{sold101x100, bought101x100},
		},
		{
			Name:   "reordering bid first swapped",
			Orders: []Order{bid101x100, ask101x100},
			Expect: []Report{bought101x100, sold101x100},
		},
		{
			Name:   "partial fill of resting ask",
			Orders: []Order{ask101x100, bid101x50},
			Expect: []Report{sold101x50, bought101x50},
		},
		{
			Name:   "partial fill of incoming bid",
			Orders: []Order{ask101x50, bid101x100},
			Expect: []Report{sold101x50, bought101x50},
		},
		{
			Name:   "incremental over fill of ask",
			Orders: []Order{ask101x100, bid101x25, bid101x25, bid101x25, bid101x25, bid101x25},
			Expect: repeat(4, sold101x25, bought101x25),
		},
		{
			Name:   "incremental over fill of bid",
			Orders: []Order{bid101x100, ask101x25, ask101x25, ask101x25, ask101x25, ask101x25},
			Expect: repeat(4, sold101x25, bought101x25),
		},
		{
			Name:   "queue position",
			Orders: []Order{bid101x25x, bid101x25, ask101x25},
			Expect: []Report{sold101x25, bought101x25x},
		},
		{
			Name:    "cancel so no execution",
			Orders:  []Order{bid101x25},
			Cancels: []orderbook.OrderID{1},
			After:   []Order{ask101x25},
		},
		{
			Name:    "cancel from front of queue",
			Orders:  []Order{bid101x25x, bid101x25},
			Cancels: []orderbook.OrderID{1},
			After:   []Order{ask101x25},
			Expect:  []Report{sold101x25, bought101x25},
		},
		{
			Name:    "cancel front, back, out of order then partial execution",
			Orders:  []Order{bid101x100, bid101x25x, bid101x25x, bid101x50},
			Cancels: []orderbook.OrderID{1, 4, 3},
			After:   []Order{ask101x50},
			Expect:  []Report{bought101x25x, sold101x25},
		},
	}
}

func repeat(n int, pair ...Report) []Report {
	out := make([]Report, 0, n*len(pair))
	for i := 0; i < n; i++ {
		out = append(out, pair...)
	}
	return out
}
