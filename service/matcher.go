package service

import (
	"sync"

	"matchbook/domain/orderbook"
)

// Matcher is the fixed method set every matching engine exposes. The
// conformance harness and the feeds are written against it.
type Matcher interface {
	// Submit books a limit order and returns its id. Executions it causes
	// are delivered to the registered handler before Submit returns.
	Submit(o orderbook.Order) (orderbook.OrderID, error)
	// Cancel removes a resting order. Unknown ids are ignored.
	Cancel(id orderbook.OrderID)
	// OnExecution registers the execution handler, replacing any previous one.
	OnExecution(fn func(orderbook.Execution))
}

// Locked serializes every call on the wrapped Matcher. Handlers run while
// the lock is held and must not call back into it.
type Locked struct {
	mu sync.Mutex
	m  Matcher
}

func NewLocked(m Matcher) *Locked {
	return &Locked{m: m}
}

func (l *Locked) Submit(o orderbook.Order) (orderbook.OrderID, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.m.Submit(o)
}

func (l *Locked) Cancel(id orderbook.OrderID) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.m.Cancel(id)
}

func (l *Locked) OnExecution(fn func(orderbook.Execution)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.m.OnExecution(fn)
}

// Do runs fn with exclusive access to the wrapped Matcher, for reads that
// must not interleave with writes.
func (l *Locked) Do(fn func(Matcher)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fn(l.m)
}

// Tee fans one execution out to several handlers, in argument order.
// nil handlers are skipped.
func Tee(handlers ...func(orderbook.Execution)) func(orderbook.Execution) {
	hs := make([]func(orderbook.Execution), 0, len(handlers))
	for _, h := range handlers {
		if h != nil {
			hs = append(hs, h)
		}
	}
	return func(e orderbook.Execution) {
		for _, h := range hs {
			h(e)
		}
	}
}
