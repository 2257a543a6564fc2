package service

import (
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"matchbook/domain/orderbook"
	"matchbook/infra/memory"
	"matchbook/infra/sequence"
)

// DefaultCapacity bounds the number of orders resting across all books.
const DefaultCapacity = 1 << 20

// ErrCapacityExhausted is returned when an order would have to rest but
// every resting-order slot is in use. The book is left untouched.
var ErrCapacityExhausted = errors.New("resting order capacity exhausted")

var _ Matcher = (*Engine)(nil)

/*
Engine is the ONLY write entry point into the books.

Submit runs validate → capacity check → allocate id → cross → rest.
Cancel runs lookup → unlink → release. Neither blocks, and both complete
before returning.
*/
type Engine struct {
	books map[orderbook.Symbol]*orderbook.OrderBook
	index map[orderbook.OrderID]*orderbook.RestingOrder
	ids   *sequence.Sequencer
	pool  *memory.Pool[orderbook.RestingOrder]

	onExec func(orderbook.Execution)
	log    *zap.Logger
}

// Option configures an Engine.
type Option func(*options)

type options struct {
	capacity int
	log      *zap.Logger
}

// WithCapacity caps resting orders across all books. n <= 0 removes the cap.
func WithCapacity(n int) Option {
	return func(o *options) { o.capacity = n }
}

func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.log = l
		}
	}
}

// NewEngine returns an empty engine whose first order id is 1.
func NewEngine(opts ...Option) *Engine {
	o := options{
		capacity: DefaultCapacity,
		log:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	return &Engine{
		books: make(map[orderbook.Symbol]*orderbook.OrderBook),
		index: make(map[orderbook.OrderID]*orderbook.RestingOrder),
		ids:   sequence.New(0),
		pool: memory.NewPool(o.capacity, func() *orderbook.RestingOrder {
			return &orderbook.RestingOrder{}
		}),
		onExec: func(orderbook.Execution) {},
		log:    o.log.Named("engine"),
	}
}

//
// ──────────────────────────────────────────────────────────
// Commands
// ──────────────────────────────────────────────────────────
//

// OnExecution registers fn as the execution handler. nil discards executions.
func (e *Engine) OnExecution(fn func(orderbook.Execution)) {
	if fn == nil {
		fn = func(orderbook.Execution) {}
	}
	e.onExec = fn
}

// Submit books o and returns its id. Invalid orders, and orders that would
// rest without trading while the pool is full, are rejected without
// consuming an id or touching any book.
func (e *Engine) Submit(o orderbook.Order) (orderbook.OrderID, error) {
	if err := o.Validate(); err != nil {
		e.log.Warn("rejected order",
			zap.Error(err),
			zap.Uint32("symbol", uint32(o.Symbol)),
			zap.Uint32("trader", uint32(o.Trader)),
		)
		return 0, errors.Wrap(err, "submit")
	}

	book := e.books[o.Symbol]
	if e.pool.Full() && (book == nil || !book.Marketable(o)) {
		e.log.Warn("capacity exhausted",
			zap.Int("live", e.pool.Live()),
			zap.Int("limit", e.pool.Limit()),
		)
		return 0, errors.Wrapf(ErrCapacityExhausted, "submit: %d live orders", e.pool.Live())
	}
	if book == nil {
		book = orderbook.NewOrderBook(o.Symbol)
		e.books[o.Symbol] = book
	}

	id := orderbook.OrderID(e.ids.Next())

	remaining := book.Match(o, e.fill)
	if remaining == 0 {
		return id, nil
	}

	ro, ok := e.pool.Get()
	if !ok {
		// a marketable order frees the slot it rests in
		panic("service: resting order pool exhausted after capacity check")
	}
	*ro = orderbook.RestingOrder{
		ID:        id,
		Symbol:    o.Symbol,
		Trader:    o.Trader,
		Side:      o.Side,
		Price:     o.Price,
		Size:      o.Size,
		Remaining: remaining,
	}
	book.Rest(ro)
	e.index[id] = ro

	if e.log.Core().Enabled(zap.DebugLevel) {
		e.log.Debug("order resting",
			zap.Uint64("id", uint64(id)),
			zap.Stringer("side", o.Side),
			zap.Uint16("price", uint16(o.Price)),
			zap.Uint64("remaining", uint64(remaining)),
		)
	}
	return id, nil
}

// Cancel removes the resting order id. Filled, cancelled and never-issued
// ids are a no-op. Cancel never emits executions.
func (e *Engine) Cancel(id orderbook.OrderID) {
	ro, ok := e.index[id]
	if !ok {
		e.log.Debug("cancel of unknown order", zap.Uint64("id", uint64(id)))
		return
	}

	book := e.books[ro.Symbol]
	if book == nil || !book.Cancel(ro) {
		// index and books disagree; drop the stale entry
		e.log.Error("indexed order not on its book", zap.Uint64("id", uint64(id)))
		delete(e.index, id)
		return
	}
	e.release(ro)
}

// fill is called by the book once per match step, in order.
func (e *Engine) fill(f orderbook.Fill) {
	if f.Maker.Remaining == 0 {
		e.release(f.Maker)
	}
	e.onExec(f.Execution)
}

func (e *Engine) release(ro *orderbook.RestingOrder) {
	delete(e.index, ro.ID)
	ro.Reset()
	e.pool.Put(ro)
}
