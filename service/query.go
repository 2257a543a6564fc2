package service

import "matchbook/domain/orderbook"

// OrderView is a read-only copy of a resting order.
type OrderView struct {
	ID        orderbook.OrderID
	Symbol    orderbook.Symbol
	Trader    orderbook.Trader
	Side      orderbook.Side
	Price     orderbook.Price
	Size      orderbook.Size
	Remaining orderbook.Size
}

// LevelView summarizes one price level.
type LevelView struct {
	Price  orderbook.Price
	Size   orderbook.Size
	Orders int
}

//
// ──────────────────────────────────────────────────────────
// Queries
// ──────────────────────────────────────────────────────────
//

// Resting returns the order id if it is still on a book.
func (e *Engine) Resting(id orderbook.OrderID) (OrderView, bool) {
	ro, ok := e.index[id]
	if !ok {
		return OrderView{}, false
	}
	return viewOf(ro), true
}

func (e *Engine) BestBid(sym orderbook.Symbol) (orderbook.Price, bool) {
	b := e.books[sym]
	if b == nil {
		return 0, false
	}
	return priceOf(b.BestBid())
}

func (e *Engine) BestAsk(sym orderbook.Symbol) (orderbook.Price, bool) {
	b := e.books[sym]
	if b == nil {
		return 0, false
	}
	return priceOf(b.BestAsk())
}

// Depth lists the levels on one side of sym, best price first.
func (e *Engine) Depth(sym orderbook.Symbol, side orderbook.Side) []LevelView {
	b := e.books[sym]
	if b == nil {
		return nil
	}

	var out []LevelView
	visit := func(lvl *orderbook.PriceLevel) bool {
		out = append(out, LevelView{Price: lvl.Price, Size: lvl.TotalSize, Orders: lvl.OrderCount})
		return true
	}
	if side == orderbook.Buy {
		b.BidsWalk(visit)
	} else {
		b.AsksWalk(visit)
	}
	return out
}

// Queue lists the orders resting at one price, front first.
func (e *Engine) Queue(sym orderbook.Symbol, side orderbook.Side, price orderbook.Price) []OrderView {
	b := e.books[sym]
	if b == nil {
		return nil
	}
	tree := b.Asks
	if side == orderbook.Buy {
		tree = b.Bids
	}
	lvl := tree.FindLevel(price)
	if lvl == nil {
		return nil
	}

	out := make([]OrderView, 0, lvl.OrderCount)
	for o := lvl.Head(); o != nil; o = o.Next() {
		out = append(out, viewOf(o))
	}
	return out
}

// Crossed reports whether any book has a bid at or above its ask. It is
// always false between calls.
func (e *Engine) Crossed() bool {
	for _, b := range e.books {
		if b.Crossed() {
			return true
		}
	}
	return false
}

// Live is the number of resting orders across all books.
func (e *Engine) Live() int { return len(e.index) }

// LastID is the most recently issued order id, 0 before the first submit.
func (e *Engine) LastID() orderbook.OrderID {
	return orderbook.OrderID(e.ids.Current())
}

func viewOf(o *orderbook.RestingOrder) OrderView {
	return OrderView{
		ID:        o.ID,
		Symbol:    o.Symbol,
		Trader:    o.Trader,
		Side:      o.Side,
		Price:     o.Price,
		Size:      o.Size,
		Remaining: o.Remaining,
	}
}

func priceOf(lvl *orderbook.PriceLevel) (orderbook.Price, bool) {
	if lvl == nil {
		return 0, false
	}
	return lvl.Price, true
}
