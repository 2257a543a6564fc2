package orderbook

// Fill is one step of the crossing loop. Maker is the resting order that
// traded; it has already been unlinked when its remaining size reached zero.
type Fill struct {
	Execution
	Maker *RestingOrder
}

// OrderBook is single-writer and deterministic. It holds both sides of one
// symbol and is never left crossed between calls.
type OrderBook struct {
	Symbol Symbol
	Bids   *RBTree
	Asks   *RBTree

	seq    uint64
	orders int
}

func NewOrderBook(sym Symbol) *OrderBook {
	return &OrderBook{
		Symbol: sym,
		Bids:   NewRBTree(),
		Asks:   NewRBTree(),
	}
}

// Len is the number of resting orders on both sides.
func (b *OrderBook) Len() int { return b.orders }

func (b *OrderBook) side(s Side) *RBTree {
	if s == Buy {
		return b.Bids
	}
	return b.Asks
}

// best returns the best level on side s, nil when that side is empty.
func (b *OrderBook) best(s Side) *PriceLevel {
	if s == Buy {
		return b.Bids.MaxLevel()
	}
	return b.Asks.MinLevel()
}

func (b *OrderBook) BestBid() *PriceLevel { return b.best(Buy) }
func (b *OrderBook) BestAsk() *PriceLevel { return b.best(Sell) }

// Match crosses the incoming order against the opposite side, best price
// first and oldest order first within a price. It returns the size left
// over. fn is called once per fill, in order.
func (b *OrderBook) Match(o Order, fn func(Fill)) Size {
	remaining := o.Size
	opp := o.Side.Opposite()

	for remaining > 0 {
		lvl := b.best(opp)
		if lvl == nil || !o.Crosses(lvl.Price) {
			break
		}

		maker := lvl.Head()
		trade := min(remaining, maker.Remaining)
		remaining -= trade
		lvl.fill(maker, trade)

		exec := Execution{
			Symbol: b.Symbol,
			Price:  lvl.Price,
			Size:   trade,
		}
		if o.Side == Buy {
			exec.Buyer, exec.Seller = o.Trader, maker.Trader
		} else {
			exec.Buyer, exec.Seller = maker.Trader, o.Trader
		}

		if maker.Remaining == 0 {
			b.unlink(lvl, maker)
		}
		fn(Fill{Execution: exec, Maker: maker})
	}
	return remaining
}

// Marketable reports whether o would trade at least once on entry. A
// marketable order either fills completely or fully consumes the front
// resting order, so it never needs a net new resting slot.
func (b *OrderBook) Marketable(o Order) bool {
	lvl := b.best(o.Side.Opposite())
	return lvl != nil && o.Crosses(lvl.Price)
}

// Rest appends o to the back of its price level. o.Remaining must be positive.
func (b *OrderBook) Rest(o *RestingOrder) {
	b.seq++
	o.Seq = b.seq
	b.side(o.Side).UpsertLevel(o.Price).Enqueue(o)
	b.orders++
}

// Cancel unlinks a resting order. It reports false when o is not on this book.
func (b *OrderBook) Cancel(o *RestingOrder) bool {
	lvl := o.level
	if lvl == nil || o.Symbol != b.Symbol {
		return false
	}
	b.unlink(lvl, o)
	return true
}

func (b *OrderBook) unlink(lvl *PriceLevel, o *RestingOrder) {
	side := o.Side
	lvl.Remove(o)
	b.orders--
	if lvl.Empty() {
		b.side(side).DeleteLevel(lvl.Price)
	}
}

// Crossed reports whether the best bid meets or exceeds the best ask.
func (b *OrderBook) Crossed() bool {
	bid, ask := b.BestBid(), b.BestAsk()
	return bid != nil && ask != nil && bid.Price >= ask.Price
}

// BidsWalk visits bid levels best (highest) first.
func (b *OrderBook) BidsWalk(fn func(*PriceLevel) bool) {
	b.Bids.ForEachDescending(fn)
}

// AsksWalk visits ask levels best (lowest) first.
func (b *OrderBook) AsksWalk(fn func(*PriceLevel) bool) {
	b.Asks.ForEachAscending(fn)
}
