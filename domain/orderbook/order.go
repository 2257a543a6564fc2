package orderbook

import (
	"fmt"

	"github.com/pkg/errors"
)

type Side uint8

// Price is expressed in ticks of 1/100 of a currency unit.
type Price uint16

type Size uint64

type OrderID uint64

// Symbol and Trader are interned identities. Mapping names to them is the
// caller's job.
type (
	Symbol uint32
	Trader uint32
)

const (
	Buy Side = iota
	Sell
)

const (
	MinPrice Price = 1
	MaxPrice Price = 65535
)

var (
	ErrInvalidSide  = errors.New("side must be buy or sell")
	ErrInvalidPrice = errors.New("price must be within 1..65535 ticks")
	ErrInvalidSize  = errors.New("size must be positive")
)

func (s Side) String() string {
	switch s {
	case Buy:
		return "buy"
	case Sell:
		return "sell"
	default:
		return fmt.Sprintf("side(%d)", uint8(s))
	}
}

// Opposite returns the side an order of s matches against.
func (s Side) Opposite() Side {
	if s == Buy {
		return Sell
	}
	return Buy
}

// Order is a limit order request. It is never mutated by the book.
type Order struct {
	Symbol Symbol
	Trader Trader
	Side   Side
	Price  Price
	Size   Size
}

// Validate reports the first reason o cannot be submitted.
func (o Order) Validate() error {
	if o.Side != Buy && o.Side != Sell {
		return errors.Wrapf(ErrInvalidSide, "got %d", uint8(o.Side))
	}
	if o.Price < MinPrice {
		return errors.Wrapf(ErrInvalidPrice, "got %d", o.Price)
	}
	if o.Size == 0 {
		return ErrInvalidSize
	}
	return nil
}

// Crosses reports whether an incoming order at o.Price accepts a resting quote at p.
func (o Order) Crosses(p Price) bool {
	if o.Side == Buy {
		return o.Price >= p
	}
	return o.Price <= p
}

// RestingOrder is an order sitting on the book. It is owned by its price
// level until it is fully filled or cancelled.
type RestingOrder struct {
	ID        OrderID
	Symbol    Symbol
	Trader    Trader
	Side      Side
	Price     Price
	Size      Size // original size
	Remaining Size
	Seq       uint64 // insertion sequence within the book

	level *PriceLevel
	next  *RestingOrder
	prev  *RestingOrder
}

// Reset clears o for reuse by a pool.
func (o *RestingOrder) Reset() { *o = RestingOrder{} }

func (o *RestingOrder) Filled() Size { return o.Size - o.Remaining }

// Resting reports whether o is still linked into a price level.
func (o *RestingOrder) Resting() bool { return o.level != nil }

// Next walks a level front to back.
func (o *RestingOrder) Next() *RestingOrder { return o.next }

// Execution is one trade between an incoming and a resting order.
type Execution struct {
	Symbol Symbol
	Buyer  Trader
	Seller Trader
	Price  Price
	Size   Size
}

func (e Execution) String() string {
	return fmt.Sprintf("{symbol: %d, buyer: %d, seller: %d, price: %d, size: %d}",
		e.Symbol, e.Buyer, e.Seller, e.Price, e.Size)
}
