// Package feed reads order records from external sources. Records carry
// names, not interned ids; the caller resolves them.
package feed

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"matchbook/domain/orderbook"
)

var ticksPerUnit = decimal.NewFromInt(100)

// Record is one limit order as it appears in a feed.
type Record struct {
	Symbol string
	Trader string
	Side   orderbook.Side
	Price  orderbook.Price
	Size   orderbook.Size
}

// PriceFromDecimal converts a currency amount to ticks. 1.01 is 101 ticks;
// amounts finer than one tick are rejected.
func PriceFromDecimal(d decimal.Decimal) (orderbook.Price, error) {
	ticks := d.Mul(ticksPerUnit)
	if !ticks.IsInteger() {
		return 0, errors.Wrapf(orderbook.ErrInvalidPrice, "%s is not a whole number of ticks", d)
	}
	if ticks.LessThan(decimal.NewFromInt(int64(orderbook.MinPrice))) ||
		ticks.GreaterThan(decimal.NewFromInt(int64(orderbook.MaxPrice))) {
		return 0, errors.Wrapf(orderbook.ErrInvalidPrice, "%s", d)
	}
	return orderbook.Price(ticks.IntPart()), nil
}

func ParsePrice(s string) (orderbook.Price, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return 0, errors.Wrapf(orderbook.ErrInvalidPrice, "parse %q", s)
	}
	return PriceFromDecimal(d)
}

// FormatPrice renders ticks as a currency amount with two decimals.
func FormatPrice(p orderbook.Price) string {
	return decimal.New(int64(p), -2).StringFixed(2)
}

// ParseSize accepts whole quantities, with or without a trailing ".0".
func ParseSize(s string) (orderbook.Size, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return 0, errors.Wrapf(orderbook.ErrInvalidSize, "parse %q", s)
	}
	if !d.IsInteger() || !d.IsPositive() {
		return 0, errors.Wrapf(orderbook.ErrInvalidSize, "%s", d)
	}
	if !d.BigInt().IsUint64() {
		return 0, errors.Wrapf(orderbook.ErrInvalidSize, "%s overflows", d)
	}
	return orderbook.Size(d.BigInt().Uint64()), nil
}

// ParseSide accepts the numeric form used by order files (0 buy, 1 sell)
// as well as the words buy/bid and sell/ask.
func ParseSide(s string) (orderbook.Side, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "0", "buy", "bid":
		return orderbook.Buy, nil
	case "1", "sell", "ask":
		return orderbook.Sell, nil
	default:
		return 0, errors.Wrapf(orderbook.ErrInvalidSide, "parse %q", s)
	}
}
