// Package wire encodes executions in protobuf wire format for the
// execution topic. The layout matches this message:
//
//	message Execution {
//	  uint32 symbol      = 1;
//	  uint32 buyer       = 2;
//	  uint32 seller      = 3;
//	  uint32 price       = 4;
//	  uint64 size        = 5;
//	  string symbol_name = 6;
//	  string buyer_name  = 7;
//	  string seller_name = 8;
//	}
//
// The numeric ids are interned per process run and only the names are
// stable across restarts; consumers should key on the names. Zero-valued
// fields are omitted, as proto3 does. Unknown fields are skipped on decode.
package wire

import (
	"math"

	"github.com/pkg/errors"
	"google.golang.org/protobuf/encoding/protowire"

	"matchbook/domain/orderbook"
)

const (
	fieldSymbol     protowire.Number = 1
	fieldBuyer      protowire.Number = 2
	fieldSeller     protowire.Number = 3
	fieldPrice      protowire.Number = 4
	fieldSize       protowire.Number = 5
	fieldSymbolName protowire.Number = 6
	fieldBuyerName  protowire.Number = 7
	fieldSellerName protowire.Number = 8
)

var ErrMalformed = errors.New("wire: malformed execution")

// Execution is an engine execution plus the names its ids stood for when
// it was emitted.
type Execution struct {
	orderbook.Execution
	SymbolName string
	BuyerName  string
	SellerName string
}

// Names resolves an interned id back to its name.
type Names interface {
	Name(id uint32) (string, bool)
}

// Named attaches symbol and trader names to e. Ids missing from the tables
// leave the name empty.
func Named(e orderbook.Execution, symbols, traders Names) Execution {
	out := Execution{Execution: e}
	out.SymbolName, _ = symbols.Name(uint32(e.Symbol))
	out.BuyerName, _ = traders.Name(uint32(e.Buyer))
	out.SellerName, _ = traders.Name(uint32(e.Seller))
	return out
}

// AppendExecution appends the encoding of e to b.
func AppendExecution(b []byte, e Execution) []byte {
	b = appendVarint(b, fieldSymbol, uint64(e.Symbol))
	b = appendVarint(b, fieldBuyer, uint64(e.Buyer))
	b = appendVarint(b, fieldSeller, uint64(e.Seller))
	b = appendVarint(b, fieldPrice, uint64(e.Price))
	b = appendVarint(b, fieldSize, uint64(e.Size))
	b = appendString(b, fieldSymbolName, e.SymbolName)
	b = appendString(b, fieldBuyerName, e.BuyerName)
	b = appendString(b, fieldSellerName, e.SellerName)
	return b
}

func EncodeExecution(e Execution) []byte {
	n := 24 + len(e.SymbolName) + len(e.BuyerName) + len(e.SellerName)
	return AppendExecution(make([]byte, 0, n), e)
}

func appendVarint(b []byte, num protowire.Number, v uint64) []byte {
	if v == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}

func appendString(b []byte, num protowire.Number, s string) []byte {
	if s == "" {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, s)
}

func malformed(n int) error {
	return errors.Wrapf(ErrMalformed, "%v", protowire.ParseError(n))
}

// DecodeExecution parses an execution produced by EncodeExecution.
func DecodeExecution(b []byte) (Execution, error) {
	var e Execution
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return e, malformed(n)
		}
		b = b[n:]

		switch {
		case typ == protowire.VarintType && num >= fieldSymbol && num <= fieldSize:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return e, malformed(n)
			}
			b = b[n:]
			if err := e.setVarint(num, v); err != nil {
				return e, err
			}

		case typ == protowire.BytesType && num >= fieldSymbolName && num <= fieldSellerName:
			s, n := protowire.ConsumeString(b)
			if n < 0 {
				return e, malformed(n)
			}
			b = b[n:]
			switch num {
			case fieldSymbolName:
				e.SymbolName = s
			case fieldBuyerName:
				e.BuyerName = s
			case fieldSellerName:
				e.SellerName = s
			}

		default:
			n = protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return e, malformed(n)
			}
			b = b[n:]
		}
	}
	return e, nil
}

func (e *Execution) setVarint(num protowire.Number, v uint64) error {
	switch num {
	case fieldSymbol:
		if v > math.MaxUint32 {
			return errors.Wrapf(ErrMalformed, "symbol %d out of range", v)
		}
		e.Symbol = orderbook.Symbol(v)
	case fieldBuyer:
		if v > math.MaxUint32 {
			return errors.Wrapf(ErrMalformed, "buyer %d out of range", v)
		}
		e.Buyer = orderbook.Trader(v)
	case fieldSeller:
		if v > math.MaxUint32 {
			return errors.Wrapf(ErrMalformed, "seller %d out of range", v)
		}
		e.Seller = orderbook.Trader(v)
	case fieldPrice:
		if v > uint64(orderbook.MaxPrice) {
			return errors.Wrapf(ErrMalformed, "price %d out of range", v)
		}
		e.Price = orderbook.Price(v)
	case fieldSize:
		e.Size = orderbook.Size(v)
	}
	return nil
}
