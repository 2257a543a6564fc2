package kafka

import (
	"encoding/json"
	"strings"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"matchbook/domain/orderbook"
	"matchbook/infra/feed"
)

// commandMessage is the JSON layout of the order topic:
//
//	{"type":"limit","symbol":"JPM","trader":"MAX","side":"buy","price":"1.01","size":25}
//	{"type":"cancel","orderID":3}
type commandMessage struct {
	Type    string          `json:"type"`
	Symbol  string          `json:"symbol"`
	Trader  string          `json:"trader"`
	Side    string          `json:"side"`
	Price   decimal.Decimal `json:"price"`
	Size    uint64          `json:"size"`
	OrderID uint64          `json:"orderID"`
}

// DecodeCommand parses one order-topic message.
func DecodeCommand(b []byte) (feed.Command, error) {
	var m commandMessage
	if err := json.Unmarshal(b, &m); err != nil {
		return feed.Command{}, errors.Wrap(err, "kafka: decode command")
	}

	switch strings.ToLower(m.Type) {
	case "limit":
		side, err := feed.ParseSide(m.Side)
		if err != nil {
			return feed.Command{}, err
		}
		price, err := feed.PriceFromDecimal(m.Price)
		if err != nil {
			return feed.Command{}, err
		}
		if m.Symbol == "" || m.Trader == "" {
			return feed.Command{}, errors.New("kafka: limit command needs symbol and trader")
		}
		if m.Size == 0 {
			return feed.Command{}, errors.WithStack(orderbook.ErrInvalidSize)
		}
		return feed.Command{
			Type: feed.CommandLimit,
			Order: feed.Record{
				Symbol: m.Symbol,
				Trader: m.Trader,
				Side:   side,
				Price:  price,
				Size:   orderbook.Size(m.Size),
			},
		}, nil
	case "cancel":
		if m.OrderID == 0 {
			return feed.Command{}, errors.New("kafka: cancel command needs orderID")
		}
		return feed.Command{Type: feed.CommandCancel, OrderID: orderbook.OrderID(m.OrderID)}, nil
	default:
		return feed.Command{}, errors.Errorf("kafka: unknown command type %q", m.Type)
	}
}
