package feed

import "matchbook/domain/orderbook"

type CommandType uint8

const (
	CommandLimit CommandType = iota + 1
	CommandCancel
)

func (t CommandType) String() string {
	switch t {
	case CommandLimit:
		return "limit"
	case CommandCancel:
		return "cancel"
	default:
		return "unknown"
	}
}

// Command is a submit or cancel read from a feed.
type Command struct {
	Type    CommandType
	Order   Record            // CommandLimit
	OrderID orderbook.OrderID // CommandCancel
}
