package service

import (
	"context"
	"io"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"matchbook/domain/orderbook"
	"matchbook/infra/feed"
	"matchbook/infra/intern"
)

// RecordSource yields limit orders until io.EOF.
type RecordSource interface {
	Next() (feed.Record, error)
}

// CommandSource yields commands until ctx is done or the source fails.
type CommandSource interface {
	ReadCommand(ctx context.Context) (feed.Command, error)
}

// Gateway resolves feed names to interned ids and forwards to a Matcher.
type Gateway struct {
	m       Matcher
	symbols *intern.Table
	traders *intern.Table
	log     *zap.Logger
}

func NewGateway(m Matcher, symbols, traders *intern.Table, log *zap.Logger) *Gateway {
	if log == nil {
		log = zap.NewNop()
	}
	return &Gateway{m: m, symbols: symbols, traders: traders, log: log.Named("gateway")}
}

func (g *Gateway) Submit(r feed.Record) (orderbook.OrderID, error) {
	return g.m.Submit(orderbook.Order{
		Symbol: orderbook.Symbol(g.symbols.ID(r.Symbol)),
		Trader: orderbook.Trader(g.traders.ID(r.Trader)),
		Side:   r.Side,
		Price:  r.Price,
		Size:   r.Size,
	})
}

func (g *Gateway) Cancel(id orderbook.OrderID) { g.m.Cancel(id) }

// Apply executes one command.
func (g *Gateway) Apply(c feed.Command) (orderbook.OrderID, error) {
	switch c.Type {
	case feed.CommandLimit:
		return g.Submit(c.Order)
	case feed.CommandCancel:
		g.Cancel(c.OrderID)
		return c.OrderID, nil
	default:
		return 0, errors.Errorf("gateway: unknown command type %d", c.Type)
	}
}

// Load submits every record from src and returns how many were accepted.
// A rejected record is logged and skipped; a read error stops the load.
func (g *Gateway) Load(ctx context.Context, src RecordSource) (int, error) {
	accepted := 0
	for {
		if err := ctx.Err(); err != nil {
			return accepted, err
		}
		rec, err := src.Next()
		if err == io.EOF {
			return accepted, nil
		}
		if err != nil {
			return accepted, errors.Wrap(err, "gateway: load")
		}

		id, err := g.Submit(rec)
		if err != nil {
			g.log.Warn("order rejected", zap.Error(err), zap.String("symbol", rec.Symbol), zap.String("trader", rec.Trader))
			continue
		}
		accepted++
		g.log.Debug("order added", zap.Uint64("id", uint64(id)))
	}
}

// Consume applies commands from src until ctx is cancelled. It returns nil
// on cancellation and the source's error otherwise.
func (g *Gateway) Consume(ctx context.Context, src CommandSource) error {
	for {
		cmd, err := src.ReadCommand(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return errors.Wrap(err, "gateway: consume")
		}

		id, err := g.Apply(cmd)
		if err != nil {
			g.log.Warn("command rejected", zap.Stringer("type", cmd.Type), zap.Error(err))
			continue
		}
		g.log.Debug("command applied", zap.Stringer("type", cmd.Type), zap.Uint64("id", uint64(id)))
	}
}
