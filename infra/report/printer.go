// Package report prints executions as one human-readable line each.
package report

import (
	"fmt"
	"io"
	"strconv"
	"sync"

	"matchbook/domain/orderbook"
	"matchbook/infra/feed"
	"matchbook/infra/intern"
)

// Printer writes lines of the form
//
//	ID1 bought 25 SYMs for 1.01 from ID0
//
// Ids without a name in the tables print as #<id>.
type Printer struct {
	mu      sync.Mutex
	w       io.Writer
	symbols *intern.Table
	traders *intern.Table
}

func NewPrinter(w io.Writer, symbols, traders *intern.Table) *Printer {
	return &Printer{w: w, symbols: symbols, traders: traders}
}

// Print is an execution handler.
func (p *Printer) Print(e orderbook.Execution) {
	line := fmt.Sprintf("%s bought %d %ss for %s from %s\n",
		name(p.traders, uint32(e.Buyer)),
		e.Size,
		name(p.symbols, uint32(e.Symbol)),
		feed.FormatPrice(e.Price),
		name(p.traders, uint32(e.Seller)),
	)

	p.mu.Lock()
	defer p.mu.Unlock()
	_, _ = io.WriteString(p.w, line)
}

func name(t *intern.Table, id uint32) string {
	if t != nil {
		if s, ok := t.Name(id); ok {
			return s
		}
	}
	return "#" + strconv.FormatUint(uint64(id), 10)
}
