package outbox

import (
	"sync"

	"matchbook/domain/orderbook"
	"matchbook/infra/wire"
)

// Appender is the part of Outbox a Recorder writes to.
type Appender interface {
	AppendExecution(e wire.Execution) (uint64, error)
}

// Recorder is an execution handler that writes every execution to an
// outbox with its names attached.
//
// The outbox stream must have no holes: once an append fails, nothing
// further is recorded, fail is called exactly once and Err reports the
// failure. The caller is expected to stop feeding orders.
type Recorder struct {
	out     Appender
	symbols wire.Names
	traders wire.Names
	fail    func(error)

	mu  sync.Mutex
	err error
}

func NewRecorder(out Appender, symbols, traders wire.Names, fail func(error)) *Recorder {
	if fail == nil {
		fail = func(error) {}
	}
	return &Recorder{out: out, symbols: symbols, traders: traders, fail: fail}
}

// Record appends e. It is safe to use as an engine execution handler.
func (r *Recorder) Record(e orderbook.Execution) {
	r.mu.Lock()
	if r.err != nil {
		r.mu.Unlock()
		return
	}
	_, err := r.out.AppendExecution(wire.Named(e, r.symbols, r.traders))
	if err == nil {
		r.mu.Unlock()
		return
	}
	r.err = err
	r.mu.Unlock()

	r.fail(err)
}

// Err returns the first append failure, if any.
func (r *Recorder) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}
