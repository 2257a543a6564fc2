package harness

import (
	"fmt"
	"io"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"matchbook/domain/orderbook"
	"matchbook/infra/intern"
	"matchbook/service"
)

// MaxReports bounds the reports captured per scenario. A matcher that
// reports more has run away; the scenario fails without comparing.
const MaxReports = 100

const rule = "--------------------------------------\n"

// Factory builds a fresh matcher for each scenario.
type Factory func() service.Matcher

// Result is the tally of a run.
type Result struct {
	Passed   int
	Total    int
	Failures []Failure
}

type Failure struct {
	Number   int
	Scenario string
	Err      error
}

func (r Result) OK() bool { return r.Passed == r.Total }

// Runner feeds scenarios to matchers built by a Factory and writes a
// human-readable transcript to its output.
type Runner struct {
	factory Factory
	out     io.Writer
	log     *zap.Logger
}

type RunnerOption func(*Runner)

func WithOutput(w io.Writer) RunnerOption {
	return func(r *Runner) { r.out = w }
}

func WithLogger(l *zap.Logger) RunnerOption {
	return func(r *Runner) { r.log = l }
}

func NewRunner(f Factory, opts ...RunnerOption) *Runner {
	r := &Runner{
		factory: f,
		out:     io.Discard,
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes every scenario against its own fresh matcher.
func (r *Runner) Run(scenarios []Scenario) Result {
	fmt.Fprint(r.out, "ECN Matching Engine Autotester Running\n"+rule)

	var res Result
	for _, sc := range scenarios {
		res.Total++
		err := r.runOne(sc)
		if err == nil {
			res.Passed++
			r.log.Debug("scenario passed", zap.Int("number", res.Total), zap.String("scenario", sc.Name))
			continue
		}
		res.Failures = append(res.Failures, Failure{Number: res.Total, Scenario: sc.Name, Err: err})
		r.log.Info("scenario failed",
			zap.Int("number", res.Total),
			zap.String("scenario", sc.Name),
			zap.Error(err),
		)
		fmt.Fprintf(r.out, "%s\ntest %d failed.\n\n", err, res.Total)
	}

	fmt.Fprint(r.out, rule)
	fmt.Fprintf(r.out, "You got %d/%d tests correct.\n", res.Passed, res.Total)
	return res
}

// run is the per-scenario state. Nothing is shared between scenarios.
type run struct {
	m       service.Matcher
	symbols *intern.Table
	traders *intern.Table

	nextID   orderbook.OrderID
	reports  []Report
	count    int
	overflow bool
}

func (r *Runner) runOne(sc Scenario) error {
	st := &run{
		m:       r.factory(),
		symbols: intern.NewTable(),
		traders: intern.NewTable(),
		reports: make([]Report, 0, MaxReports),
	}
	st.m.OnExecution(st.record)

	if err := st.feedOrders(sc.Orders); err != nil {
		return err
	}
	for _, id := range sc.Cancels {
		st.m.Cancel(id)
	}
	if err := st.feedOrders(sc.After); err != nil {
		return err
	}
	if err := st.checkCount(len(sc.Expect)); err != nil {
		return err
	}
	return st.checkReports(sc.Expect)
}

func (st *run) record(e orderbook.Execution) {
	symbol, _ := st.symbols.Name(uint32(e.Symbol))
	buyer, _ := st.traders.Name(uint32(e.Buyer))
	seller, _ := st.traders.Name(uint32(e.Seller))

	st.add(Report{Symbol: symbol, Trader: buyer, Side: orderbook.Buy, Price: e.Price, Size: e.Size})
	st.add(Report{Symbol: symbol, Trader: seller, Side: orderbook.Sell, Price: e.Price, Size: e.Size})
}

func (st *run) add(rep Report) {
	st.count++
	if st.overflow || len(st.reports) == MaxReports {
		st.overflow = true
		return
	}
	st.reports = append(st.reports, rep)
}

func (st *run) feedOrders(orders []Order) error {
	for _, o := range orders {
		id, err := st.m.Submit(orderbook.Order{
			Symbol: orderbook.Symbol(st.symbols.ID(o.Symbol)),
			Trader: orderbook.Trader(st.traders.ID(o.Trader)),
			Side:   o.Side,
			Price:  o.Price,
			Size:   o.Size,
		})
		if err != nil {
			return errors.Wrapf(err, "order %d rejected", st.nextID+1)
		}
		st.nextID++
		if id != st.nextID {
			return errors.Errorf("orderid returned was %d, should have been %d.", id, st.nextID)
		}
	}
	return nil
}

func (st *run) checkCount(want int) error {
	if st.overflow {
		return errors.New("too many executions, test array overflow")
	}
	if st.count != want {
		return errors.Errorf("execution called %d times, should have been %d.", st.count, want)
	}
	return nil
}

// checkReports compares pairwise; each expected pair matches in either order.
func (st *run) checkReports(want []Report) error {
	for i := 0; i+1 < len(want); i += 2 {
		got0, got1 := st.reports[i], st.reports[i+1]
		if (got0 == want[i] && got1 == want[i+1]) || (got0 == want[i+1] && got1 == want[i]) {
			continue
		}
		return errors.Errorf("executions #%d and #%d,\n%s,\n%s\nshould have been\n%s,\n%s.\nStopped there.",
			i, i+1, got0, got1, want[i], want[i+1])
	}
	return nil
}

func (r Report) String() string {
	side := 0
	if r.Side == orderbook.Sell {
		side = 1
	}
	return fmt.Sprintf("{symbol=%s, trader=%s, side=%d, price=%d, size=%d}",
		r.Symbol, r.Trader, side, r.Price, r.Size)
}
