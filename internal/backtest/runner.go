// Package backtest implements the sequential day-by-day backtest replay
// (C5): it walks the trading-day universe shared by the index, leveraged
// long ETF (LLE), and inverse ETF (IE) histories, evaluates the strategy
// engine once per day, rebalances an integer-share portfolio toward the
// engine's target allocation, and records a snapshot and any trade legs.
package backtest

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/whitelight/quantengine/internal/engine"
	"github.com/whitelight/quantengine/internal/metrics"
	"github.com/whitelight/quantengine/pkg/types"
)

// Result bundles everything produced by a completed (or empty) run.
type Result struct {
	Config         types.BacktestConfig
	Snapshots      []types.DailySnapshot
	Trades         []types.Trade
	Metrics        map[string]float64
	MonthlyReturns []metrics.MonthlyReturn
}

// Summary renders a human-readable console report in a banner-and-emoji
// reporting style.
func (r Result) Summary() string {
	var b strings.Builder
	bar := strings.Repeat("=", 60)
	fmt.Fprintf(&b, "%s\n📊 BACKTEST RESULT\n%s\n", bar, bar)
	fmt.Fprintf(&b, "Period:          %s -> %s\n", r.Config.StartDate.Format("2006-01-02"), r.Config.EndDate.Format("2006-01-02"))
	fmt.Fprintf(&b, "Initial capital: %s\n", r.Config.InitialCapital.StringFixed(2))
	fmt.Fprintf(&b, "Snapshots:       %d\n", len(r.Snapshots))
	fmt.Fprintf(&b, "Trades:          %d\n", len(r.Trades))
	if tr, ok := r.Metrics["total_return"]; ok {
		fmt.Fprintf(&b, "Total return:    %.2f%%\n", tr*100)
	}
	if sr, ok := r.Metrics["sharpe_ratio"]; ok {
		fmt.Fprintf(&b, "Sharpe:          %.2f\n", sr)
	}
	if dd, ok := r.Metrics["max_drawdown"]; ok {
		fmt.Fprintf(&b, "Max drawdown:    %.2f%%\n", dd*100)
	}
	fmt.Fprintln(&b, bar)
	return b.String()
}

// openPosition tracks a single instrument's cost basis while shares are
// held, letting the runner compute realized PnL and holding duration on the
// sell leg that closes it out.
type openPosition struct {
	entryDate  time.Time
	entryPrice float64
	shares     int64
}

// Runner owns the stateful engine; the open-position ledger is local to each
// Run call. A Runner must not be reused across independent backtests;
// construct a fresh one per run.
type Runner struct {
	engine     *engine.Engine
	cfg        types.BacktestConfig
	logger     zerolog.Logger
	lleSymbol  string
	ieSymbol   string
}

// New builds a runner for a single backtest with the given configuration
// and instrument symbols (used only for trade-record labeling).
func New(cfg types.BacktestConfig, lleSymbol, ieSymbol string) *Runner {
	return &Runner{
		engine:    engine.New(),
		cfg:       cfg,
		logger:    log.Logger,
		lleSymbol: lleSymbol,
		ieSymbol:  ieSymbol,
	}
}

// Run replays the three histories day by day across their shared trading
// calendar, intersected with [cfg.StartDate, cfg.EndDate].
func (r *Runner) Run(indexHist, lleHist, ieHist types.BarHistory) Result {
	dates := intersectDates(indexHist, lleHist, ieHist, r.cfg.StartDate, r.cfg.EndDate)
	if len(dates) == 0 {
		return Result{Config: r.cfg, Metrics: map[string]float64{}}
	}

	lleByDate := lleHist.IndexByDate()
	ieByDate := ieHist.IndexByDate()

	cash := r.cfg.InitialCapital
	var lleShares, ieShares int64
	positions := map[string]*openPosition{}

	var snapshots []types.DailySnapshot
	var trades []types.Trade

	for _, day := range dates {
		lleBar, ok := lleByDate[day]
		if !ok {
			continue
		}
		ieBar, ok := ieByDate[day]
		if !ok {
			continue
		}

		historySlice := indexHist.Slice(day)
		if historySlice.Len() < r.cfg.WarmupDays {
			snapshots = append(snapshots, r.snapshot(day, types.TargetAllocation{}, cash, lleShares, ieShares, lleBar.Close, ieBar.Close, 0))
			continue
		}

		alloc, err := r.safeEvaluate(historySlice)
		if err != nil {
			r.logger.Error().Err(err).Time("day", day).Msg("engine evaluation failed, holding positions")
			snapshots = append(snapshots, r.snapshot(day, types.TargetAllocation{}, cash, lleShares, ieShares, lleBar.Close, ieBar.Close, 0))
			continue
		}

		portfolioValue := cash.
			Add(decimal.NewFromFloat(lleBar.Close).Mul(decimal.NewFromInt(lleShares))).
			Add(decimal.NewFromFloat(ieBar.Close).Mul(decimal.NewFromInt(ieShares)))

		targetLLE := targetShares(portfolioValue, alloc.TqqqPct, lleBar.Close)
		targetIE := targetShares(portfolioValue, alloc.SqqqPct, ieBar.Close)

		cash, lleShares, ieShares, trades = r.rebalance(
			day, cash, lleShares, ieShares, targetLLE, targetIE,
			lleBar.Close, ieBar.Close, positions, trades,
		)

		portfolioValue = cash.
			Add(decimal.NewFromFloat(lleBar.Close).Mul(decimal.NewFromInt(lleShares))).
			Add(decimal.NewFromFloat(ieBar.Close).Mul(decimal.NewFromInt(ieShares)))

		snap := types.DailySnapshot{
			Date:           day,
			Target:         alloc,
			LLEShares:      lleShares,
			IEShares:       ieShares,
			Cash:           cash,
			PortfolioValue: portfolioValue,
			LLEClose:       lleBar.Close,
			IEClose:        ieBar.Close,
			CompositeScore: alloc.CompositeScore,
		}
		snapshots = append(snapshots, snap)
	}

	values := make([]float64, len(snapshots))
	valueDates := make([]time.Time, len(snapshots))
	for i, s := range snapshots {
		values[i] = s.PortfolioValue.InexactFloat64()
		valueDates[i] = s.Date
	}

	return Result{
		Config:         r.cfg,
		Snapshots:      snapshots,
		Trades:         trades,
		Metrics:        metrics.ComputeAll(values, trades),
		MonthlyReturns: metrics.MonthlyReturns(valueDates, values),
	}
}

func (r *Runner) snapshot(day time.Time, alloc types.TargetAllocation, cash decimal.Decimal, lleShares, ieShares int64, lleClose, ieClose float64, composite float64) types.DailySnapshot {
	portfolioValue := cash.
		Add(decimal.NewFromFloat(lleClose).Mul(decimal.NewFromInt(lleShares))).
		Add(decimal.NewFromFloat(ieClose).Mul(decimal.NewFromInt(ieShares)))
	return types.DailySnapshot{
		Date:           day,
		Target:         alloc,
		LLEShares:      lleShares,
		IEShares:       ieShares,
		Cash:           cash,
		PortfolioValue: portfolioValue,
		LLEClose:       lleClose,
		IEClose:        ieClose,
		CompositeScore: composite,
	}
}

func (r *Runner) safeEvaluate(history types.BarHistory) (alloc types.TargetAllocation, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("engine panic: %v", rec)
		}
	}()
	alloc = r.engine.Evaluate(history)
	return alloc, nil
}

// targetShares computes floor((portfolioValue*pct)/price), truncated toward
// zero, or zero if price is non-positive.
func targetShares(portfolioValue decimal.Decimal, pct decimal.Decimal, price float64) int64 {
	if price <= 0 {
		return 0
	}
	notional := portfolioValue.Mul(pct)
	shares := notional.Div(decimal.NewFromFloat(price)).Truncate(0)
	if shares.IsNegative() {
		return 0
	}
	return shares.IntPart()
}

// rebalance executes any selling leg before any buying leg, so cash freed
// by a sale is available to the buy, and maintains the open-position ledger.
func (r *Runner) rebalance(
	day time.Time,
	cash decimal.Decimal,
	lleShares, ieShares, targetLLE, targetIE int64,
	llePrice, iePrice float64,
	positions map[string]*openPosition,
	trades []types.Trade,
) (decimal.Decimal, int64, int64, []types.Trade) {
	if targetIE < ieShares {
		cash, ieShares, trades = r.executeLeg(day, r.ieSymbol, cash, ieShares, targetIE, iePrice, positions, trades)
		cash, lleShares, trades = r.executeLeg(day, r.lleSymbol, cash, lleShares, targetLLE, llePrice, positions, trades)
		return cash, lleShares, ieShares, trades
	}
	cash, lleShares, trades = r.executeLeg(day, r.lleSymbol, cash, lleShares, targetLLE, llePrice, positions, trades)
	cash, ieShares, trades = r.executeLeg(day, r.ieSymbol, cash, ieShares, targetIE, iePrice, positions, trades)
	return cash, lleShares, ieShares, trades
}

func (r *Runner) executeLeg(
	day time.Time,
	symbol string,
	cash decimal.Decimal,
	currentShares, targetShares int64,
	price float64,
	positions map[string]*openPosition,
	trades []types.Trade,
) (decimal.Decimal, int64, []types.Trade) {
	delta := targetShares - currentShares
	if delta == 0 {
		return cash, currentShares, trades
	}

	priceDec := decimal.NewFromFloat(price)

	if delta < 0 {
		qty := -delta
		cash = cash.Add(priceDec.Mul(decimal.NewFromInt(qty)))

		var pnl *float64
		var duration *int
		if pos, ok := positions[symbol]; ok {
			realized := (price - pos.entryPrice) * float64(qty)
			pnl = &realized
			days := int(day.Sub(pos.entryDate).Hours() / 24)
			duration = &days
			pos.shares -= qty
			if pos.shares <= 0 {
				delete(positions, symbol)
			}
		}

		trades = append(trades, types.Trade{
			ID:           uuid.New(),
			Date:         day,
			Symbol:       symbol,
			Side:         types.Sell,
			Quantity:     qty,
			Price:        price,
			PnL:          pnl,
			DurationDays: duration,
		})
		return cash, currentShares - qty, trades
	}

	qty := delta
	cash = cash.Sub(priceDec.Mul(decimal.NewFromInt(qty)))

	if pos, ok := positions[symbol]; ok {
		totalCost := pos.entryPrice*float64(pos.shares) + price*float64(qty)
		pos.shares += qty
		pos.entryPrice = totalCost / float64(pos.shares)
	} else {
		positions[symbol] = &openPosition{entryDate: day, entryPrice: price, shares: qty}
	}

	trades = append(trades, types.Trade{
		ID:       uuid.New(),
		Date:     day,
		Symbol:   symbol,
		Side:     types.Buy,
		Quantity: qty,
		Price:    price,
	})
	return cash, currentShares + qty, trades
}

// intersectDates normalizes and sorts each history's dates, intersects the
// three sets, and filters to [start, end] inclusive.
func intersectDates(a, b, c types.BarHistory, start, end time.Time) []time.Time {
	setA := dateSet(a)
	setB := dateSet(b)
	setC := dateSet(c)

	var out []time.Time
	for d := range setA {
		if _, ok := setB[d]; !ok {
			continue
		}
		if _, ok := setC[d]; !ok {
			continue
		}
		if d.Before(start) || d.After(end) {
			continue
		}
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

func dateSet(h types.BarHistory) map[time.Time]struct{} {
	m := make(map[time.Time]struct{}, len(h))
	for _, b := range h {
		y, mo, dy := b.Date.Date()
		m[time.Date(y, mo, dy, 0, 0, 0, 0, time.UTC)] = struct{}{}
	}
	return m
}
