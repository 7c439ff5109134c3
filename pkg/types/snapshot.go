package types

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DailySnapshot captures portfolio state on a single trading day.
type DailySnapshot struct {
	Date           time.Time
	Target         TargetAllocation
	LLEShares      int64
	IEShares       int64
	Cash           decimal.Decimal
	PortfolioValue decimal.Decimal
	LLEClose       float64
	IEClose        float64
	CompositeScore float64
}

// Side is the leg direction of a trade record.
type Side string

const (
	Buy  Side = "buy"
	Sell Side = "sell"
)

// Trade is emitted on every order leg executed by the backtest runner.
// PnL and DurationDays are only set on sell legs that
// close against a tracked open position.
type Trade struct {
	ID           uuid.UUID
	Date         time.Time
	Symbol       string
	Side         Side
	Quantity     int64
	Price        float64
	PnL          *float64
	DurationDays *int
}

// IsCompleted reports whether this trade leg carries a realized PnL, i.e.
// it is a sell leg that closed against a prior open position.
func (t Trade) IsCompleted() bool {
	return t.PnL != nil
}
