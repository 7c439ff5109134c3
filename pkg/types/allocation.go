package types

import "github.com/shopspring/decimal"

// TargetAllocation is the combiner's daily output: three non-negative
// fractions of exact decimal type that sum to 1 within a 1e-2 tolerance.
// At most one of TqqqPct and SqqqPct is strictly positive.
type TargetAllocation struct {
	TqqqPct        decimal.Decimal
	SqqqPct        decimal.Decimal
	CashPct        decimal.Decimal
	Signals        []Signal
	CompositeScore float64
}

// AllocationTolerance is the permitted drift from an exact sum of 1.0.
var AllocationTolerance = decimal.NewFromFloat(0.01)

// SumsToOne reports whether the three fractions sum to 1 within tolerance.
func (a TargetAllocation) SumsToOne() bool {
	total := a.TqqqPct.Add(a.SqqqPct).Add(a.CashPct)
	diff := total.Sub(decimal.NewFromInt(1)).Abs()
	return diff.LessThanOrEqual(AllocationTolerance)
}

// HasDirectionalConflict reports whether both the long and inverse legs are
// simultaneously positive, which TargetAllocation invariants forbid.
func (a TargetAllocation) HasDirectionalConflict() bool {
	return a.TqqqPct.IsPositive() && a.SqqqPct.IsPositive()
}

// CashOnly reports whether the allocation holds no long or inverse exposure.
func (a TargetAllocation) CashOnly() bool {
	return !a.TqqqPct.IsPositive() && !a.SqqqPct.IsPositive()
}
