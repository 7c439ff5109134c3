// Package validate checks bar histories at the edge of the core before a
// backtest or live evaluation begins. It never mutates its input; callers
// that want a clean series should sort and dedup themselves and re-run
// History to confirm.
package validate

import (
	"fmt"
	"strings"

	"github.com/whitelight/quantengine/pkg/types"
)

// Error aggregates every input-shape violation found in a single history so
// a caller sees the whole picture in one failure rather than one-at-a-time.
type Error struct {
	Ticker string
	Issues []string
}

func (e *Error) Error() string {
	return fmt.Sprintf("invalid bar history for %s: %s", e.Ticker, strings.Join(e.Issues, "; "))
}

// History checks a bar history for the shape violations the core refuses
// to tolerate: out-of-order dates, duplicate dates, non-positive OHLC
// prices, and calendar gaps wider than types.MaxBarGapDays. Returns nil
// when the history is clean.
func History(ticker string, h types.BarHistory) error {
	var issues []string

	if len(h) == 0 {
		return nil
	}

	seen := make(map[string]bool, len(h))
	for i, b := range h {
		key := b.Date.Format("2006-01-02")
		if seen[key] {
			issues = append(issues, fmt.Sprintf("duplicate date %s", key))
		}
		seen[key] = true

		if b.Open <= 0 || b.High <= 0 || b.Low <= 0 || b.Close <= 0 {
			issues = append(issues, fmt.Sprintf("non-positive price on %s", key))
		}
		if b.High < b.Low {
			issues = append(issues, fmt.Sprintf("high < low on %s", key))
		}

		if i > 0 {
			prev := h[i-1]
			if b.Date.Before(prev.Date) {
				issues = append(issues, fmt.Sprintf("unsorted date at index %d (%s after %s)", i, prev.Date.Format("2006-01-02"), key))
			}
			gapDays := int(b.Date.Sub(prev.Date).Hours() / 24)
			if gapDays > types.MaxBarGapDays {
				issues = append(issues, fmt.Sprintf("gap of %d days between %s and %s", gapDays, prev.Date.Format("2006-01-02"), key))
			}
		}
	}

	if len(issues) == 0 {
		return nil
	}
	return &Error{Ticker: ticker, Issues: issues}
}
