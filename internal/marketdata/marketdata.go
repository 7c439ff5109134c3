// Package marketdata supplies bar histories to the core from outside
// collaborators. It implements the single "fetch_bars" contract the core
// consumes, with a CSV-backed implementation for backtests and room for a
// live exchange-backed one alongside it.
package marketdata

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"time"

	"github.com/whitelight/quantengine/internal/validate"
	"github.com/whitelight/quantengine/pkg/types"
)

// BarSource fetches a date-sorted, validated OHLCV history for a ticker
// within [start, end].
type BarSource interface {
	FetchBars(ticker string, start, end time.Time) (types.BarHistory, error)
}

// CSVSource reads per-ticker OHLCV histories from local CSV files, keyed by
// ticker symbol to file path. Expected columns: date,open,high,low,close,volume.
type CSVSource struct {
	Paths map[string]string
}

// NewCSVSource builds a CSVSource over the given ticker-to-path map.
func NewCSVSource(paths map[string]string) *CSVSource {
	return &CSVSource{Paths: paths}
}

func (s *CSVSource) FetchBars(ticker string, start, end time.Time) (types.BarHistory, error) {
	path, ok := s.Paths[ticker]
	if !ok {
		return nil, fmt.Errorf("marketdata: no CSV path configured for ticker %q", ticker)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("marketdata: opening %s: %w", path, err)
	}
	defer f.Close()

	history, err := parseCSV(f)
	if err != nil {
		return nil, fmt.Errorf("marketdata: parsing %s: %w", path, err)
	}

	sort.Slice(history, func(i, j int) bool { return history[i].Date.Before(history[j].Date) })

	if err := validate.History(ticker, history); err != nil {
		return nil, err
	}

	var filtered types.BarHistory
	for _, b := range history {
		if (b.Date.Equal(start) || b.Date.After(start)) && (b.Date.Equal(end) || b.Date.Before(end)) {
			filtered = append(filtered, b)
		}
	}
	return filtered, nil
}

func parseCSV(r io.Reader) (types.BarHistory, error) {
	reader := csv.NewReader(r)
	header, err := reader.Read()
	if err != nil {
		return nil, err
	}
	col := make(map[string]int, len(header))
	for i, h := range header {
		col[h] = i
	}
	for _, required := range []string{"date", "open", "high", "low", "close"} {
		if _, ok := col[required]; !ok {
			return nil, fmt.Errorf("missing required column %q", required)
		}
	}

	var out types.BarHistory
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		date, err := time.Parse("2006-01-02", record[col["date"]])
		if err != nil {
			return nil, fmt.Errorf("invalid date %q: %w", record[col["date"]], err)
		}

		bar := types.Bar{Date: date}
		bar.Open, err = strconv.ParseFloat(record[col["open"]], 64)
		if err != nil {
			return nil, err
		}
		bar.High, err = strconv.ParseFloat(record[col["high"]], 64)
		if err != nil {
			return nil, err
		}
		bar.Low, err = strconv.ParseFloat(record[col["low"]], 64)
		if err != nil {
			return nil, err
		}
		bar.Close, err = strconv.ParseFloat(record[col["close"]], 64)
		if err != nil {
			return nil, err
		}
		if vIdx, ok := col["volume"]; ok && record[vIdx] != "" {
			vol, err := strconv.ParseInt(record[vIdx], 10, 64)
			if err != nil {
				return nil, err
			}
			bar.Volume = vol
		}

		out = append(out, bar)
	}
	return out, nil
}
