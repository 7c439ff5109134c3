// Command backtest loads a configuration, replays the three instrument
// histories it points to, and prints the result, writing the persisted
// JSON artifact alongside it.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/whitelight/quantengine/internal/backtest"
	"github.com/whitelight/quantengine/internal/marketdata"
	"github.com/whitelight/quantengine/pkg/types"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to the backtest config YAML")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("❌ failed to load config: %v", err)
	}

	log.Println(strings.Repeat("=", 60))
	log.Println("🚀 BACKTEST RUN STARTING")
	log.Println(strings.Repeat("=", 60))
	log.Printf("📅 Period: %s -> %s", cfg.Backtest.StartDate, cfg.Backtest.EndDate)
	log.Printf("💰 Initial capital: %.2f", cfg.Backtest.InitialCapital)

	source := marketdata.NewCSVSource(map[string]string{
		cfg.Data.IndexTicker: cfg.Data.IndexPath,
		cfg.Data.LLETicker:   cfg.Data.LLEPath,
		cfg.Data.IETicker:    cfg.Data.IEPath,
	})

	start, err := time.Parse("2006-01-02", cfg.Backtest.StartDate)
	if err != nil {
		log.Fatalf("❌ invalid start_date: %v", err)
	}
	end, err := time.Parse("2006-01-02", cfg.Backtest.EndDate)
	if err != nil {
		log.Fatalf("❌ invalid end_date: %v", err)
	}

	// Fetch from far earlier than start so the warmup window has history to
	// draw on for the first in-range trading day.
	fetchStart := start.AddDate(-2, 0, 0)

	indexHist, err := source.FetchBars(cfg.Data.IndexTicker, fetchStart, end)
	if err != nil {
		log.Fatalf("❌ failed to load index history: %v", err)
	}
	lleHist, err := source.FetchBars(cfg.Data.LLETicker, fetchStart, end)
	if err != nil {
		log.Fatalf("❌ failed to load LLE history: %v", err)
	}
	ieHist, err := source.FetchBars(cfg.Data.IETicker, fetchStart, end)
	if err != nil {
		log.Fatalf("❌ failed to load IE history: %v", err)
	}

	warmupDays := cfg.Backtest.WarmupDays
	if warmupDays == 0 {
		warmupDays = types.DefaultWarmupDays
	}
	initialCapital := types.DefaultInitialCapital()
	if cfg.Backtest.InitialCapital > 0 {
		initialCapital = decimal.NewFromFloat(cfg.Backtest.InitialCapital)
	}

	runnerCfg := types.BacktestConfig{
		StartDate:      start,
		EndDate:        end,
		InitialCapital: initialCapital,
		WarmupDays:     warmupDays,
	}

	runner := backtest.New(runnerCfg, cfg.Data.LLETicker, cfg.Data.IETicker)
	result := runner.Run(indexHist, lleHist, ieHist)

	fmt.Print(result.Summary())

	if cfg.Backtest.OutputPath != "" {
		if err := writeArtifact(cfg.Backtest.OutputPath, result); err != nil {
			log.Fatalf("❌ failed to write result artifact: %v", err)
		}
		log.Printf("📝 wrote result artifact to %s", cfg.Backtest.OutputPath)
	}
}

func loadConfig(path string) (*types.Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("⚠️  .env file not found, using config values")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg types.Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

type artifactTrade struct {
	Date         string   `json:"date"`
	Symbol       string   `json:"symbol"`
	Side         string   `json:"side"`
	Shares       int64    `json:"shares"`
	Price        float64  `json:"price"`
	PnL          *float64 `json:"pnl,omitempty"`
	DurationDays *int     `json:"duration_days,omitempty"`
}

type artifactMonthlyReturn struct {
	Year      int     `json:"year"`
	Month     int     `json:"month"`
	ReturnPct float64 `json:"return_pct"`
}

type artifact struct {
	Config struct {
		StartDate      string `json:"start_date"`
		EndDate        string `json:"end_date"`
		InitialCapital string `json:"initial_capital"`
		WarmupDays     int    `json:"warmup_days"`
	} `json:"config"`
	Metrics        map[string]float64     `json:"metrics"`
	MonthlyReturns []artifactMonthlyReturn `json:"monthly_returns"`
	TradeCount     int                     `json:"trade_count"`
	SnapshotCount  int                     `json:"snapshot_count"`
	Trades         []artifactTrade         `json:"trades"`
}

func writeArtifact(path string, result backtest.Result) error {
	var doc artifact
	doc.Config.StartDate = result.Config.StartDate.Format("2006-01-02")
	doc.Config.EndDate = result.Config.EndDate.Format("2006-01-02")
	doc.Config.InitialCapital = result.Config.InitialCapital.String()
	doc.Config.WarmupDays = result.Config.WarmupDays
	doc.Metrics = result.Metrics
	doc.TradeCount = len(result.Trades)
	doc.SnapshotCount = len(result.Snapshots)

	for _, mr := range result.MonthlyReturns {
		doc.MonthlyReturns = append(doc.MonthlyReturns, artifactMonthlyReturn{
			Year: mr.Year, Month: mr.Month, ReturnPct: mr.ReturnPct,
		})
	}

	for _, t := range result.Trades {
		doc.Trades = append(doc.Trades, artifactTrade{
			Date:         t.Date.Format("2006-01-02"),
			Symbol:       t.Symbol,
			Side:         string(t.Side),
			Shares:       t.Quantity,
			Price:        t.Price,
			PnL:          t.PnL,
			DurationDays: t.DurationDays,
		})
	}

	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, out, 0644)
}
