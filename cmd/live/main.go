// Command live evaluates the strategy ensemble once against the latest
// available bar history and sends the resulting allocation to a notifier
// (manual-execution posture: no auto-trading). A broker is built from the
// config and logged, but no orders are submitted through it. When metrics
// are enabled it exposes a Prometheus /metrics endpoint for the last
// emitted allocation.
package main

import (
	"flag"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gopkg.in/yaml.v3"

	"github.com/whitelight/quantengine/internal/broker"
	"github.com/whitelight/quantengine/internal/engine"
	"github.com/whitelight/quantengine/internal/marketdata"
	"github.com/whitelight/quantengine/internal/notify"
	"github.com/whitelight/quantengine/pkg/types"
)

var (
	longGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "quantengine_target_long_pct",
		Help: "Last emitted target allocation to the leveraged long instrument.",
	})
	inverseGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "quantengine_target_inverse_pct",
		Help: "Last emitted target allocation to the inverse instrument.",
	})
	compositeGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "quantengine_composite_score",
		Help: "Last emitted composite signal score.",
	})
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to the live config YAML")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("❌ failed to load config: %v", err)
	}

	log.Println(strings.Repeat("=", 60))
	log.Println("🚀 LIVE EVALUATION STARTING")
	log.Println(strings.Repeat("=", 60))

	if cfg.Metrics.Enabled {
		addr := cfg.Metrics.Addr
		if addr == "" {
			addr = ":9090"
		}
		http.Handle("/metrics", promhttp.Handler())
		go func() {
			log.Printf("📡 metrics listening on %s", addr)
			if err := http.ListenAndServe(addr, nil); err != nil {
				log.Printf("⚠️  metrics server stopped: %v", err)
			}
		}()
	}

	var notifier notify.Notifier
	if cfg.Telegram.Enabled {
		notifier = notify.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, true)
	} else {
		notifier = notify.NewConsoleNotifier()
	}

	var brokerClient broker.Broker
	if !cfg.Broker.Paper && cfg.Broker.APIKey != "" {
		brokerClient = broker.NewLiveBroker(cfg.Broker.APIKey, cfg.Broker.SecretKey, "https://api.example-brokerage.com")
		log.Println("💼 live broker configured (orders are not auto-submitted; this posture is manual-execution only)")
	} else {
		brokerClient = broker.NewPaperBroker()
		log.Println("💼 paper broker configured")
	}
	log.Printf("💼 broker implementation: %T", brokerClient)

	source := marketdata.NewCSVSource(map[string]string{
		cfg.Data.IndexTicker: cfg.Data.IndexPath,
	})

	end := time.Now().UTC()
	start := end.AddDate(-2, 0, 0)
	history, err := source.FetchBars(cfg.Data.IndexTicker, start, end)
	if err != nil {
		log.Fatalf("❌ failed to load index history: %v", err)
	}

	e := engine.New()
	alloc := e.Evaluate(history)

	longGauge.Set(alloc.TqqqPct.InexactFloat64())
	inverseGauge.Set(alloc.SqqqPct.InexactFloat64())
	compositeGauge.Set(alloc.CompositeScore)

	log.Printf("📊 allocation: long=%s inverse=%s cash=%s composite=%.4f",
		alloc.TqqqPct.StringFixed(4), alloc.SqqqPct.StringFixed(4), alloc.CashPct.StringFixed(4), alloc.CompositeScore)

	if err := notifier.NotifyAllocation(alloc); err != nil {
		log.Printf("⚠️  failed to deliver allocation alert: %v", err)
	}
}

func loadConfig(path string) (*types.Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("⚠️  .env file not found, using config values")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg types.Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	if botToken := os.Getenv("TELEGRAM_BOT_TOKEN"); botToken != "" {
		cfg.Telegram.BotToken = botToken
	}
	if chatID := os.Getenv("TELEGRAM_CHAT_ID"); chatID != "" {
		cfg.Telegram.ChatID = chatID
	}
	if apiKey := os.Getenv("BROKER_API_KEY"); apiKey != "" {
		cfg.Broker.APIKey = apiKey
	}
	if secretKey := os.Getenv("BROKER_SECRET_KEY"); secretKey != "" {
		cfg.Broker.SecretKey = secretKey
	}

	return &cfg, nil
}
