// cardprice estimates trading-card market prices from recent eBay sales.
//
// Usage:
//
//	cardprice estimate --name "Cole Caufield" --series "2021-22 Upper Deck Series 2 Hockey" --number 236
//	cardprice batch --input cards.csv --output estimates.csv
//	cardprice serve --addr :8080
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/guarzo/cardprice/internal/api"
	"github.com/guarzo/cardprice/internal/cache"
	"github.com/guarzo/cardprice/internal/concurrent"
	"github.com/guarzo/cardprice/internal/config"
	"github.com/guarzo/cardprice/internal/ebay"
	"github.com/guarzo/cardprice/internal/model"
	"github.com/guarzo/cardprice/internal/pricing"
	"github.com/guarzo/cardprice/internal/progress"
	"github.com/guarzo/cardprice/internal/report"
)

var version = "dev"

func main() {
	if err := godotenv.Load(); err != nil {
		logrus.Debug("no .env file found")
	}

	app := &cli.App{
		Name:    "cardprice",
		Usage:   "Estimate trading card prices from recent sold listings",
		Version: version,
		Commands: []*cli.Command{
			estimateCommand(),
			batchCommand(),
			serveCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func estimateCommand() *cli.Command {
	return &cli.Command{
		Name:  "estimate",
		Usage: "Price a single card and print the estimate as JSON",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "name", Usage: "Player or character name"},
			&cli.StringFlag{Name: "series", Usage: "Set or series, e.g. \"2021-22 Upper Deck Series 2 Hockey\""},
			&cli.StringFlag{Name: "number", Usage: "Card number within the set"},
			&cli.StringFlag{Name: "type", Value: model.DefaultCardType, Usage: "Parallel or variant"},
			&cli.DurationFlag{Name: "timeout", Value: 60 * time.Second, Usage: "Overall deadline"},
		},
		Action: runEstimate,
	}
}

func runEstimate(c *cli.Context) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}

	svc := newPricingService(cfg, logger)

	ctx, cancel := context.WithTimeout(c.Context, c.Duration("timeout"))
	defer cancel()

	estimate, err := svc.EstimatePrice(ctx, model.CardFields{
		Name:   c.String("name"),
		Series: c.String("series"),
		Number: c.String("number"),
		Type:   c.String("type"),
	})
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(estimate)
}

func batchCommand() *cli.Command {
	return &cli.Command{
		Name:  "batch",
		Usage: "Price every card in a CSV and write a CSV report",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "input", Aliases: []string{"i"}, Required: true, Usage: "CSV with a header row: name, card_series, card_number, card_type"},
			&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "Report path (default stdout)"},
			&cli.IntFlag{Name: "workers", Value: 2, Usage: "Cards priced concurrently"},
			&cli.DurationFlag{Name: "timeout", Value: 60 * time.Second, Usage: "Deadline per card"},
			&cli.BoolFlag{Name: "quiet", Aliases: []string{"q"}, Usage: "Suppress the progress bar"},
		},
		Action: runBatch,
	}
}

func runBatch(c *cli.Context) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}

	in, err := os.Open(c.String("input"))
	if err != nil {
		return err
	}
	defer in.Close()

	cards, err := report.ReadCards(in)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", c.String("input"), err)
	}

	// Created before pricing so a bad path fails fast
	var out *os.File
	if path := c.String("output"); path != "" {
		out, err = os.Create(path)
		if err != nil {
			return err
		}
	}

	svc := newPricingService(cfg, logger)

	indicator := progress.NewIndicator(os.Stderr, "Pricing", len(cards), !c.Bool("quiet"))
	pricer := concurrent.NewBatchPricer(concurrent.Config{
		Workers: c.Int("workers"),
		Timeout: c.Duration("timeout"),
		OnProgress: func(p concurrent.Progress) {
			indicator.Update(p.Completed, p.Errors)
		},
	})

	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	indicator.Start()
	results := pricer.PriceAll(ctx, svc, cards)
	indicator.Finish()

	rows := make([]report.Row, len(results))
	for i, r := range results {
		rows[i] = report.Row{Fields: r.Fields, Estimate: r.Estimate, Err: r.Error}
	}
	if out != nil {
		err = report.WriteEstimatesAndClose(out, rows)
	} else {
		err = report.WriteEstimates(os.Stdout, rows)
	}
	if err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	metrics := pricer.Metrics()
	logger.WithFields(logrus.Fields{
		"cards":          metrics.Total,
		"priced":         metrics.Succeeded,
		"failed":         metrics.Failed,
		"avg_latency_ms": metrics.AverageLatency().Milliseconds(),
		"cache_hits":     svc.CacheStats().Hits,
	}).Info("batch complete")

	return nil
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the pricing HTTP API",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "addr", Usage: "Listen address (overrides LISTEN_ADDR)"},
		},
		Action: runServe,
	}
}

func runServe(c *cli.Context) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}

	svc := newPricingService(cfg, logger)
	if !svc.Available() {
		logger.Warn("eBay credentials not configured; price requests will fail until EBAY_CLIENT_ID and EBAY_CLIENT_SECRET are set")
	}

	scheduler := cron.New()
	if _, err := scheduler.AddFunc(cfg.Server.CacheStatsSchedule, func() {
		stats := svc.CacheStats()
		logger.WithFields(logrus.Fields{
			"hits":      stats.Hits,
			"misses":    stats.Misses,
			"evictions": stats.Evictions,
			"size":      stats.Size,
		}).Info("cache_stats")
	}); err != nil {
		return fmt.Errorf("invalid CACHE_STATS_SCHEDULE %q: %w", cfg.Server.CacheStatsSchedule, err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	addr := cfg.Server.ListenAddr
	if c.String("addr") != "" {
		addr = c.String("addr")
	}

	if cfg.LogLevel() < logrus.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return api.NewServer(svc, logger).Run(ctx, addr, 30*time.Second)
}

func setup() (*config.Config, *logrus.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stderr)
	logger.SetLevel(cfg.LogLevel())

	return cfg, logger, nil
}

// newPricingService wires token source, marketplace client, cache and
// pricing service from configuration.
func newPricingService(cfg *config.Config, logger *logrus.Logger) *pricing.Service {
	tokens := ebay.NewTokenSource(ebay.OAuthConfig{
		ClientID:     cfg.Ebay.ClientID,
		ClientSecret: cfg.Ebay.ClientSecret,
		Sandbox:      cfg.Ebay.Sandbox,
		ReuseToken:   cfg.Ebay.ReuseToken,
	}, logger)

	client := ebay.NewClient(tokens,
		ebay.WithSandbox(cfg.Ebay.Sandbox),
		ebay.WithMarketplace(cfg.Ebay.MarketplaceID),
		ebay.WithRateLimit(cfg.Ebay.RateLimit, 1),
		ebay.WithLogger(logger),
	)

	return pricing.NewService(client,
		pricing.WithCache(cache.NewPricingCache(cfg.Pricing.CacheSize,
			cache.WithNegativeCaching(cfg.Pricing.NegativeCache))),
		pricing.WithSalesLimit(cfg.Pricing.SalesLimit),
		pricing.WithLogger(logger),
	)
}
