// Command quant-fetch downloads historical daily bars into the Parquet bar
// store.
package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/m-marqx/Beautiful-Model/internal/config"
	"github.com/m-marqx/Beautiful-Model/internal/fetch"
	"github.com/m-marqx/Beautiful-Model/internal/store"
	"github.com/m-marqx/Beautiful-Model/internal/util"
)

func main() {
	symbolsFlag := flag.String("symbols", "", "comma-separated symbols to fetch")
	market := flag.String("market", "us", "market directory in the bar store")
	startStr := flag.String("start", "2018-01-01", "history start date (YYYY-MM-DD)")
	endStr := flag.String("end", "", "history end date (YYYY-MM-DD), default today")
	batchSize := flag.Int("batch", 200, "symbols per API call")
	rate := flag.Int("rate", 200, "API calls per minute")
	flag.Parse()

	cfgPath := "config/quant.yaml"
	if p := os.Getenv("QUANT_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	util.SetDefault(util.NewLogger(cfg.Logging.Level, cfg.Logging.Format))

	symbols := splitSymbols(*symbolsFlag)
	if len(symbols) == 0 {
		log.Fatal("no symbols given; use -symbols AAPL,MSFT")
	}

	start, err := time.Parse("2006-01-02", *startStr)
	if err != nil {
		log.Fatalf("parsing start date %q: %v", *startStr, err)
	}
	end := time.Now().UTC()
	if *endStr != "" {
		if end, err = time.Parse("2006-01-02", *endStr); err != nil {
			log.Fatalf("parsing end date %q: %v", *endStr, err)
		}
	}

	pstore := store.NewParquetStore(cfg.Storage.DataDir)
	fetcher := fetch.NewAlpacaFetcher(
		cfg.Alpaca.APIKey,
		cfg.Alpaca.APISecret,
		cfg.Alpaca.DataURL,
		pstore,
		*market,
		*batchSize,
		*rate,
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	slog.Info("starting fetch", "symbols", len(symbols), "market", *market,
		"start", start.Format("2006-01-02"), "end", end.Format("2006-01-02"))
	if err := fetcher.Run(ctx, symbols, start, end); err != nil {
		log.Fatalf("fetch error: %v", err)
	}
}

func splitSymbols(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.ToUpper(strings.TrimSpace(part))
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
