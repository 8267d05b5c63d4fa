// Command quant-search runs the feature-combination sweep over one symbol's
// bar history and stores the per-combination results.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/m-marqx/Beautiful-Model/internal/binning"
	"github.com/m-marqx/Beautiful-Model/internal/config"
	"github.com/m-marqx/Beautiful-Model/internal/dataset"
	"github.com/m-marqx/Beautiful-Model/internal/evaluate"
	"github.com/m-marqx/Beautiful-Model/internal/features"
	"github.com/m-marqx/Beautiful-Model/internal/labels"
	"github.com/m-marqx/Beautiful-Model/internal/model"
	"github.com/m-marqx/Beautiful-Model/internal/search"
	"github.com/m-marqx/Beautiful-Model/internal/store"
	"github.com/m-marqx/Beautiful-Model/internal/util"
)

func main() {
	csvPath := flag.String("csv", "", "load bars from a CSV file instead of the Parquet store")
	symbol := flag.String("symbol", "BTCUSD", "symbol to search")
	market := flag.String("market", "crypto", "market directory in the bar store")
	startStr := flag.String("start", "2018-01-01", "history start date (YYYY-MM-DD)")
	endStr := flag.String("end", "", "history end date (YYYY-MM-DD), default today")
	horizon := flag.Int("horizon", 1, "label horizon in bars")
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

	frame, err := loadFrame(cfg, *csvPath, *symbol, *market, *startStr, *endStr)
	if err != nil {
		log.Fatalf("loading bars: %v", err)
	}
	if err := labels.Apply(frame, *horizon); err != nil {
		log.Fatalf("building labels: %v", err)
	}
	slog.Info("frame ready", "symbol", *symbol, "rows", frame.Len())

	indicator, err := features.ParseIndicator(cfg.Search.Indicator)
	if err != nil {
		log.Fatalf("%v", err)
	}

	var modelStore *model.Store
	if cfg.Model.Save {
		if modelStore, err = model.NewStore(cfg.Storage.ModelDir); err != nil {
			log.Fatalf("opening model store: %v", err)
		}
	}

	results, err := store.NewSQLiteStore(cfg.Storage.SQLitePath)
	if err != nil {
		log.Fatalf("opening results store: %v", err)
	}
	defer results.Close()
	reports := store.NewParquetStore(cfg.Storage.DataDir)

	ctx := context.Background()
	for _, value := range cfg.Search.Values {
		searchCfg := search.Config{
			Indicator: indicator,
			Value:     indicatorParams(indicator, value),
			Params: features.Params{
				Split: toBinConfig(cfg.Search.Split),
				High:  toBinConfig(cfg.Search.High),
				Low:   toBinConfig(cfg.Search.Low),
			},
			Algorithm: cfg.Model.Algorithm,
			Model: model.Params{
				MaxDepth:  cfg.Model.MaxDepth,
				MinLeaf:   cfg.Model.MinLeaf,
				LearnRate: cfg.Model.LearnRate,
				Epochs:    cfg.Model.Epochs,
				Seed:      cfg.Model.Seed,
			},
			Validation:        evaluate.Fraction(cfg.Search.ValidationSplit),
			TestSize:          cfg.Search.TestSize,
			Fee:               cfg.Search.Fee,
			DrawdownMinWindow: cfg.Search.DrawdownMinWindow,
			Store:             modelStore,
			Progress:          true,
		}

		sweep, err := search.Run(frame, searchCfg)
		if err != nil {
			log.Fatalf("search for value %d: %v", value, err)
		}

		if err := persistSweep(ctx, results, reports, *symbol, string(indicator), sweep); err != nil {
			log.Fatalf("storing results: %v", err)
		}

		if cfg.Search.ResultsColumn != "" {
			projected, err := search.Project(sweep, cfg.Search.ResultsColumn)
			if err != nil {
				log.Fatalf("projecting %q: %v", cfg.Search.ResultsColumn, err)
			}
			printProjection(cfg.Search.ResultsColumn, projected)
		} else {
			printSummaries(sweep)
		}
	}
}

// loadFrame reads bars from CSV or the Parquet store and builds the frame.
func loadFrame(cfg *config.Config, csvPath, symbol, market, startStr, endStr string) (*dataset.Frame, error) {
	if csvPath != "" {
		return dataset.LoadCSVFrame(csvPath, symbol)
	}

	start, err := time.Parse("2006-01-02", startStr)
	if err != nil {
		return nil, fmt.Errorf("parsing start date %q: %w", startStr, err)
	}
	end := time.Now().UTC()
	if endStr != "" {
		if end, err = time.Parse("2006-01-02", endStr); err != nil {
			return nil, fmt.Errorf("parsing end date %q: %w", endStr, err)
		}
	}

	ps := store.NewParquetStore(cfg.Storage.DataDir)
	bars, err := ps.ReadBars(context.Background(), symbol, market, start, end)
	if err != nil {
		return nil, err
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("no bars stored for %s/%s in [%s, %s]",
			market, symbol, startStr, end.Format("2006-01-02"))
	}
	return dataset.FromBars(bars)
}

// indicatorParams maps one configured value to the indicator's parameter
// list. rolling_ratio reads the value as a fast length with slow = 4x fast.
func indicatorParams(ind features.Indicator, value int) []int {
	switch ind {
	case features.IndicatorRollingRatio:
		return []int{value, value * 4}
	case features.IndicatorWickProportion:
		return nil
	}
	return []int{value}
}

func toBinConfig(b config.BinConfig) binning.Config {
	return binning.Config{
		Bins:       b.Bins,
		Threshold:  b.Threshold,
		HigherThan: b.HigherThan,
	}
}

func persistSweep(ctx context.Context, results *store.SQLiteStore, reports *store.ParquetStore,
	symbol, indicator string, sweep map[string]*evaluate.Report) error {
	for key, r := range sweep {
		summary := store.Summary{
			Key:             key,
			Symbol:          symbol,
			Indicator:       indicator,
			FinalReturn:     r.Series.FinalReturn(),
			MaxDrawdown:     r.Series.MaxDrawdown(),
			Accuracy:        r.Metrics.FinalAccuracy(),
			Trades:          int64(len(r.Stats.Result)),
			ValidationStart: r.ValidationStart,
		}
		if err := results.SaveSummary(ctx, summary); err != nil {
			return err
		}
		if err := reports.WriteReport(ctx, symbol, key, r); err != nil {
			return err
		}
	}
	return nil
}

func printSummaries(sweep map[string]*evaluate.Report) {
	keys := make([]string, 0, len(sweep))
	for key := range sweep {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		return sweep[keys[i]].Series.FinalReturn() > sweep[keys[j]].Series.FinalReturn()
	})

	fmt.Printf("%-28s %12s %12s %10s %8s\n", "combination", "final_return", "max_drawdown", "accuracy", "trades")
	fmt.Println(strings.Repeat("-", 74))
	for _, key := range keys {
		r := sweep[key]
		fmt.Printf("%-28s %12.4f %12.4f %10.4f %8d\n",
			key, r.Series.FinalReturn(), r.Series.MaxDrawdown(),
			r.Metrics.FinalAccuracy(), len(r.Stats.Result))
	}
}

func printProjection(column string, projected map[string][]float64) {
	keys := make([]string, 0, len(projected))
	for key := range projected {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	fmt.Printf("%-28s %16s\n", "combination", "final "+column)
	for _, key := range keys {
		series := projected[key]
		last := 0.0
		if len(series) > 0 {
			last = series[len(series)-1]
		}
		fmt.Printf("%-28s %16.6f\n", key, last)
	}
}
