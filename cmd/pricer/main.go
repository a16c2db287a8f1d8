package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/mrosen/ebay-pricer/internal/browse"
	"github.com/mrosen/ebay-pricer/internal/cache"
	"github.com/mrosen/ebay-pricer/internal/config"
	"github.com/mrosen/ebay-pricer/internal/market"
	"github.com/mrosen/ebay-pricer/internal/model"
	"github.com/mrosen/ebay-pricer/internal/pricing"
	"github.com/mrosen/ebay-pricer/internal/research"
	"github.com/mrosen/ebay-pricer/internal/upc"
	"github.com/mrosen/ebay-pricer/internal/version"
)

func main() {
	var (
		configPath = flag.String("config", "configs/pricer.yaml", "path to config file")
		envPath    = flag.String("env", "", "path to .env credentials file (optional)")

		brand     = flag.String("brand", "", "product brand")
		itemModel = flag.String("model", "", "product model")
		cond      = flag.String("condition", "", "item condition (free text or eBay code)")
		retail    = flag.Float64("retail", 0, "retail price fallback in USD")
		upcCode   = flag.String("upc", "", "UPC/EAN barcode (optional)")

		csvPath = flag.String("csv", "", "price a CSV batch (columns: brand,model,condition,retail,upc)")
		outPath = flag.String("out", "", "output path for batch results (default: stdout)")

		cacheStats = flag.Bool("cache-stats", false, "print cache statistics and exit")
		cacheSweep = flag.Duration("cache-sweep", 0, "delete entries expired longer than this and exit")
		cacheClear = flag.Bool("cache-clear", false, "delete all cache entries and exit")

		verbose     = flag.Bool("v", false, "debug logging")
		showVersion = flag.Bool("version", false, "print version and exit")
	)
	flag.Parse()

	if *showVersion {
		fmt.Println("pricer", version.String())
		return
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	// Credentials come from the environment; a .env file fills it in for
	// local runs. Missing file is fine when -env was not given.
	if *envPath != "" {
		if err := godotenv.Load(*envPath); err != nil {
			logger.Error("failed to load env file", "path", *envPath, "error", err)
			os.Exit(1)
		}
	} else {
		_ = godotenv.Load()
	}

	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger.Info("starting pricer",
		"version", version.Version,
		"commit", version.Commit,
		"config", *configPath,
		"cache_path", cfg.Cache.Path,
	)

	store, err := cache.Open(cfg.Cache.Path, cfg.Cache.TTL, cache.WithLogger(logger))
	if err != nil {
		logger.Error("failed to open cache", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	// Maintenance modes run against the cache alone.
	switch {
	case *cacheStats:
		stats, err := store.CacheStats()
		if err != nil {
			logger.Error("failed to read cache stats", "error", err)
			os.Exit(1)
		}
		fmt.Printf("cache entries: %d total, %d valid, %d stale\n", stats.Total, stats.Valid, stats.Stale)
		return
	case *cacheSweep > 0:
		n, err := store.Sweep(*cacheSweep)
		if err != nil {
			logger.Error("cache sweep failed", "error", err)
			os.Exit(1)
		}
		fmt.Printf("swept %d expired entries\n", n)
		return
	case *cacheClear:
		n, err := store.Clear()
		if err != nil {
			logger.Error("cache clear failed", "error", err)
			os.Exit(1)
		}
		fmt.Printf("cleared %d entries\n", n)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	engine := buildEngine(cfg, store, logger)

	if *csvPath != "" {
		if err := runBatch(ctx, engine, *csvPath, *outPath, logger); err != nil {
			logger.Error("batch failed", "error", err)
			os.Exit(1)
		}
		return
	}

	if *brand == "" || *itemModel == "" || *cond == "" {
		fmt.Fprintln(os.Stderr, "usage: pricer -brand BRAND -model MODEL -condition CONDITION [-retail PRICE] [-upc CODE]")
		fmt.Fprintln(os.Stderr, "       pricer -csv items.csv [-out results.csv]")
		os.Exit(2)
	}

	rec, err := engine.Recommend(ctx, pricing.Request{
		Brand:       *brand,
		Model:       *itemModel,
		Condition:   *cond,
		RetailPrice: *retail,
		UPC:         *upcCode,
	})
	if err != nil {
		logger.Error("pricing failed", "error", err)
		os.Exit(1)
	}

	fmt.Println(pricing.Summary(rec))
}

// buildEngine wires the pipeline from configuration. Sources without
// credentials are left out; the aggregator degrades accordingly.
func buildEngine(cfg *config.PricerConfig, store *cache.Store, logger *slog.Logger) *pricing.Engine {
	var sold market.SoldCompSource
	if cfg.Research.TavilyAPIKey != "" {
		opts := []research.ClientOption{
			research.WithLookback(cfg.Research.LookbackDays),
			research.WithMaxResults(cfg.Research.MaxResults),
			research.WithTimeout(cfg.Research.Timeout),
			research.WithLogger(logger),
		}
		if cfg.Research.OpenAIAPIKey != "" {
			opts = append(opts, research.WithOpenAI(cfg.Research.OpenAIAPIKey, cfg.Research.OpenAIURL, cfg.Research.Model))
		}
		sold = research.NewClient(cfg.Research.TavilyAPIKey, cfg.Research.SearchURL, opts...)
	} else {
		logger.Warn("no search API key configured, sold-comp research disabled")
	}

	var active market.ActiveListingSource
	if cfg.Ebay.ClientID != "" && cfg.Ebay.ClientSecret != "" {
		active = browse.NewClient(cfg.Ebay.ClientID, cfg.Ebay.ClientSecret, cfg.Ebay.OAuthURL, cfg.Ebay.BrowseURL,
			browse.WithTimeout(cfg.Ebay.Timeout),
			browse.WithRetries(cfg.Ebay.MaxRetries, time.Second),
			browse.WithMinInterval(cfg.Ebay.MinInterval),
			browse.WithLogger(logger),
		)
	} else {
		logger.Warn("no eBay credentials configured, active-listing analysis disabled")
	}

	aggregator := market.NewAggregator(sold, active,
		market.WithOutlierThreshold(cfg.Pricing.OutlierThreshold),
		market.WithLogger(logger),
	)

	var providers []upc.Provider
	if cfg.UPC.UPCItemDBKey != "" {
		providers = append(providers, upc.NewUPCItemDB(cfg.UPC.UPCItemDBKey, cfg.UPC.UPCItemDBURL, cfg.UPC.Timeout))
	}
	if cfg.UPC.BarcodeLookupKey != "" {
		providers = append(providers, upc.NewBarcodeLookup(cfg.UPC.BarcodeLookupKey, cfg.UPC.BarcodeLookupURL, cfg.UPC.Timeout))
	}
	// OpenFoodFacts needs no key; always last in the chain.
	providers = append(providers, upc.NewOpenFoodFacts(cfg.UPC.OpenFoodFactsURL, cfg.UPC.Timeout))
	resolver := upc.NewResolver(providers, upc.WithLogger(logger))

	calculator := pricing.NewCalculator(cfg.Pricing, cfg.BestOffer, logger)

	return pricing.NewEngine(store, aggregator, calculator,
		pricing.WithResolver(resolver),
		pricing.WithLogger(logger),
	)
}

// runBatch prices every row of a CSV sequentially. One item's failure never
// aborts the rest; failed rows carry a zero price and an "error" source tag.
func runBatch(ctx context.Context, engine *pricing.Engine, inPath, outPath string, logger *slog.Logger) error {
	in, err := os.Open(inPath)
	if err != nil {
		return fmt.Errorf("open batch file: %w", err)
	}
	defer in.Close()

	reader := csv.NewReader(in)
	header, err := reader.Read()
	if err != nil {
		return fmt.Errorf("read csv header: %w", err)
	}

	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{"brand", "model", "condition"} {
		if _, ok := col[required]; !ok {
			return fmt.Errorf("csv missing required column %q", required)
		}
	}

	field := func(row []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	out := os.Stdout
	if outPath != "" {
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	writer := csv.NewWriter(out)
	if err := writer.Write([]string{
		"sku", "brand", "model", "condition",
		"buy_it_now_price", "min_offer", "sold_comps", "avg_sold_price",
		"confidence", "pricing_source",
	}); err != nil {
		return fmt.Errorf("write output header: %w", err)
	}

	line := 1
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			logger.Warn("skipping malformed csv row", "line", line, "error", err)
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		req := pricing.Request{
			Brand:     field(row, "brand"),
			Model:     field(row, "model"),
			Condition: field(row, "condition"),
			UPC:       field(row, "upc"),
		}
		if raw := field(row, "retail"); raw != "" {
			if v, err := strconv.ParseFloat(raw, 64); err == nil {
				req.RetailPrice = v
			} else {
				logger.Warn("ignoring bad retail price", "line", line, "value", raw)
			}
		}

		record := []string{field(row, "sku"), req.Brand, req.Model, req.Condition}

		rec, err := engine.Recommend(ctx, req)
		if err != nil {
			logger.Warn("pricing failed for batch item",
				"line", line,
				"brand", req.Brand,
				"model", req.Model,
				"error", err,
			)
			record = append(record, "0.00", "0.00", "0", "0.00", "0.00", "error")
		} else {
			record = append(record, batchFields(rec)...)
		}

		if err := writer.Write(record); err != nil {
			return fmt.Errorf("write output row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

func batchFields(rec *model.PricingRecommendation) []string {
	var (
		soldCount int
		avgSold   float64
		source    = "fallback"
	)
	if rec.MarketData != nil {
		soldCount = rec.MarketData.SoldCount
		avgSold = rec.MarketData.AvgSoldPrice
		if len(rec.MarketData.Sources) > 0 {
			source = strings.Join(rec.MarketData.Sources, ", ")
		}
	}

	money := func(v float64) string {
		return strconv.FormatFloat(model.RoundCents(v), 'f', 2, 64)
	}

	return []string{
		money(rec.BuyItNowPrice),
		money(rec.MinOfferPrice),
		strconv.Itoa(soldCount),
		money(avgSold),
		strconv.FormatFloat(rec.Confidence, 'f', 2, 64),
		source,
	}
}
