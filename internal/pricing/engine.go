package pricing

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/mrosen/ebay-pricer/internal/condition"
	"github.com/mrosen/ebay-pricer/internal/model"
)

// MarketCache persists market records across runs.
type MarketCache interface {
	Get(brand, itemModel, cond string) (*model.MarketRecord, error)
	Put(rec *model.MarketRecord) error
}

// Fetcher produces fresh market records on a cache miss.
type Fetcher interface {
	Fetch(ctx context.Context, brand, itemModel, cond string) (*model.MarketRecord, error)
}

// ProductResolver resolves barcodes to canonical product identity.
type ProductResolver interface {
	Lookup(ctx context.Context, code string) (*model.ProductInfo, bool)
}

// Engine runs the full pricing pipeline for one product.
type Engine struct {
	cache      MarketCache
	fetcher    Fetcher
	resolver   ProductResolver
	calculator *Calculator
	logger     *slog.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithResolver enables UPC-based product identification.
func WithResolver(r ProductResolver) EngineOption {
	return func(e *Engine) {
		e.resolver = r
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		e.logger = logger
	}
}

// NewEngine wires the pipeline. cache and fetcher are required; the resolver
// is optional.
func NewEngine(cache MarketCache, fetcher Fetcher, calculator *Calculator, opts ...EngineOption) *Engine {
	e := &Engine{
		cache:      cache,
		fetcher:    fetcher,
		calculator: calculator,
		logger:     slog.Default(),
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Request identifies one product to price. RetailPrice <= 0 means "not
// provided"; UPC is optional.
type Request struct {
	Brand       string
	Model       string
	Condition   string
	RetailPrice float64
	UPC         string
}

// Recommend prices one product: resolve the UPC if given, check the cache,
// aggregate fresh data on a miss, then calculate. Collaborator failures
// degrade the data instead of failing the call; the no-data terminal is a
// zero-price recommendation, not an error.
func (e *Engine) Recommend(ctx context.Context, req Request) (*model.PricingRecommendation, error) {
	runID := uuid.NewString()
	logger := e.logger.With("run_id", runID)

	brand := req.Brand
	itemModel := req.Model
	retailPrice := req.RetailPrice

	if req.UPC != "" && e.resolver != nil {
		if info, ok := e.resolver.Lookup(ctx, req.UPC); ok {
			logger.Info("upc lookup found product",
				"title", info.Title,
				"source", info.Source,
			)

			// The full product title searches better than a bare
			// model number.
			if info.Title != "" {
				itemModel = info.Title
			}
			if info.Brand != "" {
				brand = info.Brand
			}
			if retailPrice <= 0 && info.MSRP > 0 {
				retailPrice = info.MSRP
				logger.Info("using msrp from upc lookup", "retail_price", retailPrice)
			}
		}
	}

	cond := condition.Normalize(req.Condition)

	logger.Info("calculating pricing",
		"brand", brand,
		"model", itemModel,
		"condition", cond,
	)

	rec, err := e.cache.Get(brand, itemModel, cond)
	if err != nil {
		logger.Warn("cache read failed", "error", err)
		rec = nil
	}

	if rec == nil {
		logger.Info("cache miss, fetching fresh market data")

		rec, err = e.fetcher.Fetch(ctx, brand, itemModel, cond)
		if err != nil {
			return nil, err
		}

		// Empty records are not worth a cache slot; the next call
		// should retry the sources.
		if rec.HasData() {
			if err := e.cache.Put(rec); err != nil {
				logger.Warn("cache write failed", "error", err)
			}
		}
	} else {
		logger.Info("using cached market data", "data_age", rec.DataAge)
	}

	pricing := e.calculator.Calculate(rec, cond, retailPrice)

	logger.Info("pricing complete",
		"buy_it_now", pricing.BuyItNowPrice,
		"confidence", pricing.Confidence,
	)

	return pricing, nil
}
