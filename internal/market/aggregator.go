package market

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mrosen/ebay-pricer/internal/model"
)

// SoldCompSource finds recently sold listings for a product.
type SoldCompSource interface {
	ResearchSoldComps(ctx context.Context, brand, itemModel, cond string) ([]model.SoldListing, error)
}

// ActiveListingSource summarizes live competing listings.
type ActiveListingSource interface {
	AnalyzeActiveListings(ctx context.Context, brand, itemModel, cond string) (model.ActiveStats, error)
}

// Aggregator merges sold and active signals into MarketRecords. Either
// source may be nil, producing records with only the other side populated.
type Aggregator struct {
	sold   SoldCompSource
	active ActiveListingSource

	outlierThreshold float64
	logger           *slog.Logger
	now              func() time.Time
}

// AggregatorOption configures an Aggregator.
type AggregatorOption func(*Aggregator)

// NewAggregator creates an aggregator over the given sources.
func NewAggregator(sold SoldCompSource, active ActiveListingSource, opts ...AggregatorOption) *Aggregator {
	a := &Aggregator{
		sold:             sold,
		active:           active,
		outlierThreshold: DefaultOutlierThreshold,
		logger:           slog.Default(),
		now:              time.Now,
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// WithOutlierThreshold sets the z-score cutoff for sold-price outliers.
func WithOutlierThreshold(t float64) AggregatorOption {
	return func(a *Aggregator) {
		if t > 0 {
			a.outlierThreshold = t
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) AggregatorOption {
	return func(a *Aggregator) {
		a.logger = logger
	}
}

// WithClock overrides the time source. Used in tests.
func WithClock(now func() time.Time) AggregatorOption {
	return func(a *Aggregator) {
		a.now = now
	}
}

// Fetch gathers fresh market data for one (brand, model, condition) tuple.
// Source failures are logged and absorbed; the returned record reports
// whatever the surviving sources produced. Fetch itself fails only when the
// context is canceled before both fetches complete.
func (a *Aggregator) Fetch(ctx context.Context, brand, itemModel, cond string) (*model.MarketRecord, error) {
	rec := &model.MarketRecord{
		Brand:     brand,
		Model:     itemModel,
		Condition: cond,
		CreatedAt: a.now(),
	}

	var (
		soldListings []model.SoldListing
		activeStats  model.ActiveStats
		activeOK     bool
	)

	g, gctx := errgroup.WithContext(ctx)

	if a.sold != nil {
		g.Go(func() error {
			listings, err := a.sold.ResearchSoldComps(gctx, brand, itemModel, cond)
			if err != nil {
				a.logger.Warn("sold-comp research failed",
					"brand", brand,
					"model", itemModel,
					"error", err,
				)
				return nil
			}
			soldListings = listings
			return nil
		})
	}

	if a.active != nil {
		g.Go(func() error {
			stats, err := a.active.AnalyzeActiveListings(gctx, brand, itemModel, cond)
			if err != nil {
				a.logger.Warn("active-listing analysis failed",
					"brand", brand,
					"model", itemModel,
					"error", err,
				)
				return nil
			}
			activeStats = stats
			activeOK = true
			return nil
		})
	}

	// The goroutines never return errors, so Wait only reflects context
	// cancellation.
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if len(soldListings) > 0 {
		stats := CalculateSoldStats(soldListings, a.outlierThreshold)
		rec.SoldListings = soldListings
		rec.AvgSoldPrice = stats.AvgPrice
		rec.MedianSoldPrice = stats.MedianPrice
		rec.PriceRangeLow = stats.RangeLow
		rec.PriceRangeHigh = stats.RangeHigh
		rec.SoldCount = stats.Count
		rec.Sources = append(rec.Sources, model.SourceAIResearch)

		a.logger.Info("sold comps aggregated",
			"brand", brand,
			"model", itemModel,
			"sold_count", rec.SoldCount,
			"avg_sold_price", rec.AvgSoldPrice,
		)
	}

	if activeOK && activeStats.Count > 0 {
		rec.ActiveListingCount = activeStats.Count
		rec.AvgActivePrice = activeStats.AvgPrice
		rec.MedianActivePrice = activeStats.MedianPrice
		rec.Sources = append(rec.Sources, model.SourceBrowseAPI)

		a.logger.Info("active listings aggregated",
			"brand", brand,
			"model", itemModel,
			"active_count", rec.ActiveListingCount,
			"avg_active_price", rec.AvgActivePrice,
		)
	}

	if !rec.HasData() {
		a.logger.Warn("no market data found", "brand", brand, "model", itemModel)
	}

	return rec, nil
}
