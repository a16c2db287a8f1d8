package pricing

import (
	"fmt"
	"log/slog"

	"github.com/mrosen/ebay-pricer/internal/config"
	"github.com/mrosen/ebay-pricer/internal/model"
)

// Tier confidence scores. Driven by which data produced the base price, not
// by sample quality within the tier.
const (
	confidenceSold   = 0.9
	confidenceActive = 0.6
	confidenceRetail = 0.3
)

// Active asking prices overshoot realized prices, so the active tier
// discounts them before the base multiplier applies.
const activeListingDiscount = 0.95

// Calculator turns market records into pricing recommendations.
type Calculator struct {
	pricing   config.PricingConfig
	bestOffer config.BestOfferConfig
	logger    *slog.Logger
}

// NewCalculator creates a calculator with the given policy.
func NewCalculator(pricing config.PricingConfig, bestOffer config.BestOfferConfig, logger *slog.Logger) *Calculator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Calculator{
		pricing:   pricing,
		bestOffer: bestOffer,
		logger:    logger,
	}
}

// penalty returns the depreciation fraction for a normalized condition code.
func (c *Calculator) penalty(cond string) float64 {
	if p, ok := c.pricing.ConditionPenalties[cond]; ok {
		return p
	}
	return c.pricing.DefaultConditionPenalty
}

// Calculate derives a recommendation from the record and an optional retail
// price. Tiers are evaluated in strict order; the first with data wins.
// retailPrice <= 0 means "not provided".
func (c *Calculator) Calculate(rec *model.MarketRecord, cond string, retailPrice float64) *model.PricingRecommendation {
	var (
		basePrice  float64
		confidence float64
		reasoning  string
	)

	switch {
	case rec.SoldCount >= c.pricing.MinSoldSamples:
		basePrice = rec.AvgSoldPrice
		confidence = confidenceSold
		reasoning = fmt.Sprintf("Based on %d sold listings (avg %s)", rec.SoldCount, model.FormatUSD(basePrice))
		c.logger.Info("using sold comps", "base_price", basePrice, "sold_count", rec.SoldCount)

	case rec.ActiveListingCount > 0:
		basePrice = rec.AvgActivePrice * activeListingDiscount
		confidence = confidenceActive
		reasoning = fmt.Sprintf("Based on %d active listings (%s * %.2f)",
			rec.ActiveListingCount, model.FormatUSD(rec.AvgActivePrice), activeListingDiscount)
		c.logger.Info("using active listings", "base_price", basePrice, "active_count", rec.ActiveListingCount)

	case retailPrice > 0:
		basePrice = retailPrice * c.pricing.FallbackRetailMult
		confidence = confidenceRetail
		reasoning = fmt.Sprintf("Fallback to %.0f%% of retail price (%s)",
			c.pricing.FallbackRetailMult*100, model.FormatUSD(retailPrice))
		c.logger.Warn("using retail fallback", "base_price", basePrice, "retail_price", retailPrice)

	default:
		c.logger.Error("no pricing data available and no retail price provided")
		return &model.PricingRecommendation{
			BuyItNowPrice: 0,
			Confidence:    0,
			Reasoning:     "No market data or retail price available",
			MarketData:    rec,
		}
	}

	conditionPenalty := c.penalty(cond)
	bin := basePrice * c.pricing.BaseMultiplier * (1 - conditionPenalty)

	c.logger.Info("pricing calculated",
		"base_price", basePrice,
		"base_multiplier", c.pricing.BaseMultiplier,
		"condition_penalty", conditionPenalty,
		"buy_it_now", bin,
		"confidence", confidence,
	)

	out := &model.PricingRecommendation{
		BuyItNowPrice: bin,
		Confidence:    confidence,
		Reasoning: fmt.Sprintf("%s. Applied %.0f%% base multiplier and %.0f%% condition penalty for %s. Final BIN: %s",
			reasoning, c.pricing.BaseMultiplier*100, conditionPenalty*100, cond, model.FormatUSD(bin)),
		MarketData: rec,
	}

	if !c.bestOffer.Disabled {
		out.MinOfferPrice = bin * c.bestOffer.MinOfferPct
		out.AutoAcceptOffer = bin * c.bestOffer.AutoAcceptPct
		out.AutoDeclineOffer = bin * c.bestOffer.AutoDeclinePct
	}

	return out
}
