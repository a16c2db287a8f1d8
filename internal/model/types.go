package model

import "time"

// -----------------------------------------------------------------------------
// Source Tags
// -----------------------------------------------------------------------------

// Tags identifying how a market signal was acquired.
const (
	SourceAIResearch = "ai_research" // sold comps extracted from web research
	SourceBrowseAPI  = "browse_api"  // live listings from the eBay Browse API
)

// -----------------------------------------------------------------------------
// Market Signals
// -----------------------------------------------------------------------------

// SoldListing is a single historical sale used as a pricing signal.
// Immutable once created; produced only by the research step.
type SoldListing struct {
	Title     string    // Listing title
	Price     float64   // Sale price in USD, always > 0
	SoldDate  time.Time // When the sale completed
	Condition string    // Normalized condition code
	Source    string    // Acquisition tag (e.g. "tavily_ai")
	URL       string    // Listing URL, may be empty
}

// ActiveStats summarizes live competing listings for a product.
type ActiveStats struct {
	Count       int     // Number of priced listings found
	AvgPrice    float64 // Mean asking price, 0 when Count == 0
	MedianPrice float64 // Median asking price, 0 when Count == 0
	RangeLow    float64 // Lowest asking price
	RangeHigh   float64 // Highest asking price
}

// MarketRecord is the aggregated market intelligence for one
// (brand, model, condition) tuple. Records are created whole by the
// aggregator and replaced wholesale on cache refresh, never mutated.
//
// Invariant: average/median fields are 0.0 when their count is 0.
// SoldCount and ActiveListingCount are independent.
type MarketRecord struct {
	Brand     string
	Model     string
	Condition string // Normalized condition code

	// Sold-side signals
	AvgSoldPrice    float64
	MedianSoldPrice float64
	PriceRangeLow   float64
	PriceRangeHigh  float64
	SoldCount       int // Raw listing count, before outlier filtering
	SoldListings    []SoldListing

	// Active-side signals
	ActiveListingCount int
	AvgActivePrice     float64
	MedianActivePrice  float64

	// Metadata
	Confidence float64       // 0.0-1.0
	DataAge    time.Duration // Derived at cache read time; 0 for fresh records
	Sources    []string      // Contributing source tags
	CreatedAt  time.Time
}

// HasData reports whether either source contributed at least one signal.
func (r *MarketRecord) HasData() bool {
	return r.SoldCount > 0 || r.ActiveListingCount > 0
}

// -----------------------------------------------------------------------------
// Pricing Output
// -----------------------------------------------------------------------------

// PricingRecommendation is the final output of the pricing calculator.
//
// Zero-valued offer fields mean "not computed" (best-offer disabled or the
// no-data terminal). The auction fields are reserved and never populated.
//
// Invariant: BuyItNowPrice == 0 implies Confidence == 0.
type PricingRecommendation struct {
	BuyItNowPrice float64

	// Best-offer thresholds, fixed fractions of BuyItNowPrice
	MinOfferPrice    float64
	AutoAcceptOffer  float64
	AutoDeclineOffer float64

	// Auction settings (reserved; auction-format pricing is not implemented)
	AuctionStartPrice   float64
	AuctionReservePrice float64

	Confidence float64 // 0.0-1.0, driven by which data tier produced the price
	Reasoning  string  // Human-readable derivation trail

	// MarketData references the record the price was derived from. The
	// recommendation borrows the record; the cache may share it across calls.
	MarketData *MarketRecord
}

// -----------------------------------------------------------------------------
// Product Identity
// -----------------------------------------------------------------------------

// ProductInfo is a canonical product resolved from a UPC/EAN barcode.
type ProductInfo struct {
	Title        string
	Brand        string
	Model        string
	Category     string
	UPC          string // Normalized digits-only code
	MSRP         float64
	LowestPrice  float64
	HighestPrice float64
	Description  string
	Images       []string
	Source       string // Provider that answered (e.g. "upcitemdb")
}
