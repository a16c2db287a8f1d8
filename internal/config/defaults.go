package config

import (
	"time"

	"github.com/mrosen/ebay-pricer/internal/condition"
)

// Default values for optional configuration fields.
const (
	DefaultCachePath = "pricing_cache.db"
	DefaultCacheTTL  = 24 * time.Hour

	DefaultEbayOAuthURL         = "https://api.ebay.com/identity/v1/oauth2/token"
	DefaultEbayBrowseURL        = "https://api.ebay.com/buy/browse/v1"
	DefaultEbaySandboxOAuthURL  = "https://api.sandbox.ebay.com/identity/v1/oauth2/token"
	DefaultEbaySandboxBrowseURL = "https://api.sandbox.ebay.com/buy/browse/v1"
	DefaultEbayTimeout          = 10 * time.Second
	DefaultEbayMaxRetries       = 3
	DefaultEbayMinInterval      = 100 * time.Millisecond

	DefaultSearchURL       = "https://api.tavily.com/search"
	DefaultOpenAIURL       = "https://api.openai.com/v1/chat/completions"
	DefaultChatModel       = "gpt-4o"
	DefaultLookbackDays    = 30
	DefaultMaxResults      = 10
	DefaultResearchTimeout = 30 * time.Second

	DefaultUPCItemDBURL     = "https://api.upcitemdb.com/prod/trial/lookup"
	DefaultBarcodeLookupURL = "https://api.barcodelookup.com/v3/products"
	DefaultOpenFoodFactsURL = "https://world.openfoodfacts.org/api/v0/product"
	DefaultUPCTimeout       = 5 * time.Second

	DefaultBaseMultiplier     = 0.92
	DefaultMinSoldSamples     = 3
	DefaultOutlierThreshold   = 2.5
	DefaultFallbackRetailMult = 0.50
	DefaultConditionPenalty   = 0.10
	DefaultMinOfferPct        = 0.85
	DefaultAutoAcceptPct      = 0.95
	DefaultAutoDeclinePct     = 0.75
)

// DefaultConditionPenalties returns the standard depreciation table.
func DefaultConditionPenalties() map[string]float64 {
	return map[string]float64{
		condition.LikeNew:              0.00,
		condition.UsedExcellent:        0.05,
		condition.UsedVeryGood:         0.10,
		condition.UsedGood:             0.10,
		condition.UsedAcceptable:       0.20,
		condition.ForPartsOrNotWorking: 0.50,
	}
}

func (c *PricerConfig) applyDefaults() {
	// Cache defaults
	if c.Cache.Path == "" {
		c.Cache.Path = DefaultCachePath
	}
	if c.Cache.TTL == 0 {
		c.Cache.TTL = DefaultCacheTTL
	}

	// eBay defaults (endpoints follow the sandbox flag)
	if c.Ebay.OAuthURL == "" {
		if c.Ebay.Sandbox {
			c.Ebay.OAuthURL = DefaultEbaySandboxOAuthURL
		} else {
			c.Ebay.OAuthURL = DefaultEbayOAuthURL
		}
	}
	if c.Ebay.BrowseURL == "" {
		if c.Ebay.Sandbox {
			c.Ebay.BrowseURL = DefaultEbaySandboxBrowseURL
		} else {
			c.Ebay.BrowseURL = DefaultEbayBrowseURL
		}
	}
	if c.Ebay.Timeout == 0 {
		c.Ebay.Timeout = DefaultEbayTimeout
	}
	if c.Ebay.MaxRetries == 0 {
		c.Ebay.MaxRetries = DefaultEbayMaxRetries
	}
	if c.Ebay.MinInterval == 0 {
		c.Ebay.MinInterval = DefaultEbayMinInterval
	}

	// Research defaults
	if c.Research.SearchURL == "" {
		c.Research.SearchURL = DefaultSearchURL
	}
	if c.Research.OpenAIURL == "" {
		c.Research.OpenAIURL = DefaultOpenAIURL
	}
	if c.Research.Model == "" {
		c.Research.Model = DefaultChatModel
	}
	if c.Research.LookbackDays == 0 {
		c.Research.LookbackDays = DefaultLookbackDays
	}
	if c.Research.MaxResults == 0 {
		c.Research.MaxResults = DefaultMaxResults
	}
	if c.Research.Timeout == 0 {
		c.Research.Timeout = DefaultResearchTimeout
	}

	// UPC defaults
	if c.UPC.UPCItemDBURL == "" {
		c.UPC.UPCItemDBURL = DefaultUPCItemDBURL
	}
	if c.UPC.BarcodeLookupURL == "" {
		c.UPC.BarcodeLookupURL = DefaultBarcodeLookupURL
	}
	if c.UPC.OpenFoodFactsURL == "" {
		c.UPC.OpenFoodFactsURL = DefaultOpenFoodFactsURL
	}
	if c.UPC.Timeout == 0 {
		c.UPC.Timeout = DefaultUPCTimeout
	}

	// Pricing defaults
	if c.Pricing.BaseMultiplier == 0 {
		c.Pricing.BaseMultiplier = DefaultBaseMultiplier
	}
	if c.Pricing.MinSoldSamples == 0 {
		c.Pricing.MinSoldSamples = DefaultMinSoldSamples
	}
	if c.Pricing.OutlierThreshold == 0 {
		c.Pricing.OutlierThreshold = DefaultOutlierThreshold
	}
	if c.Pricing.FallbackRetailMult == 0 {
		c.Pricing.FallbackRetailMult = DefaultFallbackRetailMult
	}
	if c.Pricing.ConditionPenalties == nil {
		c.Pricing.ConditionPenalties = DefaultConditionPenalties()
	}
	if c.Pricing.DefaultConditionPenalty == 0 {
		c.Pricing.DefaultConditionPenalty = DefaultConditionPenalty
	}

	// Best-offer defaults
	if c.BestOffer.MinOfferPct == 0 {
		c.BestOffer.MinOfferPct = DefaultMinOfferPct
	}
	if c.BestOffer.AutoAcceptPct == 0 {
		c.BestOffer.AutoAcceptPct = DefaultAutoAcceptPct
	}
	if c.BestOffer.AutoDeclinePct == 0 {
		c.BestOffer.AutoDeclinePct = DefaultAutoDeclinePct
	}
}
