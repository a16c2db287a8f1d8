package config

import "time"

// PricerConfig is the root configuration for the pricing engine.
type PricerConfig struct {
	Cache     CacheConfig     `yaml:"cache"`
	Ebay      EbayConfig      `yaml:"ebay"`
	Research  ResearchConfig  `yaml:"research"`
	UPC       UPCConfig       `yaml:"upc"`
	Pricing   PricingConfig   `yaml:"pricing"`
	BestOffer BestOfferConfig `yaml:"best_offer"`
}

// CacheConfig holds settings for the market-data cache store.
type CacheConfig struct {
	Path string        `yaml:"path"` // SQLite database file
	TTL  time.Duration `yaml:"ttl"`  // How long a cached record stays fresh
}

// EbayConfig holds eBay Browse API credentials and endpoints.
type EbayConfig struct {
	ClientID     string        `yaml:"client_id"`
	ClientSecret string        `yaml:"client_secret"`
	Sandbox      bool          `yaml:"sandbox"`
	OAuthURL     string        `yaml:"oauth_url"`  // Defaulted from Sandbox when empty
	BrowseURL    string        `yaml:"browse_url"` // Defaulted from Sandbox when empty
	Timeout      time.Duration `yaml:"timeout"`
	MaxRetries   int           `yaml:"max_retries"`
	MinInterval  time.Duration `yaml:"min_interval"` // Spacing between Browse requests
}

// ResearchConfig holds settings for AI-assisted sold-comp research.
type ResearchConfig struct {
	TavilyAPIKey string        `yaml:"tavily_api_key"`
	OpenAIAPIKey string        `yaml:"openai_api_key"` // Optional; regex fallback when empty
	SearchURL    string        `yaml:"search_url"`
	OpenAIURL    string        `yaml:"openai_url"`
	Model        string        `yaml:"model"` // Chat model used for extraction
	LookbackDays int           `yaml:"lookback_days"`
	MaxResults   int           `yaml:"max_results"`
	Timeout      time.Duration `yaml:"timeout"`
}

// UPCConfig holds barcode lookup provider settings. Providers without a key
// are skipped; OpenFoodFacts needs none.
type UPCConfig struct {
	UPCItemDBKey     string        `yaml:"upcitemdb_api_key"`
	BarcodeLookupKey string        `yaml:"barcodelookup_api_key"`
	UPCItemDBURL     string        `yaml:"upcitemdb_url"`
	BarcodeLookupURL string        `yaml:"barcodelookup_url"`
	OpenFoodFactsURL string        `yaml:"openfoodfacts_url"`
	Timeout          time.Duration `yaml:"timeout"`
}

// PricingConfig holds the numeric pricing policy.
type PricingConfig struct {
	BaseMultiplier          float64            `yaml:"base_multiplier"`           // Applied to the tier base price
	MinSoldSamples          int                `yaml:"min_sold_samples"`          // Sold comps required for the sold tier
	OutlierThreshold        float64            `yaml:"outlier_threshold"`         // Z-score cutoff for sold-price outliers
	FallbackRetailMult      float64            `yaml:"fallback_retail_multiplier"` // Fraction of MSRP in the retail tier
	ConditionPenalties      map[string]float64 `yaml:"condition_penalties"`
	DefaultConditionPenalty float64            `yaml:"default_condition_penalty"` // Used for unmapped condition codes
}

// BestOfferConfig holds best-offer threshold policy. Enabled by default.
type BestOfferConfig struct {
	Disabled       bool    `yaml:"disabled"`
	MinOfferPct    float64 `yaml:"min_offer_percentage"`
	AutoAcceptPct  float64 `yaml:"auto_accept_percentage"`
	AutoDeclinePct float64 `yaml:"auto_decline_percentage"`
}
