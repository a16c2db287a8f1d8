package config

import (
	"errors"
	"fmt"
)

// Validate checks that all required fields are set and values are sane.
func (c *PricerConfig) Validate() error {
	if c.Cache.Path == "" {
		return errors.New("cache.path is required")
	}
	if c.Cache.TTL <= 0 {
		return errors.New("cache.ttl must be > 0")
	}

	if c.Ebay.Timeout <= 0 {
		return errors.New("ebay.timeout must be > 0")
	}
	if c.Ebay.MaxRetries < 0 {
		return errors.New("ebay.max_retries cannot be negative")
	}

	if c.Research.LookbackDays < 1 {
		return errors.New("research.lookback_days must be >= 1")
	}
	if c.Research.MaxResults < 1 {
		return errors.New("research.max_results must be >= 1")
	}

	if c.Pricing.BaseMultiplier <= 0 || c.Pricing.BaseMultiplier > 1 {
		return fmt.Errorf("pricing.base_multiplier must be in (0, 1], got %v", c.Pricing.BaseMultiplier)
	}
	if c.Pricing.MinSoldSamples < 1 {
		return errors.New("pricing.min_sold_samples must be >= 1")
	}
	if c.Pricing.OutlierThreshold <= 0 {
		return errors.New("pricing.outlier_threshold must be > 0")
	}
	if c.Pricing.FallbackRetailMult <= 0 || c.Pricing.FallbackRetailMult > 1 {
		return fmt.Errorf("pricing.fallback_retail_multiplier must be in (0, 1], got %v", c.Pricing.FallbackRetailMult)
	}
	for code, penalty := range c.Pricing.ConditionPenalties {
		if penalty < 0 || penalty >= 1 {
			return fmt.Errorf("pricing.condition_penalties[%s] must be in [0, 1), got %v", code, penalty)
		}
	}
	if c.Pricing.DefaultConditionPenalty < 0 || c.Pricing.DefaultConditionPenalty >= 1 {
		return fmt.Errorf("pricing.default_condition_penalty must be in [0, 1), got %v", c.Pricing.DefaultConditionPenalty)
	}

	if err := validatePct("best_offer.min_offer_percentage", c.BestOffer.MinOfferPct); err != nil {
		return err
	}
	if err := validatePct("best_offer.auto_accept_percentage", c.BestOffer.AutoAcceptPct); err != nil {
		return err
	}
	if err := validatePct("best_offer.auto_decline_percentage", c.BestOffer.AutoDeclinePct); err != nil {
		return err
	}

	return nil
}

func validatePct(name string, v float64) error {
	if v <= 0 || v >= 1 {
		return fmt.Errorf("%s must be in (0, 1), got %v", name, v)
	}
	return nil
}
