// Package pricing derives a recommendation from aggregated market data.
//
// The calculator selects a base price from a strict tier order (sold comps,
// then active listings, then retail fallback), applies the base multiplier
// and a condition-based penalty, and attaches best-offer thresholds. When no
// tier has data the recommendation carries a zero price and zero confidence
// rather than an error.
//
// The Engine wraps the calculator with the full pipeline: optional UPC
// resolution, condition normalization, the TTL cache, and fresh aggregation
// on a miss.
package pricing
