// Package model defines shared data types used across the pricing pipeline.
//
// Conventions:
//   - Prices: float64 US dollars at full precision; rounding to cents happens
//     only at the presentation boundary (RoundCents / FormatUSD)
//   - Timestamps: time.Time
//   - Condition: normalized eBay condition codes (see internal/condition)
package model
