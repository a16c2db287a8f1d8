// Package cache implements the durable TTL cache for aggregated market
// records, backed by a single-file SQLite database.
//
// Entries are keyed by the normalized (brand, model, condition) triple and
// replaced wholesale on write. Expired or corrupt entries are deleted as a
// side effect of being read and surface as cache misses; the pricing
// pipeline always tolerates reconstructing fresh data.
package cache
