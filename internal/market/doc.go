// Package market aggregates pricing signals into a single MarketRecord.
//
// Two independent sources feed the aggregator: sold comps from web research
// and live competition stats from the Browse API. The fetches run
// concurrently; a failed or missing source degrades the record instead of
// failing the aggregation. Sold prices pass through z-score outlier
// rejection before the summary statistics are computed.
package market
