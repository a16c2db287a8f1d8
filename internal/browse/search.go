package browse

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/mrosen/ebay-pricer/internal/condition"
	"github.com/mrosen/ebay-pricer/internal/model"
)

const maxSearchLimit = 200 // Browse API page-size cap

// SearchOptions narrows an active-listing search.
type SearchOptions struct {
	Condition string  // Normalized condition code; empty skips the filter
	Limit     int     // Defaults to 50
	MinPrice  float64 // Excludes accessories/parts when > 0
	MaxPrice  float64
}

// SearchActiveListings queries active Buy It Now listings for a product.
func (c *Client) SearchActiveListings(ctx context.Context, brand, itemModel string, opts SearchOptions) (*SearchResponse, error) {
	query := url.Values{}
	query.Set("q", strings.TrimSpace(brand+" "+itemModel))

	// Only fixed-price listings; auctions distort competitive pricing.
	filters := []string{"buyingOptions:{FIXED_PRICE}"}

	if opts.Condition != "" {
		if id := condition.BrowseID(opts.Condition); id != "" {
			filters = append(filters, fmt.Sprintf("conditionIds:{%s}", id))
		}
	}

	switch {
	case opts.MinPrice > 0 && opts.MaxPrice > 0:
		filters = append(filters, fmt.Sprintf("price:[%d..%d]", int(opts.MinPrice), int(opts.MaxPrice)))
	case opts.MinPrice > 0:
		filters = append(filters, fmt.Sprintf("price:[%d..]", int(opts.MinPrice)))
	case opts.MaxPrice > 0:
		filters = append(filters, fmt.Sprintf("price:[..%d]", int(opts.MaxPrice)))
	}
	if opts.MinPrice > 0 || opts.MaxPrice > 0 {
		filters = append(filters, "priceCurrency:USD")
	}

	query.Set("filter", strings.Join(filters, ","))

	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}
	if limit > maxSearchLimit {
		limit = maxSearchLimit
	}
	query.Set("limit", strconv.Itoa(limit))
	query.Set("sort", "price")

	c.logger.Debug("searching active listings",
		"q", query.Get("q"),
		"filter", query.Get("filter"),
	)

	var resp SearchResponse
	if err := c.get(ctx, "/item_summary/search", query, &resp); err != nil {
		return nil, fmt.Errorf("search active listings: %w", err)
	}

	return &resp, nil
}

// AnalyzeActiveListings searches competing active listings and summarizes
// their asking prices. A condition-specific minimum price filter suppresses
// accessory noise.
func (c *Client) AnalyzeActiveListings(ctx context.Context, brand, itemModel, cond string) (model.ActiveStats, error) {
	minPrice := MinimumPrice(brand, itemModel)

	resp, err := c.SearchActiveListings(ctx, brand, itemModel, SearchOptions{
		Condition: cond,
		MinPrice:  minPrice,
	})
	if err != nil {
		return model.ActiveStats{}, err
	}

	var prices []float64
	for _, item := range resp.ItemSummaries {
		v, err := strconv.ParseFloat(item.Price.Value, 64)
		if err != nil || v <= 0 {
			continue
		}
		prices = append(prices, v)
	}

	if len(prices) == 0 {
		c.logger.Info("no priced active listings found", "brand", brand, "model", itemModel)
		return model.ActiveStats{}, nil
	}

	stats := summarizePrices(prices)
	c.logger.Info("active competition analyzed",
		"brand", brand,
		"model", itemModel,
		"count", stats.Count,
		"avg", stats.AvgPrice,
		"median", stats.MedianPrice,
	)
	return stats, nil
}

func summarizePrices(prices []float64) model.ActiveStats {
	sorted := make([]float64, len(prices))
	copy(sorted, prices)
	sort.Float64s(sorted)

	var sum float64
	for _, p := range sorted {
		sum += p
	}

	n := len(sorted)
	median := sorted[n/2]
	if n%2 == 0 {
		median = (sorted[n/2-1] + sorted[n/2]) / 2
	}

	return model.ActiveStats{
		Count:       n,
		AvgPrice:    sum / float64(n),
		MedianPrice: median,
		RangeLow:    sorted[0],
		RangeHigh:   sorted[n-1],
	}
}
