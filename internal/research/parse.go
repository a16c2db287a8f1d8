package research

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/mrosen/ebay-pricer/internal/model"
)

// Sanity bounds for regex-extracted prices. Anything outside is assumed to
// be a shipping cost, item count, or other noise.
const (
	basicPriceMin = 10
	basicPriceMax = 10000
)

var pricePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\$(\d+\.?\d*)`),
	regexp.MustCompile(`(?i)(\d+\.?\d*)\s*USD`),
	regexp.MustCompile(`(?i)sold for \$?(\d+\.?\d*)`),
}

// parseBasic extracts one price per search result using regex only. A result
// counts only when its text mentions a sale; the extracted prices carry the
// requested condition since snippets rarely state one.
func (c *Client) parseBasic(results []searchResult, brand, itemModel, cond string) []model.SoldListing {
	now := c.now()

	var listings []model.SoldListing
	for _, r := range results {
		content := r.Content + " " + r.Title
		if !strings.Contains(strings.ToLower(content), "sold") {
			continue
		}

		price, ok := extractPrice(content)
		if !ok {
			continue
		}

		title := r.Title
		if title == "" {
			title = brand + " " + itemModel
		}
		if len(title) > 100 {
			title = title[:100]
		}

		listings = append(listings, model.SoldListing{
			Title:     title,
			Price:     price,
			SoldDate:  now, // snippet dates are unreliable, assume recent
			Condition: cond,
			Source:    "tavily_basic",
			URL:       r.URL,
		})
	}

	return listings
}

// extractPrice returns the first in-bounds price any pattern matches.
func extractPrice(content string) (float64, bool) {
	for _, pattern := range pricePatterns {
		m := pattern.FindStringSubmatch(content)
		if m == nil {
			continue
		}
		price, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			continue
		}
		if price >= basicPriceMin && price <= basicPriceMax {
			return price, true
		}
	}
	return 0, false
}
