package pricing

import (
	"fmt"
	"strings"

	"github.com/mrosen/ebay-pricer/internal/model"
)

// Summary renders a recommendation as a human-readable block for CLI output.
func Summary(p *model.PricingRecommendation) string {
	var (
		soldCount   int
		activeCount int
		avgSold     float64
		sources     = "none"
	)
	if p.MarketData != nil {
		soldCount = p.MarketData.SoldCount
		activeCount = p.MarketData.ActiveListingCount
		avgSold = p.MarketData.AvgSoldPrice
		if len(p.MarketData.Sources) > 0 {
			sources = strings.Join(p.MarketData.Sources, ", ")
		}
	}

	var sb strings.Builder
	sb.WriteString("Pricing Summary\n")
	sb.WriteString("===============\n")
	fmt.Fprintf(&sb, "Buy It Now:     %s\n", model.FormatUSD(p.BuyItNowPrice))
	fmt.Fprintf(&sb, "Min Offer:      %s\n", model.FormatUSD(p.MinOfferPrice))
	fmt.Fprintf(&sb, "Auto-Accept:    %s\n", model.FormatUSD(p.AutoAcceptOffer))
	fmt.Fprintf(&sb, "Auto-Decline:   %s\n", model.FormatUSD(p.AutoDeclineOffer))
	sb.WriteString("\n")
	fmt.Fprintf(&sb, "Confidence:     %.0f%%\n", p.Confidence*100)
	fmt.Fprintf(&sb, "Reasoning:      %s\n", p.Reasoning)
	sb.WriteString("\n")
	sb.WriteString("Market Data:\n")
	fmt.Fprintf(&sb, "- Sold listings:   %d\n", soldCount)
	fmt.Fprintf(&sb, "- Active listings: %d\n", activeCount)
	fmt.Fprintf(&sb, "- Avg sold price:  %s\n", model.FormatUSD(avgSold))
	fmt.Fprintf(&sb, "- Sources:         %s", sources)

	return sb.String()
}
