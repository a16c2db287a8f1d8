package cache

import (
	"encoding/json"
	"time"

	"github.com/mrosen/ebay-pricer/internal/model"
)

// Flat JSON shape persisted in the data_json column. Deliberately decoupled
// from model.MarketRecord so the stored format can outlive field renames.

type soldListingJSON struct {
	Title     string  `json:"title"`
	Price     float64 `json:"price"`
	SoldDate  string  `json:"sold_date"`
	Condition string  `json:"condition"`
	Source    string  `json:"source"`
	URL       string  `json:"url,omitempty"`
}

type recordJSON struct {
	Brand     string `json:"brand"`
	Model     string `json:"model"`
	Condition string `json:"condition"`

	AvgSoldPrice    float64           `json:"avg_sold_price"`
	MedianSoldPrice float64           `json:"median_sold_price"`
	PriceRangeLow   float64           `json:"price_range_low"`
	PriceRangeHigh  float64           `json:"price_range_high"`
	SoldCount       int               `json:"sold_count"`
	SoldListings    []soldListingJSON `json:"sold_listings"`

	ActiveListingCount int     `json:"active_listing_count"`
	AvgActivePrice     float64 `json:"avg_active_price"`
	MedianActivePrice  float64 `json:"median_active_price"`

	Confidence float64  `json:"confidence"`
	Sources    []string `json:"sources"`
}

func encodeRecord(rec *model.MarketRecord) ([]byte, error) {
	out := recordJSON{
		Brand:              rec.Brand,
		Model:              rec.Model,
		Condition:          rec.Condition,
		AvgSoldPrice:       rec.AvgSoldPrice,
		MedianSoldPrice:    rec.MedianSoldPrice,
		PriceRangeLow:      rec.PriceRangeLow,
		PriceRangeHigh:     rec.PriceRangeHigh,
		SoldCount:          rec.SoldCount,
		ActiveListingCount: rec.ActiveListingCount,
		AvgActivePrice:     rec.AvgActivePrice,
		MedianActivePrice:  rec.MedianActivePrice,
		Confidence:         rec.Confidence,
		Sources:            rec.Sources,
	}

	for _, l := range rec.SoldListings {
		out.SoldListings = append(out.SoldListings, soldListingJSON{
			Title:     l.Title,
			Price:     l.Price,
			SoldDate:  l.SoldDate.Format(time.RFC3339Nano),
			Condition: l.Condition,
			Source:    l.Source,
			URL:       l.URL,
		})
	}

	return json.Marshal(out)
}

func decodeRecord(data []byte) (*model.MarketRecord, error) {
	var in recordJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, err
	}

	rec := &model.MarketRecord{
		Brand:              in.Brand,
		Model:              in.Model,
		Condition:          in.Condition,
		AvgSoldPrice:       in.AvgSoldPrice,
		MedianSoldPrice:    in.MedianSoldPrice,
		PriceRangeLow:      in.PriceRangeLow,
		PriceRangeHigh:     in.PriceRangeHigh,
		SoldCount:          in.SoldCount,
		ActiveListingCount: in.ActiveListingCount,
		AvgActivePrice:     in.AvgActivePrice,
		MedianActivePrice:  in.MedianActivePrice,
		Confidence:         in.Confidence,
		Sources:            in.Sources,
	}

	for _, l := range in.SoldListings {
		soldDate, err := time.Parse(time.RFC3339Nano, l.SoldDate)
		if err != nil {
			return nil, err
		}
		rec.SoldListings = append(rec.SoldListings, model.SoldListing{
			Title:     l.Title,
			Price:     l.Price,
			SoldDate:  soldDate,
			Condition: l.Condition,
			Source:    l.Source,
			URL:       l.URL,
		})
	}

	return rec, nil
}
