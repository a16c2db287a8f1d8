package browse

// SearchResponse from GET /item_summary/search
type SearchResponse struct {
	ItemSummaries []ItemSummary `json:"itemSummaries"`
	Total         int           `json:"total"`
	Limit         int           `json:"limit"`
	Offset        int           `json:"offset"`
}

// ItemSummary represents one active listing from the Browse API.
type ItemSummary struct {
	ItemID     string `json:"itemId"`
	Title      string `json:"title"`
	Condition  string `json:"condition"`
	Price      Amount `json:"price"`
	ItemWebURL string `json:"itemWebUrl"`
}

// Amount is a Browse API money value. Value is a decimal string.
type Amount struct {
	Value    string `json:"value"`
	Currency string `json:"currency"`
}
