package research

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mrosen/ebay-pricer/internal/model"
)

const (
	// Search results beyond this many are ignored during extraction.
	maxSearchResults = 10

	defaultLookbackDays = 30
	defaultChatModel    = "gpt-4o"
)

// Client performs web research for sold comps.
type Client struct {
	searchKey string
	searchURL string

	// Optional AI extraction. When openaiKey is empty the client falls
	// back to regex parsing of search snippets.
	openaiKey string
	openaiURL string
	chatModel string

	lookbackDays int
	maxResults   int

	httpClient *http.Client
	logger     *slog.Logger
	now        func() time.Time
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// NewClient creates a research client backed by a Tavily-compatible search
// endpoint.
func NewClient(searchKey, searchURL string, opts ...ClientOption) *Client {
	c := &Client{
		searchKey:    searchKey,
		searchURL:    searchURL,
		chatModel:    defaultChatModel,
		lookbackDays: defaultLookbackDays,
		maxResults:   maxSearchResults,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: slog.Default(),
		now:    time.Now,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// WithOpenAI enables AI extraction of sold comps from search results.
func WithOpenAI(apiKey, apiURL, chatModel string) ClientOption {
	return func(c *Client) {
		c.openaiKey = apiKey
		c.openaiURL = apiURL
		if chatModel != "" {
			c.chatModel = chatModel
		}
	}
}

// WithLookback sets how far back a sale may be and still count as a comp.
func WithLookback(days int) ClientOption {
	return func(c *Client) {
		if days > 0 {
			c.lookbackDays = days
		}
	}
}

// WithMaxResults sets the number of search results requested.
func WithMaxResults(n int) ClientOption {
	return func(c *Client) {
		if n > 0 {
			c.maxResults = n
		}
	}
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithClock overrides the time source. Used in tests.
func WithClock(now func() time.Time) ClientOption {
	return func(c *Client) {
		c.now = now
	}
}

// searchResult is one hit from the search endpoint.
type searchResult struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Content string `json:"content"`
}

type searchResponse struct {
	Results []searchResult `json:"results"`
}

// ResearchSoldComps searches the web for recently sold listings of the given
// product and extracts their sale prices. Returns an empty slice when the
// search finds nothing usable.
func (c *Client) ResearchSoldComps(ctx context.Context, brand, itemModel, cond string) ([]model.SoldListing, error) {
	if c.searchKey == "" {
		return nil, fmt.Errorf("research: search API key not configured")
	}

	query := fmt.Sprintf("%s %s sold ebay completed listings price", brand, itemModel)

	c.logger.Info("searching for sold comps",
		"brand", brand,
		"model", itemModel,
		"condition", cond,
	)

	results, err := c.search(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("research: search failed: %w", err)
	}
	if len(results) == 0 {
		c.logger.Warn("no web results found", "brand", brand, "model", itemModel)
		return nil, nil
	}
	if len(results) > maxSearchResults {
		results = results[:maxSearchResults]
	}

	c.logger.Debug("search returned results", "count", len(results))

	if c.openaiKey == "" {
		listings := c.parseBasic(results, brand, itemModel, cond)
		c.logger.Info("extracted sold listings from basic parsing", "count", len(listings))
		return listings, nil
	}

	listings, err := c.extractWithAI(ctx, results, brand, itemModel, cond)
	if err != nil {
		return nil, fmt.Errorf("research: extraction failed: %w", err)
	}
	c.logger.Info("extracted sold listings from AI analysis", "count", len(listings))
	return listings, nil
}

// search POSTs the query to the Tavily-compatible endpoint, restricted to
// ebay.com.
func (c *Client) search(ctx context.Context, query string) ([]searchResult, error) {
	payload := map[string]any{
		"api_key":         c.searchKey,
		"query":           query,
		"search_depth":    "advanced",
		"max_results":     c.maxResults,
		"include_domains": []string{"ebay.com"},
	}

	var resp searchResponse
	if err := c.postJSON(ctx, c.searchURL, "", payload, &resp); err != nil {
		return nil, err
	}
	return resp.Results, nil
}

// extractedListing is one entry of the JSON object the chat model returns.
type extractedListing struct {
	Title     string  `json:"title"`
	Price     float64 `json:"price"`
	SoldDate  string  `json:"sold_date"`
	Condition string  `json:"condition"`
	URL       string  `json:"url"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// extractWithAI asks a chat model to pull structured sold comps out of the
// search snippets.
func (c *Client) extractWithAI(ctx context.Context, results []searchResult, brand, itemModel, cond string) ([]model.SoldListing, error) {
	payload := map[string]any{
		"model": c.chatModel,
		"messages": []map[string]string{
			{"role": "user", "content": buildExtractionPrompt(results, brand, itemModel)},
		},
		"response_format": map[string]string{"type": "json_object"},
	}

	var resp chatResponse
	if err := c.postJSON(ctx, c.openaiURL, c.openaiKey, payload, &resp); err != nil {
		return nil, err
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("chat response contained no choices")
	}

	var parsed struct {
		Listings []extractedListing `json:"listings"`
	}
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &parsed); err != nil {
		return nil, fmt.Errorf("decode extraction result: %w", err)
	}

	now := c.now()
	cutoff := now.AddDate(0, 0, -c.lookbackDays)

	var listings []model.SoldListing
	for _, e := range parsed.Listings {
		if e.Price <= 0 {
			continue
		}

		soldDate := parseSoldDate(e.SoldDate, now)
		if soldDate.Before(cutoff) {
			c.logger.Debug("dropping stale comp", "title", e.Title, "sold_date", e.SoldDate)
			continue
		}

		title := e.Title
		if title == "" {
			title = brand + " " + itemModel
		}
		condition := e.Condition
		if condition == "" {
			condition = cond
		}

		listings = append(listings, model.SoldListing{
			Title:     title,
			Price:     e.Price,
			SoldDate:  soldDate,
			Condition: condition,
			Source:    "tavily_ai",
			URL:       e.URL,
		})
	}

	return listings, nil
}

// buildExtractionPrompt compiles search snippets into a prompt that asks for
// a fixed-shape JSON object.
func buildExtractionPrompt(results []searchResult, brand, itemModel string) string {
	var sb strings.Builder

	sb.WriteString("eBay Search Results:\n\n")
	for i, r := range results {
		content := r.Content
		if len(content) > 300 {
			content = content[:300]
		}
		fmt.Fprintf(&sb, "%d. %s\n   URL: %s\n   Content: %s...\n\n", i+1, r.Title, r.URL, content)
	}

	fmt.Fprintf(&sb, `
Extract pricing data from these eBay search results for "%s %s".

Look for prices in the content (like $419.64, $344.99, $95.00, etc.) and extract them.

Return JSON with this EXACT format:
{
  "listings": [
    {
      "title": "Product title from search",
      "price": 419.64,
      "sold_date": "2024-12-01",
      "condition": "Used - Very Good",
      "url": "URL from search"
    }
  ]
}

RULES:
- Extract ANY price you see (from bids, Buy It Now, or sold items)
- Include "Pre-Owned" or "Refurbished" items
- Put today's date if sold date unknown
- Extract 3-10 listings if available
- If NO prices found, return empty listings array []
`, brand, itemModel)

	return sb.String()
}

var soldDateLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02",
	time.RFC3339,
}

// parseSoldDate parses the date the extractor reported, assuming a recent
// sale when the date is missing or unparseable.
func parseSoldDate(s string, now time.Time) time.Time {
	s = strings.TrimSuffix(strings.TrimSpace(s), "Z")
	if s == "" {
		return now
	}
	for _, layout := range soldDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return now
}

// postJSON sends a JSON payload and decodes a JSON response. bearer, when
// non-empty, is sent as an Authorization header.
func (c *Client) postJSON(ctx context.Context, url, bearer string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
