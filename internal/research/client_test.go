package research

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

var testNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newFakeSearch serves a Tavily-style search endpoint returning the given
// results and captures the last request payload.
func newFakeSearch(t *testing.T, results []searchResult) (*httptest.Server, *atomic.Value) {
	t.Helper()

	var lastPayload atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]any
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decode search payload: %v", err)
		}
		lastPayload.Store(payload)
		json.NewEncoder(w).Encode(searchResponse{Results: results})
	}))
	t.Cleanup(srv.Close)
	return srv, &lastPayload
}

func TestSearchRequestPayload(t *testing.T) {
	srv, payload := newFakeSearch(t, nil)

	c := NewClient("test-key", srv.URL,
		WithLogger(discardLogger()),
		WithMaxResults(7),
		WithClock(func() time.Time { return testNow }),
	)

	if _, err := c.ResearchSoldComps(context.Background(), "Dell", "XPS 13", "USED_GOOD"); err != nil {
		t.Fatalf("ResearchSoldComps: %v", err)
	}

	p := payload.Load().(map[string]any)
	if got := p["api_key"]; got != "test-key" {
		t.Errorf("api_key = %v", got)
	}
	if got := p["query"]; got != "Dell XPS 13 sold ebay completed listings price" {
		t.Errorf("query = %v", got)
	}
	if got := p["search_depth"]; got != "advanced" {
		t.Errorf("search_depth = %v", got)
	}
	if got := p["max_results"]; got != float64(7) {
		t.Errorf("max_results = %v", got)
	}
	domains, ok := p["include_domains"].([]any)
	if !ok || len(domains) != 1 || domains[0] != "ebay.com" {
		t.Errorf("include_domains = %v", p["include_domains"])
	}
}

func TestResearchNoResults(t *testing.T) {
	srv, _ := newFakeSearch(t, nil)

	c := NewClient("key", srv.URL, WithLogger(discardLogger()))

	listings, err := c.ResearchSoldComps(context.Background(), "Dell", "XPS 13", "USED_GOOD")
	if err != nil {
		t.Fatalf("ResearchSoldComps: %v", err)
	}
	if len(listings) != 0 {
		t.Errorf("got %d listings, want 0", len(listings))
	}
}

func TestResearchMissingKey(t *testing.T) {
	c := NewClient("", "http://unused", WithLogger(discardLogger()))

	if _, err := c.ResearchSoldComps(context.Background(), "Dell", "XPS 13", "USED_GOOD"); err == nil {
		t.Fatal("expected error for missing search key")
	}
}

func TestResearchBasicParsing(t *testing.T) {
	srv, _ := newFakeSearch(t, []searchResult{
		{Title: "Dell XPS 13 9310 i7", URL: "https://ebay.com/itm/1", Content: "Recently sold for $649.99 with free shipping"},
		{Title: "Dell XPS 13 active listing", URL: "https://ebay.com/itm/2", Content: "Buy it now $599.00"}, // no "sold", skipped
		{Title: "Dell XPS 13 sold lot", URL: "https://ebay.com/itm/3", Content: "3 sold, price 720.50 USD"},
	})

	c := NewClient("key", srv.URL,
		WithLogger(discardLogger()),
		WithClock(func() time.Time { return testNow }),
	)

	listings, err := c.ResearchSoldComps(context.Background(), "Dell", "XPS 13", "USED_GOOD")
	if err != nil {
		t.Fatalf("ResearchSoldComps: %v", err)
	}
	if len(listings) != 2 {
		t.Fatalf("got %d listings, want 2", len(listings))
	}

	first := listings[0]
	if first.Price != 649.99 {
		t.Errorf("Price = %v, want 649.99", first.Price)
	}
	if first.Source != "tavily_basic" {
		t.Errorf("Source = %q, want tavily_basic", first.Source)
	}
	if first.Condition != "USED_GOOD" {
		t.Errorf("Condition = %q, want USED_GOOD", first.Condition)
	}
	if !first.SoldDate.Equal(testNow) {
		t.Errorf("SoldDate = %v, want %v", first.SoldDate, testNow)
	}

	if listings[1].Price != 720.50 {
		t.Errorf("second Price = %v, want 720.50", listings[1].Price)
	}
}

func TestResearchAIExtraction(t *testing.T) {
	mux := http.NewServeMux()

	mux.HandleFunc("/search", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(searchResponse{Results: []searchResult{
			{Title: "Dell XPS 13 sold", URL: "https://ebay.com/itm/1", Content: "sold for $650"},
		}})
	})

	var gotAuth atomic.Value
	mux.HandleFunc("/v1/chat/completions", func(w http.ResponseWriter, r *http.Request) {
		gotAuth.Store(r.Header.Get("Authorization"))

		extracted := `{"listings":[
			{"title":"Dell XPS 13 9310","price":649.99,"sold_date":"2025-06-10","condition":"Used - Very Good","url":"https://ebay.com/itm/1"},
			{"title":"Dell XPS 13 old sale","price":700.00,"sold_date":"2025-01-02","condition":"Used","url":"https://ebay.com/itm/2"},
			{"title":"Dell XPS 13 bogus","price":0,"sold_date":"2025-06-12","condition":"Used","url":"https://ebay.com/itm/3"},
			{"title":"","price":610.00,"sold_date":"not-a-date","condition":"","url":"https://ebay.com/itm/4"}
		]}`
		body, _ := json.Marshal(map[string]string{"content": extracted})
		fmt.Fprintf(w, `{"choices":[{"message":%s}]}`, body)
	})

	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := NewClient("key", srv.URL+"/search",
		WithOpenAI("openai-key", srv.URL+"/v1/chat/completions", "gpt-4o"),
		WithLookback(30),
		WithLogger(discardLogger()),
		WithClock(func() time.Time { return testNow }),
	)

	listings, err := c.ResearchSoldComps(context.Background(), "Dell", "XPS 13", "USED_GOOD")
	if err != nil {
		t.Fatalf("ResearchSoldComps: %v", err)
	}

	// The January sale is outside the 30-day lookback and the zero-price
	// entry is invalid, leaving two comps.
	if len(listings) != 2 {
		t.Fatalf("got %d listings, want 2", len(listings))
	}

	first := listings[0]
	if first.Price != 649.99 {
		t.Errorf("Price = %v, want 649.99", first.Price)
	}
	if first.Source != "tavily_ai" {
		t.Errorf("Source = %q, want tavily_ai", first.Source)
	}
	want := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	if !first.SoldDate.Equal(want) {
		t.Errorf("SoldDate = %v, want %v", first.SoldDate, want)
	}
	if first.Condition != "Used - Very Good" {
		t.Errorf("Condition = %q", first.Condition)
	}

	// Empty title and unparseable date fall back to defaults.
	second := listings[1]
	if second.Title != "Dell XPS 13" {
		t.Errorf("fallback Title = %q, want %q", second.Title, "Dell XPS 13")
	}
	if second.Condition != "USED_GOOD" {
		t.Errorf("fallback Condition = %q, want USED_GOOD", second.Condition)
	}
	if !second.SoldDate.Equal(testNow) {
		t.Errorf("fallback SoldDate = %v, want %v", second.SoldDate, testNow)
	}

	if got := gotAuth.Load().(string); got != "Bearer openai-key" {
		t.Errorf("Authorization = %q, want Bearer openai-key", got)
	}
}

func TestResearchSearchError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewClient("key", srv.URL, WithLogger(discardLogger()))

	if _, err := c.ResearchSoldComps(context.Background(), "Dell", "XPS 13", "USED_GOOD"); err == nil {
		t.Fatal("expected error for failed search")
	}
}
