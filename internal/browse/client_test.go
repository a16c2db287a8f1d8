package browse

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

// newFakeEbay returns a test server that issues OAuth tokens at /token and
// serves search responses (or the given handler) at /item_summary/search.
func newFakeEbay(t *testing.T, search http.HandlerFunc) (*httptest.Server, *Client) {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("token request method = %s, want POST", r.Method)
		}
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parse token form: %v", err)
		}
		if got := r.PostForm.Get("grant_type"); got != "client_credentials" {
			t.Errorf("grant_type = %q, want client_credentials", got)
		}
		if _, _, ok := r.BasicAuth(); !ok {
			t.Error("token request missing basic auth")
		}
		json.NewEncoder(w).Encode(map[string]any{
			"access_token": "test-token",
			"expires_in":   7200,
		})
	})
	mux.HandleFunc("/item_summary/search", search)

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	c := NewClient("id", "secret", srv.URL+"/token", srv.URL,
		WithMinInterval(0),
		WithRetries(2, time.Millisecond),
	)
	return srv, c
}

func searchFixture() SearchResponse {
	return SearchResponse{
		Total: 3,
		ItemSummaries: []ItemSummary{
			{Title: "Apple MacBook Air M1", Condition: "Used", Price: Amount{Value: "450.00", Currency: "USD"}},
			{Title: "Apple MacBook Air M1 2020", Condition: "Used", Price: Amount{Value: "430.00", Currency: "USD"}},
			{Title: "Apple MacBook Air M1 256GB", Condition: "Used", Price: Amount{Value: "470.00", Currency: "USD"}},
		},
	}
}

func TestSearchActiveListings(t *testing.T) {
	var gotQuery atomic.Value

	_, c := newFakeEbay(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Errorf("Authorization = %q, want bearer token", got)
		}
		if got := r.Header.Get("X-EBAY-C-MARKETPLACE-ID"); got != "EBAY_US" {
			t.Errorf("marketplace header = %q, want EBAY_US", got)
		}
		gotQuery.Store(r.URL.Query())
		json.NewEncoder(w).Encode(searchFixture())
	})

	resp, err := c.SearchActiveListings(context.Background(), "Apple", "MacBook Air M1", SearchOptions{
		Condition: "USED_GOOD",
		MinPrice:  200,
	})
	if err != nil {
		t.Fatalf("SearchActiveListings failed: %v", err)
	}
	if len(resp.ItemSummaries) != 3 {
		t.Errorf("got %d items, want 3", len(resp.ItemSummaries))
	}

	q := gotQuery.Load().(url.Values)
	if got := q["q"][0]; got != "Apple MacBook Air M1" {
		t.Errorf("q = %q, want %q", got, "Apple MacBook Air M1")
	}
	filter := q["filter"][0]
	for _, want := range []string{
		"buyingOptions:{FIXED_PRICE}",
		"conditionIds:{5000}",
		"price:[200..]",
		"priceCurrency:USD",
	} {
		if !strings.Contains(filter, want) {
			t.Errorf("filter %q missing %q", filter, want)
		}
	}
	if got := q["sort"][0]; got != "price" {
		t.Errorf("sort = %q, want price", got)
	}
	if got := q["limit"][0]; got != "50" {
		t.Errorf("limit = %q, want 50", got)
	}
}

func TestSearchLimitCap(t *testing.T) {
	_, c := newFakeEbay(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("limit"); got != "200" {
			t.Errorf("limit = %q, want 200 (API cap)", got)
		}
		json.NewEncoder(w).Encode(SearchResponse{})
	})

	if _, err := c.SearchActiveListings(context.Background(), "Apple", "iPad", SearchOptions{Limit: 500}); err != nil {
		t.Fatalf("SearchActiveListings failed: %v", err)
	}
}

func TestAnalyzeActiveListings(t *testing.T) {
	_, c := newFakeEbay(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(searchFixture())
	})

	stats, err := c.AnalyzeActiveListings(context.Background(), "Apple", "MacBook Air M1", "USED_GOOD")
	if err != nil {
		t.Fatalf("AnalyzeActiveListings failed: %v", err)
	}

	if stats.Count != 3 {
		t.Errorf("Count = %d, want 3", stats.Count)
	}
	if stats.AvgPrice != 450.0 {
		t.Errorf("AvgPrice = %v, want 450", stats.AvgPrice)
	}
	if stats.MedianPrice != 450.0 {
		t.Errorf("MedianPrice = %v, want 450", stats.MedianPrice)
	}
	if stats.RangeLow != 430.0 || stats.RangeHigh != 470.0 {
		t.Errorf("range = [%v, %v], want [430, 470]", stats.RangeLow, stats.RangeHigh)
	}
}

func TestAnalyzeEmptyResults(t *testing.T) {
	_, c := newFakeEbay(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(SearchResponse{Total: 0})
	})

	stats, err := c.AnalyzeActiveListings(context.Background(), "Obscure", "Widget", "USED_GOOD")
	if err != nil {
		t.Fatalf("AnalyzeActiveListings failed: %v", err)
	}
	if stats.Count != 0 {
		t.Errorf("Count = %d, want 0", stats.Count)
	}
	if stats.AvgPrice != 0 {
		t.Errorf("AvgPrice = %v, want 0", stats.AvgPrice)
	}
}

func TestAnalyzeSkipsUnparseablePrices(t *testing.T) {
	_, c := newFakeEbay(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(SearchResponse{
			ItemSummaries: []ItemSummary{
				{Title: "good", Price: Amount{Value: "100.00"}},
				{Title: "bad", Price: Amount{Value: "not-a-number"}},
				{Title: "empty", Price: Amount{}},
			},
		})
	})

	stats, err := c.AnalyzeActiveListings(context.Background(), "Apple", "iPad", "USED_GOOD")
	if err != nil {
		t.Fatalf("AnalyzeActiveListings failed: %v", err)
	}
	if stats.Count != 1 {
		t.Errorf("Count = %d, want 1 (bad prices skipped)", stats.Count)
	}
}

func TestRetryOnServerError(t *testing.T) {
	var calls atomic.Int32

	_, c := newFakeEbay(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(searchFixture())
	})

	if _, err := c.SearchActiveListings(context.Background(), "Apple", "iPad", SearchOptions{}); err != nil {
		t.Fatalf("expected retry to succeed, got %v", err)
	}
	if calls.Load() != 2 {
		t.Errorf("calls = %d, want 2", calls.Load())
	}
}

func TestNoRetryOnClientError(t *testing.T) {
	var calls atomic.Int32

	_, c := newFakeEbay(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := c.SearchActiveListings(context.Background(), "Apple", "iPad", SearchOptions{})
	if err == nil {
		t.Fatal("expected error")
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %T", err)
	}
	if apiErr.StatusCode != http.StatusNotFound {
		t.Errorf("StatusCode = %d, want 404", apiErr.StatusCode)
	}
	if calls.Load() != 1 {
		t.Errorf("calls = %d, want 1 (no retry on 404)", calls.Load())
	}
}

func TestTokenReuse(t *testing.T) {
	mux := http.NewServeMux()
	var tokenCalls atomic.Int32

	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		tokenCalls.Add(1)
		json.NewEncoder(w).Encode(map[string]any{"access_token": "tok", "expires_in": 7200})
	})
	mux.HandleFunc("/item_summary/search", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(SearchResponse{})
	})

	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := NewClient("id", "secret", srv.URL+"/token", srv.URL, WithMinInterval(0))

	for range 3 {
		if _, err := c.SearchActiveListings(context.Background(), "Apple", "iPad", SearchOptions{}); err != nil {
			t.Fatalf("search failed: %v", err)
		}
	}

	if tokenCalls.Load() != 1 {
		t.Errorf("token endpoint called %d times, want 1 (token cached)", tokenCalls.Load())
	}
}
