package upc

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestParsePrice(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want float64
	}{
		{"number", 999.0, 999.0},
		{"plain string", "999.00", 999.0},
		{"dollar sign", "$1,299.00", 1299.0},
		{"empty string", "", 0},
		{"garbage", "call for price", 0},
		{"nil", nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := parsePrice(tt.in); got != tt.want {
				t.Errorf("parsePrice(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestUPCItemDB(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("user_key"); got != "test-key" {
			t.Errorf("user_key = %q, want test-key", got)
		}
		if got := r.URL.Query().Get("upc"); got != "194252056561" {
			t.Errorf("upc param = %q", got)
		}
		fmt.Fprint(w, `{"items":[{
			"title":"Apple MacBook Air M1",
			"brand":"Apple",
			"model":"MGN63LL/A",
			"category":"Electronics > Computers",
			"msrp":999.00,
			"lowest_recorded_price":"650.00",
			"highest_recorded_price":"$1,050.00",
			"description":"13-inch laptop",
			"images":["https://img.example/1.jpg"]
		}]}`)
	}))
	defer srv.Close()

	p := NewUPCItemDB("test-key", srv.URL, time.Second)

	info, err := p.Lookup(context.Background(), "194252056561")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if info == nil {
		t.Fatal("Lookup returned nil info")
	}
	if info.Title != "Apple MacBook Air M1" || info.Brand != "Apple" || info.Model != "MGN63LL/A" {
		t.Errorf("identity fields = %q/%q/%q", info.Title, info.Brand, info.Model)
	}
	if info.MSRP != 999.0 {
		t.Errorf("MSRP = %v, want 999", info.MSRP)
	}
	if info.LowestPrice != 650.0 || info.HighestPrice != 1050.0 {
		t.Errorf("price range = [%v, %v], want [650, 1050]", info.LowestPrice, info.HighestPrice)
	}
	if info.UPC != "194252056561" {
		t.Errorf("UPC = %q", info.UPC)
	}
	if info.Source != "upcitemdb" {
		t.Errorf("Source = %q", info.Source)
	}
}

func TestUPCItemDBNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	}))
	defer srv.Close()

	p := NewUPCItemDB("key", srv.URL, time.Second)

	info, err := p.Lookup(context.Background(), "000000000000")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if info != nil {
		t.Errorf("info = %+v, want nil", info)
	}
}

func TestUPCItemDBServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	p := NewUPCItemDB("key", srv.URL, time.Second)

	if _, err := p.Lookup(context.Background(), "194252056561"); err == nil {
		t.Fatal("expected error for 429 response")
	}
}

func TestBarcodeLookup(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("barcode") != "194252056561" || q.Get("key") != "bl-key" {
			t.Errorf("query = %v", q)
		}
		fmt.Fprint(w, `{"products":[{
			"title":"Apple MacBook Air",
			"brand":"Apple",
			"category":"Computers",
			"msrp":"999.00"
		}]}`)
	}))
	defer srv.Close()

	p := NewBarcodeLookup("bl-key", srv.URL, time.Second)

	info, err := p.Lookup(context.Background(), "194252056561")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if info == nil {
		t.Fatal("Lookup returned nil info")
	}
	if info.MSRP != 999.0 {
		t.Errorf("MSRP = %v, want 999", info.MSRP)
	}
	if info.Source != "barcodelookup" {
		t.Errorf("Source = %q", info.Source)
	}
}

func TestOpenFoodFacts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/0074887615305.json" {
			t.Errorf("path = %q", r.URL.Path)
		}
		fmt.Fprint(w, `{"status":1,"product":{
			"product_name":"Sparkling Water",
			"brands":"LaCroix",
			"categories":"Beverages",
			"image_url":"https://img.example/w.jpg"
		}}`)
	}))
	defer srv.Close()

	p := NewOpenFoodFacts(srv.URL, time.Second)

	info, err := p.Lookup(context.Background(), "0074887615305")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if info == nil {
		t.Fatal("Lookup returned nil info")
	}
	if info.Title != "Sparkling Water" || info.Brand != "LaCroix" {
		t.Errorf("fields = %q/%q", info.Title, info.Brand)
	}
	if len(info.Images) != 1 {
		t.Errorf("Images = %v", info.Images)
	}
	if info.Source != "openfoodfacts" {
		t.Errorf("Source = %q", info.Source)
	}
}

func TestOpenFoodFactsMiss(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status":0,"status_verbose":"product not found"}`)
	}))
	defer srv.Close()

	p := NewOpenFoodFacts(srv.URL, time.Second)

	info, err := p.Lookup(context.Background(), "000000000000")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if info != nil {
		t.Errorf("info = %+v, want nil", info)
	}
}
