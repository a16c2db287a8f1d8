package upc

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/mrosen/ebay-pricer/internal/model"
)

const defaultProviderTimeout = 5 * time.Second

func newProviderClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = defaultProviderTimeout
	}
	return &http.Client{Timeout: timeout}
}

func getJSON(ctx context.Context, hc *http.Client, rawURL string, header http.Header, out any) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := hc.Do(req)
	if err != nil {
		return 0, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return resp.StatusCode, nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return resp.StatusCode, fmt.Errorf("decode response: %w", err)
	}
	return resp.StatusCode, nil
}

// parsePrice converts a price field that may arrive as a JSON number or a
// string like "$1,299.00".
func parsePrice(v any) float64 {
	switch p := v.(type) {
	case float64:
		return p
	case string:
		cleaned := strings.TrimSpace(strings.ReplaceAll(strings.ReplaceAll(p, "$", ""), ",", ""))
		if cleaned == "" {
			return 0
		}
		f, err := strconv.ParseFloat(cleaned, 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

// UPCItemDB queries the upcitemdb.com lookup endpoint. Free tier is limited
// to 100 requests per day.
type UPCItemDB struct {
	key     string
	baseURL string
	client  *http.Client
}

// NewUPCItemDB creates the provider. The key goes in the user_key header.
func NewUPCItemDB(key, baseURL string, timeout time.Duration) *UPCItemDB {
	return &UPCItemDB{
		key:     key,
		baseURL: baseURL,
		client:  newProviderClient(timeout),
	}
}

func (p *UPCItemDB) Name() string { return "upcitemdb" }

func (p *UPCItemDB) Lookup(ctx context.Context, code string) (*model.ProductInfo, error) {
	var resp struct {
		Items []struct {
			Title                string   `json:"title"`
			Brand                string   `json:"brand"`
			Model                string   `json:"model"`
			Category             string   `json:"category"`
			MSRP                 any      `json:"msrp"`
			LowestRecordedPrice  any      `json:"lowest_recorded_price"`
			HighestRecordedPrice any      `json:"highest_recorded_price"`
			Description          string   `json:"description"`
			Images               []string `json:"images"`
		} `json:"items"`
	}

	reqURL := p.baseURL + "?upc=" + url.QueryEscape(code)
	header := http.Header{"user_key": []string{p.key}}

	status, err := getJSON(ctx, p.client, reqURL, header, &resp)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound {
		return nil, nil
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("upcitemdb returned status %d", status)
	}
	if len(resp.Items) == 0 {
		return nil, nil
	}

	item := resp.Items[0]
	return &model.ProductInfo{
		Title:        item.Title,
		Brand:        item.Brand,
		Model:        item.Model,
		Category:     item.Category,
		UPC:          code,
		MSRP:         parsePrice(item.MSRP),
		LowestPrice:  parsePrice(item.LowestRecordedPrice),
		HighestPrice: parsePrice(item.HighestRecordedPrice),
		Description:  item.Description,
		Images:       item.Images,
		Source:       p.Name(),
	}, nil
}

// BarcodeLookup queries the barcodelookup.com v3 products endpoint.
type BarcodeLookup struct {
	key     string
	baseURL string
	client  *http.Client
}

// NewBarcodeLookup creates the provider. The key is passed as a query
// parameter.
func NewBarcodeLookup(key, baseURL string, timeout time.Duration) *BarcodeLookup {
	return &BarcodeLookup{
		key:     key,
		baseURL: baseURL,
		client:  newProviderClient(timeout),
	}
}

func (p *BarcodeLookup) Name() string { return "barcodelookup" }

func (p *BarcodeLookup) Lookup(ctx context.Context, code string) (*model.ProductInfo, error) {
	var resp struct {
		Products []struct {
			Title       string   `json:"title"`
			Brand       string   `json:"brand"`
			Model       string   `json:"model"`
			Category    string   `json:"category"`
			MSRP        any      `json:"msrp"`
			Description string   `json:"description"`
			Images      []string `json:"images"`
		} `json:"products"`
	}

	reqURL := fmt.Sprintf("%s?barcode=%s&key=%s", p.baseURL, url.QueryEscape(code), url.QueryEscape(p.key))

	status, err := getJSON(ctx, p.client, reqURL, nil, &resp)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK || len(resp.Products) == 0 {
		return nil, nil
	}

	product := resp.Products[0]
	return &model.ProductInfo{
		Title:       product.Title,
		Brand:       product.Brand,
		Model:       product.Model,
		Category:    product.Category,
		UPC:         code,
		MSRP:        parsePrice(product.MSRP),
		Description: product.Description,
		Images:      product.Images,
		Source:      p.Name(),
	}, nil
}

// OpenFoodFacts queries the free world.openfoodfacts.org product endpoint.
// Mostly groceries, so it rarely answers for electronics, but it needs no
// key and costs nothing to try last.
type OpenFoodFacts struct {
	baseURL string
	client  *http.Client
}

// NewOpenFoodFacts creates the provider.
func NewOpenFoodFacts(baseURL string, timeout time.Duration) *OpenFoodFacts {
	return &OpenFoodFacts{
		baseURL: baseURL,
		client:  newProviderClient(timeout),
	}
}

func (p *OpenFoodFacts) Name() string { return "openfoodfacts" }

func (p *OpenFoodFacts) Lookup(ctx context.Context, code string) (*model.ProductInfo, error) {
	var resp struct {
		Status  int `json:"status"`
		Product struct {
			ProductName string `json:"product_name"`
			Brands      string `json:"brands"`
			Categories  string `json:"categories"`
			GenericName string `json:"generic_name"`
			ImageURL    string `json:"image_url"`
		} `json:"product"`
	}

	reqURL := fmt.Sprintf("%s/%s.json", strings.TrimSuffix(p.baseURL, "/"), url.PathEscape(code))

	status, err := getJSON(ctx, p.client, reqURL, nil, &resp)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK || resp.Status != 1 {
		return nil, nil
	}

	var images []string
	if resp.Product.ImageURL != "" {
		images = []string{resp.Product.ImageURL}
	}

	return &model.ProductInfo{
		Title:       resp.Product.ProductName,
		Brand:       resp.Product.Brands,
		Category:    resp.Product.Categories,
		UPC:         code,
		Description: resp.Product.GenericName,
		Images:      images,
		Source:      p.Name(),
	}, nil
}
