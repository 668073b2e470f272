package shopsync

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// Source is the ingestion boundary. The commerce platform client behind it
// owns OAuth, retries and rate-limit headers; the engine only sees normalized
// lists. Each method fetches the full collection for one store.
type Source interface {
	FetchOrders(ctx context.Context, storeId string, since, until time.Time) ([]RawOrder, error)
	FetchProducts(ctx context.Context, storeId string) ([]RawProduct, error)
	FetchCustomers(ctx context.Context, storeId string) ([]RawCustomer, error)
}

type httpSource struct {
	baseURL   string
	apiKey    string
	apiKeyHdr string
	http      *http.Client
	limiter   <-chan time.Time
}

// NewHTTPSource builds the default Source against the commerce platform API.
//
// Env:
// - COMMERCE_API_BASE_URL (default https://api.example-commerce.com)
// - COMMERCE_API_KEY_HEADER (default X-API-Key)
// - COMMERCE_RATE_LIMIT_PER_MIN (default 30)
func NewHTTPSource(apiKey string) (Source, error) {
	baseURL := strings.TrimSpace(os.Getenv("COMMERCE_API_BASE_URL"))
	if baseURL == "" {
		baseURL = "https://api.example-commerce.com"
	}
	apiKeyHeader := strings.TrimSpace(os.Getenv("COMMERCE_API_KEY_HEADER"))
	if apiKeyHeader == "" {
		apiKeyHeader = "X-API-Key"
	}
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("commerce api key is empty")
	}
	rateLimitPerMin := 30
	if v := strings.TrimSpace(os.Getenv("COMMERCE_RATE_LIMIT_PER_MIN")); v != "" {
		if n, err := parseInt(v); err == nil && n > 0 {
			rateLimitPerMin = n
		}
	}
	interval := time.Minute / time.Duration(rateLimitPerMin)

	return &httpSource{
		baseURL:   strings.TrimRight(baseURL, "/"),
		apiKey:    apiKey,
		apiKeyHdr: apiKeyHeader,
		http:      &http.Client{Timeout: 30 * time.Second},
		limiter:   time.Tick(interval),
	}, nil
}

func (s *httpSource) FetchOrders(ctx context.Context, storeId string, since, until time.Time) ([]RawOrder, error) {
	params := url.Values{}
	params.Set("created_at_min", since.UTC().Format(time.RFC3339))
	params.Set("created_at_max", until.UTC().Format(time.RFC3339))
	raws, err := s.getAll(ctx, "/v1/stores/"+url.PathEscape(storeId)+"/orders", params)
	if err != nil {
		return nil, err
	}
	orders := make([]RawOrder, 0, len(raws))
	for _, raw := range raws {
		var order RawOrder
		if err := json.Unmarshal(raw, &order); err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	return orders, nil
}

func (s *httpSource) FetchProducts(ctx context.Context, storeId string) ([]RawProduct, error) {
	raws, err := s.getAll(ctx, "/v1/stores/"+url.PathEscape(storeId)+"/products", url.Values{})
	if err != nil {
		return nil, err
	}
	products := make([]RawProduct, 0, len(raws))
	for _, raw := range raws {
		var product RawProduct
		if err := json.Unmarshal(raw, &product); err != nil {
			return nil, err
		}
		products = append(products, product)
	}
	return products, nil
}

func (s *httpSource) FetchCustomers(ctx context.Context, storeId string) ([]RawCustomer, error) {
	raws, err := s.getAll(ctx, "/v1/stores/"+url.PathEscape(storeId)+"/customers", url.Values{})
	if err != nil {
		return nil, err
	}
	customers := make([]RawCustomer, 0, len(raws))
	for _, raw := range raws {
		var customer RawCustomer
		if err := json.Unmarshal(raw, &customer); err != nil {
			return nil, err
		}
		customers = append(customers, customer)
	}
	return customers, nil
}

// getAll follows the cursor until the platform reports no more pages.
func (s *httpSource) getAll(ctx context.Context, path string, params url.Values) ([]json.RawMessage, error) {
	var all []json.RawMessage
	cursor := ""
	for {
		if cursor != "" {
			params.Set("cursor", cursor)
		}
		page, err := s.getList(ctx, path, params)
		if err != nil {
			return nil, err
		}
		all = append(all, page.records()...)
		if !page.more() {
			return all, nil
		}
		cursor = page.NextCursor
	}
}

func (s *httpSource) getList(ctx context.Context, path string, params url.Values) (listResponse, error) {
	select {
	case <-s.limiter:
	case <-ctx.Done():
		return listResponse{}, ctx.Err()
	}
	endpoint := s.baseURL + path
	if len(params) > 0 {
		endpoint = endpoint + "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return listResponse{}, err
	}
	req.Header.Set(s.apiKeyHdr, s.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := s.http.Do(req)
	if err != nil {
		return listResponse{}, err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return listResponse{}, fmt.Errorf("commerce api error %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var parsed listResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return listResponse{}, err
	}
	return parsed, nil
}

func parseInt(v string) (int, error) {
	return strconv.Atoi(v)
}
