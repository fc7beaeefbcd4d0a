// Package frankfurter is the rate provider adapter for the free Frankfurter
// API (ECB reference rates, no key required).
package frankfurter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/moedaspro/conversor/internal/entities"
	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"
)

const defaultBaseURL = "https://api.frankfurter.app"

type Client struct {
	baseURL     string
	client      *http.Client
	rateLimiter *rate.Limiter
}

func New(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	return &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		client:      &http.Client{Timeout: timeout},
		rateLimiter: rate.NewLimiter(rate.Every(time.Second), 5),
	}
}

func (c *Client) Name() string {
	return "frankfurter"
}

// FetchRates returns every rate relative to base from GET /latest?from=base.
func (c *Client) FetchRates(ctx context.Context, base entities.CurrencyCode) (map[entities.CurrencyCode]decimal.Decimal, error) {
	var payload struct {
		Base  string                     `json:"base"`
		Rates map[string]decimal.Decimal `json:"rates"`
	}

	url := fmt.Sprintf("%s/latest?from=%s", c.baseURL, base)
	if err := c.getJSON(ctx, url, &payload); err != nil {
		return nil, err
	}

	if len(payload.Rates) == 0 {
		return nil, fmt.Errorf("empty rates in response for base %s", base)
	}

	rates := make(map[entities.CurrencyCode]decimal.Decimal, len(payload.Rates))
	for code, value := range payload.Rates {
		rates[entities.CurrencyCode(strings.ToUpper(code))] = value
	}

	return rates, nil
}

// Currencies lists the codes the API supports, GET /currencies.
func (c *Client) Currencies(ctx context.Context) (map[string]string, error) {
	currencies := make(map[string]string)
	if err := c.getJSON(ctx, c.baseURL+"/currencies", &currencies); err != nil {
		return nil, err
	}
	return currencies, nil
}

func (c *Client) getJSON(ctx context.Context, url string, v interface{}) error {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter wait error: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("create request error: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("api_client get error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("bad status: %s", resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read body error: %w", err)
	}

	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("json unmarshal error: %w", err)
	}

	return nil
}
