// Package exchangerate is the rate provider adapter for ExchangeRate-API v6,
// which requires a static API key.
package exchangerate

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

const defaultBaseURL = "https://v6.exchangerate-api.com"

// apiErrors maps the API's error-type field to readable messages.
var apiErrors = map[string]string{
	"invalid-key":      "invalid API key",
	"inactive-account": "inactive account",
	"quota-reached":    "request quota reached",
	"unsupported-code": "unsupported currency code",
}

type Client struct {
	baseURL     string
	apiKey      string
	client      *http.Client
	rateLimiter *rate.Limiter
}

func New(baseURL, apiKey string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if apiKey == "" {
		apiKey = "demo"
	}

	return &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		apiKey:      apiKey,
		client:      &http.Client{Timeout: timeout},
		rateLimiter: rate.NewLimiter(rate.Every(time.Second), 5),
	}
}

func (c *Client) Name() string {
	return "exchangerate"
}

type latestResponse struct {
	Result          string                     `json:"result"`
	ErrorType       string                     `json:"error-type"`
	ConversionRates map[string]decimal.Decimal `json:"conversion_rates"`
}

// FetchRates returns every rate relative to base from GET /v6/{key}/latest/{base}.
func (c *Client) FetchRates(ctx context.Context, base entities.CurrencyCode) (map[entities.CurrencyCode]decimal.Decimal, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait error: %w", err)
	}

	url := fmt.Sprintf("%s/v6/%s/latest/%s", c.baseURL, c.apiKey, base)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request error: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("api_client get error: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body error: %w", err)
	}

	var payload latestResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("json unmarshal error: %w", err)
	}

	// The API reports its own failures in the body, sometimes with a 200.
	if payload.Result == "error" {
		if msg, ok := apiErrors[payload.ErrorType]; ok {
			return nil, fmt.Errorf("api error: %s", msg)
		}
		return nil, fmt.Errorf("api error: %s", payload.ErrorType)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("bad status: %s", resp.Status)
	}

	if len(payload.ConversionRates) == 0 {
		return nil, fmt.Errorf("empty conversion_rates in response for base %s", base)
	}

	rates := make(map[entities.CurrencyCode]decimal.Decimal, len(payload.ConversionRates))
	for code, value := range payload.ConversionRates {
		rates[entities.CurrencyCode(strings.ToUpper(code))] = value
	}

	return rates, nil
}
