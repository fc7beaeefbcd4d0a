package entities

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RateQuote is an immutable point-in-time exchange rate for one pair.
type RateQuote struct {
	Pair      RatePair        `json:"pair"`
	Value     decimal.Decimal `json:"value"`
	FetchedAt time.Time       `json:"fetched_at"`
	Source    string          `json:"source"`
}

// NewRateQuote builds a quote, rejecting non-positive rate values.
func NewRateQuote(pair RatePair, value decimal.Decimal, fetchedAt time.Time, source string) (RateQuote, error) {
	if !value.IsPositive() {
		return RateQuote{}, fmt.Errorf("%w: %s for %s", ErrNonPositiveRate, value, pair)
	}

	return RateQuote{
		Pair:      pair,
		Value:     value,
		FetchedAt: fetchedAt,
		Source:    source,
	}, nil
}

// Conversion is one completed currency conversion.
type Conversion struct {
	ID          uuid.UUID       `json:"id"`
	Pair        RatePair        `json:"pair"`
	Amount      decimal.Decimal `json:"amount"`
	Result      decimal.Decimal `json:"result"`
	Rate        decimal.Decimal `json:"rate"`
	InverseRate decimal.Decimal `json:"inverse_rate"`
	Source      string          `json:"source"`
	Timestamp   time.Time       `json:"timestamp"`
	Notes       string          `json:"notes,omitempty"`
}

func (c Conversion) String() string {
	return fmt.Sprintf("%s %s = %s %s",
		c.Amount, c.Pair.Origin, c.Result.StringFixed(2), c.Pair.Destination)
}

// MultiConversion groups conversions of one amount into several destinations.
type MultiConversion struct {
	Amount      decimal.Decimal `json:"amount"`
	Origin      CurrencyCode    `json:"origin"`
	Conversions []Conversion    `json:"conversions"`
	Timestamp   time.Time       `json:"timestamp"`
}

// ConversionStats aggregates the conversion history of one pair.
type ConversionStats struct {
	Pair        RatePair        `json:"pair"`
	Count       int64           `json:"count"`
	TotalOrigin decimal.Decimal `json:"total_origin"`
	TotalResult decimal.Decimal `json:"total_result"`
	AvgRate     decimal.Decimal `json:"avg_rate"`
	MinRate     decimal.Decimal `json:"min_rate"`
	MaxRate     decimal.Decimal `json:"max_rate"`
	First       time.Time       `json:"first"`
	Last        time.Time       `json:"last"`
}

// HistoryFilter narrows a history listing. Zero values mean "any".
type HistoryFilter struct {
	Origin      CurrencyCode
	Destination CurrencyCode
	Since       time.Time
	Until       time.Time
	Limit       int
	Offset      int
}

// SystemStatus reports the health of the running converter.
type SystemStatus struct {
	Providers      []string `json:"providers"`
	CachedPairs    int      `json:"cached_pairs"`
	HistoryEnabled bool     `json:"history_enabled"`
}
