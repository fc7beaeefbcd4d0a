package entities

import (
	"fmt"
	"strings"
)

// CurrencyCode is a 3-letter uppercase ISO 4217 currency code.
type CurrencyCode string

// currencyNames is the set of recognized codes. Codes outside this set are
// rejected before any network activity.
var currencyNames = map[CurrencyCode]string{
	"USD": "US Dollar",
	"EUR": "Euro",
	"BRL": "Brazilian Real",
	"GBP": "Pound Sterling",
	"JPY": "Japanese Yen",
	"CHF": "Swiss Franc",
	"CAD": "Canadian Dollar",
	"AUD": "Australian Dollar",
	"NZD": "New Zealand Dollar",
	"CNY": "Chinese Renminbi Yuan",
	"ARS": "Argentine Peso",
	"MXN": "Mexican Peso",
	"CLP": "Chilean Peso",
	"COP": "Colombian Peso",
	"PEN": "Peruvian Sol",
	"UYU": "Uruguayan Peso",
	"SEK": "Swedish Krona",
	"NOK": "Norwegian Krone",
	"DKK": "Danish Krone",
	"ISK": "Icelandic Krona",
	"PLN": "Polish Zloty",
	"CZK": "Czech Koruna",
	"HUF": "Hungarian Forint",
	"RON": "Romanian Leu",
	"BGN": "Bulgarian Lev",
	"TRY": "Turkish Lira",
	"RUB": "Russian Ruble",
	"UAH": "Ukrainian Hryvnia",
	"INR": "Indian Rupee",
	"IDR": "Indonesian Rupiah",
	"MYR": "Malaysian Ringgit",
	"PHP": "Philippine Peso",
	"SGD": "Singapore Dollar",
	"THB": "Thai Baht",
	"KRW": "South Korean Won",
	"HKD": "Hong Kong Dollar",
	"TWD": "New Taiwan Dollar",
	"VND": "Vietnamese Dong",
	"ILS": "Israeli New Shekel",
	"AED": "United Arab Emirates Dirham",
	"SAR": "Saudi Riyal",
	"QAR": "Qatari Riyal",
	"EGP": "Egyptian Pound",
	"ZAR": "South African Rand",
	"NGN": "Nigerian Naira",
	"KES": "Kenyan Shilling",
	"MAD": "Moroccan Dirham",
}

var currencySymbols = map[CurrencyCode]string{
	"USD": "$", "EUR": "€", "GBP": "£", "JPY": "¥",
	"BRL": "R$", "CAD": "C$", "AUD": "A$", "CHF": "Fr",
	"CNY": "¥", "INR": "₹", "RUB": "₽", "KRW": "₩",
}

// ParseCode normalizes and validates a currency code.
func ParseCode(s string) (CurrencyCode, error) {
	code := CurrencyCode(strings.ToUpper(strings.TrimSpace(s)))

	if len(code) != 3 {
		return "", fmt.Errorf("%w: %q", ErrInvalidPair, s)
	}

	if _, ok := currencyNames[code]; !ok {
		return "", fmt.Errorf("%w: unknown currency %q", ErrInvalidPair, code)
	}

	return code, nil
}

// Name returns the human-readable currency name, or "" for unknown codes.
func (c CurrencyCode) Name() string {
	return currencyNames[c]
}

// Symbol returns the display symbol for the currency, falling back to the
// code itself.
func (c CurrencyCode) Symbol() string {
	if s, ok := currencySymbols[c]; ok {
		return s
	}
	return string(c)
}

// Currencies returns a copy of the recognized code set with names.
func Currencies() map[string]string {
	out := make(map[string]string, len(currencyNames))
	for code, name := range currencyNames {
		out[string(code)] = name
	}
	return out
}

// RatePair is an ordered (origin, destination) currency tuple. Equality is
// order-sensitive: USD/BRL is not BRL/USD.
type RatePair struct {
	Origin      CurrencyCode `json:"origin"`
	Destination CurrencyCode `json:"destination"`
}

// NewRatePair validates both codes and returns the ordered pair.
func NewRatePair(origin, destination string) (RatePair, error) {
	from, err := ParseCode(origin)
	if err != nil {
		return RatePair{}, err
	}

	to, err := ParseCode(destination)
	if err != nil {
		return RatePair{}, err
	}

	return RatePair{Origin: from, Destination: to}, nil
}

// Validate re-checks both codes against the recognized set. Pairs built with
// NewRatePair always pass.
func (p RatePair) Validate() error {
	if _, err := ParseCode(string(p.Origin)); err != nil {
		return err
	}
	if _, err := ParseCode(string(p.Destination)); err != nil {
		return err
	}
	return nil
}

// Inverse returns the pair with origin and destination swapped.
func (p RatePair) Inverse() RatePair {
	return RatePair{Origin: p.Destination, Destination: p.Origin}
}

func (p RatePair) String() string {
	return string(p.Origin) + "/" + string(p.Destination)
}
