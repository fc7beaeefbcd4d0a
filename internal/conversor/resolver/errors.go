package resolver

import (
	"errors"
	"fmt"
	"strings"

	"github.com/moedaspro/conversor/internal/entities"
)

// ErrNoProviders means the chain is empty or fully disabled, so no fetch was
// even attempted.
var ErrNoProviders = errors.New("no rate providers configured")

// ProviderError is a single provider's fetch failure. It is non-fatal to a
// resolution; the next provider in the chain is tried.
type ProviderError struct {
	Provider string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider %s: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// ExhaustedError means every enabled provider failed for one resolution. It
// carries the per-provider failures in the order they were attempted.
type ExhaustedError struct {
	Pair     entities.RatePair
	Attempts []*ProviderError
}

func (e *ExhaustedError) Error() string {
	parts := make([]string, len(e.Attempts))
	for i, a := range e.Attempts {
		parts[i] = a.Error()
	}
	return fmt.Sprintf("all providers failed for %s: %s", e.Pair, strings.Join(parts, "; "))
}

// Providers lists the names of the attempted providers in order.
func (e *ExhaustedError) Providers() []string {
	names := make([]string, len(e.Attempts))
	for i, a := range e.Attempts {
		names[i] = a.Provider
	}
	return names
}
