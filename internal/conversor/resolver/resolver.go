// Package resolver obtains currency-pair quotes from a priority-ordered chain
// of rate providers, consulting the in-process cache first.
package resolver

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/moedaspro/conversor/internal/conversor/cache"
	"github.com/moedaspro/conversor/internal/conversor/metrics"
	"github.com/moedaspro/conversor/internal/entities"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"
)

const defaultFetchTimeout = 10 * time.Second

// SecondaryCache is an optional quote tier behind the in-process store, e.g.
// a Redis adapter. Absence changes nothing about resolution semantics.
type SecondaryCache interface {
	Get(ctx context.Context, pair entities.RatePair) (entities.RateQuote, bool, error)
	Put(ctx context.Context, pair entities.RatePair, quote entities.RateQuote, ttl time.Duration) error
	Delete(ctx context.Context, pair entities.RatePair) error
	Purge(ctx context.Context) error
}

type Option func(*Resolver)

func WithSecondaryCache(sc SecondaryCache) Option {
	return func(r *Resolver) { r.secondary = sc }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Resolver) { r.metrics = m }
}

func WithFetchTimeout(d time.Duration) Option {
	return func(r *Resolver) { r.timeout = d }
}

// Resolver owns the cache store and the ordered provider chain, shared across
// all concurrent resolutions in the process.
type Resolver struct {
	store     *cache.Store
	providers []ProviderDescriptor
	ttl       time.Duration
	timeout   time.Duration
	secondary SecondaryCache
	metrics   *metrics.Metrics
	group     singleflight.Group
}

// New builds a resolver over store and providers. The provider slice is
// copied and ordered by ascending priority at construction; adapters never
// reorder themselves afterwards. A non-positive ttl disables caching.
func New(store *cache.Store, providers []ProviderDescriptor, ttl time.Duration, opts ...Option) *Resolver {
	chain := make([]ProviderDescriptor, len(providers))
	copy(chain, providers)
	sort.SliceStable(chain, func(i, j int) bool {
		return chain[i].Priority < chain[j].Priority
	})

	r := &Resolver{
		store:     store,
		providers: chain,
		ttl:       ttl,
		timeout:   defaultFetchTimeout,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Resolve returns a quote for pair, from cache when fresh, otherwise from the
// first provider in the chain that succeeds. Concurrent resolutions of the
// same missing pair share one fetch. It fails only when the pair is invalid,
// no provider is configured, or every enabled provider failed.
func (r *Resolver) Resolve(ctx context.Context, pair entities.RatePair) (entities.RateQuote, error) {
	if err := pair.Validate(); err != nil {
		return entities.RateQuote{}, err
	}

	if quote, ok := r.store.Get(pair); ok {
		r.metrics.RecordCacheHit()
		r.metrics.RecordResolution("cache_hit")
		return quote, nil
	}
	r.metrics.RecordCacheMiss()

	v, err, _ := r.group.Do(pair.String(), func() (interface{}, error) {
		return r.fetch(ctx, pair)
	})
	if err != nil {
		r.metrics.RecordResolution("failure")
		return entities.RateQuote{}, err
	}

	r.metrics.RecordResolution("fetched")
	return v.(entities.RateQuote), nil
}

func (r *Resolver) fetch(ctx context.Context, pair entities.RatePair) (entities.RateQuote, error) {
	// A flight that finished while this caller was queueing may already have
	// filled the store.
	if quote, ok := r.store.Get(pair); ok {
		return quote, nil
	}

	if r.secondary != nil {
		quote, ok, err := r.secondary.Get(ctx, pair)
		if err != nil {
			slog.Warn("secondary cache read failed", "pair", pair.String(), "error", err)
		}
		if ok {
			if remaining := r.ttl - time.Since(quote.FetchedAt); remaining > 0 {
				r.store.Put(pair, quote, remaining)
			}
			return quote, nil
		}
	}

	var attempts []*ProviderError

	for _, d := range r.providers {
		if !d.Enabled {
			continue
		}

		name := d.Provider.Name()
		r.metrics.RecordProviderRequest(name)

		rates, err := r.fetchFrom(ctx, d.Provider, pair.Origin)
		if err != nil {
			perr := &ProviderError{Provider: name, Err: err}
			slog.Warn("provider fetch failed, trying next in chain",
				"provider", name, "pair", pair.String(), "error", err)
			r.metrics.RecordProviderFailure(name)
			attempts = append(attempts, perr)
			continue
		}

		// A missing destination leaves a zero value, rejected along with
		// non-positive rates.
		now := time.Now()
		quote, qerr := entities.NewRateQuote(pair, rates[pair.Destination], now, name)
		if qerr != nil {
			perr := &ProviderError{
				Provider: name,
				Err:      fmt.Errorf("no usable rate for %s in response", pair.Destination),
			}
			slog.Warn("provider response missing destination",
				"provider", name, "pair", pair.String())
			r.metrics.RecordProviderFailure(name)
			attempts = append(attempts, perr)
			continue
		}

		// One bulk response prices every destination relative to the origin;
		// cache them all so later resolutions against this origin hit.
		for code, v := range rates {
			if code == pair.Origin {
				continue
			}
			p := entities.RatePair{Origin: pair.Origin, Destination: code}
			q, err := entities.NewRateQuote(p, v, now, name)
			if err != nil {
				continue
			}
			r.store.Put(p, q, r.ttl)
			if r.secondary != nil {
				if err := r.secondary.Put(ctx, p, q, r.ttl); err != nil {
					slog.Warn("secondary cache write failed", "pair", p.String(), "error", err)
				}
			}
		}

		return quote, nil
	}

	if len(attempts) == 0 {
		return entities.RateQuote{}, ErrNoProviders
	}

	return entities.RateQuote{}, &ExhaustedError{Pair: pair, Attempts: attempts}
}

func (r *Resolver) fetchFrom(ctx context.Context, p Provider, base entities.CurrencyCode) (map[entities.CurrencyCode]decimal.Decimal, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	return p.FetchRates(ctx, base)
}

// Invalidate drops any cached quote for pair from every tier, forcing the
// next resolution through the provider chain.
func (r *Resolver) Invalidate(ctx context.Context, pair entities.RatePair) {
	r.store.Invalidate(pair)

	if r.secondary != nil {
		if err := r.secondary.Delete(ctx, pair); err != nil {
			slog.Warn("secondary cache delete failed", "pair", pair.String(), "error", err)
		}
	}
}

// ClearCache drops every cached quote from every tier.
func (r *Resolver) ClearCache(ctx context.Context) {
	r.store.Clear()

	if r.secondary != nil {
		if err := r.secondary.Purge(ctx); err != nil {
			slog.Warn("secondary cache purge failed", "error", err)
		}
	}
}

// CachedPairs reports the number of stored quote entries.
func (r *Resolver) CachedPairs() int {
	return r.store.Len()
}

// ProviderNames lists the enabled providers in fallback order.
func (r *Resolver) ProviderNames() []string {
	names := make([]string, 0, len(r.providers))
	for _, d := range r.providers {
		if d.Enabled {
			names = append(names, d.Provider.Name())
		}
	}
	return names
}
