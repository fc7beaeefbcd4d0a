package cache_test

import (
	"sync"
	"testing"
	"time"

	"github.com/moedaspro/conversor/internal/conversor/cache"
	"github.com/moedaspro/conversor/internal/entities"
	"github.com/shopspring/decimal"
)

func quote(pair entities.RatePair, value string) entities.RateQuote {
	return entities.RateQuote{
		Pair:      pair,
		Value:     decimal.RequireFromString(value),
		FetchedAt: time.Now(),
		Source:    "test",
	}
}

func TestPutGetRoundTrip(t *testing.T) {
	store := cache.New()
	pair, _ := entities.NewRatePair("USD", "BRL")

	store.Put(pair, quote(pair, "5.07"), time.Minute)

	got, ok := store.Get(pair)
	if !ok {
		t.Fatal("expected a cache hit")
	}
	if !got.Value.Equal(decimal.RequireFromString("5.07")) {
		t.Fatalf("expected 5.07, got %s", got.Value)
	}
}

func TestGetAbsentPair(t *testing.T) {
	store := cache.New()
	pair, _ := entities.NewRatePair("USD", "BRL")

	if _, ok := store.Get(pair); ok {
		t.Fatal("expected a miss for an absent pair")
	}
}

func TestGetIsOrderSensitive(t *testing.T) {
	store := cache.New()
	pair, _ := entities.NewRatePair("USD", "BRL")

	store.Put(pair, quote(pair, "5.07"), time.Minute)

	if _, ok := store.Get(pair.Inverse()); ok {
		t.Fatal("expected a miss for the inverse pair")
	}
}

func TestExpiredEntryBehavesAsAbsent(t *testing.T) {
	store := cache.New()
	pair, _ := entities.NewRatePair("USD", "BRL")

	store.Put(pair, quote(pair, "5.07"), 20*time.Millisecond)
	time.Sleep(40 * time.Millisecond)

	if _, ok := store.Get(pair); ok {
		t.Fatal("expected a miss after expiry")
	}

	// A write after expiry must be visible again.
	store.Put(pair, quote(pair, "5.10"), time.Minute)
	got, ok := store.Get(pair)
	if !ok || !got.Value.Equal(decimal.RequireFromString("5.10")) {
		t.Fatalf("expected fresh entry 5.10, got %s (hit=%v)", got.Value, ok)
	}
}

func TestPutOverwrites(t *testing.T) {
	store := cache.New()
	pair, _ := entities.NewRatePair("USD", "BRL")

	store.Put(pair, quote(pair, "5.07"), time.Minute)
	store.Put(pair, quote(pair, "5.20"), time.Minute)

	got, _ := store.Get(pair)
	if !got.Value.Equal(decimal.RequireFromString("5.20")) {
		t.Fatalf("expected overwrite to 5.20, got %s", got.Value)
	}
	if store.Len() != 1 {
		t.Fatalf("expected 1 entry, got %d", store.Len())
	}
}

func TestNonPositiveTTLStoresNothing(t *testing.T) {
	store := cache.New()
	pair, _ := entities.NewRatePair("USD", "BRL")

	store.Put(pair, quote(pair, "5.07"), 0)

	if _, ok := store.Get(pair); ok {
		t.Fatal("expected ttl=0 to behave as a miss")
	}
	if store.Len() != 0 {
		t.Fatalf("expected empty store, got %d entries", store.Len())
	}
}

func TestInvalidate(t *testing.T) {
	store := cache.New()
	pair, _ := entities.NewRatePair("USD", "BRL")

	store.Put(pair, quote(pair, "5.07"), time.Minute)
	store.Invalidate(pair)

	if _, ok := store.Get(pair); ok {
		t.Fatal("expected a miss after invalidate")
	}
}

func TestClear(t *testing.T) {
	store := cache.New()
	usdBrl, _ := entities.NewRatePair("USD", "BRL")
	usdEur, _ := entities.NewRatePair("USD", "EUR")

	store.Put(usdBrl, quote(usdBrl, "5.07"), time.Minute)
	store.Put(usdEur, quote(usdEur, "0.92"), time.Minute)
	store.Clear()

	if store.Len() != 0 {
		t.Fatalf("expected empty store, got %d entries", store.Len())
	}
}

func TestConcurrentAccess(t *testing.T) {
	store := cache.New()
	pairs := []entities.RatePair{
		{Origin: "USD", Destination: "BRL"},
		{Origin: "USD", Destination: "EUR"},
		{Origin: "EUR", Destination: "JPY"},
		{Origin: "GBP", Destination: "USD"},
	}

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			pair := pairs[i%len(pairs)]
			for j := 0; j < 200; j++ {
				store.Put(pair, quote(pair, "1.5"), time.Minute)
				store.Get(pair)
				if j%50 == 0 {
					store.Invalidate(pair)
				}
			}
		}(i)
	}
	wg.Wait()
}
