package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/moedaspro/conversor/internal/conversor/service"
	"github.com/moedaspro/conversor/internal/entities"
	"github.com/shopspring/decimal"
)

type rateSourceStub struct {
	resolveFn     func(ctx context.Context, pair entities.RatePair) (entities.RateQuote, error)
	resolveCalls  int
	invalidated   []entities.RatePair
	cachedPairs   int
	providerNames []string
}

func (s *rateSourceStub) Resolve(ctx context.Context, pair entities.RatePair) (entities.RateQuote, error) {
	s.resolveCalls++
	return s.resolveFn(ctx, pair)
}

func (s *rateSourceStub) Invalidate(_ context.Context, pair entities.RatePair) {
	s.invalidated = append(s.invalidated, pair)
}

func (s *rateSourceStub) ClearCache(_ context.Context) {}

func (s *rateSourceStub) CachedPairs() int { return s.cachedPairs }

func (s *rateSourceStub) ProviderNames() []string { return s.providerNames }

type historyStub struct {
	saved    []*entities.Conversion
	saveErr  error
	listFn   func(ctx context.Context, filter entities.HistoryFilter) ([]entities.Conversion, int, error)
	statsFn  func(ctx context.Context, pair entities.RatePair, since time.Time) (*entities.ConversionStats, error)
	deleteFn func(ctx context.Context) (int64, error)
}

func (h *historyStub) SaveConversion(ctx context.Context, c *entities.Conversion) error {
	if h.saveErr != nil {
		return h.saveErr
	}
	h.saved = append(h.saved, c)
	return nil
}

func (h *historyStub) ListConversions(ctx context.Context, filter entities.HistoryFilter) ([]entities.Conversion, int, error) {
	return h.listFn(ctx, filter)
}

func (h *historyStub) Stats(ctx context.Context, pair entities.RatePair, since time.Time) (*entities.ConversionStats, error) {
	return h.statsFn(ctx, pair, since)
}

func (h *historyStub) DeleteAll(ctx context.Context) (int64, error) {
	return h.deleteFn(ctx)
}

func fixedRates(value string) *rateSourceStub {
	rate := decimal.RequireFromString(value)
	return &rateSourceStub{
		resolveFn: func(_ context.Context, pair entities.RatePair) (entities.RateQuote, error) {
			return entities.RateQuote{
				Pair:      pair,
				Value:     rate,
				FetchedAt: time.Now(),
				Source:    "frankfurter",
			}, nil
		},
	}
}

func TestNewServiceRequiresRateSource(t *testing.T) {
	if _, err := service.NewService(nil, nil, nil, nil); err == nil {
		t.Fatal("expected an error for a nil rate source")
	}
}

func TestConvert(t *testing.T) {
	rates := fixedRates("5.07")
	svc, err := service.NewService(rates, nil, nil, nil)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	conversion, err := svc.Convert(context.Background(), decimal.NewFromInt(100), "usd", "brl", false)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if !conversion.Result.Equal(decimal.RequireFromString("507.00")) {
		t.Fatalf("expected result 507.00, got %s", conversion.Result)
	}
	if conversion.Pair.Origin != "USD" || conversion.Pair.Destination != "BRL" {
		t.Fatalf("expected normalized pair, got %s", conversion.Pair)
	}
	if conversion.Source != "frankfurter" {
		t.Fatalf("unexpected source: %s", conversion.Source)
	}
	expectedInverse := decimal.NewFromInt(1).Div(decimal.RequireFromString("5.07"))
	if !conversion.InverseRate.Equal(expectedInverse) {
		t.Fatalf("expected inverse %s, got %s", expectedInverse, conversion.InverseRate)
	}
}

func TestConvertRoundsHalfUp(t *testing.T) {
	svc, _ := service.NewService(fixedRates("0.915"), nil, nil, nil)

	conversion, err := svc.Convert(context.Background(), decimal.NewFromInt(1), "USD", "EUR", false)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if !conversion.Result.Equal(decimal.RequireFromString("0.92")) {
		t.Fatalf("expected 0.92, got %s", conversion.Result)
	}
}

func TestConvertRejectsNonPositiveAmount(t *testing.T) {
	rates := fixedRates("5.07")
	svc, _ := service.NewService(rates, nil, nil, nil)

	for _, amount := range []decimal.Decimal{decimal.Zero, decimal.NewFromInt(-3)} {
		if _, err := svc.Convert(context.Background(), amount, "USD", "BRL", false); !errors.Is(err, entities.ErrNonPositiveAmount) {
			t.Fatalf("expected ErrNonPositiveAmount for %s, got %v", amount, err)
		}
	}
	if rates.resolveCalls != 0 {
		t.Fatalf("expected no resolution attempts, got %d", rates.resolveCalls)
	}
}

func TestConvertRejectsSameCurrency(t *testing.T) {
	rates := fixedRates("1")
	svc, _ := service.NewService(rates, nil, nil, nil)

	if _, err := svc.Convert(context.Background(), decimal.NewFromInt(10), "USD", "usd", false); !errors.Is(err, entities.ErrSameCurrency) {
		t.Fatalf("expected ErrSameCurrency, got %v", err)
	}
	if rates.resolveCalls != 0 {
		t.Fatalf("expected no resolution attempts, got %d", rates.resolveCalls)
	}
}

func TestConvertRejectsUnknownCode(t *testing.T) {
	rates := fixedRates("1")
	svc, _ := service.NewService(rates, nil, nil, nil)

	if _, err := svc.Convert(context.Background(), decimal.NewFromInt(10), "USD", "XXX", false); !errors.Is(err, entities.ErrInvalidPair) {
		t.Fatalf("expected ErrInvalidPair, got %v", err)
	}
	if rates.resolveCalls != 0 {
		t.Fatalf("expected no resolution attempts, got %d", rates.resolveCalls)
	}
}

func TestConvertSavesHistory(t *testing.T) {
	history := &historyStub{}
	svc, _ := service.NewService(fixedRates("5.07"), history, nil, nil)

	if _, err := svc.Convert(context.Background(), decimal.NewFromInt(100), "USD", "BRL", true); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if len(history.saved) != 1 {
		t.Fatalf("expected 1 saved conversion, got %d", len(history.saved))
	}

	if _, err := svc.Convert(context.Background(), decimal.NewFromInt(100), "USD", "BRL", false); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if len(history.saved) != 1 {
		t.Fatalf("expected save=false to skip persistence, got %d saved", len(history.saved))
	}
}

func TestConvertSurfacesSaveError(t *testing.T) {
	history := &historyStub{saveErr: errors.New("db down")}
	svc, _ := service.NewService(fixedRates("5.07"), history, nil, nil)

	if _, err := svc.Convert(context.Background(), decimal.NewFromInt(100), "USD", "BRL", true); err == nil {
		t.Fatal("expected the persistence error to surface")
	}
}

func TestConvertMulti(t *testing.T) {
	svc, _ := service.NewService(fixedRates("2"), nil, nil, nil)

	multi, err := svc.ConvertMulti(context.Background(), decimal.NewFromInt(10), "USD", []string{"BRL", "usd", "EUR"}, false)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if len(multi.Conversions) != 2 {
		t.Fatalf("expected origin to be skipped, got %d conversions", len(multi.Conversions))
	}
	for _, c := range multi.Conversions {
		if !c.Result.Equal(decimal.RequireFromString("20.00")) {
			t.Fatalf("expected 20.00, got %s", c.Result)
		}
	}
}

func TestConvertMultiSkipsFailedDestinations(t *testing.T) {
	resolveErr := errors.New("provider down")
	rates := &rateSourceStub{
		resolveFn: func(_ context.Context, pair entities.RatePair) (entities.RateQuote, error) {
			if pair.Destination == "EUR" {
				return entities.RateQuote{}, resolveErr
			}
			return entities.RateQuote{Pair: pair, Value: decimal.NewFromInt(5), FetchedAt: time.Now(), Source: "frankfurter"}, nil
		},
	}
	svc, _ := service.NewService(rates, nil, nil, nil)

	multi, err := svc.ConvertMulti(context.Background(), decimal.NewFromInt(1), "USD", []string{"EUR", "BRL"}, false)
	if err != nil {
		t.Fatalf("expected partial success, got %v", err)
	}
	if len(multi.Conversions) != 1 || multi.Conversions[0].Pair.Destination != "BRL" {
		t.Fatalf("expected only the BRL conversion, got %+v", multi.Conversions)
	}
}

func TestConvertMultiFailsWhenAllDestinationsFail(t *testing.T) {
	resolveErr := errors.New("provider down")
	rates := &rateSourceStub{
		resolveFn: func(_ context.Context, pair entities.RatePair) (entities.RateQuote, error) {
			return entities.RateQuote{}, resolveErr
		},
	}
	svc, _ := service.NewService(rates, nil, nil, nil)

	if _, err := svc.ConvertMulti(context.Background(), decimal.NewFromInt(1), "USD", []string{"EUR", "BRL"}, false); !errors.Is(err, resolveErr) {
		t.Fatalf("expected the resolution error, got %v", err)
	}
}

func TestConvertMultiHonorsSaveFlag(t *testing.T) {
	history := &historyStub{}
	svc, _ := service.NewService(fixedRates("2"), history, nil, nil)

	if _, err := svc.ConvertMulti(context.Background(), decimal.NewFromInt(10), "USD", []string{"BRL", "EUR"}, false); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if len(history.saved) != 0 {
		t.Fatalf("expected save=false to skip persistence, got %d saved", len(history.saved))
	}

	if _, err := svc.ConvertMulti(context.Background(), decimal.NewFromInt(10), "USD", []string{"BRL", "EUR"}, true); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if len(history.saved) != 2 {
		t.Fatalf("expected save=true to persist each conversion, got %d saved", len(history.saved))
	}
}

func TestRefreshRateInvalidatesFirst(t *testing.T) {
	rates := fixedRates("5.07")
	svc, _ := service.NewService(rates, nil, nil, nil)

	if _, err := svc.RefreshRate(context.Background(), "USD", "BRL"); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if len(rates.invalidated) != 1 || rates.invalidated[0].String() != "USD/BRL" {
		t.Fatalf("expected USD/BRL invalidation, got %v", rates.invalidated)
	}
	if rates.resolveCalls != 1 {
		t.Fatalf("expected 1 resolution, got %d", rates.resolveCalls)
	}
}

type listerStub struct {
	currencies map[string]string
	err        error
}

func (l *listerStub) Currencies(ctx context.Context) (map[string]string, error) {
	return l.currencies, l.err
}

func TestCurrenciesPrefersProviderListing(t *testing.T) {
	lister := &listerStub{currencies: map[string]string{"USD": "US Dollar", "CHF": "Swiss Franc"}}
	svc, _ := service.NewService(fixedRates("1"), nil, lister, nil)

	currencies := svc.Currencies(context.Background())
	if len(currencies) != 2 {
		t.Fatalf("expected the provider listing, got %v", currencies)
	}
	if currencies["CHF"] != "Swiss Franc" {
		t.Fatalf("unexpected listing: %v", currencies)
	}
}

func TestCurrenciesFallsBackOnListerError(t *testing.T) {
	lister := &listerStub{err: errors.New("api down")}
	svc, _ := service.NewService(fixedRates("1"), nil, lister, nil)

	currencies := svc.Currencies(context.Background())
	if _, ok := currencies["BRL"]; !ok {
		t.Fatalf("expected the built-in table as fallback, got %d entries", len(currencies))
	}
}

func TestSearchCurrencies(t *testing.T) {
	svc, _ := service.NewService(fixedRates("1"), nil, nil, nil)

	matches := svc.SearchCurrencies(context.Background(), "real")
	if _, ok := matches["BRL"]; !ok {
		t.Fatalf("expected BRL to match 'real', got %v", matches)
	}

	matches = svc.SearchCurrencies(context.Background(), "jpy")
	if len(matches) != 1 {
		t.Fatalf("expected a single match for 'jpy', got %v", matches)
	}
}

func TestHistoryDisabled(t *testing.T) {
	svc, _ := service.NewService(fixedRates("1"), nil, nil, nil)
	ctx := context.Background()

	if _, _, err := svc.History(ctx, entities.HistoryFilter{}); !errors.Is(err, entities.ErrHistoryDisabled) {
		t.Fatalf("expected ErrHistoryDisabled from History, got %v", err)
	}
	if _, err := svc.Stats(ctx, "USD", "BRL", 7); !errors.Is(err, entities.ErrHistoryDisabled) {
		t.Fatalf("expected ErrHistoryDisabled from Stats, got %v", err)
	}
	if _, err := svc.ClearHistory(ctx); !errors.Is(err, entities.ErrHistoryDisabled) {
		t.Fatalf("expected ErrHistoryDisabled from ClearHistory, got %v", err)
	}
}

func TestStatsWindow(t *testing.T) {
	var gotSince time.Time
	history := &historyStub{
		statsFn: func(_ context.Context, pair entities.RatePair, since time.Time) (*entities.ConversionStats, error) {
			gotSince = since
			return &entities.ConversionStats{Pair: pair}, nil
		},
	}
	svc, _ := service.NewService(fixedRates("1"), history, nil, nil)

	if _, err := svc.Stats(context.Background(), "USD", "BRL", 7); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}

	want := time.Now().Add(-7 * 24 * time.Hour)
	if diff := gotSince.Sub(want); diff < -time.Minute || diff > time.Minute {
		t.Fatalf("expected since around %s, got %s", want, gotSince)
	}
}

func TestStatus(t *testing.T) {
	rates := fixedRates("1")
	rates.cachedPairs = 3
	rates.providerNames = []string{"frankfurter", "exchangerate"}
	svc, _ := service.NewService(rates, &historyStub{}, nil, nil)

	status := svc.Status(context.Background())
	if !status.HistoryEnabled {
		t.Fatal("expected history to be reported enabled")
	}
	if status.CachedPairs != 3 {
		t.Fatalf("expected 3 cached pairs, got %d", status.CachedPairs)
	}
	if len(status.Providers) != 2 || status.Providers[0] != "frankfurter" {
		t.Fatalf("unexpected providers: %v", status.Providers)
	}
}
