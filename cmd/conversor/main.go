// Command conversor is a one-shot command line converter. It resolves rates
// through the same cache+fallback chain as the HTTP service but keeps no
// history.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/moedaspro/conversor/deploy/config"
	"github.com/moedaspro/conversor/internal/conversor/adapter/api_client/frankfurter"
	"github.com/moedaspro/conversor/internal/conversor/app"
	"github.com/moedaspro/conversor/internal/conversor/cache"
	"github.com/moedaspro/conversor/internal/conversor/resolver"
	"github.com/moedaspro/conversor/internal/conversor/service"
	"github.com/moedaspro/conversor/internal/entities"
	"github.com/shopspring/decimal"
)

func main() {
	var (
		from    = flag.String("from", "", "origin currency code, e.g. USD")
		to      = flag.String("to", "", "destination currency code(s), comma-separated, e.g. BRL,EUR")
		amount  = flag.String("amount", "1", "amount to convert")
		list    = flag.Bool("list", false, "list supported currencies and exit")
		search  = flag.String("search", "", "search supported currencies and exit")
		verbose = flag.Bool("v", false, "verbose logging")
	)
	flag.Parse()

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	cfg := config.NewConfig()

	lister := frankfurter.New(cfg.Providers.FrankfurterURL, cfg.Providers.Timeout)

	svc, err := service.NewService(newResolver(cfg), nil, lister, nil)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}

	ctx := context.Background()

	if *list {
		printCurrencies(svc.Currencies(ctx))
		return
	}

	if *search != "" {
		printCurrencies(svc.SearchCurrencies(ctx, *search))
		return
	}

	if *from == "" || *to == "" {
		flag.Usage()
		os.Exit(2)
	}

	value, err := decimal.NewFromString(*amount)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error: invalid amount:", *amount)
		os.Exit(1)
	}

	if strings.Contains(*to, ",") {
		multi, err := svc.ConvertMulti(ctx, value, *from, strings.Split(*to, ","), false)
		if err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
			os.Exit(1)
		}
		for _, c := range multi.Conversions {
			fmt.Println(c.String())
		}
		return
	}

	conversion, err := svc.Convert(ctx, value, *from, *to, false)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}

	fmt.Println(conversion.String())
	fmt.Printf("  rate: 1 %s = %s %s (source: %s)\n",
		conversion.Pair.Origin, conversion.Rate, conversion.Pair.Destination, conversion.Source)
}

func newResolver(cfg *config.Config) *resolver.Resolver {
	providers := app.BuildProviders(cfg)
	if len(providers) == 0 {
		fmt.Fprintln(os.Stderr, "error: no rate providers configured")
		os.Exit(1)
	}

	ttl := cfg.Cache.TTL
	if !cfg.Cache.Enabled {
		ttl = 0
	}

	return resolver.New(cache.New(), providers, ttl,
		resolver.WithFetchTimeout(cfg.Providers.Timeout))
}

func printCurrencies(currencies map[string]string) {
	codes := make([]string, 0, len(currencies))
	for code := range currencies {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	for _, code := range codes {
		fmt.Printf("%s  %s  %s\n", code, entities.CurrencyCode(code).Symbol(), currencies[code])
	}
}
