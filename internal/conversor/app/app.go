package app

import (
	"context"
	"log"
	"log/slog"
	"os"

	"github.com/moedaspro/conversor/deploy/config"
	"github.com/moedaspro/conversor/internal/conversor/adapter/api_client/exchangerate"
	"github.com/moedaspro/conversor/internal/conversor/adapter/api_client/frankfurter"
	"github.com/moedaspro/conversor/internal/conversor/adapter/storage/postgres"
	"github.com/moedaspro/conversor/internal/conversor/adapter/storage/redis"
	"github.com/moedaspro/conversor/internal/conversor/cache"
	"github.com/moedaspro/conversor/internal/conversor/metrics"
	"github.com/moedaspro/conversor/internal/conversor/ports/http/public"
	"github.com/moedaspro/conversor/internal/conversor/resolver"
	"github.com/moedaspro/conversor/internal/conversor/service"
	redisPack "github.com/redis/go-redis/v9"
)

type App struct {
	cfg *config.Config
}

func NewApp(cfg *config.Config) *App {
	return &App{cfg: cfg}
}

func (a *App) Start(ctx context.Context) <-chan struct{} {
	a.initLogger()
	slog.Info("Logger initialized")

	slog.With("config", a.cfg).Info("starting server")

	pgStorage := a.initDatabase(ctx)
	slog.Info("Storage initialized")

	m := metrics.NewMetrics()

	rates := a.initResolver(ctx, m)
	slog.Info("Rate resolver initialized")

	apiService := a.initService(rates, pgStorage, m)
	slog.Info("Service initialized")

	serverDone := public.StartServer(ctx, apiService, a.cfg)
	slog.Info("server started")

	return serverDone
}

func (a *App) initLogger() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level:     slog.LevelDebug,
		AddSource: false,
	}))
	slog.SetDefault(logger)
}

func (a *App) initDatabase(ctx context.Context) *postgres.Storage {
	pgStorage, err := postgres.New(ctx, a.cfg)
	if err != nil {
		log.Fatalln("Failed to initialize PostgresSQL storage", "error", err)
	}

	return pgStorage
}

func (a *App) initResolver(ctx context.Context, m *metrics.Metrics) *resolver.Resolver {
	providers := BuildProviders(a.cfg)
	if len(providers) == 0 {
		log.Fatalln("No rate providers configured")
	}

	opts := []resolver.Option{
		resolver.WithMetrics(m),
		resolver.WithFetchTimeout(a.cfg.Providers.Timeout),
	}

	if a.cfg.Redis.Enabled {
		rdStorage := a.initRedis(ctx)
		slog.Info("Redis quote tier initialized")
		opts = append(opts, resolver.WithSecondaryCache(rdStorage))
	}

	ttl := a.cfg.Cache.TTL
	if !a.cfg.Cache.Enabled {
		ttl = 0
	}

	return resolver.New(cache.New(), providers, ttl, opts...)
}

func (a *App) initRedis(ctx context.Context) *redis.Storage {
	options := &redisPack.Options{
		Addr:     a.cfg.Redis.Host,
		Password: a.cfg.Redis.Password,
		DB:       a.cfg.Redis.DB,
	}

	rdStorage, err := redis.InitStorage(ctx, options)
	if err != nil {
		log.Fatalln("Failed to initialize Redis storage", "error", err)
	}

	return rdStorage
}

func (a *App) initService(rates *resolver.Resolver, storage *postgres.Storage, m *metrics.Metrics) *service.Service {
	lister := frankfurter.New(a.cfg.Providers.FrankfurterURL, a.cfg.Providers.Timeout)

	apiService, err := service.NewService(rates, storage, lister, m)
	if err != nil {
		log.Fatalln("Failed to initialize service", "error", err)
	}

	return apiService
}

// BuildProviders turns the configured provider names into the ordered
// fallback chain. Unknown names are logged and skipped.
func BuildProviders(cfg *config.Config) []resolver.ProviderDescriptor {
	var providers []resolver.ProviderDescriptor

	names := []string{cfg.Providers.Primary}
	if cfg.Providers.Secondary != "" {
		names = append(names, cfg.Providers.Secondary)
	}

	for i, name := range names {
		switch name {
		case "frankfurter":
			providers = append(providers, resolver.ProviderDescriptor{
				Provider: frankfurter.New(cfg.Providers.FrankfurterURL, cfg.Providers.Timeout),
				Priority: i,
				Enabled:  true,
			})
		case "exchangerate":
			providers = append(providers, resolver.ProviderDescriptor{
				Provider: exchangerate.New(cfg.Providers.ExchangeRateURL, cfg.Providers.ExchangeRateKey, cfg.Providers.Timeout),
				Priority: i,
				Enabled:  true,
			})
		default:
			slog.Warn("unknown rate provider, skipping", "provider", name)
		}
	}

	return providers
}
