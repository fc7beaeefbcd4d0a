package public

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/moedaspro/conversor/deploy/config"
	"github.com/moedaspro/conversor/internal/conversor/export"
	mwLogger "github.com/moedaspro/conversor/internal/conversor/ports/http/public/middleware/logger"
	"github.com/moedaspro/conversor/internal/conversor/resolver"
	"github.com/moedaspro/conversor/internal/entities"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
)

type Server struct {
	Server  *http.Server
	cfg     *config.Config
	service Service
}

func NewServer(server *http.Server, cfg *config.Config, service Service) *Server {
	return &Server{
		Server:  server,
		cfg:     cfg,
		service: service,
	}
}

func StartServer(ctx context.Context, service Service, cfg *config.Config) <-chan struct{} {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(mwLogger.New())
	r.Use(middleware.Recoverer)

	r.Handle("/metrics", promhttp.Handler())

	serverConfig := &http.Server{
		Addr:         ":" + cfg.HTTPServer.Port,
		Handler:      r,
		ReadTimeout:  cfg.HTTPServer.Timeout,
		WriteTimeout: cfg.HTTPServer.Timeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	server := NewServer(serverConfig, cfg, service)

	r.Get("/convert", server.Convert)
	r.Get("/rates/{origin}/{destination}", server.GetRate)
	r.Post("/rates/{origin}/{destination}/refresh", server.RefreshRate)
	r.Get("/currencies", server.GetCurrencies)
	r.Get("/history", server.GetHistory)
	r.Get("/history/export", server.ExportHistory)
	r.Delete("/history", server.ClearHistory)
	r.Get("/stats/{origin}/{destination}", server.GetStats)
	r.Get("/status", server.GetStatus)

	doneChan := make(chan struct{})

	go func() {
		if err := server.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Http server error", "error", err)
		}
	}()

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Server.Shutdown(shutdownCtx); err != nil {
			slog.Error("Failed to stop server", "error", err)
		}

		close(doneChan)
	}()

	return doneChan
}

// Convert handles GET /convert?from=USD&to=BRL&amount=100. A comma-separated
// "to" converts into several destinations at once.
func (s *Server) Convert(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	from := r.URL.Query().Get("from")
	to := r.URL.Query().Get("to")

	amountParam := r.URL.Query().Get("amount")
	if amountParam == "" {
		amountParam = "1"
	}

	amount, err := decimal.NewFromString(amountParam)
	if err != nil {
		RespondWithError(w, http.StatusBadRequest, "invalid amount: "+amountParam)
		return
	}

	save := r.URL.Query().Get("save") != "false"

	if strings.Contains(to, ",") {
		multi, err := s.service.ConvertMulti(ctx, amount, from, strings.Split(to, ","), save)
		if err != nil {
			respondWithServiceError(w, err)
			return
		}
		RespondWithJSON(w, http.StatusOK, multi)
		return
	}

	conversion, err := s.service.Convert(ctx, amount, from, to, save)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	RespondWithJSON(w, http.StatusOK, conversion)
}

func (s *Server) GetRate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	quote, err := s.service.Rate(ctx, chi.URLParam(r, "origin"), chi.URLParam(r, "destination"))
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	RespondWithJSON(w, http.StatusOK, quote)
}

func (s *Server) RefreshRate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	quote, err := s.service.RefreshRate(ctx, chi.URLParam(r, "origin"), chi.URLParam(r, "destination"))
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	RespondWithJSON(w, http.StatusOK, quote)
}

func (s *Server) GetCurrencies(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if term := r.URL.Query().Get("search"); term != "" {
		RespondWithJSON(w, http.StatusOK, s.service.SearchCurrencies(ctx, term))
		return
	}

	RespondWithJSON(w, http.StatusOK, s.service.Currencies(ctx))
}

func (s *Server) GetHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	conversions, total, err := s.service.History(ctx, historyFilter(r))
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"total":       total,
		"conversions": conversions,
	})
}

func (s *Server) ExportHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	conversions, _, err := s.service.History(ctx, historyFilter(r))
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	switch format := r.URL.Query().Get("format"); format {
	case "", "csv":
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", `attachment; filename="conversions.csv"`)
		if err := export.WriteCSV(w, conversions); err != nil {
			slog.Error("Failed to export history", "format", "csv", "error", err)
		}
	case "json":
		w.Header().Set("Content-Type", "application/json")
		if err := export.WriteJSON(w, conversions); err != nil {
			slog.Error("Failed to export history", "format", "json", "error", err)
		}
	default:
		RespondWithError(w, http.StatusBadRequest, "unsupported format: "+format)
	}
}

func (s *Server) ClearHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	removed, err := s.service.ClearHistory(ctx)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	RespondWithJSON(w, http.StatusOK, map[string]int64{"removed": removed})
}

func (s *Server) GetStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	days := 0
	if d := r.URL.Query().Get("days"); d != "" {
		parsed, err := strconv.Atoi(d)
		if err != nil || parsed < 0 {
			RespondWithError(w, http.StatusBadRequest, "invalid days: "+d)
			return
		}
		days = parsed
	}

	stats, err := s.service.Stats(ctx, chi.URLParam(r, "origin"), chi.URLParam(r, "destination"), days)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	RespondWithJSON(w, http.StatusOK, stats)
}

func (s *Server) GetStatus(w http.ResponseWriter, r *http.Request) {
	RespondWithJSON(w, http.StatusOK, s.service.Status(r.Context()))
}

func historyFilter(r *http.Request) entities.HistoryFilter {
	q := r.URL.Query()

	filter := entities.HistoryFilter{
		Origin:      entities.CurrencyCode(strings.ToUpper(q.Get("from"))),
		Destination: entities.CurrencyCode(strings.ToUpper(q.Get("to"))),
	}

	if since := q.Get("since"); since != "" {
		if t, err := time.Parse("2006-01-02", since); err == nil {
			filter.Since = t
		}
	}
	if until := q.Get("until"); until != "" {
		if t, err := time.Parse("2006-01-02", until); err == nil {
			filter.Until = t.Add(24 * time.Hour)
		}
	}
	if limit, err := strconv.Atoi(q.Get("limit")); err == nil {
		filter.Limit = limit
	}
	if offset, err := strconv.Atoi(q.Get("offset")); err == nil {
		filter.Offset = offset
	}

	return filter
}

func respondWithServiceError(w http.ResponseWriter, err error) {
	var exhausted *resolver.ExhaustedError

	switch {
	case errors.Is(err, entities.ErrInvalidPair),
		errors.Is(err, entities.ErrSameCurrency),
		errors.Is(err, entities.ErrNonPositiveAmount):
		RespondWithError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, entities.ErrNotFound):
		RespondWithError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, entities.ErrHistoryDisabled):
		RespondWithError(w, http.StatusNotImplemented, err.Error())
	case errors.As(err, &exhausted):
		RespondWithError(w, http.StatusBadGateway, err.Error())
	case errors.Is(err, resolver.ErrNoProviders):
		RespondWithError(w, http.StatusServiceUnavailable, err.Error())
	default:
		RespondWithError(w, http.StatusInternalServerError, err.Error())
	}
}

func RespondWithJSON(w http.ResponseWriter, code int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")

	w.WriteHeader(code)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Failed to encode response", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func RespondWithError(w http.ResponseWriter, code int, message string, details ...string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(code)

	errorText := message
	if len(details) > 0 {
		errorText += "\nDetails: " + details[0]
	}

	if _, err := w.Write([]byte(errorText)); err != nil {
		slog.Error("Failed to write error response", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
