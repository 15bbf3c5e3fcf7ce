package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"marketsim/internal/service"
	"marketsim/internal/sim"
)

// NewRouter creates a chi router with all observation routes registered
// and request logging. The API is read only: order flow comes from the
// simulation's strategy traders, not the wire.
func NewRouter(s *sim.Simulation, statsSvc *service.StatsService, logger *slog.Logger) chi.Router {
	r := chi.NewRouter()

	r.Use(requestLogging(logger))

	marketH := NewMarketHandler(s)
	bookH := NewBookHandler(s)
	traderH := NewTraderHandler(s)
	tradeH := NewTradeHandler(s)
	statsH := NewStatsHandler(statsSvc)

	// Health check.
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Market routes.
	r.Get("/market/price", marketH.GetPrice)
	r.Get("/market/history", marketH.GetHistory)

	// Book routes.
	r.Get("/book/depth", bookH.GetDepth)
	r.Get("/book/spread", bookH.GetSpread)

	// Trader routes.
	r.Get("/traders", traderH.List)
	r.Get("/traders/{trader_id}", traderH.Get)

	// Trade routes.
	r.Get("/trades", tradeH.List)

	// Stats route.
	r.Get("/stats", statsH.Get)

	return r
}

// requestLogging returns middleware that logs each request's method, path,
// status code, and duration using slog.
func requestLogging(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(ww, r)
			logger.Info("request",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.status),
				slog.Duration("duration", time.Since(start)),
			)
		})
	}
}

// statusWriter wraps http.ResponseWriter to capture the status code.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}
