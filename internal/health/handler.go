package health

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/akkm9120/sctp02-crud-mongo/internal/httputil"
	"github.com/akkm9120/sctp02-crud-mongo/internal/metrics"

	"github.com/go-chi/chi/v5"
)

const pingTimeout = 2 * time.Second

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a function to Pinger.
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error {
	return f(ctx)
}

// ping runs p with the standard timeout and records the outcome.
func ping(ctx context.Context, p Pinger, m *metrics.Metrics) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	start := time.Now()
	err := p.Ping(ctx)
	if m != nil {
		m.Store.RecordPing(ctx, time.Since(start), err)
	}
	return err
}

type Handler struct {
	pinger  Pinger
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func NewHandler(pinger Pinger, logger *slog.Logger, metrics *metrics.Metrics) *Handler {
	return &Handler{
		pinger:  pinger,
		logger:  logger,
		metrics: metrics,
	}
}

func (h *Handler) RegisterRoutes(router chi.Router) {
	router.Get("/health", h.Health)
	router.Get("/ready", h.Ready)
}

type HealthResponse struct {
	Status string `json:"status"`
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	httputil.RespondWithJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	if err := ping(r.Context(), h.pinger, h.metrics); err != nil {
		h.logger.WarnContext(r.Context(), "readiness check failed", "error", err)
		httputil.RespondWithJSON(w, http.StatusServiceUnavailable, HealthResponse{Status: "unavailable"})
		return
	}

	httputil.RespondWithJSON(w, http.StatusOK, HealthResponse{Status: "ready"})
}
