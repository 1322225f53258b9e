package handler

import (
	"context"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"tempo/internal/eventlog"
	"tempo/internal/projection"
	"tempo/pkg/platform/httputil"
)

// Service defines the diagnostic queries the handler delegates to.
type Service interface {
	EventsFor(ctx context.Context, aggregateID string) ([]eventlog.Event, error)
	RecentEvents(ctx context.Context, limit int) ([]eventlog.Event, error)
	EventCountsByType(ctx context.Context) ([]eventlog.TypeCount, error)
	ProjectionConsistency(ctx context.Context, aggregateID string) (projection.ConsistencyResult, error)
}

// Handler wires diagnostic endpoints to the service.
type Handler struct {
	service Service
	logger  *log.Logger
}

func New(service Service, logger *log.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts diagnostic endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/diagnostics/events", h.handleRecent)
	r.Get("/diagnostics/events/{aggregateID}", h.handleStream)
	r.Get("/diagnostics/event-counts", h.handleCounts)
	r.Get("/diagnostics/consistency/{aggregateID}", h.handleConsistency)
}

func (h *Handler) handleStream(w http.ResponseWriter, r *http.Request) {
	events, err := h.service.EventsFor(r.Context(), chi.URLParam(r, "aggregateID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"events": events})
}

func (h *Handler) handleRecent(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	events, err := h.service.RecentEvents(r.Context(), limit)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"events": events})
}

func (h *Handler) handleCounts(w http.ResponseWriter, r *http.Request) {
	counts, err := h.service.EventCountsByType(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"counts": counts})
}

func (h *Handler) handleConsistency(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.ProjectionConsistency(r.Context(), chi.URLParam(r, "aggregateID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, result)
}
