package handler

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	id "tempo/pkg/domain"
	dErrors "tempo/pkg/domain-errors"
	"tempo/pkg/platform/httputil"
	"tempo/pkg/requestcontext"
)

// Service defines the calendar pattern operations the handler delegates to.
type Service interface {
	DefineFiscalYear(ctx context.Context, tenantID id.TenantID, startMonth int) (int64, error)
	DefineMonthlyPeriod(ctx context.Context, tenantID id.TenantID, closingDay int) (int64, error)
	DeactivateMonthlyPeriod(ctx context.Context, tenantID id.TenantID) (int64, error)
	ReactivateMonthlyPeriod(ctx context.Context, tenantID id.TenantID) (int64, error)
	ResolvePeriod(ctx context.Context, tenantID id.TenantID, date time.Time) (id.Month, error)
	FiscalYearOf(ctx context.Context, tenantID id.TenantID, month id.Month) (int, error)
}

// Handler wires calendar pattern endpoints to the service.
type Handler struct {
	service Service
	logger  *log.Logger
}

func New(service Service, logger *log.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts calendar endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Put("/tenants/{tenantID}/calendar/fiscal-year", h.handleDefineFiscalYear)
	r.Put("/tenants/{tenantID}/calendar/period", h.handleDefinePeriod)
	r.Post("/tenants/{tenantID}/calendar/period/deactivate", h.handlePeriodStatus(true))
	r.Post("/tenants/{tenantID}/calendar/period/reactivate", h.handlePeriodStatus(false))
	r.Get("/tenants/{tenantID}/calendar/resolve", h.handleResolve)
}

type fiscalYearRequest struct {
	StartMonth int `json:"start_month"`
}

type periodRequest struct {
	ClosingDay int `json:"closing_day"`
}

func (h *Handler) handleDefineFiscalYear(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tenantID, err := id.ParseTenantID(chi.URLParam(r, "tenantID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid tenant id"))
		return
	}
	req, ok := httputil.Decode[fiscalYearRequest](w, r, h.logger)
	if !ok {
		return
	}

	version, err := h.service.DefineFiscalYear(ctx, tenantID, req.StartMonth)
	if err != nil {
		h.logger.Printf("define fiscal year for %s failed: request_id=%s err=%v", tenantID, requestcontext.RequestID(ctx), err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"version": version})
}

func (h *Handler) handleDefinePeriod(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tenantID, err := id.ParseTenantID(chi.URLParam(r, "tenantID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid tenant id"))
		return
	}
	req, ok := httputil.Decode[periodRequest](w, r, h.logger)
	if !ok {
		return
	}

	version, err := h.service.DefineMonthlyPeriod(ctx, tenantID, req.ClosingDay)
	if err != nil {
		h.logger.Printf("define period for %s failed: request_id=%s err=%v", tenantID, requestcontext.RequestID(ctx), err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"version": version})
}

func (h *Handler) handlePeriodStatus(deactivate bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		tenantID, err := id.ParseTenantID(chi.URLParam(r, "tenantID"))
		if err != nil {
			httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid tenant id"))
			return
		}

		op := h.service.ReactivateMonthlyPeriod
		if deactivate {
			op = h.service.DeactivateMonthlyPeriod
		}
		version, err := op(ctx, tenantID)
		if err != nil {
			h.logger.Printf("period status change for %s failed: request_id=%s err=%v", tenantID, requestcontext.RequestID(ctx), err)
			httputil.WriteError(w, err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]any{"version": version})
	}
}

// handleResolve answers which approval month a work date falls into under the
// tenant's period pattern.
func (h *Handler) handleResolve(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tenantID, err := id.ParseTenantID(chi.URLParam(r, "tenantID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid tenant id"))
		return
	}
	date, err := id.ParseDate(r.URL.Query().Get("date"))
	if err != nil {
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid date"))
		return
	}

	month, err := h.service.ResolvePeriod(ctx, tenantID, date)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	fiscalYear, err := h.service.FiscalYearOf(ctx, tenantID, month)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"month":       month.String(),
		"fiscal_year": fiscalYear,
	})
}
