package handler

import (
	"context"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"tempo/internal/tenant"
	id "tempo/pkg/domain"
	dErrors "tempo/pkg/domain-errors"
	"tempo/pkg/platform/httputil"
	"tempo/pkg/requestcontext"
)

// Service defines the tenant and organization operations the handler
// delegates to.
type Service interface {
	CreateTenant(ctx context.Context, name string) (id.TenantID, int64, error)
	RenameTenant(ctx context.Context, tenantID id.TenantID, name string) (int64, error)
	DeactivateTenant(ctx context.Context, tenantID id.TenantID) (int64, error)
	ReactivateTenant(ctx context.Context, tenantID id.TenantID) (int64, error)
	GetTenant(ctx context.Context, tenantID id.TenantID) (*tenant.Tenant, int64, error)
	CreateOrganization(ctx context.Context, tenantID id.TenantID, name string) (id.OrganizationID, int64, error)
	DeactivateOrganization(ctx context.Context, orgID id.OrganizationID) (int64, error)
	ReactivateOrganization(ctx context.Context, orgID id.OrganizationID) (int64, error)
}

// Handler wires tenant administration endpoints to the service.
type Handler struct {
	service Service
	logger  *log.Logger
}

func New(service Service, logger *log.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts tenant endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/tenants", h.handleCreateTenant)
	r.Get("/tenants/{tenantID}", h.handleGetTenant)
	r.Put("/tenants/{tenantID}/name", h.handleRenameTenant)
	r.Post("/tenants/{tenantID}/deactivate", h.handleDeactivateTenant)
	r.Post("/tenants/{tenantID}/reactivate", h.handleReactivateTenant)
	r.Post("/tenants/{tenantID}/organizations", h.handleCreateOrganization)
	r.Post("/organizations/{orgID}/deactivate", h.handleDeactivateOrganization)
	r.Post("/organizations/{orgID}/reactivate", h.handleReactivateOrganization)
}

type nameRequest struct {
	Name string `json:"name"`
}

func (h *Handler) handleCreateTenant(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.Decode[nameRequest](w, r, h.logger)
	if !ok {
		return
	}

	tenantID, version, err := h.service.CreateTenant(ctx, req.Name)
	if err != nil {
		h.logger.Printf("create tenant failed: request_id=%s err=%v", requestcontext.RequestID(ctx), err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, map[string]any{
		"tenant_id": tenantID.String(),
		"version":   version,
	})
}

func (h *Handler) handleGetTenant(w http.ResponseWriter, r *http.Request) {
	tenantID, err := id.ParseTenantID(chi.URLParam(r, "tenantID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid tenant id"))
		return
	}

	item, version, err := h.service.GetTenant(r.Context(), tenantID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"tenant":  item,
		"version": version,
	})
}

func (h *Handler) handleRenameTenant(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tenantID, err := id.ParseTenantID(chi.URLParam(r, "tenantID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid tenant id"))
		return
	}
	req, ok := httputil.Decode[nameRequest](w, r, h.logger)
	if !ok {
		return
	}

	version, err := h.service.RenameTenant(ctx, tenantID, req.Name)
	if err != nil {
		h.logger.Printf("rename tenant %s failed: request_id=%s err=%v", tenantID, requestcontext.RequestID(ctx), err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"tenant_id": tenantID.String(),
		"version":   version,
	})
}

func (h *Handler) handleDeactivateTenant(w http.ResponseWriter, r *http.Request) {
	h.handleTenantStatus(w, r, h.service.DeactivateTenant)
}

func (h *Handler) handleReactivateTenant(w http.ResponseWriter, r *http.Request) {
	h.handleTenantStatus(w, r, h.service.ReactivateTenant)
}

func (h *Handler) handleTenantStatus(w http.ResponseWriter, r *http.Request, op func(context.Context, id.TenantID) (int64, error)) {
	ctx := r.Context()
	tenantID, err := id.ParseTenantID(chi.URLParam(r, "tenantID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid tenant id"))
		return
	}

	version, err := op(ctx, tenantID)
	if err != nil {
		h.logger.Printf("tenant %s status change failed: request_id=%s err=%v", tenantID, requestcontext.RequestID(ctx), err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"tenant_id": tenantID.String(),
		"version":   version,
	})
}

func (h *Handler) handleCreateOrganization(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tenantID, err := id.ParseTenantID(chi.URLParam(r, "tenantID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid tenant id"))
		return
	}
	req, ok := httputil.Decode[nameRequest](w, r, h.logger)
	if !ok {
		return
	}

	orgID, version, err := h.service.CreateOrganization(ctx, tenantID, req.Name)
	if err != nil {
		h.logger.Printf("create organization under %s failed: request_id=%s err=%v", tenantID, requestcontext.RequestID(ctx), err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, map[string]any{
		"organization_id": orgID.String(),
		"version":         version,
	})
}

func (h *Handler) handleDeactivateOrganization(w http.ResponseWriter, r *http.Request) {
	h.handleOrganizationStatus(w, r, h.service.DeactivateOrganization)
}

func (h *Handler) handleReactivateOrganization(w http.ResponseWriter, r *http.Request) {
	h.handleOrganizationStatus(w, r, h.service.ReactivateOrganization)
}

func (h *Handler) handleOrganizationStatus(w http.ResponseWriter, r *http.Request, op func(context.Context, id.OrganizationID) (int64, error)) {
	ctx := r.Context()
	orgID, err := id.ParseOrganizationID(chi.URLParam(r, "orgID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid organization id"))
		return
	}

	version, err := op(ctx, orgID)
	if err != nil {
		h.logger.Printf("organization %s status change failed: request_id=%s err=%v", orgID, requestcontext.RequestID(ctx), err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"organization_id": orgID.String(),
		"version":         version,
	})
}
