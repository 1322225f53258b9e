package handler

import (
	"context"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"tempo/internal/absence"
	id "tempo/pkg/domain"
	dErrors "tempo/pkg/domain-errors"
	"tempo/pkg/platform/httputil"
	"tempo/pkg/requestcontext"
)

// Service defines the absence operations the handler delegates to.
type Service interface {
	Create(ctx context.Context, in absence.CreateAbsenceInput) (id.AbsenceID, int64, error)
	Edit(ctx context.Context, absenceID id.AbsenceID, in absence.EditAbsenceInput) (int64, error)
	Delete(ctx context.Context, absenceID id.AbsenceID) (int64, error)
	Get(ctx context.Context, absenceID id.AbsenceID) (*absence.Absence, int64, error)
}

// Handler wires absence endpoints to the service.
type Handler struct {
	service Service
	logger  *log.Logger
}

func New(service Service, logger *log.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts absence endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/absences", h.handleCreate)
	r.Get("/absences/{absenceID}", h.handleGet)
	r.Put("/absences/{absenceID}", h.handleEdit)
	r.Delete("/absences/{absenceID}", h.handleDelete)
}

type absenceRequest struct {
	Type      string `json:"type"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Note      string `json:"note"`
}

type absenceResponse struct {
	AbsenceID string `json:"absence_id"`
	Version   int64  `json:"version"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.Decode[absenceRequest](w, r, h.logger)
	if !ok {
		return
	}

	absenceID, version, err := h.service.Create(ctx, absence.CreateAbsenceInput{
		TenantID:  requestcontext.Tenant(ctx),
		MemberID:  requestcontext.Actor(ctx),
		Type:      absence.Type(req.Type),
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		Note:      req.Note,
	})
	if err != nil {
		h.logger.Printf("create absence failed: request_id=%s err=%v", requestcontext.RequestID(ctx), err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, absenceResponse{AbsenceID: absenceID.String(), Version: version})
}

func (h *Handler) handleEdit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	absenceID, err := id.ParseAbsenceID(chi.URLParam(r, "absenceID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid absence id"))
		return
	}
	req, ok := httputil.Decode[absenceRequest](w, r, h.logger)
	if !ok {
		return
	}

	version, err := h.service.Edit(ctx, absenceID, absence.EditAbsenceInput{
		Type:      absence.Type(req.Type),
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		Note:      req.Note,
	})
	if err != nil {
		h.logger.Printf("edit absence %s failed: request_id=%s err=%v", absenceID, requestcontext.RequestID(ctx), err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, absenceResponse{AbsenceID: absenceID.String(), Version: version})
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	absenceID, err := id.ParseAbsenceID(chi.URLParam(r, "absenceID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid absence id"))
		return
	}

	if _, err := h.service.Delete(ctx, absenceID); err != nil {
		h.logger.Printf("delete absence %s failed: request_id=%s err=%v", absenceID, requestcontext.RequestID(ctx), err)
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	absenceID, err := id.ParseAbsenceID(chi.URLParam(r, "absenceID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid absence id"))
		return
	}

	item, version, err := h.service.Get(r.Context(), absenceID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"absence": item,
		"version": version,
	})
}
