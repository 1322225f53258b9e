package handler

import (
	"context"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"tempo/internal/worklog"
	id "tempo/pkg/domain"
	dErrors "tempo/pkg/domain-errors"
	"tempo/pkg/platform/httputil"
	"tempo/pkg/requestcontext"
)

// Service defines the work-log operations the handler delegates to.
type Service interface {
	Create(ctx context.Context, in worklog.CreateEntryInput) (id.EntryID, int64, error)
	Edit(ctx context.Context, entryID id.EntryID, in worklog.EditEntryInput) (int64, error)
	Delete(ctx context.Context, entryID id.EntryID) (int64, error)
	Get(ctx context.Context, entryID id.EntryID) (*worklog.Entry, int64, error)
}

// Handler wires work-log entry endpoints to the service.
type Handler struct {
	service Service
	logger  *log.Logger
}

func New(service Service, logger *log.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts work-log endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/worklog/entries", h.handleCreate)
	r.Get("/worklog/entries/{entryID}", h.handleGet)
	r.Put("/worklog/entries/{entryID}", h.handleEdit)
	r.Delete("/worklog/entries/{entryID}", h.handleDelete)
}

type createRequest struct {
	Project string  `json:"project"`
	Date    string  `json:"date"`
	Hours   float64 `json:"hours"`
	Note    string  `json:"note"`
}

type entryResponse struct {
	EntryID string `json:"entry_id"`
	Version int64  `json:"version"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.Decode[createRequest](w, r, h.logger)
	if !ok {
		return
	}

	entryID, version, err := h.service.Create(ctx, worklog.CreateEntryInput{
		TenantID: requestcontext.Tenant(ctx),
		MemberID: requestcontext.Actor(ctx),
		Project:  req.Project,
		Date:     req.Date,
		Hours:    req.Hours,
		Note:     req.Note,
	})
	if err != nil {
		h.logger.Printf("create entry failed: request_id=%s err=%v", requestcontext.RequestID(ctx), err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, entryResponse{EntryID: entryID.String(), Version: version})
}

func (h *Handler) handleEdit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	entryID, err := id.ParseEntryID(chi.URLParam(r, "entryID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid entry id"))
		return
	}
	req, ok := httputil.Decode[createRequest](w, r, h.logger)
	if !ok {
		return
	}

	version, err := h.service.Edit(ctx, entryID, worklog.EditEntryInput{
		Project: req.Project,
		Date:    req.Date,
		Hours:   req.Hours,
		Note:    req.Note,
	})
	if err != nil {
		h.logger.Printf("edit entry %s failed: request_id=%s err=%v", entryID, requestcontext.RequestID(ctx), err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, entryResponse{EntryID: entryID.String(), Version: version})
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	entryID, err := id.ParseEntryID(chi.URLParam(r, "entryID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid entry id"))
		return
	}

	if _, err := h.service.Delete(ctx, entryID); err != nil {
		h.logger.Printf("delete entry %s failed: request_id=%s err=%v", entryID, requestcontext.RequestID(ctx), err)
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	entryID, err := id.ParseEntryID(chi.URLParam(r, "entryID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid entry id"))
		return
	}

	entry, version, err := h.service.Get(r.Context(), entryID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"entry":   entry,
		"version": version,
	})
}
