package handler

import (
	"context"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"tempo/internal/approval"
	id "tempo/pkg/domain"
	dErrors "tempo/pkg/domain-errors"
	"tempo/pkg/platform/httputil"
	pstrings "tempo/pkg/platform/strings"
	"tempo/pkg/requestcontext"
)

// Service defines the monthly approval operations the handler delegates to.
type Service interface {
	Submit(ctx context.Context, in approval.SubmitMonthInput) (int64, error)
	Approve(ctx context.Context, approvalID id.ApprovalID, reviewerID id.MemberID) (int64, error)
	Reject(ctx context.Context, approvalID id.ApprovalID, reviewerID id.MemberID) (int64, error)
	Get(ctx context.Context, approvalID id.ApprovalID) (*approval.Approval, int64, error)
}

// Handler wires monthly approval endpoints to the workflow.
type Handler struct {
	service Service
	logger  *log.Logger
}

func New(service Service, logger *log.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts approval endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/approvals/submit", h.handleSubmit)
	r.Post("/approvals/{approvalID}/approve", h.handleApprove)
	r.Post("/approvals/{approvalID}/reject", h.handleReject)
	r.Get("/approvals/{approvalID}", h.handleGet)
}

type submitRequest struct {
	Month      string   `json:"month"`
	EntryIDs   []string `json:"entry_ids"`
	AbsenceIDs []string `json:"absence_ids"`
}

type approvalResponse struct {
	ApprovalID string `json:"approval_id"`
	Version    int64  `json:"version"`
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.Decode[submitRequest](w, r, h.logger)
	if !ok {
		return
	}

	month, err := id.ParseMonth(req.Month)
	if err != nil {
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid month"))
		return
	}
	entryIDs, err := parseEntryIDs(req.EntryIDs)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	absenceIDs, err := parseAbsenceIDs(req.AbsenceIDs)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	memberID := requestcontext.Actor(ctx)
	version, err := h.service.Submit(ctx, approval.SubmitMonthInput{
		TenantID:   requestcontext.Tenant(ctx),
		MemberID:   memberID,
		Month:      month,
		EntryIDs:   entryIDs,
		AbsenceIDs: absenceIDs,
	})
	if err != nil {
		h.logger.Printf("submit month %s for member %s failed: request_id=%s err=%v",
			month, memberID, requestcontext.RequestID(ctx), err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, approvalResponse{
		ApprovalID: approval.ApprovalIDFor(memberID, month).String(),
		Version:    version,
	})
}

func (h *Handler) handleApprove(w http.ResponseWriter, r *http.Request) {
	h.handleReview(w, r, h.service.Approve)
}

func (h *Handler) handleReject(w http.ResponseWriter, r *http.Request) {
	h.handleReview(w, r, h.service.Reject)
}

func (h *Handler) handleReview(w http.ResponseWriter, r *http.Request, review func(context.Context, id.ApprovalID, id.MemberID) (int64, error)) {
	ctx := r.Context()
	approvalID, err := id.ParseApprovalID(chi.URLParam(r, "approvalID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid approval id"))
		return
	}

	version, err := review(ctx, approvalID, requestcontext.Actor(ctx))
	if err != nil {
		h.logger.Printf("review of approval %s failed: request_id=%s err=%v",
			approvalID, requestcontext.RequestID(ctx), err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, approvalResponse{ApprovalID: approvalID.String(), Version: version})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	approvalID, err := id.ParseApprovalID(chi.URLParam(r, "approvalID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid approval id"))
		return
	}

	item, version, err := h.service.Get(r.Context(), approvalID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"approval": item,
		"version":  version,
	})
}

func parseEntryIDs(raw []string) ([]id.EntryID, error) {
	cleaned := pstrings.DedupeAndTrim(raw)
	out := make([]id.EntryID, 0, len(cleaned))
	for _, value := range cleaned {
		entryID, err := id.ParseEntryID(value)
		if err != nil {
			return nil, dErrors.Newf(dErrors.CodeBadRequest, "invalid entry id %q", value)
		}
		out = append(out, entryID)
	}
	return out, nil
}

func parseAbsenceIDs(raw []string) ([]id.AbsenceID, error) {
	cleaned := pstrings.DedupeAndTrim(raw)
	out := make([]id.AbsenceID, 0, len(cleaned))
	for _, value := range cleaned {
		absenceID, err := id.ParseAbsenceID(value)
		if err != nil {
			return nil, dErrors.Newf(dErrors.CodeBadRequest, "invalid absence id %q", value)
		}
		out = append(out, absenceID)
	}
	return out, nil
}
