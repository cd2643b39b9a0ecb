// Package handler exposes the identifier lifecycle over HTTP.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"cradle/internal/child"
	"cradle/internal/child/service"
	"cradle/internal/ledger"
	dErrors "cradle/pkg/domainerrors"
	"cradle/pkg/httputil"
	"cradle/pkg/requestcontext"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks

// Service defines the child lifecycle operations the handlers call.
type Service interface {
	Register(ctx context.Context, principal requestcontext.AuthPrincipal, input service.RegisterInput) (child.Record, error)
	Validate(ctx context.Context, identifier string) (bool, error)
	LookupWithGuardian(ctx context.Context, principal requestcontext.AuthPrincipal, identifier string) (child.WithGuardian, error)
	VerificationPayload(ctx context.Context, principal requestcontext.AuthPrincipal, identifier string) (service.Verification, error)
	Regenerate(ctx context.Context, principal requestcontext.AuthPrincipal, childID int64) (string, error)
	Assign(ctx context.Context, principal requestcontext.AuthPrincipal, input service.AssignInput) (service.AssignResult, error)
	History(ctx context.Context, principal requestcontext.AuthPrincipal, childID int64) ([]ledger.Entry, error)
	Deactivate(ctx context.Context, principal requestcontext.AuthPrincipal, childID int64) error
	ListAllForAdmin(ctx context.Context) ([]child.AdminListing, error)
}

type Handler struct {
	children Service
	logger   *slog.Logger
}

func New(children Service, logger *slog.Logger) *Handler {
	return &Handler{children: children, logger: logger}
}

// Register attaches the lifecycle routes. Authentication and the admin role
// gate are applied by the router; handlers only read the principal.
func (h *Handler) Register(r chi.Router) {
	r.Route("/identifiers/{identifier}", func(r chi.Router) {
		r.Get("/", h.handleLookup)
		r.Get("/validate", h.handleValidate)
		r.Get("/qr", h.handleVerificationPayload)
	})
	r.Route("/children", func(r chi.Router) {
		r.Post("/", h.handleRegister)
		r.Post("/{childID}/identifier/regenerate", h.handleRegenerate)
		r.Get("/{childID}/identifier/history", h.handleHistory)
		r.Delete("/{childID}", h.handleDeactivate)
	})
}

// RegisterAdmin attaches the admin-only routes.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Route("/children", func(r chi.Router) {
		r.Get("/", h.handleAdminList)
		r.Post("/assign", h.handleAssign)
	})
}

func (h *Handler) principal(w http.ResponseWriter, r *http.Request) (requestcontext.AuthPrincipal, bool) {
	p, ok := requestcontext.Principal(r.Context())
	if !ok {
		h.logger.ErrorContext(r.Context(), "principal missing despite auth middleware",
			"request_id", requestcontext.RequestID(r.Context()),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "authentication context error"))
		return requestcontext.AuthPrincipal{}, false
	}
	return p, true
}

func childIDParam(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "childID"), 10, 64)
	if err != nil || id <= 0 {
		return 0, dErrors.New(dErrors.CodeValidation, "invalid child id")
	}
	return id, nil
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.principal(w, r)
	if !ok {
		return
	}

	input, err := decodeRegisterRequest(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	record, err := h.children.Register(r.Context(), principal, input)
	if err != nil {
		h.logError(r, "register child", err)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"message": "Child registered successfully",
		"child":   childBody(record, requestcontext.Now(r.Context())),
	})
}

func (h *Handler) handleValidate(w http.ResponseWriter, r *http.Request) {
	identifier := chi.URLParam(r, "identifier")
	valid, err := h.children.Validate(r.Context(), identifier)
	if err != nil {
		h.logError(r, "validate identifier", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"identifier": identifier,
		"valid":      valid,
	})
}

func (h *Handler) handleLookup(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.principal(w, r)
	if !ok {
		return
	}

	joined, err := h.children.LookupWithGuardian(r.Context(), principal, chi.URLParam(r, "identifier"))
	if err != nil {
		h.logError(r, "lookup identifier", err)
		httputil.WriteError(w, err)
		return
	}

	body := childBody(joined.Record, requestcontext.Now(r.Context()))
	body["guardian"] = map[string]any{
		"name":  joined.GuardianName,
		"email": joined.GuardianEmail,
		"phone": joined.GuardianPhone,
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"success": true, "child": body})
}

func (h *Handler) handleVerificationPayload(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.principal(w, r)
	if !ok {
		return
	}

	payload, err := h.children.VerificationPayload(r.Context(), principal, chi.URLParam(r, "identifier"))
	if err != nil {
		h.logError(r, "verification payload", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"success":          true,
		"identifier":       payload.Identifier,
		"child_name":       payload.ChildName,
		"verification_url": payload.VerificationURL,
	})
}

func (h *Handler) handleRegenerate(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.principal(w, r)
	if !ok {
		return
	}
	childID, err := childIDParam(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	newIdentifier, err := h.children.Regenerate(r.Context(), principal, childID)
	if err != nil {
		h.logError(r, "regenerate identifier", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"success":        true,
		"new_identifier": newIdentifier,
		"message":        "Unique ID regenerated successfully",
	})
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.principal(w, r)
	if !ok {
		return
	}
	childID, err := childIDParam(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	entries, err := h.children.History(r.Context(), principal, childID)
	if err != nil {
		h.logError(r, "identifier history", err)
		httputil.WriteError(w, err)
		return
	}

	history := make([]map[string]any, 0, len(entries))
	for _, entry := range entries {
		history = append(history, map[string]any{
			"old_unique_id": entry.OldIdentifier,
			"new_unique_id": entry.NewIdentifier,
			"reason":        entry.Reason,
			"created_at":    entry.CreatedAt,
		})
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"success": true, "history": history})
}

func (h *Handler) handleDeactivate(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.principal(w, r)
	if !ok {
		return
	}
	childID, err := childIDParam(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := h.children.Deactivate(r.Context(), principal, childID); err != nil {
		h.logError(r, "deactivate child", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Child record deactivated",
	})
}

func (h *Handler) handleAssign(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.principal(w, r)
	if !ok {
		return
	}

	input, err := decodeAssignRequest(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	result, err := h.children.Assign(r.Context(), principal, input)
	if err != nil {
		h.logError(r, "assign child", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"success":         true,
		"message":         "Child reassigned successfully",
		"child_id":        result.ChildID,
		"old_guardian_id": result.OldGuardianID,
		"new_guardian_id": result.NewGuardianID,
		"old_identifier":  result.OldIdentifier,
		"new_identifier":  result.NewIdentifier,
	})
}

func (h *Handler) handleAdminList(w http.ResponseWriter, r *http.Request) {
	listings, err := h.children.ListAllForAdmin(r.Context())
	if err != nil {
		h.logError(r, "admin list children", err)
		httputil.WriteError(w, err)
		return
	}

	children := make([]map[string]any, 0, len(listings))
	for _, l := range listings {
		children = append(children, map[string]any{
			"id":             l.ChildID,
			"name":           l.Name,
			"birth_date":     l.BirthDate.Format(dateLayout),
			"gender":         l.Gender,
			"unique_id":      l.Identifier,
			"guardian_id":    l.GuardianID,
			"guardian_name":  l.GuardianName,
			"guardian_email": l.GuardianEmail,
			"created_at":     l.CreatedAt,
		})
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"success": true, "children": children})
}

func (h *Handler) logError(r *http.Request, op string, err error) {
	ctx := r.Context()
	attrs := []any{
		"request_id", requestcontext.RequestID(ctx),
		"error", err.Error(),
	}
	if dErrors.CodeOf(err) == dErrors.CodeInternal {
		h.logger.ErrorContext(ctx, op+" failed", attrs...)
		return
	}
	h.logger.WarnContext(ctx, op+" rejected", attrs...)
}
