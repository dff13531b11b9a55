// Package handler exposes the donor-facing notification inbox.
package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"hemocamp/internal/notification"
	id "hemocamp/pkg/domain"
	dErrors "hemocamp/pkg/domain-errors"
	"hemocamp/pkg/platform/httputil"
	"hemocamp/pkg/requestcontext"
)

// Handler serves queued notifications back to their recipients.
type Handler struct {
	store  notification.Store
	logger *slog.Logger
}

// New constructs a notification handler with its dependencies.
func New(store notification.Store, logger *slog.Logger) *Handler {
	return &Handler{store: store, logger: logger}
}

// Register mounts notification endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/donors/{donorID}/notifications", h.HandleList)
}

// HandleList handles GET /donors/{donorID}/notifications requests. Donors
// may only read their own inbox; staff roles may read any.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	donorID, err := uuid.Parse(chi.URLParam(r, "donorID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "donor id must be a valid UUID"))
		return
	}
	if requestcontext.Role(ctx) == id.RoleDonor && requestcontext.CallerID(ctx) != donorID {
		httputil.WriteError(w, dErrors.New(dErrors.CodeForbidden, "cannot read another donor's notifications"))
		return
	}

	notifications, err := h.store.ListByRecipient(ctx, donorID)
	if err != nil {
		h.logger.ErrorContext(ctx, "listing notifications failed",
			"request_id", requestcontext.RequestID(ctx),
			"donor_id", donorID,
			"error", err,
		)
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "listing notifications"))
		return
	}
	if notifications == nil {
		notifications = []notification.Notification{}
	}
	httputil.WriteJSON(w, http.StatusOK, notifications)
}
