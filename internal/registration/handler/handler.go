// Package handler wires the camp registration endpoints to the service.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"hemocamp/internal/registration/models"
	id "hemocamp/pkg/domain"
	dErrors "hemocamp/pkg/domain-errors"
	"hemocamp/pkg/platform/httputil"
	"hemocamp/pkg/requestcontext"
)

//go:generate mockgen -source=handler.go -destination=mocks/registration-mocks.go -package=mocks Service

// Service defines the interface for registration gate operations.
type Service interface {
	Register(ctx context.Context, donorID id.DonorID, campID id.CampID) (*models.Registration, error)
	Cancel(ctx context.Context, donorID id.DonorID, campID id.CampID) error
}

// Handler wires registration endpoints to the gate service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a registration handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts registration endpoints on the router. Registration is
// always for the authenticated caller; cancellation additionally accepts a
// donor_id query parameter so camp staff can free a slot on a donor's behalf.
func (h *Handler) Register(r chi.Router) {
	r.Post("/camps/{campID}/registrations", h.HandleRegister)
	r.Delete("/camps/{campID}/registrations", h.HandleCancel)
}

func campIDParam(r *http.Request) (id.CampID, error) {
	raw := chi.URLParam(r, "campID")
	campID, err := id.ParseCampID(raw)
	if err != nil {
		return id.CampID{}, dErrors.New(dErrors.CodeValidation, "camp id must be a valid UUID")
	}
	return campID, nil
}

// HandleRegister handles POST /camps/{campID}/registrations requests.
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	campID, err := campIDParam(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	donorID := id.DonorID(requestcontext.CallerID(ctx))

	reg, err := h.service.Register(ctx, donorID, campID)
	if err != nil {
		h.logger.ErrorContext(ctx, "registration failed",
			"request_id", requestID,
			"donor_id", donorID,
			"camp_id", campID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "donor registered",
		"request_id", requestID,
		"registration_id", reg.ID,
		"camp_id", campID,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusCreated, reg)
}

// cancelDonorID resolves whose registration a cancellation targets. Staff may
// name the donor through the donor_id query parameter; donors always act on
// themselves.
func cancelDonorID(r *http.Request) (id.DonorID, error) {
	caller := id.DonorID(requestcontext.CallerID(r.Context()))
	raw := r.URL.Query().Get("donor_id")
	if raw == "" {
		return caller, nil
	}
	donorID, err := id.ParseDonorID(raw)
	if err != nil {
		return id.DonorID{}, dErrors.New(dErrors.CodeValidation, "donor id must be a valid UUID")
	}
	if requestcontext.Role(r.Context()) == id.RoleDonor && donorID != caller {
		return id.DonorID{}, dErrors.New(dErrors.CodeForbidden, "donors may only cancel their own registration")
	}
	return donorID, nil
}

// HandleCancel handles DELETE /camps/{campID}/registrations requests.
func (h *Handler) HandleCancel(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	campID, err := campIDParam(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	donorID, err := cancelDonorID(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := h.service.Cancel(ctx, donorID, campID); err != nil {
		h.logger.ErrorContext(ctx, "cancelling registration failed",
			"request_id", requestID,
			"donor_id", donorID,
			"camp_id", campID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "registration cancelled",
		"request_id", requestID,
		"donor_id", donorID,
		"camp_id", campID,
	)
	w.WriteHeader(http.StatusNoContent)
}
