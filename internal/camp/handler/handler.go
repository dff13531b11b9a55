// Package handler wires the camp lifecycle endpoints to the service.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"hemocamp/internal/camp/models"
	"hemocamp/internal/camp/service"
	id "hemocamp/pkg/domain"
	dErrors "hemocamp/pkg/domain-errors"
	"hemocamp/pkg/platform/httputil"
	"hemocamp/pkg/requestcontext"
)

//go:generate mockgen -source=handler.go -destination=mocks/camp-mocks.go -package=mocks Service

// Service defines the interface for camp lifecycle operations.
type Service interface {
	Create(ctx context.Context, organizerID id.StaffID, input service.CreateInput) (*models.Camp, error)
	Approve(ctx context.Context, campID id.CampID) (*models.Camp, error)
	Cancel(ctx context.Context, campID id.CampID) (*models.Camp, error)
	Get(ctx context.Context, campID id.CampID) (*service.Detail, error)
	List(ctx context.Context) ([]*models.Camp, error)
}

// Handler wires camp endpoints to the lifecycle service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a camp handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts camp endpoints on the router. Role enforcement happens in
// the router's middleware chain.
func (h *Handler) Register(r chi.Router) {
	r.Post("/camps", h.HandleCreate)
	r.Get("/camps", h.HandleList)
	r.Get("/camps/{campID}", h.HandleGet)
	r.Post("/camps/{campID}/approve", h.HandleApprove)
	r.Post("/camps/{campID}/cancel", h.HandleCancel)
}

func campIDParam(r *http.Request) (id.CampID, error) {
	raw := chi.URLParam(r, "campID")
	campID, err := id.ParseCampID(raw)
	if err != nil {
		return id.CampID{}, dErrors.New(dErrors.CodeValidation, "camp id must be a valid UUID")
	}
	return campID, nil
}

// HandleCreate handles POST /camps requests.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	req, ok := httputil.DecodeAndPrepare[CreateCampRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	organizerID := id.StaffID(requestcontext.CallerID(ctx))

	camp, err := h.service.Create(ctx, organizerID, service.CreateInput{
		Name:     req.Name,
		Location: req.Location,
		StartsAt: req.StartsAt,
		EndsAt:   req.EndsAt,
		Capacity: req.Capacity,
	})
	if err != nil {
		h.logger.ErrorContext(ctx, "creating camp failed",
			"request_id", requestID,
			"organizer_id", organizerID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "camp created",
		"request_id", requestID,
		"camp_id", camp.ID,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusCreated, camp)
}

// HandleApprove handles POST /camps/{campID}/approve requests.
func (h *Handler) HandleApprove(w http.ResponseWriter, r *http.Request) {
	h.runTransition(w, r, "approve", h.service.Approve)
}

// HandleCancel handles POST /camps/{campID}/cancel requests.
func (h *Handler) HandleCancel(w http.ResponseWriter, r *http.Request) {
	h.runTransition(w, r, "cancel", h.service.Cancel)
}

// HandleGet handles GET /camps/{campID} requests.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	campID, err := campIDParam(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	detail, err := h.service.Get(r.Context(), campID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, detail)
}

// HandleList handles GET /camps requests.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	camps, err := h.service.List(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, camps)
}

func (h *Handler) runTransition(
	w http.ResponseWriter,
	r *http.Request,
	action string,
	fn func(ctx context.Context, campID id.CampID) (*models.Camp, error),
) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	campID, err := campIDParam(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	camp, err := fn(ctx, campID)
	if err != nil {
		h.logger.ErrorContext(ctx, "camp transition failed",
			"request_id", requestID,
			"camp_id", campID,
			"action", action,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "camp transition applied",
		"request_id", requestID,
		"camp_id", campID,
		"action", action,
		"status", camp.Status,
	)
	httputil.WriteJSON(w, http.StatusOK, camp)
}
