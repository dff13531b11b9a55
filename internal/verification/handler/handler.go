// Package handler wires the verification pipeline endpoints to the service.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"hemocamp/internal/verification/models"
	"hemocamp/internal/verification/service"
	id "hemocamp/pkg/domain"
	dErrors "hemocamp/pkg/domain-errors"
	"hemocamp/pkg/platform/httputil"
	"hemocamp/pkg/requestcontext"
)

// Service defines the interface for verification pipeline operations.
type Service interface {
	Start(ctx context.Context, donorID id.DonorID, campID id.CampID, verifierID id.StaffID) (*service.StartResult, error)
	UpdateMedicalChecks(ctx context.Context, verificationID id.VerificationID, input models.MedicalChecks) (*models.Verification, error)
	UpdateHealthScreening(ctx context.Context, verificationID id.VerificationID, input models.HealthScreening) (*models.Verification, error)
	RecordDonationDetails(ctx context.Context, verificationID id.VerificationID, input service.DonationDetailsInput) (*models.Verification, error)
	Complete(ctx context.Context, verificationID id.VerificationID, input service.CompleteInput) (*models.Verification, error)
	RetryCertificate(ctx context.Context, verificationID id.VerificationID) (*models.Verification, error)
	Get(ctx context.Context, verificationID id.VerificationID) (*service.Detail, error)
}

// Handler wires verification endpoints to the pipeline service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a verification handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts verification endpoints on the router. Role enforcement
// happens in the router's middleware chain.
func (h *Handler) Register(r chi.Router) {
	r.Post("/verifications", h.HandleStart)
	r.Get("/verifications/{verificationID}", h.HandleGet)
	r.Patch("/verifications/{verificationID}/medical-checks", h.HandleMedicalChecks)
	r.Patch("/verifications/{verificationID}/health-screening", h.HandleHealthScreening)
	r.Post("/verifications/{verificationID}/donation-details", h.HandleDonationDetails)
	r.Post("/verifications/{verificationID}/complete", h.HandleComplete)
	r.Post("/verifications/{verificationID}/certificate/retry", h.HandleRetryCertificate)
}

func verificationIDParam(r *http.Request) (id.VerificationID, error) {
	raw := chi.URLParam(r, "verificationID")
	verificationID, err := id.ParseVerificationID(raw)
	if err != nil {
		return id.VerificationID{}, dErrors.New(dErrors.CodeValidation, "verification id must be a valid UUID")
	}
	return verificationID, nil
}

// HandleStart handles POST /verifications requests.
func (h *Handler) HandleStart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	req, ok := httputil.DecodeAndPrepare[StartVerificationRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	verifierID := id.StaffID(requestcontext.CallerID(ctx))

	result, err := h.service.Start(ctx, req.ParsedDonorID(), req.ParsedCampID(), verifierID)
	if err != nil {
		h.logger.ErrorContext(ctx, "starting verification failed",
			"request_id", requestID,
			"donor_id", req.DonorID,
			"camp_id", req.CampID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "verification started",
		"request_id", requestID,
		"verification_id", result.Verification.ID,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusCreated, result)
}

// HandleGet handles GET /verifications/{verificationID} requests.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	verificationID, err := verificationIDParam(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	detail, err := h.service.Get(r.Context(), verificationID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, detail)
}

// HandleMedicalChecks handles PATCH /verifications/{verificationID}/medical-checks.
func (h *Handler) HandleMedicalChecks(w http.ResponseWriter, r *http.Request) {
	h.runStage(w, r, "medical checks", func(ctx context.Context, verificationID id.VerificationID) (*models.Verification, error) {
		req, ok := httputil.DecodeAndPrepare[MedicalChecksRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
		if !ok {
			return nil, nil
		}
		return h.service.UpdateMedicalChecks(ctx, verificationID, req.MedicalChecks)
	})
}

// HandleHealthScreening handles PATCH /verifications/{verificationID}/health-screening.
func (h *Handler) HandleHealthScreening(w http.ResponseWriter, r *http.Request) {
	h.runStage(w, r, "health screening", func(ctx context.Context, verificationID id.VerificationID) (*models.Verification, error) {
		req, ok := httputil.DecodeAndPrepare[HealthScreeningRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
		if !ok {
			return nil, nil
		}
		return h.service.UpdateHealthScreening(ctx, verificationID, req.HealthScreening)
	})
}

// HandleDonationDetails handles POST /verifications/{verificationID}/donation-details.
func (h *Handler) HandleDonationDetails(w http.ResponseWriter, r *http.Request) {
	h.runStage(w, r, "donation details", func(ctx context.Context, verificationID id.VerificationID) (*models.Verification, error) {
		req, ok := httputil.DecodeAndPrepare[DonationDetailsRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
		if !ok {
			return nil, nil
		}
		return h.service.RecordDonationDetails(ctx, verificationID, service.DonationDetailsInput{
			BloodBagNumber: req.BloodBagNumber,
		})
	})
}

// HandleComplete handles POST /verifications/{verificationID}/complete.
func (h *Handler) HandleComplete(w http.ResponseWriter, r *http.Request) {
	h.runStage(w, r, "completion", func(ctx context.Context, verificationID id.VerificationID) (*models.Verification, error) {
		req, ok := httputil.DecodeAndPrepare[CompleteRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
		if !ok {
			return nil, nil
		}
		return h.service.Complete(ctx, verificationID, service.CompleteInput{
			PostDonationCare: req.PostDonationCare,
			Complications:    req.Complications,
		})
	})
}

// HandleRetryCertificate handles POST /verifications/{verificationID}/certificate/retry.
func (h *Handler) HandleRetryCertificate(w http.ResponseWriter, r *http.Request) {
	h.runStage(w, r, "certificate retry", func(ctx context.Context, verificationID id.VerificationID) (*models.Verification, error) {
		return h.service.RetryCertificate(ctx, verificationID)
	})
}

// runStage factors the shared id-parse/log/respond shape of the stage
// endpoints. A nil verification with nil error means the stage fn already
// wrote the response.
func (h *Handler) runStage(
	w http.ResponseWriter,
	r *http.Request,
	stage string,
	fn func(ctx context.Context, verificationID id.VerificationID) (*models.Verification, error),
) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	verificationID, err := verificationIDParam(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	v, err := fn(ctx, verificationID)
	if err != nil {
		h.logger.ErrorContext(ctx, "verification stage failed",
			"request_id", requestID,
			"verification_id", verificationID,
			"stage", stage,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	if v == nil {
		return
	}
	httputil.WriteJSON(w, http.StatusOK, v)
}
