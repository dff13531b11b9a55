package handler

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"hemocamp/internal/verification/handler/mocks"
	"hemocamp/internal/verification/models"
	"hemocamp/internal/verification/service"
	id "hemocamp/pkg/domain"
	dErrors "hemocamp/pkg/domain-errors"
	"hemocamp/pkg/testutil"
)

//go:generate mockgen -source=handler.go -destination=mocks/verification-mocks.go -package=mocks Service

var handlerTime = time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

func newTestRouter(t *testing.T) (chi.Router, *mocks.MockService) {
	t.Helper()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)
	mockService := mocks.NewMockService(ctrl)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	r := chi.NewRouter()
	New(mockService, logger).Register(r)
	return r, mockService
}

func pendingVerification() *models.Verification {
	return models.NewVerification(
		id.NewVerificationID(), id.NewDonationID(), id.NewDonorID(),
		id.NewCampID(), id.NewStaffID(), handlerTime,
	)
}

func TestHandleStart(t *testing.T) {
	t.Run("starts a verification with the caller as verifier", func(t *testing.T) {
		r, mockService := newTestRouter(t)
		donorID := id.NewDonorID()
		campID := id.NewCampID()
		verifier := id.NewStaffID()

		v := pendingVerification()
		mockService.EXPECT().
			Start(gomock.Any(), donorID, campID, verifier).
			Return(&service.StartResult{Verification: *v}, nil)

		req := testutil.NewJSONRequest(t, http.MethodPost, "/verifications", map[string]string{
			"donor_id": donorID.String(),
			"camp_id":  campID.String(),
		})
		req = testutil.WithCaller(req, uuid.UUID(verifier), id.RoleOrganizer)

		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusCreated, rec.Code)
		var resp service.StartResult
		testutil.DecodeJSON(t, rec, &resp)
		assert.Equal(t, v.ID, resp.Verification.ID)
	})

	t.Run("rejects a malformed donor id", func(t *testing.T) {
		r, _ := newTestRouter(t)

		req := testutil.NewJSONRequest(t, http.MethodPost, "/verifications", map[string]string{
			"donor_id": "not-a-uuid",
			"camp_id":  id.NewCampID().String(),
		})

		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("maps a gate conflict to 409", func(t *testing.T) {
		r, mockService := newTestRouter(t)
		mockService.EXPECT().
			Start(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil, dErrors.New(dErrors.CodeConflict, "not registered or already donated"))

		req := testutil.NewJSONRequest(t, http.MethodPost, "/verifications", map[string]string{
			"donor_id": id.NewDonorID().String(),
			"camp_id":  id.NewCampID().String(),
		})

		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusConflict, rec.Code)
	})
}

func TestHandleMedicalChecks(t *testing.T) {
	t.Run("returns the possibly rejected verification", func(t *testing.T) {
		r, mockService := newTestRouter(t)
		v := pendingVerification()
		v.Status = models.StatusRejected
		v.RejectionReason = "hemoglobin 11.0 g/dL below minimum 12.5"

		mockService.EXPECT().
			UpdateMedicalChecks(gomock.Any(), v.ID, gomock.Any()).
			Return(v, nil)

		req := testutil.NewJSONRequest(t, http.MethodPatch,
			"/verifications/"+v.ID.String()+"/medical-checks",
			map[string]float64{"hemoglobin_g_dl": 11.0})

		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		var resp models.Verification
		testutil.DecodeJSON(t, rec, &resp)
		assert.Equal(t, models.StatusRejected, resp.Status)
	})

	t.Run("requires at least one field", func(t *testing.T) {
		r, _ := newTestRouter(t)

		req := testutil.NewJSONRequest(t, http.MethodPatch,
			"/verifications/"+id.NewVerificationID().String()+"/medical-checks",
			map[string]any{})

		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("rejects a malformed verification id", func(t *testing.T) {
		r, _ := newTestRouter(t)

		req := testutil.NewJSONRequest(t, http.MethodPatch,
			"/verifications/nope/medical-checks",
			map[string]float64{"hemoglobin_g_dl": 14.0})

		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHandleDonationDetails(t *testing.T) {
	t.Run("approves with a bag number", func(t *testing.T) {
		r, mockService := newTestRouter(t)
		v := pendingVerification()
		v.Status = models.StatusApproved

		mockService.EXPECT().
			RecordDonationDetails(gomock.Any(), v.ID, service.DonationDetailsInput{BloodBagNumber: "BB-001"}).
			Return(v, nil)

		req := testutil.NewJSONRequest(t, http.MethodPost,
			"/verifications/"+v.ID.String()+"/donation-details",
			map[string]string{"blood_bag_number": "BB-001"})

		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("maps duplicate blood bag to 409", func(t *testing.T) {
		r, mockService := newTestRouter(t)
		verificationID := id.NewVerificationID()

		mockService.EXPECT().
			RecordDonationDetails(gomock.Any(), verificationID, gomock.Any()).
			Return(nil, dErrors.New(dErrors.CodeConflict, "duplicate blood bag"))

		req := testutil.NewJSONRequest(t, http.MethodPost,
			"/verifications/"+verificationID.String()+"/donation-details",
			map[string]string{"blood_bag_number": "BB-001"})

		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusConflict, rec.Code)
		var resp map[string]any
		testutil.DecodeJSON(t, rec, &resp)
		assert.Equal(t, "conflict", resp["error"])
	})

	t.Run("requires a bag number", func(t *testing.T) {
		r, _ := newTestRouter(t)

		req := testutil.NewJSONRequest(t, http.MethodPost,
			"/verifications/"+id.NewVerificationID().String()+"/donation-details",
			map[string]string{"blood_bag_number": "  "})

		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHandleComplete(t *testing.T) {
	t.Run("completes with post-donation care", func(t *testing.T) {
		r, mockService := newTestRouter(t)
		v := pendingVerification()
		v.Status = models.StatusCompleted

		mockService.EXPECT().
			Complete(gomock.Any(), v.ID, gomock.Any()).
			Return(v, nil)

		req := testutil.NewJSONRequest(t, http.MethodPost,
			"/verifications/"+v.ID.String()+"/complete",
			map[string]any{
				"post_donation_care": map[string]any{"rest_minutes": 15},
				"complications":      []string{"mild dizziness"},
			})

		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("maps invalid state to 409", func(t *testing.T) {
		r, mockService := newTestRouter(t)
		verificationID := id.NewVerificationID()

		mockService.EXPECT().
			Complete(gomock.Any(), verificationID, gomock.Any()).
			Return(nil, dErrors.New(dErrors.CodeInvalidState, "verification is pending"))

		req := testutil.NewJSONRequest(t, http.MethodPost,
			"/verifications/"+verificationID.String()+"/complete",
			map[string]any{})

		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusConflict, rec.Code)
	})
}

func TestHandleGet(t *testing.T) {
	t.Run("returns the detail", func(t *testing.T) {
		r, mockService := newTestRouter(t)
		v := pendingVerification()

		mockService.EXPECT().
			Get(gomock.Any(), v.ID).
			Return(&service.Detail{Verification: *v, DonorName: "Asha Rao", CampName: "City Drive"}, nil)

		req := testutil.NewRequest(t, http.MethodGet, "/verifications/"+v.ID.String())

		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		var resp service.Detail
		testutil.DecodeJSON(t, rec, &resp)
		assert.Equal(t, "Asha Rao", resp.DonorName)
	})

	t.Run("maps not found to 404", func(t *testing.T) {
		r, mockService := newTestRouter(t)
		verificationID := id.NewVerificationID()

		mockService.EXPECT().
			Get(gomock.Any(), verificationID).
			Return(nil, dErrors.New(dErrors.CodeNotFound, "verification not found"))

		req := testutil.NewRequest(t, http.MethodGet, "/verifications/"+verificationID.String())

		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestHandleRetryCertificate(t *testing.T) {
	r, mockService := newTestRouter(t)
	v := pendingVerification()
	v.Status = models.StatusCompleted
	v.CertificateStatus = models.CertificateIssued
	v.CertificateURL = "https://certs.example/cert.pdf"

	mockService.EXPECT().
		RetryCertificate(gomock.Any(), v.ID).
		Return(v, nil)

	req := testutil.NewRequest(t, http.MethodPost, "/verifications/"+v.ID.String()+"/certificate/retry")

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp models.Verification
	testutil.DecodeJSON(t, rec, &resp)
	assert.Equal(t, models.CertificateIssued, resp.CertificateStatus)
}
