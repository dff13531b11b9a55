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
	"go.uber.org/mock/gomock"

	"hemocamp/internal/registration/handler/mocks"
	"hemocamp/internal/registration/models"
	id "hemocamp/pkg/domain"
	dErrors "hemocamp/pkg/domain-errors"
	"hemocamp/pkg/testutil"
)

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

func TestHandleRegister(t *testing.T) {
	t.Run("registers the caller for a camp", func(t *testing.T) {
		r, mockService := newTestRouter(t)
		donorID := id.NewDonorID()
		campID := id.NewCampID()

		reg := models.NewRegistration(id.NewRegistrationID(), donorID, campID, handlerTime)
		mockService.EXPECT().
			Register(gomock.Any(), donorID, campID).
			Return(reg, nil)

		req := testutil.NewRequest(t, http.MethodPost, "/camps/"+campID.String()+"/registrations")
		req = testutil.WithCaller(req, uuid.UUID(donorID), id.RoleDonor)

		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusCreated, rec.Code)
		var resp models.Registration
		testutil.DecodeJSON(t, rec, &resp)
		assert.Equal(t, reg.ID, resp.ID)
		assert.Equal(t, models.StatusRegistered, resp.Status)
	})

	t.Run("rejects a malformed camp id", func(t *testing.T) {
		r, _ := newTestRouter(t)

		req := testutil.NewRequest(t, http.MethodPost, "/camps/not-a-uuid/registrations")
		req = testutil.WithCaller(req, uuid.New(), id.RoleDonor)

		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("maps a full camp to 409", func(t *testing.T) {
		r, mockService := newTestRouter(t)
		campID := id.NewCampID()

		mockService.EXPECT().
			Register(gomock.Any(), gomock.Any(), campID).
			Return(nil, dErrors.New(dErrors.CodeConflict, "camp full"))

		req := testutil.NewRequest(t, http.MethodPost, "/camps/"+campID.String()+"/registrations")
		req = testutil.WithCaller(req, uuid.New(), id.RoleDonor)

		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusConflict, rec.Code)
		var resp map[string]any
		testutil.DecodeJSON(t, rec, &resp)
		assert.Equal(t, "conflict", resp["error"])
		assert.Equal(t, "camp full", resp["error_description"])
	})

	t.Run("maps an unknown camp to 404", func(t *testing.T) {
		r, mockService := newTestRouter(t)
		campID := id.NewCampID()

		mockService.EXPECT().
			Register(gomock.Any(), gomock.Any(), campID).
			Return(nil, dErrors.New(dErrors.CodeNotFound, "camp unavailable"))

		req := testutil.NewRequest(t, http.MethodPost, "/camps/"+campID.String()+"/registrations")
		req = testutil.WithCaller(req, uuid.New(), id.RoleDonor)

		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestHandleCancel(t *testing.T) {
	t.Run("cancels the caller's registration", func(t *testing.T) {
		r, mockService := newTestRouter(t)
		donorID := id.NewDonorID()
		campID := id.NewCampID()

		mockService.EXPECT().
			Cancel(gomock.Any(), donorID, campID).
			Return(nil)

		req := testutil.NewRequest(t, http.MethodDelete, "/camps/"+campID.String()+"/registrations")
		req = testutil.WithCaller(req, uuid.UUID(donorID), id.RoleDonor)

		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("an organizer cancels on a donor's behalf", func(t *testing.T) {
		r, mockService := newTestRouter(t)
		donorID := id.NewDonorID()
		campID := id.NewCampID()

		mockService.EXPECT().
			Cancel(gomock.Any(), donorID, campID).
			Return(nil)

		req := testutil.NewRequest(t, http.MethodDelete,
			"/camps/"+campID.String()+"/registrations?donor_id="+donorID.String())
		req = testutil.WithCaller(req, uuid.New(), id.RoleOrganizer)

		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("a donor cannot cancel another donor's registration", func(t *testing.T) {
		r, _ := newTestRouter(t)
		campID := id.NewCampID()

		req := testutil.NewRequest(t, http.MethodDelete,
			"/camps/"+campID.String()+"/registrations?donor_id="+id.NewDonorID().String())
		req = testutil.WithCaller(req, uuid.New(), id.RoleDonor)

		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("a donor may name themselves explicitly", func(t *testing.T) {
		r, mockService := newTestRouter(t)
		donorID := id.NewDonorID()
		campID := id.NewCampID()

		mockService.EXPECT().
			Cancel(gomock.Any(), donorID, campID).
			Return(nil)

		req := testutil.NewRequest(t, http.MethodDelete,
			"/camps/"+campID.String()+"/registrations?donor_id="+donorID.String())
		req = testutil.WithCaller(req, uuid.UUID(donorID), id.RoleDonor)

		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("rejects a malformed donor id", func(t *testing.T) {
		r, _ := newTestRouter(t)
		campID := id.NewCampID()

		req := testutil.NewRequest(t, http.MethodDelete,
			"/camps/"+campID.String()+"/registrations?donor_id=not-a-uuid")
		req = testutil.WithCaller(req, uuid.New(), id.RoleOrganizer)

		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("maps a registration in verification to 409", func(t *testing.T) {
		r, mockService := newTestRouter(t)
		campID := id.NewCampID()

		mockService.EXPECT().
			Cancel(gomock.Any(), gomock.Any(), campID).
			Return(dErrors.New(dErrors.CodeInvalidState, "registration is already in verification"))

		req := testutil.NewRequest(t, http.MethodDelete, "/camps/"+campID.String()+"/registrations")
		req = testutil.WithCaller(req, uuid.New(), id.RoleDonor)

		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusConflict, rec.Code)
	})
}
