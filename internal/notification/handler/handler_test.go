package handler

import (
	"context"
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

	"hemocamp/internal/notification"
	id "hemocamp/pkg/domain"
	"hemocamp/pkg/testutil"
)

func newTestRouter(t *testing.T) (chi.Router, *notification.InMemoryStore) {
	t.Helper()
	store := notification.NewInMemoryStore()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	r := chi.NewRouter()
	New(store, logger).Register(r)
	return r, store
}

func TestHandleList(t *testing.T) {
	t.Run("a donor reads their own inbox", func(t *testing.T) {
		r, store := newTestRouter(t)
		donorID := uuid.New()

		require.NoError(t, store.Append(context.Background(), notification.Notification{
			ID:          uuid.New(),
			RecipientID: donorID,
			Kind:        notification.KindDonationCompleted,
			Title:       "Thank you for donating",
			CreatedAt:   time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC),
		}))
		require.NoError(t, store.Append(context.Background(), notification.Notification{
			ID:          uuid.New(),
			RecipientID: uuid.New(),
			Kind:        notification.KindRegistrationReminder,
		}))

		req := testutil.NewRequest(t, http.MethodGet, "/donors/"+donorID.String()+"/notifications")
		req = testutil.WithCaller(req, donorID, id.RoleDonor)

		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		var resp []notification.Notification
		testutil.DecodeJSON(t, rec, &resp)
		require.Len(t, resp, 1)
		assert.Equal(t, notification.KindDonationCompleted, resp[0].Kind)
	})

	t.Run("a donor cannot read another inbox", func(t *testing.T) {
		r, _ := newTestRouter(t)

		req := testutil.NewRequest(t, http.MethodGet, "/donors/"+uuid.NewString()+"/notifications")
		req = testutil.WithCaller(req, uuid.New(), id.RoleDonor)

		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("staff may read any inbox", func(t *testing.T) {
		r, _ := newTestRouter(t)

		req := testutil.NewRequest(t, http.MethodGet, "/donors/"+uuid.NewString()+"/notifications")
		req = testutil.WithCaller(req, uuid.New(), id.RoleOrganizer)

		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		var resp []notification.Notification
		testutil.DecodeJSON(t, rec, &resp)
		assert.Empty(t, resp)
	})

	t.Run("rejects a malformed donor id", func(t *testing.T) {
		r, _ := newTestRouter(t)

		req := testutil.NewRequest(t, http.MethodGet, "/donors/not-a-uuid/notifications")
		req = testutil.WithCaller(req, uuid.New(), id.RoleDonor)

		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
