package testutil

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"hemocamp/pkg/domain"
	"hemocamp/pkg/requestcontext"
)

// WithCaller adds a caller identity and role to the request context.
// This simulates what the auth middleware would do for authenticated requests.
func WithCaller(req *http.Request, callerID uuid.UUID, role domain.Role) *http.Request {
	ctx := requestcontext.WithCaller(req.Context(), callerID, role)
	return req.WithContext(ctx)
}

// WithTime pins the request-scoped clock for deterministic handler tests.
func WithTime(req *http.Request, t time.Time) *http.Request {
	return req.WithContext(requestcontext.WithTime(req.Context(), t))
}
