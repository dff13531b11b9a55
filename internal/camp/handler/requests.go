package handler

import (
	"strings"
	"time"

	dErrors "hemocamp/pkg/domain-errors"
)

// CreateCampRequest is the HTTP request body for POST /camps. The organizer
// is the authenticated caller.
type CreateCampRequest struct {
	Name     string    `json:"name"`
	Location string    `json:"location"`
	StartsAt time.Time `json:"starts_at"`
	EndsAt   time.Time `json:"ends_at"`
	Capacity int       `json:"capacity"`
}

// Validate validates the request. Scheduling invariants against the current
// time belong to the model; only shape checks happen here.
func (r *CreateCampRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.Name = strings.TrimSpace(r.Name)
	r.Location = strings.TrimSpace(r.Location)
	if r.Name == "" {
		return dErrors.New(dErrors.CodeValidation, "name is required")
	}
	if r.StartsAt.IsZero() || r.EndsAt.IsZero() {
		return dErrors.New(dErrors.CodeValidation, "starts_at and ends_at are required")
	}
	if r.Capacity <= 0 {
		return dErrors.New(dErrors.CodeValidation, "capacity must be positive")
	}
	return nil
}
