// Package service implements the camp lifecycle: organizers submit camps,
// admins approve or cancel them, and reads project the capacity counters out
// of the registration ledger.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"hemocamp/internal/camp/metrics"
	"hemocamp/internal/camp/models"
	"hemocamp/pkg/domain"
	dErrors "hemocamp/pkg/domain-errors"
	"hemocamp/pkg/platform/sentinel"
	"hemocamp/pkg/requestcontext"
)

type Store interface {
	Create(ctx context.Context, camp *models.Camp) error
	FindByID(ctx context.Context, id domain.CampID) (*models.Camp, error)
	// Execute loads the camp, runs validate, and persists the mutation in one
	// atomic step.
	Execute(ctx context.Context, id domain.CampID, validate func(*models.Camp) error, mutate func(*models.Camp)) (*models.Camp, error)
	ListByStatus(ctx context.Context, status models.CampStatus) ([]*models.Camp, error)
	CountActualDonors(ctx context.Context, campID domain.CampID) (int, error)
}

type RegistrationStore interface {
	CountActiveByCamp(ctx context.Context, campID domain.CampID) (int, error)
}

// CreateInput carries an organizer's camp submission.
type CreateInput struct {
	Name     string
	Location string
	StartsAt time.Time
	EndsAt   time.Time
	Capacity int
}

// Detail is a camp with its ledger-derived counters.
type Detail struct {
	Camp     *models.Camp    `json:"camp"`
	Counters models.Counters `json:"counters"`
}

// Service manages the camp lifecycle.
type Service struct {
	camps         Store
	registrations RegistrationStore

	logger  *slog.Logger
	metrics *metrics.Metrics
	tracer  trace.Tracer
}

// Option configures the Service.
type Option func(*Service)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithMetrics enables camp metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func NewService(camps Store, registrations RegistrationStore, opts ...Option) *Service {
	s := &Service{
		camps:         camps,
		registrations: registrations,
		logger:        slog.Default(),
		tracer:        otel.Tracer("hemocamp/camp"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create submits a new camp on behalf of an organizer. The camp starts in
// pending status and accepts no registrations until an admin approves it.
func (s *Service) Create(ctx context.Context, organizerID domain.StaffID, input CreateInput) (*models.Camp, error) {
	ctx, span := s.tracer.Start(ctx, "camp.Create", trace.WithAttributes(
		attribute.String("organizer_id", organizerID.String()),
	))
	defer span.End()

	now := requestcontext.Now(ctx)
	camp, err := models.NewCamp(domain.NewCampID(), input.Name, input.Location,
		input.StartsAt, input.EndsAt, input.Capacity, organizerID, now)
	if err != nil {
		return nil, err
	}
	if err := s.camps.Create(ctx, camp); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "creating camp")
	}

	if s.metrics != nil {
		s.metrics.IncrementCreated()
	}
	s.logger.Info("camp created", "camp_id", camp.ID, "organizer_id", organizerID, "capacity", camp.Capacity)
	return camp, nil
}

// Approve transitions a pending camp to approved, opening it for
// registrations.
func (s *Service) Approve(ctx context.Context, campID domain.CampID) (*models.Camp, error) {
	ctx, span := s.tracer.Start(ctx, "camp.Approve", trace.WithAttributes(
		attribute.String("camp_id", campID.String()),
	))
	defer span.End()

	now := requestcontext.Now(ctx)
	camp, err := s.camps.Execute(ctx, campID,
		func(c *models.Camp) error { return c.CanApprove() },
		func(c *models.Camp) { c.ApplyApproval(now) },
	)
	if err != nil {
		return nil, s.mapExecuteErr(err, "approving camp")
	}

	if s.metrics != nil {
		s.metrics.IncrementTransition(string(models.CampStatusApproved))
	}
	s.logger.Info("camp approved", "camp_id", campID)
	return camp, nil
}

// Cancel transitions a camp to cancelled. Registrations for a cancelled camp
// stop at the gate; existing entries keep their history.
func (s *Service) Cancel(ctx context.Context, campID domain.CampID) (*models.Camp, error) {
	ctx, span := s.tracer.Start(ctx, "camp.Cancel", trace.WithAttributes(
		attribute.String("camp_id", campID.String()),
	))
	defer span.End()

	now := requestcontext.Now(ctx)
	camp, err := s.camps.Execute(ctx, campID,
		func(c *models.Camp) error { return c.CanCancel() },
		func(c *models.Camp) { c.ApplyCancellation(now) },
	)
	if err != nil {
		return nil, s.mapExecuteErr(err, "cancelling camp")
	}

	if s.metrics != nil {
		s.metrics.IncrementTransition(string(models.CampStatusCancelled))
	}
	s.logger.Info("camp cancelled", "camp_id", campID)
	return camp, nil
}

// Get returns the camp with its counters. The counters are computed from the
// ledger at read time, never stored.
func (s *Service) Get(ctx context.Context, campID domain.CampID) (*Detail, error) {
	ctx, span := s.tracer.Start(ctx, "camp.Get")
	defer span.End()

	camp, err := s.camps.FindByID(ctx, campID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.New(dErrors.CodeNotFound, "camp not found")
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "loading camp")
	}

	registrations, err := s.registrations.CountActiveByCamp(ctx, campID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "counting registrations")
	}
	donors, err := s.camps.CountActualDonors(ctx, campID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "counting donors")
	}

	return &Detail{
		Camp:     camp,
		Counters: models.Counters{Registrations: registrations, ActualDonors: donors},
	}, nil
}

// List returns the camps currently open for registration.
func (s *Service) List(ctx context.Context) ([]*models.Camp, error) {
	ctx, span := s.tracer.Start(ctx, "camp.List")
	defer span.End()

	camps, err := s.camps.ListByStatus(ctx, models.CampStatusApproved)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "listing camps")
	}
	return camps, nil
}

func (s *Service) mapExecuteErr(err error, op string) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "camp not found")
	}
	var dErr *dErrors.Error
	if errors.As(err, &dErr) {
		return err
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, op)
}
