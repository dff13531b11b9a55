// Package service implements the registration gate: the single authority on
// whether a donor is admitted to a camp. The gate's precondition sequence and
// the resulting write run in one unit of work, with the camp row locked for
// the duration, so two concurrent attempts cannot both take the last slot.
// The ledger's partial unique indexes are the database-level backstop.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	campmodels "hemocamp/internal/camp/models"
	"hemocamp/internal/registration/metrics"
	"hemocamp/internal/registration/models"
	"hemocamp/pkg/domain"
	dErrors "hemocamp/pkg/domain-errors"
	"hemocamp/pkg/platform/sentinel"
	"hemocamp/pkg/platform/tx"
	"hemocamp/pkg/requestcontext"
)

type Store interface {
	Create(ctx context.Context, reg *models.Registration) error
	Update(ctx context.Context, reg *models.Registration) error
	FindActiveByDonorAndCamp(ctx context.Context, donorID domain.DonorID, campID domain.CampID) (*models.Registration, error)
	FindRegisteredByDonor(ctx context.Context, donorID domain.DonorID) (*models.Registration, error)
	FindLatestDonatedByDonor(ctx context.Context, donorID domain.DonorID) (*models.Registration, error)
	CountActiveByCamp(ctx context.Context, campID domain.CampID) (int, error)
}

type CampStore interface {
	FindByID(ctx context.Context, id domain.CampID) (*campmodels.Camp, error)
	// FindByIDForUpdate locks the camp row for the rest of the unit of work.
	FindByIDForUpdate(ctx context.Context, id domain.CampID) (*campmodels.Camp, error)
}

// Service is the registration gate.
type Service struct {
	registrations Store
	camps         CampStore
	runner        tx.Runner

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

// WithMetrics enables gate metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func NewService(registrations Store, camps CampStore, runner tx.Runner, opts ...Option) *Service {
	s := &Service{
		registrations: registrations,
		camps:         camps,
		runner:        runner,
		logger:        slog.Default(),
		tracer:        otel.Tracer("hemocamp/registration"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register admits a donor to a camp. The preconditions run in order, each
// with its own rejection, and the successful path creates the ledger entry in
// the same unit of work as the checks:
//
//  1. camp exists and is approved
//  2. camp has an open slot
//  3. no non-cancelled entry for this (donor, camp)
//  4. no registered-status entry for another camp
//  5. the donor's cooldown window has elapsed
func (s *Service) Register(ctx context.Context, donorID domain.DonorID, campID domain.CampID) (*models.Registration, error) {
	ctx, span := s.tracer.Start(ctx, "registration.Register", trace.WithAttributes(
		attribute.String("donor_id", donorID.String()),
		attribute.String("camp_id", campID.String()),
	))
	defer span.End()

	start := time.Now()
	now := requestcontext.Now(ctx)
	var reg *models.Registration

	err := s.runner.RunInTx(ctx, func(ctx context.Context) error {
		camp, err := s.camps.FindByIDForUpdate(ctx, campID)
		if errors.Is(err, sentinel.ErrNotFound) {
			return s.reject("camp_unavailable", dErrors.New(dErrors.CodeNotFound, "camp unavailable"))
		}
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "loading camp")
		}
		if !camp.AcceptsRegistrations() {
			return s.reject("camp_unavailable", dErrors.New(dErrors.CodeConflict, "camp unavailable").
				WithDetail("status", string(camp.Status)))
		}

		count, err := s.registrations.CountActiveByCamp(ctx, campID)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "counting registrations")
		}
		if count >= camp.Capacity {
			return s.reject("camp_full", dErrors.New(dErrors.CodeConflict, "camp full"))
		}

		if _, err := s.registrations.FindActiveByDonorAndCamp(ctx, donorID, campID); err == nil {
			return s.reject("already_registered", dErrors.New(dErrors.CodeConflict, "already registered for this camp"))
		} else if !errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.Wrap(err, dErrors.CodeInternal, "checking registration")
		}

		if other, err := s.registrations.FindRegisteredByDonor(ctx, donorID); err == nil {
			return s.reject("already_committed_elsewhere", s.committedElsewhere(ctx, other))
		} else if !errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.Wrap(err, dErrors.CodeInternal, "checking donor commitments")
		}

		if latest, err := s.registrations.FindLatestDonatedByDonor(ctx, donorID); err == nil {
			if latest.NextEligibleAt != nil && now.Before(*latest.NextEligibleAt) {
				return s.reject("not_eligible", dErrors.New(dErrors.CodeConflict, "not yet eligible").
					WithDetail("next_eligible_at", latest.NextEligibleAt.Format(time.RFC3339)))
			}
		} else if !errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.Wrap(err, dErrors.CodeInternal, "checking donor eligibility")
		}

		reg = models.NewRegistration(domain.NewRegistrationID(), donorID, campID, now)
		if err := s.registrations.Create(ctx, reg); err != nil {
			// The unique indexes caught a race the reads above missed.
			if errors.Is(err, sentinel.ErrAlreadyUsed) {
				return s.reject("already_registered", dErrors.New(dErrors.CodeConflict, "already registered for this camp"))
			}
			if errors.Is(err, sentinel.ErrConflict) {
				return s.reject("already_committed_elsewhere", dErrors.New(dErrors.CodeConflict, "already committed to another camp"))
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "creating registration")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.IncrementAdmitted()
		s.metrics.ObserveRegister(start)
	}
	s.logger.Info("donor registered", "registration_id", reg.ID, "donor_id", donorID, "camp_id", campID)
	return reg, nil
}

// committedElsewhere surfaces the name of the camp the donor is already
// committed to.
func (s *Service) committedElsewhere(ctx context.Context, other *models.Registration) error {
	rejection := dErrors.New(dErrors.CodeConflict, "already committed to another camp").
		WithDetail("camp_id", other.CampID.String())
	if camp, err := s.camps.FindByID(ctx, other.CampID); err == nil {
		rejection = rejection.WithDetail("camp_name", camp.Name)
	}
	return rejection
}

func (s *Service) reject(reason string, err error) error {
	if s.metrics != nil {
		s.metrics.IncrementRejected(reason)
	}
	return err
}

// Cancel withdraws a registered-status entry, freeing the slot and the
// donor. A registration already in verification is refused, not silently
// ignored, and cancellation is only possible while the camp date has not
// passed.
func (s *Service) Cancel(ctx context.Context, donorID domain.DonorID, campID domain.CampID) error {
	ctx, span := s.tracer.Start(ctx, "registration.Cancel")
	defer span.End()

	now := requestcontext.Now(ctx)

	err := s.runner.RunInTx(ctx, func(ctx context.Context) error {
		reg, err := s.registrations.FindActiveByDonorAndCamp(ctx, donorID, campID)
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "not registered for this camp")
		}
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "loading registration")
		}
		if err := reg.CanCancel(); err != nil {
			return err
		}

		camp, err := s.camps.FindByID(ctx, reg.CampID)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "loading camp")
		}
		if camp.DatePassed(now) {
			return dErrors.New(dErrors.CodeConflict, "camp date has passed")
		}

		reg.ApplyCancellation(now)
		if err := s.registrations.Update(ctx, reg); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "cancelling registration")
		}
		return nil
	})
	if err != nil {
		return err
	}

	if s.metrics != nil {
		s.metrics.IncrementCancelled()
	}
	s.logger.Info("registration cancelled", "donor_id", donorID, "camp_id", campID)
	return nil
}
