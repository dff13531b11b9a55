// Package service orchestrates the verification pipeline. Transitions
// themselves are pure functions in the models package; this layer loads
// state, runs a transition, and applies its effects inside one unit of work,
// then fires the best-effort side effects (certificate, notifications) after
// commit.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	campmodels "hemocamp/internal/camp/models"
	"hemocamp/internal/certificate"
	donationmodels "hemocamp/internal/donation/models"
	donormodels "hemocamp/internal/donor/models"
	"hemocamp/internal/notification"
	regmodels "hemocamp/internal/registration/models"
	"hemocamp/internal/verification/metrics"
	"hemocamp/internal/verification/models"
	"hemocamp/internal/verification/store/bloodbag"
	"hemocamp/pkg/domain"
	dErrors "hemocamp/pkg/domain-errors"
	"hemocamp/pkg/platform/sentinel"
	"hemocamp/pkg/platform/tx"
)

type Store interface {
	Create(ctx context.Context, v *models.Verification) error
	Update(ctx context.Context, v *models.Verification) error
	FindByID(ctx context.Context, id domain.VerificationID) (*models.Verification, error)
	// FindByIDForUpdate locks the row for the surrounding unit of work so
	// concurrent transitions serialize on the verification.
	FindByIDForUpdate(ctx context.Context, id domain.VerificationID) (*models.Verification, error)
}

type DonationStore interface {
	Create(ctx context.Context, donation *donationmodels.Donation) error
	Update(ctx context.Context, donation *donationmodels.Donation) error
	FindByID(ctx context.Context, id domain.DonationID) (*donationmodels.Donation, error)
}

type RegistrationStore interface {
	FindActiveByDonorAndCamp(ctx context.Context, donorID domain.DonorID, campID domain.CampID) (*regmodels.Registration, error)
	// FindActiveByDonorAndCampForUpdate locks the ledger entry so two
	// concurrent Starts cannot both consume the same registration.
	FindActiveByDonorAndCampForUpdate(ctx context.Context, donorID domain.DonorID, campID domain.CampID) (*regmodels.Registration, error)
	Update(ctx context.Context, reg *regmodels.Registration) error
}

type CampStore interface {
	FindByID(ctx context.Context, id domain.CampID) (*campmodels.Camp, error)
	AddActualDonor(ctx context.Context, campID domain.CampID, donorID domain.DonorID, at time.Time) (bool, error)
}

type DonorStore interface {
	FindByID(ctx context.Context, id domain.DonorID) (*donormodels.Donor, error)
	SetLastDonation(ctx context.Context, id domain.DonorID, at time.Time) error
}

// Service runs the pipeline. Every multi-record mutation goes through the
// Runner so the verification, donation, ledger and camp projection move
// together.
type Service struct {
	verifications Store
	donations     DonationStore
	registrations RegistrationStore
	camps         CampStore
	donors        DonorStore
	bags          bloodbag.Reservations
	issuer        certificate.Issuer
	notifier      notification.Dispatcher
	runner        tx.Runner

	rule    models.EligibilityRule
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

// WithMetrics enables pipeline metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithEligibilityRule replaces the baseline clinical rule. The thresholds are
// organizational policy, so deployments can swap their own in.
func WithEligibilityRule(rule models.EligibilityRule) Option {
	return func(s *Service) { s.rule = rule }
}

func NewService(
	verifications Store,
	donations DonationStore,
	registrations RegistrationStore,
	camps CampStore,
	donors DonorStore,
	bags bloodbag.Reservations,
	issuer certificate.Issuer,
	notifier notification.Dispatcher,
	runner tx.Runner,
	opts ...Option,
) *Service {
	s := &Service{
		verifications: verifications,
		donations:     donations,
		registrations: registrations,
		camps:         camps,
		donors:        donors,
		bags:          bags,
		issuer:        issuer,
		notifier:      notifier,
		runner:        runner,
		rule:          models.BaselineRule{},
		logger:        slog.Default(),
		tracer:        otel.Tracer("hemocamp/verification"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Detail is a verification joined with its donation and the donor/camp
// context a reviewer needs.
type Detail struct {
	Verification models.Verification     `json:"verification"`
	Donation     donationmodels.Donation `json:"donation"`
	DonorName    string                  `json:"donor_name"`
	BloodType    domain.BloodType        `json:"blood_type"`
	CampName     string                  `json:"camp_name"`
	VerifierID   domain.StaffID          `json:"verifier_id"`
}

// Get returns the full verification with donor/camp detail.
func (s *Service) Get(ctx context.Context, id domain.VerificationID) (*Detail, error) {
	ctx, span := s.tracer.Start(ctx, "verification.Get")
	defer span.End()

	v, err := s.findVerification(ctx, id)
	if err != nil {
		return nil, err
	}
	donation, err := s.donations.FindByID(ctx, v.DonationID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "loading donation")
	}
	donor, err := s.donors.FindByID(ctx, v.DonorID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "loading donor")
	}
	camp, err := s.camps.FindByID(ctx, v.CampID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "loading camp")
	}
	return &Detail{
		Verification: *v,
		Donation:     *donation,
		DonorName:    donor.FullName,
		BloodType:    donation.BloodType,
		CampName:     camp.Name,
		VerifierID:   v.VerifierID,
	}, nil
}

func (s *Service) findVerification(ctx context.Context, id domain.VerificationID) (*models.Verification, error) {
	return s.translateFind(s.verifications.FindByID(ctx, id))
}

// findVerificationForUpdate is the locked read used inside units of work, so
// a transition observes a status no concurrent transaction can move under it.
func (s *Service) findVerificationForUpdate(ctx context.Context, id domain.VerificationID) (*models.Verification, error) {
	return s.translateFind(s.verifications.FindByIDForUpdate(ctx, id))
}

func (s *Service) translateFind(v *models.Verification, err error) (*models.Verification, error) {
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.New(dErrors.CodeNotFound, "verification not found")
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "loading verification")
	}
	return v, nil
}

func (s *Service) queue(ctx context.Context, n notification.Notification) {
	if err := s.notifier.Queue(ctx, n); err != nil {
		s.logger.Error("queueing notification failed",
			"kind", n.Kind, "recipient_id", n.RecipientID, "error", err)
	}
}
