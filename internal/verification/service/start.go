package service

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	donationmodels "hemocamp/internal/donation/models"
	regmodels "hemocamp/internal/registration/models"
	"hemocamp/internal/verification/models"
	"hemocamp/pkg/domain"
	dErrors "hemocamp/pkg/domain-errors"
	"hemocamp/pkg/platform/sentinel"
	"hemocamp/pkg/requestcontext"
)

// StartResult is the donation/verification pair created together.
type StartResult struct {
	Verification models.Verification     `json:"verification"`
	Donation     donationmodels.Donation `json:"donation"`
}

// Start opens a verification for a registered donor. In one unit of work it
// creates the donation (blood type snapshotted from the donor profile) and
// the pending verification, and flips the registration to donated, which
// consumes the slot and opens the donor's cooldown window.
func (s *Service) Start(ctx context.Context, donorID domain.DonorID, campID domain.CampID, verifierID domain.StaffID) (*StartResult, error) {
	ctx, span := s.tracer.Start(ctx, "verification.Start", trace.WithAttributes(
		attribute.String("donor_id", donorID.String()),
		attribute.String("camp_id", campID.String()),
	))
	defer span.End()

	now := requestcontext.Now(ctx)
	var result StartResult

	err := s.runner.RunInTx(ctx, func(ctx context.Context) error {
		// Locked read: a concurrent Start for the same registration blocks
		// here and then observes the donated status.
		reg, err := s.registrations.FindActiveByDonorAndCampForUpdate(ctx, donorID, campID)
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeConflict, "not registered or already donated")
		}
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "loading registration")
		}
		if reg.Status != regmodels.StatusRegistered {
			return dErrors.New(dErrors.CodeConflict, "not registered or already donated")
		}

		donor, err := s.donors.FindByID(ctx, donorID)
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "donor not found")
		}
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "loading donor")
		}

		donation := donationmodels.NewDonation(domain.NewDonationID(), donorID, campID, donor.BloodType, now)
		if err := s.donations.Create(ctx, donation); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "creating donation")
		}

		verification := models.NewVerification(domain.NewVerificationID(), donation.ID, donorID, campID, verifierID, now)
		if err := s.verifications.Create(ctx, verification); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "creating verification")
		}

		reg.MarkDonated(now)
		if err := s.registrations.Update(ctx, reg); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "updating registration")
		}

		result = StartResult{Verification: *verification, Donation: *donation}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.IncrementStarted()
	}
	s.logger.Info("verification started",
		"verification_id", result.Verification.ID,
		"donation_id", result.Donation.ID,
		"donor_id", donorID, "camp_id", campID)
	return &result, nil
}
