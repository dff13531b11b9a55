package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	donationmodels "hemocamp/internal/donation/models"
	"hemocamp/internal/notification"
	"hemocamp/internal/verification/models"
	"hemocamp/pkg/domain"
	dErrors "hemocamp/pkg/domain-errors"
	"hemocamp/pkg/requestcontext"
)

// UpdateMedicalChecks merges the supplied vitals and re-runs the eligibility
// rule. A disqualifying value rejects the verification and cancels the
// donation in the same unit of work; the rejected state comes back to the
// caller, not an error.
func (s *Service) UpdateMedicalChecks(ctx context.Context, id domain.VerificationID, input models.MedicalChecks) (*models.Verification, error) {
	ctx, span := s.tracer.Start(ctx, "verification.UpdateMedicalChecks")
	defer span.End()

	return s.runChecksStage(ctx, id, "medical_checks", func(v models.Verification, now time.Time) (models.Verification, []models.Effect, error) {
		return models.ApplyMedicalChecks(v, input, s.rule, now)
	})
}

// UpdateHealthScreening merges the questionnaire answers with the same
// merge/evaluate/reject behavior as UpdateMedicalChecks.
func (s *Service) UpdateHealthScreening(ctx context.Context, id domain.VerificationID, input models.HealthScreening) (*models.Verification, error) {
	ctx, span := s.tracer.Start(ctx, "verification.UpdateHealthScreening")
	defer span.End()

	return s.runChecksStage(ctx, id, "health_screening", func(v models.Verification, now time.Time) (models.Verification, []models.Effect, error) {
		return models.ApplyHealthScreening(v, input, s.rule, now)
	})
}

func (s *Service) runChecksStage(
	ctx context.Context,
	id domain.VerificationID,
	stage string,
	apply func(v models.Verification, now time.Time) (models.Verification, []models.Effect, error),
) (*models.Verification, error) {
	now := requestcontext.Now(ctx)
	var (
		next    models.Verification
		effects []models.Effect
	)

	err := s.runner.RunInTx(ctx, func(ctx context.Context) error {
		v, err := s.findVerificationForUpdate(ctx, id)
		if err != nil {
			return err
		}
		next, effects, err = apply(*v, now)
		if err != nil {
			return err
		}
		if next.Status == models.StatusRejected && len(effects) == 0 {
			// Repeated submission after rejection, nothing to write.
			return nil
		}
		if err := s.verifications.Update(ctx, &next); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "updating verification")
		}
		return s.applyStateEffects(ctx, &next, effects)
	})
	if err != nil {
		return nil, err
	}

	s.runPostCommitEffects(ctx, &next, effects)
	if next.Status == models.StatusRejected && len(effects) > 0 {
		if s.metrics != nil {
			s.metrics.IncrementRejected(stage)
		}
		s.logger.Info("verification rejected",
			"verification_id", next.ID, "stage", stage, "reason", next.RejectionReason)
	}
	return &next, nil
}

// applyStateEffects applies the transition's record mutations inside the
// ambient unit of work.
func (s *Service) applyStateEffects(ctx context.Context, v *models.Verification, effects []models.Effect) error {
	for _, effect := range effects {
		switch effect.Kind {
		case models.EffectCancelDonation:
			if err := s.cancelDonation(ctx, v.DonationID, effect.Reason, effect.At); err != nil {
				return err
			}
		case models.EffectMarkDonationInProgress:
			if err := s.markDonationInProgress(ctx, v.DonationID, effect.BloodBagNumber, effect.At); err != nil {
				return err
			}
		case models.EffectCompleteDonation:
			if err := s.completeDonation(ctx, v.DonationID, effect.At); err != nil {
				return err
			}
		case models.EffectAppendActualDonor:
			if _, err := s.camps.AddActualDonor(ctx, v.CampID, v.DonorID, effect.At); err != nil {
				return dErrors.Wrap(err, dErrors.CodeInternal, "recording actual donor")
			}
		case models.EffectUpdateDonorLastDonation:
			if err := s.donors.SetLastDonation(ctx, v.DonorID, effect.At); err != nil {
				return dErrors.Wrap(err, dErrors.CodeInternal, "updating donor profile")
			}
		}
	}
	return nil
}

// runPostCommitEffects fires the best-effort effects after the unit of work
// committed. Failures are logged, never propagated.
func (s *Service) runPostCommitEffects(ctx context.Context, v *models.Verification, effects []models.Effect) {
	for _, effect := range effects {
		switch effect.Kind {
		case models.EffectQueueRejectionNotice:
			s.queue(ctx, notification.Notification{
				ID:          uuid.New(),
				RecipientID: uuid.UUID(v.DonorID),
				Kind:        notification.KindVerificationRejected,
				Title:       "Donation not possible this time",
				Message:     "You could not donate today: " + effect.Reason,
				RelatedID:   uuid.UUID(v.ID),
				CreatedAt:   effect.At,
			})
		case models.EffectQueueCompletionNotice:
			s.queue(ctx, notification.Notification{
				ID:          uuid.New(),
				RecipientID: uuid.UUID(v.DonorID),
				Kind:        notification.KindDonationCompleted,
				Title:       "Thank you for donating",
				Message:     "Your donation is complete. Your certificate will be available shortly.",
				RelatedID:   uuid.UUID(v.ID),
				CreatedAt:   effect.At,
			})
		case models.EffectRequestCertificate:
			s.requestCertificate(ctx, v)
		}
	}
}

func (s *Service) loadDonation(ctx context.Context, id domain.DonationID) (*donationmodels.Donation, error) {
	donation, err := s.donations.FindByID(ctx, id)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "loading donation")
	}
	return donation, nil
}

func (s *Service) cancelDonation(ctx context.Context, id domain.DonationID, reason string, at time.Time) error {
	donation, err := s.loadDonation(ctx, id)
	if err != nil {
		return err
	}
	if !donation.Status.CanTransitionTo(donationmodels.StatusCancelled) {
		return dErrors.New(dErrors.CodeInvariantViolation, "donation cannot be cancelled")
	}
	donation.Status = donationmodels.StatusCancelled
	donation.Notes = reason
	donation.UpdatedAt = at
	if err := s.donations.Update(ctx, donation); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "cancelling donation")
	}
	return nil
}

func (s *Service) markDonationInProgress(ctx context.Context, id domain.DonationID, bagNumber string, at time.Time) error {
	donation, err := s.loadDonation(ctx, id)
	if err != nil {
		return err
	}
	if !donation.Status.CanTransitionTo(donationmodels.StatusInProgress) {
		return dErrors.New(dErrors.CodeInvariantViolation, "donation cannot move to in_progress")
	}
	donation.Status = donationmodels.StatusInProgress
	donation.BloodBagNumber = bagNumber
	donation.UpdatedAt = at
	if err := s.donations.Update(ctx, donation); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "updating donation")
	}
	return nil
}

func (s *Service) completeDonation(ctx context.Context, id domain.DonationID, at time.Time) error {
	donation, err := s.loadDonation(ctx, id)
	if err != nil {
		return err
	}
	if !donation.Status.CanTransitionTo(donationmodels.StatusCompleted) {
		return dErrors.New(dErrors.CodeInvariantViolation, "donation cannot be completed")
	}
	donation.Status = donationmodels.StatusCompleted
	completedAt := at
	donation.CompletedAt = &completedAt
	donation.UpdatedAt = at
	if err := s.donations.Update(ctx, donation); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "completing donation")
	}
	return nil
}
