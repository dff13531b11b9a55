package service

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"hemocamp/internal/verification/models"
	"hemocamp/pkg/domain"
	dErrors "hemocamp/pkg/domain-errors"
	"hemocamp/pkg/platform/sentinel"
	"hemocamp/pkg/requestcontext"
)

// DonationDetailsInput carries the draw parameters.
type DonationDetailsInput struct {
	BloodBagNumber string `json:"blood_bag_number"`
}

// RecordDonationDetails reserves the blood-bag number, approves the
// verification and moves the donation to in_progress. The bag number is
// claimed before the unit of work opens so two concurrent submissions of the
// same number cannot both pass; the claim is released if the transition
// fails. The database unique index is the final backstop.
func (s *Service) RecordDonationDetails(ctx context.Context, id domain.VerificationID, input DonationDetailsInput) (*models.Verification, error) {
	ctx, span := s.tracer.Start(ctx, "verification.RecordDonationDetails", trace.WithAttributes(
		attribute.String("verification_id", id.String()),
	))
	defer span.End()

	if input.BloodBagNumber == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "blood bag number is required")
	}

	// Check the state before claiming the bag so a retried call against an
	// already-approved verification reports invalid_state, not a duplicate
	// bag. The transition re-checks inside the unit of work.
	current, err := s.findVerification(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Status != models.StatusPending {
		return nil, dErrors.New(dErrors.CodeInvalidState, "verification is "+string(current.Status)).
			WithDetail("status", string(current.Status))
	}

	if err := s.bags.Reserve(ctx, input.BloodBagNumber); err != nil {
		if errors.Is(err, sentinel.ErrAlreadyUsed) {
			if s.metrics != nil {
				s.metrics.IncrementDuplicateBloodBag()
			}
			return nil, dErrors.New(dErrors.CodeConflict, "duplicate blood bag").
				WithDetail("blood_bag_number", input.BloodBagNumber)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "reserving blood bag")
	}

	now := requestcontext.Now(ctx)
	var next models.Verification

	err = s.runner.RunInTx(ctx, func(ctx context.Context) error {
		v, err := s.findVerificationForUpdate(ctx, id)
		if err != nil {
			return err
		}
		var effects []models.Effect
		next, effects, err = models.ApplyDonationDetails(*v, input.BloodBagNumber, now)
		if err != nil {
			return err
		}
		if err := s.verifications.Update(ctx, &next); err != nil {
			if errors.Is(err, sentinel.ErrAlreadyUsed) {
				return dErrors.New(dErrors.CodeConflict, "duplicate blood bag").
					WithDetail("blood_bag_number", input.BloodBagNumber)
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "updating verification")
		}
		return s.applyStateEffects(ctx, &next, effects)
	})
	if err != nil {
		if releaseErr := s.bags.Release(ctx, input.BloodBagNumber); releaseErr != nil {
			s.logger.Error("releasing blood bag reservation failed",
				"blood_bag_number", input.BloodBagNumber, "error", releaseErr)
		}
		return nil, err
	}

	s.logger.Info("donation details recorded",
		"verification_id", next.ID, "blood_bag_number", input.BloodBagNumber)
	return &next, nil
}
