package service

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"hemocamp/internal/certificate"
	"hemocamp/internal/verification/models"
	"hemocamp/pkg/domain"
	dErrors "hemocamp/pkg/domain-errors"
	"hemocamp/pkg/requestcontext"
)

// CompleteInput carries the post-donation care payload and any complications
// observed during the draw.
type CompleteInput struct {
	PostDonationCare models.PostDonationCare `json:"post_donation_care"`
	Complications    []string                `json:"complications,omitempty"`
}

// Complete closes out an approved verification: donation completed, donor
// appended to the camp's actual-donor set, donor profile stamped. Certificate
// issuance and the completion notice run after commit and cannot fail the
// transition. Calling Complete on an already-completed verification returns
// the existing state without repeating any side effect.
func (s *Service) Complete(ctx context.Context, id domain.VerificationID, input CompleteInput) (*models.Verification, error) {
	ctx, span := s.tracer.Start(ctx, "verification.Complete", trace.WithAttributes(
		attribute.String("verification_id", id.String()),
	))
	defer span.End()

	start := time.Now()
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
		next, effects, err = models.ApplyCompletion(*v, input.PostDonationCare, input.Complications, now)
		if err != nil {
			return err
		}
		if len(effects) == 0 {
			// Idempotent re-completion, nothing to write.
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

	if len(effects) == 0 {
		return &next, nil
	}

	s.runPostCommitEffects(ctx, &next, effects)
	if s.metrics != nil {
		s.metrics.IncrementCompleted()
		s.metrics.ObserveComplete(start)
	}
	s.logger.Info("verification completed",
		"verification_id", next.ID, "donor_id", next.DonorID, "camp_id", next.CampID)
	return &next, nil
}

// RetryCertificate re-attempts issuance for a completed verification whose
// certificate is still outstanding. Unlike the post-completion attempt it
// probes the issuer even when the circuit is open.
func (s *Service) RetryCertificate(ctx context.Context, id domain.VerificationID) (*models.Verification, error) {
	ctx, span := s.tracer.Start(ctx, "verification.RetryCertificate")
	defer span.End()

	v, err := s.findVerification(ctx, id)
	if err != nil {
		return nil, err
	}
	if v.CertificateStatus == models.CertificateIssued {
		return v, nil
	}
	if v.Status != models.StatusCompleted {
		return nil, dErrors.New(dErrors.CodeInvalidState, "verification is not completed").
			WithDetail("status", string(v.Status))
	}

	result, err := s.issueOnce(ctx, v, true)
	if err != nil {
		s.recordCertificateOutcome(ctx, v, models.CertificateFailed, "")
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "certificate issuance failed")
	}
	s.recordCertificateOutcome(ctx, v, models.CertificateIssued, result.URL)
	return v, nil
}

// requestCertificate is the post-completion, best-effort attempt. Errors are
// logged and leave the certificate outstanding for a later retry.
func (s *Service) requestCertificate(ctx context.Context, v *models.Verification) {
	result, err := s.issueOnce(ctx, v, false)
	if err != nil {
		s.logger.Warn("certificate issuance failed, left pending for retry",
			"verification_id", v.ID, "error", err)
		s.recordCertificateOutcome(ctx, v, models.CertificateFailed, "")
		return
	}
	s.recordCertificateOutcome(ctx, v, models.CertificateIssued, result.URL)
}

func (s *Service) issueOnce(ctx context.Context, v *models.Verification, probe bool) (certificate.IssueResult, error) {
	req := certificate.IssueRequest{
		DonorID:        v.DonorID,
		CampID:         v.CampID,
		VerificationID: v.ID,
		DonationDate:   v.UpdatedAt,
	}
	if v.CompletedAt != nil {
		req.DonationDate = *v.CompletedAt
	}
	if probe {
		if p, ok := s.issuer.(certificate.Prober); ok {
			return p.Probe(ctx, req)
		}
	}
	return s.issuer.Issue(ctx, req)
}

// recordCertificateOutcome persists the issuance outcome. A write failure
// here is logged only; the certificate can be retried either way.
func (s *Service) recordCertificateOutcome(ctx context.Context, v *models.Verification, status models.CertificateStatus, url string) {
	v.CertificateStatus = status
	if url != "" {
		v.CertificateURL = url
	}
	v.UpdatedAt = requestcontext.Now(ctx)
	if err := s.verifications.Update(ctx, v); err != nil {
		s.logger.Error("persisting certificate outcome failed",
			"verification_id", v.ID, "certificate_status", status, "error", err)
	}
	if s.metrics != nil {
		s.metrics.IncrementCertificate(string(status))
	}
}
