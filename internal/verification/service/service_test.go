package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	campmodels "hemocamp/internal/camp/models"
	campstore "hemocamp/internal/camp/store"
	"hemocamp/internal/certificate"
	donationmodels "hemocamp/internal/donation/models"
	donationstore "hemocamp/internal/donation/store"
	donormodels "hemocamp/internal/donor/models"
	donorstore "hemocamp/internal/donor/store"
	"hemocamp/internal/notification"
	regmodels "hemocamp/internal/registration/models"
	regstore "hemocamp/internal/registration/store"
	"hemocamp/internal/verification/models"
	verstore "hemocamp/internal/verification/store"
	"hemocamp/internal/verification/store/bloodbag"
	"hemocamp/pkg/domain"
	dErrors "hemocamp/pkg/domain-errors"
	"hemocamp/pkg/platform/tx"
	"hemocamp/pkg/requestcontext"
)

var testTime = time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

func ptr[T any](v T) *T { return &v }

type stubIssuer struct {
	calls  int
	probes int
	err    error
	url    string
}

func (i *stubIssuer) Issue(_ context.Context, _ certificate.IssueRequest) (certificate.IssueResult, error) {
	i.calls++
	if i.err != nil {
		return certificate.IssueResult{}, i.err
	}
	return certificate.IssueResult{URL: i.url}, nil
}

func (i *stubIssuer) Probe(ctx context.Context, req certificate.IssueRequest) (certificate.IssueResult, error) {
	i.probes++
	return i.Issue(ctx, req)
}

type recordingNotifier struct {
	queued []notification.Notification
}

func (n *recordingNotifier) Queue(_ context.Context, msg notification.Notification) error {
	n.queued = append(n.queued, msg)
	return nil
}

type fixture struct {
	svc           *Service
	verifications *verstore.InMemory
	donations     *donationstore.InMemory
	registrations *regstore.InMemory
	camps         *campstore.InMemory
	donors        *donorstore.InMemory
	issuer        *stubIssuer
	notifier      *recordingNotifier

	campID     domain.CampID
	verifierID domain.StaffID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		verifications: verstore.NewInMemory(),
		donations:     donationstore.NewInMemory(),
		registrations: regstore.NewInMemory(),
		camps:         campstore.NewInMemory(),
		donors:        donorstore.NewInMemory(),
		issuer:        &stubIssuer{url: "https://certs.example/cert.pdf"},
		notifier:      &recordingNotifier{},
		verifierID:    domain.NewStaffID(),
	}
	f.svc = NewService(
		f.verifications, f.donations, f.registrations, f.camps, f.donors,
		bloodbag.NewInMemory(), f.issuer, f.notifier, tx.NewSerialRunner(),
	)

	camp, err := campmodels.NewCamp(domain.NewCampID(), "City Drive", "Community Hall",
		testTime.Add(24*time.Hour), testTime.Add(32*time.Hour), 10, domain.NewStaffID(), testTime)
	require.NoError(t, err)
	camp.ApplyApproval(testTime)
	require.NoError(t, f.camps.Create(context.Background(), camp))
	f.campID = camp.ID
	return f
}

func (f *fixture) ctx() context.Context {
	return requestcontext.WithTime(context.Background(), testTime)
}

// addRegisteredDonor seeds a donor with an active registration for the camp.
func (f *fixture) addRegisteredDonor(t *testing.T, name string) domain.DonorID {
	t.Helper()
	donor := &donormodels.Donor{
		ID:        domain.NewDonorID(),
		FullName:  name,
		BloodType: domain.BloodTypeAPos,
		CreatedAt: testTime,
		UpdatedAt: testTime,
	}
	require.NoError(t, f.donors.Create(context.Background(), donor))
	reg := regmodels.NewRegistration(domain.NewRegistrationID(), donor.ID, f.campID, testTime)
	require.NoError(t, f.registrations.Create(context.Background(), reg))
	return donor.ID
}

func (f *fixture) start(t *testing.T, donorID domain.DonorID) *StartResult {
	t.Helper()
	result, err := f.svc.Start(f.ctx(), donorID, f.campID, f.verifierID)
	require.NoError(t, err)
	return result
}

// approve walks a fresh verification to approved with the given bag number.
func (f *fixture) approve(t *testing.T, donorID domain.DonorID, bag string) *StartResult {
	t.Helper()
	result := f.start(t, donorID)
	_, err := f.svc.UpdateMedicalChecks(f.ctx(), result.Verification.ID, models.MedicalChecks{HemoglobinGDL: ptr(14.0)})
	require.NoError(t, err)
	_, err = f.svc.UpdateHealthScreening(f.ctx(), result.Verification.ID, models.HealthScreening{RecentIllness: ptr(false)})
	require.NoError(t, err)
	_, err = f.svc.RecordDonationDetails(f.ctx(), result.Verification.ID, DonationDetailsInput{BloodBagNumber: bag})
	require.NoError(t, err)
	return result
}

func TestService_Start(t *testing.T) {
	t.Run("creates the donation and verification and consumes the registration", func(t *testing.T) {
		f := newFixture(t)
		donorID := f.addRegisteredDonor(t, "Asha Rao")

		result := f.start(t, donorID)

		assert.Equal(t, models.StatusPending, result.Verification.Status)
		assert.Equal(t, donationmodels.StatusPending, result.Donation.Status)
		assert.Equal(t, domain.BloodTypeAPos, result.Donation.BloodType)
		assert.Equal(t, result.Donation.ID, result.Verification.DonationID)

		reg, err := f.registrations.FindActiveByDonorAndCamp(context.Background(), donorID, f.campID)
		require.NoError(t, err)
		assert.Equal(t, regmodels.StatusDonated, reg.Status)
		require.NotNil(t, reg.DonatedAt)
		assert.Equal(t, testTime, *reg.DonatedAt)
		require.NotNil(t, reg.NextEligibleAt)
		assert.Equal(t, testTime.Add(regmodels.EligibilityCooldown), *reg.NextEligibleAt)
	})

	t.Run("refuses a donor without a registration", func(t *testing.T) {
		f := newFixture(t)
		donor := &donormodels.Donor{ID: domain.NewDonorID(), FullName: "No Reg", BloodType: domain.BloodTypeONeg}
		require.NoError(t, f.donors.Create(context.Background(), donor))

		_, err := f.svc.Start(f.ctx(), donor.ID, f.campID, f.verifierID)

		assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))
		assert.ErrorContains(t, err, "not registered or already donated")
	})

	t.Run("refuses a second start for the same registration", func(t *testing.T) {
		f := newFixture(t)
		donorID := f.addRegisteredDonor(t, "Asha Rao")
		f.start(t, donorID)

		_, err := f.svc.Start(f.ctx(), donorID, f.campID, f.verifierID)

		assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))
	})
}

func TestService_MedicalRejection(t *testing.T) {
	t.Run("a disqualifying value rejects, cancels the donation and notifies the donor", func(t *testing.T) {
		f := newFixture(t)
		donorID := f.addRegisteredDonor(t, "Asha Rao")
		started := f.start(t, donorID)

		v, err := f.svc.UpdateMedicalChecks(f.ctx(), started.Verification.ID, models.MedicalChecks{HemoglobinGDL: ptr(10.0)})

		require.NoError(t, err)
		assert.Equal(t, models.StatusRejected, v.Status)
		assert.Contains(t, v.RejectionReason, "hemoglobin")

		donation, err := f.donations.FindByID(context.Background(), started.Donation.ID)
		require.NoError(t, err)
		assert.Equal(t, donationmodels.StatusCancelled, donation.Status)
		assert.Contains(t, donation.Notes, "hemoglobin")

		require.Len(t, f.notifier.queued, 1)
		assert.Equal(t, notification.KindVerificationRejected, f.notifier.queued[0].Kind)

		_, err = f.svc.RecordDonationDetails(f.ctx(), started.Verification.ID, DonationDetailsInput{BloodBagNumber: "BB-001"})
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidState))
	})

	t.Run("repeating the disqualifying submission returns the rejected state without new side effects", func(t *testing.T) {
		f := newFixture(t)
		donorID := f.addRegisteredDonor(t, "Asha Rao")
		started := f.start(t, donorID)

		first, err := f.svc.UpdateMedicalChecks(f.ctx(), started.Verification.ID, models.MedicalChecks{HemoglobinGDL: ptr(10.0)})
		require.NoError(t, err)
		require.Equal(t, models.StatusRejected, first.Status)

		second, err := f.svc.UpdateMedicalChecks(f.ctx(), started.Verification.ID, models.MedicalChecks{HemoglobinGDL: ptr(10.0)})

		require.NoError(t, err)
		assert.Equal(t, first, second)
		assert.Len(t, f.notifier.queued, 1)

		donation, err := f.donations.FindByID(context.Background(), started.Donation.ID)
		require.NoError(t, err)
		assert.Equal(t, donationmodels.StatusCancelled, donation.Status)
	})

	t.Run("a later partial update rejects a previously passing verification", func(t *testing.T) {
		f := newFixture(t)
		donorID := f.addRegisteredDonor(t, "Asha Rao")
		started := f.start(t, donorID)

		v, err := f.svc.UpdateMedicalChecks(f.ctx(), started.Verification.ID, models.MedicalChecks{HemoglobinGDL: ptr(14.0)})
		require.NoError(t, err)
		require.Equal(t, models.StatusPending, v.Status)

		v, err = f.svc.UpdateHealthScreening(f.ctx(), started.Verification.ID, models.HealthScreening{RecentSurgery: ptr(true)})
		require.NoError(t, err)
		assert.Equal(t, models.StatusRejected, v.Status)
	})

	t.Run("unknown verification id", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.UpdateMedicalChecks(f.ctx(), domain.NewVerificationID(), models.MedicalChecks{})
		assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func TestService_RecordDonationDetails(t *testing.T) {
	t.Run("approves the verification and starts the donation", func(t *testing.T) {
		f := newFixture(t)
		donorID := f.addRegisteredDonor(t, "Asha Rao")
		started := f.approve(t, donorID, "BB-001")

		detail, err := f.svc.Get(f.ctx(), started.Verification.ID)
		require.NoError(t, err)
		assert.Equal(t, models.StatusApproved, detail.Verification.Status)
		assert.Equal(t, "BB-001", detail.Verification.DonationDetails.BloodBagNumber)
		assert.Equal(t, donationmodels.StatusInProgress, detail.Donation.Status)
		assert.Equal(t, "BB-001", detail.Donation.BloodBagNumber)
	})

	t.Run("the same bag number for a different verification is a conflict", func(t *testing.T) {
		f := newFixture(t)
		donorA := f.addRegisteredDonor(t, "Asha Rao")
		donorB := f.addRegisteredDonor(t, "Benoit Leclerc")
		f.approve(t, donorA, "BB-001")
		startedB := f.start(t, donorB)

		_, err := f.svc.RecordDonationDetails(f.ctx(), startedB.Verification.ID, DonationDetailsInput{BloodBagNumber: "BB-001"})

		assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))
		assert.ErrorContains(t, err, "duplicate blood bag")

		v, getErr := f.verifications.FindByID(context.Background(), startedB.Verification.ID)
		require.NoError(t, getErr)
		assert.Equal(t, models.StatusPending, v.Status)
	})

	t.Run("a refused transition leaves the bag number available", func(t *testing.T) {
		f := newFixture(t)
		donorA := f.addRegisteredDonor(t, "Asha Rao")
		donorB := f.addRegisteredDonor(t, "Benoit Leclerc")
		startedA := f.start(t, donorA)
		startedB := f.start(t, donorB)

		_, err := f.svc.UpdateMedicalChecks(f.ctx(), startedA.Verification.ID, models.MedicalChecks{WeightKG: ptr(40.0)})
		require.NoError(t, err)
		_, err = f.svc.RecordDonationDetails(f.ctx(), startedA.Verification.ID, DonationDetailsInput{BloodBagNumber: "BB-007"})
		require.Error(t, err)

		_, err = f.svc.RecordDonationDetails(f.ctx(), startedB.Verification.ID, DonationDetailsInput{BloodBagNumber: "BB-007"})
		assert.NoError(t, err)
	})

	t.Run("requires a bag number", func(t *testing.T) {
		f := newFixture(t)
		donorID := f.addRegisteredDonor(t, "Asha Rao")
		started := f.start(t, donorID)

		_, err := f.svc.RecordDonationDetails(f.ctx(), started.Verification.ID, DonationDetailsInput{})

		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

func TestService_Complete(t *testing.T) {
	t.Run("completes donation and verification with all side effects", func(t *testing.T) {
		f := newFixture(t)
		donorID := f.addRegisteredDonor(t, "Asha Rao")
		started := f.approve(t, donorID, "BB-001")

		v, err := f.svc.Complete(f.ctx(), started.Verification.ID, CompleteInput{
			PostDonationCare: models.PostDonationCare{RestMinutes: ptr(15)},
			Complications:    []string{"mild dizziness"},
		})

		require.NoError(t, err)
		assert.Equal(t, models.StatusCompleted, v.Status)
		assert.Equal(t, models.CertificateIssued, v.CertificateStatus)
		assert.Equal(t, "https://certs.example/cert.pdf", v.CertificateURL)

		donation, err := f.donations.FindByID(context.Background(), started.Donation.ID)
		require.NoError(t, err)
		assert.Equal(t, donationmodels.StatusCompleted, donation.Status)
		require.NotNil(t, donation.CompletedAt)

		isDonor, err := f.camps.IsActualDonor(context.Background(), f.campID, donorID)
		require.NoError(t, err)
		assert.True(t, isDonor)

		donor, err := f.donors.FindByID(context.Background(), donorID)
		require.NoError(t, err)
		require.NotNil(t, donor.LastDonationAt)
		assert.Equal(t, testTime, *donor.LastDonationAt)

		require.Len(t, f.notifier.queued, 1)
		assert.Equal(t, notification.KindDonationCompleted, f.notifier.queued[0].Kind)
		assert.Equal(t, 1, f.issuer.calls)
	})

	t.Run("a second Complete is a no-op returning the same state", func(t *testing.T) {
		f := newFixture(t)
		donorID := f.addRegisteredDonor(t, "Asha Rao")
		started := f.approve(t, donorID, "BB-001")

		first, err := f.svc.Complete(f.ctx(), started.Verification.ID, CompleteInput{})
		require.NoError(t, err)

		second, err := f.svc.Complete(f.ctx(), started.Verification.ID, CompleteInput{
			PostDonationCare: models.PostDonationCare{RestMinutes: ptr(99)},
		})

		require.NoError(t, err)
		assert.Equal(t, first, second)
		assert.Equal(t, 1, f.issuer.calls)
		assert.Len(t, f.notifier.queued, 1)

		count, err := f.camps.CountActualDonors(context.Background(), f.campID)
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})

	t.Run("refuses a pending verification", func(t *testing.T) {
		f := newFixture(t)
		donorID := f.addRegisteredDonor(t, "Asha Rao")
		started := f.start(t, donorID)

		_, err := f.svc.Complete(f.ctx(), started.Verification.ID, CompleteInput{})

		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidState))
	})

	t.Run("issuer failure leaves the completion intact and the certificate outstanding", func(t *testing.T) {
		f := newFixture(t)
		f.issuer.err = errors.New("issuer down")
		donorID := f.addRegisteredDonor(t, "Asha Rao")
		started := f.approve(t, donorID, "BB-001")

		v, err := f.svc.Complete(f.ctx(), started.Verification.ID, CompleteInput{})

		require.NoError(t, err)
		assert.Equal(t, models.StatusCompleted, v.Status)

		stored, err := f.verifications.FindByID(context.Background(), started.Verification.ID)
		require.NoError(t, err)
		assert.Equal(t, models.CertificateFailed, stored.CertificateStatus)
		assert.Empty(t, stored.CertificateURL)
	})
}

func TestService_RetryCertificate(t *testing.T) {
	completedWithFailedCertificate := func(t *testing.T) (*fixture, domain.VerificationID) {
		t.Helper()
		f := newFixture(t)
		f.issuer.err = errors.New("issuer down")
		donorID := f.addRegisteredDonor(t, "Asha Rao")
		started := f.approve(t, donorID, "BB-001")
		_, err := f.svc.Complete(f.ctx(), started.Verification.ID, CompleteInput{})
		require.NoError(t, err)
		return f, started.Verification.ID
	}

	t.Run("issues the outstanding certificate via probe", func(t *testing.T) {
		f, id := completedWithFailedCertificate(t)
		f.issuer.err = nil

		v, err := f.svc.RetryCertificate(f.ctx(), id)

		require.NoError(t, err)
		assert.Equal(t, models.CertificateIssued, v.CertificateStatus)
		assert.Equal(t, "https://certs.example/cert.pdf", v.CertificateURL)
		assert.Equal(t, 1, f.issuer.probes)
	})

	t.Run("reports a still failing issuer", func(t *testing.T) {
		f, id := completedWithFailedCertificate(t)

		_, err := f.svc.RetryCertificate(f.ctx(), id)

		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnavailable))
	})

	t.Run("is a no-op once issued", func(t *testing.T) {
		f, id := completedWithFailedCertificate(t)
		f.issuer.err = nil
		_, err := f.svc.RetryCertificate(f.ctx(), id)
		require.NoError(t, err)
		probes := f.issuer.probes

		v, err := f.svc.RetryCertificate(f.ctx(), id)

		require.NoError(t, err)
		assert.Equal(t, models.CertificateIssued, v.CertificateStatus)
		assert.Equal(t, probes, f.issuer.probes)
	})

	t.Run("refuses a verification that is not completed", func(t *testing.T) {
		f := newFixture(t)
		donorID := f.addRegisteredDonor(t, "Asha Rao")
		started := f.start(t, donorID)

		_, err := f.svc.RetryCertificate(f.ctx(), started.Verification.ID)

		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidState))
	})
}

func TestService_Get(t *testing.T) {
	t.Run("returns the verification with donor and camp detail", func(t *testing.T) {
		f := newFixture(t)
		donorID := f.addRegisteredDonor(t, "Asha Rao")
		started := f.start(t, donorID)

		detail, err := f.svc.Get(f.ctx(), started.Verification.ID)

		require.NoError(t, err)
		assert.Equal(t, "Asha Rao", detail.DonorName)
		assert.Equal(t, "City Drive", detail.CampName)
		assert.Equal(t, domain.BloodTypeAPos, detail.BloodType)
		assert.Equal(t, f.verifierID, detail.VerifierID)
	})

	t.Run("unknown id", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.Get(f.ctx(), domain.NewVerificationID())
		assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}
