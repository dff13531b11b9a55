package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "hemocamp/pkg/domain"
	domainerrors "hemocamp/pkg/domain-errors"
)

var baseTime = time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

func ptr[T any](v T) *T { return &v }

func pendingVerification() Verification {
	return *NewVerification(
		id.NewVerificationID(),
		id.NewDonationID(),
		id.NewDonorID(),
		id.NewCampID(),
		id.NewStaffID(),
		baseTime,
	)
}

func effectKinds(effects []Effect) []EffectKind {
	kinds := make([]EffectKind, 0, len(effects))
	for _, e := range effects {
		kinds = append(kinds, e.Kind)
	}
	return kinds
}

func TestApplyMedicalChecks(t *testing.T) {
	rule := BaselineRule{}

	t.Run("merges vitals and stays pending when eligible", func(t *testing.T) {
		v := pendingVerification()

		next, effects, err := ApplyMedicalChecks(v, MedicalChecks{HemoglobinGDL: ptr(14.0)}, rule, baseTime)

		require.NoError(t, err)
		assert.Equal(t, StatusPending, next.Status)
		assert.Empty(t, effects)
		require.NotNil(t, next.MedicalChecks.HemoglobinGDL)
		assert.Equal(t, 14.0, *next.MedicalChecks.HemoglobinGDL)
	})

	t.Run("keeps earlier readings on partial update", func(t *testing.T) {
		v := pendingVerification()
		v, _, err := ApplyMedicalChecks(v, MedicalChecks{HemoglobinGDL: ptr(14.0)}, rule, baseTime)
		require.NoError(t, err)

		next, _, err := ApplyMedicalChecks(v, MedicalChecks{PulseBPM: ptr(72)}, rule, baseTime)

		require.NoError(t, err)
		require.NotNil(t, next.MedicalChecks.HemoglobinGDL)
		assert.Equal(t, 14.0, *next.MedicalChecks.HemoglobinGDL)
		require.NotNil(t, next.MedicalChecks.PulseBPM)
		assert.Equal(t, 72, *next.MedicalChecks.PulseBPM)
	})

	t.Run("rejects on a disqualifying value and cancels the donation", func(t *testing.T) {
		v := pendingVerification()

		next, effects, err := ApplyMedicalChecks(v, MedicalChecks{HemoglobinGDL: ptr(11.0)}, rule, baseTime)

		require.NoError(t, err)
		assert.Equal(t, StatusRejected, next.Status)
		assert.Contains(t, next.RejectionReason, "hemoglobin")
		assert.Equal(t, []EffectKind{EffectCancelDonation, EffectQueueRejectionNotice}, effectKinds(effects))
		assert.Equal(t, next.RejectionReason, effects[0].Reason)
	})

	t.Run("a later partial update can reject a previously passing verification", func(t *testing.T) {
		v := pendingVerification()
		v, _, err := ApplyMedicalChecks(v, MedicalChecks{HemoglobinGDL: ptr(14.0)}, rule, baseTime)
		require.NoError(t, err)

		next, effects, err := ApplyMedicalChecks(v, MedicalChecks{WeightKG: ptr(45.0)}, rule, baseTime)

		require.NoError(t, err)
		assert.Equal(t, StatusRejected, next.Status)
		assert.Contains(t, next.RejectionReason, "weight")
		assert.NotEmpty(t, effects)
	})

	t.Run("a repeated identical submission after rejection returns the rejected state", func(t *testing.T) {
		v := pendingVerification()
		v, _, err := ApplyMedicalChecks(v, MedicalChecks{HemoglobinGDL: ptr(11.0)}, rule, baseTime)
		require.NoError(t, err)

		next, effects, err := ApplyMedicalChecks(v, MedicalChecks{HemoglobinGDL: ptr(11.0)}, rule, baseTime.Add(time.Minute))

		require.NoError(t, err)
		assert.Empty(t, effects)
		assert.Equal(t, v, next)
	})

	t.Run("a rejection is not reversible by a passing value", func(t *testing.T) {
		v := pendingVerification()
		v, _, err := ApplyMedicalChecks(v, MedicalChecks{HemoglobinGDL: ptr(11.0)}, rule, baseTime)
		require.NoError(t, err)

		next, effects, err := ApplyMedicalChecks(v, MedicalChecks{HemoglobinGDL: ptr(14.0)}, rule, baseTime)

		require.NoError(t, err)
		assert.Empty(t, effects)
		assert.Equal(t, StatusRejected, next.Status)
		require.NotNil(t, next.MedicalChecks.HemoglobinGDL)
		assert.Equal(t, 11.0, *next.MedicalChecks.HemoglobinGDL)
	})
}

func TestApplyHealthScreening(t *testing.T) {
	rule := BaselineRule{}

	t.Run("stays pending on clean answers", func(t *testing.T) {
		v := pendingVerification()

		next, effects, err := ApplyHealthScreening(v, HealthScreening{RecentIllness: ptr(false)}, rule, baseTime)

		require.NoError(t, err)
		assert.Equal(t, StatusPending, next.Status)
		assert.Empty(t, effects)
	})

	t.Run("rejects on a disqualifying answer", func(t *testing.T) {
		v := pendingVerification()

		next, effects, err := ApplyHealthScreening(v, HealthScreening{RecentSurgery: ptr(true)}, rule, baseTime)

		require.NoError(t, err)
		assert.Equal(t, StatusRejected, next.Status)
		assert.Contains(t, next.RejectionReason, "surgery")
		assert.Equal(t, []EffectKind{EffectCancelDonation, EffectQueueRejectionNotice}, effectKinds(effects))
	})

	t.Run("a repeated submission after rejection returns the rejected state", func(t *testing.T) {
		v := pendingVerification()
		v, _, err := ApplyHealthScreening(v, HealthScreening{RecentSurgery: ptr(true)}, rule, baseTime)
		require.NoError(t, err)

		next, effects, err := ApplyHealthScreening(v, HealthScreening{RecentSurgery: ptr(true)}, rule, baseTime)

		require.NoError(t, err)
		assert.Empty(t, effects)
		assert.Equal(t, v, next)
	})

	t.Run("judges the merged payloads across both stages", func(t *testing.T) {
		v := pendingVerification()
		v, _, err := ApplyHealthScreening(v, HealthScreening{RecentIllness: ptr(false)}, rule, baseTime)
		require.NoError(t, err)

		next, _, err := ApplyMedicalChecks(v, MedicalChecks{TemperatureC: ptr(38.2)}, rule, baseTime)

		require.NoError(t, err)
		assert.Equal(t, StatusRejected, next.Status)
	})
}

func TestApplyDonationDetails(t *testing.T) {
	t.Run("approves the verification and starts the donation", func(t *testing.T) {
		v := pendingVerification()

		next, effects, err := ApplyDonationDetails(v, "BB-001", baseTime)

		require.NoError(t, err)
		assert.Equal(t, StatusApproved, next.Status)
		require.NotNil(t, next.DonationDetails)
		assert.Equal(t, "BB-001", next.DonationDetails.BloodBagNumber)
		assert.Equal(t, baseTime, next.DonationDetails.StartedAt)
		require.Len(t, effects, 1)
		assert.Equal(t, EffectMarkDonationInProgress, effects[0].Kind)
		assert.Equal(t, "BB-001", effects[0].BloodBagNumber)
	})

	t.Run("requires a blood bag number", func(t *testing.T) {
		v := pendingVerification()

		_, _, err := ApplyDonationDetails(v, "", baseTime)

		assert.True(t, domainerrors.HasCode(err, domainerrors.CodeValidation))
	})

	t.Run("refuses a rejected verification", func(t *testing.T) {
		v := pendingVerification()
		v, _, err := ApplyMedicalChecks(v, MedicalChecks{WeightKG: ptr(40.0)}, BaselineRule{}, baseTime)
		require.NoError(t, err)

		_, _, err = ApplyDonationDetails(v, "BB-001", baseTime)

		assert.True(t, domainerrors.HasCode(err, domainerrors.CodeInvalidState))
		assert.Equal(t, "rejected", domainerrors.Detail(err, "status"))
	})

	t.Run("refuses an already approved verification", func(t *testing.T) {
		v := pendingVerification()
		v, _, err := ApplyDonationDetails(v, "BB-001", baseTime)
		require.NoError(t, err)

		_, _, err = ApplyDonationDetails(v, "BB-002", baseTime)

		assert.True(t, domainerrors.HasCode(err, domainerrors.CodeInvalidState))
	})
}

func TestApplyCompletion(t *testing.T) {
	approved := func(t *testing.T) Verification {
		t.Helper()
		v := pendingVerification()
		v, _, err := ApplyDonationDetails(v, "BB-001", baseTime)
		require.NoError(t, err)
		return v
	}

	t.Run("completes the verification with the full effect set", func(t *testing.T) {
		v := approved(t)
		completedAt := baseTime.Add(30 * time.Minute)

		next, effects, err := ApplyCompletion(v, PostDonationCare{RestMinutes: ptr(15)}, []string{"mild dizziness"}, completedAt)

		require.NoError(t, err)
		assert.Equal(t, StatusCompleted, next.Status)
		assert.Equal(t, CertificatePending, next.CertificateStatus)
		require.NotNil(t, next.CompletedAt)
		assert.Equal(t, completedAt, *next.CompletedAt)
		require.NotNil(t, next.DonationDetails.EndedAt)
		assert.Equal(t, completedAt, *next.DonationDetails.EndedAt)
		assert.Equal(t, []string{"mild dizziness"}, next.DonationDetails.Complications)
		assert.Equal(t, []EffectKind{
			EffectCompleteDonation,
			EffectAppendActualDonor,
			EffectUpdateDonorLastDonation,
			EffectRequestCertificate,
			EffectQueueCompletionNotice,
		}, effectKinds(effects))
	})

	t.Run("is idempotent on an already completed verification", func(t *testing.T) {
		v := approved(t)
		completedAt := baseTime.Add(30 * time.Minute)
		v, _, err := ApplyCompletion(v, PostDonationCare{}, nil, completedAt)
		require.NoError(t, err)

		next, effects, err := ApplyCompletion(v, PostDonationCare{RestMinutes: ptr(99)}, []string{"other"}, completedAt.Add(time.Hour))

		require.NoError(t, err)
		assert.Empty(t, effects)
		assert.Equal(t, v, next)
	})

	t.Run("refuses a pending verification", func(t *testing.T) {
		v := pendingVerification()

		_, _, err := ApplyCompletion(v, PostDonationCare{}, nil, baseTime)

		assert.True(t, domainerrors.HasCode(err, domainerrors.CodeInvalidState))
	})

	t.Run("does not mutate the prior state's donation details", func(t *testing.T) {
		v := approved(t)

		_, _, err := ApplyCompletion(v, PostDonationCare{}, []string{"bruising"}, baseTime.Add(time.Hour))

		require.NoError(t, err)
		assert.Nil(t, v.DonationDetails.EndedAt)
		assert.Empty(t, v.DonationDetails.Complications)
	})
}

func TestVerificationStatus(t *testing.T) {
	assert.True(t, StatusPending.CanTransitionTo(StatusApproved))
	assert.True(t, StatusPending.CanTransitionTo(StatusRejected))
	assert.True(t, StatusApproved.CanTransitionTo(StatusCompleted))
	assert.False(t, StatusRejected.CanTransitionTo(StatusApproved))
	assert.False(t, StatusCompleted.CanTransitionTo(StatusPending))
	assert.True(t, StatusRejected.IsTerminal())
	assert.True(t, StatusCompleted.IsTerminal())
	assert.False(t, StatusPending.IsTerminal())
}
