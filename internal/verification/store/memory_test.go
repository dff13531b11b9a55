package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hemocamp/internal/verification/models"
	"hemocamp/pkg/domain"
	"hemocamp/pkg/platform/sentinel"
)

var storeTime = time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

func newVerification() *models.Verification {
	return models.NewVerification(
		domain.NewVerificationID(), domain.NewDonationID(), domain.NewDonorID(),
		domain.NewCampID(), domain.NewStaffID(), storeTime,
	)
}

func TestInMemory_BagUniqueness(t *testing.T) {
	t.Run("rejects a bag number already held by another verification", func(t *testing.T) {
		s := NewInMemory()

		first := newVerification()
		require.NoError(t, s.Create(context.Background(), first))
		first.DonationDetails = &models.DonationDetails{BloodBagNumber: "BB-001", StartedAt: storeTime}
		require.NoError(t, s.Update(context.Background(), first))

		second := newVerification()
		require.NoError(t, s.Create(context.Background(), second))
		second.DonationDetails = &models.DonationDetails{BloodBagNumber: "BB-001", StartedAt: storeTime}

		err := s.Update(context.Background(), second)

		assert.ErrorIs(t, err, sentinel.ErrAlreadyUsed)
	})

	t.Run("re-writing a record with its own bag number is fine", func(t *testing.T) {
		s := NewInMemory()

		v := newVerification()
		require.NoError(t, s.Create(context.Background(), v))
		v.DonationDetails = &models.DonationDetails{BloodBagNumber: "BB-001", StartedAt: storeTime}
		require.NoError(t, s.Update(context.Background(), v))

		v.Status = models.StatusApproved
		assert.NoError(t, s.Update(context.Background(), v))
	})
}

func TestInMemory_CloneIsolation(t *testing.T) {
	t.Run("mutating a returned record does not leak into the store", func(t *testing.T) {
		s := NewInMemory()

		v := newVerification()
		v.DonationDetails = &models.DonationDetails{
			BloodBagNumber: "BB-002",
			StartedAt:      storeTime,
			Complications:  []string{"dizziness"},
		}
		require.NoError(t, s.Create(context.Background(), v))

		loaded, err := s.FindByID(context.Background(), v.ID)
		require.NoError(t, err)
		loaded.DonationDetails.Complications[0] = "mutated"
		loaded.DonationDetails.BloodBagNumber = "BB-999"

		fresh, err := s.FindByID(context.Background(), v.ID)
		require.NoError(t, err)
		assert.Equal(t, "dizziness", fresh.DonationDetails.Complications[0])
		assert.Equal(t, "BB-002", fresh.DonationDetails.BloodBagNumber)
	})
}

func TestInMemory_FindByDonationID(t *testing.T) {
	t.Run("finds the paired verification", func(t *testing.T) {
		s := NewInMemory()
		v := newVerification()
		require.NoError(t, s.Create(context.Background(), v))

		found, err := s.FindByDonationID(context.Background(), v.DonationID)

		require.NoError(t, err)
		assert.Equal(t, v.ID, found.ID)
	})

	t.Run("reports not found for an unpaired donation", func(t *testing.T) {
		s := NewInMemory()

		_, err := s.FindByDonationID(context.Background(), domain.NewDonationID())

		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})
}
