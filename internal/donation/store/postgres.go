package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"hemocamp/internal/donation/models"
	"hemocamp/pkg/domain"
	"hemocamp/pkg/platform/sentinel"
	txcontext "hemocamp/pkg/platform/tx"
)

// Postgres persists donation records.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *Postgres) q(ctx context.Context) querier {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

func (s *Postgres) Create(ctx context.Context, donation *models.Donation) error {
	_, err := s.q(ctx).ExecContext(ctx, `
		INSERT INTO donations (id, donor_id, camp_id, blood_type, quantity_units,
			status, blood_bag_number, notes, completed_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		uuid.UUID(donation.ID), uuid.UUID(donation.DonorID), uuid.UUID(donation.CampID),
		string(donation.BloodType), donation.QuantityUnits, string(donation.Status),
		nullString(donation.BloodBagNumber), donation.Notes,
		nullTime(donation.CompletedAt), donation.CreatedAt, donation.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert donation: %w", err)
	}
	return nil
}

func (s *Postgres) Update(ctx context.Context, donation *models.Donation) error {
	res, err := s.q(ctx).ExecContext(ctx, `
		UPDATE donations
		SET status = $2, blood_bag_number = $3, notes = $4, completed_at = $5, updated_at = $6
		WHERE id = $1`,
		uuid.UUID(donation.ID), string(donation.Status),
		nullString(donation.BloodBagNumber), donation.Notes,
		nullTime(donation.CompletedAt), donation.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update donation: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update donation: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *Postgres) FindByID(ctx context.Context, id domain.DonationID) (*models.Donation, error) {
	row := s.q(ctx).QueryRowContext(ctx, `
		SELECT id, donor_id, camp_id, blood_type, quantity_units, status,
			blood_bag_number, notes, completed_at, created_at, updated_at
		FROM donations WHERE id = $1`,
		uuid.UUID(id))

	var (
		donation    models.Donation
		rawID       uuid.UUID
		rawDonor    uuid.UUID
		rawCamp     uuid.UUID
		rawBlood    string
		rawStatus   string
		bagNumber   sql.NullString
		completedAt sql.NullTime
	)
	err := row.Scan(&rawID, &rawDonor, &rawCamp, &rawBlood, &donation.QuantityUnits,
		&rawStatus, &bagNumber, &donation.Notes, &completedAt,
		&donation.CreatedAt, &donation.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan donation: %w", err)
	}
	donation.ID = domain.DonationID(rawID)
	donation.DonorID = domain.DonorID(rawDonor)
	donation.CampID = domain.CampID(rawCamp)
	donation.BloodType = domain.BloodType(rawBlood)
	donation.Status = models.DonationStatus(rawStatus)
	if bagNumber.Valid {
		donation.BloodBagNumber = bagNumber.String
	}
	if completedAt.Valid {
		donation.CompletedAt = &completedAt.Time
	}
	return &donation, nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
