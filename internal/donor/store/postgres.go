package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"hemocamp/internal/donor/models"
	"hemocamp/pkg/domain"
	"hemocamp/pkg/platform/sentinel"
	txcontext "hemocamp/pkg/platform/tx"
)

// Postgres persists donor profiles.
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

const uniqueViolation = "23505"

func (s *Postgres) Create(ctx context.Context, donor *models.Donor) error {
	_, err := s.q(ctx).ExecContext(ctx, `
		INSERT INTO donors (id, full_name, blood_type, last_donation_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		uuid.UUID(donor.ID), donor.FullName, string(donor.BloodType),
		nullTime(donor.LastDonationAt), donor.CreatedAt, donor.UpdatedAt,
	)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return sentinel.ErrConflict
	}
	if err != nil {
		return fmt.Errorf("insert donor: %w", err)
	}
	return nil
}

func (s *Postgres) FindByID(ctx context.Context, id domain.DonorID) (*models.Donor, error) {
	row := s.q(ctx).QueryRowContext(ctx, `
		SELECT id, full_name, blood_type, last_donation_at, created_at, updated_at
		FROM donors WHERE id = $1`,
		uuid.UUID(id),
	)
	var (
		donor        models.Donor
		rawID        uuid.UUID
		bloodType    string
		lastDonation sql.NullTime
	)
	err := row.Scan(&rawID, &donor.FullName, &bloodType, &lastDonation, &donor.CreatedAt, &donor.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select donor: %w", err)
	}
	donor.ID = domain.DonorID(rawID)
	donor.BloodType = domain.BloodType(bloodType)
	if lastDonation.Valid {
		donor.LastDonationAt = &lastDonation.Time
	}
	return &donor, nil
}

func (s *Postgres) SetLastDonation(ctx context.Context, id domain.DonorID, at time.Time) error {
	res, err := s.q(ctx).ExecContext(ctx, `
		UPDATE donors SET last_donation_at = $2, updated_at = $2 WHERE id = $1`,
		uuid.UUID(id), at,
	)
	if err != nil {
		return fmt.Errorf("update donor last donation: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update donor last donation: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
