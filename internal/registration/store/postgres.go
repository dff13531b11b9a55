package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"hemocamp/internal/registration/models"
	"hemocamp/pkg/domain"
	"hemocamp/pkg/platform/sentinel"
	txcontext "hemocamp/pkg/platform/tx"
)

// Postgres persists the registration ledger. The partial unique indexes
// uq_registrations_donor_camp and uq_registrations_single_active are the
// database-level backstop for the gate's precondition sequence.
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

const regColumns = "id, donor_id, camp_id, status, registered_at, donated_at, next_eligible_at, updated_at"

func (s *Postgres) Create(ctx context.Context, reg *models.Registration) error {
	_, err := s.q(ctx).ExecContext(ctx, `
		INSERT INTO registrations (`+regColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		uuid.UUID(reg.ID), uuid.UUID(reg.DonorID), uuid.UUID(reg.CampID),
		string(reg.Status), reg.RegisteredAt, nullTime(reg.DonatedAt),
		nullTime(reg.NextEligibleAt), reg.UpdatedAt,
	)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		switch pgErr.ConstraintName {
		case "uq_registrations_donor_camp":
			return sentinel.ErrAlreadyUsed
		case "uq_registrations_single_active":
			return sentinel.ErrConflict
		}
		return sentinel.ErrConflict
	}
	if err != nil {
		return fmt.Errorf("insert registration: %w", err)
	}
	return nil
}

func (s *Postgres) Update(ctx context.Context, reg *models.Registration) error {
	res, err := s.q(ctx).ExecContext(ctx, `
		UPDATE registrations
		SET status = $2, donated_at = $3, next_eligible_at = $4, updated_at = $5
		WHERE id = $1`,
		uuid.UUID(reg.ID), string(reg.Status), nullTime(reg.DonatedAt),
		nullTime(reg.NextEligibleAt), reg.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update registration: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update registration: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *Postgres) FindByID(ctx context.Context, id domain.RegistrationID) (*models.Registration, error) {
	row := s.q(ctx).QueryRowContext(ctx,
		`SELECT `+regColumns+` FROM registrations WHERE id = $1`, uuid.UUID(id))
	return scanRegistration(row)
}

func (s *Postgres) FindActiveByDonorAndCamp(ctx context.Context, donorID domain.DonorID, campID domain.CampID) (*models.Registration, error) {
	row := s.q(ctx).QueryRowContext(ctx, `
		SELECT `+regColumns+` FROM registrations
		WHERE donor_id = $1 AND camp_id = $2 AND status <> 'cancelled'`,
		uuid.UUID(donorID), uuid.UUID(campID))
	return scanRegistration(row)
}

// FindActiveByDonorAndCampForUpdate locks the ledger entry for the
// surrounding transaction. The verification pipeline uses it when consuming
// a registration, so two concurrent Starts cannot both observe the
// registered status.
func (s *Postgres) FindActiveByDonorAndCampForUpdate(ctx context.Context, donorID domain.DonorID, campID domain.CampID) (*models.Registration, error) {
	row := s.q(ctx).QueryRowContext(ctx, `
		SELECT `+regColumns+` FROM registrations
		WHERE donor_id = $1 AND camp_id = $2 AND status <> 'cancelled'
		FOR UPDATE`,
		uuid.UUID(donorID), uuid.UUID(campID))
	return scanRegistration(row)
}

func (s *Postgres) FindRegisteredByDonor(ctx context.Context, donorID domain.DonorID) (*models.Registration, error) {
	row := s.q(ctx).QueryRowContext(ctx, `
		SELECT `+regColumns+` FROM registrations
		WHERE donor_id = $1 AND status = 'registered'`,
		uuid.UUID(donorID))
	return scanRegistration(row)
}

func (s *Postgres) FindLatestDonatedByDonor(ctx context.Context, donorID domain.DonorID) (*models.Registration, error) {
	row := s.q(ctx).QueryRowContext(ctx, `
		SELECT `+regColumns+` FROM registrations
		WHERE donor_id = $1 AND status = 'donated'
		ORDER BY donated_at DESC LIMIT 1`,
		uuid.UUID(donorID))
	return scanRegistration(row)
}

func (s *Postgres) CountActiveByCamp(ctx context.Context, campID domain.CampID) (int, error) {
	var count int
	err := s.q(ctx).QueryRowContext(ctx, `
		SELECT COUNT(*) FROM registrations
		WHERE camp_id = $1 AND status <> 'cancelled'`,
		uuid.UUID(campID)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count registrations: %w", err)
	}
	return count, nil
}

func scanRegistration(row *sql.Row) (*models.Registration, error) {
	var (
		reg          models.Registration
		rawID        uuid.UUID
		rawDonor     uuid.UUID
		rawCamp      uuid.UUID
		rawStatus    string
		donatedAt    sql.NullTime
		nextEligible sql.NullTime
	)
	err := row.Scan(&rawID, &rawDonor, &rawCamp, &rawStatus, &reg.RegisteredAt,
		&donatedAt, &nextEligible, &reg.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan registration: %w", err)
	}
	reg.ID = domain.RegistrationID(rawID)
	reg.DonorID = domain.DonorID(rawDonor)
	reg.CampID = domain.CampID(rawCamp)
	reg.Status = models.RegistrationStatus(rawStatus)
	if donatedAt.Valid {
		reg.DonatedAt = &donatedAt.Time
	}
	if nextEligible.Valid {
		reg.NextEligibleAt = &nextEligible.Time
	}
	return &reg, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
