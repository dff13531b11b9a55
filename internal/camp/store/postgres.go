package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"hemocamp/internal/camp/models"
	"hemocamp/pkg/domain"
	"hemocamp/pkg/platform/sentinel"
	txcontext "hemocamp/pkg/platform/tx"
)

// Postgres persists camps and the camp_donors actual-donor set.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *Postgres) q(ctx context.Context) querier {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

const campColumns = "id, name, location, starts_at, ends_at, capacity, status, organizer_id, created_at, updated_at"

func (s *Postgres) Create(ctx context.Context, camp *models.Camp) error {
	_, err := s.q(ctx).ExecContext(ctx, `
		INSERT INTO camps (`+campColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		uuid.UUID(camp.ID), camp.Name, camp.Location, camp.StartsAt, camp.EndsAt,
		camp.Capacity, string(camp.Status), uuid.UUID(camp.OrganizerID),
		camp.CreatedAt, camp.UpdatedAt,
	)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return sentinel.ErrConflict
	}
	if err != nil {
		return fmt.Errorf("insert camp: %w", err)
	}
	return nil
}

func (s *Postgres) FindByID(ctx context.Context, id domain.CampID) (*models.Camp, error) {
	row := s.q(ctx).QueryRowContext(ctx,
		`SELECT `+campColumns+` FROM camps WHERE id = $1`, uuid.UUID(id))
	return scanCamp(row)
}

// FindByIDForUpdate locks the camp row for the duration of the surrounding
// transaction. The registration gate uses it so the capacity check and the
// ledger insert see a stable camp.
func (s *Postgres) FindByIDForUpdate(ctx context.Context, id domain.CampID) (*models.Camp, error) {
	row := s.q(ctx).QueryRowContext(ctx,
		`SELECT `+campColumns+` FROM camps WHERE id = $1 FOR UPDATE`, uuid.UUID(id))
	return scanCamp(row)
}

// Execute runs validate-then-mutate against a row-locked camp in one
// transaction, mirroring the in-memory store's semantics.
func (s *Postgres) Execute(ctx context.Context, id domain.CampID, validate func(*models.Camp) error, mutate func(*models.Camp)) (*models.Camp, error) {
	var result *models.Camp
	run := func(ctx context.Context) error {
		camp, err := s.FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := validate(camp); err != nil {
			return err
		}
		mutate(camp)
		_, err = s.q(ctx).ExecContext(ctx, `
			UPDATE camps SET status = $2, updated_at = $3 WHERE id = $1`,
			uuid.UUID(camp.ID), string(camp.Status), camp.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("update camp: %w", err)
		}
		result = camp
		return nil
	}

	// Reuse an ambient transaction when the caller provides one.
	if _, ok := txcontext.From(ctx); ok {
		if err := run(ctx); err != nil {
			return nil, err
		}
		return result, nil
	}
	if err := txcontext.NewSQLRunner(s.db).RunInTx(ctx, run); err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Postgres) ListByStatus(ctx context.Context, status models.CampStatus) ([]*models.Camp, error) {
	rows, err := s.q(ctx).QueryContext(ctx,
		`SELECT `+campColumns+` FROM camps WHERE status = $1 ORDER BY starts_at`, string(status))
	if err != nil {
		return nil, fmt.Errorf("list camps: %w", err)
	}
	defer rows.Close()

	var camps []*models.Camp
	for rows.Next() {
		camp, err := scanCamp(rows)
		if err != nil {
			return nil, err
		}
		camps = append(camps, camp)
	}
	return camps, rows.Err()
}

// AddActualDonor inserts into the actual-donor set. ON CONFLICT DO NOTHING
// gives the idempotent set semantics double-completion protection relies on.
func (s *Postgres) AddActualDonor(ctx context.Context, campID domain.CampID, donorID domain.DonorID, at time.Time) (bool, error) {
	res, err := s.q(ctx).ExecContext(ctx, `
		INSERT INTO camp_donors (camp_id, donor_id, donated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (camp_id, donor_id) DO NOTHING`,
		uuid.UUID(campID), uuid.UUID(donorID), at,
	)
	if err != nil {
		return false, fmt.Errorf("insert camp donor: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert camp donor: %w", err)
	}
	return affected > 0, nil
}

func (s *Postgres) CountActualDonors(ctx context.Context, campID domain.CampID) (int, error) {
	var count int
	err := s.q(ctx).QueryRowContext(ctx,
		`SELECT COUNT(*) FROM camp_donors WHERE camp_id = $1`, uuid.UUID(campID)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count camp donors: %w", err)
	}
	return count, nil
}

func (s *Postgres) IsActualDonor(ctx context.Context, campID domain.CampID, donorID domain.DonorID) (bool, error) {
	var exists bool
	err := s.q(ctx).QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM camp_donors WHERE camp_id = $1 AND donor_id = $2)`,
		uuid.UUID(campID), uuid.UUID(donorID)).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check camp donor: %w", err)
	}
	return exists, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCamp(row rowScanner) (*models.Camp, error) {
	var (
		camp        models.Camp
		rawID       uuid.UUID
		rawStatus   string
		rawOrganizr uuid.UUID
	)
	err := row.Scan(&rawID, &camp.Name, &camp.Location, &camp.StartsAt, &camp.EndsAt,
		&camp.Capacity, &rawStatus, &rawOrganizr, &camp.CreatedAt, &camp.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan camp: %w", err)
	}
	camp.ID = domain.CampID(rawID)
	camp.Status = models.CampStatus(rawStatus)
	camp.OrganizerID = domain.StaffID(rawOrganizr)
	return &camp, nil
}
