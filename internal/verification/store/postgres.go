package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"

	"hemocamp/internal/verification/models"
	"hemocamp/pkg/domain"
	"hemocamp/pkg/platform/sentinel"
	txcontext "hemocamp/pkg/platform/tx"
)

// Postgres persists verifications. The clinical payloads live in JSONB
// columns; the blood-bag number and complications are projected into
// dedicated columns so the partial unique index uq_verifications_blood_bag
// can enforce global bag uniqueness.
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

const verColumns = `id, donation_id, donor_id, camp_id, verifier_id, status,
	medical_checks, health_screening, donation_details, post_donation_care,
	complications, blood_bag_number, rejection_reason,
	certificate_status, certificate_url, completed_at, created_at, updated_at`

func (s *Postgres) Create(ctx context.Context, v *models.Verification) error {
	row, err := newVerificationRow(v)
	if err != nil {
		return err
	}
	_, err = s.q(ctx).ExecContext(ctx, `
		INSERT INTO verifications (`+verColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`,
		row.args()...,
	)
	if isUniqueViolation(err) {
		return sentinel.ErrConflict
	}
	if err != nil {
		return fmt.Errorf("insert verification: %w", err)
	}
	return nil
}

func (s *Postgres) Update(ctx context.Context, v *models.Verification) error {
	row, err := newVerificationRow(v)
	if err != nil {
		return err
	}
	res, err := s.q(ctx).ExecContext(ctx, `
		UPDATE verifications
		SET status = $2, medical_checks = $3, health_screening = $4,
			donation_details = $5, post_donation_care = $6, complications = $7,
			blood_bag_number = $8, rejection_reason = $9,
			certificate_status = $10, certificate_url = $11,
			completed_at = $12, updated_at = $13
		WHERE id = $1`,
		row.id, row.status, row.medical, row.screening, row.details, row.care,
		row.complications, row.bloodBag, row.rejectionReason,
		row.certStatus, row.certURL, row.completedAt, row.updatedAt,
	)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" && pgErr.ConstraintName == "uq_verifications_blood_bag" {
		return sentinel.ErrAlreadyUsed
	}
	if err != nil {
		return fmt.Errorf("update verification: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update verification: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *Postgres) FindByID(ctx context.Context, id domain.VerificationID) (*models.Verification, error) {
	row := s.q(ctx).QueryRowContext(ctx,
		`SELECT `+verColumns+` FROM verifications WHERE id = $1`, uuid.UUID(id))
	return scanVerification(row)
}

// FindByIDForUpdate locks the verification row for the duration of the
// surrounding transaction, so concurrent stage transitions serialize instead
// of both reading the same pre-transition status.
func (s *Postgres) FindByIDForUpdate(ctx context.Context, id domain.VerificationID) (*models.Verification, error) {
	row := s.q(ctx).QueryRowContext(ctx,
		`SELECT `+verColumns+` FROM verifications WHERE id = $1 FOR UPDATE`, uuid.UUID(id))
	return scanVerification(row)
}

func (s *Postgres) FindByDonationID(ctx context.Context, donationID domain.DonationID) (*models.Verification, error) {
	row := s.q(ctx).QueryRowContext(ctx,
		`SELECT `+verColumns+` FROM verifications WHERE donation_id = $1`, uuid.UUID(donationID))
	return scanVerification(row)
}

// verificationRow is the column-shaped view of a verification.
type verificationRow struct {
	id, donationID, donorID, campID, verifierID uuid.UUID
	status                                      string
	medical, screening                          []byte
	details, care                               []byte
	complications                               pq.StringArray
	bloodBag                                    sql.NullString
	rejectionReason                             string
	certStatus, certURL                         string
	completedAt                                 sql.NullTime
	createdAt, updatedAt                        time.Time
}

func newVerificationRow(v *models.Verification) (*verificationRow, error) {
	medical, err := json.Marshal(v.MedicalChecks)
	if err != nil {
		return nil, fmt.Errorf("marshal medical checks: %w", err)
	}
	screening, err := json.Marshal(v.HealthScreening)
	if err != nil {
		return nil, fmt.Errorf("marshal health screening: %w", err)
	}
	row := &verificationRow{
		id:              uuid.UUID(v.ID),
		donationID:      uuid.UUID(v.DonationID),
		donorID:         uuid.UUID(v.DonorID),
		campID:          uuid.UUID(v.CampID),
		verifierID:      uuid.UUID(v.VerifierID),
		status:          string(v.Status),
		medical:         medical,
		screening:       screening,
		complications:   pq.StringArray{},
		rejectionReason: v.RejectionReason,
		certStatus:      string(v.CertificateStatus),
		certURL:         v.CertificateURL,
		createdAt:       v.CreatedAt,
		updatedAt:       v.UpdatedAt,
	}
	if v.DonationDetails != nil {
		// Bag number and complications live in their own columns; the JSONB
		// payload carries the rest.
		details := *v.DonationDetails
		details.Complications = nil
		raw, err := json.Marshal(details)
		if err != nil {
			return nil, fmt.Errorf("marshal donation details: %w", err)
		}
		row.details = raw
		row.complications = pq.StringArray(v.DonationDetails.Complications)
		if details.BloodBagNumber != "" {
			row.bloodBag = sql.NullString{String: details.BloodBagNumber, Valid: true}
		}
	}
	if v.PostDonationCare != nil {
		raw, err := json.Marshal(v.PostDonationCare)
		if err != nil {
			return nil, fmt.Errorf("marshal post-donation care: %w", err)
		}
		row.care = raw
	}
	if v.CompletedAt != nil {
		row.completedAt = sql.NullTime{Time: *v.CompletedAt, Valid: true}
	}
	return row, nil
}

func (r *verificationRow) args() []any {
	return []any{
		r.id, r.donationID, r.donorID, r.campID, r.verifierID, r.status,
		r.medical, r.screening, nullBytes(r.details), nullBytes(r.care),
		r.complications, r.bloodBag, r.rejectionReason,
		r.certStatus, r.certURL, r.completedAt, r.createdAt, r.updatedAt,
	}
}

func scanVerification(row *sql.Row) (*models.Verification, error) {
	var r verificationRow
	err := row.Scan(&r.id, &r.donationID, &r.donorID, &r.campID, &r.verifierID,
		&r.status, &r.medical, &r.screening, &r.details, &r.care,
		&r.complications, &r.bloodBag, &r.rejectionReason,
		&r.certStatus, &r.certURL, &r.completedAt, &r.createdAt, &r.updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan verification: %w", err)
	}

	v := models.Verification{
		ID:                domain.VerificationID(r.id),
		DonationID:        domain.DonationID(r.donationID),
		DonorID:           domain.DonorID(r.donorID),
		CampID:            domain.CampID(r.campID),
		VerifierID:        domain.StaffID(r.verifierID),
		Status:            models.VerificationStatus(r.status),
		RejectionReason:   r.rejectionReason,
		CertificateStatus: models.CertificateStatus(r.certStatus),
		CertificateURL:    r.certURL,
		CreatedAt:         r.createdAt,
		UpdatedAt:         r.updatedAt,
	}
	if err := json.Unmarshal(r.medical, &v.MedicalChecks); err != nil {
		return nil, fmt.Errorf("unmarshal medical checks: %w", err)
	}
	if err := json.Unmarshal(r.screening, &v.HealthScreening); err != nil {
		return nil, fmt.Errorf("unmarshal health screening: %w", err)
	}
	if len(r.details) > 0 {
		var details models.DonationDetails
		if err := json.Unmarshal(r.details, &details); err != nil {
			return nil, fmt.Errorf("unmarshal donation details: %w", err)
		}
		details.Complications = []string(r.complications)
		if len(details.Complications) == 0 {
			details.Complications = nil
		}
		if r.bloodBag.Valid {
			details.BloodBagNumber = r.bloodBag.String
		}
		v.DonationDetails = &details
	}
	if len(r.care) > 0 {
		var care models.PostDonationCare
		if err := json.Unmarshal(r.care, &care); err != nil {
			return nil, fmt.Errorf("unmarshal post-donation care: %w", err)
		}
		v.PostDonationCare = &care
	}
	if r.completedAt.Valid {
		v.CompletedAt = &r.completedAt.Time
	}
	return &v, nil
}

func nullBytes(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return b
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
