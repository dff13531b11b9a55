package notification

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	txcontext "hemocamp/pkg/platform/tx"
)

// PostgresStore persists notifications.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func (s *PostgresStore) q(ctx context.Context) execer {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

func (s *PostgresStore) Append(ctx context.Context, n Notification) error {
	var related any
	if n.RelatedID != uuid.Nil {
		related = n.RelatedID
	}
	_, err := s.q(ctx).ExecContext(ctx, `
		INSERT INTO notifications (id, recipient_id, kind, title, message, related_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		n.ID, n.RecipientID, string(n.Kind), n.Title, n.Message, related, n.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListByRecipient(ctx context.Context, recipientID uuid.UUID) ([]Notification, error) {
	rows, err := s.q(ctx).QueryContext(ctx, `
		SELECT id, recipient_id, kind, title, message, related_id, created_at
		FROM notifications WHERE recipient_id = $1
		ORDER BY created_at DESC`,
		recipientID,
	)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	var out []Notification
	for rows.Next() {
		var (
			n       Notification
			kind    string
			related uuid.NullUUID
		)
		if err := rows.Scan(&n.ID, &n.RecipientID, &kind, &n.Title, &n.Message, &related, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		n.Kind = Kind(kind)
		if related.Valid {
			n.RelatedID = related.UUID
		}
		out = append(out, n)
	}
	return out, rows.Err()
}
