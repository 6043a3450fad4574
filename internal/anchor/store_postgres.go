package anchor

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"pharmaops/pkg/domain"
	"pharmaops/pkg/platform/sentinel"
	txcontext "pharmaops/pkg/platform/tx"
)

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func execer(ctx context.Context, db *sql.DB) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return db
}

// PostgresOutboxStore persists anchor intents in anchor_outbox.
type PostgresOutboxStore struct {
	db *sql.DB
}

func NewPostgresOutboxStore(db *sql.DB) *PostgresOutboxStore {
	return &PostgresOutboxStore{db: db}
}

func (s *PostgresOutboxStore) Enqueue(ctx context.Context, intent Intent) error {
	_, err := execer(ctx, s.db).ExecContext(ctx, `
		INSERT INTO anchor_outbox (id, kind, document_id, shipment_id, payload_hash, version, event_type, attempts, next_attempt, done, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`,
		intent.ID,
		string(intent.Kind),
		(*uuid.UUID)(intent.DocumentID),
		(*uuid.UUID)(intent.ShipmentID),
		intent.PayloadHash,
		intent.Version,
		intent.EventType,
		intent.Attempts,
		intent.NextAttempt,
		intent.Done,
		intent.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("enqueue anchor intent: %w", err)
	}
	return nil
}

func (s *PostgresOutboxStore) Due(ctx context.Context, now time.Time, limit int) ([]Intent, error) {
	rows, err := execer(ctx, s.db).QueryContext(ctx, `
		SELECT id, kind, document_id, shipment_id, payload_hash, version, event_type, attempts, next_attempt, done, created_at
		FROM anchor_outbox
		WHERE NOT done AND next_attempt <= $1
		ORDER BY next_attempt
		LIMIT $2
	`, now, limit)
	if err != nil {
		return nil, fmt.Errorf("list due anchor intents: %w", err)
	}
	defer rows.Close()

	var out []Intent
	for rows.Next() {
		var (
			intent     Intent
			kind       string
			documentID *uuid.UUID
			shipmentID *uuid.UUID
		)
		if err := rows.Scan(
			&intent.ID, &kind, &documentID, &shipmentID,
			&intent.PayloadHash, &intent.Version, &intent.EventType,
			&intent.Attempts, &intent.NextAttempt, &intent.Done, &intent.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan anchor intent: %w", err)
		}
		intent.Kind = Kind(kind)
		intent.DocumentID = (*domain.DocumentID)(documentID)
		intent.ShipmentID = (*domain.ShipmentID)(shipmentID)
		out = append(out, intent)
	}
	return out, rows.Err()
}

func (s *PostgresOutboxStore) MarkDone(ctx context.Context, id uuid.UUID) error {
	return s.exec(ctx, `UPDATE anchor_outbox SET done = TRUE WHERE id = $1`, id)
}

func (s *PostgresOutboxStore) Reschedule(ctx context.Context, id uuid.UUID, attempts int, next time.Time) error {
	return s.exec(ctx, `UPDATE anchor_outbox SET attempts = $2, next_attempt = $3 WHERE id = $1`, id, attempts, next)
}

func (s *PostgresOutboxStore) exec(ctx context.Context, query string, args ...any) error {
	res, err := execer(ctx, s.db).ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update anchor intent: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update anchor intent: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

// PostgresStore persists confirmed anchors in blockchain_anchors.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Save(ctx context.Context, a Anchor) error {
	_, err := execer(ctx, s.db).ExecContext(ctx, `
		INSERT INTO blockchain_anchors (id, document_id, tx_hash, network, anchored_at)
		VALUES ($1, $2, $3, $4, $5)
	`, uuid.UUID(a.ID), uuid.UUID(a.DocumentID), a.TxHash, a.Network, a.AnchoredAt)
	if err != nil {
		return fmt.Errorf("insert anchor: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListByDocuments(ctx context.Context, documentIDs []domain.DocumentID) ([]Anchor, error) {
	if len(documentIDs) == 0 {
		return nil, nil
	}
	raw := make([]uuid.UUID, len(documentIDs))
	for i, id := range documentIDs {
		raw[i] = uuid.UUID(id)
	}

	rows, err := execer(ctx, s.db).QueryContext(ctx, `
		SELECT id, document_id, tx_hash, network, anchored_at
		FROM blockchain_anchors
		WHERE document_id = ANY($1)
		ORDER BY anchored_at
	`, pq.Array(raw))
	if err != nil {
		return nil, fmt.Errorf("list anchors: %w", err)
	}
	defer rows.Close()

	var out []Anchor
	for rows.Next() {
		var (
			a          Anchor
			id         uuid.UUID
			documentID uuid.UUID
		)
		if err := rows.Scan(&id, &documentID, &a.TxHash, &a.Network, &a.AnchoredAt); err != nil {
			return nil, fmt.Errorf("scan anchor: %w", err)
		}
		a.ID = domain.AnchorID(id)
		a.DocumentID = domain.DocumentID(documentID)
		out = append(out, a)
	}
	return out, rows.Err()
}
