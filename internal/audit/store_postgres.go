package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"pharmaops/pkg/domain"
	txcontext "pharmaops/pkg/platform/tx"
)

// PostgresStore persists audit entries in the audit_trail table. Appends join
// the transaction carried in ctx so entries and state changes are never
// observed out of step.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func (s *PostgresStore) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

func (s *PostgresStore) Append(ctx context.Context, entry Entry) error {
	var details []byte
	if entry.Details != nil {
		var err error
		details, err = json.Marshal(entry.Details)
		if err != nil {
			return fmt.Errorf("marshal audit details: %w", err)
		}
	}

	var actorID *uuid.UUID
	if entry.ActorID != nil {
		uid := uuid.UUID(*entry.ActorID)
		actorID = &uid
	}

	query := `
		INSERT INTO audit_trail (id, action, performed_by, details, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := s.execer(ctx).ExecContext(ctx, query,
		uuid.UUID(entry.ID),
		string(entry.Action),
		actorID,
		details,
		entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

func (s *PostgresStore) Query(ctx context.Context, filter Filter) ([]Entry, error) {
	query := `
		SELECT id, action, performed_by, details, created_at
		FROM audit_trail
		WHERE ($1::uuid IS NULL OR performed_by = $1)
		  AND ($2::text = '' OR action = $2)
		  AND ($3::timestamptz IS NULL OR created_at >= $3)
		  AND ($4::timestamptz IS NULL OR created_at <= $4)
		ORDER BY created_at DESC
		LIMIT $5
	`

	var actorID *uuid.UUID
	if filter.ActorID != nil {
		uid := uuid.UUID(*filter.ActorID)
		actorID = &uid
	}
	var from, to *sql.NullTime
	if !filter.From.IsZero() {
		from = &sql.NullTime{Time: filter.From, Valid: true}
	}
	if !filter.To.IsZero() {
		to = &sql.NullTime{Time: filter.To, Valid: true}
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = 500
	}

	rows, err := s.execer(ctx).QueryContext(ctx, query, actorID, string(filter.Action), from, to, limit)
	if err != nil {
		return nil, fmt.Errorf("query audit trail: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			id      uuid.UUID
			action  string
			actor   *uuid.UUID
			details []byte
			entry   Entry
		)
		if err := rows.Scan(&id, &action, &actor, &details, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		entry.ID = domain.EntryID(id)
		entry.Action = Action(action)
		if actor != nil {
			uid := domain.UserID(*actor)
			entry.ActorID = &uid
		}
		if len(details) > 0 {
			if err := json.Unmarshal(details, &entry.Details); err != nil {
				return nil, fmt.Errorf("unmarshal audit details: %w", err)
			}
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
