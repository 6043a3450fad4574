package document

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

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

// PostgresStore persists documents.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const documentColumns = `id, title, doc_type, version, status, uploaded_by, approved_by, COALESCE(signature, ''), COALESCE(file_hash, ''), COALESCE(storage_ref, ''), created_at, updated_at`

func (s *PostgresStore) Save(ctx context.Context, doc Document) error {
	_, err := execer(ctx, s.db).ExecContext(ctx, `
		INSERT INTO documents (id, title, doc_type, version, status, uploaded_by, approved_by, signature, file_hash, storage_ref, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`,
		uuid.UUID(doc.ID),
		doc.Title,
		string(doc.DocType),
		doc.Version,
		string(doc.Status),
		uuid.UUID(doc.UploadedBy),
		(*uuid.UUID)(doc.ApprovedBy),
		nullable(doc.Signature),
		nullable(doc.FileHash),
		nullable(doc.StorageRef),
		doc.CreatedAt,
		doc.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert document: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, id domain.DocumentID) (Document, error) {
	row := execer(ctx, s.db).QueryRowContext(ctx,
		`SELECT `+documentColumns+` FROM documents WHERE id = $1`, uuid.UUID(id))
	return scanDocument(row)
}

func (s *PostgresStore) GetForUpdate(ctx context.Context, id domain.DocumentID) (Document, error) {
	row := execer(ctx, s.db).QueryRowContext(ctx,
		`SELECT `+documentColumns+` FROM documents WHERE id = $1 FOR UPDATE`, uuid.UUID(id))
	return scanDocument(row)
}

func (s *PostgresStore) UpdateStatus(ctx context.Context, id domain.DocumentID, from, to Status) error {
	res, err := execer(ctx, s.db).ExecContext(ctx, `
		UPDATE documents SET status = $3, updated_at = now() WHERE id = $1 AND status = $2
	`, uuid.UUID(id), string(from), string(to))
	if err != nil {
		return fmt.Errorf("update document status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update document status: %w", err)
	}
	if affected == 0 {
		var exists bool
		if err := execer(ctx, s.db).QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM documents WHERE id = $1)`, uuid.UUID(id)).Scan(&exists); err != nil {
			return fmt.Errorf("update document status: %w", err)
		}
		if !exists {
			return sentinel.ErrNotFound
		}
		return sentinel.ErrConflict
	}
	return nil
}

func (s *PostgresStore) SetReview(ctx context.Context, id domain.DocumentID, approvedBy domain.UserID, signature string) error {
	res, err := execer(ctx, s.db).ExecContext(ctx, `
		UPDATE documents SET approved_by = $2, signature = $3, updated_at = now() WHERE id = $1
	`, uuid.UUID(id), uuid.UUID(approvedBy), signature)
	if err != nil {
		return fmt.Errorf("record document review: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("record document review: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) ListByStatus(ctx context.Context, status Status) ([]Document, error) {
	rows, err := execer(ctx, s.db).QueryContext(ctx,
		`SELECT `+documentColumns+` FROM documents WHERE status = $1 ORDER BY created_at`, string(status))
	if err != nil {
		return nil, fmt.Errorf("list documents by status: %w", err)
	}
	return collectDocuments(rows)
}

func (s *PostgresStore) ListByIDs(ctx context.Context, ids []domain.DocumentID) ([]Document, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	raw := make([]uuid.UUID, len(ids))
	for i, id := range ids {
		raw[i] = uuid.UUID(id)
	}
	rows, err := execer(ctx, s.db).QueryContext(ctx,
		`SELECT `+documentColumns+` FROM documents WHERE id = ANY($1) ORDER BY created_at`, pq.Array(raw))
	if err != nil {
		return nil, fmt.Errorf("list documents by ids: %w", err)
	}
	return collectDocuments(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row *sql.Row) (Document, error) {
	doc, err := scanDocumentFrom(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Document{}, sentinel.ErrNotFound
	}
	return doc, err
}

func scanDocumentFrom(r rowScanner) (Document, error) {
	var (
		doc        Document
		id         uuid.UUID
		docType    string
		status     string
		uploadedBy uuid.UUID
		approvedBy *uuid.UUID
	)
	if err := r.Scan(
		&id, &doc.Title, &docType, &doc.Version, &status,
		&uploadedBy, &approvedBy, &doc.Signature, &doc.FileHash, &doc.StorageRef,
		&doc.CreatedAt, &doc.UpdatedAt,
	); err != nil {
		return Document{}, err
	}
	doc.ID = domain.DocumentID(id)
	doc.DocType = Type(docType)
	doc.Status = Status(status)
	doc.UploadedBy = domain.UserID(uploadedBy)
	doc.ApprovedBy = (*domain.UserID)(approvedBy)
	return doc, nil
}

func collectDocuments(rows *sql.Rows) ([]Document, error) {
	defer rows.Close()
	var out []Document
	for rows.Next() {
		doc, err := scanDocumentFrom(rows)
		if err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		out = append(out, doc)
	}
	return out, rows.Err()
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
