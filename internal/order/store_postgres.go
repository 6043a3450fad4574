package order

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

// PostgresStore persists orders.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const orderColumns = `id, company_id, created_by, status, created_at`

func (s *PostgresStore) Save(ctx context.Context, ord Order) error {
	_, err := execer(ctx, s.db).ExecContext(ctx, `
		INSERT INTO orders (id, company_id, created_by, status, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, uuid.UUID(ord.ID), uuid.UUID(ord.CompanyID), uuid.UUID(ord.CreatedBy), string(ord.Status), ord.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, id domain.OrderID) (Order, error) {
	row := execer(ctx, s.db).QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = $1`, uuid.UUID(id))
	return scanOrder(row)
}

func (s *PostgresStore) GetForUpdate(ctx context.Context, id domain.OrderID) (Order, error) {
	row := execer(ctx, s.db).QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = $1 FOR UPDATE`, uuid.UUID(id))
	return scanOrder(row)
}

func (s *PostgresStore) UpdateStatus(ctx context.Context, id domain.OrderID, from, to Status) error {
	res, err := execer(ctx, s.db).ExecContext(ctx, `
		UPDATE orders SET status = $3 WHERE id = $1 AND status = $2
	`, uuid.UUID(id), string(from), string(to))
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	if affected == 0 {
		// Either the order vanished or its status moved under us; both are
		// stale-precondition conflicts for the caller.
		var exists bool
		if err := execer(ctx, s.db).QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM orders WHERE id = $1)`, uuid.UUID(id)).Scan(&exists); err != nil {
			return fmt.Errorf("update order status: %w", err)
		}
		if !exists {
			return sentinel.ErrNotFound
		}
		return sentinel.ErrConflict
	}
	return nil
}

func (s *PostgresStore) ListByCompany(ctx context.Context, companyID domain.CompanyID) ([]Order, error) {
	rows, err := execer(ctx, s.db).QueryContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE company_id = $1 ORDER BY created_at`, uuid.UUID(companyID))
	if err != nil {
		return nil, fmt.Errorf("list orders by company: %w", err)
	}
	return collectOrders(rows)
}

func (s *PostgresStore) ListByStatus(ctx context.Context, status Status) ([]Order, error) {
	rows, err := execer(ctx, s.db).QueryContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE status = $1 ORDER BY created_at`, string(status))
	if err != nil {
		return nil, fmt.Errorf("list orders by status: %w", err)
	}
	return collectOrders(rows)
}

func (s *PostgresStore) CountByStatus(ctx context.Context, status Status) (int, error) {
	var count int
	err := execer(ctx, s.db).QueryRowContext(ctx,
		`SELECT COUNT(*) FROM orders WHERE status = $1`, string(status)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count orders by status: %w", err)
	}
	return count, nil
}

func scanOrder(row *sql.Row) (Order, error) {
	var (
		id        uuid.UUID
		companyID uuid.UUID
		createdBy uuid.UUID
		status    string
		ord       Order
	)
	if err := row.Scan(&id, &companyID, &createdBy, &status, &ord.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Order{}, sentinel.ErrNotFound
		}
		return Order{}, fmt.Errorf("scan order: %w", err)
	}
	ord.ID = domain.OrderID(id)
	ord.CompanyID = domain.CompanyID(companyID)
	ord.CreatedBy = domain.UserID(createdBy)
	ord.Status = Status(status)
	return ord, nil
}

func collectOrders(rows *sql.Rows) ([]Order, error) {
	defer rows.Close()
	var out []Order
	for rows.Next() {
		var (
			id        uuid.UUID
			companyID uuid.UUID
			createdBy uuid.UUID
			status    string
			ord       Order
		)
		if err := rows.Scan(&id, &companyID, &createdBy, &status, &ord.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		ord.ID = domain.OrderID(id)
		ord.CompanyID = domain.CompanyID(companyID)
		ord.CreatedBy = domain.UserID(createdBy)
		ord.Status = Status(status)
		out = append(out, ord)
	}
	return out, rows.Err()
}

// PostgresChecklistStore persists checklist lines. The unique constraint on
// (order_id, requirement_id) backs the generator's idempotence guarantee.
type PostgresChecklistStore struct {
	db *sql.DB
}

func NewPostgresChecklistStore(db *sql.DB) *PostgresChecklistStore {
	return &PostgresChecklistStore{db: db}
}

const lineColumns = `id, order_id, requirement_id, document_id, status, COALESCE(notes, '')`

func (s *PostgresChecklistStore) Insert(ctx context.Context, line ChecklistLine) error {
	_, err := execer(ctx, s.db).ExecContext(ctx, `
		INSERT INTO order_document_statuses (id, order_id, requirement_id, document_id, status, notes)
		VALUES ($1, $2, $3, $4, $5, $6)
	`,
		uuid.UUID(line.ID),
		uuid.UUID(line.OrderID),
		uuid.UUID(line.RequirementID),
		documentRef(line.DocumentID),
		string(line.Status),
		nullable(line.Notes),
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert checklist line: %w", err)
	}
	return nil
}

func (s *PostgresChecklistStore) Get(ctx context.Context, id domain.LineID) (ChecklistLine, error) {
	row := execer(ctx, s.db).QueryRowContext(ctx,
		`SELECT `+lineColumns+` FROM order_document_statuses WHERE id = $1`, uuid.UUID(id))
	return scanLine(row)
}

func (s *PostgresChecklistStore) FindByOrderAndRequirement(ctx context.Context, orderID domain.OrderID, requirementID domain.RequirementID) (ChecklistLine, error) {
	row := execer(ctx, s.db).QueryRowContext(ctx,
		`SELECT `+lineColumns+` FROM order_document_statuses WHERE order_id = $1 AND requirement_id = $2`,
		uuid.UUID(orderID), uuid.UUID(requirementID))
	return scanLine(row)
}

func (s *PostgresChecklistStore) FindByDocument(ctx context.Context, documentID domain.DocumentID) (ChecklistLine, error) {
	row := execer(ctx, s.db).QueryRowContext(ctx,
		`SELECT `+lineColumns+` FROM order_document_statuses WHERE document_id = $1`, uuid.UUID(documentID))
	return scanLine(row)
}

func (s *PostgresChecklistStore) Update(ctx context.Context, line ChecklistLine) error {
	res, err := execer(ctx, s.db).ExecContext(ctx, `
		UPDATE order_document_statuses SET document_id = $2, status = $3, notes = $4 WHERE id = $1
	`, uuid.UUID(line.ID), documentRef(line.DocumentID), string(line.Status), nullable(line.Notes))
	if err != nil {
		return fmt.Errorf("update checklist line: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update checklist line: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresChecklistStore) ListByOrder(ctx context.Context, orderID domain.OrderID) ([]ChecklistLine, error) {
	rows, err := execer(ctx, s.db).QueryContext(ctx,
		`SELECT `+lineColumns+` FROM order_document_statuses WHERE order_id = $1 ORDER BY id`, uuid.UUID(orderID))
	if err != nil {
		return nil, fmt.Errorf("list checklist lines: %w", err)
	}
	defer rows.Close()

	var out []ChecklistLine
	for rows.Next() {
		line, err := scanLineFromRows(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, line)
	}
	return out, rows.Err()
}

func scanLine(row *sql.Row) (ChecklistLine, error) {
	var (
		id         uuid.UUID
		orderID    uuid.UUID
		reqID      uuid.UUID
		documentID *uuid.UUID
		status     string
		line       ChecklistLine
	)
	if err := row.Scan(&id, &orderID, &reqID, &documentID, &status, &line.Notes); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ChecklistLine{}, sentinel.ErrNotFound
		}
		return ChecklistLine{}, fmt.Errorf("scan checklist line: %w", err)
	}
	fillLine(&line, id, orderID, reqID, documentID, status)
	return line, nil
}

func scanLineFromRows(rows *sql.Rows) (ChecklistLine, error) {
	var (
		id         uuid.UUID
		orderID    uuid.UUID
		reqID      uuid.UUID
		documentID *uuid.UUID
		status     string
		line       ChecklistLine
	)
	if err := rows.Scan(&id, &orderID, &reqID, &documentID, &status, &line.Notes); err != nil {
		return ChecklistLine{}, fmt.Errorf("scan checklist line: %w", err)
	}
	fillLine(&line, id, orderID, reqID, documentID, status)
	return line, nil
}

func fillLine(line *ChecklistLine, id, orderID, reqID uuid.UUID, documentID *uuid.UUID, status string) {
	line.ID = domain.LineID(id)
	line.OrderID = domain.OrderID(orderID)
	line.RequirementID = domain.RequirementID(reqID)
	line.Status = LineStatus(status)
	if documentID != nil {
		docID := domain.DocumentID(*documentID)
		line.DocumentID = &docID
	}
}

func documentRef(id *domain.DocumentID) *uuid.UUID {
	if id == nil {
		return nil
	}
	raw := uuid.UUID(*id)
	return &raw
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
