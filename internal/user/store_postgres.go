package user

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

// PostgresStore persists users and vendor-product assignments.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const userColumns = `id, email, COALESCE(password_hash, ''), role, company_id`

func (s *PostgresStore) Save(ctx context.Context, u User) error {
	_, err := execer(ctx, s.db).ExecContext(ctx, `
		INSERT INTO users (id, email, password_hash, role, company_id)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE
		SET email = EXCLUDED.email, password_hash = EXCLUDED.password_hash,
		    role = EXCLUDED.role, company_id = EXCLUDED.company_id
	`,
		uuid.UUID(u.ID), u.Email, u.PasswordHash, string(u.Role), (*uuid.UUID)(u.CompanyID),
	)
	if err != nil {
		return fmt.Errorf("save user: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, id domain.UserID) (User, error) {
	row := execer(ctx, s.db).QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, uuid.UUID(id))
	return scanUser(row)
}

func (s *PostgresStore) FindByEmail(ctx context.Context, email string) (User, error) {
	row := execer(ctx, s.db).QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	return scanUser(row)
}

func (s *PostgresStore) AssignProduct(ctx context.Context, vendorID domain.UserID, productID domain.ProductID) error {
	_, err := execer(ctx, s.db).ExecContext(ctx, `
		INSERT INTO vendor_product_assignments (vendor_id, product_id) VALUES ($1, $2)
	`, uuid.UUID(vendorID), uuid.UUID(productID))
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("assign product: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListAssignedProducts(ctx context.Context, vendorID domain.UserID) ([]domain.ProductID, error) {
	rows, err := execer(ctx, s.db).QueryContext(ctx, `
		SELECT product_id FROM vendor_product_assignments WHERE vendor_id = $1 ORDER BY product_id
	`, uuid.UUID(vendorID))
	if err != nil {
		return nil, fmt.Errorf("list assigned products: %w", err)
	}
	defer rows.Close()

	var out []domain.ProductID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan assignment: %w", err)
		}
		out = append(out, domain.ProductID(id))
	}
	return out, rows.Err()
}

func scanUser(row *sql.Row) (User, error) {
	var (
		u         User
		id        uuid.UUID
		role      string
		companyID *uuid.UUID
	)
	if err := row.Scan(&id, &u.Email, &u.PasswordHash, &role, &companyID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, sentinel.ErrNotFound
		}
		return User{}, fmt.Errorf("scan user: %w", err)
	}
	u.ID = domain.UserID(id)
	u.Role = domain.Role(role)
	u.CompanyID = (*domain.CompanyID)(companyID)
	return u, nil
}
