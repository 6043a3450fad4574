package catalog

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

// PostgresCompanyStore persists companies.
type PostgresCompanyStore struct {
	db *sql.DB
}

func NewPostgresCompanyStore(db *sql.DB) *PostgresCompanyStore {
	return &PostgresCompanyStore{db: db}
}

func (s *PostgresCompanyStore) Save(ctx context.Context, company Company) error {
	_, err := execer(ctx, s.db).ExecContext(ctx, `
		INSERT INTO companies (id, name, domain) VALUES ($1, $2, $3)
	`, uuid.UUID(company.ID), company.Name, nullable(company.Domain))
	if err != nil {
		return fmt.Errorf("insert company: %w", err)
	}
	return nil
}

func (s *PostgresCompanyStore) Get(ctx context.Context, id domain.CompanyID) (Company, error) {
	return s.scanCompany(execer(ctx, s.db).QueryRowContext(ctx, `
		SELECT id, name, COALESCE(domain, '') FROM companies WHERE id = $1
	`, uuid.UUID(id)))
}

func (s *PostgresCompanyStore) FindByName(ctx context.Context, name string) (Company, error) {
	return s.scanCompany(execer(ctx, s.db).QueryRowContext(ctx, `
		SELECT id, name, COALESCE(domain, '') FROM companies WHERE name = $1
	`, name))
}

func (s *PostgresCompanyStore) scanCompany(row *sql.Row) (Company, error) {
	var (
		id      uuid.UUID
		company Company
	)
	if err := row.Scan(&id, &company.Name, &company.Domain); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Company{}, sentinel.ErrNotFound
		}
		return Company{}, fmt.Errorf("scan company: %w", err)
	}
	company.ID = domain.CompanyID(id)
	return company, nil
}

// PostgresProductStore persists products.
type PostgresProductStore struct {
	db *sql.DB
}

func NewPostgresProductStore(db *sql.DB) *PostgresProductStore {
	return &PostgresProductStore{db: db}
}

func (s *PostgresProductStore) Save(ctx context.Context, product Product) error {
	_, err := execer(ctx, s.db).ExecContext(ctx, `
		INSERT INTO products (id, name, sku, company_id) VALUES ($1, $2, $3, $4)
	`, uuid.UUID(product.ID), product.Name, nullable(product.SKU), uuid.UUID(product.CompanyID))
	if err != nil {
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

func (s *PostgresProductStore) Get(ctx context.Context, id domain.ProductID) (Product, error) {
	row := execer(ctx, s.db).QueryRowContext(ctx, `
		SELECT id, name, COALESCE(sku, ''), company_id FROM products WHERE id = $1
	`, uuid.UUID(id))
	return scanProduct(row)
}

func (s *PostgresProductStore) Rename(ctx context.Context, id domain.ProductID, name string) error {
	res, err := execer(ctx, s.db).ExecContext(ctx, `
		UPDATE products SET name = $2 WHERE id = $1
	`, uuid.UUID(id), name)
	if err != nil {
		return fmt.Errorf("rename product: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rename product: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresProductStore) ListByCompany(ctx context.Context, companyID domain.CompanyID) ([]Product, error) {
	rows, err := execer(ctx, s.db).QueryContext(ctx, `
		SELECT id, name, COALESCE(sku, ''), company_id FROM products WHERE company_id = $1 ORDER BY name
	`, uuid.UUID(companyID))
	if err != nil {
		return nil, fmt.Errorf("list products by company: %w", err)
	}
	return collectProducts(rows)
}

func (s *PostgresProductStore) List(ctx context.Context) ([]Product, error) {
	rows, err := execer(ctx, s.db).QueryContext(ctx, `
		SELECT id, name, COALESCE(sku, ''), company_id FROM products ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return collectProducts(rows)
}

func scanProduct(row *sql.Row) (Product, error) {
	var (
		id        uuid.UUID
		companyID uuid.UUID
		product   Product
	)
	if err := row.Scan(&id, &product.Name, &product.SKU, &companyID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Product{}, sentinel.ErrNotFound
		}
		return Product{}, fmt.Errorf("scan product: %w", err)
	}
	product.ID = domain.ProductID(id)
	product.CompanyID = domain.CompanyID(companyID)
	return product, nil
}

func collectProducts(rows *sql.Rows) ([]Product, error) {
	defer rows.Close()
	var out []Product
	for rows.Next() {
		var (
			id        uuid.UUID
			companyID uuid.UUID
			product   Product
		)
		if err := rows.Scan(&id, &product.Name, &product.SKU, &companyID); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		product.ID = domain.ProductID(id)
		product.CompanyID = domain.CompanyID(companyID)
		out = append(out, product)
	}
	return out, rows.Err()
}

// PostgresRequirementStore persists document requirements.
type PostgresRequirementStore struct {
	db *sql.DB
}

func NewPostgresRequirementStore(db *sql.DB) *PostgresRequirementStore {
	return &PostgresRequirementStore{db: db}
}

func (s *PostgresRequirementStore) Save(ctx context.Context, requirement Requirement) error {
	_, err := execer(ctx, s.db).ExecContext(ctx, `
		INSERT INTO document_requirements (id, product_id, name, description, required_for_export, country)
		VALUES ($1, $2, $3, $4, $5, $6)
	`,
		uuid.UUID(requirement.ID),
		uuid.UUID(requirement.ProductID),
		requirement.Name,
		nullable(requirement.Description),
		requirement.RequiredForExport,
		nullable(requirement.Country),
	)
	if err != nil {
		return fmt.Errorf("insert requirement: %w", err)
	}
	return nil
}

func (s *PostgresRequirementStore) Get(ctx context.Context, id domain.RequirementID) (Requirement, error) {
	row := execer(ctx, s.db).QueryRowContext(ctx, `
		SELECT id, product_id, name, COALESCE(description, ''), required_for_export, COALESCE(country, '')
		FROM document_requirements WHERE id = $1
	`, uuid.UUID(id))

	var (
		reqID       uuid.UUID
		productID   uuid.UUID
		requirement Requirement
	)
	err := row.Scan(&reqID, &productID, &requirement.Name, &requirement.Description,
		&requirement.RequiredForExport, &requirement.Country)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Requirement{}, sentinel.ErrNotFound
		}
		return Requirement{}, fmt.Errorf("scan requirement: %w", err)
	}
	requirement.ID = domain.RequirementID(reqID)
	requirement.ProductID = domain.ProductID(productID)
	return requirement, nil
}

func (s *PostgresRequirementStore) ListByProducts(ctx context.Context, productIDs []domain.ProductID) ([]Requirement, error) {
	ids := make([]uuid.UUID, 0, len(productIDs))
	for _, id := range productIDs {
		ids = append(ids, uuid.UUID(id))
	}

	rows, err := execer(ctx, s.db).QueryContext(ctx, `
		SELECT id, product_id, name, COALESCE(description, ''), required_for_export, COALESCE(country, '')
		FROM document_requirements WHERE product_id = ANY($1) ORDER BY name, id
	`, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("list requirements: %w", err)
	}
	defer rows.Close()

	var out []Requirement
	for rows.Next() {
		var (
			reqID       uuid.UUID
			productID   uuid.UUID
			requirement Requirement
		)
		if err := rows.Scan(&reqID, &productID, &requirement.Name, &requirement.Description,
			&requirement.RequiredForExport, &requirement.Country); err != nil {
			return nil, fmt.Errorf("scan requirement: %w", err)
		}
		requirement.ID = domain.RequirementID(reqID)
		requirement.ProductID = domain.ProductID(productID)
		out = append(out, requirement)
	}
	return out, rows.Err()
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
