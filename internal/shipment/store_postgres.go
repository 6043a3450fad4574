package shipment

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

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

// PostgresStore persists shipments.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const shipmentColumns = `id, order_id, product, lot_number, quantity, origin, destination, status, eta, created_at`

func (s *PostgresStore) Save(ctx context.Context, sh Shipment) error {
	_, err := execer(ctx, s.db).ExecContext(ctx, `
		INSERT INTO shipments (id, order_id, product, lot_number, quantity, origin, destination, status, eta, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`,
		uuid.UUID(sh.ID), uuid.UUID(sh.OrderID), sh.Product, sh.LotNumber,
		sh.Quantity, sh.Origin, sh.Destination, string(sh.Status), sh.ETA, sh.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert shipment: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, id domain.ShipmentID) (Shipment, error) {
	row := execer(ctx, s.db).QueryRowContext(ctx,
		`SELECT `+shipmentColumns+` FROM shipments WHERE id = $1`, uuid.UUID(id))

	sh, err := scanShipment(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Shipment{}, sentinel.ErrNotFound
		}
		return Shipment{}, fmt.Errorf("scan shipment: %w", err)
	}
	return sh, nil
}

func (s *PostgresStore) UpdateStatus(ctx context.Context, id domain.ShipmentID, from, to Status) error {
	res, err := execer(ctx, s.db).ExecContext(ctx, `
		UPDATE shipments SET status = $3 WHERE id = $1 AND status = $2
	`, uuid.UUID(id), string(from), string(to))
	if err != nil {
		return fmt.Errorf("update shipment status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update shipment status: %w", err)
	}
	if affected == 0 {
		var exists bool
		if err := execer(ctx, s.db).QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM shipments WHERE id = $1)`, uuid.UUID(id)).Scan(&exists); err != nil {
			return fmt.Errorf("update shipment status: %w", err)
		}
		if !exists {
			return sentinel.ErrNotFound
		}
		return sentinel.ErrConflict
	}
	return nil
}

func (s *PostgresStore) ListByOrder(ctx context.Context, orderID domain.OrderID) ([]Shipment, error) {
	rows, err := execer(ctx, s.db).QueryContext(ctx,
		`SELECT `+shipmentColumns+` FROM shipments WHERE order_id = $1 ORDER BY created_at`, uuid.UUID(orderID))
	if err != nil {
		return nil, fmt.Errorf("list shipments: %w", err)
	}
	defer rows.Close()

	var out []Shipment
	for rows.Next() {
		sh, err := scanShipment(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan shipment: %w", err)
		}
		out = append(out, sh)
	}
	return out, rows.Err()
}

func (s *PostgresStore) CountByStatus(ctx context.Context, status Status) (int, error) {
	var count int
	err := execer(ctx, s.db).QueryRowContext(ctx,
		`SELECT COUNT(*) FROM shipments WHERE status = $1`, string(status)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count shipments by status: %w", err)
	}
	return count, nil
}

func scanShipment(scan func(dest ...any) error) (Shipment, error) {
	var (
		sh      Shipment
		id      uuid.UUID
		orderID uuid.UUID
		status  string
	)
	if err := scan(
		&id, &orderID, &sh.Product, &sh.LotNumber, &sh.Quantity,
		&sh.Origin, &sh.Destination, &status, &sh.ETA, &sh.CreatedAt,
	); err != nil {
		return Shipment{}, err
	}
	sh.ID = domain.ShipmentID(id)
	sh.OrderID = domain.OrderID(orderID)
	sh.Status = Status(status)
	return sh, nil
}
