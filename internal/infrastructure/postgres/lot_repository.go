package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/holaaposmx/Controdealmacenfrio/internal/domain"
	"github.com/holaaposmx/Controdealmacenfrio/internal/domain/entity"
	"github.com/holaaposmx/Controdealmacenfrio/internal/domain/repository"
)

var _ repository.LotRepository = (*LotRepo)(nil)

const lotColumns = `id, product_id, product_name, category, quantity, location_id, lot_number,
	received_date, expiration_date, status, created_at, updated_at`

// LotRepo implementación del puerto LotRepository sobre inventory_items.
type LotRepo struct {
	q Querier
}

// NewLotRepository construye el adaptador; q puede ser el pool o una transacción.
func NewLotRepository(q Querier) *LotRepo {
	return &LotRepo{q: q}
}

// ListByProduct lotes del producto con existencias.
func (r *LotRepo) ListByProduct(ctx context.Context, productID string) ([]entity.Lot, error) {
	query := `SELECT ` + lotColumns + `
		FROM inventory_items
		WHERE product_id = $1 AND quantity > 0
		ORDER BY created_at, id`
	rows, err := r.q.Query(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("list lots by product: %w", err)
	}
	return collectLots(rows)
}

// ListAll todos los lotes, incluidos los agotados.
func (r *LotRepo) ListAll(ctx context.Context) ([]entity.Lot, error) {
	rows, err := r.q.Query(ctx, `SELECT `+lotColumns+` FROM inventory_items ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list lots: %w", err)
	}
	return collectLots(rows)
}

// GetByID obtiene un lote por ID.
func (r *LotRepo) GetByID(ctx context.Context, id string) (*entity.Lot, error) {
	rows, err := r.q.Query(ctx, `SELECT `+lotColumns+` FROM inventory_items WHERE id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("get lot: %w", err)
	}
	l, err := pgx.CollectOneRow(rows, scanLot)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get lot: %w", err)
	}
	return &l, nil
}

// Create persiste un lote nuevo.
func (r *LotRepo) Create(ctx context.Context, l *entity.Lot) error {
	query := `
		INSERT INTO inventory_items (` + lotColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.q.Exec(ctx, query,
		l.ID, l.ProductID, l.ProductName, l.Category, l.Quantity, l.LocationID, l.LotNumber,
		l.ReceivedDate, l.ExpirationDate, string(l.Status), l.CreatedAt, l.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: lote %s ya existe", domain.ErrInvalidInput, l.ID)
		}
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: ubicación del lote %s", domain.ErrNotFound, l.ID)
		}
		return fmt.Errorf("insert lot: %w", err)
	}
	return nil
}

// UpdateQuantity aplica la mutación solo si la cantidad guardada sigue siendo la esperada.
func (r *LotRepo) UpdateQuantity(ctx context.Context, m entity.LotMutation) error {
	query := `
		UPDATE inventory_items
		SET quantity = $2, location_id = $3, status = $4, updated_at = $5
		WHERE id = $1 AND quantity = $6`
	cmd, err := r.q.Exec(ctx, query,
		m.LotID, m.Quantity, m.LocationID, string(m.Status), m.UpdatedAt, m.ExpectedQuantity,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: ubicación destino del lote %s", domain.ErrNotFound, m.LotID)
		}
		return fmt.Errorf("update lot quantity: %w", err)
	}
	if cmd.RowsAffected() == 1 {
		return nil
	}

	var exists bool
	if err := r.q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM inventory_items WHERE id = $1)`, m.LotID).Scan(&exists); err != nil {
		return fmt.Errorf("check lot: %w", err)
	}
	if !exists {
		return fmt.Errorf("%w: lote %s", domain.ErrNotFound, m.LotID)
	}
	return fmt.Errorf("%w: lote %s", domain.ErrConcurrentModification, m.LotID)
}

// SumByLocation suma de cantidades de los lotes ubicados en locationID.
func (r *LotRepo) SumByLocation(ctx context.Context, locationID string) (int, error) {
	var total int
	err := r.q.QueryRow(ctx,
		`SELECT COALESCE(SUM(quantity), 0) FROM inventory_items WHERE location_id = $1`, locationID,
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("sum by location: %w", err)
	}
	return total, nil
}

func scanLot(row pgx.CollectableRow) (entity.Lot, error) {
	var l entity.Lot
	var status string
	err := row.Scan(
		&l.ID, &l.ProductID, &l.ProductName, &l.Category, &l.Quantity, &l.LocationID, &l.LotNumber,
		&l.ReceivedDate, &l.ExpirationDate, &status, &l.CreatedAt, &l.UpdatedAt,
	)
	l.Status = entity.LotStatus(status)
	return l, err
}

func collectLots(rows pgx.Rows) ([]entity.Lot, error) {
	lots, err := pgx.CollectRows(rows, scanLot)
	if err != nil {
		return nil, fmt.Errorf("scan lots: %w", err)
	}
	return lots, nil
}
