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

var _ repository.OrderRepository = (*OrderRepo)(nil)

const orderColumns = `id, order_number, customer, status, order_date, shipping_date, delivery_date,
	total_items, notes, created_at, updated_at`

// OrderRepo órdenes (orders) y sus partidas (order_items).
type OrderRepo struct {
	q Querier
}

// NewOrderRepository construye el adaptador de persistencia para órdenes.
func NewOrderRepository(q Querier) *OrderRepo {
	return &OrderRepo{q: q}
}

// Create inserta la orden y sus partidas en una sola transacción.
func (r *OrderRepo) Create(ctx context.Context, o *entity.Order) error {
	err := pgx.BeginFunc(ctx, r.q, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO orders (`+orderColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
			o.ID, o.OrderNumber, o.Customer, o.Status, o.OrderDate, o.ShippingDate, o.DeliveryDate,
			o.TotalItems, o.Notes, o.CreatedAt, o.UpdatedAt,
		)
		if err != nil {
			return err
		}
		batch := &pgx.Batch{}
		for _, it := range o.Items {
			batch.Queue(`
				INSERT INTO order_items (id, order_id, lot_id, quantity, created_at)
				VALUES ($1, $2, $3, $4, $5)`,
				it.ID, o.ID, it.LotID, it.Quantity, it.CreatedAt)
		}
		return tx.SendBatch(ctx, batch).Close()
	})
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: número de orden %s duplicado", domain.ErrInvalidInput, o.OrderNumber)
		}
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: lote de la orden %s", domain.ErrNotFound, o.OrderNumber)
		}
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

// GetByID carga la orden con sus partidas.
func (r *OrderRepo) GetByID(ctx context.Context, id string) (*entity.Order, error) {
	rows, err := r.q.Query(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	o, err := pgx.CollectOneRow(rows, scanOrder)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get order: %w", err)
	}

	rows, err = r.q.Query(ctx, `
		SELECT id, order_id, lot_id, quantity, created_at
		FROM order_items WHERE order_id = $1 ORDER BY seq`, id)
	if err != nil {
		return nil, fmt.Errorf("list order items: %w", err)
	}
	o.Items, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (entity.OrderItem, error) {
		var it entity.OrderItem
		err := row.Scan(&it.ID, &it.OrderID, &it.LotID, &it.Quantity, &it.CreatedAt)
		return it, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan order items: %w", err)
	}
	return &o, nil
}

// List órdenes más recientes primero; status vacío no filtra. No carga partidas.
func (r *OrderRepo) List(ctx context.Context, status string, limit, offset int) ([]entity.Order, error) {
	lim, off := pageArgs(limit, offset)
	query := `SELECT ` + orderColumns + `
		FROM orders
		WHERE ($1::text = '' OR status = $1)
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(ctx, query, status, lim, off)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	list, err := pgx.CollectRows(rows, scanOrder)
	if err != nil {
		return nil, fmt.Errorf("scan orders: %w", err)
	}
	return list, nil
}

// Update guarda estado, fechas y notas.
func (r *OrderRepo) Update(ctx context.Context, o *entity.Order) error {
	query := `
		UPDATE orders
		SET status = $2, shipping_date = $3, delivery_date = $4, notes = $5, updated_at = $6
		WHERE id = $1`
	cmd, err := r.q.Exec(ctx, query, o.ID, o.Status, o.ShippingDate, o.DeliveryDate, o.Notes, o.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update order: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("%w: orden %s", domain.ErrNotFound, o.ID)
	}
	return nil
}

func scanOrder(row pgx.CollectableRow) (entity.Order, error) {
	var o entity.Order
	err := row.Scan(
		&o.ID, &o.OrderNumber, &o.Customer, &o.Status, &o.OrderDate, &o.ShippingDate, &o.DeliveryDate,
		&o.TotalItems, &o.Notes, &o.CreatedAt, &o.UpdatedAt,
	)
	return o, err
}
