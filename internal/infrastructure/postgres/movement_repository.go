package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/holaaposmx/Controdealmacenfrio/internal/domain/entity"
	"github.com/holaaposmx/Controdealmacenfrio/internal/domain/repository"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

const movementColumns = `id, lot_id, type, from_location_id, to_location_id, quantity,
	performed_by, reference_code, notes, created_at`

// MovementRepo registro de auditoría en inventory_movements. Solo inserta.
type MovementRepo struct {
	q Querier
}

// NewMovementRepository construye el adaptador.
func NewMovementRepository(q Querier) *MovementRepo {
	return &MovementRepo{q: q}
}

// Append registra un movimiento.
func (r *MovementRepo) Append(ctx context.Context, m *entity.Movement) error {
	query := `
		INSERT INTO inventory_movements (` + movementColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(ctx, query,
		m.ID, m.LotID, string(m.Type), m.FromLocationID, m.ToLocationID, m.Quantity,
		m.PerformedBy, m.ReferenceCode, m.Notes, m.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert movement: %w", err)
	}
	return nil
}

// ListByLot historial del lote, el más reciente primero.
func (r *MovementRepo) ListByLot(ctx context.Context, lotID string, limit, offset int) ([]entity.Movement, error) {
	lim, off := pageArgs(limit, offset)
	query := `SELECT ` + movementColumns + `
		FROM inventory_movements
		WHERE lot_id = $1
		ORDER BY seq DESC
		LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(ctx, query, lotID, lim, off)
	if err != nil {
		return nil, fmt.Errorf("list movements by lot: %w", err)
	}
	return collectMovements(rows)
}

// ListByReference movimientos de una referencia (ej. número de orden) en orden de registro.
func (r *MovementRepo) ListByReference(ctx context.Context, referenceCode string) ([]entity.Movement, error) {
	query := `SELECT ` + movementColumns + `
		FROM inventory_movements
		WHERE reference_code = $1
		ORDER BY seq`
	rows, err := r.q.Query(ctx, query, referenceCode)
	if err != nil {
		return nil, fmt.Errorf("list movements by reference: %w", err)
	}
	return collectMovements(rows)
}

func collectMovements(rows pgx.Rows) ([]entity.Movement, error) {
	movs, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (entity.Movement, error) {
		var m entity.Movement
		var typ string
		err := row.Scan(
			&m.ID, &m.LotID, &typ, &m.FromLocationID, &m.ToLocationID, &m.Quantity,
			&m.PerformedBy, &m.ReferenceCode, &m.Notes, &m.CreatedAt,
		)
		m.Type = entity.MovementType(typ)
		return m, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan movements: %w", err)
	}
	return movs, nil
}
