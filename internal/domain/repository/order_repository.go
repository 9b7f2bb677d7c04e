package repository

import (
	"context"

	"github.com/holaaposmx/Controdealmacenfrio/internal/domain/entity"
)

// OrderRepository puerto de persistencia de órdenes y sus partidas.
type OrderRepository interface {
	// Create inserta la orden y sus Items.
	Create(ctx context.Context, o *entity.Order) error
	// GetByID carga la orden con sus partidas; nil, nil si no existe.
	GetByID(ctx context.Context, id string) (*entity.Order, error)
	List(ctx context.Context, status string, limit, offset int) ([]entity.Order, error)
	// Update guarda estado, fechas y notas (no toca las partidas).
	Update(ctx context.Context, o *entity.Order) error
}
