package repository

import (
	"context"

	"github.com/holaaposmx/Controdealmacenfrio/internal/domain/entity"
)

// LotRepository puerto de persistencia de lotes (tabla inventory_items).
type LotRepository interface {
	// ListByProduct lotes del producto con cantidad > 0.
	ListByProduct(ctx context.Context, productID string) ([]entity.Lot, error)
	ListAll(ctx context.Context) ([]entity.Lot, error)
	// GetByID devuelve nil, nil si no existe.
	GetByID(ctx context.Context, id string) (*entity.Lot, error)
	Create(ctx context.Context, lot *entity.Lot) error
	// UpdateQuantity escritura condicional: solo aplica si la cantidad guardada sigue siendo
	// m.ExpectedQuantity; si no, devuelve domain.ErrConcurrentModification.
	UpdateQuantity(ctx context.Context, m entity.LotMutation) error
	// SumByLocation ocupación actual de una ubicación (suma de cantidades de sus lotes).
	SumByLocation(ctx context.Context, locationID string) (int, error)
}
