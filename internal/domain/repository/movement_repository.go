package repository

import (
	"context"

	"github.com/holaaposmx/Controdealmacenfrio/internal/domain/entity"
)

// MovementRepository puerto del registro de auditoría (solo inserción).
type MovementRepository interface {
	Append(ctx context.Context, m *entity.Movement) error
	ListByLot(ctx context.Context, lotID string, limit, offset int) ([]entity.Movement, error)
	ListByReference(ctx context.Context, referenceCode string) ([]entity.Movement, error)
}
