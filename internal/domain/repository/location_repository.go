package repository

import (
	"context"

	"github.com/holaaposmx/Controdealmacenfrio/internal/domain/entity"
)

// LocationRepository puerto de persistencia de ubicaciones (warehouse_locations).
type LocationRepository interface {
	Create(ctx context.Context, l *entity.Location) error
	GetByID(ctx context.Context, id string) (*entity.Location, error)
	GetByCode(ctx context.Context, code string) (*entity.Location, error)
	List(ctx context.Context, limit, offset int) ([]entity.Location, error)
}
