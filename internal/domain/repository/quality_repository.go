package repository

import (
	"context"

	"github.com/holaaposmx/Controdealmacenfrio/internal/domain/entity"
)

// TemperatureLogRepository registros de temperatura por área.
type TemperatureLogRepository interface {
	Create(ctx context.Context, t *entity.TemperatureLog) error
	List(ctx context.Context, storageArea string, limit, offset int) ([]entity.TemperatureLog, error)
}

// QualityIncidentRepository incidencias de calidad.
type QualityIncidentRepository interface {
	Create(ctx context.Context, i *entity.QualityIncident) error
	GetByID(ctx context.Context, id string) (*entity.QualityIncident, error)
	Update(ctx context.Context, i *entity.QualityIncident) error
	List(ctx context.Context, status string, limit, offset int) ([]entity.QualityIncident, error)
}
