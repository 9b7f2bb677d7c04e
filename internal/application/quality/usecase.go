// Package quality registro de temperaturas e incidentes de calidad.
package quality

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/holaaposmx/Controdealmacenfrio/internal/domain"
	"github.com/holaaposmx/Controdealmacenfrio/internal/domain/entity"
	"github.com/holaaposmx/Controdealmacenfrio/internal/domain/repository"
)

var (
	conservationMin     = decimal.Zero
	conservationMax     = decimal.NewFromInt(4)
	conservationWarnMin = decimal.NewFromInt(-2)
	conservationWarnMax = decimal.NewFromInt(6)
	frozenMax           = decimal.NewFromInt(-18)
	frozenWarnMax       = decimal.NewFromInt(-15)
)

// DetermineTemperatureStatus clasifica una lectura según el tipo de almacenamiento.
// Conservación: 0..4 normal, [-2,0) o (4,6] warning, resto critical.
// Congelado: <= -18 normal, (-18,-15] warning, resto critical.
func DetermineTemperatureStatus(temp decimal.Decimal, storageType string) (string, error) {
	switch storageType {
	case entity.StorageConservation:
		switch {
		case temp.GreaterThanOrEqual(conservationMin) && temp.LessThanOrEqual(conservationMax):
			return entity.TemperatureNormal, nil
		case temp.GreaterThanOrEqual(conservationWarnMin) && temp.LessThanOrEqual(conservationWarnMax):
			return entity.TemperatureWarning, nil
		default:
			return entity.TemperatureCritical, nil
		}
	case entity.StorageFrozen:
		switch {
		case temp.LessThanOrEqual(frozenMax):
			return entity.TemperatureNormal, nil
		case temp.LessThanOrEqual(frozenWarnMax):
			return entity.TemperatureWarning, nil
		default:
			return entity.TemperatureCritical, nil
		}
	}
	return "", fmt.Errorf("%w: tipo de almacenamiento %q", domain.ErrInvalidInput, storageType)
}

// RecordTemperatureInput lectura de un área.
type RecordTemperatureInput struct {
	StorageArea string
	StorageType string
	Temperature decimal.Decimal
	RecordedBy  string
	Notes       string
}

// ReportIncidentInput alta de incidente.
type ReportIncidentInput struct {
	IncidentType      string
	Description       string
	Severity          string
	RelatedProductID  *string
	RelatedLocationID *string
	ReportedBy        string
}

// UseCase casos de uso de calidad.
type UseCase struct {
	temps     repository.TemperatureLogRepository
	incidents repository.QualityIncidentRepository
	log       zerolog.Logger
	now       func() time.Time
}

// NewUseCase construye el caso de uso.
func NewUseCase(temps repository.TemperatureLogRepository, incidents repository.QualityIncidentRepository, log zerolog.Logger) *UseCase {
	return &UseCase{temps: temps, incidents: incidents, log: log, now: time.Now}
}

// RecordTemperature guarda la lectura con el estado calculado en el servidor.
func (uc *UseCase) RecordTemperature(ctx context.Context, in RecordTemperatureInput) (*entity.TemperatureLog, error) {
	if strings.TrimSpace(in.StorageArea) == "" {
		return nil, fmt.Errorf("%w: área requerida", domain.ErrInvalidInput)
	}
	status, err := DetermineTemperatureStatus(in.Temperature, in.StorageType)
	if err != nil {
		return nil, err
	}
	t := &entity.TemperatureLog{
		ID:          uuid.New().String(),
		StorageArea: in.StorageArea,
		StorageType: in.StorageType,
		Temperature: in.Temperature,
		Status:      status,
		RecordedBy:  in.RecordedBy,
		Notes:       in.Notes,
		CreatedAt:   uc.now(),
	}
	if err := uc.temps.Create(ctx, t); err != nil {
		return nil, err
	}
	if status == entity.TemperatureCritical {
		uc.log.Warn().
			Str("area", t.StorageArea).
			Str("temperature", t.Temperature.String()).
			Msg("temperatura crítica registrada")
	}
	return t, nil
}

// ListTemperatures lecturas, la más reciente primero.
func (uc *UseCase) ListTemperatures(ctx context.Context, storageArea string, limit, offset int) ([]entity.TemperatureLog, error) {
	if limit <= 0 {
		limit = 50
	}
	return uc.temps.List(ctx, storageArea, limit, offset)
}

// ReportIncident registra un incidente abierto.
func (uc *UseCase) ReportIncident(ctx context.Context, in ReportIncidentInput) (*entity.QualityIncident, error) {
	if strings.TrimSpace(in.IncidentType) == "" || strings.TrimSpace(in.Description) == "" {
		return nil, fmt.Errorf("%w: tipo y descripción requeridos", domain.ErrInvalidInput)
	}
	if !validSeverity(in.Severity) {
		return nil, fmt.Errorf("%w: severidad %q", domain.ErrInvalidInput, in.Severity)
	}
	now := uc.now()
	i := &entity.QualityIncident{
		ID:                uuid.New().String(),
		IncidentType:      in.IncidentType,
		Description:       in.Description,
		Severity:          in.Severity,
		RelatedProductID:  in.RelatedProductID,
		RelatedLocationID: in.RelatedLocationID,
		ReportedBy:        in.ReportedBy,
		Status:            entity.IncidentOpen,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := uc.incidents.Create(ctx, i); err != nil {
		return nil, err
	}
	return i, nil
}

// UpdateIncidentStatus cambia el estado; resolved y closed fijan resolved_at.
func (uc *UseCase) UpdateIncidentStatus(ctx context.Context, id, status, resolutionNotes string) (*entity.QualityIncident, error) {
	switch status {
	case entity.IncidentOpen, entity.IncidentInvestigating, entity.IncidentResolved, entity.IncidentClosed:
	default:
		return nil, fmt.Errorf("%w: estado %q", domain.ErrInvalidInput, status)
	}
	i, err := uc.incidents.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if i == nil {
		return nil, domain.ErrNotFound
	}
	now := uc.now()
	i.Status = status
	if resolutionNotes != "" {
		i.ResolutionNotes = resolutionNotes
	}
	if status == entity.IncidentResolved || status == entity.IncidentClosed {
		i.ResolvedAt = &now
	}
	i.UpdatedAt = now
	if err := uc.incidents.Update(ctx, i); err != nil {
		return nil, err
	}
	return i, nil
}

// ListIncidents incidentes, filtrados por estado si status no es vacío.
func (uc *UseCase) ListIncidents(ctx context.Context, status string, limit, offset int) ([]entity.QualityIncident, error) {
	if limit <= 0 {
		limit = 50
	}
	return uc.incidents.List(ctx, status, limit, offset)
}

func validSeverity(s string) bool {
	switch s {
	case entity.SeverityLow, entity.SeverityMedium, entity.SeverityHigh, entity.SeverityCritical:
		return true
	}
	return false
}
