package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/holaaposmx/Controdealmacenfrio/internal/domain/entity"
)

// RecordTemperatureRequest lectura de temperatura de un área.
type RecordTemperatureRequest struct {
	StorageArea string          `json:"storage_area" validate:"required"`
	StorageType string          `json:"storage_type" validate:"required,oneof=conservation frozen"`
	Temperature decimal.Decimal `json:"temperature"`
	Notes       string          `json:"notes"`
}

// TemperatureLogResponse salida de una lectura.
type TemperatureLogResponse struct {
	ID          string          `json:"id"`
	StorageArea string          `json:"storage_area"`
	StorageType string          `json:"storage_type"`
	Temperature decimal.Decimal `json:"temperature"`
	Status      string          `json:"status"`
	RecordedBy  string          `json:"recorded_by"`
	Notes       string          `json:"notes"`
	CreatedAt   time.Time       `json:"created_at"`
}

// ReportIncidentRequest alta de incidente de calidad.
type ReportIncidentRequest struct {
	IncidentType      string  `json:"incident_type" validate:"required"`
	Description       string  `json:"description" validate:"required"`
	Severity          string  `json:"severity" validate:"required,oneof=low medium high critical"`
	RelatedProductID  *string `json:"related_product_id"`
	RelatedLocationID *string `json:"related_location_id"`
}

// UpdateIncidentStatusRequest cambio de estado de un incidente.
type UpdateIncidentStatusRequest struct {
	Status          string `json:"status" validate:"required,oneof=open investigating resolved closed"`
	ResolutionNotes string `json:"resolution_notes"`
}

// IncidentResponse salida de un incidente.
type IncidentResponse struct {
	ID                string     `json:"id"`
	IncidentType      string     `json:"incident_type"`
	Description       string     `json:"description"`
	Severity          string     `json:"severity"`
	RelatedProductID  *string    `json:"related_product_id"`
	RelatedLocationID *string    `json:"related_location_id"`
	ReportedBy        string     `json:"reported_by"`
	Status            string     `json:"status"`
	ResolutionNotes   string     `json:"resolution_notes"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
	ResolvedAt        *time.Time `json:"resolved_at"`
}

// NewTemperatureLogResponse convierte la entidad.
func NewTemperatureLogResponse(t entity.TemperatureLog) TemperatureLogResponse {
	return TemperatureLogResponse{
		ID:          t.ID,
		StorageArea: t.StorageArea,
		StorageType: t.StorageType,
		Temperature: t.Temperature,
		Status:      t.Status,
		RecordedBy:  t.RecordedBy,
		Notes:       t.Notes,
		CreatedAt:   t.CreatedAt,
	}
}

// NewIncidentResponse convierte la entidad.
func NewIncidentResponse(i entity.QualityIncident) IncidentResponse {
	return IncidentResponse{
		ID:                i.ID,
		IncidentType:      i.IncidentType,
		Description:       i.Description,
		Severity:          i.Severity,
		RelatedProductID:  i.RelatedProductID,
		RelatedLocationID: i.RelatedLocationID,
		ReportedBy:        i.ReportedBy,
		Status:            i.Status,
		ResolutionNotes:   i.ResolutionNotes,
		CreatedAt:         i.CreatedAt,
		UpdatedAt:         i.UpdatedAt,
		ResolvedAt:        i.ResolvedAt,
	}
}
