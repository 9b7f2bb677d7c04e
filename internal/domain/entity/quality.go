package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estado de una lectura de temperatura.
const (
	TemperatureNormal   = "normal"
	TemperatureWarning  = "warning"
	TemperatureCritical = "critical"
)

// TemperatureLog lectura de temperatura de un área de almacenamiento.
type TemperatureLog struct {
	ID          string
	StorageArea string
	StorageType string
	Temperature decimal.Decimal // °C
	Status      string
	RecordedBy  string
	Notes       string
	CreatedAt   time.Time
}

// Severidad y estado de incidentes de calidad.
const (
	SeverityLow      = "low"
	SeverityMedium   = "medium"
	SeverityHigh     = "high"
	SeverityCritical = "critical"

	IncidentOpen          = "open"
	IncidentInvestigating = "investigating"
	IncidentResolved      = "resolved"
	IncidentClosed        = "closed"
)

// QualityIncident incidente de calidad reportado sobre un producto o ubicación.
type QualityIncident struct {
	ID                string
	IncidentType      string
	Description       string
	Severity          string
	RelatedProductID  *string
	RelatedLocationID *string
	ReportedBy        string
	Status            string
	ResolutionNotes   string
	CreatedAt         time.Time
	UpdatedAt         time.Time
	ResolvedAt        *time.Time
}
