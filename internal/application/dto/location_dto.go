package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateLocationRequest entrada para crear una ubicación.
type CreateLocationRequest struct {
	Code        string `json:"location_code" validate:"required,min=1,max=50"`
	Type        string `json:"location_type" validate:"required,oneof=RACK TARIMA CHAMBER"`
	Zone        string `json:"zone"`
	StorageType string `json:"storage_type" validate:"required,oneof=conservation frozen"`
	MaxCapacity int    `json:"max_capacity" validate:"min=0"`
}

// LocationResponse salida de una ubicación con su ocupación actual.
type LocationResponse struct {
	ID                  string          `json:"id"`
	Code                string          `json:"location_code"`
	Type                string          `json:"location_type"`
	Zone                string          `json:"zone"`
	StorageType         string          `json:"storage_type"`
	MaxCapacity         int             `json:"max_capacity"`
	CurrentOccupation   int             `json:"current_occupation"`
	OccupancyPercentage decimal.Decimal `json:"occupancy_percentage"`
	CreatedAt           time.Time       `json:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at"`
}

// LocationListResponse lista paginada de ubicaciones.
type LocationListResponse struct {
	Items []LocationResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}
