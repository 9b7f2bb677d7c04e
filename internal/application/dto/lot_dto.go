package dto

import (
	"time"

	"github.com/holaaposmx/Controdealmacenfrio/internal/domain/entity"
)

// ReceiveLotRequest recepción de un lote nuevo. Fechas en formato YYYY-MM-DD.
type ReceiveLotRequest struct {
	ProductID      string  `json:"product_id" validate:"required"`
	ProductName    string  `json:"product_name" validate:"required"`
	Category       string  `json:"category"`
	Quantity       int     `json:"quantity" validate:"required,gt=0"`
	LocationID     *string `json:"location_id"`
	LotNumber      string  `json:"lot_number"`
	ReceivedDate   string  `json:"received_date"`
	ExpirationDate string  `json:"expiration_date"`
}

// LotResponse salida de un lote.
type LotResponse struct {
	ID             string     `json:"id"`
	ProductID      string     `json:"product_id"`
	ProductName    string     `json:"product_name"`
	Category       string     `json:"category"`
	Quantity       int        `json:"quantity"`
	LocationID     *string    `json:"location_id"`
	LotNumber      string     `json:"lot_number"`
	ReceivedDate   time.Time  `json:"received_date"`
	ExpirationDate *time.Time `json:"expiration_date"`
	Status         string     `json:"status"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// ApplyMovementRequest movimiento manual sobre un lote.
type ApplyMovementRequest struct {
	Type          string  `json:"movement_type" validate:"required,oneof=reception dispatch transfer return adjustment"`
	Quantity      int     `json:"quantity" validate:"min=0"`
	ToLocationID  *string `json:"to_location_id"`
	ReferenceCode *string `json:"reference_code"`
	Notes         string  `json:"notes"`
}

// MovementResponse salida de un movimiento.
type MovementResponse struct {
	ID             string    `json:"id"`
	LotID          *string   `json:"inventory_item_id"`
	Type           string    `json:"movement_type"`
	FromLocationID *string   `json:"from_location_id"`
	ToLocationID   *string   `json:"to_location_id"`
	Quantity       int       `json:"quantity"`
	PerformedBy    string    `json:"performed_by"`
	ReferenceCode  *string   `json:"reference_code"`
	Notes          string    `json:"notes"`
	CreatedAt      time.Time `json:"created_at"`
}

// DispatchRequest despacho FIFO de un producto.
type DispatchRequest struct {
	ProductID     string  `json:"product_id" validate:"required"`
	Quantity      int     `json:"quantity" validate:"required,gt=0"`
	ReferenceCode *string `json:"reference_code"`
	Notes         string  `json:"notes"`
}

// AllocationResponse porción tomada de un lote.
type AllocationResponse struct {
	Lot           LotResponse `json:"item"`
	QuantityTaken int         `json:"quantity_taken"`
}

// DispatchResponse resultado del despacho.
type DispatchResponse struct {
	Allocations []AllocationResponse `json:"allocations"`
	Movements   []MovementResponse   `json:"movements"`
}

// ExpirationRowResponse fila del reporte de caducidades.
type ExpirationRowResponse struct {
	Lot      LotResponse `json:"item"`
	DaysLeft int         `json:"days_until_expiration"`
	Risk     string      `json:"risk"`
}

// NewLotResponse convierte la entidad.
func NewLotResponse(l entity.Lot) LotResponse {
	return LotResponse{
		ID:             l.ID,
		ProductID:      l.ProductID,
		ProductName:    l.ProductName,
		Category:       l.Category,
		Quantity:       l.Quantity,
		LocationID:     l.LocationID,
		LotNumber:      l.LotNumber,
		ReceivedDate:   l.ReceivedDate,
		ExpirationDate: l.ExpirationDate,
		Status:         string(l.Status),
		CreatedAt:      l.CreatedAt,
		UpdatedAt:      l.UpdatedAt,
	}
}

// NewLotListResponse convierte una lista de lotes.
func NewLotListResponse(lots []entity.Lot) []LotResponse {
	out := make([]LotResponse, 0, len(lots))
	for _, l := range lots {
		out = append(out, NewLotResponse(l))
	}
	return out
}

// NewMovementResponse convierte la entidad.
func NewMovementResponse(m entity.Movement) MovementResponse {
	return MovementResponse{
		ID:             m.ID,
		LotID:          m.LotID,
		Type:           string(m.Type),
		FromLocationID: m.FromLocationID,
		ToLocationID:   m.ToLocationID,
		Quantity:       m.Quantity,
		PerformedBy:    m.PerformedBy,
		ReferenceCode:  m.ReferenceCode,
		Notes:          m.Notes,
		CreatedAt:      m.CreatedAt,
	}
}
