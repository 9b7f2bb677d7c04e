package dto

import (
	"time"

	"github.com/holaaposmx/Controdealmacenfrio/internal/domain/entity"
)

// CreateOrderRequest alta de orden.
type CreateOrderRequest struct {
	OrderNumber string                   `json:"order_number" validate:"required"`
	Customer    string                   `json:"customer" validate:"required"`
	Status      string                   `json:"status"`
	OrderDate   string                   `json:"order_date"`
	Notes       string                   `json:"notes"`
	Items       []CreateOrderItemRequest `json:"items"`
}

// CreateOrderItemRequest partida de la orden.
type CreateOrderItemRequest struct {
	LotID    string `json:"inventory_item_id" validate:"required"`
	Quantity int    `json:"quantity" validate:"required,gt=0"`
}

// UpdateOrderStatusRequest cambio de estado. Fechas YYYY-MM-DD.
type UpdateOrderStatusRequest struct {
	Status       string `json:"status" validate:"required"`
	ShippingDate string `json:"shipping_date"`
	DeliveryDate string `json:"delivery_date"`
	Notes        string `json:"notes"`
}

// ReturnRequest devolución de partidas.
type ReturnRequest struct {
	Items []ReturnItemRequest `json:"items" validate:"required,min=1"`
}

// ReturnItemRequest unidades devueltas de un lote.
type ReturnItemRequest struct {
	LotID    string `json:"inventory_item_id" validate:"required"`
	Quantity int    `json:"quantity" validate:"required,gt=0"`
	Reason   string `json:"reason"`
}

// OrderItemResponse partida.
type OrderItemResponse struct {
	ID       string `json:"id"`
	LotID    string `json:"inventory_item_id"`
	Quantity int    `json:"quantity"`
}

// OrderResponse salida de una orden.
type OrderResponse struct {
	ID           string              `json:"id"`
	OrderNumber  string              `json:"order_number"`
	Customer     string              `json:"customer"`
	Status       string              `json:"status"`
	OrderDate    time.Time           `json:"order_date"`
	ShippingDate *time.Time          `json:"shipping_date"`
	DeliveryDate *time.Time          `json:"delivery_date"`
	TotalItems   int                 `json:"total_items"`
	Notes        string              `json:"notes"`
	Items        []OrderItemResponse `json:"items"`
	CreatedAt    time.Time           `json:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at"`
}

// NewOrderResponse convierte la entidad.
func NewOrderResponse(o entity.Order) OrderResponse {
	items := make([]OrderItemResponse, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, OrderItemResponse{ID: it.ID, LotID: it.LotID, Quantity: it.Quantity})
	}
	return OrderResponse{
		ID:           o.ID,
		OrderNumber:  o.OrderNumber,
		Customer:     o.Customer,
		Status:       o.Status,
		OrderDate:    o.OrderDate,
		ShippingDate: o.ShippingDate,
		DeliveryDate: o.DeliveryDate,
		TotalItems:   o.TotalItems,
		Notes:        o.Notes,
		Items:        items,
		CreatedAt:    o.CreatedAt,
		UpdatedAt:    o.UpdatedAt,
	}
}
