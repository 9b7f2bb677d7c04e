package entity

import "time"

// Estados de una orden.
const (
	OrderPending    = "pending"
	OrderProcessing = "processing"
	OrderShipped    = "shipped"
	OrderDelivered  = "delivered"
	OrderCancelled  = "cancelled"
	OrderUrgent     = "urgent"
)

// ValidOrderStatus indica si s es un estado de orden conocido.
func ValidOrderStatus(s string) bool {
	switch s {
	case OrderPending, OrderProcessing, OrderShipped, OrderDelivered, OrderCancelled, OrderUrgent:
		return true
	}
	return false
}

// Order orden de salida de un cliente.
type Order struct {
	ID           string
	OrderNumber  string
	Customer     string
	Status       string
	OrderDate    time.Time
	ShippingDate *time.Time
	DeliveryDate *time.Time
	TotalItems   int
	Notes        string
	Items        []OrderItem
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// OrderItem línea de una orden. LotID referencia un lote del producto pedido;
// al despachar se usa solo para resolver el producto, el lote real lo decide FIFO.
type OrderItem struct {
	ID        string
	OrderID   string
	LotID     string
	Quantity  int
	CreatedAt time.Time
}
