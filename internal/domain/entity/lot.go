package entity

import "time"

// LotStatus estado de existencias de un lote. Derivado de la cantidad (y de la fecha de
// caducidad para "expired", que se calcula al leer).
type LotStatus string

const (
	LotStatusInStock    LotStatus = "in-stock"
	LotStatusLowStock   LotStatus = "low-stock"
	LotStatusOutOfStock LotStatus = "out-of-stock"
	LotStatusExpired    LotStatus = "expired"
	LotStatusReserved   LotStatus = "reserved"
)

// Lot representa un lote físico de un producto (tabla inventory_items).
// Varios lotes pueden compartir ProductID; nunca se borran, un lote en 0 queda "out-of-stock".
type Lot struct {
	ID             string
	ProductID      string
	ProductName    string
	Category       string
	Quantity       int
	LocationID     *string // nil = sin ubicación asignada
	LotNumber      string
	ReceivedDate   time.Time
	ExpirationDate *time.Time // nil = sin caducidad (va al final en FIFO)
	Status         LotStatus
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// HasLocation indica si el lote tiene ubicación asignada.
func (l Lot) HasLocation() bool {
	return l.LocationID != nil && *l.LocationID != ""
}

// LotMutation cambio a persistir sobre un lote. ExpectedQuantity es la cantidad leída
// antes de decidir; el almacén rechaza la escritura si ya no coincide.
type LotMutation struct {
	LotID            string
	ExpectedQuantity int
	Quantity         int
	LocationID       *string
	Status           LotStatus
	UpdatedAt        time.Time
}

// Allocation porción de un despacho satisfecha desde un lote concreto (no se persiste).
type Allocation struct {
	Lot           Lot
	QuantityTaken int
}

// Intent par (mutación de lote, movimiento) que debe aplicarse como una sola unidad.
type Intent struct {
	Mutation LotMutation
	Movement Movement
}
