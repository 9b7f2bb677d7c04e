package entity

import "time"

// MovementType tipo de movimiento de inventario.
type MovementType string

const (
	MovementReception  MovementType = "reception"  // entrada
	MovementDispatch   MovementType = "dispatch"   // salida
	MovementTransfer   MovementType = "transfer"   // cambio de ubicación
	MovementReturn     MovementType = "return"     // devolución de cliente
	MovementAdjustment MovementType = "adjustment" // conteo físico: fija la cantidad absoluta
)

// Valid indica si el tipo es uno de los soportados.
func (t MovementType) Valid() bool {
	switch t {
	case MovementReception, MovementDispatch, MovementTransfer, MovementReturn, MovementAdjustment:
		return true
	}
	return false
}

// Movement registro de auditoría inmutable de un cambio de cantidad o ubicación.
// Quantity es siempre la magnitud movida (>= 0).
type Movement struct {
	ID             string
	LotID          *string
	Type           MovementType
	FromLocationID *string
	ToLocationID   *string
	Quantity       int
	PerformedBy    string
	ReferenceCode  *string // ej. número de orden
	Notes          string
	CreatedAt      time.Time
}
