package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound     = errors.New("recurso no encontrado")
	ErrUserNotFound = errors.New("usuario no encontrado")
	ErrInvalidInput = errors.New("entrada inválida")
	ErrUnauthorized = errors.New("no autorizado")
	ErrForbidden    = errors.New("acceso denegado")
	ErrLocationFull = errors.New("la ubicación no tiene capacidad suficiente")

	ErrEmailAlreadyExists = errors.New("el email ya está registrado")

	// Motor FIFO
	ErrInvalidQuantity        = errors.New("cantidad inválida")
	ErrOutOfStock             = errors.New("no hay existencias del producto")
	ErrInsufficientInventory  = errors.New("inventario insuficiente")
	ErrMissingLocation        = errors.New("lote sin ubicación asignada")
	ErrNegativeQuantity       = errors.New("la cantidad del lote quedaría negativa")
	ErrConcurrentModification = errors.New("el lote fue modificado por otra operación")
)

// InsufficientInventoryError informa cantidad pedida vs disponible para que el llamador
// decida si despacha parcial, deja pendiente o aborta.
type InsufficientInventoryError struct {
	ProductID string
	Requested int
	Available int
}

func (e *InsufficientInventoryError) Error() string {
	return fmt.Sprintf("inventario insuficiente para el producto %s: solicitado %d, disponible %d",
		e.ProductID, e.Requested, e.Available)
}

// Is permite errors.Is(err, ErrInsufficientInventory).
func (e *InsufficientInventoryError) Is(target error) bool {
	return target == ErrInsufficientInventory
}

// MissingLocationError lote elegido para despacho sin ubicación (problema de datos aguas arriba).
type MissingLocationError struct {
	LotID     string
	ProductID string
}

func (e *MissingLocationError) Error() string {
	return fmt.Sprintf("el lote %s del producto %s no tiene ubicación asignada", e.LotID, e.ProductID)
}

// Is permite errors.Is(err, ErrMissingLocation).
func (e *MissingLocationError) Is(target error) bool {
	return target == ErrMissingLocation
}
