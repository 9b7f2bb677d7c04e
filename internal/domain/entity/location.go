package entity

import "time"

// Tipos de ubicación y de almacenamiento.
const (
	LocationTypeRack    = "RACK"
	LocationTypeTarima  = "TARIMA"
	LocationTypeChamber = "CHAMBER"

	StorageConservation = "conservation" // refrigerado 0..4 °C
	StorageFrozen       = "frozen"       // congelado <= -18 °C
)

// Location representa una ubicación física del almacén (rack, tarima o cámara).
// La ocupación no se guarda: se calcula sumando las cantidades de los lotes ubicados.
type Location struct {
	ID          string
	Code        string
	Type        string // RACK, TARIMA, CHAMBER
	Zone        string
	StorageType string // conservation, frozen
	MaxCapacity int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
