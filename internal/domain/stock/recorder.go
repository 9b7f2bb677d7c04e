// Package stock concentra el recálculo de cantidad y estado de un lote ante un movimiento.
// Es el único lugar donde vive el umbral de stock bajo.
package stock

import (
	"fmt"
	"time"

	"github.com/holaaposmx/Controdealmacenfrio/internal/domain"
	"github.com/holaaposmx/Controdealmacenfrio/internal/domain/entity"
)

// DefaultLowStockThreshold umbral por defecto: por debajo de 10 unidades el lote es "low-stock".
const DefaultLowStockThreshold = 10

// MovementSpec describe el movimiento a aplicar sobre un lote.
// Quantity es delta para todos los tipos salvo adjustment, donde es la cantidad absoluta.
type MovementSpec struct {
	Type           entity.MovementType
	Quantity       int
	FromLocationID *string
	ToLocationID   *string
	PerformedBy    string
	ReferenceCode  *string
	Notes          string
	At             time.Time // cero = time.Now()
}

// Recorder aplica movimientos y recalcula el estado derivado (servicio de dominio, puro).
type Recorder struct {
	LowStockThreshold int
}

// NewRecorder construye el recalculador. threshold <= 0 usa DefaultLowStockThreshold.
func NewRecorder(threshold int) *Recorder {
	if threshold <= 0 {
		threshold = DefaultLowStockThreshold
	}
	return &Recorder{LowStockThreshold: threshold}
}

// DeriveStatus estado según cantidad: <= 0 out-of-stock, < umbral low-stock, resto in-stock.
// No considera caducidad (ver fifo.EffectiveStatus).
func (r *Recorder) DeriveStatus(quantity int) entity.LotStatus {
	switch {
	case quantity <= 0:
		return entity.LotStatusOutOfStock
	case quantity < r.LowStockThreshold:
		return entity.LotStatusLowStock
	default:
		return entity.LotStatusInStock
	}
}

// Apply calcula el lote resultante y el movimiento de auditoría correspondiente.
// No modifica lot. Notes y ReferenceCode se copian tal cual.
func (r *Recorder) Apply(lot entity.Lot, spec MovementSpec) (entity.Lot, entity.Movement, error) {
	if err := validate(spec); err != nil {
		return lot, entity.Movement{}, err
	}
	at := spec.At
	if at.IsZero() {
		at = time.Now()
	}

	updated := lot
	switch spec.Type {
	case entity.MovementReception:
		updated.Quantity += spec.Quantity
		if spec.ToLocationID != nil {
			updated.LocationID = spec.ToLocationID
		}
	case entity.MovementDispatch:
		if lot.Quantity-spec.Quantity < 0 {
			return lot, entity.Movement{}, fmt.Errorf("%w: lote %s tiene %d, se piden %d",
				domain.ErrNegativeQuantity, lot.ID, lot.Quantity, spec.Quantity)
		}
		updated.Quantity -= spec.Quantity
	case entity.MovementTransfer:
		if spec.ToLocationID != nil {
			updated.LocationID = spec.ToLocationID
		}
	case entity.MovementReturn:
		updated.Quantity += spec.Quantity
	case entity.MovementAdjustment:
		updated.Quantity = spec.Quantity
	}
	updated.Status = r.DeriveStatus(updated.Quantity)
	updated.UpdatedAt = at

	var lotID *string
	if lot.ID != "" {
		id := lot.ID
		lotID = &id
	}
	mov := entity.Movement{
		LotID:          lotID,
		Type:           spec.Type,
		FromLocationID: spec.FromLocationID,
		ToLocationID:   spec.ToLocationID,
		Quantity:       spec.Quantity,
		PerformedBy:    spec.PerformedBy,
		ReferenceCode:  spec.ReferenceCode,
		Notes:          spec.Notes,
		CreatedAt:      at,
	}
	return updated, mov, nil
}

// Intent igual que Apply pero devuelve el par mutación+movimiento listo para persistir,
// con la cantidad esperada fijada a la leída en lot.
func (r *Recorder) Intent(lot entity.Lot, spec MovementSpec) (entity.Lot, entity.Intent, error) {
	updated, mov, err := r.Apply(lot, spec)
	if err != nil {
		return lot, entity.Intent{}, err
	}
	return updated, entity.Intent{
		Mutation: entity.LotMutation{
			LotID:            lot.ID,
			ExpectedQuantity: lot.Quantity,
			Quantity:         updated.Quantity,
			LocationID:       updated.LocationID,
			Status:           updated.Status,
			UpdatedAt:        updated.UpdatedAt,
		},
		Movement: mov,
	}, nil
}

func validate(spec MovementSpec) error {
	if !spec.Type.Valid() {
		return fmt.Errorf("%w: tipo de movimiento %q", domain.ErrInvalidInput, spec.Type)
	}
	if spec.Quantity < 0 {
		return fmt.Errorf("%w: %d", domain.ErrInvalidQuantity, spec.Quantity)
	}
	switch spec.Type {
	case entity.MovementReception, entity.MovementDispatch, entity.MovementReturn:
		if spec.Quantity == 0 {
			return fmt.Errorf("%w: %s requiere cantidad positiva", domain.ErrInvalidQuantity, spec.Type)
		}
	}
	return nil
}
