package fifo

import (
	"fmt"
	"time"

	"github.com/holaaposmx/Controdealmacenfrio/internal/domain"
	"github.com/holaaposmx/Controdealmacenfrio/internal/domain/entity"
	"github.com/holaaposmx/Controdealmacenfrio/internal/domain/stock"
)

// DispatchRequest salida solicitada de un producto.
type DispatchRequest struct {
	ProductID     string
	Quantity      int
	PerformedBy   string
	ReferenceCode *string
	Notes         string
	At            time.Time
}

// DispatchPlan resultado de planificar un despacho: una asignación, un intent y un lote
// actualizado por cada lote tocado, en el mismo orden.
type DispatchPlan struct {
	Allocations []entity.Allocation
	Intents     []entity.Intent
	Updated     []entity.Lot
}

// Available total de unidades disponibles del producto en lots.
func Available(lots []entity.Lot, productID string) int {
	total := 0
	for _, l := range lots {
		if l.ProductID == productID && l.Quantity > 0 {
			total += l.Quantity
		}
	}
	return total
}

// PlanDispatch recorre los lotes del producto en orden FIFO tomando min(cantidad, restante)
// de cada uno hasta cubrir req.Quantity. No persiste nada: o devuelve el plan completo o un error.
func PlanDispatch(lots []entity.Lot, req DispatchRequest, rec *stock.Recorder) (*DispatchPlan, error) {
	if req.Quantity <= 0 {
		return nil, fmt.Errorf("%w: %d", domain.ErrInvalidQuantity, req.Quantity)
	}
	if rec == nil {
		rec = stock.NewRecorder(0)
	}

	candidates := make([]entity.Lot, 0, len(lots))
	for _, l := range lots {
		if l.ProductID == req.ProductID && l.Quantity > 0 {
			candidates = append(candidates, l)
		}
	}
	if len(candidates) == 0 {
		return nil, fmt.Errorf("%w: producto %s", domain.ErrOutOfStock, req.ProductID)
	}
	available := Available(candidates, req.ProductID)
	if available < req.Quantity {
		return nil, &domain.InsufficientInventoryError{
			ProductID: req.ProductID,
			Requested: req.Quantity,
			Available: available,
		}
	}

	plan := &DispatchPlan{}
	remaining := req.Quantity
	for _, l := range OrderByFIFO(candidates) {
		if remaining == 0 {
			break
		}
		if !l.HasLocation() {
			return nil, &domain.MissingLocationError{LotID: l.ID, ProductID: l.ProductID}
		}
		take := min(l.Quantity, remaining)
		updated, intent, err := rec.Intent(l, stock.MovementSpec{
			Type:           entity.MovementDispatch,
			Quantity:       take,
			FromLocationID: l.LocationID,
			PerformedBy:    req.PerformedBy,
			ReferenceCode:  req.ReferenceCode,
			Notes:          req.Notes,
			At:             req.At,
		})
		if err != nil {
			return nil, err
		}
		plan.Allocations = append(plan.Allocations, entity.Allocation{Lot: l, QuantityTaken: take})
		plan.Intents = append(plan.Intents, intent)
		plan.Updated = append(plan.Updated, updated)
		remaining -= take
	}
	return plan, nil
}

// Taken suma de unidades asignadas en el plan.
func (p *DispatchPlan) Taken() int {
	total := 0
	for _, a := range p.Allocations {
		total += a.QuantityTaken
	}
	return total
}
