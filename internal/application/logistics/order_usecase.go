// Package logistics órdenes de salida: alta, despacho FIFO por partida y devoluciones.
package logistics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/holaaposmx/Controdealmacenfrio/internal/application/inventory"
	"github.com/holaaposmx/Controdealmacenfrio/internal/domain"
	"github.com/holaaposmx/Controdealmacenfrio/internal/domain/entity"
	"github.com/holaaposmx/Controdealmacenfrio/internal/domain/repository"
)

// Dispatcher despacho FIFO de un producto (inventory.DispatchUseCase).
type Dispatcher interface {
	DispatchByFIFO(ctx context.Context, in inventory.DispatchInput) (*inventory.DispatchResult, error)
}

// MovementApplier aplica un movimiento a un lote (inventory.MovementUseCase).
type MovementApplier interface {
	ApplyMovement(ctx context.Context, lotID string, in inventory.MovementInput) (*entity.Lot, error)
}

// CreateOrderInput alta de orden.
type CreateOrderInput struct {
	OrderNumber string
	Customer    string
	Status      string // vacío = pending
	OrderDate   time.Time
	Notes       string
	Items       []OrderItemInput
}

// OrderItemInput partida: lote de referencia (define el producto) y cantidad.
type OrderItemInput struct {
	LotID    string
	Quantity int
}

// ReturnItem unidades devueltas de un lote.
type ReturnItem struct {
	LotID    string
	Quantity int
	Reason   string
}

// UpdateStatusInput cambio manual de estado.
type UpdateStatusInput struct {
	Status       string
	ShippingDate *time.Time
	DeliveryDate *time.Time
	Notes        string
}

// OrderUseCase casos de uso de logística.
type OrderUseCase struct {
	orders     repository.OrderRepository
	lots       repository.LotRepository
	history    repository.MovementRepository
	dispatcher Dispatcher
	movements  MovementApplier
	log        zerolog.Logger
	now        func() time.Time
}

// NewOrderUseCase construye el caso de uso.
func NewOrderUseCase(
	orders repository.OrderRepository,
	lots repository.LotRepository,
	history repository.MovementRepository,
	dispatcher Dispatcher,
	movements MovementApplier,
	log zerolog.Logger,
) *OrderUseCase {
	return &OrderUseCase{
		orders:     orders,
		lots:       lots,
		history:    history,
		dispatcher: dispatcher,
		movements:  movements,
		log:        log,
		now:        time.Now,
	}
}

// WithClock reemplaza el reloj (tests, zona horaria de la app).
func (uc *OrderUseCase) WithClock(now func() time.Time) *OrderUseCase {
	uc.now = now
	return uc
}

// Create valida y guarda la orden con sus partidas.
func (uc *OrderUseCase) Create(ctx context.Context, in CreateOrderInput) (*entity.Order, error) {
	in.OrderNumber = strings.TrimSpace(in.OrderNumber)
	in.Customer = strings.TrimSpace(in.Customer)
	if in.OrderNumber == "" || in.Customer == "" {
		return nil, fmt.Errorf("%w: número de orden y cliente requeridos", domain.ErrInvalidInput)
	}
	if in.Status == "" {
		in.Status = entity.OrderPending
	}
	if !entity.ValidOrderStatus(in.Status) {
		return nil, fmt.Errorf("%w: estado %q", domain.ErrInvalidInput, in.Status)
	}

	now := uc.now()
	orderDate := in.OrderDate
	if orderDate.IsZero() {
		orderDate = now
	}
	o := &entity.Order{
		ID:          uuid.New().String(),
		OrderNumber: in.OrderNumber,
		Customer:    in.Customer,
		Status:      in.Status,
		OrderDate:   orderDate,
		Notes:       in.Notes,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	for _, it := range in.Items {
		if it.Quantity <= 0 {
			return nil, fmt.Errorf("%w: partida con cantidad %d", domain.ErrInvalidQuantity, it.Quantity)
		}
		lot, err := uc.lots.GetByID(ctx, it.LotID)
		if err != nil {
			return nil, err
		}
		if lot == nil {
			return nil, fmt.Errorf("%w: lote %s", domain.ErrNotFound, it.LotID)
		}
		o.Items = append(o.Items, entity.OrderItem{
			ID:        uuid.New().String(),
			OrderID:   o.ID,
			LotID:     it.LotID,
			Quantity:  it.Quantity,
			CreatedAt: now,
		})
		o.TotalItems += it.Quantity
	}
	if err := uc.orders.Create(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

// Get orden con partidas.
func (uc *OrderUseCase) Get(ctx context.Context, id string) (*entity.Order, error) {
	o, err := uc.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, domain.ErrNotFound
	}
	return o, nil
}

// List órdenes, filtradas por estado si status no es vacío.
func (uc *OrderUseCase) List(ctx context.Context, status string, limit, offset int) ([]entity.Order, error) {
	if status != "" && !entity.ValidOrderStatus(status) {
		return nil, fmt.Errorf("%w: estado %q", domain.ErrInvalidInput, status)
	}
	if limit <= 0 {
		limit = 50
	}
	return uc.orders.List(ctx, status, limit, offset)
}

// UpdateStatus cambia el estado y, si se indican, fechas y notas.
func (uc *OrderUseCase) UpdateStatus(ctx context.Context, id string, in UpdateStatusInput) (*entity.Order, error) {
	if !entity.ValidOrderStatus(in.Status) {
		return nil, fmt.Errorf("%w: estado %q", domain.ErrInvalidInput, in.Status)
	}
	o, err := uc.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	o.Status = in.Status
	if in.ShippingDate != nil {
		o.ShippingDate = in.ShippingDate
	}
	if in.DeliveryDate != nil {
		o.DeliveryDate = in.DeliveryDate
	}
	if in.Notes != "" {
		o.Notes = in.Notes
	}
	o.UpdatedAt = uc.now()
	if err := uc.orders.Update(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

// ProcessForShipping despacha por FIFO cada partida (el lote de la partida solo define el
// producto) con referencia al número de orden, y marca la orden como enviada.
// Si una partida falla, las anteriores ya quedaron despachadas y la orden no cambia de estado.
func (uc *OrderUseCase) ProcessForShipping(ctx context.Context, orderID, processedBy string) (*entity.Order, error) {
	o, err := uc.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if len(o.Items) == 0 {
		return nil, fmt.Errorf("%w: la orden %s no tiene partidas", domain.ErrInvalidInput, o.OrderNumber)
	}
	switch o.Status {
	case entity.OrderShipped, entity.OrderDelivered, entity.OrderCancelled:
		return nil, fmt.Errorf("%w: la orden %s está %s", domain.ErrInvalidInput, o.OrderNumber, o.Status)
	}

	ref := o.OrderNumber
	// Un intento previo fallido pudo despachar ya algunas partidas bajo este número de orden.
	done, err := uc.dispatchedByProduct(ctx, ref)
	if err != nil {
		return nil, err
	}
	for _, it := range o.Items {
		lot, err := uc.lots.GetByID(ctx, it.LotID)
		if err != nil {
			return nil, err
		}
		if lot == nil {
			return nil, fmt.Errorf("%w: lote %s de la orden %s", domain.ErrNotFound, it.LotID, o.OrderNumber)
		}
		need := it.Quantity
		covered := min(need, done[lot.ProductID])
		done[lot.ProductID] -= covered
		need -= covered
		if need == 0 {
			uc.log.Debug().Str("order", o.OrderNumber).Str("product_id", lot.ProductID).Msg("partida ya despachada")
			continue
		}
		_, err = uc.dispatcher.DispatchByFIFO(ctx, inventory.DispatchInput{
			ProductID:     lot.ProductID,
			Quantity:      need,
			PerformedBy:   processedBy,
			ReferenceCode: &ref,
			Notes:         fmt.Sprintf("Despachado para orden %s (FIFO)", o.OrderNumber),
		})
		if err != nil {
			uc.log.Error().Err(err).Str("order", o.OrderNumber).Str("product_id", lot.ProductID).Msg("fallo al despachar partida")
			return nil, fmt.Errorf("procesar producto %s: %w", lot.ProductID, err)
		}
	}

	now := uc.now()
	shipped := dayOf(now)
	o.Status = entity.OrderShipped
	o.ShippingDate = &shipped
	o.UpdatedAt = now
	if err := uc.orders.Update(ctx, o); err != nil {
		return nil, err
	}
	uc.log.Info().Str("order", o.OrderNumber).Int("items", len(o.Items)).Msg("orden enviada")
	return o, nil
}

// ProcessReturn reingresa unidades a sus lotes (en su ubicación actual) y anota la
// devolución en la orden.
func (uc *OrderUseCase) ProcessReturn(ctx context.Context, orderID string, items []ReturnItem, processedBy string) (*entity.Order, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: sin partidas a devolver", domain.ErrInvalidInput)
	}
	o, err := uc.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}

	ref := o.OrderNumber
	for _, it := range items {
		if it.Quantity <= 0 {
			return nil, fmt.Errorf("%w: devolución con cantidad %d", domain.ErrInvalidQuantity, it.Quantity)
		}
		lot, err := uc.lots.GetByID(ctx, it.LotID)
		if err != nil {
			return nil, err
		}
		if lot == nil {
			return nil, fmt.Errorf("%w: lote %s", domain.ErrNotFound, it.LotID)
		}
		if !lot.HasLocation() {
			return nil, &domain.MissingLocationError{LotID: lot.ID, ProductID: lot.ProductID}
		}
		_, err = uc.movements.ApplyMovement(ctx, lot.ID, inventory.MovementInput{
			Type:          entity.MovementReturn,
			Quantity:      it.Quantity,
			ToLocationID:  lot.LocationID,
			PerformedBy:   processedBy,
			ReferenceCode: &ref,
			Notes:         fmt.Sprintf("Devolución de la orden %s: %s", o.OrderNumber, it.Reason),
		})
		if err != nil {
			return nil, fmt.Errorf("devolver lote %s: %w", lot.ID, err)
		}
	}

	now := uc.now()
	note := fmt.Sprintf("Devolución procesada el %s por %s", now.Format("2006-01-02"), processedBy)
	if o.Notes != "" {
		o.Notes += "\n" + note
	} else {
		o.Notes = note
	}
	o.UpdatedAt = now
	if err := uc.orders.Update(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

// dispatchedByProduct unidades ya despachadas con la referencia dada, por producto.
func (uc *OrderUseCase) dispatchedByProduct(ctx context.Context, ref string) (map[string]int, error) {
	movs, err := uc.history.ListByReference(ctx, ref)
	if err != nil {
		return nil, err
	}
	done := map[string]int{}
	productOf := map[string]string{}
	for _, m := range movs {
		if m.Type != entity.MovementDispatch || m.LotID == nil {
			continue
		}
		pid, ok := productOf[*m.LotID]
		if !ok {
			lot, err := uc.lots.GetByID(ctx, *m.LotID)
			if err != nil {
				return nil, err
			}
			if lot == nil {
				continue
			}
			pid = lot.ProductID
			productOf[*m.LotID] = pid
		}
		done[pid] += m.Quantity
	}
	return done, nil
}

func dayOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
