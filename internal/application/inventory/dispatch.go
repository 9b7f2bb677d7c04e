package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/holaaposmx/Controdealmacenfrio/internal/domain"
	"github.com/holaaposmx/Controdealmacenfrio/internal/domain/entity"
	"github.com/holaaposmx/Controdealmacenfrio/internal/domain/fifo"
	"github.com/holaaposmx/Controdealmacenfrio/internal/domain/repository"
	"github.com/holaaposmx/Controdealmacenfrio/internal/domain/stock"
)

// DefaultMaxRetries reintentos ante modificación concurrente de un lote.
const DefaultMaxRetries = 3

func newID() string { return uuid.New().String() }

// DispatchInput salida solicitada por el llamador (orden, pantalla de despacho).
type DispatchInput struct {
	ProductID     string
	Quantity      int
	PerformedBy   string
	ReferenceCode *string
	Notes         string
}

// DispatchResult asignaciones realizadas, lotes tras el despacho y movimientos registrados
// (uno por asignación, mismo orden).
type DispatchResult struct {
	Allocations []entity.Allocation
	Lots        []entity.Lot
	Movements   []entity.Movement
}

// DispatchUseCase despacha por FIFO: todo o nada, con escritura condicional y reintento.
type DispatchUseCase struct {
	txRunner   TxRunner
	locker     ProductLocker
	recorder   *stock.Recorder
	maxRetries int
	log        zerolog.Logger
	now        func() time.Time
}

// NewDispatchUseCase construye el caso de uso. maxRetries <= 0 usa DefaultMaxRetries.
func NewDispatchUseCase(txRunner TxRunner, locker ProductLocker, recorder *stock.Recorder, maxRetries int, log zerolog.Logger) *DispatchUseCase {
	if maxRetries <= 0 {
		maxRetries = DefaultMaxRetries
	}
	if recorder == nil {
		recorder = stock.NewRecorder(0)
	}
	return &DispatchUseCase{
		txRunner:   txRunner,
		locker:     locker,
		recorder:   recorder,
		maxRetries: maxRetries,
		log:        log,
		now:        time.Now,
	}
}

// WithClock reemplaza el reloj (tests).
func (uc *DispatchUseCase) WithClock(now func() time.Time) *DispatchUseCase {
	uc.now = now
	return uc
}

// DispatchByFIFO toma el lock del producto, lee sus lotes, planifica y aplica todas las
// mutaciones y movimientos en una transacción. Si otro escritor cambió un lote entre la
// lectura y la escritura, vuelve a leer y planificar hasta maxRetries veces.
func (uc *DispatchUseCase) DispatchByFIFO(ctx context.Context, in DispatchInput) (*DispatchResult, error) {
	if in.ProductID == "" {
		return nil, fmt.Errorf("%w: producto requerido", domain.ErrInvalidInput)
	}
	if in.Quantity <= 0 {
		return nil, fmt.Errorf("%w: %d", domain.ErrInvalidQuantity, in.Quantity)
	}

	if uc.locker != nil {
		unlock, err := uc.locker.Lock(ctx, in.ProductID)
		if err != nil {
			return nil, fmt.Errorf("bloquear producto %s: %w", in.ProductID, err)
		}
		defer unlock()
	}

	for attempt := 1; ; attempt++ {
		res, err := uc.attempt(ctx, in)
		if err == nil {
			uc.log.Info().
				Str("product_id", in.ProductID).
				Int("requested", in.Quantity).
				Int("lots", len(res.Allocations)).
				Int("attempt", attempt).
				Msg("despacho FIFO aplicado")
			return res, nil
		}
		if !errors.Is(err, domain.ErrConcurrentModification) || attempt >= uc.maxRetries {
			if errors.Is(err, domain.ErrConcurrentModification) {
				uc.log.Error().Str("product_id", in.ProductID).Int("attempts", attempt).Msg("despacho abortado por conflicto")
			}
			return nil, err
		}
		uc.log.Warn().Str("product_id", in.ProductID).Int("attempt", attempt).Msg("conflicto de concurrencia, reintentando despacho")
	}
}

func (uc *DispatchUseCase) attempt(ctx context.Context, in DispatchInput) (*DispatchResult, error) {
	var res *DispatchResult
	err := uc.txRunner.Run(ctx, func(lots repository.LotRepository, movements repository.MovementRepository) error {
		current, err := lots.ListByProduct(ctx, in.ProductID)
		if err != nil {
			return err
		}
		plan, err := fifo.PlanDispatch(current, fifo.DispatchRequest{
			ProductID:     in.ProductID,
			Quantity:      in.Quantity,
			PerformedBy:   in.PerformedBy,
			ReferenceCode: in.ReferenceCode,
			Notes:         in.Notes,
			At:            uc.now(),
		}, uc.recorder)
		if err != nil {
			return err
		}
		if err := applyIntents(ctx, lots, movements, plan.Intents); err != nil {
			return err
		}
		res = &DispatchResult{Allocations: plan.Allocations, Lots: plan.Updated}
		for _, it := range plan.Intents {
			res.Movements = append(res.Movements, it.Movement)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}
