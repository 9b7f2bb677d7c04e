package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/holaaposmx/Controdealmacenfrio/internal/domain"
	"github.com/holaaposmx/Controdealmacenfrio/internal/domain/entity"
	"github.com/holaaposmx/Controdealmacenfrio/internal/domain/fifo"
	"github.com/holaaposmx/Controdealmacenfrio/internal/domain/repository"
	"github.com/holaaposmx/Controdealmacenfrio/internal/domain/stock"
)

// MovementInput movimiento manual sobre un lote existente.
// Quantity es delta salvo en adjustment (cantidad absoluta).
type MovementInput struct {
	Type          entity.MovementType
	Quantity      int
	ToLocationID  *string
	PerformedBy   string
	ReferenceCode *string
	Notes         string
}

// MovementUseCase aplica movimientos a lotes y consulta lotes y su historial.
type MovementUseCase struct {
	txRunner     TxRunner
	lotRepo      repository.LotRepository
	movementRepo repository.MovementRepository
	locationRepo repository.LocationRepository
	recorder     *stock.Recorder
	log          zerolog.Logger
	now          func() time.Time
}

// NewMovementUseCase construye el caso de uso.
func NewMovementUseCase(
	txRunner TxRunner,
	lotRepo repository.LotRepository,
	movementRepo repository.MovementRepository,
	locationRepo repository.LocationRepository,
	recorder *stock.Recorder,
	log zerolog.Logger,
) *MovementUseCase {
	if recorder == nil {
		recorder = stock.NewRecorder(0)
	}
	return &MovementUseCase{
		txRunner:     txRunner,
		lotRepo:      lotRepo,
		movementRepo: movementRepo,
		locationRepo: locationRepo,
		recorder:     recorder,
		log:          log,
		now:          time.Now,
	}
}

// WithClock reemplaza el reloj (tests).
func (uc *MovementUseCase) WithClock(now func() time.Time) *MovementUseCase {
	uc.now = now
	return uc
}

// ApplyMovement lee el lote, recalcula cantidad y estado, y guarda lote y movimiento
// en la misma transacción. Devuelve el lote actualizado.
func (uc *MovementUseCase) ApplyMovement(ctx context.Context, lotID string, in MovementInput) (*entity.Lot, error) {
	if lotID == "" {
		return nil, fmt.Errorf("%w: lote requerido", domain.ErrInvalidInput)
	}
	if in.Type == entity.MovementTransfer && (in.ToLocationID == nil || *in.ToLocationID == "") {
		return nil, fmt.Errorf("%w: la transferencia requiere ubicación destino", domain.ErrInvalidInput)
	}
	if in.ToLocationID != nil && *in.ToLocationID != "" {
		loc, err := uc.locationRepo.GetByID(ctx, *in.ToLocationID)
		if err != nil {
			return nil, err
		}
		if loc == nil {
			return nil, fmt.Errorf("%w: ubicación %s", domain.ErrNotFound, *in.ToLocationID)
		}
	}

	var result entity.Lot
	err := uc.txRunner.Run(ctx, func(lots repository.LotRepository, movements repository.MovementRepository) error {
		lot, err := lots.GetByID(ctx, lotID)
		if err != nil {
			return err
		}
		if lot == nil {
			return fmt.Errorf("%w: lote %s", domain.ErrNotFound, lotID)
		}

		if in.Type == entity.MovementDispatch && !lot.HasLocation() {
			return &domain.MissingLocationError{LotID: lot.ID, ProductID: lot.ProductID}
		}

		spec := stock.MovementSpec{
			Type:          in.Type,
			Quantity:      in.Quantity,
			ToLocationID:  in.ToLocationID,
			PerformedBy:   in.PerformedBy,
			ReferenceCode: in.ReferenceCode,
			Notes:         in.Notes,
			At:            uc.now(),
		}
		switch in.Type {
		case entity.MovementDispatch, entity.MovementTransfer, entity.MovementAdjustment:
			spec.FromLocationID = lot.LocationID
		case entity.MovementReception, entity.MovementReturn:
			if spec.ToLocationID == nil {
				spec.ToLocationID = lot.LocationID
			}
		}

		if in.Type == entity.MovementTransfer || in.Type == entity.MovementReception {
			if err := uc.checkCapacity(ctx, lots, *lot, spec); err != nil {
				return err
			}
		}

		updated, intent, err := uc.recorder.Intent(*lot, spec)
		if err != nil {
			return err
		}
		if err := applyIntents(ctx, lots, movements, []entity.Intent{intent}); err != nil {
			return err
		}
		result = updated
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().
		Str("lot_id", lotID).
		Str("type", string(in.Type)).
		Int("quantity", result.Quantity).
		Msg("movimiento aplicado")
	return &result, nil
}

// checkCapacity verifica que la ubicación destino admita las unidades que entran.
func (uc *MovementUseCase) checkCapacity(ctx context.Context, lots repository.LotRepository, lot entity.Lot, spec stock.MovementSpec) error {
	if spec.ToLocationID == nil || *spec.ToLocationID == "" {
		return nil
	}
	incoming := spec.Quantity
	if spec.Type == entity.MovementTransfer {
		if lot.LocationID != nil && *lot.LocationID == *spec.ToLocationID {
			return nil
		}
		incoming = lot.Quantity
	}
	return ensureCapacity(ctx, uc.locationRepo, lots, *spec.ToLocationID, incoming)
}

// ensureCapacity ocupación + entrantes <= capacidad máxima; capacidad 0 = sin límite.
func ensureCapacity(ctx context.Context, locations repository.LocationRepository, lots repository.LotRepository, locationID string, incoming int) error {
	loc, err := locations.GetByID(ctx, locationID)
	if err != nil {
		return err
	}
	if loc == nil {
		return fmt.Errorf("%w: ubicación %s", domain.ErrNotFound, locationID)
	}
	if loc.MaxCapacity <= 0 {
		return nil
	}
	occupied, err := lots.SumByLocation(ctx, locationID)
	if err != nil {
		return err
	}
	if occupied+incoming > loc.MaxCapacity {
		return fmt.Errorf("%w: %s ocupación %d + %d > %d", domain.ErrLocationFull, loc.Code, occupied, incoming, loc.MaxCapacity)
	}
	return nil
}

// GetLot devuelve el lote con el estado efectivo (caducado prevalece).
func (uc *MovementUseCase) GetLot(ctx context.Context, id string) (*entity.Lot, error) {
	lot, err := uc.lotRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if lot == nil {
		return nil, domain.ErrNotFound
	}
	lot.Status = fifo.EffectiveStatus(*lot, uc.now())
	return lot, nil
}

// ListLots lista todos los lotes; con fifoOrder los ordena por caducidad.
func (uc *MovementUseCase) ListLots(ctx context.Context, fifoOrder bool) ([]entity.Lot, error) {
	lots, err := uc.lotRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	if fifoOrder {
		lots = fifo.OrderByFIFO(lots)
	}
	now := uc.now()
	for i := range lots {
		lots[i].Status = fifo.EffectiveStatus(lots[i], now)
	}
	return lots, nil
}

// ListMovements historial de un lote, más reciente primero.
func (uc *MovementUseCase) ListMovements(ctx context.Context, lotID string, limit, offset int) ([]entity.Movement, error) {
	if limit <= 0 {
		limit = 50
	}
	return uc.movementRepo.ListByLot(ctx, lotID, limit, offset)
}
