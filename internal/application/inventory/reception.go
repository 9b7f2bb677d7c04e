package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/holaaposmx/Controdealmacenfrio/internal/domain"
	"github.com/holaaposmx/Controdealmacenfrio/internal/domain/entity"
	"github.com/holaaposmx/Controdealmacenfrio/internal/domain/repository"
	"github.com/holaaposmx/Controdealmacenfrio/internal/domain/stock"
)

// ReceptionNote nota del movimiento de entrada inicial de un lote.
const ReceptionNote = "Recepción inicial de inventario"

// ReceiveInput datos de un lote recibido.
type ReceiveInput struct {
	ProductID      string
	ProductName    string
	Category       string
	Quantity       int
	LocationID     *string
	LotNumber      string
	ReceivedDate   time.Time // cero = hoy
	ExpirationDate *time.Time
	PerformedBy    string
}

// ReceptionUseCase da de alta lotes recibidos.
type ReceptionUseCase struct {
	txRunner     TxRunner
	locationRepo repository.LocationRepository
	recorder     *stock.Recorder
	log          zerolog.Logger
	now          func() time.Time
}

// NewReceptionUseCase construye el caso de uso.
func NewReceptionUseCase(txRunner TxRunner, locationRepo repository.LocationRepository, recorder *stock.Recorder, log zerolog.Logger) *ReceptionUseCase {
	if recorder == nil {
		recorder = stock.NewRecorder(0)
	}
	return &ReceptionUseCase{txRunner: txRunner, locationRepo: locationRepo, recorder: recorder, log: log, now: time.Now}
}

// WithClock reemplaza el reloj (tests).
func (uc *ReceptionUseCase) WithClock(now func() time.Time) *ReceptionUseCase {
	uc.now = now
	return uc
}

// Receive crea el lote en cero y le aplica una recepción, así la cantidad inicial queda
// respaldada por su movimiento.
func (uc *ReceptionUseCase) Receive(ctx context.Context, in ReceiveInput) (*entity.Lot, error) {
	if in.ProductID == "" || in.ProductName == "" {
		return nil, fmt.Errorf("%w: producto requerido", domain.ErrInvalidInput)
	}
	if in.Quantity <= 0 {
		return nil, fmt.Errorf("%w: %d", domain.ErrInvalidQuantity, in.Quantity)
	}
	if in.LocationID != nil && *in.LocationID == "" {
		in.LocationID = nil
	}

	now := uc.now()
	received := in.ReceivedDate
	if received.IsZero() {
		received = now
	}
	lotNumber := in.LotNumber
	if lotNumber == "" {
		lotNumber = fmt.Sprintf("LOT-%s-%s", now.Format("20060102"), newID()[:8])
	}

	base := entity.Lot{
		ID:             newID(),
		ProductID:      in.ProductID,
		ProductName:    in.ProductName,
		Category:       in.Category,
		LotNumber:      lotNumber,
		ReceivedDate:   received,
		ExpirationDate: in.ExpirationDate,
		CreatedAt:      now,
	}
	ref := lotNumber
	lot, mov, err := uc.recorder.Apply(base, stock.MovementSpec{
		Type:          entity.MovementReception,
		Quantity:      in.Quantity,
		ToLocationID:  in.LocationID,
		PerformedBy:   in.PerformedBy,
		ReferenceCode: &ref,
		Notes:         ReceptionNote,
		At:            now,
	})
	if err != nil {
		return nil, err
	}
	mov.ID = newID()

	err = uc.txRunner.Run(ctx, func(lots repository.LotRepository, movements repository.MovementRepository) error {
		if in.LocationID != nil {
			if err := ensureCapacity(ctx, uc.locationRepo, lots, *in.LocationID, in.Quantity); err != nil {
				return err
			}
		}
		if err := lots.Create(ctx, &lot); err != nil {
			return err
		}
		return movements.Append(ctx, &mov)
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().
		Str("lot_id", lot.ID).
		Str("product_id", lot.ProductID).
		Int("quantity", lot.Quantity).
		Msg("lote recibido")
	return &lot, nil
}
