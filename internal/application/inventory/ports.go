package inventory

import (
	"context"
	"time"

	"github.com/holaaposmx/Controdealmacenfrio/internal/domain/entity"
	"github.com/holaaposmx/Controdealmacenfrio/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción, pasando repositorios atados a ella.
// Si fn devuelve error no se persiste nada (mutación de lote y movimiento van juntos).
type TxRunner interface {
	Run(ctx context.Context, fn func(
		lots repository.LotRepository,
		movements repository.MovementRepository,
	) error) error
}

// ProductLocker serializa despachos del mismo producto (un escritor por producto).
// unlock debe llamarse siempre que err sea nil.
type ProductLocker interface {
	Lock(ctx context.Context, productID string) (unlock func(), err error)
}

// ExpirationReportGenerator genera el PDF de lotes próximos a caducar.
type ExpirationReportGenerator interface {
	GenerateExpirationReport(rows []entity.ExpirationRow, days int, generatedAt time.Time) ([]byte, error)
}

// applyIntents persiste cada par mutación+movimiento dentro de la transacción en curso.
func applyIntents(ctx context.Context, lots repository.LotRepository, movements repository.MovementRepository, intents []entity.Intent) error {
	for i := range intents {
		if err := lots.UpdateQuantity(ctx, intents[i].Mutation); err != nil {
			return err
		}
		mov := intents[i].Movement
		if mov.ID == "" {
			mov.ID = newID()
		}
		if err := movements.Append(ctx, &mov); err != nil {
			return err
		}
		intents[i].Movement = mov
	}
	return nil
}
