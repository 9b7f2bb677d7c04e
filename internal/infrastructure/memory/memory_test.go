package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/holaaposmx/Controdealmacenfrio/internal/domain"
	"github.com/holaaposmx/Controdealmacenfrio/internal/domain/entity"
	"github.com/holaaposmx/Controdealmacenfrio/internal/domain/repository"
	"github.com/holaaposmx/Controdealmacenfrio/internal/infrastructure/memory"
)

func seedLot(t *testing.T, s *memory.Store, id string, qty int) {
	t.Helper()
	loc := "R1"
	require.NoError(t, memory.NewLotRepository(s).Create(context.Background(), &entity.Lot{
		ID: id, ProductID: "P", Quantity: qty, LocationID: &loc, Status: entity.LotStatusInStock,
	}))
}

func TestTxRunner_ConfirmaMutacionYMovimiento(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()
	seedLot(t, s, "L1", 10)

	err := memory.NewTxRunner(s).Run(ctx, func(lots repository.LotRepository, movs repository.MovementRepository) error {
		require.NoError(t, lots.UpdateQuantity(ctx, entity.LotMutation{LotID: "L1", ExpectedQuantity: 10, Quantity: 4, Status: entity.LotStatusLowStock}))
		got, err := lots.GetByID(ctx, "L1")
		require.NoError(t, err)
		assert.Equal(t, 4, got.Quantity, "la transacción ve sus propias escrituras")

		id := "L1"
		return movs.Append(ctx, &entity.Movement{ID: "M1", LotID: &id, Type: entity.MovementDispatch, Quantity: 6})
	})
	require.NoError(t, err)

	l, _ := memory.NewLotRepository(s).GetByID(ctx, "L1")
	assert.Equal(t, 4, l.Quantity)
	assert.Len(t, s.Movements(), 1)
}

func TestTxRunner_ErrorNoPersisteNada(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()
	seedLot(t, s, "L1", 10)

	err := memory.NewTxRunner(s).Run(ctx, func(lots repository.LotRepository, movs repository.MovementRepository) error {
		require.NoError(t, lots.UpdateQuantity(ctx, entity.LotMutation{LotID: "L1", ExpectedQuantity: 10, Quantity: 0}))
		require.NoError(t, movs.Append(ctx, &entity.Movement{ID: "M1"}))
		return errors.New("fallo del llamador")
	})
	require.Error(t, err)

	l, _ := memory.NewLotRepository(s).GetByID(ctx, "L1")
	assert.Equal(t, 10, l.Quantity)
	assert.Empty(t, s.Movements())
}

func TestTxRunner_ConflictoAlConfirmar(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()
	seedLot(t, s, "L1", 10)
	direct := memory.NewLotRepository(s)

	err := memory.NewTxRunner(s).Run(ctx, func(lots repository.LotRepository, movs repository.MovementRepository) error {
		require.NoError(t, lots.UpdateQuantity(ctx, entity.LotMutation{LotID: "L1", ExpectedQuantity: 10, Quantity: 5}))
		// Otro escritor gana la carrera antes de confirmar.
		require.NoError(t, direct.UpdateQuantity(ctx, entity.LotMutation{LotID: "L1", ExpectedQuantity: 10, Quantity: 7}))
		return movs.Append(ctx, &entity.Movement{ID: "M1"})
	})
	assert.ErrorIs(t, err, domain.ErrConcurrentModification)

	l, _ := direct.GetByID(ctx, "L1")
	assert.Equal(t, 7, l.Quantity)
	assert.Empty(t, s.Movements())
}

func TestLotRepo_UpdateQuantityRechazaCantidadObsoleta(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()
	seedLot(t, s, "L1", 10)

	err := memory.NewLotRepository(s).UpdateQuantity(ctx, entity.LotMutation{LotID: "L1", ExpectedQuantity: 9, Quantity: 1})
	assert.ErrorIs(t, err, domain.ErrConcurrentModification)
}

func TestLotRepo_ListByProductYSumByLocation(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()
	seedLot(t, s, "L1", 10)
	seedLot(t, s, "L2", 0)
	seedLot(t, s, "L3", 5)
	repo := memory.NewLotRepository(s)

	lots, err := repo.ListByProduct(ctx, "P")
	require.NoError(t, err)
	assert.Len(t, lots, 2, "solo lotes con existencias")

	sum, err := repo.SumByLocation(ctx, "R1")
	require.NoError(t, err)
	assert.Equal(t, 15, sum)
}

func TestProductLocker_SerializaYRespetaContexto(t *testing.T) {
	l := memory.NewProductLocker()
	unlock, err := l.Lock(context.Background(), "P")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = l.Lock(ctx, "P")
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	other, err := l.Lock(context.Background(), "Q")
	require.NoError(t, err, "otro producto no espera")
	other()

	unlock()
	unlock()
	again, err := l.Lock(context.Background(), "P")
	require.NoError(t, err)
	again()
}
