package usecase_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/holaaposmx/Controdealmacenfrio/internal/application/dto"
	"github.com/holaaposmx/Controdealmacenfrio/internal/application/usecase"
	"github.com/holaaposmx/Controdealmacenfrio/internal/domain"
	"github.com/holaaposmx/Controdealmacenfrio/internal/domain/entity"
	"github.com/holaaposmx/Controdealmacenfrio/internal/infrastructure/memory"
)

func TestLocationUseCase_CreaYCalculaOcupacion(t *testing.T) {
	s := memory.NewStore()
	uc := usecase.NewLocationUseCase(memory.NewLocationRepository(s), memory.NewLotRepository(s))
	ctx := context.Background()

	loc, err := uc.Create(ctx, dto.CreateLocationRequest{Code: "a-01", Type: entity.LocationTypeRack, StorageType: entity.StorageFrozen, MaxCapacity: 40})
	require.NoError(t, err)
	assert.Equal(t, "A-01", loc.Code)

	require.NoError(t, memory.NewLotRepository(s).Create(ctx, &entity.Lot{ID: "L1", ProductID: "P", Quantity: 10, LocationID: &loc.ID}))

	got, err := uc.GetByID(ctx, loc.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, got.CurrentOccupation)
	assert.Equal(t, "25", got.OccupancyPercentage.String())

	list, err := uc.List(ctx, 10, 0)
	require.NoError(t, err)
	require.Len(t, list.Items, 1)
	assert.Equal(t, 10, list.Items[0].CurrentOccupation)
}

func TestLocationUseCase_Validaciones(t *testing.T) {
	s := memory.NewStore()
	uc := usecase.NewLocationUseCase(memory.NewLocationRepository(s), memory.NewLotRepository(s))
	ctx := context.Background()

	_, err := uc.Create(ctx, dto.CreateLocationRequest{Code: "X", Type: "CAJON", StorageType: entity.StorageFrozen})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = uc.Create(ctx, dto.CreateLocationRequest{Code: "X", Type: entity.LocationTypeRack, StorageType: "seco"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.Create(ctx, dto.CreateLocationRequest{Code: "T-1", Type: entity.LocationTypeTarima, StorageType: entity.StorageConservation})
	require.NoError(t, err)
	_, err = uc.Create(ctx, dto.CreateLocationRequest{Code: "t-1", Type: entity.LocationTypeTarima, StorageType: entity.StorageConservation})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "código duplicado")

	_, err = uc.GetByID(ctx, "no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
