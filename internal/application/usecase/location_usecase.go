package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/holaaposmx/Controdealmacenfrio/internal/application/dto"
	"github.com/holaaposmx/Controdealmacenfrio/internal/domain"
	"github.com/holaaposmx/Controdealmacenfrio/internal/domain/entity"
	"github.com/holaaposmx/Controdealmacenfrio/internal/domain/repository"
)

// LocationUseCase casos de uso de ubicaciones (racks, tarimas y cámaras).
type LocationUseCase struct {
	repo    repository.LocationRepository
	lotRepo repository.LotRepository
}

// NewLocationUseCase construye el caso de uso.
func NewLocationUseCase(repo repository.LocationRepository, lotRepo repository.LotRepository) *LocationUseCase {
	return &LocationUseCase{repo: repo, lotRepo: lotRepo}
}

// Create crea una nueva ubicación. El código es único.
func (uc *LocationUseCase) Create(ctx context.Context, in dto.CreateLocationRequest) (*dto.LocationResponse, error) {
	code := strings.ToUpper(strings.TrimSpace(in.Code))
	if code == "" || in.MaxCapacity < 0 {
		return nil, domain.ErrInvalidInput
	}
	switch in.Type {
	case entity.LocationTypeRack, entity.LocationTypeTarima, entity.LocationTypeChamber:
	default:
		return nil, fmt.Errorf("%w: tipo de ubicación %q", domain.ErrInvalidInput, in.Type)
	}
	switch in.StorageType {
	case entity.StorageConservation, entity.StorageFrozen:
	default:
		return nil, fmt.Errorf("%w: tipo de almacenamiento %q", domain.ErrInvalidInput, in.StorageType)
	}
	existing, err := uc.repo.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: el código %s ya existe", domain.ErrInvalidInput, code)
	}

	now := time.Now()
	loc := &entity.Location{
		ID:          uuid.New().String(),
		Code:        code,
		Type:        in.Type,
		Zone:        in.Zone,
		StorageType: in.StorageType,
		MaxCapacity: in.MaxCapacity,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.repo.Create(ctx, loc); err != nil {
		return nil, err
	}
	return toLocationResponse(loc, 0), nil
}

// GetByID obtiene una ubicación con su ocupación actual.
func (uc *LocationUseCase) GetByID(ctx context.Context, id string) (*dto.LocationResponse, error) {
	loc, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if loc == nil {
		return nil, domain.ErrNotFound
	}
	occupied, err := uc.lotRepo.SumByLocation(ctx, loc.ID)
	if err != nil {
		return nil, err
	}
	return toLocationResponse(loc, occupied), nil
}

// List lista ubicaciones con paginación.
func (uc *LocationUseCase) List(ctx context.Context, limit, offset int) (*dto.LocationListResponse, error) {
	list, err := uc.repo.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.LocationResponse, 0, len(list))
	for i := range list {
		occupied, err := uc.lotRepo.SumByLocation(ctx, list[i].ID)
		if err != nil {
			return nil, err
		}
		items = append(items, *toLocationResponse(&list[i], occupied))
	}
	return &dto.LocationListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: limit, Offset: offset},
	}, nil
}

func toLocationResponse(l *entity.Location, occupied int) *dto.LocationResponse {
	pct := decimal.Zero
	if l.MaxCapacity > 0 {
		pct = decimal.NewFromInt(int64(occupied)).
			Mul(decimal.NewFromInt(100)).
			Div(decimal.NewFromInt(int64(l.MaxCapacity))).
			Round(2)
	}
	return &dto.LocationResponse{
		ID:                  l.ID,
		Code:                l.Code,
		Type:                l.Type,
		Zone:                l.Zone,
		StorageType:         l.StorageType,
		MaxCapacity:         l.MaxCapacity,
		CurrentOccupation:   occupied,
		OccupancyPercentage: pct,
		CreatedAt:           l.CreatedAt,
		UpdatedAt:           l.UpdatedAt,
	}
}
