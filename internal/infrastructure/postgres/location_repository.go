package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/holaaposmx/Controdealmacenfrio/internal/domain"
	"github.com/holaaposmx/Controdealmacenfrio/internal/domain/entity"
	"github.com/holaaposmx/Controdealmacenfrio/internal/domain/repository"
)

var _ repository.LocationRepository = (*LocationRepo)(nil)

const locationColumns = `id, code, type, zone, storage_type, max_capacity, created_at, updated_at`

// LocationRepo implementación del puerto LocationRepository sobre warehouse_locations.
type LocationRepo struct {
	q Querier
}

// NewLocationRepository construye el adaptador de persistencia para ubicaciones.
func NewLocationRepository(q Querier) *LocationRepo {
	return &LocationRepo{q: q}
}

// Create persiste una nueva ubicación. El código es único sin distinguir mayúsculas.
func (r *LocationRepo) Create(ctx context.Context, l *entity.Location) error {
	query := `
		INSERT INTO warehouse_locations (` + locationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(ctx, query,
		l.ID, l.Code, l.Type, l.Zone, l.StorageType, l.MaxCapacity, l.CreatedAt, l.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: código de ubicación %s duplicado", domain.ErrInvalidInput, l.Code)
		}
		return fmt.Errorf("insert location: %w", err)
	}
	return nil
}

// GetByID obtiene una ubicación por ID.
func (r *LocationRepo) GetByID(ctx context.Context, id string) (*entity.Location, error) {
	return r.getOne(ctx, `SELECT `+locationColumns+` FROM warehouse_locations WHERE id = $1`, id)
}

// GetByCode obtiene una ubicación por código.
func (r *LocationRepo) GetByCode(ctx context.Context, code string) (*entity.Location, error) {
	return r.getOne(ctx, `SELECT `+locationColumns+` FROM warehouse_locations WHERE upper(code) = upper($1)`, code)
}

// List ubicaciones ordenadas por código.
func (r *LocationRepo) List(ctx context.Context, limit, offset int) ([]entity.Location, error) {
	lim, off := pageArgs(limit, offset)
	rows, err := r.q.Query(ctx,
		`SELECT `+locationColumns+` FROM warehouse_locations ORDER BY code LIMIT $1 OFFSET $2`, lim, off)
	if err != nil {
		return nil, fmt.Errorf("list locations: %w", err)
	}
	list, err := pgx.CollectRows(rows, scanLocation)
	if err != nil {
		return nil, fmt.Errorf("scan locations: %w", err)
	}
	return list, nil
}

func (r *LocationRepo) getOne(ctx context.Context, query string, arg string) (*entity.Location, error) {
	rows, err := r.q.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("get location: %w", err)
	}
	l, err := pgx.CollectOneRow(rows, scanLocation)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get location: %w", err)
	}
	return &l, nil
}

func scanLocation(row pgx.CollectableRow) (entity.Location, error) {
	var l entity.Location
	err := row.Scan(&l.ID, &l.Code, &l.Type, &l.Zone, &l.StorageType, &l.MaxCapacity, &l.CreatedAt, &l.UpdatedAt)
	return l, err
}
