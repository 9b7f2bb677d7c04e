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

var (
	_ repository.TemperatureLogRepository  = (*TemperatureLogRepo)(nil)
	_ repository.QualityIncidentRepository = (*QualityIncidentRepo)(nil)
)

// TemperatureLogRepo lecturas de temperatura (temperature_logs). La temperatura es NUMERIC
// y se lee como decimal.Decimal gracias al codec registrado en el pool.
type TemperatureLogRepo struct {
	q Querier
}

// NewTemperatureLogRepository construye el adaptador.
func NewTemperatureLogRepository(q Querier) *TemperatureLogRepo {
	return &TemperatureLogRepo{q: q}
}

// Create registra una lectura.
func (r *TemperatureLogRepo) Create(ctx context.Context, t *entity.TemperatureLog) error {
	query := `
		INSERT INTO temperature_logs (id, storage_area, storage_type, temperature, status, recorded_by, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(ctx, query,
		t.ID, t.StorageArea, t.StorageType, t.Temperature, t.Status, t.RecordedBy, t.Notes, t.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert temperature log: %w", err)
	}
	return nil
}

// List lecturas más recientes primero; storageArea vacío no filtra.
func (r *TemperatureLogRepo) List(ctx context.Context, storageArea string, limit, offset int) ([]entity.TemperatureLog, error) {
	lim, off := pageArgs(limit, offset)
	query := `
		SELECT id, storage_area, storage_type, temperature, status, recorded_by, notes, created_at
		FROM temperature_logs
		WHERE ($1::text = '' OR storage_area = $1)
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(ctx, query, storageArea, lim, off)
	if err != nil {
		return nil, fmt.Errorf("list temperature logs: %w", err)
	}
	list, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (entity.TemperatureLog, error) {
		var t entity.TemperatureLog
		err := row.Scan(&t.ID, &t.StorageArea, &t.StorageType, &t.Temperature, &t.Status, &t.RecordedBy, &t.Notes, &t.CreatedAt)
		return t, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan temperature logs: %w", err)
	}
	return list, nil
}

const incidentColumns = `id, incident_type, description, severity, related_product_id, related_location_id,
	reported_by, status, resolution_notes, created_at, updated_at, resolved_at`

// QualityIncidentRepo incidencias de calidad (quality_incidents).
type QualityIncidentRepo struct {
	q Querier
}

// NewQualityIncidentRepository construye el adaptador.
func NewQualityIncidentRepository(q Querier) *QualityIncidentRepo {
	return &QualityIncidentRepo{q: q}
}

// Create registra una incidencia.
func (r *QualityIncidentRepo) Create(ctx context.Context, i *entity.QualityIncident) error {
	query := `
		INSERT INTO quality_incidents (` + incidentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.q.Exec(ctx, query,
		i.ID, i.IncidentType, i.Description, i.Severity, i.RelatedProductID, i.RelatedLocationID,
		i.ReportedBy, i.Status, i.ResolutionNotes, i.CreatedAt, i.UpdatedAt, i.ResolvedAt,
	)
	if err != nil {
		return fmt.Errorf("insert quality incident: %w", err)
	}
	return nil
}

// GetByID obtiene una incidencia por ID.
func (r *QualityIncidentRepo) GetByID(ctx context.Context, id string) (*entity.QualityIncident, error) {
	rows, err := r.q.Query(ctx, `SELECT `+incidentColumns+` FROM quality_incidents WHERE id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("get quality incident: %w", err)
	}
	i, err := pgx.CollectOneRow(rows, scanIncident)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get quality incident: %w", err)
	}
	return &i, nil
}

// Update guarda estado, notas de resolución y fechas.
func (r *QualityIncidentRepo) Update(ctx context.Context, i *entity.QualityIncident) error {
	query := `
		UPDATE quality_incidents
		SET status = $2, resolution_notes = $3, updated_at = $4, resolved_at = $5
		WHERE id = $1`
	cmd, err := r.q.Exec(ctx, query, i.ID, i.Status, i.ResolutionNotes, i.UpdatedAt, i.ResolvedAt)
	if err != nil {
		return fmt.Errorf("update quality incident: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("%w: incidencia %s", domain.ErrNotFound, i.ID)
	}
	return nil
}

// List incidencias más recientes primero; status vacío no filtra.
func (r *QualityIncidentRepo) List(ctx context.Context, status string, limit, offset int) ([]entity.QualityIncident, error) {
	lim, off := pageArgs(limit, offset)
	query := `SELECT ` + incidentColumns + `
		FROM quality_incidents
		WHERE ($1::text = '' OR status = $1)
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(ctx, query, status, lim, off)
	if err != nil {
		return nil, fmt.Errorf("list quality incidents: %w", err)
	}
	list, err := pgx.CollectRows(rows, scanIncident)
	if err != nil {
		return nil, fmt.Errorf("scan quality incidents: %w", err)
	}
	return list, nil
}

func scanIncident(row pgx.CollectableRow) (entity.QualityIncident, error) {
	var i entity.QualityIncident
	err := row.Scan(
		&i.ID, &i.IncidentType, &i.Description, &i.Severity, &i.RelatedProductID, &i.RelatedLocationID,
		&i.ReportedBy, &i.Status, &i.ResolutionNotes, &i.CreatedAt, &i.UpdatedAt, &i.ResolvedAt,
	)
	return i, err
}
