package postgres

import (
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	migratepgx "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/rs/zerolog"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

func newMigrator(pool *pgxpool.Pool) (*migrate.Migrate, error) {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("migraciones embebidas: %w", err)
	}
	db := stdlib.OpenDBFromPool(pool)
	driver, err := migratepgx.WithInstance(db, &migratepgx.Config{})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("driver de migración: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "pgx5", driver)
	if err != nil {
		return nil, fmt.Errorf("crear migrador: %w", err)
	}
	return m, nil
}

// Migrate aplica las migraciones embebidas pendientes sobre el pool.
func Migrate(pool *pgxpool.Pool, log zerolog.Logger) error {
	m, err := newMigrator(pool)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			log.Debug().Msg("esquema al día")
			return nil
		}
		return fmt.Errorf("aplicar migraciones: %w", err)
	}
	return logVersion(m, log, "migraciones aplicadas")
}

// MigrateDown revierte steps migraciones (todas si steps <= 0).
func MigrateDown(pool *pgxpool.Pool, steps int, log zerolog.Logger) error {
	m, err := newMigrator(pool)
	if err != nil {
		return err
	}
	defer m.Close()

	if steps > 0 {
		err = m.Steps(-steps)
	} else {
		err = m.Down()
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("revertir migraciones: %w", err)
	}
	return logVersion(m, log, "migraciones revertidas")
}

// MigrationVersion versión actual del esquema; 0 si no hay ninguna aplicada.
func MigrationVersion(pool *pgxpool.Pool) (uint, bool, error) {
	m, err := newMigrator(pool)
	if err != nil {
		return 0, false, err
	}
	defer m.Close()

	version, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	return version, dirty, err
}

func logVersion(m *migrate.Migrate, log zerolog.Logger, msg string) error {
	version, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		log.Info().Msg(msg + " (esquema vacío)")
		return nil
	}
	if err != nil {
		return fmt.Errorf("versión de migración: %w", err)
	}
	log.Info().Uint("version", version).Bool("dirty", dirty).Msg(msg)
	return nil
}
