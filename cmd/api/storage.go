package main

import (
	"context"

	"github.com/holaaposmx/Controdealmacenfrio/internal/application/inventory"
	"github.com/holaaposmx/Controdealmacenfrio/internal/domain/repository"
	"github.com/holaaposmx/Controdealmacenfrio/internal/infrastructure/memory"
	"github.com/holaaposmx/Controdealmacenfrio/internal/infrastructure/postgres"
	"github.com/holaaposmx/Controdealmacenfrio/pkg/config"
	"github.com/holaaposmx/Controdealmacenfrio/pkg/logger"
)

// storage repositorios de un backend (PostgreSQL o memoria).
type storage struct {
	txRunner     inventory.TxRunner
	lots         repository.LotRepository
	movements    repository.MovementRepository
	locations    repository.LocationRepository
	orders       repository.OrderRepository
	temperatures repository.TemperatureLogRepository
	incidents    repository.QualityIncidentRepository
	users        repository.UserRepository
	ping         func(ctx context.Context) error
	close        func()
}

func openStorage(ctx context.Context, cfg config.DBConfig, log *logger.Logger) (*storage, error) {
	if cfg.InMemory() {
		log.Warn().Msg("almacenamiento en memoria: los datos se pierden al reiniciar")
		s := memory.NewStore()
		return &storage{
			txRunner:     memory.NewTxRunner(s),
			lots:         memory.NewLotRepository(s),
			movements:    memory.NewMovementRepository(s),
			locations:    memory.NewLocationRepository(s),
			orders:       memory.NewOrderRepository(s),
			temperatures: memory.NewTemperatureLogRepository(s),
			incidents:    memory.NewQualityIncidentRepository(s),
			users:        memory.NewUserRepository(s),
			close:        func() {},
		}, nil
	}

	pool, err := postgres.NewPool(ctx, cfg, postgres.WithQueryLogger(log.Component("sql")))
	if err != nil {
		return nil, err
	}
	if cfg.AutoMigrate {
		if err := postgres.Migrate(pool, log.Component("migrate")); err != nil {
			pool.Close()
			return nil, err
		}
	}
	return &storage{
		txRunner:     postgres.NewTxRunner(pool),
		lots:         postgres.NewLotRepository(pool),
		movements:    postgres.NewMovementRepository(pool),
		locations:    postgres.NewLocationRepository(pool),
		orders:       postgres.NewOrderRepository(pool),
		temperatures: postgres.NewTemperatureLogRepository(pool),
		incidents:    postgres.NewQualityIncidentRepository(pool),
		users:        postgres.NewUserRepository(pool),
		ping:         pool.Ping,
		close:        pool.Close,
	}, nil
}
