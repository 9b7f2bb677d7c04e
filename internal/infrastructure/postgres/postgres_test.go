package postgres_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/holaaposmx/Controdealmacenfrio/internal/application/inventory"
	"github.com/holaaposmx/Controdealmacenfrio/internal/domain"
	"github.com/holaaposmx/Controdealmacenfrio/internal/domain/entity"
	"github.com/holaaposmx/Controdealmacenfrio/internal/domain/stock"
	"github.com/holaaposmx/Controdealmacenfrio/internal/infrastructure/postgres"
	"github.com/holaaposmx/Controdealmacenfrio/pkg/config"
)

var (
	sharedPool   *pgxpool.Pool
	sharedPoolMu sync.Mutex
)

// testPool levanta un PostgreSQL efímero (uno por paquete), aplica migraciones y vacía
// las tablas antes de cada test.
func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	if testing.Short() {
		t.Skip("integración con PostgreSQL omitida en modo -short")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	sharedPoolMu.Lock()
	defer sharedPoolMu.Unlock()
	ctx := context.Background()

	if sharedPool == nil {
		container, err := tcpostgres.Run(ctx,
			"postgres:16-alpine",
			tcpostgres.WithDatabase("almacen_frio_test"),
			tcpostgres.WithUsername("postgres"),
			tcpostgres.WithPassword("postgres"),
			testcontainers.WithWaitStrategy(
				wait.ForLog("database system is ready to accept connections").
					WithOccurrence(2).
					WithStartupTimeout(60*time.Second)),
		)
		require.NoError(t, err, "no se pudo iniciar el contenedor de PostgreSQL")

		dsn, err := container.ConnectionString(ctx, "sslmode=disable")
		require.NoError(t, err)

		pool, err := postgres.NewPool(ctx, config.DBConfig{DatabaseURL: dsn})
		require.NoError(t, err)
		require.NoError(t, postgres.Migrate(pool, zerolog.Nop()))
		sharedPool = pool
	}

	_, err := sharedPool.Exec(ctx, `TRUNCATE inventory_movements, order_items, orders, inventory_items,
		warehouse_locations, temperature_logs, quality_incidents, users`)
	require.NoError(t, err)
	return sharedPool
}

func date(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func str(s string) *string { return &s }

var now = time.Date(2023, 6, 15, 8, 0, 0, 0, time.UTC)

func seed(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, postgres.NewLocationRepository(pool).Create(ctx, &entity.Location{
		ID: "R1", Code: "R1", Type: entity.LocationTypeRack, StorageType: entity.StorageConservation,
		MaxCapacity: 100, CreatedAt: now, UpdatedAt: now,
	}))
	lots := postgres.NewLotRepository(pool)
	for _, l := range []entity.Lot{
		{ID: "L1", Quantity: 5, ExpirationDate: date(2023, 6, 20)},
		{ID: "L2", Quantity: 10, ExpirationDate: date(2023, 6, 25)},
	} {
		l.ProductID, l.ProductName, l.Category = "PROD-1", "Yogur", "lacteos"
		l.LocationID = str("R1")
		l.LotNumber = "LOT-" + l.ID
		l.ReceivedDate = *date(2023, 6, 1)
		l.Status = entity.LotStatusInStock
		l.CreatedAt, l.UpdatedAt = now, now
		require.NoError(t, lots.Create(ctx, &l))
	}
}

func TestMigrate_Idempotente(t *testing.T) {
	pool := testPool(t)
	assert.NoError(t, postgres.Migrate(pool, zerolog.Nop()))

	version, dirty, err := postgres.MigrationVersion(pool)
	require.NoError(t, err)
	assert.Equal(t, uint(1), version)
	assert.False(t, dirty)
}

func TestMigrateDown_RevierteYReaplica(t *testing.T) {
	pool := testPool(t)

	require.NoError(t, postgres.MigrateDown(pool, 1, zerolog.Nop()))
	version, _, err := postgres.MigrationVersion(pool)
	require.NoError(t, err)
	assert.Equal(t, uint(0), version)

	var exists bool
	require.NoError(t, pool.QueryRow(context.Background(),
		`SELECT to_regclass('public.inventory_items') IS NOT NULL`).Scan(&exists))
	assert.False(t, exists)

	require.NoError(t, postgres.Migrate(pool, zerolog.Nop()))
	version, _, err = postgres.MigrationVersion(pool)
	require.NoError(t, err)
	assert.Equal(t, uint(1), version)
}

func TestLotRepo_EscrituraCondicional(t *testing.T) {
	pool := testPool(t)
	seed(t, pool)
	ctx := context.Background()
	repo := postgres.NewLotRepository(pool)

	err := repo.UpdateQuantity(ctx, entity.LotMutation{LotID: "L1", ExpectedQuantity: 5, Quantity: 2, LocationID: str("R1"), Status: entity.LotStatusLowStock, UpdatedAt: now})
	require.NoError(t, err)

	err = repo.UpdateQuantity(ctx, entity.LotMutation{LotID: "L1", ExpectedQuantity: 5, Quantity: 0, LocationID: str("R1"), UpdatedAt: now})
	assert.ErrorIs(t, err, domain.ErrConcurrentModification)

	err = repo.UpdateQuantity(ctx, entity.LotMutation{LotID: "NO", ExpectedQuantity: 1, Quantity: 0, UpdatedAt: now})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	got, err := repo.GetByID(ctx, "L1")
	require.NoError(t, err)
	assert.Equal(t, 2, got.Quantity)
	assert.Equal(t, entity.LotStatusLowStock, got.Status)
	assert.Equal(t, *date(2023, 6, 20), got.ExpirationDate.UTC())

	sum, err := repo.SumByLocation(ctx, "R1")
	require.NoError(t, err)
	assert.Equal(t, 12, sum)

	missing, err := repo.GetByID(ctx, "NO")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestDispatch_EscenarioAEnPostgres(t *testing.T) {
	pool := testPool(t)
	seed(t, pool)
	ctx := context.Background()

	uc := inventory.NewDispatchUseCase(postgres.NewTxRunner(pool), nil, stock.NewRecorder(0), 3, zerolog.Nop()).
		WithClock(func() time.Time { return now })
	res, err := uc.DispatchByFIFO(ctx, inventory.DispatchInput{ProductID: "PROD-1", Quantity: 7, PerformedBy: "Ana", ReferenceCode: str("ORD-1")})
	require.NoError(t, err)
	require.Len(t, res.Allocations, 2)

	lots := postgres.NewLotRepository(pool)
	l1, _ := lots.GetByID(ctx, "L1")
	l2, _ := lots.GetByID(ctx, "L2")
	assert.Equal(t, 0, l1.Quantity)
	assert.Equal(t, entity.LotStatusOutOfStock, l1.Status)
	assert.Equal(t, 8, l2.Quantity)

	movs, err := postgres.NewMovementRepository(pool).ListByReference(ctx, "ORD-1")
	require.NoError(t, err)
	require.Len(t, movs, 2)
	assert.Equal(t, "L1", *movs[0].LotID)
	assert.Equal(t, 5, movs[0].Quantity)
	assert.Equal(t, 2, movs[1].Quantity)

	_, err = uc.DispatchByFIFO(ctx, inventory.DispatchInput{ProductID: "PROD-1", Quantity: 9})
	var insufficient *domain.InsufficientInventoryError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, 8, insufficient.Available)
}

func TestDispatch_ConcurrenteSinLockConserva(t *testing.T) {
	pool := testPool(t)
	seed(t, pool)
	ctx := context.Background()
	uc := inventory.NewDispatchUseCase(postgres.NewTxRunner(pool), nil, stock.NewRecorder(0), 50, zerolog.Nop())

	var wg sync.WaitGroup
	var mu sync.Mutex
	shipped := 0
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := uc.DispatchByFIFO(ctx, inventory.DispatchInput{ProductID: "PROD-1", Quantity: 3})
			if err == nil {
				mu.Lock()
				shipped += 3
				mu.Unlock()
				return
			}
			assert.True(t, errors.Is(err, domain.ErrInsufficientInventory) || errors.Is(err, domain.ErrOutOfStock), "error inesperado: %v", err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 15, shipped, "hay existencias exactas para cinco despachos")
	sum, err := postgres.NewLotRepository(pool).SumByLocation(ctx, "R1")
	require.NoError(t, err)
	assert.Equal(t, 0, sum)

	var moved int
	require.NoError(t, pool.QueryRow(ctx, `SELECT COALESCE(SUM(quantity), 0) FROM inventory_movements WHERE type = 'dispatch'`).Scan(&moved))
	assert.Equal(t, shipped, moved)
}

func TestOrderRepo_CreaConPartidasYActualiza(t *testing.T) {
	pool := testPool(t)
	seed(t, pool)
	ctx := context.Background()
	repo := postgres.NewOrderRepository(pool)

	o := &entity.Order{
		ID: "O1", OrderNumber: "ORD-1", Customer: "Cliente", Status: entity.OrderPending,
		OrderDate: *date(2023, 6, 15), TotalItems: 4, CreatedAt: now, UpdatedAt: now,
		Items: []entity.OrderItem{
			{ID: "I1", OrderID: "O1", LotID: "L2", Quantity: 3, CreatedAt: now},
			{ID: "I2", OrderID: "O1", LotID: "L1", Quantity: 1, CreatedAt: now},
		},
	}
	require.NoError(t, repo.Create(ctx, o))

	dup := *o
	dup.ID, dup.Items = "O2", nil
	assert.ErrorIs(t, repo.Create(ctx, &dup), domain.ErrInvalidInput)

	bad := &entity.Order{ID: "O3", OrderNumber: "ORD-3", Customer: "X", Status: entity.OrderPending, OrderDate: now,
		Items: []entity.OrderItem{{ID: "I3", OrderID: "O3", LotID: "NO", Quantity: 1}}}
	assert.ErrorIs(t, repo.Create(ctx, bad), domain.ErrNotFound)
	missing, err := repo.GetByID(ctx, "O3")
	require.NoError(t, err)
	assert.Nil(t, missing, "sin partidas válidas no queda la cabecera")

	got, err := repo.GetByID(ctx, "O1")
	require.NoError(t, err)
	require.Len(t, got.Items, 2)
	assert.Equal(t, "L2", got.Items[0].LotID)

	got.Status = entity.OrderShipped
	got.ShippingDate = date(2023, 6, 16)
	require.NoError(t, repo.Update(ctx, got))

	list, err := repo.List(ctx, entity.OrderShipped, 10, 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, *date(2023, 6, 16), list[0].ShippingDate.UTC())

	all, err := repo.List(ctx, "", 0, 0)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestQualityRepos_DecimalYResolucion(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()

	temps := postgres.NewTemperatureLogRepository(pool)
	require.NoError(t, temps.Create(ctx, &entity.TemperatureLog{
		ID: "T1", StorageArea: "Cámara 1", StorageType: entity.StorageFrozen,
		Temperature: decimal.RequireFromString("-18.50"), Status: entity.TemperatureNormal, CreatedAt: now,
	}))
	list, err := temps.List(ctx, "Cámara 1", 10, 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.True(t, decimal.RequireFromString("-18.5").Equal(list[0].Temperature))

	incidents := postgres.NewQualityIncidentRepository(pool)
	inc := &entity.QualityIncident{
		ID: "Q1", IncidentType: "temperatura", Description: "puerta abierta", Severity: entity.SeverityHigh,
		Status: entity.IncidentOpen, CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, incidents.Create(ctx, inc))

	resolved := now.Add(time.Hour)
	inc.Status, inc.ResolutionNotes, inc.ResolvedAt, inc.UpdatedAt = entity.IncidentResolved, "se cerró", &resolved, resolved
	require.NoError(t, incidents.Update(ctx, inc))

	got, err := incidents.GetByID(ctx, "Q1")
	require.NoError(t, err)
	assert.Equal(t, entity.IncidentResolved, got.Status)
	require.NotNil(t, got.ResolvedAt)
	assert.True(t, resolved.Equal(*got.ResolvedAt))

	open, err := incidents.List(ctx, entity.IncidentOpen, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, open)
}

func TestUserRepo_EmailDuplicado(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	repo := postgres.NewUserRepository(pool)

	u := &entity.User{ID: "U1", Email: "ana@almacen.mx", PasswordHash: "x", Name: "Ana", Role: entity.RoleOperador, Status: "active", CreatedAt: now, UpdatedAt: now}
	require.NoError(t, repo.Create(ctx, u))

	u2 := *u
	u2.ID = "U2"
	assert.ErrorIs(t, repo.Create(ctx, &u2), domain.ErrEmailAlreadyExists)

	got, err := repo.GetByEmail(ctx, "ana@almacen.mx")
	require.NoError(t, err)
	assert.Equal(t, "U1", got.ID)

	none, err := repo.GetByEmail(ctx, "nadie@almacen.mx")
	require.NoError(t, err)
	assert.Nil(t, none)
}
