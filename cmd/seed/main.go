// seed carga datos de demostración (usuario admin, ubicaciones y lotes) a través de los
// casos de uso, de modo que cada lote queda con su movimiento de recepción.
//
// Uso: go run ./cmd/seed
// Variables: SEED_ADMIN_EMAIL (admin@almacen.local), SEED_ADMIN_PASSWORD (cambiar-123).
package main

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/holaaposmx/Controdealmacenfrio/internal/application/auth"
	"github.com/holaaposmx/Controdealmacenfrio/internal/application/dto"
	"github.com/holaaposmx/Controdealmacenfrio/internal/application/inventory"
	"github.com/holaaposmx/Controdealmacenfrio/internal/application/usecase"
	"github.com/holaaposmx/Controdealmacenfrio/internal/domain"
	"github.com/holaaposmx/Controdealmacenfrio/internal/domain/entity"
	"github.com/holaaposmx/Controdealmacenfrio/internal/domain/stock"
	"github.com/holaaposmx/Controdealmacenfrio/internal/infrastructure/postgres"
	"github.com/holaaposmx/Controdealmacenfrio/pkg/config"
	"github.com/holaaposmx/Controdealmacenfrio/pkg/logger"
)

type seedLot struct {
	productID, name, category string
	quantity                  int
	location                  string
	expiresInDays             int
}

var seedLocations = []dto.CreateLocationRequest{
	{Code: "CF-01", Type: entity.LocationTypeChamber, Zone: "A", StorageType: entity.StorageConservation, MaxCapacity: 500},
	{Code: "CF-02", Type: entity.LocationTypeRack, Zone: "A", StorageType: entity.StorageConservation, MaxCapacity: 200},
	{Code: "CG-01", Type: entity.LocationTypeChamber, Zone: "B", StorageType: entity.StorageFrozen, MaxCapacity: 400},
}

var seedLots = []seedLot{
	{"P-QUESO", "Queso panela 400g", "lacteos", 40, "CF-01", 2},
	{"P-QUESO", "Queso panela 400g", "lacteos", 60, "CF-01", 9},
	{"P-YOGUR", "Yogur natural 1L", "lacteos", 8, "CF-02", 5},
	{"P-POLLO", "Pechuga de pollo congelada", "carnicos", 120, "CG-01", 60},
	{"P-HELADO", "Helado de vainilla 2L", "postres", 30, "CG-01", -1},
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})
	ctx := context.Background()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()
	if err := postgres.Migrate(pool, log.Component("migrate")); err != nil {
		log.Fatal().Err(err).Msg("migraciones")
	}

	authUC := auth.NewAuthUseCase(postgres.NewUserRepository(pool), auth.JWTConfig{Secret: cfg.JWT.Secret})
	_, err = authUC.RegisterUser(ctx, dto.RegisterRequest{
		Email:    env("SEED_ADMIN_EMAIL", "admin@almacen.local"),
		Password: env("SEED_ADMIN_PASSWORD", "cambiar-123"),
		Name:     "Administrador",
		Role:     entity.RoleAdmin,
	})
	switch {
	case errors.Is(err, domain.ErrEmailAlreadyExists):
		log.Info().Msg("usuario admin ya existe")
	case err != nil:
		log.Fatal().Err(err).Msg("crear usuario admin")
	}

	locRepo := postgres.NewLocationRepository(pool)
	lotRepo := postgres.NewLotRepository(pool)
	locationUC := usecase.NewLocationUseCase(locRepo, lotRepo)
	ids := map[string]string{}
	for _, in := range seedLocations {
		existing, err := locRepo.GetByCode(ctx, in.Code)
		if err != nil {
			log.Fatal().Err(err).Str("code", in.Code).Msg("buscar ubicación")
		}
		if existing != nil {
			ids[in.Code] = existing.ID
			continue
		}
		out, err := locationUC.Create(ctx, in)
		if err != nil {
			log.Fatal().Err(err).Str("code", in.Code).Msg("crear ubicación")
		}
		ids[in.Code] = out.ID
	}

	existing, err := lotRepo.ListAll(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("listar lotes")
	}
	if len(existing) > 0 {
		log.Info().Int("lots", len(existing)).Msg("ya hay lotes, no se cargan de ejemplo")
		return
	}

	loc := cfg.App.Location()
	today := time.Now().In(loc)
	recorder := stock.NewRecorder(cfg.Inventory.LowStockThreshold)
	receptionUC := inventory.NewReceptionUseCase(postgres.NewTxRunner(pool), locRepo, recorder, log.Component("reception")).
		WithClock(func() time.Time { return time.Now().In(loc) })
	for _, l := range seedLots {
		locationID := ids[l.location]
		expires := today.AddDate(0, 0, l.expiresInDays)
		lot, err := receptionUC.Receive(ctx, inventory.ReceiveInput{
			ProductID:      l.productID,
			ProductName:    l.name,
			Category:       l.category,
			Quantity:       l.quantity,
			LocationID:     &locationID,
			ExpirationDate: &expires,
			PerformedBy:    "seed",
		})
		if err != nil {
			log.Fatal().Err(err).Str("product_id", l.productID).Msg("recibir lote")
		}
		log.Info().Str("lot", lot.LotNumber).Str("product_id", lot.ProductID).Int("quantity", lot.Quantity).Msg("lote cargado")
	}
	log.Info().Msg("datos de ejemplo cargados")
}

func env(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
