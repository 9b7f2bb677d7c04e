package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"

	"github.com/holaaposmx/Controdealmacenfrio/internal/application/auth"
	"github.com/holaaposmx/Controdealmacenfrio/internal/application/inventory"
	"github.com/holaaposmx/Controdealmacenfrio/internal/application/logistics"
	"github.com/holaaposmx/Controdealmacenfrio/internal/application/quality"
	"github.com/holaaposmx/Controdealmacenfrio/internal/application/usecase"
	"github.com/holaaposmx/Controdealmacenfrio/internal/domain/fifo"
	"github.com/holaaposmx/Controdealmacenfrio/internal/domain/stock"
	"github.com/holaaposmx/Controdealmacenfrio/internal/infrastructure/memory"
	infrapdf "github.com/holaaposmx/Controdealmacenfrio/internal/infrastructure/pdf"
	"github.com/holaaposmx/Controdealmacenfrio/internal/infrastructure/redislock"
	httpRouter "github.com/holaaposmx/Controdealmacenfrio/internal/interfaces/http"
	"github.com/holaaposmx/Controdealmacenfrio/pkg/config"
	"github.com/holaaposmx/Controdealmacenfrio/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("storage", cfg.DB.Driver).
		Msg("iniciando aplicación")

	ctx := context.Background()
	st, err := openStorage(ctx, cfg.DB, log)
	if err != nil {
		log.Fatal().Err(err).Msg("almacenamiento")
	}
	defer st.close()

	// Lock por producto: Redis si está configurado, si no en proceso.
	var locker inventory.ProductLocker = memory.NewProductLocker()
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Fatal().Err(err).Str("addr", cfg.Redis.Addr).Msg("conexión a Redis")
		}
		defer rdb.Close()
		locker = redislock.NewProductLocker(rdb, cfg.Dispatch.LockTTL())
		log.Info().Str("addr", cfg.Redis.Addr).Msg("lock de despacho en Redis")
	}

	// "Hoy" de caducidades y fechas de envío en la zona del almacén.
	loc := cfg.App.Location()
	clock := func() time.Time { return time.Now().In(loc) }

	recorder := stock.NewRecorder(cfg.Inventory.LowStockThreshold)
	thresholds := fifo.Thresholds{
		CriticalDays: cfg.Inventory.ExpiryCriticalDays,
		WarningDays:  cfg.Inventory.ExpiryWarningDays,
	}

	movementUC := inventory.NewMovementUseCase(
		st.txRunner, st.lots, st.movements, st.locations, recorder, log.Component("movement"),
	).WithClock(clock)
	receptionUC := inventory.NewReceptionUseCase(st.txRunner, st.locations, recorder, log.Component("reception")).
		WithClock(clock)
	dispatchUC := inventory.NewDispatchUseCase(
		st.txRunner, locker, recorder, cfg.Dispatch.MaxRetries, log.Component("dispatch"),
	).WithClock(clock)
	reportUC := inventory.NewReportUseCase(st.lots, thresholds, infrapdf.NewMarotoPDFGenerator(cfg.App.Name)).
		WithClock(clock)
	orderUC := logistics.NewOrderUseCase(st.orders, st.lots, st.movements, dispatchUC, movementUC, log.Component("orders")).
		WithClock(clock)
	qualityUC := quality.NewUseCase(st.temperatures, st.incidents, log.Component("quality"))
	locationUC := usecase.NewLocationUseCase(st.locations, st.lots)
	authUC := auth.NewAuthUseCase(st.users, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(httpRouter.RequestLogger(log.Component("http")))

	// Swagger UI en local: http://localhost:<port>/docs
	if _, err := os.Stat("./docs/swagger.json"); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: "./docs/swagger.json",
			Path:     "docs",
			Title:    cfg.App.Name + " API",
		}))
	}

	httpRouter.Router(app, httpRouter.RouterDeps{
		MovementUC:  movementUC,
		ReceptionUC: receptionUC,
		DispatchUC:  dispatchUC,
		ReportUC:    reportUC,
		LocationUC:  locationUC,
		OrderUC:     orderUC,
		QualityUC:   qualityUC,
		AuthUC:      authUC,
		JWTSecret:   cfg.JWT.Secret,
		Health:      st.ping,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
