package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/holaaposmx/Controdealmacenfrio/internal/application/auth"
	"github.com/holaaposmx/Controdealmacenfrio/internal/application/inventory"
	"github.com/holaaposmx/Controdealmacenfrio/internal/application/logistics"
	"github.com/holaaposmx/Controdealmacenfrio/internal/application/quality"
	"github.com/holaaposmx/Controdealmacenfrio/internal/application/usecase"
	"github.com/holaaposmx/Controdealmacenfrio/internal/domain/entity"
)

// HealthChecker comprueba el almacenamiento (Ping del pool). Nil = siempre sano.
type HealthChecker func(ctx context.Context) error

// RouterDeps dependencias para el router.
type RouterDeps struct {
	MovementUC  *inventory.MovementUseCase
	ReceptionUC *inventory.ReceptionUseCase
	DispatchUC  *inventory.DispatchUseCase
	ReportUC    *inventory.ReportUseCase
	LocationUC  *usecase.LocationUseCase
	OrderUC     *logistics.OrderUseCase
	QualityUC   *quality.UseCase
	AuthUC      *auth.AuthUseCase
	JWTSecret   string
	Health      HealthChecker
}

// Router registra las rutas de la API.
//
// Roles: operador opera lotes, despachos y órdenes; supervisor además calidad y
// reportes; admin todo, incluido el alta de ubicaciones y usuarios.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", healthHandler(deps.Health))

	api := app.Group("/api")

	// Auth (login público)
	authHandler := NewAuthHandler(deps.AuthUC)
	api.Post("/auth/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))
	protected.Post("/auth/register", RequireRole(entity.RoleAdmin), authHandler.Register)

	operator := RequireRole(entity.RoleOperador, entity.RoleSupervisor)
	supervisor := RequireRole(entity.RoleSupervisor)
	admin := RequireRole(entity.RoleAdmin)

	// Lotes
	lots := protected.Group("/lots", operator)
	lotHandler := NewLotHandler(deps.MovementUC, deps.ReceptionUC)
	lots.Get("/", lotHandler.List)
	lots.Post("/", lotHandler.Receive)
	lots.Get("/:id", lotHandler.GetByID)
	lots.Get("/:id/movements", lotHandler.ListMovements)
	lots.Post("/:id/movements", lotHandler.ApplyMovement)

	// Despacho FIFO
	dispatchHandler := NewDispatchHandler(deps.DispatchUC)
	protected.Post("/dispatch", operator, dispatchHandler.Dispatch)

	// Reportes
	reports := protected.Group("/reports", supervisor)
	reportHandler := NewReportHandler(deps.ReportUC)
	reports.Get("/expiring", reportHandler.Expiring)
	reports.Get("/expiring.pdf", reportHandler.ExpiringPDF)
	reports.Get("/fifo-metrics", reportHandler.Metrics)
	reports.Get("/next-dispatch", reportHandler.NextToDispatch)

	// Ubicaciones: lectura para operación, alta solo admin
	locations := protected.Group("/locations")
	locationHandler := NewLocationHandler(deps.LocationUC)
	locations.Get("/", operator, locationHandler.List)
	locations.Get("/:id", operator, locationHandler.GetByID)
	locations.Post("/", admin, locationHandler.Create)

	// Órdenes
	orders := protected.Group("/orders", operator)
	orderHandler := NewOrderHandler(deps.OrderUC)
	orders.Get("/", orderHandler.List)
	orders.Post("/", orderHandler.Create)
	orders.Get("/:id", orderHandler.GetByID)
	orders.Patch("/:id/status", orderHandler.UpdateStatus)
	orders.Post("/:id/ship", orderHandler.Ship)
	orders.Post("/:id/returns", orderHandler.Return)

	// Calidad
	qualityGroup := protected.Group("/quality", supervisor)
	qualityHandler := NewQualityHandler(deps.QualityUC)
	qualityGroup.Get("/temperatures", qualityHandler.ListTemperatures)
	qualityGroup.Post("/temperatures", qualityHandler.RecordTemperature)
	qualityGroup.Get("/incidents", qualityHandler.ListIncidents)
	qualityGroup.Post("/incidents", qualityHandler.ReportIncident)
	qualityGroup.Patch("/incidents/:id/status", qualityHandler.UpdateIncidentStatus)
}

func healthHandler(check HealthChecker) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if check != nil {
			ctx, cancel := context.WithTimeout(c.Context(), 2*time.Second)
			defer cancel()
			if err := check(ctx); err != nil {
				return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "unavailable", "error": err.Error()})
			}
		}
		return c.JSON(fiber.Map{"status": "ok"})
	}
}
