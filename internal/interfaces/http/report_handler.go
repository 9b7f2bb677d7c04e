package http

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/holaaposmx/Controdealmacenfrio/internal/application/dto"
	"github.com/holaaposmx/Controdealmacenfrio/internal/application/inventory"
)

// ReportHandler reportes de caducidad y cumplimiento FIFO.
type ReportHandler struct {
	uc *inventory.ReportUseCase
}

// NewReportHandler construye el handler.
func NewReportHandler(uc *inventory.ReportUseCase) *ReportHandler {
	return &ReportHandler{uc: uc}
}

// Expiring godoc
// @Summary      Lotes por caducar
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Param        days  query  int  false  "Horizonte en días"  default(7)
// @Success      200   {array}   dto.ExpirationRowResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/reports/expiring [get]
func (h *ReportHandler) Expiring(c *fiber.Ctx) error {
	rows, err := h.uc.Expiring(c.Context(), c.QueryInt("days", 7))
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.ExpirationRowResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, dto.ExpirationRowResponse{Lot: dto.NewLotResponse(r.Lot), DaysLeft: r.DaysLeft, Risk: r.Risk})
	}
	return c.JSON(out)
}

// Metrics godoc
// @Summary      Indicadores de cumplimiento FIFO
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  fifo.Metrics
// @Router       /api/reports/fifo-metrics [get]
func (h *ReportHandler) Metrics(c *fiber.Ctx) error {
	m, err := h.uc.Metrics(c.Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(m)
}

// NextToDispatch godoc
// @Summary      Próximos lotes a despachar
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Param        category  query  string  false  "Categoría"
// @Param        limit     query  int     false  "Límite"  default(10)
// @Success      200       {array}  dto.LotResponse
// @Router       /api/reports/next-dispatch [get]
func (h *ReportHandler) NextToDispatch(c *fiber.Ctx) error {
	lots, err := h.uc.NextToDispatch(c.Context(), c.Query("category"), c.QueryInt("limit", 10))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.NewLotListResponse(lots))
}

// ExpiringPDF godoc
// @Summary      Reporte de caducidades en PDF
// @Tags         reports
// @Security     Bearer
// @Produce      application/pdf
// @Param        days  query  int  false  "Horizonte en días"  default(7)
// @Success      200   {file}    binary
// @Router       /api/reports/expiring.pdf [get]
func (h *ReportHandler) ExpiringPDF(c *fiber.Ctx) error {
	days := c.QueryInt("days", 7)
	pdf, err := h.uc.ExpirationReportPDF(c.Context(), days)
	if err != nil {
		return respondError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`inline; filename="caducidades-%dd.pdf"`, days))
	return c.Send(pdf)
}
