package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/holaaposmx/Controdealmacenfrio/internal/application/dto"
	"github.com/holaaposmx/Controdealmacenfrio/internal/application/quality"
)

// QualityHandler bitácora de temperaturas e incidentes de calidad.
type QualityHandler struct {
	uc *quality.UseCase
}

// NewQualityHandler construye el handler.
func NewQualityHandler(uc *quality.UseCase) *QualityHandler {
	return &QualityHandler{uc: uc}
}

// RecordTemperature godoc
// @Summary      Registrar lectura de temperatura
// @Tags         quality
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RecordTemperatureRequest  true  "Lectura"
// @Success      201   {object}  dto.TemperatureLogResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/quality/temperatures [post]
func (h *QualityHandler) RecordTemperature(c *fiber.Ctx) error {
	var in dto.RecordTemperatureRequest
	if ok, err := bind(c, &in); !ok {
		return err
	}
	t, err := h.uc.RecordTemperature(c.Context(), quality.RecordTemperatureInput{
		StorageArea: in.StorageArea,
		StorageType: in.StorageType,
		Temperature: in.Temperature,
		RecordedBy:  performedBy(c),
		Notes:       in.Notes,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewTemperatureLogResponse(*t))
}

// ListTemperatures godoc
// @Summary      Listar lecturas de temperatura
// @Tags         quality
// @Security     Bearer
// @Produce      json
// @Param        storage_area  query  string  false  "Área"
// @Param        limit         query  int     false  "Límite"  default(20)
// @Param        offset        query  int     false  "Offset"  default(0)
// @Success      200           {array}  dto.TemperatureLogResponse
// @Router       /api/quality/temperatures [get]
func (h *QualityHandler) ListTemperatures(c *fiber.Ctx) error {
	var page dto.PageRequest
	_ = c.QueryParser(&page)
	page.DefaultPage()
	list, err := h.uc.ListTemperatures(c.Context(), c.Query("storage_area"), page.Limit, page.Offset)
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.TemperatureLogResponse, 0, len(list))
	for _, t := range list {
		out = append(out, dto.NewTemperatureLogResponse(t))
	}
	return c.JSON(out)
}

// ReportIncident godoc
// @Summary      Reportar incidente de calidad
// @Tags         quality
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ReportIncidentRequest  true  "Incidente"
// @Success      201   {object}  dto.IncidentResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/quality/incidents [post]
func (h *QualityHandler) ReportIncident(c *fiber.Ctx) error {
	var in dto.ReportIncidentRequest
	if ok, err := bind(c, &in); !ok {
		return err
	}
	i, err := h.uc.ReportIncident(c.Context(), quality.ReportIncidentInput{
		IncidentType:      in.IncidentType,
		Description:       in.Description,
		Severity:          in.Severity,
		RelatedProductID:  in.RelatedProductID,
		RelatedLocationID: in.RelatedLocationID,
		ReportedBy:        performedBy(c),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewIncidentResponse(*i))
}

// UpdateIncidentStatus godoc
// @Summary      Cambiar estado de un incidente
// @Tags         quality
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                           true  "ID del incidente"
// @Param        body  body  dto.UpdateIncidentStatusRequest  true  "Estado"
// @Success      200   {object}  dto.IncidentResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/quality/incidents/{id}/status [patch]
func (h *QualityHandler) UpdateIncidentStatus(c *fiber.Ctx) error {
	var in dto.UpdateIncidentStatusRequest
	if ok, err := bind(c, &in); !ok {
		return err
	}
	i, err := h.uc.UpdateIncidentStatus(c.Context(), c.Params("id"), in.Status, in.ResolutionNotes)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.NewIncidentResponse(*i))
}

// ListIncidents godoc
// @Summary      Listar incidentes
// @Tags         quality
// @Security     Bearer
// @Produce      json
// @Param        status  query  string  false  "Estado"
// @Param        limit   query  int     false  "Límite"  default(20)
// @Param        offset  query  int     false  "Offset"  default(0)
// @Success      200     {array}  dto.IncidentResponse
// @Router       /api/quality/incidents [get]
func (h *QualityHandler) ListIncidents(c *fiber.Ctx) error {
	var page dto.PageRequest
	_ = c.QueryParser(&page)
	page.DefaultPage()
	list, err := h.uc.ListIncidents(c.Context(), c.Query("status"), page.Limit, page.Offset)
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.IncidentResponse, 0, len(list))
	for _, i := range list {
		out = append(out, dto.NewIncidentResponse(i))
	}
	return c.JSON(out)
}
