package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/holaaposmx/Controdealmacenfrio/internal/application/dto"
	"github.com/holaaposmx/Controdealmacenfrio/internal/application/inventory"
)

// DispatchHandler despacho FIFO por producto.
type DispatchHandler struct {
	uc *inventory.DispatchUseCase
}

// NewDispatchHandler construye el handler.
func NewDispatchHandler(uc *inventory.DispatchUseCase) *DispatchHandler {
	return &DispatchHandler{uc: uc}
}

// Dispatch godoc
// @Summary      Despachar producto por FIFO
// @Description  Toma unidades de los lotes de caducidad más próxima. Todo o nada.
// @Tags         dispatch
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.DispatchRequest  true  "product_id, quantity"
// @Success      200   {object}  dto.DispatchResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse  "OUT_OF_STOCK, INSUFFICIENT_INVENTORY o CONFLICT"
// @Failure      422   {object}  dto.ErrorResponse  "MISSING_LOCATION"
// @Router       /api/dispatch [post]
func (h *DispatchHandler) Dispatch(c *fiber.Ctx) error {
	var in dto.DispatchRequest
	if ok, err := bind(c, &in); !ok {
		return err
	}
	res, err := h.uc.DispatchByFIFO(c.Context(), inventory.DispatchInput{
		ProductID:     in.ProductID,
		Quantity:      in.Quantity,
		PerformedBy:   performedBy(c),
		ReferenceCode: in.ReferenceCode,
		Notes:         in.Notes,
	})
	if err != nil {
		return respondError(c, err)
	}

	out := dto.DispatchResponse{
		Allocations: make([]dto.AllocationResponse, 0, len(res.Allocations)),
		Movements:   make([]dto.MovementResponse, 0, len(res.Movements)),
	}
	// res.Lots va en el mismo orden que las asignaciones y trae el lote ya despachado.
	for i, a := range res.Allocations {
		out.Allocations = append(out.Allocations, dto.AllocationResponse{Lot: dto.NewLotResponse(res.Lots[i]), QuantityTaken: a.QuantityTaken})
	}
	for _, m := range res.Movements {
		out.Movements = append(out.Movements, dto.NewMovementResponse(m))
	}
	return c.JSON(out)
}
