package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/holaaposmx/Controdealmacenfrio/internal/application/dto"
	"github.com/holaaposmx/Controdealmacenfrio/internal/application/inventory"
	"github.com/holaaposmx/Controdealmacenfrio/internal/domain/entity"
)

// LotHandler recepción, consulta y movimientos de lotes (protegido).
type LotHandler struct {
	movements *inventory.MovementUseCase
	reception *inventory.ReceptionUseCase
}

// NewLotHandler construye el handler.
func NewLotHandler(movements *inventory.MovementUseCase, reception *inventory.ReceptionUseCase) *LotHandler {
	return &LotHandler{movements: movements, reception: reception}
}

// List godoc
// @Summary      Listar lotes
// @Description  Con fifo=true ordena por caducidad más próxima (sin caducidad al final).
// @Tags         lots
// @Security     Bearer
// @Produce      json
// @Param        fifo  query  bool  false  "Orden FIFO"
// @Success      200   {array}   dto.LotResponse
// @Router       /api/lots [get]
func (h *LotHandler) List(c *fiber.Ctx) error {
	lots, err := h.movements.ListLots(c.Context(), c.QueryBool("fifo", false))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.NewLotListResponse(lots))
}

// Receive godoc
// @Summary      Recibir lote
// @Tags         lots
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ReceiveLotRequest  true  "Lote recibido"
// @Success      201   {object}  dto.LotResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/lots [post]
func (h *LotHandler) Receive(c *fiber.Ctx) error {
	var in dto.ReceiveLotRequest
	if ok, err := bind(c, &in); !ok {
		return err
	}
	received, err := parseDate(in.ReceivedDate)
	if err != nil {
		return respondError(c, err)
	}
	expires, err := parseDate(in.ExpirationDate)
	if err != nil {
		return respondError(c, err)
	}
	input := inventory.ReceiveInput{
		ProductID:      in.ProductID,
		ProductName:    in.ProductName,
		Category:       in.Category,
		Quantity:       in.Quantity,
		LocationID:     in.LocationID,
		LotNumber:      in.LotNumber,
		ExpirationDate: expires,
		PerformedBy:    performedBy(c),
	}
	if received != nil {
		input.ReceivedDate = *received
	}
	lot, err := h.reception.Receive(c.Context(), input)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewLotResponse(*lot))
}

// GetByID godoc
// @Summary      Obtener lote
// @Tags         lots
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del lote"
// @Success      200  {object}  dto.LotResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/lots/{id} [get]
func (h *LotHandler) GetByID(c *fiber.Ctx) error {
	lot, err := h.movements.GetLot(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.NewLotResponse(*lot))
}

// ListMovements godoc
// @Summary      Historial de movimientos del lote
// @Tags         lots
// @Security     Bearer
// @Produce      json
// @Param        id      path   string  true   "ID del lote"
// @Param        limit   query  int     false  "Límite"  default(20)
// @Param        offset  query  int     false  "Offset"  default(0)
// @Success      200     {array}  dto.MovementResponse
// @Router       /api/lots/{id}/movements [get]
func (h *LotHandler) ListMovements(c *fiber.Ctx) error {
	var page dto.PageRequest
	_ = c.QueryParser(&page)
	page.DefaultPage()
	movs, err := h.movements.ListMovements(c.Context(), c.Params("id"), page.Limit, page.Offset)
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.MovementResponse, 0, len(movs))
	for _, m := range movs {
		out = append(out, dto.NewMovementResponse(m))
	}
	return c.JSON(out)
}

// ApplyMovement godoc
// @Summary      Registrar movimiento sobre un lote
// @Description  reception/return suman, dispatch resta, transfer cambia ubicación, adjustment fija la cantidad.
// @Tags         lots
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                    true  "ID del lote"
// @Param        body  body  dto.ApplyMovementRequest  true  "Movimiento"
// @Success      201   {object}  dto.LotResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/lots/{id}/movements [post]
func (h *LotHandler) ApplyMovement(c *fiber.Ctx) error {
	var in dto.ApplyMovementRequest
	if ok, err := bind(c, &in); !ok {
		return err
	}
	lot, err := h.movements.ApplyMovement(c.Context(), c.Params("id"), inventory.MovementInput{
		Type:          entity.MovementType(in.Type),
		Quantity:      in.Quantity,
		ToLocationID:  in.ToLocationID,
		PerformedBy:   performedBy(c),
		ReferenceCode: in.ReferenceCode,
		Notes:         in.Notes,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewLotResponse(*lot))
}
