package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/holaaposmx/Controdealmacenfrio/internal/application/dto"
	"github.com/holaaposmx/Controdealmacenfrio/internal/application/logistics"
	"github.com/holaaposmx/Controdealmacenfrio/internal/domain/entity"
)

// OrderHandler órdenes de salida, embarque y devoluciones.
type OrderHandler struct {
	uc *logistics.OrderUseCase
}

// NewOrderHandler construye el handler.
func NewOrderHandler(uc *logistics.OrderUseCase) *OrderHandler {
	return &OrderHandler{uc: uc}
}

// Create godoc
// @Summary      Crear orden
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateOrderRequest  true  "Orden con partidas"
// @Success      201   {object}  dto.OrderResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/orders [post]
func (h *OrderHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateOrderRequest
	if ok, err := bind(c, &in); !ok {
		return err
	}
	orderDate, err := parseDate(in.OrderDate)
	if err != nil {
		return respondError(c, err)
	}
	input := logistics.CreateOrderInput{
		OrderNumber: in.OrderNumber,
		Customer:    in.Customer,
		Status:      in.Status,
		Notes:       in.Notes,
		Items:       make([]logistics.OrderItemInput, 0, len(in.Items)),
	}
	if orderDate != nil {
		input.OrderDate = *orderDate
	}
	for _, it := range in.Items {
		input.Items = append(input.Items, logistics.OrderItemInput{LotID: it.LotID, Quantity: it.Quantity})
	}
	o, err := h.uc.Create(c.Context(), input)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewOrderResponse(*o))
}

// GetByID godoc
// @Summary      Obtener orden con partidas
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la orden"
// @Success      200  {object}  dto.OrderResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/orders/{id} [get]
func (h *OrderHandler) GetByID(c *fiber.Ctx) error {
	o, err := h.uc.Get(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.NewOrderResponse(*o))
}

// List godoc
// @Summary      Listar órdenes
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        status  query  string  false  "Estado"
// @Param        limit   query  int     false  "Límite"  default(20)
// @Param        offset  query  int     false  "Offset"  default(0)
// @Success      200     {array}  dto.OrderResponse
// @Router       /api/orders [get]
func (h *OrderHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	_ = c.QueryParser(&page)
	page.DefaultPage()
	list, err := h.uc.List(c.Context(), c.Query("status"), page.Limit, page.Offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(orderList(list))
}

// UpdateStatus godoc
// @Summary      Cambiar estado de la orden
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                        true  "ID de la orden"
// @Param        body  body  dto.UpdateOrderStatusRequest  true  "Estado y fechas"
// @Success      200   {object}  dto.OrderResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/status [patch]
func (h *OrderHandler) UpdateStatus(c *fiber.Ctx) error {
	var in dto.UpdateOrderStatusRequest
	if ok, err := bind(c, &in); !ok {
		return err
	}
	shipping, err := parseDate(in.ShippingDate)
	if err != nil {
		return respondError(c, err)
	}
	delivery, err := parseDate(in.DeliveryDate)
	if err != nil {
		return respondError(c, err)
	}
	o, err := h.uc.UpdateStatus(c.Context(), c.Params("id"), logistics.UpdateStatusInput{
		Status:       in.Status,
		ShippingDate: shipping,
		DeliveryDate: delivery,
		Notes:        in.Notes,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.NewOrderResponse(*o))
}

// Ship godoc
// @Summary      Procesar orden para embarque
// @Description  Despacha cada partida por FIFO y marca la orden como enviada.
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la orden"
// @Success      200  {object}  dto.OrderResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/ship [post]
func (h *OrderHandler) Ship(c *fiber.Ctx) error {
	o, err := h.uc.ProcessForShipping(c.Context(), c.Params("id"), performedBy(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.NewOrderResponse(*o))
}

// Return godoc
// @Summary      Registrar devolución
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string             true  "ID de la orden"
// @Param        body  body  dto.ReturnRequest  true  "Partidas devueltas"
// @Success      200   {object}  dto.OrderResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/returns [post]
func (h *OrderHandler) Return(c *fiber.Ctx) error {
	var in dto.ReturnRequest
	if ok, err := bind(c, &in); !ok {
		return err
	}
	items := make([]logistics.ReturnItem, 0, len(in.Items))
	for _, it := range in.Items {
		items = append(items, logistics.ReturnItem{LotID: it.LotID, Quantity: it.Quantity, Reason: it.Reason})
	}
	o, err := h.uc.ProcessReturn(c.Context(), c.Params("id"), items, performedBy(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.NewOrderResponse(*o))
}

func orderList(list []entity.Order) []dto.OrderResponse {
	out := make([]dto.OrderResponse, 0, len(list))
	for _, o := range list {
		out = append(out, dto.NewOrderResponse(o))
	}
	return out
}
