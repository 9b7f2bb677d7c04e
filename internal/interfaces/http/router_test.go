package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/holaaposmx/Controdealmacenfrio/internal/application/auth"
	"github.com/holaaposmx/Controdealmacenfrio/internal/application/dto"
	"github.com/holaaposmx/Controdealmacenfrio/internal/application/inventory"
	"github.com/holaaposmx/Controdealmacenfrio/internal/application/logistics"
	"github.com/holaaposmx/Controdealmacenfrio/internal/application/quality"
	"github.com/holaaposmx/Controdealmacenfrio/internal/application/usecase"
	"github.com/holaaposmx/Controdealmacenfrio/internal/domain/fifo"
	"github.com/holaaposmx/Controdealmacenfrio/internal/domain/stock"
	"github.com/holaaposmx/Controdealmacenfrio/internal/infrastructure/memory"
	"github.com/holaaposmx/Controdealmacenfrio/internal/infrastructure/pdf"
	apphttp "github.com/holaaposmx/Controdealmacenfrio/internal/interfaces/http"
)

var routerNow = time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC)

type testServer struct {
	app    *fiber.App
	authUC *auth.AuthUseCase
}

// newTestServer API completa sobre el almacén en memoria con reloj fijo.
func newTestServer(t *testing.T, health apphttp.HealthChecker) *testServer {
	t.Helper()
	clock := func() time.Time { return routerNow }
	log := zerolog.Nop()
	store := memory.NewStore()
	tx := memory.NewTxRunner(store)
	lots := memory.NewLotRepository(store)
	movs := memory.NewMovementRepository(store)
	locs := memory.NewLocationRepository(store)
	recorder := stock.NewRecorder(10)

	movementUC := inventory.NewMovementUseCase(tx, lots, movs, locs, recorder, log).WithClock(clock)
	dispatchUC := inventory.NewDispatchUseCase(tx, memory.NewProductLocker(), recorder, inventory.DefaultMaxRetries, log).WithClock(clock)
	authUC := auth.NewAuthUseCase(memory.NewUserRepository(store), auth.JWTConfig{Secret: testJWTSecret, ExpMinutes: testExpMin, Issuer: testIssuer})

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		MovementUC:  movementUC,
		ReceptionUC: inventory.NewReceptionUseCase(tx, locs, recorder, log).WithClock(clock),
		DispatchUC:  dispatchUC,
		ReportUC:    inventory.NewReportUseCase(lots, fifo.DefaultThresholds, pdf.NewMarotoPDFGenerator("Almacén Frío")).WithClock(clock),
		LocationUC:  usecase.NewLocationUseCase(locs, lots),
		OrderUC:     logistics.NewOrderUseCase(memory.NewOrderRepository(store), lots, movs, dispatchUC, movementUC, log).WithClock(clock),
		QualityUC:   quality.NewUseCase(memory.NewTemperatureLogRepository(store), memory.NewQualityIncidentRepository(store), log),
		AuthUC:      authUC,
		JWTSecret:   testJWTSecret,
		Health:      health,
	})
	return &testServer{app: app, authUC: authUC}
}

// call petición JSON con token del rol indicado (rol vacío = sin token).
func (s *testServer) call(t *testing.T, method, path, role string, body any) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if role != "" {
		req.Header.Set("Authorization", tokenForRole(t, role))
	}
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

// seedLots ubicación CF-01 con dos lotes del producto P-100 (5 y 10 unidades).
func (s *testServer) seedLots(t *testing.T) (locationID string, first, second dto.LotResponse) {
	t.Helper()
	resp := s.call(t, http.MethodPost, "/api/locations", "admin", dto.CreateLocationRequest{
		Code: "CF-01", Type: "CHAMBER", StorageType: "conservation", MaxCapacity: 100,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	loc := decode[dto.LocationResponse](t, resp)

	receive := func(lotNumber string, qty int, expires string) dto.LotResponse {
		resp := s.call(t, http.MethodPost, "/api/lots", "operador", dto.ReceiveLotRequest{
			ProductID: "P-100", ProductName: "Queso fresco", Category: "lacteos",
			Quantity: qty, LocationID: &loc.ID, LotNumber: lotNumber, ExpirationDate: expires,
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		return decode[dto.LotResponse](t, resp)
	}
	first = receive("L1", 5, "2024-06-20")
	second = receive("L2", 10, "2024-06-25")
	return loc.ID, first, second
}

func TestRouter_DespachoFIFO_TomaPrimeroElQueCaducaAntes(t *testing.T) {
	s := newTestServer(t, nil)
	_, first, second := s.seedLots(t)

	resp := s.call(t, http.MethodPost, "/api/dispatch", "operador", dto.DispatchRequest{ProductID: "P-100", Quantity: 7})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	out := decode[dto.DispatchResponse](t, resp)

	require.Len(t, out.Allocations, 2)
	assert.Equal(t, first.ID, out.Allocations[0].Lot.ID)
	assert.Equal(t, 5, out.Allocations[0].QuantityTaken)
	assert.Equal(t, 0, out.Allocations[0].Lot.Quantity)
	assert.Equal(t, second.ID, out.Allocations[1].Lot.ID)
	assert.Equal(t, 2, out.Allocations[1].QuantityTaken)
	assert.Equal(t, 8, out.Allocations[1].Lot.Quantity, "la respuesta trae el lote tras el despacho")
	require.Len(t, out.Movements, 2)
	assert.Equal(t, "dispatch", out.Movements[0].Type)
	assert.Equal(t, testUserName, out.Movements[0].PerformedBy, "performed_by sale del nombre en el JWT")
}

func TestRouter_DespachoInsuficiente_Retorna409ConCantidades(t *testing.T) {
	s := newTestServer(t, nil)
	s.seedLots(t)

	resp := s.call(t, http.MethodPost, "/api/dispatch", "operador", dto.DispatchRequest{ProductID: "P-100", Quantity: 16})
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	body := decode[dto.ErrorResponse](t, resp)

	assert.Equal(t, "INSUFFICIENT_INVENTORY", body.Code)
	require.NotNil(t, body.Requested)
	require.NotNil(t, body.Available)
	assert.Equal(t, 16, *body.Requested)
	assert.Equal(t, 15, *body.Available)

	// Todo o nada: los lotes no cambian.
	resp = s.call(t, http.MethodGet, "/api/lots", "operador", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	total := 0
	for _, l := range decode[[]dto.LotResponse](t, resp) {
		total += l.Quantity
	}
	assert.Equal(t, 15, total)
}

func TestRouter_DespachoProductoSinExistencias_Retorna409OutOfStock(t *testing.T) {
	s := newTestServer(t, nil)

	resp := s.call(t, http.MethodPost, "/api/dispatch", "operador", dto.DispatchRequest{ProductID: "NO-EXISTE", Quantity: 1})
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "OUT_OF_STOCK", decode[dto.ErrorResponse](t, resp).Code)
}

func TestRouter_ValidacionDelCuerpo_Retorna400ConCampos(t *testing.T) {
	s := newTestServer(t, nil)

	resp := s.call(t, http.MethodPost, "/api/dispatch", "operador", dto.DispatchRequest{ProductID: "P-100", Quantity: 0})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body := decode[dto.ErrorResponse](t, resp)
	assert.Equal(t, "VALIDATION", body.Code)
	assert.Contains(t, body.Fields, "quantity")
}

func TestRouter_FechaMalFormada_Retorna400(t *testing.T) {
	s := newTestServer(t, nil)

	resp := s.call(t, http.MethodPost, "/api/lots", "operador", dto.ReceiveLotRequest{
		ProductID: "P-1", ProductName: "Yogur", Quantity: 3, ExpirationDate: "20/06/2024",
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", decode[dto.ErrorResponse](t, resp).Code)
}

func TestRouter_LoteInexistente_Retorna404(t *testing.T) {
	s := newTestServer(t, nil)

	resp := s.call(t, http.MethodGet, "/api/lots/no-existe", "operador", nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", decode[dto.ErrorResponse](t, resp).Code)
}

func TestRouter_HistorialDeMovimientos_RecepcionYDespacho(t *testing.T) {
	s := newTestServer(t, nil)
	_, first, _ := s.seedLots(t)

	resp := s.call(t, http.MethodPost, "/api/dispatch", "operador", dto.DispatchRequest{ProductID: "P-100", Quantity: 2})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = s.call(t, http.MethodGet, "/api/lots/"+first.ID+"/movements", "operador", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	movs := decode[[]dto.MovementResponse](t, resp)
	require.Len(t, movs, 2)
	assert.Equal(t, "dispatch", movs[0].Type, "más reciente primero")
	assert.Equal(t, "reception", movs[1].Type)
}

func TestRouter_Roles(t *testing.T) {
	s := newTestServer(t, nil)

	cases := []struct {
		name, method, path, role string
		body                     any
		want                     int
	}{
		{"sin token", http.MethodGet, "/api/lots", "", nil, http.StatusUnauthorized},
		{"supervisor no crea ubicaciones", http.MethodPost, "/api/locations", "supervisor",
			dto.CreateLocationRequest{Code: "X", Type: "RACK", StorageType: "frozen"}, http.StatusForbidden},
		{"operador no ve reportes", http.MethodGet, "/api/reports/fifo-metrics", "operador", nil, http.StatusForbidden},
		{"operador no registra temperaturas", http.MethodGet, "/api/quality/temperatures", "operador", nil, http.StatusForbidden},
		{"operador no registra usuarios", http.MethodPost, "/api/auth/register", "operador",
			dto.RegisterRequest{Email: "x@y.mx", Password: "12345678"}, http.StatusForbidden},
		{"supervisor opera lotes", http.MethodGet, "/api/lots", "supervisor", nil, http.StatusOK},
		{"supervisor ve reportes", http.MethodGet, "/api/reports/fifo-metrics", "supervisor", nil, http.StatusOK},
		{"admin ve calidad", http.MethodGet, "/api/quality/incidents", "admin", nil, http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := s.call(t, tc.method, tc.path, tc.role, tc.body)
			defer resp.Body.Close()
			assert.Equal(t, tc.want, resp.StatusCode)
		})
	}
}

func TestRouter_ReporteDeCaducidades(t *testing.T) {
	s := newTestServer(t, nil)
	s.seedLots(t)

	resp := s.call(t, http.MethodGet, "/api/reports/expiring?days=12", "supervisor", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	rows := decode[[]dto.ExpirationRowResponse](t, resp)
	require.Len(t, rows, 1)
	assert.Equal(t, "L1", rows[0].Lot.LotNumber)
	assert.Equal(t, 10, rows[0].DaysLeft)

	resp = s.call(t, http.MethodGet, "/api/reports/expiring.pdf?days=30", "supervisor", nil)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(raw, []byte("%PDF")))
}

func TestRouter_OrdenSeEmbarcaPorFIFO(t *testing.T) {
	s := newTestServer(t, nil)
	_, first, _ := s.seedLots(t)

	resp := s.call(t, http.MethodPost, "/api/orders", "operador", dto.CreateOrderRequest{
		OrderNumber: "ORD-001", Customer: "Abarrotes Norte",
		Items: []dto.CreateOrderItemRequest{{LotID: first.ID, Quantity: 6}},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	order := decode[dto.OrderResponse](t, resp)
	assert.Equal(t, "pending", order.Status)
	assert.Equal(t, 6, order.TotalItems)

	resp = s.call(t, http.MethodPost, "/api/orders/"+order.ID+"/ship", "operador", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	shipped := decode[dto.OrderResponse](t, resp)
	assert.Equal(t, "shipped", shipped.Status)
	assert.NotNil(t, shipped.ShippingDate)

	resp = s.call(t, http.MethodGet, "/api/lots/"+first.ID, "operador", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 0, decode[dto.LotResponse](t, resp).Quantity)
}

func TestRouter_Login(t *testing.T) {
	s := newTestServer(t, nil)
	_, err := s.authUC.RegisterUser(context.Background(), dto.RegisterRequest{
		Email: "ana@frio.mx", Password: "secreta-123", Name: "Ana", Role: "supervisor",
	})
	require.NoError(t, err)

	resp := s.call(t, http.MethodPost, "/api/auth/login", "", dto.LoginRequest{Email: "ana@frio.mx", Password: "secreta-123"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	out := decode[dto.LoginResponse](t, resp)
	assert.NotEmpty(t, out.Token)
	assert.Equal(t, "supervisor", out.User.Role)

	resp = s.call(t, http.MethodPost, "/api/auth/login", "", dto.LoginRequest{Email: "ana@frio.mx", Password: "incorrecta"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	resp = s.call(t, http.MethodPost, "/api/auth/login", "", dto.LoginRequest{Email: "nadie@frio.mx", Password: "incorrecta"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, "email inexistente no se distingue")
	resp.Body.Close()
}

func TestRouter_Health(t *testing.T) {
	resp := newTestServer(t, nil).call(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	down := newTestServer(t, func(context.Context) error { return errors.New("sin conexión") })
	resp = down.call(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	resp.Body.Close()
}
