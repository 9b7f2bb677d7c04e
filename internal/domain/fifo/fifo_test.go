package fifo_test

import (
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/holaaposmx/Controdealmacenfrio/internal/domain"
	"github.com/holaaposmx/Controdealmacenfrio/internal/domain/entity"
	"github.com/holaaposmx/Controdealmacenfrio/internal/domain/fifo"
	"github.com/holaaposmx/Controdealmacenfrio/internal/domain/stock"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers
// ──────────────────────────────────────────────────────────────────────────────

func day(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func loc(s string) *string { return &s }

func lot(id string, qty int, exp *time.Time) entity.Lot {
	return entity.Lot{
		ID:             id,
		ProductID:      "PROD-1",
		Quantity:       qty,
		LocationID:     loc("RACK-A1"),
		ExpirationDate: exp,
		Status:         entity.LotStatusInStock,
	}
}

var today = time.Date(2023, 6, 15, 10, 30, 0, 0, time.UTC)

// ──────────────────────────────────────────────────────────────────────────────
// Orden FIFO
// ──────────────────────────────────────────────────────────────────────────────

func TestOrderByFIFO_FechasAscendentesYNulosAlFinal(t *testing.T) {
	lots := []entity.Lot{
		lot("sin-fecha-1", 1, nil),
		lot("L3", 1, day(2023, 7, 1)),
		lot("L1", 1, day(2023, 6, 20)),
		lot("sin-fecha-2", 1, nil),
		lot("L2", 1, day(2023, 6, 25)),
	}

	got := fifo.OrderByFIFO(lots)

	ids := make([]string, 0, len(got))
	for _, l := range got {
		ids = append(ids, l.ID)
	}
	assert.Equal(t, []string{"L1", "L2", "L3", "sin-fecha-1", "sin-fecha-2"}, ids)
	assert.Equal(t, "sin-fecha-1", lots[0].ID, "la entrada no debe modificarse")
}

func TestOrderByFIFO_EmpatesConservanOrden(t *testing.T) {
	lots := []entity.Lot{
		lot("A", 1, day(2023, 6, 20)),
		lot("B", 1, day(2023, 6, 20)),
		lot("C", 1, day(2023, 6, 20)),
	}
	got := fifo.OrderByFIFO(lots)
	assert.Equal(t, "A", got[0].ID)
	assert.Equal(t, "B", got[1].ID)
	assert.Equal(t, "C", got[2].ID)
}

func TestOrderByFIFO_PropiedadOrdenAleatorio(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	for iter := 0; iter < 200; iter++ {
		n := r.Intn(20)
		lots := make([]entity.Lot, 0, n)
		for i := 0; i < n; i++ {
			var exp *time.Time
			if r.Intn(4) > 0 {
				exp = day(2023, 6, 1+r.Intn(60))
			}
			lots = append(lots, lot("x", 1, exp))
		}

		got := fifo.OrderByFIFO(lots)
		require.Len(t, got, n)

		seenNil := false
		for i, l := range got {
			if l.ExpirationDate == nil {
				seenNil = true
				continue
			}
			require.False(t, seenNil, "un lote fechado no puede ir después de uno sin fecha")
			if i > 0 && got[i-1].ExpirationDate != nil {
				require.False(t, l.ExpirationDate.Before(*got[i-1].ExpirationDate), "fechas no decrecientes")
			}
		}
	}
}

func TestNextToDispatch_FiltraCategoriaYLimite(t *testing.T) {
	a := lot("A", 5, day(2023, 6, 30))
	a.Category = "lacteos"
	b := lot("B", 5, day(2023, 6, 20))
	b.Category = "lacteos"
	c := lot("C", 5, day(2023, 6, 18))
	c.Category = "carnes"
	d := lot("D", 0, day(2023, 6, 16))
	d.Category = "lacteos"

	got := fifo.NextToDispatch([]entity.Lot{a, b, c, d}, "lacteos", 1)
	require.Len(t, got, 1)
	assert.Equal(t, "B", got[0].ID)

	all := fifo.NextToDispatch([]entity.Lot{a, b, c, d}, "", 10)
	require.Len(t, all, 3, "los lotes en cero no se ofrecen")
	assert.Equal(t, "C", all[0].ID)
}

// ──────────────────────────────────────────────────────────────────────────────
// Clasificación por caducidad
// ──────────────────────────────────────────────────────────────────────────────

func TestClassify_Umbrales(t *testing.T) {
	tests := []struct {
		name string
		exp  *time.Time
		want fifo.Risk
	}{
		{"ayer", day(2023, 6, 14), fifo.RiskExpired},
		{"hoy", day(2023, 6, 15), fifo.RiskExpired},
		{"mañana", day(2023, 6, 16), fifo.RiskCritical},
		{"tres días", day(2023, 6, 18), fifo.RiskCritical},
		{"cuatro días", day(2023, 6, 19), fifo.RiskWarning},
		{"siete días", day(2023, 6, 22), fifo.RiskWarning},
		{"ocho días", day(2023, 6, 23), fifo.RiskNormal},
		{"sin fecha", nil, fifo.RiskNormal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := lot("L", 1, tt.exp)
			got := fifo.Classify(l, today)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, fifo.Classify(l, today), "la clasificación es pura")
		})
	}
}

func TestClassify_UmbralesPersonalizados(t *testing.T) {
	th := fifo.Thresholds{CriticalDays: 1, WarningDays: 2}
	assert.Equal(t, fifo.RiskWarning, th.Classify(lot("L", 1, day(2023, 6, 17)), today))
	assert.Equal(t, fifo.RiskNormal, th.Classify(lot("L", 1, day(2023, 6, 18)), today))
}

func TestDaysUntilExpiration_IgnoraHora(t *testing.T) {
	exp := time.Date(2023, 6, 18, 0, 0, 0, 0, time.UTC)
	late := time.Date(2023, 6, 15, 23, 59, 0, 0, time.UTC)
	assert.Equal(t, 3, fifo.DaysUntilExpiration(exp, late))
	assert.Equal(t, -1, fifo.DaysUntilExpiration(exp, time.Date(2023, 6, 19, 1, 0, 0, 0, time.UTC)))
}

func TestExpiringWithin_EscenarioD(t *testing.T) {
	soon := lot("pronto", 4, day(2023, 6, 18))
	later := lot("tarde", 4, day(2023, 7, 1))

	got := fifo.ExpiringWithin([]entity.Lot{later, soon}, 7, today)

	require.Len(t, got, 1)
	assert.Equal(t, "pronto", got[0].ID)
}

func TestExpiringWithin_ExcluyeCaducadosYSinExistencias(t *testing.T) {
	lots := []entity.Lot{
		lot("caducado", 3, day(2023, 6, 10)),
		lot("vacio", 0, day(2023, 6, 16)),
		lot("hoy", 3, day(2023, 6, 15)),
		lot("sin-fecha", 3, nil),
	}
	got := fifo.ExpiringWithin(lots, 7, today)
	require.Len(t, got, 1)
	assert.Equal(t, "hoy", got[0].ID)
}

func TestComplianceMetric_EscenarioE(t *testing.T) {
	lots := []entity.Lot{
		lot("caducado", 2, day(2023, 6, 10)),
		lot("en-3", 2, day(2023, 6, 18)),
		lot("en-10", 2, day(2023, 6, 25)),
		lot("en-30", 2, day(2023, 7, 15)),
		lot("sin-fecha", 2, nil),
	}

	m := fifo.ComplianceMetric(lots, today)

	assert.Equal(t, 4, m.DatedLotCount)
	assert.Equal(t, 1, m.ExpiredCount)
	assert.Equal(t, 1, m.ExpiringIn7)
	assert.Equal(t, 1, m.ExpiringIn14ExclusiveOf7)
	assert.Equal(t, 75, m.CompliancePercentage)
}

func TestComplianceMetric_SinLotesFechadosEs100(t *testing.T) {
	m := fifo.ComplianceMetric([]entity.Lot{lot("s", 5, nil)}, today)
	assert.Equal(t, 100, m.CompliancePercentage)
	assert.Zero(t, m.DatedLotCount)
}

func TestEffectiveStatus_CaducadoPrevalece(t *testing.T) {
	assert.Equal(t, entity.LotStatusExpired, fifo.EffectiveStatus(lot("L", 5, day(2023, 6, 14)), today))
	assert.Equal(t, entity.LotStatusInStock, fifo.EffectiveStatus(lot("L", 5, day(2023, 6, 15)), today))
}

// ──────────────────────────────────────────────────────────────────────────────
// Planificador de despacho
// ──────────────────────────────────────────────────────────────────────────────

func scenarioLots() []entity.Lot {
	return []entity.Lot{
		lot("L2", 10, day(2023, 6, 25)),
		lot("L1", 5, day(2023, 6, 20)),
	}
}

func TestPlanDispatch_EscenarioA(t *testing.T) {
	ref := "ORD-1"
	plan, err := fifo.PlanDispatch(scenarioLots(), fifo.DispatchRequest{
		ProductID: "PROD-1", Quantity: 7, PerformedBy: "ana", ReferenceCode: &ref, At: today,
	}, stock.NewRecorder(0))
	require.NoError(t, err)

	require.Len(t, plan.Allocations, 2)
	assert.Equal(t, "L1", plan.Allocations[0].Lot.ID)
	assert.Equal(t, 5, plan.Allocations[0].QuantityTaken)
	assert.Equal(t, "L2", plan.Allocations[1].Lot.ID)
	assert.Equal(t, 2, plan.Allocations[1].QuantityTaken)

	assert.Equal(t, 0, plan.Updated[0].Quantity)
	assert.Equal(t, entity.LotStatusOutOfStock, plan.Updated[0].Status)
	assert.Equal(t, 8, plan.Updated[1].Quantity)
	assert.Equal(t, entity.LotStatusLowStock, plan.Updated[1].Status, "8 < 10 es stock bajo")

	require.Len(t, plan.Intents, 2, "un movimiento por asignación")
	for i, in := range plan.Intents {
		assert.Equal(t, entity.MovementDispatch, in.Movement.Type)
		assert.Equal(t, plan.Allocations[i].QuantityTaken, in.Movement.Quantity)
		assert.Equal(t, "RACK-A1", *in.Movement.FromLocationID)
		assert.Equal(t, "ORD-1", *in.Movement.ReferenceCode)
		assert.Equal(t, plan.Allocations[i].Lot.Quantity, in.Mutation.ExpectedQuantity)
	}
}

func TestPlanDispatch_EscenarioB_InventarioInsuficiente(t *testing.T) {
	lots := scenarioLots()
	_, err := fifo.PlanDispatch(lots, fifo.DispatchRequest{ProductID: "PROD-1", Quantity: 20}, nil)

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInsufficientInventory))
	var insuf *domain.InsufficientInventoryError
	require.True(t, errors.As(err, &insuf))
	assert.Equal(t, 20, insuf.Requested)
	assert.Equal(t, 15, insuf.Available)
	assert.Equal(t, 10, lots[0].Quantity, "ningún lote se modifica")
	assert.Equal(t, 5, lots[1].Quantity, "ningún lote se modifica")
}

func TestPlanDispatch_Errores(t *testing.T) {
	noLoc := lot("L9", 5, day(2023, 6, 16))
	noLoc.LocationID = nil

	tests := []struct {
		name string
		lots []entity.Lot
		qty  int
		want error
	}{
		{"cantidad cero", scenarioLots(), 0, domain.ErrInvalidQuantity},
		{"cantidad negativa", scenarioLots(), -3, domain.ErrInvalidQuantity},
		{"sin lotes", nil, 1, domain.ErrOutOfStock},
		{"solo lotes vacíos", []entity.Lot{lot("V", 0, nil)}, 1, domain.ErrOutOfStock},
		{"lote sin ubicación", append(scenarioLots(), noLoc), 2, domain.ErrMissingLocation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := fifo.PlanDispatch(tt.lots, fifo.DispatchRequest{ProductID: "PROD-1", Quantity: tt.qty}, nil)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestPlanDispatch_LoteSinUbicacionNoTocadoNoFalla(t *testing.T) {
	noLoc := lot("L9", 5, nil)
	noLoc.LocationID = nil
	plan, err := fifo.PlanDispatch(append(scenarioLots(), noLoc), fifo.DispatchRequest{ProductID: "PROD-1", Quantity: 6}, nil)
	require.NoError(t, err)
	assert.Equal(t, 6, plan.Taken())
}

func TestPlanDispatch_IgnoraOtrosProductos(t *testing.T) {
	other := lot("X", 100, day(2023, 6, 16))
	other.ProductID = "PROD-2"
	_, err := fifo.PlanDispatch([]entity.Lot{other}, fifo.DispatchRequest{ProductID: "PROD-1", Quantity: 1}, nil)
	assert.ErrorIs(t, err, domain.ErrOutOfStock)
}

func TestPlanDispatch_PropiedadConservacion(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	for iter := 0; iter < 300; iter++ {
		n := 1 + r.Intn(8)
		lots := make([]entity.Lot, 0, n)
		before := map[string]int{}
		for i := 0; i < n; i++ {
			var exp *time.Time
			if r.Intn(3) > 0 {
				exp = day(2023, 6, 1+r.Intn(40))
			}
			id := string(rune('A' + i))
			l := lot(id, r.Intn(15), exp)
			lots = append(lots, l)
			before[id] = l.Quantity
		}
		available := fifo.Available(lots, "PROD-1")
		q := 1 + r.Intn(60)

		plan, err := fifo.PlanDispatch(lots, fifo.DispatchRequest{ProductID: "PROD-1", Quantity: q}, nil)
		if available < q {
			require.Error(t, err)
			require.Nil(t, plan, "nunca asigna parcialmente")
			continue
		}
		require.NoError(t, err)
		require.Equal(t, q, plan.Taken())

		diff := 0
		for i, u := range plan.Updated {
			require.GreaterOrEqual(t, u.Quantity, 0)
			require.Greater(t, plan.Allocations[i].QuantityTaken, 0)
			diff += before[u.ID] - u.Quantity
		}
		require.Equal(t, q, diff)
		require.Len(t, plan.Intents, len(plan.Allocations))
	}
}
