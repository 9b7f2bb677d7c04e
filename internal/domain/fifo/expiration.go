package fifo

import (
	"math"
	"sort"
	"time"

	"github.com/holaaposmx/Controdealmacenfrio/internal/domain/entity"
)

// Risk categoría de riesgo por caducidad.
type Risk string

const (
	RiskExpired  Risk = "expired"
	RiskCritical Risk = "critical"
	RiskWarning  Risk = "warning"
	RiskNormal   Risk = "normal"
)

// Thresholds límites en días para critical (<= CriticalDays) y warning (<= WarningDays).
type Thresholds struct {
	CriticalDays int
	WarningDays  int
}

// DefaultThresholds 3 días crítico, 7 días advertencia.
var DefaultThresholds = Thresholds{CriticalDays: 3, WarningDays: 7}

// DaysUntilExpiration días de calendario entre asOf y la fecha de caducidad.
// Ambas fechas se reducen al día, así que el techo de la diferencia es exacto.
// Negativo si ya caducó.
func DaysUntilExpiration(expiration, asOf time.Time) int {
	exp := civilDay(expiration)
	today := civilDay(asOf)
	return int(math.Ceil(exp.Sub(today).Hours() / 24))
}

// civilDay normaliza a medianoche UTC conservando año/mes/día de la zona de t.
func civilDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Classify con umbrales por defecto.
func Classify(lot entity.Lot, asOf time.Time) Risk {
	return DefaultThresholds.Classify(lot, asOf)
}

// Classify <= 0 días expired, <= CriticalDays critical, <= WarningDays warning, resto normal.
// Lotes sin fecha son normal.
func (t Thresholds) Classify(lot entity.Lot, asOf time.Time) Risk {
	if lot.ExpirationDate == nil {
		return RiskNormal
	}
	days := DaysUntilExpiration(*lot.ExpirationDate, asOf)
	switch {
	case days <= 0:
		return RiskExpired
	case days <= t.CriticalDays:
		return RiskCritical
	case days <= t.WarningDays:
		return RiskWarning
	default:
		return RiskNormal
	}
}

// ExpiringWithin lotes con existencias y fecha que caducan entre hoy y hoy+days (incluidos),
// ordenados por días restantes; los ya caducados quedan fuera.
func ExpiringWithin(lots []entity.Lot, days int, asOf time.Time) []entity.Lot {
	type candidate struct {
		lot  entity.Lot
		days int
	}
	var cands []candidate
	for _, l := range lots {
		if l.Quantity <= 0 || l.ExpirationDate == nil {
			continue
		}
		d := DaysUntilExpiration(*l.ExpirationDate, asOf)
		if d < 0 || d > days {
			continue
		}
		cands = append(cands, candidate{lot: l, days: d})
	}
	sort.SliceStable(cands, func(i, j int) bool { return cands[i].days < cands[j].days })
	out := make([]entity.Lot, 0, len(cands))
	for _, c := range cands {
		out = append(out, c.lot)
	}
	return out
}

// Metrics indicadores FIFO del tablero.
type Metrics struct {
	ExpiringIn7              int `json:"expiring_in_7_days"`
	ExpiringIn14ExclusiveOf7 int `json:"expiring_in_14_days"`
	ExpiredCount             int `json:"expired"`
	DatedLotCount            int `json:"dated_lots"`
	CompliancePercentage     int `json:"fifo_compliance_percentage"`
}

// ComplianceMetric calcula los indicadores sobre lotes con existencias y fecha de caducidad.
// Cumplimiento = round(100 * (fechados - caducados) / fechados); 100 si no hay fechados.
func ComplianceMetric(lots []entity.Lot, asOf time.Time) Metrics {
	var m Metrics
	for _, l := range lots {
		if l.Quantity <= 0 || l.ExpirationDate == nil {
			continue
		}
		m.DatedLotCount++
		d := DaysUntilExpiration(*l.ExpirationDate, asOf)
		switch {
		case d < 0:
			m.ExpiredCount++
		case d >= 1 && d <= 7:
			m.ExpiringIn7++
		case d >= 8 && d <= 14:
			m.ExpiringIn14ExclusiveOf7++
		}
	}
	if m.DatedLotCount == 0 {
		m.CompliancePercentage = 100
		return m
	}
	m.CompliancePercentage = int(math.Round(100 * float64(m.DatedLotCount-m.ExpiredCount) / float64(m.DatedLotCount)))
	return m
}

// EffectiveStatus estado para mostrar: "expired" prevalece si la caducidad es anterior
// a hoy; si no, el estado guardado (derivado de la cantidad).
func EffectiveStatus(lot entity.Lot, asOf time.Time) entity.LotStatus {
	if lot.ExpirationDate != nil && DaysUntilExpiration(*lot.ExpirationDate, asOf) < 0 {
		return entity.LotStatusExpired
	}
	return lot.Status
}
