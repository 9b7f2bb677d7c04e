package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/holaaposmx/Controdealmacenfrio/internal/domain"
	"github.com/holaaposmx/Controdealmacenfrio/internal/domain/entity"
	"github.com/holaaposmx/Controdealmacenfrio/internal/domain/fifo"
	"github.com/holaaposmx/Controdealmacenfrio/internal/domain/repository"
)

// ReportUseCase consultas de caducidad y rotación para la pantalla de reportes.
type ReportUseCase struct {
	lotRepo    repository.LotRepository
	thresholds fifo.Thresholds
	pdf        ExpirationReportGenerator
	now        func() time.Time
}

// NewReportUseCase construye el caso de uso. pdf puede ser nil si no se exporta PDF.
func NewReportUseCase(lotRepo repository.LotRepository, thresholds fifo.Thresholds, pdf ExpirationReportGenerator) *ReportUseCase {
	if thresholds.CriticalDays <= 0 || thresholds.WarningDays < thresholds.CriticalDays {
		thresholds = fifo.DefaultThresholds
	}
	return &ReportUseCase{lotRepo: lotRepo, thresholds: thresholds, pdf: pdf, now: time.Now}
}

// WithClock reemplaza el reloj (tests).
func (uc *ReportUseCase) WithClock(now func() time.Time) *ReportUseCase {
	uc.now = now
	return uc
}

// Expiring lotes que caducan en los próximos days días, el más próximo primero.
func (uc *ReportUseCase) Expiring(ctx context.Context, days int) ([]entity.ExpirationRow, error) {
	if days < 0 {
		return nil, fmt.Errorf("%w: días %d", domain.ErrInvalidInput, days)
	}
	lots, err := uc.lotRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	now := uc.now()
	expiring := fifo.ExpiringWithin(lots, days, now)
	rows := make([]entity.ExpirationRow, 0, len(expiring))
	for _, l := range expiring {
		rows = append(rows, entity.ExpirationRow{
			Lot:      l,
			DaysLeft: fifo.DaysUntilExpiration(*l.ExpirationDate, now),
			Risk:     string(uc.thresholds.Classify(l, now)),
		})
	}
	return rows, nil
}

// Metrics indicadores de cumplimiento FIFO.
func (uc *ReportUseCase) Metrics(ctx context.Context) (fifo.Metrics, error) {
	lots, err := uc.lotRepo.ListAll(ctx)
	if err != nil {
		return fifo.Metrics{}, err
	}
	return fifo.ComplianceMetric(lots, uc.now()), nil
}

// NextToDispatch próximos lotes a despachar, opcionalmente por categoría.
func (uc *ReportUseCase) NextToDispatch(ctx context.Context, category string, limit int) ([]entity.Lot, error) {
	if limit <= 0 {
		limit = 10
	}
	lots, err := uc.lotRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return fifo.NextToDispatch(lots, category, limit), nil
}

// ExpirationReportPDF genera el PDF del reporte de caducidades.
func (uc *ReportUseCase) ExpirationReportPDF(ctx context.Context, days int) ([]byte, error) {
	if uc.pdf == nil {
		return nil, fmt.Errorf("generador de PDF no configurado")
	}
	rows, err := uc.Expiring(ctx, days)
	if err != nil {
		return nil, err
	}
	return uc.pdf.GenerateExpirationReport(rows, days, uc.now())
}
