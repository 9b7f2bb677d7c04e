// Package fifo implementa la política de rotación del almacén: primero sale lo que caduca antes.
package fifo

import (
	"sort"

	"github.com/holaaposmx/Controdealmacenfrio/internal/domain/entity"
)

// OrderByFIFO ordena los lotes por fecha de caducidad ascendente; los lotes sin fecha van
// al final. El orden es estable (empates conservan el orden de entrada) y no modifica lots.
func OrderByFIFO(lots []entity.Lot) []entity.Lot {
	out := make([]entity.Lot, len(lots))
	copy(out, lots)
	sort.SliceStable(out, func(i, j int) bool {
		return expiresBefore(out[i], out[j])
	})
	return out
}

func expiresBefore(a, b entity.Lot) bool {
	switch {
	case a.ExpirationDate == nil:
		return false
	case b.ExpirationDate == nil:
		return true
	default:
		return a.ExpirationDate.Before(*b.ExpirationDate)
	}
}

// NextToDispatch devuelve los primeros limit lotes con existencias en orden FIFO,
// filtrando por categoría si category no es vacía.
func NextToDispatch(lots []entity.Lot, category string, limit int) []entity.Lot {
	filtered := make([]entity.Lot, 0, len(lots))
	for _, l := range lots {
		if l.Quantity <= 0 {
			continue
		}
		if category != "" && l.Category != category {
			continue
		}
		filtered = append(filtered, l)
	}
	sorted := OrderByFIFO(filtered)
	if limit > 0 && len(sorted) > limit {
		sorted = sorted[:limit]
	}
	return sorted
}
