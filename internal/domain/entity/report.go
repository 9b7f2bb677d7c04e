package entity

// ExpirationRow fila del reporte de caducidades.
type ExpirationRow struct {
	Lot      Lot
	DaysLeft int
	Risk     string // expired, critical, warning, normal
}
