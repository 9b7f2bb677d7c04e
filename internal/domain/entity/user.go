package entity

import "time"

// Roles válidos para User.
const (
	RoleAdmin      = "admin"
	RoleSupervisor = "supervisor" // calidad y reportes
	RoleOperador   = "operador"   // recepción, despacho y movimientos
)

// User operador del almacén. Name se usa como performed_by en los movimientos.
type User struct {
	ID           string
	Email        string
	PasswordHash string // bcrypt hash
	Name         string
	Role         string
	Status       string // active, inactive
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
