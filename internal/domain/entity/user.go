package entity

import "time"

// Roles válidos para User. Supervisor y admin pueden autorizar overrides del
// guard de suficiencia de stock.
const (
	RoleAdmin      = "admin"
	RoleSupervisor = "supervisor"
	RoleOperario   = "operario"
)

// CanOverrideStock indica si un rol puede autorizar posteos con stock insuficiente.
func CanOverrideStock(role string) bool {
	return role == RoleAdmin || role == RoleSupervisor
}

// User representa un usuario del sistema (pertenece a una Company).
type User struct {
	ID           string
	CompanyID    string
	Email        string
	PasswordHash string // bcrypt hash, nunca plano en dominio después de persistir
	Name         string
	Role         string // admin, supervisor, operario
	Status       string // active, inactive, suspended
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
