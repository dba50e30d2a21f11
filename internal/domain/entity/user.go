package entity

import "time"

// Roles de profiles. La autenticación la resuelve el backend; aquí solo se usan para autorizar.
const (
	RoleAdmin      = "admin"
	RoleDispatcher = "dispatcher"
	RoleTechnician = "technician"
	RoleAccountant = "accountant"
)

// PayrollRoles roles que entran en la nómina.
var PayrollRoles = []string{RoleTechnician, RoleDispatcher}

// Profile usuario de la empresa (tabla profiles, 1:1 con el usuario del backend).
type Profile struct {
	ID        string
	CompanyID string
	FullName  string
	Email     string
	Role      string
	IsActive  bool
	CreatedAt time.Time
}
