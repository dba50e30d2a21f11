package entity

import "time"

// Estados del ciclo de vida de un cliente (CRM).
const (
	CustomerStatusLead     = "lead"
	CustomerStatusActive   = "active"
	CustomerStatusInactive = "inactive"
)

// Customer cliente de servicio (residencial o comercial).
type Customer struct {
	ID                      string
	CompanyID               string
	Name                    string
	Email                   string
	Phone                   string
	Address                 string
	CustomerType            string // residential | commercial
	Status                  string
	LeadSource              string
	ProspectReplacementFlag bool
	ConvertedAt             *time.Time
	CreatedAt               time.Time
	UpdatedAt               time.Time
}

// Equipment equipo instalado en la propiedad del cliente.
type Equipment struct {
	ID               string
	CustomerID       string
	EquipmentType    string
	Manufacturer     string
	ModelNumber      string
	SerialNumber     string
	InstallationDate *time.Time
	IsActive         bool
}
