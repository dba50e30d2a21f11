package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Project proyecto (instalaciones, reemplazos de equipo) con presupuesto y costo real.
type Project struct {
	ID         string
	CompanyID  string
	Name       string
	CustomerID string
	Status     string
	Budget     decimal.Decimal
	ActualCost decimal.Decimal
	CreatedAt  time.Time
}
