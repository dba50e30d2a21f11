package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados y tipos de registro de horas.
const (
	TimeLogStatusPending  = "pending"
	TimeLogStatusApproved = "approved"

	TimeTypeRegular  = "regular"
	TimeTypeOvertime = "overtime"
)

// TimeLog registro de entrada/salida de un técnico.
type TimeLog struct {
	ID             string
	CompanyID      string
	TechnicianID   string
	TechnicianName string
	TicketID       *string
	ClockIn        time.Time
	ClockOut       *time.Time
	IsBillable     *bool // nil se trata como facturable
	BillingAmount  decimal.Decimal
	CostAmount     decimal.Decimal
	Status         string
	TimeType       string
}

// Hours horas transcurridas; cero si el registro sigue abierto.
func (t TimeLog) Hours() decimal.Decimal {
	if t.ClockOut == nil {
		return decimal.Zero
	}
	return decimal.NewFromFloat(t.ClockOut.Sub(t.ClockIn).Hours())
}

// Billable informa si el registro cuenta como facturable.
func (t TimeLog) Billable() bool {
	return t.IsBillable == nil || *t.IsBillable
}
