package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una corrida de nómina.
const (
	PayrollStatusDraft      = "draft"
	PayrollStatusProcessing = "processing"
	PayrollStatusApproved   = "approved"
	PayrollStatusPaid       = "paid"
	PayrollStatusCancelled  = "cancelled"
)

// Tipos de deducción.
const (
	DeductionTax         = "tax"
	DeductionInsurance   = "insurance"
	DeductionRetirement  = "retirement"
	DeductionGarnishment = "garnishment"
	DeductionOther       = "other"
)

// Métodos de cálculo de deducciones.
const (
	CalcPercentage  = "percentage"
	CalcFixedAmount = "fixed_amount"
)

// PayrollRun corrida de nómina para un período.
type PayrollRun struct {
	ID              string
	CompanyID       string
	RunNumber       string
	PeriodStart     time.Time
	PeriodEnd       time.Time
	PayDate         time.Time
	Status          string
	TotalGrossPay   decimal.Decimal
	TotalDeductions decimal.Decimal
	TotalNetPay     decimal.Decimal
	EmployeeCount   int
	CreatedBy       string
	ApprovedBy      *string
	ApprovedAt      *time.Time
	CreatedAt       time.Time
}

// PayrollDetail línea de nómina por empleado.
type PayrollDetail struct {
	ID              string
	PayrollRunID    string
	EmployeeID      string
	EmployeeName    string
	RegularHours    decimal.Decimal
	OvertimeHours   decimal.Decimal
	RegularPay      decimal.Decimal
	OvertimePay     decimal.Decimal
	GrossPay        decimal.Decimal
	TotalDeductions decimal.Decimal
	NetPay          decimal.Decimal
}

// PayrollDeduction regla de deducción configurada.
type PayrollDeduction struct {
	ID                string
	CompanyID         string
	Name              string
	DeductionType     string
	CalculationMethod string
	Amount            decimal.Decimal // porcentaje (10 = 10%) o monto fijo
	IsPreTax          bool
	IsActive          bool
	CreatedAt         time.Time
}
