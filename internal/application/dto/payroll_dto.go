package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/intelliservice-api/internal/domain/entity"
)

// CreatePayrollPeriodRequest body para POST /api/payroll/runs.
type CreatePayrollPeriodRequest struct {
	PeriodStart string `json:"period_start" validate:"required,datetime=2006-01-02"`
	PeriodEnd   string `json:"period_end" validate:"required,datetime=2006-01-02"`
	PayDate     string `json:"pay_date" validate:"required,datetime=2006-01-02"`
}

// PayrollRunResponse corrida de nómina; Details solo en el detalle.
type PayrollRunResponse struct {
	ID              string                  `json:"id"`
	RunNumber       string                  `json:"run_number"`
	PeriodStart     string                  `json:"period_start"`
	PeriodEnd       string                  `json:"period_end"`
	PayDate         string                  `json:"pay_date"`
	Status          string                  `json:"status"`
	TotalGrossPay   decimal.Decimal         `json:"total_gross_pay"`
	TotalDeductions decimal.Decimal         `json:"total_deductions"`
	TotalNetPay     decimal.Decimal         `json:"total_net_pay"`
	EmployeeCount   int                     `json:"employee_count"`
	ApprovedBy      *string                 `json:"approved_by,omitempty"`
	ApprovedAt      *time.Time              `json:"approved_at,omitempty"`
	CreatedAt       time.Time               `json:"created_at"`
	Details         []PayrollDetailResponse `json:"details,omitempty"`
}

// PayrollDetailResponse línea por empleado.
type PayrollDetailResponse struct {
	EmployeeID      string          `json:"employee_id"`
	EmployeeName    string          `json:"employee_name"`
	RegularHours    decimal.Decimal `json:"regular_hours"`
	OvertimeHours   decimal.Decimal `json:"overtime_hours"`
	RegularPay      decimal.Decimal `json:"regular_pay"`
	OvertimePay     decimal.Decimal `json:"overtime_pay"`
	GrossPay        decimal.Decimal `json:"gross_pay"`
	TotalDeductions decimal.Decimal `json:"total_deductions"`
	NetPay          decimal.Decimal `json:"net_pay"`
}

// PayrollRunFromEntity mapea la corrida y, si vienen, sus detalles.
func PayrollRunFromEntity(r *entity.PayrollRun, details []entity.PayrollDetail) PayrollRunResponse {
	out := PayrollRunResponse{
		ID:              r.ID,
		RunNumber:       r.RunNumber,
		PeriodStart:     r.PeriodStart.Format(DateLayout),
		PeriodEnd:       r.PeriodEnd.Format(DateLayout),
		PayDate:         r.PayDate.Format(DateLayout),
		Status:          r.Status,
		TotalGrossPay:   r.TotalGrossPay,
		TotalDeductions: r.TotalDeductions,
		TotalNetPay:     r.TotalNetPay,
		EmployeeCount:   r.EmployeeCount,
		ApprovedBy:      r.ApprovedBy,
		ApprovedAt:      r.ApprovedAt,
		CreatedAt:       r.CreatedAt,
	}
	for _, d := range details {
		out.Details = append(out.Details, PayrollDetailResponse{
			EmployeeID:      d.EmployeeID,
			EmployeeName:    d.EmployeeName,
			RegularHours:    d.RegularHours,
			OvertimeHours:   d.OvertimeHours,
			RegularPay:      d.RegularPay,
			OvertimePay:     d.OvertimePay,
			GrossPay:        d.GrossPay,
			TotalDeductions: d.TotalDeductions,
			NetPay:          d.NetPay,
		})
	}
	return out
}

// CreateDeductionRequest body para POST /api/payroll/deductions.
type CreateDeductionRequest struct {
	Name              string          `json:"name" validate:"required,max=120"`
	DeductionType     string          `json:"deduction_type" validate:"required,oneof=tax insurance retirement garnishment other"`
	CalculationMethod string          `json:"calculation_method" validate:"required,oneof=percentage fixed_amount"`
	Amount            decimal.Decimal `json:"amount"`
	IsPreTax          bool            `json:"is_pre_tax"`
}

// SetDeductionActiveRequest body para PATCH /api/payroll/deductions/:id.
type SetDeductionActiveRequest struct {
	IsActive bool `json:"is_active"`
}

// DeductionResponse regla de deducción.
type DeductionResponse struct {
	ID                string          `json:"id"`
	Name              string          `json:"name"`
	DeductionType     string          `json:"deduction_type"`
	CalculationMethod string          `json:"calculation_method"`
	Amount            decimal.Decimal `json:"amount"`
	IsPreTax          bool            `json:"is_pre_tax"`
	IsActive          bool            `json:"is_active"`
}

// DeductionFromEntity mapea la regla.
func DeductionFromEntity(d entity.PayrollDeduction) DeductionResponse {
	return DeductionResponse{
		ID:                d.ID,
		Name:              d.Name,
		DeductionType:     d.DeductionType,
		CalculationMethod: d.CalculationMethod,
		Amount:            d.Amount,
		IsPreTax:          d.IsPreTax,
		IsActive:          d.IsActive,
	}
}
