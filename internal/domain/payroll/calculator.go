// Package payroll contiene el cálculo puro de nómina: horas por empleado, pago bruto,
// deducciones y pago neto. La persistencia vive en la capa de aplicación.
package payroll

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/intelliservice-api/internal/domain/entity"
)

var hundred = decimal.NewFromInt(100)

// Hours horas regulares y extra de un empleado en el período.
type Hours struct {
	Regular  decimal.Decimal
	Overtime decimal.Decimal
}

// Total suma de horas.
func (h Hours) Total() decimal.Decimal { return h.Regular.Add(h.Overtime) }

// Rates tarifa horaria plana y multiplicador de horas extra.
type Rates struct {
	Hourly             decimal.Decimal
	OvertimeMultiplier decimal.Decimal
}

// Pay resultado del cálculo para un empleado.
type Pay struct {
	RegularPay  decimal.Decimal
	OvertimePay decimal.Decimal
	Gross       decimal.Decimal
	Deductions  decimal.Decimal
	Net         decimal.Decimal
}

// TotalDeductions aplica las reglas activas sobre el bruto. Porcentaje: bruto × monto / 100;
// monto fijo: monto. Las reglas inactivas se ignoran.
func TotalDeductions(gross decimal.Decimal, rules []entity.PayrollDeduction) decimal.Decimal {
	total := decimal.Zero
	for _, d := range rules {
		if !d.IsActive {
			continue
		}
		switch d.CalculationMethod {
		case entity.CalcPercentage:
			total = total.Add(gross.Mul(d.Amount).Div(hundred))
		case entity.CalcFixedAmount:
			total = total.Add(d.Amount)
		}
	}
	return total.Round(2)
}

// NetPay bruto menos deducciones activas.
func NetPay(gross decimal.Decimal, rules []entity.PayrollDeduction) decimal.Decimal {
	return gross.Sub(TotalDeductions(gross, rules)).Round(2)
}

// Calculate pago completo de un empleado.
func Calculate(h Hours, rates Rates, rules []entity.PayrollDeduction) Pay {
	regular := h.Regular.Mul(rates.Hourly).Round(2)
	overtime := h.Overtime.Mul(rates.Hourly).Mul(rates.OvertimeMultiplier).Round(2)
	gross := regular.Add(overtime)
	deductions := TotalDeductions(gross, rules)
	return Pay{
		RegularPay:  regular,
		OvertimePay: overtime,
		Gross:       gross,
		Deductions:  deductions,
		Net:         gross.Sub(deductions),
	}
}

// HoursByEmployee agrupa los registros aprobados con entrada dentro de [start, end].
// time_type "overtime" va a horas extra; cualquier otro valor cuenta como regular.
func HoursByEmployee(logs []entity.TimeLog, start, end time.Time) map[string]Hours {
	out := map[string]Hours{}
	for _, tl := range logs {
		if tl.Status != entity.TimeLogStatusApproved || tl.ClockOut == nil {
			continue
		}
		if tl.ClockIn.Before(start) || tl.ClockIn.After(end) {
			continue
		}
		h := out[tl.TechnicianID]
		if tl.TimeType == entity.TimeTypeOvertime {
			h.Overtime = h.Overtime.Add(tl.Hours())
		} else {
			h.Regular = h.Regular.Add(tl.Hours())
		}
		out[tl.TechnicianID] = h
	}
	return out
}

// FormatRunNumber PR-YYYY-NNNN.
func FormatRunNumber(year int, seq int64) string {
	return fmt.Sprintf("PR-%d-%04d", year, seq)
}

// CanProcess informa si una corrida en ese estado puede marcarse como pagada.
func CanProcess(status string) bool {
	return status == entity.PayrollStatusDraft || status == entity.PayrollStatusApproved
}
