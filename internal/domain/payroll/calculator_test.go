package payroll_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/intelliservice-api/internal/domain/entity"
	"github.com/jhoicas/intelliservice-api/internal/domain/payroll"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func percentage(amount string, active bool) entity.PayrollDeduction {
	return entity.PayrollDeduction{CalculationMethod: entity.CalcPercentage, Amount: dec(amount), IsActive: active}
}

func fixed(amount string, active bool) entity.PayrollDeduction {
	return entity.PayrollDeduction{CalculationMethod: entity.CalcFixedAmount, Amount: dec(amount), IsActive: active}
}

func TestNetPay_DeduccionPorcentual(t *testing.T) {
	net := payroll.NetPay(dec("1000"), []entity.PayrollDeduction{percentage("10", true)})
	assert.True(t, dec("900").Equal(net), "obtenido %s", net)
}

func TestNetPay_DeduccionFija(t *testing.T) {
	net := payroll.NetPay(dec("1000"), []entity.PayrollDeduction{fixed("50", true)})
	assert.True(t, dec("950").Equal(net), "obtenido %s", net)
}

func TestNetPay_DeduccionesInactivasNoAplican(t *testing.T) {
	rules := []entity.PayrollDeduction{percentage("10", false), fixed("50", false)}
	net := payroll.NetPay(dec("1000"), rules)
	assert.True(t, dec("1000").Equal(net), "obtenido %s", net)
}

func TestCalculate_HorasExtra(t *testing.T) {
	rates := payroll.Rates{Hourly: dec("25"), OvertimeMultiplier: dec("1.5")}
	pay := payroll.Calculate(payroll.Hours{Regular: dec("40"), Overtime: dec("4")}, rates,
		[]entity.PayrollDeduction{percentage("10", true), fixed("20", true), fixed("999", false)})

	assert.True(t, dec("1000").Equal(pay.RegularPay))
	assert.True(t, dec("150").Equal(pay.OvertimePay))
	assert.True(t, dec("1150").Equal(pay.Gross))
	assert.True(t, dec("135").Equal(pay.Deductions), "115 + 20, obtenido %s", pay.Deductions)
	assert.True(t, dec("1015").Equal(pay.Net))
}

func TestHoursByEmployee(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 15, 23, 59, 59, 0, time.UTC)
	in := start.Add(8 * time.Hour)
	out := func(h int) *time.Time { t := in.Add(time.Duration(h) * time.Hour); return &t }

	logs := []entity.TimeLog{
		{TechnicianID: "a", ClockIn: in, ClockOut: out(8), Status: "approved", TimeType: "regular"},
		{TechnicianID: "a", ClockIn: in, ClockOut: out(2), Status: "approved", TimeType: "overtime"},
		{TechnicianID: "a", ClockIn: in, ClockOut: out(5), Status: "approved", TimeType: ""},
		{TechnicianID: "a", ClockIn: in, ClockOut: out(9), Status: "pending"},
		{TechnicianID: "b", ClockIn: in, Status: "approved"},
		{TechnicianID: "c", ClockIn: end.Add(time.Hour), ClockOut: out(400), Status: "approved"},
	}
	got := payroll.HoursByEmployee(logs, start, end)

	assert.Len(t, got, 1)
	assert.True(t, dec("13").Equal(got["a"].Regular))
	assert.True(t, dec("2").Equal(got["a"].Overtime))
	assert.True(t, dec("15").Equal(got["a"].Total()))
}

func TestFormatRunNumber(t *testing.T) {
	assert.Equal(t, "PR-2024-0007", payroll.FormatRunNumber(2024, 7))
}

func TestCanProcess(t *testing.T) {
	assert.True(t, payroll.CanProcess(entity.PayrollStatusDraft))
	assert.True(t, payroll.CanProcess(entity.PayrollStatusApproved))
	assert.False(t, payroll.CanProcess(entity.PayrollStatusPaid))
	assert.False(t, payroll.CanProcess(entity.PayrollStatusCancelled))
}
