package invoicing

import (
	"errors"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/intelliservice-api/internal/domain/entity"
)

// Valores por defecto cuando accounting_settings no tiene las claves AHS.
var (
	DefaultDiagnosisFee = decimal.NewFromInt(94)
	DefaultLaborRate    = decimal.NewFromInt(94)

	maxDiagnosisFee = decimal.NewFromInt(10000)
	maxLaborRate    = decimal.NewFromInt(1000)
)

// AHSDefaults configuración de facturación de garantías.
type AHSDefaults struct {
	DiagnosisFee     decimal.Decimal `json:"diagnosis_fee"`
	LaborRate        decimal.Decimal `json:"labor_rate"`
	BillToCustomerID string          `json:"bill_to_customer_id"`
}

// ValidateAHSSettings verifica rangos: tarifa de diagnóstico en [0, 10000] y tarifa de mano de obra en [0, 1000].
func ValidateAHSSettings(diagnosisFee, laborRate decimal.Decimal) error {
	var errs []error
	if diagnosisFee.IsNegative() {
		errs = append(errs, errors.New("la tarifa de diagnóstico no puede ser negativa"))
	}
	if diagnosisFee.GreaterThan(maxDiagnosisFee) {
		errs = append(errs, errors.New("la tarifa de diagnóstico no puede superar 10000"))
	}
	if laborRate.IsNegative() {
		errs = append(errs, errors.New("la tarifa de mano de obra no puede ser negativa"))
	}
	if laborRate.GreaterThan(maxLaborRate) {
		errs = append(errs, errors.New("la tarifa de mano de obra no puede superar 1000"))
	}
	return errors.Join(errs...)
}

var settingDisplayNames = map[string]string{
	entity.SettingAHSDiagnosisFee:   "AHS Diagnosis Fee",
	entity.SettingAHSLaborRate:      "AHS Labor Rate",
	entity.SettingAHSBillToCustomer: "AHS Bill-To Customer",
}

// SettingDisplayName nombre legible de una clave; la propia clave si no se conoce.
func SettingDisplayName(key string) string {
	if name, ok := settingDisplayNames[key]; ok {
		return name
	}
	return key
}

// IsAHSSettingKey informa si la clave es editable desde la configuración AHS.
func IsAHSSettingKey(key string) bool {
	_, ok := settingDisplayNames[key]
	return ok
}
