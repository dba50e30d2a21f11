package entity

import "time"

// Claves de la tabla settings que forman el perfil visible de la empresa.
const (
	SettingCompanyName    = "company_name"
	SettingCompanyLogoURL = "company_logo_url"

	DefaultCompanyName = "IntelliService"
)

// Setting par clave/valor de configuración por empresa.
type Setting struct {
	CompanyID string
	Key       string
	Value     string
	UpdatedAt time.Time
}

// Features que se pueden activar por empresa (tabla feature_flags).
const (
	FeatureReports     = "bi_reports"
	FeaturePayroll     = "payroll"
	FeatureAHSWarranty = "ahs_warranty"
	FeatureCRM         = "crm"
	FeatureTracking    = "tracking"
)

// IsKnownFeature informa si key es una de las features anteriores.
func IsKnownFeature(key string) bool {
	switch key {
	case FeatureReports, FeaturePayroll, FeatureAHSWarranty, FeatureCRM, FeatureTracking:
		return true
	}
	return false
}

// FeatureFlag activación de una feature en una empresa.
type FeatureFlag struct {
	CompanyID  string
	FeatureKey string
	Enabled    bool
	ExpiresAt  *time.Time // nil = sin vencimiento
	UpdatedAt  time.Time
}

// Active informa si la feature está habilitada y sin vencer en el instante dado.
func (f FeatureFlag) Active(now time.Time) bool {
	if !f.Enabled {
		return false
	}
	return f.ExpiresAt == nil || f.ExpiresAt.After(now)
}
