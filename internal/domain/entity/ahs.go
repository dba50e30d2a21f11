package entity

import "time"

// Claves de accounting_settings para garantías AHS.
const (
	SettingAHSDiagnosisFee   = "ahs_default_diagnosis_fee"
	SettingAHSLaborRate      = "ahs_default_labor_rate"
	SettingAHSBillToCustomer = "ahs_bill_to_customer_id"
)

// Acciones registradas en ahs_audit_log.
const (
	AuditSettingUpdated         = "setting_updated"
	AuditAHSInvoiceCreated      = "ahs_invoice_created"
	AuditCustomerInvoiceCreated = "customer_invoice_created"
)

// AHSAuditEntry entrada del log de auditoría de garantías.
type AHSAuditEntry struct {
	ID         string
	CompanyID  string
	EntityType string // setting | invoice
	EntityID   string
	Action     string
	OldValue   string
	NewValue   string
	ChangedBy  string
	Reason     string
	CreatedAt  time.Time
}
