package report

import "time"

// Nombres de los reportes expuestos (ruta /api/reports/{name}).
const (
	NameCustomerValue     = "customer-value"
	NameDSO               = "dso"
	NameFinancials        = "financials"
	NameLaborEfficiency   = "labor-efficiency"
	NameProjectMargins    = "project-margins"
	NameRevenueTrends     = "revenue-trends"
	NameTechnicianMetrics = "technician-metrics"
)

// Names lista de reportes disponibles.
func Names() []string {
	return []string{
		NameCustomerValue, NameDSO, NameFinancials, NameLaborEfficiency,
		NameProjectMargins, NameRevenueTrends, NameTechnicianMetrics,
	}
}

// ColumnKind determina cómo se formatea una celda al exportar.
type ColumnKind int

const (
	KindText ColumnKind = iota
	KindMoney
	KindPercent
	KindNumber
	KindInt
	KindDate
)

// Column encabezado de columna.
type Column struct {
	Header string
	Kind   ColumnKind
}

// Stat dato de resumen (tarjeta) que acompaña a la tabla.
type Stat struct {
	Label string
	Value any
	Kind  ColumnKind
}

// Table forma tabular de un reporte, usada por los exportadores (XLSX, PDF).
// Las celdas son string, int, decimal.Decimal, time.Time o *time.Time según la columna.
type Table struct {
	Title   string
	Columns []Column
	Rows    [][]any
	Stats   []Stat
}

// Tabular lo implementa cada resumen exportable.
type Tabular interface {
	Table() Table
}

// Document tabla lista para exportar con los datos de encabezado.
type Document struct {
	Table
	CompanyName string
	LogoURL     string
	Period      Period
	GeneratedAt time.Time
	// Degraded el reporte se generó con datos vacíos por un fallo de lectura.
	Degraded bool
}
