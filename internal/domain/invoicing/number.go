// Package invoicing reglas puras de facturación: formato de numeración y reparto de
// líneas de garantía AHS entre la aseguradora y el cliente.
package invoicing

import (
	"fmt"
	"time"
)

// InvoicePrefix prefijo de toda factura.
const InvoicePrefix = "INV"

// Period YYMM de la fecha, usado como segmento del número.
func Period(t time.Time) string {
	return t.Format("0601")
}

// SequenceKey clave del contador atómico: "INV-2401". Cada mes reinicia la secuencia.
// El contador vive en document_sequences; la siembra con el mayor número existente la hace
// el propio UPSERT del repositorio.
func SequenceKey(prefix string, t time.Time) string {
	return prefix + "-" + Period(t)
}

// FormatInvoiceNumber INV-2401-0043.
func FormatInvoiceNumber(prefix, yymm string, seq int64) string {
	return fmt.Sprintf("%s-%s-%04d", prefix, yymm, seq)
}
