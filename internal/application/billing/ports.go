package billing

import (
	"context"

	"github.com/jhoicas/intelliservice-api/internal/application/usecase"
	"github.com/jhoicas/intelliservice-api/internal/domain/entity"
	"github.com/jhoicas/intelliservice-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción con los repos de facturación.
// Si fn devuelve error se hace rollback de factura, líneas y auditoría.
type TxRunner interface {
	RunBilling(ctx context.Context, fn func(
		invoices repository.InvoiceRepository,
		ahs repository.AHSRepository,
	) error) error
}

// InvoicePDFGenerator representación gráfica de una factura. logo puede venir vacío.
type InvoicePDFGenerator interface {
	GenerateInvoicePDF(ctx context.Context, invoice *entity.Invoice, lines []entity.InvoiceLineItem, companyName string, logo []byte) ([]byte, error)
}

// Recorder cuenta los números de documento emitidos.
type Recorder interface {
	DocumentNumber(kind string)
}

type nopRecorder struct{}

func (nopRecorder) DocumentNumber(string) {}

// ProfileSource perfil de la empresa para el encabezado del PDF.
type ProfileSource interface {
	Current(ctx context.Context, companyID string) usecase.Profile
}
