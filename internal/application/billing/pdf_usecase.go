package billing

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/jhoicas/intelliservice-api/internal/application/ports"
	"github.com/jhoicas/intelliservice-api/internal/domain"
	"github.com/jhoicas/intelliservice-api/internal/domain/repository"
)

// PDFUseCase genera el PDF de una factura con el encabezado de la empresa.
type PDFUseCase struct {
	invoices  repository.InvoiceRepository
	profiles  ProfileSource
	storage   ports.PhotoStorage
	generator InvoicePDFGenerator
	log       zerolog.Logger
}

// NewPDFUseCase construye el caso de uso. storage puede ser nil: el PDF sale sin logo.
func NewPDFUseCase(
	invoices repository.InvoiceRepository,
	profiles ProfileSource,
	storage ports.PhotoStorage,
	generator InvoicePDFGenerator,
	log zerolog.Logger,
) *PDFUseCase {
	return &PDFUseCase{invoices: invoices, profiles: profiles, storage: storage, generator: generator, log: log}
}

// DownloadInvoicePDF carga cabecera y líneas y genera el PDF.
//
// Retorna:
//   - (pdfBytes, filename, nil)  si todo sale bien.
//   - domain.ErrNotFound         si la factura no existe en la empresa.
func (uc *PDFUseCase) DownloadInvoicePDF(ctx context.Context, companyID, invoiceID string) ([]byte, string, error) {
	inv, err := uc.invoices.GetByID(ctx, companyID, invoiceID)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: obtener factura: %w", err)
	}
	if inv == nil {
		return nil, "", domain.ErrNotFound
	}
	lines, err := uc.invoices.GetLineItems(ctx, inv.ID)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: obtener líneas: %w", err)
	}

	profile := uc.profiles.Current(ctx, companyID)
	logo := uc.logo(ctx, companyID, profile.LogoURL())

	pdfBytes, err := uc.generator.GenerateInvoicePDF(ctx, inv, lines, profile.Name(), logo)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: generación fallida: %w", err)
	}
	return pdfBytes, fmt.Sprintf("factura_%s.pdf", inv.InvoiceNumber), nil
}

// logo descarga el logo si vive en nuestro bucket. Cualquier fallo deja el PDF sin logo.
func (uc *PDFUseCase) logo(ctx context.Context, companyID, url string) []byte {
	if url == "" || uc.storage == nil {
		return nil
	}
	data, err := uc.storage.Download(ctx, url)
	if err != nil {
		uc.log.Debug().Err(err).Str("company_id", companyID).Msg("pdf: logo no disponible")
		return nil
	}
	return data
}
