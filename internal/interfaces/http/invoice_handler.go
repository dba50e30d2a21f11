package http

import (
	"context"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/intelliservice-api/internal/application/dto"
	"github.com/jhoicas/intelliservice-api/internal/domain/invoicing"
)

type ahsService interface {
	GetDefaults(ctx context.Context, companyID string) (invoicing.AHSDefaults, error)
	CreateAHSInvoice(ctx context.Context, companyID, actorID, ticketID string) (*dto.InvoiceResponse, error)
	CreateCustomerInvoice(ctx context.Context, companyID, actorID, ticketID string) (*dto.InvoiceResponse, error)
	GetTicketInvoices(ctx context.Context, companyID, ticketID string) (*dto.TicketInvoicesResponse, error)
	GetBillingBreakdown(ctx context.Context, companyID, ticketID string) (*dto.BillingBreakdownResponse, error)
	UpdateSetting(ctx context.Context, companyID, actorID string, in dto.UpdateAHSSettingRequest) error
	History(ctx context.Context, companyID string) ([]dto.AHSAuditResponse, error)
}

type invoicePDFService interface {
	DownloadInvoicePDF(ctx context.Context, companyID, invoiceID string) ([]byte, string, error)
}

// InvoiceHandler facturación de garantías AHS y descarga de PDF.
type InvoiceHandler struct {
	ahs ahsService
	pdf invoicePDFService
}

// NewInvoiceHandler construye el handler.
func NewInvoiceHandler(ahs ahsService, pdf invoicePDFService) *InvoiceHandler {
	return &InvoiceHandler{ahs: ahs, pdf: pdf}
}

// CreateAHSInvoice godoc
// @Summary      Factura a AHS las líneas de garantía del ticket
// @Description  Incluye la tarifa de diagnóstico como primera línea. 422 si falta el cliente AHS o no hay ítems.
// @Tags         ahs
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "ID del ticket"
// @Success      201  {object}  dto.InvoiceResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      422  {object}  dto.ErrorResponse
// @Router       /api/ahs/tickets/{id}/invoices/ahs [post]
func (h *InvoiceHandler) CreateAHSInvoice(c *fiber.Ctx) error {
	companyID, ok := requireCompany(c)
	if !ok {
		return nil
	}
	inv, err := h.ahs.CreateAHSInvoice(c.UserContext(), companyID, GetUserID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(inv)
}

// CreateCustomerInvoice factura al cliente del ticket las líneas a su cargo.
// POST /api/ahs/tickets/:id/invoices/customer
func (h *InvoiceHandler) CreateCustomerInvoice(c *fiber.Ctx) error {
	companyID, ok := requireCompany(c)
	if !ok {
		return nil
	}
	inv, err := h.ahs.CreateCustomerInvoice(c.UserContext(), companyID, GetUserID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(inv)
}

// TicketInvoices GET /api/ahs/tickets/:id/invoices
func (h *InvoiceHandler) TicketInvoices(c *fiber.Ctx) error {
	companyID, ok := requireCompany(c)
	if !ok {
		return nil
	}
	out, err := h.ahs.GetTicketInvoices(c.UserContext(), companyID, c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// BillingBreakdown GET /api/ahs/tickets/:id/breakdown
func (h *InvoiceHandler) BillingBreakdown(c *fiber.Ctx) error {
	companyID, ok := requireCompany(c)
	if !ok {
		return nil
	}
	out, err := h.ahs.GetBillingBreakdown(c.UserContext(), companyID, c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Settings GET /api/ahs/settings
func (h *InvoiceHandler) Settings(c *fiber.Ctx) error {
	companyID, ok := requireCompany(c)
	if !ok {
		return nil
	}
	defaults, err := h.ahs.GetDefaults(c.UserContext(), companyID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(defaults)
}

// UpdateSetting godoc
// @Summary      Cambia una configuración AHS y deja auditoría
// @Tags         ahs
// @Security     Bearer
// @Accept       json
// @Param        body  body  dto.UpdateAHSSettingRequest  true  "Clave y valor"
// @Success      204
// @Failure      400  {object}  dto.ValidationErrorResponse
// @Router       /api/ahs/settings [put]
func (h *InvoiceHandler) UpdateSetting(c *fiber.Ctx) error {
	companyID, ok := requireCompany(c)
	if !ok {
		return nil
	}
	var in dto.UpdateAHSSettingRequest
	if err := bindBody(c, &in); err != nil {
		return badRequest(c, err)
	}
	if err := h.ahs.UpdateSetting(c.UserContext(), companyID, GetUserID(c), in); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// SettingsHistory GET /api/ahs/settings/history
func (h *InvoiceHandler) SettingsHistory(c *fiber.Ctx) error {
	companyID, ok := requireCompany(c)
	if !ok {
		return nil
	}
	out, err := h.ahs.History(c.UserContext(), companyID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// DownloadPDF godoc
// @Summary      Descarga la factura en PDF
// @Tags         invoices
// @Security     Bearer
// @Produce      application/pdf
// @Param        id   path      string  true  "ID de la factura"
// @Success      200  {file}    binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/invoices/{id}/pdf [get]
func (h *InvoiceHandler) DownloadPDF(c *fiber.Ctx) error {
	companyID, ok := requireCompany(c)
	if !ok {
		return nil
	}
	content, filename, err := h.pdf.DownloadInvoicePDF(c.UserContext(), companyID, c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, filename))
	return c.Send(content)
}
