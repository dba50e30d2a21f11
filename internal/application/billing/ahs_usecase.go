// Package billing casos de uso de facturación de garantías AHS: reparto de líneas entre la
// aseguradora y el cliente, numeración, configuración y PDF de factura.
package billing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/intelliservice-api/internal/application/dto"
	"github.com/jhoicas/intelliservice-api/internal/domain"
	"github.com/jhoicas/intelliservice-api/internal/domain/entity"
	"github.com/jhoicas/intelliservice-api/internal/domain/invoicing"
	"github.com/jhoicas/intelliservice-api/internal/domain/repository"
)

// maxNumberAttempts intentos de asignar un número de factura libre.
const maxNumberAttempts = 3

// historyLimit entradas devueltas por History.
const historyLimit = 50

var now = time.Now

var ahsSettingKeys = []string{
	entity.SettingAHSDiagnosisFee,
	entity.SettingAHSLaborRate,
	entity.SettingAHSBillToCustomer,
}

// AHSUseCase facturación de tickets de garantía.
type AHSUseCase struct {
	tx        TxRunner
	sequences repository.SequenceRepository
	tickets   repository.TicketRepository
	estimates repository.EstimateRepository
	invoices  repository.InvoiceRepository
	ahs       repository.AHSRepository
	settings  repository.SettingsRepository
	rec       Recorder
	log       zerolog.Logger
}

// NewAHSUseCase construye el caso de uso. sequences debe trabajar fuera de la transacción de
// la factura (sobre el pool) para que un número tomado no vuelva al contador con el rollback.
// rec puede ser nil.
func NewAHSUseCase(
	tx TxRunner,
	sequences repository.SequenceRepository,
	tickets repository.TicketRepository,
	estimates repository.EstimateRepository,
	invoices repository.InvoiceRepository,
	ahs repository.AHSRepository,
	settings repository.SettingsRepository,
	rec Recorder,
	log zerolog.Logger,
) *AHSUseCase {
	if rec == nil {
		rec = nopRecorder{}
	}
	return &AHSUseCase{
		tx:        tx,
		sequences: sequences,
		tickets:   tickets,
		estimates: estimates,
		invoices:  invoices,
		ahs:       ahs,
		settings:  settings,
		rec:       rec,
		log:       log,
	}
}

// GetDefaults lee la configuración AHS. Las claves ausentes o ilegibles toman el valor por defecto.
func (uc *AHSUseCase) GetDefaults(ctx context.Context, companyID string) (invoicing.AHSDefaults, error) {
	values, err := uc.settings.GetAccountingSettings(ctx, companyID, ahsSettingKeys)
	if err != nil {
		return invoicing.AHSDefaults{}, fmt.Errorf("billing.GetDefaults: %w", err)
	}
	return invoicing.AHSDefaults{
		DiagnosisFee:     decimalOr(values[entity.SettingAHSDiagnosisFee], invoicing.DefaultDiagnosisFee),
		LaborRate:        decimalOr(values[entity.SettingAHSLaborRate], invoicing.DefaultLaborRate),
		BillToCustomerID: values[entity.SettingAHSBillToCustomer],
	}, nil
}

func decimalOr(raw string, def decimal.Decimal) decimal.Decimal {
	if raw == "" {
		return def
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return def
	}
	return d
}

// CreateAHSInvoice factura a la aseguradora las líneas AHS del presupuesto del ticket más la tarifa
// de diagnóstico. Requiere configurado el cliente destinatario de AHS.
func (uc *AHSUseCase) CreateAHSInvoice(ctx context.Context, companyID, actorID, ticketID string) (*dto.InvoiceResponse, error) {
	ticket, err := uc.ticket(ctx, companyID, ticketID)
	if err != nil {
		return nil, err
	}
	defaults, err := uc.GetDefaults(ctx, companyID)
	if err != nil {
		return nil, err
	}
	if defaults.BillToCustomerID == "" {
		return nil, fmt.Errorf("cliente destinatario AHS: %w", domain.ErrNotConfigured)
	}
	lines, err := uc.estimates.ListLinesForTicket(ctx, companyID, ticketID)
	if err != nil {
		return nil, fmt.Errorf("billing.CreateAHSInvoice: %w", err)
	}
	draft, _ := invoicing.SplitByPayer(lines, defaults.DiagnosisFee)
	if draft.Empty() {
		return nil, domain.ErrNoBillableItems
	}
	return uc.issue(ctx, issueInput{
		companyID:  companyID,
		actorID:    actorID,
		ticket:     ticket,
		customerID: defaults.BillToCustomerID,
		draft:      draft,
		notes:      invoicing.AHSNotes(ticket.AHSDispatchNumber, ticket.TicketNumber),
		action:     entity.AuditAHSInvoiceCreated,
	})
}

// CreateCustomerInvoice factura al cliente del ticket las líneas que la garantía no cubre.
func (uc *AHSUseCase) CreateCustomerInvoice(ctx context.Context, companyID, actorID, ticketID string) (*dto.InvoiceResponse, error) {
	ticket, err := uc.ticket(ctx, companyID, ticketID)
	if err != nil {
		return nil, err
	}
	lines, err := uc.estimates.ListLinesForTicket(ctx, companyID, ticketID)
	if err != nil {
		return nil, fmt.Errorf("billing.CreateCustomerInvoice: %w", err)
	}
	_, draft := invoicing.SplitByPayer(lines, decimal.Zero)
	if draft.Empty() {
		return nil, domain.ErrNoBillableItems
	}
	return uc.issue(ctx, issueInput{
		companyID:  companyID,
		actorID:    actorID,
		ticket:     ticket,
		customerID: ticket.CustomerID,
		draft:      draft,
		notes:      invoicing.CustomerNotes(ticket.TicketNumber),
		action:     entity.AuditCustomerInvoiceCreated,
	})
}

func (uc *AHSUseCase) ticket(ctx context.Context, companyID, ticketID string) (*entity.Ticket, error) {
	t, err := uc.tickets.GetByID(ctx, companyID, ticketID)
	if err != nil {
		return nil, fmt.Errorf("billing: obtener ticket: %w", err)
	}
	if t == nil {
		return nil, domain.ErrNotFound
	}
	return t, nil
}

type issueInput struct {
	companyID  string
	actorID    string
	ticket     *entity.Ticket
	customerID string
	draft      invoicing.Draft
	notes      string
	action     string
}

// issue asigna número y guarda factura, líneas y auditoría en una transacción. El consecutivo
// se confirma antes de la transacción, así que si el número ya existía el reintento pide
// el siguiente. Un rollback deja un hueco en la numeración.
func (uc *AHSUseCase) issue(ctx context.Context, in issueInput) (*dto.InvoiceResponse, error) {
	var (
		inv   *entity.Invoice
		lines []entity.InvoiceLineItem
		err   error
	)
	for attempt := 1; attempt <= maxNumberAttempts; attempt++ {
		inv, lines, err = uc.issueOnce(ctx, in)
		if !errors.Is(err, domain.ErrDuplicate) {
			break
		}
		uc.log.Warn().Err(err).Str("company_id", in.companyID).Int("attempt", attempt).Msg("número de factura ocupado, reintentando")
	}
	if err != nil {
		return nil, fmt.Errorf("billing: emitir factura: %w", err)
	}
	uc.rec.DocumentNumber(invoicing.InvoicePrefix)
	uc.log.Info().Str("company_id", in.companyID).Str("invoice_number", inv.InvoiceNumber).Str("action", in.action).Msg("factura de garantía creada")
	res := dto.InvoiceFromEntity(inv, lines)
	return &res, nil
}

func (uc *AHSUseCase) issueOnce(ctx context.Context, in issueInput) (*entity.Invoice, []entity.InvoiceLineItem, error) {
	issuedAt := now().UTC()
	ticketID := in.ticket.ID
	inv := &entity.Invoice{
		ID:          uuid.NewString(),
		CompanyID:   in.companyID,
		CustomerID:  in.customerID,
		TicketID:    &ticketID,
		InvoiceDate: issuedAt,
		Status:      entity.InvoiceStatusDraft,
		Subtotal:    in.draft.Subtotal,
		TaxAmount:   decimal.Zero,
		TotalAmount: in.draft.Subtotal,
		Notes:       in.notes,
		CreatedBy:   in.actorID,
		CreatedAt:   issuedAt,
		UpdatedAt:   issuedAt,
	}
	lines := make([]entity.InvoiceLineItem, len(in.draft.Lines))
	for i, l := range in.draft.Lines {
		l.ID = uuid.NewString()
		l.InvoiceID = inv.ID
		lines[i] = l
	}

	seq, err := uc.sequences.Next(ctx, in.companyID, invoicing.SequenceKey(invoicing.InvoicePrefix, issuedAt))
	if err != nil {
		return nil, nil, err
	}
	inv.InvoiceNumber = invoicing.FormatInvoiceNumber(invoicing.InvoicePrefix, invoicing.Period(issuedAt), seq)
	payload, err := json.Marshal(map[string]any{
		"invoice_id":     inv.ID,
		"invoice_number": inv.InvoiceNumber,
		"total":          inv.TotalAmount,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("billing: serializar auditoría: %w", err)
	}

	err = uc.tx.RunBilling(ctx, func(invoices repository.InvoiceRepository, ahs repository.AHSRepository) error {
		if err := invoices.Create(ctx, inv); err != nil {
			return err
		}
		if err := invoices.CreateLineItems(ctx, lines); err != nil {
			return err
		}
		return ahs.CreateAudit(ctx, &entity.AHSAuditEntry{
			ID:         uuid.NewString(),
			CompanyID:  in.companyID,
			EntityType: "ticket",
			EntityID:   ticketID,
			Action:     in.action,
			NewValue:   string(payload),
			ChangedBy:  in.actorID,
			CreatedAt:  issuedAt,
		})
	})
	if err != nil {
		return nil, nil, err
	}
	return inv, lines, nil
}

// GetTicketInvoices facturas del ticket separadas por destinatario: las emitidas al cliente
// configurado para AHS van en AHS, el resto en Customer.
func (uc *AHSUseCase) GetTicketInvoices(ctx context.Context, companyID, ticketID string) (*dto.TicketInvoicesResponse, error) {
	defaults, err := uc.GetDefaults(ctx, companyID)
	if err != nil {
		return nil, err
	}
	list, err := uc.invoices.ListByTicket(ctx, companyID, ticketID)
	if err != nil {
		return nil, fmt.Errorf("billing.GetTicketInvoices: %w", err)
	}
	out := &dto.TicketInvoicesResponse{AHS: []dto.InvoiceResponse{}, Customer: []dto.InvoiceResponse{}}
	for i := range list {
		res := dto.InvoiceFromEntity(&list[i], nil)
		if defaults.BillToCustomerID != "" && list[i].CustomerID == defaults.BillToCustomerID {
			out.AHS = append(out.AHS, res)
		} else {
			out.Customer = append(out.Customer, res)
		}
	}
	return out, nil
}

// GetBillingBreakdown reparto calculado por el servidor.
func (uc *AHSUseCase) GetBillingBreakdown(ctx context.Context, companyID, ticketID string) (*dto.BillingBreakdownResponse, error) {
	b, err := uc.ahs.BillingBreakdown(ctx, companyID, ticketID)
	if err != nil {
		return nil, fmt.Errorf("billing.GetBillingBreakdown: %w", err)
	}
	if b == nil {
		return nil, domain.ErrNotFound
	}
	res := dto.BreakdownFromRepository(b)
	return &res, nil
}

// UpdateSetting valida y guarda una clave AHS, con auditoría del valor anterior y el nuevo.
func (uc *AHSUseCase) UpdateSetting(ctx context.Context, companyID, actorID string, in dto.UpdateAHSSettingRequest) error {
	if !invoicing.IsAHSSettingKey(in.Key) {
		return fmt.Errorf("clave %q: %w", in.Key, domain.ErrInvalidInput)
	}
	current, err := uc.GetDefaults(ctx, companyID)
	if err != nil {
		return err
	}

	var oldValue string
	switch in.Key {
	case entity.SettingAHSDiagnosisFee, entity.SettingAHSLaborRate:
		v, err := decimal.NewFromString(in.Value)
		if err != nil {
			return fmt.Errorf("%s no es numérico: %w", invoicing.SettingDisplayName(in.Key), domain.ErrInvalidInput)
		}
		fee, rate := current.DiagnosisFee, current.LaborRate
		if in.Key == entity.SettingAHSDiagnosisFee {
			oldValue, fee = fee.String(), v
		} else {
			oldValue, rate = rate.String(), v
		}
		if err := invoicing.ValidateAHSSettings(fee, rate); err != nil {
			return fmt.Errorf("%w: %s", domain.ErrInvalidInput, err.Error())
		}
	case entity.SettingAHSBillToCustomer:
		if _, err := uuid.Parse(in.Value); err != nil {
			return fmt.Errorf("cliente destinatario inválido: %w", domain.ErrInvalidInput)
		}
		oldValue = current.BillToCustomerID
	}

	at := now().UTC()
	if err := uc.settings.UpsertAccountingSetting(ctx, entity.Setting{CompanyID: companyID, Key: in.Key, Value: in.Value, UpdatedAt: at}); err != nil {
		return fmt.Errorf("billing.UpdateSetting: %w", err)
	}
	// la auditoría no revierte el cambio ya guardado
	if err := uc.ahs.CreateAudit(ctx, &entity.AHSAuditEntry{
		ID:         uuid.NewString(),
		CompanyID:  companyID,
		EntityType: "setting",
		EntityID:   in.Key,
		Action:     entity.AuditSettingUpdated,
		OldValue:   oldValue,
		NewValue:   in.Value,
		ChangedBy:  actorID,
		Reason:     in.Reason,
		CreatedAt:  at,
	}); err != nil {
		uc.log.Error().Err(err).Str("company_id", companyID).Str("key", in.Key).Msg("no se pudo auditar el cambio de configuración AHS")
	}
	return nil
}

// History últimos cambios de configuración y facturas emitidas.
func (uc *AHSUseCase) History(ctx context.Context, companyID string) ([]dto.AHSAuditResponse, error) {
	entries, err := uc.ahs.ListAudit(ctx, companyID, historyLimit)
	if err != nil {
		return nil, fmt.Errorf("billing.History: %w", err)
	}
	out := make([]dto.AHSAuditResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, dto.AHSAuditResponse{
			ID:          e.ID,
			EntityType:  e.EntityType,
			EntityID:    e.EntityID,
			DisplayName: invoicing.SettingDisplayName(e.EntityID),
			Action:      e.Action,
			OldValue:    e.OldValue,
			NewValue:    e.NewValue,
			ChangedBy:   e.ChangedBy,
			Reason:      e.Reason,
			CreatedAt:   e.CreatedAt,
		})
	}
	return out, nil
}
