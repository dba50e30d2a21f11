// Package crm casos de uso de relación con clientes: vista 360, línea de tiempo, embudo de
// ventas, interacciones y leads.
package crm

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/intelliservice-api/internal/application/dto"
	"github.com/jhoicas/intelliservice-api/internal/domain"
	"github.com/jhoicas/intelliservice-api/internal/domain/entity"
	"github.com/jhoicas/intelliservice-api/internal/domain/repository"
)

const (
	// historyWindow registros por entidad leídos para la línea de tiempo.
	historyWindow   = 200
	recentLimit     = 5
	timelineLimit   = 50
	listLimit       = 100
	defaultFollowUp = 7
)

var now = time.Now

// UseCase casos de uso del CRM.
type UseCase struct {
	customers    repository.CustomerRepository
	tickets      repository.TicketRepository
	estimates    repository.EstimateRepository
	invoices     repository.InvoiceRepository
	interactions repository.InteractionRepository
	pipelines    repository.PipelineRepository
	log          zerolog.Logger
}

// NewUseCase construye el caso de uso.
func NewUseCase(
	customers repository.CustomerRepository,
	tickets repository.TicketRepository,
	estimates repository.EstimateRepository,
	invoices repository.InvoiceRepository,
	interactions repository.InteractionRepository,
	pipelines repository.PipelineRepository,
	log zerolog.Logger,
) *UseCase {
	return &UseCase{
		customers:    customers,
		tickets:      tickets,
		estimates:    estimates,
		invoices:     invoices,
		interactions: interactions,
		pipelines:    pipelines,
		log:          log,
	}
}

type customerActivity struct {
	customer     *entity.Customer
	tickets      []entity.Ticket
	estimates    []entity.Estimate
	invoices     []entity.Invoice
	interactions []entity.CustomerInteraction
}

// load lee el cliente y su actividad reciente en paralelo.
func (uc *UseCase) load(ctx context.Context, companyID, customerID string) (*customerActivity, error) {
	var a customerActivity
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		a.customer, err = uc.customers.GetByID(gctx, companyID, customerID)
		return err
	})
	g.Go(func() (err error) {
		a.tickets, err = uc.tickets.ListByCustomer(gctx, companyID, customerID, historyWindow)
		return err
	})
	g.Go(func() (err error) {
		a.estimates, err = uc.estimates.ListByCustomer(gctx, companyID, customerID, historyWindow)
		return err
	})
	g.Go(func() (err error) {
		a.invoices, err = uc.invoices.ListByCustomer(gctx, companyID, customerID, historyWindow)
		return err
	})
	g.Go(func() (err error) {
		a.interactions, err = uc.interactions.ListByCustomer(gctx, companyID, customerID, historyWindow)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if a.customer == nil {
		return nil, domain.ErrNotFound
	}
	return &a, nil
}

// Customer360 cliente con estadísticas agregadas sobre toda su historia, sus equipos activos y
// la actividad más reciente.
func (uc *UseCase) Customer360(ctx context.Context, companyID, customerID string) (*dto.Customer360Response, error) {
	var (
		customer  *entity.Customer
		stats     *repository.CustomerStats
		tickets   []entity.Ticket
		estimates []entity.Estimate
		invoices  []entity.Invoice
		equipment []entity.Equipment
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		customer, err = uc.customers.GetByID(gctx, companyID, customerID)
		return err
	})
	g.Go(func() (err error) {
		stats, err = uc.customers.Stats(gctx, companyID, customerID)
		return err
	})
	g.Go(func() (err error) {
		equipment, err = uc.customers.ListActiveEquipment(gctx, companyID, customerID)
		return err
	})
	g.Go(func() (err error) {
		tickets, err = uc.tickets.ListByCustomer(gctx, companyID, customerID, recentLimit)
		return err
	})
	g.Go(func() (err error) {
		estimates, err = uc.estimates.ListByCustomer(gctx, companyID, customerID, recentLimit)
		return err
	})
	g.Go(func() (err error) {
		invoices, err = uc.invoices.ListByCustomer(gctx, companyID, customerID, recentLimit)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("crm.Customer360: %w", err)
	}
	if customer == nil {
		return nil, fmt.Errorf("crm.Customer360: %w", domain.ErrNotFound)
	}

	res := &dto.Customer360Response{
		Customer:  dto.CustomerFromEntity(customer),
		Stats:     customerStats(stats),
		Tickets:   dto.TicketsFromEntities(tickets[:min(recentLimit, len(tickets))]),
		Estimates: []dto.EstimateResponse{},
		Invoices:  []dto.InvoiceResponse{},
		Equipment: make([]dto.EquipmentResponse, 0, len(equipment)),
	}
	for i := range estimates[:min(recentLimit, len(estimates))] {
		res.Estimates = append(res.Estimates, dto.EstimateFromEntity(&estimates[i]))
	}
	for i := range invoices[:min(recentLimit, len(invoices))] {
		res.Invoices = append(res.Invoices, dto.InvoiceFromEntity(&invoices[i], nil))
	}
	for i := range equipment {
		res.Equipment = append(res.Equipment, dto.EquipmentFromEntity(&equipment[i]))
	}
	return res, nil
}

func customerStats(s *repository.CustomerStats) dto.CustomerStats {
	out := dto.CustomerStats{TotalRevenue: decimal.Zero, AvgTicketValue: decimal.Zero}
	if s == nil {
		return out
	}
	out.TotalTickets = s.TotalTickets
	out.OpenTickets = s.OpenTickets
	out.TotalEstimates = s.TotalEstimates
	out.PendingEstimates = s.PendingEstimates
	out.TotalRevenue = s.TotalRevenue
	out.AvgTicketValue = s.AvgTicketValue.Round(2)
	out.ActiveEquipment = s.ActiveEquipment
	if s.LastServiceDate != nil {
		d := s.LastServiceDate.Format(dto.DateLayout)
		out.LastServiceDate = &d
	}
	return out
}

// CustomerTimeline tickets, presupuestos, facturas e interacciones del cliente, del más reciente
// al más antiguo.
func (uc *UseCase) CustomerTimeline(ctx context.Context, companyID, customerID string, limit int) ([]dto.TimelineEventResponse, error) {
	if limit <= 0 {
		limit = timelineLimit
	}
	a, err := uc.load(ctx, companyID, customerID)
	if err != nil {
		return nil, fmt.Errorf("crm.CustomerTimeline: %w", err)
	}
	events := buildTimeline(a)
	out := make([]dto.TimelineEventResponse, 0, min(limit, len(events)))
	for _, e := range events[:min(limit, len(events))] {
		out = append(out, dto.TimelineEventResponse{
			EventType:   e.EventType,
			ReferenceID: e.ReferenceID,
			Title:       e.Title,
			Status:      e.Status,
			OccurredAt:  e.OccurredAt,
		})
	}
	return out, nil
}

func buildTimeline(a *customerActivity) []entity.TimelineEvent {
	events := make([]entity.TimelineEvent, 0, len(a.tickets)+len(a.estimates)+len(a.invoices)+len(a.interactions))
	for _, t := range a.tickets {
		events = append(events, entity.TimelineEvent{EventType: "ticket", ReferenceID: t.ID, Title: t.TicketNumber + " " + t.Title, Status: t.Status, OccurredAt: t.CreatedAt})
	}
	for _, e := range a.estimates {
		events = append(events, entity.TimelineEvent{EventType: "estimate", ReferenceID: e.ID, Title: e.EstimateNumber + " " + e.Title, Status: e.Status, OccurredAt: e.CreatedAt})
	}
	for _, inv := range a.invoices {
		events = append(events, entity.TimelineEvent{EventType: "invoice", ReferenceID: inv.ID, Title: inv.InvoiceNumber, Status: inv.Status, OccurredAt: inv.InvoiceDate})
	}
	for _, i := range a.interactions {
		title := i.Subject
		if title == "" {
			title = i.InteractionType
		}
		events = append(events, entity.TimelineEvent{EventType: "interaction", ReferenceID: i.ID, Title: title, Status: i.Direction, OccurredAt: i.CreatedAt})
	}
	for i := range events {
		events[i].Title = strings.TrimSpace(events[i].Title)
	}
	sort.SliceStable(events, func(i, j int) bool { return events[i].OccurredAt.After(events[j].OccurredAt) })
	return events
}

// LogInteraction registra un contacto con el cliente.
func (uc *UseCase) LogInteraction(ctx context.Context, companyID, actorID string, in dto.LogInteractionRequest) (*dto.InteractionResponse, error) {
	if !validInteractionType(in.InteractionType) {
		return nil, fmt.Errorf("tipo de interacción %q: %w", in.InteractionType, domain.ErrInvalidInput)
	}
	if in.Direction != "" && in.Direction != entity.DirectionInbound && in.Direction != entity.DirectionOutbound {
		return nil, fmt.Errorf("dirección %q: %w", in.Direction, domain.ErrInvalidInput)
	}
	i := &entity.CustomerInteraction{
		ID:              uuid.NewString(),
		CompanyID:       companyID,
		CustomerID:      in.CustomerID,
		InteractionType: in.InteractionType,
		Direction:       in.Direction,
		Subject:         strings.TrimSpace(in.Subject),
		Notes:           in.Notes,
		CreatedBy:       actorID,
		CreatedAt:       now().UTC(),
	}
	if in.FollowUpDate != nil && *in.FollowUpDate != "" {
		d, err := time.Parse(dto.DateLayout, *in.FollowUpDate)
		if err != nil {
			return nil, fmt.Errorf("follow_up_date: %w", domain.ErrInvalidInput)
		}
		i.FollowUpDate = &d
	}
	if err := uc.interactions.Create(ctx, i); err != nil {
		return nil, fmt.Errorf("crm.LogInteraction: %w", err)
	}
	res := dto.InteractionFromEntity(i)
	return &res, nil
}

func validInteractionType(t string) bool {
	switch t {
	case entity.InteractionCall, entity.InteractionEmail, entity.InteractionSMS,
		entity.InteractionMeeting, entity.InteractionNote, entity.InteractionSiteVisit:
		return true
	}
	return false
}

// UpcomingFollowUps seguimientos pendientes desde hoy hasta dentro de days días (7 por defecto).
func (uc *UseCase) UpcomingFollowUps(ctx context.Context, companyID string, days int) ([]dto.InteractionResponse, error) {
	if days <= 0 {
		days = defaultFollowUp
	}
	y, m, d := now().Date()
	from := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, days)
	list, err := uc.interactions.ListFollowUpsBetween(ctx, companyID, from, to)
	if err != nil {
		return nil, fmt.Errorf("crm.UpcomingFollowUps: %w", err)
	}
	out := make([]dto.InteractionResponse, 0, len(list))
	for i := range list {
		out = append(out, dto.InteractionFromEntity(&list[i]))
	}
	return out, nil
}

// LeadsInbox clientes en estado lead.
func (uc *UseCase) LeadsInbox(ctx context.Context, companyID string) ([]dto.CustomerSummary, error) {
	list, err := uc.customers.ListByStatus(ctx, companyID, entity.CustomerStatusLead, listLimit)
	if err != nil {
		return nil, fmt.Errorf("crm.LeadsInbox: %w", err)
	}
	return customerSummaries(list), nil
}

// Prospects clientes marcados como candidatos a reemplazo de equipo.
func (uc *UseCase) Prospects(ctx context.Context, companyID string) ([]dto.CustomerSummary, error) {
	list, err := uc.customers.ListProspects(ctx, companyID, listLimit)
	if err != nil {
		return nil, fmt.Errorf("crm.Prospects: %w", err)
	}
	return customerSummaries(list), nil
}

func customerSummaries(list []entity.Customer) []dto.CustomerSummary {
	out := make([]dto.CustomerSummary, 0, len(list))
	for i := range list {
		out = append(out, dto.CustomerFromEntity(&list[i]))
	}
	return out
}

// CreateLead crea un cliente en estado lead.
func (uc *UseCase) CreateLead(ctx context.Context, companyID string, in dto.CreateLeadRequest) (*dto.CustomerSummary, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("nombre requerido: %w", domain.ErrInvalidInput)
	}
	ts := now().UTC()
	c := &entity.Customer{
		ID:           uuid.NewString(),
		CompanyID:    companyID,
		Name:         name,
		Email:        strings.TrimSpace(in.Email),
		Phone:        strings.TrimSpace(in.Phone),
		Address:      in.Address,
		CustomerType: in.CustomerType,
		Status:       entity.CustomerStatusLead,
		LeadSource:   in.LeadSource,
		CreatedAt:    ts,
		UpdatedAt:    ts,
	}
	if err := uc.customers.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("crm.CreateLead: %w", err)
	}
	res := dto.CustomerFromEntity(c)
	return &res, nil
}

// ConvertLead pasa un lead a cliente activo. Si ya no es lead devuelve ErrConflict.
func (uc *UseCase) ConvertLead(ctx context.Context, companyID, customerID string) error {
	c, err := uc.customers.GetByID(ctx, companyID, customerID)
	if err != nil {
		return fmt.Errorf("crm.ConvertLead: %w", err)
	}
	if c == nil {
		return domain.ErrNotFound
	}
	ok, err := uc.customers.Convert(ctx, companyID, customerID)
	if err != nil {
		return fmt.Errorf("crm.ConvertLead: %w", err)
	}
	if !ok {
		return fmt.Errorf("cliente en estado %s: %w", c.Status, domain.ErrConflict)
	}
	uc.log.Info().Str("company_id", companyID).Str("customer_id", customerID).Msg("lead convertido")
	return nil
}
