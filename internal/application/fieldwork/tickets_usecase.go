// Package fieldwork casos de uso del técnico en campo (tickets, temporizador, fotos, repuestos)
// y del mapa de seguimiento del despachador.
package fieldwork

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/intelliservice-api/internal/application/dto"
	"github.com/jhoicas/intelliservice-api/internal/application/ports"
	"github.com/jhoicas/intelliservice-api/internal/domain"
	"github.com/jhoicas/intelliservice-api/internal/domain/entity"
	work "github.com/jhoicas/intelliservice-api/internal/domain/fieldwork"
	"github.com/jhoicas/intelliservice-api/internal/domain/repository"
)

const completedLimit = 50

var now = time.Now

// Origen del inventario devuelto por TruckInventory.
const (
	InventorySourceTruck   = "truck"
	InventorySourceCatalog = "catalog"
)

// TicketsUseCase tickets del técnico y su trabajo en sitio.
type TicketsUseCase struct {
	tickets repository.TicketRepository
	storage ports.PhotoStorage
	log     zerolog.Logger
}

// NewTicketsUseCase construye el caso de uso.
func NewTicketsUseCase(tickets repository.TicketRepository, storage ports.PhotoStorage, log zerolog.Logger) *TicketsUseCase {
	return &TicketsUseCase{tickets: tickets, storage: storage, log: log}
}

// MyTickets tickets asignados al técnico que no están completados ni cancelados.
func (uc *TicketsUseCase) MyTickets(ctx context.Context, companyID, technicianID string) ([]dto.TicketResponse, error) {
	list, err := uc.tickets.ListOpenByTechnician(ctx, companyID, technicianID)
	if err != nil {
		return nil, fmt.Errorf("fieldwork.MyTickets: %w", err)
	}
	return dto.TicketsFromEntities(list), nil
}

// CompletedTickets últimos 50 tickets completados por el técnico.
func (uc *TicketsUseCase) CompletedTickets(ctx context.Context, companyID, technicianID string) ([]dto.TicketResponse, error) {
	list, err := uc.tickets.ListCompletedByTechnician(ctx, companyID, technicianID, completedLimit)
	if err != nil {
		return nil, fmt.Errorf("fieldwork.CompletedTickets: %w", err)
	}
	return dto.TicketsFromEntities(list), nil
}

// TicketDetail ticket con bitácora, repuestos y fotos, leídos en paralelo.
func (uc *TicketsUseCase) TicketDetail(ctx context.Context, companyID, ticketID string) (*dto.TicketDetailResponse, error) {
	var (
		ticket  *entity.Ticket
		updates []entity.TicketUpdate
		parts   []entity.TicketPartUsed
		photos  []entity.TicketPhoto
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		ticket, err = uc.tickets.GetByID(gctx, companyID, ticketID)
		return err
	})
	g.Go(func() (err error) {
		updates, err = uc.tickets.ListUpdates(gctx, ticketID)
		return err
	})
	g.Go(func() (err error) {
		parts, err = uc.tickets.ListPartsUsed(gctx, ticketID)
		return err
	})
	g.Go(func() (err error) {
		photos, err = uc.tickets.ListPhotos(gctx, ticketID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("fieldwork.TicketDetail: %w", err)
	}
	if ticket == nil {
		return nil, domain.ErrNotFound
	}

	res := &dto.TicketDetailResponse{
		Ticket:    dto.TicketFromEntity(ticket),
		Updates:   make([]dto.TicketUpdateResponse, 0, len(updates)),
		PartsUsed: make([]dto.PartUsedResponse, 0, len(parts)),
		Photos:    make([]dto.PhotoResponse, 0, len(photos)),
	}
	for _, u := range updates {
		res.Updates = append(res.Updates, dto.TicketUpdateResponse{
			ID: u.ID, UpdatedBy: u.UpdatedBy, UpdateType: u.UpdateType, Message: u.Message, NewStatus: u.NewStatus, CreatedAt: u.CreatedAt,
		})
	}
	for _, p := range parts {
		res.PartsUsed = append(res.PartsUsed, dto.PartUsedResponse{
			ID: p.ID, PartID: p.PartID, PartName: p.PartName, Quantity: p.Quantity, UnitCost: p.UnitCost, CreatedAt: p.CreatedAt,
		})
	}
	for i := range photos {
		res.Photos = append(res.Photos, dto.PhotoFromEntity(&photos[i]))
	}
	return res, nil
}

func (uc *TicketsUseCase) ticket(ctx context.Context, companyID, ticketID string) (*entity.Ticket, error) {
	t, err := uc.tickets.GetByID(ctx, companyID, ticketID)
	if err != nil {
		return nil, fmt.Errorf("fieldwork: obtener ticket: %w", err)
	}
	if t == nil {
		return nil, domain.ErrNotFound
	}
	return t, nil
}

// StartWork inicia el temporizador en el ticket. Si el técnico ya tiene uno abierto en otro
// ticket devuelve ErrTimerActive; en el mismo ticket, ErrConflict.
func (uc *TicketsUseCase) StartWork(ctx context.Context, companyID, technicianID, ticketID string) (*dto.ActiveTimerResponse, error) {
	if _, err := uc.ticket(ctx, companyID, ticketID); err != nil {
		return nil, err
	}
	active, err := uc.tickets.ActiveTimer(ctx, technicianID)
	if err != nil {
		return nil, fmt.Errorf("fieldwork.StartWork: %w", err)
	}
	if active != nil {
		if active.TicketID != ticketID {
			return nil, fmt.Errorf("ticket %s: %w", active.TicketID, domain.ErrTimerActive)
		}
		return nil, fmt.Errorf("el temporizador ya corre en este ticket: %w", domain.ErrConflict)
	}

	timeLogID, err := uc.tickets.StartWork(ctx, ticketID, technicianID)
	if err != nil {
		return nil, fmt.Errorf("fieldwork.StartWork: %w", err)
	}
	started := now().UTC()
	if err := uc.tickets.CreateUpdate(ctx, &entity.TicketUpdate{
		TicketID:   ticketID,
		UpdatedBy:  technicianID,
		UpdateType: entity.UpdateTypeArrived,
		Message:    "Arrived on site",
		CreatedAt:  started,
	}); err != nil {
		// el temporizador ya quedó abierto; la bitácora no lo revierte
		uc.log.Warn().Err(err).Str("ticket_id", ticketID).Msg("no se pudo registrar la llegada")
	}
	return &dto.ActiveTimerResponse{Active: true, TimeLogID: timeLogID, TicketID: ticketID, ClockIn: &started}, nil
}

// EndWork cierra el temporizador. Con complete el ticket queda completado.
func (uc *TicketsUseCase) EndWork(ctx context.Context, companyID, technicianID, ticketID string, complete bool) (*dto.EndWorkResponse, error) {
	hours, err := uc.tickets.EndWork(ctx, ticketID, technicianID, complete)
	if err != nil {
		return nil, fmt.Errorf("fieldwork.EndWork: %w", err)
	}
	if complete {
		if err := uc.tickets.UpdateStatus(ctx, companyID, ticketID, entity.TicketStatusCompleted); err != nil {
			return nil, fmt.Errorf("fieldwork.EndWork: %w", err)
		}
		status := entity.TicketStatusCompleted
		if err := uc.tickets.CreateUpdate(ctx, &entity.TicketUpdate{
			TicketID:   ticketID,
			UpdatedBy:  technicianID,
			UpdateType: entity.UpdateTypeCompleted,
			Message:    "Work completed",
			NewStatus:  &status,
			CreatedAt:  now().UTC(),
		}); err != nil {
			uc.log.Warn().Err(err).Str("ticket_id", ticketID).Msg("no se pudo registrar el cierre")
		}
	}
	return &dto.EndWorkResponse{TicketID: ticketID, HoursLogged: hours.Round(2), Completed: complete}, nil
}

// ActiveTimer temporizador abierto del técnico, si hay.
func (uc *TicketsUseCase) ActiveTimer(ctx context.Context, technicianID string) (*dto.ActiveTimerResponse, error) {
	t, err := uc.tickets.ActiveTimer(ctx, technicianID)
	if err != nil {
		return nil, fmt.Errorf("fieldwork.ActiveTimer: %w", err)
	}
	if t == nil {
		return &dto.ActiveTimerResponse{}, nil
	}
	clockIn := t.ClockIn
	return &dto.ActiveTimerResponse{Active: true, TimeLogID: t.TimeLogID, TicketID: t.TicketID, ClockIn: &clockIn}, nil
}

// AddUpdate agrega una entrada a la bitácora; con NewStatus también cambia el estado del ticket.
func (uc *TicketsUseCase) AddUpdate(ctx context.Context, companyID, actorID, ticketID string, in dto.AddUpdateRequest) (*dto.TicketUpdateResponse, error) {
	if _, err := uc.ticket(ctx, companyID, ticketID); err != nil {
		return nil, err
	}
	if in.NewStatus != nil {
		if err := uc.tickets.UpdateStatus(ctx, companyID, ticketID, *in.NewStatus); err != nil {
			return nil, fmt.Errorf("fieldwork.AddUpdate: %w", err)
		}
	}
	u := &entity.TicketUpdate{
		ID:         uuid.NewString(),
		TicketID:   ticketID,
		UpdatedBy:  actorID,
		UpdateType: in.UpdateType,
		Message:    strings.TrimSpace(in.Message),
		NewStatus:  in.NewStatus,
		CreatedAt:  now().UTC(),
	}
	if err := uc.tickets.CreateUpdate(ctx, u); err != nil {
		return nil, fmt.Errorf("fieldwork.AddUpdate: %w", err)
	}
	return &dto.TicketUpdateResponse{ID: u.ID, UpdatedBy: u.UpdatedBy, UpdateType: u.UpdateType, Message: u.Message, NewStatus: u.NewStatus, CreatedAt: u.CreatedAt}, nil
}

// AddPartUsed registra un repuesto consumido. La cantidad debe ser positiva.
func (uc *TicketsUseCase) AddPartUsed(ctx context.Context, companyID, actorID, ticketID string, in dto.AddPartRequest) (*dto.PartUsedResponse, error) {
	if !in.Quantity.IsPositive() {
		return nil, fmt.Errorf("cantidad: %w", domain.ErrInvalidInput)
	}
	if _, err := uc.ticket(ctx, companyID, ticketID); err != nil {
		return nil, err
	}
	p := &entity.TicketPartUsed{TicketID: ticketID, PartID: in.PartID, Quantity: in.Quantity, AddedBy: actorID}
	if err := uc.tickets.AddPartUsed(ctx, p); err != nil {
		return nil, fmt.Errorf("fieldwork.AddPartUsed: %w", err)
	}
	return &dto.PartUsedResponse{ID: p.ID, PartID: p.PartID, Quantity: p.Quantity, UnitCost: p.UnitCost, CreatedAt: p.CreatedAt}, nil
}

// PhotoUpload archivo recibido para un ticket.
type PhotoUpload struct {
	PhotoType   string
	Caption     string
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// UploadPhoto sube la foto al bucket con clave {ticketID}/{unixms}.{ext} y registra su URL pública.
// Sin tipo se usa "during".
func (uc *TicketsUseCase) UploadPhoto(ctx context.Context, companyID, actorID, ticketID string, in PhotoUpload) (*dto.PhotoResponse, error) {
	photoType := in.PhotoType
	if photoType == "" {
		photoType = entity.PhotoTypeDuring
	}
	if !entity.ValidPhotoType(photoType) {
		return nil, fmt.Errorf("tipo de foto %q: %w", photoType, domain.ErrInvalidInput)
	}
	if _, err := uc.ticket(ctx, companyID, ticketID); err != nil {
		return nil, err
	}

	key := PhotoKey(ticketID, in.Filename, now())
	url, err := uc.storage.Upload(ctx, key, in.ContentType, in.Body, in.Size)
	if err != nil {
		return nil, fmt.Errorf("fieldwork.UploadPhoto: subir: %w", err)
	}
	p := &entity.TicketPhoto{
		TicketID:   ticketID,
		PhotoURL:   url,
		StorageKey: key,
		PhotoType:  photoType,
		Caption:    strings.TrimSpace(in.Caption),
		UploadedBy: actorID,
	}
	if err := uc.tickets.CreatePhoto(ctx, p); err != nil {
		return nil, fmt.Errorf("fieldwork.UploadPhoto: %w", err)
	}
	uc.log.Info().Str("company_id", companyID).Str("ticket_id", ticketID).Str("key", key).Msg("foto subida")
	res := dto.PhotoFromEntity(p)
	return &res, nil
}

// PhotoKey {ticketID}/{unixms}.{ext}; sin extensión se asume jpg.
func PhotoKey(ticketID, filename string, at time.Time) string {
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(filename), "."))
	if ext == "" {
		ext = "jpg"
	}
	return fmt.Sprintf("%s/%d.%s", ticketID, at.UnixMilli(), ext)
}

// TruckInventory stock del camión del técnico; si no tiene filas de stock, el catálogo completo.
func (uc *TicketsUseCase) TruckInventory(ctx context.Context, companyID, technicianID string) (*dto.TruckInventoryResponse, error) {
	parts, err := uc.tickets.TruckInventory(ctx, companyID, technicianID)
	if err != nil {
		return nil, fmt.Errorf("fieldwork.TruckInventory: %w", err)
	}
	source := InventorySourceTruck
	if len(parts) == 0 {
		source = InventorySourceCatalog
		parts, err = uc.tickets.PartsCatalog(ctx, companyID)
		if err != nil {
			return nil, fmt.Errorf("fieldwork.TruckInventory: catálogo: %w", err)
		}
	}
	res := &dto.TruckInventoryResponse{Source: source, Parts: make([]dto.PartResponse, 0, len(parts))}
	for _, p := range parts {
		res.Parts = append(res.Parts, dto.PartResponse{
			ID: p.ID, PartNumber: p.PartNumber, Name: p.Name, UnitCost: p.UnitCost, UnitPrice: p.UnitPrice, Quantity: p.Quantity,
		})
	}
	return res, nil
}

// OnsiteProgress minutos en sitio frente a la estimación del ticket.
func (uc *TicketsUseCase) OnsiteProgress(ctx context.Context, companyID, ticketID string) (work.Progress, error) {
	t, err := uc.ticket(ctx, companyID, ticketID)
	if err != nil {
		return work.Progress{}, err
	}
	return work.ComputeProgress(t.ID, t.WorkStartedAt, t.EstimatedOnsiteMinutes, now()), nil
}
