package http

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/intelliservice-api/internal/application/dto"
	"github.com/jhoicas/intelliservice-api/internal/application/fieldwork"
	"github.com/jhoicas/intelliservice-api/internal/application/polling"
	work "github.com/jhoicas/intelliservice-api/internal/domain/fieldwork"
)

const maxPhotoSize = 10 << 20

type ticketService interface {
	MyTickets(ctx context.Context, companyID, technicianID string) ([]dto.TicketResponse, error)
	CompletedTickets(ctx context.Context, companyID, technicianID string) ([]dto.TicketResponse, error)
	TicketDetail(ctx context.Context, companyID, ticketID string) (*dto.TicketDetailResponse, error)
	StartWork(ctx context.Context, companyID, technicianID, ticketID string) (*dto.ActiveTimerResponse, error)
	EndWork(ctx context.Context, companyID, technicianID, ticketID string, complete bool) (*dto.EndWorkResponse, error)
	ActiveTimer(ctx context.Context, technicianID string) (*dto.ActiveTimerResponse, error)
	AddUpdate(ctx context.Context, companyID, actorID, ticketID string, in dto.AddUpdateRequest) (*dto.TicketUpdateResponse, error)
	AddPartUsed(ctx context.Context, companyID, actorID, ticketID string, in dto.AddPartRequest) (*dto.PartUsedResponse, error)
	UploadPhoto(ctx context.Context, companyID, actorID, ticketID string, in fieldwork.PhotoUpload) (*dto.PhotoResponse, error)
	TruckInventory(ctx context.Context, companyID, technicianID string) (*dto.TruckInventoryResponse, error)
	OnsiteProgress(ctx context.Context, companyID, ticketID string) (work.Progress, error)
	ProgressFetch(companyID, ticketID string) polling.Fetch
}

// TicketHandler vista del técnico: sus tickets, temporizador, fotos y repuestos.
type TicketHandler struct {
	uc  ticketService
	hub subscriber
}

// NewTicketHandler construye el handler.
func NewTicketHandler(uc ticketService, hub subscriber) *TicketHandler {
	return &TicketHandler{uc: uc, hub: hub}
}

// MyTickets GET /api/tickets/mine
func (h *TicketHandler) MyTickets(c *fiber.Ctx) error {
	companyID, ok := requireCompany(c)
	if !ok {
		return nil
	}
	out, err := h.uc.MyTickets(c.UserContext(), companyID, GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Completed GET /api/tickets/completed
func (h *TicketHandler) Completed(c *fiber.Ctx) error {
	companyID, ok := requireCompany(c)
	if !ok {
		return nil
	}
	out, err := h.uc.CompletedTickets(c.UserContext(), companyID, GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Detail godoc
// @Summary      Ticket con bitácora, repuestos y fotos
// @Tags         tickets
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "ID del ticket"
// @Success      200  {object}  dto.TicketDetailResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/tickets/{id} [get]
func (h *TicketHandler) Detail(c *fiber.Ctx) error {
	companyID, ok := requireCompany(c)
	if !ok {
		return nil
	}
	out, err := h.uc.TicketDetail(c.UserContext(), companyID, c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// StartWork godoc
// @Summary      Inicia el temporizador de trabajo en sitio
// @Description  409 TIMER_ACTIVE si el técnico ya tiene un temporizador en otro ticket.
// @Tags         tickets
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "ID del ticket"
// @Success      200  {object}  dto.ActiveTimerResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/tickets/{id}/work/start [post]
func (h *TicketHandler) StartWork(c *fiber.Ctx) error {
	companyID, ok := requireCompany(c)
	if !ok {
		return nil
	}
	out, err := h.uc.StartWork(c.UserContext(), companyID, GetUserID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// EndWork POST /api/tickets/:id/work/end
func (h *TicketHandler) EndWork(c *fiber.Ctx) error {
	companyID, ok := requireCompany(c)
	if !ok {
		return nil
	}
	var in dto.EndWorkRequest
	if len(c.Body()) > 0 {
		if err := bindBody(c, &in); err != nil {
			return badRequest(c, err)
		}
	}
	out, err := h.uc.EndWork(c.UserContext(), companyID, GetUserID(c), c.Params("id"), in.Complete)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// ActiveTimer GET /api/tickets/timer. Sin temporizador abierto responde active=false.
func (h *TicketHandler) ActiveTimer(c *fiber.Ctx) error {
	out, err := h.uc.ActiveTimer(c.UserContext(), GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// AddUpdate POST /api/tickets/:id/updates
func (h *TicketHandler) AddUpdate(c *fiber.Ctx) error {
	companyID, ok := requireCompany(c)
	if !ok {
		return nil
	}
	var in dto.AddUpdateRequest
	if err := bindBody(c, &in); err != nil {
		return badRequest(c, err)
	}
	out, err := h.uc.AddUpdate(c.UserContext(), companyID, GetUserID(c), c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// AddPart POST /api/tickets/:id/parts
func (h *TicketHandler) AddPart(c *fiber.Ctx) error {
	companyID, ok := requireCompany(c)
	if !ok {
		return nil
	}
	var in dto.AddPartRequest
	if err := bindBody(c, &in); err != nil {
		return badRequest(c, err)
	}
	out, err := h.uc.AddPartUsed(c.UserContext(), companyID, GetUserID(c), c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// UploadPhoto godoc
// @Summary      Sube una foto del ticket
// @Tags         tickets
// @Security     Bearer
// @Accept       multipart/form-data
// @Produce      json
// @Param        id          path      string  true   "ID del ticket"
// @Param        file        formData  file    true   "Imagen"
// @Param        photo_type  formData  string  false  "before | during | after | issue | equipment | other"
// @Param        caption     formData  string  false  "Descripción"
// @Success      201  {object}  dto.PhotoResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/tickets/{id}/photos [post]
func (h *TicketHandler) UploadPhoto(c *fiber.Ctx) error {
	companyID, ok := requireCompany(c)
	if !ok {
		return nil
	}
	fh, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "archivo 'file' requerido"})
	}
	if fh.Size > maxPhotoSize {
		return c.Status(fiber.StatusRequestEntityTooLarge).JSON(dto.ErrorResponse{Code: "FILE_TOO_LARGE", Message: "la foto supera 10 MB"})
	}
	f, err := fh.Open()
	if err != nil {
		return respondError(c, err)
	}
	defer f.Close()

	out, err := h.uc.UploadPhoto(c.UserContext(), companyID, GetUserID(c), c.Params("id"), fieldwork.PhotoUpload{
		PhotoType:   c.FormValue("photo_type"),
		Caption:     c.FormValue("caption"),
		Filename:    fh.Filename,
		ContentType: fh.Header.Get(fiber.HeaderContentType),
		Size:        fh.Size,
		Body:        f,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// TruckInventory GET /api/tickets/inventory
func (h *TicketHandler) TruckInventory(c *fiber.Ctx) error {
	companyID, ok := requireCompany(c)
	if !ok {
		return nil
	}
	out, err := h.uc.TruckInventory(c.UserContext(), companyID, GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Progress GET /api/tickets/:id/progress
func (h *TicketHandler) Progress(c *fiber.Ctx) error {
	companyID, ok := requireCompany(c)
	if !ok {
		return nil
	}
	out, err := h.uc.OnsiteProgress(c.UserContext(), companyID, c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// ProgressStream godoc
// @Summary      Progreso en sitio del ticket (Server-Sent Events)
// @Tags         tickets
// @Security     Bearer
// @Produce      text/event-stream
// @Param        id   path  string  true  "ID del ticket"
// @Success      200
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/tickets/{id}/progress/stream [get]
func (h *TicketHandler) ProgressStream(c *fiber.Ctx) error {
	companyID, ok := requireCompany(c)
	if !ok {
		return nil
	}
	ticketID := c.Params("id")
	// 404 antes de abrir el stream si el ticket no es de la empresa
	if _, err := h.uc.OnsiteProgress(c.UserContext(), companyID, ticketID); err != nil {
		return respondError(c, err)
	}
	return streamTopic(c, h.hub, polling.TicketProgressTopic(companyID, ticketID), h.uc.ProgressFetch(companyID, ticketID))
}
