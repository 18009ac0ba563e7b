package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vybr/booking-api/internal/api/handler/v1/request"
	"github.com/vybr/booking-api/internal/api/handler/v1/response"
	"github.com/vybr/booking-api/internal/domain"
	"github.com/vybr/booking-api/internal/service"
)

type EventService interface {
	GetEvent(ctx context.Context, id uint) (domain.Event, error)
	CreateEvent(ctx context.Context, event domain.Event) (domain.Event, error)
	ListUpcoming(ctx context.Context) ([]domain.Event, error)
	ListByUserCountry(ctx context.Context, userID uint) ([]domain.Event, error)
	CheckAvailability(ctx context.Context, event domain.Event) (domain.Availability, error)
	DisplayPrice(ctx context.Context, event domain.Event, viewerID uint) string
}

type RecommendService interface {
	RecommendEvents(ctx context.Context, userID uint) ([]domain.ScoredEvent, error)
}

type EventHandler struct {
	svc  EventService
	rSvc RecommendService
}

func NewEventHandler(svc EventService, rSvc RecommendService) *EventHandler {
	return &EventHandler{
		svc:  svc,
		rSvc: rSvc,
	}
}

// HandleListEvents godoc
// @Summary      List upcoming events
// @Tags         events
// @Produce      json
// @Success      200  {array}   domain.Event
// @Failure      401  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /events [get]
// @Security BearerAuth
func (h *EventHandler) HandleListEvents(ctx *gin.Context) {
	events, err := h.svc.ListUpcoming(ctx.Request.Context())
	if err != nil {
		err = fmt.Errorf("v1.HandleListEvents -> h.svc.ListUpcoming -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, events)
}

// HandleGetRecommendedEvents godoc
// @Summary      List events ranked by the user's music taste
// @Tags         events
// @Produce      json
// @Success      200  {array}   domain.ScoredEvent
// @Failure      401  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /events/recommended [get]
// @Security BearerAuth
func (h *EventHandler) HandleGetRecommendedEvents(ctx *gin.Context) {
	userID, respErr := getUserIDFromContext(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	events, err := h.rSvc.RecommendEvents(ctx.Request.Context(), userID)
	if err != nil {
		err = fmt.Errorf("v1.HandleGetRecommendedEvents -> h.rSvc.RecommendEvents -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, events)
}

// HandleGetNearbyEvents godoc
// @Summary      List upcoming events in the user's country
// @Tags         events
// @Produce      json
// @Success      200  {array}   domain.Event
// @Failure      401  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /events/nearby [get]
// @Security BearerAuth
func (h *EventHandler) HandleGetNearbyEvents(ctx *gin.Context) {
	userID, respErr := getUserIDFromContext(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	events, err := h.svc.ListByUserCountry(ctx.Request.Context(), userID)
	if err != nil {
		err = fmt.Errorf("v1.HandleGetNearbyEvents -> h.svc.ListByUserCountry -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, events)
}

// HandleGetEvent godoc
// @Summary      Get one event
// @Tags         events
// @Produce      json
// @Param        eventID  path      int  true  "event ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /events/{eventID} [get]
// @Security BearerAuth
func (h *EventHandler) HandleGetEvent(ctx *gin.Context) {
	eventID, err := strconv.ParseUint(ctx.Param("eventID"), 10, 64)
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(errors.New("invalid event ID")))
		return
	}

	event, err := h.svc.GetEvent(ctx.Request.Context(), uint(eventID))
	if err != nil {
		if errors.Is(err, service.ErrEventNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("event", "ID", eventID))
			return
		}

		err = fmt.Errorf("v1.HandleGetEvent -> h.svc.GetEvent -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	payload := gin.H{"event": event}
	if userID, respErr := getUserIDFromContext(ctx); respErr == nil {
		if display := h.svc.DisplayPrice(ctx.Request.Context(), event, userID); display != "" {
			payload["display_price"] = display
		}
	}

	ctx.JSON(http.StatusOK, payload)
}

// HandleGetAvailability godoc
// @Summary      Get an event's remaining capacity
// @Tags         events
// @Produce      json
// @Param        eventID  path      int  true  "event ID"
// @Success      200  {object}  domain.Availability
// @Failure      400  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /events/{eventID}/availability [get]
// @Security BearerAuth
func (h *EventHandler) HandleGetAvailability(ctx *gin.Context) {
	eventID, err := strconv.ParseUint(ctx.Param("eventID"), 10, 64)
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(errors.New("invalid event ID")))
		return
	}

	event, err := h.svc.GetEvent(ctx.Request.Context(), uint(eventID))
	if err != nil {
		if errors.Is(err, service.ErrEventNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("event", "ID", eventID))
			return
		}

		err = fmt.Errorf("v1.HandleGetAvailability -> h.svc.GetEvent -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	availability, err := h.svc.CheckAvailability(ctx.Request.Context(), event)
	if err != nil {
		err = fmt.Errorf("v1.HandleGetAvailability -> h.svc.CheckAvailability -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, availability)
}

// HandleCreateEvent godoc
// @Summary      Create an event
// @Tags         events
// @Accept       json
// @Produce      json
// @Param        request  body      request.CreateEventRequest  true  "request body"
// @Success      201  {object}  domain.Event
// @Failure      400  {object}  response.Err
// @Failure      401  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /events [post]
// @Security BearerAuth
func (h *EventHandler) HandleCreateEvent(ctx *gin.Context) {
	userID, respErr := getUserIDFromContext(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.CreateEventRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	startsAt, err := time.Parse(time.RFC3339, req.StartsAt)
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	passFee := true
	if req.PassFeeToUser != nil {
		passFee = *req.PassFeeToUser
	}

	event, err := h.svc.CreateEvent(ctx.Request.Context(), domain.Event{
		Title:         req.Title,
		Description:   req.Description,
		Location:      req.Location,
		Country:       req.Country,
		StartsAt:      startsAt,
		BookingType:   domain.BookingType(req.BookingType),
		Price:         req.Price,
		Currency:      req.Currency,
		PassFeeToUser: passFee,
		AttendeeLimit: req.AttendeeLimit,
		Images:        req.Images,
		Artists:       req.Artists,
		Genres:        req.Genres,
		Songs:         req.Songs,
		OrganizerID:   userID,
	})
	if err != nil {
		err = fmt.Errorf("v1.HandleCreateEvent -> h.svc.CreateEvent -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusCreated, event)
}
