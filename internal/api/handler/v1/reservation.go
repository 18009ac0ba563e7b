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

type ReservationService interface {
	ListDays(ctx context.Context, organizerID uint) ([]domain.ReservationDay, error)
	ListSlots(ctx context.Context, organizerID uint, date time.Time) ([]domain.TimeSlot, error)
	Confirm(ctx context.Context, userID, organizerID uint, date time.Time, guests int) (domain.BookingConfirmation, error)
	SaveHours(ctx context.Context, hours domain.OpeningHours) (domain.OpeningHours, error)
}

type ReservationHandler struct {
	svc ReservationService
}

func NewReservationHandler(svc ReservationService) *ReservationHandler {
	return &ReservationHandler{
		svc: svc,
	}
}

// HandleListDays godoc
// @Summary      List reservable days for an organizer
// @Tags         reservations
// @Produce      json
// @Param        organizerID  path  int  true  "organizer ID"
// @Success      200  {array}   domain.ReservationDay
// @Failure      400  {object}  response.Err
// @Failure      401  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /reservations/{organizerID}/days [get]
// @Security BearerAuth
func (h *ReservationHandler) HandleListDays(ctx *gin.Context) {
	organizerID, err := strconv.ParseUint(ctx.Param("organizerID"), 10, 64)
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(errors.New("invalid organizer ID")))
		return
	}

	days, err := h.svc.ListDays(ctx.Request.Context(), uint(organizerID))
	if err != nil {
		err = fmt.Errorf("v1.HandleListDays -> h.svc.ListDays -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, days)
}

// HandleListSlots godoc
// @Summary      List open 30 minute slots for one date
// @Tags         reservations
// @Produce      json
// @Param        organizerID  path   int     true  "organizer ID"
// @Param        date         query  string  true  "date (YYYY-MM-DD)"
// @Success      200  {array}   domain.TimeSlot
// @Failure      400  {object}  response.Err
// @Failure      401  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /reservations/{organizerID}/slots [get]
// @Security BearerAuth
func (h *ReservationHandler) HandleListSlots(ctx *gin.Context) {
	organizerID, err := strconv.ParseUint(ctx.Param("organizerID"), 10, 64)
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(errors.New("invalid organizer ID")))
		return
	}

	date, err := time.Parse("2006-01-02", ctx.Query("date"))
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(errors.New("invalid date, expected YYYY-MM-DD")))
		return
	}

	slots, err := h.svc.ListSlots(ctx.Request.Context(), uint(organizerID), date)
	if err != nil {
		if errors.Is(err, service.ErrSlotUnavailable) {
			response.RenderErr(ctx, response.ErrBadRequest(service.ErrSlotUnavailable))
			return
		}

		err = fmt.Errorf("v1.HandleListSlots -> h.svc.ListSlots -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, slots)
}

// HandleConfirmReservation godoc
// @Summary      Confirm a reservation slot
// @Tags         reservations
// @Accept       json
// @Produce      json
// @Param        request  body      request.ConfirmReservationRequest  true  "request body"
// @Success      200  {object}  domain.BookingConfirmation
// @Failure      400  {object}  response.Err
// @Failure      401  {object}  response.Err
// @Failure      409  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /reservations [post]
// @Security BearerAuth
func (h *ReservationHandler) HandleConfirmReservation(ctx *gin.Context) {
	userID, respErr := getUserIDFromContext(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.ConfirmReservationRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	slot, err := time.Parse(time.RFC3339, req.Slot)
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	confirmation, err := h.svc.Confirm(ctx.Request.Context(), userID, req.OrganizerID, slot, req.Guests)
	if err != nil {
		if errors.Is(err, service.ErrSlotUnavailable) {
			response.RenderErr(ctx, response.ErrBadRequest(service.ErrSlotUnavailable))
			return
		}

		renderBookingErr(ctx, "v1.HandleConfirmReservation", err)
		return
	}

	ctx.JSON(http.StatusOK, confirmation)
}

// HandleSaveOpeningHours godoc
// @Summary      Save the authenticated organizer's opening hours for one weekday
// @Tags         reservations
// @Accept       json
// @Produce      json
// @Param        request  body      request.SaveOpeningHoursRequest  true  "request body"
// @Success      200  {object}  domain.OpeningHours
// @Failure      400  {object}  response.Err
// @Failure      401  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /reservations/hours [put]
// @Security BearerAuth
func (h *ReservationHandler) HandleSaveOpeningHours(ctx *gin.Context) {
	userID, respErr := getUserIDFromContext(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.SaveOpeningHoursRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	hours, err := h.svc.SaveHours(ctx.Request.Context(), domain.OpeningHours{
		OrganizerID: userID,
		Weekday:     req.Weekday,
		OpensAt:     req.OpensAt,
		ClosesAt:    req.ClosesAt,
	})
	if err != nil {
		err = fmt.Errorf("v1.HandleSaveOpeningHours -> h.svc.SaveHours -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, hours)
}
