package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vybr/booking-api/internal/api/handler/v1/request"
	"github.com/vybr/booking-api/internal/api/handler/v1/response"
	"github.com/vybr/booking-api/internal/domain"
	"github.com/vybr/booking-api/internal/service"
)

type BookingService interface {
	StartBooking(ctx context.Context, userID, eventID uint, quantity int, execContext domain.ExecutionContext) (service.StartBookingResult, error)
	CompleteEmbedded(ctx context.Context, userID uint, intentID, outcome, providerMessage string) (domain.BookingConfirmation, error)
	FinalizeRedirect(ctx context.Context, intentID string, paymentSuccess bool) (domain.BookingConfirmation, error)
	ListMyBookings(ctx context.Context, userID uint) ([]domain.Booking, error)
}

type BookingHandler struct {
	svc BookingService
}

func NewBookingHandler(svc BookingService) *BookingHandler {
	return &BookingHandler{
		svc: svc,
	}
}

// HandleStartBooking godoc
// @Summary      Start a booking
// @Description  Books a free event immediately, or opens a payment attempt for a paid one.
// @Tags         bookings
// @Accept       json
// @Produce      json
// @Param        request  body      request.StartBookingRequest  true  "request body"
// @Success      200  {object}  service.StartBookingResult
// @Failure      400  {object}  response.Err
// @Failure      401  {object}  response.Err
// @Failure      409  {object}  response.Err
// @Failure      502  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /bookings [post]
// @Security BearerAuth
func (h *BookingHandler) HandleStartBooking(ctx *gin.Context) {
	userID, respErr := getUserIDFromContext(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.StartBookingRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	result, err := h.svc.StartBooking(ctx.Request.Context(), userID, req.EventID, req.Quantity, domain.ExecutionContext(req.Context))
	if err != nil {
		renderBookingErr(ctx, "v1.HandleStartBooking", err)
		return
	}

	ctx.JSON(http.StatusOK, result)
}

// HandleCompletePayment godoc
// @Summary      Report an embedded payment sheet outcome
// @Tags         bookings
// @Accept       json
// @Produce      json
// @Param        request  body      request.CompletePaymentRequest  true  "request body"
// @Success      200  {object}  domain.BookingConfirmation
// @Failure      400  {object}  response.Err
// @Failure      401  {object}  response.Err
// @Failure      402  {object}  response.Err
// @Failure      409  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /bookings/complete-payment [post]
// @Security BearerAuth
func (h *BookingHandler) HandleCompletePayment(ctx *gin.Context) {
	userID, respErr := getUserIDFromContext(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.CompletePaymentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	confirmation, err := h.svc.CompleteEmbedded(ctx.Request.Context(), userID, req.IntentID, req.Outcome, req.Message)
	if err != nil {
		if errors.Is(err, service.ErrPaymentCanceled) {
			// A dismissed sheet is a normal outcome, not an error.
			ctx.JSON(http.StatusOK, gin.H{
				"canceled": true,
				"message":  "Payment canceled.",
			})
			return
		}

		renderBookingErr(ctx, "v1.HandleCompletePayment", err)
		return
	}

	ctx.JSON(http.StatusOK, confirmation)
}

// HandlePaymentReturn godoc
// @Summary      Finalize a redirect payment
// @Description  Target of the provider redirect. Finalizes the booking at most once, then redirects to the same path with the payment query parameters stripped.
// @Tags         bookings
// @Produce      json
// @Param        payment_success  query  string  false  "success flag"
// @Param        payment_intent   query  string  false  "payment intent ID"
// @Success      200  {object}  map[string]interface{}
// @Success      303  {string}  string  "redirect with parameters stripped"
// @Failure      402  {object}  response.Err
// @Failure      409  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /bookings/payment-return [get]
func (h *BookingHandler) HandlePaymentReturn(ctx *gin.Context) {
	intentID := ctx.Query("payment_intent")
	success := ctx.Query("payment_success")

	if intentID == "" || success == "" {
		// The stripped URL after finalization lands here.
		ctx.JSON(http.StatusOK, gin.H{
			"message":     "No payment to finalize.",
			"destination": domain.DestinationBookingsList,
		})
		return
	}

	_, err := h.svc.FinalizeRedirect(ctx.Request.Context(), intentID, success == "true")
	if err != nil {
		if errors.Is(err, service.ErrPaymentCanceled) {
			ctx.JSON(http.StatusOK, gin.H{
				"canceled": true,
				"message":  "Payment canceled.",
			})
			return
		}

		renderBookingErr(ctx, "v1.HandlePaymentReturn", err)
		return
	}

	// Strip the query parameters so a refresh cannot re-trigger
	// booking creation.
	ctx.Redirect(http.StatusSeeOther, ctx.Request.URL.Path)
}

// HandleListMyBookings godoc
// @Summary      List the authenticated user's bookings
// @Tags         bookings
// @Produce      json
// @Success      200  {array}   domain.Booking
// @Failure      401  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /bookings [get]
// @Security BearerAuth
func (h *BookingHandler) HandleListMyBookings(ctx *gin.Context) {
	userID, respErr := getUserIDFromContext(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	bookings, err := h.svc.ListMyBookings(ctx.Request.Context(), userID)
	if err != nil {
		err = fmt.Errorf("v1.HandleListMyBookings -> h.svc.ListMyBookings -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, bookings)
}

// renderBookingErr maps booking flow failures onto HTTP statuses.
func renderBookingErr(ctx *gin.Context, caller string, err error) {
	var capacityErr *service.CapacityError
	var writeErr *service.PostPaymentWriteError

	switch {
	case errors.As(err, &capacityErr):
		response.RenderErr(ctx, response.ErrConflict(capacityErr))
	case errors.Is(err, service.ErrBookingExists):
		response.RenderErr(ctx, response.ErrConflict(errors.New("you already have a booking for this event")))
	case errors.Is(err, service.ErrAttemptInFlight):
		response.RenderErr(ctx, response.ErrConflict(service.ErrAttemptInFlight))
	case errors.Is(err, service.ErrBookingNotAllowed):
		response.RenderErr(ctx, response.ErrBadRequest(service.ErrBookingNotAllowed))
	case errors.Is(err, service.ErrPaymentFailed):
		response.RenderErr(ctx, response.ErrPaymentRequired(err))
	case errors.Is(err, service.ErrIntentFetchFailed):
		response.RenderErr(ctx, response.ErrBadGateway("We could not start your payment. Please try again."))
	case errors.As(err, &writeErr):
		response.RenderErr(ctx, response.ErrInternalWithMsg(err, writeErr.Error()))
	case errors.Is(err, service.ErrCriticalBackendMissing):
		response.RenderErr(ctx, response.ErrInternalWithMsg(err, service.ErrCriticalBackendMissing.Error()))
	default:
		response.RenderErr(ctx, response.ErrInternalServerError(fmt.Errorf("%s -> %w", caller, err)))
	}
}
