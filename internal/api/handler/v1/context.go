package v1

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/vybr/booking-api/internal/api/handler/v1/response"
	"github.com/vybr/booking-api/internal/api/middleware"
)

// getUserIDFromContext reads the authenticated user's id placed there
// by the JWT middleware.
func getUserIDFromContext(ctx *gin.Context) (uint, *response.Err) {
	value, exists := ctx.Get(middleware.ContextKeyUserID)
	if !exists {
		return 0, response.ErrUnauthorized("authentication required")
	}

	userID, ok := value.(uint)
	if !ok {
		return 0, response.ErrInternalServerError(fmt.Errorf("user id in context has type %T", value))
	}

	return userID, nil
}
