package response

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Err struct {
	StatusCode int    `json:"-"`
	Msg        string `json:"msg"`
}

func NewErr(statusCode int, msg string) *Err {
	return &Err{
		StatusCode: statusCode,
		Msg:        msg,
	}
}

func ErrBadRequest(err error) *Err {
	return NewErr(http.StatusBadRequest, err.Error())
}

func ErrUnauthorized(msg string) *Err {
	return NewErr(http.StatusUnauthorized, msg)
}

func ErrNotFound(resource, key string, value interface{}) *Err {
	return NewErr(http.StatusNotFound, fmt.Sprintf("%v not found by %v (%v)", resource, key, value))
}

func ErrPermissionDenied(err error) *Err {
	return NewErr(http.StatusForbidden, err.Error())
}

func ErrConflict(err error) *Err {
	return NewErr(http.StatusConflict, err.Error())
}

func ErrPaymentRequired(err error) *Err {
	return NewErr(http.StatusPaymentRequired, err.Error())
}

func ErrBadGateway(msg string) *Err {
	return NewErr(http.StatusBadGateway, msg)
}

// ErrInternalServerError logs the cause and hides it from the caller.
func ErrInternalServerError(err error) *Err {
	zap.L().Error("internal server error", zap.Error(err))

	return NewErr(http.StatusInternalServerError, "something went wrong")
}

// ErrInternalWithMsg logs the cause but keeps the given user-facing
// message, for failures the user must act on.
func ErrInternalWithMsg(err error, msg string) *Err {
	zap.L().Error("internal server error", zap.Error(err))

	return NewErr(http.StatusInternalServerError, msg)
}

func RenderErr(ctx *gin.Context, err *Err) {
	ctx.AbortWithStatusJSON(err.StatusCode, err)
}
