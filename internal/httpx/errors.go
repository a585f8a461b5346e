package httpx

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/MikeMC777/shop-service/internal/apperr"
)

// ErrorBody is the JSON body of every error response.
// swagger:model ErrorBody
type ErrorBody struct {
	Error string `json:"error" example:"cart is empty"`
}

// Status maps an error to its HTTP status and client-facing message.
// Server-side failures never leak their cause.
func Status(err error) (int, string) {
	switch {
	case errors.Is(err, apperr.ErrAuthentication):
		return http.StatusUnauthorized, clientMessage(err, apperr.ErrAuthentication)
	case errors.Is(err, apperr.ErrForbidden):
		return http.StatusForbidden, apperr.ErrForbidden.Error()
	case errors.Is(err, apperr.ErrEmptyCart):
		return http.StatusBadRequest, apperr.ErrEmptyCart.Error()
	case errors.Is(err, apperr.ErrConflict):
		return http.StatusBadRequest, clientMessage(err, apperr.ErrValidation)
	case errors.Is(err, apperr.ErrValidation):
		return http.StatusBadRequest, clientMessage(err, apperr.ErrValidation)
	case errors.Is(err, apperr.ErrNotFound):
		return http.StatusNotFound, clientMessage(err, apperr.ErrNotFound)
	case errors.Is(err, apperr.ErrUnavailable):
		return http.StatusServiceUnavailable, apperr.ErrUnavailable.Error()
	case errors.Is(err, apperr.ErrPersistence):
		return http.StatusInternalServerError, apperr.ErrPersistence.Error()
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

// clientMessage trims internal op prefixes, keeping the text from the sentinel on.
func clientMessage(err, sentinel error) string {
	msg := err.Error()
	if i := strings.Index(msg, sentinel.Error()); i > 0 {
		// keep a short subject such as "product: not found"
		if j := strings.LastIndex(msg[:i-1], ": "); j >= 0 {
			return msg[j+2:]
		}
	}
	return msg
}

// Abort writes the error response and records err for the access log.
func Abort(c *gin.Context, err error) {
	code, msg := Status(err)
	_ = c.Error(err)
	c.AbortWithStatusJSON(code, ErrorBody{Error: msg})
}
