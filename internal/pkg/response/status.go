// internal/pkg/response/status.go
package response

import (
	"errors"
	"net/http"

	xerrors "mobility-service/internal/pkg/errors"

	"github.com/gin-gonic/gin"
)

// FromError maps application sentinel errors to HTTP status codes and sends
// the standard error envelope.
func FromError(c *gin.Context, message string, err error) {
	Error(c, statusOf(err), message, err)
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, xerrors.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, xerrors.ErrUnauthorized), errors.Is(err, xerrors.ErrSessionExpired):
		return http.StatusUnauthorized
	case errors.Is(err, xerrors.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, xerrors.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, xerrors.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, xerrors.ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, xerrors.ErrDocumentGate):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
