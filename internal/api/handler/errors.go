package handler

import (
	"errors"
	"hr-comparator/internal/api/dto"
	"hr-comparator/internal/domain"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// statusFor maps service errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrLimitExceeded),
		errors.Is(err, domain.ErrInvalidInput),
		errors.Is(err, domain.ErrAlreadyExists),
		errors.Is(err, domain.ErrWorkflowFinalized):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	}
	return http.StatusInternalServerError
}

// detailFor is the client-facing message. Validation messages are shown
// without the sentinel prefix; unclassified errors are not shown at all.
func detailFor(err error, status int) string {
	msg := err.Error()
	if errors.Is(err, domain.ErrInvalidInput) {
		return strings.TrimPrefix(msg, domain.ErrInvalidInput.Error()+": ")
	}
	if status == http.StatusInternalServerError &&
		!errors.Is(err, domain.ErrWorkflowFailed) &&
		!errors.Is(err, domain.ErrAgentTimeout) &&
		!errors.Is(err, domain.ErrAgentUnavailable) &&
		!errors.Is(err, domain.ErrAgentProtocol) {
		return "internal server error"
	}
	return msg
}

// respondError writes err as {"detail": ...} and aborts the chain.
func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
	}
	c.AbortWithStatusJSON(status, dto.ErrorResponse{Detail: detailFor(err, status)})
}

// respondBindError reports a malformed request body or query.
func respondBindError(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, dto.ErrorResponse{Detail: err.Error()})
}

func respondOK(c *gin.Context, message string, data any) {
	c.JSON(http.StatusOK, dto.Response{Success: true, Message: message, Data: data})
}
