package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/SscSPs/library_lending_app/internal/apperrors"
	"github.com/SscSPs/library_lending_app/internal/dto"
	"github.com/SscSPs/library_lending_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

// degradedHeader is set on every response served while the primary store was unreachable.
const degradedHeader = "X-Lending-Degraded"

var errorStatuses = []struct {
	err    error
	status int
}{
	{apperrors.ErrNotFound, http.StatusNotFound},
	{apperrors.ErrValidation, http.StatusBadRequest},
	{apperrors.ErrAlreadyBorrowed, http.StatusConflict},
	{apperrors.ErrAlreadyReturned, http.StatusConflict},
	{apperrors.ErrAlreadyDecided, http.StatusConflict},
	{apperrors.ErrAlreadyVerified, http.StatusConflict},
	{apperrors.ErrDuplicate, http.StatusConflict},
	{apperrors.ErrStale, http.StatusConflict},
	{apperrors.ErrUnavailable, http.StatusUnprocessableEntity},
	{apperrors.ErrNotVerified, http.StatusUnprocessableEntity},
	{apperrors.ErrForbidden, http.StatusForbidden},
	{apperrors.ErrUnauthorized, http.StatusUnauthorized},
	{apperrors.ErrStoreUnavailable, http.StatusServiceUnavailable},
}

func statusOf(err error) int {
	for _, s := range errorStatuses {
		if errors.Is(err, s.err) {
			return s.status
		}
	}
	return http.StatusInternalServerError
}

// respondError logs the failure and writes the error body with the status
// that matches the error kind.
func respondError(c *gin.Context, logger *slog.Logger, err error, msg string) {
	status := statusOf(err)
	entity, id := apperrors.Details(err)
	body := dto.ErrorResponse{
		Error:  err.Error(),
		Code:   apperrors.KindOf(err),
		Entity: entity,
		ID:     id,
	}
	if status >= http.StatusInternalServerError {
		logger.Error(msg, slog.String("error", err.Error()), slog.String("code", body.Code))
		if status == http.StatusInternalServerError {
			body.Error = "Internal server error"
		}
	} else {
		logger.Warn(msg, slog.String("error", err.Error()), slog.String("code", body.Code))
	}
	c.JSON(status, body)
}

// respondBindError writes a 400 for a request that failed binding.
func respondBindError(c *gin.Context, logger *slog.Logger, err error, what string) {
	logger.Warn("Failed to bind "+what, slog.String("error", err.Error()))
	c.JSON(http.StatusBadRequest, dto.ErrorResponse{
		Error: "Invalid request format: " + err.Error(),
		Code:  apperrors.KindOf(apperrors.ErrValidation),
	})
}

// actorFromContext returns the authenticated user ID, writing a 401 when it is missing.
func actorFromContext(c *gin.Context) (string, bool) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok || userID == "" {
		middleware.GetLoggerFromCtx(c.Request.Context()).Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{
			Error: "Unauthorized",
			Code:  apperrors.KindOf(apperrors.ErrUnauthorized),
		})
		return "", false
	}
	return userID, true
}

// markDegraded flags a response that was served from the cache mirror.
func markDegraded(c *gin.Context, degraded bool) {
	if degraded {
		c.Header(degradedHeader, "true")
	}
}
