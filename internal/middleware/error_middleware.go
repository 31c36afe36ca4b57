package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/monchobi/artschool/internal/app/models/dto"
	"github.com/monchobi/artschool/internal/pkg/apperrors"
	"github.com/monchobi/artschool/internal/pkg/auth"
	"github.com/monchobi/artschool/internal/pkg/logger"
	"github.com/monchobi/artschool/internal/pkg/observability"
)

// HandleAPIError handles common API errors and returns appropriate responses
func HandleAPIError(c *gin.Context, err error) {
	status, detail := classify(err)
	if status >= http.StatusInternalServerError {
		logger.Error().
			Err(err).
			Str("method", c.Request.Method).
			Str("route", c.FullPath()).
			Int("status", status).
			Msg("Request failed")
		if status == http.StatusInternalServerError {
			observability.CaptureRequestErr(c.Request, c.FullPath(), err)
		}
	}

	c.AbortWithStatusJSON(status, dto.NewErrorResponse(detail))
}

// classify maps an error onto an HTTP status and the detail clients see.
func classify(err error) (int, *dto.ErrorDetail) {
	message := func(fallback string) string {
		if m := apperrors.Message(err); m != "" {
			return m
		}
		return fallback
	}

	switch {
	case errors.Is(err, apperrors.ErrResourceNotFound):
		return http.StatusNotFound, dto.NewErrorDetail(dto.ErrorCodeResourceNotFound, dto.KindNotFound, message("Resource not found"))
	case errors.Is(err, apperrors.ErrNoCapacity):
		return http.StatusBadRequest, dto.NewErrorDetail(dto.ErrorCodeNoCapacity, dto.KindNoCapacity, message("No seats available"))
	case apperrors.Is(err, apperrors.ErrValidationFailed, apperrors.ErrInvalidEmail):
		return http.StatusBadRequest, dto.NewErrorDetail(dto.ErrorCodeValidationFailed, dto.KindInvalid, message("Validation failed"))
	case apperrors.Is(err, apperrors.ErrTokenExpired, auth.ErrExpiredToken):
		return http.StatusUnauthorized, dto.NewErrorDetail(dto.ErrorCodeExpiredToken, dto.KindUnauthorized, "Token expired")
	case apperrors.Is(err, apperrors.ErrTokenInvalid, auth.ErrInvalidToken, apperrors.ErrInvalidFormat, auth.ErrInvalidFormat):
		return http.StatusUnauthorized, dto.NewErrorDetail(dto.ErrorCodeInvalidToken, dto.KindUnauthorized, "Invalid token")
	case errors.Is(err, apperrors.ErrUnauthorized):
		return http.StatusUnauthorized, dto.NewErrorDetail(dto.ErrorCodeUnauthorized, dto.KindUnauthorized, "Authentication required")
	case errors.Is(err, apperrors.ErrPermissionDenied):
		return http.StatusForbidden, dto.NewErrorDetail(dto.ErrorCodeForbidden, dto.KindForbidden, message("Permission denied"))
	case errors.Is(err, apperrors.ErrResourceAlreadyExists):
		return http.StatusConflict, dto.NewErrorDetail(dto.ErrorCodeResourceAlreadyExists, dto.KindConflict, message("Resource already exists"))
	case apperrors.Is(err, apperrors.ErrUnavailable, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, dto.NewErrorDetail(dto.ErrorCodeUnavailable, dto.KindUnavailable, message("Service temporarily unavailable")).AsRetryable()
	default:
		return http.StatusInternalServerError, dto.NewErrorDetail(dto.ErrorCodeInternalServer, dto.KindInternal, "Internal server error")
	}
}
