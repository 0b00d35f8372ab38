package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mesconnect/backend/internal/app/models/dto"
	"github.com/mesconnect/backend/internal/pkg/apperrors"
	"github.com/mesconnect/backend/internal/pkg/logger"
)

// HandleAPIError maps service errors to HTTP responses. The message comes
// from the error itself; internal errors are logged and masked.
func HandleAPIError(c *gin.Context, err error) {
	status, code := classifyError(err)

	message := err.Error()
	if status == http.StatusInternalServerError {
		logger.Error().Err(err).Str("path", c.FullPath()).Msg("Unhandled service error")
		message = "Internal server error"
	}

	errorDetail := dto.NewErrorDetail(code, message)
	var custom *apperrors.CustomError
	if errors.As(err, &custom) && custom.Field != "" {
		errorDetail = errorDetail.WithField(custom.Field)
	}

	c.JSON(status, dto.NewErrorResponse(errorDetail))
}

func classifyError(err error) (int, dto.ErrorCode) {
	switch {
	case apperrors.Is(err, apperrors.ErrInvalidArgument, apperrors.ErrValidationFailed,
		apperrors.ErrSelfConnection, apperrors.ErrConfessionTooShort,
		apperrors.ErrConfessionTooLong, apperrors.ErrRegistrationClosed):
		return http.StatusBadRequest, dto.ErrorCodeValidationFailed

	case apperrors.Is(err, apperrors.ErrCapacityExceeded,
		apperrors.ErrEventFull, apperrors.ErrGroupFull):
		return http.StatusConflict, dto.ErrorCodeCapacityExceeded

	case apperrors.Is(err, apperrors.ErrConflict, apperrors.ErrConnectionExists,
		apperrors.ErrAlreadyRegistered, apperrors.ErrAlreadyMember):
		return http.StatusConflict, dto.ErrorCodeResourceAlreadyExists

	case apperrors.Is(err, apperrors.ErrNotFound, apperrors.ErrUserNotFound,
		apperrors.ErrConnectionNotFound, apperrors.ErrConfessionNotFound,
		apperrors.ErrEventNotFound, apperrors.ErrGroupNotFound,
		apperrors.ErrNotRegistered, apperrors.ErrNotMember,
		apperrors.ErrConnectionNotPending, apperrors.ErrUserInactive):
		return http.StatusNotFound, dto.ErrorCodeResourceNotFound

	case apperrors.Is(err, apperrors.ErrPermissionDenied,
		apperrors.ErrGroupPrivate, apperrors.ErrMemberBanned):
		return http.StatusForbidden, dto.ErrorCodeForbidden

	case apperrors.Is(err, apperrors.ErrInvalidState, apperrors.ErrLastGroupAdmin):
		return http.StatusUnprocessableEntity, dto.ErrorCodeInvalidState

	case apperrors.Is(err, apperrors.ErrInvalidCredentials):
		return http.StatusUnauthorized, dto.ErrorCodeInvalidCredentials

	case apperrors.Is(err, apperrors.ErrTokenExpired):
		return http.StatusUnauthorized, dto.ErrorCodeExpiredToken

	case apperrors.Is(err, apperrors.ErrTokenInvalid, apperrors.ErrAccountDisabled):
		return http.StatusUnauthorized, dto.ErrorCodeUnauthorized

	default:
		return http.StatusInternalServerError, dto.ErrorCodeInternalServer
	}
}
