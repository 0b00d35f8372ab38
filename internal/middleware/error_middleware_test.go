package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesconnect/backend/internal/app/models/dto"
	"github.com/mesconnect/backend/internal/pkg/apperrors"
)

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   dto.ErrorCode
	}{
		{"validation", apperrors.ErrConfessionTooShort, http.StatusBadRequest, dto.ErrorCodeValidationFailed},
		{"capacity", apperrors.ErrEventFull, http.StatusConflict, dto.ErrorCodeCapacityExceeded},
		{"duplicate", apperrors.ErrConnectionExists, http.StatusConflict, dto.ErrorCodeResourceAlreadyExists},
		{"absent entity", apperrors.ErrGroupNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound},
		{"absent pending request", apperrors.ErrConnectionNotPending, http.StatusNotFound, dto.ErrorCodeResourceNotFound},
		{"inactive party", apperrors.ErrUserInactive, http.StatusNotFound, dto.ErrorCodeResourceNotFound},
		{"forbidden", apperrors.ErrPermissionDenied, http.StatusForbidden, dto.ErrorCodeForbidden},
		{"invariant violation", apperrors.ErrLastGroupAdmin, http.StatusUnprocessableEntity, dto.ErrorCodeInvalidState},
		{"bad credentials", apperrors.ErrInvalidCredentials, http.StatusUnauthorized, dto.ErrorCodeInvalidCredentials},
		{"unknown error", assert.AnError, http.StatusInternalServerError, dto.ErrorCodeInternalServer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, code := classifyError(tt.err)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.code, code)
		})
	}
}

func TestHandleAPIErrorMasksInternalErrors(t *testing.T) {
	gin.SetMode(gin.TestMode)

	recorder := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(recorder)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	HandleAPIError(c, assert.AnError)

	assert.Equal(t, http.StatusInternalServerError, recorder.Code)

	var resp dto.ErrorResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &resp))
	assert.Equal(t, "Internal server error", resp.Error.Message)
	assert.NotContains(t, resp.Error.Message, assert.AnError.Error())
}
