package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/admitflow/admitflow/internal/app/models/dto"
	"github.com/admitflow/admitflow/internal/pkg/apperrors"
)

func TestHandleAPIError_Mapping(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   dto.ErrorCode
	}{
		{"invalid transition", apperrors.NewInvalidTransitionError("no transition approved -> submitted"), http.StatusUnprocessableEntity, dto.ErrorCodeInvalidTransition},
		{"concurrent modification", apperrors.ErrConcurrentModification, http.StatusConflict, dto.ErrorCodeConcurrentModification},
		{"no documents", apperrors.ErrNoDocuments, http.StatusNotFound, dto.ErrorCodeNoDocuments},
		{"partial cascade", apperrors.ErrPartialCascadeFailure, http.StatusInternalServerError, dto.ErrorCodeCascadeFailure},
		{"application not found", apperrors.ErrApplicationNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound},
		{"document not found", apperrors.ErrDocumentNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound},
		{"program not found", apperrors.ErrProgramNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound},
		{"permission denied", apperrors.NewForbiddenError("nope"), http.StatusForbidden, dto.ErrorCodeForbidden},
		{"invalid credentials", apperrors.ErrInvalidCredentials, http.StatusUnauthorized, dto.ErrorCodeInvalidCredentials},
		{"account disabled", apperrors.ErrAccountDisabled, http.StatusUnauthorized, dto.ErrorCodeAccountDisabled},
		{"token expired", apperrors.ErrTokenExpired, http.StatusUnauthorized, dto.ErrorCodeExpiredToken},
		{"email exists", apperrors.ErrEmailAlreadyExists, http.StatusConflict, dto.ErrorCodeResourceAlreadyExists},
		{"bad request", apperrors.NewBadRequestError("bad input"), http.StatusBadRequest, dto.ErrorCodeValidationFailed},
		{"unknown error", assert.AnError, http.StatusInternalServerError, dto.ErrorCodeInternalServer},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			recorder := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(recorder)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			HandleAPIError(c, tc.err)

			assert.Equal(t, tc.wantStatus, recorder.Code)

			var resp dto.APIResponse
			require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &resp))
			require.NotNil(t, resp.Error)
			assert.Equal(t, tc.wantCode, resp.Error.Code)
		})
	}
}

func TestHandleAPIError_CustomMessagePreserved(t *testing.T) {
	gin.SetMode(gin.TestMode)

	recorder := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(recorder)
	c.Request = httptest.NewRequest(http.MethodPost, "/", nil)

	HandleAPIError(c, apperrors.NewForbiddenError("role agent may not perform transition submitted -> under-review"))

	var resp dto.APIResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	assert.Contains(t, resp.Error.Message, "submitted -> under-review")
}
