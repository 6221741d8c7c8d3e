// internal/handlers/errors_test.go
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javajoker/fashion-storefront/internal/services"
	"github.com/javajoker/fashion-storefront/internal/utils"
)

func TestRespondErrorMapsKinds(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		err    error
		status int
		code   string
	}{
		{services.NewValidationError("bad", nil), http.StatusBadRequest, "VALIDATION_ERROR"},
		{services.NewUnauthorizedError("who"), http.StatusUnauthorized, "UNAUTHORIZED"},
		{services.NewForbiddenError("no"), http.StatusForbidden, "FORBIDDEN"},
		{services.NewNotFoundError("gone"), http.StatusNotFound, "NOT_FOUND"},
		{services.NewConflictError("dup", nil), http.StatusBadRequest, "CONFLICT"},
		{services.NewDependencyError("in use", nil), http.StatusBadRequest, "DEPENDENCY_ERROR"},
		{services.NewInsufficientStockError("short", nil), http.StatusConflict, "INSUFFICIENT_STOCK"},
		{services.NewInternalError("boom", errors.New("pq: connection refused")), http.StatusInternalServerError, "INTERNAL_ERROR"},
		{errors.New("unexpected"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

		respondError(c, tt.err)

		assert.Equal(t, tt.status, w.Code, tt.code)
		var resp utils.APIResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.NotNil(t, resp.Error)
		assert.Equal(t, tt.code, resp.Error.Code)
		assert.NotContains(t, w.Body.String(), "connection refused")
	}
}

func TestLocalizeOnlyTouchesMatchingKind(t *testing.T) {
	original := services.NewNotFoundError("product not found")

	localized := localize(original, services.KindNotFound, "Produkt nicht gefunden")
	assert.Equal(t, "Produkt nicht gefunden", localized.(*services.AppError).Message)
	assert.Equal(t, "product not found", original.Message)

	untouched := localize(original, services.KindConflict, "x")
	assert.Same(t, original, untouched)
}

func TestBindJSONRejectsMalformedBody(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":`))
	c.Request.Header.Set("Content-Type", "application/json")

	var dst struct {
		Name string `json:"name"`
	}
	assert.False(t, bindJSON(c, &dst))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp utils.APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
	assert.NotEmpty(t, resp.Error.Details)
}
