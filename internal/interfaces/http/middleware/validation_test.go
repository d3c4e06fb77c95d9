package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridbase/backend/internal/interfaces/http/dto"
)

func TestSetupValidator(t *testing.T) {
	SetupValidator()

	v, ok := binding.Validator.Engine().(*validator.Validate)
	require.True(t, ok)
	assert.NotNil(t, v)
}

func TestCurrencyCodeTag(t *testing.T) {
	SetupValidator()
	gin.SetMode(gin.TestMode)

	type settingsRequest struct {
		BaseCurrency string `json:"base_currency" binding:"omitempty,currency_code"`
	}

	router := gin.New()
	router.PUT("/settings", func(c *gin.Context) {
		var req settingsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleValidationError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true})
	})

	put := func(body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPut, "/settings", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusOK, put(`{"base_currency": "RON"}`).Code)
	assert.Equal(t, http.StatusOK, put(`{}`).Code)

	w := put(`{"base_currency": "ron"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	require.Len(t, resp.Error.Details, 1)
	assert.Equal(t, "Must be a 3-letter ISO currency code", resp.Error.Details[0].Message)
}

func TestHandleValidationError(t *testing.T) {
	SetupValidator()
	gin.SetMode(gin.TestMode)

	type createColumnRequest struct {
		Name     string `json:"name" binding:"required"`
		DataType string `json:"data_type" binding:"required,oneof=text number date reference"`
		Position int    `json:"position" binding:"min=0"`
	}

	router := gin.New()
	router.POST("/columns", func(c *gin.Context) {
		var req createColumnRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleValidationError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true})
	})

	post := func(body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/columns", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	t.Run("invalid payload lists per-field details", func(t *testing.T) {
		w := post(`{"data_type": "blob", "position": -1}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)

		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

		assert.False(t, resp.Success)
		require.NotNil(t, resp.Error)
		assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
		assert.Equal(t, "Request validation failed", resp.Error.Message)
		assert.Len(t, resp.Error.Details, 3)

		// json tag names, not struct field names
		fields := make([]string, 0, len(resp.Error.Details))
		for _, d := range resp.Error.Details {
			fields = append(fields, d.Field)
		}
		assert.ElementsMatch(t, []string{"name", "data_type", "position"}, fields)
	})

	t.Run("valid payload passes through", func(t *testing.T) {
		w := post(`{"name": "Amount", "data_type": "number", "position": 2}`)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestGetValidationMessage(t *testing.T) {
	type probe struct {
		Required string `validate:"required"`
		Email    string `validate:"email"`
		Min      string `validate:"min=5"`
		Max      string `validate:"max=10"`
		Len      string `validate:"len=5"`
		UUID     string `validate:"uuid"`
		OneOf    string `validate:"oneof=text number date"`
		URL      string `validate:"url"`
	}

	v := validator.New()
	err := v.Struct(probe{
		Email: "not-an-email",
		Min:   "ab",
		Max:   "far longer than ten characters",
		Len:   "ab",
		UUID:  "not-a-uuid",
		OneOf: "blob",
		URL:   "not-a-url",
	})
	require.Error(t, err)

	want := map[string]string{
		"Required": "This field is required",
		"Email":    "Invalid email format",
		"Min":      "Must be at least 5 characters",
		"Max":      "Must be at most 10 characters",
		"Len":      "Must be exactly 5 characters",
		"UUID":     "Invalid UUID format",
		"OneOf":    "Must be one of: text number date",
		"URL":      "Invalid URL format",
	}

	validationErrs, ok := err.(validator.ValidationErrors)
	require.True(t, ok)
	require.Len(t, validationErrs, len(want))

	for _, e := range validationErrs {
		assert.Equal(t, want[e.Field()], validationMessage(e), "field %s", e.Field())
	}
}

func TestFormatValidationErrorsCarriesRequestID(t *testing.T) {
	type probe struct {
		Name string `validate:"required"`
	}

	err := validator.New().Struct(probe{})
	require.Error(t, err)

	resp := FormatValidationErrors(err, "req-77")

	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "req-77", resp.Error.RequestID)
	assert.Len(t, resp.Error.Details, 1)
}
