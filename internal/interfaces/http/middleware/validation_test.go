package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/assetflow/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func postJSON(router *gin.Engine, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestSetupValidator_ReportsJSONFieldNames(t *testing.T) {
	SetupValidator()

	_, ok := binding.Validator.Engine().(*validator.Validate)
	require.True(t, ok)

	type registerAsset struct {
		SerialNumber string `json:"serial_number" binding:"required"`
	}

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/assets", func(c *gin.Context) {
		var req registerAsset
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleValidationError(c, err)
			return
		}
		c.Status(http.StatusCreated)
	})

	w := postJSON(router, "/assets", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"serial_number"`)
}

func TestHandleValidationError(t *testing.T) {
	SetupValidator()
	gin.SetMode(gin.TestMode)

	type createTransfer struct {
		DestBranchID string `json:"dest_branch_id" binding:"required,uuid"`
		Purpose      string `json:"purpose" binding:"required,oneof=replenishment maintenance return"`
	}

	router := gin.New()
	router.POST("/transfers", func(c *gin.Context) {
		var req createTransfer
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleValidationError(c, err)
			return
		}
		c.Status(http.StatusCreated)
	})

	t.Run("reports every failing field", func(t *testing.T) {
		w := postJSON(router, "/transfers", `{"dest_branch_id": "not-a-uuid", "purpose": "sightseeing"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)

		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.False(t, resp.Success)
		require.NotNil(t, resp.Error)
		assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
		assert.Equal(t, "Request validation failed", resp.Error.Message)
		assert.Len(t, resp.Error.Details, 2)
	})

	t.Run("valid payload passes through", func(t *testing.T) {
		w := postJSON(router, "/transfers",
			`{"dest_branch_id": "3b1f8f1a-58a4-4c5e-9f7e-0f6be8a7d001", "purpose": "maintenance"}`)
		assert.Equal(t, http.StatusCreated, w.Code)
	})
}

func TestValidationMessage(t *testing.T) {
	type payload struct {
		Serial   string `validate:"required"`
		Contact  string `validate:"email"`
		Code     string `validate:"min=5"`
		Note     string `validate:"max=10"`
		Pin      string `validate:"len=4"`
		BranchID string `validate:"uuid"`
		Purpose  string `validate:"oneof=replenishment maintenance"`
		Quantity int    `validate:"gte=1"`
	}

	v := validator.New()
	err := v.Struct(payload{
		Contact: "not-an-email",
		Code:    "ab",
		Note:    "this note is far too long",
		Pin:     "12",
		BranchID: "nope",
		Purpose: "joyride",
		Quantity: 0,
	})
	require.Error(t, err)

	want := map[string]string{
		"Serial":   "This field is required",
		"Contact":  "Invalid email format",
		"Code":     "Must be at least 5 characters",
		"Note":     "Must be at most 10 characters",
		"Pin":      "Must be exactly 4 characters",
		"BranchID": "Invalid UUID format",
		"Purpose":  "Must be one of: replenishment maintenance",
		"Quantity": "Must be greater than or equal to 1",
	}

	for _, e := range err.(validator.ValidationErrors) {
		assert.Equal(t, want[e.StructField()], validationMessage(e), e.StructField())
	}
}

func TestValidationMessage_NumericBounds(t *testing.T) {
	type payload struct {
		Quantity int `validate:"min=1"`
	}

	err := validator.New().Struct(payload{})
	require.Error(t, err)

	e := err.(validator.ValidationErrors)[0]
	assert.Equal(t, "Must be at least 1", validationMessage(e))
}
