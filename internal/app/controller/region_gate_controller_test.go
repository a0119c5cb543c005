package controller

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nearbuy/nearbuy-backend/internal/app/model"
	"github.com/nearbuy/nearbuy-backend/internal/app/repository"
	"github.com/nearbuy/nearbuy-backend/internal/app/service"
	"github.com/nearbuy/nearbuy-backend/internal/db"
	apperrors "github.com/nearbuy/nearbuy-backend/internal/errors"
	"github.com/nearbuy/nearbuy-backend/internal/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRegionGateControllerTest(t *testing.T) (*RegionGateController, *gin.Engine) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	gateRepo := repository.NewRegionGateRepository(testDB)
	auditRepo := repository.NewAuditRepository(testDB)
	gateService := service.NewRegionGateService(gateRepo, 30*time.Second, false)
	auditService := service.NewAuditService(auditRepo)
	controller := NewRegionGateController(gateService, auditService)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set(middleware.UserIDKey, uint(1))
		c.Set(middleware.UserEmailKey, "admin@example.com")
		c.Set(middleware.UserRoleKey, model.RoleAdmin)
		c.Next()
	})

	return controller, router
}

func TestRegionGateController_SetGate(t *testing.T) {
	controller, router := setupRegionGateControllerTest(t)

	router.POST("/enabled-states", controller.SetGate)
	router.GET("/enabled-states", controller.ListGates)

	enabled := false
	jsonBody, _ := json.Marshal(SetRegionGateRequest{Region: "AZ", Enabled: &enabled})
	req := httptest.NewRequest(http.MethodPost, "/enabled-states", bytes.NewBuffer(jsonBody))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)
	assert.Equal(t, "Region gate updated", response["message"])

	regionData := response["region"].(map[string]interface{})
	assert.Equal(t, "AZ", regionData["region"])
	assert.Equal(t, false, regionData["enabled"])

	// The gate shows up in the listing
	req = httptest.NewRequest(http.MethodGet, "/enabled-states", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	err = json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)
	assert.Equal(t, float64(1), response["count"])
}

func TestRegionGateController_SetGate_UnknownRegion(t *testing.T) {
	controller, router := setupRegionGateControllerTest(t)

	router.POST("/enabled-states", controller.SetGate)

	enabled := true
	jsonBody, _ := json.Marshal(SetRegionGateRequest{Region: "ZZ", Enabled: &enabled})
	req := httptest.NewRequest(http.MethodPost, "/enabled-states", bytes.NewBuffer(jsonBody))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)
	assert.Equal(t, apperrors.RegionUnknown, response["error"])
}

func TestRegionGateController_SetGate_MissingEnabled(t *testing.T) {
	controller, router := setupRegionGateControllerTest(t)

	router.POST("/enabled-states", controller.SetGate)

	jsonBody := []byte(`{"region": "AZ"}`)
	req := httptest.NewRequest(http.MethodPost, "/enabled-states", bytes.NewBuffer(jsonBody))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)
	assert.Equal(t, apperrors.ValidationInvalidInput, response["error"])
}
