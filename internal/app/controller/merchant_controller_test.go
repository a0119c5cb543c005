package controller

import (
	"bytes"
	"encoding/json"
	"fmt"
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
	"gorm.io/gorm"
)

type merchantControllerFixture struct {
	testDB *gorm.DB
	router *gin.Engine
	owner  *model.User
}

func setupMerchantControllerTest(t *testing.T) *merchantControllerFixture {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	merchantRepo := repository.NewMerchantRepository(testDB)
	dealRepo := repository.NewDealRepository(testDB)
	claimRepo := repository.NewClaimRepository(testDB)
	auditRepo := repository.NewAuditRepository(testDB)

	merchantService := service.NewMerchantService(merchantRepo)
	dealService := service.NewDealService(dealRepo, merchantRepo)
	reportService := service.NewReportService(claimRepo, merchantRepo)
	auditService := service.NewAuditService(auditRepo)

	controller := NewMerchantController(merchantService, dealService, reportService, auditService)

	owner := &model.User{
		Email:        "owner@example.com",
		PasswordHash: "hashed-password",
		Name:         "Shop Owner",
		Role:         model.RoleMerchant,
	}
	require.NoError(t, testDB.Create(owner).Error)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set(middleware.UserIDKey, owner.ID)
		c.Set(middleware.UserEmailKey, owner.Email)
		c.Set(middleware.UserRoleKey, owner.Role)
		c.Next()
	})
	router.POST("/merchants", controller.CreateMerchant)
	router.PUT("/merchants/:id", controller.UpdateMerchant)
	router.DELETE("/merchants/:id", controller.DeactivateMerchant)
	router.GET("/merchants/:id", controller.GetMerchant)

	return &merchantControllerFixture{
		testDB: testDB,
		router: router,
		owner:  owner,
	}
}

func (f *merchantControllerFixture) doJSON(method, url string, body interface{}) *httptest.ResponseRecorder {
	var buf *bytes.Buffer
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		buf = bytes.NewBuffer(jsonBody)
	} else {
		buf = bytes.NewBuffer(nil)
	}
	req := httptest.NewRequest(method, url, buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func (f *merchantControllerFixture) auditCount(action string) int64 {
	var count int64
	f.testDB.Model(&model.AuditLog{}).
		Where("actor = ? AND action = ?", f.owner.Email, action).
		Count(&count)
	return count
}

func TestMerchantController_CreateMerchant(t *testing.T) {
	f := setupMerchantControllerTest(t)

	w := f.doJSON(http.MethodPost, "/merchants", CreateMerchantRequest{
		Name:      "Corner Cafe",
		Category:  "food",
		Latitude:  33.45,
		Longitude: -112.07,
		Address:   "1 Main St",
	})
	assert.Equal(t, http.StatusCreated, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	merchant := response["merchant"].(map[string]interface{})
	assert.Equal(t, "Corner Cafe", merchant["name"])

	// Audit writes are asynchronous
	assert.Eventually(t, func() bool {
		return f.auditCount("merchant.create") == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestMerchantController_CreateMerchant_InvalidCoordinates(t *testing.T) {
	f := setupMerchantControllerTest(t)

	w := f.doJSON(http.MethodPost, "/merchants", CreateMerchantRequest{
		Name:      "Nowhere Cafe",
		Latitude:  95,
		Longitude: -112.07,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, apperrors.ValidationInvalidGeo, response["error"])
}

func TestMerchantController_UpdateMerchant(t *testing.T) {
	f := setupMerchantControllerTest(t)

	merchant := &model.Merchant{UserID: f.owner.ID, Name: "Old Name", Latitude: 33.45, Longitude: -112.07, IsActive: true}
	require.NoError(t, f.testDB.Create(merchant).Error)

	w := f.doJSON(http.MethodPut, fmt.Sprintf("/merchants/%d", merchant.ID), UpdateMerchantRequest{
		Name:      "New Name",
		Latitude:  33.46,
		Longitude: -112.08,
	})
	assert.Equal(t, http.StatusOK, w.Code)

	var stored model.Merchant
	require.NoError(t, f.testDB.First(&stored, merchant.ID).Error)
	assert.Equal(t, "New Name", stored.Name)

	assert.Eventually(t, func() bool {
		return f.auditCount("merchant.update") == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestMerchantController_UpdateMerchant_NotOwner(t *testing.T) {
	f := setupMerchantControllerTest(t)

	other := &model.User{Email: "other@example.com", PasswordHash: "x", Name: "Other", Role: model.RoleMerchant}
	require.NoError(t, f.testDB.Create(other).Error)

	merchant := &model.Merchant{UserID: other.ID, Name: "Not Yours", Latitude: 33.45, Longitude: -112.07, IsActive: true}
	require.NoError(t, f.testDB.Create(merchant).Error)

	w := f.doJSON(http.MethodPut, fmt.Sprintf("/merchants/%d", merchant.ID), UpdateMerchantRequest{
		Name:      "Hijacked",
		Latitude:  33.45,
		Longitude: -112.07,
	})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestMerchantController_DeactivateMerchant(t *testing.T) {
	f := setupMerchantControllerTest(t)

	merchant := &model.Merchant{UserID: f.owner.ID, Name: "Closing Shop", Latitude: 33.45, Longitude: -112.07, IsActive: true}
	require.NoError(t, f.testDB.Create(merchant).Error)

	w := f.doJSON(http.MethodDelete, fmt.Sprintf("/merchants/%d", merchant.ID), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var stored model.Merchant
	require.NoError(t, f.testDB.First(&stored, merchant.ID).Error)
	assert.False(t, stored.IsActive)

	assert.Eventually(t, func() bool {
		return f.auditCount("merchant.deactivate") == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestMerchantController_GetMerchant_NotFound(t *testing.T) {
	f := setupMerchantControllerTest(t)

	w := f.doJSON(http.MethodGet, "/merchants/9999", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, apperrors.MerchantNotFound, response["error"])
}
