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

type dealControllerFixture struct {
	testDB     *gorm.DB
	controller *DealController
	router     *gin.Engine
	dealRepo   repository.DealRepository
	owner      *model.User
	merchant   *model.Merchant
}

func setupDealControllerTest(t *testing.T) *dealControllerFixture {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	dealRepo := repository.NewDealRepository(testDB)
	merchantRepo := repository.NewMerchantRepository(testDB)
	claimRepo := repository.NewClaimRepository(testDB)
	gateRepo := repository.NewRegionGateRepository(testDB)
	auditRepo := repository.NewAuditRepository(testDB)

	dealService := service.NewDealService(dealRepo, merchantRepo)
	gateService := service.NewRegionGateService(gateRepo, 30*time.Second, false)
	discoveryService := service.NewDiscoveryService(dealRepo, gateService)
	claimService := service.NewClaimService(dealRepo, claimRepo, testDB)
	recurrenceService := service.NewRecurrenceService(dealRepo)
	auditService := service.NewAuditService(auditRepo)

	controller := NewDealController(dealService, discoveryService, claimService, recurrenceService, auditService)

	owner := &model.User{
		Email:        fmt.Sprintf("owner-%d@example.com", time.Now().UnixNano()),
		PasswordHash: "hashed-password",
		Name:         "Deal Owner",
		Role:         model.RoleMerchant,
	}
	require.NoError(t, testDB.Create(owner).Error)

	merchant := &model.Merchant{
		UserID:    owner.ID,
		Name:      "Controller Test Shop",
		Category:  "food",
		Latitude:  33.45,
		Longitude: -112.07,
		IsActive:  true,
	}
	require.NoError(t, testDB.Create(merchant).Error)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set(middleware.UserIDKey, owner.ID)
		c.Set(middleware.UserEmailKey, owner.Email)
		c.Set(middleware.UserRoleKey, owner.Role)
		c.Next()
	})

	return &dealControllerFixture{
		testDB:     testDB,
		controller: controller,
		router:     router,
		dealRepo:   dealRepo,
		owner:      owner,
		merchant:   merchant,
	}
}

func (f *dealControllerFixture) createLiveDeal(t *testing.T, title string) *model.Deal {
	now := time.Now()
	deal := &model.Deal{
		MerchantID:      f.merchant.ID,
		Title:           title,
		OriginalPrice:   20,
		DiscountedPrice: 10,
		Category:        "food",
		StartTime:       now.Add(-time.Hour),
		EndTime:         now.Add(time.Hour),
		MaxRedemptions:  5,
		IsActive:        true,
	}
	require.NoError(t, f.dealRepo.Create(deal))
	return deal
}

func TestDealController_ListDeals(t *testing.T) {
	f := setupDealControllerTest(t)

	f.createLiveDeal(t, "First deal")
	f.createLiveDeal(t, "Second deal")

	f.router.GET("/deals", f.controller.ListDeals)

	req := httptest.NewRequest(http.MethodGet, "/deals", nil)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)

	deals := response["deals"].([]interface{})
	assert.Len(t, deals, 2)
	assert.Equal(t, float64(2), response["count"])
}

func TestDealController_DiscoverDeals_InvalidCoordinates(t *testing.T) {
	f := setupDealControllerTest(t)

	f.router.GET("/deals/location", f.controller.DiscoverDeals)

	tests := []struct {
		name string
		url  string
	}{
		{name: "Latitude without longitude", url: "/deals/location?lat=33.45"},
		{name: "Non-numeric latitude", url: "/deals/location?lat=abc&lng=-112.07"},
		{name: "Latitude out of range", url: "/deals/location?lat=95&lng=-112.07"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.url, nil)
			w := httptest.NewRecorder()
			f.router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusBadRequest, w.Code)

			var response map[string]interface{}
			err := json.Unmarshal(w.Body.Bytes(), &response)
			require.NoError(t, err)
			assert.Equal(t, apperrors.ValidationInvalidGeo, response["error"])
		})
	}
}

func TestDealController_DiscoverDeals_WithOrigin(t *testing.T) {
	f := setupDealControllerTest(t)

	f.createLiveDeal(t, "Nearby deal")

	f.router.GET("/deals/location", f.controller.DiscoverDeals)

	req := httptest.NewRequest(http.MethodGet, "/deals/location?lat=33.45&lng=-112.07", nil)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)
	assert.Equal(t, float64(1), response["count"])
}

func TestDealController_GetDeal_NotFound(t *testing.T) {
	f := setupDealControllerTest(t)

	f.router.GET("/deals/:id", f.controller.GetDeal)

	req := httptest.NewRequest(http.MethodGet, "/deals/9999", nil)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)
	assert.Equal(t, apperrors.DealNotFound, response["error"])
}

func TestDealController_GetDeal_InvalidID(t *testing.T) {
	f := setupDealControllerTest(t)

	f.router.GET("/deals/:id", f.controller.GetDeal)

	req := httptest.NewRequest(http.MethodGet, "/deals/invalid", nil)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)
	assert.Equal(t, apperrors.ValidationInvalidID, response["error"])
}

func TestDealController_CreateDeal_Success(t *testing.T) {
	f := setupDealControllerTest(t)

	f.router.POST("/deals", f.controller.CreateDeal)

	now := time.Now()
	reqBody := CreateDealRequest{
		MerchantID:      f.merchant.ID,
		Title:           "Lunch special",
		Description:     "Half-price lunch",
		OriginalPrice:   20,
		DiscountedPrice: 10,
		Category:        "food",
		StartTime:       now,
		EndTime:         now.Add(4 * time.Hour),
		MaxRedemptions:  10,
	}

	jsonBody, _ := json.Marshal(reqBody)
	req := httptest.NewRequest(http.MethodPost, "/deals", bytes.NewBuffer(jsonBody))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)

	assert.Equal(t, "Deal created successfully", response["message"])

	dealData := response["deal"].(map[string]interface{})
	assert.Equal(t, "Lunch special", dealData["title"])
	assert.Equal(t, float64(50), dealData["discount_percentage"])
}

func TestDealController_CreateDeal_InvalidPricing(t *testing.T) {
	f := setupDealControllerTest(t)

	f.router.POST("/deals", f.controller.CreateDeal)

	now := time.Now()
	reqBody := CreateDealRequest{
		MerchantID:      f.merchant.ID,
		Title:           "Bad pricing",
		OriginalPrice:   10,
		DiscountedPrice: 15,
		StartTime:       now,
		EndTime:         now.Add(4 * time.Hour),
		MaxRedemptions:  10,
	}

	jsonBody, _ := json.Marshal(reqBody)
	req := httptest.NewRequest(http.MethodPost, "/deals", bytes.NewBuffer(jsonBody))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)
	assert.Equal(t, apperrors.DealInvalidPricing, response["error"])
}

func TestDealController_ClaimDeal(t *testing.T) {
	f := setupDealControllerTest(t)

	deal := f.createLiveDeal(t, "Claimable deal")

	f.router.POST("/deals/:id/claim", f.controller.ClaimDeal)

	url := fmt.Sprintf("/deals/%d/claim", deal.ID)

	req := httptest.NewRequest(http.MethodPost, url, nil)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)
	assert.Equal(t, "Deal claimed successfully", response["message"])

	// A second claim by the same user conflicts
	req = httptest.NewRequest(http.MethodPost, url, nil)
	w = httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)

	err = json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)
	assert.Equal(t, apperrors.ClaimAlreadyClaimed, response["error"])
}

func TestDealController_ClaimDeal_NotFound(t *testing.T) {
	f := setupDealControllerTest(t)

	f.router.POST("/deals/:id/claim", f.controller.ClaimDeal)

	req := httptest.NewRequest(http.MethodPost, "/deals/9999/claim", nil)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)
	assert.Equal(t, apperrors.DealNotFound, response["error"])
}

func TestDealController_UpdateDeal(t *testing.T) {
	f := setupDealControllerTest(t)

	deal := f.createLiveDeal(t, "Original title")

	f.router.PUT("/deals/:id", f.controller.UpdateDeal)

	now := time.Now()
	reqBody := UpdateDealRequest{
		Title:           "Updated title",
		OriginalPrice:   30,
		DiscountedPrice: 15,
		Category:        "food",
		StartTime:       now.Add(-time.Hour),
		EndTime:         now.Add(2 * time.Hour),
		MaxRedemptions:  5,
	}

	jsonBody, _ := json.Marshal(reqBody)
	req := httptest.NewRequest(http.MethodPut, fmt.Sprintf("/deals/%d", deal.ID), bytes.NewBuffer(jsonBody))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	updated, err := f.dealRepo.FindByID(deal.ID)
	require.NoError(t, err)
	assert.Equal(t, "Updated title", updated.Title)

	// The update leaves an audit trail; audit writes are asynchronous
	assert.Eventually(t, func() bool {
		var count int64
		f.testDB.Model(&model.AuditLog{}).
			Where("actor = ? AND action = ?", f.owner.Email, "deal.update").
			Count(&count)
		return count == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestDealController_DeleteDeal(t *testing.T) {
	f := setupDealControllerTest(t)

	deal := f.createLiveDeal(t, "Doomed deal")

	f.router.DELETE("/deals/:id", f.controller.DeleteDeal)

	req := httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/deals/%d", deal.ID), nil)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	_, err := f.dealRepo.FindByID(deal.ID)
	assert.Error(t, err)
}
