package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/nearbuy/nearbuy-backend/internal/app/model"
	"github.com/nearbuy/nearbuy-backend/internal/app/service"
	apperrors "github.com/nearbuy/nearbuy-backend/internal/errors"
	"github.com/nearbuy/nearbuy-backend/internal/middleware"
)

type MerchantController struct {
	merchantService service.MerchantService
	dealService     service.DealService
	reportService   service.ReportService
	auditService    service.AuditService
}

func NewMerchantController(
	merchantService service.MerchantService,
	dealService service.DealService,
	reportService service.ReportService,
	auditService service.AuditService,
) *MerchantController {
	return &MerchantController{
		merchantService: merchantService,
		dealService:     dealService,
		reportService:   reportService,
		auditService:    auditService,
	}
}

type CreateMerchantRequest struct {
	Name      string  `json:"name" binding:"required"`
	Category  string  `json:"category"`
	Latitude  float64 `json:"latitude" binding:"required"`
	Longitude float64 `json:"longitude" binding:"required"`
	Address   string  `json:"address"`
}

type UpdateMerchantRequest struct {
	Name      string  `json:"name" binding:"required"`
	Category  string  `json:"category"`
	Latitude  float64 `json:"latitude" binding:"required"`
	Longitude float64 `json:"longitude" binding:"required"`
	Address   string  `json:"address"`
}

// CreateMerchant registers a merchant profile for the current user
// POST /api/v1/merchants
func (ctrl *MerchantController) CreateMerchant(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "Authentication required")
		return
	}

	var req CreateMerchantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid create merchant request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid input")
		return
	}

	merchant := &model.Merchant{
		UserID:    userID,
		Name:      req.Name,
		Category:  req.Category,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
		Address:   req.Address,
	}

	if err := ctrl.merchantService.CreateMerchant(merchant); err != nil {
		if errors.Is(err, service.ErrInvalidCoordinates) {
			apperrors.BadRequest(c, apperrors.ValidationInvalidGeo, "Latitude or longitude is out of range")
			return
		}
		log.Error("Failed to create merchant", err, map[string]interface{}{
			"user_id": userID,
		})
		apperrors.InternalError(c, "Failed to create merchant")
		return
	}

	log.Info("Merchant created", map[string]interface{}{
		"merchant_id": merchant.ID,
		"user_id":     userID,
	})

	email, _ := middleware.GetUserEmail(c)
	ctrl.auditService.Record(email, "merchant.create", map[string]interface{}{
		"merchant_id": merchant.ID,
	}, "success")

	c.JSON(http.StatusCreated, gin.H{
		"message":  "Merchant created successfully",
		"merchant": merchant,
	})
}

// GetMerchant returns a single merchant
// GET /api/v1/merchants/:id
func (ctrl *MerchantController) GetMerchant(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	merchant, err := ctrl.merchantService.GetMerchantByID(id)
	if err != nil {
		if errors.Is(err, service.ErrMerchantNotFound) {
			apperrors.NotFound(c, apperrors.MerchantNotFound, "Merchant not found")
			return
		}
		log.Error("Failed to get merchant", err, map[string]interface{}{
			"merchant_id": id,
		})
		apperrors.InternalError(c, "Failed to get merchant")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"merchant": merchant,
	})
}

// ListMerchants returns merchants, active only by default
// GET /api/v1/merchants?include_inactive=true
func (ctrl *MerchantController) ListMerchants(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	includeInactive := c.Query("include_inactive") == "true"

	merchants, err := ctrl.merchantService.ListMerchants(!includeInactive)
	if err != nil {
		log.Error("Failed to list merchants", err, nil)
		apperrors.InternalError(c, "Failed to list merchants")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"merchants": merchants,
		"count":     len(merchants),
	})
}

// ListMyMerchants returns the current user's merchant profiles
// GET /api/v1/merchants/me
func (ctrl *MerchantController) ListMyMerchants(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "Authentication required")
		return
	}

	merchants, err := ctrl.merchantService.ListUserMerchants(userID)
	if err != nil {
		log.Error("Failed to list user merchants", err, map[string]interface{}{
			"user_id": userID,
		})
		apperrors.InternalError(c, "Failed to list merchants")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"merchants": merchants,
		"count":     len(merchants),
	})
}

// UpdateMerchant updates a merchant owned by the current user
// PUT /api/v1/merchants/:id
func (ctrl *MerchantController) UpdateMerchant(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "Authentication required")
		return
	}

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req UpdateMerchantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid update merchant request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid input")
		return
	}

	merchant := &model.Merchant{
		ID:        id,
		Name:      req.Name,
		Category:  req.Category,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
		Address:   req.Address,
		IsActive:  true,
	}

	if err := ctrl.merchantService.UpdateMerchant(userID, merchant); err != nil {
		switch {
		case errors.Is(err, service.ErrMerchantNotFound):
			apperrors.NotFound(c, apperrors.MerchantNotFound, "Merchant not found")
		case errors.Is(err, service.ErrMerchantAccessDenied):
			apperrors.Forbidden(c, "You do not own this merchant")
		case errors.Is(err, service.ErrInvalidCoordinates):
			apperrors.BadRequest(c, apperrors.ValidationInvalidGeo, "Latitude or longitude is out of range")
		default:
			log.Error("Failed to update merchant", err, map[string]interface{}{
				"merchant_id": id,
			})
			apperrors.InternalError(c, "Failed to update merchant")
		}
		return
	}

	email, _ := middleware.GetUserEmail(c)
	ctrl.auditService.Record(email, "merchant.update", map[string]interface{}{
		"merchant_id": id,
	}, "success")

	c.JSON(http.StatusOK, gin.H{
		"message":  "Merchant updated successfully",
		"merchant": merchant,
	})
}

// DeactivateMerchant deactivates a merchant owned by the current user
// DELETE /api/v1/merchants/:id
func (ctrl *MerchantController) DeactivateMerchant(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "Authentication required")
		return
	}

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := ctrl.merchantService.DeactivateMerchant(userID, id); err != nil {
		switch {
		case errors.Is(err, service.ErrMerchantNotFound):
			apperrors.NotFound(c, apperrors.MerchantNotFound, "Merchant not found")
		case errors.Is(err, service.ErrMerchantAccessDenied):
			apperrors.Forbidden(c, "You do not own this merchant")
		default:
			log.Error("Failed to deactivate merchant", err, map[string]interface{}{
				"merchant_id": id,
			})
			apperrors.InternalError(c, "Failed to deactivate merchant")
		}
		return
	}

	email, _ := middleware.GetUserEmail(c)
	ctrl.auditService.Record(email, "merchant.deactivate", map[string]interface{}{
		"merchant_id": id,
	}, "success")

	c.JSON(http.StatusOK, gin.H{
		"message": "Merchant deactivated successfully",
	})
}

// ListMerchantDeals returns all deals posted by a merchant
// GET /api/v1/merchants/:id/deals
func (ctrl *MerchantController) ListMerchantDeals(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if _, err := ctrl.merchantService.GetMerchantByID(id); err != nil {
		if errors.Is(err, service.ErrMerchantNotFound) {
			apperrors.NotFound(c, apperrors.MerchantNotFound, "Merchant not found")
			return
		}
		apperrors.InternalError(c, "Failed to get merchant")
		return
	}

	deals, err := ctrl.dealService.ListMerchantDeals(id)
	if err != nil {
		log.Error("Failed to list merchant deals", err, map[string]interface{}{
			"merchant_id": id,
		})
		apperrors.InternalError(c, "Failed to list merchant deals")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"deals": deals,
		"count": len(deals),
	})
}

// ExportRedemptions streams the merchant's redemption report as a spreadsheet
// GET /api/v1/merchants/:id/redemptions.xlsx
func (ctrl *MerchantController) ExportRedemptions(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "Authentication required")
		return
	}

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	data, err := ctrl.reportService.RedemptionReportXLSX(userID, id)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMerchantNotFound):
			apperrors.NotFound(c, apperrors.MerchantNotFound, "Merchant not found")
		case errors.Is(err, service.ErrMerchantAccessDenied):
			apperrors.Forbidden(c, "You do not own this merchant")
		default:
			log.Error("Failed to export redemption report", err, map[string]interface{}{
				"merchant_id": id,
			})
			apperrors.InternalError(c, "Failed to export redemption report")
		}
		return
	}

	filename := "redemptions-" + strconv.FormatUint(uint64(id), 10) + ".xlsx"
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

// parseIDParam parses a positive integer path parameter, responding with a
// validation error on failure.
func parseIDParam(c *gin.Context, name string) (uint, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Invalid ID")
		return 0, false
	}
	return uint(id), true
}
