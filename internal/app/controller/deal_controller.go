package controller

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nearbuy/nearbuy-backend/internal/app/model"
	"github.com/nearbuy/nearbuy-backend/internal/app/service"
	apperrors "github.com/nearbuy/nearbuy-backend/internal/errors"
	"github.com/nearbuy/nearbuy-backend/internal/middleware"
	"github.com/nearbuy/nearbuy-backend/pkg/geo"
)

type DealController struct {
	dealService       service.DealService
	discoveryService  service.DiscoveryService
	claimService      service.ClaimService
	recurrenceService service.RecurrenceService
	auditService      service.AuditService
}

func NewDealController(
	dealService service.DealService,
	discoveryService service.DiscoveryService,
	claimService service.ClaimService,
	recurrenceService service.RecurrenceService,
	auditService service.AuditService,
) *DealController {
	return &DealController{
		dealService:       dealService,
		discoveryService:  discoveryService,
		claimService:      claimService,
		recurrenceService: recurrenceService,
		auditService:      auditService,
	}
}

type CreateDealRequest struct {
	MerchantID        uint      `json:"merchant_id" binding:"required"`
	Title             string    `json:"title" binding:"required"`
	Description       string    `json:"description"`
	OriginalPrice     float64   `json:"original_price" binding:"required,gt=0"`
	DiscountedPrice   float64   `json:"discounted_price" binding:"required,gte=0"`
	Category          string    `json:"category"`
	StartTime         time.Time `json:"start_time" binding:"required"`
	EndTime           time.Time `json:"end_time" binding:"required"`
	MaxRedemptions    int       `json:"max_redemptions" binding:"required,gte=1"`
	IsRecurring       bool      `json:"is_recurring"`
	RecurringInterval string    `json:"recurring_interval"` // daily | weekly | monthly
}

type UpdateDealRequest struct {
	Title             string    `json:"title" binding:"required"`
	Description       string    `json:"description"`
	OriginalPrice     float64   `json:"original_price" binding:"required,gt=0"`
	DiscountedPrice   float64   `json:"discounted_price" binding:"required,gte=0"`
	Category          string    `json:"category"`
	StartTime         time.Time `json:"start_time" binding:"required"`
	EndTime           time.Time `json:"end_time" binding:"required"`
	MaxRedemptions    int       `json:"max_redemptions" binding:"required,gte=1"`
	IsActive          *bool     `json:"is_active"`
	IsRecurring       bool      `json:"is_recurring"`
	RecurringInterval string    `json:"recurring_interval"`
}

type RepostDealRequest struct {
	StartTime time.Time `json:"start_time" binding:"required"`
	EndTime   time.Time `json:"end_time" binding:"required"`
}

// respondDealError maps deal service sentinels to HTTP responses.
func respondDealError(c *gin.Context, err error) bool {
	switch {
	case errors.Is(err, service.ErrDealNotFound):
		apperrors.NotFound(c, apperrors.DealNotFound, "Deal not found")
	case errors.Is(err, service.ErrMerchantNotFound):
		apperrors.NotFound(c, apperrors.MerchantNotFound, "Merchant not found")
	case errors.Is(err, service.ErrDealAccessDenied):
		apperrors.Forbidden(c, "You do not own this deal")
	case errors.Is(err, service.ErrInvalidPricing):
		apperrors.BadRequest(c, apperrors.DealInvalidPricing, "Discounted price must be below the original price")
	case errors.Is(err, service.ErrInvalidTimeWindow):
		apperrors.BadRequest(c, apperrors.DealInvalidWindow, "End time must be after start time")
	case errors.Is(err, service.ErrInvalidRedemptions):
		apperrors.BadRequest(c, apperrors.ValidationInvalidRange, "Max redemptions must be at least 1")
	case errors.Is(err, service.ErrInvalidInterval):
		apperrors.BadRequest(c, apperrors.DealInvalidInterval, "Recurring deals require a daily, weekly or monthly interval")
	default:
		return false
	}
	return true
}

// ListDeals returns every live deal with no geo filtering
// GET /api/v1/deals
func (ctrl *DealController) ListDeals(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	deals, err := ctrl.dealService.ListLiveDeals()
	if err != nil {
		log.Error("Failed to list live deals", err, nil)
		apperrors.InternalError(c, "Failed to list deals")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"deals": deals,
		"count": len(deals),
	})
}

// DiscoverDeals returns live deals filtered by location, radius, text query
// and region gating
// GET /api/v1/deals/location?lat=&lng=&radius=&q=&explore=
func (ctrl *DealController) DiscoverDeals(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	opts := service.DiscoveryOptions{
		Query:       c.Query("q"),
		ExploreMode: c.Query("explore") == "true",
	}

	latStr, lngStr := c.Query("lat"), c.Query("lng")
	if latStr != "" || lngStr != "" {
		lat, latErr := strconv.ParseFloat(latStr, 64)
		lng, lngErr := strconv.ParseFloat(lngStr, 64)
		if latErr != nil || lngErr != nil {
			apperrors.BadRequest(c, apperrors.ValidationInvalidGeo, "lat and lng must both be valid numbers")
			return
		}
		point := geo.Point{Latitude: lat, Longitude: lng}
		if !geo.ValidPoint(point) {
			apperrors.BadRequest(c, apperrors.ValidationInvalidGeo, "Latitude or longitude is out of range")
			return
		}
		opts.Origin = &point
	}

	if radiusStr := c.Query("radius"); radiusStr != "" {
		radius, err := strconv.ParseFloat(radiusStr, 64)
		if err != nil || radius <= 0 {
			apperrors.BadRequest(c, apperrors.ValidationInvalidRange, "radius must be a positive number of kilometers")
			return
		}
		opts.RadiusKm = radius
	}

	deals, err := ctrl.discoveryService.FindVisibleDeals(opts)
	if err != nil {
		log.Error("Deal discovery failed", err, nil)
		apperrors.InternalError(c, "Failed to discover deals")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"deals": deals,
		"count": len(deals),
	})
}

// GetDeal returns a single deal
// GET /api/v1/deals/:id
func (ctrl *DealController) GetDeal(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	deal, err := ctrl.dealService.GetDealByID(id)
	if err != nil {
		if respondDealError(c, err) {
			return
		}
		log.Error("Failed to get deal", err, map[string]interface{}{
			"deal_id": id,
		})
		apperrors.InternalError(c, "Failed to get deal")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"deal": deal,
	})
}

// CreateDeal posts a new deal for one of the caller's merchants
// POST /api/v1/deals
func (ctrl *DealController) CreateDeal(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "Authentication required")
		return
	}

	var req CreateDealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid create deal request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid input")
		return
	}

	deal := &model.Deal{
		MerchantID:        req.MerchantID,
		Title:             req.Title,
		Description:       req.Description,
		OriginalPrice:     req.OriginalPrice,
		DiscountedPrice:   req.DiscountedPrice,
		Category:          req.Category,
		StartTime:         req.StartTime,
		EndTime:           req.EndTime,
		MaxRedemptions:    req.MaxRedemptions,
		IsRecurring:       req.IsRecurring,
		RecurringInterval: model.RecurringInterval(req.RecurringInterval),
	}

	if err := ctrl.dealService.CreateDeal(userID, deal); err != nil {
		if respondDealError(c, err) {
			return
		}
		log.Error("Failed to create deal", err, map[string]interface{}{
			"user_id": userID,
		})
		apperrors.InternalError(c, "Failed to create deal")
		return
	}

	email, _ := middleware.GetUserEmail(c)
	ctrl.auditService.Record(email, "deal.create", map[string]interface{}{
		"deal_id":     deal.ID,
		"merchant_id": deal.MerchantID,
	}, "success")

	c.JSON(http.StatusCreated, gin.H{
		"message": "Deal created successfully",
		"deal":    deal,
	})
}

// UpdateDeal edits a deal owned by the caller
// PUT /api/v1/deals/:id
func (ctrl *DealController) UpdateDeal(c *gin.Context) {
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

	var req UpdateDealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid update deal request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid input")
		return
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	deal := &model.Deal{
		ID:                id,
		Title:             req.Title,
		Description:       req.Description,
		OriginalPrice:     req.OriginalPrice,
		DiscountedPrice:   req.DiscountedPrice,
		Category:          req.Category,
		StartTime:         req.StartTime,
		EndTime:           req.EndTime,
		MaxRedemptions:    req.MaxRedemptions,
		IsActive:          isActive,
		IsRecurring:       req.IsRecurring,
		RecurringInterval: model.RecurringInterval(req.RecurringInterval),
	}

	if err := ctrl.dealService.UpdateDeal(userID, deal); err != nil {
		if respondDealError(c, err) {
			return
		}
		log.Error("Failed to update deal", err, map[string]interface{}{
			"deal_id": id,
		})
		apperrors.InternalError(c, "Failed to update deal")
		return
	}

	email, _ := middleware.GetUserEmail(c)
	ctrl.auditService.Record(email, "deal.update", map[string]interface{}{
		"deal_id": id,
	}, "success")

	c.JSON(http.StatusOK, gin.H{
		"message": "Deal updated successfully",
		"deal":    deal,
	})
}

// DeleteDeal removes a deal owned by the caller
// DELETE /api/v1/deals/:id
func (ctrl *DealController) DeleteDeal(c *gin.Context) {
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

	if err := ctrl.dealService.DeleteDeal(userID, id); err != nil {
		if respondDealError(c, err) {
			return
		}
		log.Error("Failed to delete deal", err, map[string]interface{}{
			"deal_id": id,
		})
		apperrors.InternalError(c, "Failed to delete deal")
		return
	}

	email, _ := middleware.GetUserEmail(c)
	ctrl.auditService.Record(email, "deal.delete", map[string]interface{}{
		"deal_id": id,
	}, "success")

	c.JSON(http.StatusOK, gin.H{
		"message": "Deal deleted successfully",
	})
}

// ClaimDeal redeems a deal for the current user
// POST /api/v1/deals/:id/claim
func (ctrl *DealController) ClaimDeal(c *gin.Context) {
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

	email, _ := middleware.GetUserEmail(c)

	claim, err := ctrl.claimService.Claim(userID, id)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrDealNotFound):
			apperrors.NotFound(c, apperrors.DealNotFound, "Deal not found")
		case errors.Is(err, service.ErrAlreadyClaimed):
			ctrl.auditService.Record(email, "deal.claim", map[string]interface{}{
				"deal_id": id,
			}, "already_claimed")
			apperrors.Conflict(c, apperrors.ClaimAlreadyClaimed, "You have already claimed this deal")
		case errors.Is(err, service.ErrDealExhausted):
			ctrl.auditService.Record(email, "deal.claim", map[string]interface{}{
				"deal_id": id,
			}, "exhausted")
			apperrors.Conflict(c, apperrors.ClaimExhausted, "This deal has no redemptions left")
		case errors.Is(err, service.ErrDealInactive):
			apperrors.BadRequest(c, apperrors.DealInactive, "This deal is not currently live")
		default:
			log.Error("Failed to claim deal", err, map[string]interface{}{
				"deal_id": id,
				"user_id": userID,
			})
			apperrors.InternalError(c, "Failed to claim deal")
		}
		return
	}

	ctrl.auditService.Record(email, "deal.claim", map[string]interface{}{
		"deal_id":  id,
		"claim_id": claim.ID,
	}, "success")

	c.JSON(http.StatusCreated, gin.H{
		"message": "Deal claimed successfully",
		"claim":   claim,
	})
}

// ListMyClaims returns the current user's redemption history
// GET /api/v1/claims
func (ctrl *DealController) ListMyClaims(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "Authentication required")
		return
	}

	claims, err := ctrl.claimService.GetUserClaims(userID)
	if err != nil {
		log.Error("Failed to list claims", err, map[string]interface{}{
			"user_id": userID,
		})
		apperrors.InternalError(c, "Failed to list claims")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"claims": claims,
		"count":  len(claims),
	})
}

// RepostDeal manually reposts a deal over a new window
// POST /api/v1/deals/:id/repost
func (ctrl *DealController) RepostDeal(c *gin.Context) {
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

	var req RepostDealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid repost deal request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid input")
		return
	}

	successor, err := ctrl.dealService.RepostDeal(userID, id, req.StartTime, req.EndTime)
	if err != nil {
		if respondDealError(c, err) {
			return
		}
		log.Error("Failed to repost deal", err, map[string]interface{}{
			"deal_id": id,
		})
		apperrors.InternalError(c, "Failed to repost deal")
		return
	}

	email, _ := middleware.GetUserEmail(c)
	ctrl.auditService.Record(email, "deal.repost", map[string]interface{}{
		"deal_id":      id,
		"successor_id": successor.ID,
	}, "success")

	c.JSON(http.StatusCreated, gin.H{
		"message": "Deal reposted successfully",
		"deal":    successor,
	})
}

// ProcessRecurring triggers the recurrence sweep on demand
// POST /api/v1/deals/process-recurring
func (ctrl *DealController) ProcessRecurring(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	processed, err := ctrl.recurrenceService.ProcessRecurringDeals()
	if err != nil {
		log.Error("Manual recurrence sweep failed", err, nil)
		apperrors.InternalError(c, "Failed to process recurring deals")
		return
	}

	email, _ := middleware.GetUserEmail(c)
	ctrl.auditService.Record(email, "deal.process_recurring", map[string]interface{}{
		"processed": processed,
	}, "success")

	c.JSON(http.StatusOK, gin.H{
		"message":   "Recurring deals processed",
		"processed": processed,
	})
}
