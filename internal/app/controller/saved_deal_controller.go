package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nearbuy/nearbuy-backend/internal/app/service"
	apperrors "github.com/nearbuy/nearbuy-backend/internal/errors"
	"github.com/nearbuy/nearbuy-backend/internal/middleware"
)

type SavedDealController struct {
	savedDealService service.SavedDealService
	auditService     service.AuditService
}

func NewSavedDealController(savedDealService service.SavedDealService, auditService service.AuditService) *SavedDealController {
	return &SavedDealController{
		savedDealService: savedDealService,
		auditService:     auditService,
	}
}

// ListSavedDeals returns the current user's bookmarked deals
// GET /api/v1/saved-deals
func (ctrl *SavedDealController) ListSavedDeals(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "Authentication required")
		return
	}

	items, err := ctrl.savedDealService.GetSavedDeals(userID)
	if err != nil {
		log.Error("Failed to list saved deals", err, map[string]interface{}{
			"user_id": userID,
		})
		apperrors.InternalError(c, "Failed to list saved deals")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"saved_deals": items,
		"count":       len(items),
	})
}

// SaveDeal bookmarks a deal for the current user
// POST /api/v1/saved-deals/:dealId
func (ctrl *SavedDealController) SaveDeal(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "Authentication required")
		return
	}

	dealID, ok := parseIDParam(c, "dealId")
	if !ok {
		return
	}

	item, err := ctrl.savedDealService.SaveDeal(userID, dealID)
	if err != nil {
		if errors.Is(err, service.ErrDealNotFound) {
			apperrors.NotFound(c, apperrors.DealNotFound, "Deal not found")
			return
		}
		log.Error("Failed to save deal", err, map[string]interface{}{
			"user_id": userID,
			"deal_id": dealID,
		})
		apperrors.InternalError(c, "Failed to save deal")
		return
	}

	email, _ := middleware.GetUserEmail(c)
	ctrl.auditService.Record(email, "deal.save", map[string]interface{}{
		"deal_id": dealID,
	}, "success")

	c.JSON(http.StatusCreated, gin.H{
		"message":    "Deal saved successfully",
		"saved_deal": item,
	})
}

// UnsaveDeal removes a bookmark; removing one that does not exist succeeds
// DELETE /api/v1/saved-deals/:dealId
func (ctrl *SavedDealController) UnsaveDeal(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "Authentication required")
		return
	}

	dealID, ok := parseIDParam(c, "dealId")
	if !ok {
		return
	}

	if err := ctrl.savedDealService.UnsaveDeal(userID, dealID); err != nil {
		log.Error("Failed to unsave deal", err, map[string]interface{}{
			"user_id": userID,
			"deal_id": dealID,
		})
		apperrors.InternalError(c, "Failed to unsave deal")
		return
	}

	email, _ := middleware.GetUserEmail(c)
	ctrl.auditService.Record(email, "deal.unsave", map[string]interface{}{
		"deal_id": dealID,
	}, "success")

	c.JSON(http.StatusOK, gin.H{
		"message": "Deal unsaved successfully",
	})
}
