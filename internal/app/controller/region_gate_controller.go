package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nearbuy/nearbuy-backend/internal/app/service"
	apperrors "github.com/nearbuy/nearbuy-backend/internal/errors"
	"github.com/nearbuy/nearbuy-backend/internal/middleware"
	"github.com/nearbuy/nearbuy-backend/pkg/geo"
)

type RegionGateController struct {
	regionGateService service.RegionGateService
	auditService      service.AuditService
}

func NewRegionGateController(regionGateService service.RegionGateService, auditService service.AuditService) *RegionGateController {
	return &RegionGateController{
		regionGateService: regionGateService,
		auditService:      auditService,
	}
}

type SetRegionGateRequest struct {
	Region  string `json:"region" binding:"required"`
	Enabled *bool  `json:"enabled" binding:"required"`
}

// ListGates returns every region gate
// GET /api/v1/enabled-states
func (ctrl *RegionGateController) ListGates(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	gates, err := ctrl.regionGateService.ListGates()
	if err != nil {
		log.Error("Failed to list region gates", err, nil)
		apperrors.InternalError(c, "Failed to list region gates")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"regions": gates,
		"count":   len(gates),
	})
}

// SetGate enables or disables discovery for one region
// POST /api/v1/enabled-states
func (ctrl *RegionGateController) SetGate(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req SetRegionGateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid set region gate request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid input")
		return
	}

	if !knownRegion(req.Region) {
		apperrors.BadRequest(c, apperrors.RegionUnknown, "Unknown region")
		return
	}

	gate, err := ctrl.regionGateService.SetGate(req.Region, *req.Enabled)
	if err != nil {
		log.Error("Failed to set region gate", err, map[string]interface{}{
			"region": req.Region,
		})
		apperrors.InternalError(c, "Failed to set region gate")
		return
	}

	email, _ := middleware.GetUserEmail(c)
	ctrl.auditService.Record(email, "region_gate.set", map[string]interface{}{
		"region":  gate.Region,
		"enabled": gate.Enabled,
	}, "success")

	c.JSON(http.StatusOK, gin.H{
		"message": "Region gate updated",
		"region":  gate,
	})
}

func knownRegion(region string) bool {
	for _, r := range geo.KnownRegions() {
		if string(r) == region {
			return true
		}
	}
	return false
}
