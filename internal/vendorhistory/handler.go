package vendorhistory

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/richxcame/lead-forensics/pkg/common"
	"github.com/richxcame/lead-forensics/pkg/middleware"
)

// Handler handles vendor history HTTP requests
type Handler struct {
	service HistoryService
}

// NewHandler creates a new vendor history handler
func NewHandler(service HistoryService) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the read routes on rg and the status update behind admin
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, admin ...gin.HandlerFunc) {
	rg.GET("/vendors", h.ListVendors)
	rg.GET("/vendors/:name/history", h.GetVendorHistory)
	rg.GET("/batches/high-fraud", h.GetHighFraudBatches)
	rg.GET("/trends", h.GetFraudTrends)
	rg.GET("/refunds/summary", h.GetRefundSummary)
	rg.GET("/summary", h.GetOverview)

	rg.PUT("/vendors/:id/status", append(admin, h.UpdateVendorStatus)...)
}

// ListVendors returns every vendor with totals
// GET /api/v1/vendors
func (h *Handler) ListVendors(c *gin.Context) {
	vendors, err := h.service.ListVendors(c.Request.Context())
	if err != nil {
		common.HandleError(c, err, "failed to list vendors")
		return
	}
	common.SuccessResponse(c, vendors)
}

// GetVendorHistory returns a vendor's batch history and recommendation
// GET /api/v1/vendors/:name/history
func (h *Handler) GetVendorHistory(c *gin.Context) {
	history, err := h.service.GetVendorHistory(c.Request.Context(), c.Param("name"))
	if err != nil {
		common.HandleError(c, err, "failed to load vendor history")
		return
	}
	common.SuccessResponse(c, history)
}

// GetHighFraudBatches lists batches over a fraud threshold
// GET /api/v1/batches/high-fraud?threshold=25&limit=50
func (h *Handler) GetHighFraudBatches(c *gin.Context) {
	threshold := DefaultHighFraudThreshold
	if raw := c.Query("threshold"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || v < 0 || v > 100 {
			common.ErrorResponse(c, http.StatusBadRequest, "threshold must be between 0 and 100")
			return
		}
		threshold = v
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(DefaultHighFraudLimit)))

	batches, err := h.service.HighFraudBatches(c.Request.Context(), threshold, limit)
	if err != nil {
		common.HandleError(c, err, "failed to load high fraud batches")
		return
	}
	common.SuccessResponse(c, batches)
}

// GetFraudTrends returns fraud rates over the last days
// GET /api/v1/trends?days=30
func (h *Handler) GetFraudTrends(c *gin.Context) {
	days, err := strconv.Atoi(c.DefaultQuery("days", strconv.Itoa(DefaultTrendDays)))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "days must be a number")
		return
	}

	report, err := h.service.FraudTrends(c.Request.Context(), days)
	if err != nil {
		common.HandleError(c, err, "failed to load fraud trends")
		return
	}
	common.SuccessResponse(c, report)
}

// GetRefundSummary counts refunds per status
// GET /api/v1/refunds/summary
func (h *Handler) GetRefundSummary(c *gin.Context) {
	summary, err := h.service.RefundSummary(c.Request.Context())
	if err != nil {
		common.HandleError(c, err, "failed to load refund summary")
		return
	}
	common.SuccessResponse(c, summary)
}

// GetOverview returns the system-wide fraud summary
// GET /api/v1/summary
func (h *Handler) GetOverview(c *gin.Context) {
	overview, err := h.service.Overview(c.Request.Context())
	if err != nil {
		common.HandleError(c, err, "failed to load summary")
		return
	}
	common.SuccessResponse(c, overview)
}

// UpdateVendorStatus changes a vendor's status (admin only)
// PUT /api/v1/vendors/:id/status
func (h *Handler) UpdateVendorStatus(c *gin.Context) {
	vendorID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid vendor ID")
		return
	}

	var req UpdateStatusRequest
	if !middleware.ValidateAndBind(c, &req) {
		return
	}

	if err := h.service.UpdateVendorStatus(c.Request.Context(), vendorID, &req); err != nil {
		common.HandleError(c, err, "failed to update vendor status")
		return
	}
	common.SuccessResponse(c, gin.H{"vendor_id": vendorID, "vendor_status": req.Status})
}
