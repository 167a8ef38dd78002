package leads

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/richxcame/lead-forensics/internal/ingest"
	"github.com/richxcame/lead-forensics/pkg/common"
	"github.com/richxcame/lead-forensics/pkg/middleware"
	"github.com/richxcame/lead-forensics/pkg/pagination"
)

// MaxUploadBytes bounds CSV uploads
const MaxUploadBytes = 32 << 20

// Handler handles batch HTTP requests
type Handler struct {
	service BatchService
}

// NewHandler creates a new batch handler
func NewHandler(service BatchService) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the batch routes on rg
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	batches := rg.Group("/batches")
	{
		batches.POST("", h.SubmitBatch)
		batches.POST("/upload", middleware.MaxBodySize(MaxUploadBytes), h.UploadBatch)
		batches.GET("", h.ListBatches)
		batches.GET("/:id", h.GetBatch)
		batches.GET("/:id/leads", h.GetBatchLeads)
		batches.GET("/:id/indicators", h.GetBatchIndicators)
	}

	rg.GET("/leads/search", h.SearchLeads)
	rg.GET("/indicators/top", h.TopIndicators)
}

type batchResponse struct {
	*BatchResult
	Leads []ScoredLead `json:"leads"`
}

func (h *Handler) respondProcessed(c *gin.Context, result *BatchResult) {
	body := batchResponse{BatchResult: result, Leads: result.ScoredLeads()}
	if result.Persisted {
		common.CreatedResponse(c, body)
		return
	}
	common.SuccessResponse(c, body)
}

// SubmitBatch scores a JSON batch
// POST /api/v1/batches
func (h *Handler) SubmitBatch(c *gin.Context) {
	var req SubmitBatchRequest
	if !middleware.ValidateAndBind(c, &req) {
		return
	}

	result, err := h.service.ProcessBatch(c.Request.Context(), &ProcessRequest{
		VendorName:      req.VendorName,
		BatchIdentifier: req.BatchIdentifier,
		CostPerLead:     req.CostPerLead,
		Leads:           req.Leads,
		Persist:         true,
		Archive:         true,
	})
	if err != nil {
		common.HandleError(c, err, "failed to process batch")
		return
	}

	h.respondProcessed(c, result)
}

// UploadBatch scores an uploaded CSV file
// POST /api/v1/batches/upload
func (h *Handler) UploadBatch(c *gin.Context) {
	vendor := c.PostForm("vendor_name")
	if vendor == "" {
		common.ErrorResponse(c, http.StatusBadRequest, "vendor_name is required")
		return
	}

	var cost float64
	if raw := c.PostForm("cost_per_lead"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || v < 0 {
			common.ErrorResponse(c, http.StatusBadRequest, "invalid cost_per_lead")
			return
		}
		cost = v
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "file is required")
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "unable to read file")
		return
	}
	defer file.Close()

	parsed, err := ingest.ReadLeads(file)
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid lead file: "+err.Error())
		return
	}

	result, err := h.service.ProcessBatch(c.Request.Context(), &ProcessRequest{
		VendorName:      vendor,
		BatchIdentifier: c.PostForm("batch_identifier"),
		CostPerLead:     cost,
		InputFilename:   fileHeader.Filename,
		Leads:           parsed,
		Persist:         true,
		Archive:         true,
	})
	if err != nil {
		common.HandleError(c, err, "failed to process batch")
		return
	}

	h.respondProcessed(c, result)
}

// ListBatches lists persisted batches
// GET /api/v1/batches?vendor=
func (h *Handler) ListBatches(c *gin.Context) {
	params := pagination.ParseParams(c)

	batches, total, err := h.service.ListBatches(c.Request.Context(), c.Query("vendor"), params.Limit, params.Offset)
	if err != nil {
		common.HandleError(c, err, "failed to list batches")
		return
	}

	common.SuccessResponseWithMeta(c, batches, pagination.BuildMeta(params.Limit, params.Offset, total))
}

// GetBatch returns a persisted batch
// GET /api/v1/batches/:id
func (h *Handler) GetBatch(c *gin.Context) {
	batchID, ok := parseBatchID(c)
	if !ok {
		return
	}

	batch, err := h.service.GetBatch(c.Request.Context(), batchID)
	if err != nil {
		common.HandleError(c, err, "failed to load batch")
		return
	}

	common.SuccessResponse(c, batch)
}

// GetBatchLeads returns a page of scored leads
// GET /api/v1/batches/:id/leads?fraudulent=true
func (h *Handler) GetBatchLeads(c *gin.Context) {
	batchID, ok := parseBatchID(c)
	if !ok {
		return
	}

	fraudulentOnly := false
	if v := c.Query("fraudulent"); v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			common.ErrorResponse(c, http.StatusBadRequest, "fraudulent must be true or false")
			return
		}
		fraudulentOnly = parsed
	}
	params := pagination.ParseParams(c)

	records, total, err := h.service.GetBatchLeads(c.Request.Context(), batchID, fraudulentOnly, params.Limit, params.Offset)
	if err != nil {
		common.HandleError(c, err, "failed to load leads")
		return
	}

	common.SuccessResponseWithMeta(c, records, pagination.BuildMeta(params.Limit, params.Offset, total))
}

// GetBatchIndicators returns a batch's fraud indicators
// GET /api/v1/batches/:id/indicators
func (h *Handler) GetBatchIndicators(c *gin.Context) {
	batchID, ok := parseBatchID(c)
	if !ok {
		return
	}

	indicators, err := h.service.GetBatchIndicators(c.Request.Context(), batchID)
	if err != nil {
		common.HandleError(c, err, "failed to load fraud indicators")
		return
	}

	common.SuccessResponse(c, indicators)
}

// SearchLeads looks up stored leads by email and/or phone across batches
// GET /api/v1/leads/search?email=&phone=&limit=
func (h *Handler) SearchLeads(c *gin.Context) {
	limit, ok := queryInt(c, "limit")
	if !ok {
		return
	}

	matches, err := h.service.SearchLeads(c.Request.Context(), c.Query("email"), c.Query("phone"), limit)
	if err != nil {
		common.HandleError(c, err, "failed to search leads")
		return
	}

	common.SuccessResponse(c, matches)
}

// TopIndicators ranks fraud indicators over all batches
// GET /api/v1/indicators/top?limit=
func (h *Handler) TopIndicators(c *gin.Context) {
	limit, ok := queryInt(c, "limit")
	if !ok {
		return
	}

	top, err := h.service.TopIndicators(c.Request.Context(), limit)
	if err != nil {
		common.HandleError(c, err, "failed to load top indicators")
		return
	}

	common.SuccessResponse(c, top)
}

// queryInt reads an optional non-negative integer query parameter
func queryInt(c *gin.Context, name string) (int, bool) {
	v := c.Query(name)
	if v == "" {
		return 0, true
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		common.ErrorResponse(c, http.StatusBadRequest, name+" must be a non-negative integer")
		return 0, false
	}
	return n, true
}

func parseBatchID(c *gin.Context) (uuid.UUID, bool) {
	batchID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid batch ID")
		return uuid.Nil, false
	}
	return batchID, true
}
