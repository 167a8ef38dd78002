package domains

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/richxcame/lead-forensics/pkg/common"
	"github.com/richxcame/lead-forensics/pkg/middleware"
	"github.com/richxcame/lead-forensics/pkg/validation"
)

// DomainsRequest is the body of the add and remove endpoints
type DomainsRequest struct {
	Domains []string `json:"domains" validate:"required,min=1,max=500,dive,domain"`
}

// Handler exposes the registry to administrators
type Handler struct {
	registry *Registry
}

// NewHandler creates a new domains handler
func NewHandler(registry *Registry) *Handler {
	return &Handler{registry: registry}
}

// RegisterRoutes mounts the domain routes on rg behind the given middleware
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, guard ...gin.HandlerFunc) {
	domains := rg.Group("/disposable-domains", guard...)
	{
		domains.GET("", h.List)
		domains.POST("", h.Add)
		domains.DELETE("", h.Remove)
		domains.GET("/:domain", h.Check)
	}
}

// List returns the stored domains
// GET /api/v1/admin/disposable-domains
func (h *Handler) List(c *gin.Context) {
	domains, err := h.registry.List(c.Request.Context())
	if err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "failed to list domains")
		return
	}
	common.SuccessResponse(c, gin.H{"domains": domains, "count": len(domains)})
}

// Add stores domains. Running scorers pick them up on restart.
// POST /api/v1/admin/disposable-domains
func (h *Handler) Add(c *gin.Context) {
	req, ok := bindDomains(c)
	if !ok {
		return
	}

	added, err := h.registry.Add(c.Request.Context(), req.Domains...)
	if err != nil {
		respondRegistryError(c, err, "failed to add domains")
		return
	}
	common.CreatedResponse(c, gin.H{"added": added})
}

// Remove deletes domains
// DELETE /api/v1/admin/disposable-domains
func (h *Handler) Remove(c *gin.Context) {
	req, ok := bindDomains(c)
	if !ok {
		return
	}

	removed, err := h.registry.Remove(c.Request.Context(), req.Domains...)
	if err != nil {
		respondRegistryError(c, err, "failed to remove domains")
		return
	}
	common.SuccessResponse(c, gin.H{"removed": removed})
}

// Check reports whether one domain is stored
// GET /api/v1/admin/disposable-domains/:domain
func (h *Handler) Check(c *gin.Context) {
	domain := Normalize(c.Param("domain"))
	if !validation.IsDomain(domain) {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid domain")
		return
	}

	stored, err := h.registry.Contains(c.Request.Context(), domain)
	if err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "failed to check domain")
		return
	}
	common.SuccessResponse(c, gin.H{"domain": domain, "stored": stored})
}

func bindDomains(c *gin.Context) (*DomainsRequest, bool) {
	var req DomainsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithValidationError(c, err)
		return nil, false
	}
	for i, d := range req.Domains {
		req.Domains[i] = Normalize(d)
	}
	if err := validation.ValidateStruct(&req); err != nil {
		middleware.RespondWithValidationError(c, err)
		return nil, false
	}
	return &req, true
}

func respondRegistryError(c *gin.Context, err error, fallback string) {
	var invalid *InvalidDomainError
	if errors.As(err, &invalid) {
		common.ErrorResponse(c, http.StatusBadRequest, invalid.Error())
		return
	}
	common.ErrorResponse(c, http.StatusInternalServerError, fallback)
}
