package delivery

import (
	"errors"
	"net/http"
	"strconv"

	"propdesk-backend/internal/portalsync"
	"propdesk-backend/internal/property/domain"
	"propdesk-backend/internal/property/repository"
	"propdesk-backend/internal/property/usecase"
	"propdesk-backend/pkg/propertyfinder"

	"github.com/gin-gonic/gin"
)

type PropertyHandler struct {
	usecase      usecase.PropertyUsecase
	orchestrator *portalsync.Orchestrator
}

func NewPropertyHandler(u usecase.PropertyUsecase, orchestrator *portalsync.Orchestrator) *PropertyHandler {
	return &PropertyHandler{usecase: u, orchestrator: orchestrator}
}

// List searches properties with filters and pagination
func (h *PropertyHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	minPrice, _ := strconv.ParseFloat(c.Query("min_price"), 64)
	maxPrice, _ := strconv.ParseFloat(c.Query("max_price"), 64)
	minBedrooms, _ := strconv.Atoi(c.Query("min_bedrooms"))

	filter := repository.SearchFilter{
		Purpose:      c.Query("purpose"),
		PropertyType: c.Query("property_type"),
		Emirate:      c.Query("emirate"),
		AgentID:      c.Query("agent_id"),
		MinPrice:     minPrice,
		MaxPrice:     maxPrice,
		MinBedrooms:  minBedrooms,
		Query:        c.Query("q"),
		Status:       c.Query("status"),
	}

	result, err := h.usecase.SearchProperties(c.Request.Context(), filter, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to search properties"})
		return
	}
	c.JSON(http.StatusOK, result)
}

// Suggest returns fuzzy search-as-you-type matches
func (h *PropertyHandler) Suggest(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "8"))
	suggestions, err := h.usecase.Suggest(c.Query("q"), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load suggestions"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"suggestions": suggestions})
}

// Get returns a single property by ID
func (h *PropertyHandler) Get(c *gin.Context) {
	property, err := h.usecase.GetProperty(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load property"})
		return
	}
	if property == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Property not found"})
		return
	}
	c.JSON(http.StatusOK, property)
}

// Create adds a new property and queues an initial portal sync
func (h *PropertyHandler) Create(c *gin.Context) {
	var property domain.Property
	if err := c.ShouldBindJSON(&property); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if property.Title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Title is required"})
		return
	}

	if err := h.usecase.CreateProperty(&property); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, property)
}

// Update replaces property details and queues an update sync if the
// property is already on the portal
func (h *PropertyHandler) Update(c *gin.Context) {
	var property domain.Property
	if err := c.ShouldBindJSON(&property); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	property.ID = c.Param("id")

	if err := h.usecase.UpdateProperty(&property); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, property)
}

// Delete removes a property
func (h *PropertyHandler) Delete(c *gin.Context) {
	if err := h.usecase.DeleteProperty(c.Param("id")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete property"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Property deleted"})
}

// Sync pushes the property to PropertyFinder immediately
func (h *PropertyHandler) Sync(c *gin.Context) {
	publish := c.DefaultQuery("publish", "false") == "true"
	err := h.orchestrator.SyncToPropertyFinder(c.Request.Context(), c.Param("id"), publish)
	h.respondSync(c, err, "Property synced to PropertyFinder")
}

// UpdateSync pushes local changes to the existing portal listing
func (h *PropertyHandler) UpdateSync(c *gin.Context) {
	err := h.orchestrator.UpdateSync(c.Request.Context(), c.Param("id"))
	h.respondSync(c, err, "Portal listing updated")
}

// Publish makes the portal listing live
func (h *PropertyHandler) Publish(c *gin.Context) {
	err := h.orchestrator.Publish(c.Request.Context(), c.Param("id"))
	h.respondSync(c, err, "Listing published")
}

// Unpublish takes the portal listing offline
func (h *PropertyHandler) Unpublish(c *gin.Context) {
	err := h.orchestrator.Unpublish(c.Request.Context(), c.Param("id"))
	h.respondSync(c, err, "Listing unpublished")
}

// SubmitVerification sends the listing for portal verification
func (h *PropertyHandler) SubmitVerification(c *gin.Context) {
	err := h.orchestrator.SubmitVerification(c.Request.Context(), c.Param("id"))
	h.respondSync(c, err, "Listing submitted for verification")
}

// Refresh pulls the latest portal state for the property
func (h *PropertyHandler) Refresh(c *gin.Context) {
	err := h.orchestrator.RefreshFromPortal(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondSync(c, err, "")
		return
	}
	property, err := h.usecase.GetProperty(c.Param("id"))
	if err != nil || property == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reload property"})
		return
	}
	c.JSON(http.StatusOK, property)
}

// BulkExport pushes every active property to the portal
func (h *PropertyHandler) BulkExport(c *gin.Context) {
	result, err := h.orchestrator.SyncAllToPropertyFinder(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

// BulkImport pulls the agency's portal listings into the CRM
func (h *PropertyHandler) BulkImport(c *gin.Context) {
	result, err := h.orchestrator.SyncFromPropertyFinder(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

// WipeLocationCache clears the cached portal location tree
func (h *PropertyHandler) WipeLocationCache(c *gin.Context) {
	if err := h.orchestrator.WipeLocationCache(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to wipe location cache"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Location cache wiped"})
}

// Similar returns properties close to this one in embedding space
func (h *PropertyHandler) Similar(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "5"))
	similar, err := h.usecase.SimilarProperties(c.Request.Context(), c.Param("id"), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"properties": similar})
}

// GenerateDescription drafts marketing copy for the property
func (h *PropertyHandler) GenerateDescription(c *gin.Context) {
	var req struct {
		Notes string `json:"notes"`
	}
	_ = c.ShouldBindJSON(&req)

	description, err := h.usecase.GenerateDescription(c.Request.Context(), c.Param("id"), req.Notes)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"description": description})
}

// respondSync maps orchestrator errors onto HTTP statuses
func (h *PropertyHandler) respondSync(c *gin.Context, err error, successMessage string) {
	if err == nil {
		c.JSON(http.StatusOK, gin.H{"message": successMessage})
		return
	}

	var apiErr *propertyfinder.APIError
	switch {
	case errors.Is(err, portalsync.ErrPropertyNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, portalsync.ErrNotSynced),
		errors.Is(err, portalsync.ErrLocationRequired),
		errors.Is(err, portalsync.ErrAgentProfileRequired):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.As(err, &apiErr):
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
