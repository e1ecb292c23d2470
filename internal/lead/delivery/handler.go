package delivery

import (
	"net/http"
	"strconv"

	"propdesk-backend/internal/lead/domain"
	"propdesk-backend/internal/lead/usecase"

	"github.com/gin-gonic/gin"
)

type LeadHandler struct {
	usecase usecase.LeadUsecase
}

func NewLeadHandler(u usecase.LeadUsecase) *LeadHandler {
	return &LeadHandler{usecase: u}
}

// List returns leads filtered by status with pagination
func (h *LeadHandler) List(c *gin.Context) {
	status := c.Query("status")
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	leads, total, err := h.usecase.ListLeads(status, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load leads"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"leads": leads,
		"total": total,
	})
}

// Get returns a single lead by ID
func (h *LeadHandler) Get(c *gin.Context) {
	lead, err := h.usecase.GetLead(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load lead"})
		return
	}
	if lead == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Lead not found"})
		return
	}
	c.JSON(http.StatusOK, lead)
}

// Create files a new lead entered manually
func (h *LeadHandler) Create(c *gin.Context) {
	var lead domain.Lead
	if err := c.ShouldBindJSON(&lead); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if lead.Name == "" && lead.Phone == "" && lead.Email == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "At least one of name, phone or email is required"})
		return
	}

	if err := h.usecase.CreateLead(&lead); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, lead)
}

// Update replaces lead details
func (h *LeadHandler) Update(c *gin.Context) {
	var lead domain.Lead
	if err := c.ShouldBindJSON(&lead); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	lead.ID = c.Param("id")

	if err := h.usecase.UpdateLead(&lead); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, lead)
}

// UpdateStatus moves a lead through the pipeline
func (h *LeadHandler) UpdateStatus(c *gin.Context) {
	var req struct {
		Status domain.LeadStatus `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status is required"})
		return
	}

	lead, err := h.usecase.UpdateStatus(c.Param("id"), req.Status)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, lead)
}

// Delete removes a lead
func (h *LeadHandler) Delete(c *gin.Context) {
	if err := h.usecase.DeleteLead(c.Param("id")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete lead"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Lead deleted"})
}

// Ingest triggers an immediate mailbox pull
func (h *LeadHandler) Ingest(c *gin.Context) {
	created, err := h.usecase.IngestFromMailbox(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ingested": created})
}
