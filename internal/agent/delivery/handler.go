package delivery

import (
	"net/http"

	"propdesk-backend/internal/agent/domain"
	"propdesk-backend/internal/agent/repository"

	"github.com/gin-gonic/gin"
)

type AgentHandler struct {
	repo repository.AgentRepository
}

func NewAgentHandler(repo repository.AgentRepository) *AgentHandler {
	return &AgentHandler{repo: repo}
}

// List returns all agents
func (h *AgentHandler) List(c *gin.Context) {
	agents, err := h.repo.FindAll()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load agents"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"agents": agents})
}

// Get returns a single agent by ID
func (h *AgentHandler) Get(c *gin.Context) {
	agent, err := h.repo.FindByID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load agent"})
		return
	}
	if agent == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Agent not found"})
		return
	}
	c.JSON(http.StatusOK, agent)
}

// Create registers a new agent
func (h *AgentHandler) Create(c *gin.Context) {
	var agent domain.Agent
	if err := c.ShouldBindJSON(&agent); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if agent.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Name is required"})
		return
	}

	if err := h.repo.Create(&agent); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create agent"})
		return
	}
	c.JSON(http.StatusCreated, agent)
}

// Update replaces agent details, including the portal profile linkage
func (h *AgentHandler) Update(c *gin.Context) {
	existing, err := h.repo.FindByID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load agent"})
		return
	}
	if existing == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Agent not found"})
		return
	}

	var agent domain.Agent
	if err := c.ShouldBindJSON(&agent); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	agent.ID = existing.ID
	agent.CreatedAt = existing.CreatedAt

	if err := h.repo.Update(&agent); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update agent"})
		return
	}
	c.JSON(http.StatusOK, agent)
}

// Delete removes an agent
func (h *AgentHandler) Delete(c *gin.Context) {
	if err := h.repo.Delete(c.Param("id")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete agent"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Agent deleted"})
}
