package delivery

import (
	"net/http"

	"propdesk-backend/internal/developer/domain"
	"propdesk-backend/internal/developer/repository"

	"github.com/gin-gonic/gin"
)

type DeveloperHandler struct {
	repo repository.DeveloperRepository
}

func NewDeveloperHandler(repo repository.DeveloperRepository) *DeveloperHandler {
	return &DeveloperHandler{repo: repo}
}

func (h *DeveloperHandler) List(c *gin.Context) {
	developers, err := h.repo.FindAll()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load developers"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"developers": developers})
}

func (h *DeveloperHandler) Get(c *gin.Context) {
	developer, err := h.repo.FindByID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load developer"})
		return
	}
	if developer == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Developer not found"})
		return
	}
	c.JSON(http.StatusOK, developer)
}

func (h *DeveloperHandler) Create(c *gin.Context) {
	var developer domain.Developer
	if err := c.ShouldBindJSON(&developer); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if developer.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Name is required"})
		return
	}

	if err := h.repo.Create(&developer); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create developer"})
		return
	}
	c.JSON(http.StatusCreated, developer)
}

func (h *DeveloperHandler) Update(c *gin.Context) {
	existing, err := h.repo.FindByID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load developer"})
		return
	}
	if existing == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Developer not found"})
		return
	}

	var developer domain.Developer
	if err := c.ShouldBindJSON(&developer); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	developer.ID = existing.ID
	developer.CreatedAt = existing.CreatedAt

	if err := h.repo.Update(&developer); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update developer"})
		return
	}
	c.JSON(http.StatusOK, developer)
}

func (h *DeveloperHandler) Delete(c *gin.Context) {
	if err := h.repo.Delete(c.Param("id")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete developer"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Developer deleted"})
}
