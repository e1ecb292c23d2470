package delivery

import (
	"net/http"
	"strconv"

	devrepo "propdesk-backend/internal/developer/repository"
	"propdesk-backend/internal/project/domain"
	"propdesk-backend/internal/project/repository"

	"github.com/gin-gonic/gin"
)

type ProjectHandler struct {
	repo       repository.ProjectRepository
	developers devrepo.DeveloperRepository
}

func NewProjectHandler(repo repository.ProjectRepository, developers devrepo.DeveloperRepository) *ProjectHandler {
	return &ProjectHandler{repo: repo, developers: developers}
}

// List returns projects, optionally filtered by developer
func (h *ProjectHandler) List(c *gin.Context) {
	if developerID := c.Query("developer_id"); developerID != "" {
		projects, err := h.repo.FindByDeveloper(developerID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load projects"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"projects": projects, "total": len(projects)})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	projects, total, err := h.repo.FindAll(limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load projects"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"projects": projects, "total": total})
}

func (h *ProjectHandler) Get(c *gin.Context) {
	project, err := h.repo.FindByID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load project"})
		return
	}
	if project == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
		return
	}
	c.JSON(http.StatusOK, project)
}

func (h *ProjectHandler) Create(c *gin.Context) {
	var project domain.Project
	if err := c.ShouldBindJSON(&project); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if project.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Name is required"})
		return
	}
	if project.DeveloperID != "" {
		developer, err := h.developers.FindByID(project.DeveloperID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to verify developer"})
			return
		}
		if developer == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Developer not found"})
			return
		}
	}

	if err := h.repo.Create(&project); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create project"})
		return
	}
	c.JSON(http.StatusCreated, project)
}

func (h *ProjectHandler) Update(c *gin.Context) {
	existing, err := h.repo.FindByID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load project"})
		return
	}
	if existing == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
		return
	}

	var project domain.Project
	if err := c.ShouldBindJSON(&project); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	project.ID = existing.ID
	project.CreatedAt = existing.CreatedAt

	if err := h.repo.Update(&project); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update project"})
		return
	}
	c.JSON(http.StatusOK, project)
}

func (h *ProjectHandler) Delete(c *gin.Context) {
	if err := h.repo.Delete(c.Param("id")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete project"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Project deleted"})
}
