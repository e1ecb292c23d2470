package repository

import (
	"errors"
	"time"

	"propdesk-backend/internal/project/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProjectRepository defines storage operations for off-plan projects
type ProjectRepository interface {
	Create(project *domain.Project) error
	FindByID(id string) (*domain.Project, error)
	FindByDeveloper(developerID string) ([]*domain.Project, error)
	FindAll(limit, offset int) ([]*domain.Project, int64, error)
	Update(project *domain.Project) error
	Delete(id string) error
}

type gormProjectRepository struct {
	db *gorm.DB
}

// NewProjectRepository creates a new GORM-based ProjectRepository
func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &gormProjectRepository{db: db}
}

func (r *gormProjectRepository) Create(project *domain.Project) error {
	if project.ID == "" {
		project.ID = uuid.New().String()
	}
	project.CreatedAt = time.Now()
	project.UpdatedAt = time.Now()
	return r.db.Create(project).Error
}

func (r *gormProjectRepository) FindByID(id string) (*domain.Project, error) {
	var project domain.Project
	err := r.db.Where("id = ?", id).First(&project).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &project, nil
}

func (r *gormProjectRepository) FindByDeveloper(developerID string) ([]*domain.Project, error) {
	var projects []*domain.Project
	err := r.db.Where("developer_id = ?", developerID).Order("created_at DESC").Find(&projects).Error
	return projects, err
}

func (r *gormProjectRepository) FindAll(limit, offset int) ([]*domain.Project, int64, error) {
	var projects []*domain.Project
	var total int64

	if err := r.db.Model(&domain.Project{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := r.db.Order("created_at DESC").Limit(limit).Offset(offset).Find(&projects).Error
	return projects, total, err
}

func (r *gormProjectRepository) Update(project *domain.Project) error {
	project.UpdatedAt = time.Now()
	return r.db.Save(project).Error
}

func (r *gormProjectRepository) Delete(id string) error {
	return r.db.Delete(&domain.Project{}, "id = ?", id).Error
}
