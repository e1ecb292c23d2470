package repository

import (
	"errors"
	"time"

	"propdesk-backend/internal/developer/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DeveloperRepository defines storage operations for developers
type DeveloperRepository interface {
	Create(developer *domain.Developer) error
	FindByID(id string) (*domain.Developer, error)
	FindAll() ([]*domain.Developer, error)
	Update(developer *domain.Developer) error
	Delete(id string) error
}

type gormDeveloperRepository struct {
	db *gorm.DB
}

// NewDeveloperRepository creates a new GORM-based DeveloperRepository
func NewDeveloperRepository(db *gorm.DB) DeveloperRepository {
	return &gormDeveloperRepository{db: db}
}

func (r *gormDeveloperRepository) Create(developer *domain.Developer) error {
	if developer.ID == "" {
		developer.ID = uuid.New().String()
	}
	developer.CreatedAt = time.Now()
	developer.UpdatedAt = time.Now()
	return r.db.Create(developer).Error
}

func (r *gormDeveloperRepository) FindByID(id string) (*domain.Developer, error) {
	var developer domain.Developer
	err := r.db.Where("id = ?", id).First(&developer).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &developer, nil
}

func (r *gormDeveloperRepository) FindAll() ([]*domain.Developer, error) {
	var developers []*domain.Developer
	err := r.db.Order("name ASC").Find(&developers).Error
	return developers, err
}

func (r *gormDeveloperRepository) Update(developer *domain.Developer) error {
	developer.UpdatedAt = time.Now()
	return r.db.Save(developer).Error
}

func (r *gormDeveloperRepository) Delete(id string) error {
	return r.db.Delete(&domain.Developer{}, "id = ?", id).Error
}
