package repository

import (
	"errors"
	"time"

	"propdesk-backend/internal/property/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// gormPropertyRepository implements PropertyRepository using GORM
type gormPropertyRepository struct {
	db *gorm.DB
}

// NewPropertyRepository creates a new GORM-based PropertyRepository
func NewPropertyRepository(db *gorm.DB) PropertyRepository {
	return &gormPropertyRepository{db: db}
}

func (r *gormPropertyRepository) Create(property *domain.Property) error {
	if property.ID == "" {
		property.ID = uuid.New().String()
	}
	property.CreatedAt = time.Now()
	property.UpdatedAt = time.Now()
	return r.db.Create(property).Error
}

func (r *gormPropertyRepository) FindByID(id string) (*domain.Property, error) {
	var property domain.Property
	err := r.db.Where("id = ?", id).First(&property).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &property, nil
}

func (r *gormPropertyRepository) FindByReference(ref string) (*domain.Property, error) {
	var property domain.Property
	err := r.db.Where("reference_no = ?", ref).First(&property).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &property, nil
}

func (r *gormPropertyRepository) FindByPfListingID(listingID string) (*domain.Property, error) {
	var property domain.Property
	err := r.db.Where("pf_listing_id = ?", listingID).First(&property).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &property, nil
}

func (r *gormPropertyRepository) Search(filter SearchFilter, limit, offset int) ([]*domain.Property, int64, error) {
	var properties []*domain.Property
	var total int64

	query := r.db.Model(&domain.Property{})

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Purpose != "" {
		query = query.Where("purpose = ?", filter.Purpose)
	}
	if filter.PropertyType != "" {
		query = query.Where("property_type = ?", filter.PropertyType)
	}
	if filter.Emirate != "" {
		query = query.Where("emirate = ?", filter.Emirate)
	}
	if filter.AgentID != "" {
		query = query.Where("agent_id = ?", filter.AgentID)
	}
	if filter.MinPrice > 0 {
		query = query.Where("price >= ?", filter.MinPrice)
	}
	if filter.MaxPrice > 0 {
		query = query.Where("price <= ?", filter.MaxPrice)
	}
	if filter.MinBedrooms > 0 {
		query = query.Where("bedrooms >= ?", filter.MinBedrooms)
	}
	if filter.Query != "" {
		like := "%" + filter.Query + "%"
		query = query.Where("title ILIKE ? OR reference_no ILIKE ?", like, like)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&properties).Error
	return properties, total, err
}

func (r *gormPropertyRepository) FindAllActive() ([]*domain.Property, error) {
	var properties []*domain.Property
	err := r.db.Where("status = ?", domain.PropertyStatusActive).Find(&properties).Error
	return properties, err
}

func (r *gormPropertyRepository) FindAll() ([]*domain.Property, error) {
	var properties []*domain.Property
	err := r.db.Find(&properties).Error
	return properties, err
}

func (r *gormPropertyRepository) Update(property *domain.Property) error {
	property.UpdatedAt = time.Now()
	return r.db.Save(property).Error
}

func (r *gormPropertyRepository) Delete(id string) error {
	return r.db.Delete(&domain.Property{}, "id = ?", id).Error
}
