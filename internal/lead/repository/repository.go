package repository

import (
	"errors"
	"time"

	"propdesk-backend/internal/lead/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LeadRepository defines storage operations for leads
type LeadRepository interface {
	Create(lead *domain.Lead) error
	FindByID(id string) (*domain.Lead, error)
	FindByMessageID(messageID string) (*domain.Lead, error)
	FindAll(status string, limit, offset int) ([]*domain.Lead, int64, error)
	Update(lead *domain.Lead) error
	Delete(id string) error
}

type gormLeadRepository struct {
	db *gorm.DB
}

// NewLeadRepository creates a new GORM-based LeadRepository
func NewLeadRepository(db *gorm.DB) LeadRepository {
	return &gormLeadRepository{db: db}
}

func (r *gormLeadRepository) Create(lead *domain.Lead) error {
	if lead.ID == "" {
		lead.ID = uuid.New().String()
	}
	if lead.Status == "" {
		lead.Status = domain.LeadStatusNew
	}
	lead.CreatedAt = time.Now()
	lead.UpdatedAt = time.Now()
	return r.db.Create(lead).Error
}

func (r *gormLeadRepository) FindByID(id string) (*domain.Lead, error) {
	var lead domain.Lead
	err := r.db.Where("id = ?", id).First(&lead).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &lead, nil
}

func (r *gormLeadRepository) FindByMessageID(messageID string) (*domain.Lead, error) {
	if messageID == "" {
		return nil, nil
	}
	var lead domain.Lead
	err := r.db.Where("message_id = ?", messageID).First(&lead).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &lead, nil
}

func (r *gormLeadRepository) FindAll(status string, limit, offset int) ([]*domain.Lead, int64, error) {
	var leads []*domain.Lead
	var total int64

	query := r.db.Model(&domain.Lead{})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&leads).Error
	return leads, total, err
}

func (r *gormLeadRepository) Update(lead *domain.Lead) error {
	lead.UpdatedAt = time.Now()
	return r.db.Save(lead).Error
}

func (r *gormLeadRepository) Delete(id string) error {
	return r.db.Delete(&domain.Lead{}, "id = ?", id).Error
}
