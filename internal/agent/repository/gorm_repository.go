package repository

import (
	"errors"
	"time"

	"propdesk-backend/internal/agent/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type gormAgentRepository struct {
	db *gorm.DB
}

// NewAgentRepository creates a new GORM-based AgentRepository
func NewAgentRepository(db *gorm.DB) AgentRepository {
	return &gormAgentRepository{db: db}
}

func (r *gormAgentRepository) Create(agent *domain.Agent) error {
	if agent.ID == "" {
		agent.ID = uuid.New().String()
	}
	agent.CreatedAt = time.Now()
	agent.UpdatedAt = time.Now()
	return r.db.Create(agent).Error
}

func (r *gormAgentRepository) FindByID(id string) (*domain.Agent, error) {
	var agent domain.Agent
	err := r.db.Where("id = ?", id).First(&agent).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &agent, nil
}

func (r *gormAgentRepository) FindByPfUserID(pfUserID string) (*domain.Agent, error) {
	var agent domain.Agent
	err := r.db.Where("pf_user_id = ?", pfUserID).First(&agent).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &agent, nil
}

func (r *gormAgentRepository) FindByPfPublicProfileID(profileID string) (*domain.Agent, error) {
	var agent domain.Agent
	err := r.db.Where("pf_public_profile_id = ?", profileID).First(&agent).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &agent, nil
}

func (r *gormAgentRepository) FindAll() ([]*domain.Agent, error) {
	var agents []*domain.Agent
	err := r.db.Order("name ASC").Find(&agents).Error
	return agents, err
}

func (r *gormAgentRepository) Update(agent *domain.Agent) error {
	agent.UpdatedAt = time.Now()
	return r.db.Save(agent).Error
}

func (r *gormAgentRepository) Delete(id string) error {
	return r.db.Delete(&domain.Agent{}, "id = ?", id).Error
}
