package repository

import "propdesk-backend/internal/agent/domain"

// AgentRepository defines storage operations for agents
type AgentRepository interface {
	Create(agent *domain.Agent) error
	FindByID(id string) (*domain.Agent, error)
	FindByPfUserID(pfUserID string) (*domain.Agent, error)
	FindByPfPublicProfileID(profileID string) (*domain.Agent, error)
	FindAll() ([]*domain.Agent, error)
	Update(agent *domain.Agent) error
	Delete(id string) error
}
