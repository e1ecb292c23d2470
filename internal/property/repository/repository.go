package repository

import "propdesk-backend/internal/property/domain"

// SearchFilter narrows property list queries
type SearchFilter struct {
	Purpose      string
	PropertyType string
	Emirate      string
	AgentID      string
	MinPrice     float64
	MaxPrice     float64
	MinBedrooms  int
	Query        string // matched against title and reference
	Status       string
}

// PropertyRepository defines storage operations for properties
type PropertyRepository interface {
	Create(property *domain.Property) error
	FindByID(id string) (*domain.Property, error)
	FindByReference(ref string) (*domain.Property, error)
	FindByPfListingID(listingID string) (*domain.Property, error)
	Search(filter SearchFilter, limit, offset int) ([]*domain.Property, int64, error)
	FindAllActive() ([]*domain.Property, error)
	FindAll() ([]*domain.Property, error)
	Update(property *domain.Property) error
	Delete(id string) error
}
