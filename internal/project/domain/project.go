package domain

import "time"

// ProjectStatus represents the off-plan project construction stage
type ProjectStatus string

const (
	ProjectStatusAnnounced         ProjectStatus = "announced"
	ProjectStatusUnderConstruction ProjectStatus = "under_construction"
	ProjectStatusCompleted         ProjectStatus = "completed"
)

// Project is an off-plan development marketed by the agency.
type Project struct {
	ID          string        `json:"id" gorm:"primaryKey"`
	Name        string        `json:"name" gorm:"not null"`
	DeveloperID string        `json:"developer_id" gorm:"index"`
	Description string        `json:"description"`
	Status      ProjectStatus `json:"status" gorm:"default:announced"`
	Emirate     string        `json:"emirate"`
	Community   string        `json:"community"`

	StartingPrice float64    `json:"starting_price"`
	HandoverDate  *time.Time `json:"handover_date,omitempty"`
	BrochureURL   string     `json:"brochure_url"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
