package domain

import "time"

// PropertyStatus represents the internal lifecycle state of a property
type PropertyStatus string

const (
	PropertyStatusDraft    PropertyStatus = "draft"
	PropertyStatusActive   PropertyStatus = "active"
	PropertyStatusArchived PropertyStatus = "archived"
)

// Property is the internal CRM record. The Pf* fields link it to its
// PropertyFinder listing; PfListingID is set once by the first successful
// sync and never reassigned, so a property has at most one portal listing.
type Property struct {
	ID          string `json:"id" gorm:"primaryKey"`
	ReferenceNo string `json:"reference_no" gorm:"uniqueIndex;not null"`
	Title       string `json:"title" gorm:"not null"`
	Description string `json:"description"`

	PropertyType   string `json:"property_type"`  // apartment, villa, land, farm, ...
	Category       string `json:"category"`       // residential | commercial
	Purpose        string `json:"purpose"`        // sale | rent
	RentFrequency  string `json:"rent_frequency"` // yearly, monthly, ... (rent only)
	FurnishingType string `json:"furnishing_type"`
	ProjectStatus  string `json:"project_status"` // off_plan, under_construction, completed

	Price    float64 `json:"price"`
	Currency string  `json:"currency" gorm:"default:AED"`

	Bedrooms  int     `json:"bedrooms"`
	Bathrooms int     `json:"bathrooms"`
	Size      float64 `json:"size"` // sqft

	Address   string `json:"address"`
	Community string `json:"community"`
	City      string `json:"city"`
	Emirate   string `json:"emirate"`

	Amenities []string `json:"amenities" gorm:"serializer:json"`

	CoverPhoto string   `json:"cover_photo"`
	Images     []string `json:"images" gorm:"serializer:json"`

	PermitNumber string `json:"permit_number"` // RERA/Trakheesi advertisement permit

	AgentID     string `json:"agent_id" gorm:"index"`
	DeveloperID string `json:"developer_id" gorm:"index"`
	ProjectID   string `json:"project_id" gorm:"index"`

	Status PropertyStatus `json:"status" gorm:"default:active;index"`

	// PropertyFinder linkage
	PfListingID          string     `json:"pf_listing_id" gorm:"index"`
	PfLocationID         string     `json:"pf_location_id"`
	PfLocationPath       string     `json:"pf_location_path"`
	PfPublished          bool       `json:"pf_published" gorm:"default:false"`
	PfVerificationStatus string     `json:"pf_verification_status"`
	PfQualityScore       float64    `json:"pf_quality_score"`
	PfSyncedAt           *time.Time `json:"pf_synced_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsLandType reports whether the property type has no habitable rooms; the
// portal rejects bedrooms/bathrooms/amenities for these.
func (p *Property) IsLandType() bool {
	return p.PropertyType == "land" || p.PropertyType == "farm"
}
