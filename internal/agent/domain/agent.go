package domain

import "time"

// Agent is a salesperson. PfUserID/PfPublicProfileID link the agent to the
// portal account that listings are attributed to; a listing cannot be
// submitted for verification until PfPublicProfileID is resolved.
type Agent struct {
	ID        string `json:"id" gorm:"primaryKey"`
	Name      string `json:"name" gorm:"not null"`
	Email     string `json:"email" gorm:"uniqueIndex"`
	Phone     string `json:"phone"`
	LicenseNo string `json:"license_no"` // broker registration (BRN)
	PhotoURL  string `json:"photo_url"`
	Languages []string `json:"languages" gorm:"serializer:json"`

	PfUserID          string `json:"pf_user_id" gorm:"index"`
	PfPublicProfileID string `json:"pf_public_profile_id" gorm:"index"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
