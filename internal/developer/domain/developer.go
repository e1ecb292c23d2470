package domain

import "time"

// Developer is a real-estate development company whose off-plan projects the
// agency markets.
type Developer struct {
	ID      string `json:"id" gorm:"primaryKey"`
	Name    string `json:"name" gorm:"not null;uniqueIndex"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Website string `json:"website"`
	LogoURL string `json:"logo_url"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
