package domain

import "time"

type LeadSource string

const (
	LeadSourceManual  LeadSource = "manual"
	LeadSourceMailbox LeadSource = "mailbox"
	LeadSourcePortal  LeadSource = "portal"
)

type LeadStatus string

const (
	LeadStatusNew       LeadStatus = "new"
	LeadStatusContacted LeadStatus = "contacted"
	LeadStatusQualified LeadStatus = "qualified"
	LeadStatusClosed    LeadStatus = "closed"
)

// Lead represents a buyer or tenant enquiry, either entered manually
// or extracted from the shared lead mailbox
type Lead struct {
	ID         string     `json:"id" gorm:"primaryKey"`
	Name       string     `json:"name"`
	Phone      string     `json:"phone"`
	Email      string     `json:"email"`
	Message    string     `json:"message" gorm:"type:text"`
	Source     LeadSource `json:"source" gorm:"index"`
	Status     LeadStatus `json:"status" gorm:"index"`
	PropertyID string     `json:"propertyId" gorm:"index"`
	AgentID    string     `json:"agentId" gorm:"index"`
	// MessageID is the mailbox Message-Id header, used to deduplicate
	// leads ingested from email
	MessageID string    `json:"-" gorm:"index"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
