package usecase

import (
	"context"
	"fmt"
	"log"
	"strings"

	"propdesk-backend/internal/lead/domain"
	"propdesk-backend/internal/lead/repository"
	notifdomain "propdesk-backend/internal/notification/domain"
	proprepo "propdesk-backend/internal/property/repository"
	"propdesk-backend/pkg/ai"
	"propdesk-backend/pkg/mailbox"
)

const mailboxFetchLimit = 50

// Notifier pushes events to the in-app notification feed
type Notifier interface {
	Notify(notifType notifdomain.NotificationType, title, message, propertyID string)
}

// LeadUsecase defines lead business operations
type LeadUsecase interface {
	CreateLead(lead *domain.Lead) error
	GetLead(id string) (*domain.Lead, error)
	ListLeads(status string, limit, offset int) ([]*domain.Lead, int64, error)
	UpdateLead(lead *domain.Lead) error
	UpdateStatus(id string, status domain.LeadStatus) (*domain.Lead, error)
	DeleteLead(id string) error
	IngestFromMailbox(ctx context.Context) (int, error)
}

type leadUsecase struct {
	leads      repository.LeadRepository
	properties proprepo.PropertyRepository
	extractor  ai.DescriptionService
	inbox      *mailbox.Client
	notifier   Notifier
}

// NewLeadUsecase creates a new lead usecase. inbox and extractor may be
// nil when the lead mailbox is not configured; IngestFromMailbox then
// becomes a no-op.
func NewLeadUsecase(
	leads repository.LeadRepository,
	properties proprepo.PropertyRepository,
	extractor ai.DescriptionService,
	inbox *mailbox.Client,
	notifier Notifier,
) LeadUsecase {
	return &leadUsecase{
		leads:      leads,
		properties: properties,
		extractor:  extractor,
		inbox:      inbox,
		notifier:   notifier,
	}
}

func (u *leadUsecase) CreateLead(lead *domain.Lead) error {
	if lead.Source == "" {
		lead.Source = domain.LeadSourceManual
	}
	if lead.PropertyID != "" {
		property, err := u.properties.FindByID(lead.PropertyID)
		if err != nil {
			return err
		}
		if property == nil {
			return fmt.Errorf("property %s not found", lead.PropertyID)
		}
		if lead.AgentID == "" {
			lead.AgentID = property.AgentID
		}
	}
	return u.leads.Create(lead)
}

func (u *leadUsecase) GetLead(id string) (*domain.Lead, error) {
	return u.leads.FindByID(id)
}

func (u *leadUsecase) ListLeads(status string, limit, offset int) ([]*domain.Lead, int64, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return u.leads.FindAll(status, limit, offset)
}

func (u *leadUsecase) UpdateLead(lead *domain.Lead) error {
	existing, err := u.leads.FindByID(lead.ID)
	if err != nil {
		return err
	}
	if existing == nil {
		return fmt.Errorf("lead %s not found", lead.ID)
	}
	// Source and mailbox identity are fixed at ingestion
	lead.Source = existing.Source
	lead.MessageID = existing.MessageID
	lead.CreatedAt = existing.CreatedAt
	return u.leads.Update(lead)
}

func (u *leadUsecase) UpdateStatus(id string, status domain.LeadStatus) (*domain.Lead, error) {
	switch status {
	case domain.LeadStatusNew, domain.LeadStatusContacted, domain.LeadStatusQualified, domain.LeadStatusClosed:
	default:
		return nil, fmt.Errorf("invalid lead status: %s", status)
	}
	lead, err := u.leads.FindByID(id)
	if err != nil {
		return nil, err
	}
	if lead == nil {
		return nil, fmt.Errorf("lead %s not found", id)
	}
	lead.Status = status
	if err := u.leads.Update(lead); err != nil {
		return nil, err
	}
	return lead, nil
}

func (u *leadUsecase) DeleteLead(id string) error {
	return u.leads.Delete(id)
}

// IngestFromMailbox pulls unread messages from the shared lead inbox,
// extracts contact details from each one, and files new leads. Messages
// already seen (matched by Message-Id) are skipped.
func (u *leadUsecase) IngestFromMailbox(ctx context.Context) (int, error) {
	if u.inbox == nil {
		return 0, nil
	}

	emails, err := u.inbox.FetchUnread(mailboxFetchLimit)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch lead mailbox: %w", err)
	}
	if len(emails) == 0 {
		return 0, nil
	}

	created := 0
	for _, email := range emails {
		existing, err := u.leads.FindByMessageID(email.MessageID)
		if err != nil {
			log.Printf("[Leads] Dedupe lookup failed for %s: %v", email.MessageID, err)
			continue
		}
		if existing != nil {
			continue
		}

		lead := u.leadFromEmail(ctx, email)
		if err := u.leads.Create(lead); err != nil {
			log.Printf("[Leads] Failed to save lead from %s: %v", email.From, err)
			continue
		}
		created++

		if u.notifier != nil {
			u.notifier.Notify(notifdomain.NotificationInfo, "New lead",
				fmt.Sprintf("New enquiry from %s: %s", lead.Name, email.Subject), lead.PropertyID)
		}
	}

	if created > 0 {
		log.Printf("[Leads] Ingested %d new lead(s) from mailbox", created)
	}
	return created, nil
}

func (u *leadUsecase) leadFromEmail(ctx context.Context, email mailbox.LeadEmail) *domain.Lead {
	lead := &domain.Lead{
		Name:      email.FromName,
		Email:     email.From,
		Message:   strings.TrimSpace(email.Subject + "\n\n" + email.Body),
		Source:    domain.LeadSourceMailbox,
		MessageID: email.MessageID,
	}
	if lead.Name == "" {
		lead.Name = email.From
	}

	if u.extractor == nil {
		return lead
	}

	details, err := u.extractor.ExtractLeadDetails(ctx, email.Subject+"\n\n"+email.Body)
	if err != nil {
		log.Printf("[Leads] Extraction failed for %s, keeping raw email: %v", email.From, err)
		return lead
	}

	if details.Name != "" {
		lead.Name = details.Name
	}
	if details.Phone != "" {
		lead.Phone = details.Phone
	}
	if details.Email != "" {
		lead.Email = details.Email
	}
	if details.Message != "" {
		lead.Message = details.Message
	}
	if details.PropertyReference != "" {
		property, err := u.properties.FindByReference(details.PropertyReference)
		if err != nil {
			log.Printf("[Leads] Reference lookup failed for %s: %v", details.PropertyReference, err)
		} else if property != nil {
			lead.PropertyID = property.ID
			lead.AgentID = property.AgentID
		}
	}
	return lead
}
