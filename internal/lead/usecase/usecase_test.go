package usecase

import (
	"context"
	"errors"
	"testing"

	"propdesk-backend/internal/lead/domain"
	notifdomain "propdesk-backend/internal/notification/domain"
	propdomain "propdesk-backend/internal/property/domain"
	proprepo "propdesk-backend/internal/property/repository"
	"propdesk-backend/pkg/ai"
	"propdesk-backend/pkg/mailbox"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type memoryLeadRepo struct {
	leads map[string]*domain.Lead
}

func newMemoryLeadRepo() *memoryLeadRepo {
	return &memoryLeadRepo{leads: make(map[string]*domain.Lead)}
}

func (r *memoryLeadRepo) Create(lead *domain.Lead) error {
	if lead.ID == "" {
		lead.ID = uuid.New().String()
	}
	if lead.Status == "" {
		lead.Status = domain.LeadStatusNew
	}
	copied := *lead
	r.leads[lead.ID] = &copied
	return nil
}

func (r *memoryLeadRepo) FindByID(id string) (*domain.Lead, error) {
	if lead, ok := r.leads[id]; ok {
		copied := *lead
		return &copied, nil
	}
	return nil, nil
}

func (r *memoryLeadRepo) FindByMessageID(messageID string) (*domain.Lead, error) {
	if messageID == "" {
		return nil, nil
	}
	for _, lead := range r.leads {
		if lead.MessageID == messageID {
			copied := *lead
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *memoryLeadRepo) FindAll(status string, limit, offset int) ([]*domain.Lead, int64, error) {
	var matched []*domain.Lead
	for _, lead := range r.leads {
		if status == "" || string(lead.Status) == status {
			copied := *lead
			matched = append(matched, &copied)
		}
	}
	return matched, int64(len(matched)), nil
}

func (r *memoryLeadRepo) Update(lead *domain.Lead) error {
	copied := *lead
	r.leads[lead.ID] = &copied
	return nil
}

func (r *memoryLeadRepo) Delete(id string) error {
	delete(r.leads, id)
	return nil
}

type stubPropertyRepo struct {
	proprepo.PropertyRepository
	byID  map[string]*propdomain.Property
	byRef map[string]*propdomain.Property
}

func (r *stubPropertyRepo) FindByID(id string) (*propdomain.Property, error) {
	return r.byID[id], nil
}

func (r *stubPropertyRepo) FindByReference(ref string) (*propdomain.Property, error) {
	return r.byRef[ref], nil
}

type stubExtractor struct {
	extraction *ai.LeadExtraction
	err        error
}

func (s *stubExtractor) GenerateDescription(ctx context.Context, brief ai.PropertyBrief) (string, error) {
	return "", errors.New("not implemented")
}

func (s *stubExtractor) ExtractLeadDetails(ctx context.Context, emailText string) (*ai.LeadExtraction, error) {
	return s.extraction, s.err
}

type noopNotifier struct{}

func (noopNotifier) Notify(notifType notifdomain.NotificationType, title, message, propertyID string) {
}

func TestCreateLeadDefaultsAndAgentInheritance(t *testing.T) {
	property := &propdomain.Property{ID: "prop-1", AgentID: "agent-1"}
	properties := &stubPropertyRepo{byID: map[string]*propdomain.Property{"prop-1": property}}
	uc := NewLeadUsecase(newMemoryLeadRepo(), properties, nil, nil, noopNotifier{})

	lead := &domain.Lead{Name: "Jordan", PropertyID: "prop-1"}
	require.NoError(t, uc.CreateLead(lead))
	require.Equal(t, domain.LeadSourceManual, lead.Source)
	require.Equal(t, domain.LeadStatusNew, lead.Status)
	require.Equal(t, "agent-1", lead.AgentID)
}

func TestCreateLeadUnknownPropertyRejected(t *testing.T) {
	properties := &stubPropertyRepo{byID: map[string]*propdomain.Property{}}
	uc := NewLeadUsecase(newMemoryLeadRepo(), properties, nil, nil, noopNotifier{})

	err := uc.CreateLead(&domain.Lead{Name: "Jordan", PropertyID: "missing"})
	require.Error(t, err)
}

func TestUpdateStatusValidatesPipeline(t *testing.T) {
	repo := newMemoryLeadRepo()
	uc := NewLeadUsecase(repo, &stubPropertyRepo{}, nil, nil, noopNotifier{})

	lead := &domain.Lead{Name: "Sam"}
	require.NoError(t, uc.CreateLead(lead))

	updated, err := uc.UpdateStatus(lead.ID, domain.LeadStatusContacted)
	require.NoError(t, err)
	require.Equal(t, domain.LeadStatusContacted, updated.Status)

	_, err = uc.UpdateStatus(lead.ID, "bogus")
	require.Error(t, err)
}

func TestUpdateLeadPreservesIngestionIdentity(t *testing.T) {
	repo := newMemoryLeadRepo()
	uc := NewLeadUsecase(repo, &stubPropertyRepo{}, nil, nil, noopNotifier{})

	original := &domain.Lead{Name: "Sam", Source: domain.LeadSourceMailbox, MessageID: "<msg-1>"}
	require.NoError(t, repo.Create(original))

	edit := &domain.Lead{ID: original.ID, Name: "Sam Edited", Source: domain.LeadSourceManual}
	require.NoError(t, uc.UpdateLead(edit))
	require.Equal(t, domain.LeadSourceMailbox, edit.Source)
	require.Equal(t, "<msg-1>", edit.MessageID)
}

func TestLeadFromEmailMatchesPropertyReference(t *testing.T) {
	property := &propdomain.Property{ID: "prop-1", AgentID: "agent-1", ReferenceNo: "PD-1234"}
	properties := &stubPropertyRepo{byRef: map[string]*propdomain.Property{"PD-1234": property}}
	extractor := &stubExtractor{extraction: &ai.LeadExtraction{
		Name:              "Alex Buyer",
		Phone:             "+971501234567",
		Email:             "alex@example.com",
		Message:           "Interested in viewing this weekend",
		PropertyReference: "PD-1234",
	}}
	uc := NewLeadUsecase(newMemoryLeadRepo(), properties, extractor, nil, noopNotifier{}).(*leadUsecase)

	lead := uc.leadFromEmail(context.Background(), mailbox.LeadEmail{
		MessageID: "<msg-1>",
		From:      "portal@leads.example.com",
		Subject:   "New enquiry for PD-1234",
		Body:      "raw body",
	})

	require.Equal(t, "Alex Buyer", lead.Name)
	require.Equal(t, "+971501234567", lead.Phone)
	require.Equal(t, "alex@example.com", lead.Email)
	require.Equal(t, "prop-1", lead.PropertyID)
	require.Equal(t, "agent-1", lead.AgentID)
	require.Equal(t, domain.LeadSourceMailbox, lead.Source)
	require.Equal(t, "<msg-1>", lead.MessageID)
}

func TestLeadFromEmailKeepsRawOnExtractionFailure(t *testing.T) {
	extractor := &stubExtractor{err: errors.New("model offline")}
	uc := NewLeadUsecase(newMemoryLeadRepo(), &stubPropertyRepo{}, extractor, nil, noopNotifier{}).(*leadUsecase)

	lead := uc.leadFromEmail(context.Background(), mailbox.LeadEmail{
		MessageID: "<msg-2>",
		From:      "buyer@example.com",
		FromName:  "Buyer",
		Subject:   "Enquiry",
		Body:      "I want to rent",
	})

	require.Equal(t, "Buyer", lead.Name)
	require.Equal(t, "buyer@example.com", lead.Email)
	require.Contains(t, lead.Message, "I want to rent")
	require.Empty(t, lead.PropertyID)
}

func TestIngestFromMailboxNoInboxIsNoop(t *testing.T) {
	uc := NewLeadUsecase(newMemoryLeadRepo(), &stubPropertyRepo{}, nil, nil, noopNotifier{})
	created, err := uc.IngestFromMailbox(context.Background())
	require.NoError(t, err)
	require.Zero(t, created)
}
