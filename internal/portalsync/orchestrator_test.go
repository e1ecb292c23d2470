package portalsync

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	agentdomain "propdesk-backend/internal/agent/domain"
	notifdomain "propdesk-backend/internal/notification/domain"
	propdomain "propdesk-backend/internal/property/domain"
	proprepo "propdesk-backend/internal/property/repository"
	"propdesk-backend/pkg/propertyfinder"

	"github.com/stretchr/testify/require"
)

type memoryPropertyRepo struct {
	mu         sync.Mutex
	properties map[string]*propdomain.Property
	nextID     int
}

func newMemoryPropertyRepo(properties ...*propdomain.Property) *memoryPropertyRepo {
	repo := &memoryPropertyRepo{properties: make(map[string]*propdomain.Property)}
	for _, p := range properties {
		copied := *p
		repo.properties[p.ID] = &copied
	}
	return repo
}

func (r *memoryPropertyRepo) Create(p *propdomain.Property) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p.ID == "" {
		r.nextID++
		p.ID = fmt.Sprintf("generated-%d", r.nextID)
	}
	copied := *p
	r.properties[p.ID] = &copied
	return nil
}

func (r *memoryPropertyRepo) FindByID(id string) (*propdomain.Property, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.properties[id]; ok {
		copied := *p
		return &copied, nil
	}
	return nil, nil
}

func (r *memoryPropertyRepo) FindByReference(ref string) (*propdomain.Property, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.properties {
		if p.ReferenceNo == ref {
			copied := *p
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *memoryPropertyRepo) FindByPfListingID(listingID string) (*propdomain.Property, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.properties {
		if p.PfListingID == listingID {
			copied := *p
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *memoryPropertyRepo) Search(filter proprepo.SearchFilter, limit, offset int) ([]*propdomain.Property, int64, error) {
	all, _ := r.FindAll()
	return all, int64(len(all)), nil
}

func (r *memoryPropertyRepo) FindAllActive() ([]*propdomain.Property, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var active []*propdomain.Property
	for _, p := range r.properties {
		if p.Status == propdomain.PropertyStatusActive {
			copied := *p
			active = append(active, &copied)
		}
	}
	return active, nil
}

func (r *memoryPropertyRepo) FindAll() ([]*propdomain.Property, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var all []*propdomain.Property
	for _, p := range r.properties {
		copied := *p
		all = append(all, &copied)
	}
	return all, nil
}

func (r *memoryPropertyRepo) Update(p *propdomain.Property) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *p
	r.properties[p.ID] = &copied
	return nil
}

func (r *memoryPropertyRepo) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.properties, id)
	return nil
}

type memoryAgentRepo struct {
	agents map[string]*agentdomain.Agent
}

func newMemoryAgentRepo(agents ...*agentdomain.Agent) *memoryAgentRepo {
	repo := &memoryAgentRepo{agents: make(map[string]*agentdomain.Agent)}
	for _, a := range agents {
		repo.agents[a.ID] = a
	}
	return repo
}

func (r *memoryAgentRepo) Create(a *agentdomain.Agent) error { r.agents[a.ID] = a; return nil }
func (r *memoryAgentRepo) FindByID(id string) (*agentdomain.Agent, error) {
	return r.agents[id], nil
}
func (r *memoryAgentRepo) FindByPfUserID(pfUserID string) (*agentdomain.Agent, error) {
	for _, a := range r.agents {
		if a.PfUserID == pfUserID {
			return a, nil
		}
	}
	return nil, nil
}
func (r *memoryAgentRepo) FindByPfPublicProfileID(profileID string) (*agentdomain.Agent, error) {
	for _, a := range r.agents {
		if a.PfPublicProfileID == profileID {
			return a, nil
		}
	}
	return nil, nil
}
func (r *memoryAgentRepo) FindAll() ([]*agentdomain.Agent, error) {
	var all []*agentdomain.Agent
	for _, a := range r.agents {
		all = append(all, a)
	}
	return all, nil
}
func (r *memoryAgentRepo) Update(a *agentdomain.Agent) error { r.agents[a.ID] = a; return nil }
func (r *memoryAgentRepo) Delete(id string) error            { delete(r.agents, id); return nil }

// fakePortal records calls and lets each operation be overridden per test.
type fakePortal struct {
	mu    sync.Mutex
	calls map[string]int

	searchLocationsFn func(term string) ([]propertyfinder.Location, error)
	getLocationFn     func(id string) (*propertyfinder.Location, error)
	createListingFn   func(payload propertyfinder.ListingPayload) (*propertyfinder.Listing, error)
	updateListingFn   func(id string, payload propertyfinder.ListingPayload) error
	getListingFn      func(id string) (*propertyfinder.Listing, error)
	getListingsFn     func(page, perPage int) (*propertyfinder.ListingPage, error)
	publishFn         func(id string) error
	unpublishFn       func(id string) error
	eligibilityFn     func(id string) (*propertyfinder.Eligibility, error)
	submitFn          func(id, profileID string) (*propertyfinder.VerificationSubmission, error)
}

func newFakePortal() *fakePortal {
	return &fakePortal{calls: make(map[string]int)}
}

func (f *fakePortal) record(op string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[op]++
}

func (f *fakePortal) callCount(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

func (f *fakePortal) SearchLocations(ctx context.Context, term string) ([]propertyfinder.Location, error) {
	f.record("SearchLocations")
	if f.searchLocationsFn != nil {
		return f.searchLocationsFn(term)
	}
	return []propertyfinder.Location{{ID: "loc-1", Path: "Dubai > " + term}}, nil
}

func (f *fakePortal) GetLocationByID(ctx context.Context, id string) (*propertyfinder.Location, error) {
	f.record("GetLocationByID")
	if f.getLocationFn != nil {
		return f.getLocationFn(id)
	}
	return &propertyfinder.Location{ID: id, Path: "Dubai > Somewhere"}, nil
}

func (f *fakePortal) CreateListing(ctx context.Context, payload propertyfinder.ListingPayload) (*propertyfinder.Listing, error) {
	f.record("CreateListing")
	if f.createListingFn != nil {
		return f.createListingFn(payload)
	}
	return &propertyfinder.Listing{ID: "lst-new", Reference: payload.Reference}, nil
}

func (f *fakePortal) UpdateListing(ctx context.Context, id string, payload propertyfinder.ListingPayload) error {
	f.record("UpdateListing")
	if f.updateListingFn != nil {
		return f.updateListingFn(id, payload)
	}
	return nil
}

func (f *fakePortal) GetListing(ctx context.Context, id string) (*propertyfinder.Listing, error) {
	f.record("GetListing")
	if f.getListingFn != nil {
		return f.getListingFn(id)
	}
	return &propertyfinder.Listing{ID: id}, nil
}

func (f *fakePortal) GetListings(ctx context.Context, page, perPage int) (*propertyfinder.ListingPage, error) {
	f.record("GetListings")
	if f.getListingsFn != nil {
		return f.getListingsFn(page, perPage)
	}
	return &propertyfinder.ListingPage{Pagination: propertyfinder.Pagination{TotalPages: 1}}, nil
}

func (f *fakePortal) PublishListing(ctx context.Context, id string) error {
	f.record("PublishListing")
	if f.publishFn != nil {
		return f.publishFn(id)
	}
	return nil
}

func (f *fakePortal) UnpublishListing(ctx context.Context, id string) error {
	f.record("UnpublishListing")
	if f.unpublishFn != nil {
		return f.unpublishFn(id)
	}
	return nil
}

func (f *fakePortal) CheckVerificationEligibility(ctx context.Context, id string) (*propertyfinder.Eligibility, error) {
	f.record("CheckVerificationEligibility")
	if f.eligibilityFn != nil {
		return f.eligibilityFn(id)
	}
	return &propertyfinder.Eligibility{Eligible: true}, nil
}

func (f *fakePortal) SubmitListingVerification(ctx context.Context, id, profileID string) (*propertyfinder.VerificationSubmission, error) {
	f.record("SubmitListingVerification")
	if f.submitFn != nil {
		return f.submitFn(id, profileID)
	}
	return &propertyfinder.VerificationSubmission{Status: "pending"}, nil
}

type recordedNotification struct {
	Type    notifdomain.NotificationType
	Title   string
	Message string
}

type fakeNotifier struct {
	mu            sync.Mutex
	notifications []recordedNotification
}

func (n *fakeNotifier) Notify(notifType notifdomain.NotificationType, title, message, propertyID string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notifications = append(n.notifications, recordedNotification{notifType, title, message})
}

func (n *fakeNotifier) ofType(notifType notifdomain.NotificationType) []recordedNotification {
	n.mu.Lock()
	defer n.mu.Unlock()
	var matched []recordedNotification
	for _, notif := range n.notifications {
		if notif.Type == notifType {
			matched = append(matched, notif)
		}
	}
	return matched
}

func newTestOrchestrator(portal *fakePortal, properties *memoryPropertyRepo, agents *memoryAgentRepo) (*Orchestrator, *fakeNotifier) {
	notifier := &fakeNotifier{}
	resolver := NewLocationResolver(newMemoryLocationStore(), portal)
	orchestrator := NewOrchestrator(portal, properties, agents, resolver, notifier, Config{
		CompanyLicense:  "CN-1234567",
		ExportChunkWait: time.Millisecond,
	})
	return orchestrator, notifier
}

func syncedProperty(id string) *propdomain.Property {
	p := testProperty()
	p.ID = id
	p.ReferenceNo = "PD-" + id
	p.Status = propdomain.PropertyStatusActive
	p.PfListingID = "lst-" + id
	p.PfLocationID = "loc-1"
	p.PfPublished = true
	return p
}

func TestSyncToPropertyFinderSetsListingID(t *testing.T) {
	p := testProperty()
	p.Status = propdomain.PropertyStatusActive
	repo := newMemoryPropertyRepo(p)
	portal := newFakePortal()
	orchestrator, notifier := newTestOrchestrator(portal, repo, newMemoryAgentRepo())

	require.NoError(t, orchestrator.SyncToPropertyFinder(context.Background(), p.ID, false))

	saved, _ := repo.FindByID(p.ID)
	require.Equal(t, "lst-new", saved.PfListingID)
	require.False(t, saved.PfPublished)
	require.NotNil(t, saved.PfSyncedAt)
	require.Len(t, notifier.ofType(notifdomain.NotificationSuccess), 1)
}

func TestSyncToPropertyFinderIdempotent(t *testing.T) {
	p := syncedProperty("prop-1")
	repo := newMemoryPropertyRepo(p)
	portal := newFakePortal()
	orchestrator, _ := newTestOrchestrator(portal, repo, newMemoryAgentRepo())

	require.NoError(t, orchestrator.SyncToPropertyFinder(context.Background(), p.ID, true))
	require.Zero(t, portal.callCount("CreateListing"))

	saved, _ := repo.FindByID(p.ID)
	require.Equal(t, "lst-prop-1", saved.PfListingID)
}

func TestSyncToPropertyFinderUnknownProperty(t *testing.T) {
	orchestrator, _ := newTestOrchestrator(newFakePortal(), newMemoryPropertyRepo(), newMemoryAgentRepo())
	err := orchestrator.SyncToPropertyFinder(context.Background(), "missing", false)
	require.ErrorIs(t, err, ErrPropertyNotFound)
}

func TestSyncPublishFailureRecordedAsUnpublished(t *testing.T) {
	p := testProperty()
	repo := newMemoryPropertyRepo(p)
	portal := newFakePortal()
	portal.publishFn = func(id string) error {
		return &propertyfinder.APIError{StatusCode: 422, Body: "quality too low"}
	}
	orchestrator, notifier := newTestOrchestrator(portal, repo, newMemoryAgentRepo())

	require.NoError(t, orchestrator.SyncToPropertyFinder(context.Background(), p.ID, true))

	saved, _ := repo.FindByID(p.ID)
	require.Equal(t, "lst-new", saved.PfListingID)
	require.False(t, saved.PfPublished)

	warnings := notifier.ofType(notifdomain.NotificationWarning)
	require.Len(t, warnings, 1)
	require.Contains(t, warnings[0].Message, "publishing failed")
}

func TestSyncCreateFailureNotifiesError(t *testing.T) {
	p := testProperty()
	repo := newMemoryPropertyRepo(p)
	portal := newFakePortal()
	portal.createListingFn = func(payload propertyfinder.ListingPayload) (*propertyfinder.Listing, error) {
		return nil, &propertyfinder.APIError{StatusCode: 400, Body: "bad payload"}
	}
	orchestrator, notifier := newTestOrchestrator(portal, repo, newMemoryAgentRepo())

	err := orchestrator.SyncToPropertyFinder(context.Background(), p.ID, false)
	require.Error(t, err)

	var apiErr *propertyfinder.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, 400, apiErr.StatusCode)

	saved, _ := repo.FindByID(p.ID)
	require.Empty(t, saved.PfListingID)
	require.Len(t, notifier.ofType(notifdomain.NotificationError), 1)
}

func TestSyncAutoVerifiesWhenEligible(t *testing.T) {
	agent := &agentdomain.Agent{ID: "agent-1", PfPublicProfileID: "profile-9"}
	p := testProperty()
	p.AgentID = agent.ID
	repo := newMemoryPropertyRepo(p)
	portal := newFakePortal()
	portal.createListingFn = func(payload propertyfinder.ListingPayload) (*propertyfinder.Listing, error) {
		return &propertyfinder.Listing{ID: "lst-new", AutoVerifiable: true}, nil
	}
	orchestrator, _ := newTestOrchestrator(portal, repo, newMemoryAgentRepo(agent))

	require.NoError(t, orchestrator.SyncToPropertyFinder(context.Background(), p.ID, false))
	require.Equal(t, 1, portal.callCount("SubmitListingVerification"))

	saved, _ := repo.FindByID(p.ID)
	require.Equal(t, "pending", saved.PfVerificationStatus)
}

func TestSyncNoAutoVerifyWithoutAgentProfile(t *testing.T) {
	p := testProperty()
	repo := newMemoryPropertyRepo(p)
	portal := newFakePortal()
	portal.createListingFn = func(payload propertyfinder.ListingPayload) (*propertyfinder.Listing, error) {
		return &propertyfinder.Listing{ID: "lst-new", AutoVerifiable: true}, nil
	}
	orchestrator, _ := newTestOrchestrator(portal, repo, newMemoryAgentRepo())

	require.NoError(t, orchestrator.SyncToPropertyFinder(context.Background(), p.ID, false))
	require.Zero(t, portal.callCount("SubmitListingVerification"))
}

func TestUpdateSyncUnsyncedBehavesAsCreate(t *testing.T) {
	p := testProperty()
	repo := newMemoryPropertyRepo(p)
	portal := newFakePortal()
	orchestrator, _ := newTestOrchestrator(portal, repo, newMemoryAgentRepo())

	require.NoError(t, orchestrator.UpdateSync(context.Background(), p.ID))
	require.Equal(t, 1, portal.callCount("CreateListing"))
	require.Zero(t, portal.callCount("UpdateListing"))
}

func TestUpdateSyncFetchFailureStillPushes(t *testing.T) {
	p := syncedProperty("prop-1")
	repo := newMemoryPropertyRepo(p)
	portal := newFakePortal()
	portal.getListingFn = func(id string) (*propertyfinder.Listing, error) {
		return nil, errors.New("portal timeout")
	}
	orchestrator, _ := newTestOrchestrator(portal, repo, newMemoryAgentRepo())

	require.NoError(t, orchestrator.UpdateSync(context.Background(), p.ID))
	require.Equal(t, 1, portal.callCount("UpdateListing"))
}

func TestUpdateSyncRequiresLocation(t *testing.T) {
	p := syncedProperty("prop-1")
	p.PfLocationID = ""
	p.Community = ""
	p.City = ""
	p.Emirate = ""
	repo := newMemoryPropertyRepo(p)
	portal := newFakePortal()
	portal.searchLocationsFn = func(term string) ([]propertyfinder.Location, error) {
		return nil, nil
	}
	orchestrator, _ := newTestOrchestrator(portal, repo, newMemoryAgentRepo())

	err := orchestrator.UpdateSync(context.Background(), p.ID)
	require.ErrorIs(t, err, ErrLocationRequired)
	require.Zero(t, portal.callCount("UpdateListing"))
}

func TestUpdateSyncPropagatesAPIError(t *testing.T) {
	p := syncedProperty("prop-1")
	repo := newMemoryPropertyRepo(p)
	portal := newFakePortal()
	portal.updateListingFn = func(id string, payload propertyfinder.ListingPayload) error {
		return &propertyfinder.APIError{StatusCode: 422, Body: "invalid permit"}
	}
	orchestrator, _ := newTestOrchestrator(portal, repo, newMemoryAgentRepo())

	err := orchestrator.UpdateSync(context.Background(), p.ID)
	var apiErr *propertyfinder.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, 422, apiErr.StatusCode)
	require.Contains(t, apiErr.Body, "invalid permit")
}

func TestMergeListingLocalWins(t *testing.T) {
	local := propertyfinder.ListingPayload{
		FurnishingType: "furnished",
		ProjectStatus:  "completed",
	}
	remote := &propertyfinder.Listing{
		FurnishingType: "unfurnished",
		ProjectStatus:  "off_plan",
		User:           &propertyfinder.ListingUser{PublicProfileID: "profile-remote"},
		Media: propertyfinder.ListingMedia{Images: []propertyfinder.ListingImage{
			{URL: "https://img/remote.jpg"},
		}},
	}

	merged := mergeListing(local, remote)
	require.Equal(t, "furnished", merged.FurnishingType)
	require.Equal(t, "completed", merged.ProjectStatus)
	// Remote only fills what local lacks
	require.Equal(t, "profile-remote", merged.PublicProfile)
	require.Len(t, merged.Media.Images, 1)
}

func TestMergeListingNilRemotePassthrough(t *testing.T) {
	local := propertyfinder.ListingPayload{FurnishingType: "furnished"}
	require.Equal(t, local, mergeListing(local, nil))
}

func TestUnpublishRequiresListing(t *testing.T) {
	p := testProperty()
	repo := newMemoryPropertyRepo(p)
	portal := newFakePortal()
	orchestrator, _ := newTestOrchestrator(portal, repo, newMemoryAgentRepo())

	err := orchestrator.Unpublish(context.Background(), p.ID)
	require.ErrorIs(t, err, ErrNotSynced)
	require.Zero(t, portal.callCount("UnpublishListing"))
}

func TestPublishAndUnpublishUpdateLocalFlag(t *testing.T) {
	p := syncedProperty("prop-1")
	p.PfPublished = false
	repo := newMemoryPropertyRepo(p)
	orchestrator, _ := newTestOrchestrator(newFakePortal(), repo, newMemoryAgentRepo())

	require.NoError(t, orchestrator.Publish(context.Background(), p.ID))
	saved, _ := repo.FindByID(p.ID)
	require.True(t, saved.PfPublished)

	require.NoError(t, orchestrator.Unpublish(context.Background(), p.ID))
	saved, _ = repo.FindByID(p.ID)
	require.False(t, saved.PfPublished)
}

func TestBulkExportCountsFailures(t *testing.T) {
	good := syncedProperty("prop-good")
	bad := syncedProperty("prop-bad")
	repo := newMemoryPropertyRepo(good, bad)
	portal := newFakePortal()
	portal.updateListingFn = func(id string, payload propertyfinder.ListingPayload) error {
		if id == bad.PfListingID {
			return errors.New("rejected")
		}
		return nil
	}
	orchestrator, _ := newTestOrchestrator(portal, repo, newMemoryAgentRepo())

	result, err := orchestrator.SyncAllToPropertyFinder(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, result.Total)
	require.Equal(t, 1, result.Synced)
	require.Equal(t, 1, result.Failed)
}

func TestBulkImportUpsertsByListingIDAndReference(t *testing.T) {
	existing := syncedProperty("prop-1")
	byRef := testProperty()
	byRef.ID = "prop-2"
	byRef.ReferenceNo = "PD-REF-ONLY"
	repo := newMemoryPropertyRepo(existing, byRef)

	portal := newFakePortal()
	portal.getListingsFn = func(page, perPage int) (*propertyfinder.ListingPage, error) {
		return &propertyfinder.ListingPage{
			Results: []propertyfinder.Listing{
				{ID: existing.PfListingID, Reference: existing.ReferenceNo, State: "live",
					Location: propertyfinder.ListingLocation{ID: "loc-1"},
					Price:    propertyfinder.Price{Type: "sale", Amounts: map[string]float64{"sale": 100}}},
				{ID: "lst-matched-by-ref", Reference: "PD-REF-ONLY", State: "draft",
					Location: propertyfinder.ListingLocation{ID: "loc-1"},
					Price:    propertyfinder.Price{Type: "sale", Amounts: map[string]float64{"sale": 200}}},
				{ID: "lst-brand-new", Reference: "PD-NEW-001", State: "live",
					Location: propertyfinder.ListingLocation{ID: "loc-2"},
					Price:    propertyfinder.Price{Type: "sale", Amounts: map[string]float64{"sale": 300}}},
			},
			Pagination: propertyfinder.Pagination{TotalPages: 1},
		}, nil
	}
	orchestrator, _ := newTestOrchestrator(portal, repo, newMemoryAgentRepo())

	result, err := orchestrator.SyncFromPropertyFinder(context.Background())
	require.NoError(t, err)
	require.Equal(t, 3, result.Total)
	require.Equal(t, 3, result.Synced)
	require.Zero(t, result.Failed)

	// Matched by reference gets linked to its listing
	linked, _ := repo.FindByReference("PD-REF-ONLY")
	require.Equal(t, "lst-matched-by-ref", linked.PfListingID)

	// Unmatched listing creates a new property
	created, _ := repo.FindByReference("PD-NEW-001")
	require.NotNil(t, created)
	require.Equal(t, "lst-brand-new", created.PfListingID)

	all, _ := repo.FindAll()
	require.Len(t, all, 3)
}

func TestBulkImportNeverRelinksSyncedProperty(t *testing.T) {
	existing := syncedProperty("prop-1")
	repo := newMemoryPropertyRepo(existing)

	portal := newFakePortal()
	portal.getListingsFn = func(page, perPage int) (*propertyfinder.ListingPage, error) {
		return &propertyfinder.ListingPage{
			Results: []propertyfinder.Listing{
				// Same reference as prop-1 but a different listing id
				{ID: "lst-duplicate", Reference: existing.ReferenceNo, State: "live",
					Location: propertyfinder.ListingLocation{ID: "loc-1"},
					Price:    propertyfinder.Price{Type: "sale", Amounts: map[string]float64{"sale": 100}}},
			},
			Pagination: propertyfinder.Pagination{TotalPages: 1},
		}, nil
	}
	orchestrator, _ := newTestOrchestrator(portal, repo, newMemoryAgentRepo())

	result, err := orchestrator.SyncFromPropertyFinder(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, result.Total)
	require.Zero(t, result.Synced)
	require.Equal(t, 1, result.Failed)

	saved, _ := repo.FindByID(existing.ID)
	require.Equal(t, "lst-prop-1", saved.PfListingID)

	// The conflicting listing is skipped, not imported as a new property
	all, _ := repo.FindAll()
	require.Len(t, all, 1)
}

func TestBulkImportPageCapStopsPagination(t *testing.T) {
	repo := newMemoryPropertyRepo()
	portal := newFakePortal()
	portal.getListingsFn = func(page, perPage int) (*propertyfinder.ListingPage, error) {
		// Claims endless pages
		return &propertyfinder.ListingPage{Pagination: propertyfinder.Pagination{TotalPages: 9999}}, nil
	}
	notifier := &fakeNotifier{}
	resolver := NewLocationResolver(newMemoryLocationStore(), portal)
	orchestrator := NewOrchestrator(portal, repo, newMemoryAgentRepo(), resolver, notifier, Config{MaxImportPages: 3})

	_, err := orchestrator.SyncFromPropertyFinder(context.Background())
	require.NoError(t, err)
	require.Equal(t, 3, portal.callCount("GetListings"))
}

func TestSubmitVerificationPreChecks(t *testing.T) {
	agent := &agentdomain.Agent{ID: "agent-1", PfPublicProfileID: "profile-9"}
	agents := newMemoryAgentRepo(agent)

	// Not synced
	unsynced := testProperty()
	orchestrator, _ := newTestOrchestrator(newFakePortal(), newMemoryPropertyRepo(unsynced), agents)
	require.ErrorIs(t, orchestrator.SubmitVerification(context.Background(), unsynced.ID), ErrNotSynced)

	// Not published
	unpublished := syncedProperty("prop-1")
	unpublished.PfPublished = false
	orchestrator, _ = newTestOrchestrator(newFakePortal(), newMemoryPropertyRepo(unpublished), agents)
	require.Error(t, orchestrator.SubmitVerification(context.Background(), unpublished.ID))

	// No agent profile
	noAgent := syncedProperty("prop-2")
	noAgent.AgentID = ""
	portal := newFakePortal()
	orchestrator, _ = newTestOrchestrator(portal, newMemoryPropertyRepo(noAgent), agents)
	require.ErrorIs(t, orchestrator.SubmitVerification(context.Background(), noAgent.ID), ErrAgentProfileRequired)
	require.Zero(t, portal.callCount("CheckVerificationEligibility"))
}

func TestSubmitVerificationIneligible(t *testing.T) {
	agent := &agentdomain.Agent{ID: "agent-1", PfPublicProfileID: "profile-9"}
	p := syncedProperty("prop-1")
	p.AgentID = agent.ID
	portal := newFakePortal()
	portal.eligibilityFn = func(id string) (*propertyfinder.Eligibility, error) {
		return &propertyfinder.Eligibility{Eligible: false, Message: "quality score too low"}, nil
	}
	orchestrator, _ := newTestOrchestrator(portal, newMemoryPropertyRepo(p), newMemoryAgentRepo(agent))

	err := orchestrator.SubmitVerification(context.Background(), p.ID)
	require.Error(t, err)
	require.Contains(t, err.Error(), "quality score too low")
	require.Zero(t, portal.callCount("SubmitListingVerification"))
}

func TestSubmitVerificationRecordsPending(t *testing.T) {
	agent := &agentdomain.Agent{ID: "agent-1", PfPublicProfileID: "profile-9"}
	p := syncedProperty("prop-1")
	p.AgentID = agent.ID
	repo := newMemoryPropertyRepo(p)
	orchestrator, _ := newTestOrchestrator(newFakePortal(), repo, newMemoryAgentRepo(agent))

	require.NoError(t, orchestrator.SubmitVerification(context.Background(), p.ID))
	saved, _ := repo.FindByID(p.ID)
	require.Equal(t, "pending", saved.PfVerificationStatus)
}

func TestRefreshFromPortalPullsState(t *testing.T) {
	p := syncedProperty("prop-1")
	p.PfPublished = true
	repo := newMemoryPropertyRepo(p)
	portal := newFakePortal()
	portal.getListingFn = func(id string) (*propertyfinder.Listing, error) {
		return &propertyfinder.Listing{
			ID: id, State: "draft", QualityScore: 61.5,
			Verification: &propertyfinder.Verification{Status: "rejected"},
		}, nil
	}
	orchestrator, _ := newTestOrchestrator(portal, repo, newMemoryAgentRepo())

	require.NoError(t, orchestrator.RefreshFromPortal(context.Background(), p.ID))
	saved, _ := repo.FindByID(p.ID)
	require.False(t, saved.PfPublished)
	require.Equal(t, 61.5, saved.PfQualityScore)
	require.Equal(t, "rejected", saved.PfVerificationStatus)
}

func TestRefreshFromPortalResolvesAgent(t *testing.T) {
	agent := &agentdomain.Agent{ID: "agent-7", PfUserID: "pf-user-7", PfPublicProfileID: "profile-7"}
	p := syncedProperty("prop-1")
	p.AgentID = ""
	repo := newMemoryPropertyRepo(p)
	portal := newFakePortal()
	portal.getListingFn = func(id string) (*propertyfinder.Listing, error) {
		return &propertyfinder.Listing{ID: id, State: "live",
			User: &propertyfinder.ListingUser{PublicProfileID: "profile-7"}}, nil
	}
	orchestrator, _ := newTestOrchestrator(portal, repo, newMemoryAgentRepo(agent))

	require.NoError(t, orchestrator.RefreshFromPortal(context.Background(), p.ID))
	saved, _ := repo.FindByID(p.ID)
	require.Equal(t, "agent-7", saved.AgentID)
}

func TestRefreshFromPortalKeepsAssignedAgent(t *testing.T) {
	other := &agentdomain.Agent{ID: "agent-9", PfUserID: "pf-user-9"}
	p := syncedProperty("prop-1")
	p.AgentID = "agent-local"
	repo := newMemoryPropertyRepo(p)
	portal := newFakePortal()
	portal.getListingFn = func(id string) (*propertyfinder.Listing, error) {
		return &propertyfinder.Listing{ID: id, State: "live",
			User: &propertyfinder.ListingUser{ID: "pf-user-9"}}, nil
	}
	orchestrator, _ := newTestOrchestrator(portal, repo, newMemoryAgentRepo(other))

	require.NoError(t, orchestrator.RefreshFromPortal(context.Background(), p.ID))
	saved, _ := repo.FindByID(p.ID)
	require.Equal(t, "agent-local", saved.AgentID)
}

func TestAgentByPortalUserFallsBackToUserID(t *testing.T) {
	agent := &agentdomain.Agent{ID: "agent-3", PfUserID: "pf-user-3"}
	orchestrator, _ := newTestOrchestrator(newFakePortal(), newMemoryPropertyRepo(), newMemoryAgentRepo(agent))

	matched := orchestrator.agentByPortalUser(&propertyfinder.ListingUser{ID: "pf-user-3", PublicProfileID: "unknown"})
	require.NotNil(t, matched)
	require.Equal(t, "agent-3", matched.ID)

	require.Nil(t, orchestrator.agentByPortalUser(&propertyfinder.ListingUser{ID: "nobody"}))
}

func TestLocationSearchTermsFallbackOrder(t *testing.T) {
	p := &propdomain.Property{Community: "Dubai Marina", City: "Dubai", Emirate: "Dubai"}
	require.Equal(t, []string{"Dubai Marina, Dubai", "Dubai Marina", "Dubai"}, locationSearchTerms(p))

	p = &propdomain.Property{Emirate: "Sharjah"}
	require.Equal(t, []string{"Sharjah"}, locationSearchTerms(p))
}

func TestEligibilityMessagePrecedence(t *testing.T) {
	require.Equal(t, "msg", eligibilityMessage(&propertyfinder.Eligibility{Message: "msg", Reason: "reason"}))
	require.Equal(t, "reason", eligibilityMessage(&propertyfinder.Eligibility{Reason: "reason"}))
	require.Equal(t, "a; b", eligibilityMessage(&propertyfinder.Eligibility{Errors: []string{"a", "b"}}))
	require.Equal(t, "the portal did not give a reason", eligibilityMessage(&propertyfinder.Eligibility{}))
}
