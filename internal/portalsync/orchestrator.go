package portalsync

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	agentdomain "propdesk-backend/internal/agent/domain"
	agentrepo "propdesk-backend/internal/agent/repository"
	notifdomain "propdesk-backend/internal/notification/domain"
	propdomain "propdesk-backend/internal/property/domain"
	proprepo "propdesk-backend/internal/property/repository"
	"propdesk-backend/pkg/propertyfinder"
)

var (
	// ErrNotSynced is returned by operations that require an existing
	// portal listing (publish, unpublish, verification).
	ErrNotSynced = errors.New("property has no portal listing")
	// ErrLocationRequired is returned by update-sync when no portal
	// location can be determined; the portal rejects location-less updates.
	ErrLocationRequired = errors.New("a portal location is required to sync this property")
	// ErrAgentProfileRequired is returned when verification is attempted
	// for a property whose agent has no resolved portal profile.
	ErrAgentProfileRequired = errors.New("agent has no portal public profile")
	// ErrPropertyNotFound is returned when the property id is unknown.
	ErrPropertyNotFound = errors.New("property not found")
)

// PortalAPI is the facade surface the orchestrator drives.
type PortalAPI interface {
	SearchLocations(ctx context.Context, term string) ([]propertyfinder.Location, error)
	GetLocationByID(ctx context.Context, id string) (*propertyfinder.Location, error)
	CreateListing(ctx context.Context, payload propertyfinder.ListingPayload) (*propertyfinder.Listing, error)
	UpdateListing(ctx context.Context, id string, payload propertyfinder.ListingPayload) error
	GetListing(ctx context.Context, id string) (*propertyfinder.Listing, error)
	GetListings(ctx context.Context, page, perPage int) (*propertyfinder.ListingPage, error)
	PublishListing(ctx context.Context, id string) error
	UnpublishListing(ctx context.Context, id string) error
	CheckVerificationEligibility(ctx context.Context, id string) (*propertyfinder.Eligibility, error)
	SubmitListingVerification(ctx context.Context, id, agentProfileID string) (*propertyfinder.VerificationSubmission, error)
}

// Notifier is the observational sink for sync outcomes. Implementations
// must be fire-and-forget; the orchestrator never checks for errors.
type Notifier interface {
	Notify(notifType notifdomain.NotificationType, title, message, propertyID string)
}

// Config carries the integration settings the orchestrator needs,
// resolved once at startup. CompanyLicense arrives already decrypted.
type Config struct {
	CompanyLicense  string
	ExportChunkSize int           // concurrent update-syncs per bulk-export chunk
	ExportChunkWait time.Duration // crude rate-limit between export chunks
	ImportChunkSize int           // concurrent upserts per bulk-import chunk
	ImportPageSize  int
	MaxImportPages  int // safety valve against malformed pagination metadata
}

func (c *Config) applyDefaults() {
	if c.ExportChunkSize <= 0 {
		c.ExportChunkSize = 5
	}
	if c.ExportChunkWait <= 0 {
		c.ExportChunkWait = time.Second
	}
	if c.ImportChunkSize <= 0 {
		c.ImportChunkSize = 20
	}
	if c.ImportPageSize <= 0 {
		c.ImportPageSize = 50
	}
	if c.MaxImportPages <= 0 {
		c.MaxImportPages = 50
	}
}

// BulkResult aggregates a bulk export or import pass.
type BulkResult struct {
	Total  int `json:"total"`
	Synced int `json:"synced"`
	Failed int `json:"failed"`
}

// Orchestrator coordinates the listing lifecycle against the portal.
// External failures never corrupt or block the internal write path:
// create-sync swallows errors into the notification feed, user-triggered
// syncs propagate the portal's status and body.
type Orchestrator struct {
	portal     PortalAPI
	properties proprepo.PropertyRepository
	agents     agentrepo.AgentRepository
	locations  *LocationResolver
	notifier   Notifier
	cfg        Config
}

func NewOrchestrator(portal PortalAPI, properties proprepo.PropertyRepository, agents agentrepo.AgentRepository, locations *LocationResolver, notifier Notifier, cfg Config) *Orchestrator {
	cfg.applyDefaults()
	return &Orchestrator{
		portal:     portal,
		properties: properties,
		agents:     agents,
		locations:  locations,
		notifier:   notifier,
		cfg:        cfg,
	}
}

// SyncToPropertyFinder creates the portal listing for a property. Runs on
// a queue worker, detached from the triggering request; the internal write
// has already succeeded and is never rolled back. Idempotent: a property
// that already has a listing is skipped, so PfListingID is set at most
// once across the property's lifetime.
func (o *Orchestrator) SyncToPropertyFinder(ctx context.Context, propertyID string, publish bool) error {
	property, err := o.properties.FindByID(propertyID)
	if err != nil {
		return err
	}
	if property == nil {
		return ErrPropertyNotFound
	}
	if property.PfListingID != "" {
		log.Printf("[Sync] Property %s already has listing %s, skipping create", propertyID, property.PfListingID)
		return nil
	}

	locationID, locationPath := o.resolveLocation(ctx, property)
	agentProfileID := o.resolveAgentProfile(property.AgentID)

	payload := BuildListingPayload(property, agentProfileID, locationID, o.cfg.CompanyLicense)

	listing, err := o.portal.CreateListing(ctx, payload)
	if err != nil {
		log.Printf("[Sync] Create failed for property %s (ref %s): %v", propertyID, property.ReferenceNo, err)
		o.notifier.Notify(notifdomain.NotificationError, "PropertyFinder sync failed",
			fmt.Sprintf("Could not create listing for %s: %v", property.ReferenceNo, err), propertyID)
		return err
	}

	now := time.Now()
	property.PfListingID = listing.ID
	property.PfLocationID = locationID
	property.PfLocationPath = locationPath
	property.PfSyncedAt = &now
	property.PfQualityScore = listing.QualityScore

	if publish {
		if err := o.portal.PublishListing(ctx, listing.ID); err != nil {
			// The listing exists but is not live; record what actually
			// happened, never a success that didn't.
			log.Printf("[Sync] Publish failed for property %s (listing %s): %v", propertyID, listing.ID, err)
			o.notifier.Notify(notifdomain.NotificationWarning, "Listing created but not published",
				fmt.Sprintf("Listing for %s was created but publishing failed: %v", property.ReferenceNo, err), propertyID)
		} else {
			property.PfPublished = true
		}
	}

	if listing.AutoVerifiable && agentProfileID != "" {
		if _, err := o.portal.SubmitListingVerification(ctx, listing.ID, agentProfileID); err != nil {
			log.Printf("[Sync] Auto-verification failed for listing %s: %v", listing.ID, err)
		} else {
			property.PfVerificationStatus = "pending"
		}
	}

	if err := o.properties.Update(property); err != nil {
		log.Printf("[Sync] Failed to persist sync markers for property %s: %v", propertyID, err)
		return err
	}

	o.notifier.Notify(notifdomain.NotificationSuccess, "Listing synced to PropertyFinder",
		fmt.Sprintf("%s is now listing %s", property.ReferenceNo, listing.ID), propertyID)
	return nil
}

// UpdateSync pushes the current internal state of a property to its
// portal listing via fetch-merge-push. Internal values win over portal
// values on every overlapping field; the push is a full replace. Errors
// propagate with the portal's status and body since this path backs
// explicit sync-now requests.
func (o *Orchestrator) UpdateSync(ctx context.Context, propertyID string) error {
	property, err := o.properties.FindByID(propertyID)
	if err != nil {
		return err
	}
	if property == nil {
		return ErrPropertyNotFound
	}

	if property.PfListingID == "" {
		return o.SyncToPropertyFinder(ctx, propertyID, false)
	}

	locationID, locationPath := o.resolveLocation(ctx, property)
	if locationID == "" {
		return ErrLocationRequired
	}

	agentProfileID := o.resolveAgentProfile(property.AgentID)
	payload := BuildListingPayload(property, agentProfileID, locationID, o.cfg.CompanyLicense)

	// Best-effort fetch: a failed read never blocks the push, the merge
	// just falls back to local data alone.
	remote, err := o.portal.GetListing(ctx, property.PfListingID)
	if err != nil {
		log.Printf("[Sync] Fetch of listing %s failed, pushing local data only: %v", property.PfListingID, err)
	}
	payload = mergeListing(payload, remote)

	if err := o.portal.UpdateListing(ctx, property.PfListingID, payload); err != nil {
		log.Printf("[Sync] Update failed for property %s (listing %s): %v", propertyID, property.PfListingID, err)
		o.notifier.Notify(notifdomain.NotificationError, "PropertyFinder update failed",
			fmt.Sprintf("Could not update listing %s for %s: %v", property.PfListingID, property.ReferenceNo, err), propertyID)
		return err
	}

	now := time.Now()
	property.PfLocationID = locationID
	property.PfLocationPath = locationPath
	property.PfSyncedAt = &now
	if err := o.properties.Update(property); err != nil {
		return err
	}

	o.notifier.Notify(notifdomain.NotificationSuccess, "Listing updated on PropertyFinder",
		fmt.Sprintf("%s pushed to listing %s", property.ReferenceNo, property.PfListingID), propertyID)
	return nil
}

// mergeListing layers the local payload over the fetched remote listing.
// Local values take precedence everywhere; remote values only fill fields
// the local record does not carry. With a nil remote (fetch failed or
// listing gone) the local payload passes through unchanged.
func mergeListing(local propertyfinder.ListingPayload, remote *propertyfinder.Listing) propertyfinder.ListingPayload {
	if remote == nil {
		return local
	}
	if local.FurnishingType == "" {
		local.FurnishingType = remote.FurnishingType
	}
	if local.ProjectStatus == "" {
		local.ProjectStatus = remote.ProjectStatus
	}
	if local.PublicProfile == "" && remote.User != nil {
		local.PublicProfile = remote.User.PublicProfileID
	}
	if len(local.Media.Images) == 0 {
		for _, url := range imagesFromListing(remote) {
			local.Media.Images = append(local.Media.Images, propertyfinder.PayloadImage{URL: url})
		}
	}
	return local
}

// Publish makes the listing live and records the outcome locally.
func (o *Orchestrator) Publish(ctx context.Context, propertyID string) error {
	property, err := o.properties.FindByID(propertyID)
	if err != nil {
		return err
	}
	if property == nil {
		return ErrPropertyNotFound
	}
	if property.PfListingID == "" {
		return ErrNotSynced
	}

	if err := o.portal.PublishListing(ctx, property.PfListingID); err != nil {
		return err
	}

	property.PfPublished = true
	return o.properties.Update(property)
}

// Unpublish takes the listing off the portal. Requires an existing
// listing; the facade is never called for unsynced properties.
func (o *Orchestrator) Unpublish(ctx context.Context, propertyID string) error {
	property, err := o.properties.FindByID(propertyID)
	if err != nil {
		return err
	}
	if property == nil {
		return ErrPropertyNotFound
	}
	if property.PfListingID == "" {
		return ErrNotSynced
	}

	if err := o.portal.UnpublishListing(ctx, property.PfListingID); err != nil {
		return err
	}

	property.PfPublished = false
	return o.properties.Update(property)
}

// SyncAllToPropertyFinder update-syncs every active property in chunks,
// with a fixed delay between chunks as a crude rate-limit. Per-item
// failures are counted, never abort the batch.
func (o *Orchestrator) SyncAllToPropertyFinder(ctx context.Context) (*BulkResult, error) {
	properties, err := o.properties.FindAllActive()
	if err != nil {
		return nil, err
	}

	result := &BulkResult{Total: len(properties)}
	var mu sync.Mutex

	for start := 0; start < len(properties); start += o.cfg.ExportChunkSize {
		end := start + o.cfg.ExportChunkSize
		if end > len(properties) {
			end = len(properties)
		}

		var wg sync.WaitGroup
		for _, property := range properties[start:end] {
			wg.Add(1)
			go func(id, ref string) {
				defer wg.Done()
				err := o.UpdateSync(ctx, id)
				mu.Lock()
				defer mu.Unlock()
				if err != nil {
					result.Failed++
					log.Printf("[Sync] Bulk export: %s failed: %v", ref, err)
				} else {
					result.Synced++
				}
			}(property.ID, property.ReferenceNo)
		}
		wg.Wait()

		if end < len(properties) {
			time.Sleep(o.cfg.ExportChunkWait)
		}
	}

	log.Printf("[Sync] Bulk export done: %d total, %d synced, %d failed", result.Total, result.Synced, result.Failed)
	return result, nil
}

// SyncFromPropertyFinder pulls every portal listing and upserts it into
// local storage. Pagination is capped by MaxImportPages so malformed
// pagination metadata cannot loop forever. The location cache and the
// agent/property lookup maps are warmed up front, turning per-item
// resolution into in-memory lookups.
func (o *Orchestrator) SyncFromPropertyFinder(ctx context.Context) (*BulkResult, error) {
	var listings []propertyfinder.Listing
	page := 1
	for {
		resp, err := o.portal.GetListings(ctx, page, o.cfg.ImportPageSize)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch listings page %d: %w", page, err)
		}
		listings = append(listings, resp.Results...)
		if page >= resp.Pagination.TotalPages || page >= o.cfg.MaxImportPages {
			break
		}
		page++
	}

	lookups, err := o.buildImportLookups()
	if err != nil {
		return nil, err
	}

	locationIDs := make([]string, 0, len(listings))
	for i := range listings {
		locationIDs = append(locationIDs, listings[i].Location.ID)
	}
	o.locations.Warm(ctx, locationIDs)

	result := &BulkResult{Total: len(listings)}
	var mu sync.Mutex

	for start := 0; start < len(listings); start += o.cfg.ImportChunkSize {
		end := start + o.cfg.ImportChunkSize
		if end > len(listings) {
			end = len(listings)
		}

		var wg sync.WaitGroup
		for i := start; i < end; i++ {
			wg.Add(1)
			go func(listing propertyfinder.Listing) {
				defer wg.Done()
				err := o.importListing(ctx, &listing, lookups)
				mu.Lock()
				defer mu.Unlock()
				if err != nil {
					result.Failed++
					log.Printf("[Sync] Bulk import: listing %s failed: %v", listing.ID, err)
				} else {
					result.Synced++
				}
			}(listings[i])
		}
		wg.Wait()
	}

	log.Printf("[Sync] Bulk import done: %d total, %d synced, %d failed", result.Total, result.Synced, result.Failed)
	return result, nil
}

func (o *Orchestrator) buildImportLookups() (*importLookups, error) {
	agents, err := o.agents.FindAll()
	if err != nil {
		return nil, err
	}
	properties, err := o.properties.FindAll()
	if err != nil {
		return nil, err
	}

	lookups := &importLookups{
		agentsByProfileID: make(map[string]*agentdomain.Agent, len(agents)),
		agentsByUserID:    make(map[string]*agentdomain.Agent, len(agents)),
		byListingID:       make(map[string]*propdomain.Property, len(properties)),
		byReference:       make(map[string]*propdomain.Property, len(properties)),
	}
	for _, agent := range agents {
		if agent.PfPublicProfileID != "" {
			lookups.agentsByProfileID[agent.PfPublicProfileID] = agent
		}
		if agent.PfUserID != "" {
			lookups.agentsByUserID[agent.PfUserID] = agent
		}
	}
	for _, property := range properties {
		if property.PfListingID != "" {
			lookups.byListingID[property.PfListingID] = property
		}
		if property.ReferenceNo != "" {
			lookups.byReference[property.ReferenceNo] = property
		}
	}
	return lookups, nil
}

func (o *Orchestrator) importListing(ctx context.Context, listing *propertyfinder.Listing, lookups *importLookups) error {
	locationPath, _ := o.locations.Resolve(ctx, listing.Location.ID)

	existing := lookups.byListingID[listing.ID]
	if existing == nil {
		if candidate := lookups.byReference[listing.Reference]; candidate != nil {
			// A reference match only links properties that have no listing
			// yet; PfListingID is set at most once per property.
			if candidate.PfListingID != "" && candidate.PfListingID != listing.ID {
				return fmt.Errorf("listing %s shares reference %s with property %s already linked to listing %s",
					listing.ID, listing.Reference, candidate.ID, candidate.PfListingID)
			}
			existing = candidate
		}
	}

	if existing != nil {
		// The lookup maps are shared across the chunk's goroutines; mutate
		// a copy, never the shared entry.
		updated := *existing
		applyListing(&updated, listing, lookups, locationPath)
		return o.properties.Update(&updated)
	}

	var property propdomain.Property
	applyListing(&property, listing, lookups, locationPath)
	return o.properties.Create(&property)
}

// SubmitVerification runs the local pre-checks (listing exists, is
// published, agent profile resolved) before calling the portal, then
// checks eligibility and submits. Pending status is recorded locally;
// the final verdict arrives via import or the event stream.
func (o *Orchestrator) SubmitVerification(ctx context.Context, propertyID string) error {
	property, err := o.properties.FindByID(propertyID)
	if err != nil {
		return err
	}
	if property == nil {
		return ErrPropertyNotFound
	}
	if property.PfListingID == "" {
		return ErrNotSynced
	}
	if !property.PfPublished {
		return errors.New("listing must be published before verification")
	}

	agentProfileID := o.resolveAgentProfile(property.AgentID)
	if agentProfileID == "" {
		return ErrAgentProfileRequired
	}

	eligibility, err := o.portal.CheckVerificationEligibility(ctx, property.PfListingID)
	if err != nil {
		return err
	}
	if !eligibility.Eligible {
		return fmt.Errorf("listing not eligible for verification: %s", eligibilityMessage(eligibility))
	}

	if _, err := o.portal.SubmitListingVerification(ctx, property.PfListingID, agentProfileID); err != nil {
		return err
	}

	property.PfVerificationStatus = "pending"
	if err := o.properties.Update(property); err != nil {
		return err
	}

	o.notifier.Notify(notifdomain.NotificationInfo, "Verification submitted",
		fmt.Sprintf("%s submitted for portal verification", property.ReferenceNo), propertyID)
	return nil
}

// eligibilityMessage flattens the portal's various failure shapes into
// one human-readable string.
func eligibilityMessage(e *propertyfinder.Eligibility) string {
	if e.Message != "" {
		return e.Message
	}
	if e.Reason != "" {
		return e.Reason
	}
	if len(e.Errors) > 0 {
		return strings.Join(e.Errors, "; ")
	}
	return "the portal did not give a reason"
}

// RefreshFromPortal pulls the listing's current publish, verification
// and quality state into the local record.
func (o *Orchestrator) RefreshFromPortal(ctx context.Context, propertyID string) error {
	property, err := o.properties.FindByID(propertyID)
	if err != nil {
		return err
	}
	if property == nil {
		return ErrPropertyNotFound
	}
	if property.PfListingID == "" {
		return ErrNotSynced
	}

	listing, err := o.portal.GetListing(ctx, property.PfListingID)
	if err != nil {
		return err
	}
	if listing == nil {
		return fmt.Errorf("listing %s no longer exists on the portal", property.PfListingID)
	}

	now := time.Now()
	property.PfPublished = listing.State == "live"
	property.PfQualityScore = listing.QualityScore
	if listing.Verification != nil {
		property.PfVerificationStatus = listing.Verification.Status
	}
	if property.AgentID == "" && listing.User != nil {
		if agent := o.agentByPortalUser(listing.User); agent != nil {
			property.AgentID = agent.ID
		}
	}
	property.PfSyncedAt = &now
	return o.properties.Update(property)
}

// agentByPortalUser matches the listing's portal user to a local agent,
// by public profile id first, then by portal user id.
func (o *Orchestrator) agentByPortalUser(user *propertyfinder.ListingUser) *agentdomain.Agent {
	if user.PublicProfileID != "" {
		agent, err := o.agents.FindByPfPublicProfileID(user.PublicProfileID)
		if err != nil {
			log.Printf("[Sync] Agent lookup by profile %s failed: %v", user.PublicProfileID, err)
		} else if agent != nil {
			return agent
		}
	}
	if user.ID != "" {
		agent, err := o.agents.FindByPfUserID(user.ID)
		if err != nil {
			log.Printf("[Sync] Agent lookup by portal user %s failed: %v", user.ID, err)
		} else if agent != nil {
			return agent
		}
	}
	return nil
}

// WipeLocationCache clears the location reference cache.
func (o *Orchestrator) WipeLocationCache() error {
	return o.locations.Wipe()
}

// resolveLocation returns the portal location id and path for a property:
// the explicit id when set, otherwise the first hit of a sequential
// fallback search across address-derived terms. Both may be empty; the
// caller decides whether that is acceptable.
func (o *Orchestrator) resolveLocation(ctx context.Context, property *propdomain.Property) (id, path string) {
	if property.PfLocationID != "" {
		path, err := o.locations.Resolve(ctx, property.PfLocationID)
		if err != nil {
			log.Printf("[Sync] Location resolve failed for %s: %v", property.PfLocationID, err)
		}
		if path != "" {
			return property.PfLocationID, path
		}
	}

	for _, term := range locationSearchTerms(property) {
		locations, err := o.portal.SearchLocations(ctx, term)
		if err != nil {
			log.Printf("[Sync] Location search %q failed: %v", term, err)
			continue
		}
		if len(locations) > 0 {
			return locations[0].ID, locations[0].Path
		}
	}
	return "", ""
}

func locationSearchTerms(property *propdomain.Property) []string {
	var terms []string
	add := func(term string) {
		term = strings.TrimSpace(term)
		if term == "" {
			return
		}
		for _, existing := range terms {
			if existing == term {
				return
			}
		}
		terms = append(terms, term)
	}
	if property.Community != "" && property.City != "" {
		add(property.Community + ", " + property.City)
	}
	add(property.Community)
	add(property.City)
	add(property.Emirate)
	return terms
}

// resolveAgentProfile returns the portal public profile id for the
// property's agent, or "" when the agent is missing or unlinked.
func (o *Orchestrator) resolveAgentProfile(agentID string) string {
	if agentID == "" {
		return ""
	}
	agent, err := o.agents.FindByID(agentID)
	if err != nil {
		log.Printf("[Sync] Agent lookup failed for %s: %v", agentID, err)
		return ""
	}
	if agent == nil {
		return ""
	}
	return agent.PfPublicProfileID
}
