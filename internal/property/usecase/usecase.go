package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"propdesk-backend/internal/portalsync"
	"propdesk-backend/internal/property/domain"
	"propdesk-backend/internal/property/repository"
	"propdesk-backend/pkg/ai"
	"propdesk-backend/pkg/chroma"
	"propdesk-backend/pkg/fuzzy"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	searchCacheTTL     = 60 * time.Second
	searchCacheVersion = "properties:search:version"
)

// SearchResult bundles a page of properties with the total match count
type SearchResult struct {
	Properties []*domain.Property `json:"properties"`
	Total      int64              `json:"total"`
}

// Suggestion is a lightweight search-as-you-type hit
type Suggestion struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	ReferenceNo string  `json:"reference_no"`
	Community   string  `json:"community"`
	Score       float64 `json:"score"`
}

// PropertyUsecase defines property business operations
type PropertyUsecase interface {
	CreateProperty(property *domain.Property) error
	GetProperty(id string) (*domain.Property, error)
	SearchProperties(ctx context.Context, filter repository.SearchFilter, limit, offset int) (*SearchResult, error)
	Suggest(query string, limit int) ([]Suggestion, error)
	UpdateProperty(property *domain.Property) error
	DeleteProperty(id string) error
	SimilarProperties(ctx context.Context, propertyID string, limit int) ([]*domain.Property, error)
	GenerateDescription(ctx context.Context, propertyID string, notes string) (string, error)
}

type propertyUsecase struct {
	properties repository.PropertyRepository
	queue      *portalsync.Queue
	cache      *redis.Client
	vectors    *chroma.ChromaClient
	descriptor ai.DescriptionService
}

// NewPropertyUsecase creates a property usecase. queue, cache, vectors
// and descriptor are all optional; missing ones disable the
// corresponding feature rather than failing.
func NewPropertyUsecase(
	properties repository.PropertyRepository,
	queue *portalsync.Queue,
	cache *redis.Client,
	vectors *chroma.ChromaClient,
	descriptor ai.DescriptionService,
) PropertyUsecase {
	return &propertyUsecase{
		properties: properties,
		queue:      queue,
		cache:      cache,
		vectors:    vectors,
		descriptor: descriptor,
	}
}

func (u *propertyUsecase) CreateProperty(property *domain.Property) error {
	if property.ReferenceNo == "" {
		property.ReferenceNo = "PD-" + strings.ToUpper(uuid.New().String()[:8])
	}
	if property.Status == "" {
		property.Status = domain.PropertyStatusActive
	}

	if err := u.properties.Create(property); err != nil {
		return err
	}

	u.invalidateSearchCache()
	u.upsertEmbedding(property)

	if u.queue != nil && property.Status == domain.PropertyStatusActive {
		u.queue.Enqueue(portalsync.SyncJob{Kind: portalsync.JobCreateSync, PropertyID: property.ID})
	}
	return nil
}

func (u *propertyUsecase) GetProperty(id string) (*domain.Property, error) {
	return u.properties.FindByID(id)
}

func (u *propertyUsecase) SearchProperties(ctx context.Context, filter repository.SearchFilter, limit, offset int) (*SearchResult, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	key := u.searchCacheKey(ctx, filter, limit, offset)
	if key != "" {
		if cached, err := u.cache.Get(ctx, key).Result(); err == nil {
			var result SearchResult
			if json.Unmarshal([]byte(cached), &result) == nil {
				return &result, nil
			}
		}
	}

	properties, total, err := u.properties.Search(filter, limit, offset)
	if err != nil {
		return nil, err
	}
	result := &SearchResult{Properties: properties, Total: total}

	if key != "" {
		if data, err := json.Marshal(result); err == nil {
			if err := u.cache.Set(ctx, key, data, searchCacheTTL).Err(); err != nil {
				log.Printf("[Properties] Failed to cache search result: %v", err)
			}
		}
	}
	return result, nil
}

// searchCacheKey derives a cache key from the filter plus a version
// counter that is bumped on every write, so stale pages age out
// without the cost of tracking individual keys.
func (u *propertyUsecase) searchCacheKey(ctx context.Context, filter repository.SearchFilter, limit, offset int) string {
	if u.cache == nil {
		return ""
	}
	version, err := u.cache.Get(ctx, searchCacheVersion).Result()
	if err != nil {
		version = "0"
	}

	raw, err := json.Marshal(struct {
		Filter repository.SearchFilter
		Limit  int
		Offset int
	}{filter, limit, offset})
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(raw)
	return fmt.Sprintf("properties:search:%s:%s", version, hex.EncodeToString(sum[:16]))
}

func (u *propertyUsecase) invalidateSearchCache() {
	if u.cache == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := u.cache.Incr(ctx, searchCacheVersion).Err(); err != nil {
		log.Printf("[Properties] Failed to bump search cache version: %v", err)
	}
}

// Suggest ranks active properties against a partial query for
// search-as-you-type. The active set is small enough to score in
// memory.
func (u *propertyUsecase) Suggest(query string, limit int) ([]Suggestion, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}
	if limit <= 0 || limit > 20 {
		limit = 8
	}

	properties, err := u.properties.FindAllActive()
	if err != nil {
		return nil, err
	}

	var suggestions []Suggestion
	for _, p := range properties {
		if !fuzzy.FuzzyMatchProperty(query, p.Title, p.ReferenceNo, p.Community, p.Address) {
			continue
		}
		suggestions = append(suggestions, Suggestion{
			ID:          p.ID,
			Title:       p.Title,
			ReferenceNo: p.ReferenceNo,
			Community:   p.Community,
			Score:       fuzzy.CalculateRelevanceScore(query, p.Title, p.ReferenceNo, p.Community),
		})
	}

	sort.Slice(suggestions, func(i, j int) bool {
		return suggestions[i].Score > suggestions[j].Score
	})
	if len(suggestions) > limit {
		suggestions = suggestions[:limit]
	}
	return suggestions, nil
}

func (u *propertyUsecase) UpdateProperty(property *domain.Property) error {
	existing, err := u.properties.FindByID(property.ID)
	if err != nil {
		return err
	}
	if existing == nil {
		return fmt.Errorf("property %s not found", property.ID)
	}

	// Portal linkage is owned by the sync engine, never by API writes
	property.ReferenceNo = existing.ReferenceNo
	property.PfListingID = existing.PfListingID
	property.PfLocationID = existing.PfLocationID
	property.PfLocationPath = existing.PfLocationPath
	property.PfPublished = existing.PfPublished
	property.PfVerificationStatus = existing.PfVerificationStatus
	property.PfQualityScore = existing.PfQualityScore
	property.PfSyncedAt = existing.PfSyncedAt
	property.CreatedAt = existing.CreatedAt

	if err := u.properties.Update(property); err != nil {
		return err
	}

	u.invalidateSearchCache()
	u.upsertEmbedding(property)

	if u.queue != nil && property.PfListingID != "" {
		u.queue.Enqueue(portalsync.SyncJob{Kind: portalsync.JobUpdateSync, PropertyID: property.ID})
	}
	return nil
}

func (u *propertyUsecase) DeleteProperty(id string) error {
	if err := u.properties.Delete(id); err != nil {
		return err
	}
	u.invalidateSearchCache()

	if u.vectors != nil {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := u.vectors.DeletePropertyEmbedding(ctx, id); err != nil {
				log.Printf("[Properties] Failed to delete embedding for %s: %v", id, err)
			}
		}()
	}
	return nil
}

// SimilarProperties finds listings close to the given one in embedding
// space, using its title and description as the query.
func (u *propertyUsecase) SimilarProperties(ctx context.Context, propertyID string, limit int) ([]*domain.Property, error) {
	if u.vectors == nil {
		return nil, fmt.Errorf("similar-property search is not configured")
	}
	if limit <= 0 || limit > 20 {
		limit = 5
	}

	property, err := u.properties.FindByID(propertyID)
	if err != nil {
		return nil, err
	}
	if property == nil {
		return nil, fmt.Errorf("property %s not found", propertyID)
	}

	query := property.Title + "\n" + property.Description
	// Fetch one extra so the property itself can be dropped from results
	ids, _, err := u.vectors.SimilarProperties(ctx, query, limit+1)
	if err != nil {
		return nil, err
	}

	var similar []*domain.Property
	for _, id := range ids {
		if id == propertyID {
			continue
		}
		match, err := u.properties.FindByID(id)
		if err != nil || match == nil {
			continue
		}
		similar = append(similar, match)
		if len(similar) == limit {
			break
		}
	}
	return similar, nil
}

// GenerateDescription drafts portal-ready marketing copy for a
// property using the configured AI provider.
func (u *propertyUsecase) GenerateDescription(ctx context.Context, propertyID string, notes string) (string, error) {
	if u.descriptor == nil {
		return "", fmt.Errorf("description generation is not configured")
	}

	property, err := u.properties.FindByID(propertyID)
	if err != nil {
		return "", err
	}
	if property == nil {
		return "", fmt.Errorf("property %s not found", propertyID)
	}

	brief := ai.PropertyBrief{
		Title:        property.Title,
		PropertyType: property.PropertyType,
		Purpose:      property.Purpose,
		Bedrooms:     property.Bedrooms,
		Bathrooms:    property.Bathrooms,
		Size:         property.Size,
		Community:    property.Community,
		Emirate:      property.Emirate,
		Price:        property.Price,
		Amenities:    property.Amenities,
		Notes:        notes,
	}
	return u.descriptor.GenerateDescription(ctx, brief)
}

// upsertEmbedding refreshes the property's vector off the request path.
func (u *propertyUsecase) upsertEmbedding(property *domain.Property) {
	if u.vectors == nil {
		return
	}
	id := property.ID
	title := property.Title
	description := property.Description
	metadata := map[string]interface{}{
		"property_type": property.PropertyType,
		"purpose":       property.Purpose,
		"community":     property.Community,
		"emirate":       property.Emirate,
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := u.vectors.UpsertPropertyEmbedding(ctx, id, title, description, metadata); err != nil {
			log.Printf("[Properties] Failed to upsert embedding for %s: %v", id, err)
		}
	}()
}
