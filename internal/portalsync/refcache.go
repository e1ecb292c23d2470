package portalsync

import (
	"context"
	"log"
	"sync"
	"time"

	"propdesk-backend/pkg/propertyfinder"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// warmBatchSize bounds the number of concurrent location lookups during
// bulk import warm-up.
const warmBatchSize = 10

// PfLocation is a cached portal location. Entries are created lazily on
// first resolution and never expire; the portal's location taxonomy is
// effectively static. NotFound marks ids the portal confirmed unknown so
// they are never looked up again.
type PfLocation struct {
	ID        string  `json:"id" gorm:"primaryKey"`
	Path      string  `json:"path"`
	Name      string  `json:"name"`
	Type      string  `json:"type"`
	Lat       float64 `json:"lat"`
	Lng       float64 `json:"lng"`
	NotFound  bool    `json:"not_found"`
	CreatedAt time.Time
}

// LocationStore persists resolved locations.
type LocationStore interface {
	Get(id string) (*PfLocation, error)
	Insert(location *PfLocation) error
	Wipe() error
}

type gormLocationStore struct {
	db *gorm.DB
}

// NewLocationStore creates a GORM-backed LocationStore
func NewLocationStore(db *gorm.DB) LocationStore {
	return &gormLocationStore{db: db}
}

func (s *gormLocationStore) Get(id string) (*PfLocation, error) {
	var location PfLocation
	err := s.db.Where("id = ?", id).First(&location).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &location, nil
}

// Insert tolerates duplicate keys: cache values are immutable after the
// first write, so a concurrent resolver losing the insert race is fine.
func (s *gormLocationStore) Insert(location *PfLocation) error {
	location.CreatedAt = time.Now()
	return s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(location).Error
}

func (s *gormLocationStore) Wipe() error {
	return s.db.Where("1 = 1").Delete(&PfLocation{}).Error
}

// locationLookup is the slice of the portal client the resolver needs.
type locationLookup interface {
	GetLocationByID(ctx context.Context, id string) (*propertyfinder.Location, error)
}

// LocationResolver resolves portal location ids to display paths,
// cache-first. There is no invalidation path beyond Wipe.
type LocationResolver struct {
	store  LocationStore
	portal locationLookup
}

func NewLocationResolver(store LocationStore, portal locationLookup) *LocationResolver {
	return &LocationResolver{store: store, portal: portal}
}

// Resolve returns the display path for a location id, or "" when the
// portal does not know the id. The first resolution of an id hits the
// portal; every later one is served from the store, including confirmed
// not-found ids.
func (r *LocationResolver) Resolve(ctx context.Context, id string) (string, error) {
	if id == "" {
		return "", nil
	}

	cached, err := r.store.Get(id)
	if err != nil {
		return "", err
	}
	if cached != nil {
		if cached.NotFound {
			return "", nil
		}
		return cached.Path, nil
	}

	location, err := r.portal.GetLocationByID(ctx, id)
	if err != nil {
		return "", err
	}

	if location == nil {
		// Persist the miss so known-invalid ids never hit the portal again
		if insertErr := r.store.Insert(&PfLocation{ID: id, NotFound: true}); insertErr != nil {
			log.Printf("[RefCache] Failed to persist not-found sentinel for %s: %v", id, insertErr)
		}
		return "", nil
	}

	entry := &PfLocation{
		ID:   location.ID,
		Path: location.Path,
		Name: location.Name,
		Type: location.Type,
		Lat:  location.Lat,
		Lng:  location.Lng,
	}
	if insertErr := r.store.Insert(entry); insertErr != nil {
		log.Printf("[RefCache] Failed to persist location %s: %v", id, insertErr)
	}

	return location.Path, nil
}

// Warm resolves a set of ids ahead of a bulk import, in batches of
// warmBatchSize. Individual failures are logged and skipped.
func (r *LocationResolver) Warm(ctx context.Context, ids []string) {
	unique := make([]string, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		unique = append(unique, id)
	}

	for start := 0; start < len(unique); start += warmBatchSize {
		end := start + warmBatchSize
		if end > len(unique) {
			end = len(unique)
		}

		var wg sync.WaitGroup
		for _, id := range unique[start:end] {
			wg.Add(1)
			go func(id string) {
				defer wg.Done()
				if _, err := r.Resolve(ctx, id); err != nil {
					log.Printf("[RefCache] Warm-up failed for location %s: %v", id, err)
				}
			}(id)
		}
		wg.Wait()
	}
}

// Wipe clears the entire cache. Administrative escape hatch; the next
// resolutions repopulate it from the portal.
func (r *LocationResolver) Wipe() error {
	return r.store.Wipe()
}
