package portalsync

import (
	"context"
	"sync"
	"testing"

	"propdesk-backend/pkg/propertyfinder"

	"github.com/stretchr/testify/require"
)

type memoryLocationStore struct {
	mu        sync.Mutex
	locations map[string]*PfLocation
}

func newMemoryLocationStore() *memoryLocationStore {
	return &memoryLocationStore{locations: make(map[string]*PfLocation)}
}

func (s *memoryLocationStore) Get(id string) (*PfLocation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if loc, ok := s.locations[id]; ok {
		copied := *loc
		return &copied, nil
	}
	return nil, nil
}

func (s *memoryLocationStore) Insert(location *PfLocation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.locations[location.ID]; !ok {
		copied := *location
		s.locations[location.ID] = &copied
	}
	return nil
}

func (s *memoryLocationStore) Wipe() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.locations = make(map[string]*PfLocation)
	return nil
}

type countingLocationLookup struct {
	mu        sync.Mutex
	calls     int
	locations map[string]*propertyfinder.Location
}

func (l *countingLocationLookup) GetLocationByID(ctx context.Context, id string) (*propertyfinder.Location, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls++
	return l.locations[id], nil
}

func TestResolveCachesAfterFirstLookup(t *testing.T) {
	lookup := &countingLocationLookup{locations: map[string]*propertyfinder.Location{
		"loc-1": {ID: "loc-1", Path: "Dubai > Dubai Marina"},
	}}
	resolver := NewLocationResolver(newMemoryLocationStore(), lookup)

	path, err := resolver.Resolve(context.Background(), "loc-1")
	require.NoError(t, err)
	require.Equal(t, "Dubai > Dubai Marina", path)

	path, err = resolver.Resolve(context.Background(), "loc-1")
	require.NoError(t, err)
	require.Equal(t, "Dubai > Dubai Marina", path)

	require.Equal(t, 1, lookup.calls)
}

func TestResolveEmptyIDIsNoop(t *testing.T) {
	lookup := &countingLocationLookup{}
	resolver := NewLocationResolver(newMemoryLocationStore(), lookup)

	path, err := resolver.Resolve(context.Background(), "")
	require.NoError(t, err)
	require.Empty(t, path)
	require.Zero(t, lookup.calls)
}

func TestResolveNotFoundSentinelCached(t *testing.T) {
	lookup := &countingLocationLookup{locations: map[string]*propertyfinder.Location{}}
	resolver := NewLocationResolver(newMemoryLocationStore(), lookup)

	for i := 0; i < 3; i++ {
		path, err := resolver.Resolve(context.Background(), "loc-missing")
		require.NoError(t, err)
		require.Empty(t, path)
	}

	// The miss is persisted after the first portal call
	require.Equal(t, 1, lookup.calls)
}

func TestWipeForcesRelookup(t *testing.T) {
	lookup := &countingLocationLookup{locations: map[string]*propertyfinder.Location{
		"loc-1": {ID: "loc-1", Path: "Dubai > Downtown"},
	}}
	resolver := NewLocationResolver(newMemoryLocationStore(), lookup)

	_, err := resolver.Resolve(context.Background(), "loc-1")
	require.NoError(t, err)
	require.NoError(t, resolver.Wipe())

	path, err := resolver.Resolve(context.Background(), "loc-1")
	require.NoError(t, err)
	require.Equal(t, "Dubai > Downtown", path)
	require.Equal(t, 2, lookup.calls)
}

func TestWarmDedupesAndResolvesAll(t *testing.T) {
	lookup := &countingLocationLookup{locations: map[string]*propertyfinder.Location{
		"loc-1": {ID: "loc-1", Path: "Dubai > JLT"},
		"loc-2": {ID: "loc-2", Path: "Dubai > JBR"},
	}}
	store := newMemoryLocationStore()
	resolver := NewLocationResolver(store, lookup)

	resolver.Warm(context.Background(), []string{"loc-1", "loc-2", "loc-1", "", "loc-2"})

	require.Equal(t, 2, lookup.calls)
	path, err := resolver.Resolve(context.Background(), "loc-2")
	require.NoError(t, err)
	require.Equal(t, "Dubai > JBR", path)
	require.Equal(t, 2, lookup.calls)
}
