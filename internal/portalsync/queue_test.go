package portalsync

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEnqueueNeverBlocks(t *testing.T) {
	// No workers started: the buffer fills and further jobs are dropped
	q := NewQueue(nil, 1, 2)

	require.True(t, q.Enqueue(SyncJob{Kind: JobCreateSync, PropertyID: "p1"}))
	require.True(t, q.Enqueue(SyncJob{Kind: JobUpdateSync, PropertyID: "p2"}))
	require.False(t, q.Enqueue(SyncJob{Kind: JobUpdateSync, PropertyID: "p3"}))
}

func TestQueueProcessesJobs(t *testing.T) {
	p := testProperty()
	repo := newMemoryPropertyRepo(p)
	portal := newFakePortal()
	orchestrator, _ := newTestOrchestrator(portal, repo, newMemoryAgentRepo())

	q := NewQueue(orchestrator, 2, 10)
	q.Start()
	require.True(t, q.Enqueue(SyncJob{Kind: JobCreateSync, PropertyID: p.ID}))
	q.Stop()

	saved, _ := repo.FindByID(p.ID)
	require.Equal(t, "lst-new", saved.PfListingID)
}

func TestQueueRecoversFromPanicingJob(t *testing.T) {
	// Unknown kinds and nil orchestrators must not kill the worker pool
	q := NewQueue(nil, 1, 10)
	q.Start()
	q.Enqueue(SyncJob{Kind: JobCreateSync, PropertyID: "p1"})
	q.Enqueue(SyncJob{Kind: JobUpdateSync, PropertyID: "p2"})
	q.Stop()
}
