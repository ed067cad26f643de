package ingest

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryStore struct {
	mu   sync.Mutex
	runs map[string]*Run
}

func newMemoryStore() *memoryStore {
	return &memoryStore{runs: make(map[string]*Run)}
}

func (m *memoryStore) LoadRuns(_ context.Context) ([]*Run, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ret := make([]*Run, 0, len(m.runs))
	for _, r := range m.runs {
		ret = append(ret, cloneRun(r))
	}
	return ret, nil
}

func (m *memoryStore) UpsertRun(_ context.Context, run *Run) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs[run.ID] = cloneRun(run)
	return nil
}

func (m *memoryStore) DeleteRun(_ context.Context, runID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.runs, runID)
	return nil
}

func (m *memoryStore) get(id string) (*Run, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.runs[id]
	return cloneRun(r), ok
}

func TestQueue_RecoversPendingAndRunningRunsFromStore(t *testing.T) {
	store := newMemoryStore()
	now := time.Now()
	s1 := search("software engineer", 1)
	s2 := search("software engineer", 2)
	store.runs["run-1"] = &Run{ID: "run-1", Source: "cron", DedupeKey: s1.Key(), Search: s1, Status: StatusPending, CreatedAt: now, UpdatedAt: now}
	store.runs["run-2"] = &Run{ID: "run-2", Source: "cron", DedupeKey: s2.Key(), Search: s2, Status: StatusRunning, CreatedAt: now, UpdatedAt: now}

	q := NewQueue(1, store)

	byID := map[string]*Run{}
	for _, r := range q.List() {
		byID[r.ID] = r
	}
	require.Len(t, byID, 2)
	assert.Equal(t, StatusPending, byID["run-2"].Status)

	// A recovered pending run still blocks duplicates.
	dup, created := q.Enqueue(EnqueueRequest{Source: "manual", Search: s1})
	assert.False(t, created)
	assert.Equal(t, "run-1", dup.ID)

	q.Start(func(_ context.Context, _ *Run) (int, error) { return 10, nil })
	defer q.Stop()

	require.Eventually(t, func() bool {
		r1, ok1 := store.get("run-1")
		r2, ok2 := store.get("run-2")
		return ok1 && ok2 && r1.Status == StatusSuccess && r2.Status == StatusSuccess
	}, time.Second, 10*time.Millisecond)

	next, created := q.Enqueue(EnqueueRequest{Source: "manual", Search: search("go", 1)})
	require.True(t, created)
	assert.Equal(t, "run-3", next.ID)
}
