package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/careercardinal/jobtracker/internal/config"
	"github.com/careercardinal/jobtracker/internal/ingest"
	"github.com/careercardinal/jobtracker/internal/jsearch"
	"github.com/robfig/cron/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingQueue struct {
	mu   sync.Mutex
	reqs []ingest.EnqueueRequest
	seen map[string]bool
}

func (q *recordingQueue) Enqueue(req ingest.EnqueueRequest) (*ingest.Run, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.seen == nil {
		q.seen = map[string]bool{}
	}
	key := req.Search.Key()
	if q.seen[key] {
		return &ingest.Run{}, false
	}
	q.seen[key] = true
	q.reqs = append(q.reqs, req)
	return &ingest.Run{Search: req.Search}, true
}

func testSettings(expr string) config.RuntimeSettings {
	return config.RuntimeSettings{
		CronExpr:   expr,
		Queries:    []string{"software engineer", "SWE"},
		Pages:      3,
		Country:    "us",
		DatePosted: "week",
	}
}

func TestIngestScheduler_RunOnceEnqueuesQueriesTimesPages(t *testing.T) {
	queue := &recordingQueue{}
	s := NewIngestScheduler(cron.New(), queue, testSettings(""))

	assert.Equal(t, 6, s.RunOnce(SourceManual))
	require.Len(t, queue.reqs, 6)
	assert.Equal(t, ingest.Search{Query: "software engineer", Page: 1, Country: "us", DatePosted: "week"}, queue.reqs[0].Search)
	assert.Equal(t, 3, queue.reqs[2].Search.Page)
	assert.Equal(t, "SWE", queue.reqs[3].Search.Query)
	assert.Equal(t, SourceManual, queue.reqs[0].Source)

	// duplicates are not counted
	assert.Equal(t, 0, s.RunOnce(SourceCron))
}

func TestIngestScheduler_ScheduleAndReschedule(t *testing.T) {
	cronEngine := cron.New()
	s := NewIngestScheduler(cronEngine, &recordingQueue{}, testSettings(""))

	require.NoError(t, s.Schedule(context.Background()))
	assert.Empty(t, cronEngine.Entries())
	_, ok := s.NextRun(time.Now())
	assert.False(t, ok)

	require.NoError(t, s.ApplyRuntimeSettings(testSettings("*/10 * * * *")))
	require.Len(t, cronEngine.Entries(), 1)

	require.NoError(t, s.ApplyRuntimeSettings(testSettings("0 6 * * *")))
	require.Len(t, cronEngine.Entries(), 1)

	ref := time.Date(2025, 1, 1, 5, 0, 0, 0, time.UTC)
	next, ok := s.NextRun(ref)
	require.True(t, ok)
	assert.Equal(t, time.Date(2025, 1, 1, 6, 0, 0, 0, time.UTC), next)

	require.Error(t, s.ApplyRuntimeSettings(testSettings("bogus")))
	assert.Equal(t, "0 6 * * *", s.Settings().CronExpr)
	require.Len(t, cronEngine.Entries(), 1)

	require.NoError(t, s.ApplyRuntimeSettings(testSettings("")))
	assert.Empty(t, cronEngine.Entries())
}

func TestIngestScheduler_TickEnqueues(t *testing.T) {
	queue := &recordingQueue{}
	s := NewIngestScheduler(cron.New(), queue, testSettings("* * * * *"))
	s.tick()

	queue.mu.Lock()
	defer queue.mu.Unlock()
	assert.Len(t, queue.reqs, 6)
	assert.Equal(t, SourceCron, queue.reqs[0].Source)
}

func TestJobService_IngestExecutorRunsSearch(t *testing.T) {
	searcher := &fakeSearcher{
		configured: true,
		jobs:       []jsearch.Job{{JobID: "x1", Title: "Go"}, {JobID: "x2", Title: "Rust"}},
	}
	svc, _ := newTestService(t, searcher)

	q := ingest.NewQueue(1, nil)
	q.Start(svc.IngestExecutor())
	defer q.Stop()

	run, created := q.Enqueue(ingest.EnqueueRequest{Source: SourceManual, Search: ingest.Search{Query: "go", Page: 2, Country: "us", DatePosted: "week"}})
	require.True(t, created)

	require.Eventually(t, func() bool {
		got, ok := q.Get(run.ID)
		return ok && got.Status == ingest.StatusSuccess && got.Processed == 2
	}, time.Second, 10*time.Millisecond)
}
