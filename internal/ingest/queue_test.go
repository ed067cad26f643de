package ingest

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func search(query string, page int) Search {
	return Search{Query: query, Page: page, Country: "us", DatePosted: "week"}
}

func TestQueue_Enqueue_DeduplicatesSameSearch(t *testing.T) {
	q := NewQueue(2, nil)

	runA, createdA := q.Enqueue(EnqueueRequest{Source: "manual", Search: search("golang", 1)})
	runB, createdB := q.Enqueue(EnqueueRequest{Source: "cron", Search: search("  GoLang ", 1)})
	runC, createdC := q.Enqueue(EnqueueRequest{Source: "cron", Search: search("golang", 2)})

	require.True(t, createdA)
	require.False(t, createdB)
	require.True(t, createdC)
	assert.Equal(t, runA.ID, runB.ID)
	assert.NotEqual(t, runA.ID, runC.ID)
	assert.Equal(t, StatusPending, runA.Status)
}

func TestQueue_Enqueue_AllowsRetryAfterFailure(t *testing.T) {
	q := NewQueue(1, nil)

	var attempts atomic.Int32
	q.Start(func(_ context.Context, _ *Run) (int, error) {
		if attempts.Add(1) == 1 {
			return 0, errors.New("provider down")
		}
		return 4, nil
	})
	defer q.Stop()

	first, created := q.Enqueue(EnqueueRequest{Source: "manual", Search: search("swe", 1)})
	require.True(t, created)

	require.Eventually(t, func() bool {
		got, ok := q.Get(first.ID)
		return ok && got.Status == StatusFailed
	}, time.Second, 10*time.Millisecond)

	got, _ := q.Get(first.ID)
	assert.Equal(t, "provider down", got.Error)

	second, created := q.Enqueue(EnqueueRequest{Source: "manual", Search: search("swe", 1)})
	require.True(t, created)
	assert.NotEqual(t, first.ID, second.ID)

	require.Eventually(t, func() bool {
		got, ok := q.Get(second.ID)
		return ok && got.Status == StatusSuccess && got.Processed == 4
	}, time.Second, 10*time.Millisecond)
}

func TestQueue_List_OldestFirst(t *testing.T) {
	q := NewQueue(1, nil)
	first, _ := q.Enqueue(EnqueueRequest{Source: "manual", Search: search("a", 1)})
	second, _ := q.Enqueue(EnqueueRequest{Source: "manual", Search: search("b", 1)})

	runs := q.List()
	require.Len(t, runs, 2)
	assert.Equal(t, first.ID, runs[0].ID)
	assert.Equal(t, second.ID, runs[1].ID)
}

func TestQueue_PrunesTerminalRuns(t *testing.T) {
	q := NewQueue(1, nil)
	q.maxRuns = 2
	q.Start(func(_ context.Context, _ *Run) (int, error) { return 1, nil })
	defer q.Stop()

	for i := 1; i <= 4; i++ {
		run, _ := q.Enqueue(EnqueueRequest{Source: "manual", Search: search("q", i)})
		require.Eventually(t, func() bool {
			got, ok := q.Get(run.ID)
			return ok && got.Status == StatusSuccess
		}, time.Second, 10*time.Millisecond)
	}

	assert.Len(t, q.List(), 2)
}

func TestSearch_Key(t *testing.T) {
	a := Search{Query: " Go ", Page: 1, Country: "US", DatePosted: "Week"}
	b := Search{Query: "go", Page: 1, Country: "us", DatePosted: "week"}
	assert.Equal(t, a.Key(), b.Key())
	assert.NotEqual(t, a.Key(), Search{Query: "go", Page: 2, Country: "us", DatePosted: "week"}.Key())
}
