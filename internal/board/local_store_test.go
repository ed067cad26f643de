package board

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/careercardinal/jobtracker/internal/tracker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStore_MissingFileIsEmpty(t *testing.T) {
	store := NewLocalStore(filepath.Join(t.TempDir(), "none.json"), tracker.DefaultColumns())
	jobs, err := store.ListJobs(context.Background())
	require.NoError(t, err)
	assert.Empty(t, jobs)
}

func TestLocalStore_CRUD(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "board.json")
	store := NewLocalStore(path, tracker.DefaultColumns())
	ctx := context.Background()

	id1, err := store.CreateJob(ctx, tracker.Job{Title: "A"})
	require.NoError(t, err)
	id2, err := store.CreateJob(ctx, tracker.Job{Title: "B", Status: "applied"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), id1)
	assert.Equal(t, int64(2), id2)

	require.NoError(t, store.UpdateJob(ctx, tracker.Job{ID: 1, Title: "A2", Status: "interview"}))
	require.NoError(t, store.DeleteJob(ctx, 2))
	require.NoError(t, store.DeleteJob(ctx, 2))
	assert.ErrorIs(t, store.UpdateJob(ctx, tracker.Job{ID: 99, Title: "x"}), ErrJobNotFound)

	// ids continue from the highest one present
	id3, err := store.CreateJob(ctx, tracker.Job{Title: "C"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), id3)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var snap map[string][]tracker.Job
	require.NoError(t, json.Unmarshal(raw, &snap))
	assert.Len(t, snap["interview"], 1)
	assert.Equal(t, "A2", snap["interview"][0].Title)
	assert.Len(t, snap["saved"], 1)
	assert.Empty(t, snap["applied"])
	assert.Contains(t, snap, "rejected")

	jobs, err := store.ListJobs(ctx)
	require.NoError(t, err)
	require.Len(t, jobs, 2)
	assert.Equal(t, int64(2), jobs[0].ID)
	assert.Equal(t, "saved", jobs[0].Status)
	assert.Equal(t, "interview", jobs[1].Status)
}

func TestLocalStore_UnknownColumnSurfaces(t *testing.T) {
	path := filepath.Join(t.TempDir(), "board.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"saved":[{"id":1,"title":"A"}],"archive":[{"id":5,"title":"Old"}]}`), 0o600))
	store := NewLocalStore(path, tracker.DefaultColumns())

	jobs, err := store.ListJobs(context.Background())
	require.NoError(t, err)
	require.Len(t, jobs, 2)
	assert.Equal(t, "saved", jobs[0].Status)
	assert.Equal(t, "archive", jobs[1].Status)

	id, err := store.CreateJob(context.Background(), tracker.Job{Title: "New"})
	require.NoError(t, err)
	assert.Equal(t, int64(6), id)
}

func TestLocalStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "board.json")
	require.NoError(t, os.WriteFile(path, []byte(`{`), 0o600))
	_, err := NewLocalStore(path, tracker.DefaultColumns()).ListJobs(context.Background())
	require.Error(t, err)
}
