package service

import (
	"context"
	"net/http"
	"testing"

	"github.com/careercardinal/jobtracker/internal/tracker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJobService_JobLifecycle(t *testing.T) {
	svc, _ := newTestService(t, nil)
	ctx := context.Background()

	id, err := svc.CreateJob(ctx, tracker.Job{Title: "Engineer", Company: "Acme"})
	require.NoError(t, err)

	job, err := svc.GetJob(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, tracker.StatusSaved, job.Status)

	n, err := svc.UpdateJob(ctx, id, tracker.Job{Title: "Engineer", Company: "Acme", Status: tracker.StatusOffer})
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	n, err = svc.DeleteJob(ctx, id)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	_, err = svc.GetJob(ctx, id)
	require.Error(t, err)
	assert.True(t, IsErrorType(err, ErrNotFound))
	status, _ := StatusAndMessage(err)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestJobService_RejectsUnknownStatus(t *testing.T) {
	svc, store := newTestService(t, nil)
	ctx := context.Background()

	_, err := svc.CreateJob(ctx, tracker.Job{Title: "x", Status: "ghosted"})
	require.Error(t, err)
	assert.True(t, IsErrorType(err, ErrValidation))

	all, err := store.ListJobs(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)

	_, err = svc.UpdateJob(ctx, 1, tracker.Job{Status: "ghosted"})
	assert.True(t, IsErrorType(err, ErrValidation))
}

func TestJobService_ListListingsClampsLimit(t *testing.T) {
	svc, store := newTestService(t, nil)
	ctx := context.Background()
	for i := range 3 {
		_, err := store.UpsertListing(ctx, tracker.Listing{ExternalID: string(rune('a' + i)), Title: "t"})
		require.NoError(t, err)
	}

	got, err := svc.ListListings(ctx, tracker.ListingQuery{Limit: -1, Offset: -4})
	require.NoError(t, err)
	assert.Len(t, got, 3)
}
