package service

import (
	"context"
	"fmt"

	"github.com/careercardinal/jobtracker/internal/jsearch"
	"github.com/careercardinal/jobtracker/internal/tracker"
)

// Store is the persistence the job service runs on.
type Store interface {
	CreateJob(ctx context.Context, job tracker.Job) (int64, error)
	ListJobs(ctx context.Context) ([]tracker.Job, error)
	GetJob(ctx context.Context, id int64) (tracker.Job, bool, error)
	UpdateJob(ctx context.Context, id int64, job tracker.Job) (int64, error)
	DeleteJob(ctx context.Context, id int64) (int64, error)
	UpsertListing(ctx context.Context, listing tracker.Listing) (int64, error)
	ListListings(ctx context.Context, q tracker.ListingQuery) ([]tracker.Listing, error)
	CountListings(ctx context.Context, query string) (int, error)
}

// Searcher fetches one page of provider results.
type Searcher interface {
	Configured() bool
	Search(ctx context.Context, params jsearch.SearchParams) ([]jsearch.Job, error)
}

type JobService struct {
	store   Store
	search  Searcher
	columns tracker.Columns
	detect  func(text string) string
}

type JobServiceOption func(*JobService)

// WithLanguageDetector replaces the description language detector.
func WithLanguageDetector(detect func(text string) string) JobServiceOption {
	return func(s *JobService) {
		if detect != nil {
			s.detect = detect
		}
	}
}

func NewJobService(store Store, search Searcher, columns tracker.Columns, opts ...JobServiceOption) *JobService {
	if len(columns) == 0 {
		columns = tracker.DefaultColumns()
	}
	s := &JobService{
		store:   store,
		search:  search,
		columns: columns,
		detect:  DetectLanguage,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *JobService) Columns() tracker.Columns {
	return s.columns
}

func (s *JobService) ListJobs(ctx context.Context) ([]tracker.Job, error) {
	ret, err := s.store.ListJobs(ctx)
	if err != nil {
		return nil, WrapError(err, ErrStore, "failed to fetch jobs")
	}
	return ret, nil
}

func (s *JobService) GetJob(ctx context.Context, id int64) (tracker.Job, error) {
	job, ok, err := s.store.GetJob(ctx, id)
	if err != nil {
		return tracker.Job{}, WrapError(err, ErrStore, "failed to fetch job").WithContext("id", id)
	}
	if !ok {
		return tracker.Job{}, NewError(ErrNotFound, "job not found").WithContext("id", id)
	}
	return job, nil
}

// CreateJob stores a new record. A missing status files it under saved.
func (s *JobService) CreateJob(ctx context.Context, job tracker.Job) (int64, error) {
	if err := s.checkStatus(&job); err != nil {
		return 0, err
	}
	id, err := s.store.CreateJob(ctx, job)
	if err != nil {
		return 0, WrapError(err, ErrStore, "failed to create job")
	}
	return id, nil
}

// UpdateJob overwrites all fields of a record and returns the affected count.
func (s *JobService) UpdateJob(ctx context.Context, id int64, job tracker.Job) (int64, error) {
	if err := s.checkStatus(&job); err != nil {
		return 0, err
	}
	n, err := s.store.UpdateJob(ctx, id, job)
	if err != nil {
		return 0, WrapError(err, ErrStore, "failed to update job").WithContext("id", id)
	}
	return n, nil
}

func (s *JobService) DeleteJob(ctx context.Context, id int64) (int64, error) {
	n, err := s.store.DeleteJob(ctx, id)
	if err != nil {
		return 0, WrapError(err, ErrStore, "failed to delete job").WithContext("id", id)
	}
	return n, nil
}

func (s *JobService) ListListings(ctx context.Context, q tracker.ListingQuery) ([]tracker.Listing, error) {
	ret, err := s.store.ListListings(ctx, q.Normalize())
	if err != nil {
		return nil, WrapError(err, ErrStore, "failed to fetch jobs")
	}
	return ret, nil
}

func (s *JobService) CountListings(ctx context.Context, query string) (int, error) {
	total, err := s.store.CountListings(ctx, query)
	if err != nil {
		return 0, WrapError(err, ErrStore, "failed to count jobs")
	}
	return total, nil
}

func (s *JobService) checkStatus(job *tracker.Job) error {
	if job.Status == "" {
		job.Status = tracker.StatusSaved
	}
	if !s.columns.Has(job.Status) {
		return NewError(ErrValidation, fmt.Sprintf("unknown status %q", job.Status)).
			WithContext("columns", s.columns.IDs())
	}
	return nil
}
