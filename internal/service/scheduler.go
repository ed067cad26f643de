package service

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"golang.org/x/sync/singleflight"

	"github.com/careercardinal/jobtracker/internal/config"
	"github.com/careercardinal/jobtracker/internal/ingest"
	"github.com/careercardinal/jobtracker/pkg/icron"
	"github.com/careercardinal/jobtracker/pkg/log"
)

const (
	SourceCron   = "cron"
	SourceManual = "manual"
)

// Enqueuer accepts ingest runs.
type Enqueuer interface {
	Enqueue(req ingest.EnqueueRequest) (*ingest.Run, bool)
}

// IngestScheduler enqueues one run per query and page on every cron tick.
type IngestScheduler struct {
	cron  *cron.Cron
	queue Enqueuer
	group singleflight.Group

	mu       sync.Mutex
	settings config.RuntimeSettings
	entryID  cron.EntryID
	hasEntry bool
}

func NewIngestScheduler(cronEngine *cron.Cron, queue Enqueuer, settings config.RuntimeSettings) *IngestScheduler {
	return &IngestScheduler{
		cron:     cronEngine,
		queue:    queue,
		settings: settings,
	}
}

// Schedule registers the cron entry. An empty expression leaves scheduled
// ingest off until settings enable it.
func (s *IngestScheduler) Schedule(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rescheduleLocked(s.settings.CronExpr)
}

// ApplyRuntimeSettings swaps the settings and re-registers the cron entry.
func (s *IngestScheduler) ApplyRuntimeSettings(next config.RuntimeSettings) error {
	if err := next.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.rescheduleLocked(next.CronExpr); err != nil {
		return err
	}
	s.settings = next
	s.settings.Queries = slices.Clone(next.Queries)
	log.Info("Ingest settings applied: cron=%q queries=%d pages=%d", next.CronExpr, len(next.Queries), next.Pages)
	return nil
}

func (s *IngestScheduler) rescheduleLocked(expr string) error {
	if expr != "" {
		if _, err := cron.ParseStandard(expr); err != nil {
			return fmt.Errorf("invalid cron expression: %w", err)
		}
	}
	if s.hasEntry {
		s.cron.Remove(s.entryID)
		s.hasEntry = false
	}
	if expr == "" {
		return nil
	}
	id, err := s.cron.AddFunc(expr, s.tick)
	if err != nil {
		return err
	}
	s.entryID = id
	s.hasEntry = true
	return nil
}

func (s *IngestScheduler) tick() {
	_, _, _ = s.group.Do("ingest", func() (any, error) {
		err := SafeExecute(func() error {
			created := s.RunOnce(SourceCron)
			log.Info("Scheduled ingest enqueued %d runs", created)
			return nil
		})
		if err != nil {
			log.Error("Scheduled ingest failed: %v", err)
		}
		return nil, err
	})
}

// RunOnce enqueues queries × pages runs, starting at page 1, and returns how
// many were new.
func (s *IngestScheduler) RunOnce(source string) int {
	settings := s.Settings()
	created := 0
	for _, query := range settings.Queries {
		for page := 1; page <= settings.Pages; page++ {
			_, ok := s.queue.Enqueue(ingest.EnqueueRequest{
				Source: source,
				Search: ingest.Search{
					Query:      query,
					Page:       page,
					Country:    settings.Country,
					DatePosted: settings.DatePosted,
				},
			})
			if ok {
				created++
			}
		}
	}
	return created
}

func (s *IngestScheduler) Settings() config.RuntimeSettings {
	s.mu.Lock()
	defer s.mu.Unlock()
	ret := s.settings
	ret.Queries = slices.Clone(s.settings.Queries)
	return ret
}

// NextRun reports the next scheduled tick after now.
func (s *IngestScheduler) NextRun(now time.Time) (time.Time, bool) {
	settings := s.Settings()
	if settings.CronExpr == "" {
		return time.Time{}, false
	}
	info, err := icron.GetTriggerInfo(settings.CronExpr, now)
	if err != nil {
		return time.Time{}, false
	}
	return info.Next, true
}

// IngestExecutor runs a queued search through the same path as the search
// endpoint and reports how many listings were stored.
func (s *JobService) IngestExecutor() ingest.Executor {
	return func(ctx context.Context, run *ingest.Run) (int, error) {
		res, err := s.Search(ctx, SearchRequest{
			Query:      run.Search.Query,
			Page:       run.Search.Page,
			Country:    run.Search.Country,
			DatePosted: run.Search.DatePosted,
		})
		if err != nil {
			return 0, err
		}
		return res.Stored, nil
	}
}
