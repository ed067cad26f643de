package ingest

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/careercardinal/jobtracker/pkg/log"
)

const defaultMaxRuns = 1000

// Executor performs one search and reports how many listings it stored.
type Executor func(ctx context.Context, run *Run) (int, error)

type Queue struct {
	workerCount int
	maxRuns     int
	store       Store

	mu         sync.RWMutex
	runs       map[string]*Run
	dedupe     map[string]string
	idCounter  uint64
	started    bool
	pendingIDs chan string
	ctx        context.Context
	cancel     context.CancelFunc
	stopOnce   sync.Once
	wg         sync.WaitGroup
}

func NewQueue(workerCount int, store Store) *Queue {
	if workerCount <= 0 {
		workerCount = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	q := &Queue{
		workerCount: workerCount,
		maxRuns:     defaultMaxRuns,
		store:       store,
		runs:        make(map[string]*Run),
		dedupe:      make(map[string]string),
		pendingIDs:  make(chan string, 1024),
		ctx:         ctx,
		cancel:      cancel,
	}
	q.hydrateFromStore(context.Background())
	return q
}

// Enqueue adds a run unless an equivalent one is still pending or running,
// in which case the existing run is returned with created=false.
func (q *Queue) Enqueue(req EnqueueRequest) (*Run, bool) {
	now := time.Now()
	key := req.Search.Key()

	q.mu.Lock()
	if id, ok := q.dedupe[key]; ok {
		if existing, exists := q.runs[id]; exists {
			snapshot := cloneRun(existing)
			q.mu.Unlock()
			return snapshot, false
		}
		delete(q.dedupe, key)
	}

	id := fmt.Sprintf("run-%d", atomic.AddUint64(&q.idCounter, 1))
	run := &Run{
		ID:        id,
		Source:    req.Source,
		DedupeKey: key,
		Search:    req.Search,
		Status:    StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	q.runs[id] = run
	q.dedupe[key] = id
	started := q.started
	snapshot := cloneRun(run)
	q.mu.Unlock()

	q.persistRun(snapshot)
	if started {
		q.enqueuePendingID(id)
	}
	return snapshot, true
}

func (q *Queue) Get(id string) (*Run, bool) {
	q.mu.RLock()
	run, ok := q.runs[id]
	q.mu.RUnlock()
	if !ok {
		return nil, false
	}
	return cloneRun(run), true
}

// List returns a snapshot of all runs, oldest first.
func (q *Queue) List() []*Run {
	q.mu.RLock()
	ret := make([]*Run, 0, len(q.runs))
	for _, run := range q.runs {
		ret = append(ret, cloneRun(run))
	}
	q.mu.RUnlock()

	sort.Slice(ret, func(i, j int) bool {
		if ret[i].CreatedAt.Equal(ret[j].CreatedAt) {
			return ret[i].ID < ret[j].ID
		}
		return ret[i].CreatedAt.Before(ret[j].CreatedAt)
	})
	return ret
}

func (q *Queue) Start(exec Executor) {
	q.mu.Lock()
	if q.started {
		q.mu.Unlock()
		return
	}
	q.started = true

	pending := make([]string, 0)
	for id, run := range q.runs {
		if run.Status == StatusPending {
			pending = append(pending, id)
		}
	}
	q.mu.Unlock()

	sort.Strings(pending)
	for _, id := range pending {
		q.enqueuePendingID(id)
	}

	for range q.workerCount {
		q.wg.Add(1)
		go q.worker(exec)
	}
}

// Stop cancels in-flight runs and waits for the workers to exit.
func (q *Queue) Stop() {
	q.stopOnce.Do(func() {
		q.cancel()
		q.wg.Wait()
	})
}

func (q *Queue) worker(exec Executor) {
	defer q.wg.Done()

	for {
		select {
		case <-q.ctx.Done():
			return
		case id := <-q.pendingIDs:
			run, ok := q.markRunning(id)
			if !ok {
				continue
			}

			processed, err := exec(q.ctx, run)
			if err != nil {
				q.markFailed(id, err)
				continue
			}
			q.markSuccess(id, processed)
		}
	}
}

func (q *Queue) enqueuePendingID(id string) {
	select {
	case q.pendingIDs <- id:
	default:
		go func() {
			select {
			case q.pendingIDs <- id:
			case <-q.ctx.Done():
			}
		}()
	}
}

func (q *Queue) markRunning(id string) (*Run, bool) {
	q.mu.Lock()
	run, ok := q.runs[id]
	if !ok || run.Status != StatusPending {
		q.mu.Unlock()
		return nil, false
	}
	run.Status = StatusRunning
	run.UpdatedAt = time.Now()
	snapshot := cloneRun(run)
	q.mu.Unlock()

	q.persistRun(snapshot)
	return snapshot, true
}

func (q *Queue) markSuccess(id string, processed int) {
	q.finish(id, func(run *Run) {
		run.Status = StatusSuccess
		run.Processed = processed
		run.Error = ""
	})
}

func (q *Queue) markFailed(id string, err error) {
	q.finish(id, func(run *Run) {
		run.Status = StatusFailed
		if err != nil {
			run.Error = err.Error()
		}
	})
}

func (q *Queue) finish(id string, apply func(*Run)) {
	q.mu.Lock()
	run, ok := q.runs[id]
	if !ok {
		q.mu.Unlock()
		return
	}
	apply(run)
	run.UpdatedAt = time.Now()
	q.releaseDedupeLocked(run)
	pruned := q.pruneTerminalRunsLocked()
	snapshot := cloneRun(run)
	q.mu.Unlock()

	q.persistRun(snapshot)
	q.deleteRunsFromStore(pruned)
}

func (q *Queue) releaseDedupeLocked(run *Run) {
	if run == nil || run.DedupeKey == "" {
		return
	}
	if id, ok := q.dedupe[run.DedupeKey]; ok && id == run.ID {
		delete(q.dedupe, run.DedupeKey)
	}
}

func (q *Queue) pruneTerminalRunsLocked() []string {
	if q.maxRuns <= 0 || len(q.runs) <= q.maxRuns {
		return nil
	}

	type candidate struct {
		id        string
		updatedAt time.Time
	}
	terminal := make([]candidate, 0, len(q.runs))
	for id, run := range q.runs {
		if run == nil || !run.Status.Terminal() {
			continue
		}
		terminal = append(terminal, candidate{id: id, updatedAt: run.UpdatedAt})
	}
	if len(terminal) == 0 {
		return nil
	}

	sort.Slice(terminal, func(i, j int) bool {
		return terminal[i].updatedAt.Before(terminal[j].updatedAt)
	})

	toRemove := min(len(q.runs)-q.maxRuns, len(terminal))
	pruned := make([]string, 0, toRemove)
	for i := 0; i < toRemove; i++ {
		id := terminal[i].id
		if run := q.runs[id]; run != nil {
			q.releaseDedupeLocked(run)
		}
		delete(q.runs, id)
		pruned = append(pruned, id)
	}
	return pruned
}

func (q *Queue) deleteRunsFromStore(ids []string) {
	if q.store == nil || len(ids) == 0 {
		return
	}
	for _, id := range ids {
		if err := q.store.DeleteRun(context.Background(), id); err != nil {
			log.Error("Failed to delete pruned ingest run %s from store: %v", id, err)
		}
	}
}

func (q *Queue) hydrateFromStore(ctx context.Context) {
	if q.store == nil {
		return
	}
	loaded, err := q.store.LoadRuns(ctx)
	if err != nil {
		log.Error("Failed to load ingest runs from store: %v", err)
		return
	}

	now := time.Now()
	toPersist := make([]*Run, 0)
	q.mu.Lock()
	for _, raw := range loaded {
		if raw == nil || raw.ID == "" {
			continue
		}
		run := cloneRun(raw)
		if run.Status == StatusRunning {
			run.Status = StatusPending
			run.UpdatedAt = now
			toPersist = append(toPersist, cloneRun(run))
		}
		q.runs[run.ID] = run
		if run.Status == StatusPending && run.DedupeKey != "" {
			q.dedupe[run.DedupeKey] = run.ID
		}
		q.updateIDCounterLocked(run.ID)
	}
	q.mu.Unlock()

	for _, run := range toPersist {
		q.persistRun(run)
	}
}

func (q *Queue) updateIDCounterLocked(runID string) {
	if !strings.HasPrefix(runID, "run-") {
		return
	}
	n, err := strconv.ParseUint(strings.TrimPrefix(runID, "run-"), 10, 64)
	if err != nil {
		return
	}
	if n > q.idCounter {
		q.idCounter = n
	}
}

func (q *Queue) persistRun(run *Run) {
	if q.store == nil || run == nil {
		return
	}
	if err := q.store.UpsertRun(context.Background(), run); err != nil {
		log.Error("Failed to persist ingest run %s: %v", run.ID, err)
	}
}

func cloneRun(run *Run) *Run {
	if run == nil {
		return nil
	}
	tmp := *run
	return &tmp
}
