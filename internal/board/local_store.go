package board

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"sync"

	"github.com/careercardinal/jobtracker/internal/tracker"
)

var ErrJobNotFound = errors.New("job not found")

// LocalStore keeps the board in a single JSON file mapping column id to its
// jobs. The file is read and rewritten whole on every call.
type LocalStore struct {
	path    string
	columns tracker.Columns

	mu sync.Mutex
}

type snapshot map[string][]tracker.Job

func NewLocalStore(path string, columns tracker.Columns) *LocalStore {
	return &LocalStore{path: path, columns: columns}
}

func (s *LocalStore) ListJobs(_ context.Context) ([]tracker.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.load()
	if err != nil {
		return nil, err
	}
	ret := make([]tracker.Job, 0)
	for _, id := range s.orderedKeys(snap) {
		for _, job := range snap[id] {
			job.Status = id
			ret = append(ret, job)
		}
	}
	return ret, nil
}

func (s *LocalStore) CreateJob(_ context.Context, job tracker.Job) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.load()
	if err != nil {
		return 0, err
	}
	if job.Status == "" {
		job.Status = tracker.StatusSaved
	}
	job.ID = maxID(snap) + 1
	snap[job.Status] = append(snap[job.Status], job)
	if err := s.save(snap); err != nil {
		return 0, err
	}
	return job.ID, nil
}

func (s *LocalStore) UpdateJob(_ context.Context, job tracker.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.load()
	if err != nil {
		return err
	}
	if job.Status == "" {
		job.Status = tracker.StatusSaved
	}
	col, idx := find(snap, job.ID)
	if idx < 0 {
		return ErrJobNotFound
	}
	if col == job.Status {
		snap[col][idx] = job
	} else {
		snap[col] = slices.Delete(snap[col], idx, idx+1)
		snap[job.Status] = append(snap[job.Status], job)
	}
	return s.save(snap)
}

// DeleteJob removes the job; a missing id is not an error.
func (s *LocalStore) DeleteJob(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.load()
	if err != nil {
		return err
	}
	col, idx := find(snap, id)
	if idx < 0 {
		return nil
	}
	snap[col] = slices.Delete(snap[col], idx, idx+1)
	return s.save(snap)
}

func (s *LocalStore) load() (snapshot, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return make(snapshot), nil
	}
	if err != nil {
		return nil, err
	}
	snap := make(snapshot)
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("invalid board snapshot %s: %w", s.path, err)
	}
	return snap, nil
}

func (s *LocalStore) save(snap snapshot) error {
	if dir := filepath.Dir(s.path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	for _, id := range s.columns.IDs() {
		if snap[id] == nil {
			snap[id] = []tracker.Job{}
		}
	}
	content, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return err
	}
	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, append(content, '\n'), 0o600); err != nil {
		return err
	}
	return os.Rename(tmpPath, s.path)
}

// orderedKeys lists board columns first, then any unknown keys sorted.
func (s *LocalStore) orderedKeys(snap snapshot) []string {
	ret := s.columns.IDs()
	extra := make([]string, 0)
	for id := range snap {
		if !s.columns.Has(id) {
			extra = append(extra, id)
		}
	}
	sort.Strings(extra)
	return append(ret, extra...)
}

func find(snap snapshot, id int64) (string, int) {
	for col, jobs := range snap {
		for i, job := range jobs {
			if job.ID == id {
				return col, i
			}
		}
	}
	return "", -1
}

func maxID(snap snapshot) int64 {
	var ret int64
	for _, jobs := range snap {
		for _, job := range jobs {
			ret = max(ret, job.ID)
		}
	}
	return ret
}
