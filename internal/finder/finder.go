// Package finder pages through imported listings, hides the ones already
// on the board and promotes a listing into a tracker record.
package finder

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/careercardinal/jobtracker/internal/tracker"
	"github.com/careercardinal/jobtracker/pkg/log"
)

const (
	PageSize = 8
	// RequestSize over-fetches so a page can still fill after saved
	// listings are filtered out.
	RequestSize   = 2 * PageSize
	DebounceDelay = 400 * time.Millisecond
)

type Source interface {
	ListListings(ctx context.Context, q tracker.ListingQuery) ([]tracker.Listing, error)
	CountListings(ctx context.Context, query string) (int, error)
}

type Tracker interface {
	ListJobs(ctx context.Context) ([]tracker.Job, error)
	CreateJob(ctx context.Context, job tracker.Job) (int64, error)
}

type State struct {
	Page      int
	Query     string
	Listings  []tracker.Listing
	LastCount int
	Total     int
	HasTotal  bool
	Loading   bool
	Err       string
	Notice    string
}

func (s State) CanPrev() bool {
	return s.Page > 1
}

// CanNext is true while the last page came back full.
func (s State) CanNext() bool {
	return s.LastCount >= PageSize
}

// RangeLabel renders "start–end / total", without the total when the count
// is unknown.
func (s State) RangeLabel() string {
	page := max(s.Page, 1)
	start := (page-1)*PageSize + 1
	end := max(start, start+s.LastCount-1)
	label := fmt.Sprintf("%d–%d", start, end)
	if s.HasTotal {
		label += fmt.Sprintf(" / %d", s.Total)
	}
	return label
}

type Finder struct {
	source   Source
	tracker  Tracker
	debounce time.Duration
	onChange func(State)

	mu    sync.Mutex
	state State
	timer *time.Timer
	seq   uint64
}

type Option func(*Finder)

func WithDebounce(d time.Duration) Option {
	return func(f *Finder) {
		if d > 0 {
			f.debounce = d
		}
	}
}

// WithOnChange registers a callback run after every state change,
// including ones triggered by a debounced search.
func WithOnChange(fn func(State)) Option {
	return func(f *Finder) {
		f.onChange = fn
	}
}

func New(source Source, t Tracker, opts ...Option) *Finder {
	f := &Finder{
		source:   source,
		tracker:  t,
		debounce: DebounceDelay,
		state:    State{Page: 1},
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *Finder) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snapshotLocked()
}

// Fetch loads one page for query. Responses to superseded fetches are
// dropped.
func (f *Finder) Fetch(ctx context.Context, query string, page int) error {
	page = max(page, 1)

	f.mu.Lock()
	f.seq++
	seq := f.seq
	f.state.Loading = true
	f.state.Err = ""
	f.mu.Unlock()
	f.notify()

	listings, err := f.source.ListListings(ctx, tracker.ListingQuery{
		Query:  query,
		Limit:  RequestSize,
		Offset: (page - 1) * PageSize,
	})
	if err != nil {
		log.Warn("Finder fetch failed: %v", err)
		f.update(seq, func(s *State) {
			s.Loading = false
			s.Err = fmt.Sprintf("Failed to load jobs: %v", err)
		})
		return err
	}

	jobs, err := f.tracker.ListJobs(ctx)
	if err != nil {
		log.Warn("Finder could not load tracker records, nothing is filtered: %v", err)
		jobs = nil
	}
	visible := FilterUnsaved(listings, jobs)
	if len(visible) > PageSize {
		visible = visible[:PageSize]
	}

	f.update(seq, func(s *State) {
		s.Page = page
		s.Query = query
		s.Listings = visible
		s.LastCount = len(visible)
		s.Loading = false
	})

	// the total is best effort and keeps its last value on failure
	total, err := f.source.CountListings(ctx, query)
	if err != nil {
		log.Debug("Finder count failed: %v", err)
		return nil
	}
	f.update(seq, func(s *State) {
		s.Total = total
		s.HasTotal = true
	})
	return nil
}

func (f *Finder) Refresh(ctx context.Context) error {
	s := f.State()
	return f.Fetch(ctx, s.Query, s.Page)
}

func (f *Finder) Next(ctx context.Context) error {
	s := f.State()
	if !s.CanNext() {
		return nil
	}
	return f.Fetch(ctx, s.Query, s.Page+1)
}

func (f *Finder) Prev(ctx context.Context) error {
	s := f.State()
	if !s.CanPrev() {
		return nil
	}
	return f.Fetch(ctx, s.Query, s.Page-1)
}

// Search handles a change of the search box. An empty term reloads page 1
// right away and drops any pending search; anything else waits for the
// debounce period to pass without another call.
func (f *Finder) Search(ctx context.Context, term string) {
	term = strings.TrimSpace(term)

	f.mu.Lock()
	if f.timer != nil {
		f.timer.Stop()
		f.timer = nil
	}
	if term == "" {
		f.mu.Unlock()
		_ = f.Fetch(ctx, "", 1)
		return
	}
	f.timer = time.AfterFunc(f.debounce, func() {
		_ = f.Fetch(ctx, term, 1)
	})
	f.mu.Unlock()
}

// Star saves listing to the board and drops it from the current page.
func (f *Finder) Star(ctx context.Context, listing tracker.Listing) error {
	if _, err := f.tracker.CreateJob(ctx, StarredJob(listing)); err != nil {
		log.Warn("Finder star of %q failed: %v", listing.Title, err)
		f.mu.Lock()
		f.state.Notice = fmt.Sprintf("Failed to save job: %v", err)
		f.mu.Unlock()
		f.notify()
		return err
	}

	f.mu.Lock()
	kept := make([]tracker.Listing, 0, len(f.state.Listings))
	for _, l := range f.state.Listings {
		if !sameListing(l, listing) {
			kept = append(kept, l)
		}
	}
	f.state.Listings = kept
	f.state.Notice = ""
	f.mu.Unlock()
	f.notify()
	return nil
}

func (f *Finder) DismissNotice() {
	f.mu.Lock()
	f.state.Notice = ""
	f.mu.Unlock()
	f.notify()
}

// Close stops a pending debounced search.
func (f *Finder) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.timer != nil {
		f.timer.Stop()
		f.timer = nil
	}
}

func (f *Finder) update(seq uint64, apply func(*State)) {
	f.mu.Lock()
	if seq != f.seq {
		f.mu.Unlock()
		return
	}
	apply(&f.state)
	f.mu.Unlock()
	f.notify()
}

func (f *Finder) notify() {
	if f.onChange == nil {
		return
	}
	f.onChange(f.State())
}

func (f *Finder) snapshotLocked() State {
	ret := f.state
	ret.Listings = append([]tracker.Listing(nil), f.state.Listings...)
	return ret
}

func sameListing(a, b tracker.Listing) bool {
	if a.ExternalID != "" || b.ExternalID != "" {
		return a.ExternalID == b.ExternalID
	}
	return a.ID == b.ID
}
