package httpapi

import (
	"context"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/careercardinal/jobtracker/internal/config"
	"github.com/careercardinal/jobtracker/internal/ingest"
	"github.com/careercardinal/jobtracker/internal/service"
	"github.com/careercardinal/jobtracker/internal/tracker"
)

const healthText = "Backend is running!"

type jobService interface {
	Columns() tracker.Columns
	ListJobs(ctx context.Context) ([]tracker.Job, error)
	GetJob(ctx context.Context, id int64) (tracker.Job, error)
	CreateJob(ctx context.Context, job tracker.Job) (int64, error)
	UpdateJob(ctx context.Context, id int64, job tracker.Job) (int64, error)
	DeleteJob(ctx context.Context, id int64) (int64, error)
	ListListings(ctx context.Context, q tracker.ListingQuery) ([]tracker.Listing, error)
	CountListings(ctx context.Context, query string) (int, error)
	Search(ctx context.Context, req service.SearchRequest) (service.SearchResult, error)
}

type ingestQueue interface {
	List() []*ingest.Run
	Enqueue(req ingest.EnqueueRequest) (*ingest.Run, bool)
}

type ingestScheduler interface {
	RunOnce(source string) int
	NextRun(now time.Time) (time.Time, bool)
}

type runtimeSettingsStore interface {
	GetRuntimeSettings() (config.RuntimeSettings, error)
	UpdateRuntimeSettings(next config.RuntimeSettings) (config.RuntimeSettings, error)
}

type runtimeSettingsApplier func(next config.RuntimeSettings) error

type Server struct {
	jobs      jobService
	queue     ingestQueue
	scheduler ingestScheduler
	settings  runtimeSettingsStore
	apply     runtimeSettingsApplier

	uiEnabled   bool
	uiStaticDir string
	corsOrigin  string

	mux     *http.ServeMux
	handler http.Handler
	server  *http.Server
}

type Option func(*Server)

func WithUI(staticDir string, enabled bool) Option {
	return func(s *Server) {
		s.uiStaticDir = staticDir
		s.uiEnabled = enabled
	}
}

// WithCORSOrigin sets Access-Control-Allow-Origin. Empty disables CORS headers.
func WithCORSOrigin(origin string) Option {
	return func(s *Server) {
		s.corsOrigin = origin
	}
}

func WithIngestQueue(queue ingestQueue) Option {
	return func(s *Server) {
		s.queue = queue
	}
}

func WithIngestScheduler(scheduler ingestScheduler) Option {
	return func(s *Server) {
		s.scheduler = scheduler
	}
}

func WithRuntimeSettingsStore(store runtimeSettingsStore) Option {
	return func(s *Server) {
		s.settings = store
	}
}

func WithRuntimeSettingsApplier(apply runtimeSettingsApplier) Option {
	return func(s *Server) {
		s.apply = apply
	}
}

func NewServer(jobs jobService, opts ...Option) *Server {
	s := &Server{
		jobs:       jobs,
		uiEnabled:  false,
		corsOrigin: "*",
		mux:        http.NewServeMux(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.routes()
	s.handler = withRequestLogging(withCORS(s.corsOrigin, s.mux))
	return s
}

func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) ListenAndServe(addr string) error {
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /health", s.handleHealth)

	s.mux.HandleFunc("GET /jobs", s.handleListJobs)
	s.mux.HandleFunc("POST /jobs", s.handleCreateJob)
	s.mux.HandleFunc("GET /jobs/{id}", s.handleGetJob)
	s.mux.HandleFunc("PUT /jobs/{id}", s.handleUpdateJob)
	s.mux.HandleFunc("DELETE /jobs/{id}", s.handleDeleteJob)

	s.mux.HandleFunc("GET /api/jobs", s.handleListListings)
	s.mux.HandleFunc("GET /api/jobs/count", s.handleCountListings)
	s.mux.HandleFunc("GET /api/jobs/search", s.handleSearch)
	s.mux.HandleFunc("GET /api/columns", s.handleColumns)

	s.mux.HandleFunc("GET /api/ingest", s.handleListIngest)
	s.mux.HandleFunc("POST /api/ingest", s.handleEnqueueIngest)
	s.mux.HandleFunc("GET /api/ingest/stream", s.handleIngestStream)

	s.mux.HandleFunc("GET /api/settings", s.handleGetSettings)
	s.mux.HandleFunc("PUT /api/settings", s.handleUpdateSettings)

	s.mux.HandleFunc("/", s.handleStatic)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(healthText))
}

func (s *Server) handleStatic(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if !s.uiEnabled || s.uiStaticDir == "" {
		if r.URL.Path == "/" {
			s.handleHealth(w, r)
			return
		}
		http.NotFound(w, r)
		return
	}

	rel := strings.TrimPrefix(path.Clean(r.URL.Path), "/")
	indexPath := filepath.Join(s.uiStaticDir, "index.html")

	if rel == "" || !strings.Contains(filepath.Base(rel), ".") {
		http.ServeFile(w, r, indexPath)
		return
	}

	filePath := filepath.Join(s.uiStaticDir, filepath.FromSlash(rel))
	if _, err := os.Stat(filePath); err != nil {
		// unknown asset paths fall back to the app shell
		http.ServeFile(w, r, indexPath)
		return
	}
	http.ServeFile(w, r, filePath)
}
