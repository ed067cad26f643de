package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"slices"
	"strings"

	"github.com/careercardinal/jobtracker/internal/config"
	"github.com/careercardinal/jobtracker/internal/ingest"
	"github.com/careercardinal/jobtracker/internal/service"
)

type ingestRequest struct {
	Query      string `json:"query"`
	Page       int    `json:"page"`
	Country    string `json:"country"`
	DatePosted string `json:"date_posted"`
}

func (s *Server) handleListIngest(w http.ResponseWriter, _ *http.Request) {
	if s.queue == nil {
		writeError(w, http.StatusNotImplemented, "ingest queue is not configured")
		return
	}
	writeJSON(w, http.StatusOK, s.queue.List())
}

// handleEnqueueIngest queues a single search, or with no query a full round
// of the configured ingest searches.
func (s *Server) handleEnqueueIngest(w http.ResponseWriter, r *http.Request) {
	if s.queue == nil {
		writeError(w, http.StatusNotImplemented, "ingest queue is not configured")
		return
	}

	var req ingestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	req.Query = strings.TrimSpace(req.Query)
	if req.Query == "" {
		if s.scheduler == nil {
			writeError(w, http.StatusBadRequest, "query is required")
			return
		}
		n := s.scheduler.RunOnce(service.SourceManual)
		writeJSON(w, http.StatusAccepted, map[string]any{
			"enqueued": n,
		})
		return
	}

	search, err := req.toSearch()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	run, created := s.queue.Enqueue(ingest.EnqueueRequest{
		Source: service.SourceManual,
		Search: search,
	})
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, status, map[string]any{
		"created": created,
		"run":     run,
	})
}

func (r ingestRequest) toSearch() (ingest.Search, error) {
	search := ingest.Search{
		Query:      r.Query,
		Page:       r.Page,
		Country:    strings.ToLower(strings.TrimSpace(r.Country)),
		DatePosted: strings.TrimSpace(r.DatePosted),
	}
	if search.Page <= 0 {
		search.Page = 1
	}
	if search.Country == "" {
		search.Country = "us"
	}
	if search.DatePosted == "" {
		search.DatePosted = "all"
	}
	if err := config.ValidateCountry(search.Country); err != nil {
		return ingest.Search{}, errors.New("invalid country")
	}
	if !slices.Contains(config.DatePostedValues, search.DatePosted) {
		return ingest.Search{}, errors.New("invalid date_posted")
	}
	return search, nil
}
