package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/careercardinal/jobtracker/internal/service"
	"github.com/careercardinal/jobtracker/internal/tracker"
)

type jobRequest struct {
	Title   string `json:"title"`
	Company string `json:"company"`
	Date    string `json:"date"`
	Link    string `json:"link"`
	Notes   string `json:"notes"`
	Status  string `json:"status"`
}

func (r jobRequest) toJob() tracker.Job {
	return tracker.Job{
		Title:   r.Title,
		Company: r.Company,
		Date:    r.Date,
		Link:    r.Link,
		Notes:   r.Notes,
		Status:  r.Status,
	}
}

func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	jobs, err := s.jobs.ListJobs(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, jobs)
}

func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	id, ok := parseJobID(w, r)
	if !ok {
		return
	}
	job, err := s.jobs.GetJob(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

func (s *Server) handleCreateJob(w http.ResponseWriter, r *http.Request) {
	var req jobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	id, err := s.jobs.CreateJob(r.Context(), req.toJob())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"id": id,
	})
}

func (s *Server) handleUpdateJob(w http.ResponseWriter, r *http.Request) {
	id, ok := parseJobID(w, r)
	if !ok {
		return
	}
	var req jobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	n, err := s.jobs.UpdateJob(r.Context(), id, req.toJob())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"updated": n,
	})
}

func (s *Server) handleDeleteJob(w http.ResponseWriter, r *http.Request) {
	id, ok := parseJobID(w, r)
	if !ok {
		return
	}
	n, err := s.jobs.DeleteJob(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"deleted": n,
	})
}

func (s *Server) handleColumns(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.jobs.Columns())
}

func (s *Server) handleListListings(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := tracker.ListingQuery{
		Query:  q.Get("q"),
		Limit:  queryInt(q.Get("limit"), tracker.DefaultListLimit),
		Offset: queryInt(q.Get("offset"), 0),
	}
	listings, err := s.jobs.ListListings(r.Context(), query)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"count": len(listings),
		"jobs":  listings,
	})
}

func (s *Server) handleCountListings(w http.ResponseWriter, r *http.Request) {
	total, err := s.jobs.CountListings(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"total": total,
	})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	res, err := s.jobs.Search(r.Context(), service.SearchRequest{
		Query:      q.Get("query"),
		Page:       queryInt(q.Get("page"), 1),
		Country:    q.Get("country"),
		DatePosted: q.Get("date_posted"),
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"count": len(res.Listings),
		"jobs":  res.Listings,
	})
}

func parseJobID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid job id")
		return 0, false
	}
	return id, true
}

// queryInt parses an integer query value; anything unparsable yields def.
func queryInt(raw string, def int) int {
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{
		"error": msg,
	})
}

// writeServiceError logs err and answers with its mapped status. Store
// failures only expose the generic message.
func writeServiceError(w http.ResponseWriter, err error) {
	service.LogError(err)
	status, msg := service.StatusAndMessage(err)
	writeError(w, status, msg)
}
