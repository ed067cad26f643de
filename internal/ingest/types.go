package ingest

import (
	"fmt"
	"strings"
	"time"
)

type Status string

const (
	StatusPending Status = "pending"
	StatusRunning Status = "running"
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
)

func (s Status) Terminal() bool {
	return s == StatusSuccess || s == StatusFailed
}

// Search is one provider call: a query for a single results page.
type Search struct {
	Query      string `json:"query"`
	Page       int    `json:"page"`
	Country    string `json:"country"`
	DatePosted string `json:"date_posted"`
}

// Key identifies equivalent searches for deduplication.
func (s Search) Key() string {
	return fmt.Sprintf("%s|%d|%s|%s",
		strings.ToLower(strings.TrimSpace(s.Query)),
		s.Page,
		strings.ToLower(s.Country),
		strings.ToLower(s.DatePosted))
}

type EnqueueRequest struct {
	Source string
	Search Search
}

type Run struct {
	ID        string    `json:"id"`
	Source    string    `json:"source"`
	DedupeKey string    `json:"dedupe_key"`
	Search    Search    `json:"search"`
	Status    Status    `json:"status"`
	Processed int       `json:"processed"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
