package tracker

import (
	"strings"
	"time"
)

const (
	StatusSaved     = "saved"
	StatusApplied   = "applied"
	StatusInterview = "interview"
	StatusOffer     = "offer"
	StatusRejected  = "rejected"
)

const (
	DefaultListLimit = 50
	MaxListLimit     = 100
)

// Job is a record on the board. Status names the column it lives in.
type Job struct {
	ID      int64  `json:"id"`
	Title   string `json:"title"`
	Company string `json:"company"`
	Date    string `json:"date"`
	Link    string `json:"link"`
	Notes   string `json:"notes"`
	Status  string `json:"status"`
}

// Listing is a job imported from the search provider. ExternalID is the
// provider's identifier and the natural key for re-imports.
type Listing struct {
	ID             int64     `json:"id"`
	ExternalID     string    `json:"job_id"`
	Title          string    `json:"title"`
	Company        string    `json:"company"`
	Location       string    `json:"location"`
	EmploymentType string    `json:"employment_type"`
	Description    string    `json:"description"`
	ApplyLink      string    `json:"apply_link"`
	IsRemote       *bool     `json:"is_remote"`
	PostedDate     string    `json:"posted_date"`
	SalaryMin      *float64  `json:"salary_min"`
	SalaryMax      *float64  `json:"salary_max"`
	SalaryCurrency string    `json:"salary_currency"`
	Language       string    `json:"language,omitempty"`
	CreatedAt      time.Time `json:"created_at,omitzero"`
}

// ListingQuery filters and pages the imported listings.
type ListingQuery struct {
	Query  string
	Limit  int
	Offset int
}

// Normalize trims the query and clamps limit and offset into range.
func (q ListingQuery) Normalize() ListingQuery {
	q.Query = strings.TrimSpace(q.Query)
	if q.Limit <= 0 {
		q.Limit = DefaultListLimit
	}
	if q.Limit > MaxListLimit {
		q.Limit = MaxListLimit
	}
	if q.Offset < 0 {
		q.Offset = 0
	}
	return q
}

// SameRole reports whether a listing and a board job look like the same
// posting. Only title and company are compared.
func SameRole(l Listing, j Job) bool {
	return l.Title == j.Title && l.Company == j.Company
}
