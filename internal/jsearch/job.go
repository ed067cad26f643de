package jsearch

import (
	"strings"
	"time"

	"github.com/careercardinal/jobtracker/internal/tracker"
)

// Job is the subset of a provider result that gets imported.
type Job struct {
	JobID               string   `json:"job_id"`
	Title               string   `json:"job_title"`
	EmployerName        string   `json:"employer_name"`
	City                string   `json:"job_city"`
	State               string   `json:"job_state"`
	Country             string   `json:"job_country"`
	EmploymentType      string   `json:"job_employment_type"`
	Description         string   `json:"job_description"`
	ApplyLink           string   `json:"job_apply_link"`
	ApplyLinks          []string `json:"job_apply_links"`
	IsRemote            *bool    `json:"job_is_remote"`
	PostedAtDatetimeUTC string   `json:"job_posted_at_datetime_utc"`
	PostedAtTimestamp   *int64   `json:"job_posted_at_timestamp"`
	MinSalary           *float64 `json:"job_min_salary"`
	MaxSalary           *float64 `json:"job_max_salary"`
	SalaryCurrency      string   `json:"job_salary_currency"`
}

// ToListing maps a provider result onto the import record.
func (j Job) ToListing() tracker.Listing {
	return tracker.Listing{
		ExternalID:     strings.TrimSpace(j.JobID),
		Title:          j.Title,
		Company:        j.EmployerName,
		Location:       joinNonEmpty(", ", j.City, j.State, j.Country),
		EmploymentType: j.EmploymentType,
		Description:    j.Description,
		ApplyLink:      j.applyLink(),
		IsRemote:       j.IsRemote,
		PostedDate:     j.postedDate(),
		SalaryMin:      j.MinSalary,
		SalaryMax:      j.MaxSalary,
		SalaryCurrency: j.SalaryCurrency,
	}
}

func (j Job) applyLink() string {
	if j.ApplyLink != "" {
		return j.ApplyLink
	}
	for _, link := range j.ApplyLinks {
		if link != "" {
			return link
		}
	}
	return ""
}

func (j Job) postedDate() string {
	if j.PostedAtDatetimeUTC != "" {
		return j.PostedAtDatetimeUTC
	}
	if j.PostedAtTimestamp != nil && *j.PostedAtTimestamp > 0 {
		return time.Unix(*j.PostedAtTimestamp, 0).UTC().Format(time.RFC3339)
	}
	return ""
}

func joinNonEmpty(sep string, parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}
