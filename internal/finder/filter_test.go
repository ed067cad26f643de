package finder

import (
	"testing"

	"github.com/careercardinal/jobtracker/internal/tracker"
	"github.com/stretchr/testify/assert"
)

func TestFilterUnsaved(t *testing.T) {
	listings := []tracker.Listing{
		{Title: "Go Dev", Company: "Acme"},
		{Title: "Go Dev", Company: "Initech"},
		{Title: "SRE", Company: "Acme"},
	}
	jobs := []tracker.Job{{Title: "Go Dev", Company: "Acme", Status: "rejected"}}

	got := FilterUnsaved(listings, jobs)
	assert.Equal(t, listings[1:], got)
	assert.Equal(t, listings, FilterUnsaved(listings, nil))
}

func TestStarredJob(t *testing.T) {
	job := StarredJob(tracker.Listing{
		Title:          "Go Dev",
		Company:        "Acme",
		Location:       "Austin, TX, US",
		EmploymentType: "FULLTIME",
		ApplyLink:      "https://acme.example/apply",
		PostedDate:     "2024-03-05T23:30:00.000Z",
	})
	assert.Equal(t, tracker.Job{
		Title:   "Go Dev",
		Company: "Acme",
		Date:    "2024-03-05",
		Link:    "https://acme.example/apply",
		Notes:   "Found via Job Finder - Austin, TX, US - FULLTIME",
		Status:  tracker.StatusSaved,
	}, job)
}

func TestPostedDay(t *testing.T) {
	tests := map[string]string{
		"":                          "",
		"2023-11-14T22:13:20Z":      "2023-11-14",
		"2024-01-01T01:00:00+05:00": "2023-12-31",
		"2024-02-10":                "2024-02-10",
		"yesterday":                 "",
	}
	for in, want := range tests {
		assert.Equal(t, want, postedDay(in), in)
	}
}
