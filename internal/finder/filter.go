package finder

import (
	"fmt"
	"strings"
	"time"

	"github.com/careercardinal/jobtracker/internal/tracker"
)

// FilterUnsaved drops listings whose title and company match a tracker
// record.
func FilterUnsaved(listings []tracker.Listing, jobs []tracker.Job) []tracker.Listing {
	ret := make([]tracker.Listing, 0, len(listings))
	for _, l := range listings {
		saved := false
		for _, j := range jobs {
			if tracker.SameRole(l, j) {
				saved = true
				break
			}
		}
		if !saved {
			ret = append(ret, l)
		}
	}
	return ret
}

// StarredJob builds the tracker record created when a listing is starred.
func StarredJob(l tracker.Listing) tracker.Job {
	return tracker.Job{
		Title:   l.Title,
		Company: l.Company,
		Date:    postedDay(l.PostedDate),
		Link:    l.ApplyLink,
		Notes:   fmt.Sprintf("Found via Job Finder - %s - %s", l.Location, l.EmploymentType),
		Status:  tracker.StatusSaved,
	}
}

// postedDay renders a posting timestamp as YYYY-MM-DD in UTC.
func postedDay(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", time.DateOnly} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC().Format(time.DateOnly)
		}
	}
	return ""
}
