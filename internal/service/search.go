package service

import (
	"context"
	"errors"
	"slices"
	"strings"

	"github.com/abadojack/whatlanggo"

	"github.com/careercardinal/jobtracker/internal/config"
	"github.com/careercardinal/jobtracker/internal/jsearch"
	"github.com/careercardinal/jobtracker/internal/tracker"
	"github.com/careercardinal/jobtracker/pkg/log"
)

const (
	DefaultSearchCountry    = "us"
	DefaultSearchDatePosted = "all"
)

// SearchRequest is one provider query. Zero values take the defaults.
type SearchRequest struct {
	Query      string
	Page       int
	Country    string
	DatePosted string
}

// SearchResult holds every mapped provider result and how many of them were
// written to the listing table.
type SearchResult struct {
	Listings []tracker.Listing
	Stored   int
}

// Search queries the provider and upserts each result that carries an
// external id. A failing row is logged and skipped; a failing provider call
// stores nothing.
func (s *JobService) Search(ctx context.Context, req SearchRequest) (SearchResult, error) {
	req, err := normalizeSearch(req)
	if err != nil {
		return SearchResult{}, err
	}
	if s.search == nil || !s.search.Configured() {
		return SearchResult{}, NewError(ErrConfig, "Server missing API configuration")
	}

	found, err := s.search.Search(ctx, jsearch.SearchParams{
		Query:      req.Query,
		Page:       req.Page,
		Country:    req.Country,
		DatePosted: req.DatePosted,
	})
	if err != nil {
		if errors.Is(err, jsearch.ErrMissingAPIKey) {
			return SearchResult{}, WrapError(err, ErrConfig, "Server missing API configuration")
		}
		return SearchResult{}, WrapError(err, ErrUpstream, "Failed to fetch jobs from JSearch").
			WithContext("query", req.Query).
			WithContext("page", req.Page)
	}

	ret := SearchResult{Listings: make([]tracker.Listing, 0, len(found))}
	for _, job := range found {
		listing := job.ToListing()
		listing.Language = s.detect(listing.Description)
		ret.Listings = append(ret.Listings, listing)

		if listing.ExternalID == "" {
			continue
		}
		if _, err := s.store.UpsertListing(ctx, listing); err != nil {
			log.Error("Failed to upsert job %s: %v", listing.ExternalID, err)
			continue
		}
		ret.Stored++
	}
	log.Info("Search %q page %d: %d results, %d stored", req.Query, req.Page, len(ret.Listings), ret.Stored)
	return ret, nil
}

func normalizeSearch(req SearchRequest) (SearchRequest, error) {
	req.Query = strings.TrimSpace(req.Query)
	if req.Query == "" {
		return req, NewError(ErrValidation, "Missing query parameter: query")
	}
	if req.Page <= 0 {
		req.Page = 1
	}
	req.Country = strings.ToLower(strings.TrimSpace(req.Country))
	if req.Country == "" {
		req.Country = DefaultSearchCountry
	}
	if err := config.ValidateCountry(req.Country); err != nil {
		return req, WrapError(err, ErrValidation, "Invalid country parameter").WithContext("country", req.Country)
	}
	req.DatePosted = strings.ToLower(strings.TrimSpace(req.DatePosted))
	if req.DatePosted == "" {
		req.DatePosted = DefaultSearchDatePosted
	}
	if !slices.Contains(config.DatePostedValues, req.DatePosted) {
		return req, NewError(ErrValidation, "Invalid date_posted parameter").WithContext("date_posted", req.DatePosted)
	}
	return req, nil
}

// DetectLanguage returns the ISO 639-1 code of text, or "" when the guess
// is unreliable.
func DetectLanguage(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}
	info := whatlanggo.Detect(text)
	if !info.IsReliable() {
		return ""
	}
	return info.Lang.Iso6391()
}
