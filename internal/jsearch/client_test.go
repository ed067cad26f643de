package jsearch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Search_SendsQueryAndHeaders(t *testing.T) {
	var gotPath string
	var gotQuery map[string]string
	var gotKey, gotHost string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = map[string]string{}
		for k := range r.URL.Query() {
			gotQuery[k] = r.URL.Query().Get(k)
		}
		gotKey = r.Header.Get("x-rapidapi-key")
		gotHost = r.Header.Get("x-rapidapi-host")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"OK","data":[{"job_id":"a1","job_title":"Go Engineer","employer_name":"Acme"}]}`))
	}))
	defer srv.Close()

	c := NewClient("secret", WithBaseURL(srv.URL+"/"), WithHost("example.test"))
	jobs, err := c.Search(context.Background(), SearchParams{Query: "go engineer", Page: 2, Country: "us", DatePosted: "week"})
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, "a1", jobs[0].JobID)

	assert.Equal(t, "/search", gotPath)
	assert.Equal(t, map[string]string{
		"query":       "go engineer",
		"page":        "2",
		"num_pages":   "1",
		"country":     "us",
		"date_posted": "week",
	}, gotQuery)
	assert.Equal(t, "secret", gotKey)
	assert.Equal(t, "example.test", gotHost)
}

func TestClient_Search_DefaultsPageToOne(t *testing.T) {
	c := NewClient("k")
	assert.Contains(t, c.searchURL(SearchParams{Query: "x"}), "page=1")
}

func TestClient_Search_NonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewClient("secret", WithBaseURL(srv.URL))
	_, err := c.Search(context.Background(), SearchParams{Query: "go"})
	require.Error(t, err)

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusTooManyRequests, statusErr.StatusCode)
	assert.Contains(t, statusErr.Body, "quota exceeded")
}

func TestClient_Search_MissingKeyMakesNoCall(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		called = true
	}))
	defer srv.Close()

	c := NewClient("  ", WithBaseURL(srv.URL))
	assert.False(t, c.Configured())
	_, err := c.Search(context.Background(), SearchParams{Query: "go"})
	require.ErrorIs(t, err, ErrMissingAPIKey)
	assert.False(t, called)
}

func TestClient_Search_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(time.Second):
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()

	c := NewClient("secret", WithBaseURL(srv.URL), WithTimeout(50*time.Millisecond))
	_, err := c.Search(context.Background(), SearchParams{Query: "go"})
	require.Error(t, err)
}

func TestClient_Search_BadJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"data":`))
	}))
	defer srv.Close()

	c := NewClient("secret", WithBaseURL(srv.URL))
	_, err := c.Search(context.Background(), SearchParams{Query: "go"})
	require.Error(t, err)
}
