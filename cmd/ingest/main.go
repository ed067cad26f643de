// Command ingest imports provider listings through a running API server,
// one page at a time.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"github.com/careercardinal/jobtracker/internal/client"
	"github.com/careercardinal/jobtracker/internal/config"
	"github.com/careercardinal/jobtracker/internal/jsearch"
	"github.com/careercardinal/jobtracker/internal/tracker"
	"github.com/careercardinal/jobtracker/pkg/log"
)

type searcher interface {
	Search(ctx context.Context, params jsearch.SearchParams) ([]tracker.Listing, error)
}

type options struct {
	Queries    []string
	StartPage  int
	Pages      int
	Country    string
	DatePosted string
	Delay      time.Duration
}

func main() {
	apiBase := flag.String("api-base", client.DefaultBaseURL, "API server base URL")
	queries := flag.String("queries", "software engineer,software developer,SWE", "comma separated search terms")
	startPage := flag.Int("start-page", 1, "first page to fetch")
	pages := flag.Int("pages", 3, "pages per query")
	country := flag.String("country", "us", "country code")
	datePosted := flag.String("date-posted", "week", "all, today, 3days, week or month")
	delay := flag.Float64("delay", 1.0, "seconds to wait between requests")
	timeout := flag.Duration("timeout", 30*time.Second, "per request timeout")
	logLevel := flag.String("log-level", "info", "debug, info, warn or error")
	flag.Parse()

	log.InitLogger(log.ParseLevel(*logLevel))

	opts := options{
		Queries:    config.SplitList(*queries),
		StartPage:  *startPage,
		Pages:      *pages,
		Country:    *country,
		DatePosted: *datePosted,
		Delay:      time.Duration(*delay * float64(time.Second)),
	}
	if err := opts.validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		flag.Usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	api := client.New(*apiBase, client.WithTimeout(*timeout))
	total := run(ctx, api, opts, os.Stdout)
	fmt.Printf("Done. Processed %d jobs.\n", total)
}

func (o options) validate() error {
	if len(o.Queries) == 0 {
		return fmt.Errorf("at least one query is required")
	}
	if o.StartPage <= 0 || o.Pages <= 0 {
		return fmt.Errorf("start-page and pages must be positive")
	}
	if err := config.ValidateCountry(o.Country); err != nil {
		return fmt.Errorf("invalid country: %w", err)
	}
	if !slices.Contains(config.DatePostedValues, o.DatePosted) {
		return fmt.Errorf("invalid date-posted %q", o.DatePosted)
	}
	if o.Delay < 0 {
		return fmt.Errorf("delay must not be negative")
	}
	return nil
}

// run fetches every query and page in order and returns how many listings
// the server reported. Failed pages are logged and skipped.
func run(ctx context.Context, api searcher, opts options, out io.Writer) int {
	total := 0
	first := true
	for _, q := range opts.Queries {
		for page := opts.StartPage; page < opts.StartPage+opts.Pages; page++ {
			if !first && !sleep(ctx, opts.Delay) {
				return total
			}
			first = false

			fmt.Fprintf(out, "Fetching %q page %d...\n", q, page)
			listings, err := api.Search(ctx, jsearch.SearchParams{
				Query:      q,
				Page:       page,
				Country:    opts.Country,
				DatePosted: opts.DatePosted,
			})
			if err != nil {
				if ctx.Err() != nil {
					return total
				}
				log.Warn("Search %q page %d failed: %v", q, page, err)
				continue
			}
			fmt.Fprintf(out, "  -> %d jobs\n", len(listings))
			total += len(listings)
		}
	}
	return total
}

func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
