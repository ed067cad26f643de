package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/robfig/cron/v3"
	"golang.org/x/text/language"
)

// RuntimeSettings is the ingest configuration that can be changed while the
// server runs. An empty CronExpr disables scheduled ingest.
type RuntimeSettings struct {
	CronExpr   string   `json:"cron_expr"`
	Queries    []string `json:"queries"`
	Pages      int      `json:"pages"`
	Country    string   `json:"country"`
	DatePosted string   `json:"date_posted"`
}

func (s RuntimeSettings) Validate() error {
	if strings.TrimSpace(s.CronExpr) != "" {
		if _, err := cron.ParseStandard(s.CronExpr); err != nil {
			return fmt.Errorf("invalid cron_expr: %w", err)
		}
	}
	if len(s.Queries) == 0 {
		return fmt.Errorf("queries is required")
	}
	for _, q := range s.Queries {
		if strings.TrimSpace(q) == "" {
			return fmt.Errorf("queries must not contain empty terms")
		}
	}
	if s.Pages <= 0 {
		return fmt.Errorf("pages must be positive")
	}
	if err := ValidateCountry(s.Country); err != nil {
		return fmt.Errorf("invalid country: %w", err)
	}
	if !slices.Contains(DatePostedValues, s.DatePosted) {
		return fmt.Errorf("invalid date_posted %q", s.DatePosted)
	}
	return nil
}

// ValidateCountry accepts a two letter ISO 3166-1 region code.
func ValidateCountry(code string) error {
	code = strings.TrimSpace(code)
	if len(code) != 2 {
		return fmt.Errorf("country must be a two letter code, got %q", code)
	}
	region, err := language.ParseRegion(strings.ToUpper(code))
	if err != nil {
		return err
	}
	if !region.IsCountry() {
		return fmt.Errorf("%q is not a country", code)
	}
	return nil
}

func (c *Config) RuntimeSettings() RuntimeSettings {
	return RuntimeSettings{
		CronExpr:   c.Ingest.CronExpr,
		Queries:    slices.Clone(c.Ingest.Queries),
		Pages:      c.Ingest.Pages,
		Country:    c.Ingest.Country,
		DatePosted: c.Ingest.DatePosted,
	}
}

// WithRuntimeSettings overlays persisted settings on the environment.
func WithRuntimeSettings(settings RuntimeSettings) Option {
	return func(c *Config) {
		c.Ingest.CronExpr = strings.TrimSpace(settings.CronExpr)
		if len(settings.Queries) > 0 {
			c.Ingest.Queries = slices.Clone(settings.Queries)
		}
		if settings.Pages > 0 {
			c.Ingest.Pages = settings.Pages
		}
		if strings.TrimSpace(settings.Country) != "" {
			c.Ingest.Country = settings.Country
		}
		if strings.TrimSpace(settings.DatePosted) != "" {
			c.Ingest.DatePosted = settings.DatePosted
		}
	}
}

func LoadRuntimeSettingsFile(path string) (RuntimeSettings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return RuntimeSettings{}, err
	}
	var settings RuntimeSettings
	if err := json.Unmarshal(data, &settings); err != nil {
		return RuntimeSettings{}, fmt.Errorf("invalid settings file: %w", err)
	}
	return settings, nil
}

func WriteRuntimeSettingsFile(path string, settings RuntimeSettings) error {
	if err := settings.Validate(); err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	content, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return err
	}
	content = append(content, '\n')

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, content, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpPath, path)
}

type RuntimeSettingsStore struct {
	path string

	mu      sync.RWMutex
	current RuntimeSettings
}

func NewRuntimeSettingsStore(path string, initial RuntimeSettings) (*RuntimeSettingsStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("settings file path is required")
	}
	if err := initial.Validate(); err != nil {
		return nil, err
	}
	return &RuntimeSettingsStore{
		path:    path,
		current: initial,
	}, nil
}

func (s *RuntimeSettingsStore) GetRuntimeSettings() (RuntimeSettings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ret := s.current
	ret.Queries = slices.Clone(s.current.Queries)
	return ret, nil
}

func (s *RuntimeSettingsStore) UpdateRuntimeSettings(next RuntimeSettings) (RuntimeSettings, error) {
	next.CronExpr = strings.TrimSpace(next.CronExpr)
	if err := next.Validate(); err != nil {
		return RuntimeSettings{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := WriteRuntimeSettingsFile(s.path, next); err != nil {
		return RuntimeSettings{}, err
	}
	s.current = next
	return next, nil
}
