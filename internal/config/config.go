package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/careercardinal/jobtracker/internal/tracker"
	"github.com/careercardinal/jobtracker/pkg/log"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
)

// Config holds all application configuration.
// Values come from environment variables with sensible defaults. Load
// reads a .env file first; NewFromEnv uses the process environment only.
//
// Environment Variables:
// HTTP:
// - HTTP_ADDR: listen address (default: :3000); PORT overrides it as :<port>
// - UI_STATIC_DIR: directory of a static browser UI (optional)
// - UI_ENABLED: serve UI_STATIC_DIR (default: true)
// - CORS_ALLOWED_ORIGIN: Access-Control-Allow-Origin value (default: *)
//
// Storage:
// - DATA_DIR: data directory (default: ./data)
// - DB_PATH: SQLite file (default: <DATA_DIR>/jobs.db)
// - SETTINGS_FILE: runtime settings file (default: <DATA_DIR>/settings.json)
//
// Job search provider:
// - JSEARCH_API_KEY: RapidAPI key; search is disabled without it
// - JSEARCH_BASE_URL: provider base URL (default: https://jsearch.p.rapidapi.com)
// - JSEARCH_HOST: x-rapidapi-host header (default: jsearch.p.rapidapi.com)
// - JSEARCH_TIMEOUT: request timeout in seconds (default: 30)
//
// Board:
// - BOARD_COLUMNS: comma separated column ids (default: saved,applied,interview,offer,rejected)
//
// Ingest:
// - INGEST_CRON_EXPR: five field cron expression; empty disables scheduled ingest
// - INGEST_QUERIES: comma separated search terms
// - INGEST_PAGES: pages per query (default: 3)
// - INGEST_COUNTRY: country code (default: us)
// - INGEST_DATE_POSTED: all, today, 3days, week or month (default: week)
// - INGEST_WORKERS: concurrent ingest runs (default: 1)
//
// - LOG_LEVEL: debug, info, warn or error (default: info)
type Config struct {
	HTTP    HTTPConfig    `json:"http"`
	System  SystemConfig  `json:"system"`
	JSearch JSearchConfig `json:"jsearch"`
	Board   BoardConfig   `json:"board"`
	Ingest  IngestConfig  `json:"ingest"`
}

type HTTPConfig struct {
	Addr              string `json:"addr"`
	UIStaticDir       string `json:"ui_static_dir"`
	UIEnabled         bool   `json:"ui_enabled"`
	CORSAllowedOrigin string `json:"cors_allowed_origin"`
}

type SystemConfig struct {
	DataDir      string `json:"data_dir"`
	DBFile       string `json:"db_file"`
	SettingsFile string `json:"settings_file"`
	LogLevel     string `json:"log_level"`
}

// JSearchConfig configures the RapidAPI job search client.
type JSearchConfig struct {
	APIKey  string `json:"-"`
	BaseURL string `json:"base_url"`
	Host    string `json:"host"`
	Timeout int    `json:"timeout"`
}

type BoardConfig struct {
	Columns []string `json:"columns"`
}

type IngestConfig struct {
	CronExpr   string   `json:"cron_expr"`
	Queries    []string `json:"queries"`
	Pages      int      `json:"pages"`
	Country    string   `json:"country"`
	DatePosted string   `json:"date_posted"`
	Workers    int      `json:"workers"`
}

var DefaultIngestQueries = []string{"software engineer", "software developer", "SWE"}

// DatePostedValues are the posting windows the provider accepts.
var DatePostedValues = []string{"all", "today", "3days", "week", "month"}

// Option is a function type for configuring Config
type Option func(*Config)

// Load reads a .env file from the working directory when one exists, then
// builds the Config from the environment.
func Load(opts ...Option) (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Warn("Failed to read .env: %v", err)
	}
	return NewFromEnv(opts...)
}

// NewFromEnv creates a new Config instance with values from environment variables and options
func NewFromEnv(opts ...Option) (*Config, error) {
	dataDir := getEnvString("DATA_DIR", "./data")
	config := &Config{
		HTTP: HTTPConfig{
			Addr:              httpAddrFromEnv(),
			UIStaticDir:       getEnvString("UI_STATIC_DIR", ""),
			UIEnabled:         getEnvBool("UI_ENABLED", true),
			CORSAllowedOrigin: getEnvString("CORS_ALLOWED_ORIGIN", "*"),
		},
		System: SystemConfig{
			DataDir:      dataDir,
			DBFile:       getEnvString("DB_PATH", ""),
			SettingsFile: getEnvString("SETTINGS_FILE", ""),
			LogLevel:     getEnvString("LOG_LEVEL", "info"),
		},
		JSearch: JSearchConfig{
			APIKey:  getEnvString("JSEARCH_API_KEY", ""),
			BaseURL: getEnvString("JSEARCH_BASE_URL", "https://jsearch.p.rapidapi.com"),
			Host:    getEnvString("JSEARCH_HOST", "jsearch.p.rapidapi.com"),
			Timeout: getEnvInt("JSEARCH_TIMEOUT", 30),
		},
		Board: BoardConfig{
			Columns: getEnvList("BOARD_COLUMNS", tracker.DefaultColumnIDs),
		},
		Ingest: IngestConfig{
			CronExpr:   getEnvString("INGEST_CRON_EXPR", ""),
			Queries:    getEnvList("INGEST_QUERIES", DefaultIngestQueries),
			Pages:      getEnvInt("INGEST_PAGES", 3),
			Country:    getEnvString("INGEST_COUNTRY", "us"),
			DatePosted: getEnvString("INGEST_DATE_POSTED", "week"),
			Workers:    getEnvInt("INGEST_WORKERS", 1),
		},
	}

	// Apply custom options
	for _, opt := range opts {
		opt(config)
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	log.Debug("Config: %+v", *config)
	if config.JSearch.APIKey == "" {
		log.Warn("JSEARCH_API_KEY is not set; job search is disabled")
	}
	return config, nil
}

// DBPath resolves the SQLite file, defaulting into the data directory.
func (c *Config) DBPath() string {
	if c.System.DBFile != "" {
		return c.System.DBFile
	}
	return filepath.Join(c.System.DataDir, "jobs.db")
}

func (c *Config) SettingsFilePath() string {
	if c.System.SettingsFile != "" {
		return c.System.SettingsFile
	}
	return filepath.Join(c.System.DataDir, "settings.json")
}

// Columns returns the configured board columns.
func (c *Config) Columns() tracker.Columns {
	cols, err := tracker.NewColumns(c.Board.Columns)
	if err != nil {
		return tracker.DefaultColumns()
	}
	return cols
}

// validate checks if all required configuration is properly set
func (c *Config) validate() error {
	if strings.TrimSpace(c.HTTP.Addr) == "" {
		return fmt.Errorf("HTTP_ADDR is required")
	}
	if strings.TrimSpace(c.System.DataDir) == "" && (c.System.DBFile == "" || c.System.SettingsFile == "") {
		return fmt.Errorf("DATA_DIR is required")
	}
	if c.JSearch.Timeout <= 0 {
		return fmt.Errorf("JSEARCH_TIMEOUT must be positive")
	}
	if _, err := tracker.NewColumns(c.Board.Columns); err != nil {
		return fmt.Errorf("invalid BOARD_COLUMNS: %w", err)
	}
	if c.Ingest.CronExpr != "" {
		if _, err := cron.ParseStandard(c.Ingest.CronExpr); err != nil {
			return fmt.Errorf("invalid INGEST_CRON_EXPR: %w", err)
		}
	}
	if c.Ingest.Pages <= 0 {
		return fmt.Errorf("INGEST_PAGES must be positive")
	}
	if c.Ingest.Workers <= 0 {
		return fmt.Errorf("INGEST_WORKERS must be positive")
	}
	if err := ValidateCountry(c.Ingest.Country); err != nil {
		return fmt.Errorf("invalid INGEST_COUNTRY: %w", err)
	}
	if !slices.Contains(DatePostedValues, c.Ingest.DatePosted) {
		return fmt.Errorf("invalid INGEST_DATE_POSTED %q", c.Ingest.DatePosted)
	}
	return nil
}

func httpAddrFromEnv() string {
	if port := strings.TrimSpace(os.Getenv("PORT")); port != "" {
		return ":" + port
	}
	return getEnvString("HTTP_ADDR", ":3000")
}

// getEnvString gets a string value from environment variables with default
func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets an integer value from environment variables with default
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getEnvList splits a comma separated value, dropping empty items.
func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return slices.Clone(defaultValue)
	}
	ret := SplitList(value)
	if len(ret) == 0 {
		return slices.Clone(defaultValue)
	}
	return ret
}

// SplitList splits a comma separated list and trims each item.
func SplitList(value string) []string {
	ret := make([]string, 0)
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			ret = append(ret, item)
		}
	}
	return ret
}
