package persistence

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/careercardinal/jobtracker/internal/ingest"
	"github.com/careercardinal/jobtracker/internal/tracker"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

var ErrMissingExternalID = errors.New("listing external job id is required")

type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("db path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	store := &SQLiteStore{db: db}
	if err := store.init(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Ping reports whether the database is reachable.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLiteStore) init(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "PRAGMA journal_mode = WAL;"); err != nil {
		return fmt.Errorf("set WAL mode: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, "PRAGMA busy_timeout = 5000;"); err != nil {
		return fmt.Errorf("set busy timeout: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		version INTEGER PRIMARY KEY,
		applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);`); err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}

	entries, err := migrationFiles.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("read migrations: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		version := migrationVersion(entry.Name())
		if version <= 0 {
			continue
		}
		var exists int
		if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM schema_migrations WHERE version = ?`, version).Scan(&exists); err != nil {
			return fmt.Errorf("check migration %s: %w", entry.Name(), err)
		}
		if exists > 0 {
			continue
		}
		// embed.FS paths are always slash-separated
		content, err := migrationFiles.ReadFile("migrations/" + entry.Name())
		if err != nil {
			return fmt.Errorf("read migration %s: %w", entry.Name(), err)
		}
		if _, err := s.db.ExecContext(ctx, string(content)); err != nil {
			return fmt.Errorf("apply migration %s: %w", entry.Name(), err)
		}
		if _, err := s.db.ExecContext(ctx, `INSERT INTO schema_migrations (version) VALUES (?)`, version); err != nil {
			return fmt.Errorf("record migration %s: %w", entry.Name(), err)
		}
	}
	return nil
}

// migrationVersion extracts the leading integer from a migration filename ("002_job_listings.sql" is 2).
func migrationVersion(name string) int {
	for i, c := range name {
		if c < '0' || c > '9' {
			if i == 0 {
				return 0
			}
			n, _ := strconv.Atoi(name[:i])
			return n
		}
	}
	n, _ := strconv.Atoi(name)
	return n
}

func (s *SQLiteStore) CreateJob(ctx context.Context, job tracker.Job) (int64, error) {
	status := job.Status
	if status == "" {
		status = tracker.StatusSaved
	}
	res, err := s.db.ExecContext(
		ctx,
		`INSERT INTO jobs (title, company, date, link, notes, status) VALUES (?, ?, ?, ?, ?, ?)`,
		job.Title, job.Company, job.Date, job.Link, job.Notes, status,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (s *SQLiteStore) ListJobs(ctx context.Context) ([]tracker.Job, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, title, company, date, link, notes, status
		 FROM jobs
		 ORDER BY id ASC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ret := make([]tracker.Job, 0)
	for rows.Next() {
		var item tracker.Job
		if err := rows.Scan(&item.ID, &item.Title, &item.Company, &item.Date, &item.Link, &item.Notes, &item.Status); err != nil {
			return nil, err
		}
		ret = append(ret, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ret, nil
}

func (s *SQLiteStore) GetJob(ctx context.Context, id int64) (tracker.Job, bool, error) {
	var item tracker.Job
	err := s.db.QueryRowContext(
		ctx,
		`SELECT id, title, company, date, link, notes, status FROM jobs WHERE id = ?`,
		id,
	).Scan(&item.ID, &item.Title, &item.Company, &item.Date, &item.Link, &item.Notes, &item.Status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return tracker.Job{}, false, nil
		}
		return tracker.Job{}, false, err
	}
	return item, true, nil
}

// UpdateJob overwrites every field of the record. An empty status resets it
// to saved, matching CreateJob.
func (s *SQLiteStore) UpdateJob(ctx context.Context, id int64, job tracker.Job) (int64, error) {
	status := job.Status
	if status == "" {
		status = tracker.StatusSaved
	}
	res, err := s.db.ExecContext(
		ctx,
		`UPDATE jobs
		 SET title = ?, company = ?, date = ?, link = ?, notes = ?, status = ?
		 WHERE id = ?`,
		job.Title, job.Company, job.Date, job.Link, job.Notes, status, id,
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *SQLiteStore) DeleteJob(ctx context.Context, id int64) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM jobs WHERE id = ?`, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// UpsertListing inserts a listing or refreshes the row with the same
// external id. created_at is kept from the first insert.
func (s *SQLiteStore) UpsertListing(ctx context.Context, l tracker.Listing) (int64, error) {
	if strings.TrimSpace(l.ExternalID) == "" {
		return 0, ErrMissingExternalID
	}
	createdAt := l.CreatedAt.UTC()
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	res, err := s.db.ExecContext(
		ctx,
		`INSERT INTO job_listings (
			external_job_id, title, company, location, employment_type, description, apply_link,
			is_remote, posted_date, salary_min, salary_max, salary_currency, language, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(external_job_id) DO UPDATE SET
			title=excluded.title,
			company=excluded.company,
			location=excluded.location,
			employment_type=excluded.employment_type,
			description=excluded.description,
			apply_link=excluded.apply_link,
			is_remote=excluded.is_remote,
			posted_date=excluded.posted_date,
			salary_min=excluded.salary_min,
			salary_max=excluded.salary_max,
			salary_currency=excluded.salary_currency,
			language=excluded.language`,
		l.ExternalID,
		l.Title,
		l.Company,
		l.Location,
		l.EmploymentType,
		l.Description,
		l.ApplyLink,
		nullableBool(l.IsRemote),
		l.PostedDate,
		nullableFloat(l.SalaryMin),
		nullableFloat(l.SalaryMax),
		l.SalaryCurrency,
		l.Language,
		createdAt,
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const listingColumns = `id, external_job_id, title, company, location, employment_type, description, apply_link,
	is_remote, posted_date, salary_min, salary_max, salary_currency, language, created_at`

func (s *SQLiteStore) ListListings(ctx context.Context, q tracker.ListingQuery) ([]tracker.Listing, error) {
	q = q.Normalize()
	where, args := listingFilter(q.Query)
	args = append(args, q.Limit, q.Offset)

	rows, err := s.db.QueryContext(
		ctx,
		`SELECT `+listingColumns+`
		 FROM job_listings`+where+`
		 ORDER BY created_at DESC, id DESC
		 LIMIT ? OFFSET ?`,
		args...,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ret := make([]tracker.Listing, 0)
	for rows.Next() {
		item, err := scanListing(rows)
		if err != nil {
			return nil, err
		}
		ret = append(ret, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ret, nil
}

func (s *SQLiteStore) CountListings(ctx context.Context, query string) (int, error) {
	where, args := listingFilter(strings.TrimSpace(query))
	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM job_listings`+where, args...).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

func (s *SQLiteStore) GetListing(ctx context.Context, externalID string) (tracker.Listing, bool, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT `+listingColumns+` FROM job_listings WHERE external_job_id = ?`,
		externalID,
	)
	item, err := scanListing(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return tracker.Listing{}, false, nil
		}
		return tracker.Listing{}, false, err
	}
	return item, true, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanListing(row rowScanner) (tracker.Listing, error) {
	var item tracker.Listing
	var isRemote sql.NullInt64
	var salaryMin, salaryMax sql.NullFloat64
	if err := row.Scan(
		&item.ID,
		&item.ExternalID,
		&item.Title,
		&item.Company,
		&item.Location,
		&item.EmploymentType,
		&item.Description,
		&item.ApplyLink,
		&isRemote,
		&item.PostedDate,
		&salaryMin,
		&salaryMax,
		&item.SalaryCurrency,
		&item.Language,
		&item.CreatedAt,
	); err != nil {
		return tracker.Listing{}, err
	}
	if isRemote.Valid {
		v := isRemote.Int64 != 0
		item.IsRemote = &v
	}
	if salaryMin.Valid {
		item.SalaryMin = &salaryMin.Float64
	}
	if salaryMax.Valid {
		item.SalaryMax = &salaryMax.Float64
	}
	return item, nil
}

// listingFilter builds a case-insensitive substring match over title,
// company and location. LIKE wildcards in the term match literally.
func listingFilter(term string) (string, []any) {
	if term == "" {
		return "", nil
	}
	pattern := "%" + escapeLike(term) + "%"
	return ` WHERE title LIKE ? ESCAPE '\' OR company LIKE ? ESCAPE '\' OR location LIKE ? ESCAPE '\'`,
		[]any{pattern, pattern, pattern}
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

func (s *SQLiteStore) LoadRuns(ctx context.Context) ([]*ingest.Run, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, source, dedupe_key, query, page, country, date_posted, status, processed, error, created_at, updated_at
		 FROM ingest_runs
		 ORDER BY created_at ASC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ret := make([]*ingest.Run, 0)
	for rows.Next() {
		var item ingest.Run
		var status string
		if err := rows.Scan(
			&item.ID,
			&item.Source,
			&item.DedupeKey,
			&item.Search.Query,
			&item.Search.Page,
			&item.Search.Country,
			&item.Search.DatePosted,
			&status,
			&item.Processed,
			&item.Error,
			&item.CreatedAt,
			&item.UpdatedAt,
		); err != nil {
			return nil, err
		}
		item.Status = ingest.Status(status)
		ret = append(ret, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ret, nil
}

func (s *SQLiteStore) UpsertRun(ctx context.Context, run *ingest.Run) error {
	if run == nil {
		return nil
	}
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO ingest_runs (
			id, source, dedupe_key, query, page, country, date_posted, status, processed, error, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			source=excluded.source,
			dedupe_key=excluded.dedupe_key,
			query=excluded.query,
			page=excluded.page,
			country=excluded.country,
			date_posted=excluded.date_posted,
			status=excluded.status,
			processed=excluded.processed,
			error=excluded.error,
			updated_at=excluded.updated_at`,
		run.ID,
		run.Source,
		run.DedupeKey,
		run.Search.Query,
		run.Search.Page,
		run.Search.Country,
		run.Search.DatePosted,
		string(run.Status),
		run.Processed,
		run.Error,
		run.CreatedAt.UTC(),
		run.UpdatedAt.UTC(),
	)
	return err
}

func (s *SQLiteStore) DeleteRun(ctx context.Context, runID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM ingest_runs WHERE id = ?`, runID)
	return err
}

func nullableBool(v *bool) any {
	if v == nil {
		return nil
	}
	if *v {
		return 1
	}
	return 0
}

func nullableFloat(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}
