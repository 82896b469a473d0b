package archive

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/moah0o0/public-funeral-scrapper/internal/metrics"
)

// Archive stores run history in a single SQLite file per installation.
type Archive struct {
	db     *sql.DB
	dbPath string
}

// Options configures Archive behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging.
	EnableWAL bool
}

// DefaultOptions returns the default archive options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates the run archive under dbDir.
func Open(dbDir string, opts Options) (*Archive, error) {
	dbPath := filepath.Join(dbDir, "funeralscraper.db")

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("archive not found at %s", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("check archive path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("create archive directory: %w", err)
		}
	}

	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}

	// SQLite supports one writer; a bigger pool only adds lock contention.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	a := &Archive{db: db, dbPath: dbPath}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("enable WAL mode: %w", err)
		}
	}
	if err := a.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}
	return a, nil
}

// Close closes the database connection.
func (a *Archive) Close() error {
	return a.db.Close()
}

func (a *Archive) createTables() error {
	schema := `
	-- One row per pipeline run; the full metrics document rides along as JSON.
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		started_at TEXT NOT NULL,
		ended_at TEXT,
		duration_seconds REAL,
		success_count INTEGER DEFAULT 0,
		failure_count INTEGER DEFAULT 0,
		items_analyzed INTEGER DEFAULT 0,
		items_sent INTEGER DEFAULT 0,
		tor_usage_count INTEGER DEFAULT 0,
		metrics_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);

	-- Per-district outcomes of each run.
	CREATE TABLE IF NOT EXISTS source_results (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id INTEGER NOT NULL REFERENCES runs(id),
		district TEXT NOT NULL,
		success INTEGER NOT NULL,
		duration_seconds REAL,
		items_scraped INTEGER DEFAULT 0,
		used_tor INTEGER DEFAULT 0,
		error_message TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_source_results_run ON source_results(run_id);
	CREATE INDEX IF NOT EXISTS idx_source_results_district ON source_results(district);
	`

	_, err := a.db.ExecContext(context.Background(), schema)
	return err
}

// SaveRun archives one finished run and its per-district outcomes.
// Returns the archived run's row ID.
func (a *Archive) SaveRun(ctx context.Context, run *metrics.Run) (int64, error) {
	if run == nil {
		return 0, fmt.Errorf("archive: nil run")
	}

	doc, err := json.Marshal(metrics.Document(run))
	if err != nil {
		return 0, fmt.Errorf("archive: serialize metrics: %w", err)
	}

	endedAt := ""
	if !run.EndedAt.IsZero() {
		endedAt = run.EndedAt.Format(time.RFC3339)
	}

	result, err := a.db.ExecContext(ctx, `
	INSERT INTO runs (started_at, ended_at, duration_seconds, success_count,
		failure_count, items_analyzed, items_sent, tor_usage_count, metrics_json)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.StartedAt.Format(time.RFC3339),
		endedAt,
		run.TotalDuration().Seconds(),
		run.SuccessCount(),
		run.FailureCount(),
		run.ItemsAnalyzed,
		run.ItemsSent,
		run.TorUsageCount(),
		string(doc),
	)
	if err != nil {
		return 0, fmt.Errorf("archive: insert run: %w", err)
	}
	runID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("archive: run id: %w", err)
	}

	for _, src := range run.SourceResults {
		_, err := a.db.ExecContext(ctx, `
		INSERT INTO source_results (run_id, district, success, duration_seconds,
			items_scraped, used_tor, error_message)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
			runID,
			src.Source,
			boolToInt(src.Success),
			src.Duration.Seconds(),
			src.Items,
			boolToInt(src.UsedTor),
			src.Error,
		)
		if err != nil {
			return runID, fmt.Errorf("archive: insert source result: %w", err)
		}
	}
	return runID, nil
}

// RunRecord is one archived run's summary row.
type RunRecord struct {
	ID            int64
	StartedAt     time.Time
	EndedAt       time.Time
	Duration      time.Duration
	SuccessCount  int
	FailureCount  int
	ItemsAnalyzed int
	ItemsSent     int
	TorUsageCount int
	MetricsJSON   string
}

// RunHistory returns the most recent runs, newest first.
func (a *Archive) RunHistory(ctx context.Context, limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := a.db.QueryContext(ctx, `
	SELECT id, started_at, ended_at, duration_seconds, success_count,
		failure_count, items_analyzed, items_sent, tor_usage_count, metrics_json
	FROM runs
	ORDER BY started_at DESC
	LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("archive: query runs: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	var records []RunRecord
	for rows.Next() {
		var (
			rec                RunRecord
			durationSeconds    float64
			startedAt, endedAt string
		)
		if err := rows.Scan(&rec.ID, &startedAt, &endedAt, &durationSeconds,
			&rec.SuccessCount, &rec.FailureCount, &rec.ItemsAnalyzed,
			&rec.ItemsSent, &rec.TorUsageCount, &rec.MetricsJSON); err != nil {
			return nil, fmt.Errorf("archive: scan run: %w", err)
		}
		rec.StartedAt = parseTimestamp(startedAt)
		rec.EndedAt = parseTimestamp(endedAt)
		rec.Duration = time.Duration(durationSeconds * float64(time.Second))
		records = append(records, rec)
	}
	return records, rows.Err()
}

// SourceHistory returns a district's recent outcomes, newest run first.
func (a *Archive) SourceHistory(ctx context.Context, district string, limit int) ([]metrics.SourceResult, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := a.db.QueryContext(ctx, `
	SELECT district, success, duration_seconds, items_scraped, used_tor, error_message
	FROM source_results
	WHERE district = ?
	ORDER BY run_id DESC
	LIMIT ?`, district, limit)
	if err != nil {
		return nil, fmt.Errorf("archive: query source results: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	var results []metrics.SourceResult
	for rows.Next() {
		var (
			res               metrics.SourceResult
			success, usedTor  int
			durationSeconds   float64
			errorMessage      sql.NullString
		)
		if err := rows.Scan(&res.Source, &success, &durationSeconds,
			&res.Items, &usedTor, &errorMessage); err != nil {
			return nil, fmt.Errorf("archive: scan source result: %w", err)
		}
		res.Success = success != 0
		res.UsedTor = usedTor != 0
		res.Duration = time.Duration(durationSeconds * float64(time.Second))
		res.Error = errorMessage.String
		results = append(results, res)
	}
	return results, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// timestampFormats are the formats SQLite may hand back depending on how
// the value was written.
var timestampFormats = []string{
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
