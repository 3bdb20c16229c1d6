// Package archive keeps a local history of successful captures: every body
// that was written to an output file is also stored as a content-addressed
// blob and indexed in SQLite, so runs can be listed and compared later.
package archive

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/raysh454/tempusfetch/internal/logging"
)

//go:embed schema.sql
var schemaSQL string

// ErrNotFound is returned for an unknown capture id.
var ErrNotFound = errors.New("capture not found")

// Config places the archive on disk.
type Config struct {
	Enabled bool   `mapstructure:"enabled"`
	Dir     string `mapstructure:"dir"`
}

// DefaultDir is used when Config.Dir is empty.
const DefaultDir = ".tempusfetch"

// Capture is one archived response.
type Capture struct {
	ID     string
	Job    string
	URL    string
	Status int
	BlobID string
	Size   int

	// RecordCount is set when the body was a list.
	RecordCount *int

	OutputPath string
	CreatedAt  time.Time
}

// Archive is the SQLite index plus the blob store.
type Archive struct {
	db     *sql.DB
	store  *fsStore
	logger logging.Logger
}

// Open creates or opens the archive under cfg.Dir.
func Open(cfg Config, logger logging.Logger) (*Archive, error) {
	if logger == nil {
		return nil, errors.New("archive: nil logger provided")
	}
	dir := cfg.Dir
	if dir == "" {
		dir = DefaultDir
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create archive directory: %w", err)
	}

	db, err := sql.Open("sqlite", filepath.Join(dir, "archive.db"))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := applySchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	store, err := newFSStore(filepath.Join(dir, "blobs"))
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	componentLogger := logger.With(logging.Field{Key: "component", Value: "archive"})
	componentLogger.Debug("archive opened", logging.Field{Key: "dir", Value: dir})

	return &Archive{db: db, store: store, logger: componentLogger}, nil
}

func applySchema(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA temp_store=MEMORY",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("set pragma %q: %w", p, err)
		}
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("execute schema: %w", err)
	}
	return nil
}

// Record stores body and indexes it. ID and CreatedAt are filled in when
// empty; BlobID and Size always come from body.
func (a *Archive) Record(ctx context.Context, c Capture, body []byte) (*Capture, error) {
	if c.Job == "" {
		return nil, errors.New("archive: capture without job name")
	}

	blobID, err := a.store.put(body)
	if err != nil {
		return nil, err
	}
	c.BlobID = blobID
	c.Size = len(body)
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}

	var records sql.NullInt64
	if c.RecordCount != nil {
		records = sql.NullInt64{Int64: int64(*c.RecordCount), Valid: true}
	}

	_, err = a.db.ExecContext(ctx, `
		INSERT INTO captures (id, job, url, status, blob_id, size, record_count, output_path, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, c.ID, c.Job, c.URL, c.Status, c.BlobID, c.Size, records, nullableString(c.OutputPath), c.CreatedAt.UnixNano())
	if err != nil {
		return nil, fmt.Errorf("insert capture: %w", err)
	}

	a.logger.Info("capture archived",
		logging.Field{Key: "id", Value: c.ID},
		logging.Field{Key: "job", Value: c.Job},
		logging.Field{Key: "blob", Value: c.BlobID})
	return &c, nil
}

// List returns captures newest first. An empty job lists every job.
func (a *Archive) List(ctx context.Context, job string, limit int) ([]*Capture, error) {
	if limit <= 0 {
		limit = 10
	}

	query := `SELECT id, job, url, status, blob_id, size, record_count, output_path, created_at
		FROM captures`
	args := []any{}
	if job != "" {
		query += ` WHERE job = ?`
		args = append(args, job)
	}
	query += ` ORDER BY created_at DESC LIMIT ?`
	args = append(args, limit)

	rows, err := a.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query captures: %w", err)
	}
	defer rows.Close()

	var out []*Capture
	for rows.Next() {
		c, err := scanCapture(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate captures: %w", err)
	}
	return out, nil
}

// Get returns a capture and its body.
func (a *Archive) Get(ctx context.Context, id string) (*Capture, []byte, error) {
	row := a.db.QueryRowContext(ctx, `
		SELECT id, job, url, status, blob_id, size, record_count, output_path, created_at
		FROM captures WHERE id = ?
	`, id)
	c, err := scanCapture(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, nil, err
	}

	body, err := a.store.get(c.BlobID)
	if err != nil {
		return nil, nil, err
	}
	return c, body, nil
}

// Diff compares the bodies of two captures.
func (a *Archive) Diff(ctx context.Context, baseID, headID string) (*DiffResult, error) {
	a.logger.Debug("computing diff",
		logging.Field{Key: "base", Value: baseID},
		logging.Field{Key: "head", Value: headID})

	base, baseBody, err := a.Get(ctx, baseID)
	if err != nil {
		return nil, fmt.Errorf("base: %w", err)
	}
	head, headBody, err := a.Get(ctx, headID)
	if err != nil {
		return nil, fmt.Errorf("head: %w", err)
	}
	if base.BlobID == head.BlobID {
		return &DiffResult{BaseID: baseID, HeadID: headID, Chunks: []Chunk{}}, nil
	}
	return diffLines(baseID, headID, baseBody, headBody), nil
}

func (a *Archive) Close() error {
	return a.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanCapture(s scanner) (*Capture, error) {
	var (
		c       Capture
		records sql.NullInt64
		output  sql.NullString
		created int64
	)
	if err := s.Scan(&c.ID, &c.Job, &c.URL, &c.Status, &c.BlobID, &c.Size, &records, &output, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan capture: %w", err)
	}
	if records.Valid {
		n := int(records.Int64)
		c.RecordCount = &n
	}
	c.OutputPath = output.String
	c.CreatedAt = time.Unix(0, created)
	return &c, nil
}

func nullableString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
