package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/directory-enrich/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close() //nolint:errcheck
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS runs (
	id            TEXT PRIMARY KEY,
	business_id   TEXT NOT NULL,
	business_name TEXT NOT NULL,
	request       TEXT NOT NULL,
	status        TEXT NOT NULL,
	confidence    INTEGER NOT NULL DEFAULT 0,
	response      TEXT,
	error         TEXT NOT NULL DEFAULT '',
	created_at    DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_runs_business_id ON runs(business_id);
CREATE INDEX IF NOT EXISTS idx_runs_status ON runs(status);
CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) SaveRun(ctx context.Context, req model.EnrichmentRequest, resp *model.EnrichmentResponse, runErr error) (*model.Run, error) {
	run := newRun(uuid.New().String(), req, resp, runErr)
	run.CreatedAt = time.Now().UTC()

	reqJSON, err := json.Marshal(req)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: marshal request")
	}
	var respJSON sql.NullString
	if resp != nil {
		b, err := json.Marshal(resp)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: marshal response")
		}
		respJSON = sql.NullString{String: string(b), Valid: true}
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO runs (id, business_id, business_name, request, status, confidence, response, error, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, req.BusinessID, req.BusinessName, string(reqJSON), string(run.Status),
		run.ConfidenceScore, respJSON, run.Error, run.CreatedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert run")
	}
	return run, nil
}

func (s *SQLiteStore) GetRun(ctx context.Context, runID string) (*model.Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, request, status, confidence, response, error, created_at FROM runs WHERE id = ?`,
		runID,
	)
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, eris.Wrapf(ErrNotFound, "sqlite: get run %s", runID)
	}
	return r, err
}

func (s *SQLiteStore) ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error) {
	query := `SELECT id, request, status, confidence, response, error, created_at FROM runs WHERE 1=1`
	var args []any

	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, string(filter.Status))
	}
	if filter.BusinessID != "" {
		query += ` AND business_id = ?`
		args = append(args, filter.BusinessID)
	}
	query += ` ORDER BY created_at DESC LIMIT ?`
	args = append(args, limitOrDefault(filter.Limit))

	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list runs")
	}
	defer rows.Close() //nolint:errcheck

	var runs []model.Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *r)
	}
	return runs, eris.Wrap(rows.Err(), "sqlite: list runs iterate")
}

type scannable interface {
	Scan(dest ...any) error
}

func scanRun(row scannable) (*model.Run, error) {
	var r model.Run
	var reqJSON, status string
	var respJSON sql.NullString

	err := row.Scan(&r.ID, &reqJSON, &status, &r.ConfidenceScore, &respJSON, &r.Error, &r.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan run")
	}
	r.Status = model.RunStatus(status)

	if err := json.Unmarshal([]byte(reqJSON), &r.Request); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal request")
	}
	if respJSON.Valid {
		r.Response = &model.EnrichmentResponse{}
		if err := json.Unmarshal([]byte(respJSON.String), r.Response); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal response")
		}
	}
	return &r, nil
}
