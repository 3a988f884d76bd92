package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

type Store struct{ DB *sql.DB }

func Open(dsn string) (*Store, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)
	return &Store{DB: db}, nil
}

func (s *Store) Ping(ctx context.Context) error { return s.DB.PingContext(ctx) }

func (s *Store) Close() error { return s.DB.Close() }

func (s *Store) Migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS render_runs (
            run_id       TEXT PRIMARY KEY,
            variant      TEXT NOT NULL,
            final_state  TEXT NOT NULL,
            rendered     INTEGER NOT NULL DEFAULT 0,
            degraded     INTEGER NOT NULL DEFAULT 0,
            join_misses  INTEGER NOT NULL DEFAULT 0,
            failures     JSONB NOT NULL DEFAULT '[]'::jsonb,
            error        TEXT,
            finished_at  TIMESTAMPTZ NOT NULL,
            created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
        );`,
		`CREATE INDEX IF NOT EXISTS idx_render_runs_finished ON render_runs(finished_at DESC);`,
	}
	for _, q := range stmts {
		if _, err := s.DB.ExecContext(ctx, q); err != nil {
			return err
		}
	}
	return nil
}

// RunRecord is one finished pipeline run.
type RunRecord struct {
	RunID      string    `json:"run_id"`
	Variant    string    `json:"variant"`
	FinalState string    `json:"final_state"`
	Rendered   int       `json:"rendered"`
	Degraded   int       `json:"degraded"`
	JoinMisses int       `json:"join_misses"`
	Failures   []string  `json:"failures"`
	Error      string    `json:"error,omitempty"`
	FinishedAt time.Time `json:"finished_at"`
}

func (s *Store) RecordRun(ctx context.Context, rec RunRecord) error {
	if s.DB == nil {
		return errors.New("nil db")
	}
	failures, err := marshalFailures(rec.Failures)
	if err != nil {
		return err
	}
	_, err = s.DB.ExecContext(ctx, `
        INSERT INTO render_runs (run_id, variant, final_state, rendered, degraded, join_misses, failures, error, finished_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
        ON CONFLICT (run_id)
        DO UPDATE SET final_state=EXCLUDED.final_state, rendered=EXCLUDED.rendered, degraded=EXCLUDED.degraded,
            join_misses=EXCLUDED.join_misses, failures=EXCLUDED.failures, error=EXCLUDED.error, finished_at=EXCLUDED.finished_at`,
		rec.RunID, rec.Variant, rec.FinalState, rec.Rendered, rec.Degraded, rec.JoinMisses, failures, nullString(rec.Error), rec.FinishedAt,
	)
	return err
}

func (s *Store) RecentRuns(ctx context.Context, limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.DB.QueryContext(ctx, `
        SELECT run_id, variant, final_state, rendered, degraded, join_misses, failures, error, finished_at
        FROM render_runs
        ORDER BY finished_at DESC
        LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RunRecord
	for rows.Next() {
		var (
			rec      RunRecord
			failures []byte
			errText  sql.NullString
		)
		if err := rows.Scan(&rec.RunID, &rec.Variant, &rec.FinalState, &rec.Rendered, &rec.Degraded, &rec.JoinMisses, &failures, &errText, &rec.FinishedAt); err != nil {
			return nil, err
		}
		if rec.Failures, err = unmarshalFailures(failures); err != nil {
			return nil, err
		}
		rec.Error = errText.String
		out = append(out, rec)
	}
	return out, rows.Err()
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
