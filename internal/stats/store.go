package stats

import (
	"context"
	"database/sql"
	"fmt"
)

// Run is one persisted stats run of a tree.
type Run struct {
	ID          int64    `json:"id"`
	TreeName    string   `json:"treeName"`
	Words       int      `json:"words"`
	MaxAttempts int      `json:"maxAttempts"`
	Failures    int      `json:"failures"`
	ElapsedMs   int64    `json:"elapsedMs"`
	CreatedAt   string   `json:"createdAt"`
	Buckets     []Bucket `json:"buckets"`
}

// Store persists stats runs in the stats_runs and stats_buckets tables.
type Store struct{ db *sql.DB }

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

// Save records r for treeName and returns the new run ID.
func (s *Store) Save(ctx context.Context, treeName string, r Report, elapsedMs int64) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO stats_runs(tree_name, words, max_attempts, failures, elapsed_ms)
		VALUES(?,?,?,?,?)`, treeName, r.Words, r.MaxAttempts, len(r.Failures), elapsedMs,
	)
	if err != nil {
		return 0, fmt.Errorf("insert run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	for _, b := range r.Buckets() {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO stats_buckets(run_id, attempts, count) VALUES(?,?,?)`,
			id, b.Attempts, b.Count,
		); err != nil {
			return 0, fmt.Errorf("insert bucket: %w", err)
		}
	}
	return id, tx.Commit()
}

// Runs returns the latest runs of treeName, newest first.
func (s *Store) Runs(ctx context.Context, treeName string, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, tree_name, words, max_attempts, failures, elapsed_ms, created_at
		FROM stats_runs
		WHERE tree_name=?
		ORDER BY id DESC
		LIMIT ?`, treeName, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Run, 0, limit)
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.TreeName, &r.Words, &r.MaxAttempts, &r.Failures, &r.ElapsedMs, &r.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range out {
		b, err := s.buckets(ctx, out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i].Buckets = b
	}
	return out, nil
}

func (s *Store) buckets(ctx context.Context, runID int64) ([]Bucket, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT attempts, count FROM stats_buckets WHERE run_id=? ORDER BY attempts`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Bucket
	for rows.Next() {
		var b Bucket
		if err := rows.Scan(&b.Attempts, &b.Count); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}
