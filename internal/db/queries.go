package db

import (
	"database/sql"
	"fmt"
)

// Run is one pipeline run in the history.
type Run struct {
	RunID        string
	Command      string
	ProjectID    int
	NoteableType string
	NoteableIID  int
	Success      bool
	Error        string
	DurationMs   int64
	StartedAt    string
}

// StageResult is one recorded stage execution.
type StageResult struct {
	RunID      string
	Stage      string
	Success    bool
	Error      string
	DurationMs int64
	Timestamp  string
}

// LogWebhookEvent records an inbound webhook event.
func (d *DB) LogWebhookEvent(kind, project, noteableType string) error {
	_, err := d.conn.Exec(
		`INSERT INTO webhook_events (kind, project, noteable_type) VALUES (?, ?, ?)`,
		kind, project, noteableType,
	)
	if err != nil {
		return fmt.Errorf("log webhook event: %w", err)
	}
	return nil
}

// LogRun records the outcome of one pipeline run.
func (d *DB) LogRun(r Run) error {
	_, err := d.conn.Exec(
		`INSERT INTO pipeline_runs (run_id, command, project_id, noteable_type, noteable_iid, success, error, duration_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		r.RunID, r.Command, r.ProjectID, r.NoteableType, r.NoteableIID, r.Success, nullable(r.Error), r.DurationMs,
	)
	if err != nil {
		return fmt.Errorf("log run %s: %w", r.RunID, err)
	}
	return nil
}

// LogStageResult records one stage execution within a run.
func (d *DB) LogStageResult(sr StageResult) error {
	_, err := d.conn.Exec(
		`INSERT INTO stage_results (run_id, stage, success, error, duration_ms) VALUES (?, ?, ?, ?, ?)`,
		sr.RunID, sr.Stage, sr.Success, nullable(sr.Error), sr.DurationMs,
	)
	if err != nil {
		return fmt.Errorf("log stage result: %w", err)
	}
	return nil
}

// ListRuns returns the most recent runs, newest first.
func (d *DB) ListRuns(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := d.conn.Query(
		`SELECT run_id, command, project_id, noteable_type, noteable_iid, success, COALESCE(error, ''), COALESCE(duration_ms, 0), started_at
		 FROM pipeline_runs ORDER BY started_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.RunID, &r.Command, &r.ProjectID, &r.NoteableType, &r.NoteableIID, &r.Success, &r.Error, &r.DurationMs, &r.StartedAt); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// GetStageResults returns the stage results for one run, in execution
// order.
func (d *DB) GetStageResults(runID string) ([]StageResult, error) {
	rows, err := d.conn.Query(
		`SELECT run_id, stage, success, COALESCE(error, ''), COALESCE(duration_ms, 0), timestamp
		 FROM stage_results WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("get stage results: %w", err)
	}
	defer rows.Close()

	var results []StageResult
	for rows.Next() {
		var sr StageResult
		if err := rows.Scan(&sr.RunID, &sr.Stage, &sr.Success, &sr.Error, &sr.DurationMs, &sr.Timestamp); err != nil {
			return nil, fmt.Errorf("scan stage result: %w", err)
		}
		results = append(results, sr)
	}
	return results, rows.Err()
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
