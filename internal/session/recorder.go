package session

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
)

// Run and stage states recorded in the ledger. A run that never began has
// no row at all.
const (
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Recorder tracks one run in the ledger.
type Recorder struct {
	db    *DB
	runID string
}

// Begin opens the run row and hands back its recorder.
func (d *DB) Begin(titles []string, country, language string, budget int) (*Recorder, error) {
	id := uuid.NewString()
	titlesJSON, err := json.Marshal(titles)
	if err != nil {
		return nil, fmt.Errorf("session: encode titles: %w", err)
	}
	_, err = d.pool.Exec(
		`INSERT INTO runs (id, started_at, status, job_titles, country, language, query_budget)
		 VALUES (?, ?, 'running', ?, ?, ?, ?)`,
		id, now(), string(titlesJSON), country, language, budget,
	)
	if err != nil {
		return nil, fmt.Errorf("session: begin run: %w", err)
	}
	return &Recorder{db: d, runID: id}, nil
}

func (r *Recorder) RunID() string { return r.runID }

// StageStarted upserts the stage row as running.
func (r *Recorder) StageStarted(stage string) {
	r.exec(
		`INSERT INTO run_stages (run_id, stage, status, started_at)
		 VALUES (?, ?, 'running', ?)
		 ON CONFLICT(run_id, stage) DO UPDATE SET
		   status='running', started_at=excluded.started_at, finished_at=NULL, detail=NULL`,
		r.runID, stage, now(),
	)
}

// StageFinished closes the stage row; err wins over detail.
func (r *Recorder) StageFinished(stage, detail string, err error) {
	status := StatusCompleted
	if err != nil {
		status = StatusFailed
		detail = err.Error()
	}
	r.exec(
		`UPDATE run_stages SET status=?, finished_at=?, detail=? WHERE run_id=? AND stage=?`,
		status, now(), detail, r.runID, stage,
	)
}

// Finish closes the run row.
func (r *Recorder) Finish(status string, runErr error) {
	msg := ""
	if runErr != nil {
		msg = runErr.Error()
	}
	r.exec(
		`UPDATE runs SET status=?, finished_at=?, error=? WHERE id=?`,
		status, now(), msg, r.runID,
	)
}

// ledger writes never abort a run
func (r *Recorder) exec(q string, args ...any) {
	if _, err := r.db.pool.Exec(q, args...); err != nil {
		log.Printf("[session] ledger write: %v", err)
	}
}

func now() string { return time.Now().UTC().Format(time.RFC3339) }
