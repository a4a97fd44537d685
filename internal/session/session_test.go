package session

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "jobscout.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestRecorderWritesRunLifecycle(t *testing.T) {
	db := openTestDB(t)

	rec, err := db.Begin([]string{"ML Engineer"}, "Egypt", "english", 5)
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	if rec.RunID() == "" {
		t.Fatalf("empty run id")
	}

	rec.StageStarted("queries")
	rec.StageFinished("queries", "step_1_suggested_job_search_queries.json", nil)
	rec.StageStarted("search")
	rec.StageFinished("search", "", errors.New("tavily: search status 500"))
	rec.Finish("failed", errors.New("stage search: tavily: search status 500"))

	var status, errText, titles string
	row := db.pool.QueryRow(`SELECT status, error, job_titles FROM runs WHERE id = ?`, rec.RunID())
	if err := row.Scan(&status, &errText, &titles); err != nil {
		t.Fatalf("scan run: %v", err)
	}
	if status != "failed" || !strings.Contains(errText, "tavily") {
		t.Fatalf("run row = %s %s", status, errText)
	}
	if !strings.Contains(titles, "ML Engineer") {
		t.Fatalf("titles = %s", titles)
	}

	var stageStatus, detail string
	row = db.pool.QueryRow(`SELECT status, detail FROM run_stages WHERE run_id = ? AND stage = 'queries'`, rec.RunID())
	if err := row.Scan(&stageStatus, &detail); err != nil {
		t.Fatalf("scan stage: %v", err)
	}
	if stageStatus != "completed" || !strings.Contains(detail, "step_1") {
		t.Fatalf("queries row = %s %s", stageStatus, detail)
	}

	row = db.pool.QueryRow(`SELECT status FROM run_stages WHERE run_id = ? AND stage = 'search'`, rec.RunID())
	if err := row.Scan(&stageStatus); err != nil {
		t.Fatalf("scan failed stage: %v", err)
	}
	if stageStatus != "failed" {
		t.Fatalf("search stage = %s, want failed", stageStatus)
	}
}

func TestStageRestartUpserts(t *testing.T) {
	db := openTestDB(t)
	rec, err := db.Begin([]string{"a"}, "x", "english", 1)
	if err != nil {
		t.Fatalf("begin: %v", err)
	}

	rec.StageStarted("queries")
	rec.StageFinished("queries", "done", nil)
	// a second run over the same recorder id must not violate the key
	rec.StageStarted("queries")

	var n int
	if err := db.pool.QueryRow(`SELECT COUNT(*) FROM run_stages WHERE run_id = ?`, rec.RunID()).Scan(&n); err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Fatalf("stage rows = %d, want 1", n)
	}
	var status string
	if err := db.pool.QueryRow(`SELECT status FROM run_stages WHERE run_id = ?`, rec.RunID()).Scan(&status); err != nil {
		t.Fatalf("scan: %v", err)
	}
	if status != "running" {
		t.Fatalf("status = %s, want running after restart", status)
	}
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jobscout.db")
	db, err := Open(path)
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	if _, err := db.Begin([]string{"a"}, "x", "english", 1); err != nil {
		t.Fatalf("begin: %v", err)
	}
	db.Close()

	again, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer again.Close()
	var n int
	if err := again.pool.QueryRow(`SELECT COUNT(*) FROM runs`).Scan(&n); err != nil {
		t.Fatalf("count runs: %v", err)
	}
	if n != 1 {
		t.Fatalf("runs = %d, want the run from the first open", n)
	}
}
