package db

import (
	"database/sql"
	"fmt"
	"strings"
)

// Migrate runs all schema migrations.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			// Tolerate "duplicate column name" errors from ALTER TABLE
			// since the migration system re-runs all statements.
			if strings.Contains(err.Error(), "duplicate column name") {
				continue
			}
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS planner_records (
		id              TEXT PRIMARY KEY,
		user_id         INTEGER NOT NULL,
		day_plan_id     INTEGER NOT NULL,
		record_type     TEXT NOT NULL DEFAULT 'AI_DRAFT'
		                CHECK(record_type IN ('AI_DRAFT','USER_FINAL')),
		start_arrange   TEXT NOT NULL,
		day_end_time    TEXT NOT NULL,
		focus_time_zone TEXT NOT NULL
		                CHECK(focus_time_zone IN ('MORNING','AFTERNOON','EVENING','NIGHT')),
		total_tasks     INTEGER NOT NULL DEFAULT 0,
		assigned_count  INTEGER NOT NULL DEFAULT 0,
		excluded_count  INTEGER NOT NULL DEFAULT 0,
		fill_rate       REAL NOT NULL DEFAULT 0,
		created_at      TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_planner_records_user ON planner_records(user_id, created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_planner_records_day_plan ON planner_records(day_plan_id)`,

	`CREATE TABLE IF NOT EXISTS record_tasks (
		id                   INTEGER PRIMARY KEY AUTOINCREMENT,
		record_id            TEXT NOT NULL REFERENCES planner_records(id) ON DELETE CASCADE,
		task_id              INTEGER NOT NULL,
		day_plan_id          INTEGER NOT NULL,
		title                TEXT NOT NULL,
		task_type            TEXT NOT NULL CHECK(task_type IN ('FIXED','FLEX')),
		assigned_by          TEXT NOT NULL CHECK(assigned_by IN ('AI','USER')),
		assignment_status    TEXT NOT NULL
		                     CHECK(assignment_status IN ('ASSIGNED','EXCLUDED','NOT_ASSIGNED')),
		start_at             TEXT,
		end_at               TEXT,
		estimated_time_range TEXT,
		focus_level          INTEGER,
		is_urgent            INTEGER,
		category             TEXT,
		cognitive_load       TEXT,
		group_id             TEXT,
		group_label          TEXT,
		order_in_group       INTEGER,
		importance_score     REAL,
		fatigue_cost         REAL,
		duration_avg_min     INTEGER,
		duration_plan_min    INTEGER,
		duration_min_chunk   INTEGER,
		duration_max_chunk   INTEGER,
		is_split             INTEGER NOT NULL DEFAULT 0,
		chunk_seq            INTEGER
	)`,

	`CREATE INDEX IF NOT EXISTS idx_record_tasks_record ON record_tasks(record_id)`,

	// Run metadata added after the first schema
	`ALTER TABLE planner_records ADD COLUMN weights_version INTEGER NOT NULL DEFAULT 1`,
	`ALTER TABLE planner_records ADD COLUMN selected_chain_id TEXT`,
	`ALTER TABLE planner_records ADD COLUMN warnings TEXT NOT NULL DEFAULT ''`,
}
