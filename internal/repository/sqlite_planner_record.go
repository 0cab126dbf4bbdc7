package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/alexanderramin/dayplan/internal/db"
	"github.com/alexanderramin/dayplan/internal/domain"
)

// SQLitePlannerRecordRepo implements PlannerRecordRepo on SQLite. Save issues
// several statements; run it on a transaction (see db.UnitOfWork) when the
// record must be written atomically.
type SQLitePlannerRecordRepo struct {
	db db.DBTX
}

// NewSQLitePlannerRecordRepo creates a repo on a *sql.DB or *sql.Tx.
func NewSQLitePlannerRecordRepo(conn db.DBTX) *SQLitePlannerRecordRepo {
	return &SQLitePlannerRecordRepo{db: conn}
}

const recordColumns = `id, user_id, day_plan_id, record_type, start_arrange, day_end_time,
	focus_time_zone, total_tasks, assigned_count, excluded_count, fill_rate,
	weights_version, selected_chain_id, warnings, created_at`

const taskColumns = `id, record_id, task_id, day_plan_id, title, task_type, assigned_by,
	assignment_status, start_at, end_at, estimated_time_range, focus_level, is_urgent,
	category, cognitive_load, group_id, group_label, order_in_group, importance_score,
	fatigue_cost, duration_avg_min, duration_plan_min, duration_min_chunk,
	duration_max_chunk, is_split, chunk_seq`

func (r *SQLitePlannerRecordRepo) Save(ctx context.Context, rec *domain.PlannerRecord) error {
	warnings, err := encodeWarnings(rec.Warnings)
	if err != nil {
		return fmt.Errorf("encoding warnings: %w", err)
	}
	_, err = r.db.ExecContext(ctx, `INSERT INTO planner_records (`+recordColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.UserID, rec.DayPlanID, string(rec.RecordType), rec.StartArrange, rec.DayEndTime,
		string(rec.FocusTimeZone), rec.TotalTasks, rec.AssignedCount, rec.ExcludedCount, rec.FillRate,
		rec.WeightsVersion, nullable(rec.SelectedChainID), warnings, formatTime(rec.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting planner record: %w", err)
	}

	for i := range rec.Tasks {
		t := &rec.Tasks[i]
		t.RecordID = rec.ID
		res, err := r.db.ExecContext(ctx, `INSERT INTO record_tasks (
			record_id, task_id, day_plan_id, title, task_type, assigned_by, assignment_status,
			start_at, end_at, estimated_time_range, focus_level, is_urgent, category,
			cognitive_load, group_id, group_label, order_in_group, importance_score,
			fatigue_cost, duration_avg_min, duration_plan_min, duration_min_chunk,
			duration_max_chunk, is_split, chunk_seq)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			t.RecordID, t.TaskID, t.DayPlanID, t.Title, string(t.TaskType), string(t.AssignedBy),
			string(t.AssignmentStatus), nullable(t.StartAt), nullable(t.EndAt),
			nullableString(t.EstimatedTimeRange), nullable(t.FocusLevel), nullableBool(t.IsUrgent),
			nullableString(t.Category), nullableString(t.CognitiveLoad), nullable(t.GroupID),
			nullable(t.GroupLabel), nullable(t.OrderInGroup), nullable(t.ImportanceScore),
			nullable(t.FatigueCost), nullable(t.DurationAvgMin), nullable(t.DurationPlanMin),
			nullable(t.DurationMinChunk), nullable(t.DurationMaxChunk), boolToInt(t.IsSplit),
			nullable(t.ChunkSeq),
		)
		if err != nil {
			return fmt.Errorf("inserting record task %d: %w", t.TaskID, err)
		}
		if id, err := res.LastInsertId(); err == nil {
			t.ID = id
		}
	}
	return nil
}

func (r *SQLitePlannerRecordRepo) GetByID(ctx context.Context, id string) (*domain.PlannerRecord, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+recordColumns+` FROM planner_records WHERE id = ?`, id)
	rec, err := scanRecord(row)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, `SELECT `+taskColumns+` FROM record_tasks WHERE record_id = ? ORDER BY id`, id)
	if err != nil {
		return nil, fmt.Errorf("listing record tasks: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		rec.Tasks = append(rec.Tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating record tasks: %w", err)
	}
	return rec, nil
}

func (r *SQLitePlannerRecordRepo) ListRecent(ctx context.Context, userID int64, limit int) ([]*domain.PlannerRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.db.QueryContext(ctx, `SELECT `+recordColumns+` FROM planner_records
		WHERE user_id = ? ORDER BY created_at DESC, id DESC LIMIT ?`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("listing planner records: %w", err)
	}
	defer rows.Close()

	var out []*domain.PlannerRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating planner records: %w", err)
	}
	return out, nil
}

func (r *SQLitePlannerRecordRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM planner_records WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting planner record: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("planner record %s: %w", id, ErrNotFound)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(s scanner) (*domain.PlannerRecord, error) {
	var (
		rec                     domain.PlannerRecord
		recordType, zone        string
		chainID                 sql.NullString
		warnings, createdAtText string
	)
	err := s.Scan(
		&rec.ID, &rec.UserID, &rec.DayPlanID, &recordType, &rec.StartArrange, &rec.DayEndTime,
		&zone, &rec.TotalTasks, &rec.AssignedCount, &rec.ExcludedCount, &rec.FillRate,
		&rec.WeightsVersion, &chainID, &warnings, &createdAtText,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("planner record: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("scanning planner record: %w", err)
	}
	rec.RecordType = domain.RecordType(recordType)
	rec.FocusTimeZone = domain.TimeZone(zone)
	rec.SelectedChainID = stringPtr[string](chainID)
	rec.CreatedAt = parseTime(createdAtText)
	if rec.Warnings, err = decodeWarnings(warnings); err != nil {
		return nil, fmt.Errorf("decoding warnings of record %s: %w", rec.ID, err)
	}
	return &rec, nil
}

func scanTask(s scanner) (domain.RecordTask, error) {
	var (
		t                                    domain.RecordTask
		taskType, assignedBy, status         string
		startAt, endAt, estimate             sql.NullString
		category, load, groupID, groupLabel  sql.NullString
		focus, urgent, order                 sql.NullInt64
		importance, fatigue                  sql.NullFloat64
		avg, plan, minChunk, maxChunk, chunk sql.NullInt64
		isSplit                              int
	)
	err := s.Scan(
		&t.ID, &t.RecordID, &t.TaskID, &t.DayPlanID, &t.Title, &taskType, &assignedBy, &status,
		&startAt, &endAt, &estimate, &focus, &urgent, &category, &load, &groupID, &groupLabel,
		&order, &importance, &fatigue, &avg, &plan, &minChunk, &maxChunk, &isSplit, &chunk,
	)
	if err != nil {
		return t, fmt.Errorf("scanning record task: %w", err)
	}
	t.TaskType = domain.TaskType(taskType)
	t.AssignedBy = domain.AssignedBy(assignedBy)
	t.AssignmentStatus = domain.AssignmentStatus(status)
	t.StartAt = stringPtr[string](startAt)
	t.EndAt = stringPtr[string](endAt)
	t.EstimatedTimeRange = stringPtr[domain.EstimatedTimeRange](estimate)
	t.FocusLevel = intPtr(focus)
	t.IsUrgent = boolPtr(urgent)
	t.Category = stringPtr[domain.Category](category)
	t.CognitiveLoad = stringPtr[domain.CognitiveLoad](load)
	t.GroupID = stringPtr[string](groupID)
	t.GroupLabel = stringPtr[string](groupLabel)
	t.OrderInGroup = intPtr(order)
	t.ImportanceScore = floatPtr(importance)
	t.FatigueCost = floatPtr(fatigue)
	t.DurationAvgMin = intPtr(avg)
	t.DurationPlanMin = intPtr(plan)
	t.DurationMinChunk = intPtr(minChunk)
	t.DurationMaxChunk = intPtr(maxChunk)
	t.IsSplit = isSplit != 0
	t.ChunkSeq = intPtr(chunk)
	return t, nil
}
