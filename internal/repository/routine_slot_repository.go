package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/campuskit/routine-api/internal/models"
)

const slotColumns = `id, program_id, semester, section, academic_year_id, day_index, slot_index, subject_ids, teacher_ids, room_id, class_type, class_category, lab_group_id, lab_group, recurrence_type, recurrence_pattern, custom_weeks, span_id, span_master, subject_names, teacher_names, room_name, is_active, is_archived, version, created_by, updated_by, created_at, updated_at`

const slotInsert = `INSERT INTO routine_slots (id, program_id, semester, section, academic_year_id, day_index, slot_index, subject_ids, teacher_ids, room_id, class_type, class_category, lab_group_id, lab_group, recurrence_type, recurrence_pattern, custom_weeks, span_id, span_master, subject_names, teacher_names, room_name, is_active, is_archived, version, created_by, updated_by, created_at, updated_at) VALUES (:id, :program_id, :semester, :section, :academic_year_id, :day_index, :slot_index, :subject_ids, :teacher_ids, :room_id, :class_type, :class_category, :lab_group_id, :lab_group, :recurrence_type, :recurrence_pattern, :custom_weeks, :span_id, :span_master, :subject_names, :teacher_names, :room_name, :is_active, :is_archived, :version, :created_by, :updated_by, :created_at, :updated_at)`

// RoutineSlotRepository provides persistence for routine slots.
type RoutineSlotRepository struct {
	db *sqlx.DB
}

// NewRoutineSlotRepository creates a new routine slot repository.
func NewRoutineSlotRepository(db *sqlx.DB) *RoutineSlotRepository {
	return &RoutineSlotRepository{db: db}
}

func (r *RoutineSlotRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// InTransaction runs fn inside a transaction, rolling back on error.
func (r *RoutineSlotRepository) InTransaction(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin routine tx: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit routine tx: %w", err)
	}
	return nil
}

// LockCoordinate serialises writers on one grid coordinate for the duration
// of the surrounding transaction. The re-check-then-insert sequence behind
// this lock is what keeps two concurrent assignments from double-booking.
func (r *RoutineSlotRepository) LockCoordinate(ctx context.Context, tx *sqlx.Tx, yearID string, dayIndex, slotIndex int) error {
	key := fmt.Sprintf("%s:%d:%d", yearID, dayIndex, slotIndex)
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, key); err != nil {
		return fmt.Errorf("lock coordinate %s: %w", key, err)
	}
	return nil
}

// List returns routine slots with optional filtering and pagination.
func (r *RoutineSlotRepository) List(ctx context.Context, filter models.RoutineSlotFilter) ([]models.RoutineSlot, int, error) {
	base := "FROM routine_slots WHERE is_active = TRUE AND is_archived = FALSE"
	var conditions []string
	var args []interface{}

	if filter.ProgramID != "" {
		conditions = append(conditions, fmt.Sprintf("program_id = $%d", len(args)+1))
		args = append(args, filter.ProgramID)
	}
	if filter.Semester > 0 {
		conditions = append(conditions, fmt.Sprintf("semester = $%d", len(args)+1))
		args = append(args, filter.Semester)
	}
	if filter.Section != "" {
		conditions = append(conditions, fmt.Sprintf("section = $%d", len(args)+1))
		args = append(args, filter.Section)
	}
	if filter.AcademicYearID != "" {
		conditions = append(conditions, fmt.Sprintf("academic_year_id = $%d", len(args)+1))
		args = append(args, filter.AcademicYearID)
	}
	if filter.TeacherID != "" {
		conditions = append(conditions, fmt.Sprintf("teacher_ids @> ARRAY[$%d]::text[]", len(args)+1))
		args = append(args, filter.TeacherID)
	}
	if filter.DayIndex != nil {
		conditions = append(conditions, fmt.Sprintf("day_index = $%d", len(args)+1))
		args = append(args, *filter.DayIndex)
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	sortBy := filter.SortBy
	allowedSorts := map[string]bool{
		"day_index":  true,
		"slot_index": true,
		"semester":   true,
		"created_at": true,
	}
	if !allowedSorts[sortBy] {
		sortBy = "day_index"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "ASC"
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 200 {
		size = 50
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY %s %s, slot_index ASC LIMIT %d OFFSET %d", slotColumns, base, sortBy, order, size, offset)
	var slots []models.RoutineSlot
	if err := r.db.SelectContext(ctx, &slots, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list routine slots: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count routine slots: %w", err)
	}

	return slots, total, nil
}

// FindByID loads a routine slot by id.
func (r *RoutineSlotRepository) FindByID(ctx context.Context, id string) (*models.RoutineSlot, error) {
	query := fmt.Sprintf("SELECT %s FROM routine_slots WHERE id = $1", slotColumns)
	var slot models.RoutineSlot
	if err := r.db.GetContext(ctx, &slot, query, id); err != nil {
		return nil, err
	}
	return &slot, nil
}

// FindTeacherConflicts returns active slots at the coordinate whose teacher
// set intersects the proposed one, restricted to the same semester parity.
func (r *RoutineSlotRepository) FindTeacherConflicts(ctx context.Context, exec sqlx.ExtContext, yearID string, dayIndex, slotIndex, semester int, teacherIDs []string, excludeID string) ([]models.RoutineSlot, error) {
	query := fmt.Sprintf(`SELECT %s FROM routine_slots
WHERE academic_year_id = $1 AND day_index = $2 AND slot_index = $3
  AND is_active = TRUE AND is_archived = FALSE
  AND semester %% 2 = $4 %% 2
  AND teacher_ids && $5
  AND ($6 = '' OR id <> $6)
ORDER BY created_at ASC`, slotColumns)

	var slots []models.RoutineSlot
	if err := sqlx.SelectContext(ctx, r.exec(exec), &slots, query, yearID, dayIndex, slotIndex, semester, pq.Array(teacherIDs), excludeID); err != nil {
		return nil, fmt.Errorf("find teacher conflicts: %w", err)
	}
	return slots, nil
}

// FindRoomConflicts returns active slots at the coordinate occupying the
// given room within the same semester parity.
func (r *RoutineSlotRepository) FindRoomConflicts(ctx context.Context, exec sqlx.ExtContext, yearID string, dayIndex, slotIndex, semester int, roomID, excludeID string) ([]models.RoutineSlot, error) {
	query := fmt.Sprintf(`SELECT %s FROM routine_slots
WHERE academic_year_id = $1 AND day_index = $2 AND slot_index = $3
  AND is_active = TRUE AND is_archived = FALSE
  AND semester %% 2 = $4 %% 2
  AND room_id = $5
  AND ($6 = '' OR id <> $6)
ORDER BY created_at ASC`, slotColumns)

	var slots []models.RoutineSlot
	if err := sqlx.SelectContext(ctx, r.exec(exec), &slots, query, yearID, dayIndex, slotIndex, semester, roomID, excludeID); err != nil {
		return nil, fmt.Errorf("find room conflicts: %w", err)
	}
	return slots, nil
}

// BusyTeacherIDs returns the distinct teacher ids occupied at a coordinate
// within the semester's parity group. Slots of the caller's own lab-group
// family do not count as occupying, mirroring the conflict exemption.
func (r *RoutineSlotRepository) BusyTeacherIDs(ctx context.Context, yearID string, dayIndex, slotIndex, semester int, labGroupID *string) ([]string, error) {
	const query = `SELECT DISTINCT unnest(teacher_ids) FROM routine_slots
WHERE academic_year_id = $1 AND day_index = $2 AND slot_index = $3
  AND is_active = TRUE AND is_archived = FALSE
  AND semester % 2 = $4 % 2
  AND ($5::text IS NULL OR lab_group_id IS DISTINCT FROM $5)`

	var ids []string
	if err := r.db.SelectContext(ctx, &ids, query, yearID, dayIndex, slotIndex, semester, labGroupID); err != nil {
		return nil, fmt.Errorf("busy teacher ids: %w", err)
	}
	return ids, nil
}

// BusyRoomIDs returns the distinct room ids occupied at a coordinate within
// the semester's parity group, with the same lab-family exemption.
func (r *RoutineSlotRepository) BusyRoomIDs(ctx context.Context, yearID string, dayIndex, slotIndex, semester int, labGroupID *string) ([]string, error) {
	const query = `SELECT DISTINCT room_id FROM routine_slots
WHERE academic_year_id = $1 AND day_index = $2 AND slot_index = $3
  AND is_active = TRUE AND is_archived = FALSE
  AND semester % 2 = $4 % 2
  AND room_id IS NOT NULL
  AND ($5::text IS NULL OR lab_group_id IS DISTINCT FROM $5)`

	var ids []string
	if err := r.db.SelectContext(ctx, &ids, query, yearID, dayIndex, slotIndex, semester, labGroupID); err != nil {
		return nil, fmt.Errorf("busy room ids: %w", err)
	}
	return ids, nil
}

// ListBySection returns a section's active slots ordered by day/period.
func (r *RoutineSlotRepository) ListBySection(ctx context.Context, programID string, semester int, section, yearID string) ([]models.RoutineSlot, error) {
	query := fmt.Sprintf(`SELECT %s FROM routine_slots
WHERE program_id = $1 AND semester = $2 AND section = $3 AND academic_year_id = $4
  AND is_active = TRUE AND is_archived = FALSE
ORDER BY day_index ASC, slot_index ASC`, slotColumns)

	var slots []models.RoutineSlot
	if err := r.db.SelectContext(ctx, &slots, query, programID, semester, section, yearID); err != nil {
		return nil, fmt.Errorf("list section slots: %w", err)
	}
	return slots, nil
}

// ListByTeacher returns all active slots a teacher appears in.
func (r *RoutineSlotRepository) ListByTeacher(ctx context.Context, teacherID, yearID string) ([]models.RoutineSlot, error) {
	query := fmt.Sprintf(`SELECT %s FROM routine_slots
WHERE teacher_ids @> ARRAY[$1]::text[] AND academic_year_id = $2
  AND is_active = TRUE AND is_archived = FALSE
ORDER BY day_index ASC, slot_index ASC`, slotColumns)

	var slots []models.RoutineSlot
	if err := r.db.SelectContext(ctx, &slots, query, teacherID, yearID); err != nil {
		return nil, fmt.Errorf("list teacher slots: %w", err)
	}
	return slots, nil
}

// ListBySpan returns all records of one spanning class.
func (r *RoutineSlotRepository) ListBySpan(ctx context.Context, spanID string) ([]models.RoutineSlot, error) {
	query := fmt.Sprintf(`SELECT %s FROM routine_slots WHERE span_id = $1 AND is_active = TRUE ORDER BY slot_index ASC`, slotColumns)
	var slots []models.RoutineSlot
	if err := r.db.SelectContext(ctx, &slots, query, spanID); err != nil {
		return nil, fmt.Errorf("list span slots: %w", err)
	}
	return slots, nil
}

// InsertBatch inserts slot records through the given executor. All records
// of a span or elective go through one call so they commit together.
func (r *RoutineSlotRepository) InsertBatch(ctx context.Context, exec sqlx.ExtContext, slots []models.RoutineSlot) error {
	target := r.exec(exec)
	now := time.Now().UTC()
	for i := range slots {
		slot := &slots[i]
		if slot.ID == "" {
			slot.ID = uuid.NewString()
		}
		if slot.CreatedAt.IsZero() {
			slot.CreatedAt = now
		}
		slot.UpdatedAt = now
		if slot.Version == 0 {
			slot.Version = 1
		}
		if _, err := sqlx.NamedExecContext(ctx, target, slotInsert, slot); err != nil {
			return fmt.Errorf("insert routine slot: %w", err)
		}
	}
	return nil
}

// Update rewrites a slot's assignment and display cache in place.
func (r *RoutineSlotRepository) Update(ctx context.Context, exec sqlx.ExtContext, slot *models.RoutineSlot) error {
	slot.UpdatedAt = time.Now().UTC()
	const query = `UPDATE routine_slots SET subject_ids = :subject_ids, teacher_ids = :teacher_ids, room_id = :room_id, class_type = :class_type, class_category = :class_category, lab_group_id = :lab_group_id, lab_group = :lab_group, recurrence_type = :recurrence_type, recurrence_pattern = :recurrence_pattern, custom_weeks = :custom_weeks, subject_names = :subject_names, teacher_names = :teacher_names, room_name = :room_name, updated_by = :updated_by, updated_at = :updated_at WHERE id = :id`
	if _, err := sqlx.NamedExecContext(ctx, r.exec(exec), query, slot); err != nil {
		return fmt.Errorf("update routine slot: %w", err)
	}
	return nil
}

// SoftDelete deactivates a slot without removing the row.
func (r *RoutineSlotRepository) SoftDelete(ctx context.Context, id string, deletedBy *string) error {
	const query = `UPDATE routine_slots SET is_active = FALSE, updated_by = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, deletedBy, time.Now().UTC()); err != nil {
		return fmt.Errorf("soft delete routine slot: %w", err)
	}
	return nil
}

// SoftDeleteBySpan deactivates every record of a spanning class together.
func (r *RoutineSlotRepository) SoftDeleteBySpan(ctx context.Context, spanID string, deletedBy *string) (int64, error) {
	const query = `UPDATE routine_slots SET is_active = FALSE, updated_by = $2, updated_at = $3 WHERE span_id = $1 AND is_active = TRUE`
	res, err := r.db.ExecContext(ctx, query, spanID, deletedBy, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("soft delete span: %w", err)
	}
	affected, _ := res.RowsAffected()
	return affected, nil
}

// ArchiveByYear marks all of a session's slots archived with a version bump.
func (r *RoutineSlotRepository) ArchiveByYear(ctx context.Context, exec sqlx.ExtContext, yearID string) (int64, error) {
	const query = `UPDATE routine_slots SET is_archived = TRUE, version = version + 1, updated_at = $2 WHERE academic_year_id = $1 AND is_archived = FALSE`
	res, err := r.exec(exec).ExecContext(ctx, query, yearID, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("archive year slots: %w", err)
	}
	affected, _ := res.RowsAffected()
	return affected, nil
}
