// Package postgres implements the core storage.Store on PostgreSQL through
// pgx. The schema mirrors the in-core invariants as database constraints, so
// concurrent writers bypassing the core cannot commit a colliding session or
// a second active timetable per scope.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/campusgrid/timetable/core/model"
	"github.com/campusgrid/timetable/core/storage"
)

// Store implements storage.Store on a pgx connection pool.
type Store struct {
	pool *pgxpool.Pool
}

// New connects to the database and verifies the connection.
func New(ctx context.Context, dsn string) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return &Store{pool: pool}, nil
}

// NewWithPool wraps an existing pool. The caller keeps ownership.
func NewWithPool(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Pool exposes the underlying pool for the migrator.
func (s *Store) Pool() *pgxpool.Pool { return s.pool }

// Close releases the pool.
func (s *Store) Close() { s.pool.Close() }

const timetableCols = `id, name, department, academic_year, semester, status,
	created_by, approved_by, approved_at, notes, created_at, updated_at`

func scanTimetable(row pgx.Row) (model.Timetable, error) {
	var tt model.Timetable
	err := row.Scan(&tt.ID, &tt.Name, &tt.Key.Department, &tt.Key.AcademicYear,
		&tt.Key.Semester, &tt.Status, &tt.CreatedBy, &tt.ApprovedBy,
		&tt.ApprovedAt, &tt.Notes, &tt.CreatedAt, &tt.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Timetable{}, storage.ErrNotFound
	}
	return tt, err
}

func (s *Store) PutTimetable(ctx context.Context, tt model.Timetable) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO timetables (`+timetableCols+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name, status = EXCLUDED.status,
			approved_by = EXCLUDED.approved_by, approved_at = EXCLUDED.approved_at,
			notes = EXCLUDED.notes, updated_at = EXCLUDED.updated_at`,
		tt.ID, tt.Name, tt.Key.Department, tt.Key.AcademicYear, tt.Key.Semester,
		tt.Status, tt.CreatedBy, tt.ApprovedBy, tt.ApprovedAt, tt.Notes,
		tt.CreatedAt, tt.UpdatedAt)
	if err != nil {
		return fmt.Errorf("put timetable %s: %w", tt.ID, err)
	}
	return nil
}

func (s *Store) Timetable(ctx context.Context, id string) (model.Timetable, error) {
	return scanTimetable(s.pool.QueryRow(ctx,
		`SELECT `+timetableCols+` FROM timetables WHERE id = $1`, id))
}

func (s *Store) TimetablesByKey(ctx context.Context, key model.TimetableKey) ([]model.Timetable, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+timetableCols+` FROM timetables
		WHERE department = $1 AND academic_year = $2 AND semester = $3
		ORDER BY created_at, id`,
		key.Department, key.AcademicYear, key.Semester)
	if err != nil {
		return nil, fmt.Errorf("timetables by key: %w", err)
	}
	defer rows.Close()
	var out []model.Timetable
	for rows.Next() {
		tt, err := scanTimetable(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, tt)
	}
	return out, rows.Err()
}

func (s *Store) ActiveTimetable(ctx context.Context, key model.TimetableKey) (model.Timetable, bool, error) {
	tt, err := scanTimetable(s.pool.QueryRow(ctx, `
		SELECT `+timetableCols+` FROM timetables
		WHERE department = $1 AND academic_year = $2 AND semester = $3 AND status = 'active'`,
		key.Department, key.AcademicYear, key.Semester))
	if errors.Is(err, storage.ErrNotFound) {
		return model.Timetable{}, false, nil
	}
	if err != nil {
		return model.Timetable{}, false, err
	}
	return tt, true, nil
}

func (s *Store) DeleteTimetable(ctx context.Context, id string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM timetables WHERE id = $1`, id)
	return err
}

func (s *Store) PutEntries(ctx context.Context, entries []model.TimetableEntry) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()
	for _, e := range entries {
		if _, err := tx.Exec(ctx, `
			INSERT INTO timetable_entries (timetable_id, group_key, schedule_id)
			VALUES ($1, $2, $3) ON CONFLICT DO NOTHING`,
			e.TimetableID, e.GroupKey, e.ScheduleID); err != nil {
			return fmt.Errorf("put entry: %w", err)
		}
	}
	return tx.Commit(ctx)
}

func (s *Store) Entries(ctx context.Context, timetableID string) ([]model.TimetableEntry, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT timetable_id, group_key, schedule_id FROM timetable_entries
		WHERE timetable_id = $1 ORDER BY group_key, schedule_id`, timetableID)
	if err != nil {
		return nil, fmt.Errorf("entries: %w", err)
	}
	defer rows.Close()
	var out []model.TimetableEntry
	for rows.Next() {
		var e model.TimetableEntry
		if err := rows.Scan(&e.TimetableID, &e.GroupKey, &e.ScheduleID); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *Store) DeleteEntries(ctx context.Context, timetableID string) error {
	_, err := s.pool.Exec(ctx,
		`DELETE FROM timetable_entries WHERE timetable_id = $1`, timetableID)
	return err
}

func (s *Store) PutSchedule(ctx context.Context, cs model.ClassSchedule, groupKeys []string) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `
		INSERT INTO class_schedules
			(id, subject_code, faculty_id, room_number, day, start_minute, end_minute, active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			subject_code = EXCLUDED.subject_code, faculty_id = EXCLUDED.faculty_id,
			room_number = EXCLUDED.room_number, day = EXCLUDED.day,
			start_minute = EXCLUDED.start_minute, end_minute = EXCLUDED.end_minute,
			active = EXCLUDED.active`,
		cs.ID, cs.SubjectCode, cs.FacultyID, cs.RoomNumber, string(cs.Day),
		int(cs.Window.Start), int(cs.Window.End), cs.Active, cs.CreatedAt); err != nil {
		return fmt.Errorf("put schedule %s: %w", cs.ID, err)
	}
	if _, err := tx.Exec(ctx,
		`DELETE FROM group_schedules WHERE schedule_id = $1`, cs.ID); err != nil {
		return err
	}
	for _, g := range groupKeys {
		if _, err := tx.Exec(ctx, `
			INSERT INTO group_schedules (group_key, schedule_id, active)
			VALUES ($1, $2, TRUE)`, g, cs.ID); err != nil {
			return fmt.Errorf("link group %s: %w", g, err)
		}
	}
	return tx.Commit(ctx)
}

func (s *Store) Schedule(ctx context.Context, id string) (model.ClassSchedule, []string, error) {
	var cs model.ClassSchedule
	var day string
	var start, end int
	err := s.pool.QueryRow(ctx, `
		SELECT id, subject_code, faculty_id, room_number, day, start_minute, end_minute, active, created_at
		FROM class_schedules WHERE id = $1`, id).
		Scan(&cs.ID, &cs.SubjectCode, &cs.FacultyID, &cs.RoomNumber, &day,
			&start, &end, &cs.Active, &cs.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.ClassSchedule{}, nil, storage.ErrNotFound
	}
	if err != nil {
		return model.ClassSchedule{}, nil, err
	}
	cs.Day = model.Day(day)
	cs.Window = model.Window{Start: model.Minute(start), End: model.Minute(end)}

	rows, err := s.pool.Query(ctx, `
		SELECT group_key FROM group_schedules WHERE schedule_id = $1 ORDER BY group_key`, id)
	if err != nil {
		return model.ClassSchedule{}, nil, err
	}
	defer rows.Close()
	var groups []string
	for rows.Next() {
		var g string
		if err := rows.Scan(&g); err != nil {
			return model.ClassSchedule{}, nil, err
		}
		groups = append(groups, g)
	}
	return cs, groups, rows.Err()
}

func (s *Store) Schedules(ctx context.Context) ([]storage.ScheduleRecord, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT cs.id, cs.subject_code, cs.faculty_id, cs.room_number, cs.day,
			cs.start_minute, cs.end_minute, cs.active, cs.created_at,
			COALESCE(array_agg(gs.group_key ORDER BY gs.group_key)
				FILTER (WHERE gs.group_key IS NOT NULL), '{}')
		FROM class_schedules cs
		LEFT JOIN group_schedules gs ON gs.schedule_id = cs.id
		GROUP BY cs.id
		ORDER BY cs.id`)
	if err != nil {
		return nil, fmt.Errorf("schedules: %w", err)
	}
	defer rows.Close()
	var out []storage.ScheduleRecord
	for rows.Next() {
		var rec storage.ScheduleRecord
		var day string
		var start, end int
		if err := rows.Scan(&rec.Schedule.ID, &rec.Schedule.SubjectCode,
			&rec.Schedule.FacultyID, &rec.Schedule.RoomNumber, &day,
			&start, &end, &rec.Schedule.Active, &rec.Schedule.CreatedAt,
			&rec.GroupKeys); err != nil {
			return nil, err
		}
		rec.Schedule.Day = model.Day(day)
		rec.Schedule.Window = model.Window{Start: model.Minute(start), End: model.Minute(end)}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *Store) DeleteSchedule(ctx context.Context, id string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM class_schedules WHERE id = $1`, id)
	return err
}

const requestCols = `id, requester, type, subject_code, schedule_id, counterpart_id,
	proposed_day, proposed_start, proposed_end, proposed_room, group_keys, faculty_id,
	reason, status, reviewed_by, reviewed_at, review_notes, created_at, updated_at`

func scanRequest(row pgx.Row) (model.SchedulingRequest, error) {
	var r model.SchedulingRequest
	var day string
	var start, end *int
	err := row.Scan(&r.ID, &r.Requester, &r.Type, &r.SubjectCode, &r.ScheduleID,
		&r.CounterpartID, &day, &start, &end, &r.ProposedRoom, &r.GroupKeys,
		&r.FacultyID, &r.Reason, &r.Status, &r.ReviewedBy, &r.ReviewedAt,
		&r.ReviewNotes, &r.CreatedAt, &r.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.SchedulingRequest{}, storage.ErrNotFound
	}
	if err != nil {
		return model.SchedulingRequest{}, err
	}
	r.ProposedDay = model.Day(day)
	if start != nil && end != nil {
		r.ProposedWindow = &model.Window{Start: model.Minute(*start), End: model.Minute(*end)}
	}
	return r, nil
}

func (s *Store) PutRequest(ctx context.Context, r model.SchedulingRequest) error {
	var start, end *int
	if r.ProposedWindow != nil {
		st, en := int(r.ProposedWindow.Start), int(r.ProposedWindow.End)
		start, end = &st, &en
	}
	groups := r.GroupKeys
	if groups == nil {
		groups = []string{}
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO scheduling_requests (`+requestCols+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
		ON CONFLICT (id) DO UPDATE SET
			status = EXCLUDED.status, reviewed_by = EXCLUDED.reviewed_by,
			reviewed_at = EXCLUDED.reviewed_at, review_notes = EXCLUDED.review_notes,
			updated_at = EXCLUDED.updated_at`,
		r.ID, r.Requester, string(r.Type), r.SubjectCode, r.ScheduleID,
		r.CounterpartID, string(r.ProposedDay), start, end, r.ProposedRoom,
		groups, r.FacultyID, r.Reason, string(r.Status), r.ReviewedBy,
		r.ReviewedAt, r.ReviewNotes, r.CreatedAt, r.UpdatedAt)
	if err != nil {
		return fmt.Errorf("put request %s: %w", r.ID, err)
	}
	return nil
}

func (s *Store) Request(ctx context.Context, id string) (model.SchedulingRequest, error) {
	return scanRequest(s.pool.QueryRow(ctx,
		`SELECT `+requestCols+` FROM scheduling_requests WHERE id = $1`, id))
}

func (s *Store) PendingRequests(ctx context.Context) ([]model.SchedulingRequest, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+requestCols+` FROM scheduling_requests
		WHERE status = 'pending' ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("pending requests: %w", err)
	}
	defer rows.Close()
	var out []model.SchedulingRequest
	for rows.Next() {
		r, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

var _ storage.Store = (*Store)(nil)
