package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/tecnoacademia/attendance-api/internal/models"
)

// AttendanceRepository manages persistence for attendance marks. The
// (student_id, attended_on) pair is unique at the schema level; Upsert
// leans on that constraint so concurrent writers for the same pair
// serialize inside postgres instead of racing a read-check-write cycle.
type AttendanceRepository struct {
	db *sqlx.DB
}

// NewAttendanceRepository constructs an AttendanceRepository.
func NewAttendanceRepository(db *sqlx.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

// upsertQuery keeps the recording instructor from the original insert: a
// conflicting write only replaces the presence flag.
const upsertQuery = `INSERT INTO attendance (id, student_id, attended_on, present, instructor_id)
        VALUES ($1, $2, $3, $4, $5)
        ON CONFLICT (student_id, attended_on)
        DO UPDATE SET present = EXCLUDED.present
        RETURNING id, instructor_id, (xmax = 0) AS created`

func upsertMark(ctx context.Context, q sqlx.QueryerContext, mark *models.Attendance) (bool, error) {
	id := mark.ID
	if id == "" {
		id = uuid.NewString()
	}
	row := q.QueryRowxContext(ctx, upsertQuery, id, mark.StudentID, mark.AttendedOn, mark.Present, mark.InstructorID)
	var created bool
	if err := row.Scan(&mark.ID, &mark.InstructorID, &created); err != nil {
		return false, fmt.Errorf("upsert attendance: %w", err)
	}
	return created, nil
}

// Upsert records a presence fact, creating the mark or updating the
// existing one for the (student, date) pair. It reports whether a new row
// was created.
func (r *AttendanceRepository) Upsert(ctx context.Context, mark *models.Attendance) (bool, error) {
	return upsertMark(ctx, r.db, mark)
}

// FindByID fetches a mark with its student detail.
func (r *AttendanceRepository) FindByID(ctx context.Context, id string) (*models.AttendanceDetail, error) {
	const query = `SELECT a.id, a.student_id, a.attended_on, a.present, a.instructor_id,
        s.name AS student_name, s.document AS student_document
        FROM attendance a JOIN students s ON s.id = a.student_id
        WHERE a.id = $1`
	var detail models.AttendanceDetail
	if err := r.db.GetContext(ctx, &detail, query, id); err != nil {
		return nil, err
	}
	return &detail, nil
}

// List returns marks matching the filter, newest date first.
func (r *AttendanceRepository) List(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceDetail, error) {
	conditions := []string{"1=1"}
	args := []interface{}{}

	if filter.InstructorID != "" {
		conditions = append(conditions, fmt.Sprintf("a.instructor_id = $%d", len(args)+1))
		args = append(args, filter.InstructorID)
	}
	if filter.StudentID != "" {
		conditions = append(conditions, fmt.Sprintf("a.student_id = $%d", len(args)+1))
		args = append(args, filter.StudentID)
	}
	if filter.From != nil {
		conditions = append(conditions, fmt.Sprintf("a.attended_on >= $%d", len(args)+1))
		args = append(args, *filter.From)
	}
	if filter.To != nil {
		conditions = append(conditions, fmt.Sprintf("a.attended_on <= $%d", len(args)+1))
		args = append(args, *filter.To)
	}
	if filter.Present != nil {
		conditions = append(conditions, fmt.Sprintf("a.present = $%d", len(args)+1))
		args = append(args, *filter.Present)
	}

	query := fmt.Sprintf(`SELECT a.id, a.student_id, a.attended_on, a.present, a.instructor_id,
        s.name AS student_name, s.document AS student_document
        FROM attendance a JOIN students s ON s.id = a.student_id
        WHERE %s ORDER BY a.attended_on DESC`, strings.Join(conditions, " AND "))

	var marks []models.AttendanceDetail
	if err := r.db.SelectContext(ctx, &marks, query, args...); err != nil {
		return nil, fmt.Errorf("list attendance: %w", err)
	}
	return marks, nil
}

// UpdatePresence sets the presence flag of an existing mark.
func (r *AttendanceRepository) UpdatePresence(ctx context.Context, id string, present bool) error {
	if _, err := r.db.ExecContext(ctx, "UPDATE attendance SET present = $2 WHERE id = $1", id, present); err != nil {
		return fmt.Errorf("update attendance: %w", err)
	}
	return nil
}

// Delete removes a single mark.
func (r *AttendanceRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM attendance WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete attendance: %w", err)
	}
	return nil
}

// LedgerTx scopes a batch of roster and attendance writes to one database
// transaction: everything persists on Commit or nothing does. Student
// creations are visible to later calls on the same transaction, so an
// import row can reference a student created moments earlier.
type LedgerTx interface {
	FindStudentByDocument(ctx context.Context, instructorID, document string) (*models.Student, error)
	FindStudentByName(ctx context.Context, instructorID, name string) (*models.Student, error)
	CreateStudent(ctx context.Context, student *models.Student) error
	Upsert(ctx context.Context, mark *models.Attendance) (bool, error)
	Commit() error
	Rollback() error
}

// Begin opens a ledger transaction.
func (r *AttendanceRepository) Begin(ctx context.Context) (LedgerTx, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin ledger tx: %w", err)
	}
	return &ledgerTx{tx: tx}, nil
}

type ledgerTx struct {
	tx *sqlx.Tx
}

func (t *ledgerTx) FindStudentByDocument(ctx context.Context, instructorID, document string) (*models.Student, error) {
	const query = `SELECT id, name, document, instructor_id, session_id, created_at
        FROM students WHERE document = $1 AND instructor_id = $2`
	var student models.Student
	if err := t.tx.GetContext(ctx, &student, query, document, instructorID); err != nil {
		return nil, err
	}
	return &student, nil
}

func (t *ledgerTx) FindStudentByName(ctx context.Context, instructorID, name string) (*models.Student, error) {
	const query = `SELECT id, name, document, instructor_id, session_id, created_at
        FROM students WHERE name = $1 AND instructor_id = $2`
	var student models.Student
	if err := t.tx.GetContext(ctx, &student, query, name, instructorID); err != nil {
		return nil, err
	}
	return &student, nil
}

func (t *ledgerTx) CreateStudent(ctx context.Context, student *models.Student) error {
	if student.ID == "" {
		student.ID = uuid.NewString()
	}
	const query = `INSERT INTO students (id, name, document, instructor_id, session_id, created_at)
        VALUES ($1, $2, $3, $4, $5, NOW())`
	if _, err := t.tx.ExecContext(ctx, query, student.ID, student.Name, student.Document, student.InstructorID, student.SessionID); err != nil {
		return fmt.Errorf("create student: %w", err)
	}
	return nil
}

func (t *ledgerTx) Upsert(ctx context.Context, mark *models.Attendance) (bool, error) {
	return upsertMark(ctx, t.tx, mark)
}

func (t *ledgerTx) Commit() error {
	return t.tx.Commit()
}

func (t *ledgerTx) Rollback() error {
	return t.tx.Rollback()
}
