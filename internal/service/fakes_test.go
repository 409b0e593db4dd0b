package service

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"time"

	"github.com/tecnoacademia/attendance-api/internal/models"
	"github.com/tecnoacademia/attendance-api/internal/repository"
)

// fakeRoster is an in-memory student store shared by the service fakes.
type fakeRoster struct {
	students map[string]*models.Student
	nextID   int
}

func newFakeRoster() *fakeRoster {
	return &fakeRoster{students: map[string]*models.Student{}}
}

func (r *fakeRoster) add(name, instructorID string, document *string) *models.Student {
	r.nextID++
	student := &models.Student{
		ID:           fmt.Sprintf("student-%d", r.nextID),
		Name:         name,
		Document:     document,
		InstructorID: instructorID,
		CreatedAt:    time.Now(),
	}
	r.students[student.ID] = student
	return student
}

func (r *fakeRoster) FindByID(_ context.Context, id string) (*models.StudentDetail, error) {
	student, ok := r.students[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &models.StudentDetail{Student: *student}, nil
}

func (r *fakeRoster) FindOwned(_ context.Context, id, instructorID string) (*models.Student, error) {
	student, ok := r.students[id]
	if !ok || student.InstructorID != instructorID {
		return nil, sql.ErrNoRows
	}
	copied := *student
	return &copied, nil
}

func (r *fakeRoster) List(_ context.Context, filter models.StudentFilter) ([]models.StudentDetail, error) {
	var details []models.StudentDetail
	for _, student := range r.students {
		if filter.InstructorID != "" && student.InstructorID != filter.InstructorID {
			continue
		}
		details = append(details, models.StudentDetail{Student: *student})
	}
	sort.Slice(details, func(i, j int) bool { return details[i].Name < details[j].Name })
	return details, nil
}

func (r *fakeRoster) Create(_ context.Context, student *models.Student) error {
	r.nextID++
	if student.ID == "" {
		student.ID = fmt.Sprintf("student-%d", r.nextID)
	}
	copied := *student
	r.students[student.ID] = &copied
	return nil
}

func (r *fakeRoster) Update(_ context.Context, student *models.Student) error {
	if _, ok := r.students[student.ID]; !ok {
		return sql.ErrNoRows
	}
	copied := *student
	r.students[student.ID] = &copied
	return nil
}

func (r *fakeRoster) Delete(_ context.Context, id string) error {
	delete(r.students, id)
	return nil
}

// fakeLedger is an in-memory attendance store keyed by (student, date).
type fakeLedger struct {
	roster     *fakeRoster
	marks      map[string]*models.Attendance
	nextID     int
	commits    int
	rollbacks  int
	failCommit bool
}

func newFakeLedger(roster *fakeRoster) *fakeLedger {
	return &fakeLedger{roster: roster, marks: map[string]*models.Attendance{}}
}

func markKey(studentID string, date time.Time) string {
	return studentID + "|" + date.Format(models.DateLayout)
}

func (l *fakeLedger) Upsert(_ context.Context, mark *models.Attendance) (bool, error) {
	key := markKey(mark.StudentID, mark.AttendedOn)
	if existing, ok := l.marks[key]; ok {
		existing.Present = mark.Present
		mark.ID = existing.ID
		mark.InstructorID = existing.InstructorID
		return false, nil
	}
	l.nextID++
	mark.ID = fmt.Sprintf("mark-%d", l.nextID)
	copied := *mark
	l.marks[key] = &copied
	return true, nil
}

func (l *fakeLedger) FindByID(_ context.Context, id string) (*models.AttendanceDetail, error) {
	for _, mark := range l.marks {
		if mark.ID == id {
			detail := &models.AttendanceDetail{Attendance: *mark}
			if student, ok := l.roster.students[mark.StudentID]; ok {
				detail.StudentName = student.Name
				detail.StudentDocument = student.Document
			}
			return detail, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (l *fakeLedger) List(_ context.Context, filter models.AttendanceFilter) ([]models.AttendanceDetail, error) {
	var details []models.AttendanceDetail
	for _, mark := range l.marks {
		if filter.InstructorID != "" && mark.InstructorID != filter.InstructorID {
			continue
		}
		if filter.StudentID != "" && mark.StudentID != filter.StudentID {
			continue
		}
		details = append(details, models.AttendanceDetail{Attendance: *mark})
	}
	sort.Slice(details, func(i, j int) bool {
		return details[i].AttendedOn.After(details[j].AttendedOn)
	})
	return details, nil
}

func (l *fakeLedger) UpdatePresence(_ context.Context, id string, present bool) error {
	for _, mark := range l.marks {
		if mark.ID == id {
			mark.Present = present
			return nil
		}
	}
	return sql.ErrNoRows
}

func (l *fakeLedger) Delete(_ context.Context, id string) error {
	for key, mark := range l.marks {
		if mark.ID == id {
			delete(l.marks, key)
			return nil
		}
	}
	return sql.ErrNoRows
}

func (l *fakeLedger) Begin(_ context.Context) (repository.LedgerTx, error) {
	return &fakeLedgerTx{ledger: l}, nil
}

func (l *fakeLedger) markFor(studentID string, date time.Time) *models.Attendance {
	return l.marks[markKey(studentID, date)]
}

type fakeLedgerTx struct {
	ledger *fakeLedger
}

func (t *fakeLedgerTx) FindStudentByDocument(_ context.Context, instructorID, document string) (*models.Student, error) {
	for _, student := range t.ledger.roster.students {
		if student.InstructorID == instructorID && student.Document != nil && *student.Document == document {
			copied := *student
			return &copied, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (t *fakeLedgerTx) FindStudentByName(_ context.Context, instructorID, name string) (*models.Student, error) {
	for _, student := range t.ledger.roster.students {
		if student.InstructorID == instructorID && student.Name == name {
			copied := *student
			return &copied, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (t *fakeLedgerTx) CreateStudent(ctx context.Context, student *models.Student) error {
	return t.ledger.roster.Create(ctx, student)
}

func (t *fakeLedgerTx) Upsert(ctx context.Context, mark *models.Attendance) (bool, error) {
	return t.ledger.Upsert(ctx, mark)
}

func (t *fakeLedgerTx) Commit() error {
	if t.ledger.failCommit {
		return fmt.Errorf("commit refused")
	}
	t.ledger.commits++
	return nil
}

func (t *fakeLedgerTx) Rollback() error {
	t.ledger.rollbacks++
	return nil
}
