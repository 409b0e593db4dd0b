package handler

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tecnoacademia/attendance-api/internal/middleware"
	"github.com/tecnoacademia/attendance-api/internal/models"
	"github.com/tecnoacademia/attendance-api/internal/repository"
	"github.com/tecnoacademia/attendance-api/internal/service"
)

// memoryRoster and memoryLedger back the attendance and import services in
// handler tests.
type memoryRoster struct {
	students map[string]*models.Student
	nextID   int
}

func newMemoryRoster() *memoryRoster {
	return &memoryRoster{students: map[string]*models.Student{}}
}

func (m *memoryRoster) FindByID(_ context.Context, id string) (*models.StudentDetail, error) {
	student, ok := m.students[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &models.StudentDetail{Student: *student}, nil
}

func (m *memoryRoster) FindOwned(_ context.Context, id, instructorID string) (*models.Student, error) {
	student, ok := m.students[id]
	if !ok || student.InstructorID != instructorID {
		return nil, sql.ErrNoRows
	}
	copied := *student
	return &copied, nil
}

type memoryLedger struct {
	roster *memoryRoster
	marks  map[string]*models.Attendance
	nextID int
}

func newMemoryLedger(roster *memoryRoster) *memoryLedger {
	return &memoryLedger{roster: roster, marks: map[string]*models.Attendance{}}
}

func (m *memoryLedger) Upsert(_ context.Context, mark *models.Attendance) (bool, error) {
	key := mark.StudentID + "|" + mark.AttendedOn.Format(models.DateLayout)
	if existing, ok := m.marks[key]; ok {
		existing.Present = mark.Present
		mark.ID = existing.ID
		mark.InstructorID = existing.InstructorID
		return false, nil
	}
	m.nextID++
	mark.ID = fmt.Sprintf("mark-%d", m.nextID)
	copied := *mark
	m.marks[key] = &copied
	return true, nil
}

func (m *memoryLedger) FindByID(_ context.Context, id string) (*models.AttendanceDetail, error) {
	for _, mark := range m.marks {
		if mark.ID == id {
			return &models.AttendanceDetail{Attendance: *mark}, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *memoryLedger) List(_ context.Context, filter models.AttendanceFilter) ([]models.AttendanceDetail, error) {
	var details []models.AttendanceDetail
	for _, mark := range m.marks {
		if filter.InstructorID != "" && mark.InstructorID != filter.InstructorID {
			continue
		}
		details = append(details, models.AttendanceDetail{Attendance: *mark})
	}
	return details, nil
}

func (m *memoryLedger) UpdatePresence(_ context.Context, id string, present bool) error {
	for _, mark := range m.marks {
		if mark.ID == id {
			mark.Present = present
			return nil
		}
	}
	return sql.ErrNoRows
}

func (m *memoryLedger) Delete(_ context.Context, id string) error {
	for key, mark := range m.marks {
		if mark.ID == id {
			delete(m.marks, key)
			return nil
		}
	}
	return sql.ErrNoRows
}

func (m *memoryLedger) Begin(_ context.Context) (repository.LedgerTx, error) {
	return &memoryTx{ledger: m}, nil
}

type memoryTx struct {
	ledger *memoryLedger
}

func (t *memoryTx) FindStudentByDocument(_ context.Context, instructorID, document string) (*models.Student, error) {
	for _, student := range t.ledger.roster.students {
		if student.InstructorID == instructorID && student.Document != nil && *student.Document == document {
			copied := *student
			return &copied, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (t *memoryTx) FindStudentByName(_ context.Context, instructorID, name string) (*models.Student, error) {
	for _, student := range t.ledger.roster.students {
		if student.InstructorID == instructorID && student.Name == name {
			copied := *student
			return &copied, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (t *memoryTx) CreateStudent(_ context.Context, student *models.Student) error {
	t.ledger.roster.nextID++
	student.ID = fmt.Sprintf("student-%d", t.ledger.roster.nextID)
	copied := *student
	t.ledger.roster.students[student.ID] = &copied
	return nil
}

func (t *memoryTx) Upsert(ctx context.Context, mark *models.Attendance) (bool, error) {
	return t.ledger.Upsert(ctx, mark)
}

func (t *memoryTx) Commit() error   { return nil }
func (t *memoryTx) Rollback() error { return nil }

type staticValidator struct {
	claims *models.JWTClaims
}

func (v *staticValidator) ValidateToken(string) (*models.JWTClaims, error) {
	return v.claims, nil
}

func newAttendanceTestRouter(roster *memoryRoster, ledger *memoryLedger, claims *models.JWTClaims) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	attendanceSvc := service.NewAttendanceService(ledger, roster, nil, nil)
	importSvc := service.NewImportService(ledger, nil)
	h := NewAttendanceHandler(attendanceSvc, importSvc)

	auth := middleware.RequireAuth(&staticValidator{claims: claims})
	router.POST("/attendance", auth, h.Record)
	router.POST("/attendance/import", auth, h.Import)
	return router
}

func TestAttendanceHandlerRecord(t *testing.T) {
	roster := newMemoryRoster()
	ledger := newMemoryLedger(roster)
	roster.students["student-1"] = &models.Student{ID: "student-1", Name: "Ana", InstructorID: "instructor-1"}
	router := newAttendanceTestRouter(roster, ledger, &models.JWTClaims{InstructorID: "instructor-1"})

	body, _ := json.Marshal(gin.H{"student_id": "student-1", "date": "2024-03-01", "present": true})
	req := httptest.NewRequest(http.MethodPost, "/attendance", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer token")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"created":true`)
	assert.Len(t, ledger.marks, 1)
}

func TestAttendanceHandlerImportCSV(t *testing.T) {
	roster := newMemoryRoster()
	ledger := newMemoryLedger(roster)
	router := newAttendanceTestRouter(roster, ledger, &models.JWTClaims{InstructorID: "instructor-1"})

	buf := &bytes.Buffer{}
	writer := multipart.NewWriter(buf)
	part, err := writer.CreateFormFile("file", "asistencia.csv")
	require.NoError(t, err)
	_, err = part.Write([]byte("NOMBRES,DOCUMENTO,01/03/2024,02/03/2024\nAna,123,X,\nLuis,,1,0\n"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/attendance/import", buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer token")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"students_created":2`)
	assert.Contains(t, rec.Body.String(), `"marks_created":4`)
	assert.Len(t, roster.students, 2)
	assert.Len(t, ledger.marks, 4)

	mark := ledger.marks["student-1|2024-03-01"]
	require.NotNil(t, mark)
	assert.True(t, mark.Present)
	assert.Equal(t, "instructor-1", mark.InstructorID)
}
