package repository

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportRepositoryStudentSummariesScoped(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewReportRepository(db)

	rows := sqlmock.NewRows([]string{"student_id", "name", "document", "total", "present"}).
		AddRow("student-1", "Ana", "123", 4, 3).
		AddRow("student-2", "Luis", nil, 0, 0)
	mock.ExpectQuery("SELECT s.id AS student_id, s.name, s.document").
		WithArgs("instructor-1").
		WillReturnRows(rows)

	summaries, err := repo.StudentSummaries(context.Background(), "instructor-1")
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	assert.Equal(t, 4, summaries[0].Total)
	assert.Equal(t, 0, summaries[1].Total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReportRepositoryPeriodReport(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewReportRepository(db)

	from := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery("JOIN attendance a ON a.student_id = s.id").
		WithArgs(from, to).
		WillReturnRows(sqlmock.NewRows([]string{"student_id", "name", "document", "total", "present"}).
			AddRow("student-1", "Ana", "123", 2, 1))

	rows, err := repo.PeriodReport(context.Background(), "", from, to)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 1, rows[0].Present)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReportRepositoryCountsAdminScope(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewReportRepository(db)

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM students").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(12))
	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM sessions WHERE active = true").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM attendance").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(48))

	counts, err := repo.Counts(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, 12, counts.Students)
	assert.Equal(t, 3, counts.Sessions)
	assert.Equal(t, 48, counts.Attendance)
	assert.NoError(t, mock.ExpectationsWereMet())
}
