package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tecnoacademia/attendance-api/internal/models"
	appErrors "github.com/tecnoacademia/attendance-api/pkg/errors"
	"github.com/tecnoacademia/attendance-api/pkg/tabular"
)

func TestParsePresence(t *testing.T) {
	tests := []struct {
		raw  string
		want bool
	}{
		{"X", true},
		{"x", true},
		{"1", true},
		{"true", true},
		{"si", true},
		{"sí", true},
		{"yes", true},
		{"", false},
		{" ", false},
		{"0", false},
		{"0.0", false},
		{"2", true},
		{"nan", false},
		{"hello", true},
	}
	for _, tt := range tests {
		t.Run("raw="+tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, parsePresence(tt.raw))
		})
	}
}

func TestDetectDateColumns(t *testing.T) {
	columns := []string{"NOMBRES", "DOCUMENTO", "01/03/2024", "2024-03-02", "02-03-2024", "notes"}
	detected := detectDateColumns(columns, "NOMBRES", "DOCUMENTO")
	require.Len(t, detected, 3)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), detected[0].date)
	assert.Equal(t, time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC), detected[1].date)
	assert.Equal(t, time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC), detected[2].date)
}

func TestImportServiceRejectsFileWithoutDates(t *testing.T) {
	roster := newFakeRoster()
	svc := NewImportService(newFakeLedger(roster), nil)

	table := &tabular.Table{
		Columns: []string{"NOMBRES", "notes"},
		Rows:    []tabular.Row{{"NOMBRES": "Ana", "notes": "x"}},
	}
	_, err := svc.Import(context.Background(), &models.JWTClaims{InstructorID: "instructor-1"}, table)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	assert.Empty(t, roster.students)
}

func TestImportServiceReconcilesRoster(t *testing.T) {
	roster := newFakeRoster()
	ledger := newFakeLedger(roster)
	svc := NewImportService(ledger, nil)
	importer := &models.JWTClaims{InstructorID: "instructor-1"}

	doc := "123"
	roster.add("Ana", "instructor-1", &doc)

	table := &tabular.Table{
		Columns: []string{"NOMBRES", "DOCUMENTO", "01/03/2024", "02/03/2024"},
		Rows: []tabular.Row{
			{"NOMBRES": "Ana", "DOCUMENTO": "123", "01/03/2024": "X", "02/03/2024": ""},
			{"NOMBRES": "Luis", "DOCUMENTO": "nan", "01/03/2024": "1", "02/03/2024": "0"},
			{"NOMBRES": "", "DOCUMENTO": "999", "01/03/2024": "X"},
			{"NOMBRES": "nan", "01/03/2024": "X"},
		},
	}

	result, err := svc.Import(context.Background(), importer, table)
	require.NoError(t, err)
	assert.Equal(t, 1, result.StudentsCreated)
	assert.Equal(t, 4, result.MarksCreated)
	assert.Equal(t, 0, result.MarksUpdated)
	assert.Equal(t, 2, result.DateColumns)
	assert.Empty(t, result.Errors)
	assert.Equal(t, 1, ledger.commits)
	// Blank and placeholder names are skipped, so only Luis was added.
	assert.Len(t, roster.students, 2)

	// Luis's placeholder document reads as absent.
	luis, err := (&fakeLedgerTx{ledger: ledger}).FindStudentByName(context.Background(), "instructor-1", "Luis")
	require.NoError(t, err)
	assert.Nil(t, luis.Document)
}

func TestImportServiceReimportIsIdempotent(t *testing.T) {
	roster := newFakeRoster()
	ledger := newFakeLedger(roster)
	svc := NewImportService(ledger, nil)
	importer := &models.JWTClaims{InstructorID: "instructor-1"}

	table := &tabular.Table{
		Columns: []string{"NOMBRES", "01/03/2024"},
		Rows:    []tabular.Row{{"NOMBRES": "Ana", "01/03/2024": "X"}},
	}
	first, err := svc.Import(context.Background(), importer, table)
	require.NoError(t, err)
	assert.Equal(t, 1, first.StudentsCreated)
	assert.Equal(t, 1, first.MarksCreated)

	table.Rows[0]["01/03/2024"] = ""
	second, err := svc.Import(context.Background(), importer, table)
	require.NoError(t, err)
	assert.Equal(t, 0, second.StudentsCreated)
	assert.Equal(t, 0, second.MarksCreated)
	assert.Equal(t, 1, second.MarksUpdated)

	require.Len(t, ledger.marks, 1)
	mark := ledger.markFor(firstStudentID(roster), time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))
	require.NotNil(t, mark)
	assert.False(t, mark.Present)
}

func TestImportServiceFallsBackToFirstColumnForNames(t *testing.T) {
	roster := newFakeRoster()
	ledger := newFakeLedger(roster)
	svc := NewImportService(ledger, nil)

	table := &tabular.Table{
		Columns: []string{"Estudiante", "01/03/2024"},
		Rows:    []tabular.Row{{"Estudiante": "Ana", "01/03/2024": "si"}},
	}
	result, err := svc.Import(context.Background(), &models.JWTClaims{InstructorID: "instructor-1"}, table)
	require.NoError(t, err)
	assert.Equal(t, 1, result.StudentsCreated)
	assert.Equal(t, 1, result.MarksCreated)
}

func firstStudentID(roster *fakeRoster) string {
	for id := range roster.students {
		return id
	}
	return ""
}
