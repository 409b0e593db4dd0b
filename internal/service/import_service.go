package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/tecnoacademia/attendance-api/internal/models"
	"github.com/tecnoacademia/attendance-api/internal/repository"
	appErrors "github.com/tecnoacademia/attendance-api/pkg/errors"
	"github.com/tecnoacademia/attendance-api/pkg/tabular"
)

// nameColumnPreferences is checked in order against the parsed header. When
// none match, the first column is assumed to hold student names.
var nameColumnPreferences = []string{"NOMBRES", "NOMBRE", "Nombres", "Nombre"}

// documentColumnPreferences locates the identity-document column.
var documentColumnPreferences = []string{"DOCUMENTO", "Documento"}

// importDateLayouts are tried in order against each remaining header cell.
var importDateLayouts = []string{"02/01/2006", "2006-01-02", "02-01-2006"}

// presenceTokens are the spreadsheet spellings that read as present.
var presenceTokens = map[string]bool{
	"x": true, "1": true, "true": true, "si": true, "sí": true, "y": true, "yes": true,
}

type importStore interface {
	Begin(ctx context.Context) (repository.LedgerTx, error)
}

// ImportResult reports what a spreadsheet import changed.
type ImportResult struct {
	StudentsCreated int      `json:"students_created"`
	MarksCreated    int      `json:"marks_created"`
	MarksUpdated    int      `json:"marks_updated"`
	DateColumns     int      `json:"date_columns"`
	Errors          []string `json:"errors"`
}

type dateColumn struct {
	header string
	date   time.Time
}

// ImportService reconciles an attendance spreadsheet into the roster and
// ledger. The whole import runs in one transaction: students created for
// earlier rows are visible to later rows, and a commit failure persists
// nothing.
type ImportService struct {
	store  importStore
	logger *zap.Logger
}

// NewImportService constructs the import service.
func NewImportService(store importStore, logger *zap.Logger) *ImportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ImportService{store: store, logger: logger}
}

// Import reconciles a fully-parsed table on behalf of the caller. Every
// student touched or created belongs to the importing instructor.
func (s *ImportService) Import(ctx context.Context, claims *models.JWTClaims, table *tabular.Table) (*ImportResult, error) {
	nameColumn := pickColumn(table.Columns, nameColumnPreferences)
	if nameColumn == "" {
		if len(table.Columns) == 0 {
			return nil, appErrors.Clone(appErrors.ErrValidation, "file has no columns")
		}
		nameColumn = table.Columns[0]
	}
	documentColumn := pickColumn(table.Columns, documentColumnPreferences)

	dateColumns := detectDateColumns(table.Columns, nameColumn, documentColumn)
	if len(dateColumns) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "no date columns found in file")
	}

	result := &ImportResult{DateColumns: len(dateColumns), Errors: []string{}}

	tx, err := s.store.Begin(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open transaction")
	}

	for i, row := range table.Rows {
		// Header occupies the first spreadsheet line, so data row i sits
		// on line i+2.
		line := i + 2

		name := strings.TrimSpace(row[nameColumn])
		if name == "" || strings.EqualFold(name, "nan") {
			continue
		}

		var document *string
		if documentColumn != "" {
			raw := row[documentColumn]
			document = normalizeDocument(&raw)
		}

		student, err := s.resolveStudent(ctx, tx, claims.InstructorID, name, document, result)
		if err != nil {
			_ = tx.Rollback()
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve student")
		}

		for _, dc := range dateColumns {
			raw := row[dc.header]
			mark := &models.Attendance{
				StudentID:    student.ID,
				AttendedOn:   dc.date,
				Present:      parsePresence(raw),
				InstructorID: claims.InstructorID,
			}
			created, err := tx.Upsert(ctx, mark)
			if err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("row %d: %s: %v", line, dc.header, err))
				continue
			}
			if created {
				result.MarksCreated++
			} else {
				result.MarksUpdated++
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit import")
	}

	s.logger.Info("imported attendance file",
		zap.String("instructor_id", claims.InstructorID),
		zap.Int("students_created", result.StudentsCreated),
		zap.Int("marks_created", result.MarksCreated),
		zap.Int("marks_updated", result.MarksUpdated),
		zap.Int("date_columns", result.DateColumns))
	return result, nil
}

// resolveStudent finds the importer's student by document, then by name,
// creating the record when neither matches.
func (s *ImportService) resolveStudent(ctx context.Context, tx repository.LedgerTx, instructorID, name string, document *string, result *ImportResult) (*models.Student, error) {
	if document != nil {
		student, err := tx.FindStudentByDocument(ctx, instructorID, *document)
		if err == nil {
			return student, nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
	}

	student, err := tx.FindStudentByName(ctx, instructorID, name)
	if err == nil {
		return student, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	student = &models.Student{
		Name:         name,
		Document:     document,
		InstructorID: instructorID,
	}
	if err := tx.CreateStudent(ctx, student); err != nil {
		return nil, err
	}
	result.StudentsCreated++
	return student, nil
}

func pickColumn(columns, preferences []string) string {
	for _, preferred := range preferences {
		for _, column := range columns {
			if column == preferred {
				return column
			}
		}
	}
	return ""
}

func detectDateColumns(columns []string, nameColumn, documentColumn string) []dateColumn {
	var detected []dateColumn
	for _, column := range columns {
		if column == nameColumn || column == documentColumn {
			continue
		}
		for _, layout := range importDateLayouts {
			if date, err := time.Parse(layout, column); err == nil {
				detected = append(detected, dateColumn{header: column, date: date})
				break
			}
		}
	}
	return detected
}

// parsePresence normalizes a spreadsheet cell into a presence flag. Known
// tokens and nonzero numbers read as present; any other non-empty text is
// treated as present rather than rejected, so stray annotations in a cell
// do not silently drop a mark.
func parsePresence(raw string) bool {
	value := strings.ToLower(strings.TrimSpace(raw))
	if value == "" || value == "nan" {
		return false
	}
	if presenceTokens[value] {
		return true
	}
	if n, err := strconv.ParseFloat(value, 64); err == nil {
		return n != 0
	}
	return true
}
