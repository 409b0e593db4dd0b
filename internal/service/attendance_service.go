package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/tecnoacademia/attendance-api/internal/models"
	"github.com/tecnoacademia/attendance-api/internal/repository"
	appErrors "github.com/tecnoacademia/attendance-api/pkg/errors"
)

type attendanceLedger interface {
	Upsert(ctx context.Context, mark *models.Attendance) (bool, error)
	FindByID(ctx context.Context, id string) (*models.AttendanceDetail, error)
	List(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceDetail, error)
	UpdatePresence(ctx context.Context, id string, present bool) error
	Delete(ctx context.Context, id string) error
	Begin(ctx context.Context) (repository.LedgerTx, error)
}

type attendanceRoster interface {
	FindByID(ctx context.Context, id string) (*models.StudentDetail, error)
	FindOwned(ctx context.Context, id, instructorID string) (*models.Student, error)
}

// RecordAttendanceRequest marks one student on one calendar date.
type RecordAttendanceRequest struct {
	StudentID string `json:"student_id" validate:"required"`
	Date      string `json:"date" validate:"required"`
	Present   bool   `json:"present"`
}

// BatchEntry is one student's presence inside a bulk request.
type BatchEntry struct {
	StudentID string `json:"student_id" validate:"required"`
	Present   bool   `json:"present"`
}

// RecordBatchRequest marks many students for the same date.
type RecordBatchRequest struct {
	Date    string       `json:"date" validate:"required"`
	Entries []BatchEntry `json:"entries" validate:"required,min=1,dive"`
}

// BatchResult reports the outcome of a bulk recording.
type BatchResult struct {
	Created int      `json:"created"`
	Updated int      `json:"updated"`
	Errors  []string `json:"errors"`
}

// RecordedMark is an upserted mark plus whether it was newly created.
type RecordedMark struct {
	models.Attendance
	Created bool `json:"created"`
}

// AttendanceListQuery filters attendance listings.
type AttendanceListQuery struct {
	InstructorID string
	StudentID    string
	From         *time.Time
	To           *time.Time
	Present      *bool
}

// AttendanceService maintains the presence ledger. Each (student, date)
// pair holds at most one mark; recording twice replaces the presence flag
// but never the recording instructor.
type AttendanceService struct {
	ledger    attendanceLedger
	roster    attendanceRoster
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAttendanceService constructs the attendance service.
func NewAttendanceService(ledger attendanceLedger, roster attendanceRoster, validate *validator.Validate, logger *zap.Logger) *AttendanceService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AttendanceService{ledger: ledger, roster: roster, validator: validate, logger: logger}
}

// Record upserts a presence mark for a student the caller may access.
func (s *AttendanceService) Record(ctx context.Context, claims *models.JWTClaims, req RecordAttendanceRequest) (*RecordedMark, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid attendance payload")
	}
	date, err := parseAttendanceDate(req.Date)
	if err != nil {
		return nil, err
	}

	student, err := s.roster.FindByID(ctx, req.StudentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	if !CanAccess(claims, student.InstructorID) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "student belongs to another instructor")
	}

	mark := &models.Attendance{
		StudentID:    req.StudentID,
		AttendedOn:   date,
		Present:      req.Present,
		InstructorID: claims.InstructorID,
	}
	created, err := s.ledger.Upsert(ctx, mark)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record attendance")
	}
	return &RecordedMark{Attendance: *mark, Created: created}, nil
}

// RecordBatch marks many students for one date. Entries that fail to
// resolve or authorize are collected as errors and skipped; the surviving
// upserts run inside one transaction so the batch persists atomically.
func (s *AttendanceService) RecordBatch(ctx context.Context, claims *models.JWTClaims, req RecordBatchRequest) (*BatchResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid batch payload")
	}
	date, err := parseAttendanceDate(req.Date)
	if err != nil {
		return nil, err
	}

	result := &BatchResult{Errors: []string{}}
	accepted := make([]BatchEntry, 0, len(req.Entries))
	for _, entry := range req.Entries {
		student, err := s.roster.FindByID(ctx, entry.StudentID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				result.Errors = append(result.Errors, fmt.Sprintf("student %s: not found", entry.StudentID))
				continue
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
		}
		if !CanAccess(claims, student.InstructorID) {
			result.Errors = append(result.Errors, fmt.Sprintf("student %s: belongs to another instructor", entry.StudentID))
			continue
		}
		accepted = append(accepted, entry)
	}

	if len(accepted) == 0 {
		return result, nil
	}

	tx, err := s.ledger.Begin(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open transaction")
	}
	for _, entry := range accepted {
		mark := &models.Attendance{
			StudentID:    entry.StudentID,
			AttendedOn:   date,
			Present:      entry.Present,
			InstructorID: claims.InstructorID,
		}
		created, err := tx.Upsert(ctx, mark)
		if err != nil {
			_ = tx.Rollback()
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record attendance")
		}
		if created {
			result.Created++
		} else {
			result.Updated++
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit batch")
	}
	return result, nil
}

// Toggle flips or sets a mark for a student on the caller's own roster.
// The lookup is always scoped to the caller, administrators included, so
// toggling a student owned by someone else reports not found.
func (s *AttendanceService) Toggle(ctx context.Context, claims *models.JWTClaims, studentID, dateISO string, present bool) (*RecordedMark, error) {
	date, err := parseAttendanceDate(dateISO)
	if err != nil {
		return nil, err
	}
	if _, err := s.roster.FindOwned(ctx, studentID, claims.InstructorID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	mark := &models.Attendance{
		StudentID:    studentID,
		AttendedOn:   date,
		Present:      present,
		InstructorID: claims.InstructorID,
	}
	created, err := s.ledger.Upsert(ctx, mark)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record attendance")
	}
	return &RecordedMark{Attendance: *mark, Created: created}, nil
}

// List returns marks visible to the caller, newest date first.
func (s *AttendanceService) List(ctx context.Context, claims *models.JWTClaims, query AttendanceListQuery) ([]models.AttendanceDetail, error) {
	filter := models.AttendanceFilter{
		InstructorID: ScopeOwner(claims, query.InstructorID),
		StudentID:    query.StudentID,
		From:         query.From,
		To:           query.To,
		Present:      query.Present,
	}
	marks, err := s.ledger.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list attendance")
	}
	return marks, nil
}

// Update sets the presence flag of an existing mark. Ownership is checked
// against the recording instructor.
func (s *AttendanceService) Update(ctx context.Context, claims *models.JWTClaims, id string, present bool) (*models.AttendanceDetail, error) {
	mark, err := s.findMark(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanAccess(claims, mark.InstructorID) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "mark recorded by another instructor")
	}
	if err := s.ledger.UpdatePresence(ctx, id, present); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update attendance")
	}
	mark.Present = present
	return mark, nil
}

// Delete removes a mark, checked against the recording instructor.
func (s *AttendanceService) Delete(ctx context.Context, claims *models.JWTClaims, id string) error {
	mark, err := s.findMark(ctx, id)
	if err != nil {
		return err
	}
	if !CanAccess(claims, mark.InstructorID) {
		return appErrors.Clone(appErrors.ErrForbidden, "mark recorded by another instructor")
	}
	if err := s.ledger.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete attendance")
	}
	return nil
}

func (s *AttendanceService) findMark(ctx context.Context, id string) (*models.AttendanceDetail, error) {
	mark, err := s.ledger.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "attendance mark not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance")
	}
	return mark, nil
}

func parseAttendanceDate(value string) (time.Time, error) {
	date, err := time.Parse(models.DateLayout, value)
	if err != nil {
		return time.Time{}, appErrors.Clone(appErrors.ErrValidation, "date must be formatted as YYYY-MM-DD")
	}
	return date, nil
}
