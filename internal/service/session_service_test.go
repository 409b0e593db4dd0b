package service

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tecnoacademia/attendance-api/internal/models"
	appErrors "github.com/tecnoacademia/attendance-api/pkg/errors"
)

type fakeSessionRepo struct {
	byID       map[string]*models.Session
	lastFilter models.SessionFilter
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{byID: map[string]*models.Session{}}
}

func (f *fakeSessionRepo) seed(instructorID string, startsAt time.Time) *models.Session {
	session := &models.Session{
		ID:           fmt.Sprintf("session-%d", len(f.byID)+1),
		InstructorID: instructorID,
		Title:        "Robótica",
		StartsAt:     startsAt,
		EndsAt:       startsAt.Add(2 * time.Hour),
		Location:     "Aula 1",
		Active:       true,
	}
	f.byID[session.ID] = session
	return session
}

func (f *fakeSessionRepo) List(_ context.Context, filter models.SessionFilter) ([]models.Session, error) {
	f.lastFilter = filter
	var sessions []models.Session
	for _, session := range f.byID {
		if filter.InstructorID != "" && session.InstructorID != filter.InstructorID {
			continue
		}
		sessions = append(sessions, *session)
	}
	return sessions, nil
}

func (f *fakeSessionRepo) FindByID(_ context.Context, id string) (*models.Session, error) {
	session, ok := f.byID[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *session
	return &copied, nil
}

func (f *fakeSessionRepo) Create(_ context.Context, session *models.Session) error {
	session.ID = fmt.Sprintf("session-%d", len(f.byID)+1)
	copied := *session
	f.byID[session.ID] = &copied
	return nil
}

func (f *fakeSessionRepo) Update(_ context.Context, session *models.Session) error {
	if _, ok := f.byID[session.ID]; !ok {
		return sql.ErrNoRows
	}
	copied := *session
	f.byID[session.ID] = &copied
	return nil
}

func (f *fakeSessionRepo) Delete(_ context.Context, id string) error {
	delete(f.byID, id)
	return nil
}

func TestSessionServiceCreateValidatesTimes(t *testing.T) {
	repo := newFakeSessionRepo()
	svc := NewSessionService(repo, nil, nil)
	claims := &models.JWTClaims{InstructorID: "instructor-1"}
	startsAt := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	_, err := svc.Create(context.Background(), claims, CreateSessionRequest{
		Title: "Robótica", Location: "Aula 1", StartsAt: startsAt, EndsAt: startsAt,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	session, err := svc.Create(context.Background(), claims, CreateSessionRequest{
		Title: "Robótica", Location: "Aula 1", StartsAt: startsAt, EndsAt: startsAt.Add(time.Hour),
	})
	require.NoError(t, err)
	assert.Equal(t, "instructor-1", session.InstructorID)
	assert.True(t, session.Active)
}

func TestSessionServiceCreateForAnotherInstructor(t *testing.T) {
	repo := newFakeSessionRepo()
	svc := NewSessionService(repo, nil, nil)
	startsAt := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	req := CreateSessionRequest{
		InstructorID: "instructor-2", Title: "Robótica", Location: "Aula 1",
		StartsAt: startsAt, EndsAt: startsAt.Add(time.Hour),
	}

	_, err := svc.Create(context.Background(), &models.JWTClaims{InstructorID: "instructor-1"}, req)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)

	session, err := svc.Create(context.Background(), &models.JWTClaims{InstructorID: "admin-1", IsAdmin: true}, req)
	require.NoError(t, err)
	assert.Equal(t, "instructor-2", session.InstructorID)
}

func TestSessionServiceUpdateRevalidatesTimes(t *testing.T) {
	repo := newFakeSessionRepo()
	svc := NewSessionService(repo, nil, nil)
	session := repo.seed("instructor-1", time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC))
	claims := &models.JWTClaims{InstructorID: "instructor-1"}

	badEnd := session.StartsAt.Add(-time.Hour)
	_, err := svc.Update(context.Background(), claims, session.ID, UpdateSessionRequest{EndsAt: &badEnd})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestSessionServiceGetEnforcesOwnership(t *testing.T) {
	repo := newFakeSessionRepo()
	svc := NewSessionService(repo, nil, nil)
	session := repo.seed("instructor-1", time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC))

	_, err := svc.Get(context.Background(), &models.JWTClaims{InstructorID: "instructor-2"}, session.ID)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)

	found, err := svc.Get(context.Background(), &models.JWTClaims{InstructorID: "admin-1", IsAdmin: true}, session.ID)
	require.NoError(t, err)
	assert.Equal(t, session.ID, found.ID)
}

func TestSessionServiceCalendar(t *testing.T) {
	repo := newFakeSessionRepo()
	svc := NewSessionService(repo, nil, nil)
	claims := &models.JWTClaims{InstructorID: "instructor-1"}

	_, err := svc.Calendar(context.Background(), claims, 2024, time.Month(13))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	_, err = svc.Calendar(context.Background(), claims, 2024, time.March)
	require.NoError(t, err)
	assert.Equal(t, "instructor-1", repo.lastFilter.InstructorID)
	require.NotNil(t, repo.lastFilter.From)
	require.NotNil(t, repo.lastFilter.To)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), *repo.lastFilter.From)
	assert.Equal(t, time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC), *repo.lastFilter.To)
	require.NotNil(t, repo.lastFilter.Active)
	assert.True(t, *repo.lastFilter.Active)
}
