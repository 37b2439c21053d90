package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/trainwell/pathway-api/internal/models"
	appErrors "github.com/trainwell/pathway-api/pkg/errors"
)

type mockEventRepo struct {
	created             *models.Event
	createErr           error
	latestByPathway     *models.Event
	latestByPathwayErr  error
	latestGlobal        *models.Event
	latestGlobalErr     error
	byID                *models.Event
	byIDErr             error
	deleteAffected      int64
	deleteErr           error
	createCalls         int
	pathwayLookupCalls  int
	globalLookupCalls   int
	lastCreatedArgument *models.Event
}

func (m *mockEventRepo) Create(_ context.Context, event *models.Event) (*models.Event, error) {
	m.createCalls++
	m.lastCreatedArgument = event
	if m.createErr != nil {
		return nil, m.createErr
	}
	if m.created != nil {
		return m.created, nil
	}
	return event, nil
}

func (m *mockEventRepo) FindByID(_ context.Context, _ string) (*models.Event, error) {
	if m.byIDErr != nil {
		return nil, m.byIDErr
	}
	return m.byID, nil
}

func (m *mockEventRepo) ListByPathway(_ context.Context, _ string) ([]models.Event, error) {
	return nil, nil
}

func (m *mockEventRepo) FindLatestByPathway(_ context.Context, _ string) (*models.Event, error) {
	m.pathwayLookupCalls++
	if m.latestByPathwayErr != nil {
		return nil, m.latestByPathwayErr
	}
	return m.latestByPathway, nil
}

func (m *mockEventRepo) FindLatest(_ context.Context) (*models.Event, error) {
	m.globalLookupCalls++
	if m.latestGlobalErr != nil {
		return nil, m.latestGlobalErr
	}
	return m.latestGlobal, nil
}

func (m *mockEventRepo) Delete(_ context.Context, _ string) (int64, error) {
	return m.deleteAffected, m.deleteErr
}

type recordingInvalidator struct {
	programIDs []string
}

func (r *recordingInvalidator) InvalidateProgram(_ context.Context, programID string) {
	r.programIDs = append(r.programIDs, programID)
}

func validEventRequest() CreateEventRequest {
	return CreateEventRequest{
		PathwayID:  "prog-1",
		Title:      "Kickoff Workshop",
		Type:       models.EventTypeWorkshop,
		MonthIndex: 1,
		WeekIndex:  1,
	}
}

func TestCreateEventReturnsInsertedRow(t *testing.T) {
	repo := &mockEventRepo{}
	programs := &stubProgramReader{program: &models.Program{ID: "prog-1", Duration: 3}}
	invalidator := &recordingInvalidator{}
	svc := NewEventService(repo, programs, invalidator, nil, zap.NewNop())

	event, err := svc.Create(context.Background(), validEventRequest())

	require.NoError(t, err)
	assert.NotEmpty(t, event.ID)
	assert.Equal(t, "prog-1", event.PathwayID)
	assert.Zero(t, repo.pathwayLookupCalls)
	assert.Zero(t, repo.globalLookupCalls)
	assert.Equal(t, []string{"prog-1"}, invalidator.programIDs)
}

func TestCreateEventFallsBackToLatestForPathway(t *testing.T) {
	repo := &mockEventRepo{
		created:         &models.Event{},
		latestByPathway: &models.Event{ID: "recovered", PathwayID: "prog-1"},
	}
	programs := &stubProgramReader{program: &models.Program{ID: "prog-1", Duration: 3}}
	svc := NewEventService(repo, programs, nil, nil, zap.NewNop())

	event, err := svc.Create(context.Background(), validEventRequest())

	require.NoError(t, err)
	assert.Equal(t, "recovered", event.ID)
	assert.Equal(t, 1, repo.pathwayLookupCalls)
	assert.Zero(t, repo.globalLookupCalls)
}

func TestCreateEventFallsBackToGlobalLatest(t *testing.T) {
	repo := &mockEventRepo{
		created:            &models.Event{},
		latestByPathwayErr: sql.ErrNoRows,
		latestGlobal:       &models.Event{ID: "global", PathwayID: "prog-2"},
	}
	programs := &stubProgramReader{program: &models.Program{ID: "prog-1", Duration: 3}}
	svc := NewEventService(repo, programs, nil, nil, zap.NewNop())

	event, err := svc.Create(context.Background(), validEventRequest())

	require.NoError(t, err)
	assert.Equal(t, "global", event.ID)
	assert.Equal(t, 1, repo.pathwayLookupCalls)
	assert.Equal(t, 1, repo.globalLookupCalls)
}

func TestCreateEventReturnsEmptyEventWhenEveryFallbackMisses(t *testing.T) {
	repo := &mockEventRepo{
		created:            &models.Event{},
		latestByPathwayErr: sql.ErrNoRows,
		latestGlobalErr:    sql.ErrNoRows,
	}
	programs := &stubProgramReader{program: &models.Program{ID: "prog-1", Duration: 3}}
	svc := NewEventService(repo, programs, nil, nil, zap.NewNop())

	event, err := svc.Create(context.Background(), validEventRequest())

	require.NoError(t, err)
	assert.Empty(t, event.ID)
}

func TestCreateEventInsertFailurePropagates(t *testing.T) {
	repo := &mockEventRepo{createErr: errors.New("boom")}
	programs := &stubProgramReader{program: &models.Program{ID: "prog-1", Duration: 3}}
	svc := NewEventService(repo, programs, nil, nil, zap.NewNop())

	_, err := svc.Create(context.Background(), validEventRequest())

	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInternal.Code, appErrors.FromError(err).Code)
	assert.Zero(t, repo.pathwayLookupCalls)
}

func TestCreateEventUnknownProgram(t *testing.T) {
	repo := &mockEventRepo{}
	programs := &stubProgramReader{err: sql.ErrNoRows}
	svc := NewEventService(repo, programs, nil, nil, zap.NewNop())

	_, err := svc.Create(context.Background(), validEventRequest())

	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
	assert.Zero(t, repo.createCalls)
}

func TestCreateEventNormalisesOptionalFields(t *testing.T) {
	repo := &mockEventRepo{}
	programs := &stubProgramReader{program: &models.Program{ID: "prog-1", Duration: 3}}
	svc := NewEventService(repo, programs, nil, nil, zap.NewNop())

	req := validEventRequest()
	req.MonthIndex = 0
	req.WeekIndex = 0
	req.Objectives = nil

	event, err := svc.Create(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, 1, event.MonthIndex)
	assert.Equal(t, 1, event.WeekIndex)
	assert.NotNil(t, event.Objectives)
	assert.Empty(t, event.Objectives)
}

func TestCreateEventRejectsUnknownType(t *testing.T) {
	repo := &mockEventRepo{}
	programs := &stubProgramReader{program: &models.Program{ID: "prog-1", Duration: 3}}
	svc := NewEventService(repo, programs, nil, nil, zap.NewNop())

	req := validEventRequest()
	req.Type = "seminar"

	_, err := svc.Create(context.Background(), req)

	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestDeleteEventInvalidatesTimeline(t *testing.T) {
	repo := &mockEventRepo{
		byID:           &models.Event{ID: "ev-1", PathwayID: "prog-1"},
		deleteAffected: 1,
	}
	invalidator := &recordingInvalidator{}
	svc := NewEventService(repo, &stubProgramReader{}, invalidator, nil, zap.NewNop())

	err := svc.Delete(context.Background(), "ev-1")

	require.NoError(t, err)
	assert.Equal(t, []string{"prog-1"}, invalidator.programIDs)
}

func TestDeleteEventMissing(t *testing.T) {
	repo := &mockEventRepo{byIDErr: sql.ErrNoRows}
	svc := NewEventService(repo, &stubProgramReader{}, nil, nil, zap.NewNop())

	err := svc.Delete(context.Background(), "ev-1")

	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
