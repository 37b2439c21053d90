package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/trainwell/pathway-api/internal/models"
	"github.com/trainwell/pathway-api/internal/service"
	appErrors "github.com/trainwell/pathway-api/pkg/errors"
)

type responseEnvelope struct {
	Data       json.RawMessage        `json:"data"`
	Error      map[string]interface{} `json:"error"`
	Pagination map[string]interface{} `json:"pagination"`
	Meta       map[string]interface{} `json:"meta"`
}

type fakeProgramReader struct {
	program *models.Program
	err     error
}

func (f *fakeProgramReader) FindByID(context.Context, string) (*models.Program, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.program, nil
}

type fakeEventReader struct {
	events []models.Event
}

func (f *fakeEventReader) ListByPathway(context.Context, string) ([]models.Event, error) {
	return f.events, nil
}

type memoryCacheRepo struct {
	store map[string][]byte
}

func (m *memoryCacheRepo) Get(_ context.Context, key string, dest interface{}) error {
	payload, ok := m.store[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(payload, dest)
}

func (m *memoryCacheRepo) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	if m.store == nil {
		m.store = make(map[string][]byte)
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.store[key] = payload
	return nil
}

func (m *memoryCacheRepo) DeleteByPattern(_ context.Context, _ string) error {
	m.store = nil
	return nil
}

func newTimelineHandler(programs *fakeProgramReader, events *fakeEventReader) *ProgramHandler {
	cache := service.NewCacheService(&memoryCacheRepo{}, nil, time.Minute, zap.NewNop(), true)
	timelines := service.NewTimelineService(programs, events, cache, zap.NewNop())
	return NewProgramHandler(nil, timelines)
}

func TestProgramHandlerTimeline(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newTimelineHandler(
		&fakeProgramReader{program: &models.Program{ID: "prog-1", Duration: 2}},
		&fakeEventReader{events: []models.Event{{ID: "ev-1", PathwayID: "prog-1", MonthIndex: 1, WeekIndex: 1}}},
	)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/programs/prog-1/timeline", nil)
	c.Params = gin.Params{{Key: "id", Value: "prog-1"}}

	handler.Timeline(c)

	require.Equal(t, http.StatusOK, rec.Code)
	var envelope responseEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, false, envelope.Meta["cache_hit"])

	var timeline struct {
		ProgramID string `json:"programId"`
		Duration  int    `json:"duration"`
		Months    []struct {
			Number int `json:"number"`
			Weeks  []struct {
				Events []json.RawMessage `json:"events"`
			} `json:"weeks"`
		} `json:"months"`
	}
	require.NoError(t, json.Unmarshal(envelope.Data, &timeline))
	assert.Equal(t, "prog-1", timeline.ProgramID)
	require.Len(t, timeline.Months, 2)
	require.Len(t, timeline.Months[0].Weeks, 4)
	assert.Len(t, timeline.Months[0].Weeks[0].Events, 1)
}

func TestProgramHandlerTimelineSecondCallHitsCache(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newTimelineHandler(
		&fakeProgramReader{program: &models.Program{ID: "prog-1", Duration: 1}},
		&fakeEventReader{},
	)

	for i, wantHit := range []bool{false, true} {
		rec := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(rec)
		c.Request = httptest.NewRequest(http.MethodGet, "/programs/prog-1/timeline", nil)
		c.Params = gin.Params{{Key: "id", Value: "prog-1"}}

		handler.Timeline(c)

		require.Equal(t, http.StatusOK, rec.Code, "call %d", i)
		var envelope responseEnvelope
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
		assert.Equal(t, wantHit, envelope.Meta["cache_hit"], "call %d", i)
	}
}

func TestProgramHandlerStructureUnknownProgram(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newTimelineHandler(&fakeProgramReader{err: sql.ErrNoRows}, &fakeEventReader{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/programs/missing/structure", nil)
	c.Params = gin.Params{{Key: "id", Value: "missing"}}

	handler.Structure(c)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestProgramHandlerStructurePlaceholders(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newTimelineHandler(
		&fakeProgramReader{program: &models.Program{ID: "prog-1", Duration: 1}},
		&fakeEventReader{},
	)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/programs/prog-1/structure", nil)
	c.Params = gin.Params{{Key: "id", Value: "prog-1"}}

	handler.Structure(c)

	require.Equal(t, http.StatusOK, rec.Code)
	var envelope responseEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))

	var structure struct {
		Months []struct {
			Components []struct {
				ID string `json:"id"`
			} `json:"components"`
		} `json:"months"`
	}
	require.NoError(t, json.Unmarshal(envelope.Data, &structure))
	require.Len(t, structure.Months, 1)
	require.Len(t, structure.Months[0].Components, 3)
	assert.Equal(t, "orientation-1", structure.Months[0].Components[0].ID)
	assert.Equal(t, "cefr-assessment-1", structure.Months[0].Components[1].ID)
	assert.Equal(t, "fundamentals-1", structure.Months[0].Components[2].ID)
}
