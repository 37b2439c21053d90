package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/trainwell/pathway-api/internal/models"
	"github.com/trainwell/pathway-api/internal/service"
)

type fakeEventRepo struct {
	deleted string
}

func (f *fakeEventRepo) Create(_ context.Context, event *models.Event) (*models.Event, error) {
	return event, nil
}

func (f *fakeEventRepo) FindByID(_ context.Context, id string) (*models.Event, error) {
	return &models.Event{ID: id, PathwayID: "prog-1"}, nil
}

func (f *fakeEventRepo) ListByPathway(context.Context, string) ([]models.Event, error) {
	return []models.Event{{ID: "ev-1"}}, nil
}

func (f *fakeEventRepo) FindLatestByPathway(context.Context, string) (*models.Event, error) {
	return nil, nil
}

func (f *fakeEventRepo) FindLatest(context.Context) (*models.Event, error) {
	return nil, nil
}

func (f *fakeEventRepo) Delete(_ context.Context, id string) (int64, error) {
	f.deleted = id
	return 1, nil
}

func newEventHandler(repo *fakeEventRepo, programs *fakeProgramReader) *EventHandler {
	svc := service.NewEventService(repo, programs, nil, nil, zap.NewNop())
	return NewEventHandler(svc)
}

func TestEventHandlerCreate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newEventHandler(&fakeEventRepo{}, &fakeProgramReader{program: &models.Program{ID: "prog-1", Duration: 3}})

	payload, _ := json.Marshal(map[string]interface{}{
		"pathway_id":  "prog-1",
		"title":       "Kickoff",
		"type":        "workshop",
		"month_index": 1,
		"week_index":  2,
	})
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/events", bytes.NewReader(payload))
	c.Request.Header.Set("Content-Type", "application/json")

	handler.Create(c)

	require.Equal(t, http.StatusCreated, rec.Code)
	var envelope responseEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	var event models.Event
	require.NoError(t, json.Unmarshal(envelope.Data, &event))
	assert.NotEmpty(t, event.ID)
	assert.Equal(t, 2, event.WeekIndex)
}

func TestEventHandlerCreateInvalidType(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newEventHandler(&fakeEventRepo{}, &fakeProgramReader{program: &models.Program{ID: "prog-1", Duration: 3}})

	payload, _ := json.Marshal(map[string]interface{}{
		"pathway_id": "prog-1",
		"title":      "Kickoff",
		"type":       "seminar",
	})
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/events", bytes.NewReader(payload))
	c.Request.Header.Set("Content-Type", "application/json")

	handler.Create(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestEventHandlerListRequiresPathway(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newEventHandler(&fakeEventRepo{}, &fakeProgramReader{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/events", nil)

	handler.List(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestEventHandlerDelete(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &fakeEventRepo{}
	handler := newEventHandler(repo, &fakeProgramReader{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodDelete, "/events/ev-1", nil)
	c.Params = gin.Params{{Key: "id", Value: "ev-1"}}

	handler.Delete(c)
	c.Writer.WriteHeaderNow()

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "ev-1", repo.deleted)
}
