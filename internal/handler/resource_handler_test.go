package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/trainwell/pathway-api/internal/models"
	"github.com/trainwell/pathway-api/internal/service"
	"github.com/trainwell/pathway-api/pkg/config"
)

type fakeResourceRepo struct {
	byProgram []models.Resource
	created   []*models.Resource
}

func (f *fakeResourceRepo) Create(_ context.Context, resource *models.Resource) error {
	f.created = append(f.created, resource)
	return nil
}

func (f *fakeResourceRepo) FindByID(_ context.Context, id string) (*models.Resource, error) {
	return &models.Resource{ID: id}, nil
}

func (f *fakeResourceRepo) ListByProgram(context.Context, string) ([]models.Resource, error) {
	return f.byProgram, nil
}

func (f *fakeResourceRepo) List(context.Context, models.ResourceFilter) ([]models.Resource, int, error) {
	return f.byProgram, len(f.byProgram), nil
}

func (f *fakeResourceRepo) Update(context.Context, *models.Resource) error { return nil }

func (f *fakeResourceRepo) Delete(context.Context, string) (int64, error) { return 1, nil }

type fakeLinkRepo struct {
	direct         []models.Resource
	linked         []models.Resource
	deleteAffected int64
}

func (f *fakeLinkRepo) CreateLink(context.Context, models.AnchorKind, *models.ResourceLink) error {
	return nil
}

func (f *fakeLinkRepo) DeleteLink(context.Context, models.AnchorKind, string, string) (int64, error) {
	return f.deleteAffected, nil
}

func (f *fakeLinkRepo) ListLinked(context.Context, models.AnchorKind, string) ([]models.Resource, error) {
	return f.linked, nil
}

func (f *fakeLinkRepo) ListDirect(context.Context, models.AnchorKind, string) ([]models.Resource, error) {
	return f.direct, nil
}

type nullFileStore struct{}

func (nullFileStore) SaveStream(filename string, r io.Reader) (string, error) {
	if _, err := io.Copy(io.Discard, r); err != nil {
		return "", err
	}
	return filename, nil
}

func (nullFileStore) Delete(string) error { return nil }

func newResourceHandler(repo *fakeResourceRepo, links *fakeLinkRepo, uploads config.UploadsConfig) *ResourceHandler {
	svc := service.NewResourceService(repo, links, nullFileStore{}, nil, zap.NewNop())
	return NewResourceHandler(svc, uploads)
}

func multipartBody(t *testing.T, fields map[string]string, fileField, fileName string, fileContent []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for key, value := range fields {
		require.NoError(t, writer.WriteField(key, value))
	}
	if fileField != "" {
		part, err := writer.CreateFormFile(fileField, fileName)
		require.NoError(t, err)
		_, err = part.Write(fileContent)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func TestResourceHandlerCreateWithFile(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &fakeResourceRepo{}
	handler := newResourceHandler(repo, &fakeLinkRepo{}, config.UploadsConfig{MaxFileSizeBytes: 1024})

	body, contentType := multipartBody(t, map[string]string{
		"title":      "Handout",
		"type":       "document",
		"category":   "materials",
		"program_id": "prog-1",
	}, "file", "handout.pdf", []byte("pdf bytes"))

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/resources", body)
	c.Request.Header.Set("Content-Type", contentType)

	handler.Create(c)

	require.Equal(t, http.StatusCreated, rec.Code)
	require.Len(t, repo.created, 1)
	require.NotNil(t, repo.created[0].URL)
	require.NotNil(t, repo.created[0].ProgramID)
	assert.Equal(t, "prog-1", *repo.created[0].ProgramID)
}

func TestResourceHandlerCreateRejectsOversizedFile(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &fakeResourceRepo{}
	handler := newResourceHandler(repo, &fakeLinkRepo{}, config.UploadsConfig{MaxFileSizeBytes: 4})

	body, contentType := multipartBody(t, map[string]string{
		"title":    "Handout",
		"type":     "document",
		"category": "materials",
	}, "file", "handout.pdf", []byte("too large"))

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/resources", body)
	c.Request.Header.Set("Content-Type", contentType)

	handler.Create(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, repo.created)
}

func TestResourceHandlerCreateWithoutFile(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &fakeResourceRepo{}
	handler := newResourceHandler(repo, &fakeLinkRepo{}, config.UploadsConfig{})

	body, contentType := multipartBody(t, map[string]string{
		"title":    "Reading List",
		"type":     "link",
		"category": "materials",
	}, "", "", nil)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/resources", body)
	c.Request.Header.Set("Content-Type", contentType)

	handler.Create(c)

	require.Equal(t, http.StatusCreated, rec.Code)
	require.Len(t, repo.created, 1)
	assert.Nil(t, repo.created[0].URL)
}

func TestResourceHandlerAnchoredUnion(t *testing.T) {
	gin.SetMode(gin.TestMode)
	links := &fakeLinkRepo{
		direct: []models.Resource{{ID: "r1"}},
		linked: []models.Resource{{ID: "r1"}, {ID: "r2"}},
	}
	handler := newResourceHandler(&fakeResourceRepo{}, links, config.UploadsConfig{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/resources/workshop/ws-1", nil)
	c.Params = gin.Params{{Key: "id", Value: "workshop"}, {Key: "anchorId", Value: "ws-1"}}

	handler.Anchored(c)

	require.Equal(t, http.StatusOK, rec.Code)
	var envelope responseEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	var resources []models.Resource
	require.NoError(t, json.Unmarshal(envelope.Data, &resources))
	require.Len(t, resources, 2)
	assert.Equal(t, "r1", resources[0].ID)
	assert.Equal(t, "r2", resources[1].ID)
}

func TestResourceHandlerAnchoredUnknownKind(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newResourceHandler(&fakeResourceRepo{}, &fakeLinkRepo{}, config.UploadsConfig{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/resources/module/x", nil)
	c.Params = gin.Params{{Key: "id", Value: "module"}, {Key: "anchorId", Value: "x"}}

	handler.Anchored(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestResourceHandlerUnlinkMissing(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newResourceHandler(&fakeResourceRepo{}, &fakeLinkRepo{deleteAffected: 0}, config.UploadsConfig{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodDelete, "/resources/unlink/workshop/r1/ws-1", nil)
	c.Params = gin.Params{
		{Key: "anchorKind", Value: "workshop"},
		{Key: "resourceId", Value: "r1"},
		{Key: "anchorId", Value: "ws-1"},
	}

	handler.Unlink(c)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
