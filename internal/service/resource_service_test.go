package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/trainwell/pathway-api/internal/dto"
	"github.com/trainwell/pathway-api/internal/models"
	appErrors "github.com/trainwell/pathway-api/pkg/errors"
)

type mockResourceRepo struct {
	byProgram []models.Resource
	byID      *models.Resource
	createErr error
	created   []*models.Resource
}

func (m *mockResourceRepo) Create(_ context.Context, resource *models.Resource) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.created = append(m.created, resource)
	return nil
}

func (m *mockResourceRepo) FindByID(_ context.Context, _ string) (*models.Resource, error) {
	if m.byID == nil {
		return nil, errors.New("unexpected FindByID")
	}
	return m.byID, nil
}

func (m *mockResourceRepo) ListByProgram(_ context.Context, _ string) ([]models.Resource, error) {
	return m.byProgram, nil
}

func (m *mockResourceRepo) List(_ context.Context, _ models.ResourceFilter) ([]models.Resource, int, error) {
	return m.byProgram, len(m.byProgram), nil
}

func (m *mockResourceRepo) Update(_ context.Context, _ *models.Resource) error { return nil }

func (m *mockResourceRepo) Delete(_ context.Context, _ string) (int64, error) { return 1, nil }

type mockLinkRepo struct {
	direct         []models.Resource
	linked         []models.Resource
	deleteAffected int64
	createdLinks   []*models.ResourceLink
}

func (m *mockLinkRepo) CreateLink(_ context.Context, _ models.AnchorKind, link *models.ResourceLink) error {
	m.createdLinks = append(m.createdLinks, link)
	return nil
}

func (m *mockLinkRepo) DeleteLink(_ context.Context, _ models.AnchorKind, _, _ string) (int64, error) {
	return m.deleteAffected, nil
}

func (m *mockLinkRepo) ListLinked(_ context.Context, _ models.AnchorKind, _ string) ([]models.Resource, error) {
	return m.linked, nil
}

func (m *mockLinkRepo) ListDirect(_ context.Context, _ models.AnchorKind, _ string) ([]models.Resource, error) {
	return m.direct, nil
}

type mockFileStore struct {
	saved   []string
	deleted []string
	saveErr error
}

func (m *mockFileStore) SaveStream(filename string, r io.Reader) (string, error) {
	if m.saveErr != nil {
		return "", m.saveErr
	}
	if _, err := io.Copy(io.Discard, r); err != nil {
		return "", err
	}
	m.saved = append(m.saved, filename)
	return filename, nil
}

func (m *mockFileStore) Delete(filename string) error {
	m.deleted = append(m.deleted, filename)
	return nil
}

func strPtr(s string) *string { return &s }

func intPtr(n int) *int { return &n }

func anchoredResource(id, programID string, month *int, componentID *string) models.Resource {
	return models.Resource{
		ID:          id,
		Title:       "Resource " + id,
		ProgramID:   &programID,
		MonthNumber: month,
		ComponentID: componentID,
	}
}

func TestFuzzyComponentMatch(t *testing.T) {
	cases := []struct {
		name     string
		resource string
		query    string
		want     bool
	}{
		{"exact", "orientation-1", "orientation-1", true},
		{"prefix before first dash", "cefr", "cefr-assessment-2", true},
		{"substring of query", "assessment", "cefr-assessment-2", true},
		{"unrelated", "fundamentals", "orientation-1", false},
		{"empty resource id", "", "orientation-1", false},
		{"empty query", "orientation-1", "", false},
		{"query shorter than resource", "orientation-extended", "orientation", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, FuzzyComponentMatch(tc.resource, tc.query))
		})
	}
}

func TestIsVisibleRequiresProgramAnchor(t *testing.T) {
	qctx := dto.ResourceContext{ProgramID: "prog-1"}

	unanchored := models.Resource{ID: "r1"}
	assert.False(t, IsVisible(unanchored, qctx))

	otherProgram := anchoredResource("r2", "prog-2", nil, nil)
	assert.False(t, IsVisible(otherProgram, qctx))

	match := anchoredResource("r3", "prog-1", nil, nil)
	assert.True(t, IsVisible(match, qctx))
}

func TestIsVisibleMonthScoping(t *testing.T) {
	qctx := dto.ResourceContext{ProgramID: "prog-1", MonthNumber: intPtr(2)}

	assert.True(t, IsVisible(anchoredResource("r1", "prog-1", intPtr(2), nil), qctx))
	assert.False(t, IsVisible(anchoredResource("r2", "prog-1", intPtr(3), nil), qctx))
	assert.False(t, IsVisible(anchoredResource("r3", "prog-1", nil, nil), qctx))

	// Absent month in the query acts as a wildcard.
	wildcard := dto.ResourceContext{ProgramID: "prog-1"}
	assert.True(t, IsVisible(anchoredResource("r4", "prog-1", intPtr(3), nil), wildcard))
}

func TestIsVisibleComponentScopingIsFuzzy(t *testing.T) {
	qctx := dto.ResourceContext{ProgramID: "prog-1", ComponentID: strPtr("cefr-assessment-2")}

	assert.True(t, IsVisible(anchoredResource("r1", "prog-1", nil, strPtr("assessment")), qctx))
	assert.False(t, IsVisible(anchoredResource("r2", "prog-1", nil, strPtr("orientation")), qctx))
	assert.False(t, IsVisible(anchoredResource("r3", "prog-1", nil, nil), qctx))
}

func TestListLibraryNarrowingContextNeverAddsResources(t *testing.T) {
	repo := &mockResourceRepo{byProgram: []models.Resource{
		anchoredResource("r1", "prog-1", intPtr(1), strPtr("orientation")),
		anchoredResource("r2", "prog-1", intPtr(1), strPtr("assessment")),
		anchoredResource("r3", "prog-1", intPtr(2), strPtr("assessment")),
	}}
	svc := NewResourceService(repo, &mockLinkRepo{}, &mockFileStore{}, nil, zap.NewNop())

	programWide, err := svc.ListLibrary(context.Background(), dto.ResourceContext{ProgramID: "prog-1"})
	require.NoError(t, err)
	monthScoped, err := svc.ListLibrary(context.Background(), dto.ResourceContext{ProgramID: "prog-1", MonthNumber: intPtr(1)})
	require.NoError(t, err)
	componentScoped, err := svc.ListLibrary(context.Background(), dto.ResourceContext{
		ProgramID:   "prog-1",
		MonthNumber: intPtr(1),
		ComponentID: strPtr("cefr-assessment-1"),
	})
	require.NoError(t, err)

	assert.Len(t, programWide, 3)
	assert.Len(t, monthScoped, 2)
	require.Len(t, componentScoped, 1)
	assert.Equal(t, "r2", componentScoped[0].ID)

	ids := func(resources []models.Resource) map[string]bool {
		set := make(map[string]bool, len(resources))
		for _, r := range resources {
			set[r.ID] = true
		}
		return set
	}
	wide := ids(programWide)
	for id := range ids(monthScoped) {
		assert.True(t, wide[id])
	}
	month := ids(monthScoped)
	for id := range ids(componentScoped) {
		assert.True(t, month[id])
	}
}

func TestResolveLinksForDeduplicates(t *testing.T) {
	links := &mockLinkRepo{
		direct: []models.Resource{{ID: "r1"}, {ID: "r2"}},
		linked: []models.Resource{{ID: "r2"}, {ID: "r3"}},
	}
	svc := NewResourceService(&mockResourceRepo{}, links, &mockFileStore{}, nil, zap.NewNop())

	resources, err := svc.ResolveLinksFor(context.Background(), models.AnchorWorkshop, "ws-1")

	require.NoError(t, err)
	require.Len(t, resources, 3)
	assert.Equal(t, "r1", resources[0].ID)
	assert.Equal(t, "r2", resources[1].ID)
	assert.Equal(t, "r3", resources[2].ID)
}

func TestResolveLinksForRejectsUnknownKind(t *testing.T) {
	svc := NewResourceService(&mockResourceRepo{}, &mockLinkRepo{}, &mockFileStore{}, nil, zap.NewNop())

	_, err := svc.ResolveLinksFor(context.Background(), "module", "x")

	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestUnlinkMissingLink(t *testing.T) {
	svc := NewResourceService(&mockResourceRepo{}, &mockLinkRepo{deleteAffected: 0}, &mockFileStore{}, nil, zap.NewNop())

	err := svc.Unlink(context.Background(), models.AnchorAgendaItem, "r1", "ai-1")

	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestCreateResourceRemovesFileWhenInsertFails(t *testing.T) {
	repo := &mockResourceRepo{createErr: errors.New("insert failed")}
	files := &mockFileStore{}
	svc := NewResourceService(repo, &mockLinkRepo{}, files, nil, zap.NewNop())

	_, err := svc.Create(context.Background(), CreateResourceRequest{
		Title:    "Handout",
		Type:     "document",
		Category: "materials",
		FileName: "handout.pdf",
		FileSize: 42,
		MimeType: "application/pdf",
		File:     strings.NewReader("pdf bytes"),
	})

	require.Error(t, err)
	require.Len(t, files.saved, 1)
	assert.Equal(t, files.saved, files.deleted)
}

func TestCreateResourceStoresFileMetadata(t *testing.T) {
	repo := &mockResourceRepo{}
	files := &mockFileStore{}
	svc := NewResourceService(repo, &mockLinkRepo{}, files, nil, zap.NewNop())

	resource, err := svc.Create(context.Background(), CreateResourceRequest{
		Title:    "Handout",
		Type:     "document",
		Category: "materials",
		FileName: "handout.pdf",
		FileSize: 42,
		MimeType: "application/pdf",
		File:     strings.NewReader("pdf bytes"),
	})

	require.NoError(t, err)
	require.NotNil(t, resource.URL)
	assert.Contains(t, *resource.URL, resource.ID)
	require.NotNil(t, resource.FileSize)
	assert.EqualValues(t, 42, *resource.FileSize)
	assert.Empty(t, files.deleted)
}
