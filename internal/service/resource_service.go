package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/trainwell/pathway-api/internal/dto"
	"github.com/trainwell/pathway-api/internal/models"
	appErrors "github.com/trainwell/pathway-api/pkg/errors"
)

type resourceRepository interface {
	Create(ctx context.Context, resource *models.Resource) error
	FindByID(ctx context.Context, id string) (*models.Resource, error)
	ListByProgram(ctx context.Context, programID string) ([]models.Resource, error)
	List(ctx context.Context, filter models.ResourceFilter) ([]models.Resource, int, error)
	Update(ctx context.Context, resource *models.Resource) error
	Delete(ctx context.Context, id string) (int64, error)
}

type resourceLinkRepository interface {
	CreateLink(ctx context.Context, kind models.AnchorKind, link *models.ResourceLink) error
	DeleteLink(ctx context.Context, kind models.AnchorKind, resourceID, anchorID string) (int64, error)
	ListLinked(ctx context.Context, kind models.AnchorKind, anchorID string) ([]models.Resource, error)
	ListDirect(ctx context.Context, kind models.AnchorKind, anchorID string) ([]models.Resource, error)
}

type fileStore interface {
	SaveStream(filename string, r io.Reader) (string, error)
	Delete(filename string) error
}

// FuzzyComponentMatch reports whether a resource's component anchor should
// count as matching the queried component id. Besides exact equality it
// accepts the resource id equalling the prefix of the query before its first
// dash, and the query containing the resource id as a substring. Synthesized
// component ids ("orientation-3") and real event ids rarely line up exactly,
// and the library view prefers over-matching to hiding a material that does
// belong. Keep every caller going through here; nothing else in the system
// may treat component ids as fuzzily comparable.
func FuzzyComponentMatch(resourceComponentID, queryComponentID string) bool {
	if resourceComponentID == "" || queryComponentID == "" {
		return false
	}
	if resourceComponentID == queryComponentID {
		return true
	}
	prefix, _, found := strings.Cut(queryComponentID, "-")
	if found && resourceComponentID == prefix {
		return true
	}
	return strings.Contains(queryComponentID, resourceComponentID)
}

// IsVisible decides whether a resource belongs in the library view described
// by the query context. A resource with no program anchor is invisible in
// every per-program view; absent context fields act as wildcards. Pure.
func IsVisible(resource models.Resource, qctx dto.ResourceContext) bool {
	if resource.ProgramID == nil || *resource.ProgramID != qctx.ProgramID {
		return false
	}
	if qctx.MonthNumber != nil {
		if resource.MonthNumber == nil || *resource.MonthNumber != *qctx.MonthNumber {
			return false
		}
	}
	if qctx.ComponentID != nil {
		if resource.ComponentID == nil {
			return false
		}
		if !FuzzyComponentMatch(*resource.ComponentID, *qctx.ComponentID) {
			return false
		}
	}
	return true
}

// CreateResourceRequest describes the resource creation payload. File upload
// is optional; when present the file fields carry the multipart part.
type CreateResourceRequest struct {
	Title       string   `json:"title" validate:"required"`
	Description string   `json:"description"`
	Type        string   `json:"type" validate:"required"`
	Format      string   `json:"format"`
	Category    string   `json:"category" validate:"required"`
	Tags        []string `json:"tags"`
	IsPublic    bool     `json:"is_public"`
	Version     string   `json:"version"`
	UploadedBy  string   `json:"-"`

	ProgramID        *string `json:"program_id"`
	MonthNumber      *int    `json:"month_number"`
	ComponentID      *string `json:"component_id"`
	WorkshopID       *string `json:"workshop_id"`
	AgendaItemID     *string `json:"agenda_item_id"`
	LearningEventID  *string `json:"learning_event_id"`
	AssignedToUserID *string `json:"assigned_to_user_id"`

	FileName string    `json:"-"`
	FileSize int64     `json:"-"`
	MimeType string    `json:"-"`
	File     io.Reader `json:"-"`
}

// UpdateResourceRequest replaces the mutable fields of a resource.
type UpdateResourceRequest struct {
	Title       string                `json:"title" validate:"required"`
	Description string                `json:"description"`
	Type        string                `json:"type" validate:"required"`
	Format      string                `json:"format"`
	Category    string                `json:"category" validate:"required"`
	Tags        []string              `json:"tags"`
	Status      models.ResourceStatus `json:"status" validate:"omitempty,oneof=draft review approved archived"`
	IsPublic    bool                  `json:"is_public"`
	Version     string                `json:"version"`

	ProgramID        *string `json:"program_id"`
	MonthNumber      *int    `json:"month_number"`
	ComponentID      *string `json:"component_id"`
	WorkshopID       *string `json:"workshop_id"`
	AgendaItemID     *string `json:"agenda_item_id"`
	LearningEventID  *string `json:"learning_event_id"`
	AssignedToUserID *string `json:"assigned_to_user_id"`
}

// ResourceService orchestrates resource storage and association resolution.
type ResourceService struct {
	repo      resourceRepository
	links     resourceLinkRepository
	files     fileStore
	validator *validator.Validate
	logger    *zap.Logger
}

// NewResourceService constructs ResourceService.
func NewResourceService(repo resourceRepository, links resourceLinkRepository, files fileStore, validate *validator.Validate, logger *zap.Logger) *ResourceService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ResourceService{repo: repo, links: links, files: files, validator: validate, logger: logger}
}

// Create stores an optional file and persists the resource row. If the row
// write fails after the file landed on disk, the file is removed so storage
// does not accumulate orphans.
func (s *ResourceService) Create(ctx context.Context, req CreateResourceRequest) (*models.Resource, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid resource payload")
	}

	resource := &models.Resource{
		ID:               uuid.NewString(),
		Title:            req.Title,
		Description:      req.Description,
		Type:             req.Type,
		Format:           req.Format,
		Category:         req.Category,
		Tags:             models.StringList(req.Tags),
		Status:           models.ResourceStatusDraft,
		IsPublic:         req.IsPublic,
		Version:          req.Version,
		UploadedBy:       req.UploadedBy,
		ProgramID:        req.ProgramID,
		MonthNumber:      req.MonthNumber,
		ComponentID:      req.ComponentID,
		WorkshopID:       req.WorkshopID,
		AgendaItemID:     req.AgendaItemID,
		LearningEventID:  req.LearningEventID,
		AssignedToUserID: req.AssignedToUserID,
	}
	if resource.Tags == nil {
		resource.Tags = models.StringList{}
	}
	if resource.Version == "" {
		resource.Version = "1.0"
	}

	var storedFile string
	if req.File != nil && req.FileName != "" {
		storedFile = fmt.Sprintf("resources/%s%s", resource.ID, filepath.Ext(req.FileName))
		if _, err := s.files.SaveStream(storedFile, req.File); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store resource file")
		}
		url := "/files/" + storedFile
		resource.URL = &url
		resource.FileSize = &req.FileSize
		resource.MimeType = &req.MimeType
		if resource.Format == "" {
			resource.Format = strings.TrimPrefix(filepath.Ext(req.FileName), ".")
		}
	}

	if err := s.repo.Create(ctx, resource); err != nil {
		if storedFile != "" {
			if cleanupErr := s.files.Delete(storedFile); cleanupErr != nil {
				s.logger.Warn("failed to remove orphaned upload", zap.String("file", storedFile), zap.Error(cleanupErr))
			}
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create resource")
	}
	return resource, nil
}

// Get returns a single resource.
func (s *ResourceService) Get(ctx context.Context, id string) (*models.Resource, error) {
	resource, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "resource not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load resource")
	}
	return resource, nil
}

// List returns resources filtered by plain criteria with pagination.
func (s *ResourceService) List(ctx context.Context, filter models.ResourceFilter) ([]models.Resource, *models.Pagination, error) {
	resources, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list resources")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	if resources == nil {
		resources = []models.Resource{}
	}
	return resources, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// ListLibrary returns the resources visible in the given program library
// view, applying the month wildcard and fuzzy component rules over the
// already-fetched program set.
func (s *ResourceService) ListLibrary(ctx context.Context, qctx dto.ResourceContext) ([]models.Resource, error) {
	candidates, err := s.repo.ListByProgram(ctx, qctx.ProgramID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load program resources")
	}
	visible := make([]models.Resource, 0, len(candidates))
	for _, resource := range candidates {
		if IsVisible(resource, qctx) {
			visible = append(visible, resource)
		}
	}
	return visible, nil
}

// ResolveLinksFor returns the resources associated with an anchor: the union
// of direct-column matches and link-table rows, deduplicated by resource id.
// Direct matches come first; link rows follow in display_order. The first
// occurrence of a resource wins.
func (s *ResourceService) ResolveLinksFor(ctx context.Context, kind models.AnchorKind, anchorID string) ([]models.Resource, error) {
	if !kind.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown anchor kind")
	}
	direct, err := s.links.ListDirect(ctx, kind, anchorID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load anchored resources")
	}
	linked, err := s.links.ListLinked(ctx, kind, anchorID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load linked resources")
	}

	seen := make(map[string]struct{}, len(direct)+len(linked))
	merged := make([]models.Resource, 0, len(direct)+len(linked))
	for _, resource := range append(direct, linked...) {
		if _, dup := seen[resource.ID]; dup {
			continue
		}
		seen[resource.ID] = struct{}{}
		merged = append(merged, resource)
	}
	return merged, nil
}

// Link records a resource↔anchor association. Duplicate pairs are accepted
// and collapsed at read time.
func (s *ResourceService) Link(ctx context.Context, kind models.AnchorKind, req dto.LinkResourceRequest) (*models.ResourceLink, error) {
	if !kind.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown anchor kind")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid link payload")
	}
	if _, err := s.repo.FindByID(ctx, req.ResourceID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "resource not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load resource")
	}
	link := &models.ResourceLink{
		ResourceID:   req.ResourceID,
		AnchorID:     req.AnchorID,
		ResourceType: req.ResourceType,
		DisplayOrder: req.DisplayOrder,
	}
	if err := s.links.CreateLink(ctx, kind, link); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create link")
	}
	return link, nil
}

// Unlink removes a specific association row; missing links are a not-found.
func (s *ResourceService) Unlink(ctx context.Context, kind models.AnchorKind, resourceID, anchorID string) error {
	if !kind.Valid() {
		return appErrors.Clone(appErrors.ErrValidation, "unknown anchor kind")
	}
	affected, err := s.links.DeleteLink(ctx, kind, resourceID, anchorID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete link")
	}
	if affected == 0 {
		return appErrors.Clone(appErrors.ErrNotFound, "link not found")
	}
	return nil
}

// Update replaces the mutable fields of a resource.
func (s *ResourceService) Update(ctx context.Context, id string, req UpdateResourceRequest) (*models.Resource, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid resource payload")
	}
	resource, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	resource.Title = req.Title
	resource.Description = req.Description
	resource.Type = req.Type
	resource.Format = req.Format
	resource.Category = req.Category
	resource.Tags = models.StringList(req.Tags)
	if resource.Tags == nil {
		resource.Tags = models.StringList{}
	}
	if req.Status != "" {
		resource.Status = req.Status
	}
	resource.IsPublic = req.IsPublic
	if req.Version != "" {
		resource.Version = req.Version
	}
	resource.ProgramID = req.ProgramID
	resource.MonthNumber = req.MonthNumber
	resource.ComponentID = req.ComponentID
	resource.WorkshopID = req.WorkshopID
	resource.AgendaItemID = req.AgendaItemID
	resource.LearningEventID = req.LearningEventID
	resource.AssignedToUserID = req.AssignedToUserID

	if err := s.repo.Update(ctx, resource); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update resource")
	}
	return resource, nil
}

// Delete removes the resource row and best-effort removes its stored file.
func (s *ResourceService) Delete(ctx context.Context, id string) error {
	resource, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	affected, err := s.repo.Delete(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete resource")
	}
	if affected == 0 {
		return appErrors.Clone(appErrors.ErrNotFound, "resource not found")
	}
	if resource.URL != nil {
		file := strings.TrimPrefix(*resource.URL, "/files/")
		if err := s.files.Delete(file); err != nil {
			s.logger.Warn("failed to delete resource file", zap.String("file", file), zap.Error(err))
		}
	}
	return nil
}
