package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/trainwell/pathway-api/internal/models"
	appErrors "github.com/trainwell/pathway-api/pkg/errors"
)

type workshopRepository interface {
	List(ctx context.Context, filter models.WorkshopFilter) ([]models.Workshop, int, error)
	FindByID(ctx context.Context, id string) (*models.Workshop, error)
	Create(ctx context.Context, workshop *models.Workshop) error
	Update(ctx context.Context, workshop *models.Workshop) error
	Delete(ctx context.Context, id string) (int64, error)
}

// WorkshopRequest covers creating and updating a workshop.
type WorkshopRequest struct {
	ProgramID     string                `json:"program_id" validate:"required,uuid"`
	Title         string                `json:"title" validate:"required,min=3,max=200"`
	Description   string                `json:"description"`
	Facilitator   string                `json:"facilitator"`
	ScheduledAt   *time.Time            `json:"scheduled_at"`
	DurationHours float64               `json:"duration_hours" validate:"min=0"`
	Capacity      int                   `json:"capacity" validate:"min=0"`
	Status        models.WorkshopStatus `json:"status" validate:"omitempty,oneof=scheduled completed cancelled"`
}

// WorkshopService owns workshop lifecycle.
type WorkshopService struct {
	repo      workshopRepository
	programs  programReader
	validator *validator.Validate
	logger    *zap.Logger
}

// NewWorkshopService constructs WorkshopService.
func NewWorkshopService(repo workshopRepository, programs programReader, validate *validator.Validate, logger *zap.Logger) *WorkshopService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WorkshopService{repo: repo, programs: programs, validator: validate, logger: logger}
}

// List returns workshops with pagination metadata.
func (s *WorkshopService) List(ctx context.Context, filter models.WorkshopFilter) ([]models.Workshop, *models.Pagination, error) {
	workshops, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list workshops")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	if workshops == nil {
		workshops = []models.Workshop{}
	}
	return workshops, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get returns a single workshop.
func (s *WorkshopService) Get(ctx context.Context, id string) (*models.Workshop, error) {
	workshop, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "workshop not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load workshop")
	}
	return workshop, nil
}

// Create validates the owning program exists before persisting.
func (s *WorkshopService) Create(ctx context.Context, req WorkshopRequest) (*models.Workshop, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid workshop payload")
	}
	if _, err := s.programs.FindByID(ctx, req.ProgramID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "program not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load program")
	}

	workshop := &models.Workshop{
		ID:            uuid.NewString(),
		ProgramID:     req.ProgramID,
		Title:         req.Title,
		Description:   req.Description,
		Facilitator:   req.Facilitator,
		ScheduledAt:   req.ScheduledAt,
		DurationHours: req.DurationHours,
		Capacity:      req.Capacity,
		Status:        models.WorkshopStatusScheduled,
	}
	if req.Status != "" {
		workshop.Status = req.Status
	}
	if err := s.repo.Create(ctx, workshop); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create workshop")
	}
	return workshop, nil
}

// Update replaces workshop fields.
func (s *WorkshopService) Update(ctx context.Context, id string, req WorkshopRequest) (*models.Workshop, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid workshop payload")
	}
	workshop, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	workshop.Title = req.Title
	workshop.Description = req.Description
	workshop.Facilitator = req.Facilitator
	workshop.ScheduledAt = req.ScheduledAt
	workshop.DurationHours = req.DurationHours
	workshop.Capacity = req.Capacity
	if req.Status != "" {
		workshop.Status = req.Status
	}
	if err := s.repo.Update(ctx, workshop); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update workshop")
	}
	return workshop, nil
}

// Delete removes a workshop; agenda items and link rows cascade.
func (s *WorkshopService) Delete(ctx context.Context, id string) error {
	affected, err := s.repo.Delete(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete workshop")
	}
	if affected == 0 {
		return appErrors.Clone(appErrors.ErrNotFound, "workshop not found")
	}
	return nil
}
