package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/trainwell/pathway-api/internal/models"
	appErrors "github.com/trainwell/pathway-api/pkg/errors"
)

type agendaItemRepository interface {
	ListByWorkshop(ctx context.Context, workshopID string) ([]models.AgendaItem, error)
	FindByID(ctx context.Context, id string) (*models.AgendaItem, error)
	Create(ctx context.Context, item *models.AgendaItem) error
	Update(ctx context.Context, item *models.AgendaItem) error
	Reorder(ctx context.Context, workshopID string, itemIDs []string) error
	Delete(ctx context.Context, id string) (int64, error)
}

type workshopReader interface {
	FindByID(ctx context.Context, id string) (*models.Workshop, error)
}

// AgendaItemRequest covers creating and updating an agenda item.
type AgendaItemRequest struct {
	Title           string `json:"title" validate:"required,min=1,max=200"`
	Description     string `json:"description"`
	DurationMinutes int    `json:"duration_minutes" validate:"min=0"`
	OrderIndex      int    `json:"order_index" validate:"min=0"`
}

// ReorderAgendaRequest lists every agenda item of a workshop in desired order.
type ReorderAgendaRequest struct {
	ItemIDs []string `json:"item_ids" validate:"required,min=1,dive,uuid"`
}

// AgendaService owns workshop agendas, including reordering.
type AgendaService struct {
	repo      agendaItemRepository
	workshops workshopReader
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAgendaService constructs AgendaService.
func NewAgendaService(repo agendaItemRepository, workshops workshopReader, validate *validator.Validate, logger *zap.Logger) *AgendaService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AgendaService{repo: repo, workshops: workshops, validator: validate, logger: logger}
}

// List returns a workshop's agenda in order.
func (s *AgendaService) List(ctx context.Context, workshopID string) ([]models.AgendaItem, error) {
	if _, err := s.workshops.FindByID(ctx, workshopID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "workshop not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load workshop")
	}
	items, err := s.repo.ListByWorkshop(ctx, workshopID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list agenda items")
	}
	if items == nil {
		items = []models.AgendaItem{}
	}
	return items, nil
}

// Create appends an agenda item to a workshop.
func (s *AgendaService) Create(ctx context.Context, workshopID string, req AgendaItemRequest) (*models.AgendaItem, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid agenda item payload")
	}
	if _, err := s.workshops.FindByID(ctx, workshopID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "workshop not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load workshop")
	}

	item := &models.AgendaItem{
		ID:              uuid.NewString(),
		WorkshopID:      workshopID,
		Title:           req.Title,
		Description:     req.Description,
		DurationMinutes: req.DurationMinutes,
		OrderIndex:      req.OrderIndex,
	}
	if err := s.repo.Create(ctx, item); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create agenda item")
	}
	return item, nil
}

// Update replaces an agenda item's fields.
func (s *AgendaService) Update(ctx context.Context, id string, req AgendaItemRequest) (*models.AgendaItem, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid agenda item payload")
	}
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "agenda item not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load agenda item")
	}
	item.Title = req.Title
	item.Description = req.Description
	item.DurationMinutes = req.DurationMinutes
	item.OrderIndex = req.OrderIndex
	if err := s.repo.Update(ctx, item); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update agenda item")
	}
	return item, nil
}

// Reorder rewrites order_index for every listed item of the workshop. Items
// outside the workshop are ignored by the repository's scoped update.
func (s *AgendaService) Reorder(ctx context.Context, workshopID string, req ReorderAgendaRequest) ([]models.AgendaItem, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid reorder payload")
	}
	if _, err := s.workshops.FindByID(ctx, workshopID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "workshop not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load workshop")
	}
	if err := s.repo.Reorder(ctx, workshopID, req.ItemIDs); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reorder agenda")
	}
	items, err := s.repo.ListByWorkshop(ctx, workshopID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list agenda items")
	}
	return items, nil
}

// Delete removes an agenda item.
func (s *AgendaService) Delete(ctx context.Context, id string) error {
	affected, err := s.repo.Delete(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete agenda item")
	}
	if affected == 0 {
		return appErrors.Clone(appErrors.ErrNotFound, "agenda item not found")
	}
	return nil
}
