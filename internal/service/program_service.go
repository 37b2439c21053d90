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

type programRepository interface {
	List(ctx context.Context, filter models.ProgramFilter) ([]models.Program, int, error)
	FindByID(ctx context.Context, id string) (*models.Program, error)
	FindDetailByID(ctx context.Context, id string) (*models.ProgramDetail, error)
	Create(ctx context.Context, program *models.Program, participants, trainers []string) error
	Update(ctx context.Context, program *models.Program, participants, trainers *[]string) error
	Delete(ctx context.Context, id string) (int64, error)
}

// CreateProgramRequest is the payload for creating a program.
type CreateProgramRequest struct {
	Title        string            `json:"title" validate:"required,min=3,max=200"`
	Description  string            `json:"description"`
	Duration     int               `json:"duration" validate:"required,min=1,max=24"`
	TotalHours   float64           `json:"total_hours" validate:"min=0"`
	CEFRLevel    *models.CEFRLevel `json:"cefr_level" validate:"omitempty,oneof=A1 A2 B1 B2 C1 C2"`
	Participants []string          `json:"participants" validate:"dive,uuid"`
	Trainers     []string          `json:"trainers" validate:"dive,uuid"`
	CreatedBy    string            `json:"-"`
}

// UpdateProgramRequest replaces a program's fields. Participants and trainers
// are replace-all: a present list overwrites the junction table wholesale, an
// absent (nil) list leaves it untouched, an empty list clears it.
type UpdateProgramRequest struct {
	Title        string               `json:"title" validate:"required,min=3,max=200"`
	Description  string               `json:"description"`
	Duration     int                  `json:"duration" validate:"required,min=1,max=24"`
	TotalHours   float64              `json:"total_hours" validate:"min=0"`
	Status       models.ProgramStatus `json:"status" validate:"omitempty,oneof=draft active completed archived"`
	CEFRLevel    *models.CEFRLevel    `json:"cefr_level" validate:"omitempty,oneof=A1 A2 B1 B2 C1 C2"`
	Participants *[]string            `json:"participants" validate:"omitempty,dive,uuid"`
	Trainers     *[]string            `json:"trainers" validate:"omitempty,dive,uuid"`
}

// ProgramService owns program lifecycle and membership management.
type ProgramService struct {
	repo        programRepository
	invalidator timelineInvalidator
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewProgramService constructs ProgramService.
func NewProgramService(repo programRepository, invalidator timelineInvalidator, validate *validator.Validate, logger *zap.Logger) *ProgramService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProgramService{repo: repo, invalidator: invalidator, validator: validate, logger: logger}
}

// List returns programs with pagination metadata.
func (s *ProgramService) List(ctx context.Context, filter models.ProgramFilter) ([]models.Program, *models.Pagination, error) {
	programs, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list programs")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	if programs == nil {
		programs = []models.Program{}
	}
	return programs, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get returns a program with its participants and trainers resolved.
func (s *ProgramService) Get(ctx context.Context, id string) (*models.ProgramDetail, error) {
	detail, err := s.repo.FindDetailByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "program not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load program")
	}
	return detail, nil
}

// Create persists a program and its memberships in one transaction.
func (s *ProgramService) Create(ctx context.Context, req CreateProgramRequest) (*models.ProgramDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid program payload")
	}

	program := &models.Program{
		ID:          uuid.NewString(),
		Title:       req.Title,
		Description: req.Description,
		Duration:    req.Duration,
		TotalHours:  req.TotalHours,
		Status:      models.ProgramStatusDraft,
		CEFRLevel:   req.CEFRLevel,
		CreatedBy:   req.CreatedBy,
	}
	if err := s.repo.Create(ctx, program, req.Participants, req.Trainers); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create program")
	}
	s.logger.Info("program created",
		zap.String("program_id", program.ID),
		zap.Int("duration", program.Duration),
		zap.Int("participants", len(req.Participants)),
		zap.Int("trainers", len(req.Trainers)))
	return s.Get(ctx, program.ID)
}

// Update replaces program fields and, when lists are present, memberships.
func (s *ProgramService) Update(ctx context.Context, id string, req UpdateProgramRequest) (*models.ProgramDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid program payload")
	}
	program, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "program not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load program")
	}

	program.Title = req.Title
	program.Description = req.Description
	program.Duration = req.Duration
	program.TotalHours = req.TotalHours
	if req.Status != "" {
		program.Status = req.Status
	}
	program.CEFRLevel = req.CEFRLevel

	if err := s.repo.Update(ctx, program, req.Participants, req.Trainers); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update program")
	}
	if s.invalidator != nil {
		s.invalidator.InvalidateProgram(ctx, id)
	}
	return s.Get(ctx, id)
}

// Delete removes a program; junction and event rows cascade in the schema.
func (s *ProgramService) Delete(ctx context.Context, id string) error {
	affected, err := s.repo.Delete(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete program")
	}
	if affected == 0 {
		return appErrors.Clone(appErrors.ErrNotFound, "program not found")
	}
	if s.invalidator != nil {
		s.invalidator.InvalidateProgram(ctx, id)
	}
	return nil
}
