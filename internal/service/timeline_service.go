package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/trainwell/pathway-api/internal/dto"
	"github.com/trainwell/pathway-api/internal/models"
	appErrors "github.com/trainwell/pathway-api/pkg/errors"
)

// stageTitles are the fixed month titles, in curriculum order. Months past
// the end of the list fall back to "Month {n}".
var stageTitles = []string{
	"Foundation Building",
	"Skill Development",
	"Applied Practice",
	"Consolidation",
	"Specialisation",
	"Mastery",
}

// BuildGrid distributes events into a duration×4 month/week grid. Every slot
// exists even when no event occupies it. Events whose 1-based placement
// indices fall outside the grid are dropped without error. The result is a
// pure function of its inputs; rebuilding is the only way to reflect changes.
func BuildGrid(duration int, events []models.Event) []dto.TimelineMonth {
	if duration < 0 {
		duration = 0
	}
	months := make([]dto.TimelineMonth, duration)
	for i := range months {
		weeks := make([]dto.TimelineWeek, dto.WeeksPerMonth)
		for w := range weeks {
			weeks[w].Events = []models.Event{}
		}
		months[i] = dto.TimelineMonth{Number: i + 1, Weeks: weeks}
	}

	for _, event := range events {
		monthSlot := event.MonthIndex - 1
		weekSlot := event.WeekIndex - 1
		if monthSlot < 0 || monthSlot >= duration {
			continue
		}
		if weekSlot < 0 || weekSlot >= dto.WeeksPerMonth {
			continue
		}
		months[monthSlot].Weeks[weekSlot].Events = append(months[monthSlot].Weeks[weekSlot].Events, event)
	}
	return months
}

// SynthesizeStructure derives the nested Program → Month → Component view.
// Each real event becomes one component carrying the event's id; a month
// with no events gets three placeholder components so downstream resource
// views always have a grouping target. Derived on every call, never stored.
func SynthesizeStructure(program models.Program, events []models.Event) dto.ProgramStructure {
	byMonth := make(map[int][]models.Event, program.Duration)
	for _, event := range events {
		byMonth[event.MonthIndex] = append(byMonth[event.MonthIndex], event)
	}

	months := make([]dto.StructureMonth, 0, program.Duration)
	for n := 1; n <= program.Duration; n++ {
		month := dto.StructureMonth{Number: n, Title: monthTitle(n)}
		real := byMonth[n]
		if len(real) == 0 {
			month.Components = defaultComponents(n)
		} else {
			month.Components = make([]dto.StructureComponent, 0, len(real))
			for _, event := range real {
				month.Components = append(month.Components, dto.StructureComponent{
					ID:    event.ID,
					Title: event.Title,
					Type:  string(event.Type),
				})
			}
		}
		months = append(months, month)
	}
	return dto.ProgramStructure{ProgramID: program.ID, Months: months}
}

func monthTitle(n int) string {
	if n >= 1 && n <= len(stageTitles) {
		return stageTitles[n-1]
	}
	return fmt.Sprintf("Month %d", n)
}

func defaultComponents(n int) []dto.StructureComponent {
	return []dto.StructureComponent{
		{ID: fmt.Sprintf("orientation-%d", n), Title: "Orientation", Type: "orientation"},
		{ID: fmt.Sprintf("cefr-assessment-%d", n), Title: "CEFR Assessment", Type: "assessment"},
		{ID: fmt.Sprintf("fundamentals-%d", n), Title: "Fundamentals", Type: "elearning"},
	}
}

type timelineProgramReader interface {
	FindByID(ctx context.Context, id string) (*models.Program, error)
}

type timelineEventReader interface {
	ListByPathway(ctx context.Context, pathwayID string) ([]models.Event, error)
}

// TimelineService serves derived timeline and structure views, caching them
// per program.
type TimelineService struct {
	programs timelineProgramReader
	events   timelineEventReader
	cache    *CacheService
	metrics  *MetricsService
	logger   *zap.Logger
}

// NewTimelineService constructs TimelineService.
func NewTimelineService(programs timelineProgramReader, events timelineEventReader, cache *CacheService, logger *zap.Logger) *TimelineService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TimelineService{programs: programs, events: events, cache: cache, logger: logger}
}

// WithMetrics attaches build-time instrumentation. Optional; a nil metrics
// service is a no-op.
func (s *TimelineService) WithMetrics(metrics *MetricsService) *TimelineService {
	s.metrics = metrics
	return s
}

func timelineCacheKey(programID string) string {
	return "timeline:" + programID + ":grid"
}

func structureCacheKey(programID string) string {
	return "timeline:" + programID + ":structure"
}

// GetTimeline returns the placement grid for a program. The bool reports
// whether the view came from cache.
func (s *TimelineService) GetTimeline(ctx context.Context, programID string) (*dto.Timeline, bool, error) {
	var cached dto.Timeline
	if hit, _ := s.cache.Get(ctx, timelineCacheKey(programID), &cached); hit {
		return &cached, true, nil
	}

	program, events, err := s.load(ctx, programID)
	if err != nil {
		return nil, false, err
	}
	start := time.Now()
	timeline := &dto.Timeline{
		ProgramID: program.ID,
		Duration:  program.Duration,
		Months:    BuildGrid(program.Duration, events),
	}
	s.metrics.ObserveViewBuild("grid", time.Since(start))
	if err := s.cache.Set(ctx, timelineCacheKey(programID), timeline, 0); err != nil {
		s.logger.Warn("timeline cache write failed", zap.String("program_id", programID), zap.Error(err))
	}
	return timeline, false, nil
}

// GetStructure returns the synthesized program structure. The bool reports
// whether the view came from cache.
func (s *TimelineService) GetStructure(ctx context.Context, programID string) (*dto.ProgramStructure, bool, error) {
	var cached dto.ProgramStructure
	if hit, _ := s.cache.Get(ctx, structureCacheKey(programID), &cached); hit {
		return &cached, true, nil
	}

	program, events, err := s.load(ctx, programID)
	if err != nil {
		return nil, false, err
	}
	start := time.Now()
	structure := SynthesizeStructure(*program, events)
	s.metrics.ObserveViewBuild("structure", time.Since(start))
	if err := s.cache.Set(ctx, structureCacheKey(programID), &structure, 0); err != nil {
		s.logger.Warn("structure cache write failed", zap.String("program_id", programID), zap.Error(err))
	}
	return &structure, false, nil
}

// InvalidateProgram drops cached views after an event write.
func (s *TimelineService) InvalidateProgram(ctx context.Context, programID string) {
	if err := s.cache.Invalidate(ctx, "timeline:"+programID+":*"); err != nil {
		s.logger.Warn("timeline cache invalidation failed", zap.String("program_id", programID), zap.Error(err))
	}
}

func (s *TimelineService) load(ctx context.Context, programID string) (*models.Program, []models.Event, error) {
	program, err := s.programs.FindByID(ctx, programID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil, appErrors.Clone(appErrors.ErrNotFound, "program not found")
		}
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load program")
	}
	events, err := s.events.ListByPathway(ctx, programID)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load program events")
	}
	return program, events, nil
}
