package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/trainwell/pathway-api/internal/models"
)

const eventColumns = `id, pathway_id, title, type, start_date, end_date, duration_hours, format,
        objectives, resource_refs, dependencies, month_index, week_index, created_at`

// EventRepository handles persistence of learning events.
type EventRepository struct {
	db *sqlx.DB
}

// NewEventRepository constructs the repository.
func NewEventRepository(db *sqlx.DB) *EventRepository {
	return &EventRepository{db: db}
}

// Create persists a new event and returns the authoritative row from the
// write itself (RETURNING), so callers get a read-your-write guarantee in a
// single round trip.
func (r *EventRepository) Create(ctx context.Context, event *models.Event) (*models.Event, error) {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO events (id, pathway_id, title, type, start_date, end_date, duration_hours, format,
        objectives, resource_refs, dependencies, month_index, week_index, created_at)
        VALUES (:id, :pathway_id, :title, :type, :start_date, :end_date, :duration_hours, :format,
        :objectives, :resource_refs, :dependencies, :month_index, :week_index, :created_at)
        RETURNING ` + eventColumns
	rows, err := r.db.NamedQueryContext(ctx, query, event)
	if err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	var created models.Event
	if rows.Next() {
		if err := rows.StructScan(&created); err != nil {
			return nil, fmt.Errorf("scan created event: %w", err)
		}
	}
	return &created, nil
}

// FindByID returns an event by its ID.
func (r *EventRepository) FindByID(ctx context.Context, id string) (*models.Event, error) {
	query := fmt.Sprintf("SELECT %s FROM events WHERE id = $1", eventColumns)
	var event models.Event
	if err := r.db.GetContext(ctx, &event, query, id); err != nil {
		return nil, err
	}
	return &event, nil
}

// ListByPathway returns all events of a program ordered by placement.
func (r *EventRepository) ListByPathway(ctx context.Context, pathwayID string) ([]models.Event, error) {
	query := fmt.Sprintf(`SELECT %s FROM events WHERE pathway_id = $1
        ORDER BY month_index ASC, week_index ASC, created_at ASC`, eventColumns)
	var events []models.Event
	if err := r.db.SelectContext(ctx, &events, query, pathwayID); err != nil {
		return nil, fmt.Errorf("list pathway events: %w", err)
	}
	return events, nil
}

// FindLatestByPathway returns the most recently created event for a program.
func (r *EventRepository) FindLatestByPathway(ctx context.Context, pathwayID string) (*models.Event, error) {
	query := fmt.Sprintf("SELECT %s FROM events WHERE pathway_id = $1 ORDER BY created_at DESC LIMIT 1", eventColumns)
	var event models.Event
	if err := r.db.GetContext(ctx, &event, query, pathwayID); err != nil {
		return nil, err
	}
	return &event, nil
}

// FindLatest returns the most recently created event across all programs.
func (r *EventRepository) FindLatest(ctx context.Context) (*models.Event, error) {
	query := fmt.Sprintf("SELECT %s FROM events ORDER BY created_at DESC LIMIT 1", eventColumns)
	var event models.Event
	if err := r.db.GetContext(ctx, &event, query); err != nil {
		return nil, err
	}
	return &event, nil
}

// Delete removes an event and reports how many rows were affected.
func (r *EventRepository) Delete(ctx context.Context, id string) (int64, error) {
	res, err := r.db.ExecContext(ctx, "DELETE FROM events WHERE id = $1", id)
	if err != nil {
		return 0, fmt.Errorf("delete event: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete event rows affected: %w", err)
	}
	return affected, nil
}
