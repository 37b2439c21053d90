package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/trainwell/pathway-api/internal/models"
)

const workshopColumns = `id, program_id, title, description, facilitator, scheduled_at, duration_hours, capacity, status, created_at, updated_at`

// WorkshopRepository handles persistence of workshops.
type WorkshopRepository struct {
	db *sqlx.DB
}

// NewWorkshopRepository constructs the repository.
func NewWorkshopRepository(db *sqlx.DB) *WorkshopRepository {
	return &WorkshopRepository{db: db}
}

// List returns workshops filtered by the provided criteria.
func (r *WorkshopRepository) List(ctx context.Context, filter models.WorkshopFilter) ([]models.Workshop, int, error) {
	var conditions []string
	var args []interface{}

	if filter.ProgramID != "" {
		conditions = append(conditions, fmt.Sprintf("program_id = $%d", len(args)+1))
		args = append(args, filter.ProgramID)
	}
	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, filter.Status)
	}

	clause := ""
	if len(conditions) > 0 {
		clause = " WHERE " + strings.Join(conditions, " AND ")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s FROM workshops%s ORDER BY scheduled_at ASC NULLS LAST, created_at ASC LIMIT %d OFFSET %d",
		workshopColumns, clause, size, offset)
	var workshops []models.Workshop
	if err := r.db.SelectContext(ctx, &workshops, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list workshops: %w", err)
	}

	countQuery := "SELECT COUNT(*) FROM workshops" + clause
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count workshops: %w", err)
	}
	return workshops, total, nil
}

// FindByID returns a workshop by its ID.
func (r *WorkshopRepository) FindByID(ctx context.Context, id string) (*models.Workshop, error) {
	query := fmt.Sprintf("SELECT %s FROM workshops WHERE id = $1", workshopColumns)
	var workshop models.Workshop
	if err := r.db.GetContext(ctx, &workshop, query, id); err != nil {
		return nil, err
	}
	return &workshop, nil
}

// Create persists a new workshop record.
func (r *WorkshopRepository) Create(ctx context.Context, workshop *models.Workshop) error {
	if workshop.ID == "" {
		workshop.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if workshop.CreatedAt.IsZero() {
		workshop.CreatedAt = now
	}
	workshop.UpdatedAt = now
	if workshop.Status == "" {
		workshop.Status = models.WorkshopStatusScheduled
	}
	const query = `INSERT INTO workshops (id, program_id, title, description, facilitator, scheduled_at, duration_hours, capacity, status, created_at, updated_at)
        VALUES (:id, :program_id, :title, :description, :facilitator, :scheduled_at, :duration_hours, :capacity, :status, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, workshop); err != nil {
		return fmt.Errorf("create workshop: %w", err)
	}
	return nil
}

// Update replaces the mutable fields of a workshop.
func (r *WorkshopRepository) Update(ctx context.Context, workshop *models.Workshop) error {
	workshop.UpdatedAt = time.Now().UTC()
	const query = `UPDATE workshops SET title = :title, description = :description, facilitator = :facilitator,
        scheduled_at = :scheduled_at, duration_hours = :duration_hours, capacity = :capacity, status = :status,
        updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, workshop); err != nil {
		return fmt.Errorf("update workshop: %w", err)
	}
	return nil
}

// Delete removes a workshop and reports how many rows were affected.
func (r *WorkshopRepository) Delete(ctx context.Context, id string) (int64, error) {
	res, err := r.db.ExecContext(ctx, "DELETE FROM workshops WHERE id = $1", id)
	if err != nil {
		return 0, fmt.Errorf("delete workshop: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete workshop rows affected: %w", err)
	}
	return affected, nil
}
