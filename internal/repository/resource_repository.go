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

const resourceColumns = `id, title, description, type, format, category, url, file_size, mime_type,
        tags, status, is_public, version, uploaded_by, program_id, month_number, component_id,
        workshop_id, agenda_item_id, learning_event_id, assigned_to_user_id, created_at, updated_at`

func resourceColumnList(alias string) string {
	cols := strings.Split(resourceColumns, ",")
	for i, col := range cols {
		cols[i] = alias + "." + strings.TrimSpace(col)
	}
	return strings.Join(cols, ", ")
}

// ResourceRepository handles persistence of resources.
type ResourceRepository struct {
	db *sqlx.DB
}

// NewResourceRepository constructs the repository.
func NewResourceRepository(db *sqlx.DB) *ResourceRepository {
	return &ResourceRepository{db: db}
}

// Create persists a new resource record.
func (r *ResourceRepository) Create(ctx context.Context, resource *models.Resource) error {
	if resource.ID == "" {
		resource.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if resource.CreatedAt.IsZero() {
		resource.CreatedAt = now
	}
	resource.UpdatedAt = now
	if resource.Status == "" {
		resource.Status = models.ResourceStatusDraft
	}
	const query = `INSERT INTO resources (id, title, description, type, format, category, url, file_size, mime_type,
        tags, status, is_public, version, uploaded_by, program_id, month_number, component_id,
        workshop_id, agenda_item_id, learning_event_id, assigned_to_user_id, created_at, updated_at)
        VALUES (:id, :title, :description, :type, :format, :category, :url, :file_size, :mime_type,
        :tags, :status, :is_public, :version, :uploaded_by, :program_id, :month_number, :component_id,
        :workshop_id, :agenda_item_id, :learning_event_id, :assigned_to_user_id, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, resource); err != nil {
		return fmt.Errorf("create resource: %w", err)
	}
	return nil
}

// FindByID returns a resource by its ID.
func (r *ResourceRepository) FindByID(ctx context.Context, id string) (*models.Resource, error) {
	query := fmt.Sprintf("SELECT %s FROM resources WHERE id = $1", resourceColumns)
	var resource models.Resource
	if err := r.db.GetContext(ctx, &resource, query, id); err != nil {
		return nil, err
	}
	return &resource, nil
}

// ListByProgram returns every resource directly anchored to a program.
// Month/component narrowing is applied in the service layer because the
// component match is fuzzy, not relational.
func (r *ResourceRepository) ListByProgram(ctx context.Context, programID string) ([]models.Resource, error) {
	query := fmt.Sprintf("SELECT %s FROM resources WHERE program_id = $1 ORDER BY created_at ASC", resourceColumns)
	var resources []models.Resource
	if err := r.db.SelectContext(ctx, &resources, query, programID); err != nil {
		return nil, fmt.Errorf("list program resources: %w", err)
	}
	return resources, nil
}

// List returns resources filtered by the provided criteria.
func (r *ResourceRepository) List(ctx context.Context, filter models.ResourceFilter) ([]models.Resource, int, error) {
	var conditions []string
	var args []interface{}

	if filter.Category != "" {
		conditions = append(conditions, fmt.Sprintf("category = $%d", len(args)+1))
		args = append(args, filter.Category)
	}
	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, filter.Status)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(title ILIKE $%d OR description ILIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+filter.Search+"%")
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

	query := fmt.Sprintf("SELECT %s FROM resources%s ORDER BY created_at DESC LIMIT %d OFFSET %d",
		resourceColumns, clause, size, offset)
	var resources []models.Resource
	if err := r.db.SelectContext(ctx, &resources, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list resources: %w", err)
	}

	countQuery := "SELECT COUNT(*) FROM resources" + clause
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count resources: %w", err)
	}
	return resources, total, nil
}

// Update replaces the mutable fields of a resource.
func (r *ResourceRepository) Update(ctx context.Context, resource *models.Resource) error {
	resource.UpdatedAt = time.Now().UTC()
	const query = `UPDATE resources SET title = :title, description = :description, type = :type,
        format = :format, category = :category, tags = :tags, status = :status, is_public = :is_public,
        version = :version, program_id = :program_id, month_number = :month_number, component_id = :component_id,
        workshop_id = :workshop_id, agenda_item_id = :agenda_item_id, learning_event_id = :learning_event_id,
        assigned_to_user_id = :assigned_to_user_id, updated_at = :updated_at
        WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, resource); err != nil {
		return fmt.Errorf("update resource: %w", err)
	}
	return nil
}

// Delete removes a resource and reports how many rows were affected.
func (r *ResourceRepository) Delete(ctx context.Context, id string) (int64, error) {
	res, err := r.db.ExecContext(ctx, "DELETE FROM resources WHERE id = $1", id)
	if err != nil {
		return 0, fmt.Errorf("delete resource: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete resource rows affected: %w", err)
	}
	return affected, nil
}
