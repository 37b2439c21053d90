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

const programColumns = `id, title, description, duration, total_hours, status, cefr_level, created_by, created_at, updated_at`

// ProgramRepository handles persistence of programs and their membership
// junction tables.
type ProgramRepository struct {
	db *sqlx.DB
}

// NewProgramRepository constructs the repository.
func NewProgramRepository(db *sqlx.DB) *ProgramRepository {
	return &ProgramRepository{db: db}
}

// List returns programs filtered by the provided criteria.
func (r *ProgramRepository) List(ctx context.Context, filter models.ProgramFilter) ([]models.Program, int, error) {
	var conditions []string
	var args []interface{}

	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, filter.Status)
	}
	if filter.CreatedBy != "" {
		conditions = append(conditions, fmt.Sprintf("created_by = $%d", len(args)+1))
		args = append(args, filter.CreatedBy)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(title ILIKE $%d OR description ILIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+filter.Search+"%")
	}

	clause := ""
	if len(conditions) > 0 {
		clause = " WHERE " + strings.Join(conditions, " AND ")
	}

	allowedSorts := map[string]string{
		"created_at": "created_at",
		"title":      "title",
		"duration":   "duration",
	}
	orderBy := allowedSorts[filter.SortBy]
	if orderBy == "" {
		orderBy = "created_at"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "DESC"
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

	query := fmt.Sprintf("SELECT %s FROM programs%s ORDER BY %s %s LIMIT %d OFFSET %d",
		programColumns, clause, orderBy, order, size, offset)
	var programs []models.Program
	if err := r.db.SelectContext(ctx, &programs, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list programs: %w", err)
	}

	countQuery := "SELECT COUNT(*) FROM programs" + clause
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count programs: %w", err)
	}
	return programs, total, nil
}

// FindByID returns a program by its ID.
func (r *ProgramRepository) FindByID(ctx context.Context, id string) (*models.Program, error) {
	query := fmt.Sprintf("SELECT %s FROM programs WHERE id = $1", programColumns)
	var program models.Program
	if err := r.db.GetContext(ctx, &program, query, id); err != nil {
		return nil, err
	}
	return &program, nil
}

// FindDetailByID returns a program with its participants and trainers.
func (r *ProgramRepository) FindDetailByID(ctx context.Context, id string) (*models.ProgramDetail, error) {
	program, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	detail := &models.ProgramDetail{Program: *program}
	if detail.Participants, err = r.listMembers(ctx, "program_participants", id); err != nil {
		return nil, err
	}
	if detail.Trainers, err = r.listMembers(ctx, "program_trainers", id); err != nil {
		return nil, err
	}
	return detail, nil
}

func (r *ProgramRepository) listMembers(ctx context.Context, table, programID string) ([]models.ProgramMember, error) {
	query := fmt.Sprintf(`SELECT m.user_id, u.email, u.full_name, u.role
        FROM %s m JOIN users u ON u.id = m.user_id
        WHERE m.program_id = $1 ORDER BY u.full_name ASC`, table)
	members := make([]models.ProgramMember, 0)
	if err := r.db.SelectContext(ctx, &members, query, programID); err != nil {
		return nil, fmt.Errorf("list %s: %w", table, err)
	}
	return members, nil
}

// Create persists a program together with its participant and trainer
// junction rows in a single transaction, so a mid-sequence failure cannot
// leave a partially linked program.
func (r *ProgramRepository) Create(ctx context.Context, program *models.Program, participants, trainers []string) error {
	if program.ID == "" {
		program.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if program.CreatedAt.IsZero() {
		program.CreatedAt = now
	}
	program.UpdatedAt = now
	if program.Status == "" {
		program.Status = models.ProgramStatusDraft
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create program: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	const query = `INSERT INTO programs (id, title, description, duration, total_hours, status, cefr_level, created_by, created_at, updated_at)
        VALUES (:id, :title, :description, :duration, :total_hours, :status, :cefr_level, :created_by, :created_at, :updated_at)`
	if _, err := tx.NamedExecContext(ctx, query, program); err != nil {
		return fmt.Errorf("create program: %w", err)
	}
	if err := insertMembers(ctx, tx, "program_participants", program.ID, participants); err != nil {
		return err
	}
	if err := insertMembers(ctx, tx, "program_trainers", program.ID, trainers); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create program: %w", err)
	}
	return nil
}

// Update replaces the mutable program fields and, for each non-nil member
// slice, wholesale-replaces the corresponding junction rows (an empty slice
// removes every row). Everything runs in one transaction.
func (r *ProgramRepository) Update(ctx context.Context, program *models.Program, participants, trainers *[]string) error {
	program.UpdatedAt = time.Now().UTC()

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin update program: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	const query = `UPDATE programs SET title = :title, description = :description, duration = :duration,
        total_hours = :total_hours, status = :status, cefr_level = :cefr_level, updated_at = :updated_at
        WHERE id = :id`
	if _, err := tx.NamedExecContext(ctx, query, program); err != nil {
		return fmt.Errorf("update program: %w", err)
	}
	if participants != nil {
		if err := replaceMembers(ctx, tx, "program_participants", program.ID, *participants); err != nil {
			return err
		}
	}
	if trainers != nil {
		if err := replaceMembers(ctx, tx, "program_trainers", program.ID, *trainers); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit update program: %w", err)
	}
	return nil
}

func replaceMembers(ctx context.Context, tx *sqlx.Tx, table, programID string, userIDs []string) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE program_id = $1", table)
	if _, err := tx.ExecContext(ctx, query, programID); err != nil {
		return fmt.Errorf("clear %s: %w", table, err)
	}
	return insertMembers(ctx, tx, table, programID, userIDs)
}

func insertMembers(ctx context.Context, tx *sqlx.Tx, table, programID string, userIDs []string) error {
	if len(userIDs) == 0 {
		return nil
	}
	placeholders := make([]string, 0, len(userIDs))
	args := make([]interface{}, 0, len(userIDs)*2)
	for i, userID := range userIDs {
		placeholders = append(placeholders, fmt.Sprintf("($%d, $%d)", i*2+1, i*2+2))
		args = append(args, programID, userID)
	}
	query := fmt.Sprintf("INSERT INTO %s (program_id, user_id) VALUES %s", table, strings.Join(placeholders, ", "))
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert %s: %w", table, err)
	}
	return nil
}

// Delete removes a program and reports how many rows were affected. Junction
// and event rows are removed by ON DELETE CASCADE.
func (r *ProgramRepository) Delete(ctx context.Context, id string) (int64, error) {
	res, err := r.db.ExecContext(ctx, "DELETE FROM programs WHERE id = $1", id)
	if err != nil {
		return 0, fmt.Errorf("delete program: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete program rows affected: %w", err)
	}
	return affected, nil
}
