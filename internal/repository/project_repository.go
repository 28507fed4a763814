package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/project-service/internal/domain"
)

// ProjectRepository encapsulates project persistence.
type ProjectRepository interface {
	Create(ctx context.Context, project *domain.Project) error
	Update(ctx context.Context, project *domain.Project) error
	GetByID(ctx context.Context, id string) (*domain.Project, error)
	ListForUser(ctx context.Context, userID string) ([]domain.Project, error)
}

type projectRepository struct {
	pool *pgxpool.Pool
}

// NewProjectRepository instantiates repository.
func NewProjectRepository(pool *pgxpool.Pool) ProjectRepository {
	return &projectRepository{pool: pool}
}

func (r *projectRepository) Create(ctx context.Context, project *domain.Project) error {
	const query = `
        INSERT INTO projects (name, description, status, priority, progress, due_date, budget, tags, owner_user_id)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		project.Name,
		project.Description,
		project.Status,
		project.Priority,
		project.Progress,
		project.DueDate,
		project.Budget,
		project.Tags,
		project.OwnerID,
	).Scan(&project.ID, &project.CreatedAt, &project.UpdatedAt)
}

func (r *projectRepository) Update(ctx context.Context, project *domain.Project) error {
	const query = `
        UPDATE projects SET name=$1, description=$2, status=$3, priority=$4, progress=$5,
            due_date=$6, budget=$7, tags=$8, owner_user_id=$9, updated_at=NOW()
        WHERE id=$10`
	cmd, err := r.pool.Exec(ctx, query,
		project.Name,
		project.Description,
		project.Status,
		project.Priority,
		project.Progress,
		project.DueDate,
		project.Budget,
		project.Tags,
		project.OwnerID,
		project.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *projectRepository) GetByID(ctx context.Context, id string) (*domain.Project, error) {
	const query = `
        SELECT id, name, description, status, priority, progress, due_date, budget, tags,
               owner_user_id, created_at, updated_at
        FROM projects WHERE id=$1`
	var project domain.Project
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&project.ID,
		&project.Name,
		&project.Description,
		&project.Status,
		&project.Priority,
		&project.Progress,
		&project.DueDate,
		&project.Budget,
		&project.Tags,
		&project.OwnerID,
		&project.CreatedAt,
		&project.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &project, nil
}

func (r *projectRepository) ListForUser(ctx context.Context, userID string) ([]domain.Project, error) {
	const query = `
        SELECT p.id, p.name, p.description, p.status, p.priority, p.progress, p.due_date, p.budget,
               p.tags, p.owner_user_id, p.created_at, p.updated_at
        FROM projects p
        JOIN project_members m ON m.project_id = p.id
        WHERE m.user_id = $1
        ORDER BY p.updated_at DESC`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Project
	for rows.Next() {
		var project domain.Project
		if err := rows.Scan(
			&project.ID,
			&project.Name,
			&project.Description,
			&project.Status,
			&project.Priority,
			&project.Progress,
			&project.DueDate,
			&project.Budget,
			&project.Tags,
			&project.OwnerID,
			&project.CreatedAt,
			&project.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, project)
	}
	return result, rows.Err()
}
