package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/project-service/internal/domain"
)

// ErrVersionConflict signals a stale optimistic version stamp on update.
var ErrVersionConflict = errors.New("task version conflict")

// TaskRepository encapsulates task persistence.
type TaskRepository interface {
	Create(ctx context.Context, task *domain.Task) error
	Update(ctx context.Context, task *domain.Task) error
	GetByID(ctx context.Context, id string) (*domain.Task, error)
	ListByProject(ctx context.Context, projectID string) ([]domain.Task, error)
}

type taskRepository struct {
	pool *pgxpool.Pool
}

// NewTaskRepository instantiates repository.
func NewTaskRepository(pool *pgxpool.Pool) TaskRepository {
	return &taskRepository{pool: pool}
}

func (r *taskRepository) Create(ctx context.Context, task *domain.Task) error {
	// floor_position is assigned inside the insert so it stays monotonically
	// increasing per project.
	const query = `
        INSERT INTO tasks (project_id, title, description, status, assignee_user_id, due_date,
            floor_position, deliverable_link, completion, priority)
        VALUES ($1,$2,$3,$4,$5,$6,
            (SELECT COALESCE(MAX(floor_position), 0) + 1 FROM tasks WHERE project_id=$1),
            $7,$8,$9)
        RETURNING id, floor_position, version, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		task.ProjectID,
		task.Title,
		task.Description,
		task.Status,
		task.AssigneeID,
		task.DueDate,
		task.DeliverableLink,
		task.Completion,
		task.Priority,
	).Scan(&task.ID, &task.FloorPosition, &task.Version, &task.CreatedAt, &task.UpdatedAt)
}

func (r *taskRepository) Update(ctx context.Context, task *domain.Task) error {
	// The version predicate rejects lost updates; floor_position is
	// deliberately not part of the SET list.
	const query = `
        UPDATE tasks SET title=$1, description=$2, status=$3, assignee_user_id=$4, due_date=$5,
            deliverable_link=$6, review_comments=$7, completion=$8, priority=$9,
            version=version+1, updated_at=NOW()
        WHERE id=$10 AND version=$11
        RETURNING version, updated_at`
	err := r.pool.QueryRow(ctx, query,
		task.Title,
		task.Description,
		task.Status,
		task.AssigneeID,
		task.DueDate,
		task.DeliverableLink,
		task.ReviewComments,
		task.Completion,
		task.Priority,
		task.ID,
		task.Version,
	).Scan(&task.Version, &task.UpdatedAt)
	if err == nil {
		return nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	var exists bool
	if probeErr := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM tasks WHERE id=$1)`, task.ID).Scan(&exists); probeErr != nil {
		return probeErr
	}
	if exists {
		return ErrVersionConflict
	}
	return pgx.ErrNoRows
}

func (r *taskRepository) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	const query = `
        SELECT id, project_id, title, description, status, assignee_user_id, due_date,
               floor_position, deliverable_link, review_comments, completion, priority,
               version, created_at, updated_at
        FROM tasks WHERE id=$1`
	var task domain.Task
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&task.ID,
		&task.ProjectID,
		&task.Title,
		&task.Description,
		&task.Status,
		&task.AssigneeID,
		&task.DueDate,
		&task.FloorPosition,
		&task.DeliverableLink,
		&task.ReviewComments,
		&task.Completion,
		&task.Priority,
		&task.Version,
		&task.CreatedAt,
		&task.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &task, nil
}

func (r *taskRepository) ListByProject(ctx context.Context, projectID string) ([]domain.Task, error) {
	const query = `
        SELECT id, project_id, title, description, status, assignee_user_id, due_date,
               floor_position, deliverable_link, review_comments, completion, priority,
               version, created_at, updated_at
        FROM tasks WHERE project_id=$1 ORDER BY floor_position DESC`
	rows, err := r.pool.Query(ctx, query, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Task
	for rows.Next() {
		var task domain.Task
		if err := rows.Scan(
			&task.ID,
			&task.ProjectID,
			&task.Title,
			&task.Description,
			&task.Status,
			&task.AssigneeID,
			&task.DueDate,
			&task.FloorPosition,
			&task.DeliverableLink,
			&task.ReviewComments,
			&task.Completion,
			&task.Priority,
			&task.Version,
			&task.CreatedAt,
			&task.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, task)
	}
	return result, rows.Err()
}
