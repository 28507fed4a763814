package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/project-service/internal/domain"
)

// MemberRepository manages project membership rows.
type MemberRepository interface {
	Create(ctx context.Context, member *domain.ProjectMember) error
	UpdateRole(ctx context.Context, projectID, userID string, role domain.ProjectRole) error
	GetByProjectAndUser(ctx context.Context, projectID, userID string) (*domain.ProjectMember, error)
	ListByProject(ctx context.Context, projectID string) ([]domain.ProjectMember, error)
}

type memberRepository struct {
	pool *pgxpool.Pool
}

// NewMemberRepository builds the repository.
func NewMemberRepository(pool *pgxpool.Pool) MemberRepository {
	return &memberRepository{pool: pool}
}

func (r *memberRepository) Create(ctx context.Context, member *domain.ProjectMember) error {
	const query = `
        INSERT INTO project_members (project_id, user_id, role, invited_by, invited_at, joined_at)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		member.ProjectID,
		member.UserID,
		member.Role,
		member.InvitedBy,
		member.InvitedAt,
		member.JoinedAt,
	).Scan(&member.ID, &member.CreatedAt, &member.UpdatedAt)
}

func (r *memberRepository) UpdateRole(ctx context.Context, projectID, userID string, role domain.ProjectRole) error {
	const query = `
        UPDATE project_members SET role=$1, updated_at=NOW()
        WHERE project_id=$2 AND user_id=$3`
	cmd, err := r.pool.Exec(ctx, query, role, projectID, userID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *memberRepository) GetByProjectAndUser(ctx context.Context, projectID, userID string) (*domain.ProjectMember, error) {
	const query = `
        SELECT id, project_id, user_id, role, invited_by, invited_at, joined_at, created_at, updated_at
        FROM project_members WHERE project_id=$1 AND user_id=$2`
	var member domain.ProjectMember
	if err := r.pool.QueryRow(ctx, query, projectID, userID).Scan(
		&member.ID,
		&member.ProjectID,
		&member.UserID,
		&member.Role,
		&member.InvitedBy,
		&member.InvitedAt,
		&member.JoinedAt,
		&member.CreatedAt,
		&member.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &member, nil
}

func (r *memberRepository) ListByProject(ctx context.Context, projectID string) ([]domain.ProjectMember, error) {
	const query = `
        SELECT id, project_id, user_id, role, invited_by, invited_at, joined_at, created_at, updated_at
        FROM project_members WHERE project_id=$1 ORDER BY created_at ASC`
	rows, err := r.pool.Query(ctx, query, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.ProjectMember
	for rows.Next() {
		var member domain.ProjectMember
		if err := rows.Scan(
			&member.ID,
			&member.ProjectID,
			&member.UserID,
			&member.Role,
			&member.InvitedBy,
			&member.InvitedAt,
			&member.JoinedAt,
			&member.CreatedAt,
			&member.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, member)
	}
	return result, rows.Err()
}
