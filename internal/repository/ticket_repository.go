package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/project-service/internal/domain"
)

// TicketFilter captures ticket search parameters. A nil SubmitterID means
// the caller is privileged and sees the whole collection.
type TicketFilter struct {
	SubmitterID  *string
	DepartmentID *string
	AssigneeID   *string
	Statuses     []domain.TicketStatus
	Priorities   []domain.Priority
	CreatedFrom  *time.Time
	CreatedTo    *time.Time
	Limit        int
	Offset       int
}

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.SupportTicket) error
	Update(ctx context.Context, ticket *domain.SupportTicket) error
	Claim(ctx context.Context, id, assigneeID string) (*domain.SupportTicket, error)
	Touch(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.SupportTicket, error)
	ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.SupportTicket, error)
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.SupportTicket) error {
	const query = `
        INSERT INTO support_tickets (external_key, submitter_user_id, subject, description, status, priority, department_id, assignee_user_id)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		ticket.ExternalKey,
		ticket.SubmitterID,
		ticket.Subject,
		ticket.Description,
		ticket.Status,
		ticket.Priority,
		ticket.DepartmentID,
		ticket.AssigneeID,
	).Scan(&ticket.ID, &ticket.CreatedAt, &ticket.UpdatedAt)
}

func (r *ticketRepository) Update(ctx context.Context, ticket *domain.SupportTicket) error {
	const query = `
        UPDATE support_tickets SET subject=$1, description=$2, status=$3, priority=$4,
            department_id=$5, assignee_user_id=$6, updated_at=NOW()
        WHERE id=$7
        RETURNING updated_at`
	return r.pool.QueryRow(ctx, query,
		ticket.Subject,
		ticket.Description,
		ticket.Status,
		ticket.Priority,
		ticket.DepartmentID,
		ticket.AssigneeID,
		ticket.ID,
	).Scan(&ticket.UpdatedAt)
}

// Claim sets the assignee only while the ticket is still unassigned, so two
// racing claims cannot both win. pgx.ErrNoRows means the ticket is missing
// or somebody else got there first.
func (r *ticketRepository) Claim(ctx context.Context, id, assigneeID string) (*domain.SupportTicket, error) {
	const query = `
        UPDATE support_tickets
        SET assignee_user_id=$1,
            status=CASE WHEN status='open' THEN 'in_progress' ELSE status END,
            updated_at=NOW()
        WHERE id=$2 AND assignee_user_id IS NULL
        RETURNING id, external_key, submitter_user_id, subject, description, status, priority,
                  department_id, assignee_user_id, created_at, updated_at`
	var ticket domain.SupportTicket
	if err := r.pool.QueryRow(ctx, query, assigneeID, id).Scan(
		&ticket.ID,
		&ticket.ExternalKey,
		&ticket.SubmitterID,
		&ticket.Subject,
		&ticket.Description,
		&ticket.Status,
		&ticket.Priority,
		&ticket.DepartmentID,
		&ticket.AssigneeID,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &ticket, nil
}

// Touch stamps updated_at without changing any field; used when a message
// lands on the ticket thread.
func (r *ticketRepository) Touch(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `UPDATE support_tickets SET updated_at=NOW() WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.SupportTicket, error) {
	const query = `
        SELECT id, external_key, submitter_user_id, subject, description, status, priority,
               department_id, assignee_user_id, created_at, updated_at
        FROM support_tickets WHERE id=$1`
	var ticket domain.SupportTicket
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&ticket.ID,
		&ticket.ExternalKey,
		&ticket.SubmitterID,
		&ticket.Subject,
		&ticket.Description,
		&ticket.Status,
		&ticket.Priority,
		&ticket.DepartmentID,
		&ticket.AssigneeID,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *ticketRepository) ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.SupportTicket, error) {
	base := `SELECT id, external_key, submitter_user_id, subject, description, status, priority,
                    department_id, assignee_user_id, created_at, updated_at
             FROM support_tickets`
	clauses := []string{"1=1"}
	args := []any{}

	if filter.SubmitterID != nil {
		args = append(args, *filter.SubmitterID)
		clauses = append(clauses, fmt.Sprintf("submitter_user_id=$%d", len(args)))
	}
	if filter.DepartmentID != nil {
		args = append(args, *filter.DepartmentID)
		clauses = append(clauses, fmt.Sprintf("department_id=$%d", len(args)))
	}
	if filter.AssigneeID != nil {
		args = append(args, *filter.AssigneeID)
		clauses = append(clauses, fmt.Sprintf("assignee_user_id=$%d", len(args)))
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}
	if len(filter.Priorities) > 0 {
		placeholders := make([]string, len(filter.Priorities))
		for i, pr := range filter.Priorities {
			args = append(args, pr)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("priority IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.CreatedFrom != nil {
		args = append(args, *filter.CreatedFrom)
		clauses = append(clauses, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if filter.CreatedTo != nil {
		args = append(args, *filter.CreatedTo)
		clauses = append(clauses, fmt.Sprintf("created_at <= $%d", len(args)))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY updated_at DESC LIMIT %d OFFSET %d`,
		base, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

func scanTickets(rows pgx.Rows) ([]domain.SupportTicket, error) {
	var result []domain.SupportTicket
	for rows.Next() {
		var ticket domain.SupportTicket
		if err := rows.Scan(
			&ticket.ID,
			&ticket.ExternalKey,
			&ticket.SubmitterID,
			&ticket.Subject,
			&ticket.Description,
			&ticket.Status,
			&ticket.Priority,
			&ticket.DepartmentID,
			&ticket.AssigneeID,
			&ticket.CreatedAt,
			&ticket.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, ticket)
	}
	return result, rows.Err()
}
