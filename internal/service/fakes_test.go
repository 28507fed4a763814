package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/project-service/internal/domain"
	"github.com/spec-kit/project-service/internal/repository"
)

// In-memory repository fakes backing the service tests. They mirror the
// Postgres implementations closely enough for workflow assertions: missing
// rows surface as pgx.ErrNoRows and the task fake enforces the version
// predicate.

type fakeUserRepo struct {
	byID    map[string]*domain.User
	byEmail map[string]*domain.User
	seq     int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byID: map[string]*domain.User{}, byEmail: map[string]*domain.User{}}
}

func (f *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	f.seq++
	user.ID = fmt.Sprintf("user-%d", f.seq)
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	clone := *user
	f.byID[user.ID] = &clone
	f.byEmail[user.Email] = &clone
	return nil
}

func (f *fakeUserRepo) Update(_ context.Context, user *domain.User) error {
	stored, ok := f.byID[user.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	*stored = *user
	return nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	user, ok := f.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *user
	return &clone, nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	user, ok := f.byEmail[email]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *user
	return &clone, nil
}

type fakeProfileRepo struct {
	byUser map[string]*domain.Profile
}

func newFakeProfileRepo() *fakeProfileRepo {
	return &fakeProfileRepo{byUser: map[string]*domain.Profile{}}
}

func (f *fakeProfileRepo) Create(_ context.Context, profile *domain.Profile) error {
	profile.CreatedAt = time.Now()
	profile.UpdatedAt = profile.CreatedAt
	clone := *profile
	f.byUser[profile.UserID] = &clone
	return nil
}

func (f *fakeProfileRepo) Update(_ context.Context, profile *domain.Profile) error {
	stored, ok := f.byUser[profile.UserID]
	if !ok {
		return pgx.ErrNoRows
	}
	*stored = *profile
	return nil
}

func (f *fakeProfileRepo) GetByUserID(_ context.Context, userID string) (*domain.Profile, error) {
	profile, ok := f.byUser[userID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *profile
	return &clone, nil
}

type fakeProjectRepo struct {
	byID map[string]*domain.Project
	seq  int
}

func newFakeProjectRepo() *fakeProjectRepo {
	return &fakeProjectRepo{byID: map[string]*domain.Project{}}
}

func (f *fakeProjectRepo) Create(_ context.Context, project *domain.Project) error {
	f.seq++
	project.ID = fmt.Sprintf("project-%d", f.seq)
	project.CreatedAt = time.Now()
	project.UpdatedAt = project.CreatedAt
	clone := *project
	f.byID[project.ID] = &clone
	return nil
}

func (f *fakeProjectRepo) Update(_ context.Context, project *domain.Project) error {
	stored, ok := f.byID[project.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	*stored = *project
	return nil
}

func (f *fakeProjectRepo) GetByID(_ context.Context, id string) (*domain.Project, error) {
	project, ok := f.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *project
	return &clone, nil
}

func (f *fakeProjectRepo) ListForUser(_ context.Context, _ string) ([]domain.Project, error) {
	result := make([]domain.Project, 0, len(f.byID))
	for _, project := range f.byID {
		result = append(result, *project)
	}
	return result, nil
}

type fakeMemberRepo struct {
	members map[string]*domain.ProjectMember
	seq     int
}

func newFakeMemberRepo() *fakeMemberRepo {
	return &fakeMemberRepo{members: map[string]*domain.ProjectMember{}}
}

func memberKey(projectID, userID string) string {
	return projectID + "/" + userID
}

func (f *fakeMemberRepo) Create(_ context.Context, member *domain.ProjectMember) error {
	f.seq++
	member.ID = fmt.Sprintf("member-%d", f.seq)
	member.CreatedAt = time.Now()
	member.UpdatedAt = member.CreatedAt
	clone := *member
	f.members[memberKey(member.ProjectID, member.UserID)] = &clone
	return nil
}

func (f *fakeMemberRepo) UpdateRole(_ context.Context, projectID, userID string, role domain.ProjectRole) error {
	member, ok := f.members[memberKey(projectID, userID)]
	if !ok {
		return pgx.ErrNoRows
	}
	member.Role = role
	return nil
}

func (f *fakeMemberRepo) GetByProjectAndUser(_ context.Context, projectID, userID string) (*domain.ProjectMember, error) {
	member, ok := f.members[memberKey(projectID, userID)]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *member
	return &clone, nil
}

func (f *fakeMemberRepo) ListByProject(_ context.Context, projectID string) ([]domain.ProjectMember, error) {
	result := []domain.ProjectMember{}
	for _, member := range f.members {
		if member.ProjectID == projectID {
			result = append(result, *member)
		}
	}
	return result, nil
}

func (f *fakeMemberRepo) add(projectID, userID string, role domain.ProjectRole) {
	now := time.Now()
	_ = f.Create(context.Background(), &domain.ProjectMember{
		ProjectID: projectID,
		UserID:    userID,
		Role:      role,
		InvitedAt: now,
		JoinedAt:  &now,
	})
}

type fakeTaskRepo struct {
	byID map[string]*domain.Task
	seq  int
}

func newFakeTaskRepo() *fakeTaskRepo {
	return &fakeTaskRepo{byID: map[string]*domain.Task{}}
}

func (f *fakeTaskRepo) Create(_ context.Context, task *domain.Task) error {
	f.seq++
	task.ID = fmt.Sprintf("task-%d", f.seq)
	maxPos := 0
	for _, existing := range f.byID {
		if existing.ProjectID == task.ProjectID && existing.FloorPosition > maxPos {
			maxPos = existing.FloorPosition
		}
	}
	task.FloorPosition = maxPos + 1
	task.Version = 1
	task.CreatedAt = time.Now()
	task.UpdatedAt = task.CreatedAt
	clone := *task
	f.byID[task.ID] = &clone
	return nil
}

func (f *fakeTaskRepo) Update(_ context.Context, task *domain.Task) error {
	stored, ok := f.byID[task.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	if stored.Version != task.Version {
		return repository.ErrVersionConflict
	}
	task.Version++
	task.UpdatedAt = time.Now()
	*stored = *task
	return nil
}

func (f *fakeTaskRepo) GetByID(_ context.Context, id string) (*domain.Task, error) {
	task, ok := f.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *task
	return &clone, nil
}

func (f *fakeTaskRepo) ListByProject(_ context.Context, projectID string) ([]domain.Task, error) {
	result := []domain.Task{}
	for _, task := range f.byID {
		if task.ProjectID == projectID {
			result = append(result, *task)
		}
	}
	return result, nil
}

type fakeCommentRepo struct {
	byID map[string]*domain.Comment
	seq  int
}

func newFakeCommentRepo() *fakeCommentRepo {
	return &fakeCommentRepo{byID: map[string]*domain.Comment{}}
}

func (f *fakeCommentRepo) Create(_ context.Context, comment *domain.Comment) error {
	f.seq++
	comment.ID = fmt.Sprintf("comment-%d", f.seq)
	comment.CreatedAt = time.Now()
	comment.UpdatedAt = comment.CreatedAt
	clone := *comment
	f.byID[comment.ID] = &clone
	return nil
}

func (f *fakeCommentRepo) Update(_ context.Context, comment *domain.Comment) error {
	stored, ok := f.byID[comment.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	*stored = *comment
	return nil
}

func (f *fakeCommentRepo) Delete(_ context.Context, id string) error {
	if _, ok := f.byID[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeCommentRepo) GetByID(_ context.Context, id string) (*domain.Comment, error) {
	comment, ok := f.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *comment
	return &clone, nil
}

func (f *fakeCommentRepo) ListByTask(_ context.Context, taskID string) ([]domain.Comment, error) {
	result := []domain.Comment{}
	for _, comment := range f.byID {
		if comment.TaskID == taskID {
			result = append(result, *comment)
		}
	}
	return result, nil
}

type fakeTicketRepo struct {
	byID map[string]*domain.SupportTicket
	seq  int
}

func newFakeTicketRepo() *fakeTicketRepo {
	return &fakeTicketRepo{byID: map[string]*domain.SupportTicket{}}
}

func (f *fakeTicketRepo) Create(_ context.Context, ticket *domain.SupportTicket) error {
	f.seq++
	ticket.ID = fmt.Sprintf("ticket-%d", f.seq)
	ticket.CreatedAt = time.Now()
	ticket.UpdatedAt = ticket.CreatedAt
	clone := *ticket
	f.byID[ticket.ID] = &clone
	return nil
}

func (f *fakeTicketRepo) Update(_ context.Context, ticket *domain.SupportTicket) error {
	stored, ok := f.byID[ticket.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	ticket.UpdatedAt = time.Now()
	*stored = *ticket
	return nil
}

func (f *fakeTicketRepo) Claim(_ context.Context, id, assigneeID string) (*domain.SupportTicket, error) {
	ticket, ok := f.byID[id]
	if !ok || ticket.AssigneeID != nil {
		return nil, pgx.ErrNoRows
	}
	ticket.AssigneeID = &assigneeID
	if ticket.Status == domain.TicketStatusOpen {
		ticket.Status = domain.TicketStatusInProgress
	}
	ticket.UpdatedAt = time.Now()
	clone := *ticket
	return &clone, nil
}

func (f *fakeTicketRepo) Touch(_ context.Context, id string) error {
	ticket, ok := f.byID[id]
	if !ok {
		return pgx.ErrNoRows
	}
	ticket.UpdatedAt = time.Now()
	return nil
}

func (f *fakeTicketRepo) GetByID(_ context.Context, id string) (*domain.SupportTicket, error) {
	ticket, ok := f.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *ticket
	return &clone, nil
}

func (f *fakeTicketRepo) ListWithFilter(_ context.Context, filter repository.TicketFilter) ([]domain.SupportTicket, error) {
	result := []domain.SupportTicket{}
	for _, ticket := range f.byID {
		if filter.SubmitterID != nil && ticket.SubmitterID != *filter.SubmitterID {
			continue
		}
		if len(filter.Statuses) > 0 && !containsStatus(filter.Statuses, ticket.Status) {
			continue
		}
		result = append(result, *ticket)
	}
	// Deterministic order so Limit/Offset paging behaves like the SQL query.
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	if filter.Offset > 0 {
		if filter.Offset >= len(result) {
			return []domain.SupportTicket{}, nil
		}
		result = result[filter.Offset:]
	}
	if filter.Limit > 0 && len(result) > filter.Limit {
		result = result[:filter.Limit]
	}
	return result, nil
}

func containsStatus(statuses []domain.TicketStatus, status domain.TicketStatus) bool {
	for _, s := range statuses {
		if s == status {
			return true
		}
	}
	return false
}

type fakeMessageRepo struct {
	byTicket map[string][]domain.TicketMessage
	seq      int
}

func newFakeMessageRepo() *fakeMessageRepo {
	return &fakeMessageRepo{byTicket: map[string][]domain.TicketMessage{}}
}

func (f *fakeMessageRepo) Create(_ context.Context, msg *domain.TicketMessage) error {
	f.seq++
	msg.ID = fmt.Sprintf("message-%d", f.seq)
	msg.CreatedAt = time.Now()
	f.byTicket[msg.TicketID] = append(f.byTicket[msg.TicketID], *msg)
	return nil
}

func (f *fakeMessageRepo) ListByTicket(_ context.Context, ticketID string) ([]domain.TicketMessage, error) {
	return append([]domain.TicketMessage{}, f.byTicket[ticketID]...), nil
}

type fakeDepartmentRepo struct {
	byID map[string]*domain.Department
}

func newFakeDepartmentRepo(departments ...domain.Department) *fakeDepartmentRepo {
	repo := &fakeDepartmentRepo{byID: map[string]*domain.Department{}}
	for i := range departments {
		dept := departments[i]
		repo.byID[dept.ID] = &dept
	}
	return repo
}

func (f *fakeDepartmentRepo) GetByID(_ context.Context, id string) (*domain.Department, error) {
	dept, ok := f.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *dept
	return &clone, nil
}

func (f *fakeDepartmentRepo) List(_ context.Context) ([]domain.Department, error) {
	result := make([]domain.Department, 0, len(f.byID))
	for _, dept := range f.byID {
		result = append(result, *dept)
	}
	return result, nil
}
