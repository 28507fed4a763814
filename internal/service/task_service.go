package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/project-service/internal/authz"
	"github.com/spec-kit/project-service/internal/domain"
	"github.com/spec-kit/project-service/internal/events"
	"github.com/spec-kit/project-service/internal/repository"
	apperrors "github.com/spec-kit/project-service/pkg/util"
)

// TaskService coordinates the task workflow state machine.
type TaskService struct {
	tasks      repository.TaskRepository
	comments   repository.CommentRepository
	members    repository.MemberRepository
	dispatcher events.Dispatcher
}

// TaskDependencies bundles repositories for the task service.
type TaskDependencies struct {
	TaskRepo    repository.TaskRepository
	CommentRepo repository.CommentRepository
	MemberRepo  repository.MemberRepository
	Dispatcher  events.Dispatcher
}

// TaskCreateInput describes task creation payload.
type TaskCreateInput struct {
	Title           string
	Description     string
	AssigneeID      *string
	DueDate         *time.Time
	DeliverableLink *string
	Priority        domain.Priority
}

// NewTaskService constructs the service.
func NewTaskService(deps TaskDependencies) *TaskService {
	return &TaskService{
		tasks:      deps.TaskRepo,
		comments:   deps.CommentRepo,
		members:    deps.MemberRepo,
		dispatcher: deps.Dispatcher,
	}
}

// statusEdits lists the member-driven status moves handled by UpdateStatus.
// Approval and revision requests go through their dedicated reviewer-gated
// operations and are absent here.
var statusEdits = map[domain.TaskStatus][]domain.TaskStatus{
	domain.TaskStatusPending:            {domain.TaskStatusInProgress},
	domain.TaskStatusInProgress:         {domain.TaskStatusReadyForReview},
	domain.TaskStatusRevisionsRequested: {domain.TaskStatusInProgress},
	domain.TaskStatusReadyForReview:     {domain.TaskStatusComplete},
	domain.TaskStatusApproved:           {},
	domain.TaskStatusComplete:           {},
}

func statusEditAllowed(current, next domain.TaskStatus) bool {
	for _, candidate := range statusEdits[current] {
		if candidate == next {
			return true
		}
	}
	return false
}

// CreateTask creates a task in pending with the next floor position for the
// project.
func (s *TaskService) CreateTask(ctx context.Context, projectID, actorID string, input TaskCreateInput) (*domain.Task, error) {
	role, err := s.roleFor(ctx, projectID, actorID)
	if err != nil {
		return nil, err
	}
	if !authz.CanCreateTask(role) {
		return nil, apperrors.NewForbidden("role cannot create tasks")
	}

	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, apperrors.NewValidationError("task title required", nil)
	}

	task := &domain.Task{
		ProjectID:       projectID,
		Title:           title,
		Description:     strings.TrimSpace(input.Description),
		Status:          domain.TaskStatusPending,
		AssigneeID:      input.AssigneeID,
		DueDate:         input.DueDate,
		DeliverableLink: input.DeliverableLink,
		Priority:        input.Priority,
	}
	if task.Priority == "" {
		task.Priority = domain.PriorityMedium
	}
	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publish(ctx, events.Event{
		Type:      events.EventTaskCreated,
		SubjectID: task.ID,
		ActorID:   actorID,
	})
	return task, nil
}

// ListTasks returns the project's tasks in floor order (newest on top). The
// deliverable link is stripped for roles without access to it.
func (s *TaskService) ListTasks(ctx context.Context, projectID, actorID string) ([]domain.Task, error) {
	role, err := s.roleFor(ctx, projectID, actorID)
	if err != nil {
		return nil, err
	}
	if role == domain.ProjectRoleNone {
		return nil, apperrors.NewForbidden("not a project member")
	}
	tasks, err := s.tasks.ListByProject(ctx, projectID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if !authz.CanSeeDeliverableLink(role) {
		for i := range tasks {
			tasks[i].DeliverableLink = nil
		}
	}
	return tasks, nil
}

// GetTask fetches one task for a project member.
func (s *TaskService) GetTask(ctx context.Context, taskID, actorID string) (*domain.Task, error) {
	task, role, err := s.taskWithRole(ctx, taskID, actorID)
	if err != nil {
		return nil, err
	}
	if role == domain.ProjectRoleNone {
		return nil, apperrors.NewForbidden("not a project member")
	}
	if !authz.CanSeeDeliverableLink(role) {
		task.DeliverableLink = nil
	}
	return task, nil
}

// Approve moves a task from ready-for-review to approved and clears any
// stored review comments.
func (s *TaskService) Approve(ctx context.Context, taskID, actorID string) (*domain.Task, error) {
	task, role, err := s.taskWithRole(ctx, taskID, actorID)
	if err != nil {
		return nil, err
	}
	if !authz.CanReviewTask(role) {
		return nil, apperrors.NewForbidden("role cannot review tasks")
	}
	if task.Status != domain.TaskStatusReadyForReview {
		return nil, apperrors.NewInvalidTransition(string(task.Status), string(domain.TaskStatusApproved))
	}

	oldStatus := task.Status
	task.Status = domain.TaskStatusApproved
	task.ReviewComments = nil
	if err := s.updateTask(ctx, task); err != nil {
		return nil, err
	}

	s.publish(ctx, events.Event{
		Type:      events.EventTaskApproved,
		SubjectID: task.ID,
		ActorID:   actorID,
		Payload: events.TaskStatusChangedPayload{
			ProjectID: task.ProjectID,
			OldStatus: oldStatus,
			NewStatus: task.Status,
		},
	})
	return task, nil
}

// RequestRevisions moves a task from ready-for-review to
// revisions-requested, storing the reviewer's comments.
func (s *TaskService) RequestRevisions(ctx context.Context, taskID, actorID, comments string) (*domain.Task, error) {
	task, role, err := s.taskWithRole(ctx, taskID, actorID)
	if err != nil {
		return nil, err
	}
	if !authz.CanReviewTask(role) {
		return nil, apperrors.NewForbidden("role cannot review tasks")
	}
	comments = strings.TrimSpace(comments)
	if comments == "" {
		return nil, apperrors.NewValidationError("revision comments required", nil)
	}
	if task.Status != domain.TaskStatusReadyForReview {
		return nil, apperrors.NewInvalidTransition(string(task.Status), string(domain.TaskStatusRevisionsRequested))
	}

	oldStatus := task.Status
	task.Status = domain.TaskStatusRevisionsRequested
	task.ReviewComments = &comments
	if err := s.updateTask(ctx, task); err != nil {
		return nil, err
	}

	s.publish(ctx, events.Event{
		Type:      events.EventTaskRevisionsRequested,
		SubjectID: task.ID,
		ActorID:   actorID,
		Payload: events.TaskStatusChangedPayload{
			ProjectID: task.ProjectID,
			OldStatus: oldStatus,
			NewStatus: task.Status,
			Comments:  comments,
		},
	})
	return task, nil
}

// UpdateStatus performs the member-driven status edits: starting work,
// submitting for review, returning to work after revisions, and the
// reviewer's direct completion.
func (s *TaskService) UpdateStatus(ctx context.Context, taskID, actorID string, next domain.TaskStatus) (*domain.Task, error) {
	task, role, err := s.taskWithRole(ctx, taskID, actorID)
	if err != nil {
		return nil, err
	}
	isAssignee := task.AssigneeID != nil && *task.AssigneeID == actorID
	if !isAssignee && !authz.CanCreateTask(role) && !authz.CanReviewTask(role) {
		return nil, apperrors.NewForbidden("role cannot edit task status")
	}
	if !statusEditAllowed(task.Status, next) {
		return nil, apperrors.NewInvalidTransition(string(task.Status), string(next))
	}
	if next == domain.TaskStatusComplete && !authz.CanReviewTask(role) {
		return nil, apperrors.NewForbidden("completing a task requires review rights")
	}

	oldStatus := task.Status
	task.Status = next
	if err := s.updateTask(ctx, task); err != nil {
		return nil, err
	}

	s.publish(ctx, events.Event{
		Type:      events.EventTaskStatusChanged,
		SubjectID: task.ID,
		ActorID:   actorID,
		Payload: events.TaskStatusChangedPayload{
			ProjectID: task.ProjectID,
			OldStatus: oldStatus,
			NewStatus: task.Status,
		},
	})
	return task, nil
}

// AddComment appends a comment; any project member may post.
func (s *TaskService) AddComment(ctx context.Context, taskID, actorID, content string) (*domain.Comment, error) {
	task, role, err := s.taskWithRole(ctx, taskID, actorID)
	if err != nil {
		return nil, err
	}
	if role == domain.ProjectRoleNone {
		return nil, apperrors.NewForbidden("not a project member")
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperrors.NewValidationError("comment content required", nil)
	}

	comment := &domain.Comment{
		TaskID:   task.ID,
		AuthorID: actorID,
		Content:  content,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, apperrors.MapError(err)
	}
	return comment, nil
}

// ListComments returns the task thread for a project member.
func (s *TaskService) ListComments(ctx context.Context, taskID, actorID string) ([]domain.Comment, error) {
	_, role, err := s.taskWithRole(ctx, taskID, actorID)
	if err != nil {
		return nil, err
	}
	if role == domain.ProjectRoleNone {
		return nil, apperrors.NewForbidden("not a project member")
	}
	comments, err := s.comments.ListByTask(ctx, taskID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return comments, nil
}

// UpdateComment edits a comment; author only.
func (s *TaskService) UpdateComment(ctx context.Context, commentID, actorID, content string) (*domain.Comment, error) {
	comment, err := s.comments.GetByID(ctx, commentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("comment", map[string]any{"comment_id": commentID})
		}
		return nil, apperrors.MapError(err)
	}
	if comment.AuthorID != actorID {
		return nil, apperrors.NewForbidden("only the author can edit a comment")
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperrors.NewValidationError("comment content required", nil)
	}
	comment.Content = content
	if err := s.comments.Update(ctx, comment); err != nil {
		return nil, apperrors.MapError(err)
	}
	return comment, nil
}

// DeleteComment removes a comment; author only.
func (s *TaskService) DeleteComment(ctx context.Context, commentID, actorID string) error {
	comment, err := s.comments.GetByID(ctx, commentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("comment", map[string]any{"comment_id": commentID})
		}
		return apperrors.MapError(err)
	}
	if comment.AuthorID != actorID {
		return apperrors.NewForbidden("only the author can delete a comment")
	}
	if err := s.comments.Delete(ctx, commentID); err != nil {
		return apperrors.MapError(err)
	}
	return nil
}

func (s *TaskService) roleFor(ctx context.Context, projectID, actorID string) (domain.ProjectRole, error) {
	member, err := s.members.GetByProjectAndUser(ctx, projectID, actorID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ProjectRoleNone, nil
		}
		return domain.ProjectRoleNone, apperrors.MapError(err)
	}
	return member.Role, nil
}

func (s *TaskService) taskWithRole(ctx context.Context, taskID, actorID string) (*domain.Task, domain.ProjectRole, error) {
	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ProjectRoleNone, apperrors.NewNotFound("task", map[string]any{"task_id": taskID})
		}
		return nil, domain.ProjectRoleNone, apperrors.MapError(err)
	}
	role, err := s.roleFor(ctx, task.ProjectID, actorID)
	if err != nil {
		return nil, domain.ProjectRoleNone, err
	}
	return task, role, nil
}

func (s *TaskService) updateTask(ctx context.Context, task *domain.Task) error {
	if err := s.tasks.Update(ctx, task); err != nil {
		if errors.Is(err, repository.ErrVersionConflict) {
			return apperrors.NewConflict("task was modified concurrently",
				map[string]any{"task_id": task.ID})
		}
		return apperrors.MapError(err)
	}
	return nil
}

func (s *TaskService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}
