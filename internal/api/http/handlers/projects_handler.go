package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/project-service/internal/api/dto"
	"github.com/spec-kit/project-service/internal/auth"
	"github.com/spec-kit/project-service/internal/domain"
	"github.com/spec-kit/project-service/internal/service"
	apperrors "github.com/spec-kit/project-service/pkg/util"
)

// ProjectsHandler manages project and membership endpoints.
type ProjectsHandler struct {
	service *service.ProjectService
}

// NewProjectsHandler constructs handler.
func NewProjectsHandler(projectService *service.ProjectService) *ProjectsHandler {
	return &ProjectsHandler{service: projectService}
}

// CreateProject POST /projects.
func (h *ProjectsHandler) CreateProject(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.CreateProjectRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	project, err := h.service.CreateProject(c.UserContext(), principal.UserID, service.ProjectCreateInput{
		Name:        req.Name,
		Description: req.Description,
		Priority:    req.Priority,
		DueDate:     req.DueDate,
		Budget:      req.Budget,
		Tags:        req.Tags,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": projectResponse(project)})
}

// ListProjects GET /projects.
func (h *ProjectsHandler) ListProjects(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	projects, err := h.service.ListProjectsForUser(c.UserContext(), principal.UserID)
	if err != nil {
		return err
	}
	items := make([]dto.ProjectResponse, 0, len(projects))
	for i := range projects {
		items = append(items, projectResponse(&projects[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetProject GET /projects/:id.
func (h *ProjectsHandler) GetProject(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	project, err := h.service.GetProject(c.UserContext(), c.Params("id"), principal.UserID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": projectResponse(project)})
}

// UpdateProject PATCH /projects/:id.
func (h *ProjectsHandler) UpdateProject(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.UpdateProjectRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	project, err := h.service.UpdateProject(c.UserContext(), c.Params("id"), principal.UserID, service.ProjectPatch{
		Name:        req.Name,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		Progress:    req.Progress,
		DueDate:     req.DueDate,
		Budget:      req.Budget,
		Tags:        req.Tags,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": projectResponse(project)})
}

// InviteMember POST /projects/:id/members.
func (h *ProjectsHandler) InviteMember(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.InviteMemberRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Email == "" {
		return apperrors.NewValidationError("email required", nil)
	}
	member, err := h.service.Invite(c.UserContext(), c.Params("id"), principal.UserID, req.Email, req.Role)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": memberResponse(member)})
}

// ListMembers GET /projects/:id/members.
func (h *ProjectsHandler) ListMembers(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	members, err := h.service.ListMembers(c.UserContext(), c.Params("id"), principal.UserID)
	if err != nil {
		return err
	}
	items := make([]dto.MemberResponse, 0, len(members))
	for i := range members {
		items = append(items, memberResponse(&members[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// TransferOwnership POST /projects/:id/transfer-ownership.
func (h *ProjectsHandler) TransferOwnership(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.TransferOwnershipRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.NewOwnerID == "" {
		return apperrors.NewValidationError("new_owner_id required", nil)
	}
	if err := h.service.TransferOwnership(c.UserContext(), c.Params("id"), principal.UserID, req.NewOwnerID); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"transferred": true}})
}

func projectResponse(project *domain.Project) dto.ProjectResponse {
	return dto.ProjectResponse{
		ID:          project.ID,
		Name:        project.Name,
		Description: project.Description,
		Status:      project.Status,
		Priority:    project.Priority,
		Progress:    project.Progress,
		DueDate:     project.DueDate,
		Budget:      project.Budget,
		Tags:        project.Tags,
		OwnerID:     project.OwnerID,
		CreatedAt:   project.CreatedAt,
		UpdatedAt:   project.UpdatedAt,
	}
}

func memberResponse(member *domain.ProjectMember) dto.MemberResponse {
	return dto.MemberResponse{
		ID:        member.ID,
		ProjectID: member.ProjectID,
		UserID:    member.UserID,
		Role:      member.Role,
		InvitedBy: member.InvitedBy,
		InvitedAt: member.InvitedAt,
		JoinedAt:  member.JoinedAt,
	}
}
