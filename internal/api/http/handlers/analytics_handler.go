package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/project-service/internal/auth"
	"github.com/spec-kit/project-service/internal/domain"
	"github.com/spec-kit/project-service/internal/persistence"
	"github.com/spec-kit/project-service/internal/service"
	apperrors "github.com/spec-kit/project-service/pkg/util"
)

// AnalyticsHandler serves derived support-ticket reports for privileged staff.
type AnalyticsHandler struct {
	tickets     *service.TicketService
	analytics   *service.AnalyticsService
	maxAttempts int
	backoff     time.Duration
}

// NewAnalyticsHandler constructs handler.
func NewAnalyticsHandler(ticketService *service.TicketService, analyticsService *service.AnalyticsService, maxAttempts int, backoff time.Duration) *AnalyticsHandler {
	return &AnalyticsHandler{
		tickets:     ticketService,
		analytics:   analyticsService,
		maxAttempts: maxAttempts,
		backoff:     backoff,
	}
}

// Reports look back at most 90 days plus the six calendar months the monthly
// trend needs; the window bounds the scan, paging keeps it complete.
const (
	analyticsWindowDays = 200
	analyticsPageSize   = 500
)

// TicketReports GET /analytics/tickets.
func (h *AnalyticsHandler) TicketReports(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	if !principal.Privileged() {
		return apperrors.NewForbidden("insufficient role")
	}

	now := time.Now().UTC()
	from := now.AddDate(0, 0, -analyticsWindowDays)
	filter := service.TicketListFilter{CreatedFrom: &from}

	var tickets []domain.SupportTicket
	err := persistence.Retry(c.UserContext(), h.maxAttempts, h.backoff, func(ctx context.Context) error {
		var listErr error
		tickets, listErr = h.tickets.CollectTickets(ctx, principal.UserID, true, filter, analyticsPageSize)
		return listErr
	})
	if err != nil {
		return err
	}

	var messagesByTicket map[string][]domain.TicketMessage
	err = persistence.Retry(c.UserContext(), h.maxAttempts, h.backoff, func(ctx context.Context) error {
		var msgErr error
		messagesByTicket, msgErr = h.tickets.MessagesForTickets(ctx, tickets)
		return msgErr
	})
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"data": fiber.Map{
		"trends":      h.analytics.ComputeTrends(tickets, now),
		"departments": h.analytics.ComputeDepartmentStats(tickets),
		"sla":         h.analytics.ComputeSLA(tickets, messagesByTicket),
	}})
}
