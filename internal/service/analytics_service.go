package service

import (
	"sort"
	"time"

	"github.com/spec-kit/project-service/internal/domain"
)

// AnalyticsService computes derived ticket metrics. It holds no state and
// persists nothing; every report is recomputed from the ticket collection
// passed in.
type AnalyticsService struct{}

// NewAnalyticsService constructs the service.
func NewAnalyticsService() *AnalyticsService {
	return &AnalyticsService{}
}

// TrendBucket is one fixed-width window of created/resolved counts.
type TrendBucket struct {
	Start    time.Time `json:"start"`
	Created  int       `json:"created"`
	Resolved int       `json:"resolved"`
}

// TrendReport holds the trailing trend windows.
type TrendReport struct {
	Daily   []TrendBucket `json:"daily"`
	Weekly  []TrendBucket `json:"weekly"`
	Monthly []TrendBucket `json:"monthly"`
}

// DepartmentStats aggregates one department's tickets.
type DepartmentStats struct {
	DepartmentID       string  `json:"department_id"`
	Total              int     `json:"total"`
	Open               int     `json:"open"`
	Resolved           int     `json:"resolved"`
	AvgResolutionHours float64 `json:"avg_resolution_hours"`
	Urgent             int     `json:"urgent"`
	High               int     `json:"high"`
}

// SLAReport carries measured response metrics. Both values are computed
// from timestamps, never estimated.
type SLAReport struct {
	SampleSize            int     `json:"sample_size"`
	ComplianceRate        float64 `json:"compliance_rate"`
	AvgFirstResponseHours float64 `json:"avg_first_response_hours"`
	FirstResponseSamples  int     `json:"first_response_samples"`
}

// unassignedDepartment groups tickets without a department in stats.
const unassignedDepartment = "unassigned"

// slaTargetHours is the per-priority resolution target.
var slaTargetHours = map[domain.Priority]float64{
	domain.PriorityUrgent: 4,
	domain.PriorityHigh:   8,
	domain.PriorityMedium: 24,
	domain.PriorityLow:    48,
}

// ResolutionHours returns the hours from creation to the last update for
// resolved/closed tickets, 0 otherwise.
func (s *AnalyticsService) ResolutionHours(ticket *domain.SupportTicket) float64 {
	if !ticket.Resolved() {
		return 0
	}
	return ticket.UpdatedAt.Sub(ticket.CreatedAt).Hours()
}

// ComputeTrends buckets created and resolved counts into trailing daily
// (30 days), weekly (12 weeks) and monthly (6 months) windows ending at now.
func (s *AnalyticsService) ComputeTrends(tickets []domain.SupportTicket, now time.Time) TrendReport {
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	report := TrendReport{
		Daily:  fixedBuckets(dayStart.AddDate(0, 0, -29), 24*time.Hour, 30),
		Weekly: fixedBuckets(dayStart.AddDate(0, 0, -7*12+1), 7*24*time.Hour, 12),
	}

	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	report.Monthly = make([]TrendBucket, 6)
	for i := range report.Monthly {
		report.Monthly[i] = TrendBucket{Start: monthStart.AddDate(0, i-5, 0)}
	}

	for i := range tickets {
		ticket := &tickets[i]
		fillFixed(report.Daily, 24*time.Hour, ticket)
		fillFixed(report.Weekly, 7*24*time.Hour, ticket)
		fillMonthly(report.Monthly, ticket)
	}
	return report
}

// ComputeDepartmentStats aggregates per-department totals, ordered by total
// ticket count descending. A department with no resolved tickets reports a
// mean resolution of 0.
func (s *AnalyticsService) ComputeDepartmentStats(tickets []domain.SupportTicket) []DepartmentStats {
	type acc struct {
		stats           DepartmentStats
		resolutionHours float64
		resolvedSamples int
	}
	byDept := map[string]*acc{}

	for i := range tickets {
		ticket := &tickets[i]
		key := unassignedDepartment
		if ticket.DepartmentID != nil {
			key = *ticket.DepartmentID
		}
		entry, ok := byDept[key]
		if !ok {
			entry = &acc{stats: DepartmentStats{DepartmentID: key}}
			byDept[key] = entry
		}
		entry.stats.Total++
		switch ticket.Status {
		case domain.TicketStatusOpen, domain.TicketStatusInProgress:
			entry.stats.Open++
		case domain.TicketStatusResolved, domain.TicketStatusClosed:
			entry.stats.Resolved++
			entry.resolutionHours += s.ResolutionHours(ticket)
			entry.resolvedSamples++
		}
		switch ticket.Priority {
		case domain.PriorityUrgent:
			entry.stats.Urgent++
		case domain.PriorityHigh:
			entry.stats.High++
		}
	}

	result := make([]DepartmentStats, 0, len(byDept))
	for _, entry := range byDept {
		if entry.resolvedSamples > 0 {
			entry.stats.AvgResolutionHours = entry.resolutionHours / float64(entry.resolvedSamples)
		}
		result = append(result, entry.stats)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Total != result[j].Total {
			return result[i].Total > result[j].Total
		}
		return result[i].DepartmentID < result[j].DepartmentID
	})
	return result
}

// ComputeSLA measures compliance and first response from timestamps.
// Compliance is the share of resolved/closed tickets whose resolution time
// met the per-priority target. First response is the delay to the first
// operator message; tickets without one are excluded from that average.
func (s *AnalyticsService) ComputeSLA(tickets []domain.SupportTicket, messagesByTicket map[string][]domain.TicketMessage) SLAReport {
	report := SLAReport{}
	met := 0
	var firstResponseTotal float64

	for i := range tickets {
		ticket := &tickets[i]
		if ticket.Resolved() {
			report.SampleSize++
			target, ok := slaTargetHours[ticket.Priority]
			if ok && s.ResolutionHours(ticket) <= target {
				met++
			}
		}
		for _, msg := range messagesByTicket[ticket.ID] {
			if !msg.FromStaff {
				continue
			}
			firstResponseTotal += msg.CreatedAt.Sub(ticket.CreatedAt).Hours()
			report.FirstResponseSamples++
			break
		}
	}

	if report.SampleSize > 0 {
		report.ComplianceRate = float64(met) / float64(report.SampleSize)
	}
	if report.FirstResponseSamples > 0 {
		report.AvgFirstResponseHours = firstResponseTotal / float64(report.FirstResponseSamples)
	}
	return report
}

func fixedBuckets(start time.Time, width time.Duration, count int) []TrendBucket {
	buckets := make([]TrendBucket, count)
	for i := range buckets {
		buckets[i] = TrendBucket{Start: start.Add(time.Duration(i) * width)}
	}
	return buckets
}

func fillFixed(buckets []TrendBucket, width time.Duration, ticket *domain.SupportTicket) {
	if len(buckets) == 0 {
		return
	}
	if idx := bucketIndex(buckets, width, ticket.CreatedAt); idx >= 0 {
		buckets[idx].Created++
	}
	if ticket.Resolved() {
		if idx := bucketIndex(buckets, width, ticket.UpdatedAt); idx >= 0 {
			buckets[idx].Resolved++
		}
	}
}

func bucketIndex(buckets []TrendBucket, width time.Duration, ts time.Time) int {
	start := buckets[0].Start
	if ts.Before(start) {
		return -1
	}
	idx := int(ts.Sub(start) / width)
	if idx >= len(buckets) {
		return -1
	}
	return idx
}

func fillMonthly(buckets []TrendBucket, ticket *domain.SupportTicket) {
	if idx := monthIndex(buckets, ticket.CreatedAt); idx >= 0 {
		buckets[idx].Created++
	}
	if ticket.Resolved() {
		if idx := monthIndex(buckets, ticket.UpdatedAt); idx >= 0 {
			buckets[idx].Resolved++
		}
	}
}

func monthIndex(buckets []TrendBucket, ts time.Time) int {
	for i := len(buckets) - 1; i >= 0; i-- {
		if !ts.Before(buckets[i].Start) {
			return i
		}
	}
	return -1
}
