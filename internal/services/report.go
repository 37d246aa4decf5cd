package services

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"practice-scheduler-server/internal/calendar"
)

// ProviderCount is one provider's share of a report.
type ProviderCount struct {
	ProviderID   string `json:"providerId"`
	ProviderName string `json:"providerName"`
	Count        int64  `json:"count"`
}

// Report summarizes the appointments of a date range.
type Report struct {
	Range      calendar.DateRange `json:"range"`
	Total      int64              `json:"total"`
	ByStatus   map[string]int64   `json:"byStatus"`
	ByProvider []ProviderCount    `json:"byProvider"`
}

// ReportService aggregates appointments for the reports screen.
type ReportService struct {
	query *AppointmentQuery
}

func NewReportService(query *AppointmentQuery) *ReportService {
	return &ReportService{query: query}
}

type statusCount struct {
	Status string
	Count  int64
}

type providerRow struct {
	ProviderID string
	FirstName  string
	LastName   string
	Count      int64
}

// Summarize counts the appointments in rng by status and by provider.
// Cancelled appointments are always counted.
func (s *ReportService) Summarize(ctx context.Context, rng calendar.DateRange, f Filter) (*Report, error) {
	from, to := s.query.Bounds(rng)
	f.IncludeCancelled = true

	base := func() *gorm.DB {
		q := s.query.DB.WithContext(ctx).
			Table("appointments AS a").
			Where("a.start_time >= ? AND a.start_time < ?", from.UTC(), to.UTC())
		return applyFilter(q, f)
	}

	var statuses []statusCount
	if err := base().
		Select("a.status AS status, COUNT(*) AS count").
		Group("a.status").
		Order("a.status").
		Scan(&statuses).Error; err != nil {
		return nil, fmt.Errorf("count appointments by status: %w", err)
	}

	var providers []providerRow
	if err := base().
		Select("a.provider_id AS provider_id, pr.first_name AS first_name, pr.last_name AS last_name, COUNT(*) AS count").
		Joins("LEFT JOIN users pr ON pr.id = a.provider_id").
		Group("a.provider_id, pr.first_name, pr.last_name").
		Order("count DESC, a.provider_id").
		Scan(&providers).Error; err != nil {
		return nil, fmt.Errorf("count appointments by provider: %w", err)
	}

	report := &Report{
		Range:      rng,
		ByStatus:   make(map[string]int64, len(statuses)),
		ByProvider: make([]ProviderCount, 0, len(providers)),
	}
	for _, sc := range statuses {
		report.ByStatus[sc.Status] = sc.Count
		report.Total += sc.Count
	}
	for _, p := range providers {
		report.ByProvider = append(report.ByProvider, ProviderCount{
			ProviderID:   p.ProviderID,
			ProviderName: joinName(p.FirstName, p.LastName),
			Count:        p.Count,
		})
	}
	return report, nil
}
