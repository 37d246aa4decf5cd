package services

import (
	"context"
	"fmt"
	"time"

	"practice-scheduler-server/internal/calendar"
	"practice-scheduler-server/internal/models"
)

// ProviderSchedules returns every weekly block of the provider.
func (q *AppointmentQuery) ProviderSchedules(ctx context.Context, providerID string) ([]models.ProviderSchedule, error) {
	var blocks []models.ProviderSchedule
	if err := q.DB.WithContext(ctx).Where("provider_id = ?", providerID).Order("weekday, start_time").Find(&blocks).Error; err != nil {
		return nil, fmt.Errorf("load schedules of provider %s: %w", providerID, err)
	}
	return blocks, nil
}

// WithinSchedule reports whether [start, end) fits inside one of blocks at
// locationID, reading wall-clock times in loc. A provider without any blocks
// is bookable at any time. Appointments may not cross midnight.
func WithinSchedule(blocks []models.ProviderSchedule, locationID string, start, end time.Time, loc *time.Location) bool {
	if len(blocks) == 0 {
		return true
	}
	if loc == nil {
		loc = time.UTC
	}
	start, end = start.In(loc), end.In(loc)
	if calendar.DateOf(start) != calendar.DateOf(end) {
		return false
	}

	from, to := calendar.TimeOf(start).Minutes(), calendar.TimeOf(end).Minutes()
	for _, b := range blocks {
		if b.LocationID != locationID || b.Weekday != start.Weekday() {
			continue
		}
		opens, errOpen := calendar.ParseTimeOfDay(b.StartTime)
		closes, errClose := calendar.ParseTimeOfDay(b.EndTime)
		if errOpen != nil || errClose != nil {
			continue
		}
		if opens.Minutes() <= from && to <= closes.Minutes() {
			return true
		}
	}
	return false
}
