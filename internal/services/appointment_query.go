package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"practice-scheduler-server/internal/calendar"
	"practice-scheduler-server/internal/models"
)

// Filter narrows a range query. Empty fields match everything.
type Filter struct {
	ProviderID       string
	LocationID       string
	PatientID        string
	IncludeCancelled bool
}

// AppointmentQuery loads appointments as calendar records.
type AppointmentQuery struct {
	DB       *gorm.DB
	Location *time.Location
}

// NewAppointmentQuery creates an AppointmentQuery that reads dates and slots
// in loc.
func NewAppointmentQuery(db *gorm.DB, loc *time.Location) *AppointmentQuery {
	if loc == nil {
		loc = time.UTC
	}
	return &AppointmentQuery{DB: db, Location: loc}
}

type appointmentRow struct {
	ID                string
	StartTime         time.Time
	Status            string
	PatientFirstName  string
	PatientLastName   string
	ProviderFirstName string
	ProviderLastName  string
	TypeName          string
	LocationName      string
}

// WithDB returns a copy of q that runs on db, typically a transaction.
func (q *AppointmentQuery) WithDB(db *gorm.DB) *AppointmentQuery {
	return &AppointmentQuery{DB: db, Location: q.Location}
}

// Bounds converts an inclusive date range into the half-open instant range
// [start 00:00, end+1 00:00) in the query's timezone.
func (q *AppointmentQuery) Bounds(rng calendar.DateRange) (time.Time, time.Time) {
	return rng.Start.In(q.Location), rng.End.AddDays(1).In(q.Location)
}

// FindInRange returns the appointments starting within rng, ordered by start
// time and then by booking time.
func (q *AppointmentQuery) FindInRange(ctx context.Context, rng calendar.DateRange, f Filter) ([]calendar.AppointmentRecord, error) {
	from, to := q.Bounds(rng)

	query := q.DB.WithContext(ctx).
		Table("appointments AS a").
		Select(`a.id, a.start_time, a.status,
			p.first_name AS patient_first_name, p.last_name AS patient_last_name,
			pr.first_name AS provider_first_name, pr.last_name AS provider_last_name,
			t.name AS type_name, l.name AS location_name`).
		Joins("LEFT JOIN users p ON p.id = a.patient_id").
		Joins("LEFT JOIN users pr ON pr.id = a.provider_id").
		Joins("LEFT JOIN appointment_types t ON t.id = a.appointment_type_id").
		Joins("LEFT JOIN locations l ON l.id = a.location_id").
		Where("a.start_time >= ? AND a.start_time < ?", from.UTC(), to.UTC())
	query = applyFilter(query, f)

	var rows []appointmentRow
	if err := query.Order("a.start_time ASC, a.created_at ASC").Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("query appointments %s..%s: %w", rng.Start, rng.End, err)
	}

	records := make([]calendar.AppointmentRecord, 0, len(rows))
	for _, r := range rows {
		local := r.StartTime.In(q.Location)
		records = append(records, calendar.AppointmentRecord{
			ID:                  r.ID,
			Date:                calendar.DateOf(local),
			TimeSlot:            calendar.TimeOf(local),
			PatientName:         joinName(r.PatientFirstName, r.PatientLastName),
			ProviderName:        joinName(r.ProviderFirstName, r.ProviderLastName),
			AppointmentTypeName: r.TypeName,
			LocationName:        r.LocationName,
			Status:              r.Status,
		})
	}
	return records, nil
}

// ProviderBusy reports whether the provider already holds an open
// appointment overlapping [start, end). excludeID skips the appointment being
// rescheduled. The matching rows are locked FOR UPDATE, so callers holding a
// transaction keep the slot until they commit.
func (q *AppointmentQuery) ProviderBusy(ctx context.Context, providerID string, start, end time.Time, excludeID string) (bool, error) {
	query := q.DB.WithContext(ctx).
		Model(&models.Appointment{}).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("provider_id = ?", providerID).
		Where("status IN ?", []models.AppointmentStatus{models.StatusPending, models.StatusConfirmed}).
		Where("start_time < ? AND end_time > ?", end.UTC(), start.UTC())
	if excludeID != "" {
		query = query.Where("id <> ?", excludeID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, fmt.Errorf("check provider availability: %w", err)
	}
	return count > 0, nil
}

func applyFilter(query *gorm.DB, f Filter) *gorm.DB {
	if f.ProviderID != "" {
		query = query.Where("a.provider_id = ?", f.ProviderID)
	}
	if f.LocationID != "" {
		query = query.Where("a.location_id = ?", f.LocationID)
	}
	if f.PatientID != "" {
		query = query.Where("a.patient_id = ?", f.PatientID)
	}
	if !f.IncludeCancelled {
		query = query.Where("a.status <> ?", models.StatusCancelled)
	}
	return query
}

func joinName(first, last string) string {
	return strings.TrimSpace(first + " " + last)
}
