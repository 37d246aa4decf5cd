package services

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"practice-scheduler-server/internal/calendar"
	"practice-scheduler-server/internal/models"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(mysql.New(mysql.Config{Conn: sqlDB, SkipInitializeWithVersion: true}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return db, mock
}

var rowColumns = []string{
	"id", "start_time", "status",
	"patient_first_name", "patient_last_name",
	"provider_first_name", "provider_last_name",
	"type_name", "location_name",
}

func weekOf(t *testing.T, s string) calendar.DateRange {
	t.Helper()
	d, err := calendar.ParseDate(s)
	require.NoError(t, err)
	rng, err := calendar.ComputeRange(d, calendar.ViewWeek)
	require.NoError(t, err)
	return rng
}

func TestFindInRangeConvertsToClinicTime(t *testing.T) {
	db, mock := setupMockDB(t)
	berlin, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)
	q := NewAppointmentQuery(db, berlin)

	// 23:30 UTC on the 14th is 00:30 on the 15th in Berlin
	late := time.Date(2024, 3, 14, 23, 30, 0, 0, time.UTC)
	early := time.Date(2024, 3, 15, 8, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("FROM appointments AS a")).
		WillReturnRows(sqlmock.NewRows(rowColumns).
			AddRow("a1", late, "confirmed", "Jane", "Doe", "Greg", "House", "Checkup", "Main St").
			AddRow("a2", early, "pending", "John", "", "Greg", "House", "Follow-up", ""))

	records, err := q.FindInRange(context.Background(), weekOf(t, "2024-03-15"), Filter{ProviderID: "prov-1"})
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "2024-03-15", records[0].Date.String())
	assert.Equal(t, "00:30", records[0].TimeSlot.String())
	assert.Equal(t, "Jane Doe", records[0].PatientName)
	assert.Equal(t, "Greg House", records[0].ProviderName)
	assert.Equal(t, "Checkup", records[0].AppointmentTypeName)
	assert.Equal(t, "Main St", records[0].LocationName)

	assert.Equal(t, "09:00", records[1].TimeSlot.String())
	assert.Equal(t, "John", records[1].PatientName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindInRangeWrapsErrors(t *testing.T) {
	db, mock := setupMockDB(t)
	q := NewAppointmentQuery(db, nil)

	mock.ExpectQuery(regexp.QuoteMeta("FROM appointments AS a")).WillReturnError(errors.New("connection reset"))

	_, err := q.FindInRange(context.Background(), weekOf(t, "2024-03-15"), Filter{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2024-03-11..2024-03-17")
	assert.Contains(t, err.Error(), "connection reset")
}

func TestBoundsCoverWholeDays(t *testing.T) {
	q := NewAppointmentQuery(nil, time.UTC)
	from, to := q.Bounds(weekOf(t, "2024-03-15"))
	assert.Equal(t, time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC), from)
	assert.Equal(t, time.Date(2024, 3, 18, 0, 0, 0, 0, time.UTC), to)
}

func TestProviderBusy(t *testing.T) {
	db, mock := setupMockDB(t)
	q := NewAppointmentQuery(db, time.UTC)
	start := time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT count(*) FROM `appointments`") + ".*FOR UPDATE").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	busy, err := q.ProviderBusy(context.Background(), "prov-1", start, start.Add(30*time.Minute), "")
	require.NoError(t, err)
	assert.True(t, busy)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT count(*) FROM `appointments`")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	busy, err = q.ProviderBusy(context.Background(), "prov-1", start, start.Add(30*time.Minute), "apt-1")
	require.NoError(t, err)
	assert.False(t, busy)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSummarize(t *testing.T) {
	db, mock := setupMockDB(t)
	reports := NewReportService(NewAppointmentQuery(db, time.UTC))

	mock.ExpectQuery(regexp.QuoteMeta("SELECT a.status AS status, COUNT(*) AS count")).
		WillReturnRows(sqlmock.NewRows([]string{"status", "count"}).
			AddRow("cancelled", 1).
			AddRow("confirmed", 4))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT a.provider_id AS provider_id")).
		WillReturnRows(sqlmock.NewRows([]string{"provider_id", "first_name", "last_name", "count"}).
			AddRow("prov-1", "Greg", "House", 3).
			AddRow("prov-2", "Lisa", "Cuddy", 2))

	report, err := reports.Summarize(context.Background(), weekOf(t, "2024-03-15"), Filter{})
	require.NoError(t, err)

	assert.EqualValues(t, 5, report.Total)
	assert.EqualValues(t, 4, report.ByStatus["confirmed"])
	assert.EqualValues(t, 1, report.ByStatus["cancelled"])
	require.Len(t, report.ByProvider, 2)
	assert.Equal(t, "Greg House", report.ByProvider[0].ProviderName)
	assert.EqualValues(t, 3, report.ByProvider[0].Count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProviderSchedules(t *testing.T) {
	db, mock := setupMockDB(t)
	q := NewAppointmentQuery(db, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `provider_schedules` WHERE provider_id = ?")).
		WithArgs("prov-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "provider_id", "location_id", "weekday", "start_time", "end_time"}).
			AddRow("s1", "prov-1", "loc-1", 1, "09:00", "12:00"))

	blocks, err := q.ProviderSchedules(context.Background(), "prov-1")
	require.NoError(t, err)
	require.Len(t, blocks, 1)
	assert.Equal(t, time.Monday, blocks[0].Weekday)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithinSchedule(t *testing.T) {
	berlin, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)

	blocks := []models.ProviderSchedule{
		{ProviderID: "prov-1", LocationID: "loc-1", Weekday: time.Monday, StartTime: "09:00", EndTime: "12:00"},
		{ProviderID: "prov-1", LocationID: "loc-1", Weekday: time.Monday, StartTime: "13:00", EndTime: "17:00"},
		{ProviderID: "prov-1", LocationID: "loc-2", Weekday: time.Tuesday, StartTime: "08:00", EndTime: "10:00"},
	}
	// 2024-03-18 is a Monday
	at := func(hour, minute int) time.Time { return time.Date(2024, 3, 18, hour, minute, 0, 0, time.UTC) }

	tests := []struct {
		name     string
		blocks   []models.ProviderSchedule
		location string
		start    time.Time
		length   time.Duration
		loc      *time.Location
		want     bool
	}{
		{"inside morning block", blocks, "loc-1", at(9, 0), 30 * time.Minute, time.UTC, true},
		{"ends on block close", blocks, "loc-1", at(11, 30), 30 * time.Minute, time.UTC, true},
		{"spans the lunch gap", blocks, "loc-1", at(11, 45), 30 * time.Minute, time.UTC, false},
		{"wrong location", blocks, "loc-2", at(9, 0), 30 * time.Minute, time.UTC, false},
		{"no block that weekday", blocks, "loc-1", at(9, 0).AddDate(0, 0, 2), 30 * time.Minute, time.UTC, false},
		{"clinic timezone shifts wall clock", blocks, "loc-1", at(8, 0), 30 * time.Minute, berlin, true},
		{"crosses midnight", blocks, "loc-1", at(23, 45), 30 * time.Minute, time.UTC, false},
		{"no schedule means always bookable", nil, "loc-1", at(22, 0), time.Hour, time.UTC, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := WithinSchedule(tt.blocks, tt.location, tt.start, tt.start.Add(tt.length), tt.loc)
			assert.Equal(t, tt.want, got)
		})
	}
}
