package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"practice-scheduler-server/internal/calendar"
	"practice-scheduler-server/internal/config"
	"practice-scheduler-server/internal/middleware"
	"practice-scheduler-server/internal/models"
	"practice-scheduler-server/internal/services"
	"practice-scheduler-server/internal/utils"
)

const (
	adminID    = "0b6f3c8e-3b8a-4d8e-9f7c-000000000001"
	patientID  = "0b6f3c8e-3b8a-4d8e-9f7c-000000000002"
	providerID = "0b6f3c8e-3b8a-4d8e-9f7c-000000000003"
	locationID = "0b6f3c8e-3b8a-4d8e-9f7c-000000000004"
	typeID     = "0b6f3c8e-3b8a-4d8e-9f7c-000000000005"
	otherID    = "0b6f3c8e-3b8a-4d8e-9f7c-000000000006"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testEnv struct {
	t      *testing.T
	cfg    *config.Config
	db     *gorm.DB
	mock   sqlmock.Sqlmock
	router *gin.Engine
	today  calendar.Date
	now    time.Time
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(mysql.New(mysql.Config{Conn: sqlDB, SkipInitializeWithVersion: true}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	cfg := &config.Config{
		JWTSecret:                 "access-secret",
		JWTRefreshSecret:          "refresh-secret",
		JWTExpirationMinutes:      15,
		JWTRefreshExpirationHours: 1,
	}
	env := &testEnv{
		t:     t,
		cfg:   cfg,
		db:    db,
		mock:  mock,
		today: calendar.Date{Year: 2024, Month: time.March, Day: 15},
		now:   time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC),
	}

	query := services.NewAppointmentQuery(db, time.UTC)
	clock := calendar.FixedClock(env.today)
	slots, err := calendar.TimeSlots(calendar.TimeOfDay{Hour: 8}, calendar.TimeOfDay{Hour: 12}, time.Hour)
	require.NoError(t, err)

	appointments := NewAppointmentHandler(db, query)
	appointments.Now = func() time.Time { return env.now }
	calendarHandler := NewCalendarHandler(query, clock, slots)
	reports := NewReportHandler(services.NewReportService(query), clock)
	schedules := NewScheduleHandler(db)
	locations := NewLocationHandler(db)
	auth := NewAuthHandler(db, cfg)
	users := NewUserHandler(db)

	r := gin.New()
	public := r.Group("/api/v1/auth")
	public.POST("/register", auth.Register)
	public.POST("/login", auth.Login)
	public.POST("/refresh-token", auth.RefreshToken)

	api := r.Group("/api/v1", middleware.AuthMiddleware(cfg))
	api.POST("/auth/logout", auth.Logout)
	api.GET("/calendar", calendarHandler.GetCalendar)
	api.GET("/reports/appointments", reports.GetAppointmentReport)
	api.POST("/appointments", appointments.CreateAppointment)
	api.GET("/appointments", appointments.GetAppointments)
	api.GET("/appointments/:id", appointments.GetAppointmentByID)
	api.PATCH("/appointments/:id/status", appointments.UpdateAppointmentStatus)
	api.PATCH("/appointments/:id/reschedule", appointments.RescheduleAppointment)
	api.POST("/schedules", schedules.CreateSchedule)
	api.DELETE("/locations/:id", locations.DeleteLocation)
	api.POST("/users", users.CreateUser)
	api.GET("/users/:id", users.GetUserByID)
	api.DELETE("/users/:id", users.DeleteUser)
	env.router = r
	return env
}

func (e *testEnv) do(method, path string, role models.Role, userID string, body interface{}) *httptest.ResponseRecorder {
	e.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(e.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")

	access, _, err := utils.GenerateTokens(&models.User{BaseModel: models.BaseModel{ID: userID}, Role: role}, e.cfg)
	require.NoError(e.t, err)
	req.Header.Set("Authorization", "Bearer "+access)

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

type envelope struct {
	Status int             `json:"status"`
	Data   json.RawMessage `json:"data"`
	Error  string          `json:"error"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return env
}

var calendarColumns = []string{
	"id", "start_time", "status",
	"patient_first_name", "patient_last_name",
	"provider_first_name", "provider_last_name",
	"type_name", "location_name",
}

type calendarPayload struct {
	View       string                                             `json:"view"`
	Range      calendar.DateRange                                 `json:"range"`
	Navigation calendar.Navigation                                `json:"navigation"`
	Days       []calendar.Date                                    `json:"days"`
	Buckets    map[string]map[string][]calendar.AppointmentRecord `json:"appointments"`
	Total      int                                                `json:"total"`
	Grid       []calendar.MonthGridCell                           `json:"grid"`
	Slots      []calendar.TimeOfDay                               `json:"slots"`
}

func TestGetCalendarWeek(t *testing.T) {
	env := newTestEnv(t)
	env.mock.ExpectQuery(regexp.QuoteMeta("FROM appointments AS a")).
		WillReturnRows(sqlmock.NewRows(calendarColumns).
			AddRow("a1", time.Date(2024, 3, 12, 9, 0, 0, 0, time.UTC), "confirmed", "Jane", "Doe", "Greg", "House", "Checkup", "Main").
			AddRow("a2", time.Date(2024, 3, 12, 9, 0, 0, 0, time.UTC), "pending", "John", "Roe", "Greg", "House", "Checkup", "Main"))

	w := env.do(http.MethodGet, "/api/v1/calendar?view=week&date=2024-03-15", models.RoleReceptionist, adminID, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var payload calendarPayload
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &payload))
	assert.Equal(t, "week", payload.View)
	assert.Equal(t, "2024-03-11", payload.Range.Start.String())
	assert.Equal(t, "2024-03-17", payload.Range.End.String())
	assert.Equal(t, "2024-03-08", payload.Navigation.Previous.String())
	assert.Equal(t, "2024-03-15", payload.Navigation.Today.String())
	assert.Len(t, payload.Days, 7)
	assert.Len(t, payload.Slots, 4)
	assert.Empty(t, payload.Grid)
	assert.Equal(t, 2, payload.Total)

	nine := payload.Buckets["2024-03-12"]["09:00"]
	require.Len(t, nine, 2)
	assert.Equal(t, "a1", nine[0].ID)
	assert.Equal(t, "Jane Doe", nine[0].PatientName)
	assert.Equal(t, "a2", nine[1].ID)
	assert.NoError(t, env.mock.ExpectationsWereMet())
}

func TestGetCalendarDefaultsToCurrentMonth(t *testing.T) {
	env := newTestEnv(t)
	env.mock.ExpectQuery(regexp.QuoteMeta("FROM appointments AS a")).
		WillReturnRows(sqlmock.NewRows(calendarColumns))

	w := env.do(http.MethodGet, "/api/v1/calendar", models.RoleAdmin, adminID, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var payload calendarPayload
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &payload))
	assert.Equal(t, "month", payload.View)
	assert.Equal(t, "2024-03-01", payload.Range.Start.String())
	assert.Equal(t, "2024-03-31", payload.Range.End.String())
	require.Len(t, payload.Grid, calendar.GridCells)
	assert.Empty(t, payload.Slots)

	// March 2024 starts on a Friday
	assert.Equal(t, "2024-02-25", payload.Grid[0].Date.String())
	assert.Equal(t, "2024-03-01", payload.Grid[5].Date.String())
	assert.True(t, payload.Grid[19].IsToday)
}

func TestGetCalendarScopesPatients(t *testing.T) {
	env := newTestEnv(t)
	env.mock.ExpectQuery(regexp.QuoteMeta("FROM appointments AS a")).
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), patientID, "cancelled").
		WillReturnRows(sqlmock.NewRows(calendarColumns))

	w := env.do(http.MethodGet, "/api/v1/calendar?view=day&date=2024-03-15", models.RolePatient, patientID, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.NoError(t, env.mock.ExpectationsWereMet())
}

func TestGetCalendarRejectsBadInput(t *testing.T) {
	env := newTestEnv(t)
	for _, path := range []string{
		"/api/v1/calendar?view=year",
		"/api/v1/calendar?date=2023-02-29",
		"/api/v1/calendar?date=15/03/2024",
		"/api/v1/calendar?providerId=nope",
	} {
		w := env.do(http.MethodGet, path, models.RoleAdmin, adminID, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, path)
	}
	assert.NoError(t, env.mock.ExpectationsWereMet())
}

func TestGetCalendarDatabaseFailure(t *testing.T) {
	env := newTestEnv(t)
	env.mock.ExpectQuery(regexp.QuoteMeta("FROM appointments AS a")).WillReturnError(assert.AnError)

	w := env.do(http.MethodGet, "/api/v1/calendar?view=day", models.RoleAdmin, adminID, nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestReportRangeValidation(t *testing.T) {
	env := newTestEnv(t)
	tests := map[string]string{
		"from only":    "/api/v1/reports/appointments?from=2024-01-01",
		"reversed":     "/api/v1/reports/appointments?from=2024-02-01&to=2024-01-01",
		"too long":     "/api/v1/reports/appointments?from=2022-12-31&to=2024-01-01",
		"unknown view": "/api/v1/reports/appointments?view=quarter",
		"bad provider": "/api/v1/reports/appointments?providerId=42",
	}
	for name, path := range tests {
		t.Run(name, func(t *testing.T) {
			w := env.do(http.MethodGet, path, models.RoleAdmin, adminID, nil)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestReportForWeek(t *testing.T) {
	env := newTestEnv(t)
	env.mock.ExpectQuery(regexp.QuoteMeta("SELECT a.status AS status")).
		WillReturnRows(sqlmock.NewRows([]string{"status", "count"}).AddRow("confirmed", 2))
	env.mock.ExpectQuery(regexp.QuoteMeta("SELECT a.provider_id AS provider_id")).
		WillReturnRows(sqlmock.NewRows([]string{"provider_id", "first_name", "last_name", "count"}).AddRow(providerID, "Greg", "House", 2))

	w := env.do(http.MethodGet, "/api/v1/reports/appointments?view=week&date=2024-03-15", models.RoleAdmin, adminID, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var report services.Report
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &report))
	assert.Equal(t, "2024-03-11", report.Range.Start.String())
	assert.EqualValues(t, 2, report.Total)
	require.Len(t, report.ByProvider, 1)
	assert.Equal(t, "Greg House", report.ByProvider[0].ProviderName)
}

func TestCreateScheduleValidation(t *testing.T) {
	env := newTestEnv(t)
	weekday := 1

	w := env.do(http.MethodPost, "/api/v1/schedules", models.RoleAdmin, adminID, CreateScheduleRequest{
		ProviderID: providerID, LocationID: locationID, Weekday: &weekday, StartTime: "17:00", EndTime: "09:00",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(http.MethodPost, "/api/v1/schedules", models.RoleAdmin, adminID, CreateScheduleRequest{
		ProviderID: providerID, LocationID: locationID, Weekday: &weekday, StartTime: "9am", EndTime: "17:00",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.NoError(t, env.mock.ExpectationsWereMet())
}

func TestCreateScheduleOverlap(t *testing.T) {
	env := newTestEnv(t)
	weekday := 1

	env.mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `users`")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "role"}).AddRow(providerID, "provider"))
	env.mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `locations`")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(locationID, "Main"))
	env.mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `provider_schedules`")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "provider_id", "weekday", "start_time", "end_time"}).
			AddRow(otherID, providerID, 1, "08:00", "12:00"))

	w := env.do(http.MethodPost, "/api/v1/schedules", models.RoleAdmin, adminID, CreateScheduleRequest{
		ProviderID: providerID, LocationID: locationID, Weekday: &weekday, StartTime: "11:00", EndTime: "15:00",
	})
	assert.Equal(t, http.StatusConflict, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "08:00-12:00")
	assert.NoError(t, env.mock.ExpectationsWereMet())
}

func TestDeleteLocationNotFound(t *testing.T) {
	env := newTestEnv(t)
	env.mock.ExpectBegin()
	env.mock.ExpectExec(regexp.QuoteMeta("UPDATE `locations`")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	env.mock.ExpectCommit()

	w := env.do(http.MethodDelete, "/api/v1/locations/"+locationID, models.RoleAdmin, adminID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.NoError(t, env.mock.ExpectationsWereMet())
}
