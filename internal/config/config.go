package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"practice-scheduler-server/internal/calendar"
)

// Config holds all configuration for our application
type Config struct {
	Port                      string
	Origin                    string
	Environment               string
	LogLevel                  string
	JWTSecret                 string
	JWTRefreshSecret          string
	Database                  DatabaseConfig
	Calendar                  CalendarConfig
	JWTExpirationMinutes      int
	JWTRefreshExpirationHours int
}

// DatabaseConfig holds database connection details
type DatabaseConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	Name     string
	DSN      string
}

// CalendarConfig controls how the practice's calendar is laid out.
type CalendarConfig struct {
	Location *time.Location
	DayStart calendar.TimeOfDay
	DayEnd   calendar.TimeOfDay
	SlotStep time.Duration
}

// Slots returns the time-slot axis of the day and week views.
func (c CalendarConfig) Slots() ([]calendar.TimeOfDay, error) {
	return calendar.TimeSlots(c.DayStart, c.DayEnd, c.SlotStep)
}

// Clock returns a clock reporting today's date in the practice's timezone.
func (c CalendarConfig) Clock() calendar.Clock {
	return calendar.SystemClock{Location: c.Location}
}

// IsDevelopment reports whether the server runs in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	dbConfig := DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnv("DB_PORT", "3306"),
		Username: getEnv("DB_USERNAME", "root"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "practice"),
	}

	// Build DSN (Data Source Name) for MySQL connection. Times are stored in UTC.
	dbConfig.DSN = fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
		dbConfig.Username, dbConfig.Password, dbConfig.Host, dbConfig.Port, dbConfig.Name)

	calendarConfig, err := loadCalendarConfig()
	if err != nil {
		return nil, err
	}

	jwtExpMinutes, err := strconv.Atoi(getEnv("JWT_EXPIRATION_MINUTES", "15"))
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_EXPIRATION_MINUTES: %w", err)
	}

	jwtRefreshExpHours, err := strconv.Atoi(getEnv("JWT_REFRESH_EXPIRATION_HOURS", "168")) // 7 days
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_REFRESH_EXPIRATION_HOURS: %w", err)
	}

	return &Config{
		Port:                      getEnv("PORT", "3001"),
		Origin:                    getEnv("ORIGIN", "http://localhost:4200"),
		Environment:               getEnv("APP_ENV", "development"),
		LogLevel:                  getEnv("LOG_LEVEL", "info"),
		JWTSecret:                 getEnv("JWT_SECRET", "default_jwt_secret"),
		JWTRefreshSecret:          getEnv("JWT_REFRESH_SECRET", "default_refresh_secret"),
		Database:                  dbConfig,
		Calendar:                  calendarConfig,
		JWTExpirationMinutes:      jwtExpMinutes,
		JWTRefreshExpirationHours: jwtRefreshExpHours,
	}, nil
}

func loadCalendarConfig() (CalendarConfig, error) {
	loc, err := time.LoadLocation(getEnv("CLINIC_TIMEZONE", "UTC"))
	if err != nil {
		return CalendarConfig{}, fmt.Errorf("invalid CLINIC_TIMEZONE: %w", err)
	}

	dayStart, err := calendar.ParseTimeOfDay(getEnv("CALENDAR_DAY_START", "08:00"))
	if err != nil {
		return CalendarConfig{}, fmt.Errorf("invalid CALENDAR_DAY_START: %w", err)
	}
	dayEnd, err := calendar.ParseTimeOfDay(getEnv("CALENDAR_DAY_END", "18:00"))
	if err != nil {
		return CalendarConfig{}, fmt.Errorf("invalid CALENDAR_DAY_END: %w", err)
	}

	slotMinutes, err := strconv.Atoi(getEnv("CALENDAR_SLOT_MINUTES", "30"))
	if err != nil {
		return CalendarConfig{}, fmt.Errorf("invalid CALENDAR_SLOT_MINUTES: %w", err)
	}

	cfg := CalendarConfig{
		Location: loc,
		DayStart: dayStart,
		DayEnd:   dayEnd,
		SlotStep: time.Duration(slotMinutes) * time.Minute,
	}
	if _, err := cfg.Slots(); err != nil {
		return CalendarConfig{}, fmt.Errorf("invalid calendar day layout: %w", err)
	}
	return cfg, nil
}

// Helper function to get environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
