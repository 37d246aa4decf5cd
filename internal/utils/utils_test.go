package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"practice-scheduler-server/internal/calendar"
	"practice-scheduler-server/internal/config"
	"practice-scheduler-server/internal/models"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:                 "access-secret",
		JWTRefreshSecret:          "refresh-secret",
		JWTExpirationMinutes:      15,
		JWTRefreshExpirationHours: 1,
	}
}

func TestGenerateAndValidateTokens(t *testing.T) {
	cfg := testConfig()
	user := &models.User{BaseModel: models.BaseModel{ID: "user-1"}, Role: models.RoleProvider}

	access, refresh, err := GenerateTokens(user, cfg)
	require.NoError(t, err)
	assert.NotEqual(t, access, refresh)

	claims, err := ValidateToken(access, cfg.JWTSecret)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, models.RoleProvider, claims.Role)

	_, err = ValidateToken(access, cfg.JWTRefreshSecret)
	assert.Error(t, err)

	claims, err = ValidateToken(refresh, cfg.JWTRefreshSecret)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
}

func TestTokensAreUnique(t *testing.T) {
	cfg := testConfig()
	user := &models.User{BaseModel: models.BaseModel{ID: "user-1"}, Role: models.RolePatient}

	_, first, err := GenerateTokens(user, cfg)
	require.NoError(t, err)
	_, second, err := GenerateTokens(user, cfg)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}

type bindTarget struct {
	Name string `json:"name" binding:"required"`
	Age  int    `json:"age" validate:"gte=0,lte=130"`
}

func runBind(body string) (*httptest.ResponseRecorder, bool) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	var target bindTarget
	return w, BindAndValidate(c, &target)
}

func TestBindAndValidate(t *testing.T) {
	_, ok := runBind(`{"name":"Ada","age":36}`)
	assert.True(t, ok)

	w, ok := runBind(`{"age":36}`)
	assert.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Name must satisfy required")

	w, ok = runBind(`{"name":"Ada","age":300}`)
	assert.False(t, ok)
	assert.Contains(t, w.Body.String(), "Age must satisfy lte=130")
}

func TestCalendarError(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	CalendarError(c, fmt.Errorf("%w: bad date", calendar.ErrInvalidArgument))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var body ResponseData
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Contains(t, body.Error, "bad date")

	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	CalendarError(c, errors.New("db down"))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "db down")
}
