package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"practice-scheduler-server/internal/calendar"
	"practice-scheduler-server/internal/middleware"
	"practice-scheduler-server/internal/models"
	"practice-scheduler-server/internal/utils"
)

// idParam reads a UUID path parameter, answering 400 when it is malformed.
func idParam(c *gin.Context, name, label string) (string, bool) {
	raw := c.Param(name)
	if _, err := uuid.Parse(raw); err != nil {
		utils.BadRequest(c, "Invalid "+label+" ID format")
		return "", false
	}
	return raw, true
}

// optionalIDQuery reads an optional UUID query parameter.
func optionalIDQuery(c *gin.Context, name string) (string, bool) {
	raw := c.Query(name)
	if raw == "" {
		return "", true
	}
	if _, err := uuid.Parse(raw); err != nil {
		utils.BadRequest(c, "Invalid "+name+" format")
		return "", false
	}
	return raw, true
}

// optionalDateQuery reads an optional YYYY-MM-DD query parameter.
func optionalDateQuery(c *gin.Context, name string) (calendar.Date, bool, bool) {
	raw := c.Query(name)
	if raw == "" {
		return calendar.Date{}, false, true
	}
	d, err := calendar.ParseDate(raw)
	if err != nil {
		utils.BadRequest(c, err.Error())
		return calendar.Date{}, false, false
	}
	return d, true, true
}

// currentUser returns the authenticated caller, answering 401 when absent.
func currentUser(c *gin.Context) (string, models.Role, bool) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok || userID == "" {
		utils.Unauthorized(c, "User not authenticated")
		return "", "", false
	}
	role, _ := middleware.GetUserRoleFromContext(c)
	return userID, role, true
}

// lookupFailed answers a failed First() with 404 or 500.
func lookupFailed(c *gin.Context, err error, notFound string) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		utils.NotFound(c, notFound)
		return
	}
	_ = c.Error(err)
	utils.InternalServerError(c, "Database error: "+err.Error())
}
