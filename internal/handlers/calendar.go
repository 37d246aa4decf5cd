package handlers

import (
	"github.com/gin-gonic/gin"

	"practice-scheduler-server/internal/calendar"
	"practice-scheduler-server/internal/models"
	"practice-scheduler-server/internal/services"
	"practice-scheduler-server/internal/utils"
)

// CalendarHandler serves the day, week and month calendar screens.
type CalendarHandler struct {
	Query *services.AppointmentQuery
	Clock calendar.Clock
	Slots []calendar.TimeOfDay
}

func NewCalendarHandler(query *services.AppointmentQuery, clock calendar.Clock, slots []calendar.TimeOfDay) *CalendarHandler {
	return &CalendarHandler{Query: query, Clock: clock, Slots: slots}
}

// CalendarResponse is a calendar view plus the slot axis for day and week
// screens.
type CalendarResponse struct {
	*calendar.View
	Slots []calendar.TimeOfDay `json:"slots,omitempty"`
}

// calendarRequest reads view and date, defaulting to this month.
func (h *CalendarHandler) calendarRequest(c *gin.Context) (calendar.Date, calendar.ViewMode, calendar.Date, bool) {
	today := h.Clock.Today()

	mode := calendar.ViewMonth
	if raw := c.Query("view"); raw != "" {
		parsed, err := calendar.ParseViewMode(raw)
		if err != nil {
			utils.CalendarError(c, err)
			return calendar.Date{}, "", calendar.Date{}, false
		}
		mode = parsed
	}

	ref, has, ok := optionalDateQuery(c, "date")
	if !ok {
		return calendar.Date{}, "", calendar.Date{}, false
	}
	if !has {
		ref = today
	}
	return ref, mode, today, true
}

// GetCalendar answers GET /calendar?view=&date=&providerId=&locationId=.
func (h *CalendarHandler) GetCalendar(c *gin.Context) {
	userID, role, ok := currentUser(c)
	if !ok {
		return
	}
	ref, mode, today, ok := h.calendarRequest(c)
	if !ok {
		return
	}

	filter := services.Filter{}
	if filter.ProviderID, ok = optionalIDQuery(c, "providerId"); !ok {
		return
	}
	if filter.LocationID, ok = optionalIDQuery(c, "locationId"); !ok {
		return
	}
	if role == models.RolePatient {
		filter.PatientID = userID
	}
	filter.IncludeCancelled = c.Query("includeCancelled") == "true"

	rng, err := calendar.ComputeRange(ref, mode)
	if err != nil {
		utils.CalendarError(c, err)
		return
	}
	records, err := h.Query.FindInRange(c.Request.Context(), rng, filter)
	if err != nil {
		utils.CalendarError(c, err)
		return
	}

	view, err := calendar.BuildView(ref, mode, today, records)
	if err != nil {
		utils.CalendarError(c, err)
		return
	}

	resp := CalendarResponse{View: view}
	if mode != calendar.ViewMonth {
		resp.Slots = h.Slots
	}
	utils.Success(c, "Calendar fetched successfully", resp)
}
