package handlers

import (
	"github.com/gin-gonic/gin"

	"practice-scheduler-server/internal/calendar"
	"practice-scheduler-server/internal/services"
	"practice-scheduler-server/internal/utils"
)

// maxReportDays bounds ad-hoc report ranges.
const maxReportDays = 366

// ReportHandler serves appointment summaries to staff.
type ReportHandler struct {
	Reports *services.ReportService
	Clock   calendar.Clock
}

func NewReportHandler(reports *services.ReportService, clock calendar.Clock) *ReportHandler {
	return &ReportHandler{Reports: reports, Clock: clock}
}

// reportRange takes an explicit from/to pair, or else the view range around
// ?date (default: this month).
func (h *ReportHandler) reportRange(c *gin.Context) (calendar.DateRange, bool) {
	from, hasFrom, ok := optionalDateQuery(c, "from")
	if !ok {
		return calendar.DateRange{}, false
	}
	to, hasTo, ok := optionalDateQuery(c, "to")
	if !ok {
		return calendar.DateRange{}, false
	}

	if hasFrom != hasTo {
		utils.BadRequest(c, "from and to must be given together")
		return calendar.DateRange{}, false
	}
	if hasFrom {
		rng, err := calendar.NewDateRange(from, to)
		if err != nil {
			utils.CalendarError(c, err)
			return calendar.DateRange{}, false
		}
		if to.AddDays(-maxReportDays+1).After(from) {
			utils.BadRequest(c, "Report range may span at most 366 days")
			return calendar.DateRange{}, false
		}
		return rng, true
	}

	mode := calendar.ViewMonth
	if raw := c.Query("view"); raw != "" {
		parsed, err := calendar.ParseViewMode(raw)
		if err != nil {
			utils.CalendarError(c, err)
			return calendar.DateRange{}, false
		}
		mode = parsed
	}
	ref, has, ok := optionalDateQuery(c, "date")
	if !ok {
		return calendar.DateRange{}, false
	}
	if !has {
		ref = h.Clock.Today()
	}
	rng, err := calendar.ComputeRange(ref, mode)
	if err != nil {
		utils.CalendarError(c, err)
		return calendar.DateRange{}, false
	}
	return rng, true
}

// GetAppointmentReport answers GET /reports/appointments.
func (h *ReportHandler) GetAppointmentReport(c *gin.Context) {
	rng, ok := h.reportRange(c)
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

	report, err := h.Reports.Summarize(c.Request.Context(), rng, filter)
	if err != nil {
		_ = c.Error(err)
		utils.InternalServerError(c, "Failed to build report")
		return
	}
	utils.Success(c, "Report fetched successfully", report)
}
