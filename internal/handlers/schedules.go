package handlers

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"practice-scheduler-server/internal/calendar"
	"practice-scheduler-server/internal/models"
	"practice-scheduler-server/internal/utils"
)

// ScheduleHandler manages providers' weekly working hours.
type ScheduleHandler struct {
	DB *gorm.DB
}

func NewScheduleHandler(db *gorm.DB) *ScheduleHandler {
	return &ScheduleHandler{DB: db}
}

// CreateScheduleRequest adds one weekly working block for a provider.
type CreateScheduleRequest struct {
	ProviderID string `json:"providerId" binding:"required,uuid"`
	LocationID string `json:"locationId" binding:"required,uuid"`
	Weekday    *int   `json:"weekday" binding:"required,min=0,max=6"`
	StartTime  string `json:"startTime" binding:"required"`
	EndTime    string `json:"endTime" binding:"required"`
}

// hours parses and orders the block's wall-clock bounds.
func (r CreateScheduleRequest) hours() (calendar.TimeOfDay, calendar.TimeOfDay, error) {
	start, err := calendar.ParseTimeOfDay(r.StartTime)
	if err != nil {
		return calendar.TimeOfDay{}, calendar.TimeOfDay{}, err
	}
	end, err := calendar.ParseTimeOfDay(r.EndTime)
	if err != nil {
		return calendar.TimeOfDay{}, calendar.TimeOfDay{}, err
	}
	if !start.Before(end) {
		return calendar.TimeOfDay{}, calendar.TimeOfDay{}, fmt.Errorf("%w: schedule must end after it starts", calendar.ErrInvalidArgument)
	}
	return start, end, nil
}

// GetSchedules lists working blocks ordered by weekday and start, optionally
// for one provider.
func (h *ScheduleHandler) GetSchedules(c *gin.Context) {
	providerID, ok := optionalIDQuery(c, "providerId")
	if !ok {
		return
	}

	query := h.DB.Order("weekday, start_time")
	if providerID != "" {
		query = query.Where("provider_id = ?", providerID)
	}

	var schedules []models.ProviderSchedule
	if err := query.Find(&schedules).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch schedules: "+err.Error())
		return
	}
	utils.Success(c, "Schedules fetched successfully", schedules)
}

// CreateSchedule adds a block, refusing overlaps with the provider's other
// blocks on the same weekday.
func (h *ScheduleHandler) CreateSchedule(c *gin.Context) {
	var req CreateScheduleRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	start, end, err := req.hours()
	if err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	var provider models.User
	if err := h.DB.Where("id = ? AND role = ?", req.ProviderID, models.RoleProvider).First(&provider).Error; err != nil {
		lookupFailed(c, err, "Provider not found or user is not a provider")
		return
	}
	var location models.Location
	if err := h.DB.First(&location, "id = ?", req.LocationID).Error; err != nil {
		lookupFailed(c, err, "Location not found")
		return
	}

	var sameDay []models.ProviderSchedule
	if err := h.DB.Where("provider_id = ? AND weekday = ?", req.ProviderID, *req.Weekday).Find(&sameDay).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch schedules: "+err.Error())
		return
	}
	for _, s := range sameDay {
		otherStart, errStart := calendar.ParseTimeOfDay(s.StartTime)
		otherEnd, errEnd := calendar.ParseTimeOfDay(s.EndTime)
		if errStart != nil || errEnd != nil {
			continue
		}
		if start.Before(otherEnd) && otherStart.Before(end) {
			utils.Conflict(c, fmt.Sprintf("Overlaps the existing %s-%s block", s.StartTime, s.EndTime))
			return
		}
	}

	schedule := models.ProviderSchedule{
		ProviderID: req.ProviderID,
		LocationID: req.LocationID,
		Weekday:    time.Weekday(*req.Weekday),
		StartTime:  start.String(),
		EndTime:    end.String(),
	}
	if err := h.DB.Create(&schedule).Error; err != nil {
		utils.InternalServerError(c, "Failed to create schedule: "+err.Error())
		return
	}
	utils.Created(c, "Schedule created successfully", schedule)
}

func (h *ScheduleHandler) DeleteSchedule(c *gin.Context) {
	id, ok := idParam(c, "id", "Schedule")
	if !ok {
		return
	}

	result := h.DB.Delete(&models.ProviderSchedule{}, "id = ?", id)
	if result.Error != nil {
		utils.InternalServerError(c, "Failed to delete schedule: "+result.Error.Error())
		return
	}
	if result.RowsAffected == 0 {
		utils.NotFound(c, "Schedule not found")
		return
	}
	utils.Success(c, "Schedule deleted successfully", nil)
}
