package handlers

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"practice-scheduler-server/internal/models"
	"practice-scheduler-server/internal/utils"
)

// AppointmentTypeHandler manages the bookable services.
type AppointmentTypeHandler struct {
	DB *gorm.DB
}

func NewAppointmentTypeHandler(db *gorm.DB) *AppointmentTypeHandler {
	return &AppointmentTypeHandler{DB: db}
}

// AppointmentTypeRequest is the body for creating or updating a type.
type AppointmentTypeRequest struct {
	Name            string `json:"name" binding:"required,max=100"`
	DurationMinutes int    `json:"durationMinutes" binding:"required,min=5,max=480"`
	Color           string `json:"color" binding:"omitempty,hexcolor"`
	IsActive        *bool  `json:"isActive"`
}

func (h *AppointmentTypeHandler) GetAppointmentTypes(c *gin.Context) {
	query := h.DB.Order("name")
	if c.Query("active") == "true" {
		query = query.Where("is_active = ?", true)
	}

	var types []models.AppointmentType
	if err := query.Find(&types).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch appointment types: "+err.Error())
		return
	}
	utils.Success(c, "Appointment types fetched successfully", types)
}

func (h *AppointmentTypeHandler) GetAppointmentTypeByID(c *gin.Context) {
	id, ok := idParam(c, "id", "Appointment type")
	if !ok {
		return
	}

	var apptType models.AppointmentType
	if err := h.DB.First(&apptType, "id = ?", id).Error; err != nil {
		lookupFailed(c, err, "Appointment type not found")
		return
	}
	utils.Success(c, "Appointment type fetched successfully", apptType)
}

func (h *AppointmentTypeHandler) CreateAppointmentType(c *gin.Context) {
	var req AppointmentTypeRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	apptType := models.AppointmentType{
		Name:            req.Name,
		DurationMinutes: req.DurationMinutes,
		Color:           req.Color,
		IsActive:        true,
	}
	if req.IsActive != nil {
		apptType.IsActive = *req.IsActive
	}
	if err := h.DB.Create(&apptType).Error; err != nil {
		utils.InternalServerError(c, "Failed to create appointment type: "+err.Error())
		return
	}
	utils.Created(c, "Appointment type created successfully", apptType)
}

func (h *AppointmentTypeHandler) UpdateAppointmentType(c *gin.Context) {
	id, ok := idParam(c, "id", "Appointment type")
	if !ok {
		return
	}
	var req AppointmentTypeRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	var apptType models.AppointmentType
	if err := h.DB.First(&apptType, "id = ?", id).Error; err != nil {
		lookupFailed(c, err, "Appointment type not found")
		return
	}

	apptType.Name = req.Name
	apptType.DurationMinutes = req.DurationMinutes
	apptType.Color = req.Color
	if req.IsActive != nil {
		apptType.IsActive = *req.IsActive
	}
	if err := h.DB.Save(&apptType).Error; err != nil {
		utils.InternalServerError(c, "Failed to update appointment type: "+err.Error())
		return
	}
	utils.Success(c, "Appointment type updated successfully", apptType)
}

// DeleteAppointmentType deactivates a type; existing bookings keep it.
func (h *AppointmentTypeHandler) DeleteAppointmentType(c *gin.Context) {
	id, ok := idParam(c, "id", "Appointment type")
	if !ok {
		return
	}

	result := h.DB.Model(&models.AppointmentType{}).Where("id = ?", id).Update("is_active", false)
	if result.Error != nil {
		utils.InternalServerError(c, "Failed to deactivate appointment type: "+result.Error.Error())
		return
	}
	if result.RowsAffected == 0 {
		utils.NotFound(c, "Appointment type not found")
		return
	}
	utils.Success(c, "Appointment type deactivated successfully", nil)
}
