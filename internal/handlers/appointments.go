package handlers

import (
	"context"
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"practice-scheduler-server/internal/calendar"
	"practice-scheduler-server/internal/models"
	"practice-scheduler-server/internal/services"
	"practice-scheduler-server/internal/utils"
)

// AppointmentHandler handles appointment related requests.
type AppointmentHandler struct {
	DB    *gorm.DB
	Query *services.AppointmentQuery
	Now   func() time.Time
}

// NewAppointmentHandler creates a new AppointmentHandler.
func NewAppointmentHandler(db *gorm.DB, query *services.AppointmentQuery) *AppointmentHandler {
	return &AppointmentHandler{DB: db, Query: query, Now: time.Now}
}

var errProviderBusy = errors.New("provider already has an appointment at that time")

// reserve runs write in a transaction after confirming, with the overlapping
// rows locked, that the provider is free for appt's interval.
func (h *AppointmentHandler) reserve(ctx context.Context, appt *models.Appointment, write func(tx *gorm.DB) error) error {
	return h.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		busy, err := h.Query.WithDB(tx).ProviderBusy(ctx, appt.ProviderID, appt.StartTime, appt.EndTime, appt.ID)
		if err != nil {
			return err
		}
		if busy {
			return errProviderBusy
		}
		return write(tx)
	})
}

// reserveFailed answers an error from reserve.
func reserveFailed(c *gin.Context, err error, conflict, failure string) {
	if errors.Is(err, errProviderBusy) {
		utils.Conflict(c, conflict)
		return
	}
	_ = c.Error(err)
	utils.InternalServerError(c, failure+": "+err.Error())
}

// withinHours answers 400 when [start, end) falls outside the provider's
// weekly schedule at locationID.
func (h *AppointmentHandler) withinHours(c *gin.Context, providerID, locationID string, start, end time.Time) bool {
	blocks, err := h.Query.ProviderSchedules(c.Request.Context(), providerID)
	if err != nil {
		_ = c.Error(err)
		utils.InternalServerError(c, "Failed to load provider schedule")
		return false
	}
	if !services.WithinSchedule(blocks, locationID, start, end, h.Query.Location) {
		utils.BadRequest(c, "Appointment is outside the provider's working hours at this location")
		return false
	}
	return true
}

// CreateAppointmentRequest represents the request body for creating an appointment.
type CreateAppointmentRequest struct {
	PatientID         string    `json:"patientId" binding:"required,uuid"`
	ProviderID        string    `json:"providerId" binding:"required,uuid"`
	LocationID        string    `json:"locationId" binding:"required,uuid"`
	AppointmentTypeID string    `json:"appointmentTypeId" binding:"required,uuid"`
	StartTime         time.Time `json:"startTime" binding:"required"`
	Notes             string    `json:"notes"`
}

// CreateAppointment books an appointment. Patients may only book for
// themselves; the end time follows from the appointment type.
func (h *AppointmentHandler) CreateAppointment(c *gin.Context) {
	var req CreateAppointmentRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	userID, role, ok := currentUser(c)
	if !ok {
		return
	}
	if role == models.RolePatient && userID != req.PatientID {
		utils.Forbidden(c, "Patients can only book appointments for themselves.")
		return
	}
	if req.StartTime.Before(h.Now()) {
		utils.BadRequest(c, "Appointment date must be in the future.")
		return
	}

	var provider models.User
	if err := h.DB.Where("id = ? AND role = ?", req.ProviderID, models.RoleProvider).First(&provider).Error; err != nil {
		lookupFailed(c, err, "Provider not found or user is not a provider")
		return
	}
	var patient models.User
	if err := h.DB.Where("id = ? AND role = ?", req.PatientID, models.RolePatient).First(&patient).Error; err != nil {
		lookupFailed(c, err, "Patient not found")
		return
	}
	var location models.Location
	if err := h.DB.Where("id = ? AND is_active = ?", req.LocationID, true).First(&location).Error; err != nil {
		lookupFailed(c, err, "Location not found or inactive")
		return
	}
	var apptType models.AppointmentType
	if err := h.DB.Where("id = ? AND is_active = ?", req.AppointmentTypeID, true).First(&apptType).Error; err != nil {
		lookupFailed(c, err, "Appointment type not found or inactive")
		return
	}

	start := req.StartTime.UTC()
	end := start.Add(apptType.Duration())
	if !h.withinHours(c, req.ProviderID, req.LocationID, start, end) {
		return
	}

	appointment := models.Appointment{
		PatientID:         req.PatientID,
		ProviderID:        req.ProviderID,
		LocationID:        req.LocationID,
		AppointmentTypeID: req.AppointmentTypeID,
		StartTime:         start,
		EndTime:           end,
		Notes:             req.Notes,
		Status:            models.StatusPending,
	}
	err := h.reserve(c.Request.Context(), &appointment, func(tx *gorm.DB) error {
		return tx.Create(&appointment).Error
	})
	if err != nil {
		reserveFailed(c, err, provider.FullName()+" already has an appointment at that time", "Failed to create appointment")
		return
	}

	utils.Created(c, "Appointment created successfully", appointment)
}

// GetAppointments lists appointments between ?from and ?to (inclusive dates
// in the practice timezone). Patients and providers only see their own;
// admins and receptionists may filter by provider, location and status.
func (h *AppointmentHandler) GetAppointments(c *gin.Context) {
	userID, role, ok := currentUser(c)
	if !ok {
		return
	}
	from, hasFrom, ok := optionalDateQuery(c, "from")
	if !ok {
		return
	}
	to, hasTo, ok := optionalDateQuery(c, "to")
	if !ok {
		return
	}
	providerID, ok := optionalIDQuery(c, "providerId")
	if !ok {
		return
	}
	locationID, ok := optionalIDQuery(c, "locationId")
	if !ok {
		return
	}

	query := h.DB.Order("start_time asc, created_at asc")
	if hasFrom || hasTo {
		if !hasFrom {
			from = to
		}
		if !hasTo {
			to = from
		}
		rng, err := calendar.NewDateRange(from, to)
		if err != nil {
			utils.BadRequest(c, err.Error())
			return
		}
		start, end := h.Query.Bounds(rng)
		query = query.Where("start_time >= ? AND start_time < ?", start.UTC(), end.UTC())
	}

	switch {
	case role == models.RolePatient:
		query = query.Where("patient_id = ?", userID)
	case role == models.RoleProvider:
		query = query.Where("provider_id = ?", userID)
		if locationID != "" {
			query = query.Where("location_id = ?", locationID)
		}
	case role == models.RoleAdmin || role == models.RoleReceptionist:
		if providerID != "" {
			query = query.Where("provider_id = ?", providerID)
		}
		if locationID != "" {
			query = query.Where("location_id = ?", locationID)
		}
	default:
		utils.Forbidden(c, "User role not permitted to view appointments. Role: "+string(role))
		return
	}
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var appointments []models.Appointment
	if err := query.Find(&appointments).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch appointments: "+err.Error())
		return
	}

	utils.Success(c, "Appointments fetched successfully", appointments)
}

// loadVisible fetches an appointment the caller may see: admins and
// receptionists see all, providers and patients only their own.
func (h *AppointmentHandler) loadVisible(c *gin.Context) (*models.Appointment, string, models.Role, bool) {
	appointmentID, ok := idParam(c, "id", "Appointment")
	if !ok {
		return nil, "", "", false
	}
	userID, role, ok := currentUser(c)
	if !ok {
		return nil, "", "", false
	}

	var appointment models.Appointment
	if err := h.DB.First(&appointment, "id = ?", appointmentID).Error; err != nil {
		lookupFailed(c, err, "Appointment not found")
		return nil, "", "", false
	}

	involved := userID == appointment.PatientID || userID == appointment.ProviderID
	if role != models.RoleAdmin && role != models.RoleReceptionist && !involved {
		utils.Forbidden(c, "You are not authorized to access this appointment")
		return nil, "", "", false
	}
	return &appointment, userID, role, true
}

// GetAppointmentByID handles fetching a single appointment by its ID.
func (h *AppointmentHandler) GetAppointmentByID(c *gin.Context) {
	appointment, _, _, ok := h.loadVisible(c)
	if !ok {
		return
	}
	utils.Success(c, "Appointment fetched successfully", appointment)
}

// UpdateAppointmentStatusRequest represents the request body for updating an appointment's status.
type UpdateAppointmentStatusRequest struct {
	Status models.AppointmentStatus `json:"status" binding:"required,oneof=pending confirmed cancelled completed no_show"`
	Notes  string                   `json:"notes"`
}

// UpdateAppointmentStatus changes an appointment's status. Patients may only
// cancel their own open appointments. Reopening a closed appointment needs the
// provider to still be free.
func (h *AppointmentHandler) UpdateAppointmentStatus(c *gin.Context) {
	var req UpdateAppointmentStatusRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	appointment, _, role, ok := h.loadVisible(c)
	if !ok {
		return
	}

	if role == models.RolePatient {
		if req.Status != models.StatusCancelled {
			utils.Forbidden(c, "Patients can only cancel appointments.")
			return
		}
		if !appointment.Status.IsOpen() {
			utils.Forbidden(c, "Only pending or confirmed appointments can be cancelled.")
			return
		}
	}

	reopening := !appointment.Status.IsOpen() && req.Status.IsOpen()
	appointment.Status = req.Status
	if req.Notes != "" {
		appointment.Notes = req.Notes
	}

	save := func(tx *gorm.DB) error { return tx.Save(appointment).Error }
	var err error
	if reopening {
		err = h.reserve(c.Request.Context(), appointment, save)
	} else {
		err = save(h.DB.WithContext(c.Request.Context()))
	}
	if err != nil {
		reserveFailed(c, err, "Provider already has another appointment at that time", "Failed to update appointment status")
		return
	}

	utils.Success(c, "Appointment status updated successfully", appointment)
}

// RescheduleAppointmentRequest represents the request body for rescheduling an appointment.
type RescheduleAppointmentRequest struct {
	StartTime time.Time `json:"startTime" binding:"required"`
	Notes     string    `json:"notes"`
}

// RescheduleAppointment moves an open appointment, keeping its length.
func (h *AppointmentHandler) RescheduleAppointment(c *gin.Context) {
	var req RescheduleAppointmentRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	if req.StartTime.Before(h.Now()) {
		utils.BadRequest(c, "New appointment date must be in the future.")
		return
	}
	appointment, _, _, ok := h.loadVisible(c)
	if !ok {
		return
	}
	if !appointment.Status.IsOpen() {
		utils.BadRequest(c, "Only pending or confirmed appointments can be rescheduled.")
		return
	}

	length := appointment.EndTime.Sub(appointment.StartTime)
	start := req.StartTime.UTC()
	end := start.Add(length)
	if !h.withinHours(c, appointment.ProviderID, appointment.LocationID, start, end) {
		return
	}

	appointment.StartTime = start
	appointment.EndTime = end
	appointment.Status = models.StatusPending
	if req.Notes != "" {
		appointment.Notes = req.Notes
	}
	err := h.reserve(c.Request.Context(), appointment, func(tx *gorm.DB) error {
		return tx.Save(appointment).Error
	})
	if err != nil {
		reserveFailed(c, err, "Provider already has an appointment at that time", "Failed to reschedule appointment")
		return
	}

	utils.Success(c, "Appointment rescheduled successfully", appointment)
}
