package handlers

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"practice-scheduler-server/internal/models"
	"practice-scheduler-server/internal/utils"
)

// LocationHandler manages the practice's sites.
type LocationHandler struct {
	DB *gorm.DB
}

func NewLocationHandler(db *gorm.DB) *LocationHandler {
	return &LocationHandler{DB: db}
}

// LocationRequest is the body for creating or updating a location.
type LocationRequest struct {
	Name     string `json:"name" binding:"required,max=150"`
	Address  string `json:"address" binding:"max=255"`
	Phone    string `json:"phone" binding:"max=30"`
	IsActive *bool  `json:"isActive"`
}

// GetLocations lists locations; ?active=true hides deactivated ones.
func (h *LocationHandler) GetLocations(c *gin.Context) {
	query := h.DB.Order("name")
	if c.Query("active") == "true" {
		query = query.Where("is_active = ?", true)
	}

	var locations []models.Location
	if err := query.Find(&locations).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch locations: "+err.Error())
		return
	}
	utils.Success(c, "Locations fetched successfully", locations)
}

func (h *LocationHandler) GetLocationByID(c *gin.Context) {
	id, ok := idParam(c, "id", "Location")
	if !ok {
		return
	}

	var location models.Location
	if err := h.DB.First(&location, "id = ?", id).Error; err != nil {
		lookupFailed(c, err, "Location not found")
		return
	}
	utils.Success(c, "Location fetched successfully", location)
}

func (h *LocationHandler) CreateLocation(c *gin.Context) {
	var req LocationRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	location := models.Location{Name: req.Name, Address: req.Address, Phone: req.Phone, IsActive: true}
	if req.IsActive != nil {
		location.IsActive = *req.IsActive
	}
	if err := h.DB.Create(&location).Error; err != nil {
		utils.InternalServerError(c, "Failed to create location: "+err.Error())
		return
	}
	utils.Created(c, "Location created successfully", location)
}

func (h *LocationHandler) UpdateLocation(c *gin.Context) {
	id, ok := idParam(c, "id", "Location")
	if !ok {
		return
	}
	var req LocationRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	var location models.Location
	if err := h.DB.First(&location, "id = ?", id).Error; err != nil {
		lookupFailed(c, err, "Location not found")
		return
	}

	location.Name = req.Name
	location.Address = req.Address
	location.Phone = req.Phone
	if req.IsActive != nil {
		location.IsActive = *req.IsActive
	}
	if err := h.DB.Save(&location).Error; err != nil {
		utils.InternalServerError(c, "Failed to update location: "+err.Error())
		return
	}
	utils.Success(c, "Location updated successfully", location)
}

// DeleteLocation deactivates a location so past appointments keep their
// reference.
func (h *LocationHandler) DeleteLocation(c *gin.Context) {
	id, ok := idParam(c, "id", "Location")
	if !ok {
		return
	}

	result := h.DB.Model(&models.Location{}).Where("id = ?", id).Update("is_active", false)
	if result.Error != nil {
		utils.InternalServerError(c, "Failed to deactivate location: "+result.Error.Error())
		return
	}
	if result.RowsAffected == 0 {
		utils.NotFound(c, "Location not found")
		return
	}
	utils.Success(c, "Location deactivated successfully", nil)
}
