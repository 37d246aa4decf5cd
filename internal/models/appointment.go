package models

import (
	"time"
)

// AppointmentStatus represents the status of an appointment
type AppointmentStatus string

const (
	StatusPending   AppointmentStatus = "pending"
	StatusConfirmed AppointmentStatus = "confirmed"
	StatusCancelled AppointmentStatus = "cancelled"
	StatusCompleted AppointmentStatus = "completed"
	StatusNoShow    AppointmentStatus = "no_show"
)

// IsOpen reports whether the appointment still holds its slot.
func (s AppointmentStatus) IsOpen() bool {
	return s == StatusPending || s == StatusConfirmed
}

// Appointment is a patient's booking with a provider at a location.
type Appointment struct {
	BaseModel
	PatientID         string            `gorm:"size:36;index" json:"patientId"`
	ProviderID        string            `gorm:"size:36;index:idx_provider_start" json:"providerId"`
	LocationID        string            `gorm:"size:36;index" json:"locationId"`
	AppointmentTypeID string            `gorm:"size:36;index" json:"appointmentTypeId"`
	StartTime         time.Time         `gorm:"index:idx_provider_start" json:"startTime"`
	EndTime           time.Time         `json:"endTime"`
	Status            AppointmentStatus `gorm:"size:20;default:'pending';index" json:"status"`
	Notes             string            `gorm:"type:text" json:"notes"`

	Patient         User            `gorm:"foreignKey:PatientID" json:"-"`
	Provider        User            `gorm:"foreignKey:ProviderID" json:"-"`
	Location        Location        `gorm:"foreignKey:LocationID" json:"-"`
	AppointmentType AppointmentType `gorm:"foreignKey:AppointmentTypeID" json:"-"`
}

// AppointmentType is a bookable service such as "New patient consult".
type AppointmentType struct {
	BaseModel
	Name            string `gorm:"size:100;not null;uniqueIndex" json:"name"`
	DurationMinutes int    `gorm:"not null;default:30" json:"durationMinutes"`
	Color           string `gorm:"size:7" json:"color,omitempty"`
	IsActive        bool   `gorm:"default:true" json:"isActive"`
}

// Duration returns the length of an appointment of this type.
func (t AppointmentType) Duration() time.Duration {
	return time.Duration(t.DurationMinutes) * time.Minute
}
