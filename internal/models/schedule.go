package models

import "time"

// ProviderSchedule is a weekly block in which a provider works at a location.
// StartTime and EndTime are HH:MM wall-clock times in the practice timezone.
type ProviderSchedule struct {
	BaseModel
	ProviderID string       `gorm:"size:36;index" json:"providerId"`
	LocationID string       `gorm:"size:36;index" json:"locationId"`
	Weekday    time.Weekday `gorm:"not null" json:"weekday"`
	StartTime  string       `gorm:"size:5;not null" json:"startTime"`
	EndTime    string       `gorm:"size:5;not null" json:"endTime"`

	Provider User     `gorm:"foreignKey:ProviderID" json:"-"`
	Location Location `gorm:"foreignKey:LocationID" json:"-"`
}
