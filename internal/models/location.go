package models

// Location is a site where the practice sees patients.
type Location struct {
	BaseModel
	Name     string `gorm:"size:150;not null;uniqueIndex" json:"name"`
	Address  string `gorm:"size:255" json:"address,omitempty"`
	Phone    string `gorm:"size:30" json:"phone,omitempty"`
	IsActive bool   `gorm:"default:true" json:"isActive"`
}
