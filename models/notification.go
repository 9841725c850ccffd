package models

type Notification struct {
	Base
	UserID      string           `gorm:"type:varchar(36);index;not null" json:"userId"`
	Type        NotificationType `gorm:"type:varchar(30);not null" json:"type"`
	Title       string           `gorm:"type:varchar(255);not null" json:"title"`
	Message     string           `gorm:"type:text;not null" json:"message"`
	ReferenceID string           `gorm:"type:varchar(36)" json:"referenceId,omitempty"`
	IsRead      bool             `gorm:"not null;default:false" json:"isRead"`
}
