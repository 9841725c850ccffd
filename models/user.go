package models

import "time"

type User struct {
	Base
	GoogleID          *string    `gorm:"type:varchar(255);uniqueIndex" json:"googleId,omitempty"`
	Email             string     `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	FirstName         string     `gorm:"type:varchar(100)" json:"firstName"`
	LastName          string     `gorm:"type:varchar(100)" json:"lastName"`
	PasswordHash      string     `gorm:"type:varchar(255)" json:"-"`
	ProfilePictureURL string     `gorm:"type:varchar(500)" json:"profilePictureUrl"`
	UserRole          UserRole   `gorm:"type:varchar(20);index;not null" json:"userRole"`
	Status            UserStatus `gorm:"type:varchar(20);index;not null;default:ACTIVE" json:"status"`
	DeletedAt         *time.Time `json:"deletedAt,omitempty"`
}

// FullName joins first and last name, falling back to the email.
func (u *User) FullName() string {
	name := u.FirstName
	if u.LastName != "" {
		if name != "" {
			name += " "
		}
		name += u.LastName
	}
	if name == "" {
		return u.Email
	}
	return name
}

// UserPatch holds the fields a user update may change.
type UserPatch struct {
	FirstName         Optional[string]     `json:"firstName"`
	LastName          Optional[string]     `json:"lastName"`
	ProfilePictureURL Optional[string]     `json:"profilePictureUrl"`
	UserRole          Optional[UserRole]   `json:"userRole"`
	Status            Optional[UserStatus] `json:"status"`
}
