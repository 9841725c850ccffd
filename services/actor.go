package services

import "github.com/yeremiapane/startup-platform/models"

// Actor is the authenticated caller, passed explicitly into services.
type Actor struct {
	UserID string
	Role   models.UserRole
}

func (a Actor) IsAdmin() bool { return a.Role == models.RoleAdmin }

// CanActFor reports whether the actor may act on resources owned by userID.
func (a Actor) CanActFor(userID string) bool {
	return a.IsAdmin() || (a.UserID != "" && a.UserID == userID)
}
