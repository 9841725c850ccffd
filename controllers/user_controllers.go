package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/startup-platform/middlewares"
	"github.com/yeremiapane/startup-platform/models"
	"github.com/yeremiapane/startup-platform/repositories"
	"github.com/yeremiapane/startup-platform/services"
	"github.com/yeremiapane/startup-platform/utils"
	"golang.org/x/crypto/bcrypt"
)

type UserController struct {
	users *services.UserService
}

func NewUserController(users *services.UserService) *UserController {
	return &UserController{users: users}
}

// ListUsers with optional role, status and search filters
func (uc *UserController) ListUsers(c *gin.Context) {
	var filter repositories.UserFilter
	if raw := c.Query("role"); raw != "" {
		role, ok := models.ParseUserRole(raw)
		if !ok {
			utils.RespondAppError(c, utils.NewValidationError("Invalid user role"))
			return
		}
		filter.Role = role
	}
	if raw := c.Query("status"); raw != "" {
		status, ok := models.ParseUserStatus(raw)
		if !ok {
			utils.RespondAppError(c, utils.NewValidationError("Invalid user status"))
			return
		}
		filter.Status = status
	}
	filter.Search = c.Query("search")

	page, err := uc.users.List(c.Request.Context(), filter, utils.ParsePageRequest(c))
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	respondOK(c, "Users retrieved", page)
}

func (uc *UserController) GetUser(c *gin.Context) {
	user, err := uc.users.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	respondOK(c, "User retrieved", user)
}

func (uc *UserController) GetUserByEmail(c *gin.Context) {
	user, err := uc.users.GetByEmail(c.Request.Context(), c.Param("email"))
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	respondOK(c, "User retrieved", user)
}

// CreateUser is the admin path; any role and status may be set.
func (uc *UserController) CreateUser(c *gin.Context) {
	var req struct {
		Email             string            `json:"email" binding:"required"`
		Password          string            `json:"password"`
		FirstName         string            `json:"firstName"`
		LastName          string            `json:"lastName"`
		ProfilePictureURL string            `json:"profilePictureUrl"`
		UserRole          models.UserRole   `json:"userRole"`
		Status            models.UserStatus `json:"status"`
	}
	if !bindJSON(c, &req, "Email is required") {
		return
	}

	user := &models.User{
		Email:             req.Email,
		FirstName:         req.FirstName,
		LastName:          req.LastName,
		ProfilePictureURL: req.ProfilePictureURL,
		UserRole:          req.UserRole,
		Status:            req.Status,
	}
	if req.Password != "" {
		if len(req.Password) < 8 {
			utils.RespondAppError(c, utils.NewValidationError("Password must be at least 8 characters"))
			return
		}
		hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			utils.RespondAppError(c, utils.NewInternalError("hash password", err))
			return
		}
		user.PasswordHash = string(hashed)
	}

	if err := uc.users.Create(c.Request.Context(), user); err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.InfoLogger.WithField("user_id", user.ID).Infof("User created by admin (role=%s)", user.UserRole)
	utils.RespondJSON(c, http.StatusCreated, "User created", user)
}

// UpdateUser applies a partial update. Role and status are admin-only.
func (uc *UserController) UpdateUser(c *gin.Context) {
	actor := middlewares.CurrentActor(c)
	id := c.Param("id")
	if !actor.CanActFor(id) {
		utils.RespondAppError(c, utils.NewForbiddenError("You can only update your own account"))
		return
	}

	var patch models.UserPatch
	if !bindJSON(c, &patch, "Invalid user payload") {
		return
	}
	if !actor.IsAdmin() && (patch.UserRole.Set || patch.Status.Set) {
		utils.RespondAppError(c, utils.NewForbiddenError("Only admins can change role or status"))
		return
	}

	user, err := uc.users.Update(c.Request.Context(), id, patch)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	respondOK(c, "User updated", user)
}

// DeleteUser soft-deletes the account
func (uc *UserController) DeleteUser(c *gin.Context) {
	id := c.Param("id")
	if !middlewares.CurrentActor(c).CanActFor(id) {
		utils.RespondAppError(c, utils.NewForbiddenError("You can only delete your own account"))
		return
	}
	if err := uc.users.SoftDelete(c.Request.Context(), id); err != nil {
		utils.RespondAppError(c, err)
		return
	}
	respondOK(c, "User deleted", nil)
}
