package services

import (
	"context"
	"strings"

	"github.com/yeremiapane/startup-platform/models"
	"github.com/yeremiapane/startup-platform/utils"
	"golang.org/x/crypto/bcrypt"
)

// AuthResult is returned by every successful sign-in.
type AuthResult struct {
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken,omitempty"`
	User         *models.User `json:"user,omitempty"`
}

type RegisterInput struct {
	Email     string          `json:"email"`
	Password  string          `json:"password"`
	FirstName string          `json:"firstName"`
	LastName  string          `json:"lastName"`
	UserRole  models.UserRole `json:"userRole"`
}

// GoogleProfile is the subset of the Google userinfo response we use.
type GoogleProfile struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	EmailVerified bool   `json:"email_verified"` // OpenID Connect spelling
	GivenName     string `json:"given_name"`
	FamilyName    string `json:"family_name"`
	Picture       string `json:"picture"`
}

func (p GoogleProfile) Verified() bool {
	return p.VerifiedEmail || p.EmailVerified
}

type AuthService struct {
	users      *UserService
	tokens     *utils.TokenManager
	email      *EmailService
	dispatcher *Dispatcher
}

func NewAuthService(users *UserService, tokens *utils.TokenManager, email *EmailService, dispatcher *Dispatcher) *AuthService {
	return &AuthService{users: users, tokens: tokens, email: email, dispatcher: dispatcher}
}

var errBadCredentials = utils.NewUnauthorizedError("Invalid email or password")

func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if utils.IsNotFound(err) {
		return nil, errBadCredentials
	}
	if err != nil {
		return nil, err
	}
	if user.PasswordHash == "" || bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, errBadCredentials
	}
	if user.Status != models.UserActive {
		return nil, utils.NewForbiddenError("Account is not active")
	}

	utils.InfoLogger.WithField("user_id", user.ID).Info("Login successful")
	return s.issue(user)
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	if strings.TrimSpace(in.Email) == "" {
		return nil, utils.NewValidationError("Email is required")
	}
	if len(in.Password) < 8 {
		return nil, utils.NewValidationError("Password must be at least 8 characters")
	}
	if in.UserRole == models.RoleAdmin {
		return nil, utils.NewForbiddenError("Cannot self-register as admin")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, utils.NewInternalError("hash password", err)
	}

	user := &models.User{
		Email:        in.Email,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		PasswordHash: string(hashed),
		UserRole:     in.UserRole,
		Status:       models.UserActive,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	utils.InfoLogger.WithField("user_id", user.ID).Infof("New user registered (role=%s)", user.UserRole)
	s.sendWelcome(user)
	return s.issue(user)
}

// Me returns the user behind an access token.
func (s *AuthService) Me(ctx context.Context, userID string) (*models.User, error) {
	return s.users.GetByID(ctx, userID)
}

// Refresh exchanges a refresh token for a new access token.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*AuthResult, error) {
	claims, err := s.tokens.ParseRefreshToken(refreshToken)
	if err != nil {
		return nil, utils.NewUnauthorizedError("Invalid refresh token")
	}
	user, err := s.users.GetByID(ctx, claims.UserID())
	if utils.IsNotFound(err) {
		return nil, utils.NewUnauthorizedError("Invalid refresh token")
	}
	if err != nil {
		return nil, err
	}
	if user.Status == models.UserDeleted || user.Status == models.UserSuspended {
		return nil, utils.NewUnauthorizedError("Invalid refresh token")
	}

	access, err := s.tokens.GenerateAccessToken(user.ID, user.Email, string(user.UserRole))
	if err != nil {
		return nil, utils.NewInternalError("sign access token", err)
	}
	return &AuthResult{AccessToken: access}, nil
}

// GoogleLogin signs in a Google account. Unknown accounts are created as
// STARTUP users pending approval; an existing password account with the same
// email gets the Google id attached, but only when Google has verified it.
func (s *AuthService) GoogleLogin(ctx context.Context, profile GoogleProfile) (*AuthResult, error) {
	if profile.ID == "" || profile.Email == "" {
		return nil, utils.NewUnauthorizedError("Google account has no id or email")
	}

	user, err := s.users.GetByGoogleID(ctx, profile.ID)
	switch {
	case err == nil:
	case utils.IsNotFound(err):
		user, err = s.linkOrCreateGoogleUser(ctx, profile)
		if err != nil {
			return nil, err
		}
	default:
		return nil, err
	}

	if user.Status == models.UserDeleted || user.Status == models.UserSuspended {
		return nil, utils.NewForbiddenError("Account is not active")
	}
	return s.issue(user)
}

func (s *AuthService) linkOrCreateGoogleUser(ctx context.Context, profile GoogleProfile) (*models.User, error) {
	googleID := profile.ID

	existing, err := s.users.GetByEmail(ctx, profile.Email)
	if err == nil {
		if !profile.Verified() {
			return nil, utils.NewUnauthorizedError("Google email is not verified")
		}
		existing.GoogleID = &googleID
		if existing.ProfilePictureURL == "" {
			existing.ProfilePictureURL = profile.Picture
		}
		if err := s.users.repo.Save(ctx, existing); err != nil {
			return nil, utils.NewInternalError("link google account", err)
		}
		return existing, nil
	}
	if !utils.IsNotFound(err) {
		return nil, err
	}

	user := &models.User{
		GoogleID:          &googleID,
		Email:             profile.Email,
		FirstName:         profile.GivenName,
		LastName:          profile.FamilyName,
		ProfilePictureURL: profile.Picture,
		UserRole:          models.RoleStartup,
		Status:            models.UserPendingApproval,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	s.sendWelcome(user)
	return user, nil
}

func (s *AuthService) issue(user *models.User) (*AuthResult, error) {
	access, err := s.tokens.GenerateAccessToken(user.ID, user.Email, string(user.UserRole))
	if err != nil {
		return nil, utils.NewInternalError("sign access token", err)
	}
	refresh, err := s.tokens.GenerateRefreshToken(user.ID)
	if err != nil {
		return nil, utils.NewInternalError("sign refresh token", err)
	}
	return &AuthResult{AccessToken: access, RefreshToken: refresh, User: user}, nil
}

func (s *AuthService) sendWelcome(user *models.User) {
	if s.email == nil || s.dispatcher == nil {
		return
	}
	to, name := user.Email, user.FirstName
	s.dispatcher.Enqueue(Task{
		Name: "email.welcome",
		Run: func(ctx context.Context) error {
			return s.email.SendWelcome(ctx, to, name)
		},
	})
}
