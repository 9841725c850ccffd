package controllers

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/startup-platform/middlewares"
	"github.com/yeremiapane/startup-platform/services"
	"github.com/yeremiapane/startup-platform/utils"
)

type AuthController struct {
	auth          *services.AuthService
	google        *services.GoogleOAuth
	frontendURL   string
	secureCookies bool
}

func NewAuthController(auth *services.AuthService, google *services.GoogleOAuth, frontendURL string, secureCookies bool) *AuthController {
	return &AuthController{
		auth:          auth,
		google:        google,
		frontendURL:   strings.TrimRight(frontendURL, "/"),
		secureCookies: secureCookies,
	}
}

// Login with email and password
func (ac *AuthController) Login(c *gin.Context) {
	var input struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if !bindJSON(c, &input, "Email and password are required") {
		return
	}

	result, err := ac.auth.Login(c.Request.Context(), input.Email, input.Password)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	respondOK(c, "Login successful", result)
}

// Register a new STARTUP or INVESTOR account
func (ac *AuthController) Register(c *gin.Context) {
	var input services.RegisterInput
	if !bindJSON(c, &input, "Invalid registration payload") {
		return
	}

	result, err := ac.auth.Register(c.Request.Context(), input)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "User registered", result)
}

// Me returns the authenticated user
func (ac *AuthController) Me(c *gin.Context) {
	user, err := ac.auth.Me(c.Request.Context(), middlewares.CurrentUserID(c))
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	respondOK(c, "Current user", user)
}

// Refresh issues a new access token
func (ac *AuthController) Refresh(c *gin.Context) {
	var input struct {
		RefreshToken string `json:"refreshToken" binding:"required"`
	}
	if !bindJSON(c, &input, "Refresh token is required") {
		return
	}

	result, err := ac.auth.Refresh(c.Request.Context(), input.RefreshToken)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	respondOK(c, "Token refreshed", result)
}

// GoogleLogin redirects to the Google consent screen
func (ac *AuthController) GoogleLogin(c *gin.Context) {
	if !ac.google.Enabled() {
		utils.RespondError(c, http.StatusServiceUnavailable, errors.New("Google login is not configured"))
		return
	}

	authURL, state, err := ac.google.Begin()
	if err != nil {
		utils.RespondAppError(c, utils.NewInternalError("begin google login", err))
		return
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(services.OAuthStateCookie, state, 600, "/", "", ac.secureCookies, true)
	c.Redirect(http.StatusFound, authURL)
}

// GoogleCallback finishes the OAuth flow and hands the tokens to the frontend
func (ac *AuthController) GoogleCallback(c *gin.Context) {
	if !ac.google.Enabled() {
		utils.RespondError(c, http.StatusServiceUnavailable, errors.New("Google login is not configured"))
		return
	}

	cookie, _ := c.Cookie(services.OAuthStateCookie)
	c.SetCookie(services.OAuthStateCookie, "", -1, "/", "", ac.secureCookies, true)

	if reason := c.Query("error"); reason != "" {
		ac.redirectFrontend(c, url.Values{"error": {reason}})
		return
	}
	if !ac.google.VerifyState(cookie, c.Query("state")) {
		ac.redirectFrontend(c, url.Values{"error": {"invalid_state"}})
		return
	}

	profile, err := ac.google.Exchange(c.Request.Context(), c.Query("code"))
	if err != nil {
		utils.ErrorLogger.WithError(err).Error("Google code exchange failed")
		ac.redirectFrontend(c, url.Values{"error": {"exchange_failed"}})
		return
	}

	result, err := ac.auth.GoogleLogin(c.Request.Context(), *profile)
	if err != nil {
		utils.ErrorLogger.WithFields(logrus.Fields{"email": profile.Email}).WithError(err).Warn("Google login rejected")
		ac.redirectFrontend(c, url.Values{"error": {"login_failed"}})
		return
	}
	ac.redirectFrontend(c, url.Values{
		"token":        {result.AccessToken},
		"refreshToken": {result.RefreshToken},
	})
}

func (ac *AuthController) redirectFrontend(c *gin.Context, query url.Values) {
	c.Redirect(http.StatusFound, ac.frontendURL+"/oauth2/callback?"+query.Encode())
}
