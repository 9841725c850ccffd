package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/securecookie"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"
)

const (
	googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"
	// OAuthStateCookie carries the signed state between login and callback.
	OAuthStateCookie = "oauth_state"
)

// GoogleOAuth drives the authorization code flow against Google.
type GoogleOAuth struct {
	config      *oauth2.Config
	cookie      *securecookie.SecureCookie
	userInfoURL string
}

func NewGoogleOAuth(clientID, clientSecret, redirectURL, cookieHashKey string) *GoogleOAuth {
	return &GoogleOAuth{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     endpoints.Google,
		},
		cookie:      securecookie.New([]byte(cookieHashKey), nil).MaxAge(600),
		userInfoURL: googleUserInfoURL,
	}
}

// Enabled reports whether client credentials are configured.
func (g *GoogleOAuth) Enabled() bool {
	return g != nil && g.config.ClientID != "" && g.config.ClientSecret != ""
}

// Begin returns the consent URL and the signed cookie value binding the state.
func (g *GoogleOAuth) Begin() (authURL, cookieValue string, err error) {
	state := uuid.NewString()
	cookieValue, err = g.cookie.Encode(OAuthStateCookie, state)
	if err != nil {
		return "", "", fmt.Errorf("sign oauth state: %w", err)
	}
	return g.config.AuthCodeURL(state, oauth2.AccessTypeOnline), cookieValue, nil
}

// VerifyState checks the state query parameter against the signed cookie.
func (g *GoogleOAuth) VerifyState(cookieValue, state string) bool {
	var expected string
	if err := g.cookie.Decode(OAuthStateCookie, cookieValue, &expected); err != nil {
		return false
	}
	return expected != "" && expected == state
}

// Exchange trades the code for a token and loads the Google profile.
func (g *GoogleOAuth) Exchange(ctx context.Context, code string) (*GoogleProfile, error) {
	token, err := g.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchange oauth code: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.userInfoURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := g.config.Client(ctx, token).Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch google profile: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch google profile: status %d", resp.StatusCode)
	}

	var profile GoogleProfile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, fmt.Errorf("decode google profile: %w", err)
	}
	return &profile, nil
}
