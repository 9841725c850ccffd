package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func TestGoogleOAuthState(t *testing.T) {
	g := NewGoogleOAuth("client", "secret", "http://localhost:8080/api/auth/google/callback", "0123456789abcdef0123456789abcdef")
	assert.True(t, g.Enabled())

	authURL, cookieValue, err := g.Begin()
	require.NoError(t, err)
	u, err := url.Parse(authURL)
	require.NoError(t, err)
	state := u.Query().Get("state")
	require.NotEmpty(t, state)
	assert.Equal(t, "client", u.Query().Get("client_id"))

	assert.True(t, g.VerifyState(cookieValue, state))
	assert.False(t, g.VerifyState(cookieValue, "forged"))
	assert.False(t, g.VerifyState("tampered", state))

	other := NewGoogleOAuth("client", "secret", "", "another-key-another-key-another-")
	assert.False(t, other.VerifyState(cookieValue, state))
	assert.False(t, NewGoogleOAuth("", "", "", "k").Enabled())
}

func TestGoogleOAuthExchange(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/token":
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"access_token":"at","token_type":"Bearer","expires_in":3600}`))
		case "/userinfo":
			if r.Header.Get("Authorization") != "Bearer at" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			w.Write([]byte(`{"id":"g-42","email":"g@example.com","verified_email":true,"given_name":"Grace","family_name":"Hopper"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	g := NewGoogleOAuth("client", "secret", "http://localhost/cb", "0123456789abcdef0123456789abcdef")
	g.config.Endpoint = oauth2.Endpoint{AuthURL: srv.URL + "/auth", TokenURL: srv.URL + "/token"}
	g.userInfoURL = srv.URL + "/userinfo"

	profile, err := g.Exchange(context.Background(), "code")
	require.NoError(t, err)
	assert.Equal(t, "g-42", profile.ID)
	assert.Equal(t, "Grace", profile.GivenName)
	assert.True(t, profile.Verified())
}
