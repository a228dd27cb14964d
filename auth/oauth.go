// ABOUTME: OAuth configuration for the Google authorization-code login
// ABOUTME: The code is handed to the backend, which performs the token exchange
package auth

import (
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// DefaultScopes lets the backend identify the user and send mail as them.
const DefaultScopes = "openid email profile https://www.googleapis.com/auth/gmail.send"

// DefaultRedirectURL is the loopback address the browser is sent back to.
const DefaultRedirectURL = "http://localhost:8085/oauth/callback"

// GoogleConfig holds the OAuth client settings.
type GoogleConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	// Scopes is space separated, as Google writes it.
	Scopes string
}

// NewOAuthConfig creates the oauth2 config for Google.
func NewOAuthConfig(c GoogleConfig) *oauth2.Config {
	redirect := c.RedirectURL
	if redirect == "" {
		redirect = DefaultRedirectURL
	}
	scopes := strings.Fields(c.Scopes)
	if len(scopes) == 0 {
		scopes = strings.Fields(DefaultScopes)
	}

	return &oauth2.Config{
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		RedirectURL:  redirect,
		Scopes:       scopes,
		Endpoint:     google.Endpoint,
	}
}

// AuthURL is the consent page for state. Offline access with a forced
// consent prompt makes Google issue the refresh token the backend needs
// to send mail later.
func AuthURL(config *oauth2.Config, state string) string {
	return config.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"))
}
