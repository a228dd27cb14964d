package auth

import (
	"context"
	"net"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loopbackConfig(t *testing.T) GoogleConfig {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())
	return GoogleConfig{ClientID: "client", RedirectURL: "http://" + addr + "/oauth/callback"}
}

// redirectWith simulates Google sending the browser back with extra params.
func redirectWith(t *testing.T, params url.Values, keepState bool) func(string) error {
	return func(authURL string) error {
		u, err := url.Parse(authURL)
		require.NoError(t, err)
		q := u.Query()
		if keepState {
			params.Set("state", q.Get("state"))
		}
		resp, err := http.Get(q.Get("redirect_uri") + "?" + params.Encode())
		if err != nil {
			return err
		}
		return resp.Body.Close()
	}
}

func TestNewOAuthConfigDefaults(t *testing.T) {
	c := NewOAuthConfig(GoogleConfig{ClientID: "id"})
	assert.Equal(t, DefaultRedirectURL, c.RedirectURL)
	assert.Equal(t, []string{"openid", "email", "profile", "https://www.googleapis.com/auth/gmail.send"}, c.Scopes)

	c = NewOAuthConfig(GoogleConfig{Scopes: " openid  email "})
	assert.Equal(t, []string{"openid", "email"}, c.Scopes)
}

func TestAuthURLRequestsOfflineConsent(t *testing.T) {
	u, err := url.Parse(AuthURL(NewOAuthConfig(GoogleConfig{ClientID: "id"}), "xyz"))
	require.NoError(t, err)
	q := u.Query()
	assert.Equal(t, "xyz", q.Get("state"))
	assert.Equal(t, "offline", q.Get("access_type"))
	assert.Equal(t, "consent", q.Get("prompt"))
	assert.Equal(t, "code", q.Get("response_type"))
	assert.True(t, strings.HasPrefix(u.String(), "https://accounts.google.com/"))
}

func TestAuthorizeReturnsGrant(t *testing.T) {
	flow := &CodeFlow{
		Config: NewOAuthConfig(loopbackConfig(t)),
		Open:   redirectWith(t, url.Values{"code": {"4/abc"}, "scope": {"openid email"}}, true),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	grant, err := flow.Authorize(ctx)
	require.NoError(t, err)
	assert.Equal(t, Grant{Code: "4/abc", Scope: "openid email"}, grant)
}

func TestAuthorizeRejectsForeignState(t *testing.T) {
	flow := &CodeFlow{
		Config: NewOAuthConfig(loopbackConfig(t)),
		Open:   redirectWith(t, url.Values{"code": {"4/abc"}, "state": {"forged"}}, false),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, err := flow.Authorize(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "state mismatch")
}

func TestAuthorizeReportsDenial(t *testing.T) {
	flow := &CodeFlow{
		Config: NewOAuthConfig(loopbackConfig(t)),
		Open:   redirectWith(t, url.Values{"error": {"access_denied"}}, true),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, err := flow.Authorize(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "access_denied")
}

func TestAuthorizeMissingCode(t *testing.T) {
	flow := &CodeFlow{
		Config: NewOAuthConfig(loopbackConfig(t)),
		Open:   redirectWith(t, url.Values{}, true),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, err := flow.Authorize(ctx)
	require.ErrorIs(t, err, ErrNoCode)
}

func TestAuthorizeHonoursContext(t *testing.T) {
	flow := &CodeFlow{
		Config: NewOAuthConfig(loopbackConfig(t)),
		Open:   func(string) error { return nil },
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := flow.Authorize(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}
