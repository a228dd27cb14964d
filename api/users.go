// ABOUTME: Login, Google login and user endpoints
// ABOUTME: Google login accepts an auth code (with optional reconnect target) or an ID token
package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/harperreed/zala/models"
	"github.com/harperreed/zala/normalize"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (c *Client) Login(ctx context.Context, username, password string) (models.User, error) {
	w, err := call[models.WireUser](ctx, c, TagNone, http.MethodPost, "/api/login", nil, loginRequest{
		Username: username,
		Password: password,
	})
	if err != nil {
		return models.User{}, err
	}
	return normalize.User(w)
}

// GoogleLogin is either an authorization code exchange (Code, optional
// Scope, optional TargetUserID to link Google to an existing user) or an
// ID-token login.
type GoogleLogin struct {
	Code         string `json:"code,omitempty"`
	Scope        string `json:"scope,omitempty"`
	TargetUserID *int   `json:"target_user_id,omitempty"`
	IDToken      string `json:"id_token,omitempty"`
}

func (c *Client) LoginGoogle(ctx context.Context, in GoogleLogin) (models.User, error) {
	if in.Code == "" && in.IDToken == "" {
		return models.User{}, fmt.Errorf("google login requires a code or an id token")
	}
	w, err := call[models.WireUser](ctx, c, TagNone, http.MethodPost, "/api/login/google", nil, in)
	if err != nil {
		return models.User{}, err
	}
	return normalize.User(w)
}

func (c *Client) GetUser(ctx context.Context, userID int) (models.User, error) {
	w, err := call[models.WireUser](ctx, c, TagNone, http.MethodGet, fmt.Sprintf("/api/users/%d", userID), nil, nil)
	if err != nil {
		return models.User{}, err
	}
	return normalize.User(w)
}

// DefaultRole is given to users created by signup.
const DefaultRole = "user"

type NewUser struct {
	Username   string `json:"username"`
	Password   string `json:"password"`
	ProfilePic string `json:"profile_pic"`
	Role       string `json:"role"`
}

// CreateUser registers a user without contact details. Link a contact
// with LinkContactToUser.
func (c *Client) CreateUser(ctx context.Context, in NewUser) (models.User, error) {
	if in.Role == "" {
		in.Role = DefaultRole
	}
	w, err := call[models.WireUser](ctx, c, TagNone, http.MethodPost, "/api/users/", nil, in)
	if err != nil {
		return models.User{}, err
	}
	return normalize.User(w)
}

func (c *Client) LinkContactToUser(ctx context.Context, userID, contactID int) (models.User, error) {
	w, err := call[models.WireUser](ctx, c, TagNone, http.MethodPost,
		fmt.Sprintf("/api/users/%d/contacts/%d", userID, contactID), nil, struct{}{})
	if err != nil {
		return models.User{}, err
	}
	return normalize.User(w)
}
