// ABOUTME: Signup, password and Google login, autologin from the saved session, and logout
// ABOUTME: A successful login or signup stores the user and remembers their id locally
package pages

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/badoux/checkmail"
	"go.uber.org/zap"

	"github.com/harperreed/zala/api"
	"github.com/harperreed/zala/models"
)

// LoginErrorMessage is shown when the backend rejects a login.
const LoginErrorMessage = "Internal error - please try again later"

// FormError maps form fields to what is wrong with them.
type FormError map[string]string

func (e FormError) Error() string {
	keys := make([]string, 0, len(e))
	for k := range e {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	msgs := make([]string, len(keys))
	for i, k := range keys {
		msgs[i] = e[k]
	}
	return strings.Join(msgs, "; ")
}

type AuthController struct {
	d Deps
}

func NewAuthController(d Deps) *AuthController {
	return &AuthController{d: d.withDefaults()}
}

func validateLogin(username, password string) error {
	if username == "" {
		return FormError{"userName": "Missing user name"}
	}
	if password == "" {
		return FormError{"password": "Missing password"}
	}
	return nil
}

func (a *AuthController) Login(ctx context.Context, username, password string) (models.User, error) {
	if err := validateLogin(username, password); err != nil {
		return models.User{}, err
	}

	user, err := a.d.API.Login(ctx, username, password)
	if err != nil {
		a.d.reportError("logging in", err, WithMessage(LoginErrorMessage))
		return models.User{}, err
	}
	return user, a.signIn(ctx, user, fmt.Sprintf("Login success! Hello, %s", user.DisplayName()))
}

// SignupForm is what a new account is created from.
type SignupForm struct {
	Username       string
	FirstName      string
	LastName       string
	Email          string
	Phone          string
	Password       string
	RepeatPassword string
}

func validateSignup(f SignupForm) error {
	required := []struct{ key, value, msg string }{
		{"userName", f.Username, "Missing user name"},
		{"email", f.Email, "Missing email"},
		{"firstName", f.FirstName, "Missing first name"},
		{"lastName", f.LastName, "Missing last name"},
		{"phone", f.Phone, "Missing phone"},
		{"password", f.Password, "Missing password"},
		{"rePassword", f.RepeatPassword, "Missing repeat password"},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return FormError{r.key: r.msg}
		}
	}
	if checkmail.ValidateFormat(strings.TrimSpace(f.Email)) != nil {
		return FormError{"email": "Invalid email"}
	}
	if f.Password != f.RepeatPassword {
		return FormError{"passwordEquals": "Password and repeat password must be the same"}
	}
	return nil
}

// Signup creates the contact, then a blank user, then links the two and
// signs the new user in. A contact left without a user is deleted.
func (a *AuthController) Signup(ctx context.Context, f SignupForm) (models.User, error) {
	if err := validateSignup(f); err != nil {
		return models.User{}, err
	}

	contact, err := a.d.API.CreateContact(ctx, models.Contact{
		FirstName: strings.TrimSpace(f.FirstName),
		LastName:  strings.TrimSpace(f.LastName),
		Email:     strings.TrimSpace(f.Email),
		Phone:     strings.TrimSpace(f.Phone),
	})
	if err != nil {
		a.d.reportError("creating signup contact", err, WithMessage(LoginErrorMessage))
		return models.User{}, err
	}

	blank, err := a.d.API.CreateUser(ctx, api.NewUser{
		Username: strings.TrimSpace(f.Username),
		Password: f.Password,
		Role:     api.DefaultRole,
	})
	if err != nil {
		if delErr := a.d.API.DeleteContact(context.WithoutCancel(ctx), contact.ContactID); delErr != nil {
			a.d.Logger.Warn("signup contact left behind",
				zap.Int("contact_id", contact.ContactID),
				zap.Error(delErr))
		}
		a.d.reportError("creating user", err, WithMessage(LoginErrorMessage))
		return models.User{}, err
	}

	user, err := a.d.API.LinkContactToUser(ctx, blank.UserID, contact.ContactID)
	if err != nil {
		a.d.reportError("linking contact to user", err, WithMessage(LoginErrorMessage))
		return models.User{}, err
	}
	return user, a.signIn(ctx, user, fmt.Sprintf("Account created! Hello, %s", contact.FirstName))
}

// LoginGoogle exchanges a Google authorization code or ID token. With a
// TargetUserID it links Google to that existing account.
func (a *AuthController) LoginGoogle(ctx context.Context, in api.GoogleLogin) (models.User, error) {
	user, err := a.d.API.LoginGoogle(ctx, in)
	if err != nil {
		a.d.reportError("logging in with google", err, WithMessage(err.Error()))
		return models.User{}, err
	}
	a.d.App.GoogleRequired.Set(false)
	return user, a.signIn(ctx, user, fmt.Sprintf("Login success! Hello, %s", user.DisplayName()))
}

func (a *AuthController) signIn(ctx context.Context, user models.User, greeting string) error {
	if a.d.Session != nil {
		if err := a.d.Session.SetSessionUserID(ctx, user.UserID); err != nil {
			return fmt.Errorf("saving session: %w", err)
		}
	}
	a.d.App.Auth.Set(&user)
	a.d.Notify.Success(greeting)
	return nil
}

// AutoLogin restores the saved session. It returns nil when there is none.
func (a *AuthController) AutoLogin(ctx context.Context) (*models.User, error) {
	if a.d.Session == nil {
		return nil, nil
	}
	id, ok, err := a.d.Session.SessionUserID(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading session: %w", err)
	}
	if !ok {
		return nil, nil
	}

	user, err := a.d.API.GetUser(ctx, id)
	if err != nil {
		a.d.Logger.Warn("autologin failed", zap.Int("user_id", id), zap.Error(err))
		return nil, err
	}
	a.d.App.Auth.Set(&user)
	return &user, nil
}

// Logout forgets the session and resets every state slice.
func (a *AuthController) Logout(ctx context.Context) error {
	a.d.App.Reset()
	a.d.API.ClearSignal()
	if a.d.Session == nil {
		return nil
	}
	if err := a.d.Session.ClearSession(ctx); err != nil {
		return fmt.Errorf("clearing session: %w", err)
	}
	return nil
}
