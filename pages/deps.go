// ABOUTME: Shared dependencies and error reporting for page controllers
// ABOUTME: Notifier is the toast/snackbar seam implemented by the CLI and TUI
package pages

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/harperreed/zala/api"
	"github.com/harperreed/zala/debounce"
	"github.com/harperreed/zala/state"
)

// ConnectionErrorMessage is shown when a backend call fails unexpectedly.
const ConnectionErrorMessage = "Connection error... please try again later"

var (
	ErrNotLoggedIn     = errors.New("not logged in")
	ErrGoogleRequired  = errors.New("connect a Google account to send email")
	ErrNothingSelected = errors.New("no leads selected")
)

// Notifier surfaces short user-facing messages.
type Notifier interface {
	Success(msg string)
	Error(msg string)
}

type nopNotifier struct{}

func (nopNotifier) Success(string) {}
func (nopNotifier) Error(string)   {}

// SessionStore persists the logged-in user id between runs.
type SessionStore interface {
	SessionUserID(ctx context.Context) (int, bool, error)
	SetSessionUserID(ctx context.Context, userID int) error
	ClearSession(ctx context.Context) error
}

type Deps struct {
	API     *api.Client
	App     *state.App
	Notify  Notifier
	Logger  *zap.Logger
	Session SessionStore

	// AutosaveDelay is the quiet period before title and notes are saved.
	AutosaveDelay time.Duration
	// Now is the clock used for default campaign titles.
	Now func() time.Time
}

func (d Deps) withDefaults() Deps {
	if d.Notify == nil {
		d.Notify = nopNotifier{}
	}
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if d.AutosaveDelay <= 0 {
		d.AutosaveDelay = debounce.DefaultDelay
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	return d
}

type errorOptions struct {
	msg  string
	show bool
}

// ErrorOption adjusts how reportError surfaces a failure.
type ErrorOption func(*errorOptions)

// Quietly logs the failure without notifying the user.
func Quietly() ErrorOption {
	return func(o *errorOptions) { o.show = false }
}

// WithMessage replaces the user-facing message.
func WithMessage(msg string) ErrorOption {
	return func(o *errorOptions) { o.msg = msg }
}

// reportError logs err with where it happened and, unless silenced, shows a
// generic message. Aborted requests are not reported at all.
func (d Deps) reportError(where string, err error, opts ...ErrorOption) {
	if err == nil || api.IsCanceled(err) {
		return
	}
	o := errorOptions{msg: ConnectionErrorMessage, show: true}
	for _, opt := range opts {
		opt(&o)
	}
	d.Logger.Error("internal error "+where, zap.Error(err))
	if o.show && o.msg != "" {
		d.Notify.Error(o.msg)
	}
}
