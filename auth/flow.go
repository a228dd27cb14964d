// ABOUTME: Loopback authorization-code flow: open the consent page, wait for the redirect
// ABOUTME: Returns the code and granted scopes for /api/login/google
package auth

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"os/exec"
	"runtime"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

var ErrNoCode = errors.New("google did not return an authorization code")

// Grant is what Google redirected back with.
type Grant struct {
	Code  string
	Scope string
}

// CodeFlow runs the browser side of the Google login.
type CodeFlow struct {
	Config *oauth2.Config
	// Open shows the consent page to the user. Defaults to the system browser.
	Open   func(authURL string) error
	Logger *zap.Logger
}

type callbackResult struct {
	grant Grant
	err   error
}

// Authorize serves the redirect URL on loopback, opens the consent page and
// waits for Google to redirect back or ctx to end.
func (f *CodeFlow) Authorize(ctx context.Context) (Grant, error) {
	logger := f.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	open := f.Open
	if open == nil {
		open = OpenBrowser
	}

	redirect, err := url.Parse(f.Config.RedirectURL)
	if err != nil {
		return Grant{}, fmt.Errorf("invalid redirect url: %w", err)
	}
	ln, err := net.Listen("tcp", redirect.Host)
	if err != nil {
		return Grant{}, fmt.Errorf("failed to listen for the oauth callback: %w", err)
	}

	state := uuid.NewString()
	results := make(chan callbackResult, 1)
	deliver := func(r callbackResult) {
		select {
		case results <- r:
		default:
		}
	}

	mux := http.NewServeMux()
	mux.HandleFunc(redirect.Path, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		switch {
		case q.Get("state") != state:
			http.Error(w, "state mismatch", http.StatusBadRequest)
			deliver(callbackResult{err: errors.New("oauth state mismatch")})
		case q.Get("error") != "":
			http.Error(w, "authorization was cancelled", http.StatusBadRequest)
			deliver(callbackResult{err: fmt.Errorf("google authorization failed: %s", q.Get("error"))})
		case q.Get("code") == "":
			http.Error(w, "no code", http.StatusBadRequest)
			deliver(callbackResult{err: ErrNoCode})
		default:
			_, _ = fmt.Fprint(w, "Authorization successful! You can close this window.")
			deliver(callbackResult{grant: Grant{Code: q.Get("code"), Scope: q.Get("scope")}})
		}
	})

	server := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			deliver(callbackResult{err: err})
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	authURL := AuthURL(f.Config, state)
	logger.Debug("opening google consent page", zap.String("url", authURL))
	if err := open(authURL); err != nil {
		logger.Warn("could not open a browser", zap.Error(err))
	}

	select {
	case r := <-results:
		return r.grant, r.err
	case <-ctx.Done():
		return Grant{}, ctx.Err()
	}
}

// OpenBrowser opens url in the platform's default browser.
func OpenBrowser(url string) error {
	var cmd string
	var args []string

	switch runtime.GOOS {
	case "windows":
		cmd = "cmd"
		args = []string{"/c", "start"}
	case "darwin":
		cmd = "open"
	default:
		cmd = "xdg-open"
	}
	args = append(args, url)
	return exec.Command(cmd, args...).Start()
}
