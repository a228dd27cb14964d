// ABOUTME: Tests for the cobra command tree against a scripted backend
// ABOUTME: Each test gets its own config file and local database
package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/zala/pages"
)

type env struct {
	t      *testing.T
	config string
	dbPath string
}

func newEnv(t *testing.T, h http.Handler) *env {
	t.Helper()
	t.Setenv("ZALA_API_URL", "")
	t.Setenv("ZALA_DB_PATH", "")

	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	dir := t.TempDir()
	cfg := filepath.Join(dir, "config.yaml")
	yaml := "api:\n  url: " + srv.URL + "\nlogging:\n  level: error\n"
	require.NoError(t, os.WriteFile(cfg, []byte(yaml), 0o600))
	return &env{t: t, config: cfg, dbPath: filepath.Join(dir, "zala.db")}
}

func (e *env) run(stdin string, args ...string) (string, string, error) {
	e.t.Helper()
	root := NewRootCommand("test")
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(append([]string{"--config", e.config, "--db-path", e.dbPath}, args...))
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func adaUser() map[string]any {
	return map[string]any{
		"user_id":  1,
		"username": "ada",
		"role":     "agent",
		"contact":  map[string]any{"first_name": "Ada", "last_name": "Lovelace", "email": "ada@example.com"},
	}
}

// zalaBackend answers login, user lookup and search.
func zalaBackend() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/login", func(w http.ResponseWriter, r *http.Request) {
		var in struct{ Username, Password string }
		_ = json.NewDecoder(r.Body).Decode(&in)
		if in.Password != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			writeJSON(w, map[string]any{"detail": "bad credentials"})
			return
		}
		writeJSON(w, adaUser())
	})
	mux.HandleFunc("GET /api/users/1", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, adaUser())
	})
	mux.HandleFunc("POST /api/contacts", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"contact_id": 10, "first_name": "Ada", "last_name": "Lovelace", "email": "ada@example.com"})
	})
	mux.HandleFunc("POST /api/users/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"user_id": 1, "username": "ada", "role": "user"})
	})
	mux.HandleFunc("POST /api/users/1/contacts/10", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, adaUser())
	})
	mux.HandleFunc("POST /api/searchLeads", func(w http.ResponseWriter, r *http.Request) {
		hit := func(first, email string) map[string]any {
			return map[string]any{
				"lead_id":  0,
				"business": first + " Realty",
				"contact":  map[string]any{"first_name": first, "last_name": "Smith", "email": email},
				"address":  map[string]any{"street_1": "1 Main St", "city": "Rochester", "state": "NY"},
				"source":   "db",
			}
		}
		writeJSON(w, map[string]any{
			"aggregated_leads": []map[string]any{hit("Zed", "zed@x.com"), hit("Amy", "amy@x.com")},
		})
	})
	return mux
}

func TestLoginThenWhoami(t *testing.T) {
	e := newEnv(t, zalaBackend())

	_, stderr, err := e.run("secret\n", "login", "ada")
	require.NoError(t, err)
	assert.Contains(t, stderr, "Login success! Hello, Ada Lovelace")

	out, _, err := e.run("", "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "Ada Lovelace (ID: 1)")
	assert.Contains(t, out, "Username: ada")
	assert.Contains(t, out, "Gmail:    not connected")

	out, _, err = e.run("", "logout")
	require.NoError(t, err)
	assert.Contains(t, out, "Logged out")

	_, _, err = e.run("", "whoami")
	assert.True(t, errors.Is(err, pages.ErrNotLoggedIn))
}

func TestSignupThenWhoami(t *testing.T) {
	e := newEnv(t, zalaBackend())

	_, stderr, err := e.run("Ada\nLovelace\nada@example.com\n555-0100\nsecret\nsecret\n", "signup", "ada")
	require.NoError(t, err)
	assert.Contains(t, stderr, "Account created! Hello, Ada")

	out, _, err := e.run("", "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "Ada Lovelace (ID: 1)")
}

func TestSignupPasswordMismatch(t *testing.T) {
	e := newEnv(t, zalaBackend())

	_, _, err := e.run("secret\nsecreT\n", "signup", "ada",
		"--first", "Ada", "--last", "Lovelace", "--email", "ada@example.com", "--phone", "555-0100")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Password and repeat password must be the same")

	_, _, err = e.run("", "whoami")
	assert.True(t, errors.Is(err, pages.ErrNotLoggedIn))
}

func TestLoginRejected(t *testing.T) {
	e := newEnv(t, zalaBackend())

	_, _, err := e.run("wrong\n", "login", "ada")
	require.Error(t, err)

	_, _, err = e.run("", "whoami")
	assert.True(t, errors.Is(err, pages.ErrNotLoggedIn))
}

func TestLoginMissingPassword(t *testing.T) {
	e := newEnv(t, zalaBackend())

	_, _, err := e.run("", "login", "ada")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Missing password")
}

func TestRequiresLogin(t *testing.T) {
	e := newEnv(t, zalaBackend())

	for _, args := range [][]string{
		{"search", "Rochester"},
		{"campaign", "list"},
		{"board", "list"},
		{"cleanup"},
		{"web"},
	} {
		t.Run(strings.Join(args, " "), func(t *testing.T) {
			_, _, err := e.run("", args...)
			require.Error(t, err)
			assert.True(t, errors.Is(err, pages.ErrNotLoggedIn), "got %v", err)
			assert.Contains(t, err.Error(), "zala login")
		})
	}
}

func TestSearchAndHistory(t *testing.T) {
	e := newEnv(t, zalaBackend())
	_, _, err := e.run("secret\n", "login", "ada")
	require.NoError(t, err)

	out, _, err := e.run("", "history")
	require.NoError(t, err)
	assert.Contains(t, out, "No searches yet")

	out, _, err = e.run("", "search", "Rochester,", "NY", "--sort", "name")
	require.NoError(t, err)
	assert.Contains(t, out, "Total: 2 lead(s)")
	amy := strings.Index(out, "Amy Smith")
	zed := strings.Index(out, "Zed Smith")
	require.NotEqual(t, -1, amy)
	require.NotEqual(t, -1, zed)
	assert.Less(t, amy, zed)

	out, _, err = e.run("", "history")
	require.NoError(t, err)
	assert.Contains(t, out, "Rochester, NY")
}

func TestArgumentErrors(t *testing.T) {
	e := newEnv(t, zalaBackend())

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"bad campaign id", []string{"viz", "campaign", "abc"}, "invalid campaign ID: abc"},
		{"zero board id", []string{"viz", "board", "0"}, "invalid board ID: 0"},
		{"empty draft update", []string{"drafts", "update", "5"}, "nothing to update"},
		{"start without picks", []string{"campaign", "start", "Rochester"}, "--pick"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := e.run("", tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestParseID(t *testing.T) {
	id, err := parseID("lead", "42")
	require.NoError(t, err)
	assert.Equal(t, 42, id)

	for _, bad := range []string{"", "-1", "0", "x1"} {
		_, err := parseID("lead", bad)
		assert.Error(t, err, bad)
	}
}

func TestMissingConfigFile(t *testing.T) {
	root := NewRootCommand("test")
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"--config", filepath.Join(t.TempDir(), "nope.yaml"), "history"})
	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading config file")
}
