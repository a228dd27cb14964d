// ABOUTME: Scripted Zala backend and fixtures shared by the handler tests
// ABOUTME: Routes are "METHOD /path" keys answered with a status and a JSON body
package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/harperreed/zala/api"
	"github.com/harperreed/zala/db"
	"github.com/harperreed/zala/models"
	"github.com/harperreed/zala/pages"
	"github.com/harperreed/zala/state"
)

type request struct {
	Method string
	Path   string
	Query  string
	Body   []byte
}

func (r request) key() string { return r.Method + " " + r.Path }

func (r request) decode(t *testing.T, v any) {
	t.Helper()
	if err := json.Unmarshal(r.Body, v); err != nil {
		t.Fatalf("decoding %s: %v", r.key(), err)
	}
}

// decodeInto is decode for route handlers, which have no *testing.T.
func (r request) decodeInto(v any) {
	_ = json.Unmarshal(r.Body, v)
}

type backend struct {
	server *httptest.Server

	mu       sync.Mutex
	routes   map[string]func(request) (int, any)
	requests []request
}

func newBackend(t *testing.T) *backend {
	t.Helper()
	b := &backend{routes: map[string]func(request) (int, any){}}
	b.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		req := request{Method: r.Method, Path: r.URL.Path, Query: r.URL.RawQuery, Body: body}

		b.mu.Lock()
		b.requests = append(b.requests, req)
		h, ok := b.routes[req.key()]
		b.mu.Unlock()

		status, out := http.StatusNotFound, any(map[string]any{"detail": "Not Found"})
		if ok {
			status, out = h(req)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if out != nil {
			_ = json.NewEncoder(w).Encode(out)
		}
	}))
	t.Cleanup(b.server.Close)
	return b
}

func (b *backend) on(route string, h func(request) (int, any)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.routes[route] = h
}

func (b *backend) reply(route string, status int, body any) {
	b.on(route, func(request) (int, any) { return status, body })
}

func (b *backend) matching(prefix string) []request {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []request
	for _, r := range b.requests {
		if strings.HasPrefix(r.key(), prefix) {
			out = append(out, r)
		}
	}
	return out
}

type fixture struct {
	backend *backend
	deps    pages.Deps
	store   *db.Store
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	b := newBackend(t)

	database, err := db.OpenDatabase(filepath.Join(t.TempDir(), "zala.db"))
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { _ = database.Close() })

	app := state.NewApp(10 * time.Millisecond)
	app.Auth.Set(&models.User{
		UserID:         1,
		Username:       "ada",
		GmailConnected: true,
		Contact:        &models.Contact{FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com"},
	})
	t.Cleanup(app.SideNav.Stop)

	return &fixture{
		backend: b,
		store:   db.NewStore(database),
		deps: pages.Deps{
			API:           api.New(b.server.URL),
			App:           app,
			AutosaveDelay: 20 * time.Millisecond,
			Now:           func() time.Time { return time.Date(2026, time.March, 4, 9, 0, 0, 0, time.UTC) },
		},
	}
}

func wireLead(id int, email string) map[string]any {
	return map[string]any{
		"lead_id":  id,
		"business": "Biz " + strconv.Itoa(id),
		"notes":    "",
		"contact":  map[string]any{"contact_id": id + 100, "first_name": "C", "last_name": strconv.Itoa(id), "email": email},
		"address":  map[string]any{"address_id": id + 200, "street_1": strconv.Itoa(id) + " Main St", "city": "Rochester", "state": "NY"},
	}
}

// wireCampaign builds a campaign whose leads have the given methods set.
func wireCampaign(id int, name string, leadIDs []int, methods map[int][]string) map[string]any {
	cls := []map[string]any{}
	for _, lid := range leadIDs {
		has := func(m string) bool {
			for _, v := range methods[lid] {
				if v == m {
					return true
				}
			}
			return false
		}
		cls = append(cls, map[string]any{
			"campaign_id":     id,
			"lead_id":         lid,
			"phone_contacted": has("phone"),
			"sms_contacted":   has("sms"),
			"email_contacted": has("email"),
		})
	}
	return map[string]any{"campaign_id": id, "campaign_name": name, "user_id": 1, "leads": cls}
}

// serveCampaign answers campaign 7 ("Q3") with leads 11 and 12.
func serveCampaign(f *fixture, methods map[int][]string) {
	f.backend.reply("GET /api/campaigns/7", http.StatusOK, wireCampaign(7, "Q3", []int{11, 12}, methods))
	f.backend.reply("GET /api/leads/11", http.StatusOK, wireLead(11, "eleven@x.com"))
	f.backend.reply("GET /api/leads/12", http.StatusOK, wireLead(12, ""))
}

// pipeline is board 3: step 31 holds lead 41, step 32 holds property 51,
// step 33 is empty.
func pipeline() map[string]any {
	return map[string]any{
		"board_id":   3,
		"board_name": "Pipeline",
		"user_id":    1,
		"board_steps": []map[string]any{
			{"board_step_id": 31, "board_id": 3, "board_column": 1, "step_name": "To Do",
				"leads": []map[string]any{{"lead_id": 41, "business": "Acme"}}},
			{"board_step_id": 32, "board_id": 3, "board_column": 2, "step_name": "Listings",
				"properties": []map[string]any{{"property_id": 51, "property_name": "House", "address_id": 61}}},
			{"board_step_id": 33, "board_id": 3, "board_column": 3, "step_name": "Done"},
		},
	}
}
