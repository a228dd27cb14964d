package pages

import (
	"context"
	"encoding/json"
	"io"
	"maps"
	"net/http"
	"net/http/httptest"
	"slices"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/harperreed/zala/api"
	"github.com/harperreed/zala/models"
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

// backend is a scripted Zala server. Handlers return (status, body).
type backend struct {
	t      *testing.T
	server *httptest.Server

	mu       sync.Mutex
	routes   map[string]func(request) (int, any)
	fallback func(request) (int, any)
	requests []request
}

func newBackend(t *testing.T) *backend {
	t.Helper()
	b := &backend{t: t, routes: map[string]func(request) (int, any){}}
	b.server = httptest.NewServer(http.HandlerFunc(b.serve))
	t.Cleanup(b.server.Close)
	return b
}

func (b *backend) serve(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	req := request{Method: r.Method, Path: r.URL.Path, Query: r.URL.RawQuery, Body: body}

	b.mu.Lock()
	b.requests = append(b.requests, req)
	h, ok := b.routes[req.key()]
	if !ok && b.fallback != nil {
		h, ok = b.fallback, true
	}
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
}

func (b *backend) on(route string, h func(request) (int, any)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.routes[route] = h
}

// otherwise handles requests no route matches.
func (b *backend) otherwise(h func(request) (int, any)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.fallback = h
}

func (b *backend) reply(route string, status int, body any) {
	b.on(route, func(request) (int, any) { return status, body })
}

func (b *backend) all() []request {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]request, len(b.requests))
	copy(out, b.requests)
	return out
}

func (b *backend) matching(prefix string) []request {
	var out []request
	for _, r := range b.all() {
		if strings.HasPrefix(r.key(), prefix) {
			out = append(out, r)
		}
	}
	return out
}

type recordingNotifier struct {
	mu        sync.Mutex
	successes []string
	errors    []string
}

func (n *recordingNotifier) Success(msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.successes = append(n.successes, msg)
}

func (n *recordingNotifier) Error(msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.errors = append(n.errors, msg)
}

func (n *recordingNotifier) oks() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.successes...)
}

func (n *recordingNotifier) errs() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.errors...)
}

type memSession struct {
	mu     sync.Mutex
	userID int
	ok     bool
}

func (m *memSession) SessionUserID(_ context.Context) (int, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.userID, m.ok, nil
}

func (m *memSession) SetSessionUserID(_ context.Context, id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.userID, m.ok = id, true
	return nil
}

func (m *memSession) ClearSession(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.userID, m.ok = 0, false
	return nil
}

type fixture struct {
	backend *backend
	notify  *recordingNotifier
	session *memSession
	deps    Deps
}

func newFixture(t *testing.T) *fixture {
	b := newBackend(t)
	n := &recordingNotifier{}
	s := &memSession{}
	return &fixture{
		backend: b,
		notify:  n,
		session: s,
		deps: Deps{
			API:           api.New(b.server.URL),
			App:           state.NewApp(10 * time.Millisecond),
			Notify:        n,
			Session:       s,
			AutosaveDelay: 30 * time.Millisecond,
			Now:           func() time.Time { return time.Date(2026, time.March, 4, 9, 0, 0, 0, time.UTC) },
		},
	}
}

func (f *fixture) login(gmail bool) *models.User {
	u := &models.User{
		UserID:         1,
		Username:       "ada",
		GmailConnected: gmail,
		Contact:        &models.Contact{FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com", Phone: "555-0100"},
	}
	f.deps.App.Auth.Set(u)
	return u
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

func wireCampaign(id int, name string, leads map[int][]string) map[string]any {
	var cls []map[string]any
	for _, lid := range slices.Sorted(maps.Keys(leads)) {
		has := func(m string) bool { return slices.Contains(leads[lid], m) }
		cls = append(cls, map[string]any{
			"campaign_id":     id,
			"lead_id":         lid,
			"phone_contacted": has("phone"),
			"sms_contacted":   has("sms"),
			"email_contacted": has("email"),
		})
	}
	if cls == nil {
		cls = []map[string]any{}
	}
	return map[string]any{"campaign_id": id, "campaign_name": name, "user_id": 1, "leads": cls}
}
