// ABOUTME: In-process fake of the Zala backend for API client tests
// ABOUTME: Routes by "METHOD /path" and records every request it sees
package api

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

type recordedRequest struct {
	Method string
	Path   string
	Query  string
	Header http.Header
	Body   []byte
}

func (r recordedRequest) key() string {
	return r.Method + " " + r.Path
}

func (r recordedRequest) decode(t *testing.T, v any) {
	t.Helper()
	if err := json.Unmarshal(r.Body, v); err != nil {
		t.Fatalf("decoding %s body %q: %v", r.key(), r.Body, err)
	}
}

type fakeBackend struct {
	t      *testing.T
	server *httptest.Server

	mu       sync.Mutex
	routes   map[string]http.HandlerFunc
	requests []recordedRequest
}

func newFakeBackend(t *testing.T) *fakeBackend {
	t.Helper()
	fb := &fakeBackend{t: t, routes: map[string]http.HandlerFunc{}}
	fb.server = httptest.NewServer(http.HandlerFunc(fb.serve))
	t.Cleanup(fb.server.Close)
	return fb
}

func (fb *fakeBackend) serve(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	rec := recordedRequest{
		Method: r.Method,
		Path:   r.URL.Path,
		Query:  r.URL.RawQuery,
		Header: r.Header.Clone(),
		Body:   body,
	}

	fb.mu.Lock()
	fb.requests = append(fb.requests, rec)
	h, ok := fb.routes[rec.key()]
	fb.mu.Unlock()

	if !ok {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"detail": "Not Found"}`))
		return
	}
	h(w, r)
}

func (fb *fakeBackend) handle(route string, h http.HandlerFunc) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	fb.routes[route] = h
}

// json registers a route answering status with body marshalled as JSON.
func (fb *fakeBackend) json(route string, status int, body any) {
	fb.handle(route, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if body != nil {
			_ = json.NewEncoder(w).Encode(body)
		}
	})
}

// raw registers a route answering status with a literal body.
func (fb *fakeBackend) raw(route string, status int, body string) {
	fb.handle(route, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	})
}

func (fb *fakeBackend) recorded() []recordedRequest {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	out := make([]recordedRequest, len(fb.requests))
	copy(out, fb.requests)
	return out
}

func (fb *fakeBackend) keys() []string {
	var keys []string
	for _, r := range fb.recorded() {
		keys = append(keys, r.key())
	}
	return keys
}

func (fb *fakeBackend) client() *Client {
	return New(fb.server.URL, WithDeviceID("device-1"))
}

func wireLead(id int) map[string]any {
	return map[string]any{
		"lead_id":  id,
		"business": "Acme",
		"contact":  map[string]any{"contact_id": id + 100, "first_name": "Ada", "last_name": "L", "email": "ada@example.com"},
		"address":  map[string]any{"address_id": id + 200, "street_1": "1 Main St", "city": "Henrietta", "state": "NY"},
	}
}

func wireCampaign(id int, name string, leadIDs ...int) map[string]any {
	leads := make([]map[string]any, 0, len(leadIDs))
	for _, l := range leadIDs {
		leads = append(leads, map[string]any{
			"phone_contacted": false, "sms_contacted": false, "email_contacted": false,
			"campaign": map[string]any{"campaign_id": id, "campaign_name": name},
			"lead":     map[string]any{"lead_id": l},
		})
	}
	return map[string]any{"campaign_id": id, "campaign_name": name, "user_id": 1, "leads": leads}
}
