// ABOUTME: Web UI server with embedded templates
// ABOUTME: Read-only dashboard of campaigns, boards, graphs and search history at localhost:8080
package web

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/harperreed/zala/db"
	"github.com/harperreed/zala/handlers"
	"github.com/harperreed/zala/models"
	"github.com/harperreed/zala/pages"
	"github.com/harperreed/zala/viz"
)

//go:embed templates/*.html
var templatesFS embed.FS

type Server struct {
	deps      pages.Deps
	store     *db.Store
	campaigns *handlers.CampaignHandlers
	boards    *handlers.BoardHandlers
	templates *template.Template
	logger    *zap.Logger

	// mu serializes requests; the page controllers share one app state.
	mu sync.Mutex
}

func NewServer(d pages.Deps, store *db.Store) (*Server, error) {
	funcMap := template.FuncMap{
		"percent": func(n, total int) int {
			if total == 0 {
				return 0
			}
			return n * 100 / total
		},
		"when": func(t time.Time) string {
			return t.Local().Format("2006-01-02 15:04")
		},
	}

	tmpl, err := template.New("").Funcs(funcMap).ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		deps:      d,
		store:     store,
		campaigns: handlers.NewCampaignHandlers(d),
		boards:    handlers.NewBoardHandlers(d),
		templates: tmpl,
		logger:    logger,
	}, nil
}

// Handler routes the dashboard pages.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleDashboard)
	mux.HandleFunc("GET /campaigns/{id}", s.handleCampaign)
	mux.HandleFunc("GET /boards", s.handleBoards)
	mux.HandleFunc("GET /searches", s.handleSearches)
	mux.HandleFunc("GET /graph/{kind}/{id}", s.handleGraph)
	return mux
}

// Start serves until ctx is cancelled.
func (s *Server) Start(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("starting web server", zap.String("addr", addr))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

type campaignRow struct {
	ID        int
	Name      string
	Leads     int
	Phone     int
	SMS       int
	Email     int
	Untouched int
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	camps, err := pages.PastCampaigns(r.Context(), s.deps)
	s.mu.Unlock()
	if err != nil {
		s.fail(w, "listing campaigns", err)
		return
	}

	rows := make([]campaignRow, 0, len(camps))
	var total campaignRow
	for _, c := range camps {
		st := viz.GenerateCampaignStats(c)
		row := campaignRow{
			ID:        c.CampaignID,
			Name:      c.CampaignName,
			Leads:     st.Leads,
			Phone:     st.Contacted[models.ContactPhone],
			SMS:       st.Contacted[models.ContactSMS],
			Email:     st.Contacted[models.ContactEmail],
			Untouched: st.Untouched,
		}
		rows = append(rows, row)
		total.Leads += row.Leads
		total.Untouched += row.Untouched
	}

	s.renderTemplate(w, "layout.html", map[string]any{
		"Title":           "Dashboard",
		"ContentTemplate": "dashboard-content",
		"Campaigns":       rows,
		"Total":           total,
	})
}

func (s *Server) handleCampaign(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	s.mu.Lock()
	_, camp, err := s.campaigns.GetCampaign(r.Context(), nil, handlers.GetCampaignInput{CampaignID: id})
	s.mu.Unlock()
	if err != nil {
		s.fail(w, "loading campaign", err)
		return
	}

	s.renderTemplate(w, "layout.html", map[string]any{
		"Title":           camp.CampaignName,
		"ContentTemplate": "campaign-content",
		"Campaign":        camp,
	})
}

func (s *Server) handleBoards(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	_, out, err := s.boards.ListBoards(r.Context(), nil, handlers.ListBoardsInput{})
	s.mu.Unlock()
	if err != nil {
		s.fail(w, "listing boards", err)
		return
	}

	s.renderTemplate(w, "layout.html", map[string]any{
		"Title":           "Boards",
		"ContentTemplate": "boards-content",
		"Boards":          out.Boards,
	})
}

func (s *Server) handleSearches(w http.ResponseWriter, r *http.Request) {
	records, err := s.store.RecentSearches(r.Context(), 50)
	if err != nil {
		s.fail(w, "reading search history", err)
		return
	}

	s.renderTemplate(w, "layout.html", map[string]any{
		"Title":           "Searches",
		"ContentTemplate": "searches-content",
		"Searches":        records,
	})
}

func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var build func(context.Context, pages.Deps, int) (viz.Graph, error)
	switch r.PathValue("kind") {
	case "campaign":
		build = handlers.CampaignGraph
	case "board":
		build = handlers.BoardGraph
	default:
		http.Error(w, "Invalid graph type", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	g, err := build(r.Context(), s.deps, id)
	s.mu.Unlock()
	if err != nil {
		s.fail(w, "drawing graph", err)
		return
	}

	w.Header().Set("Content-Type", "image/svg+xml")
	if _, err := w.Write(g.SVG); err != nil {
		s.logger.Debug("writing graph", zap.Error(err))
	}
}

func pathID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil || id <= 0 {
		http.Error(w, "Invalid ID", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

func (s *Server) fail(w http.ResponseWriter, what string, err error) {
	s.logger.Warn(what+" failed", zap.Error(err))
	status := http.StatusBadGateway
	if errors.Is(err, pages.ErrNotLoggedIn) {
		status = http.StatusUnauthorized
	}
	http.Error(w, err.Error(), status)
}

func (s *Server) renderTemplate(w http.ResponseWriter, name string, data any) {
	// layout.html picks the content block from data["ContentTemplate"]
	if err := s.templates.ExecuteTemplate(w, name, data); err != nil {
		s.logger.Error("template error", zap.String("template", name), zap.Error(err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
