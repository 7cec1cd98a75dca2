package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dgallion1/folio/internal/catalog"
	"github.com/dgallion1/folio/internal/config"
	"github.com/dgallion1/folio/internal/render"
	"github.com/dgallion1/folio/internal/view"
)

// Server is the HTTP API server for folio.
type Server struct {
	router       chi.Router
	orchestrator *render.Orchestrator
	renderer     *render.Renderer
	catalog      *catalog.Catalog
	views        *view.Store
	log          *slog.Logger
	cfg          config.Config
}

// NewServer creates and configures the HTTP server.
func NewServer(orch *render.Orchestrator, views *view.Store, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		orchestrator: orch,
		renderer:     orch.Renderer(),
		catalog:      orch.Renderer().Catalog(),
		views:        views,
		log:          log,
		cfg:          cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	// Public endpoints.
	r.Get("/health", s.handleHealth)

	r.Group(func(r chi.Router) {
		if s.cfg.APIKey != "" {
			r.Use(AuthMiddleware(s.cfg.APIKey, s.log))
		}

		r.Get("/api/books", s.handleListBooks)
		r.Get("/api/books/{book}/pages/{page}", s.handleGetPage)
		r.Post("/api/books/{book}/prerender", s.handlePrerender)
		r.Get("/api/jobs/{jobID}", s.handleJobStatus)
		r.Get("/api/stats/render", s.handleRenderStats)

		r.Post("/api/views", s.handleCreateView)
		r.Route("/api/views/{viewID}", func(r chi.Router) {
			r.Get("/", s.handleGetView)
			r.Delete("/", s.handleDeleteView)
			r.Post("/navigate", s.handleNavigate)
			r.Post("/click", s.handleClick)
			r.Get("/selection", s.handleGetSelection)
			r.Delete("/selection", s.handleDeleteSelection)
			r.Post("/selection/clear", s.handleClearSelection)
			r.Post("/blocks/toggle", s.handleToggleBlocks)
			r.Post("/blocks", s.handleCreateBlock)
			r.Get("/events", s.handleEvents)
			r.Get("/export.docx", s.handleExport)
		})
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
