// Package server exposes the meal planner over HTTP.
package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"meal-planner/internal/app"
	"meal-planner/internal/metrics"
)

// Options configures a Server.
type Options struct {
	AllowedOrigins []string
	// DataDir is reported on by the health endpoint.
	DataDir string
	Logger  *zap.Logger
}

// Server routes HTTP requests to the App.
type Server struct {
	app       *app.App
	collector *metrics.Collector
	opts      Options
	logger    *zap.Logger
}

// New creates a Server for a.
func New(a *app.App, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if len(opts.AllowedOrigins) == 0 {
		opts.AllowedOrigins = []string{"*"}
	}
	return &Server{
		app:       a,
		collector: a.Collector(),
		opts:      opts,
		logger:    opts.Logger,
	}
}

// Routes builds the router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.logger, s.collector))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", UserHeader},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", s.handleHealth)
	r.Get("/usage", s.handleUsage)
	r.Method(http.MethodGet, "/metrics", s.collector.Handler())

	r.Group(func(r chi.Router) {
		r.Use(requireUser)
		r.Use(middleware.Timeout(3 * time.Minute))

		r.Get("/preferences", s.handleGetPreferences)
		r.Put("/preferences", s.handlePutPreferences)

		r.Route("/plans", func(r chi.Router) {
			r.Post("/", s.handleCreatePlan)
			r.Get("/", s.handleListPlans)
			r.Get("/current", s.handleCurrentPlan)
			r.Get("/{id}", s.handleGetPlan)
			r.Post("/{id}/send", s.handleSendPlan)
			r.Get("/{id}/shopping-list", s.handleShoppingList)
			r.Delete("/{id}/shopping-list", s.handleDiscardShoppingList)
			r.Post("/{id}/shopping-list/send", s.handleSendShoppingList)
		})

		r.Route("/recipes", func(r chi.Router) {
			r.Get("/", s.handleListRecipes)
			r.Get("/{id}", s.handleGetRecipe)
			r.Post("/generate", s.handleGenerateRecipe)
			r.Post("/import", s.handleImportRecipe)
		})

		r.Route("/pantry", func(r chi.Router) {
			r.Get("/", s.handleListPantry)
			r.Put("/", s.handlePutPantry)
			r.Delete("/{id}", s.handleDeletePantry)
			r.Post("/{id}/consume", s.handleConsumePantry)
		})

		r.Route("/families", func(r chi.Router) {
			r.Get("/", s.handleGetFamily)
			r.Post("/", s.handleCreateFamily)
			r.Post("/invites", s.handleInvite)
			r.Post("/join", s.handleJoin)
			r.Put("/telegram", s.handleSetTelegram)
		})
	})

	return r
}
