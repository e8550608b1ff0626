// Package rest wires the HTTP surface of the catalog API.
package rest

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"fishdex/application/ports"
	"fishdex/application/services"
	"fishdex/infrastructure/config"
	"fishdex/interfaces/http/rest/handlers"
	"fishdex/interfaces/http/rest/middleware"
	"fishdex/pkg/auth"
)

// Router creates and configures the HTTP router
type Router struct {
	config     *config.Config
	marks      *services.MarkService
	accounts   *services.AccountService
	progress   ports.ProgressRepository
	feedback   ports.FeedbackRepository
	geocoder   ports.Geocoder
	recognizer ports.Recognizer
	tokens     *auth.JWTManager
	logger     *zap.Logger
}

// NewRouter creates a new router instance
func NewRouter(
	cfg *config.Config,
	marks *services.MarkService,
	accounts *services.AccountService,
	progress ports.ProgressRepository,
	feedback ports.FeedbackRepository,
	geocoder ports.Geocoder,
	recognizer ports.Recognizer,
	tokens *auth.JWTManager,
	logger *zap.Logger,
) *Router {
	return &Router{
		config:     cfg,
		marks:      marks,
		accounts:   accounts,
		progress:   progress,
		feedback:   feedback,
		geocoder:   geocoder,
		recognizer: recognizer,
		tokens:     tokens,
		logger:     logger,
	}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()

	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.Logger(rt.logger))

	if rt.config.EnableCORS {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   []string{"*"},
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID", "X-User-ID"},
			ExposedHeaders:   []string{"X-Request-ID"},
			AllowCredentials: false,
			MaxAge:           300,
		}))
	}

	router.Get("/health", rt.healthCheck)
	router.Get("/ready", rt.readinessCheck)

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Identify(rt.tokens, rt.logger))

		r.Route("/marks", func(r chi.Router) {
			marksHandler := handlers.NewMarksHandler(rt.marks, rt.logger)
			r.Get("/", marksHandler.List)
			r.Post("/", marksHandler.Create)
			r.Post("/batch", marksHandler.BatchCreate)
			r.Delete("/{markID}", marksHandler.Delete)
		})

		r.Route("/progress", func(r chi.Router) {
			progressHandler := handlers.NewProgressHandler(rt.progress, rt.logger)
			r.Get("/", progressHandler.Get)
			r.Put("/", progressHandler.Save)
		})

		r.Route("/account", func(r chi.Router) {
			accountHandler := handlers.NewAccountHandler(rt.accounts, rt.logger)
			r.Post("/bind", accountHandler.Bind)
			r.Post("/recover", accountHandler.Recover)
		})

		r.Post("/recognize", handlers.NewRecognizeHandler(rt.recognizer, rt.logger).Recognize)
		r.Get("/geocode/reverse", handlers.NewGeocodeHandler(rt.geocoder, rt.logger).Reverse)

		r.Route("/feedback", func(r chi.Router) {
			feedbackHandler := handlers.NewFeedbackHandler(rt.feedback, rt.logger)
			r.Post("/", feedbackHandler.Create)
			r.Get("/", feedbackHandler.List)
		})
	})

	return router
}

func (rt *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy"}`))
}

func (rt *Router) readinessCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ready"}`))
}
