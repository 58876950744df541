package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/isdelr/circuitgen-be/internal/ai"
	"github.com/isdelr/circuitgen-be/internal/api/handlers"
	"github.com/isdelr/circuitgen-be/internal/auth"
	"github.com/isdelr/circuitgen-be/internal/config"
	"github.com/isdelr/circuitgen-be/internal/media"
	"github.com/isdelr/circuitgen-be/internal/metrics"
	"github.com/isdelr/circuitgen-be/internal/services"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Dependencies are the collaborators the HTTP layer is built from.
type Dependencies struct {
	Config     *config.Config
	Tokens     *auth.TokenIssuer
	Users      services.UserServiceProvider
	Circuits   services.CircuitServiceProvider
	Components services.ComponentServiceProvider
	Courses    services.CourseServiceProvider
	Generator  ai.Generator
	Images     media.ImageHost
}

// NewRouter creates and configures a new Chi router.
func NewRouter(deps Dependencies) *chi.Mux {
	r := chi.NewRouter()

	// Basic middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(metrics.Middleware)

	origins := deps.Config.Origins()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link", "Content-Disposition"},
		AllowCredentials: !deps.Config.CORS.AllowAll,
		MaxAge:           300,
	}))

	// Initialize handlers
	generateHandler := handlers.NewGenerateHandler(deps.Generator)
	userHandler := handlers.NewUserHandler(deps.Users, deps.Tokens)
	circuitHandler := handlers.NewCircuitHandler(deps.Circuits)
	componentHandler := handlers.NewComponentHandler(deps.Components)
	courseHandler := handlers.NewCourseHandler(deps.Courses)
	uploadHandler := handlers.NewUploadHandler(deps.Images)
	adminHandler := handlers.NewAdminHandler(deps.Config.Auth.AdminPassword)

	requireUser := auth.Middleware(deps.Tokens, deps.Users)

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", handlers.Health)

		// Model calls are the expensive part of the service.
		r.Group(func(r chi.Router) {
			if !deps.Config.Limits.Disabled {
				r.Use(httprate.LimitByIP(deps.Config.Limits.Requests, limitWindow(deps.Config.Limits.Window)))
			}
			r.Post("/generate", generateHandler.Diagram)
			r.Post("/generate-code", generateHandler.Code)
			r.Post("/generate-bom", generateHandler.BOM)
			r.Post("/generate-component-details", generateHandler.ComponentDetails)
		})

		r.Post("/register", userHandler.Register)
		r.Post("/login", userHandler.Login)

		r.Group(func(r chi.Router) {
			r.Use(requireUser)
			r.Get("/me", userHandler.GetMe)
			r.Delete("/me", userHandler.DeleteMe)
			r.Post("/save", circuitHandler.Save)
			r.Get("/recent", circuitHandler.Recent)
		})

		r.Route("/circuit/{id}", func(r chi.Router) {
			r.Get("/", circuitHandler.Get)
			r.Get("/bom.xlsx", circuitHandler.ExportBOM)
		})

		r.Route("/components", func(r chi.Router) {
			r.Get("/", componentHandler.GetAll)
			r.Post("/", componentHandler.Create)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", componentHandler.Get)
				r.Put("/", componentHandler.Update)
				r.Delete("/", componentHandler.Delete)
			})
		})

		r.Route("/ai-courses", func(r chi.Router) {
			r.Get("/", courseHandler.GetAll)
			r.Post("/", courseHandler.Create)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", courseHandler.Get)
				r.Put("/", courseHandler.Update)
				r.Delete("/", courseHandler.Delete)
			})
		})

		r.Post("/upload", uploadHandler.Upload)
		r.Post("/verify-password", adminHandler.VerifyPassword)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"detail":"Not Found"}`))
	})

	return r
}

func limitWindow(d time.Duration) time.Duration {
	if d <= 0 {
		return time.Minute
	}
	return d
}
