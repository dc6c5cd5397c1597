package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	"github.com/crhubottom/school-flow-project/internal/api/handler"
	"github.com/crhubottom/school-flow-project/internal/api/middleware"
	"github.com/crhubottom/school-flow-project/internal/auth"
	"github.com/crhubottom/school-flow-project/internal/service"
)

// NewRouter creates a new HTTP router with all routes configured. The browser
// frontend talks to this API cross-origin, hence the CORS layer.
func NewRouter(
	groups *service.GroupService,
	verifier auth.Verifier,
	mirror *service.ProfileMirror,
	allowedOrigins []string,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimw.Recoverer)
	r.Use(middleware.Logging)
	r.Use(cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	}).Handler)

	// Health check (no auth required)
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	// API routes (auth required, JSON Content-Type)
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.ContentType)
		r.Use(middleware.Auth(verifier, mirror))

		groupHandler := handler.NewGroupHandler(groups)
		r.Post("/groups", groupHandler.Create)
		r.Get("/groups", groupHandler.List)
		r.Get("/groups/{code}", groupHandler.Get)
		r.Post("/groups/{code}/members", groupHandler.Join)
		r.Put("/groups/{code}", groupHandler.Update)
		r.Delete("/groups/{code}", groupHandler.Delete)

		userHandler := handler.NewUserHandler(groups)
		r.Post("/users/lookup", userHandler.Lookup)
		r.Get("/users/me", userHandler.Me)
	})

	return r
}
