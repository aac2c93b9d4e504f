package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/video-stream/subreview/internal/api/handlers"
	"github.com/video-stream/subreview/internal/api/middleware"
	"github.com/video-stream/subreview/internal/auth"
	"github.com/video-stream/subreview/internal/config"
	"github.com/video-stream/subreview/internal/review"
	"github.com/video-stream/subreview/internal/storage"
)

// maxJSONBody bounds non-upload request bodies.
const maxJSONBody = 1 << 20

// Deps are the services the router wires into handlers.
type Deps struct {
	Users    handlers.UserStore
	JWT      *auth.JWTService
	Sessions *review.Store
	Files    *storage.Store
	Config   *config.Config
	Log      *zap.Logger
}

// NewRouter builds the HTTP routes. ctx bounds background work owned by the
// router, such as the login rate limiter's cleanup.
func NewRouter(ctx context.Context, d Deps) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logger(d.Log))
	r.Use(cors.Handler(middleware.CORSHandler(d.Config.CORSOrigins)))

	// Handlers
	authHandler := handlers.NewAuthHandler(d.Users, d.JWT, d.Log)
	reviewHandler := handlers.NewReviewHandler(d.Sessions, d.Files, d.Log,
		d.Config.MaxUploadBytes(), d.Config.MaxSubtitleBytes())
	pageHandler := handlers.NewPageHandler(d.Sessions, d.Log)
	loginLimiter := middleware.NewRateLimiter(ctx, 10, time.Minute)
	jsonBody := middleware.MaxBodySize(maxJSONBody)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/review/new", http.StatusSeeOther)
	})
	r.Get("/login", pageHandler.Login)

	// Pages
	r.Group(func(r chi.Router) {
		r.Use(middleware.RedirectToLogin(d.JWT))
		r.Get("/review/new", pageHandler.NewReview)
		r.Get("/review/{id}", pageHandler.Review)
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", handlers.Health)

		// Auth (public)
		r.With(loginLimiter.Handler, jsonBody).Post("/auth/login", authHandler.Login)
		r.With(jsonBody).Post("/auth/logout", authHandler.Logout)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.AuthMiddleware(d.JWT))

			r.Get("/auth/me", authHandler.Me)

			r.Get("/sessions", reviewHandler.ListSessions)
			r.With(jsonBody).Post("/sessions", reviewHandler.CreateSession)
			r.Route("/sessions/{id}", func(r chi.Router) {
				r.Get("/", reviewHandler.GetSession)
				r.Delete("/", reviewHandler.DeleteSession)

				// Uploads bound their own bodies.
				r.Post("/video", reviewHandler.UploadVideo)
				r.Post("/tracks/{track}", reviewHandler.UploadTrack)

				// Media
				r.Get("/video", reviewHandler.ServeVideo)
				r.Get("/tracks/{track}/vtt", reviewHandler.TrackVTT)
				r.Get("/timeline", reviewHandler.Timeline)

				// Playback
				r.Group(func(r chi.Router) {
					r.Use(jsonBody)
					r.Post("/events", reviewHandler.Event)
					r.Post("/player", reviewHandler.Player)
					r.Post("/tracks/{track}/entries/{entryID}/seek", reviewHandler.SeekToEntry)
					r.Post("/save", reviewHandler.Save)
				})
			})
		})
	})

	return r
}
