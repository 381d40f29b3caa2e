package httpapi

import (
	stdhttp "net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"taxfiling/internal/http/handlers"
	"taxfiling/internal/middleware"
)

func NewRouter(app *handlers.App, jwtSecret []byte, logger zerolog.Logger) stdhttp.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, chimw.RealIP, chimw.Recoverer, middleware.Logger(logger))

	// Health
	r.Get("/v1/healthz", app.Health)

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", app.AuthRegister)
		r.Post("/auth/login", app.AuthLogin)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(jwtSecret))
			r.Post("/business", app.BusinessCreate)
			r.Get("/quarters", app.QuartersList)
			r.Put("/quarter/{id}", app.QuarterSaveDraft)
			r.Post("/quarter/{id}/submit", app.QuarterSubmit)
		})
	})

	return r
}
