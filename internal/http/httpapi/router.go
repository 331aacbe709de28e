package httpapi

import (
	stdhttp "net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"minter/internal/http/handlers"
	"minter/internal/middleware"
)

func NewRouter(app *handlers.App) stdhttp.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, chimw.RealIP, chimw.Recoverer, middleware.Logger(app.Logger))

	defaultLocale := "en"
	var origins []string
	rateLimit := 0
	if app.Config != nil {
		defaultLocale = app.Config.DefaultLocale
		origins = app.Config.CORSAllowedOrigins
		rateLimit = app.Config.RateLimitPerMin
	}
	r.Use(middleware.CORS(origins), middleware.I18N(defaultLocale))

	r.Route("/v1", func(r chi.Router) {
		// Health
		r.Get("/healthz", app.Health)
		r.Get("/openapi.json", app.OpenAPIJSON)
		r.Get("/docs", app.OpenAPIDocs)

		r.Get("/status", app.Status)

		r.Route("/mints", func(r chi.Router) {
			r.With(middleware.RateLimit(rateLimit, time.Minute)).Post("/", app.CreateMint)
			r.Get("/", app.ListMints)
			r.Get("/{id}", app.GetMint)
		})
	})

	return r
}
