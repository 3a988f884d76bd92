package main

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/go-chi/render"

	httpapi "github.com/yourorg/hbnb-web/http"
	"github.com/yourorg/hbnb-web/internal/amenity"
	"github.com/yourorg/hbnb-web/internal/events"
	"github.com/yourorg/hbnb-web/internal/logger"
	"github.com/yourorg/hbnb-web/internal/pipeline"
)

type RouterDeps struct {
	API        pipeline.API
	Amenities  httpapi.AmenityLister
	Sessions   amenity.Store
	SessionTTL time.Duration
	Variant    pipeline.Variant
	Events     events.Publisher
	Runs       httpapi.RunLister
	Logger     *slog.Logger

	RateLimitPerMin int
	CORSOrigins     []string
}

func BuildRouter(d RouterDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP, logger.Middleware(d.Logger), middleware.Recoverer)
	if d.RateLimitPerMin > 0 {
		r.Use(httprate.LimitByIP(d.RateLimitPerMin, 1*time.Minute))
	}
	if len(d.CORSOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   d.CORSOrigins,
			AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type", "HX-Request", "HX-Target", "HX-Trigger", "HX-Current-URL"},
			ExposedHeaders:   []string{logger.RequestIDHeader, "X-Run-ID", "X-API-Status"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		render.JSON(w, req, map[string]bool{"ok": true})
	})

	httpapi.RegisterPages(r, httpapi.PageDeps{
		API:        d.API,
		Amenities:  d.Amenities,
		Sessions:   d.Sessions,
		SessionTTL: d.SessionTTL,
		Variant:    d.Variant,
		Events:     d.Events,
	})
	httpapi.RegisterAmenities(r, httpapi.AmenityDeps{Sessions: d.Sessions, SessionTTL: d.SessionTTL})

	r.Group(func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		httpapi.RegisterRuns(r, httpapi.RunsDeps{Store: d.Runs})
	})

	return r
}
