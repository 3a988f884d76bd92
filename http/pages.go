package httpapi

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/yourorg/hbnb-web/hbnb"
	"github.com/yourorg/hbnb-web/internal/amenity"
	"github.com/yourorg/hbnb-web/internal/dom"
	"github.com/yourorg/hbnb-web/internal/events"
	"github.com/yourorg/hbnb-web/internal/logger"
	"github.com/yourorg/hbnb-web/internal/pipeline"
)

// AmenityLister supplies the filter checkboxes. *hbnb.Client and
// *catalog.Catalog implement it.
type AmenityLister interface {
	Amenities(ctx context.Context) ([]hbnb.Amenity, error)
}

type PageDeps struct {
	API        pipeline.API
	Amenities  AmenityLister
	Sessions   amenity.Store
	SessionTTL time.Duration
	Variant    pipeline.Variant
	Events     events.Publisher
}

func RegisterPages(r chi.Router, d PageDeps) {
	r.Get("/", func(w http.ResponseWriter, req *http.Request) {
		log := logger.FromContext(req.Context())
		page, err := dom.DefaultPage()
		if err != nil {
			writeError(w, req, http.StatusInternalServerError, "page_unavailable", err.Error())
			return
		}

		sel := loadSelection(req.Context(), d.Sessions, sessionID(w, req, d.SessionTTL), log)
		applyAmenityOptions(req.Context(), d.Amenities, page, sel, log)
		amenity.NewTracker(sel, page)

		if _, err := d.run(req, page); err != nil {
			writeError(w, req, http.StatusInternalServerError, "pipeline_failed", err.Error())
			return
		}

		var buf bytes.Buffer
		if err := page.Render(&buf); err != nil {
			writeError(w, req, http.StatusInternalServerError, "render_failed", err.Error())
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write(buf.Bytes())
	})

	// HTMX partial: the fragments of one fresh pipeline pass.
	r.Get("/places", func(w http.ResponseWriter, req *http.Request) {
		page, err := dom.DefaultPage()
		if err != nil {
			writeError(w, req, http.StatusInternalServerError, "page_unavailable", err.Error())
			return
		}
		res, err := d.run(req, page)
		if err != nil {
			writeError(w, req, http.StatusInternalServerError, "pipeline_failed", err.Error())
			return
		}
		var buf bytes.Buffer
		if err := page.RenderPlaces(&buf); err != nil {
			writeError(w, req, http.StatusInternalServerError, "render_failed", err.Error())
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("X-Run-ID", res.RunID)
		if res.Available {
			w.Header().Set("X-API-Status", "available")
		} else {
			w.Header().Set("X-API-Status", "unavailable")
		}
		_, _ = w.Write(buf.Bytes())
	})
}

// run executes one pipeline pass into page. ?variant=get|post overrides the
// configured variant and ?layout= its fragment layout.
func (d PageDeps) run(req *http.Request, page *dom.Page) (pipeline.Result, error) {
	log := logger.FromContext(req.Context())
	v := d.Variant
	if q := req.URL.Query().Get("variant"); q != "" {
		v = pipeline.ParseVariant(q)
	}
	v = v.WithLayout(req.URL.Query().Get("layout"))
	p := pipeline.New(pipeline.Deps{
		API:     d.API,
		Status:  page,
		Target:  page,
		Variant: v,
		Events:  d.Events,
		Logger:  log,
		OnError: func(_ context.Context, branch pipeline.Branch, err error) {
			log.Debug("page left unchanged after failed branch", "branch", string(branch), "error", err)
		},
	})
	return p.Run(req.Context())
}

func loadSelection(ctx context.Context, store amenity.Store, sid string, log *slog.Logger) *amenity.Selection {
	if store == nil {
		return &amenity.Selection{}
	}
	sel, err := store.Load(ctx, sid)
	if err != nil {
		log.Warn("amenity selection unavailable", "error", err)
		return &amenity.Selection{}
	}
	return sel
}

// applyAmenityOptions fills the filters popover. A failed fetch leaves it
// empty and the page still renders.
func applyAmenityOptions(ctx context.Context, src AmenityLister, page *dom.Page, sel *amenity.Selection, log *slog.Logger) {
	if src == nil {
		return
	}
	list, err := src.Amenities(ctx)
	if err != nil {
		log.Warn("amenity list unavailable", "error", err)
		return
	}
	if err := page.SetAmenityOptions(list, ToggleEndpoint); err != nil {
		log.Warn("amenity options not applied", "error", err)
		return
	}
	for _, id := range sel.IDs() {
		page.SetChecked(id, true)
	}
}
