package httpapi

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/yourorg/hbnb-web/internal/store"
)

// RunLister is satisfied by *store.Store.
type RunLister interface {
	RecentRuns(ctx context.Context, limit int) ([]store.RunRecord, error)
}

type RunsDeps struct {
	Store RunLister
}

func RegisterRuns(r chi.Router, d RunsDeps) {
	r.Get("/runs", func(w http.ResponseWriter, req *http.Request) {
		if d.Store == nil {
			writeError(w, req, http.StatusServiceUnavailable, "runs_disabled", "no run ledger configured")
			return
		}
		limit := 20
		if v := req.URL.Query().Get("limit"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n <= 0 || n > 200 {
				writeError(w, req, http.StatusBadRequest, "invalid_limit", "limit must be between 1 and 200")
				return
			}
			limit = n
		}
		runs, err := d.Store.RecentRuns(req.Context(), limit)
		if err != nil {
			writeError(w, req, http.StatusBadGateway, "store_error", err.Error())
			return
		}
		if runs == nil {
			runs = []store.RunRecord{}
		}
		render.JSON(w, req, map[string]any{"runs": runs, "count": len(runs)})
	})
}
