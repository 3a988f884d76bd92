package httpapi

import (
	"bytes"
	"encoding/json"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/yourorg/hbnb-web/internal/amenity"
	"github.com/yourorg/hbnb-web/internal/dom"
	"github.com/yourorg/hbnb-web/internal/logger"
)

// ToggleEndpoint receives checkbox changes from the filters popover.
const ToggleEndpoint = "/amenities/toggle"

type AmenityDeps struct {
	Sessions   amenity.Store
	SessionTTL time.Duration
}

type ToggleRequest struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Checked bool   `json:"checked"`
}

type SelectionResponse struct {
	Summary   string          `json:"summary"`
	Amenities []amenity.Entry `json:"amenities"`
}

func RegisterAmenities(r chi.Router, d AmenityDeps) {
	r.Post(ToggleEndpoint, func(w http.ResponseWriter, req *http.Request) {
		body, err := decodeToggle(req)
		if err != nil {
			writeError(w, req, http.StatusBadRequest, "invalid_body", err.Error())
			return
		}
		if body.ID == "" {
			writeError(w, req, http.StatusBadRequest, "missing_id", "amenity id is required")
			return
		}

		sid := sessionID(w, req, d.SessionTTL)
		sel, err := d.Sessions.Update(req.Context(), sid, func(sel *amenity.Selection) {
			sel.Toggle(body.ID, body.Name, body.Checked)
		})
		if err != nil {
			logger.FromContext(req.Context()).Warn("amenity selection not saved", "session", sid, "error", err)
			writeError(w, req, http.StatusServiceUnavailable, "session_unavailable", err.Error())
			return
		}
		summary := sel.Summary()

		if isHTMX(req) {
			var buf bytes.Buffer
			if err := dom.SummaryFragment(&buf, summary); err != nil {
				writeError(w, req, http.StatusInternalServerError, "render_failed", err.Error())
				return
			}
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			_, _ = w.Write(buf.Bytes())
			return
		}
		render.JSON(w, req, SelectionResponse{Summary: summary, Amenities: sel.Entries()})
	})

	r.Get("/amenities", func(w http.ResponseWriter, req *http.Request) {
		sel, err := d.Sessions.Load(req.Context(), sessionID(w, req, d.SessionTTL))
		if err != nil {
			writeError(w, req, http.StatusServiceUnavailable, "session_unavailable", err.Error())
			return
		}
		render.JSON(w, req, SelectionResponse{Summary: sel.Summary(), Amenities: sel.Entries()})
	})

	r.Delete("/amenities", func(w http.ResponseWriter, req *http.Request) {
		if err := d.Sessions.Delete(req.Context(), sessionID(w, req, d.SessionTTL)); err != nil {
			writeError(w, req, http.StatusServiceUnavailable, "session_unavailable", err.Error())
			return
		}
		render.JSON(w, req, SelectionResponse{Summary: amenity.Blank, Amenities: []amenity.Entry{}})
	})
}

// decodeToggle accepts a JSON body or form values. An absent or false
// "checked" form value means the box was cleared.
func decodeToggle(req *http.Request) (ToggleRequest, error) {
	var body ToggleRequest
	ct, _, _ := mime.ParseMediaType(req.Header.Get("Content-Type"))
	if ct == "application/json" {
		err := json.NewDecoder(req.Body).Decode(&body)
		return body, err
	}
	if err := req.ParseForm(); err != nil {
		return body, err
	}
	body.ID = strings.TrimSpace(req.PostForm.Get("id"))
	body.Name = strings.TrimSpace(req.PostForm.Get("name"))
	if v := req.PostForm.Get("checked"); v != "" {
		checked, err := strconv.ParseBool(v)
		if err != nil {
			return body, err
		}
		body.Checked = checked
	}
	return body, nil
}
