package httpapi

import (
	"net/http"

	"github.com/go-chi/render"
)

type errorBody struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}

func writeError(w http.ResponseWriter, r *http.Request, status int, code, detail string) {
	render.Status(r, status)
	render.JSON(w, r, errorBody{Error: code, Detail: detail})
}

func isHTMX(r *http.Request) bool { return r.Header.Get("HX-Request") == "true" }
