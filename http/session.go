package httpapi

import (
	"net/http"
	"time"

	"github.com/google/uuid"
)

const SessionCookie = "hbnb_session"

// sessionID returns the caller's session id, issuing a new one when the
// request carries none or a malformed one. The cookie is re-sent on every
// call so its lifetime runs from the last visit.
func sessionID(w http.ResponseWriter, r *http.Request, ttl time.Duration) string {
	id := ""
	if c, err := r.Cookie(SessionCookie); err == nil {
		if _, perr := uuid.Parse(c.Value); perr == nil {
			id = c.Value
		}
	}
	if id == "" {
		id = uuid.NewString()
	}
	cookie := &http.Cookie{
		Name:     SessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	if ttl > 0 {
		cookie.MaxAge = int(ttl / time.Second)
	}
	http.SetCookie(w, cookie)
	return id
}
