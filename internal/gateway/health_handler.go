package gateway

import (
	"net/http"
)

func (g *Gateway) HealthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

// ReadyHandler returns 200 once every handler is wired and, when the audit
// trail is configured, its database answers.
func (g *Gateway) ReadyHandler(w http.ResponseWriter, r *http.Request) {
	if len(g.dispatchers) == 0 {
		WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "no handlers"})
		return
	}
	if g.audit != nil {
		if err := g.audit.Ping(r.Context()); err != nil {
			WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "db unavailable"})
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}
