package server

import (
	"encoding/json"
	"net/http"
	"strings"
)

const (
	EventJobsChanged = "jobsChanged"
	EventCloseCreate = "closeCreate"
)

// IsHTMX reports whether the request was issued by htmx.
func IsHTMX(r *http.Request) bool {
	return strings.EqualFold(r.Header.Get("Hx-Request"), "true")
}

// Trigger sets the Hx-Trigger header so htmx fires each event on the client
// after the swap. Must be called before the body is written.
func (s Server) Trigger(w http.ResponseWriter, events ...string) {
	if len(events) == 0 {
		return
	}
	m := make(map[string]bool, len(events))
	for _, ev := range events {
		m[ev] = true
	}
	b, err := json.Marshal(m)
	if err != nil {
		w.Header().Set("Hx-Trigger", events[0])
		return
	}
	w.Header().Set("Hx-Trigger", string(b))
}
