package handlers

import (
	"net/http"
	"sort"

	"github.com/MrSnakeDoc/launchbar/internal/httpserver/deps"
)

type componentStatus struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

type readyzResponse struct {
	Ready      bool                       `json:"ready"`
	Loaded     bool                       `json:"loaded"`
	Components map[string]componentStatus `json:"components,omitempty"`
}

// Readyz is ready once the hierarchy has loaded and every backing store
// answers.
func Readyz(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := readyzResponse{
			Loaded:     d.Core != nil && d.Core.Ready(),
			Components: make(map[string]componentStatus, len(d.Checks)),
		}
		resp.Ready = resp.Loaded

		names := make([]string, 0, len(d.Checks))
		for name := range d.Checks {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			st := componentStatus{OK: true}
			if err := d.Checks[name](r.Context()); err != nil {
				st = componentStatus{Error: err.Error()}
				resp.Ready = false
			}
			resp.Components[name] = st
		}

		status := http.StatusOK
		if !resp.Ready {
			status = http.StatusServiceUnavailable
		}
		writeJSON(d, w, status, resp)
	}
}
