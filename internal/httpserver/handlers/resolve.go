package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/launchbar/internal/hierarchy"
	"github.com/MrSnakeDoc/launchbar/internal/httpserver/deps"
)

type resolveRequest struct {
	Text string `json:"text"`
}

type resolveResponse struct {
	Text    string   `json:"text"`
	Tokens  []string `json:"tokens"`
	Expired []string `json:"expired,omitempty"`
}

// Resolve expands the {token} markers in arbitrary text.
func Resolve(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req resolveRequest
		if err := decode(w, r, &req); err != nil {
			badRequest(d, w, err)
			return
		}

		var resp resolveResponse
		err := d.Core.Do(r.Context(), func(m *hierarchy.Manager) error {
			out, touched, err := m.Resolver().Resolve(req.Text)
			if err != nil {
				return err
			}
			resp.Text = out
			resp.Tokens = touched.Tokens()
			now := d.Now()
			for _, rep := range touched.Replacements() {
				if rep.Expired(now) {
					resp.Expired = append(resp.Expired, rep.Token)
				}
			}
			return nil
		})
		if err != nil {
			writeError(d, w, r, err)
			return
		}
		writeJSON(d, w, http.StatusOK, resp)
	}
}
