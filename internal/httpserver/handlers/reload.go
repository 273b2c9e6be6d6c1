package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/launchbar/internal/httpserver/deps"
	"github.com/MrSnakeDoc/launchbar/internal/logger"
)

type reloadResponse struct {
	Applied         bool `json:"applied"`
	Deferred        bool `json:"deferred"`
	ImportTriggered bool `json:"importTriggered"`
}

// Reload merges both stores again and kicks the bookmarks import. While an
// edit is open the merge is deferred until it closes.
func Reload(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		applied, err := d.Core.Reload(r.Context())
		if err != nil {
			writeError(d, w, r, err)
			return
		}

		resp := reloadResponse{Applied: applied, Deferred: !applied}
		if d.ImportTrigger != nil {
			select {
			case d.ImportTrigger <- struct{}{}:
				resp.ImportTriggered = true
			default:
				d.Logger.Warn("bookmarks import already pending",
					logger.String("remote_ip", r.RemoteAddr))
			}
		}

		d.Logger.Info("manual reload via endpoint",
			logger.Bool("applied", applied),
			logger.Bool("import_triggered", resp.ImportTriggered),
			logger.String("remote_ip", r.RemoteAddr))

		status := http.StatusOK
		if resp.Deferred {
			status = http.StatusAccepted
		}
		writeJSON(d, w, status, resp)
	}
}
