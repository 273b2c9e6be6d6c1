package deps

import (
	"context"
	"time"

	"github.com/MrSnakeDoc/launchbar/internal/core"
	"github.com/MrSnakeDoc/launchbar/internal/httpserver/mw"
	"github.com/MrSnakeDoc/launchbar/internal/logger"
)

// Check reports whether one backing component is usable.
type Check func(ctx context.Context) error

type Deps struct {
	Logger        logger.Logger
	StartTime     time.Time
	Version       string
	Commit        string
	BuildDate     string
	GoVersion     string
	AllowedHosts  []string           // Host headers allowed to access the server
	AllowedCIDRS  []string           // IPs allowed to access the API
	TrustProxy    bool               // true if running behind a trusted reverse proxy
	Core          *core.Core         // serialized hierarchy, edit session and planner
	Checks        map[string]Check   // readiness probes by component name
	ImportTrigger chan struct{}      // manual bookmarks import (nil if import disabled)
	PlanLimit     mw.RateLimitConfig // applied to launch planning
	TimeNow       func() time.Time   // for testing, defaults to time.Now
}

// Now returns TimeNow() or time.Now().
func (d Deps) Now() time.Time {
	if d.TimeNow != nil {
		return d.TimeNow()
	}
	return time.Now()
}
