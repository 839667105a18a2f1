package http

import (
	"net/http"
	"time"

	"github.com/stashbin/stashbin/internal/store"
	"github.com/stashbin/stashbin/pkg/api"
	"github.com/stashbin/stashbin/pkg/httpx"
)

// ReadyzHandler is the readiness probe. It degrades to 503 when the
// datastore stops answering pings.
func ReadyzHandler(startTime time.Time, version string, st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := "ok"
		code := http.StatusOK

		if err := st.Ping(r.Context()); err != nil {
			status = "degraded"
			code = http.StatusServiceUnavailable
		}

		httpx.WriteJSON(w, code, api.HealthResponse{
			Status:  status,
			Uptime:  time.Since(startTime).String(),
			Version: version,
		})
	}
}
