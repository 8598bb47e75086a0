package http

import (
	"context"
	"net/http"
	"time"

	"github.com/aussiebroadwan/lostfound/internal/auth/store"
	"github.com/aussiebroadwan/lostfound/pkg/authsdk"
	"github.com/aussiebroadwan/lostfound/pkg/httpx"
)

// Pinger checks an optional dependency such as the Redis attempt limiter.
type Pinger func(ctx context.Context) error

// ReadyzHandler godoc
//
//	@Summary		Readiness Check Endpoint
//	@Description	Readiness endpoint returning service health status and checks for critical dependencies
//	@Description	Includes uptime, version, and the status of the database and, when configured, the Redis cache
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	authsdk.HealthResponse	"status, uptime, version, checks"
//	@Failure		503	{object}	authsdk.HealthResponse	"status, uptime, version, checks - service not ready"
//	@Router			/readyz [get].
func ReadyzHandler(startTime time.Time, version string, st store.Store, cache Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		checks := &authsdk.HealthChecks{Database: "ok"}
		overallStatus := "ok"
		statusCode := http.StatusOK

		if err := st.Ping(ctx); err != nil {
			checks.Database = "error: " + err.Error()
			overallStatus = "degraded"
			statusCode = http.StatusServiceUnavailable
		}

		// A cache failure marks the service degraded but keeps 200.
		if cache != nil {
			checks.Cache = "ok"
			if err := cache(ctx); err != nil {
				checks.Cache = "error: " + err.Error()
				if overallStatus == "ok" {
					overallStatus = "degraded"
				}
			}
		}

		httpx.WriteJSON(w, statusCode, authsdk.HealthResponse{
			Status:  overallStatus,
			Uptime:  time.Since(startTime).Round(time.Second).String(),
			Version: version,
			Checks:  checks,
		})
	}
}
