package http

import (
	"context"
	"net/http"
	"time"

	"github.com/aussiebroadwan/circle/internal/social/push"
	"github.com/aussiebroadwan/circle/internal/social/sessioncache"
	"github.com/aussiebroadwan/circle/internal/social/store"
	"github.com/aussiebroadwan/circle/pkg/httpx"
	"github.com/aussiebroadwan/circle/pkg/socialsdk"
)

// LivezHandler godoc
//
//	@Summary		Health Check Endpoint
//	@Description	Liveness probe returning status, uptime and version. Always 200 while the process runs.
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	socialsdk.HealthResponse	"status, uptime, version"
//	@Router			/livez [get]
func LivezHandler(startTime time.Time, version string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, socialsdk.HealthResponse{
			Status:  "ok",
			Uptime:  time.Since(startTime).String(),
			Version: version,
		})
	}
}

// ReadyzHandler godoc
//
//	@Summary		Readiness Check Endpoint
//	@Description	Readiness probe checking the database, the session cache and the push hub.
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	socialsdk.HealthResponse	"status, uptime, version, checks"
//	@Failure		503	{object}	socialsdk.HealthResponse	"service not ready"
//	@Router			/readyz [get]
func ReadyzHandler(
	startTime time.Time,
	version string,
	st store.Store,
	cache sessioncache.Cache,
	hub *push.Hub,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		checks := &socialsdk.HealthChecks{Database: "ok", Cache: "ok", Push: "ok"}
		status, code := "ok", http.StatusOK
		fail := func(field *string, err error) {
			*field = "error: " + err.Error()
			status, code = "degraded", http.StatusServiceUnavailable
		}

		if err := st.Ping(ctx); err != nil {
			fail(&checks.Database, err)
		}
		if err := cache.Ping(ctx); err != nil {
			fail(&checks.Cache, err)
		}
		if hub == nil {
			checks.Push = "disabled"
		} else if _, err := hub.Connections(ctx); err != nil {
			fail(&checks.Push, err)
		}

		httpx.WriteJSON(w, code, socialsdk.HealthResponse{
			Status:  status,
			Uptime:  time.Since(startTime).String(),
			Version: version,
			Checks:  checks,
		})
	}
}
