package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/Umairism/Teachers-Club/core/stats"
	"github.com/Umairism/Teachers-Club/core/user"
)

type statsApi struct {
	svc    *stats.Service
	poller *stats.Collector
}

func registerStatsAPI(g *echo.Group, authed []echo.MiddlewareFunc, deps *Deps) {
	api := statsApi{svc: deps.StatsSvc, poller: deps.StatsPoller}

	sg := g.Group("/stats", authed...)
	sg.GET("", api.retrieve, permissionMiddleware(user.CanAccessAnalytics))
}

// retrieve answers with the poller's latest snapshot, computing one when none was collected yet.
func (api *statsApi) retrieve(ctx echo.Context) error {
	if api.poller != nil {
		if snap := api.poller.Latest(); !snap.ComputedAt.IsZero() {
			return ctx.JSON(http.StatusOK, snap)
		}
	}
	snap, err := api.svc.Snapshot(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "computing stats")
	}
	return ctx.JSON(http.StatusOK, snap)
}
