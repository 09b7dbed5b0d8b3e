package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/Umairism/Teachers-Club/core"
	"github.com/Umairism/Teachers-Club/core/moderation"
	"github.com/Umairism/Teachers-Club/core/user"
)

type moderationApi struct {
	svc      *moderation.Service
	userSvc  *user.Service
	validate *validator.Validate
}

func registerModerationAPI(g *echo.Group, authed []echo.MiddlewareFunc, deps *Deps) {
	api := moderationApi{
		svc:      deps.ModerationSvc,
		userSvc:  deps.UserSvc,
		validate: deps.Validate,
	}
	canResolve := permissionMiddleware(user.CanResolveReports)

	rg := g.Group("/reports", authed...)
	rg.POST("", api.createReport)
	rg.GET("", api.queryReports, canResolve)
	rg.GET("/:id", api.retrieveReport, canResolve)
	rg.POST("/:id/resolve", api.resolveReport, canResolve)

	ag := g.Group("/admin", authed...)
	ag.GET("/logs", api.queryLogs, permissionMiddleware(user.CanManageUsers))
}

// Handlers

func (api *moderationApi) createReport(ctx echo.Context) error {
	var data moderation.NewReport
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewReport")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	ctxUsr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	rep, err := api.svc.CreateReport(ctx.Request().Context(), data, ctxUsr)
	if err != nil {
		return errors.Wrap(err, "creating report")
	}
	return ctx.JSON(http.StatusCreated, rep)
}

func (api *moderationApi) queryReports(ctx echo.Context) error {
	filter := new(moderation.ReportFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []moderation.Report{})
	}

	reports, err := api.svc.QueryReports(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "querying reports")
	}
	if reports == nil {
		reports = []moderation.Report{}
	}
	return ctx.JSON(http.StatusOK, reports)
}

func (api *moderationApi) retrieveReport(ctx echo.Context) error {
	rep, err := api.svc.GetReport(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding report by ID")
	}
	return ctx.JSON(http.StatusOK, rep)
}

func (api *moderationApi) resolveReport(ctx echo.Context) error {
	var data ResolveReportRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ResolveReportRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	ctxUsr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	id := ctx.Param("id")
	resolved, err := api.svc.ResolveReport(ctx.Request().Context(), id, data.Status, ctxUsr)
	if err != nil {
		return errors.Wrap(err, "resolving report")
	}

	rep, err := api.svc.GetReport(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "finding report by ID")
	}
	if !resolved {
		return errHttpForbidden
	}
	return ctx.JSON(http.StatusOK, rep)
}

func (api *moderationApi) queryLogs(ctx echo.Context) error {
	filter := new(moderation.LogFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []moderation.AdminLog{})
	}

	logs, err := api.svc.QueryLogs(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "querying admin logs")
	}
	if logs == nil {
		logs = []moderation.AdminLog{}
	}
	return ctx.JSON(http.StatusOK, logs)
}

type ResolveReportRequest struct {
	Status string `json:"status" validate:"required,oneof=resolved dismissed"`
}

func (rr *ResolveReportRequest) Validate(validate *validator.Validate) error {
	rr.Status = core.CleanString(rr.Status, true /* lower */)
	return validate.Struct(rr)
}
