package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/Umairism/Teachers-Club/core/reaction"
	"github.com/Umairism/Teachers-Club/core/user"
)

type reactionApi struct {
	svc      *reaction.Service
	userSvc  *user.Service
	validate *validator.Validate
}

func registerReactionAPI(g *echo.Group, authed []echo.MiddlewareFunc, deps *Deps) {
	api := reactionApi{
		svc:      deps.ReactionSvc,
		userSvc:  deps.UserSvc,
		validate: deps.Validate,
	}

	rg := g.Group("/reactions/:target_type/:target_id", authed...)
	rg.GET("", api.summary)
	rg.POST("", api.toggle)
}

// Handlers

func (api *reactionApi) summary(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	sum, err := api.svc.Summary(ctx.Request().Context(), ctx.Param("target_type"), ctx.Param("target_id"), ctxUsr.ID)
	if err != nil {
		return errors.Wrap(err, "summarizing reactions")
	}
	return ctx.JSON(http.StatusOK, sum)
}

func (api *reactionApi) toggle(ctx echo.Context) error {
	var data reaction.NewReaction
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewReaction")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	ctxUsr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	sum, err := api.svc.Toggle(ctx.Request().Context(), ctx.Param("target_type"), ctx.Param("target_id"), data.Type, ctxUsr)
	if err != nil {
		return errors.Wrap(err, "toggling reaction")
	}
	return ctx.JSON(http.StatusOK, sum)
}
