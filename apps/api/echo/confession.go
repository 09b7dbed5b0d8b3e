package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/Umairism/Teachers-Club/core/comment"
	"github.com/Umairism/Teachers-Club/core/confession"
	"github.com/Umairism/Teachers-Club/core/user"
)

type confessionApi struct {
	svc        *confession.Service
	commentSvc *comment.Service
	userSvc    *user.Service
	validate   *validator.Validate
}

func registerConfessionAPI(g *echo.Group, authed []echo.MiddlewareFunc, deps *Deps) {
	api := confessionApi{
		svc:        deps.ConfessionSvc,
		commentSvc: deps.CommentSvc,
		userSvc:    deps.UserSvc,
		validate:   deps.Validate,
	}

	cg := g.Group("/confessions", authed...)
	cg.GET("", api.query)
	cg.POST("", api.create, permissionMiddleware(user.CanCreateConfession))

	dg := cg.Group("/:id")
	dg.GET("", api.retrieve)
	dg.PUT("", api.update)
	dg.DELETE("", api.destroy)
	dg.POST("/like", api.like)
	dg.DELETE("/like", api.unlike)
	dg.POST("/moderate", api.moderate, permissionMiddleware(user.CanModerate))
	dg.GET("/comments", api.queryComments)
	dg.POST("/comments", api.createComment)
}

// hideAuthor drops the author linkage of anonymous confessions from responses,
// unless the viewer wrote it or moderates content.
func hideAuthor(c confession.Confession, viewer user.User) confession.Confession {
	if c.IsAnonymous && c.AuthorID != viewer.ID && !user.CanModerate(viewer) {
		c.AuthorID = ""
	}
	return c
}

// Handlers

func (api *confessionApi) query(ctx echo.Context) error {
	filter := new(confession.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []confession.Confession{})
	}
	filter.Clean()
	ordering := new(Ordering)
	ordering.Bind(ctx)

	ctxUsr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	confessions, err := api.svc.Query(ctx.Request().Context(), filter, ordering.Orderings, ctxUsr)
	if err != nil {
		return errors.Wrap(err, "querying confessions")
	}
	if confessions == nil {
		confessions = []confession.Confession{}
	}
	for i := range confessions {
		confessions[i] = hideAuthor(confessions[i], ctxUsr)
	}
	return ctx.JSON(http.StatusOK, confessions)
}

func (api *confessionApi) create(ctx echo.Context) error {
	var data confession.NewConfession
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewConfession")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	ctxUsr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	c, err := api.svc.Create(ctx.Request().Context(), data, ctxUsr)
	if err != nil {
		return errors.Wrap(err, "creating confession")
	}
	return ctx.JSON(http.StatusCreated, c)
}

func (api *confessionApi) retrieve(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	c, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding confession by ID")
	}
	return ctx.JSON(http.StatusOK, hideAuthor(c, ctxUsr))
}

func (api *confessionApi) update(ctx echo.Context) error {
	var data confession.UpdateConfession
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateConfession")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	ctxUsr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	c, err := api.svc.Update(ctx.Request().Context(), ctx.Param("id"), data, ctxUsr)
	if err != nil {
		return errors.Wrap(err, "updating confession")
	}
	return ctx.JSON(http.StatusOK, hideAuthor(c, ctxUsr))
}

func (api *confessionApi) destroy(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	id := ctx.Param("id")

	deleted, err := api.svc.Delete(ctx.Request().Context(), id, ctxUsr)
	if err != nil {
		return errors.Wrap(err, "deleting confession")
	}
	if !deleted {
		if _, err = api.svc.GetByID(ctx.Request().Context(), id); err != nil {
			return errors.Wrap(err, "finding confession by ID")
		}
		return errHttpForbidden
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *confessionApi) like(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	c, err := api.svc.Like(ctx.Request().Context(), ctx.Param("id"), ctxUsr)
	if err != nil {
		return errors.Wrap(err, "liking confession")
	}
	return ctx.JSON(http.StatusOK, hideAuthor(c, ctxUsr))
}

func (api *confessionApi) unlike(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	c, err := api.svc.Unlike(ctx.Request().Context(), ctx.Param("id"), ctxUsr)
	if err != nil {
		return errors.Wrap(err, "unliking confession")
	}
	return ctx.JSON(http.StatusOK, hideAuthor(c, ctxUsr))
}

func (api *confessionApi) moderate(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	c, err := api.svc.Moderate(ctx.Request().Context(), ctx.Param("id"), ctxUsr)
	if err != nil {
		return errors.Wrap(err, "moderating confession")
	}
	return ctx.JSON(http.StatusOK, c)
}

func (api *confessionApi) queryComments(ctx echo.Context) error {
	c, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding confession by ID")
	}
	if c.Comments == nil {
		c.Comments = []comment.Comment{}
	}
	return ctx.JSON(http.StatusOK, c.Comments)
}

func (api *confessionApi) createComment(ctx echo.Context) error {
	return createComment(ctx, comment.KindConfession, api.commentSvc, api.userSvc, api.validate)
}
