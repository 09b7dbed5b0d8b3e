package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/Umairism/Teachers-Club/core/article"
	"github.com/Umairism/Teachers-Club/core/comment"
	"github.com/Umairism/Teachers-Club/core/user"
)

type articleApi struct {
	svc        *article.Service
	commentSvc *comment.Service
	userSvc    *user.Service
	validate   *validator.Validate
}

func registerArticleAPI(g *echo.Group, authed []echo.MiddlewareFunc, deps *Deps) {
	api := articleApi{
		svc:        deps.ArticleSvc,
		commentSvc: deps.CommentSvc,
		userSvc:    deps.UserSvc,
		validate:   deps.Validate,
	}

	ag := g.Group("/articles", authed...)
	ag.GET("", api.query)
	ag.POST("", api.create, permissionMiddleware(user.CanCreateArticle))

	dg := ag.Group("/:id")
	dg.GET("", api.retrieve)
	dg.PUT("", api.update)
	dg.DELETE("", api.destroy)
	dg.POST("/like", api.like)
	dg.DELETE("/like", api.unlike)
	dg.POST("/moderate", api.moderate, permissionMiddleware(user.CanModerate))
	dg.GET("/comments", api.queryComments)
	dg.POST("/comments", api.createComment)
}

// Handlers

func (api *articleApi) query(ctx echo.Context) error {
	filter := new(article.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []article.Article{})
	}
	filter.Clean()
	ordering := new(Ordering)
	ordering.Bind(ctx)

	articles, err := api.svc.Query(ctx.Request().Context(), filter, ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying articles")
	}
	if articles == nil {
		articles = []article.Article{}
	}
	return ctx.JSON(http.StatusOK, articles)
}

func (api *articleApi) create(ctx echo.Context) error {
	var data article.NewArticle
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewArticle")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	ctxUsr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	a, err := api.svc.Create(ctx.Request().Context(), data, ctxUsr)
	if err != nil {
		return errors.Wrap(err, "creating article")
	}
	return ctx.JSON(http.StatusCreated, a)
}

// retrieve counts a view on every call.
func (api *articleApi) retrieve(ctx echo.Context) error {
	a, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding article by ID")
	}
	return ctx.JSON(http.StatusOK, a)
}

func (api *articleApi) update(ctx echo.Context) error {
	var data article.UpdateArticle
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateArticle")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	ctxUsr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	a, err := api.svc.Update(ctx.Request().Context(), ctx.Param("id"), data, ctxUsr)
	if err != nil {
		return errors.Wrap(err, "updating article")
	}
	return ctx.JSON(http.StatusOK, a)
}

func (api *articleApi) destroy(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	id := ctx.Param("id")

	deleted, err := api.svc.Delete(ctx.Request().Context(), id, ctxUsr)
	if err != nil {
		return errors.Wrap(err, "deleting article")
	}
	if !deleted {
		// tell a refusal from a missing article
		if _, err = api.svc.Get(ctx.Request().Context(), id); err != nil {
			return errors.Wrap(err, "finding article by ID")
		}
		return errHttpForbidden
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *articleApi) like(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	a, err := api.svc.Like(ctx.Request().Context(), ctx.Param("id"), ctxUsr)
	if err != nil {
		return errors.Wrap(err, "liking article")
	}
	return ctx.JSON(http.StatusOK, a)
}

func (api *articleApi) unlike(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	a, err := api.svc.Unlike(ctx.Request().Context(), ctx.Param("id"), ctxUsr)
	if err != nil {
		return errors.Wrap(err, "unliking article")
	}
	return ctx.JSON(http.StatusOK, a)
}

func (api *articleApi) moderate(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	a, err := api.svc.Moderate(ctx.Request().Context(), ctx.Param("id"), ctxUsr)
	if err != nil {
		return errors.Wrap(err, "moderating article")
	}
	return ctx.JSON(http.StatusOK, a)
}

func (api *articleApi) queryComments(ctx echo.Context) error {
	a, err := api.svc.Get(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding article by ID")
	}
	thread, err := api.commentSvc.Thread(ctx.Request().Context(), comment.KindArticle, a.ID)
	if err != nil {
		return errors.Wrap(err, "querying comments")
	}
	if thread == nil {
		thread = []comment.Comment{}
	}
	return ctx.JSON(http.StatusOK, thread)
}

func (api *articleApi) createComment(ctx echo.Context) error {
	return createComment(ctx, comment.KindArticle, api.commentSvc, api.userSvc, api.validate)
}
