package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/Umairism/Teachers-Club/core/comment"
	"github.com/Umairism/Teachers-Club/core/user"
)

type commentApi struct {
	svc      *comment.Service
	userSvc  *user.Service
	validate *validator.Validate
}

// comments are created under their target (/articles/:id/comments, /confessions/:id/comments)
// and edited here, by kind: /comments/article/:id or /comments/confession/:id.
func registerCommentAPI(g *echo.Group, authed []echo.MiddlewareFunc, deps *Deps) {
	api := commentApi{
		svc:      deps.CommentSvc,
		userSvc:  deps.UserSvc,
		validate: deps.Validate,
	}

	dg := g.Group("/comments/:kind/:id", authed...)
	dg.GET("", api.retrieve)
	dg.PUT("", api.update)
	dg.DELETE("", api.destroy)
	dg.POST("/like", api.like)
	dg.DELETE("/like", api.unlike)
}

func createComment(ctx echo.Context, kind string, svc *comment.Service, userSvc *user.Service, validate *validator.Validate) error {
	var data comment.NewComment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewComment")
	}
	if err := data.Validate(validate); err != nil {
		return err
	}

	ctxUsr, err := getContextUser(ctx, userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	c, err := svc.Create(ctx.Request().Context(), kind, ctx.Param("id"), data, ctxUsr)
	if err != nil {
		return errors.Wrap(err, "creating comment")
	}
	return ctx.JSON(http.StatusCreated, c)
}

// Handlers

func (api *commentApi) retrieve(ctx echo.Context) error {
	c, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("kind"), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding comment by ID")
	}
	return ctx.JSON(http.StatusOK, c)
}

func (api *commentApi) update(ctx echo.Context) error {
	var data comment.UpdateComment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateComment")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	ctxUsr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	c, err := api.svc.Update(ctx.Request().Context(), ctx.Param("kind"), ctx.Param("id"), data, ctxUsr)
	if err != nil {
		return errors.Wrap(err, "updating comment")
	}
	return ctx.JSON(http.StatusOK, c)
}

func (api *commentApi) destroy(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	kind, id := ctx.Param("kind"), ctx.Param("id")

	deleted, err := api.svc.Delete(ctx.Request().Context(), kind, id, ctxUsr)
	if err != nil {
		return errors.Wrap(err, "deleting comment")
	}
	if !deleted {
		if _, err = api.svc.GetByID(ctx.Request().Context(), kind, id); err != nil {
			return errors.Wrap(err, "finding comment by ID")
		}
		return errHttpForbidden
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *commentApi) like(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	c, err := api.svc.Like(ctx.Request().Context(), ctx.Param("kind"), ctx.Param("id"), ctxUsr)
	if err != nil {
		return errors.Wrap(err, "liking comment")
	}
	return ctx.JSON(http.StatusOK, c)
}

func (api *commentApi) unlike(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	c, err := api.svc.Unlike(ctx.Request().Context(), ctx.Param("kind"), ctx.Param("id"), ctxUsr)
	if err != nil {
		return errors.Wrap(err, "unliking comment")
	}
	return ctx.JSON(http.StatusOK, c)
}
