package echoapi

import (
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/Umairism/Teachers-Club/core"
	"github.com/Umairism/Teachers-Club/core/article"
	"github.com/Umairism/Teachers-Club/core/comment"
	"github.com/Umairism/Teachers-Club/core/confession"
	"github.com/Umairism/Teachers-Club/core/moderation"
	"github.com/Umairism/Teachers-Club/core/reaction"
	"github.com/Umairism/Teachers-Club/core/user"
)

var (
	errUnauthorized       = echo.NewHTTPError(http.StatusUnauthorized, "user not authenticated")
	errAccountDeactivated = echo.NewHTTPError(http.StatusForbidden, "account deactivated")
	errRefreshExpired     = echo.NewHTTPError(http.StatusForbidden, "refresh has expired")
	errHttpForbidden      = echo.NewHTTPError(http.StatusForbidden, "permission denied")
	errHttpNotFound       = echo.NewHTTPError(http.StatusNotFound, "not found")
	errTooManyRequests    = echo.NewHTTPError(http.StatusTooManyRequests, "too many requests, please wait")

	// domain errors answered with a 404
	notFoundErrors = []error{
		user.ErrNotFound,
		article.ErrNotFound,
		confession.ErrNotFound,
		comment.ErrNotFound,
		comment.ErrUnknownKind,
		comment.ErrTargetNotFound,
		reaction.ErrTargetNotFound,
		moderation.ErrNotFound,
		moderation.ErrTargetNotFound,
	}
)

func isNotFound(err error) bool {
	for _, nfErr := range notFoundErrors {
		if err == nfErr {
			return true
		}
	}
	return false
}

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how to handle our errors.
// signalShutdown is called in order to gracefully shutdown the Server whenever a core.shutdown error is caught.
func newAppHTTPErrorHandler(logger core.Logger, translator ut.Translator, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var code int
		var message interface{}

		// validation errors carry their cause, check them before unwrapping
		var vErr *core.ValidationError
		if errors.As(err, &vErr) {
			if fldErrs := vErr.FieldMap(); fldErrs != nil {
				message = fldErrs
			} else {
				message = vErr.Error()
			}
			code = http.StatusBadRequest
			sendError(ctx, err, code, message)
			return
		}

		switch origErr := errors.Cause(err).(type) {
		case *echo.HTTPError:
			if origErr == middleware.ErrJWTMissing {
				code = http.StatusUnauthorized
				message = origErr.Message
				break
			}
			if origErr.Internal != nil {
				if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
					origErr = herr
				}
			}
			code = origErr.Code
			message = origErr.Message
		case validator.ValidationErrors:
			fldErrs := make(map[string]string, len(origErr))
			for _, fErr := range origErr {
				fldErrs[fErr.Field()] = fErr.Translate(translator)
			}
			code = http.StatusBadRequest
			message = fldErrs
		default:
			switch {
			case origErr == core.ErrPermissionDenied, origErr == user.ErrAccountDeactivated:
				code = http.StatusForbidden
				message = origErr.Error()
			case origErr == user.ErrInvalidCredentials:
				code = http.StatusBadRequest
				message = origErr.Error()
			case isNotFound(origErr):
				code = http.StatusNotFound
				message = origErr.Error()
			default: // any other error is a server error
				code = http.StatusInternalServerError
				msg := http.StatusText(http.StatusInternalServerError)
				message = msg

				var usr user.User
				if claims, cErr := getContextClaims(ctx); cErr == nil {
					usr.ID = claims.Subject
					usr.Name = claims.Name
					usr.Email = claims.Email
				}
				logger.Error(msg, errors.Wrap(err, msg), usr)

				// shutting down...
				if core.IsShutdown(err) {
					signalShutdown()
				}
			}
		}

		sendError(ctx, err, code, message)
	}
}

func sendError(ctx echo.Context, err error, code int, message interface{}) {
	if ctx.Echo().Debug && code == http.StatusInternalServerError {
		message = err.Error()
	}
	if m, ok := message.(string); ok {
		message = echo.Map{"error": m}
	}

	// Send response
	if !ctx.Response().Committed {
		if ctx.Request().Method == http.MethodHead { // Issue #608
			err = ctx.NoContent(code)
		} else {
			err = ctx.JSON(code, message)
		}
		if err != nil {
			ctx.Echo().Logger.Error(err)
		}
	}
}
