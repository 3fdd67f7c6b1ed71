package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/durusapp/durus/core"
	"github.com/durusapp/durus/core/user"
)

var (
	errAuthenticationFailed = echo.NewHTTPError(http.StatusUnauthorized, "invalid username or password")
	errAccountDeactivated   = echo.NewHTTPError(http.StatusUnauthorized, "account deactivated")
	errRefreshExpired       = echo.NewHTTPError(http.StatusUnauthorized, "refresh has expired")
	errHttpForbidden        = echo.NewHTTPError(http.StatusForbidden, "permission denied")
	errHttpNotFound         = echo.NewHTTPError(http.StatusNotFound, "not found")
)

// newAppHTTPErrorHandler translates app errors to HTTP responses.
// Unexpected errors are logged and, for unrecoverable integrity issues,
// trigger a graceful shutdown.
func newAppHTTPErrorHandler(logger core.Logger, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var (
			code    = http.StatusInternalServerError
			message interface{}
		)

		switch origErr := errors.Cause(err).(type) {
		case *echo.HTTPError:
			if origErr == middleware.ErrJWTMissing {
				origErr.Code = http.StatusUnauthorized
			}
			code = origErr.Code
			message = origErr.Message
			if origErr.Internal != nil {
				err = origErr.Internal
				message = origErr.Internal.Error()
			}
		case validator.ValidationErrors:
			code = http.StatusBadRequest
			fields := echo.Map{}
			for _, fErr := range origErr {
				fields[core.CleanString(fErr.Field(), true /* lower */)] = fErr.Translate(core.Translator)
			}
			message = fields
		case *core.ValidationError:
			code = http.StatusBadRequest
			if len(origErr.Fields) > 0 {
				fields := echo.Map{}
				for _, fErr := range origErr.Fields {
					fields[core.CleanString(fErr.Field, true /* lower */)] = fErr.Error
				}
				message = fields
			} else {
				message = origErr.Error()
			}
		default:
			message = http.StatusText(code)

			var usr interface{}
			if claims, cErr := getContextClaims(ctx); cErr == nil {
				usr = user.User{ID: claims.Subject, Username: claims.Username, Email: claims.Email}
			}
			logger.Error(
				http.StatusText(code),
				errors.Wrapf(err, "%s %s", ctx.Request().Method, ctx.Request().RequestURI),
				usr,
			)

			if core.IsShutdown(err) {
				defer signalShutdown()
			}
		}

		if ctx.Echo().Debug {
			message = err.Error()
		}
		if m, ok := message.(string); ok {
			message = echo.Map{"error": m}
		}

		// send response
		if !ctx.Response().Committed {
			if ctx.Request().Method == http.MethodHead {
				err = ctx.NoContent(code)
			} else {
				err = ctx.JSON(code, message)
			}
			if err != nil {
				logger.Error("error sending response", err)
			}
		}
	}
}
