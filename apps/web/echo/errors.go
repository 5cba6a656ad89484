package echoweb

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/kymoh/moviematrix/core"
	"github.com/kymoh/moviematrix/core/user"
)

var (
	errUnauthorized         = echo.NewHTTPError(http.StatusUnauthorized, "user not authenticated")
	errAuthenticationFailed = echo.NewHTTPError(http.StatusBadRequest, "authentication failed")
	errHttpForbidden        = echo.NewHTTPError(http.StatusForbidden, "permission denied")
	errHttpNotFound         = echo.NewHTTPError(http.StatusNotFound, "not found")
)

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that renders
// the HTML error pages. A core.shutdown error triggers a graceful shutdown.
func (s *server) newAppHTTPErrorHandler() echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var code int
		var message string

		switch origErr := errors.Cause(err).(type) {
		case *echo.HTTPError:
			if origErr.Internal != nil {
				if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
					origErr = herr
				}
			}
			code = origErr.Code
			if msg, ok := origErr.Message.(string); ok {
				message = msg
			} else {
				message = http.StatusText(code)
			}
		case validator.ValidationErrors, *core.ValidationError:
			// handlers re-render their form on validation failures;
			// anything that reaches this point is a bad request
			code = http.StatusBadRequest
			message = "invalid form data"
		default: // any other error is a server error
			code = http.StatusInternalServerError
			message = http.StatusText(code)

			var usr user.User
			if claims, cErr := getContextClaims(ctx); cErr == nil {
				if id, idErr := claims.UserID(); idErr == nil {
					usr.ID = id
				}
				usr.Username = claims.Username
				usr.Email = claims.Email
			}
			s.deps.Logger.Error(message, errors.Wrap(err, message), "user", usr.Username)

			// shutting down...
			if core.IsShutdown(err) {
				s.SignalShutdown()
			}
		}

		if ctx.Response().Committed {
			return
		}
		if ctx.Request().Method == http.MethodHead {
			_ = ctx.NoContent(code)
			return
		}

		p := s.newPage(ctx, http.StatusText(code))
		p.Data = message

		tmplName := "error"
		switch code {
		case http.StatusNotFound:
			tmplName = "404"
		case http.StatusInternalServerError:
			tmplName = "500"
		}
		if rErr := ctx.Render(code, tmplName, p); rErr != nil {
			ctx.Echo().Logger.Error(rErr)
			_ = ctx.String(code, message)
		}
	}
}

// fieldErrors maps a validation failure to {field: message} for form
// re-rendering. ok is false for non-validation errors.
func (s *server) fieldErrors(err error) (map[string]string, bool) {
	switch vErr := errors.Cause(err).(type) {
	case validator.ValidationErrors:
		fldErrs := make(map[string]string, len(vErr))
		for _, fErr := range vErr {
			fldErrs[fErr.Field()] = fErr.Translate(s.deps.Translator)
		}
		return fldErrs, true
	case *core.ValidationError:
		if vErr.Fields != nil {
			fldErrs := make(map[string]string, len(vErr.Fields))
			for _, fErr := range vErr.Fields {
				fldErrs[fErr.Field] = fErr.Error
			}
			return fldErrs, true
		}
		return map[string]string{"__all__": vErr.Error()}, true
	}
	return nil, false
}
