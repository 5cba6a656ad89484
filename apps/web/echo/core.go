package echoweb

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/kymoh/moviematrix/core"
	"github.com/kymoh/moviematrix/core/user"
)

// registerCoreWeb wires the landing page, session and password-reset routes.
func registerCoreWeb(s *server, jwt, limiter echo.MiddlewareFunc) {
	s.app.GET("/", s.home)

	s.app.GET("/login", s.loginForm)
	s.app.POST("/login", s.login, limiter)
	s.app.GET("/logout", s.logout, jwt)

	s.app.GET("/password-reset", s.passwordResetForm)
	s.app.POST("/password-reset", s.passwordReset, limiter)
	s.app.GET("/password-reset-confirm", s.passwordResetConfirmForm)
	s.app.POST("/password-reset-confirm", s.passwordResetConfirm, limiter)
}

type homeStats struct {
	Users   int
	Movies  int
	Reviews int
}

func (s *server) home(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	var stats homeStats
	var err error
	if stats.Users, err = s.deps.UserSvc.Count(reqCtx); err != nil {
		return errors.Wrap(err, "counting users")
	}
	if stats.Movies, err = s.deps.MovieSvc.Count(reqCtx); err != nil {
		return errors.Wrap(err, "counting movies")
	}
	if stats.Reviews, err = s.deps.ReviewSvc.Count(reqCtx); err != nil {
		return errors.Wrap(err, "counting reviews")
	}

	p := s.newPage(ctx, "Welcome")
	p.Data = stats
	return ctx.Render(http.StatusOK, "home", p)
}

type LoginRequest struct {
	Username string `form:"username" validate:"required"`
	Password string `form:"password" validate:"required"`
	Next     string `form:"next"` // where to land after logging in
}

func (lr *LoginRequest) Validate(validate *validator.Validate) error {
	lr.Username = core.CleanString(lr.Username, true /* lower */)
	return validate.Struct(lr)
}

func (s *server) loginForm(ctx echo.Context) error {
	if usr, err := s.getContextUser(ctx); err == nil {
		return redirectToProfile(ctx, usr)
	}
	p := s.newPage(ctx, "Log In")
	p.Form = &LoginRequest{Next: ctx.QueryParam("next")}
	return ctx.Render(http.StatusOK, "login", p)
}

func (s *server) login(ctx echo.Context) error {
	var data LoginRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LoginRequest")
	}

	renderErr := func(fldErrs map[string]string) error {
		p := s.newPage(ctx, "Log In")
		p.Form = &data
		p.Errors = fldErrs
		return ctx.Render(http.StatusBadRequest, "login", p)
	}

	if err := data.Validate(s.deps.Validate); err != nil {
		if fldErrs, ok := s.fieldErrors(err); ok {
			return renderErr(fldErrs)
		}
		return err
	}

	usr, err := authenticate(ctx, data.Username, data.Password, s.deps.UserSvc)
	if err != nil {
		if errors.Cause(err) == errAuthenticationFailed {
			return renderErr(map[string]string{"__all__": "Invalid username or password."})
		}
		return errors.Wrap(err, "authenticating")
	}
	if err = s.logIn(ctx, usr); err != nil {
		return errors.Wrap(err, "logging in")
	}

	s.addFlash(ctx, fmt.Sprintf("Welcome back, %s!", usr.FirstName))
	if next := safeNextPath(data.Next); next != "" {
		return ctx.Redirect(http.StatusSeeOther, next)
	}
	return redirectToProfile(ctx, usr)
}

// safeNextPath only allows local redirect targets; anything else (absolute
// URLs, protocol-relative URLs) would be an open redirect.
func safeNextPath(next string) string {
	if strings.HasPrefix(next, "/") && !strings.HasPrefix(next, "//") {
		return next
	}
	return ""
}

func (s *server) logout(ctx echo.Context) error {
	s.logOut(ctx)
	s.addFlash(ctx, "You have been logged out.")
	return ctx.Redirect(http.StatusSeeOther, "/")
}

func (s *server) passwordResetForm(ctx echo.Context) error {
	p := s.newPage(ctx, "Password Reset")
	p.Form = &user.PasswordResetRequest{}
	return ctx.Render(http.StatusOK, "password_reset", p)
}

func (s *server) passwordReset(ctx echo.Context) error {
	var data user.PasswordResetRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to PasswordResetRequest")
	}
	if err := data.Validate(s.deps.Validate); err != nil {
		if fldErrs, ok := s.fieldErrors(err); ok {
			p := s.newPage(ctx, "Password Reset")
			p.Form = &data
			p.Errors = fldErrs
			return ctx.Render(http.StatusBadRequest, "password_reset", p)
		}
		return err
	}

	if err := s.deps.UserSvc.RequestPasswordReset(ctx.Request().Context(), data.Email); !(err == nil || errors.Cause(err) == user.ErrNotFound) {
		// do not leak account existence to attackers
		s.deps.Logger.Error("requesting password reset", errors.Wrap(err, "requesting password reset"))
	}
	s.addFlash(ctx, "If the email address supplied is associated with an account on this system, "+
		"an email will arrive in your inbox shortly with instructions to reset your password.")
	return ctx.Redirect(http.StatusSeeOther, "/login")
}

func (s *server) passwordResetConfirmForm(ctx echo.Context) error {
	p := s.newPage(ctx, "Choose a New Password")
	p.Form = &user.ResetUserPassword{
		UID:   ctx.QueryParam("uid"),
		Token: ctx.QueryParam("token"),
	}
	return ctx.Render(http.StatusOK, "password_reset_confirm", p)
}

func (s *server) passwordResetConfirm(ctx echo.Context) error {
	var data user.ResetUserPassword
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ResetUserPassword")
	}

	renderErr := func(fldErrs map[string]string) error {
		p := s.newPage(ctx, "Choose a New Password")
		p.Form = &data
		p.Errors = fldErrs
		return ctx.Render(http.StatusBadRequest, "password_reset_confirm", p)
	}

	if err := data.Validate(s.deps.Validate); err != nil {
		if fldErrs, ok := s.fieldErrors(err); ok {
			return renderErr(fldErrs)
		}
		return err
	}

	if err := s.deps.UserSvc.ResetPassword(ctx.Request().Context(), data); err != nil {
		if errors.Cause(err) == user.ErrNotFound || user.IsInvalidToken(err) {
			return renderErr(map[string]string{"__all__": "The password reset link is invalid or has expired."})
		}
		if fldErrs, ok := s.fieldErrors(err); ok {
			return renderErr(fldErrs)
		}
		return errors.Wrap(err, "resetting password")
	}

	s.addFlash(ctx, "Your password has been reset. You can now log in.")
	return ctx.Redirect(http.StatusSeeOther, "/login")
}

func redirectToProfile(ctx echo.Context, usr user.User) error {
	return ctx.Redirect(http.StatusSeeOther, fmt.Sprintf("/users/%d", usr.ID))
}
