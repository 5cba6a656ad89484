package echoweb

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/kymoh/moviematrix/core/movie"
	"github.com/kymoh/moviematrix/core/user"
)

// registerUserWeb wires registration, the member directory and the
// owner-only account pages.
func registerUserWeb(s *server, jwt echo.MiddlewareFunc) {
	// un-authed endpoints
	s.app.GET("/users", s.listUsers)
	s.app.GET("/users/add", s.registerForm)
	s.app.POST("/users/add", s.register)

	// owner-only endpoints
	og := s.app.Group("/users/:id", jwt, s.ownerMiddleware())
	og.GET("", s.profile)
	og.GET("/edit", s.editUserForm)
	og.POST("/edit", s.editUser)
	og.POST("/delete", s.deleteUser)
	og.GET("/change_password", s.changePasswordForm)
	og.POST("/change_password", s.changePassword)
}

func (s *server) listUsers(ctx echo.Context) error {
	users, err := s.deps.UserSvc.QueryAll(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying users")
	}
	p := s.newPage(ctx, "Members")
	p.Data = users
	return ctx.Render(http.StatusOK, "users", p)
}

func (s *server) registerForm(ctx echo.Context) error {
	if usr, err := s.getContextUser(ctx); err == nil {
		return redirectToProfile(ctx, usr)
	}
	p := s.newPage(ctx, "Sign Up")
	p.Form = &user.NewUser{}
	return ctx.Render(http.StatusOK, "add_user", p)
}

func (s *server) register(ctx echo.Context) error {
	var data user.NewUser
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewUser")
	}
	if err := data.Validate(ctx.Request().Context(), s.deps.Validate, s.deps.UserSvc); err != nil {
		if fldErrs, ok := s.fieldErrors(err); ok {
			p := s.newPage(ctx, "Sign Up")
			p.Form = &data
			p.Errors = fldErrs
			return ctx.Render(http.StatusBadRequest, "add_user", p)
		}
		return err
	}

	usr, err := s.deps.UserSvc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating user")
	}
	if err = s.logIn(ctx, usr); err != nil {
		return errors.Wrap(err, "logging in")
	}

	s.addFlash(ctx, fmt.Sprintf("Welcome to %s, %s!", s.deps.Conf.AppName, usr.FirstName))
	return redirectToProfile(ctx, usr)
}

type profileData struct {
	Owner  user.User
	Movies []movie.Movie
}

func (s *server) profile(ctx echo.Context) error {
	usr, err := s.getContextUser(ctx)
	if err != nil {
		return err
	}
	movies, err := s.deps.MovieSvc.QueryByUser(ctx.Request().Context(), usr.ID)
	if err != nil {
		return errors.Wrap(err, "querying user movies")
	}

	p := s.newPage(ctx, usr.FullName())
	p.Data = profileData{Owner: usr, Movies: movies}
	return ctx.Render(http.StatusOK, "user_movies", p)
}

func (s *server) editUserForm(ctx echo.Context) error {
	usr, err := s.getContextUser(ctx)
	if err != nil {
		return err
	}
	form := &user.UpdateUser{
		Username:  usr.Username,
		Email:     usr.Email,
		FirstName: usr.FirstName,
		LastName:  usr.LastName.String,
	}
	if usr.Age.Valid {
		form.Age = fmt.Sprintf("%d", usr.Age.Int)
	}
	p := s.newPage(ctx, "Edit Account")
	p.Form = form
	return ctx.Render(http.StatusOK, "edit_user", p)
}

func (s *server) editUser(ctx echo.Context) error {
	usr, err := s.getContextUser(ctx)
	if err != nil {
		return err
	}

	var data user.UpdateUser
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateUser")
	}
	if err := data.Validate(ctx.Request().Context(), usr, s.deps.Validate, s.deps.UserSvc); err != nil {
		if fldErrs, ok := s.fieldErrors(err); ok {
			p := s.newPage(ctx, "Edit Account")
			p.Form = &data
			p.Errors = fldErrs
			return ctx.Render(http.StatusBadRequest, "edit_user", p)
		}
		return err
	}

	usr, err = s.deps.UserSvc.Update(ctx.Request().Context(), usr.ID, data)
	if err != nil {
		return errors.Wrap(err, "updating user")
	}

	s.addFlash(ctx, "Your account has been updated.")
	return redirectToProfile(ctx, usr)
}

func (s *server) deleteUser(ctx echo.Context) error {
	usr, err := s.getContextUser(ctx)
	if err != nil {
		return err
	}
	if err = s.deps.UserSvc.Delete(ctx.Request().Context(), usr.ID); err != nil {
		return errors.Wrap(err, "deleting user")
	}

	s.logOut(ctx)
	s.addFlash(ctx, "Your account has been deleted.")
	return ctx.Redirect(http.StatusSeeOther, "/")
}

func (s *server) changePasswordForm(ctx echo.Context) error {
	p := s.newPage(ctx, "Change Password")
	p.Form = &user.ChangePassword{}
	return ctx.Render(http.StatusOK, "change_password", p)
}

func (s *server) changePassword(ctx echo.Context) error {
	usr, err := s.getContextUser(ctx)
	if err != nil {
		return err
	}

	var data user.ChangePassword
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ChangePassword")
	}
	data.SetUserAttrs(usr)

	renderErr := func(fldErrs map[string]string) error {
		p := s.newPage(ctx, "Change Password")
		p.Form = &data
		p.Errors = fldErrs
		return ctx.Render(http.StatusBadRequest, "change_password", p)
	}

	if err := data.Validate(s.deps.Validate); err != nil {
		if fldErrs, ok := s.fieldErrors(err); ok {
			return renderErr(fldErrs)
		}
		return err
	}
	if err := s.deps.UserSvc.ChangePassword(ctx.Request().Context(), usr, data); err != nil {
		if fldErrs, ok := s.fieldErrors(err); ok {
			return renderErr(fldErrs)
		}
		return errors.Wrap(err, "changing password")
	}

	s.addFlash(ctx, "Your password has been changed.")
	return redirectToProfile(ctx, usr)
}
